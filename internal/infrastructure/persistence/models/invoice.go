package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/invoice"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Totals are denormalized so list and aging queries can filter on them.
type InvoiceModel struct {
	TenantAggregateModel
	Number         string          `gorm:"type:varchar(30);not null;index"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName   string          `gorm:"type:varchar(200);not null"`
	CustomerPhone  string          `gorm:"type:varchar(50)"`
	Status         string          `gorm:"type:varchar(20);not null;index"`
	DiscountType   string          `gorm:"type:varchar(20);not null"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountDue      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid"`
	CreatedByName  string          `gorm:"type:varchar(100)"`
	CancelledAt    *time.Time
	Lines          []InvoiceLineModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments       []InvoicePaymentModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              m.Number,
		Customer: invoice.Customer{
			ID:    m.CustomerID,
			Name:  m.CustomerName,
			Phone: m.CustomerPhone,
		},
		Status:        invoice.Status(m.Status),
		Discount:      invoice.Discount{Type: invoice.DiscountType(m.DiscountType), Value: m.DiscountValue},
		CreatedBy:     m.CreatedBy,
		CreatedByName: m.CreatedByName,
		CancelledAt:   m.CancelledAt,
		LineItems:     make([]invoice.LineItem, 0, len(m.Lines)),
		Payments:      make([]invoice.Payment, 0, len(m.Payments)),
	}
	lines := append([]InvoiceLineModel(nil), m.Lines...)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	for i := range lines {
		inv.LineItems = append(inv.LineItems, lines[i].ToDomain())
	}
	payments := append([]InvoicePaymentModel(nil), m.Payments...)
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].CreatedAt.Before(payments[j].CreatedAt) })
	for i := range payments {
		inv.Payments = append(inv.Payments, payments[i].ToDomain())
	}
	return inv
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	totals := inv.Totals()
	m := &InvoiceModel{
		Number:         inv.Number,
		CustomerID:     inv.Customer.ID,
		CustomerName:   inv.Customer.Name,
		CustomerPhone:  inv.Customer.Phone,
		Status:         string(inv.Status),
		DiscountType:   string(inv.Discount.Type),
		DiscountValue:  inv.Discount.Value,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		Total:          totals.Total,
		AmountPaid:     totals.AmountPaid,
		AmountDue:      totals.AmountDue,
		CreatedBy:      inv.CreatedBy,
		CreatedByName:  inv.CreatedByName,
		CancelledAt:    inv.CancelledAt,
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.Lines = make([]InvoiceLineModel, len(inv.LineItems))
	for i, l := range inv.LineItems {
		m.Lines[i] = InvoiceLineModelFromDomain(inv.TenantID, inv.ID, i, l)
	}
	m.Payments = make([]InvoicePaymentModel, len(inv.Payments))
	for i, p := range inv.Payments {
		m.Payments[i] = InvoicePaymentModelFromDomain(inv.TenantID, inv.ID, p)
	}
	return m
}

// InvoiceLineModel is one invoice line. Lines are replaced as a set on every save.
type InvoiceLineModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	InvoiceID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Position        int              `gorm:"not null"`
	Type            string           `gorm:"type:varchar(20);not null"`
	InventoryItemID *uuid.UUID       `gorm:"type:uuid;index"`
	Description     string           `gorm:"type:varchar(500)"`
	Quantity        int              `gorm:"not null"`
	Price           decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	WarrantyPeriod  string           `gorm:"type:varchar(100)"`
	CostPriceAtSale *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *InvoiceLineModel) ToDomain() invoice.LineItem {
	return invoice.LineItem{
		ID:              m.ID,
		Type:            invoice.LineType(m.Type),
		InventoryItemID: m.InventoryItemID,
		Description:     m.Description,
		Quantity:        m.Quantity,
		Price:           m.Price,
		WarrantyPeriod:  m.WarrantyPeriod,
		CostPriceAtSale: m.CostPriceAtSale,
	}
}

// InvoiceLineModelFromDomain creates a line row at position pos
func InvoiceLineModelFromDomain(tenantID, invoiceID uuid.UUID, pos int, l invoice.LineItem) InvoiceLineModel {
	id := l.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return InvoiceLineModel{
		ID:              id,
		TenantID:        tenantID,
		InvoiceID:       invoiceID,
		Position:        pos,
		Type:            string(l.Type),
		InventoryItemID: l.InventoryItemID,
		Description:     l.Description,
		Quantity:        l.Quantity,
		Price:           l.Price,
		WarrantyPeriod:  l.WarrantyPeriod,
		CostPriceAtSale: l.CostPriceAtSale,
	}
}

// InvoicePaymentModel is one payment row. Rows are insert-only.
type InvoicePaymentModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Date          time.Time       `gorm:"not null"`
	Method        string          `gorm:"type:varchar(50)"`
	Notes         string          `gorm:"type:varchar(500)"`
	CreatedAt     time.Time       `gorm:"not null"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid"`
	CreatedByName string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (InvoicePaymentModel) TableName() string {
	return "invoice_payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *InvoicePaymentModel) ToDomain() invoice.Payment {
	return invoice.Payment{
		ID:            m.ID,
		Amount:        m.Amount,
		Date:          m.Date,
		Method:        m.Method,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		CreatedByName: m.CreatedByName,
	}
}

// InvoicePaymentModelFromDomain creates a payment row
func InvoicePaymentModelFromDomain(tenantID, invoiceID uuid.UUID, p invoice.Payment) InvoicePaymentModel {
	return InvoicePaymentModel{
		ID:            p.ID,
		TenantID:      tenantID,
		InvoiceID:     invoiceID,
		Amount:        p.Amount,
		Date:          p.Date,
		Method:        p.Method,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		CreatedByName: p.CreatedByName,
	}
}
