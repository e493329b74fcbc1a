package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/invoice"
)

// LineItemRequest is one invoice line as sent by the client
type LineItemRequest struct {
	Type            string          `json:"type" binding:"required,oneof=product service"`
	InventoryItemID *uuid.UUID      `json:"inventory_item_id"`
	Description     string          `json:"description" binding:"max=500"`
	Quantity        int             `json:"quantity" binding:"required,gte=1"`
	Price           decimal.Decimal `json:"price"`
	WarrantyPeriod  string          `json:"warranty_period" binding:"max=50"`
}

// CustomerRequest identifies the billed party either by reference or by value
type CustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	Name       string     `json:"customer_name" binding:"max=200"`
	Phone      string     `json:"customer_phone" binding:"max=50"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	CustomerRequest
	Lines          []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	DiscountType   string            `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue  decimal.Decimal   `json:"discount_value"`
	InitialStatus  string            `json:"initial_status" binding:"omitempty,oneof=Paid Unpaid PartiallyPaid"`
	InitialPayment decimal.Decimal   `json:"initial_payment"`
	PaymentMethod  string            `json:"payment_method" binding:"max=50"`
}

// UpdateInvoiceRequest replaces lines, discount and optionally the customer.
// Status is never accepted; it is derived from payments and the new total.
type UpdateInvoiceRequest struct {
	CustomerRequest
	Lines         []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	DiscountType  string            `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue decimal.Decimal   `json:"discount_value"`
	Version       int               `json:"version" binding:"gte=0"`
}

// AddPaymentRequest represents a payment against an invoice
type AddPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" binding:"max=50"`
	Date   *time.Time      `json:"date"`
	Notes  string          `json:"notes" binding:"max=500"`
}

// ListFilter represents filter options for the invoice list
type ListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=Paid Unpaid PartiallyPaid Cancelled"`
	CustomerID *uuid.UUID `form:"customer_id"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=created_at number customer_name"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func discountFrom(t string, v decimal.Decimal) invoice.Discount {
	if t == "" {
		if v.IsZero() {
			return invoice.NoDiscount()
		}
		t = string(invoice.DiscountFixed)
	}
	return invoice.Discount{Type: invoice.DiscountType(t), Value: v}
}

// LineItemResponse represents an invoice line in API responses
type LineItemResponse struct {
	ID              uuid.UUID        `json:"id"`
	Type            string           `json:"type"`
	InventoryItemID *uuid.UUID       `json:"inventory_item_id,omitempty"`
	Description     string           `json:"description"`
	Quantity        int              `json:"quantity"`
	Price           decimal.Decimal  `json:"price"`
	Amount          decimal.Decimal  `json:"amount"`
	WarrantyPeriod  string           `json:"warranty_period,omitempty"`
	CostPriceAtSale *decimal.Decimal `json:"cost_price_at_sale,omitempty"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Method        string          `json:"method"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	CreatedByName string          `json:"created_by_name"`
}

// InvoiceResponse represents an invoice with its derived totals
type InvoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	Number        string             `json:"number"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	Status        string             `json:"status"`
	DiscountType  string             `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	Totals        invoice.Totals     `json:"totals"`
	Profit        decimal.Decimal    `json:"profit"`
	LineItems     []LineItemResponse `json:"line_items"`
	Payments      []PaymentResponse  `json:"payments"`
	CreatedBy     uuid.UUID          `json:"created_by"`
	CreatedByName string             `json:"created_by_name"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	Version       int                `json:"version"`
}

// InvoiceListItemResponse is the compact list form
type InvoiceListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	CustomerName string          `json:"customer_name"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	AmountDue    decimal.Decimal `json:"amount_due"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToInvoiceResponse converts a domain invoice
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	lines := make([]LineItemResponse, len(inv.LineItems))
	for i, l := range inv.LineItems {
		lines[i] = LineItemResponse{
			ID:              l.ID,
			Type:            string(l.Type),
			InventoryItemID: l.InventoryItemID,
			Description:     l.Description,
			Quantity:        l.Quantity,
			Price:           l.Price,
			Amount:          l.Amount(),
			WarrantyPeriod:  l.WarrantyPeriod,
			CostPriceAtSale: l.CostPriceAtSale,
		}
	}
	payments := make([]PaymentResponse, len(inv.Payments))
	for i, p := range inv.Payments {
		payments[i] = PaymentResponse{
			ID:            p.ID,
			Amount:        p.Amount,
			Date:          p.Date,
			Method:        p.Method,
			Notes:         p.Notes,
			CreatedBy:     p.CreatedBy,
			CreatedByName: p.CreatedByName,
		}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		CustomerID:    inv.Customer.ID,
		CustomerName:  inv.Customer.Name,
		CustomerPhone: inv.Customer.Phone,
		Status:        string(inv.Status),
		DiscountType:  string(inv.Discount.Type),
		DiscountValue: inv.Discount.Value,
		Totals:        inv.Totals(),
		Profit:        inv.Profit(),
		LineItems:     lines,
		Payments:      payments,
		CreatedBy:     inv.CreatedBy,
		CreatedByName: inv.CreatedByName,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		CancelledAt:   inv.CancelledAt,
		Version:       inv.Version,
	}
}

// ToInvoiceListItemResponse converts a domain invoice to its list form
func ToInvoiceListItemResponse(inv *invoice.Invoice) InvoiceListItemResponse {
	t := inv.Totals()
	return InvoiceListItemResponse{
		ID:           inv.ID,
		Number:       inv.Number,
		CustomerName: inv.Customer.Name,
		Status:       string(inv.Status),
		Total:        t.Total,
		AmountDue:    t.AmountDue,
		CreatedAt:    inv.CreatedAt,
	}
}
