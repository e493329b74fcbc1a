package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/returns"
)

// SalesReturnModel is the persistence model for the SalesReturn aggregate root.
type SalesReturnModel struct {
	TenantAggregateModel
	Number        string                 `gorm:"type:varchar(30);not null;index"`
	InvoiceID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	InvoiceNumber string                 `gorm:"type:varchar(30);not null"`
	Reason        string                 `gorm:"type:varchar(500)"`
	Status        string                 `gorm:"type:varchar(20);not null;index"`
	CreatedBy     uuid.UUID              `gorm:"type:uuid"`
	CreatedByName string                 `gorm:"type:varchar(100)"`
	DecidedAt     *time.Time             `gorm:"index"`
	DecidedBy     *uuid.UUID             `gorm:"type:uuid"`
	DecisionNote  string                 `gorm:"type:varchar(500)"`
	Items         []SalesReturnItemModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesReturnModel) TableName() string {
	return "sales_returns"
}

// ToDomain converts the persistence model to a domain SalesReturn.
func (m *SalesReturnModel) ToDomain() *returns.SalesReturn {
	r := &returns.SalesReturn{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              m.Number,
		InvoiceID:           m.InvoiceID,
		InvoiceNumber:       m.InvoiceNumber,
		Reason:              m.Reason,
		Status:              returns.Status(m.Status),
		CreatedBy:           m.CreatedBy,
		CreatedByName:       m.CreatedByName,
		DecidedAt:           m.DecidedAt,
		DecidedBy:           m.DecidedBy,
		DecisionNote:        m.DecisionNote,
		Items:               make([]returns.Item, 0, len(m.Items)),
	}
	items := append([]SalesReturnItemModel(nil), m.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	for _, it := range items {
		r.Items = append(r.Items, returns.Item{
			ID:              it.ID,
			InventoryItemID: it.InventoryItemID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			RefundAmount:    it.RefundAmount,
		})
	}
	return r
}

// SalesReturnModelFromDomain creates a new persistence model from a domain SalesReturn.
func SalesReturnModelFromDomain(r *returns.SalesReturn) *SalesReturnModel {
	m := &SalesReturnModel{
		Number:        r.Number,
		InvoiceID:     r.InvoiceID,
		InvoiceNumber: r.InvoiceNumber,
		Reason:        r.Reason,
		Status:        string(r.Status),
		CreatedBy:     r.CreatedBy,
		CreatedByName: r.CreatedByName,
		DecidedAt:     r.DecidedAt,
		DecidedBy:     r.DecidedBy,
		DecisionNote:  r.DecisionNote,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Items = make([]SalesReturnItemModel, len(r.Items))
	for i, it := range r.Items {
		m.Items[i] = SalesReturnItemModel{
			ID:              it.ID,
			TenantID:        r.TenantID,
			ReturnID:        r.ID,
			Position:        i,
			InventoryItemID: it.InventoryItemID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			RefundAmount:    it.RefundAmount,
		}
	}
	return m
}

// SalesReturnItemModel is one returned line
type SalesReturnItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReturnID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position        int             `gorm:"not null"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null"`
	Description     string          `gorm:"type:varchar(500)"`
	Quantity        int             `gorm:"not null"`
	RefundAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (SalesReturnItemModel) TableName() string {
	return "sales_return_items"
}
