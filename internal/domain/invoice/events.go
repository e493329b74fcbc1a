package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated   = "invoice.created"
	EventTypeInvoiceUpdated   = "invoice.updated"
	EventTypeInvoiceCancelled = "invoice.cancelled"
	EventTypePaymentRecorded  = "invoice.payment_recorded"
)

// InvoiceCreatedEvent is raised when an invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	Number        string          `json:"number"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
	CreatedByName string          `json:"created_by_name"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, inv.TenantID),
		Number:          inv.Number,
		CustomerName:    inv.Customer.Name,
		Total:           inv.Totals().Total,
		CreatedByName:   inv.CreatedByName,
	}
}

// InvoiceUpdatedEvent is raised when lines or discount of an invoice change
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
	Status Status          `json:"status"`
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, AggregateTypeInvoice, inv.ID, inv.TenantID),
		Number:          inv.Number,
		Total:           inv.Totals().Total,
		Status:          inv.Status,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, inv.ID, inv.TenantID),
		Number:          inv.Number,
		AmountPaid:      inv.Totals().AmountPaid,
	}
}

// PaymentRecordedEvent is raised when a payment is added
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Amount decimal.Decimal `json:"amount"`
	Status Status          `json:"status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(inv *Invoice, p Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeInvoice, inv.ID, inv.TenantID),
		Number:          inv.Number,
		Amount:          p.Amount,
		Status:          inv.Status,
	}
}
