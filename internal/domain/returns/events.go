package returns

import (
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSalesReturn = "SalesReturn"

// Event type constants
const (
	EventTypeReturnApproved = "returns.approved"
	EventTypeReturnRejected = "returns.rejected"
)

// ReturnDecidedEvent is raised when a pending return is approved or rejected
type ReturnDecidedEvent struct {
	shared.BaseDomainEvent
	Number        string          `json:"number"`
	InvoiceNumber string          `json:"invoice_number"`
	Status        Status          `json:"status"`
	TotalRefund   decimal.Decimal `json:"total_refund"`
}

func newReturnDecidedEvent(r *SalesReturn) *ReturnDecidedEvent {
	eventType := EventTypeReturnRejected
	if r.Status == StatusApproved {
		eventType = EventTypeReturnApproved
	}
	return &ReturnDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSalesReturn, r.ID, r.TenantID),
		Number:          r.Number,
		InvoiceNumber:   r.InvoiceNumber,
		Status:          r.Status,
		TotalRefund:     r.TotalRefund(),
	}
}
