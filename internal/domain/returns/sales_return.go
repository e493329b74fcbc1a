package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// Status represents the status of a sales return
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved" // stock restored
	StatusRejected Status = "Rejected"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsClosed returns true once a decision was taken
func (s Status) IsClosed() bool {
	return s == StatusApproved || s == StatusRejected
}

// Item is one returned product line
type Item struct {
	ID              uuid.UUID
	InventoryItemID uuid.UUID
	Description     string
	Quantity        int
	RefundAmount    decimal.Decimal
}

// SalesReturn records goods a customer brings back against an invoice
type SalesReturn struct {
	shared.TenantAggregateRoot
	Number        string
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Items         []Item
	Reason        string
	Status        Status
	CreatedBy     uuid.UUID
	CreatedByName string
	DecidedAt     *time.Time
	DecidedBy     *uuid.UUID
	DecisionNote  string
}

// NewSalesReturn validates returned quantities against what is still returnable
// per inventory item (sold on the invoice minus already returned or pending).
func NewSalesReturn(tenantID uuid.UUID, number string, invoiceID uuid.UUID, invoiceNumber string, items []Item, reason string, returnable map[uuid.UUID]int, actor shared.Actor) (*SalesReturn, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("Return number cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("Return must have at least one item")
	}
	requested := make(map[uuid.UUID]int)
	for idx := range items {
		it := &items[idx]
		if it.Quantity < 1 {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: quantity must be at least 1", idx+1))
		}
		if it.RefundAmount.IsNegative() {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: refund cannot be negative", idx+1))
		}
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		requested[it.InventoryItemID] += it.Quantity
	}
	for itemID, qty := range requested {
		allowed, ok := returnable[itemID]
		if !ok {
			return nil, shared.NewValidationError("Returned item is not a product on invoice "+invoiceNumber).WithDetail("inventory_item_id", itemID.String())
		}
		if qty > allowed {
			return nil, shared.NewValidationError(fmt.Sprintf("Cannot return %d units, only %d remain returnable", qty, allowed)).
				WithDetail("inventory_item_id", itemID.String())
		}
	}

	r := &SalesReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		InvoiceID:           invoiceID,
		InvoiceNumber:       invoiceNumber,
		Items:               items,
		Reason:              strings.TrimSpace(reason),
		Status:              StatusPending,
		CreatedBy:           actor.UserID,
		CreatedByName:       actor.Username,
	}
	return r, nil
}

// TotalRefund sums refund amounts
func (r *SalesReturn) TotalRefund() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range r.Items {
		sum = sum.Add(it.RefundAmount)
	}
	return sum
}

// Quantities sums returned quantity per inventory item
func (r *SalesReturn) Quantities() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, it := range r.Items {
		out[it.InventoryItemID] += it.Quantity
	}
	return out
}

func (r *SalesReturn) decide(status Status, note string, actor shared.Actor) error {
	if r.Status.IsClosed() {
		return shared.NewInvalidStateError(fmt.Sprintf("Return %s is already %s", r.Number, r.Status))
	}
	now := time.Now()
	r.Status = status
	r.DecidedAt = &now
	uid := actor.UserID
	r.DecidedBy = &uid
	r.DecisionNote = strings.TrimSpace(note)
	r.UpdatedAt = now
	r.AddDomainEvent(newReturnDecidedEvent(r))
	return nil
}

// Approve closes the return as accepted; the caller restores stock in the same transaction
func (r *SalesReturn) Approve(note string, actor shared.Actor) error {
	return r.decide(StatusApproved, note, actor)
}

// Reject closes the return without touching stock
func (r *SalesReturn) Reject(note string, actor shared.Actor) error {
	return r.decide(StatusRejected, note, actor)
}

// Claimed sums the quantity per item held by pending and approved returns.
// Rejected returns and the return with id skip do not count.
func Claimed(previous []SalesReturn, skip uuid.UUID) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, r := range previous {
		if r.Status == StatusRejected || (skip != uuid.Nil && r.ID == skip) {
			continue
		}
		for id, q := range r.Quantities() {
			out[id] += q
		}
	}
	return out
}

// Returnable computes remaining returnable quantity per item from sold quantities and earlier returns.
// Rejected returns do not count.
func Returnable(sold map[uuid.UUID]int, previous []SalesReturn) map[uuid.UUID]int {
	left := make(map[uuid.UUID]int, len(sold))
	for id, q := range sold {
		left[id] = q
	}
	for id, q := range Claimed(previous, uuid.Nil) {
		left[id] -= q
	}
	return left
}

// Exceeding returns the first item whose returned quantity no longer fits in returnable
func (r *SalesReturn) Exceeding(returnable map[uuid.UUID]int) (uuid.UUID, int, bool) {
	qty := r.Quantities()
	for _, it := range r.Items {
		if allowed := returnable[it.InventoryItemID]; qty[it.InventoryItemID] > allowed {
			return it.InventoryItemID, allowed, true
		}
	}
	return uuid.Nil, 0, false
}

// SalesReturnRepository defines the interface for return persistence
type SalesReturnRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesReturn, error)
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]SalesReturn, error)
	// FindAll lists returns; filter keys: status, invoice_id
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SalesReturn, int64, error)
	// FindApprovedBetween lists returns approved in [from, to)
	FindApprovedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]SalesReturn, error)
	Create(ctx context.Context, r *SalesReturn) error
	Save(ctx context.Context, r *SalesReturn) error
}
