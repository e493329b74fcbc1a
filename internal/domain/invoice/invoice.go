package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// Status represents the payment status of an invoice
type Status string

const (
	StatusUnpaid        Status = "Unpaid"
	StatusPartiallyPaid Status = "PartiallyPaid"
	StatusPaid          Status = "Paid"
	StatusCancelled     Status = "Cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusUnpaid, StatusPartiallyPaid, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// DiscountType represents how a discount value is applied
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is an invoice-level discount
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// NoDiscount is a zero fixed discount
func NoDiscount() Discount {
	return Discount{Type: DiscountFixed, Value: decimal.Zero}
}

// Validate checks the discount against the subtotal it applies to
func (d Discount) Validate(subtotal decimal.Decimal) error {
	switch d.Type {
	case DiscountPercentage:
		if d.Value.GreaterThan(hundred) {
			return shared.NewValidationError("Percentage discount cannot exceed 100")
		}
	case DiscountFixed:
		if d.Value.GreaterThan(subtotal) {
			return shared.NewValidationError("Fixed discount cannot exceed the subtotal")
		}
	default:
		return shared.NewValidationError("Invalid discount type: " + string(d.Type))
	}
	if d.Value.IsNegative() {
		return shared.NewValidationError("Discount cannot be negative")
	}
	return nil
}

// Customer is the billed party as captured on the invoice
type Customer struct {
	ID    *uuid.UUID
	Name  string
	Phone string
}

// Payment is one money receipt against an invoice. Payments are never edited or removed.
type Payment struct {
	ID            uuid.UUID
	Amount        decimal.Decimal
	Date          time.Time
	Method        string
	Notes         string
	CreatedAt     time.Time
	CreatedBy     uuid.UUID
	CreatedByName string
}

// PaymentDraft is the caller's input for a new payment
type PaymentDraft struct {
	Amount decimal.Decimal
	Method string
	Date   time.Time
	Notes  string
}

// Invoice is the aggregate root for a sale to a customer
type Invoice struct {
	shared.TenantAggregateRoot
	Number        string
	Customer      Customer
	Status        Status
	LineItems     []LineItem
	Payments      []Payment
	Discount      Discount
	CreatedBy     uuid.UUID
	CreatedByName string
	CancelledAt   *time.Time
}

// NewInvoice creates an unpaid invoice. Stock has to be taken by the caller in
// the same transaction that persists the invoice.
func NewInvoice(tenantID uuid.UUID, number string, customer Customer, lines []LineItem, discount Discount, actor shared.Actor) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("Invoice number cannot be empty")
	}
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Name == "" {
		return nil, shared.NewValidationError("Customer name cannot be empty")
	}
	if err := validateLines(lines, discount); err != nil {
		return nil, err
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Customer:            customer,
		LineItems:           lines,
		Payments:            make([]Payment, 0),
		Discount:            discount,
		CreatedBy:           actor.UserID,
		CreatedByName:       actor.Username,
	}
	inv.refreshStatus()
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

func validateLines(lines []LineItem, discount Discount) error {
	if len(lines) == 0 {
		return shared.NewValidationError("Invoice must have at least one line item")
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return discount.Validate(Subtotal(lines))
}

// Totals derives subtotal, discount, total, paid and due
func (inv *Invoice) Totals() Totals {
	return ComputeTotals(inv.LineItems, inv.Discount, inv.Payments)
}

// Profit derives revenue minus frozen cost of goods
func (inv *Invoice) Profit() decimal.Decimal {
	return Profit(inv.LineItems, inv.Discount)
}

// IsCancelled reports whether the invoice reached its terminal state
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == StatusCancelled
}

func (inv *Invoice) refreshStatus() {
	if inv.Status == StatusCancelled {
		return
	}
	t := inv.Totals()
	inv.Status = DeriveStatus(t.Total, t.AmountPaid)
}

// ApplyInitialStatus settles the invoice at creation time according to the
// status the seller picked: Paid records one payment for the full total,
// PartiallyPaid records initialPayment which must lie strictly between 0 and total.
func (inv *Invoice) ApplyInitialStatus(status Status, initialPayment decimal.Decimal, method string, actor shared.Actor) error {
	if len(inv.Payments) > 0 {
		return shared.NewInvalidStateError("Initial status can only be applied to a new invoice")
	}
	total := inv.Totals().Total
	switch status {
	case "", StatusUnpaid:
		return nil
	case StatusPaid:
		if !total.IsPositive() {
			return nil
		}
		_, err := inv.AddPayment(PaymentDraft{Amount: total, Method: method, Notes: "Paid in full at creation"}, actor)
		return err
	case StatusPartiallyPaid:
		if !initialPayment.IsPositive() || initialPayment.GreaterThanOrEqual(total) {
			return shared.ErrInvalidPayment.WithDetail("total", total.String())
		}
		_, err := inv.AddPayment(PaymentDraft{Amount: initialPayment, Method: method, Notes: "Initial payment"}, actor)
		return err
	default:
		return shared.NewValidationError("Invalid initial status: " + string(status))
	}
}

// AddPayment appends a payment and re-derives the status. Overpayment is
// accepted; the invoice simply resolves to Paid.
func (inv *Invoice) AddPayment(draft PaymentDraft, actor shared.Actor) (*Payment, error) {
	if inv.IsCancelled() {
		return nil, shared.NewInvalidStateError("Cannot add a payment to a cancelled invoice")
	}
	if !draft.Amount.IsPositive() {
		return nil, shared.ErrInvalidPayment.WithDetail("amount", draft.Amount.String())
	}
	method := strings.TrimSpace(draft.Method)
	if method == "" {
		method = "cash"
	}
	now := time.Now()
	date := draft.Date
	if date.IsZero() {
		date = now
	}
	p := Payment{
		ID:            uuid.New(),
		Amount:        draft.Amount.Round(2),
		Date:          date,
		Method:        method,
		Notes:         strings.TrimSpace(draft.Notes),
		CreatedAt:     now,
		CreatedBy:     actor.UserID,
		CreatedByName: actor.Username,
	}
	inv.Payments = append(inv.Payments, p)
	inv.refreshStatus()
	inv.UpdatedAt = now
	inv.AddDomainEvent(NewPaymentRecordedEvent(inv, p))
	return &p, nil
}

// FrozenCost returns the cost already captured for an item on this invoice
func (inv *Invoice) FrozenCost(itemID uuid.UUID) (decimal.Decimal, bool) {
	for _, l := range inv.LineItems {
		if l.IsProduct() && *l.InventoryItemID == itemID && l.CostPriceAtSale != nil {
			return *l.CostPriceAtSale, true
		}
	}
	return decimal.Zero, false
}

// Revise replaces lines, discount and customer of an open invoice. Payments are
// kept as they are and the status is re-derived against the new total. The
// caller applies NetStockDelta(old, new) in the same transaction.
func (inv *Invoice) Revise(customer Customer, lines []LineItem, discount Discount) error {
	if inv.IsCancelled() {
		return shared.NewInvalidStateError("Cannot edit a cancelled invoice")
	}
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Name == "" {
		return shared.NewValidationError("Customer name cannot be empty")
	}
	if err := validateLines(lines, discount); err != nil {
		return err
	}
	inv.Customer = customer
	inv.LineItems = lines
	inv.Discount = discount
	inv.refreshStatus()
	inv.UpdatedAt = time.Now()
	inv.AddDomainEvent(NewInvoiceUpdatedEvent(inv))
	return nil
}

// Cancel moves the invoice to its terminal state. It returns false when the
// invoice was already cancelled, in which case nothing changes. Payments are
// kept as an audit trail and are not refunded.
func (inv *Invoice) Cancel() bool {
	if inv.IsCancelled() {
		return false
	}
	now := time.Now()
	inv.Status = StatusCancelled
	inv.CancelledAt = &now
	inv.UpdatedAt = now
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))
	return true
}

// DaysOutstanding returns the invoice age in whole days at asOf
func (inv *Invoice) DaysOutstanding(asOf time.Time) int {
	days := int(asOf.Sub(inv.CreatedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
