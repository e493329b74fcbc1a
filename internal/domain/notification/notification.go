package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// Kind classifies a notification
type Kind string

const (
	KindInvoiceCreated Kind = "invoice_created"
	KindLowStock       Kind = "low_stock"
	KindMessage        Kind = "message"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindInvoiceCreated, KindLowStock, KindMessage:
		return true
	}
	return false
}

// Notification is an in-app message addressed to one member of a tenant
type Notification struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	RecipientID uuid.UUID
	Kind        Kind
	Title       string
	Message     string
	ReferenceID string
	Read        bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// New creates an unread notification
func New(tenantID, recipientID uuid.UUID, kind Kind, title, message, referenceID string) (*Notification, error) {
	if tenantID == uuid.Nil || recipientID == uuid.Nil {
		return nil, shared.NewValidationError("Notification needs a tenant and a recipient")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Invalid notification kind: " + string(kind))
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("Notification title cannot be empty")
	}
	return &Notification{
		ID:          uuid.New(),
		TenantID:    tenantID,
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Message:     strings.TrimSpace(message),
		ReferenceID: referenceID,
		CreatedAt:   time.Now(),
	}, nil
}

// MarkRead flags the notification as read; repeated calls keep the first timestamp
func (n *Notification) MarkRead() {
	if n.Read {
		return
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
}

// Fanout builds one notification per recipient
func Fanout(tenantID uuid.UUID, recipients []uuid.UUID, kind Kind, title, message, referenceID string) ([]*Notification, error) {
	out := make([]*Notification, 0, len(recipients))
	seen := make(map[uuid.UUID]struct{}, len(recipients))
	for _, r := range recipients {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		n, err := New(tenantID, r, kind, title, message, referenceID)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// InvoiceCreatedText renders the title and message of an invoice_created notification
func InvoiceCreatedText(number, customer, total, createdBy string) (string, string) {
	return "New invoice " + number,
		fmt.Sprintf("%s created invoice %s for %s, total %s", createdBy, number, customer, total)
}

// LowStockText renders the title and message of a low_stock notification
func LowStockText(itemName string, quantity, reorderPoint int) (string, string) {
	return "Low stock: " + itemName,
		fmt.Sprintf("%s is down to %d units (reorder point %d)", itemName, quantity, reorderPoint)
}

// MessageText renders the title and message of a message notification
func MessageText(sender, subject, body string) (string, string) {
	title := "New message from " + sender
	if subject != "" {
		title += ": " + subject
	}
	if r := []rune(title); len(r) > 200 {
		title = string(r[:197]) + "..."
	}
	if r := []rune(body); len(r) > 140 {
		body = string(r[:140]) + "..."
	}
	return title, body
}

// Repository persists notifications
type Repository interface {
	CreateMany(ctx context.Context, notifications ...*Notification) error
	// ListForRecipient lists newest first; filter keys: unread (bool)
	ListForRecipient(ctx context.Context, tenantID, recipientID uuid.UUID, filter shared.Filter) ([]Notification, int64, error)
	CountUnread(ctx context.Context, tenantID, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, tenantID, recipientID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, tenantID, recipientID uuid.UUID) (int64, error)
}
