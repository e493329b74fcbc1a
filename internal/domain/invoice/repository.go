package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID loads an invoice with its lines and payments
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByNumber loads an invoice by its human-readable number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)

	// FindAll lists invoices; filter keys: status, customer_id, from, to
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, int64, error)

	// FindCreatedBetween lists invoices created in [from, to), any status
	FindCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Invoice, error)

	// FindUnsettled lists non-cancelled invoices that are not fully paid, created before asOf
	FindUnsettled(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Invoice, error)

	// Create inserts a new invoice with its lines and payments
	Create(ctx context.Context, inv *Invoice) error

	// Save persists header, lines and new payments with an optimistic version check
	Save(ctx context.Context, inv *Invoice) error
}
