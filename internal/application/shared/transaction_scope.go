package shared

import (
	"context"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/invoice"
	"github.com/retailops/backoffice/internal/domain/notification"
	"github.com/retailops/backoffice/internal/domain/partner"
	"github.com/retailops/backoffice/internal/domain/returns"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// TransactionScope provides transactional access to the ledger repositories.
// All repository operations issued inside fn are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to one transaction.
//
// Stock quantity and stock movements must only be changed through the same
// TransactionalRepositories value so the ledger stays consistent with the item rows.
type TransactionalRepositories interface {
	Items() inventory.InventoryItemRepository
	Movements() inventory.StockMovementRepository
	Invoices() invoice.InvoiceRepository
	Returns() returns.SalesReturnRepository
	Sequences() shared.SequenceRepository
	Notifications() notification.Repository
	Memberships() identity.MembershipRepository
	Customers() partner.CustomerRepository
}
