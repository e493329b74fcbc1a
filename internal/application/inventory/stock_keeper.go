package inventory

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"

	appshared "github.com/retailops/backoffice/internal/application/shared"
	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// StockKeeper is the only code path that changes stock. Every call performs the
// conditional quantity update and appends the matching movement on the same
// transaction, so item quantity always equals the sum of its movements.
type StockKeeper struct {
	repos   appshared.TransactionalRepositories
	actor   shared.Actor
	changes []inventory.StockChange
}

// NewStockKeeper binds a keeper to one transaction and one actor
func NewStockKeeper(repos appshared.TransactionalRepositories, actor shared.Actor) *StockKeeper {
	return &StockKeeper{repos: repos, actor: actor}
}

// Record applies a signed quantity to an item and writes one ledger entry
func (k *StockKeeper) Record(ctx context.Context, tenantID, itemID uuid.UUID, movementType inventory.MovementType, quantity int, referenceID string) (inventory.StockChange, error) {
	movement, err := inventory.NewStockMovement(tenantID, itemID, movementType, quantity, referenceID, k.actor)
	if err != nil {
		return inventory.StockChange{}, err
	}
	change, err := k.repos.Items().AdjustQuantity(ctx, tenantID, itemID, quantity)
	if err != nil {
		return inventory.StockChange{}, err
	}
	if err := k.repos.Movements().Append(ctx, movement); err != nil {
		return inventory.StockChange{}, err
	}
	k.changes = append(k.changes, change)
	return change, nil
}

// Take removes quantities per item with sale movements
func (k *StockKeeper) Take(ctx context.Context, tenantID uuid.UUID, quantities map[uuid.UUID]int, referenceID string) error {
	for _, id := range SortedItemIDs(quantities) {
		if _, err := k.Record(ctx, tenantID, id, inventory.MovementSale, -quantities[id], referenceID); err != nil {
			return err
		}
	}
	return nil
}

// Restore adds quantities per item back with movements of the given type
func (k *StockKeeper) Restore(ctx context.Context, tenantID uuid.UUID, quantities map[uuid.UUID]int, movementType inventory.MovementType, referenceID string) error {
	for _, id := range SortedItemIDs(quantities) {
		if _, err := k.Record(ctx, tenantID, id, movementType, quantities[id], referenceID); err != nil {
			return err
		}
	}
	return nil
}

// ApplyNet applies a net per-item delta: positive restores (cancellation), negative takes (sale)
func (k *StockKeeper) ApplyNet(ctx context.Context, tenantID uuid.UUID, delta map[uuid.UUID]int, referenceID string) error {
	for _, id := range SortedItemIDs(delta) {
		d := delta[id]
		movementType := inventory.MovementCancellation
		if d < 0 {
			movementType = inventory.MovementSale
		}
		if _, err := k.Record(ctx, tenantID, id, movementType, d, referenceID); err != nil {
			return err
		}
	}
	return nil
}

// LowStockEvents returns one event per reorder-point crossing
func (k *StockKeeper) LowStockEvents(referenceID string) []shared.DomainEvent {
	return inventory.LowStockEvents(k.changes, referenceID)
}

// SortedItemIDs orders item IDs so concurrent transactions lock rows in the same order
func SortedItemIDs(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
