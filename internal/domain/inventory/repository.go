package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// InventoryItemRepository defines the interface for inventory item persistence
type InventoryItemRepository interface {
	// FindByID finds an inventory item by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*InventoryItem, error)

	// FindByIDs finds multiple inventory items by their IDs
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]InventoryItem, error)

	// FindByNameKey finds the item whose folded name equals key
	FindByNameKey(ctx context.Context, tenantID uuid.UUID, key string) (*InventoryItem, error)

	// FindAll lists items; filter keys: category, brand, status
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]InventoryItem, error)

	// Count counts items matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindLowStock lists items at or below their reorder point
	FindLowStock(ctx context.Context, tenantID uuid.UUID) ([]InventoryItem, error)

	// Create inserts a new item
	Create(ctx context.Context, item *InventoryItem) error

	// UpdateDetails persists descriptive fields with an optimistic version check
	UpdateDetails(ctx context.Context, item *InventoryItem) error

	// AdjustQuantity applies delta only if the resulting quantity stays >= 0.
	// The check and the write are one conditional statement.
	AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) (StockChange, error)

	// UpdateCostPrice overwrites the item's weighted-average cost
	UpdateCostPrice(ctx context.Context, tenantID, id uuid.UUID, cost decimal.Decimal) error
}

// StockMovementRepository is the append-only stock ledger
type StockMovementRepository interface {
	// Append writes movements; there is no update or delete
	Append(ctx context.Context, movements ...*StockMovement) error

	// FindByItem lists an item's movements, newest first
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)

	// FindByReference lists movements produced by one document
	FindByReference(ctx context.Context, tenantID uuid.UUID, referenceID string) ([]StockMovement, error)

	// SumByItem returns the signed sum of an item's movements
	SumByItem(ctx context.Context, tenantID, itemID uuid.UUID) (int, error)
}
