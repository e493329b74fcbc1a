package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormStockMovementRepository is the append-only stock ledger on GORM.
// It exposes no update or delete.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append writes movements in one batch
func (r *GormStockMovementRepository) Append(ctx context.Context, movements ...*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.StockMovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.StockMovementModelFromDomain(m)
	}
	return wrap(r.db.WithContext(ctx).Create(&rows).Error, "append stock movements")
}

// FindByItem lists an item's movements, newest first
func (r *GormStockMovementRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	filter = filter.Normalize()
	base := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).
		Where("tenant_id = ? AND inventory_item_id = ?", tenantID, itemID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count stock movements")
	}
	var rows []models.StockMovementModel
	if err := base.Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list stock movements")
	}
	return movementsToDomain(rows), total, nil
}

// FindByReference lists movements produced by one document, oldest first
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, referenceID string) ([]inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_id = ?", tenantID, referenceID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, wrap(err, "list stock movements")
	}
	return movementsToDomain(rows), nil
}

// SumByItem returns the signed sum of an item's movements
func (r *GormStockMovementRepository) SumByItem(ctx context.Context, tenantID, itemID uuid.UUID) (int, error) {
	var sum int
	if err := r.db.WithContext(ctx).Model(&models.StockMovementModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("tenant_id = ? AND inventory_item_id = ?", tenantID, itemID).
		Scan(&sum).Error; err != nil {
		return 0, wrap(err, "sum stock movements")
	}
	return sum, nil
}

func movementsToDomain(rows []models.StockMovementModel) []inventory.StockMovement {
	out := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
