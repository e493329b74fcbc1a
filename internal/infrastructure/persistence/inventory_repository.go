package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByID finds an inventory item by ID within a tenant
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Inventory item", "load inventory item")
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple inventory items by their IDs
func (r *GormInventoryItemRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]inventory.InventoryItem, error) {
	if len(ids) == 0 {
		return []inventory.InventoryItem{}, nil
	}
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, wrap(err, "load inventory items")
	}
	return itemsToDomain(rows), nil
}

// FindByNameKey finds the item whose folded name equals key
func (r *GormInventoryItemRepository) FindByNameKey(ctx context.Context, tenantID uuid.UUID, key string) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name_key = ?", tenantID, key).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Inventory item", "load inventory item")
	}
	return model.ToDomain(), nil
}

// FindAll lists items matching the filter, one page at a time
func (r *GormInventoryItemRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).Where("tenant_id = ?", tenantID), filter)
	query = applyPaging(query, filter, InventoryItemSortFields, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrap(err, "list inventory items")
	}
	return itemsToDomain(rows), nil
}

// Count counts items matching the filter
func (r *GormInventoryItemRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, wrap(err, "count inventory items")
	}
	return count, nil
}

// FindLowStock lists items at or below their reorder point, lowest stock first
func (r *GormInventoryItemRepository) FindLowStock(ctx context.Context, tenantID uuid.UUID) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND quantity <= reorder_point", tenantID).
		Order("quantity ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, wrap(err, "list low stock items")
	}
	return itemsToDomain(rows), nil
}

// Create inserts a new item
func (r *GormInventoryItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	model := models.InventoryItemModelFromDomain(item)
	return wrap(r.db.WithContext(ctx).Create(model).Error, "create inventory item")
}

// UpdateDetails saves descriptive fields. The domain has already bumped the
// version, so the row must still carry the previous one.
func (r *GormInventoryItemRepository) UpdateDetails(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", item.TenantID, item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"name":            item.Name,
			"name_key":        item.NameKey,
			"category":        item.Category,
			"brand":           item.Brand,
			"price":           item.Price,
			"reorder_point":   item.ReorderPoint,
			"status":          string(item.Status),
			"warranty_period": item.WarrantyPeriod,
			"version":         item.Version,
			"updated_at":      item.UpdatedAt,
		})
	if result.Error != nil {
		return wrap(result.Error, "update inventory item")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithDetail("inventory_item_id", item.ID.String())
	}
	return nil
}

// AdjustQuantity applies delta with a single conditional UPDATE so the
// non-negative check and the write cannot interleave with another writer.
// When no row is updated the item is re-read to tell a missing item from a
// shortfall and to report what is actually available.
func (r *GormInventoryItemRepository) AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) (inventory.StockChange, error) {
	if delta == 0 {
		return inventory.StockChange{}, shared.NewValidationError("Quantity change cannot be zero")
	}
	db := r.db.WithContext(ctx)
	result := db.Model(&models.InventoryItemModel{}).
		Where("tenant_id = ? AND id = ? AND quantity + ? >= 0", tenantID, id, delta).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return inventory.StockChange{}, wrap(result.Error, "adjust stock quantity")
	}

	var model models.InventoryItemModel
	if err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return inventory.StockChange{}, notFoundOr(err, "Inventory item", "load inventory item")
	}
	if result.RowsAffected == 0 {
		return inventory.StockChange{}, shared.NewInsufficientStockError(model.Name, model.Quantity, -delta)
	}
	return inventory.StockChange{
		ItemID:       model.ID,
		TenantID:     model.TenantID,
		ItemName:     model.Name,
		Previous:     model.Quantity - delta,
		Current:      model.Quantity,
		ReorderPoint: model.ReorderPoint,
	}, nil
}

// UpdateCostPrice overwrites the item's weighted-average cost
func (r *GormInventoryItemRepository) UpdateCostPrice(ctx context.Context, tenantID, id uuid.UUID, cost decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"cost_price": cost,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return wrap(result.Error, "update cost price")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Inventory item")
	}
	return nil
}

// applyFilter applies search and filter keys: category, brand, status, low_stock
func (r *GormInventoryItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(category) LIKE ?)", like, like, like)
	}
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "brand":
			query = query.Where("brand = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "low_stock":
			if value == true {
				query = query.Where("quantity <= reorder_point")
			}
		}
	}
	return query
}

func itemsToDomain(rows []models.InventoryItemModel) []inventory.InventoryItem {
	items := make([]inventory.InventoryItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}

// Ensure GormInventoryItemRepository implements InventoryItemRepository
var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
