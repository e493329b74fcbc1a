package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailops/backoffice/internal/domain/returns"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormSalesReturnRepository implements SalesReturnRepository using GORM
type GormSalesReturnRepository struct {
	db *gorm.DB
}

// NewGormSalesReturnRepository creates a new GormSalesReturnRepository
func NewGormSalesReturnRepository(db *gorm.DB) *GormSalesReturnRepository {
	return &GormSalesReturnRepository{db: db}
}

// FindByID loads a return with its items
func (r *GormSalesReturnRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.SalesReturn, error) {
	var model models.SalesReturnModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Sales return", "load sales return")
	}
	return model.ToDomain(), nil
}

// FindByInvoice lists every return raised against an invoice
func (r *GormSalesReturnRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]returns.SalesReturn, error) {
	var rows []models.SalesReturnModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, wrap(err, "list sales returns")
	}
	return returnsToDomain(rows), nil
}

// FindAll lists returns; filter keys: status, invoice_id
func (r *GormSalesReturnRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]returns.SalesReturn, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SalesReturnModel{}).Where("tenant_id = ?", tenantID)
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "invoice_id":
			query = query.Where("invoice_id = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count sales returns")
	}
	var rows []models.SalesReturnModel
	if err := applyPaging(query.Preload("Items"), filter, SalesReturnSortFields, "created_at").
		Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list sales returns")
	}
	return returnsToDomain(rows), total, nil
}

// FindApprovedBetween lists returns approved in [from, to)
func (r *GormSalesReturnRepository) FindApprovedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]returns.SalesReturn, error) {
	var rows []models.SalesReturnModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND status = ? AND decided_at >= ? AND decided_at < ?",
			tenantID, string(returns.StatusApproved), from, to).
		Order("decided_at ASC").
		Find(&rows).Error; err != nil {
		return nil, wrap(err, "list approved returns")
	}
	return returnsToDomain(rows), nil
}

// Create inserts a return with its items
func (r *GormSalesReturnRepository) Create(ctx context.Context, ret *returns.SalesReturn) error {
	model := models.SalesReturnModelFromDomain(ret)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return wrap(err, "create sales return")
	}
	if len(model.Items) > 0 {
		if err := db.Create(&model.Items).Error; err != nil {
			return wrap(err, "create sales return items")
		}
	}
	return nil
}

// Save persists the decision fields against the loaded version. Items never
// change after creation.
func (r *GormSalesReturnRepository) Save(ctx context.Context, ret *returns.SalesReturn) error {
	result := r.db.WithContext(ctx).Model(&models.SalesReturnModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", ret.TenantID, ret.ID, ret.Version).
		Updates(map[string]interface{}{
			"status":        string(ret.Status),
			"decided_at":    ret.DecidedAt,
			"decided_by":    ret.DecidedBy,
			"decision_note": ret.DecisionNote,
			"version":       ret.Version + 1,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return wrap(result.Error, "update sales return")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithDetail("return_id", ret.ID.String())
	}
	ret.IncrementVersion()
	return nil
}

func returnsToDomain(rows []models.SalesReturnModel) []returns.SalesReturn {
	out := make([]returns.SalesReturn, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormSalesReturnRepository implements SalesReturnRepository
var _ returns.SalesReturnRepository = (*GormSalesReturnRepository)(nil)
