package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/finance"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Expense", "load expense")
	}
	return model.ToDomain(), nil
}

// FindAll lists expenses; filter keys: category, from, to
func (r *GormExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).Where("tenant_id = ?", tenantID)
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "from":
			query = query.Where("date >= ?", value)
		case "to":
			query = query.Where("date < ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count expenses")
	}
	var rows []models.ExpenseModel
	if err := applyPaging(query, filter, ExpenseSortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list expenses")
	}
	return expensesToDomain(rows), total, nil
}

// FindBetween lists expenses dated in [from, to)
func (r *GormExpenseRepository) FindBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.Expense, error) {
	var rows []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND date >= ? AND date < ?", tenantID, from, to).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, wrap(err, "list expenses")
	}
	return expensesToDomain(rows), nil
}

// Create inserts an expense
func (r *GormExpenseRepository) Create(ctx context.Context, e *finance.Expense) error {
	return wrap(r.db.WithContext(ctx).Create(models.ExpenseModelFromDomain(e)).Error, "create expense")
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return wrap(result.Error, "delete expense")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Expense")
	}
	return nil
}

func expensesToDomain(rows []models.ExpenseModel) []finance.Expense {
	out := make([]finance.Expense, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
