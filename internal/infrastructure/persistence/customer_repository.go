package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/partner"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Customer", "load customer")
	}
	return model.ToDomain(), nil
}

// FindAll lists customers, searching name, phone and email
func (r *GormCustomerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, int64, error) {
	query := searchContacts(r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("tenant_id = ?", tenantID), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count customers")
	}
	var rows []models.CustomerModel
	if err := applyPaging(query, filter, PartnerSortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list customers")
	}
	out := make([]partner.Customer, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save inserts a new customer or updates an existing one. Updates are checked
// against the version preceding the domain's own increment.
func (r *GormCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	model := models.CustomerModelFromDomain(c)
	if c.Version <= 1 {
		return wrap(r.db.WithContext(ctx).Create(model).Error, "create customer")
	}
	result := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", c.TenantID, c.ID, c.Version-1).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"phone":      model.Phone,
			"email":      model.Email,
			"address":    model.Address,
			"notes":      model.Notes,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return wrap(result.Error, "update customer")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithDetail("customer_id", c.ID.String())
	}
	return nil
}

// Delete removes a customer. Invoices keep their captured customer name.
func (r *GormCustomerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return wrap(result.Error, "delete customer")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Customer")
	}
	return nil
}

func searchContacts(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?)", like, like, like)
	}
	return query
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
