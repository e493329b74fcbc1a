package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/partner"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by ID within a tenant
func (r *GormSupplierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Supplier", "load supplier")
	}
	return model.ToDomain(), nil
}

// FindAll lists suppliers, searching name, phone and email
func (r *GormSupplierRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Supplier, int64, error) {
	query := searchContacts(r.db.WithContext(ctx).Model(&models.SupplierModel{}).Where("tenant_id = ?", tenantID), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count suppliers")
	}
	var rows []models.SupplierModel
	if err := applyPaging(query, filter, PartnerSortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list suppliers")
	}
	out := make([]partner.Supplier, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save inserts a new supplier or updates an existing one
func (r *GormSupplierRepository) Save(ctx context.Context, s *partner.Supplier) error {
	model := models.SupplierModelFromDomain(s)
	if s.Version <= 1 {
		return wrap(r.db.WithContext(ctx).Create(model).Error, "create supplier")
	}
	result := r.db.WithContext(ctx).Model(&models.SupplierModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", s.TenantID, s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"name":           model.Name,
			"phone":          model.Phone,
			"email":          model.Email,
			"address":        model.Address,
			"contact_person": model.ContactPerson,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return wrap(result.Error, "update supplier")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithDetail("supplier_id", s.ID.String())
	}
	return nil
}

// Delete removes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SupplierModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return wrap(result.Error, "delete supplier")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Supplier")
	}
	return nil
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
