package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormMembershipRepository implements MembershipRepository using GORM
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// FindByUser finds the membership of a user in a tenant
func (r *GormMembershipRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*identity.Membership, error) {
	var model models.MembershipModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Membership", "load membership")
	}
	return model.ToDomain(), nil
}

// FindByTenant lists all members of a tenant
func (r *GormMembershipRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]identity.Membership, error) {
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID))
}

// FindByRoles lists members holding any of roles
func (r *GormMembershipRepository) FindByRoles(ctx context.Context, tenantID uuid.UUID, roles ...identity.Role) ([]identity.Membership, error) {
	if len(roles) == 0 {
		return []identity.Membership{}, nil
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND role IN ?", tenantID, names))
}

func (r *GormMembershipRepository) find(query *gorm.DB) ([]identity.Membership, error) {
	var rows []models.MembershipModel
	if err := query.Order("username ASC").Find(&rows).Error; err != nil {
		return nil, wrap(err, "list memberships")
	}
	out := make([]identity.Membership, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save upserts a membership keyed by tenant and user
func (r *GormMembershipRepository) Save(ctx context.Context, m *identity.Membership) error {
	model := models.MembershipModelFromDomain(m)
	return wrap(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "role", "updated_at"}),
	}).Create(model).Error, "save membership")
}

// Ensure GormMembershipRepository implements MembershipRepository
var _ identity.MembershipRepository = (*GormMembershipRepository)(nil)
