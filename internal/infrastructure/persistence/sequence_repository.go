package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormSequenceRepository issues document numbers from a counter row.
// The upsert takes the row lock, so two transactions can never read the same
// value, and a rolled-back transaction gives its number back.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments and returns the counter for (tenant, prefix, year)
func (r *GormSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, prefix string, year int) (int64, error) {
	db := r.db.WithContext(ctx)
	row := models.DocumentSequenceModel{TenantID: tenantID, Prefix: prefix, Year: year, LastValue: 1}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "prefix"}, {Name: "year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("document_sequences.last_value + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, wrap(err, "allocate document number")
	}

	var current models.DocumentSequenceModel
	if err := db.Where("tenant_id = ? AND prefix = ? AND year = ?", tenantID, prefix, year).
		First(&current).Error; err != nil {
		return 0, wrap(err, "read document number")
	}
	return current.LastValue, nil
}

// Ensure GormSequenceRepository implements SequenceRepository
var _ shared.SequenceRepository = (*GormSequenceRepository)(nil)
