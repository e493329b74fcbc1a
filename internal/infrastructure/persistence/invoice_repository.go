package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailops/backoffice/internal/domain/invoice"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements InvoiceRepository using GORM.
// Lines are stored as a replaceable set, payments as insert-only rows.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines").Preload("Payments")
}

// FindByID loads an invoice with its lines and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withChildren(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Invoice", "load invoice")
	}
	return model.ToDomain(), nil
}

// FindByNumber loads an invoice by its human-readable number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withChildren(ctx).
		Where("tenant_id = ? AND number = ?", tenantID, strings.ToUpper(strings.TrimSpace(number))).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Invoice", "load invoice")
	}
	return model.ToDomain(), nil
}

// FindAll lists invoices; filter keys: status, customer_id, from, to
func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]invoice.Invoice, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count invoices")
	}
	var rows []models.InvoiceModel
	if err := applyPaging(query.Preload("Lines").Preload("Payments"), filter, InvoiceSortFields, "created_at").
		Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list invoices")
	}
	return invoicesToDomain(rows), total, nil
}

// FindCreatedBetween lists invoices created in [from, to), any status
func (r *GormInvoiceRepository) FindCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]invoice.Invoice, error) {
	var rows []models.InvoiceModel
	if err := r.withChildren(ctx).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, from, to).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, wrap(err, "list invoices")
	}
	return invoicesToDomain(rows), nil
}

// FindUnsettled lists non-cancelled invoices that are not fully paid, created before asOf
func (r *GormInvoiceRepository) FindUnsettled(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]invoice.Invoice, error) {
	var rows []models.InvoiceModel
	if err := r.withChildren(ctx).
		Where("tenant_id = ? AND status IN ? AND created_at <= ?", tenantID,
			[]string{string(invoice.StatusUnpaid), string(invoice.StatusPartiallyPaid)}, asOf).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, wrap(err, "list unsettled invoices")
	}
	return invoicesToDomain(rows), nil
}

// Create inserts a new invoice with its lines and payments
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return wrap(err, "create invoice")
	}
	if len(model.Lines) > 0 {
		if err := db.Create(&model.Lines).Error; err != nil {
			return wrap(err, "create invoice lines")
		}
	}
	if len(model.Payments) > 0 {
		if err := db.Create(&model.Payments).Error; err != nil {
			return wrap(err, "create invoice payments")
		}
	}
	return nil
}

// Save persists header, lines and new payments. The header update only
// succeeds against the version the invoice was loaded with; the version is
// then bumped on both the row and the aggregate.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", inv.TenantID, inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"customer_id":     model.CustomerID,
			"customer_name":   model.CustomerName,
			"customer_phone":  model.CustomerPhone,
			"status":          model.Status,
			"discount_type":   model.DiscountType,
			"discount_value":  model.DiscountValue,
			"subtotal":        model.Subtotal,
			"discount_amount": model.DiscountAmount,
			"total":           model.Total,
			"amount_paid":     model.AmountPaid,
			"amount_due":      model.AmountDue,
			"cancelled_at":    model.CancelledAt,
			"version":         inv.Version + 1,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return wrap(result.Error, "update invoice")
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithDetail("invoice_id", inv.ID.String())
	}

	if err := db.Where("tenant_id = ? AND invoice_id = ?", inv.TenantID, inv.ID).
		Delete(&models.InvoiceLineModel{}).Error; err != nil {
		return wrap(err, "replace invoice lines")
	}
	if len(model.Lines) > 0 {
		if err := db.Create(&model.Lines).Error; err != nil {
			return wrap(err, "replace invoice lines")
		}
	}
	if len(model.Payments) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Payments).Error; err != nil {
			return wrap(err, "record invoice payments")
		}
	}
	inv.IncrementVersion()
	return nil
}

// applyFilter applies search and filter keys: status, customer_id, from, to
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?)", like, like, like)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at < ?", value)
		}
	}
	return query
}

func invoicesToDomain(rows []models.InvoiceModel) []invoice.Invoice {
	out := make([]invoice.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)
