package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/notification"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateMany inserts notifications in one batch
func (r *GormNotificationRepository) CreateMany(ctx context.Context, notifications ...*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	rows := make([]*models.NotificationModel, len(notifications))
	for i, n := range notifications {
		rows[i] = models.NotificationModelFromDomain(n)
	}
	return wrap(r.db.WithContext(ctx).Create(&rows).Error, "create notifications")
}

// ListForRecipient lists newest first; filter keys: unread
func (r *GormNotificationRepository) ListForRecipient(ctx context.Context, tenantID, recipientID uuid.UUID, filter shared.Filter) ([]notification.Notification, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("tenant_id = ? AND recipient_id = ?", tenantID, recipientID)
	if unread, ok := filter.Filters["unread"].(bool); ok && unread {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count notifications")
	}
	var rows []models.NotificationModel
	if err := query.Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list notifications")
	}
	out := make([]notification.Notification, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// CountUnread counts a recipient's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, tenantID, recipientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("tenant_id = ? AND recipient_id = ? AND read = ?", tenantID, recipientID, false).
		Count(&count).Error; err != nil {
		return 0, wrap(err, "count notifications")
	}
	return count, nil
}

// MarkRead marks one notification read. Marking an already read notification is a no-op.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, tenantID, recipientID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	var model models.NotificationModel
	if err := db.Where("tenant_id = ? AND recipient_id = ? AND id = ?", tenantID, recipientID, id).
		First(&model).Error; err != nil {
		return notFoundOr(err, "Notification", "load notification")
	}
	if model.Read {
		return nil
	}
	now := time.Now()
	return wrap(db.Model(&models.NotificationModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"read": true, "read_at": now}).Error, "mark notification read")
}

// MarkAllRead marks every unread notification of a recipient read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, tenantID, recipientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("tenant_id = ? AND recipient_id = ? AND read = ?", tenantID, recipientID, false).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now()})
	if result.Error != nil {
		return 0, wrap(result.Error, "mark notifications read")
	}
	return result.RowsAffected, nil
}

// Ensure GormNotificationRepository implements notification.Repository
var _ notification.Repository = (*GormNotificationRepository)(nil)
