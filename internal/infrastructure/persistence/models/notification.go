package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/notification"
)

// NotificationModel is one in-app notification addressed to a member
type NotificationModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_recipient,priority:1"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_recipient,priority:2"`
	Kind        string    `gorm:"type:varchar(30);not null"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Message     string    `gorm:"type:varchar(1000)"`
	ReferenceID string    `gorm:"type:varchar(100)"`
	Read        bool      `gorm:"not null;default:false"`
	ReadAt      *time.Time
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		ID:          m.ID,
		TenantID:    m.TenantID,
		RecipientID: m.RecipientID,
		Kind:        notification.Kind(m.Kind),
		Title:       m.Title,
		Message:     m.Message,
		ReferenceID: m.ReferenceID,
		Read:        m.Read,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:          n.ID,
		TenantID:    n.TenantID,
		RecipientID: n.RecipientID,
		Kind:        string(n.Kind),
		Title:       n.Title,
		Message:     n.Message,
		ReferenceID: n.ReferenceID,
		Read:        n.Read,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}
