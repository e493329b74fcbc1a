package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/notification"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// ListFilter represents filter options for the notification list
type ListFilter struct {
	Unread   bool `form:"unread"`
	Page     int  `form:"page"`
	PageSize int  `form:"page_size" binding:"omitempty,max=100"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	ReferenceID string     `json:"reference_id,omitempty"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Type:        string(n.Kind),
		Title:       n.Title,
		Message:     n.Message,
		ReferenceID: n.ReferenceID,
		Read:        n.Read,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}

// LowStockPayload describes one reorder-point crossing to notify about
type LowStockPayload struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	ItemID       uuid.UUID `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Quantity     int       `json:"quantity"`
	ReorderPoint int       `json:"reorder_point"`
	ReferenceID  string    `json:"reference_id"`
}

// LowStockNotifier delivers low-stock notifications, inline or through a queue
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, payload LowStockPayload) error
}

// Service handles in-app notifications
type Service struct {
	notifications notification.Repository
	members       identity.MembershipRepository
	logger        *zap.Logger
}

// NewService creates a new notification Service
func NewService(notifications notification.Repository, members identity.MembershipRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{notifications: notifications, members: members, logger: logger}
}

// NotifyLowStock writes one low_stock notification per privileged member
func (s *Service) NotifyLowStock(ctx context.Context, payload LowStockPayload) error {
	members, err := s.members.FindByRoles(ctx, payload.TenantID, identity.PrivilegedRoles(identity.ActionLowStockAlerts)...)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	recipients := make([]uuid.UUID, len(members))
	for i, m := range members {
		recipients[i] = m.UserID
	}
	title, message := notification.LowStockText(payload.ItemName, payload.Quantity, payload.ReorderPoint)
	notes, err := notification.Fanout(payload.TenantID, recipients, notification.KindLowStock, title, message, payload.ItemID.String())
	if err != nil {
		return err
	}
	if err := s.notifications.CreateMany(ctx, notes...); err != nil {
		return err
	}
	s.logger.Info("low stock notifications written",
		zap.String("tenant_id", payload.TenantID.String()),
		zap.String("item_id", payload.ItemID.String()),
		zap.Int("recipients", len(notes)),
	)
	return nil
}

// List returns the caller's notifications, newest first
func (s *Service) List(ctx context.Context, p identity.Principal, filter ListFilter) (shared.Paginated[NotificationResponse], error) {
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "created_at", OrderDir: "desc", Filters: map[string]interface{}{}}
	if filter.Unread {
		f.Filters["unread"] = true
	}
	f = f.Normalize()
	list, total, err := s.notifications.ListForRecipient(ctx, p.TenantID, p.UserID, f)
	if err != nil {
		return shared.Paginated[NotificationResponse]{}, err
	}
	out := make([]NotificationResponse, len(list))
	for i := range list {
		out[i] = ToNotificationResponse(&list[i])
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// UnreadCount returns how many notifications the caller has not read
func (s *Service) UnreadCount(ctx context.Context, p identity.Principal) (int64, error) {
	return s.notifications.CountUnread(ctx, p.TenantID, p.UserID)
}

// MarkRead marks one of the caller's notifications as read
func (s *Service) MarkRead(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	return s.notifications.MarkRead(ctx, p.TenantID, p.UserID, id)
}

// MarkAllRead marks every unread notification of the caller as read
func (s *Service) MarkAllRead(ctx context.Context, p identity.Principal) (int64, error) {
	return s.notifications.MarkAllRead(ctx, p.TenantID, p.UserID)
}
