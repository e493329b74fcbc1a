package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailops/backoffice/internal/domain/messaging"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
)

// GormConversationRepository implements messaging.Repository using GORM
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GormConversationRepository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// Create inserts a conversation with its participants
func (r *GormConversationRepository) Create(ctx context.Context, c *messaging.Conversation) error {
	model := models.ConversationModelFromDomain(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return wrap(err, "create conversation")
		}
		return wrap(tx.Create(&model.Participants).Error, "create conversation participants")
	})
}

// FindByID loads a conversation with its participants
func (r *GormConversationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*messaging.Conversation, error) {
	var model models.ConversationModel
	if err := r.db.WithContext(ctx).Preload("Participants").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Conversation", "load conversation")
	}
	return model.ToDomain(), nil
}

// ListForParticipant lists the conversations userID takes part in, most recently active first
func (r *GormConversationRepository) ListForParticipant(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]messaging.Conversation, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ConversationModel{}).
		Where("conversations.tenant_id = ?", tenantID).
		Where("EXISTS (SELECT 1 FROM conversation_participants cp WHERE cp.conversation_id = conversations.id AND cp.tenant_id = ? AND cp.user_id = ?)", tenantID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count conversations")
	}
	var rows []models.ConversationModel
	if err := query.Preload("Participants").
		Order("COALESCE(conversations.last_message_at, conversations.created_at) DESC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list conversations")
	}
	out := make([]messaging.Conversation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// AddMessage stores a message and advances the conversation's last activity
func (r *GormConversationRepository) AddMessage(ctx context.Context, c *messaging.Conversation, m *messaging.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ConversationModel{}).
			Where("tenant_id = ? AND id = ?", c.TenantID, c.ID).
			Update("last_message_at", m.CreatedAt)
		if result.Error != nil {
			return wrap(result.Error, "touch conversation")
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("Conversation")
		}
		return wrap(tx.Create(models.MessageModelFromDomain(m)).Error, "create message")
	})
}

// ListMessages lists a conversation's messages, oldest first
func (r *GormConversationRepository) ListMessages(ctx context.Context, tenantID, conversationID uuid.UUID, filter shared.Filter) ([]messaging.Message, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Where("tenant_id = ? AND conversation_id = ?", tenantID, conversationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count messages")
	}
	var rows []models.MessageModel
	if err := query.Order("created_at ASC").
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, wrap(err, "list messages")
	}
	out := make([]messaging.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormConversationRepository implements messaging.Repository
var _ messaging.Repository = (*GormConversationRepository)(nil)
