package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/messaging"
)

// ConversationModel is an internal thread between members
type ConversationModel struct {
	ID            uuid.UUID                      `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID                      `gorm:"type:uuid;not null;index"`
	Subject       string                         `gorm:"type:varchar(200)"`
	CreatedBy     uuid.UUID                      `gorm:"type:uuid;not null"`
	CreatedAt     time.Time                      `gorm:"not null"`
	LastMessageAt *time.Time                     `gorm:"index"`
	Participants  []ConversationParticipantModel `gorm:"foreignKey:ConversationID;references:ID"`
}

// TableName returns the table name for GORM
func (ConversationModel) TableName() string {
	return "conversations"
}

// ConversationParticipantModel links a member to a conversation
type ConversationParticipantModel struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_conversation_participants_user,priority:2"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index:idx_conversation_participants_user,priority:1"`
	Position       int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConversationParticipantModel) TableName() string {
	return "conversation_participants"
}

// MessageModel is one post in a conversation
type MessageModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation,priority:1"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	SenderName     string    `gorm:"type:varchar(100)"`
	Body           string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null;index:idx_messages_conversation,priority:2"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the persistence model to a domain Conversation.
// Participants keep the order they were added in.
func (m *ConversationModel) ToDomain() *messaging.Conversation {
	participants := make([]uuid.UUID, len(m.Participants))
	for _, p := range m.Participants {
		if p.Position >= 0 && p.Position < len(participants) {
			participants[p.Position] = p.UserID
		}
	}
	return &messaging.Conversation{
		ID:            m.ID,
		TenantID:      m.TenantID,
		Subject:       m.Subject,
		Participants:  participants,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		LastMessageAt: m.LastMessageAt,
	}
}

// ConversationModelFromDomain creates a new persistence model from a domain Conversation.
func ConversationModelFromDomain(c *messaging.Conversation) *ConversationModel {
	m := &ConversationModel{
		ID:            c.ID,
		TenantID:      c.TenantID,
		Subject:       c.Subject,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
		LastMessageAt: c.LastMessageAt,
		Participants:  make([]ConversationParticipantModel, len(c.Participants)),
	}
	for i, id := range c.Participants {
		m.Participants[i] = ConversationParticipantModel{
			ConversationID: c.ID,
			UserID:         id,
			TenantID:       c.TenantID,
			Position:       i,
		}
	}
	return m
}

// ToDomain converts the persistence model to a domain Message.
func (m *MessageModel) ToDomain() messaging.Message {
	return messaging.Message{
		ID:             m.ID,
		TenantID:       m.TenantID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
	}
}

// MessageModelFromDomain creates a new persistence model from a domain Message.
func MessageModelFromDomain(msg *messaging.Message) *MessageModel {
	return &MessageModel{
		ID:             msg.ID,
		TenantID:       msg.TenantID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		SenderName:     msg.SenderName,
		Body:           msg.Body,
		CreatedAt:      msg.CreatedAt,
	}
}
