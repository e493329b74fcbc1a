package messaging

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/shared"
)

const (
	MaxSubjectLength = 200
	MaxBodyLength    = 4000
)

// Conversation is an internal thread between members of one tenant
type Conversation struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Subject       string
	Participants  []uuid.UUID
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	LastMessageAt *time.Time
}

// Message is one post in a conversation
type Message struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	SenderName     string
	Body           string
	CreatedAt      time.Time
}

// NewConversation opens a thread. The creator is always a participant and at
// least one other member must be addressed.
func NewConversation(tenantID uuid.UUID, subject string, creator shared.Actor, others []uuid.UUID) (*Conversation, error) {
	subject = strings.TrimSpace(subject)
	if utf8.RuneCountInString(subject) > MaxSubjectLength {
		return nil, shared.NewValidationError("Subject is too long")
	}
	participants := []uuid.UUID{creator.UserID}
	seen := map[uuid.UUID]struct{}{creator.UserID: {}}
	for _, id := range others {
		if id == uuid.Nil {
			return nil, shared.NewValidationError("Participant id cannot be empty")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		participants = append(participants, id)
	}
	if len(participants) < 2 {
		return nil, shared.NewValidationError("A conversation needs at least one other participant")
	}
	return &Conversation{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Subject:      subject,
		Participants: participants,
		CreatedBy:    creator.UserID,
		CreatedAt:    time.Now(),
	}, nil
}

// HasParticipant reports whether userID belongs to the conversation
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Post appends a message from sender, who must be a participant
func (c *Conversation) Post(sender shared.Actor, body string) (*Message, error) {
	if !c.HasParticipant(sender.UserID) {
		return nil, shared.ErrPermissionDenied.WithDetail("conversation_id", c.ID.String())
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewValidationError("Message cannot be empty")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, shared.NewValidationError("Message is too long")
	}
	now := time.Now()
	c.LastMessageAt = &now
	return &Message{
		ID:             uuid.New(),
		TenantID:       c.TenantID,
		ConversationID: c.ID,
		SenderID:       sender.UserID,
		SenderName:     sender.Username,
		Body:           body,
		CreatedAt:      now,
	}, nil
}

// Repository persists conversations and their messages
type Repository interface {
	Create(ctx context.Context, c *Conversation) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Conversation, error)
	// ListForParticipant lists conversations userID takes part in, most recently active first
	ListForParticipant(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]Conversation, int64, error)
	// AddMessage stores m and advances the conversation's last activity
	AddMessage(ctx context.Context, c *Conversation, m *Message) error
	// ListMessages lists oldest first
	ListMessages(ctx context.Context, tenantID, conversationID uuid.UUID, filter shared.Filter) ([]Message, int64, error)
}
