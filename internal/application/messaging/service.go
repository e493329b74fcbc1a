package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/messaging"
	"github.com/retailops/backoffice/internal/domain/notification"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// StartConversationRequest opens a thread with other members
type StartConversationRequest struct {
	Subject        string      `json:"subject" binding:"max=200"`
	ParticipantIDs []uuid.UUID `json:"participant_ids" binding:"required,min=1,max=50"`
	Message        string      `json:"message" binding:"max=4000"`
}

// PostMessageRequest is a reply in a conversation
type PostMessageRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// ListFilter represents paging options for conversations and messages
type ListFilter struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size" binding:"omitempty,max=100"`
}

// ConversationResponse represents a conversation in API responses
type ConversationResponse struct {
	ID            uuid.UUID   `json:"id"`
	Subject       string      `json:"subject,omitempty"`
	Participants  []uuid.UUID `json:"participants"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	CreatedAt     time.Time   `json:"created_at"`
	LastMessageAt *time.Time  `json:"last_message_at,omitempty"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToConversationResponse converts a domain conversation
func ToConversationResponse(c *messaging.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:            c.ID,
		Subject:       c.Subject,
		Participants:  c.Participants,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
		LastMessageAt: c.LastMessageAt,
	}
}

// ToMessageResponse converts a domain message
func ToMessageResponse(m *messaging.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

// Service handles internal conversations between members of a tenant
type Service struct {
	conversations messaging.Repository
	members       identity.MembershipRepository
	notifications notification.Repository
	logger        *zap.Logger
}

// NewService creates a new messaging Service
func NewService(conversations messaging.Repository, members identity.MembershipRepository, notifications notification.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{conversations: conversations, members: members, notifications: notifications, logger: logger}
}

// Start opens a conversation with other members of the caller's tenant and
// optionally posts the first message.
func (s *Service) Start(ctx context.Context, p identity.Principal, req StartConversationRequest) (*ConversationResponse, error) {
	if err := p.Authorize(identity.ActionMessageSend); err != nil {
		return nil, err
	}
	for _, id := range req.ParticipantIDs {
		if _, err := s.members.FindByUser(ctx, p.TenantID, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("Participant is not a member of this organization").
					WithDetail("user_id", id.String())
			}
			return nil, err
		}
	}
	c, err := messaging.NewConversation(p.TenantID, req.Subject, p.Actor(), req.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	var first *messaging.Message
	if req.Message != "" {
		if first, err = c.Post(p.Actor(), req.Message); err != nil {
			return nil, err
		}
	}
	if err := s.conversations.Create(ctx, c); err != nil {
		return nil, err
	}
	if first != nil {
		if err := s.conversations.AddMessage(ctx, c, first); err != nil {
			return nil, err
		}
		s.notifyParticipants(ctx, c, first)
	}

	s.logger.Info("conversation started",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("conversation_id", c.ID.String()),
		zap.Int("participants", len(c.Participants)),
	)
	resp := ToConversationResponse(c)
	return &resp, nil
}

// List returns the caller's conversations, most recently active first
func (s *Service) List(ctx context.Context, p identity.Principal, filter ListFilter) (shared.Paginated[ConversationResponse], error) {
	if err := p.Authorize(identity.ActionMessageSend); err != nil {
		return shared.Paginated[ConversationResponse]{}, err
	}
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	list, total, err := s.conversations.ListForParticipant(ctx, p.TenantID, p.UserID, f)
	if err != nil {
		return shared.Paginated[ConversationResponse]{}, err
	}
	out := make([]ConversationResponse, len(list))
	for i := range list {
		out[i] = ToConversationResponse(&list[i])
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// GetByID returns a conversation the caller takes part in
func (s *Service) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*ConversationResponse, error) {
	c, err := s.participating(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := ToConversationResponse(c)
	return &resp, nil
}

// Messages lists a conversation's messages, oldest first
func (s *Service) Messages(ctx context.Context, p identity.Principal, id uuid.UUID, filter ListFilter) (shared.Paginated[MessageResponse], error) {
	if _, err := s.participating(ctx, p, id); err != nil {
		return shared.Paginated[MessageResponse]{}, err
	}
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	list, total, err := s.conversations.ListMessages(ctx, p.TenantID, id, f)
	if err != nil {
		return shared.Paginated[MessageResponse]{}, err
	}
	out := make([]MessageResponse, len(list))
	for i := range list {
		out[i] = ToMessageResponse(&list[i])
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// Post adds the caller's message to a conversation
func (s *Service) Post(ctx context.Context, p identity.Principal, id uuid.UUID, req PostMessageRequest) (*MessageResponse, error) {
	c, err := s.participating(ctx, p, id)
	if err != nil {
		return nil, err
	}
	m, err := c.Post(p.Actor(), req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.conversations.AddMessage(ctx, c, m); err != nil {
		return nil, err
	}
	s.notifyParticipants(ctx, c, m)
	resp := ToMessageResponse(m)
	return &resp, nil
}

// participating loads a conversation and hides it from members outside it
func (s *Service) participating(ctx context.Context, p identity.Principal, id uuid.UUID) (*messaging.Conversation, error) {
	if err := p.Authorize(identity.ActionMessageSend); err != nil {
		return nil, err
	}
	c, err := s.conversations.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(p.UserID) {
		return nil, shared.NewNotFoundError("Conversation")
	}
	return c, nil
}

// notifyParticipants tells everyone but the sender. Failures are logged and
// never undo the stored message.
func (s *Service) notifyParticipants(ctx context.Context, c *messaging.Conversation, m *messaging.Message) {
	if s.notifications == nil {
		return
	}
	recipients := make([]uuid.UUID, 0, len(c.Participants))
	for _, id := range c.Participants {
		if id != m.SenderID {
			recipients = append(recipients, id)
		}
	}
	title, body := notification.MessageText(m.SenderName, c.Subject, m.Body)
	notes, err := notification.Fanout(c.TenantID, recipients, notification.KindMessage, title, body, c.ID.String())
	if err == nil {
		err = s.notifications.CreateMany(ctx, notes...)
	}
	if err != nil {
		s.logger.Warn("failed to notify conversation participants",
			zap.String("conversation_id", c.ID.String()),
			zap.Error(err),
		)
	}
}
