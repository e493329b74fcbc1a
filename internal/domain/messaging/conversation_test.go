package messaging

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/domain/shared"
)

func TestNewConversation(t *testing.T) {
	creator := shared.Actor{UserID: uuid.New(), Username: "owner"}
	other := uuid.New()

	t.Run("creator joins and duplicates collapse", func(t *testing.T) {
		c, err := NewConversation(uuid.New(), "  Restock plan ", creator, []uuid.UUID{other, other, creator.UserID})
		require.NoError(t, err)
		assert.Equal(t, "Restock plan", c.Subject)
		assert.Equal(t, []uuid.UUID{creator.UserID, other}, c.Participants)
		assert.Nil(t, c.LastMessageAt)
	})

	t.Run("talking to yourself is refused", func(t *testing.T) {
		_, err := NewConversation(uuid.New(), "", creator, []uuid.UUID{creator.UserID})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("nil participant", func(t *testing.T) {
		_, err := NewConversation(uuid.New(), "", creator, []uuid.UUID{uuid.Nil})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("subject length", func(t *testing.T) {
		_, err := NewConversation(uuid.New(), strings.Repeat("s", MaxSubjectLength+1), creator, []uuid.UUID{other})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestConversation_Post(t *testing.T) {
	creator := shared.Actor{UserID: uuid.New(), Username: "owner"}
	c, err := NewConversation(uuid.New(), "", creator, []uuid.UUID{uuid.New()})
	require.NoError(t, err)

	m, err := c.Post(creator, " Cables arrive Monday ")
	require.NoError(t, err)
	assert.Equal(t, "Cables arrive Monday", m.Body)
	assert.Equal(t, c.ID, m.ConversationID)
	assert.Equal(t, "owner", m.SenderName)
	require.NotNil(t, c.LastMessageAt)
	assert.Equal(t, m.CreatedAt, *c.LastMessageAt)

	_, err = c.Post(shared.Actor{UserID: uuid.New()}, "hello")
	assert.True(t, errors.Is(err, shared.ErrPermissionDenied))

	_, err = c.Post(creator, "   ")
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = c.Post(creator, strings.Repeat("x", MaxBodyLength+1))
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
