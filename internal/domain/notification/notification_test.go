package notification

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/domain/shared"
)

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		n, err := New(uuid.New(), uuid.New(), KindLowStock, " Low stock: Cable ", "", "INV-2026-0001")
		require.NoError(t, err)
		assert.Equal(t, "Low stock: Cable", n.Title)
		assert.False(t, n.Read)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := New(uuid.New(), uuid.New(), "promo", "x", "", "")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("missing recipient", func(t *testing.T) {
		_, err := New(uuid.New(), uuid.Nil, KindLowStock, "x", "", "")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestMarkRead(t *testing.T) {
	n, err := New(uuid.New(), uuid.New(), KindInvoiceCreated, "New invoice", "", "")
	require.NoError(t, err)

	n.MarkRead()
	first := *n.ReadAt
	n.MarkRead()

	assert.True(t, n.Read)
	assert.Equal(t, first, *n.ReadAt)
}

func TestFanout_DeduplicatesRecipients(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	out, err := Fanout(uuid.New(), []uuid.UUID{a, b, a}, KindLowStock, "Low stock", "", "ref")

	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestLowStockText(t *testing.T) {
	title, msg := LowStockText("HDMI Cable", 2, 5)
	assert.Equal(t, "Low stock: HDMI Cable", title)
	assert.Equal(t, "HDMI Cable is down to 2 units (reorder point 5)", msg)
}

func TestMessageText(t *testing.T) {
	title, msg := MessageText("dana", "Restock", "Cables arrive Monday")
	assert.Equal(t, "New message from dana: Restock", title)
	assert.Equal(t, "Cables arrive Monday", msg)

	title, msg = MessageText("dana", "", strings.Repeat("a", 300))
	assert.Equal(t, "New message from dana", title)
	assert.Len(t, []rune(msg), 143)
}
