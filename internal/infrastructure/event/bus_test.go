package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/testutil"
)

const lowStock = "inventory.low_stock"

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panickingHandler) EventTypes() []string                             { return []string{lowStock} }

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to typed and wildcard handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		typed := testutil.NewMockEventHandler(lowStock)
		other := testutil.NewMockEventHandler("invoice.created")
		all := testutil.NewMockEventHandler()
		bus.Subscribe(typed)
		bus.Subscribe(other)
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(ctx,
			testutil.NewTestEvent(lowStock, uuid.New()),
			testutil.NewTestEvent(lowStock, uuid.New()),
		))
		assert.Equal(t, 2, typed.HandledCount())
		assert.Equal(t, 0, other.HandledCount())
		assert.Equal(t, 2, all.HandledCount())
	})

	t.Run("handler failures are logged, not returned", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))
		failing := testutil.NewMockEventHandler(lowStock)
		failing.SetError(errors.New("smtp down"))
		next := testutil.NewMockEventHandler(lowStock)
		bus.Subscribe(failing)
		bus.Subscribe(panickingHandler{})
		bus.Subscribe(next)

		require.NoError(t, bus.Publish(ctx, testutil.NewTestEvent(lowStock, uuid.New())))
		assert.Equal(t, 1, next.HandledCount(), "later handlers still run")
		assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
	})

	t.Run("stopped bus drops events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := testutil.NewMockEventHandler(lowStock)
		bus.Subscribe(h)
		require.NoError(t, bus.Start(ctx))
		require.NoError(t, bus.Stop(ctx))

		require.NoError(t, bus.Publish(ctx, testutil.NewTestEvent(lowStock, uuid.New())))
		assert.Equal(t, 0, h.HandledCount())

		require.NoError(t, bus.Start(ctx))
		require.NoError(t, bus.Publish(ctx, testutil.NewTestEvent(lowStock, uuid.New())))
		assert.Equal(t, 1, h.HandledCount())
	})

	t.Run("unsubscribe", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := testutil.NewMockEventHandler(lowStock)
		bus.Subscribe(h)
		bus.Unsubscribe(h)
		require.NoError(t, bus.Publish(ctx, testutil.NewTestEvent(lowStock, uuid.New())))
		assert.Equal(t, 0, h.HandledCount())
	})
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	created := testutil.NewMockEventHandler()
	wildcard := testutil.NewMockEventHandler()

	registry.Register(created, "invoice.created", "invoice.cancelled")
	registry.Register(created, "invoice.created")
	registry.Register(wildcard)

	handlers := registry.GetHandlers("invoice.created")
	require.Len(t, handlers, 2, "duplicate registration is ignored")
	assert.Same(t, created, handlers[0])
	assert.Same(t, wildcard, handlers[1])
	assert.Equal(t, []string{"invoice.cancelled", "invoice.created"}, registry.EventTypes())

	registry.Unregister(created)
	assert.Len(t, registry.GetHandlers("invoice.created"), 1)
	assert.Empty(t, registry.EventTypes())

	registry.Unregister(wildcard)
	assert.Empty(t, registry.GetHandlers("anything"))
}
