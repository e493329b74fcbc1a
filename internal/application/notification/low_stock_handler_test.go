package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/shared"
)

type fakeNotifier struct {
	payloads []LowStockPayload
	err      error
}

func (f *fakeNotifier) NotifyLowStock(_ context.Context, p LowStockPayload) error {
	f.payloads = append(f.payloads, p)
	return f.err
}

func lowStockEvent() *inventory.LowStockEvent {
	return inventory.NewLowStockEvent(inventory.StockChange{
		ItemID:       uuid.New(),
		TenantID:     uuid.New(),
		ItemName:     "Charger",
		Previous:     6,
		Current:      4,
		ReorderPoint: 5,
	}, "INV-2026-0007")
}

func TestLowStockHandler_Handle(t *testing.T) {
	t.Run("forwards payload", func(t *testing.T) {
		n := &fakeNotifier{}
		h := NewLowStockHandler(n, zap.NewNop())
		ev := lowStockEvent()

		require.NoError(t, h.Handle(context.Background(), ev))

		require.Len(t, n.payloads, 1)
		assert.Equal(t, ev.InventoryItemID, n.payloads[0].ItemID)
		assert.Equal(t, 4, n.payloads[0].Quantity)
		assert.Equal(t, "INV-2026-0007", n.payloads[0].ReferenceID)
	})

	t.Run("delivery failure is swallowed", func(t *testing.T) {
		n := &fakeNotifier{err: errors.New("redis down")}
		h := NewLowStockHandler(n, zap.NewNop())

		assert.NoError(t, h.Handle(context.Background(), lowStockEvent()))
	})

	t.Run("wrong event type", func(t *testing.T) {
		h := NewLowStockHandler(&fakeNotifier{}, zap.NewNop())
		other := shared.NewBaseDomainEvent("invoice.created", "Invoice", uuid.New(), uuid.New())

		assert.Error(t, h.Handle(context.Background(), &other))
	})
}
