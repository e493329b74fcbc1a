package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// LowStockHandler turns inventory.low_stock events into notifications.
// Delivery failures are logged and swallowed; the stock change already committed.
type LowStockHandler struct {
	notifier LowStockNotifier
	logger   *zap.Logger
}

// NewLowStockHandler creates a handler delivering through notifier
func NewLowStockHandler(notifier LowStockNotifier, logger *zap.Logger) *LowStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStock}
}

// Handle processes a LowStockEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*inventory.LowStockEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", inventory.EventTypeLowStock, event.EventType())
	}

	h.logger.Warn("stock reached reorder point",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("item_id", lowStock.InventoryItemID.String()),
		zap.Int("quantity", lowStock.Quantity),
		zap.Int("reorder_point", lowStock.ReorderPoint),
	)

	payload := LowStockPayload{
		TenantID:     event.TenantID(),
		ItemID:       lowStock.InventoryItemID,
		ItemName:     lowStock.ItemName,
		Quantity:     lowStock.Quantity,
		ReorderPoint: lowStock.ReorderPoint,
		ReferenceID:  lowStock.ReferenceID,
	}
	if err := h.notifier.NotifyLowStock(ctx, payload); err != nil {
		h.logger.Error("low stock notification failed",
			zap.String("item_id", lowStock.InventoryItemID.String()),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
