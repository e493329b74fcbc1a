package inventory

import (
	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants
const (
	EventTypeLowStock      = "inventory.low_stock"
	EventTypeStockReceived = "inventory.stock_received"
)

// LowStockEvent is raised once when an item's quantity drops from above its
// reorder point to at or below it.
type LowStockEvent struct {
	shared.BaseDomainEvent
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	ItemName        string    `json:"item_name"`
	Quantity        int       `json:"quantity"`
	ReorderPoint    int       `json:"reorder_point"`
	ReferenceID     string    `json:"reference_id"`
}

// NewLowStockEvent creates a LowStockEvent from a crossing stock change
func NewLowStockEvent(change StockChange, referenceID string) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, AggregateTypeInventoryItem, change.ItemID, change.TenantID),
		InventoryItemID: change.ItemID,
		ItemName:        change.ItemName,
		Quantity:        change.Current,
		ReorderPoint:    change.ReorderPoint,
		ReferenceID:     referenceID,
	}
}

// StockReceivedEvent is raised after a shipment has been committed
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	LineCount     int `json:"line_count"`
	TotalQuantity int `json:"total_quantity"`
}

// NewStockReceivedEvent creates a StockReceivedEvent
func NewStockReceivedEvent(tenantID, shipmentID uuid.UUID, lines, quantity int) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, "Shipment", shipmentID, tenantID),
		LineCount:       lines,
		TotalQuantity:   quantity,
	}
}

// LowStockEvents converts crossing changes into events, skipping the rest
func LowStockEvents(changes []StockChange, referenceID string) []shared.DomainEvent {
	events := make([]shared.DomainEvent, 0)
	for _, c := range changes {
		if c.CrossedReorderPoint() {
			events = append(events, NewLowStockEvent(c, referenceID))
		}
	}
	return events
}
