package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/inventory"
)

// CreateItemRequest represents a request to create an inventory item
type CreateItemRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Category       string          `json:"category" binding:"max=100"`
	Brand          string          `json:"brand" binding:"max=100"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	Quantity       int             `json:"quantity" binding:"gte=0"`
	ReorderPoint   int             `json:"reorder_point" binding:"gte=0"`
	Status         string          `json:"status" binding:"omitempty,oneof=Available AwaitingInspection Damaged ForRepair"`
	WarrantyPeriod string          `json:"warranty_period" binding:"max=50"`
}

// UpdateItemRequest replaces the descriptive fields of an item.
// Quantity and cost price are not accepted here.
type UpdateItemRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Category       string          `json:"category" binding:"max=100"`
	Brand          string          `json:"brand" binding:"max=100"`
	Price          decimal.Decimal `json:"price"`
	ReorderPoint   int             `json:"reorder_point" binding:"gte=0"`
	Status         string          `json:"status" binding:"omitempty,oneof=Available AwaitingInspection Damaged ForRepair"`
	WarrantyPeriod string          `json:"warranty_period" binding:"max=50"`
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}

// ShipmentLineRequest is one purchased line of a shipment
type ShipmentLineRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Category       string          `json:"category" binding:"max=100"`
	Brand          string          `json:"brand" binding:"max=100"`
	Quantity       int             `json:"quantity" binding:"required,gt=0"`
	UnitCostPrice  decimal.Decimal `json:"unit_cost_price"`
	ReorderPoint   int             `json:"reorder_point" binding:"gte=0"`
	WarrantyPeriod string          `json:"warranty_period" binding:"max=50"`
}

// ShipmentRequest is the input for preview and receive
type ShipmentRequest struct {
	Lines         []ShipmentLineRequest `json:"lines" binding:"required,min=1,dive"`
	TransportCost decimal.Decimal       `json:"transport_cost"`
	OtherExpenses decimal.Decimal       `json:"other_expenses"`
	TargetProfit  decimal.Decimal       `json:"target_profit"`
	SupplierID    *uuid.UUID            `json:"supplier_id"`
}

func (r ShipmentRequest) costLines() []inventory.CostLine {
	lines := make([]inventory.CostLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = inventory.CostLine{Quantity: l.Quantity, UnitCostPrice: l.UnitCostPrice}
	}
	return lines
}

func (r ShipmentRequest) costs() inventory.ShipmentCosts {
	return inventory.ShipmentCosts{
		TransportCost: r.TransportCost,
		OtherExpenses: r.OtherExpenses,
		TargetProfit:  r.TargetProfit,
	}
}

// ListFilter represents filter options for the item list
type ListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Brand    string `form:"brand"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name category quantity price created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Brand          string          `json:"brand"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	ReorderPoint   int             `json:"reorder_point"`
	IsLowStock     bool            `json:"is_low_stock"`
	Status         string          `json:"status"`
	WarrantyPeriod string          `json:"warranty_period"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToItemResponse converts a domain item
func ToItemResponse(i *inventory.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:             i.ID,
		TenantID:       i.TenantID,
		Name:           i.Name,
		Category:       i.Category,
		Brand:          i.Brand,
		Quantity:       i.Quantity,
		Price:          i.Price,
		CostPrice:      i.CostPrice,
		ReorderPoint:   i.ReorderPoint,
		IsLowStock:     i.IsLowStock(),
		Status:         string(i.Status),
		WarrantyPeriod: i.WarrantyPeriod,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
		Version:        i.Version,
	}
}

// MovementResponse represents one stock ledger entry.
// Quantity is the magnitude; SignedQuantity and Direction carry the sign.
type MovementResponse struct {
	ID              uuid.UUID `json:"id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	Type            string    `json:"type"`
	Quantity        int       `json:"quantity"`
	SignedQuantity  int       `json:"signed_quantity"`
	Direction       string    `json:"direction"`
	ReferenceID     string    `json:"reference_id"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedBy       uuid.UUID `json:"created_by"`
	CreatedByName   string    `json:"created_by_name"`
}

// ToMovementResponse converts a domain movement
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		InventoryItemID: m.InventoryItemID,
		Type:            string(m.Type),
		Quantity:        m.Magnitude(),
		SignedQuantity:  m.Quantity,
		Direction:       string(m.Direction()),
		ReferenceID:     m.ReferenceID,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
		CreatedByName:   m.CreatedByName,
	}
}

// ShipmentLineResult pairs a calculated line with the item it landed on
type ShipmentLineResult struct {
	inventory.LineCost
	Name    string          `json:"name"`
	ItemID  uuid.UUID       `json:"item_id"`
	Merged  bool            `json:"merged"`
	NewCost decimal.Decimal `json:"new_cost_price"`
}

// ShipmentResponse is returned by preview (without items) and receive
type ShipmentResponse struct {
	inventory.LandedCostResult
	Received []ShipmentLineResult `json:"received,omitempty"`
}
