package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// ItemStatus describes the physical condition of stocked goods
type ItemStatus string

const (
	ItemStatusAvailable          ItemStatus = "Available"
	ItemStatusAwaitingInspection ItemStatus = "AwaitingInspection"
	ItemStatusDamaged            ItemStatus = "Damaged"
	ItemStatusForRepair          ItemStatus = "ForRepair"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusAwaitingInspection, ItemStatusDamaged, ItemStatusForRepair:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// ItemDetails are the descriptive, freely editable fields of an item.
// Quantity and cost price are deliberately absent: they only change through stock operations.
type ItemDetails struct {
	Name           string
	Category       string
	Brand          string
	Price          decimal.Decimal
	ReorderPoint   int
	Status         ItemStatus
	WarrantyPeriod string
}

// Validate checks the descriptive fields
func (d ItemDetails) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewValidationError("Item name cannot be empty")
	}
	if len(d.Name) > 200 {
		return shared.NewValidationError("Item name cannot exceed 200 characters")
	}
	if d.Price.IsNegative() {
		return shared.NewValidationError("Price cannot be negative")
	}
	if d.ReorderPoint < 0 {
		return shared.NewValidationError("Reorder point cannot be negative")
	}
	if d.Status != "" && !d.Status.IsValid() {
		return shared.NewValidationError("Invalid item status: " + string(d.Status))
	}
	return nil
}

// InventoryItem is the current stock position of one sellable item in a tenant.
// Quantity always equals the signed sum of the item's stock movements.
type InventoryItem struct {
	shared.TenantAggregateRoot
	Name           string
	NameKey        string
	Category       string
	Brand          string
	Quantity       int
	Price          decimal.Decimal
	CostPrice      decimal.Decimal
	ReorderPoint   int
	Status         ItemStatus
	WarrantyPeriod string
	CreatedBy      uuid.UUID
}

// NameKey folds an item name into the key used to match shipment lines to existing items
func NameKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// NewInventoryItem creates an item holding initialQuantity units at costPrice.
// The caller records the matching addition movement.
func NewInventoryItem(tenantID uuid.UUID, details ItemDetails, costPrice decimal.Decimal, initialQuantity int, createdBy uuid.UUID) (*InventoryItem, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if costPrice.IsNegative() {
		return nil, shared.NewValidationError("Cost price cannot be negative")
	}
	if initialQuantity < 0 {
		return nil, shared.NewValidationError("Initial quantity cannot be negative")
	}
	if details.Status == "" {
		details.Status = ItemStatusAvailable
	}

	item := &InventoryItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CostPrice:           costPrice.Round(4),
		Quantity:            initialQuantity,
		CreatedBy:           createdBy,
	}
	item.applyDetails(details)
	return item, nil
}

func (i *InventoryItem) applyDetails(d ItemDetails) {
	i.Name = strings.TrimSpace(d.Name)
	i.NameKey = NameKey(d.Name)
	i.Category = strings.TrimSpace(d.Category)
	i.Brand = strings.TrimSpace(d.Brand)
	i.Price = d.Price
	i.ReorderPoint = d.ReorderPoint
	i.Status = d.Status
	i.WarrantyPeriod = strings.TrimSpace(d.WarrantyPeriod)
}

// UpdateDetails replaces the descriptive fields
func (i *InventoryItem) UpdateDetails(d ItemDetails) error {
	if d.Status == "" {
		d.Status = i.Status
	}
	if err := d.Validate(); err != nil {
		return err
	}
	i.applyDetails(d)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// ReceiveStock adds quantity units bought at landedCost and recomputes the
// weighted-average cost: (oldQty*oldCost + qty*landedCost) / (oldQty+qty).
func (i *InventoryItem) ReceiveStock(quantity int, landedCost decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewValidationError("Received quantity must be positive")
	}
	if landedCost.IsNegative() {
		return shared.NewValidationError("Landed cost cannot be negative")
	}
	i.CostPrice = WeightedAverageCost(i.Quantity, i.CostPrice, quantity, landedCost)
	i.Quantity += quantity
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// WeightedAverageCost merges an incoming lot into an existing stock position
func WeightedAverageCost(oldQty int, oldCost decimal.Decimal, newQty int, newCost decimal.Decimal) decimal.Decimal {
	if oldQty <= 0 {
		return newCost.Round(4)
	}
	oq := decimal.NewFromInt(int64(oldQty))
	nq := decimal.NewFromInt(int64(newQty))
	totalValue := oq.Mul(oldCost).Add(nq.Mul(newCost))
	return totalValue.Div(oq.Add(nq)).Round(4)
}

// IsLowStock reports whether the item currently sits at or below its reorder point
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.ReorderPoint
}

// StockChange is the before/after view of one quantity mutation
type StockChange struct {
	ItemID       uuid.UUID
	TenantID     uuid.UUID
	ItemName     string
	Previous     int
	Current      int
	ReorderPoint int
}

// Delta returns the signed quantity change
func (c StockChange) Delta() int {
	return c.Current - c.Previous
}

// CrossedReorderPoint is true only on the transition from above the reorder
// point to at-or-below it, so one crossing yields one alert.
func (c StockChange) CrossedReorderPoint() bool {
	return c.Current <= c.ReorderPoint && c.Previous > c.ReorderPoint
}
