package invoice

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// LineType distinguishes stocked products from services
type LineType string

const (
	LineTypeProduct LineType = "product"
	LineTypeService LineType = "service"
)

// IsValid checks if the line type is valid
func (t LineType) IsValid() bool {
	return t == LineTypeProduct || t == LineTypeService
}

// LineItem is one line of an invoice. It has no identity outside its invoice.
type LineItem struct {
	ID              uuid.UUID
	Type            LineType
	InventoryItemID *uuid.UUID
	Description     string
	Quantity        int
	Price           decimal.Decimal
	WarrantyPeriod  string
	// CostPriceAtSale is frozen when the line is first sold and never follows later cost changes
	CostPriceAtSale *decimal.Decimal
}

// NewLineItem validates and builds a line
func NewLineItem(lineType LineType, itemID *uuid.UUID, description string, quantity int, price decimal.Decimal, warranty string) (LineItem, error) {
	l := LineItem{
		ID:              uuid.New(),
		Type:            lineType,
		InventoryItemID: itemID,
		Description:     strings.TrimSpace(description),
		Quantity:        quantity,
		Price:           price,
		WarrantyPeriod:  strings.TrimSpace(warranty),
	}
	if err := l.Validate(); err != nil {
		return LineItem{}, err
	}
	return l, nil
}

// Validate checks the line's own invariants
func (l LineItem) Validate() error {
	if !l.Type.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid line type: %s", l.Type))
	}
	if l.Quantity < 1 {
		return shared.NewValidationError("Line quantity must be at least 1")
	}
	if l.Price.IsNegative() {
		return shared.NewValidationError("Line price cannot be negative")
	}
	switch l.Type {
	case LineTypeProduct:
		if l.InventoryItemID == nil || *l.InventoryItemID == uuid.Nil {
			return shared.NewValidationError("Product lines must reference an inventory item")
		}
	case LineTypeService:
		if l.InventoryItemID != nil {
			return shared.NewValidationError("Service lines cannot reference an inventory item")
		}
		if l.Description == "" {
			return shared.NewValidationError("Service lines need a description")
		}
	}
	return nil
}

// IsProduct reports whether the line moves stock
func (l LineItem) IsProduct() bool {
	return l.Type == LineTypeProduct && l.InventoryItemID != nil
}

// Amount returns quantity x price
func (l LineItem) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CostOfGoods returns the frozen cost of the line, zero for services
func (l LineItem) CostOfGoods() decimal.Decimal {
	if !l.IsProduct() || l.CostPriceAtSale == nil {
		return decimal.Zero
	}
	return l.CostPriceAtSale.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// FreezeCost records the item's cost at the moment of sale
func (l *LineItem) FreezeCost(cost decimal.Decimal) {
	c := cost
	l.CostPriceAtSale = &c
}

// ProductQuantities sums product line quantities per inventory item
func ProductQuantities(lines []LineItem) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, l := range lines {
		if l.IsProduct() {
			out[*l.InventoryItemID] += l.Quantity
		}
	}
	return out
}

// NetStockDelta returns, per item, how much stock must be returned (positive)
// or taken (negative) to move from oldLines to newLines in one step.
func NetStockDelta(oldLines, newLines []LineItem) map[uuid.UUID]int {
	oldQty := ProductQuantities(oldLines)
	newQty := ProductQuantities(newLines)
	delta := make(map[uuid.UUID]int)
	for id, q := range oldQty {
		delta[id] += q
	}
	for id, q := range newQty {
		delta[id] -= q
	}
	for id, v := range delta {
		if v == 0 {
			delete(delta, id)
		}
	}
	return delta
}
