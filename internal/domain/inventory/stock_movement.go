package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// MovementType represents the kind of stock movement
type MovementType string

const (
	// MovementAddition is stock entering through manual creation or shipment receipt
	MovementAddition MovementType = "addition"
	// MovementSale is stock leaving on an invoice
	MovementSale MovementType = "sale"
	// MovementCancellation is a sale reversal (invoice cancelled or quantity reduced)
	MovementCancellation MovementType = "cancellation"
	// MovementReturn is stock coming back through an approved customer return
	MovementReturn MovementType = "return"
	// MovementAdjustment is a manual correction in either direction
	MovementAdjustment MovementType = "adjustment"
)

// Reference IDs used by non-document movements
const (
	ReferenceInitialStock     = "Initial Stock"
	ReferenceShipment         = "Shipment"
	ReferenceManualAdjustment = "Manual Adjustment"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementAddition, MovementSale, MovementCancellation, MovementReturn, MovementAdjustment:
		return true
	}
	return false
}

// AllowsSign reports whether a signed quantity is legal for this type
func (t MovementType) AllowsSign(quantity int) bool {
	switch t {
	case MovementAddition, MovementCancellation, MovementReturn:
		return quantity > 0
	case MovementSale:
		return quantity < 0
	case MovementAdjustment:
		return quantity != 0
	}
	return false
}

// Direction is the human-facing reading of a signed quantity
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// StockMovement is one immutable entry in an item's stock ledger.
// Quantity is signed: positive adds stock, negative removes it.
type StockMovement struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	InventoryItemID uuid.UUID
	Type            MovementType
	Quantity        int
	ReferenceID     string
	CreatedAt       time.Time
	CreatedBy       uuid.UUID
	CreatedByName   string
}

// NewStockMovement builds a ledger entry after validating the type/sign pairing
func NewStockMovement(tenantID, itemID uuid.UUID, movementType MovementType, quantity int, referenceID string, actor shared.Actor) (*StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Inventory item ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("Invalid movement type: " + string(movementType))
	}
	if quantity == 0 {
		return nil, shared.NewValidationError("Movement quantity cannot be zero")
	}
	if !movementType.AllowsSign(quantity) {
		return nil, shared.NewValidationError("Movement quantity sign does not match type " + string(movementType))
	}
	referenceID = strings.TrimSpace(referenceID)
	if referenceID == "" {
		return nil, shared.NewValidationError("Movement reference cannot be empty")
	}

	return &StockMovement{
		ID:              uuid.New(),
		TenantID:        tenantID,
		InventoryItemID: itemID,
		Type:            movementType,
		Quantity:        quantity,
		ReferenceID:     referenceID,
		CreatedAt:       time.Now(),
		CreatedBy:       actor.UserID,
		CreatedByName:   actor.Username,
	}, nil
}

// Magnitude returns the unsigned quantity
func (m *StockMovement) Magnitude() int {
	if m.Quantity < 0 {
		return -m.Quantity
	}
	return m.Quantity
}

// Direction returns whether the movement added or removed stock
func (m *StockMovement) Direction() Direction {
	if m.Quantity < 0 {
		return DirectionOut
	}
	return DirectionIn
}

// SumQuantities returns the signed total of movements
func SumQuantities(movements []StockMovement) int {
	total := 0
	for _, m := range movements {
		total += m.Quantity
	}
	return total
}
