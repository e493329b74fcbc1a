package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/shared"
)

var ten = decimal.NewFromInt(10)

// CostLine is one purchased line of a shipment as seen by the calculator
type CostLine struct {
	Quantity      int
	UnitCostPrice decimal.Decimal
}

// LineCost is the calculator output for one CostLine
type LineCost struct {
	PurchaseValue     decimal.Decimal `json:"purchase_value"`
	AllocatedOverhead decimal.Decimal `json:"allocated_overhead"`
	LandedCost        decimal.Decimal `json:"landed_cost"`
	SuggestedPrice    decimal.Decimal `json:"suggested_price"`
}

// LandedCostResult is the full calculator output
type LandedCostResult struct {
	Lines                []LineCost      `json:"lines"`
	TotalPurchaseValue   decimal.Decimal `json:"total_purchase_value"`
	TotalOverhead        decimal.Decimal `json:"total_overhead"`
	TotalLandedCost      decimal.Decimal `json:"total_landed_cost"`
	TotalRequiredRevenue decimal.Decimal `json:"total_required_revenue"`
}

// ShipmentCosts are the shipment-wide amounts spread over the lines
type ShipmentCosts struct {
	TransportCost decimal.Decimal
	OtherExpenses decimal.Decimal
	TargetProfit  decimal.Decimal
}

// Validate checks the shipment-wide amounts
func (c ShipmentCosts) Validate() error {
	if c.TransportCost.IsNegative() || c.OtherExpenses.IsNegative() {
		return shared.NewValidationError("Shipment expenses cannot be negative")
	}
	if c.TargetProfit.IsNegative() {
		return shared.NewValidationError("Target profit cannot be negative")
	}
	return nil
}

// CalculateLandedCost distributes shipment overhead over the lines in proportion
// to each line's purchase value and derives a suggested selling price per unit.
//
// The preview endpoint and the shipment commit path both call this function, so
// their numbers are identical.
func CalculateLandedCost(lines []CostLine, costs ShipmentCosts) (LandedCostResult, error) {
	if len(lines) == 0 {
		return LandedCostResult{}, shared.NewValidationError("Shipment must contain at least one line")
	}
	if err := costs.Validate(); err != nil {
		return LandedCostResult{}, err
	}

	totalPurchase := decimal.Zero
	for idx, l := range lines {
		if l.Quantity <= 0 {
			return LandedCostResult{}, shared.NewValidationError(fmt.Sprintf("Line %d: quantity must be positive", idx+1))
		}
		if l.UnitCostPrice.IsNegative() {
			return LandedCostResult{}, shared.NewValidationError(fmt.Sprintf("Line %d: unit cost cannot be negative", idx+1))
		}
		totalPurchase = totalPurchase.Add(l.UnitCostPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	overhead := costs.TransportCost.Add(costs.OtherExpenses)
	result := LandedCostResult{
		Lines:              make([]LineCost, len(lines)),
		TotalPurchaseValue: totalPurchase,
		TotalOverhead:      overhead,
		TotalLandedCost:    decimal.Zero,
	}

	for idx, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		purchase := l.UnitCostPrice.Mul(qty)
		lc := LineCost{
			PurchaseValue:     purchase,
			AllocatedOverhead: decimal.Zero,
			LandedCost:        l.UnitCostPrice,
		}
		if totalPurchase.IsPositive() {
			lc.AllocatedOverhead = purchase.Div(totalPurchase).Mul(overhead).Round(4)
			lc.LandedCost = l.UnitCostPrice.Add(lc.AllocatedOverhead.Div(qty)).Round(4)
		}
		result.Lines[idx] = lc
		result.TotalLandedCost = result.TotalLandedCost.Add(lc.LandedCost.Mul(qty))
	}

	result.TotalRequiredRevenue = result.TotalLandedCost.Add(costs.TargetProfit)

	for idx := range result.Lines {
		lc := &result.Lines[idx]
		lc.SuggestedPrice = lc.LandedCost
		if costs.TargetProfit.IsPositive() && result.TotalLandedCost.IsPositive() {
			raw := lc.LandedCost.Mul(result.TotalRequiredRevenue).Div(result.TotalLandedCost)
			lc.SuggestedPrice = RoundToNearestTen(raw)
		}
	}

	return result, nil
}

// RoundToNearestTen rounds a price to the nearest multiple of ten
func RoundToNearestTen(v decimal.Decimal) decimal.Decimal {
	return v.Div(ten).Round(0).Mul(ten)
}
