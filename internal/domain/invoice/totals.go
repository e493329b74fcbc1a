package invoice

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are the derived money figures of an invoice
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	AmountDue      decimal.Decimal `json:"amount_due"`
}

// Subtotal sums quantity x price over all lines
func Subtotal(lines []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount())
	}
	return sum
}

// DiscountAmount converts a discount into money against subtotal
func DiscountAmount(subtotal decimal.Decimal, discount Discount) decimal.Decimal {
	switch discount.Type {
	case DiscountPercentage:
		return subtotal.Mul(discount.Value).Div(hundred).Round(2)
	case DiscountFixed:
		return discount.Value.Round(2)
	default:
		return decimal.Zero
	}
}

// AmountPaid sums payment amounts
func AmountPaid(payments []Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// ComputeTotals derives every money figure from lines, discount and payments.
// It is the only place totals are computed.
func ComputeTotals(lines []LineItem, discount Discount, payments []Payment) Totals {
	subtotal := Subtotal(lines)
	discountAmount := DiscountAmount(subtotal, discount)
	total := subtotal.Sub(discountAmount)
	paid := AmountPaid(payments)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          total,
		AmountPaid:     paid,
		AmountDue:      total.Sub(paid),
	}
}

// DeriveStatus resolves the payment status from total and amount paid.
// Cancelled is never derived; it is set explicitly and is terminal.
func DeriveStatus(total, amountPaid decimal.Decimal) Status {
	switch {
	case amountPaid.GreaterThanOrEqual(total):
		return StatusPaid
	case amountPaid.IsPositive():
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

// Profit is revenue minus frozen cost of goods for product lines, after discount
func Profit(lines []LineItem, discount Discount) decimal.Decimal {
	subtotal := Subtotal(lines)
	cost := decimal.Zero
	for _, l := range lines {
		cost = cost.Add(l.CostOfGoods())
	}
	return subtotal.Sub(DiscountAmount(subtotal, discount)).Sub(cost)
}
