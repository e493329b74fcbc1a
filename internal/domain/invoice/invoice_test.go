package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/domain/shared"
)

var testActor = shared.Actor{UserID: uuid.New(), Username: "cashier"}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func productLine(t *testing.T, itemID uuid.UUID, qty int, price int64) LineItem {
	t.Helper()
	l, err := NewLineItem(LineTypeProduct, &itemID, "Item", qty, dec(price), "")
	require.NoError(t, err)
	return l
}

func serviceLine(t *testing.T, qty int, price int64) LineItem {
	t.Helper()
	l, err := NewLineItem(LineTypeService, nil, "Screen repair", qty, dec(price), "30 days")
	require.NoError(t, err)
	return l
}

func createTestInvoice(t *testing.T, lines ...LineItem) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), "INV-2025-0001", Customer{Name: "Walk-in"}, lines, NoDiscount(), testActor)
	require.NoError(t, err)
	return inv
}

func TestComputeTotals(t *testing.T) {
	t.Run("percentage discount", func(t *testing.T) {
		lines := []LineItem{
			{Type: LineTypeService, Quantity: 2, Price: dec(5000)},
			{Type: LineTypeService, Quantity: 1, Price: dec(3000)},
		}
		totals := ComputeTotals(lines, Discount{Type: DiscountPercentage, Value: dec(10)}, nil)

		assert.True(t, totals.Subtotal.Equal(dec(13000)))
		assert.True(t, totals.DiscountAmount.Equal(dec(1300)))
		assert.True(t, totals.Total.Equal(dec(11700)))
		assert.True(t, totals.AmountDue.Equal(dec(11700)))
	})

	t.Run("lines of 2x500 and 1x3000", func(t *testing.T) {
		lines := []LineItem{
			{Type: LineTypeService, Quantity: 2, Price: dec(500)},
			{Type: LineTypeService, Quantity: 1, Price: dec(3000)},
		}
		totals := ComputeTotals(lines, Discount{Type: DiscountPercentage, Value: dec(10)}, nil)

		assert.True(t, totals.Subtotal.Equal(dec(4000)))
		assert.True(t, totals.DiscountAmount.Equal(dec(400)))
		assert.True(t, totals.Total.Equal(dec(3600)))
	})

	t.Run("fixed discount and payments", func(t *testing.T) {
		lines := []LineItem{{Type: LineTypeService, Quantity: 4, Price: dec(250)}}
		payments := []Payment{{Amount: dec(300)}, {Amount: dec(200)}}

		totals := ComputeTotals(lines, Discount{Type: DiscountFixed, Value: dec(100)}, payments)

		assert.True(t, totals.Total.Equal(dec(900)))
		assert.True(t, totals.AmountPaid.Equal(dec(500)))
		assert.True(t, totals.AmountDue.Equal(dec(400)))
	})
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusUnpaid, DeriveStatus(dec(100), decimal.Zero))
	assert.Equal(t, StatusPartiallyPaid, DeriveStatus(dec(100), dec(40)))
	assert.Equal(t, StatusPaid, DeriveStatus(dec(100), dec(100)))
	assert.Equal(t, StatusPaid, DeriveStatus(dec(100), dec(150)))
	assert.Equal(t, StatusPaid, DeriveStatus(decimal.Zero, decimal.Zero))

	// deriving twice from the same inputs gives the same answer
	assert.Equal(t, DeriveStatus(dec(100), dec(40)), DeriveStatus(dec(100), dec(40)))
}

func TestNewInvoice(t *testing.T) {
	itemID := uuid.New()

	t.Run("starts unpaid with created event", func(t *testing.T) {
		inv := createTestInvoice(t, productLine(t, itemID, 2, 100))

		assert.Equal(t, StatusUnpaid, inv.Status)
		require.Len(t, inv.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeInvoiceCreated, inv.GetDomainEvents()[0].EventType())
	})

	t.Run("requires lines", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "INV-2025-0002", Customer{Name: "A"}, nil, NoDiscount(), testActor)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("requires customer name", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "INV-2025-0002", Customer{Name: " "}, []LineItem{serviceLine(t, 1, 10)}, NoDiscount(), testActor)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects discount above subtotal", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "INV-2025-0002", Customer{Name: "A"}, []LineItem{serviceLine(t, 1, 10)},
			Discount{Type: DiscountFixed, Value: dec(11)}, testActor)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects percentage above 100", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "INV-2025-0002", Customer{Name: "A"}, []LineItem{serviceLine(t, 1, 10)},
			Discount{Type: DiscountPercentage, Value: dec(101)}, testActor)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestNewLineItem(t *testing.T) {
	itemID := uuid.New()

	_, err := NewLineItem(LineTypeProduct, nil, "x", 1, dec(1), "")
	assert.True(t, errors.Is(err, shared.ErrValidation), "product without item")

	_, err = NewLineItem(LineTypeService, &itemID, "x", 1, dec(1), "")
	assert.True(t, errors.Is(err, shared.ErrValidation), "service with item")

	_, err = NewLineItem(LineTypeProduct, &itemID, "x", 0, dec(1), "")
	assert.True(t, errors.Is(err, shared.ErrValidation), "zero quantity")

	_, err = NewLineItem(LineTypeProduct, &itemID, "x", 1, dec(-1), "")
	assert.True(t, errors.Is(err, shared.ErrValidation), "negative price")
}

func TestInvoice_ApplyInitialStatus(t *testing.T) {
	t.Run("paid creates a full payment", func(t *testing.T) {
		inv := createTestInvoice(t, serviceLine(t, 1, 700))

		require.NoError(t, inv.ApplyInitialStatus(StatusPaid, decimal.Zero, "card", testActor))

		require.Len(t, inv.Payments, 1)
		assert.True(t, inv.Payments[0].Amount.Equal(dec(700)))
		assert.Equal(t, StatusPaid, inv.Status)
	})

	t.Run("partially paid within bounds", func(t *testing.T) {
		inv := createTestInvoice(t, serviceLine(t, 1, 700))

		require.NoError(t, inv.ApplyInitialStatus(StatusPartiallyPaid, dec(200), "cash", testActor))
		assert.Equal(t, StatusPartiallyPaid, inv.Status)
		assert.True(t, inv.Totals().AmountDue.Equal(dec(500)))
	})

	for _, amount := range []int64{0, -5, 700, 900} {
		inv := createTestInvoice(t, serviceLine(t, 1, 700))
		err := inv.ApplyInitialStatus(StatusPartiallyPaid, dec(amount), "cash", testActor)
		assert.True(t, errors.Is(err, shared.ErrInvalidPayment), "amount %d", amount)
		assert.Empty(t, inv.Payments)
	}

	t.Run("cancelled is not an initial status", func(t *testing.T) {
		inv := createTestInvoice(t, serviceLine(t, 1, 700))
		err := inv.ApplyInitialStatus(StatusCancelled, decimal.Zero, "", testActor)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestInvoice_AddPayment(t *testing.T) {
	t.Run("exact amount due flips to paid and stays paid", func(t *testing.T) {
		inv := createTestInvoice(t, serviceLine(t, 2, 500))

		_, err := inv.AddPayment(PaymentDraft{Amount: dec(400), Method: "cash"}, testActor)
		require.NoError(t, err)
		assert.Equal(t, StatusPartiallyPaid, inv.Status)

		_, err = inv.AddPayment(PaymentDraft{Amount: inv.Totals().AmountDue, Method: "cash"}, testActor)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, inv.Status)

		_, err = inv.AddPayment(PaymentDraft{Amount: dec(1), Method: "cash"}, testActor)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, inv.Status)
	})

	t.Run("overpayment resolves to paid with negative due", func(t *testing.T) {
		inv := createTestInvoice(t, serviceLine(t, 1, 100))

		_, err := inv.AddPayment(PaymentDraft{Amount: dec(150)}, testActor)
		require.NoError(t, err)

		assert.Equal(t, StatusPaid, inv.Status)
		assert.True(t, inv.Totals().AmountDue.Equal(dec(-50)))
		assert.Equal(t, "cash", inv.Payments[0].Method)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		inv := createTestInvoice(t, serviceLine(t, 1, 100))
		_, err := inv.AddPayment(PaymentDraft{Amount: decimal.Zero}, testActor)
		assert.True(t, errors.Is(err, shared.ErrInvalidPayment))
	})

	t.Run("cancelled invoice rejects payments", func(t *testing.T) {
		inv := createTestInvoice(t, serviceLine(t, 1, 100))
		inv.Cancel()

		_, err := inv.AddPayment(PaymentDraft{Amount: dec(10)}, testActor)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestInvoice_Cancel(t *testing.T) {
	inv := createTestInvoice(t, serviceLine(t, 1, 100))
	_, err := inv.AddPayment(PaymentDraft{Amount: dec(30)}, testActor)
	require.NoError(t, err)

	assert.True(t, inv.Cancel())
	assert.Equal(t, StatusCancelled, inv.Status)
	assert.NotNil(t, inv.CancelledAt)
	assert.Len(t, inv.Payments, 1, "payments are kept")

	assert.False(t, inv.Cancel(), "second cancel is a no-op")
	assert.Equal(t, StatusCancelled, inv.Status)
}

func TestInvoice_Revise(t *testing.T) {
	itemID := uuid.New()

	t.Run("status follows new total, payments untouched", func(t *testing.T) {
		inv := createTestInvoice(t, productLine(t, itemID, 2, 100))
		_, err := inv.AddPayment(PaymentDraft{Amount: dec(150)}, testActor)
		require.NoError(t, err)
		assert.Equal(t, StatusPartiallyPaid, inv.Status)

		err = inv.Revise(inv.Customer, []LineItem{productLine(t, itemID, 1, 100)}, NoDiscount())

		require.NoError(t, err)
		assert.Equal(t, StatusPaid, inv.Status)
		assert.Len(t, inv.Payments, 1)
	})

	t.Run("cancelled invoice cannot be edited", func(t *testing.T) {
		inv := createTestInvoice(t, productLine(t, itemID, 2, 100))
		inv.Cancel()

		err := inv.Revise(inv.Customer, []LineItem{productLine(t, itemID, 1, 100)}, NoDiscount())
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestNetStockDelta(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	oldLines := []LineItem{productLine(t, a, 3, 10), productLine(t, b, 2, 10), productLine(t, a, 1, 10)}
	newLines := []LineItem{productLine(t, a, 1, 10), productLine(t, c, 5, 10), productLine(t, b, 2, 10), serviceLine(t, 1, 5)}

	delta := NetStockDelta(oldLines, newLines)

	assert.Equal(t, map[uuid.UUID]int{a: 3, c: -5}, delta)
}

func TestInvoice_ProfitAndFrozenCost(t *testing.T) {
	itemID := uuid.New()
	line := productLine(t, itemID, 2, 150)
	line.FreezeCost(dec(100))
	inv := createTestInvoice(t, line, serviceLine(t, 1, 50))

	assert.True(t, inv.Profit().Equal(dec(150)))

	cost, ok := inv.FrozenCost(itemID)
	require.True(t, ok)
	assert.True(t, cost.Equal(dec(100)))

	_, ok = inv.FrozenCost(uuid.New())
	assert.False(t, ok)
}

func TestInvoice_DaysOutstanding(t *testing.T) {
	inv := createTestInvoice(t, serviceLine(t, 1, 100))
	inv.CreatedAt = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 31, inv.DaysOutstanding(time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, inv.DaysOutstanding(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
}
