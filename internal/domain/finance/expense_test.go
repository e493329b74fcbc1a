package finance

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

func TestNewExpense(t *testing.T) {
	actor := shared.Actor{UserID: uuid.New(), Username: "owner"}

	t.Run("valid expense", func(t *testing.T) {
		e, err := NewExpense(uuid.New(), ExpenseCategoryRent, decimal.RequireFromString("1200.456"), time.Time{}, " March ", actor)

		require.NoError(t, err)
		assert.Equal(t, "1200.46", e.Amount.String())
		assert.False(t, e.Date.IsZero())
		assert.Equal(t, "March", e.Description)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := NewExpense(uuid.New(), "gifts", decimal.NewFromInt(1), time.Now(), "", actor)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewExpense(uuid.New(), ExpenseCategoryOther, decimal.Zero, time.Now(), "", actor)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestTotalsByCategory(t *testing.T) {
	expenses := []Expense{
		{Category: ExpenseCategoryRent, Amount: decimal.NewFromInt(500)},
		{Category: ExpenseCategoryRent, Amount: decimal.NewFromInt(250)},
		{Category: ExpenseCategorySalary, Amount: decimal.NewFromInt(900)},
	}
	totals := TotalsByCategory(expenses)

	assert.True(t, totals[ExpenseCategoryRent].Equal(decimal.NewFromInt(750)))
	assert.True(t, totals[ExpenseCategorySalary].Equal(decimal.NewFromInt(900)))
}
