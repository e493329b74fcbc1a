package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfinance "github.com/retailops/backoffice/internal/application/finance"
	"github.com/retailops/backoffice/internal/application/report"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/interfaces/http/dto"
	"github.com/retailops/backoffice/internal/testutil"
)

func TestExpenseHandler(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, identity.RoleStaff, http.MethodPost, "/expenses", map[string]any{"category": "rent", "amount": "500"})
	testutil.AssertErrorCode(t, w, http.StatusForbidden, dto.ErrCodePermissionDenied)

	w = api.do(t, identity.RoleAdmin, http.MethodPost, "/expenses", map[string]any{"category": "lunch", "amount": "5"})
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = api.do(t, identity.RoleAdmin, http.MethodPost, "/expenses", map[string]any{"category": "rent", "amount": "500", "description": "May"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expense := testutil.DecodeData[appfinance.ExpenseResponse](t, w)

	w = api.do(t, identity.RoleAdmin, http.MethodGet, "/expenses?category=rent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.DecodeData[[]appfinance.ExpenseResponse](t, w), 1)

	w = api.do(t, identity.RoleAdmin, http.MethodDelete, "/expenses/"+expense.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, identity.RoleAdmin, http.MethodDelete, "/expenses/"+expense.ID.String(), nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestReportHandler(t *testing.T) {
	api := newTestAPI(t)
	item := api.createItem(t, "Headset", 10, "100", "60")
	api.createInvoice(t, map[uuid.UUID]int{item: 2}, "100")

	w := api.do(t, identity.RoleAdmin, http.MethodPost, "/expenses", map[string]any{"category": "utilities", "amount": "30"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	now := time.Now()
	window := "?from=" + now.AddDate(0, 0, -1).Format("2006-01-02") + "&to=" + now.AddDate(0, 0, 2).Format("2006-01-02")

	t.Run("profit and loss", func(t *testing.T) {
		w := api.do(t, identity.RoleAdmin, http.MethodGet, "/reports/profit-loss"+window, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		pnl := testutil.DecodeData[report.ProfitAndLoss](t, w)
		assert.Equal(t, 1, pnl.InvoiceCount)
		assert.True(t, decimal.NewFromInt(200).Equal(pnl.Revenue), pnl.Revenue.String())
		assert.True(t, decimal.NewFromInt(120).Equal(pnl.CostOfGoods), pnl.CostOfGoods.String())
		assert.True(t, decimal.NewFromInt(50).Equal(pnl.NetProfit), pnl.NetProfit.String())
	})

	t.Run("period is required", func(t *testing.T) {
		w := api.do(t, identity.RoleAdmin, http.MethodGet, "/reports/profit-loss", nil)
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("staff cannot view", func(t *testing.T) {
		w := api.do(t, identity.RoleStaff, http.MethodGet, "/reports/profit-loss"+window, nil)
		testutil.AssertErrorCode(t, w, http.StatusForbidden, dto.ErrCodePermissionDenied)
	})

	t.Run("aging", func(t *testing.T) {
		w := api.do(t, identity.RoleOwner, http.MethodGet, "/reports/aging", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		aging := testutil.DecodeData[report.ReceivablesAging](t, w)
		require.Len(t, aging.Buckets, 4)
		assert.Equal(t, 1, aging.Buckets[0].InvoiceCount)
		assert.True(t, decimal.NewFromInt(200).Equal(aging.Total))
	})

	t.Run("export without storage", func(t *testing.T) {
		w := api.do(t, identity.RoleOwner, http.MethodPost, "/reports/profit-loss/export"+window, nil)
		testutil.AssertErrorCode(t, w, http.StatusServiceUnavailable, dto.ErrCodeFeatureDisabled)
	})
}
