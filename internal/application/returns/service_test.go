package returns

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	appinventory "github.com/retailops/backoffice/internal/application/inventory"
	appinvoice "github.com/retailops/backoffice/internal/application/invoice"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/returns"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/persistence"
	"github.com/retailops/backoffice/internal/infrastructure/persistence/models"
	"github.com/retailops/backoffice/internal/testutil"
)

type fixture struct {
	db        *gorm.DB
	svc       *Service
	invoices  *appinvoice.Service
	items     *persistence.GormInventoryItemRepository
	movements *persistence.GormStockMovementRepository
	publisher *testutil.RecordingPublisher
	owner     identity.Principal
	phone     uuid.UUID
	invoiceID uuid.UUID
}

// newFixture sells three phones out of ten on one invoice
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	tx := persistence.NewGormTransactionScope(db)
	items := persistence.NewGormInventoryItemRepository(db)
	movements := persistence.NewGormStockMovementRepository(db)
	owner := testutil.Owner()

	inv := appinventory.NewInventoryService(items, movements, tx, zaptest.NewLogger(t))
	phone, err := inv.Create(ctx, owner, appinventory.CreateItemRequest{
		Name: "Phone", Price: decimal.NewFromInt(200), CostPrice: decimal.NewFromInt(120), Quantity: 10,
	})
	require.NoError(t, err)

	invoices := appinvoice.NewService(persistence.NewGormInvoiceRepository(db), tx, zaptest.NewLogger(t))
	phoneID := phone.ID
	sale, err := invoices.Create(ctx, owner, appinvoice.CreateInvoiceRequest{
		CustomerRequest: appinvoice.CustomerRequest{Name: "Bob"},
		Lines: []appinvoice.LineItemRequest{
			{Type: "product", InventoryItemID: &phoneID, Quantity: 3, Price: decimal.NewFromInt(200)},
		},
	})
	require.NoError(t, err)

	svc := NewService(persistence.NewGormSalesReturnRepository(db), tx, zaptest.NewLogger(t))
	publisher := testutil.NewRecordingPublisher()
	svc.SetEventPublisher(publisher)

	return &fixture{
		db:        db,
		svc:       svc,
		invoices:  invoices,
		items:     items,
		movements: movements,
		publisher: publisher,
		owner:     owner,
		phone:     phone.ID,
		invoiceID: sale.ID,
	}
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	item, err := f.items.FindByID(context.Background(), f.owner.TenantID, f.phone)
	require.NoError(t, err)
	sum, err := f.movements.SumByItem(context.Background(), f.owner.TenantID, f.phone)
	require.NoError(t, err)
	require.Equal(t, item.Quantity, sum, "quantity must equal the ledger sum")
	return item.Quantity
}

func (f *fixture) request(qty int) CreateReturnRequest {
	return CreateReturnRequest{
		InvoiceID: f.invoiceID,
		Items:     []ReturnItemRequest{{InventoryItemID: f.phone, Quantity: qty, RefundAmount: decimal.NewFromInt(int64(qty) * 200)}},
		Reason:    "changed mind",
	}
}

func TestService_CreateAndApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.Equal(t, 7, f.stock(t))

	created, err := f.svc.Create(ctx, testutil.Staff(), f.request(2))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RET-%d-0001", time.Now().Year()), created.Number)
	assert.Equal(t, string(returns.StatusPending), created.Status)
	assert.Equal(t, "Phone", created.Items[0].Description)
	assert.True(t, created.TotalRefund.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, 7, f.stock(t), "pending returns do not touch stock")

	t.Run("claims beyond what was sold are refused", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.owner, f.request(2))
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("staff cannot decide", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, testutil.Staff(), created.ID, DecisionRequest{})
		assert.True(t, errors.Is(err, shared.ErrPermissionDenied))
	})

	approved, err := f.svc.Approve(ctx, f.owner, created.ID, DecisionRequest{Note: "inspected"})
	require.NoError(t, err)
	assert.Equal(t, string(returns.StatusApproved), approved.Status)
	assert.Equal(t, "inspected", approved.DecisionNote)
	assert.Equal(t, 9, f.stock(t))

	rows, err := f.movements.FindByReference(ctx, f.owner.TenantID, created.Number)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inventory.MovementReturn, rows[0].Type)
	assert.Equal(t, 2, rows[0].Quantity)
	assert.Len(t, f.publisher.OfType(returns.EventTypeReturnApproved), 1)

	t.Run("a decided return cannot be decided again", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, f.owner, created.ID, DecisionRequest{})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		_, err = f.svc.Reject(ctx, f.owner, created.ID, DecisionRequest{})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Equal(t, 9, f.stock(t))
	})

	t.Run("cancelling the invoice restores only what is still out", func(t *testing.T) {
		_, err := f.invoices.Cancel(ctx, f.owner, f.invoiceID)
		require.NoError(t, err)
		assert.Equal(t, 10, f.stock(t))
	})
}

func TestService_Reject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, f.owner, f.request(3))
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, f.owner, created.ID, DecisionRequest{Note: "used"})
	require.NoError(t, err)
	assert.Equal(t, string(returns.StatusRejected), rejected.Status)
	assert.Equal(t, 7, f.stock(t))
	assert.Len(t, f.publisher.OfType(returns.EventTypeReturnRejected), 1)

	again, err := f.svc.Create(ctx, f.owner, f.request(3))
	require.NoError(t, err, "rejected returns free their quantity")
	assert.Equal(t, fmt.Sprintf("RET-%d-0002", time.Now().Year()), again.Number)
}

func TestService_CancelledInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pending, err := f.svc.Create(ctx, f.owner, f.request(1))
	require.NoError(t, err)

	_, err = f.invoices.Cancel(ctx, f.owner, f.invoiceID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t))

	_, err = f.svc.Approve(ctx, f.owner, pending.ID, DecisionRequest{})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.Equal(t, 10, f.stock(t))

	_, err = f.svc.Create(ctx, f.owner, f.request(1))
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("item not on the invoice", func(t *testing.T) {
		req := f.request(1)
		req.Items[0].InventoryItemID = uuid.New()
		_, err := f.svc.Create(ctx, f.owner, req)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("unknown invoice", func(t *testing.T) {
		req := f.request(1)
		req.InvoiceID = uuid.New()
		_, err := f.svc.Create(ctx, f.owner, req)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("list filters by status", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.owner, f.request(1))
		require.NoError(t, err)
		page, err := f.svc.List(ctx, f.owner, ListFilter{Status: string(returns.StatusPending)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})
}

func TestService_InvoiceEditsRespectReturns(t *testing.T) {
	ctx := context.Background()
	phoneLine := func(f *fixture, qty int) appinvoice.UpdateInvoiceRequest {
		return appinvoice.UpdateInvoiceRequest{Lines: []appinvoice.LineItemRequest{
			{Type: "product", InventoryItemID: &f.phone, Quantity: qty, Price: decimal.NewFromInt(200)},
		}}
	}

	t.Run("fully returned invoice cannot shrink", func(t *testing.T) {
		f := newFixture(t)
		ret, err := f.svc.Create(ctx, f.owner, f.request(3))
		require.NoError(t, err)
		_, err = f.svc.Approve(ctx, f.owner, ret.ID, DecisionRequest{})
		require.NoError(t, err)
		require.Equal(t, 10, f.stock(t))

		_, err = f.invoices.Update(ctx, f.owner, f.invoiceID, phoneLine(f, 1))
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, 10, f.stock(t))
	})

	t.Run("pending return survives a refused edit and restores only what was sold", func(t *testing.T) {
		f := newFixture(t)
		ret, err := f.svc.Create(ctx, f.owner, f.request(3))
		require.NoError(t, err)

		_, err = f.invoices.Update(ctx, f.owner, f.invoiceID, phoneLine(f, 1))
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, 7, f.stock(t))

		_, err = f.svc.Approve(ctx, f.owner, ret.ID, DecisionRequest{})
		require.NoError(t, err)
		assert.Equal(t, 10, f.stock(t))
	})

	t.Run("approval is refused once the invoice no longer covers the return", func(t *testing.T) {
		f := newFixture(t)
		ret, err := f.svc.Create(ctx, f.owner, f.request(3))
		require.NoError(t, err)

		// A line shrunk behind the service's back.
		require.NoError(t, f.db.Model(&models.InvoiceLineModel{}).
			Where("invoice_id = ? AND inventory_item_id = ?", f.invoiceID, f.phone).
			Update("quantity", 1).Error)

		_, err = f.svc.Approve(ctx, f.owner, ret.ID, DecisionRequest{})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Equal(t, 7, f.stock(t))

		got, err := f.svc.GetByID(ctx, f.owner, ret.ID)
		require.NoError(t, err)
		assert.Equal(t, string(returns.StatusPending), got.Status)
	})
}
