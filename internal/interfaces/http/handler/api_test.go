package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	appfinance "github.com/retailops/backoffice/internal/application/finance"
	appidentity "github.com/retailops/backoffice/internal/application/identity"
	appinventory "github.com/retailops/backoffice/internal/application/inventory"
	appinvoice "github.com/retailops/backoffice/internal/application/invoice"
	appmessaging "github.com/retailops/backoffice/internal/application/messaging"
	appnotification "github.com/retailops/backoffice/internal/application/notification"
	apppartner "github.com/retailops/backoffice/internal/application/partner"
	"github.com/retailops/backoffice/internal/application/report"
	appreturns "github.com/retailops/backoffice/internal/application/returns"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/infrastructure/persistence"
	"github.com/retailops/backoffice/internal/interfaces/http/middleware"
	"github.com/retailops/backoffice/internal/testutil"
)

// roleHeader selects the caller for a test request; owner when absent
const roleHeader = "X-Test-Role"

type testAPI struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	log := zaptest.NewLogger(t)
	tx := persistence.NewGormTransactionScope(db)

	items := persistence.NewGormInventoryItemRepository(db)
	movements := persistence.NewGormStockMovementRepository(db)
	invoices := persistence.NewGormInvoiceRepository(db)
	rets := persistence.NewGormSalesReturnRepository(db)
	expenses := persistence.NewGormExpenseRepository(db)
	members := persistence.NewGormMembershipRepository(db)

	memberSvc := appidentity.NewMemberService(members, log)
	health := NewHealthHandler("test", "dev")
	identityH := NewIdentityHandler(memberSvc)
	inventoryH := NewInventoryHandler(appinventory.NewInventoryService(items, movements, tx, log))
	invoiceH := NewInvoiceHandler(appinvoice.NewService(invoices, tx, log))
	returnH := NewReturnHandler(appreturns.NewService(rets, tx, log))
	partnerH := NewPartnerHandler(
		apppartner.NewCustomerService(persistence.NewGormCustomerRepository(db)),
		apppartner.NewSupplierService(persistence.NewGormSupplierRepository(db)),
	)
	expenseH := NewExpenseHandler(appfinance.NewExpenseService(expenses, log))
	reportH := NewReportHandler(report.NewService(invoices, rets, expenses, log))
	notifications := persistence.NewGormNotificationRepository(db)
	notificationH := NewNotificationHandler(appnotification.NewService(notifications, members, log))
	messagingH := NewMessagingHandler(appmessaging.NewService(persistence.NewGormConversationRepository(db), members, notifications, log))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/health", health.Health)

	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		role := identity.RoleOwner
		if r, ok := identity.ParseRole(c.GetHeader(roleHeader)); ok {
			role = r
		}
		c.Set(middleware.PrincipalKey, testutil.Principal(testutil.TestTenantID(), role))
		c.Next()
	})

	api.GET("/me/permissions", identityH.Permissions)
	api.GET("/members", identityH.ListMembers)
	api.PUT("/members/:userId", identityH.UpdateMember)

	api.GET("/inventory", inventoryH.List)
	api.POST("/inventory", inventoryH.Create)
	api.GET("/inventory/low-stock", inventoryH.ListLowStock)
	api.POST("/inventory/shipments/preview", inventoryH.PreviewShipment)
	api.POST("/inventory/shipments", inventoryH.ReceiveShipment)
	api.GET("/inventory/:id", inventoryH.GetByID)
	api.PUT("/inventory/:id", inventoryH.Update)
	api.POST("/inventory/:id/adjust", inventoryH.Adjust)
	api.GET("/inventory/:id/movements", inventoryH.ListMovements)

	api.GET("/invoices", invoiceH.List)
	api.POST("/invoices", invoiceH.Create)
	api.GET("/invoices/:id", invoiceH.GetByID)
	api.PUT("/invoices/:id", invoiceH.Update)
	api.POST("/invoices/:id/cancel", invoiceH.Cancel)
	api.POST("/invoices/:id/payments", invoiceH.AddPayment)

	api.GET("/returns", returnH.List)
	api.POST("/returns", returnH.Create)
	api.GET("/returns/:id", returnH.GetByID)
	api.POST("/returns/:id/approve", returnH.Approve)
	api.POST("/returns/:id/reject", returnH.Reject)

	api.GET("/customers", partnerH.ListCustomers)
	api.POST("/customers", partnerH.CreateCustomer)
	api.GET("/customers/:id", partnerH.GetCustomer)
	api.PUT("/customers/:id", partnerH.UpdateCustomer)
	api.DELETE("/customers/:id", partnerH.DeleteCustomer)
	api.GET("/suppliers", partnerH.ListSuppliers)
	api.POST("/suppliers", partnerH.CreateSupplier)
	api.GET("/suppliers/:id", partnerH.GetSupplier)
	api.PUT("/suppliers/:id", partnerH.UpdateSupplier)
	api.DELETE("/suppliers/:id", partnerH.DeleteSupplier)

	api.GET("/expenses", expenseH.List)
	api.POST("/expenses", expenseH.Create)
	api.DELETE("/expenses/:id", expenseH.Delete)

	api.GET("/reports/profit-loss", reportH.ProfitAndLoss)
	api.GET("/reports/aging", reportH.ReceivablesAging)
	api.POST("/reports/profit-loss/export", reportH.ExportProfitAndLoss)

	api.GET("/notifications", notificationH.List)
	api.GET("/notifications/unread-count", notificationH.UnreadCount)
	api.POST("/notifications/read-all", notificationH.MarkAllRead)
	api.POST("/notifications/:id/read", notificationH.MarkRead)

	api.GET("/conversations", messagingH.List)
	api.POST("/conversations", messagingH.Start)
	api.GET("/conversations/:id", messagingH.Get)
	api.GET("/conversations/:id/messages", messagingH.Messages)
	api.POST("/conversations/:id/messages", messagingH.Post)

	return &testAPI{db: db, engine: engine}
}

// do sends a request as the given role
func (a *testAPI) do(t *testing.T, role identity.Role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Do(t, a.engine, method, "/api/v1"+path, body, map[string]string{roleHeader: string(role)})
}

// createItem creates an inventory item as owner and returns its id
func (a *testAPI) createItem(t *testing.T, name string, qty int, price, cost string) uuid.UUID {
	t.Helper()
	w := a.do(t, identity.RoleOwner, http.MethodPost, "/inventory", map[string]any{
		"name":          name,
		"price":         price,
		"cost_price":    cost,
		"quantity":      qty,
		"reorder_point": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[appinventory.ItemResponse](t, w).ID
}

// createInvoice sells qty units of each item at price and returns the invoice
func (a *testAPI) createInvoice(t *testing.T, lines map[uuid.UUID]int, price string) appinvoice.InvoiceResponse {
	t.Helper()
	var items []map[string]any
	for id, qty := range lines {
		items = append(items, map[string]any{
			"type":              "product",
			"inventory_item_id": id,
			"quantity":          qty,
			"price":             price,
		})
	}
	w := a.do(t, identity.RoleOwner, http.MethodPost, "/invoices", map[string]any{
		"customer_name": "Walk-in",
		"line_items":    items,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[appinvoice.InvoiceResponse](t, w)
}

func (a *testAPI) quantity(t *testing.T, itemID uuid.UUID) int {
	t.Helper()
	w := a.do(t, identity.RoleOwner, http.MethodGet, fmt.Sprintf("/inventory/%s", itemID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return testutil.DecodeData[appinventory.ItemResponse](t, w).Quantity
}

// seedMember stores the membership of the test principal with role
func (a *testAPI) seedMember(t *testing.T, role identity.Role) identity.Principal {
	t.Helper()
	p := testutil.Principal(testutil.TestTenantID(), role)
	m, err := identity.NewMembership(p.TenantID, p.UserID, p.Username, "", p.Role)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormMembershipRepository(a.db).Save(context.Background(), m))
	return p
}
