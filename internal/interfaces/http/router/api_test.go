package router

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

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
	"github.com/retailops/backoffice/internal/infrastructure/auth"
	"github.com/retailops/backoffice/internal/infrastructure/cache"
	"github.com/retailops/backoffice/internal/infrastructure/config"
	"github.com/retailops/backoffice/internal/infrastructure/persistence"
	"github.com/retailops/backoffice/internal/interfaces/http/dto"
	"github.com/retailops/backoffice/internal/interfaces/http/handler"
	"github.com/retailops/backoffice/internal/interfaces/http/middleware"
	"github.com/retailops/backoffice/internal/testutil"
)

const testSecret = "router-test-secret"

func newTestEngine(t *testing.T, mutate func(*Options)) *gin.Engine {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	log := zaptest.NewLogger(t)
	tx := persistence.NewGormTransactionScope(db)

	items := persistence.NewGormInventoryItemRepository(db)
	invoices := persistence.NewGormInvoiceRepository(db)
	rets := persistence.NewGormSalesReturnRepository(db)
	expenses := persistence.NewGormExpenseRepository(db)
	members := persistence.NewGormMembershipRepository(db)
	notifications := persistence.NewGormNotificationRepository(db)
	memberSvc := appidentity.NewMemberService(members, log)

	verifier, err := auth.NewVerifier(config.JWTConfig{Secret: testSecret})
	require.NoError(t, err)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	opts := Options{
		Logger:     log,
		Production: true,
		Auth:       middleware.AuthConfig{Verifier: verifier, Resolver: memberSvc},

		IdempotencyStore: store,
		IdempotencyTTL:   time.Minute,
	}
	if mutate != nil {
		mutate(&opts)
	}

	return NewEngine(opts, Handlers{
		Health:    handler.NewHealthHandler("backoffice", "test"),
		Identity:  handler.NewIdentityHandler(memberSvc),
		Inventory: handler.NewInventoryHandler(appinventory.NewInventoryService(items, persistence.NewGormStockMovementRepository(db), tx, log)),
		Invoice:   handler.NewInvoiceHandler(appinvoice.NewService(invoices, tx, log)),
		Return:    handler.NewReturnHandler(appreturns.NewService(rets, tx, log)),
		Partner: handler.NewPartnerHandler(
			apppartner.NewCustomerService(persistence.NewGormCustomerRepository(db)),
			apppartner.NewSupplierService(persistence.NewGormSupplierRepository(db)),
		),
		Expense:      handler.NewExpenseHandler(appfinance.NewExpenseService(expenses, log)),
		Report:       handler.NewReportHandler(report.NewService(invoices, rets, expenses, log)),
		Notification: handler.NewNotificationHandler(appnotification.NewService(notifications, members, log)),
		Messaging:    handler.NewMessagingHandler(appmessaging.NewService(persistence.NewGormConversationRepository(db), members, notifications, log)),
	})
}

func bearer(t *testing.T, tenantID, userID uuid.UUID, role identity.Role) map[string]string {
	t.Helper()
	token, err := auth.Sign(testSecret, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		TenantID:         tenantID.String(),
		UserID:           userID.String(),
		Username:         string(role),
		Role:             string(role),
	})
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestNewEngine_HealthIsPublic(t *testing.T) {
	engine := newTestEngine(t, nil)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := testutil.Do(t, engine, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	}
}

func TestNewEngine_SecurityHeaders(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := testutil.Do(t, engine, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestNewEngine_Authentication(t *testing.T) {
	engine := newTestEngine(t, nil)

	t.Run("missing token", func(t *testing.T) {
		w := testutil.Do(t, engine, http.MethodGet, "/api/v1/inventory", nil, nil)
		testutil.AssertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		token, err := auth.Sign("other", &auth.Claims{TenantID: uuid.NewString(), UserID: uuid.NewString(), Role: "owner"})
		require.NoError(t, err)
		w := testutil.Do(t, engine, http.MethodGet, "/api/v1/inventory", nil, map[string]string{"Authorization": "Bearer " + token})
		testutil.AssertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.Sign(testSecret, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
			TenantID:         uuid.NewString(),
			UserID:           uuid.NewString(),
			Role:             "owner",
		})
		require.NoError(t, err)
		w := testutil.Do(t, engine, http.MethodGet, "/api/v1/inventory", nil, map[string]string{"Authorization": "Bearer " + token})
		testutil.AssertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeTokenExpired)
	})

	t.Run("valid token enrolls the caller", func(t *testing.T) {
		w := testutil.Do(t, engine, http.MethodGet, "/api/v1/me/permissions", nil,
			bearer(t, uuid.New(), uuid.New(), identity.RoleStaff))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "staff", testutil.DecodeData[appidentity.PermissionsResponse](t, w).Role)
	})
}

func TestNewEngine_RouteActions(t *testing.T) {
	engine := newTestEngine(t, nil)
	tenant := uuid.New()
	staff := bearer(t, tenant, uuid.New(), identity.RoleStaff)
	owner := bearer(t, tenant, uuid.New(), identity.RoleOwner)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"expenses", http.MethodGet, "/api/v1/expenses"},
		{"reports", http.MethodGet, "/api/v1/reports/aging"},
		{"members", http.MethodGet, "/api/v1/members"},
		{"cancel invoice", http.MethodPost, "/api/v1/invoices/" + uuid.NewString() + "/cancel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.Do(t, engine, tt.method, tt.path, nil, staff)
			testutil.AssertErrorCode(t, w, http.StatusForbidden, dto.ErrCodePermissionDenied)
		})
	}

	w := testutil.Do(t, engine, http.MethodGet, "/api/v1/reports/aging", nil, owner)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestNewEngine_IdempotentInvoiceCreate(t *testing.T) {
	engine := newTestEngine(t, nil)
	owner := bearer(t, uuid.New(), uuid.New(), identity.RoleOwner)

	w := testutil.Do(t, engine, http.MethodPost, "/api/v1/inventory", map[string]any{
		"name": "Cable", "price": "10", "cost_price": "4", "quantity": 5,
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := testutil.DecodeData[appinventory.ItemResponse](t, w).ID

	body := map[string]any{
		"customer_name": "Walk-in",
		"line_items":    []map[string]any{{"type": "product", "inventory_item_id": itemID, "quantity": 2, "price": "10"}},
	}
	headers := map[string]string{middleware.IdempotencyKeyHeader: "order-1"}
	for k, v := range owner {
		headers[k] = v
	}

	w = testutil.Do(t, engine, http.MethodPost, "/api/v1/invoices", body, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.Do(t, engine, http.MethodPost, "/api/v1/invoices", body, headers)
	testutil.AssertErrorCode(t, w, http.StatusConflict, dto.ErrCodeDuplicateRequest)

	// Only the first request touched stock.
	w = testutil.Do(t, engine, http.MethodGet, "/api/v1/inventory/"+itemID.String(), nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, testutil.DecodeData[appinventory.ItemResponse](t, w).Quantity)

	t.Run("failed request releases its key", func(t *testing.T) {
		bad := map[string]any{"customer_name": "Walk-in", "line_items": []map[string]any{}}
		retry := map[string]string{middleware.IdempotencyKeyHeader: "order-2"}
		for k, v := range owner {
			retry[k] = v
		}
		w := testutil.Do(t, engine, http.MethodPost, "/api/v1/invoices", bad, retry)
		require.GreaterOrEqual(t, w.Code, http.StatusBadRequest)

		w = testutil.Do(t, engine, http.MethodPost, "/api/v1/invoices", body, retry)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})
}

func TestNewEngine_RateLimit(t *testing.T) {
	engine := newTestEngine(t, func(o *Options) {
		o.RateLimiter = middleware.NewRateLimiter(2, time.Minute)
	})
	owner := bearer(t, uuid.New(), uuid.New(), identity.RoleOwner)

	for i := 0; i < 2; i++ {
		w := testutil.Do(t, engine, http.MethodGet, "/api/v1/notifications", nil, owner)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w := testutil.Do(t, engine, http.MethodGet, "/api/v1/notifications", nil, owner)
	testutil.AssertErrorCode(t, w, http.StatusTooManyRequests, dto.ErrCodeRateLimited)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}
