package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/config"
	"github.com/retailops/backoffice/internal/infrastructure/logger"
	"github.com/retailops/backoffice/internal/interfaces/http/handler"
	"github.com/retailops/backoffice/internal/interfaces/http/middleware"
)

// HealthPath is served without authentication
const HealthPath = "/health"

// Handlers groups the resource handlers mounted by NewEngine
type Handlers struct {
	Health       *handler.HealthHandler
	Identity     *handler.IdentityHandler
	Inventory    *handler.InventoryHandler
	Invoice      *handler.InvoiceHandler
	Return       *handler.ReturnHandler
	Partner      *handler.PartnerHandler
	Expense      *handler.ExpenseHandler
	Report       *handler.ReportHandler
	Notification *handler.NotificationHandler
	Messaging    *handler.MessagingHandler
}

// Options configures the middleware chain
type Options struct {
	Logger     *zap.Logger
	HTTP       config.HTTPConfig
	Production bool
	Tracing    middleware.TracingConfig
	Profiling  middleware.ProfilingConfig
	Auth       middleware.AuthConfig

	// RateLimiter is nil when rate limiting is disabled
	RateLimiter *middleware.RateLimiter

	// IdempotencyStore is nil when Idempotency-Key handling is disabled
	IdempotencyStore shared.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewEngine builds the gin engine with the full middleware chain and every route
func NewEngine(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(middleware.SecureOptions(opts.Production)),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(opts.HTTP)),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
		middleware.Tracing(opts.Tracing),
		middleware.SpanErrorMarker(),
	)

	engine.GET(HealthPath, h.Health.Health)
	engine.GET("/api/v1"+HealthPath, h.Health.Health)

	authCfg := opts.Auth
	if authCfg.Logger == nil {
		authCfg.Logger = log
	}
	groupMiddleware := []gin.HandlerFunc{
		middleware.Authenticate(authCfg),
		middleware.TracingAttributeInjector(),
		middleware.Profiling(opts.Profiling),
	}
	if opts.RateLimiter != nil {
		groupMiddleware = append(groupMiddleware, middleware.RateLimit(opts.RateLimiter))
	}

	idempotent := func(c *gin.Context) { c.Next() }
	if opts.IdempotencyStore != nil {
		idempotent = middleware.Idempotency(opts.IdempotencyStore, opts.IdempotencyTTL)
	}

	NewRouter(engine, WithGroupMiddleware(groupMiddleware...)).
		Register(identityRoutes(h.Identity)).
		Register(inventoryRoutes(h.Inventory)).
		Register(invoiceRoutes(h.Invoice, idempotent)).
		Register(returnRoutes(h.Return)).
		Register(partnerRoutes(h.Partner)...).
		Register(expenseRoutes(h.Expense)).
		Register(reportRoutes(h.Report)).
		Register(notificationRoutes(h.Notification)).
		Register(messagingRoutes(h.Messaging)).
		Setup()

	return engine
}

func can(action identity.Action) gin.HandlerFunc {
	return middleware.RequireAction(action)
}

func identityRoutes(h *handler.IdentityHandler) RouteRegistrar {
	g := NewDomainGroup("identity", "")
	g.GET("/me/permissions", h.Permissions)
	g.GET("/members", can(identity.ActionMemberManage), h.ListMembers)
	g.PUT("/members/:userId", can(identity.ActionMemberManage), h.UpdateMember)
	return g
}

func inventoryRoutes(h *handler.InventoryHandler) RouteRegistrar {
	g := NewDomainGroup("inventory", "/inventory")
	g.GET("", can(identity.ActionInventoryView), h.List)
	g.POST("", can(identity.ActionInventoryManage), h.Create)
	g.GET("/low-stock", can(identity.ActionInventoryView), h.ListLowStock)
	g.POST("/shipments/preview", can(identity.ActionInventoryReceive), h.PreviewShipment)
	g.POST("/shipments", can(identity.ActionInventoryReceive), h.ReceiveShipment)
	g.GET("/:id", can(identity.ActionInventoryView), h.GetByID)
	g.PUT("/:id", can(identity.ActionInventoryManage), h.Update)
	g.POST("/:id/adjust", can(identity.ActionInventoryAdjust), h.Adjust)
	g.GET("/:id/movements", can(identity.ActionInventoryView), h.ListMovements)
	return g
}

func invoiceRoutes(h *handler.InvoiceHandler, idempotent gin.HandlerFunc) RouteRegistrar {
	g := NewDomainGroup("invoices", "/invoices")
	g.GET("", can(identity.ActionInvoiceView), h.List)
	g.POST("", can(identity.ActionInvoiceCreate), idempotent, h.Create)
	g.GET("/:id", can(identity.ActionInvoiceView), h.GetByID)
	g.PUT("/:id", can(identity.ActionInvoiceEdit), h.Update)
	g.POST("/:id/cancel", can(identity.ActionInvoiceCancel), h.Cancel)
	g.POST("/:id/payments", can(identity.ActionInvoicePay), idempotent, h.AddPayment)
	return g
}

func returnRoutes(h *handler.ReturnHandler) RouteRegistrar {
	g := NewDomainGroup("returns", "/returns")
	g.GET("", can(identity.ActionInvoiceView), h.List)
	g.POST("", can(identity.ActionReturnCreate), h.Create)
	g.GET("/:id", can(identity.ActionInvoiceView), h.GetByID)
	g.POST("/:id/approve", can(identity.ActionReturnDecide), h.Approve)
	g.POST("/:id/reject", can(identity.ActionReturnDecide), h.Reject)
	return g
}

func partnerRoutes(h *handler.PartnerHandler) []RouteRegistrar {
	customers := NewDomainGroup("customers", "/customers")
	customers.GET("", can(identity.ActionInvoiceView), h.ListCustomers)
	customers.POST("", can(identity.ActionPartnerManage), h.CreateCustomer)
	customers.GET("/:id", can(identity.ActionInvoiceView), h.GetCustomer)
	customers.PUT("/:id", can(identity.ActionPartnerManage), h.UpdateCustomer)
	customers.DELETE("/:id", can(identity.ActionPartnerManage), h.DeleteCustomer)

	suppliers := NewDomainGroup("suppliers", "/suppliers")
	suppliers.GET("", can(identity.ActionInventoryView), h.ListSuppliers)
	suppliers.POST("", can(identity.ActionPartnerManage), h.CreateSupplier)
	suppliers.GET("/:id", can(identity.ActionInventoryView), h.GetSupplier)
	suppliers.PUT("/:id", can(identity.ActionPartnerManage), h.UpdateSupplier)
	suppliers.DELETE("/:id", can(identity.ActionPartnerManage), h.DeleteSupplier)

	return []RouteRegistrar{customers, suppliers}
}

func expenseRoutes(h *handler.ExpenseHandler) RouteRegistrar {
	g := NewDomainGroup("expenses", "/expenses")
	g.Use(can(identity.ActionExpenseManage))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:id", h.Delete)
	return g
}

func reportRoutes(h *handler.ReportHandler) RouteRegistrar {
	g := NewDomainGroup("reports", "/reports")
	g.Use(can(identity.ActionReportView))
	g.GET("/profit-loss", h.ProfitAndLoss)
	g.GET("/aging", h.ReceivablesAging)
	g.POST("/profit-loss/export", h.ExportProfitAndLoss)
	return g
}

func notificationRoutes(h *handler.NotificationHandler) RouteRegistrar {
	g := NewDomainGroup("notifications", "/notifications")
	g.GET("", h.List)
	g.GET("/unread-count", h.UnreadCount)
	g.POST("/read-all", h.MarkAllRead)
	g.POST("/:id/read", h.MarkRead)
	return g
}

func messagingRoutes(h *handler.MessagingHandler) RouteRegistrar {
	g := NewDomainGroup("conversations", "/conversations")
	g.Use(can(identity.ActionMessageSend))
	g.GET("", h.List)
	g.POST("", h.Start)
	g.GET("/:id", h.Get)
	g.GET("/:id/messages", h.Messages)
	g.POST("/:id/messages", h.Post)
	return g
}
