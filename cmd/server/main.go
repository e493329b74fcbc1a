package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	financeapp "github.com/retailops/backoffice/internal/application/finance"
	identityapp "github.com/retailops/backoffice/internal/application/identity"
	inventoryapp "github.com/retailops/backoffice/internal/application/inventory"
	invoiceapp "github.com/retailops/backoffice/internal/application/invoice"
	messagingapp "github.com/retailops/backoffice/internal/application/messaging"
	notificationapp "github.com/retailops/backoffice/internal/application/notification"
	partnerapp "github.com/retailops/backoffice/internal/application/partner"
	reportapp "github.com/retailops/backoffice/internal/application/report"
	returnsapp "github.com/retailops/backoffice/internal/application/returns"
	"github.com/retailops/backoffice/internal/infrastructure/auth"
	"github.com/retailops/backoffice/internal/infrastructure/cache"
	"github.com/retailops/backoffice/internal/infrastructure/config"
	"github.com/retailops/backoffice/internal/infrastructure/event"
	"github.com/retailops/backoffice/internal/infrastructure/jobs"
	"github.com/retailops/backoffice/internal/infrastructure/logger"
	"github.com/retailops/backoffice/internal/infrastructure/persistence"
	"github.com/retailops/backoffice/internal/infrastructure/storage"
	"github.com/retailops/backoffice/internal/infrastructure/telemetry"
	"github.com/retailops/backoffice/internal/interfaces/http/handler"
	"github.com/retailops/backoffice/internal/interfaces/http/middleware"
	"github.com/retailops/backoffice/internal/interfaces/http/router"
)

//	@title			Retail Back Office API
//	@version		1.0
//	@description	Multi-tenant inventory, invoicing, returns and reporting for small retailers

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "backoffice: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// The OTLP log bridge must exist before the logger so its core can be teed in.
	logsCfg := telemetryCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg)
	if err != nil {
		return err
	}
	var extraCores []zapcore.Core
	if logsCfg.Enabled {
		extraCores = append(extraCores, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, extraCores...)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		return err
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", zap.Error(err))
	} else if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if profiler != nil {
			_ = profiler.Stop()
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Log provider shutdown failed", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	log.Info("Database connected")

	needsRedis := cfg.Idempotency.Backend == "redis" || cfg.ReportCache.Enabled || cfg.Jobs.Enabled
	var redisClient *redis.Client
	if needsRedis {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, continuing without it", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Repositories
	gdb := db.DB
	txScope := persistence.NewGormTransactionScope(gdb)
	itemRepo := persistence.NewGormInventoryItemRepository(gdb)
	movementRepo := persistence.NewGormStockMovementRepository(gdb)
	invoiceRepo := persistence.NewGormInvoiceRepository(gdb)
	returnRepo := persistence.NewGormSalesReturnRepository(gdb)
	expenseRepo := persistence.NewGormExpenseRepository(gdb)
	memberRepo := persistence.NewGormMembershipRepository(gdb)
	notificationRepo := persistence.NewGormNotificationRepository(gdb)

	// Application services
	memberService := identityapp.NewMemberService(memberRepo, log)
	inventoryService := inventoryapp.NewInventoryService(itemRepo, movementRepo, txScope, log)
	invoiceService := invoiceapp.NewService(invoiceRepo, txScope, log)
	returnService := returnsapp.NewService(returnRepo, txScope, log)
	expenseService := financeapp.NewExpenseService(expenseRepo, log)
	notificationService := notificationapp.NewService(notificationRepo, memberRepo, log)
	messagingService := messagingapp.NewService(persistence.NewGormConversationRepository(gdb), memberRepo, notificationRepo, log)
	reportService := reportapp.NewService(invoiceRepo, returnRepo, expenseRepo, log)

	if cfg.ReportCache.Enabled && redisClient != nil {
		reportService.SetCache(cache.NewReportCache(redisClient, cfg.ReportCache.TTL))
		log.Info("Report cache enabled", zap.Duration("ttl", cfg.ReportCache.TTL))
	}
	if cfg.Storage.Enabled() {
		s3, err := storage.NewS3ReportStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Warn("Report export disabled", zap.Error(err))
		} else {
			if err := s3.EnsureBucket(ctx); err != nil {
				log.Warn("Failed to ensure report bucket", zap.Error(err))
			}
			reportService.SetStorage(s3)
		}
	}

	// Events: low-stock alerts go through the queue when jobs are enabled,
	// otherwise they are written inline.
	var lowStockNotifier notificationapp.LowStockNotifier = notificationService
	if cfg.Jobs.Enabled && redisClient != nil {
		jobsClient := jobs.NewClient(jobs.RedisOpt(cfg.Redis), cfg.Jobs, log)
		defer func() { _ = jobsClient.Close() }()
		lowStockNotifier = jobsClient
		log.Info("Low-stock alerts queued for the worker", zap.String("queue", cfg.Jobs.Queue))
	}

	eventBus := event.NewInMemoryEventBus(log)
	lowStockHandler := notificationapp.NewLowStockHandler(lowStockNotifier, log)
	eventBus.Subscribe(lowStockHandler, lowStockHandler.EventTypes()...)
	invalidator := reportapp.NewCacheInvalidator(reportService)
	eventBus.Subscribe(invalidator, invalidator.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		return err
	}

	inventoryService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)
	returnService.SetEventPublisher(eventBus)
	expenseService.SetEventPublisher(eventBus)

	// HTTP
	verifier, err := auth.NewVerifier(cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	idempotencyStore := cache.NewIdempotencyStoreFactory(cfg.Idempotency,
		cache.WithLogger(log),
		cache.WithRedisClient(redisUniversal(redisClient)),
	).CreateStore()
	defer func() { _ = idempotencyStore.Close() }()

	health := handler.NewHealthHandler(cfg.App.Name, version)
	health.AddCheck("database", db.Ping)
	if redisClient != nil {
		health.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler != nil && profiler.IsEnabled()

	engine := router.NewEngine(router.Options{
		Logger:     log,
		HTTP:       cfg.HTTP,
		Production: cfg.IsProduction(),
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Profiling:        profilingCfg,
		Auth:             middleware.AuthConfig{Verifier: verifier, Resolver: memberService, Logger: log},
		RateLimiter:      rateLimiter,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.Idempotency.TTL,
	}, router.Handlers{
		Health:    health,
		Identity:  handler.NewIdentityHandler(memberService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Invoice:   handler.NewInvoiceHandler(invoiceService),
		Return:    handler.NewReturnHandler(returnService),
		Partner: handler.NewPartnerHandler(
			partnerapp.NewCustomerService(persistence.NewGormCustomerRepository(gdb)),
			partnerapp.NewSupplierService(persistence.NewGormSupplierRepository(gdb)),
		),
		Expense:      handler.NewExpenseHandler(expenseService),
		Report:       handler.NewReportHandler(reportService),
		Notification: handler.NewNotificationHandler(notificationService),
		Messaging:    handler.NewMessagingHandler(messagingService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	if rateLimiter != nil {
		g.Go(func() error {
			rateLimiter.RunCleanup(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
		}
		if err := eventBus.Stop(shutdownCtx); err != nil {
			log.Warn("Event bus stop failed", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	log.Info("Server exited")
	return err
}

// redisUniversal avoids handing the factory a typed nil client
func redisUniversal(c *redis.Client) redis.UniversalClient {
	if c == nil {
		return nil
	}
	return c
}
