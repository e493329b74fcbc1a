package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/application/notification"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/config"
	"github.com/retailops/backoffice/internal/infrastructure/logger"
	"github.com/retailops/backoffice/internal/infrastructure/telemetry"
)

// LowStockJob writes the notifications for a queued low-stock task
type LowStockJob struct {
	notifier notification.LowStockNotifier
	logger   *zap.Logger
}

// NewLowStockJob creates the task handler; notifier is normally notification.Service
func NewLowStockJob(notifier notification.LowStockNotifier, log *zap.Logger) *LowStockJob {
	if log == nil {
		log = zap.NewNop()
	}
	return &LowStockJob{notifier: notifier, logger: log}
}

// Handle fulfils asynq.HandlerFunc. Malformed payloads are not retried.
func (j *LowStockJob) Handle(ctx context.Context, task *asynq.Task) (err error) {
	payload, err := ParseLowStockPayload(task)
	if err != nil {
		j.logger.Error("malformed low stock task", zap.Error(err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	ctx, span := telemetry.StartConsumerSpan(ctx, "jobs."+TaskLowStock,
		attribute.String("tenant_id", payload.TenantID.String()),
		attribute.String("item_id", payload.ItemID.String()),
	)
	defer func() { telemetry.End(span, err) }()

	ctx = logger.WithContext(ctx, j.logger)
	ctx = logger.WithScope(ctx, logger.Scope{TenantID: payload.TenantID.String()})

	err = j.notifier.NotifyLowStock(ctx, payload)
	if errors.Is(err, shared.ErrValidation) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

// Worker runs the asynq server
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewWorker wires the low-stock handler into an asynq server
func NewWorker(redisOpt asynq.RedisConnOpt, cfg config.JobsConfig, job *LowStockJob, log *zap.Logger) *Worker {
	queue := cfg.Queue
	if queue == "" {
		queue = QueueDefault
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      log.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLowStock, job.Handle)
	return &Worker{server: srv, mux: mux, logger: log}
}

// Run processes tasks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.logger.Info("worker started")
	<-ctx.Done()
	w.server.Shutdown()
	w.logger.Info("worker stopped")
	return nil
}
