package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/application/notification"
	"github.com/retailops/backoffice/internal/infrastructure/config"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client enqueues low-stock tasks. It satisfies notification.LowStockNotifier
// so the event handler does not care whether delivery is inline or queued.
type Client struct {
	client   enqueuer
	queue    string
	maxRetry int
	logger   *zap.Logger
}

// RedisOpt converts redis settings into asynq connection options
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr(), Password: cfg.Password, DB: cfg.DB}
}

// NewClient creates a queue client
func NewClient(redisOpt asynq.RedisConnOpt, cfg config.JobsConfig, logger *zap.Logger) *Client {
	return newClient(asynq.NewClient(redisOpt), cfg, logger)
}

func newClient(e enqueuer, cfg config.JobsConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := cfg.Queue
	if queue == "" {
		queue = QueueDefault
	}
	return &Client{client: e, queue: queue, maxRetry: cfg.MaxRetry, logger: logger}
}

// NotifyLowStock enqueues the alert. A task already queued for the same change is not an error.
func (c *Client) NotifyLowStock(ctx context.Context, payload notification.LowStockPayload) error {
	opts := []asynq.Option{asynq.Queue(c.queue)}
	if c.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(c.maxRetry))
	}
	task, err := NewLowStockTask(payload, opts...)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		c.logger.Debug("low stock task already queued", zap.String("item_id", payload.ItemID.String()))
		return nil
	}
	if err != nil {
		return err
	}
	c.logger.Info("low stock task enqueued",
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
		zap.String("tenant_id", payload.TenantID.String()),
	)
	return nil
}

// Close releases the redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

var _ notification.LowStockNotifier = (*Client)(nil)
