package shared

import (
	"context"

	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// PublishAfterCommit hands committed events to the publisher. Failures are
// logged and never surface to the caller: the business operation already succeeded.
func PublishAfterCommit(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events ...shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil && logger != nil {
		logger.Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// CollectEvents drains pending events from aggregates
func CollectEvents(aggregates ...shared.AggregateRoot) []shared.DomainEvent {
	out := make([]shared.DomainEvent, 0)
	for _, a := range aggregates {
		if a == nil {
			continue
		}
		out = append(out, a.GetDomainEvents()...)
		a.ClearDomainEvents()
	}
	return out
}
