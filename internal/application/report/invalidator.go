package report

import (
	"context"

	"github.com/retailops/backoffice/internal/domain/finance"
	"github.com/retailops/backoffice/internal/domain/invoice"
	"github.com/retailops/backoffice/internal/domain/returns"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// CacheInvalidator drops cached reports whenever a figure they depend on changes
type CacheInvalidator struct {
	service *Service
}

// NewCacheInvalidator creates a handler that bumps the report cache version
func NewCacheInvalidator(service *Service) *CacheInvalidator {
	return &CacheInvalidator{service: service}
}

// EventTypes returns the events that change report figures
func (h *CacheInvalidator) EventTypes() []string {
	return []string{
		invoice.EventTypeInvoiceCreated,
		invoice.EventTypeInvoiceUpdated,
		invoice.EventTypeInvoiceCancelled,
		invoice.EventTypePaymentRecorded,
		returns.EventTypeReturnApproved,
		finance.EventTypeExpenseRecorded,
		finance.EventTypeExpenseDeleted,
	}
}

// Handle bumps the tenant's report cache
func (h *CacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.service.Invalidate(ctx, event.TenantID())
	return nil
}

var _ shared.EventHandler = (*CacheInvalidator)(nil)
