package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appinventory "github.com/retailops/backoffice/internal/application/inventory"
	appshared "github.com/retailops/backoffice/internal/application/shared"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/inventory"
	"github.com/retailops/backoffice/internal/domain/invoice"
	"github.com/retailops/backoffice/internal/domain/returns"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// ReturnItemRequest is one returned product line
type ReturnItemRequest struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,gte=1"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
}

// CreateReturnRequest represents a customer return against an invoice
type CreateReturnRequest struct {
	InvoiceID uuid.UUID           `json:"invoice_id" binding:"required"`
	Items     []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	Reason    string              `json:"reason" binding:"max=500"`
}

// DecisionRequest carries an optional note for approve or reject
type DecisionRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// ListFilter represents filter options for the return list
type ListFilter struct {
	Status    string     `form:"status" binding:"omitempty,oneof=Pending Approved Rejected"`
	InvoiceID *uuid.UUID `form:"invoice_id"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size" binding:"omitempty,max=100"`
}

// ReturnItemResponse represents a returned line
type ReturnItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
}

// ReturnResponse represents a sales return in API responses
type ReturnResponse struct {
	ID            uuid.UUID            `json:"id"`
	Number        string               `json:"number"`
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	InvoiceNumber string               `json:"invoice_number"`
	Items         []ReturnItemResponse `json:"items"`
	TotalRefund   decimal.Decimal      `json:"total_refund"`
	Reason        string               `json:"reason,omitempty"`
	Status        string               `json:"status"`
	CreatedBy     uuid.UUID            `json:"created_by"`
	CreatedByName string               `json:"created_by_name"`
	CreatedAt     time.Time            `json:"created_at"`
	DecidedAt     *time.Time           `json:"decided_at,omitempty"`
	DecidedBy     *uuid.UUID           `json:"decided_by,omitempty"`
	DecisionNote  string               `json:"decision_note,omitempty"`
}

// ToReturnResponse converts a domain return
func ToReturnResponse(r *returns.SalesReturn) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReturnItemResponse{
			ID:              it.ID,
			InventoryItemID: it.InventoryItemID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			RefundAmount:    it.RefundAmount,
		}
	}
	return ReturnResponse{
		ID:            r.ID,
		Number:        r.Number,
		InvoiceID:     r.InvoiceID,
		InvoiceNumber: r.InvoiceNumber,
		Items:         items,
		TotalRefund:   r.TotalRefund(),
		Reason:        r.Reason,
		Status:        string(r.Status),
		CreatedBy:     r.CreatedBy,
		CreatedByName: r.CreatedByName,
		CreatedAt:     r.CreatedAt,
		DecidedAt:     r.DecidedAt,
		DecidedBy:     r.DecidedBy,
		DecisionNote:  r.DecisionNote,
	}
}

// Service handles customer returns
type Service struct {
	returns        returns.SalesReturnRepository
	txScope        appshared.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new returns Service
func NewService(repo returns.SalesReturnRepository, txScope appshared.TransactionScope, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{returns: repo, txScope: txScope, logger: logger, now: time.Now}
}

// SetEventPublisher sets the publisher used after commit
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records a pending return. Quantities are checked against what the
// invoice sold minus what earlier non-rejected returns already claim.
func (s *Service) Create(ctx context.Context, p identity.Principal, req CreateReturnRequest) (*ReturnResponse, error) {
	if err := p.Authorize(identity.ActionReturnCreate); err != nil {
		return nil, err
	}

	var ret *returns.SalesReturn
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByID(ctx, p.TenantID, req.InvoiceID)
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return shared.NewInvalidStateError("Cannot return goods from a cancelled invoice")
		}
		prior, err := repos.Returns().FindByInvoice(ctx, p.TenantID, inv.ID)
		if err != nil {
			return err
		}
		returnable := returns.Returnable(invoice.ProductQuantities(inv.LineItems), prior)

		items := make([]returns.Item, len(req.Items))
		for i, it := range req.Items {
			items[i] = returns.Item{
				InventoryItemID: it.InventoryItemID,
				Description:     lineDescription(inv, it.InventoryItemID),
				Quantity:        it.Quantity,
				RefundAmount:    it.RefundAmount,
			}
		}

		year := s.now().Year()
		seq, err := repos.Sequences().Next(ctx, p.TenantID, shared.PrefixReturn, year)
		if err != nil {
			return err
		}
		number := shared.FormatDocumentNumber(shared.PrefixReturn, year, seq)

		ret, err = returns.NewSalesReturn(p.TenantID, number, inv.ID, inv.Number, items, req.Reason, returnable, p.Actor())
		if err != nil {
			return err
		}
		return repos.Returns().Create(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales return created",
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("return_number", ret.Number),
		zap.String("invoice_number", ret.InvoiceNumber),
	)
	resp := ToReturnResponse(ret)
	return &resp, nil
}

func lineDescription(inv *invoice.Invoice, itemID uuid.UUID) string {
	for _, l := range inv.LineItems {
		if l.IsProduct() && *l.InventoryItemID == itemID {
			return l.Description
		}
	}
	return ""
}

// Approve accepts a pending return and puts the goods back on stock
func (s *Service) Approve(ctx context.Context, p identity.Principal, id uuid.UUID, req DecisionRequest) (*ReturnResponse, error) {
	if err := p.Authorize(identity.ActionReturnDecide); err != nil {
		return nil, err
	}

	var ret *returns.SalesReturn
	var keeper *appinventory.StockKeeper
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		ret, err = repos.Returns().FindByID(ctx, p.TenantID, id)
		if err != nil {
			return err
		}
		inv, err := repos.Invoices().FindByID(ctx, p.TenantID, ret.InvoiceID)
		if err != nil {
			return err
		}
		if inv.IsCancelled() {
			return shared.NewInvalidStateError("Invoice " + inv.Number + " was cancelled; its stock is already restored")
		}
		prior, err := repos.Returns().FindByInvoice(ctx, p.TenantID, inv.ID)
		if err != nil {
			return err
		}
		others := make([]returns.SalesReturn, 0, len(prior))
		for _, r := range prior {
			if r.ID != ret.ID {
				others = append(others, r)
			}
		}
		returnable := returns.Returnable(invoice.ProductQuantities(inv.LineItems), others)
		if itemID, allowed, over := ret.Exceeding(returnable); over {
			return shared.NewInvalidStateError(fmt.Sprintf("Invoice %s now leaves only %d units returnable", inv.Number, allowed)).
				WithDetail("inventory_item_id", itemID.String())
		}
		if err := ret.Approve(req.Note, p.Actor()); err != nil {
			return err
		}
		keeper = appinventory.NewStockKeeper(repos, p.Actor())
		if err := keeper.Restore(ctx, p.TenantID, ret.Quantities(), inventory.MovementReturn, ret.Number); err != nil {
			return err
		}
		return repos.Returns().Save(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, appshared.CollectEvents(ret)...)
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// Reject closes a pending return without touching stock
func (s *Service) Reject(ctx context.Context, p identity.Principal, id uuid.UUID, req DecisionRequest) (*ReturnResponse, error) {
	if err := p.Authorize(identity.ActionReturnDecide); err != nil {
		return nil, err
	}
	ret, err := s.returns.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := ret.Reject(req.Note, p.Actor()); err != nil {
		return nil, err
	}
	if err := s.returns.Save(ctx, ret); err != nil {
		return nil, err
	}
	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, appshared.CollectEvents(ret)...)
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// GetByID retrieves a return
func (s *Service) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*ReturnResponse, error) {
	if err := p.Authorize(identity.ActionInvoiceView); err != nil {
		return nil, err
	}
	ret, err := s.returns.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// List retrieves returns with filtering and pagination
func (s *Service) List(ctx context.Context, p identity.Principal, filter ListFilter) (shared.Paginated[ReturnResponse], error) {
	if err := p.Authorize(identity.ActionInvoiceView); err != nil {
		return shared.Paginated[ReturnResponse]{}, err
	}
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "created_at", OrderDir: "desc", Filters: map[string]interface{}{}}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.InvoiceID != nil {
		f.Filters["invoice_id"] = *filter.InvoiceID
	}
	f = f.Normalize()
	list, total, err := s.returns.FindAll(ctx, p.TenantID, f)
	if err != nil {
		return shared.Paginated[ReturnResponse]{}, err
	}
	out := make([]ReturnResponse, len(list))
	for i := range list {
		out[i] = ToReturnResponse(&list[i])
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}
