package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appshared "github.com/retailops/backoffice/internal/application/shared"
	"github.com/retailops/backoffice/internal/domain/finance"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Category    string          `json:"category" binding:"required,oneof=rent utilities salary transport marketing maintenance other"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *time.Time      `json:"date"`
	Description string          `json:"description" binding:"max=500"`
}

// ListFilter represents filter options for the expense list
type ListFilter struct {
	Category string     `form:"category" binding:"omitempty,oneof=rent utilities salary transport marketing maintenance other"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size" binding:"omitempty,max=100"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID            uuid.UUID       `json:"id"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description,omitempty"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	CreatedByName string          `json:"created_by_name"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToExpenseResponse converts a domain expense
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		Category:      string(e.Category),
		Amount:        e.Amount,
		Date:          e.Date,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy,
		CreatedByName: e.CreatedByName,
		CreatedAt:     e.CreatedAt,
	}
}

// ExpenseService handles operating expenses
type ExpenseService struct {
	expenseRepo    finance.ExpenseRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo finance.ExpenseRepository, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{expenseRepo: expenseRepo, logger: logger}
}

// SetEventPublisher sets the event publisher
func (s *ExpenseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records an expense
func (s *ExpenseService) Create(ctx context.Context, p identity.Principal, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if err := p.Authorize(identity.ActionExpenseManage); err != nil {
		return nil, err
	}
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	e, err := finance.NewExpense(p.TenantID, finance.ExpenseCategory(req.Category), req.Amount, date, req.Description, p.Actor())
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, finance.NewExpenseChangedEvent(finance.EventTypeExpenseRecorded, e))
	resp := ToExpenseResponse(e)
	return &resp, nil
}

// List retrieves expenses with filtering and pagination
func (s *ExpenseService) List(ctx context.Context, p identity.Principal, filter ListFilter) (shared.Paginated[ExpenseResponse], error) {
	if err := p.Authorize(identity.ActionExpenseManage); err != nil {
		return shared.Paginated[ExpenseResponse]{}, err
	}
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "date", OrderDir: "desc", Filters: map[string]interface{}{}}
	if filter.Category != "" {
		f.Filters["category"] = filter.Category
	}
	if filter.From != nil {
		f.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		f.Filters["to"] = *filter.To
	}
	f = f.Normalize()
	list, total, err := s.expenseRepo.FindAll(ctx, p.TenantID, f)
	if err != nil {
		return shared.Paginated[ExpenseResponse]{}, err
	}
	out := make([]ExpenseResponse, len(list))
	for i := range list {
		out[i] = ToExpenseResponse(&list[i])
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	if err := p.Authorize(identity.ActionExpenseManage); err != nil {
		return err
	}
	e, err := s.expenseRepo.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, p.TenantID, id); err != nil {
		return err
	}
	appshared.PublishAfterCommit(ctx, s.eventPublisher, s.logger, finance.NewExpenseChangedEvent(finance.EventTypeExpenseDeleted, e))
	return nil
}
