package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// ExpenseCategory represents the category of an expense
type ExpenseCategory string

const (
	ExpenseCategoryRent        ExpenseCategory = "rent"
	ExpenseCategoryUtilities   ExpenseCategory = "utilities"
	ExpenseCategorySalary      ExpenseCategory = "salary"
	ExpenseCategoryTransport   ExpenseCategory = "transport"
	ExpenseCategoryMarketing   ExpenseCategory = "marketing"
	ExpenseCategoryMaintenance ExpenseCategory = "maintenance"
	ExpenseCategoryOther       ExpenseCategory = "other"
)

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategorySalary,
		ExpenseCategoryTransport, ExpenseCategoryMarketing, ExpenseCategoryMaintenance,
		ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense is an operating cost that feeds the profit and loss report
type Expense struct {
	shared.TenantEntity
	Category      ExpenseCategory
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	CreatedBy     uuid.UUID
	CreatedByName string
}

// NewExpense creates a validated expense
func NewExpense(tenantID uuid.UUID, category ExpenseCategory, amount decimal.Decimal, date time.Time, description string, actor shared.Actor) (*Expense, error) {
	if !category.IsValid() {
		return nil, shared.NewValidationError("Invalid expense category: " + string(category))
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Expense amount must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Expense{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		Category:      category,
		Amount:        amount.Round(2),
		Date:          date,
		Description:   strings.TrimSpace(description),
		CreatedBy:     actor.UserID,
		CreatedByName: actor.Username,
	}, nil
}

// TotalsByCategory sums expenses per category
func TotalsByCategory(expenses []Expense) map[ExpenseCategory]decimal.Decimal {
	out := make(map[ExpenseCategory]decimal.Decimal)
	for _, e := range expenses {
		out[e.Category] = out[e.Category].Add(e.Amount)
	}
	return out
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	// FindAll lists expenses; filter keys: category, from, to
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Expense, int64, error)
	FindBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Expense, error)
	Create(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// Event type constants
const (
	EventTypeExpenseRecorded = "finance.expense_recorded"
	EventTypeExpenseDeleted  = "finance.expense_deleted"
)

// ExpenseChangedEvent is raised when an expense is recorded or deleted
type ExpenseChangedEvent struct {
	shared.BaseDomainEvent
	Category ExpenseCategory `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
}

// NewExpenseChangedEvent creates an ExpenseChangedEvent of the given type
func NewExpenseChangedEvent(eventType string, e *Expense) *ExpenseChangedEvent {
	return &ExpenseChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Expense", e.ID, e.TenantID),
		Category:        e.Category,
		Amount:          e.Amount,
		Date:            e.Date,
	}
}
