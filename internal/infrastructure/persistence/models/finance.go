package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/finance"
)

// ExpenseModel is the persistence model for an operating expense
type ExpenseModel struct {
	TenantModel
	Category      string          `gorm:"type:varchar(30);not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Date          time.Time       `gorm:"not null;index"`
	Description   string          `gorm:"type:varchar(500)"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid"`
	CreatedByName string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense.
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		TenantEntity:  m.ToTenantEntity(),
		Category:      finance.ExpenseCategory(m.Category),
		Amount:        m.Amount,
		Date:          m.Date,
		Description:   m.Description,
		CreatedBy:     m.CreatedBy,
		CreatedByName: m.CreatedByName,
	}
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense.
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Category:      string(e.Category),
		Amount:        e.Amount,
		Date:          e.Date,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy,
		CreatedByName: e.CreatedByName,
	}
	m.FromDomainTenantEntity(e.TenantEntity)
	return m
}
