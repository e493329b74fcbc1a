package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/retailops/backoffice/internal/domain/finance"
	"github.com/retailops/backoffice/internal/domain/invoice"
	"github.com/retailops/backoffice/internal/domain/returns"
	"github.com/retailops/backoffice/internal/domain/shared"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]invoice.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]invoice.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindUnsettled(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.SalesReturn, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.SalesReturn), args.Error(1)
}

func (m *MockReturnRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]returns.SalesReturn, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).([]returns.SalesReturn), args.Error(1)
}

func (m *MockReturnRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]returns.SalesReturn, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]returns.SalesReturn), args.Get(1).(int64), args.Error(2)
}

func (m *MockReturnRepository) FindApprovedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]returns.SalesReturn, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]returns.SalesReturn), args.Error(1)
}

func (m *MockReturnRepository) Create(ctx context.Context, r *returns.SalesReturn) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReturnRepository) Save(ctx context.Context, r *returns.SalesReturn) error {
	return m.Called(ctx, r).Error(0)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) FindBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.Expense, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *finance.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	return m.Called(ctx, storageKey, data, contentType).Error(0)
}

func (m *MockStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
