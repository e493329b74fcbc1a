package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/partner"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func principal(role identity.Role) identity.Principal {
	return identity.Principal{TenantID: uuid.New(), UserID: uuid.New(), Username: "tester", Role: role}
}

func TestCustomerService_Create(t *testing.T) {
	t.Run("staff can create customers", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := NewCustomerService(repo)
		p := principal(identity.RoleStaff)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Customer")).Return(nil)

		resp, err := svc.Create(context.Background(), p, CustomerRequest{ContactRequest: ContactRequest{Name: "Ada", Email: "ada@example.com"}})

		require.NoError(t, err)
		assert.Equal(t, "Ada", resp.Name)
		repo.AssertExpectations(t)
	})

	t.Run("validation error is returned before saving", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := NewCustomerService(repo)

		_, err := svc.Create(context.Background(), principal(identity.RoleOwner), CustomerRequest{ContactRequest: ContactRequest{Name: " "}})

		assert.True(t, errors.Is(err, shared.ErrValidation))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_Update(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerService(repo)
	p := principal(identity.RoleAdmin)
	existing, err := partner.NewCustomer(p.TenantID, partner.ContactInfo{Name: "Old"}, "")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, p.TenantID, existing.ID).Return(existing, nil)
	repo.On("Save", mock.Anything, existing).Return(nil)

	resp, err := svc.Update(context.Background(), p, existing.ID, CustomerRequest{ContactRequest: ContactRequest{Name: "New"}, Notes: "moved"})

	require.NoError(t, err)
	assert.Equal(t, "New", resp.Name)
	assert.Equal(t, "moved", resp.Notes)
}

func TestCustomerService_Delete_NotFound(t *testing.T) {
	repo := new(MockCustomerRepository)
	svc := NewCustomerService(repo)
	p := principal(identity.RoleOwner)
	id := uuid.New()
	repo.On("Delete", mock.Anything, p.TenantID, id).Return(shared.NewNotFoundError("Customer"))

	err := svc.Delete(context.Background(), p, id)

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
