package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/partner"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, p identity.Principal, req CustomerRequest) (*CustomerResponse, error) {
	if err := p.Authorize(identity.ActionPartnerManage); err != nil {
		return nil, err
	}
	c, err := partner.NewCustomer(p.TenantID, req.info(), req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*CustomerResponse, error) {
	if err := p.Authorize(identity.ActionInvoiceView); err != nil {
		return nil, err
	}
	c, err := s.customerRepo.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// List retrieves customers, optionally searching name, phone and email
func (s *CustomerService) List(ctx context.Context, p identity.Principal, filter ListFilter) (shared.Paginated[CustomerResponse], error) {
	if err := p.Authorize(identity.ActionInvoiceView); err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "name", OrderDir: "asc", Search: strings.TrimSpace(filter.Search)}.Normalize()
	list, total, err := s.customerRepo.FindAll(ctx, p.TenantID, f)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	out := make([]CustomerResponse, len(list))
	for i := range list {
		out[i] = ToCustomerResponse(&list[i])
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// Update replaces a customer's details
func (s *CustomerService) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req CustomerRequest) (*CustomerResponse, error) {
	if err := p.Authorize(identity.ActionPartnerManage); err != nil {
		return nil, err
	}
	c, err := s.customerRepo.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(req.info(), req.Notes); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Delete removes a customer. Invoices keep the customer name and phone they captured.
func (s *CustomerService) Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	if err := p.Authorize(identity.ActionPartnerManage); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, p.TenantID, id)
}
