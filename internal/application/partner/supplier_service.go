package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/partner"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, p identity.Principal, req SupplierRequest) (*SupplierResponse, error) {
	if err := p.Authorize(identity.ActionPartnerManage); err != nil {
		return nil, err
	}
	sup, err := partner.NewSupplier(p.TenantID, req.info(), req.ContactPerson)
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, sup); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(sup)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*SupplierResponse, error) {
	if err := p.Authorize(identity.ActionInventoryView); err != nil {
		return nil, err
	}
	sup, err := s.supplierRepo.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(sup)
	return &resp, nil
}

// List retrieves suppliers
func (s *SupplierService) List(ctx context.Context, p identity.Principal, filter ListFilter) (shared.Paginated[SupplierResponse], error) {
	if err := p.Authorize(identity.ActionInventoryView); err != nil {
		return shared.Paginated[SupplierResponse]{}, err
	}
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "name", OrderDir: "asc", Search: strings.TrimSpace(filter.Search)}.Normalize()
	list, total, err := s.supplierRepo.FindAll(ctx, p.TenantID, f)
	if err != nil {
		return shared.Paginated[SupplierResponse]{}, err
	}
	out := make([]SupplierResponse, len(list))
	for i := range list {
		out[i] = ToSupplierResponse(&list[i])
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// Update replaces a supplier's details
func (s *SupplierService) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req SupplierRequest) (*SupplierResponse, error) {
	if err := p.Authorize(identity.ActionPartnerManage); err != nil {
		return nil, err
	}
	sup, err := s.supplierRepo.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := sup.Update(req.info(), req.ContactPerson); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, sup); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(sup)
	return &resp, nil
}

// Delete removes a supplier
func (s *SupplierService) Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	if err := p.Authorize(identity.ActionPartnerManage); err != nil {
		return err
	}
	return s.supplierRepo.Delete(ctx, p.TenantID, id)
}
