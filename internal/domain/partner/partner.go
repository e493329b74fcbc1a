package partner

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// ContactInfo holds the fields common to customers and suppliers
type ContactInfo struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

func (c ContactInfo) normalized() ContactInfo {
	return ContactInfo{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.ToLower(strings.TrimSpace(c.Email)),
		Address: strings.TrimSpace(c.Address),
	}
}

// Validate checks name and email format
func (c ContactInfo) Validate() error {
	c = c.normalized()
	if c.Name == "" {
		return shared.NewValidationError("Name cannot be empty")
	}
	if len(c.Name) > 200 {
		return shared.NewValidationError("Name cannot exceed 200 characters")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return shared.NewValidationError("Invalid email address")
		}
	}
	return nil
}

// Customer is someone the tenant sells to
type Customer struct {
	shared.TenantAggregateRoot
	ContactInfo
	Notes string
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, info ContactInfo, notes string) (*Customer, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContactInfo:         info.normalized(),
		Notes:               strings.TrimSpace(notes),
	}, nil
}

// Update replaces the customer's contact details
func (c *Customer) Update(info ContactInfo, notes string) error {
	if err := info.Validate(); err != nil {
		return err
	}
	c.ContactInfo = info.normalized()
	c.Notes = strings.TrimSpace(notes)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Supplier is someone the tenant buys shipments from
type Supplier struct {
	shared.TenantAggregateRoot
	ContactInfo
	ContactPerson string
}

// NewSupplier creates a new supplier
func NewSupplier(tenantID uuid.UUID, info ContactInfo, contactPerson string) (*Supplier, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContactInfo:         info.normalized(),
		ContactPerson:       strings.TrimSpace(contactPerson),
	}, nil
}

// Update replaces the supplier's contact details
func (s *Supplier) Update(info ContactInfo, contactPerson string) error {
	if err := info.Validate(); err != nil {
		return err
	}
	s.ContactInfo = info.normalized()
	s.ContactPerson = strings.TrimSpace(contactPerson)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)
	Save(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Supplier, int64, error)
	Save(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
