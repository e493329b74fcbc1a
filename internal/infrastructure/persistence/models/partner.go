package models

import (
	"github.com/retailops/backoffice/internal/domain/partner"
)

// ContactColumns are the contact fields shared by customers and suppliers
type ContactColumns struct {
	Name    string `gorm:"type:varchar(200);not null;index"`
	Phone   string `gorm:"type:varchar(50)"`
	Email   string `gorm:"type:varchar(200)"`
	Address string `gorm:"type:varchar(500)"`
}

func contactColumns(c partner.ContactInfo) ContactColumns {
	return ContactColumns{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

func (c ContactColumns) toDomain() partner.ContactInfo {
	return partner.ContactInfo{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	TenantAggregateModel
	ContactColumns
	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		ContactInfo:         m.ContactColumns.toDomain(),
		Notes:               m.Notes,
	}
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{ContactColumns: contactColumns(c.ContactInfo), Notes: c.Notes}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// SupplierModel is the persistence model for the Supplier aggregate root.
type SupplierModel struct {
	TenantAggregateModel
	ContactColumns
	ContactPerson string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		ContactInfo:         m.ContactColumns.toDomain(),
		ContactPerson:       m.ContactPerson,
	}
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{ContactColumns: contactColumns(s.ContactInfo), ContactPerson: s.ContactPerson}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}
