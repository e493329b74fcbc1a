package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/identity"
)

// MembershipModel maps a user to a role inside a tenant
type MembershipModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(200)"`
	Role      string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MembershipModel) TableName() string {
	return "memberships"
}

// ToDomain converts the persistence model to a domain Membership.
func (m *MembershipModel) ToDomain() *identity.Membership {
	return &identity.Membership{
		TenantID:  m.TenantID,
		UserID:    m.UserID,
		Username:  m.Username,
		Email:     m.Email,
		Role:      identity.Role(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// MembershipModelFromDomain creates a new persistence model from a domain Membership.
func MembershipModelFromDomain(m *identity.Membership) *MembershipModel {
	return &MembershipModel{
		TenantID:  m.TenantID,
		UserID:    m.UserID,
		Username:  m.Username,
		Email:     m.Email,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
