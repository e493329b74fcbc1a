package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// Membership maps an authenticated user to a role inside one tenant
type Membership struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Username  string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMembership creates a validated membership
func NewMembership(tenantID, userID uuid.UUID, username, email string, role Role) (*Membership, error) {
	if tenantID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewValidationError("tenant and user are required")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewValidationError("username cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("unknown role: " + string(role))
	}
	now := time.Now()
	return &Membership{
		TenantID:  tenantID,
		UserID:    userID,
		Username:  username,
		Email:     strings.TrimSpace(email),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ChangeRole updates the member's role
func (m *Membership) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewValidationError("unknown role: " + string(role))
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	return nil
}

// Principal is the authenticated caller acting inside a tenant
type Principal struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Username string
	Role     Role
}

// Can reports whether the principal's role allows action
func (p Principal) Can(action Action) bool {
	return CanPerform(action, p.Role)
}

// Authorize returns PERMISSION_DENIED when the role does not allow action
func (p Principal) Authorize(action Action) error {
	if !p.Can(action) {
		return shared.ErrPermissionDenied.WithDetail("action", string(action))
	}
	return nil
}

// Actor converts the principal into audit information
func (p Principal) Actor() shared.Actor {
	return shared.Actor{UserID: p.UserID, Username: p.Username}
}

// MembershipRepository persists tenant memberships
type MembershipRepository interface {
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*Membership, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Membership, error)
	// FindByRoles lists members holding any of roles, used to address notifications
	FindByRoles(ctx context.Context, tenantID uuid.UUID, roles ...Role) ([]Membership, error)
	Save(ctx context.Context, m *Membership) error
}

// PrivilegedRoles returns the roles allowed to receive alerts for action
func PrivilegedRoles(action Action) []Role {
	roles := make([]Role, 0, 3)
	for _, r := range []Role{RoleOwner, RoleAdmin, RoleStaff} {
		if CanPerform(action, r) {
			roles = append(roles, r)
		}
	}
	return roles
}
