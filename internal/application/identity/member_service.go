package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/shared"
)

// UpdateMemberRequest changes a member's role
type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=owner admin staff"`
}

// MemberResponse represents a membership in API responses
type MemberResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToMemberResponse converts a domain membership
func ToMemberResponse(m *identity.Membership) MemberResponse {
	return MemberResponse{
		UserID:    m.UserID,
		Username:  m.Username,
		Email:     m.Email,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// PermissionsResponse lists what the caller may do, from the same policy the server enforces
type PermissionsResponse struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Username    string          `json:"username"`
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
}

// Identity is what the auth layer knows about a caller before membership lookup
type Identity struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Username string
	Email    string
	Role     identity.Role
}

// MemberService manages tenant memberships and resolves principals
type MemberService struct {
	members identity.MembershipRepository
	logger  *zap.Logger
}

// NewMemberService creates a new MemberService
func NewMemberService(members identity.MembershipRepository, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{members: members, logger: logger}
}

// Resolve turns an authenticated identity into a principal. The stored
// membership role wins; a first-time caller is enrolled with the role its token carries.
func (s *MemberService) Resolve(ctx context.Context, id Identity) (identity.Principal, error) {
	m, err := s.members.FindByUser(ctx, id.TenantID, id.UserID)
	switch {
	case err == nil:
		return identity.Principal{TenantID: m.TenantID, UserID: m.UserID, Username: m.Username, Role: m.Role}, nil
	case !errors.Is(err, shared.ErrNotFound):
		return identity.Principal{}, err
	}

	m, err = identity.NewMembership(id.TenantID, id.UserID, id.Username, id.Email, id.Role)
	if err != nil {
		return identity.Principal{}, shared.ErrPermissionDenied.WithDetail("reason", "no membership in tenant")
	}
	if err := s.members.Save(ctx, m); err != nil {
		return identity.Principal{}, err
	}
	s.logger.Info("membership enrolled",
		zap.String("tenant_id", m.TenantID.String()),
		zap.String("user_id", m.UserID.String()),
		zap.String("role", string(m.Role)),
	)
	return identity.Principal{TenantID: m.TenantID, UserID: m.UserID, Username: m.Username, Role: m.Role}, nil
}

// Permissions evaluates every action for the caller
func (s *MemberService) Permissions(p identity.Principal) PermissionsResponse {
	perms := make(map[string]bool, len(identity.AllActions))
	for _, a := range identity.AllActions {
		perms[string(a)] = identity.CanPerform(a, p.Role)
	}
	return PermissionsResponse{
		TenantID:    p.TenantID,
		UserID:      p.UserID,
		Username:    p.Username,
		Role:        string(p.Role),
		Permissions: perms,
	}
}

// List returns all members of the caller's tenant
func (s *MemberService) List(ctx context.Context, p identity.Principal) ([]MemberResponse, error) {
	if err := p.Authorize(identity.ActionMemberManage); err != nil {
		return nil, err
	}
	members, err := s.members.FindByTenant(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]MemberResponse, len(members))
	for i := range members {
		out[i] = ToMemberResponse(&members[i])
	}
	return out, nil
}

// UpdateRole changes a member's role. The last owner cannot be demoted.
func (s *MemberService) UpdateRole(ctx context.Context, p identity.Principal, userID uuid.UUID, req UpdateMemberRequest) (*MemberResponse, error) {
	if err := p.Authorize(identity.ActionMemberManage); err != nil {
		return nil, err
	}
	role, ok := identity.ParseRole(req.Role)
	if !ok {
		return nil, shared.NewValidationError("unknown role: " + req.Role)
	}
	m, err := s.members.FindByUser(ctx, p.TenantID, userID)
	if err != nil {
		return nil, err
	}
	if m.Role == identity.RoleOwner && role != identity.RoleOwner {
		owners, err := s.members.FindByRoles(ctx, p.TenantID, identity.RoleOwner)
		if err != nil {
			return nil, err
		}
		if len(owners) <= 1 {
			return nil, shared.NewInvalidStateError("A tenant must keep at least one owner")
		}
	}
	if err := m.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.members.Save(ctx, m); err != nil {
		return nil, err
	}
	resp := ToMemberResponse(m)
	return &resp, nil
}
