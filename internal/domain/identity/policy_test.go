package identity

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/domain/shared"
)

func TestCanPerform(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		role   Role
		want   bool
	}{
		{"owner manages members", ActionMemberManage, RoleOwner, true},
		{"admin cannot manage members", ActionMemberManage, RoleAdmin, false},
		{"admin cancels invoices", ActionInvoiceCancel, RoleAdmin, true},
		{"staff creates invoices", ActionInvoiceCreate, RoleStaff, true},
		{"staff records payments", ActionInvoicePay, RoleStaff, true},
		{"staff cannot cancel invoices", ActionInvoiceCancel, RoleStaff, false},
		{"staff cannot edit invoices", ActionInvoiceEdit, RoleStaff, false},
		{"staff cannot adjust stock", ActionInventoryAdjust, RoleStaff, false},
		{"staff cannot view reports", ActionReportView, RoleStaff, false},
		{"unknown role denied", ActionInvoiceView, Role("guest"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.action, tt.role))
		})
	}
}

func TestPermittedActions(t *testing.T) {
	assert.Len(t, PermittedActions(RoleOwner), len(AllActions))
	assert.NotContains(t, PermittedActions(RoleAdmin), ActionMemberManage)
	assert.ElementsMatch(t, []Action{
		ActionInventoryView, ActionInvoiceView, ActionInvoiceCreate,
		ActionInvoicePay, ActionReturnCreate, ActionPartnerManage,
		ActionMessageSend,
	}, PermittedActions(RoleStaff))
}

func TestPrivilegedRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleOwner, RoleAdmin}, PrivilegedRoles(ActionLowStockAlerts))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Admin ")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}

func TestPrincipal_Authorize(t *testing.T) {
	p := Principal{TenantID: uuid.New(), UserID: uuid.New(), Username: "sam", Role: RoleStaff}

	require.NoError(t, p.Authorize(ActionInvoiceCreate))

	err := p.Authorize(ActionInvoiceCancel)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrPermissionDenied))
}

func TestNewMembership(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := NewMembership(uuid.New(), uuid.New(), " alice ", "a@example.com", RoleOwner)
		require.NoError(t, err)
		assert.Equal(t, "alice", m.Username)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewMembership(uuid.New(), uuid.New(), "bob", "", Role("superuser"))
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("change role", func(t *testing.T) {
		m, err := NewMembership(uuid.New(), uuid.New(), "carol", "", RoleStaff)
		require.NoError(t, err)
		require.NoError(t, m.ChangeRole(RoleAdmin))
		assert.Equal(t, RoleAdmin, m.Role)
	})
}
