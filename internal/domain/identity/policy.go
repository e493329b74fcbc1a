package identity

import "strings"

// Role is a member's role within one tenant
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// ParseRole normalizes a role string; unknown roles return false
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Action is an operation a member may attempt
type Action string

const (
	ActionInventoryView    Action = "inventory.view"
	ActionInventoryManage  Action = "inventory.manage"
	ActionInventoryAdjust  Action = "inventory.adjust"
	ActionInventoryReceive Action = "inventory.receive"
	ActionInvoiceView      Action = "invoice.view"
	ActionInvoiceCreate    Action = "invoice.create"
	ActionInvoiceEdit      Action = "invoice.edit"
	ActionInvoiceCancel    Action = "invoice.cancel"
	ActionInvoicePay       Action = "invoice.pay"
	ActionReturnCreate     Action = "return.create"
	ActionReturnDecide     Action = "return.decide"
	ActionPartnerManage    Action = "partner.manage"
	ActionExpenseManage    Action = "expense.manage"
	ActionReportView       Action = "report.view"
	ActionMemberManage     Action = "member.manage"
	ActionLowStockAlerts   Action = "notification.low_stock"
	ActionMessageSend      Action = "message.send"
)

// AllActions lists every action in a stable order
var AllActions = []Action{
	ActionInventoryView,
	ActionInventoryManage,
	ActionInventoryAdjust,
	ActionInventoryReceive,
	ActionInvoiceView,
	ActionInvoiceCreate,
	ActionInvoiceEdit,
	ActionInvoiceCancel,
	ActionInvoicePay,
	ActionReturnCreate,
	ActionReturnDecide,
	ActionPartnerManage,
	ActionExpenseManage,
	ActionReportView,
	ActionMemberManage,
	ActionLowStockAlerts,
	ActionMessageSend,
}

// staffActions is everything a staff member may do; owners and admins get more.
var staffActions = map[Action]struct{}{
	ActionInventoryView: {},
	ActionInvoiceView:   {},
	ActionInvoiceCreate: {},
	ActionInvoicePay:    {},
	ActionReturnCreate:  {},
	ActionPartnerManage: {},
	ActionMessageSend:   {},
}

// CanPerform is the single authorization decision for the whole service.
// HTTP middleware, application services and the permissions endpoint all call it.
func CanPerform(action Action, role Role) bool {
	switch role {
	case RoleOwner:
		return true
	case RoleAdmin:
		return action != ActionMemberManage
	case RoleStaff:
		_, ok := staffActions[action]
		return ok
	default:
		return false
	}
}

// PermittedActions returns the actions a role may perform, for clients that hide controls
func PermittedActions(role Role) []Action {
	actions := make([]Action, 0, len(AllActions))
	for _, a := range AllActions {
		if CanPerform(a, role) {
			actions = append(actions, a)
		}
	}
	return actions
}
