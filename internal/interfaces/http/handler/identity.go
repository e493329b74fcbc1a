package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/retailops/backoffice/internal/application/identity"
)

// IdentityHandler serves the caller's permissions and tenant memberships
type IdentityHandler struct {
	BaseHandler
	members *appidentity.MemberService
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(members *appidentity.MemberService) *IdentityHandler {
	return &IdentityHandler{members: members}
}

// Permissions godoc
// @ID           getMyPermissions
// @Summary      Get my permissions
// @Description  Returns the caller's role and the actions that role may perform
// @Tags         identity
// @Produce      json
// @Success      200 {object} APIResponse[appidentity.PermissionsResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /me/permissions [get]
func (h *IdentityHandler) Permissions(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	h.Success(c, h.members.Permissions(p))
}

// ListMembers godoc
// @ID           listMembers
// @Summary      List tenant members
// @Tags         identity
// @Produce      json
// @Success      200 {object} APIResponse[[]appidentity.MemberResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /members [get]
func (h *IdentityHandler) ListMembers(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	members, err := h.members.List(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// UpdateMember godoc
// @ID           updateMember
// @Summary      Change a member's role
// @Description  Owner only. The last owner of a tenant cannot be demoted.
// @Tags         identity
// @Accept       json
// @Produce      json
// @Param        userId path string true "User ID" format(uuid)
// @Param        request body appidentity.UpdateMemberRequest true "New role"
// @Success      200 {object} APIResponse[appidentity.MemberResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /members/{userId} [put]
func (h *IdentityHandler) UpdateMember(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	userID, ok := h.uuidParam(c, "userId")
	if !ok {
		return
	}
	var req appidentity.UpdateMemberRequest
	if !h.bindJSON(c, &req) {
		return
	}

	member, err := h.members.UpdateRole(c.Request.Context(), p, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}
