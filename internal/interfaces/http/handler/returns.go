package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreturns "github.com/retailops/backoffice/internal/application/returns"
	"github.com/retailops/backoffice/internal/domain/identity"
)

// ReturnHandler handles customer return endpoints
type ReturnHandler struct {
	BaseHandler
	returns *appreturns.Service
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returns *appreturns.Service) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

// List godoc
// @ID           listReturns
// @Summary      List customer returns
// @Tags         returns
// @Produce      json
// @Param        status query string false "Status" Enums(Pending, Approved, Rejected)
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appreturns.ReturnResponse]
// @Security     BearerAuth
// @Router       /returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter appreturns.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.returns.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Create godoc
// @ID           createReturn
// @Summary      Request a return
// @Description  Quantities are checked against what was sold minus what is already returned
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body appreturns.CreateReturnRequest true "Return"
// @Success      201 {object} APIResponse[appreturns.ReturnResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appreturns.CreateReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ret, err := h.returns.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// GetByID godoc
// @ID           getReturn
// @Summary      Get a return
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[appreturns.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id} [get]
func (h *ReturnHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	ret, err := h.returns.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Approve godoc
// @ID           approveReturn
// @Summary      Approve a return
// @Description  Restocks the returned quantities with return movements
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        request body appreturns.DecisionRequest false "Decision note"
// @Success      200 {object} APIResponse[appreturns.ReturnResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/approve [post]
func (h *ReturnHandler) Approve(c *gin.Context) {
	h.decide(c, h.returns.Approve)
}

// Reject godoc
// @ID           rejectReturn
// @Summary      Reject a return
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        request body appreturns.DecisionRequest false "Decision note"
// @Success      200 {object} APIResponse[appreturns.ReturnResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/reject [post]
func (h *ReturnHandler) Reject(c *gin.Context) {
	h.decide(c, h.returns.Reject)
}

type decisionFunc func(ctx context.Context, p identity.Principal, id uuid.UUID, req appreturns.DecisionRequest) (*appreturns.ReturnResponse, error)

func (h *ReturnHandler) decide(c *gin.Context, fn decisionFunc) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	// The note is optional; an empty body is accepted.
	var req appreturns.DecisionRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	ret, err := fn(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}
