package handler

import (
	"github.com/gin-gonic/gin"

	appfinance "github.com/retailops/backoffice/internal/application/finance"
)

// ExpenseHandler handles operating expense endpoints
type ExpenseHandler struct {
	BaseHandler
	expenses *appfinance.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses *appfinance.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// List godoc
// @ID           listExpenses
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        category query string false "Category"
// @Param        from query string false "On or after" format(date)
// @Param        to query string false "Before" format(date)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appfinance.ExpenseResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter appfinance.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.expenses.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Create godoc
// @ID           createExpense
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body appfinance.CreateExpenseRequest true "Expense"
// @Success      201 {object} APIResponse[appfinance.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appfinance.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.expenses.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// Delete godoc
// @ID           deleteExpense
// @Summary      Delete an expense
// @Tags         expenses
// @Param        id path string true "Expense ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.expenses.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
