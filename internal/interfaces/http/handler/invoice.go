package handler

import (
	"github.com/gin-gonic/gin"

	appinvoice "github.com/retailops/backoffice/internal/application/invoice"
)

// InvoiceHandler handles invoice lifecycle endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *appinvoice.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *appinvoice.Service) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        search query string false "Number or customer name"
// @Param        status query string false "Status" Enums(Paid, Unpaid, PartiallyPaid, Cancelled)
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        from query string false "Created on or after" format(date)
// @Param        to query string false "Created before" format(date)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, number, customer_name)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]appinvoice.InvoiceListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter appinvoice.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.invoices.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Create godoc
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Takes stock for every product line and allocates the next invoice number in one transaction.
// @Description  A repeated Idempotency-Key is answered with 409 DUPLICATE_REQUEST.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client generated key"
// @Param        request body appinvoice.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appinvoice.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// GetByID godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Edit an open invoice
// @Description  Stock moves by the net difference between old and new lines. Status is re-derived.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body appinvoice.UpdateInvoiceRequest true "Invoice"
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinvoice.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Cancel godoc
// @ID           cancelInvoice
// @Summary      Cancel an invoice
// @Description  Restores stock of product lines. Cancelling twice is a no-op.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.Cancel(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// AddPayment godoc
// @ID           addInvoicePayment
// @Summary      Record a payment
// @Description  The amount must be positive. Overpayment resolves the invoice to Paid.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        Idempotency-Key header string false "Client generated key"
// @Param        request body appinvoice.AddPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[appinvoice.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinvoice.AddPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.invoices.AddPayment(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}
