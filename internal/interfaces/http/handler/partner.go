package handler

import (
	"github.com/gin-gonic/gin"

	apppartner "github.com/retailops/backoffice/internal/application/partner"
)

// PartnerHandler handles customer and supplier endpoints
type PartnerHandler struct {
	BaseHandler
	customers *apppartner.CustomerService
	suppliers *apppartner.SupplierService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(customers *apppartner.CustomerService, suppliers *apppartner.SupplierService) *PartnerHandler {
	return &PartnerHandler{customers: customers, suppliers: suppliers}
}

// ListCustomers godoc
// @ID           listCustomers
// @Summary      List customers
// @Tags         partners
// @Produce      json
// @Param        search query string false "Name, phone or email"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]apppartner.CustomerResponse]
// @Security     BearerAuth
// @Router       /customers [get]
func (h *PartnerHandler) ListCustomers(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter apppartner.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.customers.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// CreateCustomer godoc
// @ID           createCustomer
// @Summary      Create a customer
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        request body apppartner.CustomerRequest true "Customer"
// @Success      201 {object} APIResponse[apppartner.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [post]
func (h *PartnerHandler) CreateCustomer(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req apppartner.CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetCustomer godoc
// @ID           getCustomer
// @Summary      Get a customer
// @Tags         partners
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[apppartner.CustomerResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *PartnerHandler) GetCustomer(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.customers.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// UpdateCustomer godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body apppartner.CustomerRequest true "Customer"
// @Success      200 {object} APIResponse[apppartner.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *PartnerHandler) UpdateCustomer(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req apppartner.CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// DeleteCustomer godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Description  Issued invoices keep their customer snapshot
// @Tags         partners
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *PartnerHandler) DeleteCustomer(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.customers.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListSuppliers godoc
// @ID           listSuppliers
// @Summary      List suppliers
// @Tags         partners
// @Produce      json
// @Param        search query string false "Name, phone or email"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]apppartner.SupplierResponse]
// @Security     BearerAuth
// @Router       /suppliers [get]
func (h *PartnerHandler) ListSuppliers(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter apppartner.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.suppliers.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// CreateSupplier godoc
// @ID           createSupplier
// @Summary      Create a supplier
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        request body apppartner.SupplierRequest true "Supplier"
// @Success      201 {object} APIResponse[apppartner.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers [post]
func (h *PartnerHandler) CreateSupplier(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req apppartner.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// GetSupplier godoc
// @ID           getSupplier
// @Summary      Get a supplier
// @Tags         partners
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[apppartner.SupplierResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [get]
func (h *PartnerHandler) GetSupplier(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	supplier, err := h.suppliers.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// UpdateSupplier godoc
// @ID           updateSupplier
// @Summary      Update a supplier
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body apppartner.SupplierRequest true "Supplier"
// @Success      200 {object} APIResponse[apppartner.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [put]
func (h *PartnerHandler) UpdateSupplier(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req apppartner.SupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// DeleteSupplier godoc
// @ID           deleteSupplier
// @Summary      Delete a supplier
// @Tags         partners
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [delete]
func (h *PartnerHandler) DeleteSupplier(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.suppliers.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
