package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appinventory "github.com/retailops/backoffice/internal/application/inventory"
)

// InventoryHandler handles inventory item, stock and shipment endpoints
type InventoryHandler struct {
	BaseHandler
	inventory *appinventory.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory *appinventory.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// List godoc
// @ID           listInventoryItems
// @Summary      List inventory items
// @Tags         inventory
// @Produce      json
// @Param        search query string false "Case-insensitive name search"
// @Param        category query string false "Category"
// @Param        brand query string false "Brand"
// @Param        status query string false "Item status"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(name, category, quantity, price, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]appinventory.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter appinventory.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.inventory.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Create godoc
// @ID           createInventoryItem
// @Summary      Create an inventory item
// @Description  Opening stock is recorded as an initial stock movement
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinventory.CreateItemRequest true "Item"
// @Success      201 {object} APIResponse[appinventory.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appinventory.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.inventory.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// ListLowStock godoc
// @ID           listLowStockItems
// @Summary      List items at or below their reorder point
// @Tags         inventory
// @Produce      json
// @Success      200 {object} APIResponse[[]appinventory.ItemResponse]
// @Security     BearerAuth
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	items, err := h.inventory.ListLowStock(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetByID godoc
// @ID           getInventoryItem
// @Summary      Get an inventory item
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[appinventory.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.inventory.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Update godoc
// @ID           updateInventoryItem
// @Summary      Update an inventory item
// @Description  Quantity and cost price change only through stock operations
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        request body appinventory.UpdateItemRequest true "Item fields"
// @Success      200 {object} APIResponse[appinventory.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinventory.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.inventory.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Adjust godoc
// @ID           adjustInventoryStock
// @Summary      Manually adjust stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        request body appinventory.AdjustStockRequest true "Signed quantity change"
// @Success      200 {object} APIResponse[appinventory.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appinventory.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.inventory.Adjust(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListMovements godoc
// @ID           listStockMovements
// @Summary      List the stock ledger of an item
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appinventory.MovementResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	movements, err := h.inventory.ListMovements(c.Request.Context(), p, id, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, movements)
}

// PreviewShipment godoc
// @ID           previewShipment
// @Summary      Preview landed cost of a shipment
// @Description  Allocates transport and other costs across lines without touching stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinventory.ShipmentRequest true "Shipment"
// @Success      200 {object} APIResponse[appinventory.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/shipments/preview [post]
func (h *InventoryHandler) PreviewShipment(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appinventory.ShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	preview, err := h.inventory.PreviewShipment(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// ReceiveShipment godoc
// @ID           receiveShipment
// @Summary      Receive a shipment into stock
// @Description  Merges lines into existing items by name using weighted average cost
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body appinventory.ShipmentRequest true "Shipment"
// @Success      201 {object} APIResponse[appinventory.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/shipments [post]
func (h *InventoryHandler) ReceiveShipment(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appinventory.ShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	received, err := h.inventory.ReceiveShipment(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, received)
}
