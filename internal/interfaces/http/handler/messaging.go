package handler

import (
	"github.com/gin-gonic/gin"

	appmessaging "github.com/retailops/backoffice/internal/application/messaging"
)

// MessagingHandler handles internal conversations between members
type MessagingHandler struct {
	BaseHandler
	messaging *appmessaging.Service
}

// NewMessagingHandler creates a new MessagingHandler
func NewMessagingHandler(messaging *appmessaging.Service) *MessagingHandler {
	return &MessagingHandler{messaging: messaging}
}

// Start godoc
// @ID           startConversation
// @Summary      Start a conversation
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Param        request body appmessaging.StartConversationRequest true "Participants and first message"
// @Success      201 {object} APIResponse[appmessaging.ConversationResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations [post]
func (h *MessagingHandler) Start(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appmessaging.StartConversationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	conv, err := h.messaging.Start(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, conv)
}

// List godoc
// @ID           listConversations
// @Summary      List my conversations
// @Tags         conversations
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appmessaging.ConversationResponse]
// @Security     BearerAuth
// @Router       /conversations [get]
func (h *MessagingHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter appmessaging.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.messaging.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Get godoc
// @ID           getConversation
// @Summary      Get a conversation
// @Tags         conversations
// @Produce      json
// @Param        id path string true "Conversation ID" format(uuid)
// @Success      200 {object} APIResponse[appmessaging.ConversationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [get]
func (h *MessagingHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	conv, err := h.messaging.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conv)
}

// Messages godoc
// @ID           listConversationMessages
// @Summary      List messages of a conversation
// @Tags         conversations
// @Produce      json
// @Param        id path string true "Conversation ID" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appmessaging.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [get]
func (h *MessagingHandler) Messages(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var filter appmessaging.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.messaging.Messages(c.Request.Context(), p, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Post godoc
// @ID           postConversationMessage
// @Summary      Post a message
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Param        id path string true "Conversation ID" format(uuid)
// @Param        request body appmessaging.PostMessageRequest true "Message"
// @Success      201 {object} APIResponse[appmessaging.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [post]
func (h *MessagingHandler) Post(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appmessaging.PostMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	msg, err := h.messaging.Post(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}
