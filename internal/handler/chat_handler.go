package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// ChatHandler wires HTTP endpoints to the chat service.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler creates a new handler.
func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// Send godoc
// @Summary Send a direct message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /chat/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "message sent", msg)
}

// Conversation godoc
// @Summary Conversation history with a partner
// @Description Returns messages oldest first and marks the partner's messages read
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Param partnerId path string true "Partner user ID"
// @Success 200 {object} response.Envelope
// @Router /chat/conversations/{partnerId} [get]
func (h *ChatHandler) Conversation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, size := parsePage(c)
	messages, pagination, err := h.service.Conversation(c.Request.Context(), claims.UserID, c.Param("partnerId"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "conversation retrieved", messages, pagination)
}

// Partners godoc
// @Summary Conversation sidebar
// @Description Conversation partners with last message and unread counts
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /chat/conversations [get]
func (h *ChatHandler) Partners(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	partners, err := h.service.Partners(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "conversations retrieved", partners)
}

// Unread godoc
// @Summary Total unread message count
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /chat/unread [get]
func (h *ChatHandler) Unread(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "unread count retrieved", gin.H{"unread": count})
}
