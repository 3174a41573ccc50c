package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"heirloom.backend/internal/domain/entities"
	domainerrors "heirloom.backend/internal/domain/errors"
	"heirloom.backend/internal/interfaces/http/response"
	"heirloom.backend/pkg/utils"
)

type messageService interface {
	CreateMessage(ctx context.Context, ownerID uuid.UUID, input *entities.CreateMessageInput) (*entities.Message, error)
	ListMessages(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*entities.Message, utils.PaginationMeta, error)
	DeleteMessage(ctx context.Context, ownerID, id uuid.UUID) error
}

// MessageHandler handles time capsule message endpoints
type MessageHandler struct {
	messageService messageService
}

func NewMessageHandler(messageService messageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// CreateMessage stores a message for later delivery
// POST /api/v1/messages
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var input entities.CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	message, err := h.messageService.CreateMessage(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"capsuleMessage": message})
}

// ListMessages pages through the owner's messages
// GET /api/v1/messages?page=&limit=
func (h *MessageHandler) ListMessages(c *gin.Context) {
	var params utils.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messages, meta, err := h.messageService.ListMessages(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if messages == nil {
		messages = []*entities.Message{}
	}

	response.Paginated(c, http.StatusOK, messages, meta)
}

// DeleteMessage removes an undelivered message
// DELETE /api/v1/messages/:id
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "message")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.messageService.DeleteMessage(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Message deleted"})
}
