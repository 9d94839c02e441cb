package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/proto"
	"github.com/vovakirdan/sweatmarket-server/internal/service/chat"
)

// ChatHandlers provides the REST side of direct messages.
type ChatHandlers struct {
	chat *chat.Service
	log  *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(svc *chat.Service, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{chat: svc, log: logger}
}

// StartChatRequest represents the start-chat request body.
type StartChatRequest struct {
	UserID int64 `json:"user_id" form:"user_id" binding:"required"`
}

// List returns the caller's rooms.
// GET /api/chat
func (h *ChatHandlers) List(c *gin.Context) {
	uid, _ := currentUserID(c)
	rooms, err := h.chat.ListRooms(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, roomSummariesToResponse(rooms))
}

// Start returns the room shared with another user, creating it on first use.
// POST /api/chat/start
func (h *ChatHandlers) Start(c *gin.Context) {
	uid, _ := currentUserID(c)

	var req StartChatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
		return
	}

	room, err := h.chat.Start(c.Request.Context(), uid, req.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, roomToResponse(room, nil))
}

// Open returns a room with its full history.
// GET /api/chat/:room_id
func (h *ChatHandlers) Open(c *gin.Context) {
	uid, _ := currentUserID(c)
	roomID, ok := paramID(c, "room_id")
	if !ok {
		return
	}

	conv, err := h.chat.Open(c.Request.Context(), roomID, uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, conversationToResponse(conv))
}

// SendImage stores an uploaded image and broadcasts it as a chat message.
// POST /api/chat/:room_id/image
func (h *ChatHandlers) SendImage(c *gin.Context) {
	uid, _ := currentUserID(c)
	roomID, ok := paramID(c, "room_id")
	if !ok {
		return
	}

	image, release, err := formUpload(c, "image")
	defer release()
	if err != nil || image == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image file is required"})
		return
	}

	msg, err := h.chat.SendImage(c.Request.Context(), roomID, uid, image.Filename, image.Reader)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, proto.ChatEventFromMessage(msg))
}
