package handler

import (
	"net/http"
	"strconv"

	"moovyzoo/internal/pkg"
	"moovyzoo/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc *service.MessageService
}

type MessageSendReq struct {
	Content string `json:"content"`
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) Send(c *gin.Context) {
	chatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	var req MessageSendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	m, err := h.svc.Send(c.Request.Context(), chatID, userID, req.Content)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": m})
}

// List pages newest-first with a (last_id, last_ts) cursor; both empty on
// the first page.
func (h *MessageHandler) List(c *gin.Context) {
	chatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	lastID := c.Query("last_id")
	if !pkg.IsUUID(lastID, true) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid last_id"})
		return
	}
	lastTS, _ := strconv.ParseInt(c.Query("last_ts"), 10, 64)
	size, _ := strconv.Atoi(c.Query("size"))

	list, nextID, nextTS, err := h.svc.ListByChat(c.Request.Context(), chatID, userID, lastID, lastTS, size)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list, "next_id": nextID, "next_ts": nextTS})
}
