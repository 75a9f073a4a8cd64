package handler

import (
	"net/http"

	"moovyzoo/internal/service"

	"github.com/gin-gonic/gin"
)

type DiscussionHandler struct {
	svc *service.DiscussionService
}

type DiscussionCreateReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewDiscussionHandler(svc *service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{svc: svc}
}

func (h *DiscussionHandler) Create(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	var req DiscussionCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	d, err := h.svc.Create(c.Request.Context(), habitatID, userID, req.Name, req.Description)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discussion": d})
}

func (h *DiscussionHandler) List(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	list, err := h.svc.List(c.Request.Context(), habitatID, userID)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *DiscussionHandler) Delete(c *gin.Context) {
	discussionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	if err := h.svc.Delete(c.Request.Context(), discussionID, userID); err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
