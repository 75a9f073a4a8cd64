package handler

import (
	"net/http"

	"moovyzoo/internal/service"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	svc *service.PollService
}

type PollCreateReq struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

type PollVoteReq struct {
	Option string `json:"option"`
}

func NewPollHandler(svc *service.PollService) *PollHandler {
	return &PollHandler{svc: svc}
}

func (h *PollHandler) Create(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	var req PollCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	poll, err := h.svc.Create(c.Request.Context(), habitatID, userID, req.Title, req.Options)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"poll": poll})
}

func (h *PollHandler) List(c *gin.Context) {
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

func (h *PollHandler) Vote(c *gin.Context) {
	pollID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	var req PollVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	poll, err := h.svc.Vote(c.Request.Context(), pollID, userID, req.Option)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"poll": poll})
}

func (h *PollHandler) Delete(c *gin.Context) {
	pollID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	if err := h.svc.Delete(c.Request.Context(), pollID, userID); err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
