package handler

import (
	"net/http"
	"time"

	"moovyzoo/internal/service"

	"github.com/gin-gonic/gin"
)

type WatchPartyHandler struct {
	svc *service.WatchPartyService
}

type WatchPartyCreateReq struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	ScheduledTime   int64   `json:"scheduled_time"`
	MaxParticipants int64   `json:"max_participants"`
	TMDBID          *int64  `json:"tmdb_id"`
	MediaType       *string `json:"media_type"`
	MediaTitle      *string `json:"media_title"`
	PosterPath      *string `json:"poster_path"`
	ReleaseDate     *string `json:"release_date"`
	RuntimeMinutes  *int    `json:"runtime_minutes"`
}

func NewWatchPartyHandler(svc *service.WatchPartyService) *WatchPartyHandler {
	return &WatchPartyHandler{svc: svc}
}

func (h *WatchPartyHandler) Create(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	var req WatchPartyCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	wp, err := h.svc.Schedule(c.Request.Context(), habitatID, userID, service.ScheduleParams{
		Title:           req.Title,
		Description:     req.Description,
		ScheduledTime:   time.Unix(req.ScheduledTime, 0),
		MaxParticipants: req.MaxParticipants,
		TMDBID:          req.TMDBID,
		MediaType:       req.MediaType,
		MediaTitle:      req.MediaTitle,
		PosterPath:      req.PosterPath,
		ReleaseDate:     req.ReleaseDate,
		RuntimeMinutes:  req.RuntimeMinutes,
	})
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watch_party": wp})
}

func (h *WatchPartyHandler) List(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	list, err := h.svc.ListUpcoming(c.Request.Context(), habitatID, userID)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *WatchPartyHandler) Join(c *gin.Context) {
	streamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	if err := h.svc.Join(c.Request.Context(), streamID, userID); err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *WatchPartyHandler) Leave(c *gin.Context) {
	streamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	if err := h.svc.Leave(c.Request.Context(), streamID, userID); err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *WatchPartyHandler) Remind(c *gin.Context) {
	streamID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	if err := h.svc.SendReminders(c.Request.Context(), streamID, userID); err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
