package handler

import (
	"net/http"
	"strconv"

	"moovyzoo/internal/service"

	"github.com/gin-gonic/gin"
)

type HabitatHandler struct {
	svc       *service.HabitatService
	dashboard *service.DashboardService
}

type HabitatCreateReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"is_public"`
	BannerURL   string   `json:"banner_url"`
}

func NewHabitatHandler(svc *service.HabitatService, dashboard *service.DashboardService) *HabitatHandler {
	return &HabitatHandler{svc: svc, dashboard: dashboard}
}

func (h *HabitatHandler) Create(c *gin.Context) {
	userID := currentUserID(c)

	var req HabitatCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	habitat, err := h.svc.Create(c.Request.Context(), userID, req.Name, req.Description, req.Tags, isPublic, req.BannerURL)
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habitat": habitat})
}

func (h *HabitatHandler) Get(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	habitat, err := h.svc.Get(c.Request.Context(), habitatID)
	if err != nil {
		renderErr(c, err)
		return
	}
	role, err := h.svc.RoleOf(c.Request.Context(), habitat, userID)
	if err != nil {
		renderErr(c, err)
		return
	}
	count, err := h.svc.MemberCount(c.Request.Context(), habitatID)
	if err != nil {
		renderErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habitat": habitat, "role": role, "member_count": count})
}

func (h *HabitatHandler) Update(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	var req HabitatCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	habitat, err := h.svc.Update(c.Request.Context(), habitatID, userID, req.Name, req.Description, req.Tags, isPublic, req.BannerURL)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habitat": habitat})
}

func (h *HabitatHandler) Join(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	member, err := h.svc.Join(c.Request.Context(), habitatID, userID)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member})
}

func (h *HabitatHandler) Leave(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	if err := h.svc.Leave(c.Request.Context(), habitatID, userID); err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *HabitatHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.List(c.Request.Context(), page, size)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *HabitatHandler) Dashboard(c *gin.Context) {
	habitatID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	data, err := h.dashboard.GetDashboard(c.Request.Context(), habitatID, userID)
	if err != nil {
		renderErr(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
