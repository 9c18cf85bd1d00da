package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/dashboard"
	"taskboard/internal/filter"
	"taskboard/pkg/logger"
)

type DashboardHandler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

func NewDashboardHandler(svc *dashboard.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// viewer identifies whose filter applies; AuthMiddleware sets user_id.
func viewer(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetView returns the caller's view, fetching once if nothing was loaded yet.
// GET /admin/tasks
func (h *DashboardHandler) GetView(c *gin.Context) {
	if !h.svc.View(viewer(c)).Loaded {
		if err := h.svc.Refresh(c.Request.Context()); err != nil {
			writeError(c, h.logger, "GetView", err)
			return
		}
	}
	c.JSON(http.StatusOK, h.svc.View(viewer(c)))
}

// Refresh refetches all tasks.
// POST /admin/tasks/refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		writeError(c, h.logger, "Refresh", err)
		return
	}
	c.JSON(http.StatusOK, h.svc.View(viewer(c)))
}

// SetFilter replaces the caller's filters.
// PUT /admin/tasks/filter {"projectFilter": "...", "memberFilter": "..."}
func (h *DashboardHandler) SetFilter(c *gin.Context) {
	var f filter.State
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}
	h.svc.SetFilter(viewer(c), f)
	c.JSON(http.StatusOK, h.svc.View(viewer(c)))
}

// DeleteTask deletes one task after explicit confirmation.
// DELETE /admin/tasks/:id?confirm=true
func (h *DashboardHandler) DeleteTask(c *gin.Context) {
	id := c.Param("id")
	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("DeleteTask request received",
		zap.String("task_id", id),
		zap.String("client_ip", c.ClientIP()),
	)

	confirmed := c.Query("confirm") == "true"
	if err := h.svc.Delete(c.Request.Context(), id, confirmed); err != nil {
		writeError(c, log, "DeleteTask", err)
		return
	}
	c.JSON(http.StatusOK, h.svc.View(viewer(c)))
}

// EditTask hands the task over to the edit view.
// GET /admin/tasks/:id/edit
func (h *DashboardHandler) EditTask(c *gin.Context) {
	nav, err := h.svc.Edit(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "EditTask", err)
		return
	}
	c.JSON(http.StatusOK, nav)
}
