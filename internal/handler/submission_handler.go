package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/submission"
	"taskboard/pkg/logger"
)

type SubmissionHandler struct {
	svc    *submission.Service
	logger *zap.Logger
}

func NewSubmissionHandler(svc *submission.Service, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, logger: logger}
}

func scopeFrom(c *gin.Context) submission.Scope {
	return submission.Scope{
		ProjectID: c.Param("projectId"),
		UserID:    c.Param("userId"),
		UserName:  c.Param("name"),
	}
}

// GetForm (re)loads the scope and returns a fresh form.
// GET /user/:name/:userId/projects/:projectId/submission
func (h *SubmissionHandler) GetForm(c *gin.Context) {
	form, err := h.svc.Load(c.Request.Context(), scopeFrom(c))
	if err != nil {
		writeError(c, h.logger, "GetForm", err)
		return
	}
	c.JSON(http.StatusOK, form)
}

type toggleRequest struct {
	TaskID string `json:"taskId" binding:"required"`
}

// Toggle flips one checklist entry.
// POST /user/:name/:userId/projects/:projectId/submission/toggle {"taskId": "..."}
func (h *SubmissionHandler) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId required"})
		return
	}
	form, err := h.svc.Toggle(scopeFrom(c), req.TaskID)
	if err != nil {
		writeError(c, h.logger, "Toggle", err)
		return
	}
	c.JSON(http.StatusOK, form)
}

type linkRequest struct {
	Link string `json:"link"`
}

// SetLink replaces the deliverable link.
// PUT /user/:name/:userId/projects/:projectId/submission/link {"link": "..."}
func (h *SubmissionHandler) SetLink(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	form, err := h.svc.SetLink(scopeFrom(c), req.Link)
	if err != nil {
		writeError(c, h.logger, "SetLink", err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// Commit pushes the rolled-up status and link for the whole scope.
// POST /user/:name/:userId/projects/:projectId/submission
func (h *SubmissionHandler) Commit(c *gin.Context) {
	scope := scopeFrom(c)
	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("Commit request received",
		zap.String("user_id", scope.UserID),
		zap.String("project_id", scope.ProjectID),
		zap.String("client_ip", c.ClientIP()),
	)

	res, err := h.svc.Commit(c.Request.Context(), scope)
	if err != nil {
		writeError(c, log, "Commit", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
