package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	contractsdb "taskboard/contracts/db"
	"taskboard/pkg/logger"
)

// SubmissionHistory is implemented by *repository.SubmissionRepository.
type SubmissionHistory interface {
	ListByScope(ctx context.Context, userID, projectID string, limit int) ([]contractsdb.Submission, error)
}

// HistoryHandler serves the recorded commits of one submission scope.
type HistoryHandler struct {
	history SubmissionHistory
	logger  *zap.Logger
}

func NewHistoryHandler(history SubmissionHistory, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// ListSubmissions 列出该用户在该项目下的提交记录，最新的在前
// GET /user/:name/:userId/projects/:projectId/submission/history?limit=100
func (h *HistoryHandler) ListSubmissions(c *gin.Context) {
	scope := scopeFrom(c)
	subs, err := h.history.ListByScope(c.Request.Context(), scope.UserID, scope.ProjectID, limitParam(c))
	if err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Error("Failed to list submissions",
			zap.String("user_id", scope.UserID),
			zap.String("project_id", scope.ProjectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list submissions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}
