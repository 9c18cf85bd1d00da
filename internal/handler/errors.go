package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/dashboard"
	"taskboard/internal/storeclient"
	"taskboard/internal/submission"
)

// writeError maps domain errors to status codes. Store failures are 502 and
// carry a retryable flag so clients can offer "try again".
func writeError(c *gin.Context, log *zap.Logger, op string, err error) {
	var (
		verr *submission.ValidationError
		cerr *submission.CommitError
		terr *storeclient.TransportError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, submission.ErrScopeEmpty),
		errors.Is(err, dashboard.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, dashboard.ErrNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "delete must be confirmed with confirm=true"})
	case errors.Is(err, submission.ErrNotLoaded):
		c.JSON(http.StatusConflict, gin.H{"error": "submission form not loaded"})
	case errors.Is(err, submission.ErrCommitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "Failed to update tasks. Please try again.",
			"retryable": cerr.Retryable(),
			"attempts":  cerr.Attempts,
		})
	case errors.As(err, &terr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "task store unavailable",
			"retryable": terr.Retryable(),
		})
	default:
		log.Error(op+": unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
