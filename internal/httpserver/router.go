package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskboard/internal/handler"
	"taskboard/pkg/otel"
	"taskboard/pkg/rbac"
)

// ReadyCheck reports whether one dependency is usable.
type ReadyCheck func(ctx context.Context) error

// Deps are the pieces the router serves. Admin and History may be nil when
// no database is configured.
type Deps struct {
	Dashboard   *handler.DashboardHandler
	Submission  *handler.SubmissionHandler
	Admin       *handler.AdminHandler
	History     *handler.HistoryHandler
	JWTSecret   string
	Logger      *zap.Logger
	ReadyChecks map[string]ReadyCheck
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(otel.GinMiddleware())
	r.Use(RequestLogMiddleware(d.Logger))

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		for name, check := range d.ReadyChecks {
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/")
	auth.Use(AuthMiddleware(d.JWTSecret))

	admin := auth.Group("/admin")
	{
		tasks := admin.Group("/tasks", RequirePermission(rbac.PermissionViewDashboard))
		tasks.GET("", d.Dashboard.GetView)
		tasks.POST("/refresh", d.Dashboard.Refresh)
		tasks.PUT("/filter", d.Dashboard.SetFilter)
		tasks.GET("/:id/edit", d.Dashboard.EditTask)
		tasks.DELETE("/:id", RequirePermission(rbac.PermissionDeleteTask), d.Dashboard.DeleteTask)

		if d.Admin != nil {
			ob := admin.Group("/outbox", RequirePermission(rbac.PermissionReplayOutbox))
			ob.GET("/failed", d.Admin.ListFailed)
			ob.POST("/:id/replay", d.Admin.ReplayOutboxEvent)
			ob.POST("/:id/requeue", d.Admin.RequeueOutboxEvent)
			ob.POST("/replay-failed", d.Admin.ReplayFailedEvents)
		}
	}

	sub := auth.Group("/user/:name/:userId/projects/:projectId/submission",
		RequirePermission(rbac.PermissionSubmitTask),
		RequireSameUser(),
	)
	{
		sub.GET("", d.Submission.GetForm)
		sub.POST("", d.Submission.Commit)
		sub.POST("/toggle", d.Submission.Toggle)
		sub.PUT("/link", d.Submission.SetLink)
		if d.History != nil {
			sub.GET("/history", d.History.ListSubmissions)
		}
	}

	return r
}
