// Package storeclient talks to the remote task store over REST.
package storeclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"taskboard/internal/task"
	"taskboard/pkg/circuitbreaker"
	"taskboard/pkg/config"
	"taskboard/pkg/logger"
	"taskboard/pkg/metrics"
	"taskboard/pkg/otel"
	"taskboard/pkg/trace"
)

const (
	pathTasks      = "/task"
	pathTask       = "/task/{id}"
	pathUserTasks  = "/api/tasks/user/{userId}"
	pathScopeTasks = "/api/tasks/user/{userId}/project/{projectId}"
)

// ScopeUpdate is the bulk update applied to every task of a (user, project) scope.
type ScopeUpdate struct {
	Status string `json:"status"`
	GitHub string `json:"github"`
}

// Client is the task store client. Only GET requests are retried; every call
// runs through one circuit breaker.
type Client struct {
	http   *resty.Client
	cb     *circuitbreaker.CircuitBreaker
	logger *zap.Logger
}

// New builds a client from cfg.
func New(cfg config.StoreConfig, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryCondition)

	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold:    cfg.BreakerFailures,
		Timeout:             cfg.BreakerCooldown,
		SuccessThreshold:    2,
		HalfOpenMaxRequests: 2,
		IsFailure:           countsAgainstBreaker,
		OnStateChange: func(from, to circuitbreaker.State) {
			metrics.SetBreakerState(int(to))
			log.Warn("Task store circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{http: hc, cb: cb, logger: log}
}

// retryCondition retries idempotent GETs on network errors and 5xx/408/429.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	return retryableStatus(r.StatusCode())
}

// countsAgainstBreaker ignores 4xx answers: the store is up, the request was wrong.
func countsAgainstBreaker(err error) bool {
	if te, ok := err.(*TransportError); ok && te.StatusCode != 0 {
		return te.StatusCode >= 500
	}
	return true
}

// ListTasks fetches every task (admin listing).
func (c *Client) ListTasks(ctx context.Context) ([]task.RawTask, error) {
	var tasks []task.RawTask
	err := c.do(ctx, "list_tasks", http.MethodGet, pathTasks, nil, nil, &tasks)
	return tasks, err
}

// ListUserTasks fetches all tasks assigned to userID across projects.
func (c *Client) ListUserTasks(ctx context.Context, userID string) ([]task.RawTask, error) {
	var tasks []task.RawTask
	err := c.do(ctx, "list_user_tasks", http.MethodGet, pathUserTasks,
		map[string]string{"userId": userID}, nil, &tasks)
	return tasks, err
}

// DeleteTask removes one task. Any non-2xx answer is a failure.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete_task", http.MethodDelete, pathTask,
		map[string]string{"id": id}, nil, nil)
}

// UpdateScope sets status and link on every task of the (user, project) scope.
func (c *Client) UpdateScope(ctx context.Context, userID, projectID string, update ScopeUpdate) error {
	return c.do(ctx, "update_scope", http.MethodPatch, pathScopeTasks,
		map[string]string{"userId": userID, "projectId": projectID}, update, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, params map[string]string, body, out any) error {
	ctx, span := otel.ClientSpan(ctx, op, method, path)
	log := logger.WithTrace(ctx, c.logger)

	start := time.Now()
	status := "error"
	err := c.cb.Execute(func() error {
		req := c.http.R().SetContext(ctx).SetPathParams(params)
		if traceID := trace.FromContext(ctx); traceID != "" {
			req.SetHeader(trace.HeaderName, traceID)
		}
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return &TransportError{Op: op, Method: method, URL: path, Err: err}
		}
		status = fmt.Sprintf("%dxx", resp.StatusCode()/100)
		if !resp.IsSuccess() {
			return &TransportError{Op: op, Method: method, URL: path, StatusCode: resp.StatusCode()}
		}
		if out != nil && len(resp.Body()) > 0 {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return &TransportError{Op: op, Method: method, URL: path, Err: fmt.Errorf("decode response: %w", err)}
			}
		}
		return nil
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		status = "breaker_open"
		err = &TransportError{Op: op, Method: method, URL: path, Err: err}
	}

	metrics.RecordStoreCall(op, status, time.Since(start))
	otel.EndSpan(span, err)

	if err != nil {
		log.Warn("Task store call failed",
			zap.String("operation", op),
			zap.String("method", method),
			zap.Any("params", params),
			zap.Error(err),
		)
		return err
	}
	log.Debug("Task store call succeeded",
		zap.String("operation", op),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}
