package dashboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskboard/pkg/logger"
	"taskboard/pkg/metrics"
)

// Navigation is a hand-off to another view.
type Navigation struct {
	Path   string `json:"path"`
	TaskID string `json:"taskId,omitempty"`
}

// Delete removes a task from the store and, on success, from the local rows
// without refetching. Unknown ids and store failures leave the rows as they
// were.
func (s *Service) Delete(ctx context.Context, id string, confirmed bool) error {
	log := logger.WithTrace(ctx, s.logger).With(zap.String("task_id", id))

	if !confirmed {
		metrics.IncrementTaskDelete("unconfirmed")
		return ErrNotConfirmed
	}

	s.mu.Lock()
	known := s.indexOf(id) >= 0
	s.mu.Unlock()
	if !known {
		metrics.IncrementTaskDelete("not_found")
		log.Warn("Delete requested for unknown task")
		return ErrTaskNotFound
	}

	if err := s.store.DeleteTask(ctx, id); err != nil {
		metrics.IncrementTaskDelete("failed")
		log.Error("Failed to delete task", zap.Error(err))
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	s.mu.Lock()
	// a refresh may have run while the request was in flight
	if i := s.indexOf(id); i >= 0 {
		s.removeLocked(i)
	}
	s.mu.Unlock()

	metrics.IncrementTaskDelete("deleted")
	log.Info("Task deleted")
	return nil
}

// Edit hands the task over to the edit view.
func (s *Service) Edit(id string) (Navigation, error) {
	s.mu.Lock()
	known := s.indexOf(id) >= 0
	s.mu.Unlock()
	if !known {
		return Navigation{}, ErrTaskNotFound
	}
	return Navigation{Path: "/edit", TaskID: id}, nil
}
