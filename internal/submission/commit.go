package submission

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/rollup"
	"taskboard/internal/storeclient"
	"taskboard/pkg/logger"
	"taskboard/pkg/metrics"
	"taskboard/pkg/trace"
)

// Record is the audit entry of one successful commit.
type Record struct {
	Scope       Scope
	Status      string
	Link        string
	Selected    int
	Total       int
	TraceID     string
	CommittedAt time.Time
}

// Navigation is where the client should go after a commit.
type Navigation struct {
	Path string `json:"path"`
}

// Result describes a successful commit.
type Result struct {
	Status     string     `json:"status"`
	Link       string     `json:"link"`
	Navigation Navigation `json:"navigation"`
}

func guardKey(scope Scope) string   { return "submission:inflight:" + scope.key() }
func attemptKey(scope Scope) string { return "submission:attempts:" + scope.key() }

// Commit rolls the checklist up into one status and writes it, together with
// the link, to every task of the scope in a single update.
//
// An empty link is rejected before any network call. When the store call
// fails the checklist and link stay as they are and a *CommitError is
// returned.
func (s *Service) Commit(ctx context.Context, scope Scope) (Result, error) {
	sess, err := s.loaded(scope)
	if err != nil {
		return Result{}, err
	}
	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("user_id", scope.UserID),
		zap.String("project_id", scope.ProjectID),
	)

	sess.mu.Lock()
	link := strings.TrimSpace(sess.link)
	snap := sess.checklist.Snapshot()
	total := snap.Total()
	sess.mu.Unlock()

	if link == "" {
		metrics.IncrementSubmission("invalid", "")
		return Result{}, &ValidationError{Field: "link", Message: "a link is required"}
	}
	status := rollup.FromSnapshot(snap, total)

	if s.guard != nil {
		key := guardKey(scope)
		if !s.guard.AcquireOnce(ctx, key) {
			metrics.IncrementSubmission("in_flight", status)
			log.Warn("Rejected concurrent submission")
			return Result{}, ErrCommitInFlight
		}
		defer s.guard.Release(ctx, key)
	}

	update := storeclient.ScopeUpdate{Status: status, GitHub: link}
	if err := s.store.UpdateScope(ctx, scope.UserID, scope.ProjectID, update); err != nil {
		cerr := &CommitError{Err: err}
		if s.attempts != nil {
			if n, cntErr := s.attempts.IncrementAndGet(ctx, attemptKey(scope)); cntErr == nil {
				cerr.Attempts = n
			}
		}
		metrics.IncrementSubmission("failed", status)
		log.Error("Submission commit failed",
			zap.String("status", status),
			zap.Int64("attempts", cerr.Attempts),
			zap.Error(err),
		)
		return Result{}, cerr
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, attemptKey(scope)); err != nil {
			log.Warn("Failed to reset submission attempts", zap.Error(err))
		}
	}

	sess.mu.Lock()
	sess.link = link
	sess.mu.Unlock()

	metrics.IncrementSubmission("committed", status)
	log.Info("Submission committed",
		zap.String("status", status),
		zap.Int("selected", snap.Selected()),
		zap.Int("total", total),
	)

	if s.recorder != nil {
		rec := Record{
			Scope:       scope,
			Status:      status,
			Link:        link,
			Selected:    snap.Selected(),
			Total:       total,
			TraceID:     trace.FromContext(ctx),
			CommittedAt: time.Now().UTC(),
		}
		// audit failures never fail a commit
		if err := s.recorder.RecordSubmission(ctx, rec); err != nil {
			log.Error("Failed to record submission", zap.Error(err))
		}
	}

	return Result{
		Status:     status,
		Link:       link,
		Navigation: Navigation{Path: scope.TasksPath()},
	}, nil
}
