// Package dashboard owns the admin view state: the fetched task set, the
// derived summary, the active filters and the confirmed-delete flow.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/filter"
	"taskboard/internal/summary"
	"taskboard/internal/task"
	"taskboard/pkg/logger"
	"taskboard/pkg/metrics"
)

const pipeline = "dashboard"

// Store is the part of the task store the dashboard needs.
type Store interface {
	ListTasks(ctx context.Context) ([]task.RawTask, error)
	DeleteTask(ctx context.Context, id string) error
}

// Row is one table row with its display hints.
type Row struct {
	task.NormalizedTask
	StatusLabel  string `json:"statusLabel"`
	StatusTone   string `json:"statusTone"`
	PriorityTone string `json:"priorityTone"`
	Overdue      bool   `json:"overdue"`
}

// View is a consistent copy of the dashboard state.
type View struct {
	Rows        []Row           `json:"rows"`
	Summary     summary.Summary `json:"summary"`
	Options     filter.Options  `json:"options"`
	Filter      filter.State    `json:"filter"`
	Shown       int             `json:"shown"`
	Total       int             `json:"total"`
	Loaded      bool            `json:"loaded"`
	RefreshedAt time.Time       `json:"refreshedAt,omitempty"`
}

// Service is the dashboard orchestrator. It is safe for concurrent use.
type Service struct {
	store      Store
	normalizer *task.Normalizer
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.Mutex
	nextSeq     uint64
	lastApplied uint64
	tasks       []task.NormalizedTask
	filters     map[string]filter.State
	loaded      bool
	refreshedAt time.Time
}

func NewService(store Store, normalizer *task.Normalizer, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		normalizer: normalizer,
		logger:     logger,
		now:        time.Now,
		filters:    make(map[string]filter.State),
	}
}

// Refresh fetches the full task set and replaces the derived state. When
// several refreshes race, only the newest started one is applied; older
// results are dropped. On failure the previous state is kept.
func (s *Service) Refresh(ctx context.Context) error {
	log := logger.WithTrace(ctx, s.logger)

	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.mu.Unlock()

	raws, err := s.store.ListTasks(ctx)
	if err != nil {
		metrics.IncrementViewRefresh(pipeline, "failed")
		log.Error("Dashboard refresh failed", zap.Uint64("seq", seq), zap.Error(err))
		return fmt.Errorf("fetch tasks: %w", err)
	}

	tasks, skipped := s.normalizer.NormalizeAll(raws)
	for _, merr := range skipped {
		log.Warn("Skipping malformed task", zap.Int("index", merr.Index), zap.String("reason", merr.Reason))
	}
	metrics.AddMalformedTasks(pipeline, len(skipped))

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.lastApplied {
		metrics.IncrementViewRefresh(pipeline, "stale")
		log.Info("Discarding stale dashboard fetch",
			zap.Uint64("seq", seq),
			zap.Uint64("last_applied", s.lastApplied),
		)
		return nil
	}
	s.lastApplied = seq
	s.tasks = tasks
	s.loaded = true
	s.refreshedAt = s.now()
	metrics.IncrementViewRefresh(pipeline, "applied")

	log.Info("Dashboard refreshed",
		zap.Uint64("seq", seq),
		zap.Int("task_count", len(tasks)),
		zap.Int("skipped", len(skipped)),
	)
	return nil
}

// SetFilter replaces both filter dimensions for viewer. Filters are kept per
// viewer (user id); a viewer that never set one sees every row.
func (s *Service) SetFilter(viewer string, f filter.State) {
	s.updateFilter(viewer, func(cur *filter.State) { *cur = f })
}

// SetProjectFilter changes the project dimension only; "" clears it.
func (s *Service) SetProjectFilter(viewer, projectID string) {
	s.updateFilter(viewer, func(cur *filter.State) { cur.ProjectID = projectID })
}

// SetMemberFilter changes the assignee dimension only; "" clears it.
func (s *Service) SetMemberFilter(viewer, userID string) {
	s.updateFilter(viewer, func(cur *filter.State) { cur.MemberID = userID })
}

func (s *Service) updateFilter(viewer string, fn func(*filter.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.filters[viewer]
	fn(&f)
	if f.IsZero() {
		delete(s.filters, viewer)
		return
	}
	s.filters[viewer] = f
}

// View derives rows, summary and filter options from the current state as
// seen by viewer. Summary and options always describe the unfiltered set.
func (s *Service) View(viewer string) View {
	s.mu.Lock()
	tasks := s.tasks
	f := s.filters[viewer]
	loaded := s.loaded
	refreshedAt := s.refreshedAt
	s.mu.Unlock()

	now := s.now()
	visible := filter.Apply(tasks, f)
	rows := make([]Row, 0, len(visible))
	for _, t := range visible {
		rows = append(rows, newRow(t, now))
	}

	return View{
		Rows:        rows,
		Summary:     summary.Aggregate(tasks),
		Options:     filter.OptionsFor(tasks),
		Filter:      f,
		Shown:       len(rows),
		Total:       len(tasks),
		Loaded:      loaded,
		RefreshedAt: refreshedAt,
	}
}

func newRow(t task.NormalizedTask, now time.Time) Row {
	return Row{
		NormalizedTask: t,
		StatusLabel:    task.StatusLabel(t.Status),
		StatusTone:     task.StatusTone(t.Status),
		PriorityTone:   task.PriorityTone(t.Priority),
		Overdue:        t.Overdue(now),
	}
}

// ErrTaskNotFound is returned for ids that are not in the current view.
var ErrTaskNotFound = errors.New("task not found")

// ErrNotConfirmed is returned when a delete was not explicitly confirmed.
var ErrNotConfirmed = errors.New("delete not confirmed")

func (s *Service) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// removeLocked drops tasks[i] into a fresh slice so views taken earlier
// keep their backing array. mu must be held.
func (s *Service) removeLocked(i int) {
	next := make([]task.NormalizedTask, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.tasks = next
}
