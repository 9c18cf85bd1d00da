// Package submission drives the per-user, per-project submission form: the
// scoped task fetch, the completion checklist and the one-shot commit of the
// rolled-up status and deliverable link.
package submission

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"taskboard/internal/checklist"
	"taskboard/internal/rollup"
	"taskboard/internal/storeclient"
	"taskboard/internal/task"
	"taskboard/pkg/logger"
	"taskboard/pkg/metrics"
)

const pipeline = "submission"

// Scope identifies one submission form. UserName is only used to build the
// navigation target after a commit.
type Scope struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
}

func (s Scope) key() string { return s.UserID + ":" + s.ProjectID }

// Validate checks that the scope names a user and a project.
func (s Scope) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return &ValidationError{Field: "userId", Message: "is required"}
	}
	if strings.TrimSpace(s.ProjectID) == "" {
		return &ValidationError{Field: "projectId", Message: "is required"}
	}
	return nil
}

// TasksPath is the user's task list view.
func (s Scope) TasksPath() string {
	return fmt.Sprintf("/user/%s/%s/tasks", url.PathEscape(s.UserName), url.PathEscape(s.UserID))
}

// Store is the part of the task store the submission pipeline needs.
type Store interface {
	ListUserTasks(ctx context.Context, userID string) ([]task.RawTask, error)
	UpdateScope(ctx context.Context, userID, projectID string, update storeclient.ScopeUpdate) error
}

// Guard serializes commits of one scope across processes.
type Guard interface {
	AcquireOnce(ctx context.Context, key string) bool
	Release(ctx context.Context, key string)
}

// AttemptCounter counts failed commits of a scope until one succeeds.
type AttemptCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Recorder keeps an audit trail of successful commits.
type Recorder interface {
	RecordSubmission(ctx context.Context, rec Record) error
}

// Form is the read-only view of a loaded scope.
type Form struct {
	Scope       Scope            `json:"scope"`
	ProjectName string           `json:"projectName"`
	DueDates    []string         `json:"dueDates"`
	Items       []checklist.Item `json:"items"`
	Link        string           `json:"link"`
	Selected    int              `json:"selected"`
	Total       int              `json:"total"`
	// Status is the value a commit would send right now.
	Status string `json:"status"`
}

type session struct {
	mu        sync.Mutex
	scope     Scope
	tasks     []task.NormalizedTask
	checklist *checklist.State
	link      string
}

func (s *session) form() Form {
	snap := s.checklist.Snapshot()
	f := Form{
		Scope:    s.scope,
		DueDates: make([]string, 0, len(s.tasks)),
		Items:    snap.Items,
		Link:     s.link,
		Selected: snap.Selected(),
		Total:    snap.Total(),
		Status:   rollup.FromSnapshot(snap, snap.Total()),
	}
	if len(s.tasks) > 0 {
		f.ProjectName = s.tasks[0].ProjectName
	}
	for _, t := range s.tasks {
		f.DueDates = append(f.DueDates, t.DueDateISO)
	}
	return f
}

// Option configures a Service.
type Option func(*Service)

// WithGuard enables the cross-process replay guard.
func WithGuard(g Guard) Option { return func(s *Service) { s.guard = g } }

// WithAttemptCounter enables counting of failed commits.
func WithAttemptCounter(c AttemptCounter) Option { return func(s *Service) { s.attempts = c } }

// WithRecorder enables the submission audit trail.
func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

// Service holds the open submission forms. It is safe for concurrent use.
type Service struct {
	store      Store
	normalizer *task.Normalizer
	guard      Guard
	attempts   AttemptCounter
	recorder   Recorder
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
	seqs     map[string]*loadSeq
}

// loadSeq orders racing loads of one scope.
type loadSeq struct {
	next    uint64
	applied uint64
}

func NewService(store Store, normalizer *task.Normalizer, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		normalizer: normalizer,
		logger:     logger,
		sessions:   make(map[string]*session),
		seqs:       make(map[string]*loadSeq),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the user's tasks, keeps those of the scope's project and
// (re)initializes the checklist and link. A scope without tasks yields
// ErrScopeEmpty; a failed fetch keeps any previously loaded form. When loads
// of the same scope race, only the newest started one is applied and older
// results are dropped.
func (s *Service) Load(ctx context.Context, scope Scope) (Form, error) {
	if err := scope.Validate(); err != nil {
		return Form{}, err
	}
	log := logger.WithTrace(ctx, s.logger).With(
		zap.String("user_id", scope.UserID),
		zap.String("project_id", scope.ProjectID),
	)

	seq := s.begin(scope)
	raws, err := s.store.ListUserTasks(ctx, scope.UserID)
	if err != nil {
		metrics.IncrementViewRefresh(pipeline, "failed")
		log.Error("Failed to fetch user tasks", zap.Uint64("seq", seq), zap.Error(err))
		return Form{}, fmt.Errorf("fetch user tasks: %w", err)
	}

	scoped := make([]task.RawTask, 0, len(raws))
	for _, r := range raws {
		if r.ProjectID == scope.ProjectID {
			scoped = append(scoped, r)
		}
	}
	tasks, skipped := s.normalizer.NormalizeAll(scoped)
	for _, merr := range skipped {
		log.Warn("Skipping malformed task", zap.Int("index", merr.Index), zap.String("reason", merr.Reason))
	}
	metrics.AddMalformedTasks(pipeline, len(skipped))

	var sess *session
	if len(tasks) > 0 {
		sess = &session{
			scope:     scope,
			tasks:     tasks,
			checklist: checklist.New(tasks),
			link:      tasks[0].GitHub,
		}
	}

	s.mu.Lock()
	sq := s.seqs[scope.key()]
	if applied := sq.applied; seq <= applied {
		current := s.sessions[scope.key()]
		s.mu.Unlock()
		metrics.IncrementViewRefresh(pipeline, "stale")
		log.Info("Discarding stale submission fetch",
			zap.Uint64("seq", seq),
			zap.Uint64("last_applied", applied),
		)
		if current == nil {
			return Form{}, ErrScopeEmpty
		}
		current.mu.Lock()
		defer current.mu.Unlock()
		return current.form(), nil
	}
	sq.applied = seq
	if sess == nil {
		delete(s.sessions, scope.key())
	} else {
		s.sessions[scope.key()] = sess
	}
	s.mu.Unlock()

	if sess == nil {
		metrics.IncrementViewRefresh(pipeline, "empty")
		log.Info("No tasks in submission scope")
		return Form{}, ErrScopeEmpty
	}
	metrics.IncrementViewRefresh(pipeline, "applied")
	log.Info("Submission form loaded", zap.Uint64("seq", seq), zap.Int("task_count", len(tasks)))
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.form(), nil
}

func (s *Service) begin(scope Scope) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sq, ok := s.seqs[scope.key()]
	if !ok {
		sq = &loadSeq{}
		s.seqs[scope.key()] = sq
	}
	sq.next++
	return sq.next
}

// Form returns the current view of a loaded scope.
func (s *Service) Form(scope Scope) (Form, error) {
	sess, err := s.loaded(scope)
	if err != nil {
		return Form{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.form(), nil
}

// Toggle flips one checklist entry. Unknown task ids are ignored.
func (s *Service) Toggle(scope Scope, taskID string) (Form, error) {
	sess, err := s.loaded(scope)
	if err != nil {
		return Form{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.checklist.Toggle(taskID) {
		s.logger.Debug("Toggle for unknown task ignored",
			zap.String("task_id", taskID),
			zap.String("project_id", scope.ProjectID),
		)
	}
	return sess.form(), nil
}

// SetLink replaces the deliverable link.
func (s *Service) SetLink(scope Scope, link string) (Form, error) {
	sess, err := s.loaded(scope)
	if err != nil {
		return Form{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.link = link
	return sess.form(), nil
}

func (s *Service) loaded(scope Scope) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[scope.key()]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotLoaded
	}
	return sess, nil
}
