package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	contractsdb "taskboard/contracts/db"
	contractsmq "taskboard/contracts/mq"
	"taskboard/internal/submission"
	"taskboard/pkg/db"
	"taskboard/pkg/otel"
	"taskboard/pkg/outbox"
)

const aggregateSubmission = "submission"

// SubmissionRepository keeps the audit trail of committed submissions and
// queues a submission.committed event for each one.
type SubmissionRepository struct {
	db     db.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewSubmissionRepository(pool db.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: pool, outbox: outboxRepo, logger: logger}
}

// RecordSubmission writes the audit row and the outbox event in one transaction.
func (r *SubmissionRepository) RecordSubmission(ctx context.Context, rec submission.Record) error {
	r.logger.Debug("Recording submission",
		zap.String("user_id", rec.Scope.UserID),
		zap.String("project_id", rec.Scope.ProjectID),
		zap.String("status", rec.Status),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO submissions (project_id, user_id, status, link, selected, total, committed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err = otel.DB(ctx, "insert", query, func(ctx context.Context) error {
		return tx.QueryRow(ctx, query,
			rec.Scope.ProjectID,
			rec.Scope.UserID,
			rec.Status,
			rec.Link,
			rec.Selected,
			rec.Total,
			rec.CommittedAt,
		).Scan(&id)
	})
	if err != nil {
		r.logger.Error("Failed to insert submission", zap.Error(err))
		return fmt.Errorf("insert submission: %w", err)
	}

	payload := contractsmq.SubmissionCommittedPayload{
		SubmissionID: id,
		ProjectID:    rec.Scope.ProjectID,
		UserID:       rec.Scope.UserID,
		UserName:     rec.Scope.UserName,
		Status:       rec.Status,
		Link:         rec.Link,
		Selected:     rec.Selected,
		Total:        rec.Total,
		TraceID:      rec.TraceID,
		CommittedAt:  rec.CommittedAt,
	}
	if _, err := outbox.InsertEventInTx(ctx, tx, r.outbox, aggregateSubmission, &id, contractsmq.RoutingKeySubmissionCommitted, payload); err != nil {
		r.logger.Error("Failed to queue submission event", zap.Int64("submission_id", id), zap.Error(err))
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	r.logger.Info("Submission recorded", zap.Int64("submission_id", id))
	return nil
}

// ListByScope returns the committed submissions of one (user, project) scope,
// newest first.
func (r *SubmissionRepository) ListByScope(ctx context.Context, userID, projectID string, limit int) ([]contractsdb.Submission, error) {
	query := `
		SELECT id, project_id, user_id, status, link, selected, total, committed_at
		FROM submissions
		WHERE user_id = $1 AND project_id = $2
		ORDER BY committed_at DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, userID, projectID, limit)
	if err != nil {
		r.logger.Error("Failed to query submissions", zap.Error(err))
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	out := []contractsdb.Submission{}
	for rows.Next() {
		var s contractsdb.Submission
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.UserID, &s.Status, &s.Link, &s.Selected, &s.Total, &s.CommittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
