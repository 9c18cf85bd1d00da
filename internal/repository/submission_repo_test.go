package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/submission"
	"taskboard/pkg/outbox"
)

func testRecord() submission.Record {
	return submission.Record{
		Scope:       submission.Scope{ProjectID: "p1", UserID: "u1", UserName: "ada"},
		Status:      "done",
		Link:        "https://github.com/ada/apollo",
		Selected:    2,
		Total:       2,
		TraceID:     "trace-1",
		CommittedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestSubmissionRepository_RecordSubmission(t *testing.T) {
	t.Run("Should insert the audit row and the outbox event in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewSubmissionRepository(mock, outbox.NewRepository(mock), zap.NewNop())
		rec := testRecord()
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO submissions").
			WithArgs("p1", "u1", "done", rec.Link, 2, 2, rec.CommittedAt).
			WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(11)))
		mock.ExpectQuery("INSERT INTO outbox_events").
			WithArgs("submission", pgxmock.AnyArg(), "submission.committed", pgxmock.AnyArg(), "pending").
			WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))
		mock.ExpectCommit()

		require.NoError(t, repo.RecordSubmission(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should roll back when the outbox insert fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewSubmissionRepository(mock, outbox.NewRepository(mock), zap.NewNop())
		rec := testRecord()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO submissions").
			WithArgs("p1", "u1", "done", rec.Link, 2, 2, rec.CommittedAt).
			WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(11)))
		mock.ExpectQuery("INSERT INTO outbox_events").
			WithArgs("submission", pgxmock.AnyArg(), "submission.committed", pgxmock.AnyArg(), "pending").
			WillReturnError(errors.New("relation does not exist"))
		mock.ExpectRollback()

		err = repo.RecordSubmission(context.Background(), rec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "relation does not exist")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should fail when the transaction cannot start", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewSubmissionRepository(mock, outbox.NewRepository(mock), zap.NewNop())

		mock.ExpectBegin().WillReturnError(errors.New("pool closed"))
		assert.Error(t, repo.RecordSubmission(context.Background(), testRecord()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSubmissionRepository_ListByScope(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewSubmissionRepository(mock, outbox.NewRepository(mock), zap.NewNop())
	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM submissions WHERE user_id = \\$1 AND project_id = \\$2").
		WithArgs("u1", "p1", 20).
		WillReturnRows(mock.NewRows([]string{"id", "project_id", "user_id", "status", "link", "selected", "total", "committed_at"}).
			AddRow(int64(2), "p1", "u1", "done", "l2", 2, 2, at).
			AddRow(int64(1), "p1", "u1", "in-progress", "l1", 1, 2, at.Add(-time.Hour)))

	subs, err := repo.ListByScope(context.Background(), "u1", "p1", 20)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(2), subs[0].ID)
	assert.Equal(t, "in-progress", subs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
