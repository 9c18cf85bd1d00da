package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/pkg/trace"
)

type published struct {
	routingKey string
	traceID    string
	payload    any
}

type fakePublisher struct {
	calls []published
	err   error
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, routingKey string, payload any) error {
	p.calls = append(p.calls, published{routingKey, trace.FromContext(ctx), payload})
	return p.err
}

var eventColumns = []string{"id", "aggregate_type", "aggregate_id", "routing_key", "payload", "status",
	"retry_count", "next_retry_at", "created_at", "updated_at"}

func eventRows(mock pgxmock.PgxPoolIface, id int64, status string) *pgxmock.Rows {
	aggID := int64(7)
	var nilTime *time.Time
	now := time.Now()
	return mock.NewRows(eventColumns).AddRow(
		id, "submission", &aggID, "submission.committed",
		json.RawMessage(`{"status":"done","trace_id":"trace-1"}`),
		status, 0, nilTime, now, now,
	)
}

func TestRepository_GetEventByID(t *testing.T) {
	t.Run("Should scan an event", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM outbox_events WHERE id = \\$1").
			WithArgs(int64(3)).
			WillReturnRows(eventRows(mock, 3, StatusFailed))

		e, err := repo.GetEventByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), e.ID)
		assert.Equal(t, StatusFailed, e.Status)
		require.NotNil(t, e.AggregateID)
		assert.Equal(t, int64(7), *e.AggregateID)
		assert.Nil(t, e.NextRetryAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map missing rows to ErrEventNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM outbox_events WHERE id = \\$1").
			WithArgs(int64(9)).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.GetEventByID(context.Background(), 9)
		assert.True(t, errors.Is(err, ErrEventNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_MarkAsFailed(t *testing.T) {
	t.Run("Should requeue below the retry limit", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewRepository(mock)

		mock.ExpectQuery("SELECT retry_count FROM outbox_events").
			WithArgs(int64(1)).
			WillReturnRows(mock.NewRows([]string{"retry_count"}).AddRow(0))
		mock.ExpectExec("UPDATE outbox_events").
			WithArgs(StatusPending, 1, pgxmock.AnyArg(), int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.MarkAsFailed(context.Background(), 1, 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should give up at the retry limit", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := NewRepository(mock)

		var nilTime *time.Time
		mock.ExpectQuery("SELECT retry_count FROM outbox_events").
			WithArgs(int64(1)).
			WillReturnRows(mock.NewRows([]string{"retry_count"}).AddRow(4))
		mock.ExpectExec("UPDATE outbox_events").
			WithArgs(StatusFailed, 5, nilTime, int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.MarkAsFailed(context.Background(), 1, 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReplayService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should publish with the stored trace id and mark the event sent", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		pub := &fakePublisher{}
		svc := NewReplayService(NewRepository(mock), pub, zap.NewNop())

		mock.ExpectQuery("SELECT (.+) FROM outbox_events WHERE id = \\$1").
			WithArgs(int64(3)).
			WillReturnRows(eventRows(mock, 3, StatusFailed))
		mock.ExpectExec("UPDATE outbox_events SET status = 'sent'").
			WithArgs(int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, svc.ReplayEvent(ctx, 3))
		require.Len(t, pub.calls, 1)
		assert.Equal(t, "submission.committed", pub.calls[0].routingKey)
		assert.Equal(t, "trace-1", pub.calls[0].traceID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should count a failed publish as a retry", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		pub := &fakePublisher{err: errors.New("channel closed")}
		svc := NewReplayService(NewRepository(mock), pub, zap.NewNop())

		mock.ExpectQuery("SELECT (.+) FROM outbox_events WHERE id = \\$1").
			WithArgs(int64(3)).
			WillReturnRows(eventRows(mock, 3, StatusFailed))
		mock.ExpectQuery("SELECT retry_count FROM outbox_events").
			WithArgs(int64(3)).
			WillReturnRows(mock.NewRows([]string{"retry_count"}).AddRow(1))
		mock.ExpectExec("UPDATE outbox_events").
			WithArgs(StatusPending, 2, pgxmock.AnyArg(), int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.Error(t, svc.ReplayEvent(ctx, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report requeue of an unknown event", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		svc := NewReplayService(NewRepository(mock), &fakePublisher{}, zap.NewNop())

		mock.ExpectExec("UPDATE outbox_events").
			WithArgs(int64(42)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, svc.Requeue(ctx, 42), ErrEventNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDispatcher_ProcessPendingEvents(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	pub := &fakePublisher{}
	d := NewDispatcher(NewRepository(mock), pub, zap.NewNop()).WithBatchSize(10)

	mock.ExpectQuery("SELECT (.+) FROM outbox_events WHERE status = 'pending'").
		WithArgs(10).
		WillReturnRows(eventRows(mock, 1, StatusPending))
	mock.ExpectExec("UPDATE outbox_events SET status = 'sent'").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.Equal(t, 1, d.processPendingEvents(context.Background()))
	assert.Len(t, pub.calls, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
