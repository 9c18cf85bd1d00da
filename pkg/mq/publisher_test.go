package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/pkg/trace"
)

type recordingChannel struct {
	exchange, key string
	msg           amqp091.Publishing
	err           error
	closed        bool
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_PublishWithContext(t *testing.T) {
	t.Run("Should publish JSON with the trace id header", func(t *testing.T) {
		ch := &recordingChannel{}
		p := NewPublisherWithChannel(ch)
		ctx := trace.WithContext(context.Background(), "trace-123")

		err := p.PublishWithContext(ctx, "submission.committed", map[string]string{"status": "done"})
		require.NoError(t, err)

		assert.Equal(t, ExchangeName, ch.exchange)
		assert.Equal(t, "submission.committed", ch.key)
		assert.Equal(t, "application/json", ch.msg.ContentType)
		assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)
		assert.Equal(t, "trace-123", ch.msg.Headers[trace.HeaderName])

		var body map[string]string
		require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
		assert.Equal(t, "done", body["status"])
	})

	t.Run("Should return channel errors", func(t *testing.T) {
		ch := &recordingChannel{err: errors.New("channel closed")}
		p := NewPublisherWithChannel(ch)
		assert.Error(t, p.Publish("k", struct{}{}))
	})

	t.Run("Should report connection state and close the channel", func(t *testing.T) {
		ch := &recordingChannel{}
		p := NewPublisherWithChannel(ch)
		assert.True(t, p.IsConnected())
		p.Close()
		assert.True(t, ch.closed)
	})
}
