package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestIsRetryableError(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{}
	cases := []struct {
		err       error
		retryable bool
		kind      string
	}{
		{nil, false, ""},
		{fmt.Errorf("decode: %w", syntaxErr), false, "json_decode_error"},
		{context.DeadlineExceeded, true, "timeout"},
		{context.Canceled, false, "context_canceled"},
		{&url.Error{Op: "Get", URL: "http://x", Err: errors.New("dial tcp: refused")}, true, "network_error"},
		{errors.New("something odd"), false, "unknown_error"},
	}
	for _, tc := range cases {
		retryable, kind := IsRetryableError(tc.err)
		assert.Equal(t, tc.retryable, retryable, "%v", tc.err)
		assert.Equal(t, tc.kind, kind, "%v", tc.err)
	}
}

func TestDeduper(t *testing.T) {
	ctx := context.Background()

	t.Run("Should grant a key once until released", func(t *testing.T) {
		_, rdb := newRedis(t)
		d := NewDeduper(rdb, time.Minute, nil)
		assert.True(t, d.AcquireOnce(ctx, "k"))
		assert.False(t, d.AcquireOnce(ctx, "k"))
		d.Release(ctx, "k")
		assert.True(t, d.AcquireOnce(ctx, "k"))
	})

	t.Run("Should expire keys after the ttl", func(t *testing.T) {
		mr, rdb := newRedis(t)
		d := NewDeduper(rdb, time.Second, nil)
		require.True(t, d.AcquireOnce(ctx, "k"))
		mr.FastForward(2 * time.Second)
		assert.True(t, d.AcquireOnce(ctx, "k"))
	})

	t.Run("Should fail open when redis is down", func(t *testing.T) {
		mr, rdb := newRedis(t)
		mr.Close()
		d := NewDeduper(rdb, time.Minute, nil)
		assert.True(t, d.AcquireOnce(ctx, "k"))
		assert.True(t, d.AcquireOnce(ctx, "k"))
	})
}

func TestAttemptCounter(t *testing.T) {
	ctx := context.Background()

	t.Run("Should count failures and clear on reset", func(t *testing.T) {
		mr, rdb := newRedis(t)
		ac := NewAttemptCounter(rdb, time.Minute)

		n, err := ac.Count(ctx, "submission:attempts:u1:p1")
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = ac.IncrementAndGet(ctx, "submission:attempts:u1:p1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = ac.IncrementAndGet(ctx, "submission:attempts:u1:p1")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		assert.Equal(t, time.Minute, mr.TTL("submission:attempts:u1:p1"))

		require.NoError(t, ac.Reset(ctx, "submission:attempts:u1:p1"))
		n, err = ac.Count(ctx, "submission:attempts:u1:p1")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Should forget failures once the window passes", func(t *testing.T) {
		mr, rdb := newRedis(t)
		ac := NewAttemptCounter(rdb, time.Minute)

		_, err := ac.IncrementAndGet(ctx, "k")
		require.NoError(t, err)
		mr.FastForward(30 * time.Second)
		n, err := ac.IncrementAndGet(ctx, "k")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		assert.Equal(t, time.Minute, mr.TTL("k"))

		mr.FastForward(2 * time.Minute)
		n, err = ac.Count(ctx, "k")
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
