package util

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptCounter 记录每个提交范围连续失败的次数。
// 每次失败都会刷新过期时间，window 内没有新的失败则计数自动清零。
type AttemptCounter struct {
	rdb    *redis.Client
	window time.Duration
}

func NewAttemptCounter(rdb *redis.Client, window time.Duration) *AttemptCounter {
	return &AttemptCounter{rdb: rdb, window: window}
}

// IncrementAndGet 记一次失败并返回当前次数（INCR 与 EXPIRE 在同一个事务里执行）
func (a *AttemptCounter) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := a.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, a.window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Count 返回当前失败次数，没有记录时为 0
func (a *AttemptCounter) Count(ctx context.Context, key string) (int64, error) {
	n, err := a.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Reset 提交成功后清除计数
func (a *AttemptCounter) Reset(ctx context.Context, key string) error {
	return a.rdb.Del(ctx, key).Err()
}
