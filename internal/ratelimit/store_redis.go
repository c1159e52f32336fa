package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hackportal:rl:"

// Redis shares windows across instances using one sorted set per key, scored
// by request time in microseconds.
type Redis struct {
	client *redis.Client
	clock  func() time.Time
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, clock: time.Now}
}

func (l *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := l.clock()
	redisKey := keyPrefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", cutoff)
	count := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit window %s: %w", key, err)
	}

	resetAt := now.Add(window)
	if first := oldest.Val(); len(first) > 0 {
		resetAt = time.UnixMicro(int64(first[0].Score)).Add(window)
	}
	if int(count.Val()) >= limit {
		return &Result{Allowed: false, Limit: limit, ResetAt: resetAt}, nil
	}

	// A concurrent request may also pass between ZCard and ZAdd; the overshoot
	// is bounded by the number of racing requests.
	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit record %s: %w", key, err)
	}
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - int(count.Val()) - 1,
		ResetAt:   resetAt,
	}, nil
}
