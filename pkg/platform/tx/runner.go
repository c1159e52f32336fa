package tx

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "hackportal/pkg/domain-errors"
)

// Runner provides a transactional boundary for multi-store mutations.
// Implementations wrap a database transaction or, in memory, a lock.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	numShards        = 64
	defaultTxTimeout = 5 * time.Second
)

type shardKey struct{}

// WithShardKey scopes the in-memory lock to one aggregate, e.g. a project ID.
func WithShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, shardKey{}, key)
}

// ShardedLock serializes in-memory transactions per shard key.
type ShardedLock struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func NewShardedLock() *ShardedLock {
	return &ShardedLock{timeout: defaultTxTimeout}
}

func (l *ShardedLock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	shard := l.selectShard(ctx)
	l.shards[shard].Lock()
	defer l.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

func (l *ShardedLock) selectShard(ctx context.Context) uint32 {
	key, ok := ctx.Value(shardKey{}).(string)
	if !ok || key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % numShards
}
