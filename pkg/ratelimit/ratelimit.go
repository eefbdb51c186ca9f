package ratelimit

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/sha3"
)

const (
	ScopeIP     = "ip"
	ScopeViewer = "viewer"
)

// Status is the state of a bucket after a hit.
type Status struct {
	Bucket    string
	Scope     string
	Remaining int
	Reset     time.Time
}

// Limiter counts hits against a resource (bucket) for a scope and identifier.
//
// The bucket should be the action, such as 'post'.
// The scope should be one of ScopeIP or ScopeViewer.
// The identifier should be the IP address or viewer ID.
type Limiter interface {
	Hit(ctx context.Context, bucket string, scope string, id string, limit int, window time.Duration) (Status, error)
	Limited(ctx context.Context, bucket string, scope string, id string) bool
}

func Key(bucket string, scope string, id string) string {
	h := sha3.NewShake256()
	h.Write([]byte("rtl"))
	h.Write([]byte(bucket))
	h.Write([]byte(scope))
	h.Write([]byte(id))

	sum := make([]byte, 32)
	h.Read(sum)
	return base64.URLEncoding.EncodeToString(sum)
}

type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Hit(ctx context.Context, bucket string, scope string, id string, limit int, window time.Duration) (Status, error) {
	key := Key(bucket, scope, id)

	// Get remaining limit and TTL
	var newRemaining int
	var newTTL time.Duration
	remaining, err := l.client.Get(ctx, key).Int()
	if err == redis.Nil {
		newRemaining = limit - 1
		newTTL = window
	} else if err != nil {
		return Status{}, err
	} else {
		newRemaining = remaining - 1
		newTTL = l.client.TTL(ctx, key).Val()
		if newTTL <= 0 {
			newTTL = window
		}
	}

	// Set new limit
	if err := l.client.Set(ctx, key, newRemaining, newTTL).Err(); err != nil {
		return Status{}, err
	}

	return Status{
		Bucket:    bucket,
		Scope:     scope,
		Remaining: newRemaining,
		Reset:     time.Now().Add(newTTL),
	}, nil
}

func (l *RedisLimiter) Limited(ctx context.Context, bucket string, scope string, id string) bool {
	remaining, err := l.client.Get(ctx, Key(bucket, scope, id)).Int()
	if err != nil || remaining > 0 {
		return false
	}
	return true
}

type memoryBucket struct {
	remaining int
	reset     time.Time
}

// MemoryLimiter is a Limiter for a single process.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]memoryBucket
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]memoryBucket), now: time.Now}
}

func (l *MemoryLimiter) Hit(_ context.Context, bucket string, scope string, id string, limit int, window time.Duration) (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := Key(bucket, scope, id)
	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.reset) {
		b = memoryBucket{remaining: limit, reset: now.Add(window)}
	}
	b.remaining -= 1
	l.buckets[key] = b

	return Status{Bucket: bucket, Scope: scope, Remaining: b.remaining, Reset: b.reset}, nil
}

func (l *MemoryLimiter) Limited(_ context.Context, bucket string, scope string, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[Key(bucket, scope, id)]
	if !ok || !l.now().Before(b.reset) {
		return false
	}
	return b.remaining <= 0
}
