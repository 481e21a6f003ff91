package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSubmissionInFlight = errors.New("a submission is already in progress")

const submissionLockPrefix = "bloodlink:submission:"

// SubmissionGuard allows at most one in-flight write per user. Acquire never
// waits; a held lock fails fast with ErrSubmissionInFlight.
type SubmissionGuard interface {
	Acquire(ctx context.Context, userID string) (release func(), err error)
}

// NewSubmissionGuard picks the Redis guard when a client is configured.
func NewSubmissionGuard(client *cache.Client, ttl time.Duration) SubmissionGuard {
	if client == nil {
		return NewMemoryGuard()
	}
	return NewRedisGuard(client.Client, ttl)
}

// MemoryGuard is the single-instance guard.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, userID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[userID]; busy {
		return nil, ErrSubmissionInFlight
	}
	g.held[userID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, userID)
			g.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock re-acquired by another request is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares locks across instances with SET NX PX.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, userID string) (func(), error) {
	key := submissionLockPrefix + userID
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire submission lock: %w", err)
	}
	if !ok {
		return nil, ErrSubmissionInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, g.client, []string{key}, token).Err(); err != nil {
				slog.Warn("release submission lock failed", "user_id", userID, "error", err)
			}
		})
	}, nil
}
