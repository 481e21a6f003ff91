package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	release, err := g.Acquire(ctx, "u1")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "u1")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	other, err := g.Acquire(ctx, "u2")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := g.Acquire(ctx, "u1")
	require.NoError(t, err)
	again()
}

func TestNewSubmissionGuard_WithoutRedis(t *testing.T) {
	assert.IsType(t, &MemoryGuard{}, NewSubmissionGuard(nil, time.Second))
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisGuard(t *testing.T) {
	mr, client := newTestRedis(t)
	g := NewRedisGuard(client, 30*time.Second)
	ctx := context.Background()
	key := submissionLockPrefix + "u1"

	release, err := g.Acquire(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30*time.Second, mr.TTL(key))

	_, err = g.Acquire(ctx, "u1")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	release()
	assert.False(t, mr.Exists(key))
}

func TestRedisGuard_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	mr, client := newTestRedis(t)
	g := NewRedisGuard(client, 30*time.Second)
	ctx := context.Background()
	key := submissionLockPrefix + "u1"

	stale, err := g.Acquire(ctx, "u1")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	current, err := g.Acquire(ctx, "u1")
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists(key))

	current()
	assert.False(t, mr.Exists(key))
}

func TestRedisGuard_Unreachable(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	_, err := NewRedisGuard(client, time.Second).Acquire(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubmissionInFlight)
}
