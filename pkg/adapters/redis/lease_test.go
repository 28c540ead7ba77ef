package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc/pkg/adapters/redis"
)

func TestWriterLease_AcquireRelease(t *testing.T) {
	mr, store := newStore(t, redis.WithPrefix("test:calc:"))
	ctx := context.Background()

	release, err := store.AcquireWriter(ctx, "host-a", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:calc:writer"), "lease key should be set in Redis")

	holder, err := store.Writer(ctx)
	require.NoError(t, err)
	assert.Contains(t, holder, "host-a/")

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("test:calc:writer"), "lease key should be removed after release")

	holder, err = store.Writer(ctx)
	require.NoError(t, err)
	assert.Empty(t, holder)
}

func TestWriterLease_Contention(t *testing.T) {
	_, first := newStore(t, redis.WithPrefix("test:calc:"))
	ctx := context.Background()

	release, err := first.TryAcquireWriter(ctx, "host-a", 5*time.Second)
	require.NoError(t, err)

	_, err = first.TryAcquireWriter(ctx, "host-b", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLeaseHeld)

	short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = first.AcquireWriter(short, "host-b", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, release(ctx))
	release2, err := first.AcquireWriter(ctx, "host-b", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestWriterLease_ReleaseOnlyOwnToken(t *testing.T) {
	mr, store := newStore(t, redis.WithPrefix("test:calc:"))
	ctx := context.Background()

	release, err := store.TryAcquireWriter(ctx, "host-a", time.Second)
	require.NoError(t, err)

	// lease expires and someone else takes it
	mr.FastForward(2 * time.Second)
	_, err = store.TryAcquireWriter(ctx, "host-b", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, release(ctx))
	holder, err := store.Writer(ctx)
	require.NoError(t, err)
	assert.Contains(t, holder, "host-b/", "stale release must not drop another owner's lease")
}

func TestWriterLease_HoldExtends(t *testing.T) {
	mr, store := newStore(t, redis.WithPrefix("test:calc:"))
	ctx := context.Background()

	release, err := store.HoldWriter(ctx, "host-a", 150*time.Millisecond)
	require.NoError(t, err)

	// Simulated time only moves on FastForward, so an extension shows up as a
	// TTL reset after the clock was advanced.
	mr.FastForward(100 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return mr.TTL("test:calc:writer") == 150*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond)

	_, err = store.TryAcquireWriter(ctx, "host-b", time.Second)
	assert.ErrorIs(t, err, redis.ErrLeaseHeld)

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("test:calc:writer"))
}

func TestWriterLease_RejectsInvalidTTL(t *testing.T) {
	mr, store := newStore(t, redis.WithPrefix("test:calc:"))
	ctx := context.Background()

	for _, ttl := range []time.Duration{0, -time.Second, time.Nanosecond, 500 * time.Microsecond} {
		t.Run(ttl.String(), func(t *testing.T) {
			_, err := store.HoldWriter(ctx, "host-a", ttl)
			assert.ErrorIs(t, err, redis.ErrInvalidTTL)

			_, err = store.TryAcquireWriter(ctx, "host-a", ttl)
			assert.ErrorIs(t, err, redis.ErrInvalidTTL)

			_, err = store.AcquireWriter(ctx, "host-a", ttl)
			assert.ErrorIs(t, err, redis.ErrInvalidTTL)

			assert.False(t, mr.Exists("test:calc:writer"))
		})
	}
}
