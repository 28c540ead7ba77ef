package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// ErrLeaseHeld is returned by TryAcquireWriter when another process owns the graph.
var ErrLeaseHeld = errors.New("graph is owned by another writer")

// ErrInvalidTTL is returned when a lease TTL is below one millisecond, the
// resolution Redis expires keys with.
var ErrInvalidTTL = errors.New("writer lease ttl must be at least 1ms")

// ReleaseFunc gives a writer lease back.
type ReleaseFunc func(ctx context.Context) error

const extendScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// WriterKey is the key guarding the single engine allowed to publish under the prefix.
func (s *Store) WriterKey() string { return s.prefix + "writer" }

// AcquireWriter blocks until this process owns the prefix, polling every
// 100ms, or ctx ends. owner identifies the holder (host, pid).
func (s *Store) AcquireWriter(ctx context.Context, owner string, ttl time.Duration) (ReleaseFunc, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		release, err := s.TryAcquireWriter(ctx, owner, ttl)
		if !errors.Is(err, ErrLeaseHeld) {
			return release, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// TryAcquireWriter takes the lease with SET NX PX, failing with ErrLeaseHeld
// when it is taken.
func (s *Store) TryAcquireWriter(ctx context.Context, owner string, ttl time.Duration) (ReleaseFunc, error) {
	token, err := s.acquire(ctx, owner, ttl)
	if err != nil {
		return nil, err
	}
	return s.releaser(token), nil
}

// HoldWriter takes the lease like TryAcquireWriter and keeps extending it every
// ttl/3 until released or ctx ends. Losing the lease is logged, not fatal.
func (s *Store) HoldWriter(ctx context.Context, owner string, ttl time.Duration) (ReleaseFunc, error) {
	token, err := s.acquire(ctx, owner, ttl)
	if err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				n, err := s.client.Eval(ctx, extendScript, []string{s.WriterKey()}, token, ttl.Milliseconds()).Int()
				if err != nil || n == 0 {
					s.logger.Warn("Writer lease lost", "key", s.WriterKey(), "error", err)
					return
				}
			}
		}
	}()

	release := s.releaser(token)
	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stop) })
		<-done
		return release(ctx)
	}, nil
}

func (s *Store) acquire(ctx context.Context, owner string, ttl time.Duration) (string, error) {
	if ttl < time.Millisecond {
		return "", fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	token := fmt.Sprintf("%s/%d", owner, time.Now().UnixNano())
	ok, err := s.client.SetNX(ctx, s.WriterKey(), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis error acquiring writer lease: %w", err)
	}
	if !ok {
		return "", ErrLeaseHeld
	}
	return token, nil
}

func (s *Store) releaser(token string) ReleaseFunc {
	key := s.WriterKey()
	return func(ctx context.Context) error {
		return s.client.Eval(ctx, releaseScript, []string{key}, token).Err()
	}
}

// Writer returns the current lease holder token, or "" when free.
func (s *Store) Writer(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, s.WriterKey()).Result()
	if errors.Is(err, backend.Nil) {
		return "", nil
	}
	return v, err
}
