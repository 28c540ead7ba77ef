package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// DefaultPrefix namespaces every key and channel the store touches.
const DefaultPrefix = "nodecalc:"

// Store implements ports.ObservationStore using Redis.
// Each observation is written to "<prefix>latest", pushed onto the capped
// list "<prefix>history" and published on the channel "<prefix>events".
type Store struct {
	client  *backend.Client
	prefix  string
	ttl     time.Duration
	history int64
	logger  *slog.Logger
}

var _ ports.ObservationStore = (*Store)(nil)

type Option func(*Store)

// WithTTL sets the expiration of the latest observation.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix, usually "nodecalc:<graph>:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithHistory caps the history list. 0 disables it.
func WithHistory(n int) Option {
	return func(s *Store) {
		s.history = int64(n)
	}
}

// WithLogger sets the logger for background lease upkeep.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:  client,
		prefix:  DefaultPrefix,
		history: 100,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// LatestKey is the key holding the newest observation.
func (s *Store) LatestKey() string { return s.prefix + "latest" }

// HistoryKey is the list holding recent observations, newest first.
func (s *Store) HistoryKey() string { return s.prefix + "history" }

// Channel is the pub/sub channel observations are published on.
func (s *Store) Channel() string { return s.prefix + "events" }

// Observe persists and publishes the observation in one pipeline.
func (s *Store) Observe(ctx context.Context, obs domain.Observation) error {
	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to marshal observation: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.LatestKey(), data, s.ttl)
	if s.history > 0 {
		pipe.LPush(ctx, s.HistoryKey(), data)
		pipe.LTrim(ctx, s.HistoryKey(), 0, s.history-1)
	}
	pipe.Publish(ctx, s.Channel(), data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish observation to redis: %w", err)
	}
	return nil
}

// Latest retrieves the newest observation.
func (s *Store) Latest(ctx context.Context) (domain.Observation, error) {
	val, err := s.client.Get(ctx, s.LatestKey()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Observation{}, domain.ErrNoObservation
		}
		return domain.Observation{}, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(val)
}

// History returns up to n recent observations, newest first.
func (s *Store) History(ctx context.Context, n int) ([]domain.Observation, error) {
	if n <= 0 {
		return nil, nil
	}
	vals, err := s.client.LRange(ctx, s.HistoryKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	out := make([]domain.Observation, 0, len(vals))
	for _, v := range vals {
		obs, err := decode([]byte(v))
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, nil
}

// Subscribe streams observations published by any engine sharing the prefix.
// The channel is closed when ctx is done.
func (s *Store) Subscribe(ctx context.Context) (<-chan domain.Observation, error) {
	sub := s.client.Subscribe(ctx, s.Channel())
	// Wait for confirmation so no publish is missed after return.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.Observation, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				obs, err := decode([]byte(msg.Payload))
				if err != nil {
					continue
				}
				select {
				case out <- obs:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func decode(data []byte) (domain.Observation, error) {
	var obs domain.Observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return domain.Observation{}, fmt.Errorf("failed to unmarshal observation: %w", err)
	}
	return obs, nil
}
