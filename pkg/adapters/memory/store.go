package memory

import (
	"context"
	"sync"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// DefaultHistory is the number of observations a Store keeps when no limit is given.
const DefaultHistory = 64

// Store implements ports.ObservationStore in memory.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	history []domain.Observation
	limit   int
}

var _ ports.ObservationStore = (*Store)(nil)

// NewStore creates a store that retains the last limit observations.
// A limit below 1 means DefaultHistory.
func NewStore(limit int) *Store {
	if limit < 1 {
		limit = DefaultHistory
	}
	return &Store{limit: limit}
}

// Observe records a copy of obs, evicting the oldest entry when full.
func (s *Store) Observe(ctx context.Context, obs domain.Observation) error {
	obs.Snapshot = obs.Snapshot.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == s.limit {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, obs)
	return nil
}

// Latest returns a copy of the newest observation.
func (s *Store) Latest(ctx context.Context) (domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.history) == 0 {
		return domain.Observation{}, domain.ErrNoObservation
	}
	obs := s.history[len(s.history)-1]
	obs.Snapshot = obs.Snapshot.Clone()
	return obs, nil
}

// History returns the retained observations, oldest first.
func (s *Store) History() []domain.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Observation, len(s.history))
	for i, obs := range s.history {
		obs.Snapshot = obs.Snapshot.Clone()
		out[i] = obs
	}
	return out
}

// Commands lists the command names of the retained observations.
func (s *Store) Commands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.history))
	for i, obs := range s.history {
		out[i] = obs.Command
	}
	return out
}
