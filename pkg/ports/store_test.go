package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// MockStore is an in-memory implementation of ObservationStore for testing purposes.
type MockStore struct {
	mu     sync.Mutex
	latest *domain.Observation
}

func (m *MockStore) Observe(_ context.Context, obs domain.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Deep copy to simulate serialization
	c := obs
	c.Snapshot = obs.Snapshot.Clone()
	m.latest = &c
	return nil
}

func (m *MockStore) Latest(_ context.Context) (domain.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return domain.Observation{}, domain.ErrNoObservation
	}
	return *m.latest, nil
}

func TestObservationStore_Contract(t *testing.T) {
	ports.RunObservationStoreContract(t, &MockStore{})
}

func TestObserverFunc(t *testing.T) {
	var got string
	obs := ports.ObserverFunc(func(_ context.Context, o domain.Observation) error {
		got = o.Command
		return nil
	})

	assert.NoError(t, obs.Observe(context.Background(), domain.Observation{Command: "connect"}))
	assert.Equal(t, "connect", got)
}
