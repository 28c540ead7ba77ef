package ports

import (
	"context"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// ObservationStore keeps the most recent observation for polling consumers.
type ObservationStore interface {
	Observer

	// Latest returns the last observation stored.
	// Returns domain.ErrNoObservation if nothing has been observed yet.
	Latest(ctx context.Context) (domain.Observation, error)
}
