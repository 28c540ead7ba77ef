package ports

import (
	"context"
	"testing"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunObservationStoreContract runs a suite of tests to verify that an ObservationStore
// implementation adheres to the defined interface contract. The store must be empty.
func RunObservationStoreContract(t *testing.T, store ObservationStore) {
	ctx := context.Background()

	t.Run("Latest Before Observe", func(t *testing.T) {
		_, err := store.Latest(ctx)
		assert.ErrorIs(t, err, domain.ErrNoObservation)
	})

	first := sampleObservation("add_node", 1, domain.Display{State: domain.DisplayValue, Text: "5"}, domain.Valid())
	second := sampleObservation("set_literal", 2,
		domain.Display{State: domain.DisplayError, Text: domain.ErrorText},
		domain.Warning(domain.MessageDivisionByZero, "division-2"))

	t.Run("Observe and Latest", func(t *testing.T) {
		require.NoError(t, store.Observe(ctx, first))

		got, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "add_node", got.Command)
		assert.Equal(t, uint64(1), got.Snapshot.Revision)
		assert.Equal(t, "5", got.Snapshot.Display.Text)
		assert.Equal(t, domain.Of(5), got.Snapshot.Result())
	})

	t.Run("Latest Wins", func(t *testing.T) {
		require.NoError(t, store.Observe(ctx, second))

		got, err := store.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), got.Snapshot.Revision)
		assert.Equal(t, domain.DisplayError, got.Snapshot.Display.State)
		assert.True(t, got.Snapshot.Verdict.IsWarningOnly)
		assert.Equal(t, []domain.NodeID{"division-2"}, got.Snapshot.Verdict.Offenders)
	})
}

func sampleObservation(cmd string, rev uint64, display domain.Display, verdict domain.Verdict) domain.Observation {
	return domain.Observation{
		Command: cmd,
		Snapshot: domain.Snapshot{
			Revision: rev,
			Verdict:  verdict,
			Display:  display,
			Nodes: []domain.Node{{
				ID:   "output",
				Kind: domain.KindOutput,
				Name: "output",
				Inputs: []domain.Port{{
					ID:                domain.In("output", 0),
					Name:              "value",
					Type:              domain.TypeInt,
					HasLiteralDefault: true,
					Literal:           domain.Of(0),
					Value:             domain.Of(5),
				}},
			}},
		},
	}
}
