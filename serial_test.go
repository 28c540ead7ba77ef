package nodecalc_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/graph"
	"github.com/aretw0/nodecalc/pkg/ports"
)

func TestSerial_ConcurrentCommands(t *testing.T) {
	ctx := context.Background()
	s := nodecalc.NewSerial(nodecalc.MustNew())
	defer s.Close()

	sum, err := s.AddNode(ctx, domain.KindSum, map[string]any{"no_default": true})
	require.NoError(t, err)
	_, err = s.Connect(ctx, domain.Out(sum, 0), domain.In(graph.OutputID, 0))
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan domain.ConnectionID, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			c, err := s.AddNode(ctx, domain.KindConstant, map[string]any{"literal": n})
			if err != nil {
				return
			}
			if id, err := s.Connect(ctx, domain.Out(c, 0), domain.In(sum, 0)); err == nil {
				wins <- id
			}
		}(int64(i))
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1, "exactly one writer gets the free input")

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, workers+2)
	// 2 setup commands, 16 adds, 1 successful connect
	assert.Equal(t, uint64(workers+3), snap.Revision)
}

func TestSerial_ApplyIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := nodecalc.NewSerial(nodecalc.MustNew())
	defer s.Close()

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			snap, err := s.Apply(ctx, func(e ports.Engine) error {
				return e.SetLiteral(ctx, graph.OutputID, domain.Of(n))
			})
			if assert.NoError(t, err) {
				assert.Equal(t, strconv.FormatInt(n, 10), snap.Display.Text)
			}
		}(int64(i))
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(workers), snap.Revision)
}

func TestSerial_Close(t *testing.T) {
	s := nodecalc.NewSerial(nodecalc.MustNew())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	_, err := s.AddNode(context.Background(), domain.KindSum, nil)
	assert.ErrorIs(t, err, nodecalc.ErrClosed)
	_, err = s.Snapshot(context.Background())
	assert.ErrorIs(t, err, nodecalc.ErrClosed)
}

func TestSerial_DoAndSubscribe(t *testing.T) {
	ctx := context.Background()
	s := nodecalc.NewSerial(nodecalc.MustNew())
	defer s.Close()

	var seen []string
	require.NoError(t, s.Subscribe(ctx, ports.ObserverFunc(func(_ context.Context, o domain.Observation) error {
		seen = append(seen, o.Command)
		return nil
	})))

	err := s.Do(ctx, func(e *nodecalc.Engine) error {
		c, err := e.AddNode(ctx, domain.KindConstant, map[string]any{"literal": 3})
		if err != nil {
			return err
		}
		_, err = e.Connect(ctx, domain.Out(c, 0), domain.In(graph.OutputID, 0))
		return err
	})
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3", snap.Display.Text)
	assert.Equal(t, []string{"add_node", "connect"}, seen)
}
