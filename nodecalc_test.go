package nodecalc_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/graph"
	"github.com/aretw0/nodecalc/pkg/ports"
	"github.com/aretw0/nodecalc/pkg/ports/tests"
)

func TestEngine_Contract(t *testing.T) {
	tests.EngineContractTest(t, func(t *testing.T) ports.Engine {
		eng, err := nodecalc.New()
		require.NoError(t, err)
		return eng
	})
}

func TestSerial_Contract(t *testing.T) {
	tests.EngineContractTest(t, func(t *testing.T) ports.Engine {
		s := nodecalc.NewSerial(nodecalc.MustNew())
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

// Removing the output sink is rejected and leaves the snapshot untouched.
func TestEngine_ProtectedSink(t *testing.T) {
	ctx := context.Background()
	eng := nodecalc.MustNew()
	c, err := eng.AddNode(ctx, domain.KindConstant, map[string]any{"literal": 1})
	require.NoError(t, err)
	_, err = eng.Connect(ctx, domain.Out(c, 0), domain.In(graph.OutputID, 0))
	require.NoError(t, err)
	before, _ := eng.Snapshot(ctx)

	err = eng.RemoveNode(ctx, graph.OutputID)

	var se *domain.StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "remove_node", se.Op)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	after, _ := eng.Snapshot(ctx)
	assert.Equal(t, before, after)
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng := nodecalc.MustNew()

	_, err := eng.AddNode(ctx, domain.KindSum, nil)
	assert.ErrorIs(t, err, context.Canceled)
	snap, _ := eng.Snapshot(context.Background())
	assert.Len(t, snap.Nodes, 1)
}

func TestEngine_Options(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	var displays []string
	var observed []string

	reg := prometheus.NewRegistry()
	eng, err := nodecalc.New(
		nodecalc.WithName("demo"),
		nodecalc.WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		nodecalc.WithMetrics(reg),
		nodecalc.WithLifecycleHooks(domain.LifecycleHooks{
			OnDisplay: func(_ context.Context, e *domain.DisplayEvent) { displays = append(displays, e.Display.Text) },
		}),
		nodecalc.WithObserver(ports.ObserverFunc(func(_ context.Context, o domain.Observation) error {
			observed = append(observed, o.Command)
			return nil
		})),
	)
	require.NoError(t, err)

	c, err := eng.AddNode(ctx, domain.KindConstant, map[string]any{"literal": 7})
	require.NoError(t, err)
	_, err = eng.Connect(ctx, domain.Out(c, 0), domain.In(graph.OutputID, 0))
	require.NoError(t, err)
	_, err = eng.Connect(ctx, domain.Out(c, 0), domain.In(graph.OutputID, 0))
	require.Error(t, err)

	assert.Equal(t, []string{"0", "7"}, displays)
	assert.Equal(t, []string{"add_node", "connect"}, observed)
	assert.Contains(t, logs.String(), "graph=demo")
	assert.Contains(t, logs.String(), "command rejected")

	require.NotNil(t, eng.Metrics())
	assert.Equal(t, 1.0, testutil.ToFloat64(eng.Metrics().Commands.WithLabelValues("connect", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(eng.Metrics().Commands.WithLabelValues("connect", "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(eng.Metrics().Propagations))
}

type noNegativeResult struct{}

func (noNegativeResult) Name() string { return "no_negative_result" }

func (noNegativeResult) Check(g *graph.Graph) (domain.Verdict, bool) {
	if n, ok := g.Output().Inputs[0].Value.Int(); ok && n < 0 {
		return domain.Warning("result is negative", graph.OutputID), true
	}
	return domain.Verdict{}, false
}

func TestEngine_WithRules(t *testing.T) {
	ctx := context.Background()
	eng := nodecalc.MustNew(nodecalc.WithRules(append(nodecalc.DefaultRules(), noNegativeResult{})...))

	require.NoError(t, eng.SetLiteral(ctx, graph.OutputID, domain.Of(-1)))
	assert.Equal(t, "result is negative", eng.Verdict().Message)
	assert.Equal(t, domain.ErrorText, eng.Display().Text)

	require.NoError(t, eng.SetLiteral(ctx, graph.OutputID, domain.Of(1)))
	assert.True(t, eng.Verdict().IsValid)
}
