package tests

import (
	"context"
	"testing"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sink domain.NodeID = "output"

// EngineContractTest is a reusable test suite that verifies if an implementation complies with ports.Engine.
// newEngine must return a fresh engine holding only the output sink.
func EngineContractTest(t *testing.T, newEngine func(t *testing.T) ports.Engine) {
	t.Helper()
	ctx := context.Background()

	constant := func(t *testing.T, e ports.Engine, n int64) domain.NodeID {
		t.Helper()
		id, err := e.AddNode(ctx, domain.KindConstant, map[string]any{"literal": n})
		require.NoError(t, err)
		return id
	}
	connect := func(t *testing.T, e ports.Engine, from, to domain.PortID) domain.ConnectionID {
		t.Helper()
		id, err := e.Connect(ctx, from, to)
		require.NoError(t, err)
		return id
	}

	t.Run("Sum_Displays_Value", func(t *testing.T) {
		e := newEngine(t)
		five := constant(t, e, 5)
		three := constant(t, e, 3)
		sum, err := e.AddNode(ctx, domain.KindSum, nil)
		require.NoError(t, err)

		connect(t, e, domain.Out(five, 0), domain.In(sum, 0))
		connect(t, e, domain.Out(three, 0), domain.In(sum, 1))
		connect(t, e, domain.Out(sum, 0), domain.In(sink, 0))

		snap, err := e.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, snap.Verdict.IsValid)
		assert.Equal(t, domain.Display{State: domain.DisplayValue, Text: "8"}, snap.Display)
	})

	t.Run("Division_By_Zero_Warns", func(t *testing.T) {
		e := newEngine(t)
		five := constant(t, e, 5)
		zero := constant(t, e, 0)
		div, err := e.AddNode(ctx, domain.KindDivision, nil)
		require.NoError(t, err)

		connect(t, e, domain.Out(five, 0), domain.In(div, 0))
		connect(t, e, domain.Out(zero, 0), domain.In(div, 1))
		connect(t, e, domain.Out(div, 0), domain.In(sink, 0))

		snap, err := e.Snapshot(ctx)
		require.NoError(t, err)
		assert.False(t, snap.Verdict.IsValid)
		assert.True(t, snap.Verdict.IsWarningOnly)
		assert.Equal(t, domain.MessageDivisionByZero, snap.Verdict.Message)
		assert.Equal(t, domain.ErrorText, snap.Display.Text)
	})

	t.Run("Two_Cycle_Is_Fatal", func(t *testing.T) {
		e := newEngine(t)
		x, err := e.AddNode(ctx, domain.KindSum, nil)
		require.NoError(t, err)
		y, err := e.AddNode(ctx, domain.KindSum, nil)
		require.NoError(t, err)

		connect(t, e, domain.Out(x, 0), domain.In(y, 0))
		back := connect(t, e, domain.Out(y, 0), domain.In(x, 0))

		snap, err := e.Snapshot(ctx)
		require.NoError(t, err)
		assert.False(t, snap.Verdict.IsValid)
		assert.False(t, snap.Verdict.IsWarningOnly)
		assert.Equal(t, domain.MessageLoops, snap.Verdict.Message)
		assert.Equal(t, domain.DisplayError, snap.Display.State)

		require.NoError(t, e.Disconnect(ctx, back))
		snap, err = e.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, snap.Verdict.IsValid, "breaking the only cycle restores a valid verdict")
	})

	t.Run("Output_Is_Protected", func(t *testing.T) {
		e := newEngine(t)
		before, err := e.Snapshot(ctx)
		require.NoError(t, err)

		err = e.RemoveNode(ctx, sink)
		require.Error(t, err)
		assert.True(t, domain.IsStructural(err))

		after, err := e.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, before.Revision, after.Revision)
		assert.Equal(t, before.Nodes, after.Nodes)
	})

	t.Run("Recompute_Is_Idempotent", func(t *testing.T) {
		e := newEngine(t)
		c := constant(t, e, 4)
		connect(t, e, domain.Out(c, 0), domain.In(sink, 0))

		first, err := e.Recompute(ctx)
		require.NoError(t, err)
		second, err := e.Recompute(ctx)
		require.NoError(t, err)

		assert.Equal(t, first.Verdict, second.Verdict)
		assert.Equal(t, first.Display, second.Display)
		assert.Equal(t, first.Nodes, second.Nodes)
		assert.Equal(t, first.Revision+1, second.Revision)
	})

	t.Run("Literals", func(t *testing.T) {
		e := newEngine(t)
		require.NoError(t, e.SetLiteral(ctx, sink, domain.Of(12)))

		snap, err := e.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, "12", snap.Display.Text)

		sum, err := e.AddNode(ctx, domain.KindSum, nil)
		require.NoError(t, err)
		require.NoError(t, e.SetInputLiteral(ctx, domain.In(sum, 0), domain.Of(2)))
		require.NoError(t, e.SetInputLiteral(ctx, domain.In(sum, 1), domain.Of(40)))
		connect(t, e, domain.Out(sum, 0), domain.In(sink, 0))

		snap, err = e.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, "42", snap.Display.Text, "a connection overrides the sink literal")
	})

	t.Run("Apply_Returns_Resulting_Snapshot", func(t *testing.T) {
		e := newEngine(t)
		var id domain.NodeID
		snap, err := e.Apply(ctx, func(inner ports.Engine) (err error) {
			id, err = inner.AddNode(ctx, domain.KindConstant, map[string]any{"literal": 9})
			if err != nil {
				return err
			}
			_, err = inner.Connect(ctx, domain.Out(id, 0), domain.In(sink, 0))
			return err
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, "9", snap.Display.Text)
		assert.Len(t, snap.Connections, 1)

		before := snap.Revision
		snap, err = e.Apply(ctx, func(inner ports.Engine) error {
			return inner.RemoveNode(ctx, sink)
		})
		require.Error(t, err)
		assert.True(t, domain.IsStructural(err))
		assert.Equal(t, before, snap.Revision, "a rejected command leaves the graph as it was")
	})
}
