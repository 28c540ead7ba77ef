package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/dsl"
)

func TestBuilder_Sum(t *testing.T) {
	ctx := context.Background()
	eng := nodecalc.MustNew()

	b := dsl.New()
	b.Constant("five").Literal(5)
	b.Constant("three").Literal(3).Name("three")
	b.Sum("total").From("five").From("three")
	b.Output().From("total")

	refs, err := b.Build(ctx, eng)
	require.NoError(t, err)

	assert.Equal(t, domain.NodeID("sum-3"), refs.Node("total"))
	assert.Equal(t, domain.NodeID("output"), refs.Node("output"))
	assert.Len(t, refs.Connections, 3)
	assert.Equal(t, "8", eng.Display().Text)

	snap, _ := eng.Snapshot(ctx)
	n, ok := snap.Node(refs.Node("three"))
	require.True(t, ok)
	assert.Equal(t, "three", n.Name)
}

func TestBuilder_ChainAndDefaults(t *testing.T) {
	ctx := context.Background()
	eng := nodecalc.MustNew()

	b := dsl.New()
	b.Constant("ten").Literal(10).
		Then("half", domain.KindDivision).Defaults(0, 2).
		Then("plus", domain.KindSum).Defaults(0, 1)
	b.Output().From("plus")

	_, err := b.Build(ctx, eng)
	require.NoError(t, err)
	assert.Equal(t, "6", eng.Display().Text)
}

func TestBuilder_OutputLiteralAndNoDefault(t *testing.T) {
	ctx := context.Background()
	eng := nodecalc.MustNew()

	b := dsl.New()
	b.Output().Literal(42)
	b.Sum("lonely").NoDefault()

	refs, err := b.Build(ctx, eng)
	require.NoError(t, err)
	assert.Equal(t, "42", eng.Display().Text)

	snap, _ := eng.Snapshot(ctx)
	assert.False(t, snap.Value(domain.In(refs.Node("lonely"), 0)).Present())
}

func TestBuilder_Loop(t *testing.T) {
	ctx := context.Background()
	eng := nodecalc.MustNew()

	b := dsl.New()
	b.Sum("a").In(0, "b")
	b.Sum("b").In(0, "a")
	b.Output().From("a")

	_, err := b.Build(ctx, eng)
	require.NoError(t, err, "cycles are verdicts, not build errors")
	assert.Equal(t, domain.MessageLoops, eng.Verdict().Message)
}

func TestBuilder_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown source", func(t *testing.T) {
		b := dsl.New()
		b.Output().From("ghost")
		_, err := b.Build(ctx, nodecalc.MustNew())
		assert.ErrorContains(t, err, `unknown source "ghost"`)
	})

	t.Run("occupied input", func(t *testing.T) {
		b := dsl.New()
		b.Constant("c")
		b.Output().In(0, "c").In(0, "c")
		refs, err := b.Build(ctx, nodecalc.MustNew())
		assert.ErrorIs(t, err, domain.ErrPortOccupied)
		assert.Len(t, refs.Connections, 1)
	})

	t.Run("invalid config", func(t *testing.T) {
		b := dsl.New()
		b.Sum("s").Literal(3)
		_, err := b.Build(ctx, nodecalc.MustNew())
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}
