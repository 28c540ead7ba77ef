package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/graph"
)

func TestValidate(t *testing.T) {
	v := New()

	t.Run("empty graph is valid", func(t *testing.T) {
		assert.Equal(t, domain.Valid(), v.Validate(graph.New()))
	})

	t.Run("two cycle is fatal", func(t *testing.T) {
		g := graph.New()
		x, _ := g.AddNode(domain.KindSum, graph.NodeConfig{})
		y, _ := g.AddNode(domain.KindSum, graph.NodeConfig{})
		_, err := g.Connect(domain.Out(x, 0), domain.In(y, 0))
		require.NoError(t, err)
		_, err = g.Connect(domain.Out(y, 0), domain.In(x, 0))
		require.NoError(t, err)

		got := v.Validate(g)
		assert.Equal(t, domain.SeverityFatal, got.Severity())
		assert.Equal(t, domain.MessageLoops, got.Message)
		assert.ElementsMatch(t, []domain.NodeID{x, y}, got.Offenders)
	})

	t.Run("self loop is fatal", func(t *testing.T) {
		g := graph.New()
		s, _ := g.AddNode(domain.KindSum, graph.NodeConfig{})
		_, err := g.Connect(domain.Out(s, 0), domain.In(s, 1))
		require.NoError(t, err)

		assert.Equal(t, domain.Fatal(domain.MessageLoops, s), v.Validate(g))
	})

	t.Run("loops win over division by zero", func(t *testing.T) {
		g := graph.New()
		d, _ := g.AddNode(domain.KindDivision, graph.NodeConfig{})
		_, err := g.Connect(domain.Out(d, 0), domain.In(graph.OutputID, 0))
		require.NoError(t, err)
		s, _ := g.AddNode(domain.KindSum, graph.NodeConfig{})
		_, err = g.Connect(domain.Out(s, 0), domain.In(s, 0))
		require.NoError(t, err)

		assert.Equal(t, domain.MessageLoops, v.Validate(g).Message)
	})
}

func TestDivisionByZero(t *testing.T) {
	v := New()

	t.Run("zero literal divisor feeding the sink", func(t *testing.T) {
		g := graph.New()
		d, _ := g.AddNode(domain.KindDivision, graph.NodeConfig{Defaults: []int64{5, 0}})
		_, err := g.Connect(domain.Out(d, 0), domain.In(graph.OutputID, 0))
		require.NoError(t, err)

		got := v.Validate(g)
		assert.Equal(t, domain.Warning(domain.MessageDivisionByZero, d), got)
		assert.Equal(t, domain.SeverityWarning, got.Severity())
	})

	t.Run("zero from a connected constant", func(t *testing.T) {
		g := graph.New()
		c, _ := g.AddNode(domain.KindConstant, graph.NodeConfig{})
		d, _ := g.AddNode(domain.KindDivision, graph.NodeConfig{Defaults: []int64{5, 1}})
		_, _ = g.Connect(domain.Out(c, 0), domain.In(d, 1))
		_, _ = g.Connect(domain.Out(d, 0), domain.In(graph.OutputID, 0))

		// No pass has run: the constant's output is still absent.
		assert.True(t, v.Validate(g).IsValid)

		out, _ := g.Port(domain.Out(c, 0))
		out.Value = domain.Of(0)
		assert.True(t, v.Validate(g).IsWarningOnly)
	})

	t.Run("division not feeding the sink is ignored", func(t *testing.T) {
		g := graph.New()
		_, _ = g.AddNode(domain.KindDivision, graph.NodeConfig{Defaults: []int64{5, 0}})

		assert.True(t, v.Validate(g).IsValid)
	})

	t.Run("absent divisor is not zero", func(t *testing.T) {
		g := graph.New()
		d, _ := g.AddNode(domain.KindDivision, graph.NodeConfig{NoDefault: true})
		_, _ = g.Connect(domain.Out(d, 0), domain.In(graph.OutputID, 0))

		assert.True(t, v.Validate(g).IsValid)
	})
}

type alwaysWarn struct{}

func (alwaysWarn) Name() string { return "always_warn" }

func (alwaysWarn) Check(*graph.Graph) (domain.Verdict, bool) {
	return domain.Warning("custom"), true
}

func TestNew_CustomRules(t *testing.T) {
	v := New(alwaysWarn{})
	assert.Equal(t, []string{"loops", "always_warn"}, v.Rules())
	assert.Equal(t, "custom", v.Validate(graph.New()).Message)

	assert.Equal(t, []string{"loops", "division_by_zero"}, New().Rules())
}
