package tui_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/internal/presentation/tui"
	"github.com/aretw0/nodecalc/pkg/dsl"
)

func TestReport(t *testing.T) {
	ctx := context.Background()
	eng := nodecalc.MustNew()

	b := dsl.New()
	b.Division("div").Defaults(6, 0)
	b.Output().From("div")
	_, err := b.Build(ctx, eng)
	require.NoError(t, err)
	snap, _ := eng.Snapshot(ctx)

	got := tui.Report(snap)
	assert.Contains(t, got, "## Output: Error")
	assert.Contains(t, got, "verdict **warning**: Network contains division by zero! (`division-1`)")
	assert.Contains(t, got, "| `division-1` | division | dividend=6 divisor=0 | ∅ |")
	assert.Contains(t, got, "| `output` | output | value=∅ |  |")
	assert.Contains(t, got, "- `conn-1`: `division-1:out:0` → `output:in:0`")
}

func TestReport_Unset(t *testing.T) {
	snap, _ := nodecalc.MustNew().Snapshot(context.Background())
	got := tui.Report(snap)
	assert.Contains(t, got, "## Output: _unset_")
	assert.NotContains(t, got, "Connections")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_| |_|")
}

func TestNewRenderer(t *testing.T) {
	render := tui.NewRenderer()
	out, err := render("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}
