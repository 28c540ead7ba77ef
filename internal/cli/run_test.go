package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc/internal/script"
	"github.com/aretw0/nodecalc/pkg/domain"
)

const sumScript = `
name: sum
steps:
  - add: constant
    as: five
    literal: 5
  - add: constant
    as: three
    literal: 3
  - add: sum
    as: total
  - connect: five -> total.a
  - connect: three -> total.b
  - connect: total -> output
`

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestEval(t *testing.T) {
	ctx := context.Background()
	path := writeScript(t, t.TempDir(), sumScript)

	t.Run("Display line", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Eval(ctx, Options{}, path, &out))
		assert.Equal(t, "= 8\n", out.String())
	})

	t.Run("JSON snapshot", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Eval(ctx, Options{JSON: true}, path, &out))

		var snap domain.Snapshot
		require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
		assert.Equal(t, "8", snap.Display.Text)
		assert.Equal(t, uint64(6), snap.Revision)
		assert.Len(t, snap.Nodes, 4)
	})
}

func TestEval_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing file", "", "failed to read script"},
		{"bad yaml", "steps: [", "graph.yaml"},
		{"failed expectation", sumScript + "  - expect: {display: \"9\"}\n", "step 7 (expect)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "missing.yaml")
			if tt.body != "" {
				path = writeScript(t, dir, tt.body)
			}
			err := Eval(ctx, Options{}, path, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	path := writeScript(t, dir, sumScript+"  - expect: {display: \"9\"}\n")
	err := Eval(ctx, Options{}, path, &bytes.Buffer{})
	assert.ErrorIs(t, err, script.ErrExpectation)
}

func TestGraph(t *testing.T) {
	path := writeScript(t, t.TempDir(), sumScript)

	var out bytes.Buffer
	require.NoError(t, Graph(context.Background(), Options{}, path, &out))
	assert.True(t, strings.HasPrefix(out.String(), "graph LR"))
	assert.Contains(t, out.String(), "sum_3 -->|value| output")
}

func TestRunSession_Headless(t *testing.T) {
	in := strings.NewReader("add constant as c literal=2\nconnect c output\nexit\n")
	var out bytes.Buffer

	require.NoError(t, RunSession(context.Background(), Options{Headless: true}, in, &out))
	assert.Equal(t, "added constant-1\n= 0\nconnected conn-1\n= 2\nBye!\n", out.String())
}

func TestRunSession_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, RunSession(ctx, Options{Headless: true}, strings.NewReader("show\n"), &bytes.Buffer{}))
}
