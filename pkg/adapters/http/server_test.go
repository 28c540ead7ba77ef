package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/internal/dto"
	nchttp "github.com/aretw0/nodecalc/pkg/adapters/http"
	"github.com/aretw0/nodecalc/pkg/domain"
)

type fixture struct {
	srv    *nchttp.Server
	engine *nodecalc.Serial
	http   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	engine := nodecalc.NewSerial(nodecalc.MustNew(nodecalc.WithMetrics(reg)))
	srv := nchttp.NewServer(engine, nchttp.WithGatherer(reg))
	require.NoError(t, engine.Subscribe(context.Background(), srv))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = engine.Close()
	})
	return &fixture{srv: srv, engine: engine, http: ts}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.http.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out.Bytes()
}

func TestServer_SumScenario(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, "POST", "/nodes", map[string]any{"kind": "constant", "literal": 5})
	require.Equal(t, http.StatusCreated, status, string(body))
	var five dto.AddNodeResponse
	require.NoError(t, json.Unmarshal(body, &five))
	assert.Equal(t, domain.NodeID("constant-1"), five.ID)

	status, body = f.do(t, "POST", "/nodes", map[string]any{"kind": "sum", "defaults": []int{0, 3}})
	require.Equal(t, http.StatusCreated, status, string(body))
	var sum dto.AddNodeResponse
	require.NoError(t, json.Unmarshal(body, &sum))

	status, body = f.do(t, "POST", "/connections", dto.ConnectRequest{From: "constant-1:out:0", To: "sum-2:in:0"})
	require.Equal(t, http.StatusCreated, status, string(body))
	status, body = f.do(t, "POST", "/connections", dto.ConnectRequest{From: "sum-2:out:0", To: "output:in:0"})
	require.Equal(t, http.StatusCreated, status, string(body))

	var conn dto.ConnectResponse
	require.NoError(t, json.Unmarshal(body, &conn))
	assert.Equal(t, domain.ConnectionID("conn-2"), conn.ID)
	assert.Equal(t, "8", conn.Snapshot.Display.Text)

	status, body = f.do(t, "PUT", "/ports/sum-2:in:1/literal", map[string]any{"value": 10})
	require.Equal(t, http.StatusOK, status, string(body))
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, "15", snap.Display.Text)

	status, body = f.do(t, "PUT", "/nodes/constant-1/literal", map[string]any{"value": nil})
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, domain.DisplayValue, snap.Display.State)
	assert.Equal(t, "", snap.Display.Text, "absent operand yields an empty display")

	status, body = f.do(t, "GET", "/graph", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Len(t, snap.Nodes, 3)
	assert.Equal(t, uint64(6), snap.Revision)
}

func TestServer_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"unknown kind", "POST", "/nodes", map[string]any{"kind": "modulo"}, http.StatusBadRequest, ""},
		{"unknown field", "POST", "/nodes", map[string]any{"kind": "sum", "colour": "red"}, http.StatusBadRequest, ""},
		{"fractional literal", "POST", "/nodes", map[string]any{"kind": "constant", "literal": 2.5}, http.StatusBadRequest, ""},
		{"literal beyond int64", "POST", "/nodes", map[string]any{"kind": "constant", "literal": 1e30}, http.StatusBadRequest, ""},
		{"bad port", "POST", "/connections", dto.ConnectRequest{From: "x", To: "y"}, http.StatusBadRequest, ""},
		{"unknown port", "POST", "/connections", dto.ConnectRequest{From: "ghost:out:0", To: "output:in:0"}, http.StatusNotFound, "unknown port"},
		{"protected sink", "DELETE", "/nodes/output", nil, http.StatusUnprocessableEntity, "invalid operation"},
		{"unknown node", "DELETE", "/nodes/ghost", nil, http.StatusNotFound, "unknown node"},
		{"unknown connection", "DELETE", "/connections/conn-9", nil, http.StatusNotFound, "unknown connection"},
		{"literal on sum", "PUT", "/ports/output:out:0/literal", map[string]any{"value": 1}, http.StatusUnprocessableEntity, "invalid operation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status, string(body))
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Kind)
		})
	}

	snap, err := f.engine.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), snap.Revision, "rejected requests never run a pass")
}

func TestServer_PortOccupied(t *testing.T) {
	f := newFixture(t)
	f.do(t, "POST", "/nodes", map[string]any{"kind": "constant"})
	status, _ := f.do(t, "POST", "/connections", dto.ConnectRequest{From: "constant-1:out:0", To: "output:in:0"})
	require.Equal(t, http.StatusCreated, status)

	status, body := f.do(t, "POST", "/connections", dto.ConnectRequest{From: "constant-1:out:0", To: "output:in:0"})
	assert.Equal(t, http.StatusConflict, status, string(body))
}

func TestServer_InfoHealthMetrics(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	status, body = f.do(t, "GET", "/info", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), strings.TrimSpace(nodecalc.Version))

	f.do(t, "POST", "/recompute", nil)
	status, body = f.do(t, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `nodecalc_commands_total{command="recompute",result="ok"} 1`)
}

func TestServer_EventsStreamDiffs(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", f.http.URL+"/events?watch=display", nil)
	require.NoError(t, err)
	resp, err := f.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if line := lines.Text(); line != "" {
				return line
			}
		}
		return ""
	}
	require.Equal(t, "event: ping", next())
	require.Equal(t, "data: connected", next())

	// first pass moves the display from unset to "0"
	f.do(t, "POST", "/nodes", map[string]any{"kind": "constant", "literal": 4})
	// display unchanged, filtered out by watch=display
	f.do(t, "POST", "/nodes", map[string]any{"kind": "sum"})
	// display becomes "4"
	f.do(t, "POST", "/connections", dto.ConnectRequest{From: "constant-1:out:0", To: "output:in:0"})

	var diffs []domain.SnapshotDiff
	for len(diffs) < 2 {
		line := next()
		require.True(t, strings.HasPrefix(line, "data: "), "unexpected line %q", line)
		var d domain.SnapshotDiff
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &d))
		diffs = append(diffs, d)
	}

	require.NotNil(t, diffs[0].Display)
	assert.Equal(t, "0", diffs[0].Display.Text)
	assert.Equal(t, uint64(1), diffs[0].Revision)
	require.NotNil(t, diffs[1].Display)
	assert.Equal(t, "4", diffs[1].Display.Text)
	assert.Equal(t, uint64(3), diffs[1].Revision)
}
