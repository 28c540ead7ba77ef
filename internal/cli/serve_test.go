package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/nodecalc/internal/logging"
	redisadapter "github.com/aretw0/nodecalc/pkg/adapters/redis"
	"github.com/aretw0/nodecalc/pkg/domain"
)

func TestNewSerialEngine_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	opts := Options{RedisAddr: mr.Addr(), Name: "calc"}

	serial, cleanup, err := newSerialEngine(ctx, opts, logging.NewNop(), nil)
	require.NoError(t, err)

	_, err = serial.AddNode(ctx, domain.KindConstant, map[string]any{"literal": 4})
	require.NoError(t, err)
	assert.True(t, mr.Exists("nodecalc:calc:latest"))
	assert.True(t, mr.Exists("nodecalc:calc:writer"))

	t.Run("Second writer is refused", func(t *testing.T) {
		_, _, err := newSerialEngine(ctx, opts, logging.NewNop(), nil)
		require.ErrorIs(t, err, redisadapter.ErrLeaseHeld)
		assert.Contains(t, err.Error(), "already served by")
	})

	cleanup()
	assert.False(t, mr.Exists("nodecalc:calc:writer"))

	again, cleanupAgain, err := newSerialEngine(ctx, opts, logging.NewNop(), nil)
	require.NoError(t, err)
	defer cleanupAgain()
	_, err = again.Snapshot(ctx)
	assert.NoError(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, Options{Port: 0}, &out) }()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Serving nodecalc on :0")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "Server stopped gracefully")
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	err := ServeMCP(context.Background(), Options{Transport: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown transport")
}
