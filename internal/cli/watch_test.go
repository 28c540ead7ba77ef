package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch(t *testing.T) {
	path := writeScript(t, t.TempDir(), sumScript)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- RunWatch(ctx, Options{}, path, &out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching")
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, strings.HasPrefix(out.String(), "= 8\n"))

	edited := strings.Replace(sumScript, "literal: 3", "literal: 30", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "= 35\n")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("steps: ["), 0644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "error: ")
	}, 5*time.Second, 20*time.Millisecond, "broken scripts are reported and watching continues")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
