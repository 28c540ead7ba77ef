package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/nodecalc"
	httpadapter "github.com/aretw0/nodecalc/pkg/adapters/http"
	mcpadapter "github.com/aretw0/nodecalc/pkg/adapters/mcp"
	redisadapter "github.com/aretw0/nodecalc/pkg/adapters/redis"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// LeaseTTL is how long a crashed server keeps the Redis writer lease.
const LeaseTTL = 15 * time.Second

// owner identifies this process in the writer lease.
func owner() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s/%d/%s", host, os.Getpid(), uuid.NewString())
}

// openStore connects the Redis observation store and takes the writer lease
// for the graph's prefix. The returned func releases both.
func openStore(ctx context.Context, opts Options, logger *slog.Logger) (*redisadapter.Store, func(), error) {
	prefix := redisadapter.DefaultPrefix
	if opts.Name != "" {
		prefix += opts.Name + ":"
	}
	store := redisadapter.New(opts.RedisAddr, "", 0,
		redisadapter.WithPrefix(prefix),
		redisadapter.WithLogger(logger),
	)

	release, err := store.HoldWriter(ctx, owner(), LeaseTTL)
	if err != nil {
		store.Close()
		if errors.Is(err, redisadapter.ErrLeaseHeld) {
			holder, _ := store.Writer(ctx)
			return nil, nil, fmt.Errorf("graph %q is already served by %s: %w", prefix, holder, err)
		}
		return nil, nil, err
	}
	logger.Info("Publishing observations to Redis", "address", opts.RedisAddr, "prefix", prefix)

	return store, func() {
		if err := release(context.Background()); err != nil {
			logger.Warn("Failed to release writer lease", "error", err)
		}
		store.Close()
	}, nil
}

// newSerialEngine builds the shared engine behind the network frontends.
func newSerialEngine(ctx context.Context, opts Options, logger *slog.Logger, reg prometheus.Registerer) (*nodecalc.Serial, func(), error) {
	var observers []ports.Observer
	cleanup := func() {}

	if opts.RedisAddr != "" {
		store, closeStore, err := openStore(ctx, opts, logger)
		if err != nil {
			return nil, nil, err
		}
		observers = append(observers, store)
		cleanup = closeStore
	}

	engine, err := createEngine(opts, logger, reg, observers...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	serial := nodecalc.NewSerial(engine)
	return serial, func() {
		serial.Close()
		cleanup()
	}, nil
}

// Serve exposes an engine over HTTP until ctx is cancelled.
func Serve(ctx context.Context, opts Options, w io.Writer) error {
	logger := NewLogger(opts)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	serial, cleanup, err := newSerialEngine(ctx, opts, logger, reg)
	if err != nil {
		return err
	}
	defer cleanup()

	api := httpadapter.NewServer(serial,
		httpadapter.WithLogger(logger),
		httpadapter.WithGatherer(reg),
	)
	if err := serial.Subscribe(ctx, api); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "Serving nodecalc on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Event streams never go idle, so a timeout falls back to Close.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(w, "Server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on the configured transport.
func ServeMCP(ctx context.Context, opts Options) error {
	logger := NewLogger(opts)

	serial, cleanup, err := newSerialEngine(ctx, opts, logger, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := mcpadapter.NewServer(serial, logger)
	switch opts.Transport {
	case "", "stdio":
		logger.Info("Starting MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting MCP Server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
