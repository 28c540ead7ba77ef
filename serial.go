package nodecalc

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// ErrClosed is returned by a Serial after Close.
var ErrClosed = errors.New("nodecalc: engine closed")

// Serial serializes commands from many goroutines onto one engine.
// A single goroutine owns the engine; callers block until their command has
// completed. Once a command is accepted it runs to completion even if the
// caller's context is cancelled meanwhile.
type Serial struct {
	engine  *Engine
	reqs    chan func()
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

var _ ports.Engine = (*Serial)(nil)

// NewSerial starts the owner goroutine for e. The caller must not use e
// directly afterwards.
func NewSerial(e *Engine) *Serial {
	s := &Serial{
		engine:  e,
		reqs:    make(chan func()),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Serial) loop() {
	defer close(s.stopped)
	for {
		select {
		case fn := <-s.reqs:
			fn()
		case <-s.quit:
			return
		}
	}
}

// Close stops accepting commands and waits for the running one to finish.
func (s *Serial) Close() error {
	s.once.Do(func() { close(s.quit) })
	<-s.stopped
	return nil
}

// Do runs fn on the owner goroutine with exclusive access to the engine.
func (s *Serial) Do(ctx context.Context, fn func(*Engine) error) error {
	var err error
	if qerr := s.submit(ctx, func() { err = fn(s.engine) }); qerr != nil {
		return qerr
	}
	return err
}

func (s *Serial) submit(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	run := func() {
		defer close(done)
		fn()
	}

	select {
	case s.reqs <- run:
	case <-s.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Subscribe adds an observer. Observers run on the owner goroutine.
func (s *Serial) Subscribe(ctx context.Context, o ports.Observer) error {
	return s.submit(ctx, func() { s.engine.Subscribe(o) })
}

func (s *Serial) AddNode(ctx context.Context, kind domain.NodeKind, cfg map[string]any) (domain.NodeID, error) {
	var id domain.NodeID
	err := s.Do(ctx, func(e *Engine) (err error) {
		id, err = e.AddNode(ctx, kind, cfg)
		return err
	})
	return id, err
}

func (s *Serial) RemoveNode(ctx context.Context, id domain.NodeID) error {
	return s.Do(ctx, func(e *Engine) error { return e.RemoveNode(ctx, id) })
}

func (s *Serial) Connect(ctx context.Context, from, to domain.PortID) (domain.ConnectionID, error) {
	var id domain.ConnectionID
	err := s.Do(ctx, func(e *Engine) (err error) {
		id, err = e.Connect(ctx, from, to)
		return err
	})
	return id, err
}

func (s *Serial) Disconnect(ctx context.Context, id domain.ConnectionID) error {
	return s.Do(ctx, func(e *Engine) error { return e.Disconnect(ctx, id) })
}

func (s *Serial) SetLiteral(ctx context.Context, id domain.NodeID, v domain.Value) error {
	return s.Do(ctx, func(e *Engine) error { return e.SetLiteral(ctx, id, v) })
}

func (s *Serial) SetInputLiteral(ctx context.Context, id domain.PortID, v domain.Value) error {
	return s.Do(ctx, func(e *Engine) error { return e.SetInputLiteral(ctx, id, v) })
}

func (s *Serial) Recompute(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.Do(ctx, func(e *Engine) (err error) {
		snap, err = e.Recompute(ctx)
		return err
	})
	return snap, err
}

func (s *Serial) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.Do(ctx, func(e *Engine) (err error) {
		snap, err = e.Snapshot(ctx)
		return err
	})
	return snap, err
}

// Apply runs fn on the owner goroutine and returns the snapshot it produced.
// fn receives the owned engine, so commands issued through it do not queue.
func (s *Serial) Apply(ctx context.Context, fn func(ports.Engine) error) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.Do(ctx, func(e *Engine) (err error) {
		snap, err = e.Apply(ctx, fn)
		return err
	})
	return snap, err
}
