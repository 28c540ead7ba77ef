package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/internal/dto"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// Server exposes an engine over JSON/HTTP. It is also a ports.Observer:
// subscribe it to the engine so /events can stream snapshot diffs.
type Server struct {
	Engine  ports.Engine
	Streams *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer

	mu   sync.Mutex
	last *domain.Snapshot
}

var _ ports.Observer = (*Server)(nil)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer mounts /metrics for the given registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a server over engine. The engine must be safe for
// concurrent use, e.g. a *nodecalc.Serial.
func NewServer(engine ports.Engine, opts ...Option) *Server {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)

	r.Post("/nodes", s.AddNode)
	r.Delete("/nodes/{id}", s.RemoveNode)
	r.Put("/nodes/{id}/literal", s.SetLiteral)
	r.Put("/ports/{port}/literal", s.SetInputLiteral)

	r.Post("/connections", s.Connect)
	r.Delete("/connections/{id}", s.Disconnect)

	r.Post("/recompute", s.Recompute)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "nodecalc-http",
		"version": strings.TrimSpace(nodecalc.Version),
	})
}

// GetGraph handles GET /graph and returns the current snapshot.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Snapshot(r.Context())
	if err != nil {
		s.fail(w, "snapshot", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// AddNode handles POST /nodes.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body dto.AddNodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	var id domain.NodeID
	s.apply(w, r, "add_node", http.StatusCreated, func(e ports.Engine) (err error) {
		id, err = e.AddNode(r.Context(), domain.NodeKind(body.Kind), body.Config())
		return err
	}, func(snap domain.Snapshot) any {
		return dto.AddNodeResponse{ID: id, Snapshot: snap}
	})
}

// RemoveNode handles DELETE /nodes/{id}.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	id := domain.NodeID(chi.URLParam(r, "id"))
	s.apply(w, r, "remove_node", http.StatusOK, func(e ports.Engine) error {
		return e.RemoveNode(r.Context(), id)
	}, nil)
}

// SetLiteral handles PUT /nodes/{id}/literal.
func (s *Server) SetLiteral(w http.ResponseWriter, r *http.Request) {
	var body dto.LiteralRequest
	if !s.decode(w, r, &body) {
		return
	}
	id := domain.NodeID(chi.URLParam(r, "id"))
	s.apply(w, r, "set_literal", http.StatusOK, func(e ports.Engine) error {
		return e.SetLiteral(r.Context(), id, body.Value)
	}, nil)
}

// SetInputLiteral handles PUT /ports/{port}/literal.
func (s *Server) SetInputLiteral(w http.ResponseWriter, r *http.Request) {
	port, err := domain.ParsePortID(chi.URLParam(r, "port"))
	if err != nil {
		s.badRequest(w, err)
		return
	}
	var body dto.LiteralRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.apply(w, r, "set_input_literal", http.StatusOK, func(e ports.Engine) error {
		return e.SetInputLiteral(r.Context(), port, body.Value)
	}, nil)
}

// Connect handles POST /connections.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var body dto.ConnectRequest
	if !s.decode(w, r, &body) {
		return
	}
	from, to, err := body.Ports()
	if err != nil {
		s.badRequest(w, err)
		return
	}
	var id domain.ConnectionID
	s.apply(w, r, "connect", http.StatusCreated, func(e ports.Engine) (err error) {
		id, err = e.Connect(r.Context(), from, to)
		return err
	}, func(snap domain.Snapshot) any {
		return dto.ConnectResponse{ID: id, Snapshot: snap}
	})
}

// Disconnect handles DELETE /connections/{id}.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	id := domain.ConnectionID(chi.URLParam(r, "id"))
	s.apply(w, r, "disconnect", http.StatusOK, func(e ports.Engine) error {
		return e.Disconnect(r.Context(), id)
	}, nil)
}

// Recompute handles POST /recompute.
func (s *Server) Recompute(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Recompute(r.Context())
	if err != nil {
		s.fail(w, "recompute", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// Observe computes the diff against the previous observation and broadcasts
// it to /events subscribers.
func (s *Server) Observe(_ context.Context, obs domain.Observation) error {
	s.mu.Lock()
	snap := obs.Snapshot
	diff := domain.Diff(s.last, &snap)
	s.last = &snap
	s.mu.Unlock()

	if diff == nil {
		return nil
	}
	data, err := json.Marshal(diff)
	if err != nil {
		return err
	}
	s.logger.Debug("broadcasting diff", "command", obs.Command, "revision", diff.Revision)
	s.Streams.Broadcast(string(data))
	return nil
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		s.badRequest(w, err)
		return false
	}
	if err := dto.Validate(out); err != nil {
		s.badRequest(w, err)
		return false
	}
	return true
}

// apply runs cmd and writes the snapshot it produced, wrapped by build when given.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, op string, status int, cmd func(ports.Engine) error, build func(domain.Snapshot) any) {
	snap, err := s.Engine.Apply(r.Context(), cmd)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	var body any = snap
	if build != nil {
		body = build(snap)
	}
	s.writeJSON(w, status, body)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.logger.Warn("invalid request", "err", err)
	s.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	resp := dto.ErrorResponse{Error: err.Error()}
	var se *domain.StructuralError
	if errors.As(err, &se) {
		resp.Kind = se.Kind.Error()
		resp.Subject = se.Subject
	}
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("command failed", "op", op, "err", err)
	} else {
		s.logger.Debug("command rejected", "op", op, "err", err)
	}
	s.writeJSON(w, status, resp)
}

// StatusOf maps engine errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownNode),
		errors.Is(err, domain.ErrUnknownPort),
		errors.Is(err, domain.ErrUnknownConnection):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPortOccupied):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, nodecalc.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
