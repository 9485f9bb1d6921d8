// Package server exposes the relay over HTTP: the streaming turn endpoint,
// session deletion, instruction updates, and a metrics snapshot.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/driver"
	"github.com/tailored-agentic-units/relay/observability"
	"github.com/tailored-agentic-units/relay/provider"
	"github.com/tailored-agentic-units/relay/wire"
)

// EventRequest is emitted once per handled HTTP request.
const EventRequest observability.EventType = "server.request"

// instructionsTrigger marks an instructions-update request inside a message;
// everything after the phrase becomes the appended instruction text.
const instructionsTrigger = "Update Instructions"

// Option configures a Server after construction.
type Option func(*Server)

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithMetrics shares a Metrics instance with the server, typically the same
// one registered as a driver observer so turn and frame counters line up.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server is the HTTP surface over one turn driver and its provider.
type Server struct {
	cfg      Config
	provider provider.Provider
	driver   *driver.Driver
	metrics  *Metrics
	observer observability.Observer
}

// New creates a Server routing turns through d and session management
// through p.
func New(cfg Config, p provider.Provider, d *driver.Driver, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		provider: p,
		driver:   d,
		metrics:  NewMetrics(),
		observer: observability.NoOpObserver{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Metrics returns the server's counter set.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/stream", s.observe(s.handleStream))
	mux.HandleFunc("POST /api/thread", s.observe(s.handleThread))
	mux.HandleFunc("POST /api/instructions", s.observe(s.handleInstructions))
	mux.HandleFunc("GET /api/metrics", s.observe(s.handleMetrics))
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// WriteTimeout stays zero so open turn streams are never cut mid-generation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Duration(s.cfg.ReadHeaderTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) observe(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.observer.OnEvent(r.Context(), observability.Event{
			Type:      EventRequest,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "server",
			Data: map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			},
		})
		next(w, r)
	}
}

// handleStream runs one turn and streams its frames back, one frame per
// chunk. Failures before the first frame map to HTTP status codes; failures
// after it end the stream silently without a terminal marker.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "missing message", http.StatusBadRequest)
		return
	}

	enc := wire.NewEncoder(w)
	wrote := false
	emit := func(frame protocol.Frame) error {
		if !wrote {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			wrote = true
		}
		if err := enc.Encode(frame); err != nil {
			return err
		}
		s.metrics.RecordFrame(1)
		return nil
	}

	err := s.driver.RunTurn(r.Context(), req.Message, req.SessionID, emit)
	if err != nil && !wrote {
		if errors.Is(err, driver.ErrSessionUnavailable) {
			http.Error(w, "session unavailable", http.StatusBadRequest)
			return
		}
		http.Error(w, "turn failed", http.StatusInternalServerError)
	}
}

// handleThread deletes a session.
func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)
		return
	}

	ack, err := s.provider.DeleteSession(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, "failed to delete session", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, ack)
}

// handleInstructions appends new standing instructions when the message
// carries the trigger phrase; otherwise it acknowledges without changes.
func (s *Server) handleInstructions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		http.Error(w, "missing message", http.StatusBadRequest)
		return
	}

	_, remainder, found := strings.Cut(req.Message, instructionsTrigger)
	if !found {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("no instructions update requested\n"))
		return
	}

	current, err := s.provider.Instructions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "failed to load instructions",
		})
		return
	}

	updated := strings.TrimSpace(current + "\n" + strings.TrimSpace(remainder))
	stored, err := s.provider.UpdateInstructions(r.Context(), updated)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "failed to update instructions",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":               "success",
		"updated_instructions": stored,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
