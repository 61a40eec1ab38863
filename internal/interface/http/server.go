// Package http exposes a small operational HTTP surface: liveness,
// readiness and a status summary. The bot itself talks to Telegram by
// long polling, so this server carries no business endpoints.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Config contains server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CheckTimeout time.Duration
	Logger       *slog.Logger
}

// DefaultConfig returns the default server settings.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		CheckTimeout: 5 * time.Second,
	}
}

// Server serves the health endpoints.
type Server struct {
	cfg    Config
	logger *slog.Logger
	srv    *http.Server

	mu        sync.RWMutex
	checks    map[string]CheckFunc
	startedAt time.Time
}

// NewServer creates a server. Dependency checks are added with AddCheck
// before Start.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 5 * time.Second
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		checks: make(map[string]CheckFunc),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// AddCheck registers a named dependency probe.
func (s *Server) AddCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Start serves in a goroutine and returns a channel that carries the
// terminal listen error, if any.
func (s *Server) Start() <-chan error {
	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("health server listening", slog.String("addr", s.cfg.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("health server: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// HANDLERS
// ─────────────────────────────────────────────────────────────────────────────

type healthResponse struct {
	Healthy   bool              `json:"healthy"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := s.runChecks(r.Context())
	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(map[bool]string{true: "ready", false: "not ready"}[resp.Healthy]))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := s.runChecks(r.Context())
	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) runChecks(ctx context.Context) healthResponse {
	s.mu.RLock()
	checks := make(map[string]CheckFunc, len(s.checks))
	for name, c := range s.checks {
		checks[name] = c
	}
	startedAt := s.startedAt
	s.mu.RUnlock()

	resp := healthResponse{
		Healthy:   true,
		Uptime:    time.Since(startedAt).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string, len(checks)),
	}

	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, s.cfg.CheckTimeout)
		err := check(checkCtx)
		cancel()
		if err != nil {
			resp.Healthy = false
			resp.Checks[name] = err.Error()
		} else {
			resp.Checks[name] = "ok"
		}
	}
	return resp
}
