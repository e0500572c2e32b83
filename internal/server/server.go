package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/docparse/internal/api"
	"github.com/jackzampolin/docparse/internal/config"
	"github.com/jackzampolin/docparse/internal/home"
	"github.com/jackzampolin/docparse/internal/ocrcall"
	"github.com/jackzampolin/docparse/internal/server/endpoints"
	"github.com/jackzampolin/docparse/internal/store"
	"github.com/jackzampolin/docparse/internal/svcctx"
	"github.com/jackzampolin/docparse/internal/workflow"
)

// Server is the docparse HTTP server.
// It loads the saved record when it starts and closes the store when it stops.
type Server struct {
	httpServer *http.Server
	workflow   *workflow.Workflow
	store      store.Store
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu          sync.RWMutex
	running     bool
	initialized bool
	listenAddr  string
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Workflow is the document workflow served by the API (required)
	Workflow *workflow.Workflow
	// Store is the record store backing the workflow (required)
	Store store.Store
	// OCRCalls is the log of OCR submissions served at /api/ocrcalls
	OCRCalls *ocrcall.Log
	// MaxUploadBytes bounds each uploaded image (0 = endpoints.DefaultMaxUploadBytes)
	MaxUploadBytes int64
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the docparse home directory
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Workflow == nil {
		return nil, errors.New("server: workflow is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	s := &Server{
		workflow: cfg.Workflow,
		store:    cfg.Store,
		logger:   cfg.Logger,
		services: &svcctx.Services{
			Workflow:  cfg.Workflow,
			Store:     cfg.Store,
			OCRCalls:  cfg.OCRCalls,
			ConfigMgr: cfg.ConfigManager,
			Logger:    cfg.Logger,
			Home:      cfg.Home,
		},
	}

	reg, err := api.NewRegistry(endpoints.All(endpoints.Config{
		MaxUploadBytes: cfg.MaxUploadBytes,
		SwaggerHost:    addr,
	})...)
	if err != nil {
		return nil, err
	}
	s.endpointRegistry = reg

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.withServices(s.logRequests(mux)),
		ReadTimeout: 30 * time.Second,
		// Parse waits on the OCR service, so writes get more room than reads.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve loads the saved record and serves HTTP on ln until ctx is cancelled.
// A store read failure at startup is logged; the workflow starts empty.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("server already running")
	}
	s.running = true
	s.listenAddr = ln.Addr().String()
	s.mu.Unlock()

	if err := s.workflow.Init(ctx); err != nil {
		s.logger.Error("failed to load saved record; starting empty", "error", err)
	}
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.listenAddr)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown stops the HTTP server and closes the store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("store close error", "error", err)
	}

	s.mu.Lock()
	s.running = false
	s.initialized = false
	s.mu.Unlock()
	s.logger.Info("server stopped")
	return nil
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAddr returns the bound address once serving, or "" before.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenAddr
}

// Handler returns the server's root handler, for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Routes returns the registered "METHOD path" patterns.
func (s *Server) Routes() []string {
	return s.endpointRegistry.Routes()
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), s.services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs API requests at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// requireInit is middleware that ensures the saved record has been loaded.
// Returns 503 Service Unavailable until then.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		ready := s.initialized
		s.mu.RUnlock()
		if !ready {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
