// Package server exposes the document library and the lazy page
// browsing core over HTTP. All browsing state is session-scoped and
// rebuilt from scratch per server run; nothing is persisted.
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

	"github.com/klauspost/compress/gzhttp"

	"github.com/jackzampolin/lectern/internal/config"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/manifest"
	"github.com/jackzampolin/lectern/internal/store"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// Server is the main lectern HTTP server.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	home       *home.Dir
	library    *manifest.Library
	sessions   *sessionSet
	logger     *slog.Logger

	// services holds core services for context enrichment
	services *svcctx.Services

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Home is the lectern home directory holding the document library.
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support.
	ConfigManager *config.Manager
	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// New creates a new Server with the given configuration. The document
// library is loaded eagerly so a broken documents directory fails at
// startup instead of on first request.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("server requires a home directory")
	}

	library, err := manifest.LoadLibrary(cfg.Home, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load document library: %w", err)
	}

	var appCfg config.Config
	if cfg.ConfigManager != nil {
		appCfg = *cfg.ConfigManager.Get()
	} else {
		appCfg = config.DefaultConfig()
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		library:   library,
		logger:    cfg.Logger,
		sessions:  newSessionSet(cfg.Home, appCfg.Browsing, appCfg.Origin, cfg.Logger),
	}

	s.services = &svcctx.Services{
		ConfigManager: cfg.ConfigManager,
		Home:          cfg.Home,
		Library:       library,
		Logger:        cfg.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      gzhttp.GzipHandler(s.withServices(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start starts the server. It blocks until the context is cancelled
// or an error occurs. If an origin is configured, its reachability is
// probed first so a misconfigured origin fails fast.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if origin := s.originConfig(); origin.URL != "" {
		s.logger.Info("probing origin", "url", origin.URL)
		if err := store.Probe(ctx, origin.URL, origin.ProbeAttempts); err != nil {
			s.setNotRunning()
			return fmt.Errorf("origin unreachable: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr, "documents", s.library.Len())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown: the HTTP server drains, then
// every browse session releases its observers, debounce timers, and
// document handles.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.sessions.closeAll()

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// originConfig returns the current origin settings, honoring hot
// reload when a config manager is present.
func (s *Server) originConfig() config.OriginCfg {
	if s.configMgr != nil {
		return s.configMgr.Get().Origin
	}
	return config.DefaultConfig().Origin
}

// withServices attaches core services to every request context.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), s.services)))
	})
}
