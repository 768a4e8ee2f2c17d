package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/getmockd/hydra/internal/id"
	"github.com/getmockd/hydra/pkg/admin"
	"github.com/getmockd/hydra/pkg/config"
	"github.com/getmockd/hydra/pkg/hydra"
	"github.com/getmockd/hydra/pkg/loader"
	"github.com/getmockd/hydra/pkg/logging"
	"github.com/getmockd/hydra/pkg/metrics"
)

// RequestIDHeader carries the request id. An incoming value is kept.
const RequestIDHeader = "X-Request-Id"

// Server hosts one hydra.
type Server struct {
	cfg     *config.ServerConfiguration
	hydra   *hydra.Hydra
	loader  *loader.Loader
	metrics *metrics.Collector
	log     *slog.Logger
	version string

	loaderOpts []loader.Option

	// dispatchMu serialises every dispatch and plugin registration. Heads
	// release it around upstream I/O through hydra.Unlocked.
	dispatchMu sync.Mutex

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	running    bool
	startTime  time.Time
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithLoader passes options to the plugin loader, typically
// loader.WithFactory for compiled-in plugins.
func WithLoader(opts ...loader.Option) ServerOption {
	return func(s *Server) {
		s.loaderOpts = append(s.loaderOpts, opts...)
	}
}

// WithMetrics sets the metrics collector. Without it the server creates one
// with its own registry.
func WithMetrics(m *metrics.Collector) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithVersion sets the version reported by the admin API.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a Server for cfg. Plugins are not loaded until
// LoadPlugins is called.
func NewServer(cfg *config.ServerConfiguration, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = config.DefaultServerConfiguration()
	}

	s := &Server{
		cfg: cfg,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}

	baseDir, _ := os.Getwd()
	s.hydra = hydra.New(
		hydra.WithLogger(s.log),
		hydra.WithObserver(s.metrics),
		hydra.WithAdminHeads(admin.Heads(
			admin.WithMetrics(s.metrics.Handler()),
			admin.WithLogger(s.log),
			admin.WithVersion(s.version),
			admin.WithBaseDir(baseDir),
		)),
	)

	loaderOpts := append([]loader.Option{
		loader.WithRootDir(cfg.RootDir),
		loader.WithLogger(s.log),
	}, s.loaderOpts...)
	s.loader = loader.New(s.hydra, loaderOpts...)
	for i := len(cfg.PluginLoadPath) - 1; i >= 0; i-- {
		s.loader.AddLoadPath(cfg.PluginLoadPath[i])
	}
	return s
}

// Hydra returns the hosted hydra.
func (s *Server) Hydra() *hydra.Hydra { return s.hydra }

// Loader returns the plugin loader.
func (s *Server) Loader() *loader.Loader { return s.loader }

// Metrics returns the metrics collector.
func (s *Server) Metrics() *metrics.Collector { return s.metrics }

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfiguration { return s.cfg }

// LoadPlugins loads and registers every configured plugin, in order. It
// stops at the first failure.
func (s *Server) LoadPlugins() error {
	for _, ref := range s.cfg.Plugins {
		if err := s.LoadPlugin(ref.Name, ref.Config); err != nil {
			return err
		}
	}
	return nil
}

// LoadPlugin loads one plugin and registers it.
func (s *Server) LoadPlugin(name string, opts map[string]any) error {
	p, err := s.loader.Load(name, opts)
	if err != nil {
		return fmt.Errorf("loading plugin %q: %w", name, err)
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	if err := s.hydra.Register(p); err != nil {
		return fmt.Errorf("registering plugin %q: %w", name, err)
	}
	s.log.Info("plugin loaded", "plugin", name, "heads", len(p.Heads), "tests", len(p.Tests))
	return nil
}

// ServeHTTP buffers the request, dispatches it and writes the response.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	reqID := r.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = id.UUID()
	}
	w.Header().Set(RequestIDHeader, reqID)
	log := logging.WithRequestID(s.log, reqID)

	status := s.serve(w, r, log)

	s.metrics.ObserveRequest(r.Method, status, time.Since(start))
	log.Debug("request served",
		"method", r.Method,
		"url", r.RequestURI,
		"status", status,
		"duration", time.Since(start),
	)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, log *slog.Logger) int {
	req, err := hydra.NewRequest(r)
	if err != nil {
		if errors.Is(err, hydra.ErrBodyTooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return http.StatusRequestEntityTooLarge
		}
		log.Warn("reading request failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	}

	req = req.WithContext(hydra.WithDispatchLock(req.Context(), &s.dispatchMu))
	res := hydra.NewResponse()
	s.dispatchMu.Lock()
	err = s.hydra.Dispatch(req, res)
	s.dispatchMu.Unlock()

	if err != nil {
		log.Error("request failed", "method", req.Method, "url", req.URL, "error", err)
		http.Error(w, "500 - Internal Server Error\n"+err.Error(), http.StatusInternalServerError)
		return http.StatusInternalServerError
	}

	if err := res.Deliver(w); err != nil {
		log.Debug("writing response failed", "error", err)
	}
	return res.StatusCode
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeout) * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}(s.httpServer)

	s.running = true
	s.startTime = time.Now()
	s.log.Info("hydra started", "addr", ln.Addr().String(), "plugins", s.cfg.PluginNames())
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	s.log.Info("hydra stopped")
	return nil
}

// Addr returns the address the server listens on, empty when stopped.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the time since Start, zero when stopped.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startTime)
}
