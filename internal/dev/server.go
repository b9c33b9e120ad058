package dev

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nextroute-dev/nextroute/internal/config"
	"github.com/nextroute-dev/nextroute/internal/packager"
	"github.com/nextroute-dev/nextroute/internal/telemetry"
	"github.com/nextroute-dev/nextroute/pkg/compile"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Metrics records compile observations. Nil disables.
	Metrics *telemetry.Metrics

	// OnCompile is called after every recompile with the outcome.
	OnCompile func(err error)

	// OnReload is called when clients are notified.
	OnReload func(clients int)
}

// Server is the development server: it keeps the routing configuration
// compiled against the current build output and serves it over HTTP.
type Server struct {
	config  *config.Config
	options ServerOptions
	watcher *Watcher
	reload  *ReloadServer

	mu         sync.RWMutex
	current    []byte
	compileErr error

	httpServer *http.Server
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config

	var watchPaths []string
	for _, p := range cfg.Dev.Watch {
		watchPaths = append(watchPaths, filepath.Join(cfg.Dir(), p))
	}
	if len(watchPaths) == 0 {
		watchPaths = []string{cfg.BuildDir()}
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    watchPaths,
		Debounce: 250 * time.Millisecond,
	})

	var reload *ReloadServer
	if cfg.Dev.HotReload {
		reload = NewReloadServer()
	}

	return &Server{
		config:  cfg,
		options: options,
		watcher: watcher,
		reload:  reload,
	}
}

// Start runs the server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.recompile()

	s.watcher.OnChange(func(Change) {
		s.recompile()
		s.notify()
	})
	go s.watcher.Start(ctx)
	defer s.watcher.Stop()

	addr := fmt.Sprintf("%s:%d", s.config.Dev.Host, s.config.Dev.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.reload != nil {
			s.reload.Close()
		}
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/config.json", s.handleConfig)
	if s.reload != nil {
		r.Get("/events", s.reload.HandleWebSocket)
	}
	if s.config.Telemetry.Metrics {
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
	}

	return r
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	data, err := s.current, s.compileErr
	s.mu.RUnlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if data == nil {
		http.Error(w, "not compiled yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// recompile loads the build description and refreshes the served document.
func (s *Server) recompile() {
	data, err := s.compileOnce()

	s.mu.Lock()
	if err == nil {
		s.current = data
	}
	s.compileErr = err
	s.mu.Unlock()

	if s.options.OnCompile != nil {
		s.options.OnCompile(err)
	}
}

func (s *Server) compileOnce() ([]byte, error) {
	desc, err := packager.LoadDescription(s.config.BuildDir())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	table, err := compile.Compile(desc)
	if err != nil {
		return nil, err
	}
	s.options.Metrics.RecordCompile(time.Since(start), table)

	return table.MarshalIndent()
}

// notify pushes the recompile outcome to connected clients.
func (s *Server) notify() {
	if s.reload == nil {
		return
	}

	s.mu.RLock()
	err := s.compileErr
	s.mu.RUnlock()

	if err != nil {
		s.reload.NotifyError(err.Error())
	} else {
		s.reload.NotifyReload()
	}
	if s.options.OnReload != nil {
		s.options.OnReload(s.reload.ClientCount())
	}
}
