// Package server exposes the tool catalog and the dispatcher over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/harun/toolgate/internal/metrics"
	"github.com/harun/toolgate/pkg/catalog"
	"github.com/harun/toolgate/pkg/dispatch"
	"github.com/rs/zerolog"
)

// Server is the gateway HTTP server
type Server struct {
	options        Options
	server         *http.Server
	handler        http.Handler
	catalog        *catalog.Catalog
	dispatcher     *dispatch.Dispatcher
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	startTime      time.Time
	isShuttingDown bool
	shutdownMu     sync.RWMutex
	inFlightReqs   sync.WaitGroup
}

// NewServer creates a gateway server. m may be nil to disable metrics.
func NewServer(options Options, cat *catalog.Catalog, dispatcher *dispatch.Dispatcher, m *metrics.Metrics, logger zerolog.Logger) (*Server, error) {
	// Set defaults
	if options.Port == 0 {
		options.Port = 8000
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.ServiceName == "" {
		options.ServiceName = "Universal MCP Server"
	}
	if options.ShutdownTimeout == 0 {
		options.ShutdownTimeout = 30 * time.Second
	}
	if options.MaxBodyBytes == 0 {
		options.MaxBodyBytes = 1 << 20
	}

	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if m != nil && options.MetricsPath != "" {
		if err := ValidateMetricsPath(options.MetricsPath); err != nil {
			return nil, err
		}
	}

	s := &Server{
		options:    options,
		catalog:    cat,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
		startTime:  time.Now(),
	}
	s.handler = s.routes()

	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /{$}", s.handleInfo)
	s.handle(mux, "GET /health", s.handleHealth)
	s.handle(mux, "GET /tools", s.handleListTools)
	s.handle(mux, "GET /tools/schemas", s.handleSchemas)
	s.handle(mux, "POST /tools/{toolName}", s.handleCallTool)

	if s.metrics != nil && s.options.MetricsPath != "" {
		mux.Handle("GET "+s.options.MetricsPath, s.metrics.Handler())
	}

	return s.withRecovery(s.withRequestContext(mux))
}

// reservedPaths are served by the gateway itself
var reservedPaths = []string{"/", "/health", "/tools", "/tools/schemas"}

// ValidateMetricsPath rejects paths that are not a plain absolute path or
// that would collide with a gateway route
func ValidateMetricsPath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("metrics path must start with /")
	}
	if strings.ContainsAny(path, "{} \t") {
		return fmt.Errorf("metrics path must not contain wildcards or whitespace: %q", path)
	}
	for _, reserved := range reservedPaths {
		if path == reserved {
			return fmt.Errorf("metrics path %q is reserved by the gateway", path)
		}
	}
	if strings.HasPrefix(path, "/tools/") {
		return fmt.Errorf("metrics path %q collides with tool routes", path)
	}
	return nil
}

// handle registers h and counts its responses under the route pattern
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	route := pattern[strings.Index(pattern, " ")+1:]
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		if s.metrics != nil {
			s.metrics.ObserveHTTPRequest(route, rec.status)
		}
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.options.Host, s.options.Port)
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Int("tools", s.catalog.Len()).
		Msg("Starting tool gateway")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start gateway server: %w", err)
	}

	return nil
}

// Stop refuses new calls, waits for in-flight ones and shuts the listener down
func (s *Server) Stop(ctx context.Context) error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down tool gateway")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("All in-flight requests completed")
	case <-time.After(s.options.ShutdownTimeout):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	case <-ctx.Done():
		s.logger.Warn().Msg("Shutdown cancelled, forcing close")
	}

	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown gateway server: %w", err)
	}

	s.logger.Info().Msg("Tool gateway stopped")
	return nil
}

// beginRequest registers an in-flight call unless shutdown has started.
// The check and the Add share the lock Stop takes before it waits.
func (s *Server) beginRequest() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	if s.isShuttingDown {
		return false
	}
	s.inFlightReqs.Add(1)
	return true
}

func (s *Server) shuttingDown() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.isShuttingDown
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
