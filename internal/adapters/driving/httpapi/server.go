package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

// maxBodyBytes bounds a log_event request. Page markup can be large.
const maxBodyBytes = 16 << 20

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: ingest and cluster services are required")

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address, e.g. "0.0.0.0:8000".
	Addr string

	// AllowedOrigins lists the CORS origins; "*" allows any.
	AllowedOrigins []string

	// Metrics serves /metrics when set.
	Metrics http.Handler

	// MCP serves /mcp when set.
	MCP http.Handler
}

// Server is the HTTP ingestion and query server.
type Server struct {
	mu       sync.Mutex
	cfg      Config
	ingest   driving.IngestService
	clusters driving.ClusterService
	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer creates a server over the ingest and cluster services.
func NewServer(cfg Config, ingest driving.IngestService, clusters driving.ClusterService) (*Server, error) {
	if ingest == nil || clusters == nil {
		return nil, ErrMissingService
	}
	return &Server{
		cfg:      cfg,
		ingest:   ingest,
		clusters: clusters,
		errChan:  make(chan error, 1),
	}, nil
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /log_event", s.handleLogEvent)
	mux.HandleFunc("GET /return_all_events", s.handleAllEvents)
	mux.HandleFunc("GET /get_event_buckets", s.handleEventBuckets)
	mux.HandleFunc("GET /clusters", s.handleClusters)
	mux.HandleFunc("GET /pages", s.handlePages)
	mux.HandleFunc("GET /runs", s.handleRuns)
	if s.cfg.Metrics != nil {
		mux.Handle("GET /metrics", s.cfg.Metrics)
	}
	if s.cfg.MCP != nil {
		mux.Handle("/mcp", s.cfg.MCP)
	}
	return cors(s.cfg.AllowedOrigins, logRequests(mux))
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("http server listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Errors reports a serve failure after Start.
func (s *Server) Errors() <-chan error {
	return s.errChan
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// logRequests logs each request at debug level.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
