package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/sitescout/internal/database"
	"github.com/nao1215/sitescout/internal/model"
	"github.com/nao1215/sitescout/internal/pipeline"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// shutdownTimeout bounds the graceful shutdown of Serve.
const shutdownTimeout = 10 * time.Second

// Store persists scrape results. database.ResultDB implements it.
type Store interface {
	SaveResult(ctx context.Context, result *model.ScrapeResult) (int64, error)
	GetResultByID(ctx context.Context, id int64) (*database.Record, error)
	ListResults(ctx context.Context, page, pageSize int) ([]database.Summary, int, error)
	SearchResults(ctx context.Context, query string, limit int) ([]database.Summary, error)
	DeleteResult(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Server holds the dependencies of the HTTP API.
type Server struct {
	crawler        *pipeline.Crawler
	store          Store
	gatherer       prometheus.Gatherer
	logger         *slog.Logger
	version        string
	requestTimeout time.Duration
	router         http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables persistence and the result endpoints.
func WithStore(store Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithGatherer sets the registry served on /metrics.
// Default is prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithRequestTimeout bounds every request. A scrape that hits the
// timeout returns a partial result. Default is 2 minutes.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// NewServer creates a Server that crawls with c.
func NewServer(c *pipeline.Crawler, opts ...Option) *Server {
	s := &Server{
		crawler:        c,
		gatherer:       prometheus.DefaultGatherer,
		version:        "dev",
		requestTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on l until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.requestTimeout + 10*time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(l)
	}()

	s.logger.Info("api server listening", "addr", l.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}
