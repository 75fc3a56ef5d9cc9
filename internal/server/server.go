// Package server exposes sanitizing, scoring and grading over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapgrade/internal/grader"
	"github.com/leapstack-labs/leapgrade/pkg/filter"
	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Evaluator grades submissions and reports database health.
type Evaluator interface {
	Evaluate(ctx context.Context, sub grader.Submission) (*grader.Response, error)
	Status(ctx context.Context) error
}

// Config holds configuration for the server.
type Config struct {
	Addr      string
	Evaluator Evaluator
	Filter    *filter.Filter
	Scorer    *rubric.Scorer
	Logger    *slog.Logger

	// ShutdownTimeout bounds graceful shutdown. Zero means 5s.
	ShutdownTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	addr            string
	handlers        *handlers
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Scorer == nil {
		cfg.Scorer = rubric.NewScorer(rubric.Options{Logger: logger})
	}
	if cfg.Filter == nil {
		cfg.Filter = filter.New(filter.Options{
			Ceiling:   grader.DefaultSelectLimit,
			Blacklist: filter.DefaultBlacklist(),
			Logger:    logger,
		})
	}
	shutdown := cfg.ShutdownTimeout
	if shutdown == 0 {
		shutdown = 5 * time.Second
	}
	return &Server{
		addr: cfg.Addr,
		handlers: &handlers{
			evaluator: cfg.Evaluator,
			filter:    cfg.Filter,
			scorer:    cfg.Scorer,
			logger:    logger,
		},
		logger:          logger,
		shutdownTimeout: shutdown,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handlers.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/sanitize", s.handlers.sanitize)
		r.Post("/score", s.handlers.score)
		r.Post("/grade", s.handlers.grade)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is
// cancelled or the server fails.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", slog.String("addr", ln.Addr().String()))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
