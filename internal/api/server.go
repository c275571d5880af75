// Package api provides the HTTP REST boundary for the chatbot.
//
// Endpoints:
//
//	POST   /api/v1/chat           →  process one conversation turn
//	GET    /api/v1/sessions/{id}  →  session introspection
//	DELETE /api/v1/sessions/{id}  →  session reset
//	GET    /health                →  liveness probe
//	GET    /ready                 →  readiness probe
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: recovery, request ID, logging, CORS
//   - ratelimit.go: per-IP token bucket limiting
//   - chat.go: conversation endpoint
//   - session.go: session management endpoints
//   - health.go: health check endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/convo"
	"github.com/Pheonix-ctrl/Chatbot-Sentiment/internal/session"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 30 * time.Second

	// ReadHeaderTimeout prevents Slowloris-style header dribbling.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous because a turn may involve two model calls
	// plus a database query.
	WriteTimeout = 2 * time.Minute

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 2 * time.Minute
)

// Conversation processes one user turn. Implemented by convo.Orchestrator.
type Conversation interface {
	Process(ctx context.Context, sessionID, message string) convo.Result
}

// Options configures the HTTP server surface.
type Options struct {
	CORSOrigins []string
	RateLimit   float64 // tokens per second per client IP
	RateBurst   int
	Logger      *slog.Logger
}

// Server is the HTTP server for the chatbot REST API.
type Server struct {
	mux     *http.ServeMux
	limiter *rateLimiter
	opts    Options
	logger  *slog.Logger
}

// NewServer creates a server with all routes registered.
func NewServer(orch Conversation, store *session.Store, pool *pgxpool.Pool, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 10
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:     mux,
		limiter: newRateLimiter(opts.RateLimit, opts.RateBurst),
		opts:    opts,
		logger:  opts.Logger,
	}

	newChatHandler(orch, opts.Logger).registerRoutes(mux)
	newSessionHandler(store, opts.Logger).registerRoutes(mux)
	newHealthHandler(pool, opts.Logger).registerRoutes(mux)

	return s
}

// Handler returns the mux with middleware applied.
// Order: recovery → request ID → logging → CORS → rate limit → routes.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware(),
		loggingMiddleware(s.logger),
		corsMiddleware(s.opts.CORSOrigins),
		rateLimitMiddleware(s.limiter, s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// chain applies middleware in order: first middleware wraps outermost.
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
