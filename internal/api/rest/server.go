package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/paysentinel/transfer-risk-backend/internal/infrastructure/config"
)

// Server owns the HTTP listener and the middleware chain around the
// assessment handler.
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires the handler behind the standard middleware chain.
func NewServer(cfg *config.Config, handler *Handler, logger *slog.Logger) *Server {
	rl := newIPRateLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.BurstSize)

	h := chain(handler.Routes(),
		requestIDMiddleware,
		loggingMiddleware(logger),
		recoveryMiddleware(logger),
		rateLimitMiddleware(rl, cfg.Server.RateLimit.RequestsPerSecond),
		timeoutMiddleware(cfg.Server.WriteTimeout),
	)

	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      h,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start blocks serving requests until the listener fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
