package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuspay/studentbank/internal/bootstrap"
	"github.com/campuspay/studentbank/internal/pkg/logger"
)

// shutdownTimeout bounds how long in-flight requests may take during shutdown
const shutdownTimeout = 10 * time.Second

// Server runs the HTTP API with graceful shutdown and background upkeep
type Server struct {
	deps *bootstrap.Dependencies
	http *http.Server
}

// New creates a Server around prepared dependencies
func New(deps *bootstrap.Dependencies) *Server {
	setupStaticFileServing(deps)

	return &Server{
		deps: deps,
		http: &http.Server{
			Addr:         ":" + deps.Config.Server.Port,
			Handler:      deps.Router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run starts the server and blocks until a signal or a fatal server error
func (s *Server) Run() error {
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go s.sweepSessions(sweepCtx)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown started")
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests then releases resources
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed, closing immediately")
		if closeErr := s.http.Close(); closeErr != nil {
			return closeErr
		}
	}

	s.deps.Webhook.Close()
	s.deps.DB.Close()
	logger.Info().Msg("Shutdown complete")
	return nil
}

// sweepSessions periodically removes expired sessions
func (s *Server) sweepSessions(ctx context.Context) {
	interval := s.deps.Config.SessionSweepInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.deps.AuthService.SweepExpiredSessions(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Session sweep failed")
				continue
			}
			if removed > 0 {
				logger.Info().Int64("removed", removed).Msg("Swept expired sessions")
			}
		}
	}
}

// setupStaticFileServing exposes uploaded files under /uploads
func setupStaticFileServing(deps *bootstrap.Dependencies) {
	deps.Router.Static("/uploads", deps.Config.Server.StoragePath)
}
