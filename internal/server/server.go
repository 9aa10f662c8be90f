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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/internhub/internal/bootstrap"
	"github.com/yigit/internhub/internal/config"
	"github.com/yigit/internhub/internal/db"
)

// Server holds the state for the HTTP server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	database *db.PostgresDB
	deps     *bootstrap.Dependencies
	logger   zerolog.Logger
	http     *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router, err := bootstrap.SetupRouter(cfg, deps, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	setupStaticFileServing(router, cfg, lgr)

	return &Server{
		config:   cfg,
		router:   router,
		database: database,
		deps:     deps,
		logger:   lgr,
	}, nil
}

// setupStaticFileServing serves uploaded resumes under /uploads
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Server.StoragePath

	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		if err := os.MkdirAll(uploadPath, 0o755); err != nil {
			lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
			return
		}
	}

	router.Static("/uploads", uploadPath)
	lgr.Info().Str("path", uploadPath).Msg("Static file serving configured for uploads directory")
}

// Run starts the background workers and the HTTP server, then blocks until
// a signal or a listener error triggers graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.deps.Start(context.Background())

	s.http = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// no WriteTimeout: websocket connections are long lived
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(osSignals)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown stops accepting requests, drains the workers and closes the pool.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	shutdownError := false

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownError = true
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.deps != nil {
		s.logger.Info().Msg("Stopping background workers...")
		if err := s.deps.Stop(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Background worker shutdown error")
			shutdownError = true
		}
	}

	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
		s.logger.Info().Msg("Database connection pool closed.")
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
