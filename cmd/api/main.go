package main

import (
	"os"

	"github.com/yigit/internhub/internal/pkg/logger"
	"github.com/yigit/internhub/internal/server"
)

// @title InternHub API
// @version 1.0
// @description Internship management: postings, applications, tasks, feedback and notifications.

// @contact.name API Support
// @contact.email support@internhub.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// setup functions already logged the details
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// blocks until shutdown
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
