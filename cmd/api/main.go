package main

import (
	"os"

	"github.com/yigit/peers/internal/pkg/logger"
	"github.com/yigit/peers/internal/server"
)

// @title Peers API
// @version 1.0
// @description Event discovery for university students: events, organizations, recommendations, search and live calls.

// @contact.name API Support
// @contact.email support@peers.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token issued by the auth provider, as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Details are logged by the setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until shutdown
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
