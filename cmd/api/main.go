package main

import (
	"context"
	"os"

	"github.com/yigit/roster/internal/pkg/logger"
	"github.com/yigit/roster/internal/server"
)

// @title Student Roster API
// @version 1.0
// @description Student enrollment, payments and document records with a yearly payment rollover

// @host localhost:3000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	ctx := context.Background()

	srv, err := server.NewServer(ctx)
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
