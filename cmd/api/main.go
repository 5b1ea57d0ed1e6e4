package main

import (
	"context"
	"flag"
	"os"

	"github.com/campuspay/studentbank/internal/bootstrap"
	"github.com/campuspay/studentbank/internal/pkg/logger"
	"github.com/campuspay/studentbank/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	migrationsDir := flag.String("migrations", "migrations", "path to the SQL migrations directory")
	flag.Parse()

	cfg, err := bootstrap.LoadConfigAndSetupLogger(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	database, repos, err := bootstrap.SetupDatabase(ctx, cfg, *migrationsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up database")
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, repos)
	if err != nil {
		database.Close()
		logger.Fatal().Err(err).Msg("Failed to build dependencies")
	}

	if err := server.New(deps).Run(); err != nil {
		logger.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}
