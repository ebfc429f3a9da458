package main

import (
	"os"

	"scrumboard-api/internal/config"
	"scrumboard-api/internal/database"
	"scrumboard-api/internal/logger"
	"scrumboard-api/internal/routes"

	"go.uber.org/zap"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load config", err)
	}

	logger.Init(cfg.Logging.Development)
	defer logger.Sync()

	// Init database
	database.InitDB(cfg.Database.Path)

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(cfg)

	logger.Info("server starting", zap.String("addr", cfg.Addr()))
	if err := ginRoutes.Run(cfg.Addr()); err != nil {
		logger.Fatal("failed to start server", err)
	}
}
