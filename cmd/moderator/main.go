package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/ContentGuard/pkg/config"
	"github.com/NeuralTrust/ContentGuard/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/ContentGuard/pkg/infra/logger"
	"github.com/NeuralTrust/ContentGuard/pkg/server"
	"github.com/NeuralTrust/ContentGuard/pkg/version"
	"github.com/joho/godotenv"
)

// @title ContentGuard API
// @version 0.4.0
// @description Text and image moderation with pluggable classifier backends.
// @BasePath /
func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closeLogger, err := infraLogger.New(infraLogger.ConfigFromEnv())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogger()

	if err := config.Load(os.Getenv("CONFIG_PATH")); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize dependencies: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go container.PurgeExpiredScores(ctx)

	srv := server.NewAPIServer(server.APIServerDI{
		Config:  cfg,
		Logger:  logger,
		Routers: container.Routers,
	})

	go func() {
		logger.WithField("version", version.GetInfo().String()).Info("starting")
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
	}
	if err := container.Close(); err != nil {
		logger.WithError(err).Error("error closing cache")
	}
	logger.Info("server gracefully stopped")
}
