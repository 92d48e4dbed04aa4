package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"gosus/internal"
	"gosus/internal/config"
	"gosus/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; the environment wins either way
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	internal.DefaultLogger = logger
	logger.Info("configuration loaded (port %s, upload limit %d bytes, %d concurrent analyses, session TTL %s)",
		appConfig.Server.Port, appConfig.Limits.MaxUploadBytes,
		appConfig.Limits.MaxConcurrentAnalyses, appConfig.Limits.SessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ui.NewApp(appConfig).Start(ctx); err != nil {
		logger.Error("server stopped: %v", err)
		log.Fatal(err)
	}
}
