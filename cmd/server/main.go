package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"magic-encyclopedia/backend/internal/models"
	"magic-encyclopedia/backend/pkg/config"
	"magic-encyclopedia/backend/pkg/di"
	"magic-encyclopedia/backend/pkg/logger"
	"magic-encyclopedia/backend/pkg/router"
	"magic-encyclopedia/backend/pkg/secrets"
	"magic-encyclopedia/backend/shared/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting magic encyclopedia backend", "env", cfg.Server.Env)

	if err := secrets.Init(log); err != nil {
		log.LogError(err, "Secrets backend unavailable, using environment fallback")
	}

	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.Character{}, &models.Message{}, &models.Settings{}); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	shutdownTracing := observability.SetupTracing("magic-encyclopedia")
	defer shutdownTracing()

	metrics, metricsHandler, err := observability.SetupMetrics()
	if err != nil {
		log.LogError(err, "Failed to initialize metrics")
		os.Exit(1)
	}

	container := di.New(db, cfg, log, metrics)

	if err := container.CharacterService.SeedDefaults(); err != nil {
		log.LogError(err, "Failed to seed default characters")
		os.Exit(1)
	}
	if _, err := container.SettingsService.Get(); err != nil {
		log.LogError(err, "Failed to initialize settings")
		os.Exit(1)
	}

	container.SettingsService.StartTimeTicker()
	defer container.SettingsService.StopTimeTicker()

	r := router.New(container, metricsHandler)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	container.Player.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
