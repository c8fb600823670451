package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"firewatch-worker-go/internal/api"
	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/logging"
	"firewatch-worker-go/internal/services"
)

// @title Firewatch Worker API
// @version 1.0.0
// @description Camera worker API for fire detection, employee presence tracking, and safety alerting
// @BasePath /
func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg := config.Load()

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Tee logs to the embedded Logdy web viewer when enabled
	if cfg.LogdyEnabled {
		logdyWriter, url, err := logging.StartLogdy(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to start Logdy, console logging only")
		} else {
			multi := io.MultiWriter(zerolog.ConsoleWriter{Out: os.Stderr}, logdyWriter)
			log.Logger = log.Output(multi)
			log.Info().Str("url", url).Msg("Logs mirrored to Logdy")
		}
	}

	log.Info().
		Str("worker_id", cfg.WorkerID).
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Float64("fire_threshold", cfg.FireConfidenceThreshold).
		Dur("presence_timeout", cfg.PresenceTimeout).
		Dur("alert_cooldown", cfg.AlertCooldown).
		Msg("Starting Firewatch Worker")

	// Wire all services
	container, err := services.NewServiceContainer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create service container")
	}

	// Background loops: presence expiry sweep and periodic occupancy updates
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	go container.Presence.Run(bgCtx)

	if cfg.PresenceUpdateInterval > 0 {
		go container.Alerting.RunPresenceUpdates(bgCtx, container.Presence.Floors)
	}

	// Start cameras known to the backend (or the local fallback file)
	go func() {
		loadCtx, cancel := context.WithTimeout(bgCtx, cfg.BackendTimeout+5*time.Second)
		defer cancel()
		if err := container.CameraManager.LoadConfiguredCameras(loadCtx); err != nil {
			log.Warn().Err(err).Msg("No cameras loaded at startup, waiting for API requests")
		}
	}()

	// Create and start server
	server, err := api.NewServer(cfg, container)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	bgCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := container.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Service shutdown incomplete")
	} else {
		log.Info().Msg("Shutdown complete")
	}
}
