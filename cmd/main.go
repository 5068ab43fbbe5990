package main

import (
	"context"
	"runtime"
	"time"

	"github.com/Borislavv/shared/internal/app"
	"github.com/Borislavv/shared/pkg/config"
	"github.com/Borislavv/shared/pkg/shutdown"
	"github.com/rs/zerolog/log"
	"go.uber.org/automaxprocs/maxprocs"
)

// setMaxProcs automatically sets the optimal GOMAXPROCS value (CPU parallelism)
// based on the available CPUs and cgroup/docker CPU quotas (uses automaxprocs).
func setMaxProcs() {
	if _, err := maxprocs.Set(); err != nil {
		log.Err(err).Msg("[main] setting up GOMAXPROCS value failed")
		panic(err)
	}
	log.Info().Msgf("[main] optimized GOMAXPROCS=%d was set up", runtime.GOMAXPROCS(0))
}

// loadCfg loads the yaml configuration for the APP_ENV environment, falling
// back to built-in defaults when no file is deployed.
func loadCfg() *config.App {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Warn().Msgf("[config] %v, using defaults", err)
		return config.Default()
	}
	log.Info().Msg("[config] config loaded")
	return cfg
}

// Main entrypoint: configures and starts the registry demo application.
func main() {
	// Create a root context for graceful shutdown and cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optimize GOMAXPROCS for the current environment.
	setMaxProcs()

	cfg := loadCfg()

	// Setup graceful shutdown handler (SIGTERM, SIGINT, etc).
	gracefulShutdown := shutdown.NewGraceful(ctx, cancel)
	gracefulShutdown.SetGracefulTimeout(time.Minute)

	// Initialize and start the application.
	application := app.New(ctx, cfg)

	gracefulShutdown.Add(1)
	go application.Start(gracefulShutdown)

	// Listen for OS signals or context cancellation and wait for shutdown.
	if err := gracefulShutdown.ListenCancelAndAwait(); err != nil {
		log.Err(err).Msg("[main] failed to gracefully shut down service")
	}
}
