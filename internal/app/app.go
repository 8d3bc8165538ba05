// Package app wires the configuration, controllers, and lifecycle of the
// service together.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/solarwx/solarwx/internal/controllers/pvgis"
	"github.com/solarwx/solarwx/internal/controllers/restserver"
	"github.com/solarwx/solarwx/internal/database"
	"github.com/solarwx/solarwx/internal/log"
	"github.com/solarwx/solarwx/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfgData, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if err := config.ApplyEnvOverrides(cfgData); err != nil {
		return fmt.Errorf("error applying environment overrides: %w", err)
	}

	// Connect the cache database if one was configured
	var db *database.Client
	if cfgData.Storage.TimescaleDB != nil && cfgData.Storage.TimescaleDB.ConnectionString != "" {
		db = database.NewClient(cfgData.Storage.TimescaleDB.ConnectionString, a.logger)
		if err := db.Connect(); err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}
	}

	// Initialize the PVGIS controller
	timeout := time.Duration(cfgData.PVGIS.TimeoutSeconds) * time.Second
	client := pvgis.NewClient(cfgData.PVGIS.BaseURLV52, cfgData.PVGIS.BaseURLV53, timeout, a.logger)

	pvgisController, err := pvgis.NewController(ctx, &wg, a.configProvider, client, db, a.logger)
	if err != nil {
		return fmt.Errorf("error creating pvgis controller: %w", err)
	}
	if err := pvgisController.StartController(); err != nil {
		return fmt.Errorf("error starting pvgis controller: %w", err)
	}

	// Initialize the REST server
	restController, err := restserver.NewController(ctx, &wg, a.configProvider, pvgisController, a.logger)
	if err != nil {
		return fmt.Errorf("error creating REST server controller: %w", err)
	}
	if err := restController.StartController(); err != nil {
		return fmt.Errorf("error starting REST server controller: %w", err)
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
