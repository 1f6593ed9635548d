package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"cryptotracker/internal/config"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
	"cryptotracker/internal/store"
)

// Seeds the configured alert store with the sample alert set. Handy for
// local development and demo environments.
func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	backend := flag.String("backend", "", "Store backend override: postgres or sqlite")
	flag.Parse()

	logger.InitDevelopment()
	defer logger.Log.Sync()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		logger.Log.Fatal("Failed to load config", zap.Error(err))
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}

	var alertStore store.Store
	switch cfg.Store.Backend {
	case "sqlite":
		alertStore, err = store.NewSQLite(cfg.Store.SQLitePath)
	default:
		alertStore, err = store.NewPostgres(cfg.Store.DSN)
	}
	if err != nil {
		logger.Log.Fatal("Failed to open store",
			zap.String("backend", cfg.Store.Backend),
			zap.Error(err),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alerts := models.SampleAlerts()
	if err := alertStore.SaveAll(ctx, alerts); err != nil {
		logger.Log.Fatal("Failed to seed alerts", zap.Error(err))
	}

	logger.Log.Info("Seeded alert store",
		zap.String("backend", cfg.Store.Backend),
		zap.Int("alerts", len(alerts)),
	)
}
