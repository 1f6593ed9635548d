package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/config"
	"cryptotracker/internal/handlers"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/notifier"
	"cryptotracker/internal/pricesource"
	"cryptotracker/internal/scheduler"
	"cryptotracker/internal/simulator"
	"cryptotracker/internal/store"
	"cryptotracker/internal/stream"
	"cryptotracker/internal/tracing"
	"cryptotracker/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	instance := flag.String("instance", "tracker-1", "Instance name for metrics and cache labels")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	logger.InitLogger()
	defer logger.Log.Sync()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		logger.Log.Fatal("Failed to load config", zap.Error(err))
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.InitTracer()
	if err != nil {
		logger.Log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shut down tracer", zap.Error(err))
		}
	}()

	redisCache, err := cache.NewRedis(cfg.Redis.Addr, *instance)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	alertStore := openStore(cfg)

	notify := buildNotifier(cfg, redisCache)

	source := buildSource(ctx, cfg)

	var publisher worker.SnapshotPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := stream.NewPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic)
		if err != nil {
			logger.Log.Error("Failed to create Kafka publisher, continuing without it", zap.Error(err))
		} else {
			defer kafkaPublisher.Close()
			publisher = kafkaPublisher
		}
	}

	sched := scheduler.New()
	defer sched.CancelAll()

	sched.SchedulePeriodic(worker.RefreshJobName, cfg.Refresh.Interval, &worker.RefreshJob{
		Source:       source,
		Cache:        redisCache,
		Store:        alertStore,
		Notifier:     notify,
		Publisher:    publisher,
		FetchTimeout: cfg.PriceFeed.FetchTimeout,
		Cooldown:     worker.NewCooldown(cfg.Refresh.Cooldown),
	})

	if cfg.Simulation.Enabled {
		sched.SchedulePeriodic(worker.SimulationJobName, cfg.Simulation.Interval, &worker.SimulationJob{
			Cache:      redisCache,
			Store:      alertStore,
			Notifier:   notify,
			Mode:       simulator.ParseMode(cfg.Simulation.Mode),
			Volatility: cfg.Simulation.Volatility,
			Cooldown:   worker.NewCooldown(cfg.Refresh.Cooldown),
		})
	}

	hub := handlers.NewHub(redisCache)
	go func() {
		if err := hub.Run(ctx); err != nil {
			logger.Log.Error("Alert stream hub stopped", zap.Error(err))
		}
	}()

	alertsHandler := handlers.NewAlerts(alertStore, redisCache, *instance)

	mux := http.NewServeMux()
	mux.Handle("/alerts", alertsHandler)
	mux.Handle("/alerts/stream", hub)
	mux.Handle("/alerts/", alertsHandler)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: handlers.RateLimit(redisCache, cfg.HTTP.RateLimitRPM, mux),
	}

	go func() {
		logger.Log.Info("HTTP server listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("instance", *instance),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	logger.Log.Info("Shutdown complete")
}

// openStore connects the configured backend, falling back from Postgres to
// SQLite so the tracker still runs without a database server.
func openStore(cfg config.Config) store.Store {
	switch cfg.Store.Backend {
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			logger.Log.Fatal("Failed to open SQLite store", zap.Error(err))
		}
		return st
	default:
		st, err := store.NewPostgres(cfg.Store.DSN)
		if err == nil {
			return st
		}
		logger.Log.Warn("Postgres unavailable, falling back to SQLite",
			zap.String("sqlite_path", cfg.Store.SQLitePath),
			zap.Error(err),
		)
		fallback, fbErr := store.NewSQLite(cfg.Store.SQLitePath)
		if fbErr != nil {
			logger.Log.Fatal("Failed to open fallback SQLite store", zap.Error(fbErr))
		}
		return fallback
	}
}

func buildNotifier(cfg config.Config, redisCache *cache.Redis) notifier.Notifier {
	notifiers := notifier.Multi{
		notifier.Log{},
		notifier.NewBroadcast(redisCache),
	}
	if cfg.Telegram.Enabled {
		tg, err := notifier.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logger.Log.Error("Failed to initialize Telegram notifier, continuing without it", zap.Error(err))
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	return notifiers
}

// buildSource returns the CoinGecko poller, optionally overlaid with live
// Coinbase trade prices when the websocket stream is enabled.
func buildSource(ctx context.Context, cfg config.Config) pricesource.Source {
	gecko := pricesource.NewCoinGecko(cfg.PriceFeed.BaseURL, cfg.PriceFeed.PerPage)
	if !cfg.PriceFeed.StreamEnabled {
		return gecko
	}

	cbStream := pricesource.NewCoinbaseStream(gecko, cfg.PriceFeed.StreamURL, cfg.PriceFeed.Products)
	go cbStream.Run(ctx)
	return cbStream
}
