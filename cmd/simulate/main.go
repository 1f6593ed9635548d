package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
	"cryptotracker/internal/notifier"
	"cryptotracker/internal/scheduler"
	"cryptotracker/internal/simulator"
	"cryptotracker/internal/store"
	"cryptotracker/internal/worker"
)

// Offline demo of the simulation pipeline: sample prices walk in memory,
// sample alerts fire against them, notifications go to the log. No network,
// Redis, or database required.
func main() {
	mode := flag.String("mode", "random", "Simulation mode: random, uptrend, downtrend, volatile, stable")
	volatility := flag.Float64("volatility", simulator.DefaultVolatility, "Max percentage move per cycle (clamped to 20)")
	interval := flag.Duration("interval", 2*time.Second, "Simulation cycle interval")
	cycles := flag.Int("cycles", 0, "Stop after this many cycles (0 runs until interrupted)")
	once := flag.Bool("once", false, "Run a single simulation step and exit")
	flag.Parse()

	logger.InitDevelopment()
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	priceCache := cache.NewMemory()
	if err := priceCache.SetSnapshot(ctx, models.SampleCryptos()); err != nil {
		logger.Log.Fatal("Failed to seed price cache", zap.Error(err))
	}

	alertStore := store.NewMemory()
	if err := alertStore.SaveAll(ctx, models.SampleAlerts()); err != nil {
		logger.Log.Fatal("Failed to seed alerts", zap.Error(err))
	}

	job := &worker.SimulationJob{
		Cache:      priceCache,
		Store:      alertStore,
		Notifier:   notifier.Log{},
		Mode:       simulator.ParseMode(*mode),
		Volatility: *volatility,
	}

	logger.Log.Info("Starting offline simulation",
		zap.String("mode", *mode),
		zap.Float64("volatility", *volatility),
		zap.Duration("interval", *interval),
	)

	if *once {
		sched := scheduler.New()
		defer sched.CancelAll()
		sched.ScheduleOnce(worker.SimulationOnceJobName, 0, job)

		for {
			state, ok := sched.Status(worker.SimulationOnceJobName)
			if !ok || state == scheduler.StateSucceeded || state == scheduler.StateFailed {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
		}
	}

	if *cycles > 0 {
		for i := 0; i < *cycles; i++ {
			if ctx.Err() != nil {
				break
			}
			if err := job.Run(ctx); err != nil {
				logger.Log.Error("Simulation cycle failed", zap.Error(err))
				os.Exit(1)
			}
			time.Sleep(*interval)
		}
		logger.Log.Info("Simulation finished", zap.Int("cycles", *cycles))
		return
	}

	sched := scheduler.New()
	defer sched.CancelAll()
	sched.SchedulePeriodic(worker.SimulationJobName, *interval, job)

	<-ctx.Done()
	logger.Log.Info("Simulation stopped")
}
