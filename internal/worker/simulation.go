package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/evaluator"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
	"cryptotracker/internal/notifier"
	"cryptotracker/internal/simulator"
	"cryptotracker/internal/store"
)

// SimulationJob runs the alert pipeline against simulated prices instead of
// a live fetch. It walks the cached snapshot one random step per run, so
// repeated firings produce a continuous drifting market.
type SimulationJob struct {
	Cache      cache.Snapshots
	Store      store.Store
	Notifier   notifier.Notifier
	Mode       simulator.Mode
	Volatility float64
	Cooldown   *Cooldown // optional; nil notifies every cycle
}

func (j *SimulationJob) Run(ctx context.Context) error {
	logger.Log.Info("Starting price simulation",
		zap.String("mode", string(j.Mode)),
		zap.Float64("volatility", j.Volatility),
	)

	previous, err := j.Cache.Snapshot(ctx)
	if errors.Is(err, cache.ErrNoSnapshot) {
		// Cold start: seed the walk from the bundled sample market.
		previous = models.SampleCryptos()
	} else if err != nil {
		logger.Log.Error("Failed to read snapshot cache", zap.Error(err))
		return err
	}

	snapshot := simulator.Simulate(previous, j.Mode, j.Volatility)
	if err := j.Cache.SetSnapshot(ctx, snapshot); err != nil {
		logger.Log.Error("Failed to store simulated snapshot", zap.Error(err))
	}

	alerts, err := j.Store.List(ctx)
	if err != nil {
		logger.Log.Error("Failed to load alerts", zap.Error(err))
		return nil
	}

	events := evaluator.Evaluate(snapshot, alerts)
	logger.Log.Info("Simulation step complete",
		zap.Int("instruments", len(snapshot)),
		zap.Int("triggered", len(events)),
	)

	now := time.Now()
	for _, event := range events {
		if !j.Cooldown.Allow(event.Alert.ID, now) {
			continue
		}
		if err := j.Notifier.Notify(ctx, event.Alert, event.Price); err != nil {
			logger.Log.Warn("Failed to deliver notification",
				zap.String("alert_id", event.Alert.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}
