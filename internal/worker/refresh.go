// Package worker holds the background pipelines the scheduler runs: the
// periodic price refresh and the price simulation.
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
	"cryptotracker/internal/pricesource"
	"cryptotracker/internal/store"
)

// Job names. Scheduling a name that is already scheduled replaces it.
const (
	RefreshJobName        = "price_refresh"
	SimulationJobName     = "price_simulation"
	SimulationOnceJobName = "price_simulation_onetime"
)

// SnapshotPublisher fans a fresh snapshot out to downstream consumers.
type SnapshotPublisher interface {
	PublishSnapshot(cryptos []models.Crypto)
}

// RefreshJob fetches fresh prices, overwrites the snapshot cache, and
// notifies on every alert the new snapshot triggers.
//
// Expected failures never bubble up to the scheduler: a fetch error falls
// back to the cached snapshot, and store or notifier errors are logged and
// absorbed. Reporting success even on a failed fetch keeps the schedule on
// its fixed interval instead of hot-looping retries against a network that
// is still down.
type RefreshJob struct {
	Source       pricesource.Source
	Cache        cache.Snapshots
	Store        store.Store
	Notifier     notifier.Notifier
	Publisher    SnapshotPublisher // optional
	FetchTimeout time.Duration
	Cooldown     *Cooldown // optional; nil notifies every poll
}

func (j *RefreshJob) Run(ctx context.Context) error {
	logger.Log.Info("Starting background price update and alert check")

	snapshot, fresh := j.loadSnapshot(ctx)
	if snapshot == nil {
		// No live data and no cache: terminal no-data condition for this
		// run. The next firing will try again.
		return nil
	}

	if fresh {
		if err := j.Cache.SetSnapshot(ctx, snapshot); err != nil {
			logger.Log.Error("Failed to update snapshot cache", zap.Error(err))
		}
		if j.Publisher != nil {
			j.Publisher.PublishSnapshot(snapshot)
		}
	}

	j.checkAlerts(ctx, snapshot)
	return nil
}

// loadSnapshot fetches live prices with a bounded timeout, falling back to
// the cached snapshot on failure. The second return reports whether the
// snapshot is fresh and should be written back to the cache.
func (j *RefreshJob) loadSnapshot(ctx context.Context) ([]models.Crypto, bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, j.FetchTimeout)
	defer cancel()

	snapshot, err := j.Source.FetchPrices(fetchCtx)
	if err == nil {
		logger.Log.Info("Fetched fresh prices", zap.Int("count", len(snapshot)))
		return snapshot, true
	}

	logger.Log.Warn("Price fetch failed, falling back to cache", zap.Error(err))

	cached, cacheErr := j.Cache.Snapshot(ctx)
	if cacheErr != nil {
		if errors.Is(cacheErr, cache.ErrNoSnapshot) {
			logger.Log.Error("No live prices and no cached snapshot available")
		} else {
			logger.Log.Error("Failed to read snapshot cache", zap.Error(cacheErr))
		}
		return nil, false
	}

	logger.Log.Info("Using cached snapshot", zap.Int("count", len(cached)))
	return cached, false
}

func (j *RefreshJob) checkAlerts(ctx context.Context, snapshot []models.Crypto) {
	alerts, err := j.Store.List(ctx)
	if err != nil {
		logger.Log.Error("Failed to load alerts", zap.Error(err))
		return
	}
	if len(alerts) == 0 {
		logger.Log.Debug("No alerts to check")
		return
	}

	events := evaluator.Evaluate(snapshot, alerts)
	if len(events) == 0 {
		return
	}
	logger.Log.Info("Alerts triggered", zap.Int("count", len(events)))

	now := time.Now()
	for _, event := range events {
		if !j.Cooldown.Allow(event.Alert.ID, now) {
			logger.Log.Debug("Notification suppressed by cooldown",
				zap.String("alert_id", event.Alert.ID))
			continue
		}

		if err := j.Notifier.Notify(ctx, event.Alert, event.Price); err != nil {
			logger.Log.Warn("Failed to deliver notification",
				zap.String("alert_id", event.Alert.ID),
				zap.String("symbol", event.Alert.CryptoSymbol),
				zap.Error(err),
			)
		}
	}
}
