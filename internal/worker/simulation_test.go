package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/models"
	"cryptotracker/internal/simulator"
	"cryptotracker/internal/store"
)

func newSimulationJob(c cache.Snapshots, st store.Store, n *recordingNotifier) *SimulationJob {
	return &SimulationJob{
		Cache:      c,
		Store:      st,
		Notifier:   n,
		Mode:       simulator.ModeStable,
		Volatility: simulator.DefaultVolatility,
	}
}

func TestSimulationJob_ColdStartSeedsFromSampleData(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	job := newSimulationJob(c, store.NewMemory(), &recordingNotifier{})
	require.NoError(t, job.Run(ctx))

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, len(models.SampleCryptos()))
}

func TestSimulationJob_WalksCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	require.NoError(t, c.SetSnapshot(ctx, []models.Crypto{{ID: "bitcoin", Symbol: "BTC", Price: 50000}}))

	job := newSimulationJob(c, store.NewMemory(), &recordingNotifier{})
	job.Mode = simulator.ModeUptrend
	job.Volatility = 10

	require.NoError(t, job.Run(ctx))
	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.GreaterOrEqual(t, snap[0].Price, 50000.0)
}

func TestSimulationJob_TriggersAlerts(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	// Uptrend from a price already at the threshold must trigger.
	require.NoError(t, c.SetSnapshot(ctx, []models.Crypto{{ID: "bitcoin", Symbol: "BTC", Price: 52000}}))

	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, triggeringAlert()))
	n := &recordingNotifier{}

	job := newSimulationJob(c, st, n)
	job.Mode = simulator.ModeUptrend

	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, n.count())
}

func TestSimulationJob_DisabledAlertStaysSilent(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	require.NoError(t, c.SetSnapshot(ctx, []models.Crypto{{ID: "bitcoin", Symbol: "BTC", Price: 52000}}))

	alert := triggeringAlert()
	alert.IsEnabled = false
	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, alert))
	n := &recordingNotifier{}

	job := newSimulationJob(c, st, n)
	job.Mode = simulator.ModeUptrend

	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 0, n.count())
}

func TestSimulationJob_CooldownShared(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	require.NoError(t, c.SetSnapshot(ctx, []models.Crypto{{ID: "bitcoin", Symbol: "BTC", Price: 60000}}))

	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, triggeringAlert()))
	n := &recordingNotifier{}

	job := newSimulationJob(c, st, n)
	job.Mode = simulator.ModeUptrend
	job.Cooldown = NewCooldown(time.Hour)

	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, n.count())
}
