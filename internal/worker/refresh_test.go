package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
	"cryptotracker/internal/store"
)

func TestMain(m *testing.M) {
	logger.InitDevelopment()
	m.Run()
}

type fakeSource struct {
	cryptos []models.Crypto
	err     error
}

func (f *fakeSource) FetchPrices(context.Context) ([]models.Crypto, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cryptos, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.TriggerEvent
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, alert models.Alert, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, models.TriggerEvent{Alert: alert, Price: price})
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type recordingPublisher struct {
	published [][]models.Crypto
}

func (r *recordingPublisher) PublishSnapshot(cryptos []models.Crypto) {
	r.published = append(r.published, cryptos)
}

func triggeringAlert() models.Alert {
	return models.Alert{
		ID:           "a1",
		CryptoSymbol: "BTC",
		CryptoName:   "Bitcoin",
		Threshold:    52000,
		IsUpperBound: true,
		IsEnabled:    true,
		CreatedAt:    time.Now(),
	}
}

func newRefreshJob(src *fakeSource, c cache.Snapshots, st store.Store, n *recordingNotifier) *RefreshJob {
	return &RefreshJob{
		Source:       src,
		Cache:        c,
		Store:        st,
		Notifier:     n,
		FetchTimeout: time.Second,
	}
}

func TestRefreshJob_TriggersAndCaches(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{cryptos: []models.Crypto{{Symbol: "BTC", Price: 53000}}}
	c := cache.NewMemory()
	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, triggeringAlert()))
	n := &recordingNotifier{}

	job := newRefreshJob(src, c, st, n)
	require.NoError(t, job.Run(ctx))

	require.Equal(t, 1, n.count())
	assert.Equal(t, 53000.0, n.events[0].Price)

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 53000.0, snap[0].Price)
}

func TestRefreshJob_NoTriggerNoNotification(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{cryptos: []models.Crypto{{Symbol: "BTC", Price: 50000}}}
	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, triggeringAlert()))
	n := &recordingNotifier{}

	job := newRefreshJob(src, cache.NewMemory(), st, n)
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 0, n.count())
}

func TestRefreshJob_FetchFailureFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	require.NoError(t, c.SetSnapshot(ctx, []models.Crypto{{Symbol: "BTC", Price: 53000}}))

	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, triggeringAlert()))
	n := &recordingNotifier{}

	job := newRefreshJob(&fakeSource{err: errors.New("network down")}, c, st, n)
	require.NoError(t, job.Run(ctx), "fetch failure must not fail the job")

	// Alerts are still evaluated against the cached snapshot.
	assert.Equal(t, 1, n.count())
}

func TestRefreshJob_FetchFailureEmptyCacheIsAbsorbed(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, triggeringAlert()))
	n := &recordingNotifier{}

	job := newRefreshJob(&fakeSource{err: errors.New("network down")}, cache.NewMemory(), st, n)
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 0, n.count())
}

func TestRefreshJob_StaleCacheNotOverwrittenOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	require.NoError(t, c.SetSnapshot(ctx, []models.Crypto{{Symbol: "BTC", Price: 41000}}))

	job := newRefreshJob(&fakeSource{err: errors.New("timeout")}, c, store.NewMemory(), &recordingNotifier{})
	require.NoError(t, job.Run(ctx))

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 41000.0, snap[0].Price)
}

func TestRefreshJob_NotifierErrorAbsorbed(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{cryptos: []models.Crypto{{Symbol: "BTC", Price: 53000}}}
	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, triggeringAlert()))
	n := &recordingNotifier{err: errors.New("notification channel down")}

	job := newRefreshJob(src, cache.NewMemory(), st, n)
	assert.NoError(t, job.Run(ctx))
}

func TestRefreshJob_PublisherSeesFreshSnapshotsOnly(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	c := cache.NewMemory()
	require.NoError(t, c.SetSnapshot(ctx, []models.Crypto{{Symbol: "BTC", Price: 41000}}))

	src := &fakeSource{cryptos: []models.Crypto{{Symbol: "BTC", Price: 53000}}}
	job := newRefreshJob(src, c, store.NewMemory(), &recordingNotifier{})
	job.Publisher = pub

	require.NoError(t, job.Run(ctx))
	require.Len(t, pub.published, 1)

	// A fallback run must not republish stale data.
	src.err = errors.New("network down")
	require.NoError(t, job.Run(ctx))
	assert.Len(t, pub.published, 1)
}

func TestRefreshJob_CooldownSuppressesRepeats(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{cryptos: []models.Crypto{{Symbol: "BTC", Price: 53000}}}
	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, triggeringAlert()))
	n := &recordingNotifier{}

	job := newRefreshJob(src, cache.NewMemory(), st, n)
	job.Cooldown = NewCooldown(time.Hour)

	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, n.count(), "second still-triggered poll must be suppressed")
}

func TestCooldown_ReArmsAfterWindow(t *testing.T) {
	c := NewCooldown(time.Minute)
	base := time.Now()

	assert.True(t, c.Allow("a1", base))
	assert.False(t, c.Allow("a1", base.Add(30*time.Second)))
	assert.True(t, c.Allow("a1", base.Add(61*time.Second)))
}

func TestCooldown_NilAlwaysAllows(t *testing.T) {
	var c *Cooldown
	assert.True(t, c.Allow("a1", time.Now()))
}

func TestCooldown_Reset(t *testing.T) {
	c := NewCooldown(time.Hour)
	now := time.Now()
	assert.True(t, c.Allow("a1", now))
	c.Reset()
	assert.True(t, c.Allow("a1", now))
}
