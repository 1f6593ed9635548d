// Package cache holds the last good price snapshot. Writes are whole-value
// overwrites, so concurrent refresh and simulation jobs settle on
// last-writer-wins without locking and readers always see a complete
// snapshot.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"cryptotracker/internal/models"
)

// ErrNoSnapshot is returned when the cache has never been written.
var ErrNoSnapshot = errors.New("no cached snapshot")

const (
	snapshotKey  = "price_snapshot"
	updatedAtKey = "price_snapshot_updated_at"
)

var (
	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"key", "instance"},
	)
	cacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"key", "instance"},
	)
)

func init() {
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(cacheMissesTotal)
}

// Snapshots is the price cache consumed by the background jobs.
type Snapshots interface {
	// Snapshot returns the cached snapshot, or ErrNoSnapshot if none exists.
	Snapshot(ctx context.Context) ([]models.Crypto, error)
	// SetSnapshot replaces the cached snapshot wholesale.
	SetSnapshot(ctx context.Context, cryptos []models.Crypto) error
}

// Redis is the Redis-backed snapshot cache and pub/sub transport.
type Redis struct {
	client   *redis.Client
	instance string
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(addr, instance string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &Redis{client: client, instance: instance}, nil
}

// Client exposes the underlying connection for the rate limiter.
func (r *Redis) Client() *redis.Client {
	return r.client
}

func (r *Redis) Snapshot(ctx context.Context) ([]models.Crypto, error) {
	val, err := r.client.Get(ctx, snapshotKey).Result()
	if errors.Is(err, redis.Nil) {
		cacheMissesTotal.WithLabelValues(snapshotKey, r.instance).Inc()
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	var cryptos []models.Crypto
	if err := json.Unmarshal([]byte(val), &cryptos); err != nil {
		return nil, err
	}
	cacheHitsTotal.WithLabelValues(snapshotKey, r.instance).Inc()
	return cryptos, nil
}

func (r *Redis) SetSnapshot(ctx context.Context, cryptos []models.Crypto) error {
	data, err := json.Marshal(cryptos)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, snapshotKey, data, 0)
	pipe.Set(ctx, updatedAtKey, time.Now().Format(time.RFC3339), 0)
	_, err = pipe.Exec(ctx)
	return err
}

// GetCache reads an arbitrary cached value, empty string on miss.
func (r *Redis) GetCache(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		cacheMissesTotal.WithLabelValues(key, r.instance).Inc()
		return "", nil
	}
	if err != nil {
		return "", err
	}
	cacheHitsTotal.WithLabelValues(key, r.instance).Inc()
	return val, nil
}

// SetCache stores an arbitrary value with a TTL.
func (r *Redis) SetCache(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// InvalidateByPrefix deletes all keys matching prefix. Best effort.
func (r *Redis) InvalidateByPrefix(ctx context.Context, prefix string) (int, error) {
	var cursor uint64
	invalidated := 0
	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			return invalidated, err
		}
		for _, key := range keys {
			if err := r.client.Del(ctx, key).Err(); err == nil {
				invalidated++
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return invalidated, nil
		}
	}
}
