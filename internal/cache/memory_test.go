package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/internal/models"
)

func TestMemory_EmptyReturnsNoSnapshot(t *testing.T) {
	m := NewMemory()
	_, err := m.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestMemory_SetThenGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SetSnapshot(ctx, []models.Crypto{{Symbol: "BTC", Price: 50000}}))
	snap, err := m.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, 50000.0, snap[0].Price)
}

func TestMemory_OverwriteReplacesWholesale(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SetSnapshot(ctx, []models.Crypto{
		{Symbol: "BTC", Price: 50000},
		{Symbol: "ETH", Price: 2400},
	}))
	require.NoError(t, m.SetSnapshot(ctx, []models.Crypto{{Symbol: "SOL", Price: 123}}))

	snap, err := m.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "SOL", snap[0].Symbol)
}

func TestMemory_ReadersGetCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SetSnapshot(ctx, []models.Crypto{{Symbol: "BTC", Price: 50000}}))
	snap, _ := m.Snapshot(ctx)
	snap[0].Price = 1

	again, _ := m.Snapshot(ctx)
	assert.Equal(t, 50000.0, again[0].Price)
}
