package cache

import (
	"context"
	"sync/atomic"

	"cryptotracker/internal/models"
)

// Memory is an in-process snapshot cache for tests and the offline
// simulation CLI. The whole slice is swapped atomically on write.
type Memory struct {
	snapshot atomic.Pointer[[]models.Crypto]
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Snapshot(_ context.Context) ([]models.Crypto, error) {
	p := m.snapshot.Load()
	if p == nil || len(*p) == 0 {
		return nil, ErrNoSnapshot
	}
	out := make([]models.Crypto, len(*p))
	copy(out, *p)
	return out, nil
}

func (m *Memory) SetSnapshot(_ context.Context, cryptos []models.Crypto) error {
	stored := make([]models.Crypto, len(cryptos))
	copy(stored, cryptos)
	m.snapshot.Store(&stored)
	return nil
}
