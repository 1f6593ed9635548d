// Package pricesource provides implementations of the market data feed the
// refresh pipeline polls.
package pricesource

import (
	"context"

	"cryptotracker/internal/models"
)

// Source returns the current snapshot of tracked instruments. Implementations
// must respect ctx cancellation; callers apply the fetch timeout.
type Source interface {
	FetchPrices(ctx context.Context) ([]models.Crypto, error)
}

// Static serves a fixed snapshot. Used for demos and tests.
type Static struct {
	Cryptos []models.Crypto
}

func (s Static) FetchPrices(_ context.Context) ([]models.Crypto, error) {
	out := make([]models.Crypto, len(s.Cryptos))
	copy(out, s.Cryptos)
	return out, nil
}
