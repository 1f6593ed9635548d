// Package simulator generates randomized price walks for exercising the
// alert pipeline without a live market feed.
package simulator

import (
	"math/rand"

	"cryptotracker/internal/models"
)

// Mode selects the shape of the simulated price walk.
type Mode string

const (
	ModeRandom    Mode = "random"
	ModeUptrend   Mode = "uptrend"
	ModeDowntrend Mode = "downtrend"
	ModeVolatile  Mode = "volatile"
	ModeStable    Mode = "stable"

	// DefaultVolatility is the percentage of the price that can move per step.
	DefaultVolatility = 5.0
	// MaxVolatility caps the per-step move size.
	MaxVolatility = 20.0

	// priceFloor keeps simulated prices strictly positive.
	priceFloor = 0.01
)

// ParseMode maps a mode string to a Mode, falling back to ModeRandom for
// anything unrecognized.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeUptrend, ModeDowntrend, ModeVolatile, ModeStable, ModeRandom:
		return Mode(s)
	default:
		return ModeRandom
	}
}

// Simulate returns a fresh snapshot derived from previous by applying one
// random price step per entry. Each call is independent; feeding the output
// back in as previous is how a walk accumulates. Identity fields pass
// through unchanged.
func Simulate(previous []models.Crypto, mode Mode, volatilityPercent float64) []models.Crypto {
	volatilityPercent = clampVolatility(volatilityPercent)

	next := make([]models.Crypto, len(previous))
	for i, c := range previous {
		maxDelta := c.Price * volatilityPercent / 100

		var delta float64
		switch mode {
		case ModeUptrend:
			delta = rand.Float64() * maxDelta
		case ModeDowntrend:
			delta = -rand.Float64() * maxDelta
		case ModeVolatile:
			delta = symmetric(maxDelta)
		case ModeStable:
			delta = symmetric(maxDelta / 4)
		default:
			delta = symmetric(maxDelta / 2)
		}

		c.Price = c.Price + delta
		if c.Price < priceFloor {
			c.Price = priceFloor
		}

		// The 24h change figure is regenerated independently of the actual
		// step; it is display data, not a derived statistic.
		switch mode {
		case ModeUptrend:
			c.PriceChangePercentage24h = rand.Float64() * volatilityPercent * 2
		case ModeDowntrend:
			c.PriceChangePercentage24h = -rand.Float64() * volatilityPercent * 2
		case ModeVolatile:
			c.PriceChangePercentage24h = symmetric(volatilityPercent * 3)
		case ModeStable:
			c.PriceChangePercentage24h = symmetric(volatilityPercent / 2)
		default:
			c.PriceChangePercentage24h = symmetric(volatilityPercent)
		}

		next[i] = c
	}
	return next
}

func clampVolatility(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxVolatility {
		return MaxVolatility
	}
	return v
}

// symmetric draws uniformly from [-bound, bound].
func symmetric(bound float64) float64 {
	return (rand.Float64()*2 - 1) * bound
}
