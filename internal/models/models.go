package models

import (
	"time"
)

// Crypto is one tracked instrument in a price snapshot. A snapshot is a
// plain slice of these; each poll produces a fresh one that supersedes the
// previous snapshot wholesale.
type Crypto struct {
	ID                       string  `json:"id" db:"id"`
	Name                     string  `json:"name" db:"name"`
	Symbol                   string  `json:"symbol" db:"symbol"`
	Price                    float64 `json:"price" db:"price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h" db:"price_change_percentage_24h"`
	ImageURL                 string  `json:"image_url" db:"image_url"`
}

// Alert represents a user-configured price threshold rule.
// IsUpperBound true means the alert fires when price >= Threshold,
// false when price <= Threshold.
type Alert struct {
	ID           string    `json:"id" db:"id"`
	CryptoSymbol string    `json:"crypto_symbol" db:"crypto_symbol"`
	CryptoName   string    `json:"crypto_name" db:"crypto_name"`
	Threshold    float64   `json:"threshold" db:"threshold"`
	IsUpperBound bool      `json:"is_upper_bound" db:"is_upper_bound"`
	IsEnabled    bool      `json:"is_enabled" db:"is_enabled"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TriggerEvent pairs an alert with the price that satisfied its condition.
// Derived by the evaluator, never persisted.
type TriggerEvent struct {
	Alert Alert   `json:"alert"`
	Price float64 `json:"price"`
}
