// Package store persists alert records. Two interchangeable SQL backends
// (Postgres, SQLite) are selected at startup; callers never branch on which
// one is active.
package store

import (
	"context"
	"errors"

	"cryptotracker/internal/models"
)

// ErrNotFound is returned when an alert id does not exist.
var ErrNotFound = errors.New("alert not found")

// Store is CRUD over alert records keyed by id.
type Store interface {
	// List returns all alerts in creation order.
	List(ctx context.Context) ([]models.Alert, error)
	// Save inserts an alert, replacing any existing record with the same id.
	Save(ctx context.Context, alert models.Alert) error
	// SaveAll replaces the entire store contents with the given alerts.
	SaveAll(ctx context.Context, alerts []models.Alert) error
	// Update replaces the full record for alert.ID. ErrNotFound if absent.
	Update(ctx context.Context, alert models.Alert) error
	// Delete removes an alert by id. ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
	// Clear removes every alert.
	Clear(ctx context.Context) error
}
