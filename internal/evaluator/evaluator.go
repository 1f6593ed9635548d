// Package evaluator decides which alerts a price snapshot has triggered.
package evaluator

import (
	"strings"

	"cryptotracker/internal/models"
)

// Evaluate compares every enabled alert against the snapshot and returns a
// trigger event for each alert whose condition currently holds. It is pure:
// no I/O, no side effects, and the same inputs always produce the same
// output, in alert insertion order.
//
// Symbol matching is case-insensitive. If the same symbol appears more than
// once in the snapshot, the last entry wins. Alerts for symbols absent from
// the snapshot are skipped.
func Evaluate(snapshot []models.Crypto, alerts []models.Alert) []models.TriggerEvent {
	if len(snapshot) == 0 || len(alerts) == 0 {
		return nil
	}

	prices := make(map[string]float64, len(snapshot))
	for _, c := range snapshot {
		prices[strings.ToUpper(c.Symbol)] = c.Price
	}

	var events []models.TriggerEvent
	for _, alert := range alerts {
		if !alert.IsEnabled {
			continue
		}

		price, ok := prices[strings.ToUpper(alert.CryptoSymbol)]
		if !ok {
			continue
		}

		// Boundary equality counts as triggered in both directions.
		triggered := (alert.IsUpperBound && price >= alert.Threshold) ||
			(!alert.IsUpperBound && price <= alert.Threshold)

		if triggered {
			events = append(events, models.TriggerEvent{Alert: alert, Price: price})
		}
	}

	return events
}
