// Package notifier delivers user-visible notifications for triggered alerts.
// Delivery is best-effort: callers log failures and move on, a failed
// notification never fails the job that produced it.
package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
)

// Notifier presents a triggered alert to the user.
type Notifier interface {
	Notify(ctx context.Context, alert models.Alert, price float64) error
}

// Title renders the notification headline for an alert.
func Title(alert models.Alert) string {
	return fmt.Sprintf("%s (%s) Alert", alert.CryptoName, alert.CryptoSymbol)
}

// Message renders the notification body for a triggered alert.
func Message(alert models.Alert, price float64) string {
	if alert.IsUpperBound {
		return fmt.Sprintf("Price has risen above %s! Current price: %s",
			FormatPrice(alert.Threshold), FormatPrice(price))
	}
	return fmt.Sprintf("Price has fallen below %s! Current price: %s",
		FormatPrice(alert.Threshold), FormatPrice(price))
}

// FormatPrice renders a price for display. Sub-dollar assets get four
// decimals so the figure is not rounded to nothing.
func FormatPrice(price float64) string {
	if price < 1.0 {
		return fmt.Sprintf("$%.4f", price)
	}
	return fmt.Sprintf("$%.2f", price)
}

// Log writes notifications to the application log only. Used by the offline
// simulation CLI and as a safe default when no channel is configured.
type Log struct{}

func (Log) Notify(_ context.Context, alert models.Alert, price float64) error {
	logger.Log.Info("ALERT "+Title(alert),
		zap.String("alert_id", alert.ID),
		zap.String("symbol", alert.CryptoSymbol),
		zap.Float64("threshold", alert.Threshold),
		zap.Float64("price", price),
		zap.String("message", Message(alert, price)),
	)
	return nil
}

// Multi fans a notification out to several channels. Every channel is
// attempted; the first error is returned after all have run.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, alert models.Alert, price float64) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, alert, price); err != nil {
			logger.Log.Warn("Notification channel failed",
				zap.String("alert_id", alert.ID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
