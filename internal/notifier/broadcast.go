package notifier

import (
	"context"
	"encoding/json"
	"time"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/models"
)

// AlertsChannel is the Redis channel alert events are published on.
const AlertsChannel = "price_alerts"

// AlertMessage is the wire form of a triggered alert on the pub/sub channel
// and the SSE stream.
type AlertMessage struct {
	AlertID   string  `json:"alert_id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
	Price     float64 `json:"price"`
	Triggered string  `json:"triggered"` // "above" or "below"
	Timestamp string  `json:"timestamp"`
}

// Broadcast publishes triggered alerts to Redis so every running instance
// can stream them to its connected SSE clients.
type Broadcast struct {
	redis *cache.Redis
}

func NewBroadcast(redis *cache.Redis) *Broadcast {
	return &Broadcast{redis: redis}
}

func (b *Broadcast) Notify(ctx context.Context, alert models.Alert, price float64) error {
	direction := "below"
	if alert.IsUpperBound {
		direction = "above"
	}

	msg := AlertMessage{
		AlertID:   alert.ID,
		Symbol:    alert.CryptoSymbol,
		Name:      alert.CryptoName,
		Threshold: alert.Threshold,
		Price:     price,
		Triggered: direction,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, AlertsChannel, string(payload))
}
