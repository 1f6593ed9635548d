package worker

import (
	"sync"
	"time"
)

// Cooldown suppresses repeat notifications for an alert that stays
// triggered across consecutive polls. An alert re-arms once its last
// notification is older than the window.
type Cooldown struct {
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether a notification for alertID may fire now, and if so
// records it.
func (c *Cooldown) Allow(alertID string, now time.Time) bool {
	if c == nil || c.window <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if lastAt, ok := c.last[alertID]; ok && now.Sub(lastAt) < c.window {
		return false
	}
	c.last[alertID] = now
	return true
}

// Reset clears the suppression history, e.g. after a bulk alert edit.
func (c *Cooldown) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.last = make(map[string]time.Time)
	c.mu.Unlock()
}
