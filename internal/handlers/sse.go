package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptotracker/internal/cache"
	"cryptotracker/internal/logger"
	"cryptotracker/internal/notifier"
)

// Hub fans triggered-alert messages out to connected SSE clients. Messages
// arrive over the Redis pub/sub channel the broadcast notifier publishes to,
// so every instance sees alerts fired by any instance.
type Hub struct {
	redis *cache.Redis

	mu      sync.RWMutex
	clients map[chan string]struct{}
}

func NewHub(redis *cache.Redis) *Hub {
	return &Hub{
		redis:   redis,
		clients: make(map[chan string]struct{}),
	}
}

// Run subscribes to the alerts channel and pumps messages to clients until
// ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	sub, err := h.redis.Subscribe(ctx, notifier.AlertsChannel)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", notifier.AlertsChannel, err)
	}
	defer sub.Close()

	logger.Log.Info("Alert stream hub started", zap.String("channel", notifier.AlertsChannel))

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Log.Error("Failed to receive pub/sub message", zap.Error(err))
			continue
		}
		h.broadcast(msg.Payload)
	}
}

func (h *Hub) broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- message:
		default:
			// Slow client; drop the message rather than block the hub.
		}
	}
}

func (h *Hub) register() chan string {
	ch := make(chan string, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unregister(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

// ServeHTTP streams triggered alerts to the client as server-sent events.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.register()
	defer h.unregister(ch)

	logger.Log.Info("SSE client connected", zap.String("remote_addr", r.RemoteAddr))

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Log.Info("SSE client disconnected", zap.String("remote_addr", r.RemoteAddr))
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case msg := <-ch:
			fmt.Fprintf(w, "event: alert\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
