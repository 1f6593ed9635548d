package pricesource

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
)

// subscriptionMessage is the Coinbase websocket subscribe request.
type subscriptionMessage struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

// tradeMessage is a completed-trade event from the Coinbase feed.
type tradeMessage struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Time      string `json:"time"`
}

// CoinbaseStream overlays live trade prices from the Coinbase websocket feed
// onto snapshots from a base source. While the stream is connected, the most
// recent trade price for each subscribed product replaces the base quote;
// everything else passes through untouched.
type CoinbaseStream struct {
	base     Source
	wsURL    string
	products []string

	mu     sync.RWMutex
	latest map[string]float64 // symbol -> last trade price
}

func NewCoinbaseStream(base Source, wsURL string, products []string) *CoinbaseStream {
	return &CoinbaseStream{
		base:     base,
		wsURL:    wsURL,
		products: products,
		latest:   make(map[string]float64),
	}
}

// FetchPrices returns the base snapshot with live prices applied on top.
func (s *CoinbaseStream) FetchPrices(ctx context.Context) ([]models.Crypto, error) {
	snapshot, err := s.base.FetchPrices(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range snapshot {
		if price, ok := s.latest[strings.ToUpper(snapshot[i].Symbol)]; ok && price > 0 {
			snapshot[i].Price = price
		}
	}
	return snapshot, nil
}

// Run connects to the feed and consumes trades until ctx is cancelled,
// reconnecting with exponential backoff on failure. Intended to be run in
// its own goroutine.
func (s *CoinbaseStream) Run(ctx context.Context) {
	backoff := time.Second

	for ctx.Err() == nil {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
		if err != nil {
			logger.Log.Warn("Coinbase websocket connection failed",
				zap.Duration("retry_in", backoff),
				zap.Error(err),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		logger.Log.Info("Connected to Coinbase websocket",
			zap.Strings("products", s.products))

		if err := s.consume(ctx, conn); err != nil {
			logger.Log.Warn("Coinbase websocket read loop ended", zap.Error(err))
		}
		conn.Close()
	}
}

func (s *CoinbaseStream) consume(ctx context.Context, conn *websocket.Conn) error {
	subscribe := subscriptionMessage{
		Type:       "subscribe",
		ProductIDs: s.products,
		Channels:   []string{"matches"},
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		return err
	}

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var trade tradeMessage
		if err := json.Unmarshal(message, &trade); err != nil {
			logger.Log.Warn("Error parsing Coinbase message", zap.Error(err))
			continue
		}
		if trade.Type != "match" {
			continue
		}

		price, err := strconv.ParseFloat(trade.Price, 64)
		if err != nil || price <= 0 {
			continue
		}

		// "BTC-USD" -> "BTC"
		symbol, _, _ := strings.Cut(trade.ProductID, "-")

		s.mu.Lock()
		s.latest[strings.ToUpper(symbol)] = price
		s.mu.Unlock()
	}
}
