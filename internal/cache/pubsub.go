package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cryptotracker/internal/logger"
)

// Publish sends a message to a Redis channel.
func (r *Redis) Publish(ctx context.Context, channel, message string) error {
	return r.client.Publish(ctx, channel, message).Err()
}

// Subscriber is a subscription to a Redis channel.
type Subscriber struct {
	pubsub *redis.PubSub
}

// Subscribe opens a subscription and confirms it before returning.
func (r *Redis) Subscribe(ctx context.Context, channel string) (*Subscriber, error) {
	pubsub := r.client.Subscribe(ctx, channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, err
	}

	logger.Log.Info("Subscribed to Redis channel", zap.String("channel", channel))
	return &Subscriber{pubsub: pubsub}, nil
}

// ReceiveMessage waits for and returns the next message.
func (s *Subscriber) ReceiveMessage(ctx context.Context) (*redis.Message, error) {
	return s.pubsub.ReceiveMessage(ctx)
}

// Close closes the subscription.
func (s *Subscriber) Close() error {
	return s.pubsub.Close()
}
