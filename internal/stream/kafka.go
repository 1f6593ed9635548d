// Package stream fans fresh price data out to downstream consumers over
// Kafka. Publishing is best-effort and optional; the alert pipeline does
// not depend on it.
package stream

import (
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
)

// PriceUpdate is the per-instrument message published on the topic.
type PriceUpdate struct {
	Exchange  string  `json:"exchange"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// Publisher produces snapshot entries to a Kafka topic.
type Publisher struct {
	producer *kafka.Producer
	topic    string
	exchange string
}

func NewPublisher(broker, topic string) (*Publisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": broker})
	if err != nil {
		return nil, err
	}
	return &Publisher{producer: producer, topic: topic, exchange: "coingecko"}, nil
}

// PublishSnapshot sends one PriceUpdate per snapshot entry. Individual
// produce failures are logged and skipped.
func (p *Publisher) PublishSnapshot(cryptos []models.Crypto) {
	now := time.Now().Format(time.RFC3339)

	for _, c := range cryptos {
		update := PriceUpdate{
			Exchange:  p.exchange,
			Symbol:    c.Symbol,
			Price:     c.Price,
			Timestamp: now,
		}

		value, err := json.Marshal(update)
		if err != nil {
			logger.Log.Warn("Error marshaling price update", zap.Error(err))
			continue
		}

		err = p.producer.Produce(&kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
			Value:          value,
		}, nil)
		if err != nil {
			logger.Log.Warn("Error producing Kafka message",
				zap.String("symbol", c.Symbol),
				zap.Error(err),
			)
		}
	}
}

// Close flushes pending messages and shuts the producer down.
func (p *Publisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
