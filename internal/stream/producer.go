// Package stream publishes reservation lifecycle events to Kafka so
// downstream systems (audit, analytics, capacity dashboards) can follow
// what happened to the ledger without querying the API.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"examly/internal/reservations"

	"github.com/IBM/sarama"
)

// ProducerConfig contains configuration for the Kafka lifecycle producer
type ProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultProducerConfig returns a default producer configuration
func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "reservation-events",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// Producer publishes lifecycle events to Kafka. It satisfies
// reservations.EventPublisher.
type Producer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
}

// NewProducer creates a Kafka-backed lifecycle event producer
func NewProducer(config *ProducerConfig) (*Producer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash by slot so all events for one slot land on one partition,
	// in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("Kafka lifecycle event producer created for topic %s", config.Topic)
	return &Producer{
		producer: producer,
		config:   config,
	}, nil
}

// PublishLifecycle sends one reservation lifecycle event to the topic
func (p *Producer) PublishLifecycle(ctx context.Context, event reservations.LifecycleEvent) error {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(event.SlotID),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   p.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send lifecycle event to Kafka: %w", err)
	}

	log.Printf("Lifecycle event published - Topic: %s, Partition: %d, Offset: %d, Type: %s, Reservation: %s",
		p.config.Topic, partition, offset, event.Type, event.ReservationID)

	return nil
}

func (p *Producer) createHeaders(event reservations.LifecycleEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("reservation_id"), Value: []byte(event.ReservationID)},
		{Key: []byte("slot_id"), Value: []byte(event.SlotID)},
		{Key: []byte("user_id"), Value: []byte(event.UserID)},
		{Key: []byte("producer"), Value: []byte("examly-api")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
		log.Printf("Kafka lifecycle event producer closed")
	}
	return nil
}

// HealthCheck validates the producer is usable
func (p *Producer) HealthCheck(ctx context.Context) error {
	if p.producer == nil {
		return fmt.Errorf("health check failed - producer is nil")
	}
	if p.config.Topic == "" {
		return fmt.Errorf("health check failed - topic not configured")
	}
	return nil
}
