package notifications

import (
	"context"
	"fmt"
	"time"

	"parkly/internal/reservations"
	"parkly/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaProducerConfig contains configuration for the lifecycle event producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "reservations.events",
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

func (c *KafkaProducerConfig) saramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = c.RequiredAcks
	cfg.Producer.Compression = c.CompressionType
	cfg.Producer.Retry.Max = c.RetryMax
	cfg.Producer.Timeout = c.Timeout
	cfg.Producer.Idempotent = c.IdempotentWrites
	cfg.Producer.MaxMessageBytes = c.MaxMessageBytes
	if c.IdempotentWrites {
		cfg.Net.MaxOpenRequests = 1
	}
	// key is the spot id, so one spot's events stay ordered
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg
}

// EventProducer publishes reservation lifecycle events. It implements
// reservations.EventPublisher.
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewKafkaEventProducer(config *KafkaProducerConfig) (*EventProducer, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, config.saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewEventProducer(producer, config.Topic), nil
}

// NewEventProducer wraps an existing sync producer.
func NewEventProducer(producer sarama.SyncProducer, topic string) *EventProducer {
	p := &EventProducer{
		producer: producer,
		topic:    topic,
		log:      logger.GetDefault().WithComponent("events"),
	}
	p.log.Info("kafka event producer ready", "topic", topic)
	return p
}

func (p *EventProducer) PublishReservationEvent(ctx context.Context, evt reservations.Event) error {
	msg := NewReservationMessage(evt)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(msg.PartitionKey()),
		Value:     sarama.ByteEncoder(body),
		Headers:   p.headers(msg),
		Timestamp: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to send event to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "event published",
		"type", msg.EventType,
		"reservation_id", msg.ReservationID,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *EventProducer) headers(msg *ReservationMessage) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(msg.EventType)},
		{Key: []byte("reservation_id"), Value: []byte(msg.ReservationID)},
		{Key: []byte("version"), Value: []byte(messageVersion)},
		{Key: []byte("producer"), Value: []byte("parkly")},
	}
}

func (p *EventProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	p.log.Info("kafka event producer closed")
	return nil
}
