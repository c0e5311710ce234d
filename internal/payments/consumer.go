package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parkly/pkg/logger"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeout    time.Duration
	Heartbeat         time.Duration
	MaxProcessingTime time.Duration
	OffsetOldest      bool
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           []string{"localhost:9092"},
		GroupID:           "parkly-payments",
		Topics:            []string{"payments.confirmed"},
		SessionTimeout:    30 * time.Second,
		Heartbeat:         3 * time.Second,
		MaxProcessingTime: time.Minute,
		OffsetOldest:      true,
	}
}

// Consumer reads payment confirmations from a consumer group.
type Consumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler *Handler
	log     *logger.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewConsumer(config *ConsumerConfig, handler *Handler) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:   group,
		topics:  config.Topics,
		handler: handler,
		log:     logger.GetDefault().WithComponent("payments"),
	}, nil
}

// Start consumes in the background until Stop is called.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.log.Error("consumer group error", "error", err)
		}
	}()
	go func() {
		defer c.wg.Done()
		for {
			if err := c.group.Consume(ctx, c.topics, c); err != nil {
				c.log.Error("consume failed", "error", err)
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	c.log.Info("payment consumer started", "topics", c.topics)
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	c.log.Info("payment consumer stopped")
	return nil
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every handled message, failed ones included, so a poison
// message cannot stall its partition.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := c.handler.Handle(session.Context(), message.Value); err != nil {
				if session.Context().Err() != nil {
					return nil
				}
				c.log.Error("payment message dropped",
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err,
				)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
