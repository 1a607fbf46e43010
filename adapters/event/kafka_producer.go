package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/internal/config"
	"github.com/hurmain7/devconnect/pkg/logger"
)

const (
	TopicProfileEvents = "profile.events"
	TopicAccountEvents = "account.events"
)

type KafkaProducerClient struct {
	ProfileEventsWriter *kafka.Writer
	AccountEventsWriter *kafka.Writer
	logger              logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'profile.events'
	profileWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicProfileEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	// writer 'account.events'
	accountWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicAccountEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.")

	return &KafkaProducerClient{
		ProfileEventsWriter: profileWriter,
		AccountEventsWriter: accountWriter,
		logger:              log,
	}, nil
}

func (c *KafkaProducerClient) PublishProfileEvent(ctx context.Context, e service.Event) error {
	return publish(ctx, c.ProfileEventsWriter, e)
}

func (c *KafkaProducerClient) PublishAccountEvent(ctx context.Context, e service.Event) error {
	return publish(ctx, c.AccountEventsWriter, e)
}

// publish keys messages by user id so one user's events stay ordered within
// a partition.
func publish(ctx context.Context, w *kafka.Writer, e service.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.EventType, err)
	}
	err = w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.UserID.String()),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write %s event to %s: %w", e.EventType, w.Topic, err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.ProfileEventsWriter != nil {
		if err := c.ProfileEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close profile events writer", err)
		}
	}
	if c.AccountEventsWriter != nil {
		if err := c.AccountEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close account events writer", err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
}
