package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/pkg/logger"
)

const (
	defaultMaxAttempts = 5
	defaultBackoff     = 500 * time.Millisecond
	maxBackoff         = 30 * time.Second
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type EventHandler interface {
	Execute(ctx context.Context, e service.Event) error
}

// AccountEventConsumer feeds account events to a handler one at a time.
// A message is committed only once handled, and the next message is not
// fetched before that: a commit moves the group offset past everything
// before it on the partition.
type AccountEventConsumer struct {
	reader      MessageReader
	handler     EventHandler
	logger      logger.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewAccountEventConsumer(reader MessageReader, handler EventHandler, log logger.Logger) *AccountEventConsumer {
	return &AccountEventConsumer{
		reader:      reader,
		handler:     handler,
		logger:      log,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// Run consumes until ctx is cancelled, which returns nil. It returns an error
// when a message still fails after every retry; that message stays
// uncommitted so the group hands it out again once the worker restarts.
func (c *AccountEventConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}

		if err := c.HandleMessage(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d of partition %d: %w", msg.Offset, msg.Partition, err)
		}
	}
}

// HandleMessage decodes msg and runs the handler, retrying with exponential
// backoff. Undecodable payloads are logged and reported as handled.
func (c *AccountEventConsumer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	log := c.logger.With(
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("key", string(msg.Key)),
	)

	var e service.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		log.Error("Failed to unmarshal event, skipping", err)
		return nil
	}

	wait := c.backoff
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = c.handler.Execute(ctx, e); err == nil {
			return nil
		}
		log.Warn("Failed to process event",
			zap.String("event_type", string(e.EventType)),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == c.maxAttempts {
			break
		}
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
		wait = min(wait*2, maxBackoff)
	}
	return errors.Join(fmt.Errorf("event %s for user %s failed after %d attempts", e.EventType, e.UserID, c.maxAttempts), err)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
