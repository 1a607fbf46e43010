package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/pkg/logger"
)

// NoopPublisher logs events instead of sending them. It stands in for Kafka
// when no brokers are configured.
type NoopPublisher struct {
	logger logger.Logger
}

func NewNoopPublisher(log logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: log}
}

func (p *NoopPublisher) PublishProfileEvent(_ context.Context, e service.Event) error {
	p.logger.Debug("Dropping profile event", zap.String("event_type", string(e.EventType)), zap.String("user_id", e.UserID.String()))
	return nil
}

func (p *NoopPublisher) PublishAccountEvent(_ context.Context, e service.Event) error {
	p.logger.Debug("Dropping account event", zap.String("event_type", string(e.EventType)), zap.String("user_id", e.UserID.String()))
	return nil
}
