package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventProfileUpserted   EventType = "profile.upserted"
	EventProfileDeleted    EventType = "profile.deleted"
	EventExperienceAdded   EventType = "profile.experience.added"
	EventExperienceRemoved EventType = "profile.experience.removed"
	EventEducationAdded    EventType = "profile.education.added"
	EventEducationRemoved  EventType = "profile.education.removed"
	EventAccountDeleted    EventType = "account.deleted"
)

type Event struct {
	EventType  EventType  `json:"event_type"`
	UserID     uuid.UUID  `json:"user_id"`
	EntryID    *uuid.UUID `json:"entry_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// EventPublisher delivers domain events to whoever else cares about profiles
// and accounts (post cleanup, search indexing).
type EventPublisher interface {
	PublishProfileEvent(ctx context.Context, e Event) error
	PublishAccountEvent(ctx context.Context, e Event) error
}
