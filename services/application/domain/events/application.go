package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the application repository.
const (
	TopicApplicationCreated = "application.created"
	TopicApplicationDeleted = "application.deleted"
)

// ApplicationCreatedEvent is published after a new Application is persisted.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicApplicationCreated).
type ApplicationCreatedEvent struct {
	EventID       uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version       int       `json:"version"`  // Schema version; increment on breaking changes
	ApplicationID string    `json:"application_id"`
	Name          string    `json:"name"`
	Domains       []string  `json:"domains"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ApplicationDeletedEvent is published after an Application row is removed.
type ApplicationDeletedEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Version       int       `json:"version"`
	ApplicationID string    `json:"application_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}
