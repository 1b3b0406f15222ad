package outbound

import (
	"context"
	"time"
)

// LifecycleEvent describes one completed transition.
type LifecycleEvent struct {
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"`
	Details     string    `json:"details,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// LifecycleEventPublisher fans completed transitions out to live subscribers.
// Publish must not block the caller.
type LifecycleEventPublisher interface {
	Publish(ctx context.Context, event LifecycleEvent)
}

type NoopLifecycleEventPublisher struct{}

func (NoopLifecycleEventPublisher) Publish(context.Context, LifecycleEvent) {}
