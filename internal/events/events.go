package events

import (
	"context"
	"time"
)

// Group event actions.
const (
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// GroupEvent announces that a group changed so other instances can drop stale cache entries.
type GroupEvent struct {
	GroupID   string    `json:"groupId"`
	Action    string    `json:"action"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier publishes group events.
type Notifier interface {
	Publish(ctx context.Context, event GroupEvent) error
	Close()
}

// NoopNotifier is used when no message broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, GroupEvent) error { return nil }

func (NoopNotifier) Close() {}
