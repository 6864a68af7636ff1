// Package notify publishes build lifecycle notifications.
package notify

import (
	"context"
	"time"
)

// BuildEvent is the message published when a build finishes.
type BuildEvent struct {
	BuildID    string    `json:"build_id"`
	Outcome    string    `json:"outcome"` // success|warning|failed|canceled
	Trigger    string    `json:"trigger,omitempty"`
	Posts      int       `json:"posts"`
	Pages      int       `json:"pages"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	OutputDir  string    `json:"output_dir,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier publishes build events.
type Notifier interface {
	Publish(ctx context.Context, ev BuildEvent) error
	Close() error
}

// NoopNotifier discards events.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, BuildEvent) error { return nil }
func (NoopNotifier) Close() error                              { return nil }
