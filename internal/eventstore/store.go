package eventstore

import "context"

// Store persists build events and answers history queries.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, e Event) error

	// ByBuildID retrieves all events for a specific build in insertion order.
	ByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// Builds projects the most recent builds, newest first.
	Builds(ctx context.Context, limit int) ([]BuildSummary, error)

	// Close releases the underlying database.
	Close() error
}
