package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// Event types.
const (
	TypeBuildStarted   = "build.started"
	TypeBuildCompleted = "build.completed"
	TypeBuildFailed    = "build.failed"
)

// Event is a single stored build event.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   json.RawMessage
}

// BuildStarted is the payload of a build.started event.
type BuildStarted struct {
	Trigger string `json:"trigger"` // cli|preview|schedule|startup
}

// BuildCompleted is the payload of a build.completed event.
type BuildCompleted struct {
	Outcome    string `json:"outcome"`
	Posts      int    `json:"posts"`
	Pages      int    `json:"pages"`
	DurationMS int64  `json:"duration_ms"`
	Warnings   int    `json:"warnings,omitempty"`
}

// BuildFailed is the payload of a build.failed event.
type BuildFailed struct {
	Outcome    string `json:"outcome"`
	Stage      string `json:"stage,omitempty"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
}

// NewEvent marshals payload into an event for buildID.
func NewEvent(buildID, eventType string, at time.Time, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, errors.StoreError("marshal event payload").
			WithCause(err).
			WithContext("build_id", buildID).
			WithContext("event_type", eventType).
			Build()
	}
	return Event{BuildID: buildID, Type: eventType, Timestamp: at, Payload: raw}, nil
}
