package eventstore

import (
	"encoding/json"
	"sort"
	"time"
)

// DefaultHistoryLimit bounds history queries without an explicit limit.
const DefaultHistoryLimit = 20

const statusRunning = "running"

// BuildSummary is the read model of one build.
type BuildSummary struct {
	BuildID     string        `json:"build_id"`
	Trigger     string        `json:"trigger,omitempty"`
	Outcome     string        `json:"outcome"` // running until a terminal event arrives
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Posts       int           `json:"posts"`
	Pages       int           `json:"pages"`
	ErrorStage  string        `json:"error_stage,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Project folds events (in insertion order) into summaries, newest start first.
// Undecodable payloads are ignored; the event type alone still moves the state.
func Project(events []Event) []BuildSummary {
	byID := make(map[string]*BuildSummary)
	var order []string

	for _, e := range events {
		s, ok := byID[e.BuildID]
		if !ok {
			s = &BuildSummary{BuildID: e.BuildID, Outcome: statusRunning, StartedAt: e.Timestamp}
			byID[e.BuildID] = s
			order = append(order, e.BuildID)
		}
		apply(s, e)
	}

	out := make([]BuildSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

func apply(s *BuildSummary, e Event) {
	switch e.Type {
	case TypeBuildStarted:
		var p BuildStarted
		_ = json.Unmarshal(e.Payload, &p)
		s.Trigger = p.Trigger
		s.StartedAt = e.Timestamp
	case TypeBuildCompleted:
		var p BuildCompleted
		_ = json.Unmarshal(e.Payload, &p)
		s.Outcome = p.Outcome
		if s.Outcome == "" {
			s.Outcome = "success"
		}
		s.Posts = p.Posts
		s.Pages = p.Pages
		finish(s, e.Timestamp, p.DurationMS)
	case TypeBuildFailed:
		var p BuildFailed
		_ = json.Unmarshal(e.Payload, &p)
		s.Outcome = p.Outcome
		if s.Outcome == "" {
			s.Outcome = "failed"
		}
		s.ErrorStage = p.Stage
		s.Error = p.Error
		finish(s, e.Timestamp, p.DurationMS)
	}
}

func finish(s *BuildSummary, at time.Time, durationMS int64) {
	t := at
	s.CompletedAt = &t
	if durationMS > 0 {
		s.Duration = time.Duration(durationMS) * time.Millisecond
		return
	}
	s.Duration = at.Sub(s.StartedAt)
}
