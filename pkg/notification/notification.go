package notification

import (
	"time"

	"github.com/expkit/expkit/pkg/entities"
)

// Type identifies a notification kind.
type Type string

const (
	// Decision is sent when an experiment decision has been made for a
	// visitor. Payload: DecisionPayload.
	Decision Type = "DECISION"

	// Track is sent when a conversion event has been recorded for a
	// visitor. Payload: TrackPayload.
	Track Type = "TRACK"
)

// IsValid reports whether t is a recognized notification type.
func (t Type) IsValid() bool {
	switch t {
	case Decision, Track:
		return true
	}
	return false
}

// LogEvent is the impression or conversion record the surrounding SDK hands
// to its event dispatcher. The decision core only produces it.
type LogEvent struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Params    map[string]any `json:"params,omitempty"`
}

// DecisionPayload carries the outcome of an experiment decision.
type DecisionPayload struct {
	Experiment entities.Experiment
	UserID     string
	Attributes map[string]any
	Variation  entities.Variation
	Event      LogEvent
}

// TrackPayload carries a recorded conversion event.
type TrackPayload struct {
	EventKey   string
	UserID     string
	Attributes map[string]any
	EventTags  map[string]any
	Event      LogEvent
}
