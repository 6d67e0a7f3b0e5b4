package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "RESEARCH_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Research lifecycle event types.
const (
	ResearchStarted   = "RESEARCH_STARTED"
	ResearchPaused    = "RESEARCH_PAUSED"
	ResearchResumed   = "RESEARCH_RESUMED"
	ResearchCompleted = "RESEARCH_COMPLETED"
	ResearchFailed    = "RESEARCH_FAILED"
	ResearchContinued = "RESEARCH_CONTINUED"
	ResearchRestored  = "RESEARCH_RESTORED"
)

// NewResearchEvent builds a lifecycle event carrying the session id and
// whatever extra fields the transition produced.
func NewResearchEvent(eventType, sessionId string, extra map[string]interface{}) Event {
	data := map[string]interface{}{
		"session_id": sessionId,
	}
	for k, v := range extra {
		data[k] = v
	}
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
