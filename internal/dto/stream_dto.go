package dto

import "github.com/google/uuid"

// StreamEvent is the envelope pushed to websocket subscribers. One JSON
// object per message; Type drives client-side dispatch.
type StreamEvent struct {
	Type      string                 `json:"type"`
	SessionId uuid.UUID              `json:"session_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
