package service

import (
	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// ISender is the hub-facing side of the stream. Implemented by the
// websocket hub; faked in tests.
type ISender interface {
	Send(sessionID uuid.UUID, event dto.StreamEvent)
}

// IStreamService pushes progress events to stream subscribers. Events for
// one session are emitted in order from a single goroutine; delivery is
// at-most-once with no replay.
type IStreamService interface {
	Emit(sessionId uuid.UUID, eventType string, payload map[string]interface{})
	EmitStatus(sessionId uuid.UUID, status, step string)
	EmitComplete(sessionId uuid.UUID, payload map[string]interface{})
	EmitError(sessionId uuid.UUID, message string)
}

type streamService struct {
	sender ISender
	logger logger.ILogger
}

func NewStreamService(sender ISender, log logger.ILogger) IStreamService {
	return &streamService{
		sender: sender,
		logger: log,
	}
}

func (s *streamService) Emit(sessionId uuid.UUID, eventType string, payload map[string]interface{}) {
	s.logger.Debug("Stream", "Emitting event", map[string]interface{}{
		"session_id": sessionId,
		"type":       eventType,
	})
	s.sender.Send(sessionId, dto.StreamEvent{
		Type:      eventType,
		SessionId: sessionId,
		Payload:   payload,
	})
}

func (s *streamService) EmitStatus(sessionId uuid.UUID, status, step string) {
	s.Emit(sessionId, constant.StreamEventStatus, map[string]interface{}{
		"status":       status,
		"current_step": step,
	})
}

func (s *streamService) EmitComplete(sessionId uuid.UUID, payload map[string]interface{}) {
	s.Emit(sessionId, constant.StreamEventComplete, payload)
}

func (s *streamService) EmitError(sessionId uuid.UUID, message string) {
	s.Emit(sessionId, constant.StreamEventError, map[string]interface{}{
		"message": message,
	})
}
