package service

import (
	"context"
	"encoding/json"
	"errors"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/apperror"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/executor"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the run queue and drives the executor for each
// session. One message equals one run (cold start, resume or continuation).
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	uowFactory  unitofwork.RepositoryFactory
	lifecycle   ILifecycleService
	stream      IStreamService
	recorder    executor.Recorder
	runRegistry *memory.RunRegistry
	executor    executor.Executor
	logger      logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	lifecycle ILifecycleService,
	stream IStreamService,
	recorder executor.Recorder,
	runRegistry *memory.RunRegistry,
	exec executor.Executor,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		uowFactory:  uowFactory,
		lifecycle:   lifecycle,
		stream:      stream,
		recorder:    recorder,
		runRegistry: runRegistry,
		executor:    exec,
		logger:      log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RunResearchMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal run message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("Consumer", "Run picked up", map[string]interface{}{
		"session_id": payload.SessionId,
		"resume":     payload.Resume,
	})

	cs.runSession(ctx, payload)
	msg.Ack()
}

func (cs *consumerService) runSession(ctx context.Context, payload dto.RunResearchMessage) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: payload.SessionId})
	if err != nil {
		cs.logger.Error("Consumer", "Failed to load session", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		return
	}
	if session == nil {
		// Deleted between enqueue and pickup.
		cs.runRegistry.Clear(payload.SessionId)
		return
	}

	// The session may have been paused between enqueue and pickup.
	if !constant.IsActiveSessionStatus(session.Status) {
		cs.logger.Info("Consumer", "Run skipped, session no longer active", map[string]interface{}{
			"session_id": session.Id,
			"status":     session.Status,
		})
		cs.runRegistry.Clear(session.Id)
		return
	}
	if cs.runRegistry.Cancelled(session.Id) {
		cs.runRegistry.Clear(session.Id)
		return
	}

	job := executor.Job{
		SessionId: session.Id,
		UserId:    session.UserId,
		Question:  session.Question,
	}
	if payload.Resume && session.StateSnapshot != nil {
		job.ResumePhase = session.StateSnapshot.Phase
		job.ResumeStep = session.StateSnapshot.Step
		if session.StateSnapshot.Continuation != nil {
			job.ContinuationContext = session.StateSnapshot.Continuation.Context
		}
	}

	hooks := executor.Hooks{
		Phase: func(ctx context.Context, phase, step string) error {
			return cs.lifecycle.AdvancePhase(ctx, session.Id, phase, step)
		},
		Emit: func(event executor.Event) {
			cs.stream.Emit(session.Id, event.Type, event.Payload)
		},
		Cancelled: func() bool {
			return cs.runRegistry.Cancelled(session.Id)
		},
		Recorder: cs.recorder,
	}

	result, runErr := cs.executor.Run(ctx, job, hooks)
	if runErr != nil {
		cs.handleRunError(ctx, session.Id, runErr)
		return
	}

	if err := cs.lifecycle.CompleteRun(ctx, session.Id, result); err != nil {
		cs.handleRunError(ctx, session.Id, err)
		return
	}

	// Final payload only after completion is durable, so a subscriber that
	// sees "complete" can immediately re-fetch the finished session.
	cs.stream.Emit(session.Id, constant.StreamEventReport, map[string]interface{}{
		"final_report": result.FinalReport,
	})
	cs.stream.Emit(session.Id, constant.StreamEventKnowledgeGraph, map[string]interface{}{
		"knowledge_graph": result.KnowledgeGraph,
	})
	cs.stream.EmitComplete(session.Id, map[string]interface{}{
		"status": constant.SessionStatusCompleted,
	})
}

func (cs *consumerService) handleRunError(ctx context.Context, sessionId uuid.UUID, runErr error) {
	if errors.Is(runErr, executor.ErrCancelled) {
		// Pause already transitioned the session; the run just stops.
		cs.logger.Info("Consumer", "Run cancelled", map[string]interface{}{"session_id": sessionId})
		cs.runRegistry.Clear(sessionId)
		return
	}

	if apperror.IsKind(runErr, apperror.KindInvalidTransition) {
		// A phase hook lost to a concurrent pause or delete. The session is
		// already in the state the user asked for.
		cs.logger.Info("Consumer", "Run aborted by concurrent transition", map[string]interface{}{
			"session_id": sessionId,
			"error":      runErr.Error(),
		})
		cs.runRegistry.Clear(sessionId)
		return
	}

	failure := apperror.ExecutorFailure(runErr, "executor run failed: %v", runErr)
	cs.logger.Error("Consumer", "Run failed", map[string]interface{}{
		"session_id": sessionId,
		"error":      failure.Error(),
	})

	// Persist the failure before telling subscribers about it.
	if err := cs.lifecycle.FailRun(ctx, sessionId, failure.Message); err != nil {
		cs.logger.Error("Consumer", "Failed to record run failure", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		cs.runRegistry.Clear(sessionId)
		return
	}
	cs.stream.EmitError(sessionId, failure.Message)
}
