package service

import (
	"context"
	"testing"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/pkg/executor"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// stubExecutor lets a test script the run outcome.
type stubExecutor struct {
	result *executor.Result
	err    error
}

func (s *stubExecutor) Run(ctx context.Context, job executor.Job, hooks executor.Hooks) (*executor.Result, error) {
	return s.result, s.err
}

func newConsumer(f *lifecycleFixture, exec executor.Executor) *consumerService {
	return &consumerService{
		topicName:   "RUN_RESEARCH",
		uowFactory:  f.factory,
		lifecycle:   f.svc,
		stream:      NewStreamService(f.sender, testLogger{}),
		recorder:    NewRecorderService(f.factory, testLogger{}),
		runRegistry: f.registry,
		executor:    exec,
		logger:      testLogger{},
	}
}

func TestRunSessionCompletesEndToEnd(t *testing.T) {
	f := newLifecycleFixture()
	userId := uuid.New()
	id := f.createSession(t, userId)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, userId, id)
	assert.NoError(t, err)

	cs := newConsumer(f, executor.NewSimulatedExecutor(0))
	cs.runSession(ctx, dto.RunResearchMessage{SessionId: id, UserId: userId})

	detail, err := f.svc.Show(ctx, userId, id)
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusCompleted, detail.Status)
	assert.NotEmpty(t, detail.FinalReport)
	assert.NotEmpty(t, detail.ReportPlan)
	assert.Equal(t, int64(3), detail.TaskCount)
	assert.Equal(t, int64(3), detail.CompletedTasks)
	assert.Equal(t, int64(3), detail.SourceCount)
	assert.Equal(t, int64(3), detail.CitedSources)
	assert.False(t, f.registry.IsActive(id))

	tasks, err := f.svc.Tasks(ctx, userId, id)
	assert.NoError(t, err)
	for _, task := range tasks {
		assert.Equal(t, constant.TaskStatusCompleted, task.Status)
		assert.NotEmpty(t, task.Learnings)
	}

	// Terminal payloads are emitted only after completion is durable, and
	// "complete" is the last event on the wire.
	events := f.sender.sent()
	n := len(events)
	assert.GreaterOrEqual(t, n, 3)
	assert.Equal(t, constant.StreamEventReport, events[n-3].Type)
	assert.Equal(t, constant.StreamEventKnowledgeGraph, events[n-2].Type)
	assert.Equal(t, constant.StreamEventComplete, events[n-1].Type)
}

func TestRunSessionSkippedWhenPausedBeforePickup(t *testing.T) {
	f := newLifecycleFixture()
	userId := uuid.New()
	id := f.createSession(t, userId)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, userId, id)
	assert.NoError(t, err)
	_, err = f.svc.Pause(ctx, userId, id)
	assert.NoError(t, err)

	before := len(f.sender.sent())
	cs := newConsumer(f, executor.NewSimulatedExecutor(0))
	cs.runSession(ctx, dto.RunResearchMessage{SessionId: id, UserId: userId})

	detail, err := f.svc.Show(ctx, userId, id)
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusPaused, detail.Status)
	assert.Len(t, f.sender.sent(), before)
	assert.False(t, f.registry.IsActive(id))
}

func TestRunSessionSkippedWhenSessionDeleted(t *testing.T) {
	f := newLifecycleFixture()
	cs := newConsumer(f, executor.NewSimulatedExecutor(0))

	// Must not panic or emit anything for a session that no longer exists.
	cs.runSession(context.Background(), dto.RunResearchMessage{SessionId: uuid.New()})
	assert.Empty(t, f.sender.sent())
}

func TestRunSessionFailurePersistsBeforeErrorEvent(t *testing.T) {
	f := newLifecycleFixture()
	userId := uuid.New()
	id := f.createSession(t, userId)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, userId, id)
	assert.NoError(t, err)

	cs := newConsumer(f, &stubExecutor{err: assert.AnError})
	cs.runSession(ctx, dto.RunResearchMessage{SessionId: id, UserId: userId})

	detail, err := f.svc.Show(ctx, userId, id)
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusFailed, detail.Status)
	wantMessage := "executor run failed: " + assert.AnError.Error()
	assert.Equal(t, wantMessage, detail.ErrorMessage)

	events := f.sender.sent()
	last := events[len(events)-1]
	assert.Equal(t, constant.StreamEventError, last.Type)
	assert.Equal(t, wantMessage, last.Payload["message"])
}

func TestRunSessionCancelledIsNotAFailure(t *testing.T) {
	f := newLifecycleFixture()
	userId := uuid.New()
	id := f.createSession(t, userId)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, userId, id)
	assert.NoError(t, err)

	cs := newConsumer(f, &stubExecutor{err: executor.ErrCancelled})
	cs.runSession(ctx, dto.RunResearchMessage{SessionId: id, UserId: userId})

	detail, err := f.svc.Show(ctx, userId, id)
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusThinking, detail.Status)
	assert.Empty(t, detail.ErrorMessage)
	assert.False(t, f.registry.IsActive(id))

	for _, event := range f.sender.sent() {
		assert.NotEqual(t, constant.StreamEventError, event.Type)
	}
}

func TestRunSessionContinuationCarriesPriorContext(t *testing.T) {
	f := newLifecycleFixture()
	userId := uuid.New()
	id := f.createSession(t, userId)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, userId, id)
	assert.NoError(t, err)

	cs := newConsumer(f, executor.NewSimulatedExecutor(0))
	cs.runSession(ctx, dto.RunResearchMessage{SessionId: id, UserId: userId})

	_, err = f.svc.Continue(ctx, userId, &dto.ContinueResearchRequest{
		Id:       id,
		Question: "What changed in the last year?",
	})
	assert.NoError(t, err)

	cs.runSession(ctx, dto.RunResearchMessage{SessionId: id, UserId: userId, Resume: true})

	detail, err := f.svc.Show(ctx, userId, id)
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusCompleted, detail.Status)
	assert.Contains(t, detail.FinalReport, "What changed in the last year?")
	assert.Contains(t, detail.FinalReport, "## Prior context")

	// The continuation re-plans, so the session accumulates a second batch
	// of tasks next to the first run's.
	count, err := f.factory.uow.tasks.Count(ctx, specification.BySessionID{SessionID: id})
	assert.NoError(t, err)
	assert.Equal(t, int64(6), count)
}
