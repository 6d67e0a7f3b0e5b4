package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/apperror"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/events"
	"ai-research-be/pkg/executor"
	pktNats "ai-research-be/pkg/nats"

	"github.com/google/uuid"
)

// maxTransitionAttempts bounds the internal retry loop around the
// compare-and-swap. Conflicts beyond this surface to the caller.
const maxTransitionAttempts = 3

// defaultEstimatedDuration is the initial estimate in minutes for a fresh run.
const defaultEstimatedDuration = 10

type ILifecycleService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateResearchRequest) (*dto.ResearchDetailResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ResearchListItemResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ResearchDetailResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateResearchRequest) (*dto.ResearchDetailResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	Start(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ResearchDetailResponse, error)
	Pause(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ResearchDetailResponse, error)
	Resume(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ResearchDetailResponse, error)
	Continue(ctx context.Context, userId uuid.UUID, req *dto.ContinueResearchRequest) (*dto.ResearchDetailResponse, error)

	Tasks(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.ResearchTaskResponse, error)
	Sources(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.ResearchSourceResponse, error)

	// Run-side transitions, driven by the consumer on behalf of the executor.
	AdvancePhase(ctx context.Context, sessionId uuid.UUID, phase, step string) error
	CompleteRun(ctx context.Context, sessionId uuid.UUID, result *executor.Result) error
	FailRun(ctx context.Context, sessionId uuid.UUID, reason string) error
}

type lifecycleService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	streamService    IStreamService
	runRegistry      *memory.RunRegistry
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewLifecycleService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	streamService IStreamService,
	runRegistry *memory.RunRegistry,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ILifecycleService {
	return &lifecycleService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		streamService:    streamService,
		runRegistry:      runRegistry,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

// --- CRUD ---

func (s *lifecycleService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateResearchRequest) (*dto.ResearchDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ResearchSession{
		Id:                uuid.New(),
		UserId:            userId,
		WorkspaceId:       req.WorkspaceId,
		Title:             req.Title,
		Description:       req.Description,
		Question:          req.Question,
		Status:            constant.SessionStatusDraft,
		EstimatedDuration: defaultEstimatedDuration,
		CreatedAt:         time.Now(),
	}

	// A draft has no history yet; version 1 is created by Start.
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Lifecycle", "Research session created", map[string]interface{}{
		"session_id": session.Id,
		"user_id":    userId,
	})

	return s.toDetail(session, nil), nil
}

func (s *lifecycleService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ResearchListItemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ResearchListItemResponse, len(sessions))
	for i, session := range sessions {
		result[i] = &dto.ResearchListItemResponse{
			Id:          session.Id,
			Title:       session.Title,
			Question:    session.Question,
			Status:      session.Status,
			CurrentStep: session.CurrentStep,
			CreatedAt:   session.CreatedAt,
			UpdatedAt:   session.UpdatedAt,
		}
	}
	return result, nil
}

func (s *lifecycleService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ResearchDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	counters, err := s.computeCounters(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	return s.toDetail(session, counters), nil
}

func (s *lifecycleService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateResearchRequest) (*dto.ResearchDetailResponse, error) {
	session, err := s.transition(ctx, req.Id, &userId, nil, constant.ChangeTypeManual, "edited", func(session *entity.ResearchSession) error {
		if req.Question != nil && session.Status != constant.SessionStatusDraft {
			return apperror.InvalidTransition(session.Status, "the question can only change while the session is a draft")
		}
		if req.Title != nil {
			session.Title = *req.Title
		}
		if req.Description != nil {
			session.Description = *req.Description
		}
		if req.Question != nil {
			session.Question = *req.Question
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDetail(session, nil), nil
}

func (s *lifecycleService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	if s.runRegistry.IsActive(session.Id) {
		s.runRegistry.RequestCancel(session.Id)
	}
	return uow.SessionRepository().Delete(ctx, session.Id)
}

// --- Lifecycle transitions ---

func (s *lifecycleService) Start(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ResearchDetailResponse, error) {
	allowed := []string{constant.SessionStatusDraft, constant.SessionStatusFailed}

	session, err := s.transition(ctx, id, &userId, allowed, constant.ChangeTypeAuto, constant.StepInitialization, func(session *entity.ResearchSession) error {
		now := time.Now()
		session.Status = constant.SessionStatusThinking
		session.CurrentStep = "analyzing_question"
		session.StartedAt = &now
		session.PausedAt = nil
		session.CompletedAt = nil
		session.ErrorMessage = ""
		session.StateSnapshot = nil
		session.ActualDuration = 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.enqueueRun(ctx, session, false); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.ResearchStarted, session.Id, nil)
	s.streamService.EmitStatus(session.Id, session.Status, session.CurrentStep)

	return s.toDetail(session, nil), nil
}

func (s *lifecycleService) Pause(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ResearchDetailResponse, error) {
	session, err := s.transition(ctx, id, &userId, constant.ActiveSessionStatuses, constant.ChangeTypeManual, constant.StepPaused, func(session *entity.ResearchSession) error {
		now := time.Now()
		snapshot := session.StateSnapshot
		if snapshot == nil {
			snapshot = &entity.StateSnapshot{}
		}
		// Capture the phase we are leaving so resume lands back in it.
		snapshot.Phase = session.Status
		snapshot.Step = session.CurrentStep

		session.StateSnapshot = snapshot
		session.Status = constant.SessionStatusPaused
		session.PausedAt = &now
		if session.ActualDuration == 0 {
			session.ActualDuration = elapsedMinutes(session.StartedAt, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Raise the cancellation flag after the paused status is durable. The
	// executor observes it between steps and stops cleanly.
	s.runRegistry.RequestCancel(session.Id)

	s.publishEvent(ctx, events.ResearchPaused, session.Id, nil)
	s.streamService.EmitStatus(session.Id, session.Status, session.CurrentStep)

	return s.toDetail(session, nil), nil
}

func (s *lifecycleService) Resume(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ResearchDetailResponse, error) {
	allowed := []string{constant.SessionStatusPaused}

	session, err := s.transition(ctx, id, &userId, allowed, constant.ChangeTypeManual, constant.StepResumed, func(session *entity.ResearchSession) error {
		phase := constant.SessionStatusThinking
		step := "analyzing_question"
		if session.StateSnapshot != nil && constant.IsActiveSessionStatus(session.StateSnapshot.Phase) {
			phase = session.StateSnapshot.Phase
			if session.StateSnapshot.Step != "" {
				step = session.StateSnapshot.Step
			}
		}
		now := time.Now()
		session.Status = phase
		session.CurrentStep = step
		// Duration accounting restarts with the resumed segment.
		session.StartedAt = &now
		session.PausedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.enqueueRun(ctx, session, true); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.ResearchResumed, session.Id, nil)
	s.streamService.EmitStatus(session.Id, session.Status, session.CurrentStep)

	return s.toDetail(session, nil), nil
}

func (s *lifecycleService) Continue(ctx context.Context, userId uuid.UUID, req *dto.ContinueResearchRequest) (*dto.ResearchDetailResponse, error) {
	allowed := []string{constant.SessionStatusCompleted}

	session, err := s.transition(ctx, req.Id, &userId, allowed, constant.ChangeTypeUserAction, constant.StepContinuationPlanning, func(session *entity.ResearchSession) error {
		now := time.Now()

		reportPrefix := session.FinalReport
		if len(reportPrefix) > constant.ContinuationReportPrefixLen {
			reportPrefix = reportPrefix[:constant.ContinuationReportPrefixLen]
		}

		contextText := fmt.Sprintf("Previous question: %s", session.Question)
		if req.Question != "" {
			contextText += fmt.Sprintf("\nFollow-up question: %s", req.Question)
		}

		session.StateSnapshot = &entity.StateSnapshot{
			Phase: constant.SessionStatusThinking,
			Step:  constant.StepContinuationPlanning,
			Continuation: &entity.ContinuationContext{
				Context:                contextText,
				PreviousReport:         reportPrefix,
				PreviousPlan:           session.ReportPlan,
				AdditionalInstructions: req.AdditionalInstructions,
			},
		}

		// The question only changes when the caller supplies a follow-up.
		if req.Question != "" {
			session.Question = req.Question
		}
		session.Status = constant.SessionStatusThinking
		session.CurrentStep = constant.StepContinuationPlanning
		session.StartedAt = &now
		session.PausedAt = nil
		session.CompletedAt = nil
		session.ActualDuration = 0

		// A continuation builds on existing material, so plan for less work
		// unless the caller sizes it explicitly.
		estimate := session.EstimatedDuration * 7 / 10
		if estimate < 1 {
			estimate = 1
		}
		if req.EstimatedDuration != nil && *req.EstimatedDuration > 0 {
			estimate = *req.EstimatedDuration
		}
		session.EstimatedDuration = estimate
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.enqueueRun(ctx, session, true); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.ResearchContinued, session.Id, map[string]interface{}{
		"question": session.Question,
	})
	s.streamService.EmitStatus(session.Id, session.Status, session.CurrentStep)

	return s.toDetail(session, nil), nil
}

// --- Child listings ---

func (s *lifecycleService) Tasks(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.ResearchTaskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwned(ctx, uow, userId, id); err != nil {
		return nil, err
	}

	tasks, err := uow.TaskRepository().FindAll(ctx,
		specification.BySessionID{SessionID: id},
		specification.OrderBy{Field: "priority", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ResearchTaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = &dto.ResearchTaskResponse{
			Id:              t.Id,
			Query:           t.Query,
			Goal:            t.Goal,
			Type:            t.Type,
			Priority:        t.Priority,
			Status:          t.Status,
			Result:          t.Result,
			Analysis:        t.Analysis,
			Learnings:       t.Learnings,
			ExecutionTimeMs: t.ExecutionTimeMs,
			RetryCount:      t.RetryCount,
			CreatedAt:       t.CreatedAt,
		}
	}
	return result, nil
}

func (s *lifecycleService) Sources(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.ResearchSourceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwned(ctx, uow, userId, id); err != nil {
		return nil, err
	}

	sources, err := uow.SourceRepository().FindAll(ctx,
		specification.BySessionID{SessionID: id},
		specification.OrderBy{Field: "relevance", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ResearchSourceResponse, len(sources))
	for i, src := range sources {
		result[i] = &dto.ResearchSourceResponse{
			Id:            src.Id,
			TaskId:        src.TaskId,
			URL:           src.URL,
			Title:         src.Title,
			Summary:       src.Summary,
			Type:          src.Type,
			Relevance:     src.Relevance,
			Quality:       src.Quality,
			Credibility:   src.Credibility,
			CitedInReport: src.CitedInReport,
			CitationCount: src.CitationCount,
			Tags:          src.Tags,
			CreatedAt:     src.CreatedAt,
		}
	}
	return result, nil
}

// --- Run-side transitions ---

func (s *lifecycleService) AdvancePhase(ctx context.Context, sessionId uuid.UUID, phase, step string) error {
	if !constant.IsActiveSessionStatus(phase) {
		return apperror.Validation(fmt.Sprintf("%s is not a run phase", phase), nil)
	}

	session, err := s.transition(ctx, sessionId, nil, constant.ActiveSessionStatuses, constant.ChangeTypeAuto, step, func(session *entity.ResearchSession) error {
		session.Status = phase
		session.CurrentStep = step
		if session.StateSnapshot == nil {
			session.StateSnapshot = &entity.StateSnapshot{}
		}
		session.StateSnapshot.Phase = phase
		session.StateSnapshot.Step = step
		return nil
	})
	if err != nil {
		return err
	}

	s.streamService.EmitStatus(session.Id, session.Status, session.CurrentStep)
	return nil
}

func (s *lifecycleService) CompleteRun(ctx context.Context, sessionId uuid.UUID, result *executor.Result) error {
	session, err := s.transition(ctx, sessionId, nil, constant.ActiveSessionStatuses, constant.ChangeTypeAuto, constant.StepCompleted, func(session *entity.ResearchSession) error {
		now := time.Now()
		session.Status = constant.SessionStatusCompleted
		session.CurrentStep = constant.StepCompleted
		session.ReportPlan = result.ReportPlan
		session.FinalReport = result.FinalReport
		session.KnowledgeGraph = result.KnowledgeGraph
		session.CompletedAt = &now
		session.PausedAt = nil
		session.StateSnapshot = nil
		if session.ActualDuration == 0 {
			session.ActualDuration = elapsedMinutes(session.StartedAt, now)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runRegistry.Clear(sessionId)
	s.publishEvent(ctx, events.ResearchCompleted, sessionId, map[string]interface{}{
		"actual_duration": session.ActualDuration,
	})
	return nil
}

func (s *lifecycleService) FailRun(ctx context.Context, sessionId uuid.UUID, reason string) error {
	_, err := s.transition(ctx, sessionId, nil, constant.ActiveSessionStatuses, constant.ChangeTypeAuto, constant.StepFailed, func(session *entity.ResearchSession) error {
		now := time.Now()
		session.Status = constant.SessionStatusFailed
		session.CurrentStep = constant.StepFailed
		session.ErrorMessage = reason
		session.CompletedAt = &now
		session.PausedAt = nil
		session.StateSnapshot = nil
		if session.ActualDuration == 0 {
			session.ActualDuration = elapsedMinutes(session.StartedAt, now)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runRegistry.Clear(sessionId)
	s.publishEvent(ctx, events.ResearchFailed, sessionId, map[string]interface{}{
		"reason": reason,
	})
	return nil
}

// --- Internals ---

// transition is the single write path for session status changes. Each
// attempt re-reads the session, validates the source status, applies the
// mutation, then commits the guarded update together with a new history
// version. A concurrency conflict on either write retries from the read.
func (s *lifecycleService) transition(
	ctx context.Context,
	sessionId uuid.UUID,
	userId *uuid.UUID,
	allowedFrom []string,
	changeType, stepName string,
	mutate func(*entity.ResearchSession) error,
) (*entity.ResearchSession, error) {
	var lastErr error

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		uow := s.uowFactory.NewUnitOfWork(ctx)

		specs := []specification.Specification{specification.ByID{ID: sessionId}}
		if userId != nil {
			specs = append(specs, specification.UserOwnedBy{UserID: *userId})
		}
		session, err := uow.SessionRepository().FindOne(ctx, specs...)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, apperror.NotFound("research session %s not found", sessionId)
		}

		expected := session.Status
		if allowedFrom != nil && !containsStatus(allowedFrom, expected) {
			return nil, apperror.InvalidTransition(expected, "operation %q is not allowed from status %s", stepName, expected)
		}

		if err := mutate(session); err != nil {
			return nil, err
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}

		txErr := s.writeTransition(ctx, uow, session, expected, changeType, stepName)
		if txErr != nil {
			_ = uow.Rollback()
			if apperror.IsKind(txErr, apperror.KindConcurrencyConflict) {
				lastErr = txErr
				s.logger.Warn("Lifecycle", "Transition conflict, retrying", map[string]interface{}{
					"session_id": sessionId,
					"attempt":    attempt + 1,
					"step":       stepName,
				})
				continue
			}
			return nil, txErr
		}

		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return session, nil
	}

	return nil, lastErr
}

func (s *lifecycleService) writeTransition(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ResearchSession, expectedStatus, changeType, stepName string) error {
	if err := uow.SessionRepository().UpdateGuarded(ctx, session, expectedStatus); err != nil {
		return err
	}

	version, err := uow.HistoryRepository().NextVersion(ctx, session.Id)
	if err != nil {
		return err
	}

	entry := &entity.SessionHistory{
		Id:         uuid.New(),
		SessionId:  session.Id,
		Version:    version,
		ChangeType: changeType,
		Snapshot:   sessionSnapshot(session),
		Diff: map[string]interface{}{
			"from_status": expectedStatus,
			"to_status":   session.Status,
		},
		StepName:  stepName,
		CreatedAt: time.Now(),
	}
	return uow.HistoryRepository().Append(ctx, entry)
}

func (s *lifecycleService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.ResearchSession, error) {
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("research session %s not found", id)
	}
	return session, nil
}

func (s *lifecycleService) enqueueRun(ctx context.Context, session *entity.ResearchSession, resume bool) error {
	s.runRegistry.MarkActive(session.Id)

	msg := dto.RunResearchMessage{
		SessionId: session.Id,
		UserId:    session.UserId,
		Resume:    resume,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func (s *lifecycleService) publishEvent(ctx context.Context, eventType string, sessionId uuid.UUID, extra map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewResearchEvent(eventType, sessionId.String(), extra)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		// Events feed auxiliary systems; the transition already committed.
		s.logger.Warn("Lifecycle", "Failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

type sessionCounters struct {
	TaskCount      int64
	CompletedTasks int64
	SourceCount    int64
	CitedSources   int64
	VersionCount   int64
}

func (s *lifecycleService) computeCounters(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (*sessionCounters, error) {
	bySession := specification.BySessionID{SessionID: sessionId}
	counters := &sessionCounters{}
	var err error

	if counters.TaskCount, err = uow.TaskRepository().Count(ctx, bySession); err != nil {
		return nil, err
	}
	if counters.CompletedTasks, err = uow.TaskRepository().Count(ctx, bySession, specification.ByStatus{Status: constant.TaskStatusCompleted}); err != nil {
		return nil, err
	}
	if counters.SourceCount, err = uow.SourceRepository().Count(ctx, bySession); err != nil {
		return nil, err
	}
	if counters.CitedSources, err = uow.SourceRepository().Count(ctx, bySession, specification.CitedOnly{}); err != nil {
		return nil, err
	}
	if counters.VersionCount, err = uow.HistoryRepository().Count(ctx, bySession); err != nil {
		return nil, err
	}
	return counters, nil
}

func (s *lifecycleService) toDetail(session *entity.ResearchSession, counters *sessionCounters) *dto.ResearchDetailResponse {
	res := &dto.ResearchDetailResponse{
		Id:                session.Id,
		UserId:            session.UserId,
		WorkspaceId:       session.WorkspaceId,
		Title:             session.Title,
		Description:       session.Description,
		Question:          session.Question,
		Status:            session.Status,
		CurrentStep:       session.CurrentStep,
		StateSnapshot:     session.StateSnapshot,
		ReportPlan:        session.ReportPlan,
		FinalReport:       session.FinalReport,
		KnowledgeGraph:    session.KnowledgeGraph,
		ErrorMessage:      session.ErrorMessage,
		EstimatedDuration: session.EstimatedDuration,
		ActualDuration:    session.ActualDuration,
		StartedAt:         session.StartedAt,
		PausedAt:          session.PausedAt,
		CompletedAt:       session.CompletedAt,
		CreatedAt:         session.CreatedAt,
		UpdatedAt:         session.UpdatedAt,
	}
	if counters != nil {
		res.TaskCount = counters.TaskCount
		res.CompletedTasks = counters.CompletedTasks
		res.SourceCount = counters.SourceCount
		res.CitedSources = counters.CitedSources
		res.VersionCount = counters.VersionCount
	}
	return res
}

// sessionSnapshot captures the document fields of a session for a history
// entry. Restore rebuilds a session from exactly these keys.
func sessionSnapshot(session *entity.ResearchSession) map[string]interface{} {
	snapshot := map[string]interface{}{
		"title":              session.Title,
		"description":        session.Description,
		"question":           session.Question,
		"status":             session.Status,
		"current_step":       session.CurrentStep,
		"report_plan":        session.ReportPlan,
		"final_report":       session.FinalReport,
		"error_message":      session.ErrorMessage,
		"estimated_duration": session.EstimatedDuration,
		"actual_duration":    session.ActualDuration,
	}
	if session.StateSnapshot != nil {
		if raw, err := json.Marshal(session.StateSnapshot); err == nil {
			var m map[string]interface{}
			if err := json.Unmarshal(raw, &m); err == nil {
				snapshot["state_snapshot"] = m
			}
		}
	}
	if session.KnowledgeGraph != nil {
		snapshot["knowledge_graph"] = session.KnowledgeGraph
	}
	return snapshot
}

func elapsedMinutes(start *time.Time, end time.Time) int {
	if start == nil {
		return 0
	}
	minutes := int(end.Sub(*start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

func containsStatus(list []string, status string) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}
