package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/apperror"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/events"
	pktNats "ai-research-be/pkg/nats"

	"github.com/google/uuid"
)

type IHistoryService interface {
	List(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, bookmarkedOnly bool, limit int) ([]*dto.HistoryEntryResponse, error)
	ToggleBookmark(ctx context.Context, userId uuid.UUID, req *dto.ToggleBookmarkRequest) error
	Restore(ctx context.Context, userId uuid.UUID, req *dto.RestoreVersionRequest) (*dto.ResearchDetailResponse, error)
}

type historyService struct {
	uowFactory     unitofwork.RepositoryFactory
	lifecycle      ILifecycleService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewHistoryService(
	uowFactory unitofwork.RepositoryFactory,
	lifecycle ILifecycleService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IHistoryService {
	return &historyService{
		uowFactory:     uowFactory,
		lifecycle:      lifecycle,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *historyService) List(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, bookmarkedOnly bool, limit int) ([]*dto.HistoryEntryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.assertOwned(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "version", Desc: true},
	}
	if bookmarkedOnly {
		specs = append(specs, specification.BookmarkedOnly{})
	}
	if limit > 0 {
		specs = append(specs, specification.Limit{Limit: limit})
	}

	entries, err := uow.HistoryRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.HistoryEntryResponse, len(entries))
	for i, entry := range entries {
		result[i] = &dto.HistoryEntryResponse{
			Id:              entry.Id,
			Version:         entry.Version,
			ChangeType:      entry.ChangeType,
			Snapshot:        entry.Snapshot,
			Diff:            entry.Diff,
			ParentVersionId: entry.ParentVersionId,
			StepName:        entry.StepName,
			IsBookmarked:    entry.IsBookmarked,
			CreatedAt:       entry.CreatedAt,
		}
	}
	return result, nil
}

func (s *historyService) ToggleBookmark(ctx context.Context, userId uuid.UUID, req *dto.ToggleBookmarkRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.assertOwned(ctx, uow, userId, req.SessionId); err != nil {
		return err
	}

	entry, err := uow.HistoryRepository().FindOne(ctx,
		specification.BySessionID{SessionID: req.SessionId},
		specification.ByVersion{Version: req.Version},
	)
	if err != nil {
		return err
	}
	if entry == nil {
		return apperror.NotFound("version %d of session %s not found", req.Version, req.SessionId)
	}

	return uow.HistoryRepository().SetBookmark(ctx, entry.Id, req.Bookmarked)
}

// Restore overlays a historical snapshot onto the session and appends a new
// version recording the rollback. History is never rewritten: restoring
// version 3 of a 7-version session produces version 8.
func (s *historyService) Restore(ctx context.Context, userId uuid.UUID, req *dto.RestoreVersionRequest) (*dto.ResearchDetailResponse, error) {
	var lastErr error

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		uow := s.uowFactory.NewUnitOfWork(ctx)

		session, err := uow.SessionRepository().FindOne(ctx,
			specification.ByID{ID: req.SessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, apperror.NotFound("research session %s not found", req.SessionId)
		}

		// A running session cannot be rolled back under its executor.
		if constant.IsActiveSessionStatus(session.Status) {
			return nil, apperror.InvalidTransition(session.Status, "pause or finish the run before restoring a version")
		}

		target, err := uow.HistoryRepository().FindOne(ctx,
			specification.BySessionID{SessionID: req.SessionId},
			specification.ByVersion{Version: req.Version},
		)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, apperror.NotFound("version %d of session %s not found", req.Version, req.SessionId)
		}

		expected := session.Status
		applySnapshot(session, target.Snapshot)

		changeType := constant.ChangeTypeRestore
		if req.Branch {
			changeType = constant.ChangeTypeBranch
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}

		txErr := func() error {
			if err := uow.SessionRepository().UpdateGuarded(ctx, session, expected); err != nil {
				return err
			}
			version, err := uow.HistoryRepository().NextVersion(ctx, req.SessionId)
			if err != nil {
				return err
			}
			parentId := target.Id
			entry := &entity.SessionHistory{
				Id:              uuid.New(),
				SessionId:       req.SessionId,
				Version:         version,
				ChangeType:      changeType,
				Snapshot:        sessionSnapshot(session),
				Diff:            map[string]interface{}{"restored_version": req.Version},
				ParentVersionId: &parentId,
				StepName:        "restored",
				CreatedAt:       time.Now(),
			}
			return uow.HistoryRepository().Append(ctx, entry)
		}()
		if txErr != nil {
			_ = uow.Rollback()
			if apperror.IsKind(txErr, apperror.KindConcurrencyConflict) {
				lastErr = txErr
				continue
			}
			return nil, txErr
		}

		if err := uow.Commit(); err != nil {
			return nil, err
		}

		s.publishRestored(ctx, req.SessionId, req.Version)
		return s.lifecycle.Show(ctx, userId, req.SessionId)
	}

	return nil, lastErr
}

func (s *historyService) publishRestored(ctx context.Context, sessionId uuid.UUID, version int) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewResearchEvent(events.ResearchRestored, sessionId.String(), map[string]interface{}{
		"restored_version": version,
	})
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("History", "Failed to publish restore event", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func (s *historyService) assertOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) error {
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.NotFound("research session %s not found", sessionId)
	}
	return nil
}

// applySnapshot writes a history snapshot's document fields back onto the
// session, field by field. Keys absent from the snapshot keep their current
// value. A session is never restored into an active status; an active value
// in an old snapshot collapses to paused so the user resumes explicitly.
func applySnapshot(session *entity.ResearchSession, snapshot map[string]interface{}) {
	if v, ok := snapshot["title"].(string); ok {
		session.Title = v
	}
	if v, ok := snapshot["description"].(string); ok {
		session.Description = v
	}
	if v, ok := snapshot["question"].(string); ok {
		session.Question = v
	}
	if v, ok := snapshot["status"].(string); ok {
		if constant.IsActiveSessionStatus(v) {
			v = constant.SessionStatusPaused
		}
		session.Status = v
	}
	if v, ok := snapshot["current_step"].(string); ok {
		session.CurrentStep = v
	}
	if v, ok := snapshot["report_plan"].(string); ok {
		session.ReportPlan = v
	}
	if v, ok := snapshot["final_report"].(string); ok {
		session.FinalReport = v
	}
	if v, ok := snapshot["error_message"].(string); ok {
		session.ErrorMessage = v
	}
	if v, ok := snapshot["estimated_duration"].(float64); ok {
		session.EstimatedDuration = int(v)
	}
	if v, ok := snapshot["actual_duration"].(float64); ok {
		session.ActualDuration = int(v)
	}
	if v, ok := snapshot["knowledge_graph"].(map[string]interface{}); ok {
		session.KnowledgeGraph = v
	}
	if v, ok := snapshot["state_snapshot"].(map[string]interface{}); ok {
		if raw, err := json.Marshal(v); err == nil {
			var decoded entity.StateSnapshot
			if err := json.Unmarshal(raw, &decoded); err == nil {
				session.StateSnapshot = &decoded
			}
		}
	} else {
		session.StateSnapshot = nil
	}

	// Snapshots carry no timestamps, so reconcile them with the restored
	// status: pausedAt is set exactly while paused, completedAt exactly
	// while completed or failed.
	now := time.Now()
	switch session.Status {
	case constant.SessionStatusPaused:
		if session.PausedAt == nil {
			session.PausedAt = &now
		}
		session.CompletedAt = nil
	case constant.SessionStatusCompleted, constant.SessionStatusFailed:
		session.PausedAt = nil
		if session.CompletedAt == nil {
			session.CompletedAt = &now
		}
	default:
		session.PausedAt = nil
		session.CompletedAt = nil
	}
}
