package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/apperror"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/executor"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// recorderService persists executor progress. It implements
// executor.Recorder so the pipeline stays decoupled from storage.
type recorderService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewRecorderService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) executor.Recorder {
	return &recorderService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (r *recorderService) PlanTasks(ctx context.Context, sessionId uuid.UUID, specs []executor.TaskSpec) ([]uuid.UUID, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	tasks := make([]*entity.ResearchTask, len(specs))
	for i, spec := range specs {
		tasks[i] = &entity.ResearchTask{
			Id:        uuid.New(),
			SessionId: sessionId,
			Query:     spec.Query,
			Goal:      spec.Goal,
			Type:      spec.Type,
			Priority:  spec.Priority,
			Status:    constant.TaskStatusPending,
			CreatedAt: time.Now(),
		}
	}

	if err := uow.TaskRepository().CreateBulk(ctx, tasks); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.Id
	}
	return ids, nil
}

func (r *recorderService) BeginTask(ctx context.Context, taskId uuid.UUID) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	applied, err := uow.TaskRepository().TransitionStatus(ctx, taskId,
		constant.TaskStatusSearching,
		[]string{constant.TaskStatusPending},
		nil,
	)
	if err != nil {
		return err
	}
	if !applied {
		// Task already moved on (or went terminal). Not an error.
		r.logger.Warn("Recorder", "BeginTask skipped, task not pending", map[string]interface{}{"task_id": taskId})
	}
	return nil
}

func (r *recorderService) CompleteTask(ctx context.Context, taskId uuid.UUID, result map[string]interface{}, analysis, learnings string, executionTimeMs int) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	updates := map[string]interface{}{
		"analysis":          analysis,
		"learnings":         learnings,
		"execution_time_ms": executionTimeMs,
	}
	if result != nil {
		resultJSON, err := marshalJSON(result)
		if err != nil {
			return err
		}
		updates["result"] = resultJSON
	}

	applied, err := uow.TaskRepository().TransitionStatus(ctx, taskId,
		constant.TaskStatusCompleted,
		[]string{constant.TaskStatusPending, constant.TaskStatusSearching, constant.TaskStatusProcessing},
		updates,
	)
	if err != nil {
		return err
	}
	if !applied {
		// Terminal statuses stick; a late completion against a failed or
		// skipped task is dropped.
		r.logger.Warn("Recorder", "CompleteTask ignored, task already terminal", map[string]interface{}{"task_id": taskId})
	}
	return nil
}

func (r *recorderService) FailTask(ctx context.Context, taskId uuid.UUID, reason string) (bool, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	task, err := uow.TaskRepository().FindOne(ctx, specification.ByID{ID: taskId})
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, apperror.NotFound("task %s not found", taskId)
	}

	if task.RetryCount < constant.MaxTaskRetries {
		// Requeue with an incremented retry counter. This is the only legal
		// backward status move.
		applied, err := uow.TaskRepository().TransitionStatus(ctx, taskId,
			constant.TaskStatusPending,
			[]string{constant.TaskStatusSearching, constant.TaskStatusProcessing},
			map[string]interface{}{"retry_count": task.RetryCount + 1},
		)
		if err != nil {
			return false, err
		}
		if applied {
			r.logger.Info("Recorder", "Task requeued for retry", map[string]interface{}{
				"task_id": taskId,
				"attempt": task.RetryCount + 1,
				"reason":  reason,
			})
			return true, nil
		}
	}

	_, err = uow.TaskRepository().TransitionStatus(ctx, taskId,
		constant.TaskStatusFailed,
		[]string{constant.TaskStatusPending, constant.TaskStatusSearching, constant.TaskStatusProcessing},
		map[string]interface{}{"analysis": reason},
	)
	return false, err
}

func (r *recorderService) SkipTask(ctx context.Context, taskId uuid.UUID, reason string) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	_, err := uow.TaskRepository().TransitionStatus(ctx, taskId,
		constant.TaskStatusSkipped,
		[]string{constant.TaskStatusPending, constant.TaskStatusSearching, constant.TaskStatusProcessing},
		map[string]interface{}{"analysis": reason},
	)
	return err
}

func (r *recorderService) RecordSource(ctx context.Context, sessionId uuid.UUID, record executor.SourceRecord) (uuid.UUID, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	source := &entity.ResearchSource{
		Id:          uuid.New(),
		SessionId:   sessionId,
		TaskId:      record.TaskId,
		URL:         record.URL,
		Title:       record.Title,
		Content:     record.Content,
		Summary:     record.Summary,
		Type:        record.Type,
		Relevance:   record.Relevance,
		Quality:     record.Quality,
		Credibility: record.Credibility,
		Tags:        record.Tags,
		CreatedAt:   time.Now(),
	}

	if err := uow.SourceRepository().Upsert(ctx, source); err != nil {
		return uuid.Nil, err
	}
	return source.Id, nil
}

func (r *recorderService) CiteSource(ctx context.Context, sourceId uuid.UUID) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	return uow.SourceRepository().MarkCited(ctx, sourceId)
}
