package implementation

import (
	"context"
	"errors"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/mapper"
	"ai-research-be/internal/model"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewTaskRepository(db *gorm.DB) contract.TaskRepository {
	return &TaskRepositoryImpl{
		db:     db,
		mapper: mapper.NewResearchMapper(),
	}
}

func (r *TaskRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entity.ResearchTask) error {
	m := r.mapper.TaskToModel(task)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*task = *r.mapper.TaskToEntity(m)
	return nil
}

func (r *TaskRepositoryImpl) CreateBulk(ctx context.Context, tasks []*entity.ResearchTask) error {
	if len(tasks) == 0 {
		return nil
	}
	models := make([]*model.ResearchTask, len(tasks))
	for i, t := range tasks {
		models[i] = r.mapper.TaskToModel(t)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*tasks[i] = *r.mapper.TaskToEntity(m)
	}
	return nil
}

func (r *TaskRepositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, newStatus string, allowedFrom []string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": newStatus}
	for k, v := range updates {
		values[k] = v
	}

	result := r.db.WithContext(ctx).
		Model(&model.ResearchTask{}).
		Where("id = ? AND status IN ?", id, allowedFrom).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TaskRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchTask, error) {
	var m model.ResearchTask
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TaskToEntity(&m), nil
}

func (r *TaskRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchTask, error) {
	var models []*model.ResearchTask
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ResearchTask, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TaskToEntity(m)
	}
	return entities, nil
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ResearchTask{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TaskRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ResearchTask{}).Error
}
