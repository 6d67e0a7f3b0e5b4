package implementation

import (
	"context"
	"errors"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/mapper"
	"ai-research-be/internal/model"
	"ai-research-be/internal/pkg/apperror"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.HistoryMapper
}

func NewHistoryRepository(db *gorm.DB) contract.HistoryRepository {
	return &HistoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewHistoryMapper(),
	}
}

func (r *HistoryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *HistoryRepositoryImpl) NextVersion(ctx context.Context, sessionId uuid.UUID) (int, error) {
	var maxVersion int
	err := r.db.WithContext(ctx).
		Model(&model.SessionHistory{}).
		Where("session_id = ?", sessionId).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	return maxVersion + 1, nil
}

func (r *HistoryRepositoryImpl) Append(ctx context.Context, entry *entity.SessionHistory) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		// TranslateError maps the unique-index violation on
		// (session_id, version) to ErrDuplicatedKey.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ConcurrencyConflict("version %d of session %s was claimed concurrently", entry.Version, entry.SessionId)
		}
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *HistoryRepositoryImpl) SetBookmark(ctx context.Context, id uuid.UUID, bookmarked bool) error {
	return r.db.WithContext(ctx).
		Model(&model.SessionHistory{}).
		Where("id = ?", id).
		Update("is_bookmarked", bookmarked).Error
}

func (r *HistoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionHistory, error) {
	var m model.SessionHistory
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *HistoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionHistory, error) {
	var models []*model.SessionHistory
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SessionHistory, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *HistoryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SessionHistory{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *HistoryRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.SessionHistory{}).Error
}
