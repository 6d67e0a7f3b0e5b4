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

type KnowledgeLinkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeLinkRepository(db *gorm.DB) contract.KnowledgeLinkRepository {
	return &KnowledgeLinkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeLinkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeLinkRepositoryImpl) Create(ctx context.Context, link *entity.KnowledgeLink) error {
	m := r.mapper.ToModel(link)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		// TranslateError maps the unique-index violation on
		// (session_id, knowledge_base_id, document_id) to ErrDuplicatedKey.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ConcurrencyConflict("knowledge link for this target was created concurrently")
		}
		return err
	}
	*link = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeLinkRepositoryImpl) Update(ctx context.Context, link *entity.KnowledgeLink) error {
	m := r.mapper.ToModel(link)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*link = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeLinkRepositoryImpl) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.KnowledgeLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *KnowledgeLinkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KnowledgeLink{}, id).Error
}

func (r *KnowledgeLinkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeLink, error) {
	var m model.KnowledgeLink
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *KnowledgeLinkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeLink, error) {
	var models []*model.KnowledgeLink
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KnowledgeLink, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *KnowledgeLinkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.KnowledgeLink{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *KnowledgeLinkRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.KnowledgeLink{}).Error
}
