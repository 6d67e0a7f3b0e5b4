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
	"gorm.io/gorm/clause"
)

type SourceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewSourceRepository(db *gorm.DB) contract.SourceRepository {
	return &SourceRepositoryImpl{
		db:     db,
		mapper: mapper.NewResearchMapper(),
	}
}

func (r *SourceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SourceRepositoryImpl) Upsert(ctx context.Context, source *entity.ResearchSource) error {
	m := r.mapper.SourceToModel(source)

	// Conflict target is the (session_id, url) unique index. Citation columns
	// stay untouched so a rediscovered URL keeps its citation record.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"task_id", "title", "content", "summary", "type",
			"relevance", "quality", "credibility", "tags", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	// OnConflict-update leaves m.Id at the generated value of the losing
	// insert; re-read so the caller sees the surviving row.
	var stored model.ResearchSource
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND url = ?", m.SessionId, m.URL).
		First(&stored).Error; err != nil {
		return err
	}
	*source = *r.mapper.SourceToEntity(&stored)
	return nil
}

func (r *SourceRepositoryImpl) MarkCited(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ResearchSource{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cited_in_report": true,
			"citation_count":  gorm.Expr("citation_count + 1"),
		}).Error
}

func (r *SourceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchSource, error) {
	var m model.ResearchSource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SourceToEntity(&m), nil
}

func (r *SourceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchSource, error) {
	var models []*model.ResearchSource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ResearchSource, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SourceToEntity(m)
	}
	return entities, nil
}

func (r *SourceRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ResearchSource{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SourceRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ResearchSource{}).Error
}
