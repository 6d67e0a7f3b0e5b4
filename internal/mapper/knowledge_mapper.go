package mapper

import (
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(l *model.KnowledgeLink) *entity.KnowledgeLink {
	if l == nil {
		return nil
	}

	var updatedAt *time.Time
	if !l.UpdatedAt.IsZero() {
		u := l.UpdatedAt
		updatedAt = &u
	}

	return &entity.KnowledgeLink{
		Id:              l.Id,
		SessionId:       l.SessionId,
		KnowledgeBaseId: l.KnowledgeBaseId,
		DocumentId:      l.DocumentId,
		LinkType:        l.LinkType,
		UsageContext:    l.UsageContext,
		Relevance:       l.Relevance,
		AccessCount:     l.AccessCount,
		LastAccessedAt:  l.LastAccessedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *KnowledgeMapper) ToModel(l *entity.KnowledgeLink) *model.KnowledgeLink {
	if l == nil {
		return nil
	}

	out := &model.KnowledgeLink{
		Id:              l.Id,
		SessionId:       l.SessionId,
		KnowledgeBaseId: l.KnowledgeBaseId,
		DocumentId:      l.DocumentId,
		LinkType:        l.LinkType,
		UsageContext:    l.UsageContext,
		Relevance:       l.Relevance,
		AccessCount:     l.AccessCount,
		LastAccessedAt:  l.LastAccessedAt,
		CreatedAt:       l.CreatedAt,
	}
	if l.UpdatedAt != nil {
		out.UpdatedAt = *l.UpdatedAt
	}
	return out
}
