package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type KnowledgeLinkRepository interface {
	Create(ctx context.Context, link *entity.KnowledgeLink) error
	Update(ctx context.Context, link *entity.KnowledgeLink) error

	// Touch atomically increments access_count and stamps last_accessed_at.
	Touch(ctx context.Context, id uuid.UUID) error

	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeLink, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeLink, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
