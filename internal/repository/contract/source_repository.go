package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SourceRepository interface {
	// Upsert inserts the source, or on a (session_id, url) collision updates
	// scores, content and metadata of the existing row. Citation fields are
	// never touched by the upsert path.
	Upsert(ctx context.Context, source *entity.ResearchSource) error

	// MarkCited flags the source as cited and increments its citation count.
	// Only report generation calls this.
	MarkCited(ctx context.Context, id uuid.UUID) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchSource, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchSource, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
