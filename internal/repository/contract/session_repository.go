package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.ResearchSession) error
	Update(ctx context.Context, session *entity.ResearchSession) error

	// UpdateGuarded writes the session only if its stored status still equals
	// expectedStatus. It returns a ConcurrencyConflict error when the
	// conditional write matches no row — the compare-and-swap every lifecycle
	// transition goes through.
	UpdateGuarded(ctx context.Context, session *entity.ResearchSession, expectedStatus string) error

	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
