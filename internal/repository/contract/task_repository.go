package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(ctx context.Context, task *entity.ResearchTask) error
	CreateBulk(ctx context.Context, tasks []*entity.ResearchTask) error

	// TransitionStatus moves a task to newStatus only while its current status
	// is in allowedFrom, updating the given columns in the same statement.
	// It returns false (no error) when the guard matched no row, which is how
	// late updates against terminal tasks are ignored.
	TransitionStatus(ctx context.Context, id uuid.UUID, newStatus string, allowedFrom []string, updates map[string]interface{}) (bool, error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ResearchTask, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchTask, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
