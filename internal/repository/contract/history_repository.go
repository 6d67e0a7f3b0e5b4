package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type HistoryRepository interface {
	// NextVersion returns max(version)+1 for the session (1 when empty).
	// Allocation is only final once Append succeeds: the unique
	// (session_id, version) index rejects a concurrent claim and the caller
	// retries with a fresh NextVersion read.
	NextVersion(ctx context.Context, sessionId uuid.UUID) (int, error)

	// Append inserts the entry. Returns a ConcurrencyConflict error when the
	// version was claimed by a concurrent writer.
	Append(ctx context.Context, entry *entity.SessionHistory) error

	SetBookmark(ctx context.Context, id uuid.UUID, bookmarked bool) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionHistory, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionHistory, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
