package unitofwork

import (
	"context"

	"ai-research-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	TaskRepository() contract.TaskRepository
	SourceRepository() contract.SourceRepository
	HistoryRepository() contract.HistoryRepository
	KnowledgeLinkRepository() contract.KnowledgeLinkRepository
}
