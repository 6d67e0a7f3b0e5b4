package entity

import (
	"time"

	"github.com/google/uuid"
)

type ResearchSession struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	WorkspaceId *uuid.UUID

	Title       string
	Description string
	Question    string

	Status      string
	CurrentStep string

	StateSnapshot  *StateSnapshot
	ReportPlan     string
	FinalReport    string
	KnowledgeGraph map[string]interface{}
	ErrorMessage   string

	// Durations are whole minutes, floored.
	EstimatedDuration int
	ActualDuration    int

	StartedAt   *time.Time
	PausedAt    *time.Time
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
