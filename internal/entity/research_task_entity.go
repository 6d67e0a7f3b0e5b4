package entity

import (
	"time"

	"github.com/google/uuid"
)

type ResearchTask struct {
	Id        uuid.UUID
	SessionId uuid.UUID

	Query    string
	Goal     string
	Type     string
	Priority int

	Status          string
	Result          map[string]interface{}
	Analysis        string
	Learnings       string
	ExecutionTimeMs int
	RetryCount      int

	CreatedAt time.Time
	UpdatedAt *time.Time
}
