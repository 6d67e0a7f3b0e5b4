package entity

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeLink struct {
	Id              uuid.UUID
	SessionId       uuid.UUID
	KnowledgeBaseId uuid.UUID
	DocumentId      *uuid.UUID

	LinkType     string
	UsageContext string
	Relevance    float64

	AccessCount    int
	LastAccessedAt *time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
}
