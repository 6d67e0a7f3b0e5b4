package entity

import (
	"time"

	"github.com/google/uuid"
)

type ResearchSource struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	TaskId    *uuid.UUID

	URL     string
	Title   string
	Content string
	Summary string
	Type    string

	// Scores are probabilities in [0,1].
	Relevance   float64
	Quality     float64
	Credibility float64

	CitedInReport bool
	CitationCount int
	Tags          []string

	CreatedAt time.Time
	UpdatedAt *time.Time
}
