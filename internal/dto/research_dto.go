package dto

import (
	"time"

	"ai-research-be/internal/entity"

	"github.com/google/uuid"
)

type CreateResearchRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Question    string     `json:"question" validate:"required"`
	Description string     `json:"description,omitempty"`
	WorkspaceId *uuid.UUID `json:"workspace_id,omitempty"`
}

type UpdateResearchRequest struct {
	Id          uuid.UUID `json:"-"`
	Title       *string   `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string   `json:"description,omitempty"`
	Question    *string   `json:"question,omitempty"`
}

type ContinueResearchRequest struct {
	Id                     uuid.UUID `json:"-"`
	Question               string    `json:"question,omitempty"`
	AdditionalInstructions string    `json:"additional_instructions,omitempty"`
	EstimatedDuration      *int      `json:"estimated_duration,omitempty" validate:"omitempty,min=1"`
}

// RunResearchMessage is the queue payload that hands a session to the
// run consumer.
type RunResearchMessage struct {
	SessionId uuid.UUID `json:"session_id"`
	UserId    uuid.UUID `json:"user_id"`
	Resume    bool      `json:"resume"`
}

type ResearchListItemResponse struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Question    string     `json:"question"`
	Status      string     `json:"status"`
	CurrentStep string     `json:"current_step,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ResearchDetailResponse struct {
	Id          uuid.UUID  `json:"id"`
	UserId      uuid.UUID  `json:"user_id"`
	WorkspaceId *uuid.UUID `json:"workspace_id,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Question    string `json:"question"`

	Status      string `json:"status"`
	CurrentStep string `json:"current_step,omitempty"`

	StateSnapshot  *entity.StateSnapshot  `json:"state_snapshot,omitempty"`
	ReportPlan     string                 `json:"report_plan,omitempty"`
	FinalReport    string                 `json:"final_report,omitempty"`
	KnowledgeGraph map[string]interface{} `json:"knowledge_graph,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`

	EstimatedDuration int `json:"estimated_duration"`
	ActualDuration    int `json:"actual_duration"`

	// Counters are computed from child tables on read, never stored.
	TaskCount      int64 `json:"task_count"`
	CompletedTasks int64 `json:"completed_tasks"`
	SourceCount    int64 `json:"source_count"`
	CitedSources   int64 `json:"cited_sources"`
	VersionCount   int64 `json:"version_count"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ResearchTaskResponse struct {
	Id              uuid.UUID              `json:"id"`
	Query           string                 `json:"query"`
	Goal            string                 `json:"goal,omitempty"`
	Type            string                 `json:"type,omitempty"`
	Priority        int                    `json:"priority"`
	Status          string                 `json:"status"`
	Result          map[string]interface{} `json:"result,omitempty"`
	Analysis        string                 `json:"analysis,omitempty"`
	Learnings       string                 `json:"learnings,omitempty"`
	ExecutionTimeMs int                    `json:"execution_time_ms"`
	RetryCount      int                    `json:"retry_count"`
	CreatedAt       time.Time              `json:"created_at"`
}

type ResearchSourceResponse struct {
	Id            uuid.UUID  `json:"id"`
	TaskId        *uuid.UUID `json:"task_id,omitempty"`
	URL           string     `json:"url"`
	Title         string     `json:"title,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	Type          string     `json:"type,omitempty"`
	Relevance     float64    `json:"relevance"`
	Quality       float64    `json:"quality"`
	Credibility   float64    `json:"credibility"`
	CitedInReport bool       `json:"cited_in_report"`
	CitationCount int        `json:"citation_count"`
	Tags          []string   `json:"tags,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
