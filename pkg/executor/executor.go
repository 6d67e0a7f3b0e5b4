package executor

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCancelled is returned by Run when a cancellation request was observed
// between steps. The caller treats it as a clean stop, not a failure.
var ErrCancelled = errors.New("run cancelled")

// Phase names reported through Hooks.Phase as a run advances.
const (
	PhaseThinking    = "thinking"
	PhasePlanning    = "planning"
	PhaseResearching = "researching"
	PhaseWriting     = "writing"
)

// Job is everything an executor needs to run (or resume) a research session.
type Job struct {
	SessionId uuid.UUID
	UserId    uuid.UUID
	Question  string

	// ResumePhase/ResumeStep are set when the job continues from a paused
	// snapshot; empty for a cold start.
	ResumePhase string
	ResumeStep  string

	// ContinuationContext is non-empty for a continuation run and carries
	// the condensed prior-run outputs.
	ContinuationContext string
}

// Event is a progress notification produced mid-run.
type Event struct {
	Type    string
	Payload map[string]interface{}
}

// TaskSpec describes one research task in the plan.
type TaskSpec struct {
	Query    string
	Goal     string
	Type     string
	Priority int
}

// SourceRecord describes a discovered source. Sources are keyed by URL
// within a session; recording the same URL twice updates the first record.
type SourceRecord struct {
	TaskId      *uuid.UUID
	URL         string
	Title       string
	Content     string
	Summary     string
	Type        string
	Relevance   float64
	Quality     float64
	Credibility float64
	Tags        []string
}

// Recorder persists executor progress. Implementations own transactionality
// and ordering; the executor just reports facts as they happen.
type Recorder interface {
	PlanTasks(ctx context.Context, sessionId uuid.UUID, specs []TaskSpec) ([]uuid.UUID, error)
	BeginTask(ctx context.Context, taskId uuid.UUID) error
	CompleteTask(ctx context.Context, taskId uuid.UUID, result map[string]interface{}, analysis, learnings string, executionTimeMs int) error
	FailTask(ctx context.Context, taskId uuid.UUID, reason string) (retry bool, err error)
	SkipTask(ctx context.Context, taskId uuid.UUID, reason string) error
	RecordSource(ctx context.Context, sessionId uuid.UUID, record SourceRecord) (uuid.UUID, error)
	// CiteSource marks a recorded source as cited in the final report and
	// bumps its citation count. Called during the writing phase.
	CiteSource(ctx context.Context, sourceId uuid.UUID) error
}

// Hooks is the executor's channel back into the engine.
type Hooks struct {
	// Phase transitions the session into the given phase. An error aborts
	// the run (the session may have been paused or deleted concurrently).
	Phase func(ctx context.Context, phase, step string) error

	// Emit pushes a progress event to stream subscribers. Best effort.
	Emit func(event Event)

	// Cancelled reports whether a pause was requested. Polled between steps.
	Cancelled func() bool

	Recorder Recorder
}

// Result is the final output of a successful run.
type Result struct {
	ReportPlan     string
	FinalReport    string
	KnowledgeGraph map[string]interface{}
}

// Executor runs the research pipeline for one session.
type Executor interface {
	Run(ctx context.Context, job Job, hooks Hooks) (*Result, error)
}
