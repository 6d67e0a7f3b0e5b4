package constant

// Session statuses
const (
	SessionStatusDraft       = "draft"
	SessionStatusThinking    = "thinking"
	SessionStatusPlanning    = "planning"
	SessionStatusResearching = "researching"
	SessionStatusWriting     = "writing"
	SessionStatusPaused      = "paused"
	SessionStatusCompleted   = "completed"
	SessionStatusFailed      = "failed"
)

// ActiveSessionStatuses are the statuses a running session moves through.
// Pause is only legal from one of these, and a snapshot may only resume
// back into one of these.
var ActiveSessionStatuses = []string{
	SessionStatusThinking,
	SessionStatusPlanning,
	SessionStatusResearching,
	SessionStatusWriting,
}

func IsActiveSessionStatus(status string) bool {
	for _, s := range ActiveSessionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Task statuses
const (
	TaskStatusPending    = "pending"
	TaskStatusSearching  = "searching"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
	TaskStatusSkipped    = "skipped"
)

// TerminalTaskStatuses cannot be left once entered. A late-arriving update
// against a terminal task is ignored.
var TerminalTaskStatuses = []string{
	TaskStatusCompleted,
	TaskStatusFailed,
	TaskStatusSkipped,
}

// History change types
const (
	ChangeTypeAuto       = "auto"
	ChangeTypeManual     = "manual"
	ChangeTypeRestore    = "restore"
	ChangeTypeBranch     = "branch"
	ChangeTypeUserAction = "user_action"
)

// Stream event types (one JSON object per event on the push channel)
const (
	StreamEventStatus         = "status"
	StreamEventPlan           = "plan"
	StreamEventTask           = "task"
	StreamEventReport         = "report"
	StreamEventKnowledgeGraph = "knowledge_graph"
	StreamEventComplete       = "complete"
	StreamEventError          = "error"
)

// Knowledge link types
const (
	LinkTypeSource    = "source"
	LinkTypeContext   = "context"
	LinkTypeOutput    = "output"
	LinkTypeReference = "reference"
)

// Well-known step names recorded in history entries
const (
	StepInitialization       = "initialization"
	StepPaused               = "paused"
	StepResumed              = "resumed"
	StepCompleted            = "completed"
	StepFailed               = "failed"
	StepContinuationPlanning = "continuation_planning"
)

// ContinuationReportPrefixLen is how much of the previous final report is
// embedded into the continuation context handed to the executor.
const ContinuationReportPrefixLen = 2000

// MaxTaskRetries is the retry budget before a task goes terminal failed.
const MaxTaskRetries = 2
