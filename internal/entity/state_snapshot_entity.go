package entity

// StateSnapshot is the resumable execution context persisted on pause and
// rebuilt on resume. It is a tagged union keyed by Phase so resume logic can
// match exhaustively instead of probing an untyped map.
type StateSnapshot struct {
	Phase string `json:"phase"`
	Step  string `json:"step,omitempty"`

	Thinking     *ThinkingContext     `json:"thinking,omitempty"`
	Planning     *PlanningContext     `json:"planning,omitempty"`
	Researching  *ResearchingContext  `json:"researching,omitempty"`
	Writing      *WritingContext      `json:"writing,omitempty"`
	Continuation *ContinuationContext `json:"continuation,omitempty"`
}

type ThinkingContext struct {
	Notes string `json:"notes,omitempty"`
}

type PlanningContext struct {
	DraftPlan string `json:"draft_plan,omitempty"`
}

type ResearchingContext struct {
	CompletedTaskIds []string `json:"completed_task_ids,omitempty"`
	PendingQueries   []string `json:"pending_queries,omitempty"`
}

type WritingContext struct {
	DraftReport  string `json:"draft_report,omitempty"`
	SectionsDone int    `json:"sections_done,omitempty"`
}

// ContinuationContext carries prior-run outputs into a continuation run so
// the executor can build on previous work instead of starting cold.
type ContinuationContext struct {
	Context                string `json:"context"`
	PreviousReport         string `json:"previous_report,omitempty"`
	PreviousPlan           string `json:"previous_plan,omitempty"`
	AdditionalInstructions string `json:"additional_instructions,omitempty"`
}
