package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SimulatedExecutor runs a scripted pipeline without calling any external
// search or model provider. It exercises the full lifecycle: phase
// transitions, task recording, source discovery and report assembly. Useful
// for local development and as the default until a real provider is wired.
type SimulatedExecutor struct {
	// StepDelay is the pause between pipeline steps. Keep it zero in tests.
	StepDelay time.Duration

	// TaskCount is how many research tasks the simulated plan contains.
	TaskCount int
}

func NewSimulatedExecutor(stepDelay time.Duration) *SimulatedExecutor {
	return &SimulatedExecutor{
		StepDelay: stepDelay,
		TaskCount: 3,
	}
}

func (e *SimulatedExecutor) wait(ctx context.Context, hooks Hooks) error {
	if hooks.Cancelled() {
		return ErrCancelled
	}
	if e.StepDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.StepDelay):
		}
	}
	if hooks.Cancelled() {
		return ErrCancelled
	}
	return nil
}

func (e *SimulatedExecutor) Run(ctx context.Context, job Job, hooks Hooks) (*Result, error) {
	continuation := job.ContinuationContext != ""

	// Thinking
	if job.ResumePhase == "" || job.ResumePhase == PhaseThinking {
		if err := hooks.Phase(ctx, PhaseThinking, "analyzing_question"); err != nil {
			return nil, err
		}
		if err := e.wait(ctx, hooks); err != nil {
			return nil, err
		}
	}

	// Planning
	if job.ResumePhase == "" || job.ResumePhase == PhaseThinking || job.ResumePhase == PhasePlanning {
		step := "building_plan"
		if continuation {
			step = "continuation_planning"
		}
		if err := hooks.Phase(ctx, PhasePlanning, step); err != nil {
			return nil, err
		}
		if err := e.wait(ctx, hooks); err != nil {
			return nil, err
		}
	}

	plan := fmt.Sprintf("Research plan for: %s", job.Question)
	if continuation {
		plan = fmt.Sprintf("Follow-up research plan for: %s", job.Question)
	}

	specs := make([]TaskSpec, e.TaskCount)
	for i := range specs {
		specs[i] = TaskSpec{
			Query:    fmt.Sprintf("%s (angle %d)", job.Question, i+1),
			Goal:     fmt.Sprintf("Cover angle %d of the question", i+1),
			Type:     "web_search",
			Priority: i,
		}
	}
	taskIds, err := hooks.Recorder.PlanTasks(ctx, job.SessionId, specs)
	if err != nil {
		return nil, err
	}
	hooks.Emit(Event{Type: "plan", Payload: map[string]interface{}{
		"plan":       plan,
		"task_count": len(taskIds),
	}})

	// Researching
	if err := hooks.Phase(ctx, PhaseResearching, "executing_tasks"); err != nil {
		return nil, err
	}

	learnings := ""
	var sourceIds []uuid.UUID
	for i, taskId := range taskIds {
		if err := e.wait(ctx, hooks); err != nil {
			return nil, err
		}

		if err := hooks.Recorder.BeginTask(ctx, taskId); err != nil {
			return nil, err
		}
		hooks.Emit(Event{Type: "task", Payload: map[string]interface{}{
			"task_id": taskId.String(),
			"status":  "searching",
		}})

		tid := taskId
		sourceId, err := hooks.Recorder.RecordSource(ctx, job.SessionId, SourceRecord{
			TaskId:      &tid,
			URL:         fmt.Sprintf("https://example.org/research/%s/%d", job.SessionId, i+1),
			Title:       fmt.Sprintf("Reference material %d", i+1),
			Content:     fmt.Sprintf("Simulated findings for: %s", specs[i].Query),
			Summary:     fmt.Sprintf("Key findings on angle %d", i+1),
			Type:        "article",
			Relevance:   0.8,
			Quality:     0.7,
			Credibility: 0.75,
			Tags:        []string{"simulated"},
		})
		if err != nil {
			return nil, err
		}

		sourceIds = append(sourceIds, sourceId)

		taskLearnings := fmt.Sprintf("Angle %d resolved via source %s", i+1, sourceId)
		learnings += taskLearnings + "\n"

		err = hooks.Recorder.CompleteTask(ctx, taskId,
			map[string]interface{}{"source_ids": []string{sourceId.String()}},
			fmt.Sprintf("Analysis of angle %d", i+1),
			taskLearnings,
			int(e.StepDelay.Milliseconds()),
		)
		if err != nil {
			return nil, err
		}
		hooks.Emit(Event{Type: "task", Payload: map[string]interface{}{
			"task_id": taskId.String(),
			"status":  "completed",
		}})
	}

	// Writing
	if err := hooks.Phase(ctx, PhaseWriting, "drafting_report"); err != nil {
		return nil, err
	}
	if err := e.wait(ctx, hooks); err != nil {
		return nil, err
	}

	// The simulated report cites every discovered source.
	for _, sourceId := range sourceIds {
		if err := hooks.Recorder.CiteSource(ctx, sourceId); err != nil {
			return nil, err
		}
	}

	report := fmt.Sprintf("# %s\n\n%s\n\n## Findings\n\n%s", job.Question, plan, learnings)
	if continuation {
		report = fmt.Sprintf("%s\n\n## Prior context\n\n%s", report, job.ContinuationContext)
	}

	graph := map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"id": job.SessionId.String(), "type": "question", "label": job.Question},
		},
		"edges": []map[string]interface{}{},
	}

	return &Result{
		ReportPlan:     plan,
		FinalReport:    report,
		KnowledgeGraph: graph,
	}, nil
}

var _ Executor = (*SimulatedExecutor)(nil)
