package domain

import "time"

// SagaStep identifies one step of the submission lifecycle, in execution order.
type SagaStep string

const (
	StepNone            SagaStep = ""
	StepExtract         SagaStep = "extract"
	StepResolveAnalysis SagaStep = "resolve_analysis"
	StepGrade           SagaStep = "grade"
	StepMarkSubmitted   SagaStep = "mark_submitted"
	StepMarkGraded      SagaStep = "mark_graded"
	StepRefresh         SagaStep = "refresh"
	StepFeedback        SagaStep = "feedback"
)

var SagaSteps = []SagaStep{
	StepExtract,
	StepResolveAnalysis,
	StepGrade,
	StepMarkSubmitted,
	StepMarkGraded,
	StepRefresh,
	StepFeedback,
}

// Index returns the position of s in SagaSteps, or -1 for StepNone/unknown.
func (s SagaStep) Index() int {
	for i, step := range SagaSteps {
		if step == s {
			return i
		}
	}
	return -1
}

func (s SagaStep) FailurePhase() Phase {
	switch s {
	case StepExtract:
		return PhaseExtractionFailed
	case StepResolveAnalysis:
		return PhaseAnalysisResolutionFailed
	case StepGrade:
		return PhaseGradingFailed
	case StepMarkSubmitted:
		return PhaseMarkSubmittedFailed
	case StepMarkGraded:
		return PhaseMarkGradedFailed
	case StepRefresh:
		return PhaseRefreshFailed
	default:
		return PhaseFeedbackFailed
	}
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is the persisted saga cursor of one orchestrator invocation.
type Run struct {
	ID           string    `json:"id"`
	SubmissionID int64     `json:"submission_id"`
	ClassroomID  int64     `json:"classroom_id"`
	StudentID    int64     `json:"student_id"`
	LastStep     SagaStep  `json:"last_step"`
	AnalysisID   int64     `json:"analysis_id,omitempty"`
	Status       RunStatus `json:"status"`
	FailedPhase  Phase     `json:"failed_phase,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProcessRequest struct {
	SubmissionID int64 `json:"submissionId"`
	ClassroomID  int64 `json:"classroomId"`
	StudentID    int64 `json:"studentId"`
	Resume       bool  `json:"resume"`
}

type ProcessResult struct {
	RunID           string     `json:"run_id"`
	Submission      Submission `json:"submission"`
	Feedback        string     `json:"feedback"`
	AnalysisID      int64      `json:"analysis_id"`
	AnalysisCreated bool       `json:"analysis_created"`
	SkippedSteps    []SagaStep `json:"skipped_steps,omitempty"`
}

// RunOutcome is the single notification emitted when a run finishes.
type RunOutcome struct {
	RunID        string    `json:"run_id"`
	SubmissionID int64     `json:"submission_id"`
	ClassroomID  int64     `json:"classroom_id"`
	StudentID    int64     `json:"student_id"`
	Status       RunStatus `json:"status"`
	FailedPhase  Phase     `json:"failed_phase,omitempty"`
	Error        string    `json:"error,omitempty"`
	Score        *float64  `json:"score,omitempty"`
	FinishedAt   time.Time `json:"finished_at"`
}
