package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
)

type analysisResolver interface {
	Resolve(ctx context.Context, classroomID, studentID int64) (int64, bool, error)
}

// ProcessSubmissionUseCase runs the submission lifecycle saga:
// extract → resolve analysis → grade → mark submitted → mark graded → refresh → feedback.
// Steps commit independently on the remote service; nothing is rolled back.
type ProcessSubmissionUseCase struct {
	submissions ports.SubmissionStore
	resolver    analysisResolver
	runs        ports.RunStore
	notifier    ports.OutcomeNotifier
	observer    ports.RunObserver

	now   func() time.Time
	newID func() string
}

func NewProcessSubmissionUseCase(
	submissions ports.SubmissionStore,
	resolver analysisResolver,
	runs ports.RunStore,
	notifier ports.OutcomeNotifier,
	observer ports.RunObserver,
) *ProcessSubmissionUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &ProcessSubmissionUseCase{
		submissions: submissions,
		resolver:    resolver,
		runs:        runs,
		notifier:    notifier,
		observer:    observer,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

type sagaState struct {
	req             domain.ProcessRequest
	analysisID      int64
	analysisCreated bool
	graded          *domain.Submission
	refreshed       *domain.Submission
	feedback        string
}

type sagaStep struct {
	step domain.SagaStep
	run  func(ctx context.Context, state *sagaState) error
}

func (uc *ProcessSubmissionUseCase) Process(ctx context.Context, req domain.ProcessRequest) (*domain.ProcessResult, error) {
	if err := validateProcessRequest(req); err != nil {
		return nil, err
	}

	resumeAfter, resumedAnalysisID, err := uc.resumePoint(ctx, req)
	if err != nil {
		return nil, err
	}

	run := uc.startRun(ctx, req, resumeAfter, resumedAnalysisID)
	state := &sagaState{req: req, analysisID: resumedAnalysisID}

	uc.observer.RunStarted()
	started := uc.now()

	skipped, err := uc.runSteps(ctx, run, state, resumeAfter)
	if err == nil && state.refreshed == nil {
		err = &domain.PhaseError{
			Phase: domain.StepRefresh.FailurePhase(),
			RunID: run.ID,
			Err:   domain.WrapError(domain.ErrServer, "process submission", errors.New("saga finished without a refreshed submission")),
		}
	}
	uc.finishRun(ctx, run, state, err, started)
	if err != nil {
		return nil, err
	}

	return &domain.ProcessResult{
		RunID:           run.ID,
		Submission:      *state.refreshed,
		Feedback:        state.feedback,
		AnalysisID:      state.analysisID,
		AnalysisCreated: state.analysisCreated,
		SkippedSteps:    skipped,
	}, nil
}

func (uc *ProcessSubmissionUseCase) LatestRun(ctx context.Context, submissionID int64) (*domain.Run, error) {
	if submissionID <= 0 {
		return nil, domain.NewValidationError("submission_id", "must be positive")
	}
	return uc.runs.LatestRun(ctx, submissionID)
}

func (uc *ProcessSubmissionUseCase) steps() []sagaStep {
	return []sagaStep{
		{step: domain.StepExtract, run: uc.extract},
		{step: domain.StepResolveAnalysis, run: uc.resolveAnalysis},
		{step: domain.StepGrade, run: uc.grade},
		{step: domain.StepMarkSubmitted, run: uc.markSubmitted},
		{step: domain.StepMarkGraded, run: uc.markGraded},
		{step: domain.StepRefresh, run: uc.refresh},
		{step: domain.StepFeedback, run: uc.fetchFeedback},
	}
}

func (uc *ProcessSubmissionUseCase) runSteps(
	ctx context.Context,
	run *domain.Run,
	state *sagaState,
	resumeAfter domain.SagaStep,
) ([]domain.SagaStep, error) {
	var skipped []domain.SagaStep
	for _, s := range uc.steps() {
		if s.step.Index() <= resumeAfter.Index() {
			skipped = append(skipped, s.step)
			continue
		}

		started := uc.now()
		err := s.run(ctx, state)
		elapsed := uc.now().Sub(started)
		uc.observer.StepFinished(s.step, elapsed.Seconds(), err)
		if err != nil {
			return skipped, &domain.PhaseError{
				Phase: s.step.FailurePhase(),
				RunID: run.ID,
				Err:   err,
			}
		}

		run.LastStep = s.step
		run.AnalysisID = state.analysisID
		uc.saveCursor(ctx, run)

		slog.Info("saga_step_completed",
			"run_id", run.ID,
			"submission_id", state.req.SubmissionID,
			"step", string(s.step),
			"duration_ms", float64(elapsed.Microseconds())/1000.0,
		)
	}
	return skipped, nil
}

func (uc *ProcessSubmissionUseCase) extract(ctx context.Context, state *sagaState) error {
	if err := uc.submissions.ExtractImages(ctx, state.req.SubmissionID); err != nil {
		return fmt.Errorf("extract written answer: %w", err)
	}
	return nil
}

func (uc *ProcessSubmissionUseCase) resolveAnalysis(ctx context.Context, state *sagaState) error {
	analysisID, created, err := uc.resolver.Resolve(ctx, state.req.ClassroomID, state.req.StudentID)
	if err != nil {
		return fmt.Errorf("resolve analysis: %w", err)
	}
	state.analysisID = analysisID
	state.analysisCreated = created
	return nil
}

func (uc *ProcessSubmissionUseCase) grade(ctx context.Context, state *sagaState) error {
	if state.analysisID <= 0 {
		return domain.WrapError(domain.ErrValidation, "grade submission", errors.New("analysis id is not resolved"))
	}
	graded, err := uc.submissions.Grade(ctx, state.req.SubmissionID, state.analysisID)
	if err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	if graded == nil {
		return domain.WrapError(domain.ErrServer, "grade submission", errors.New("empty grading response"))
	}
	state.graded = graded
	return nil
}

func (uc *ProcessSubmissionUseCase) markSubmitted(ctx context.Context, state *sagaState) error {
	if err := uc.submissions.MarkSubmitted(ctx, state.req.SubmissionID); err != nil {
		return fmt.Errorf("mark submitted: %w", err)
	}
	return nil
}

func (uc *ProcessSubmissionUseCase) markGraded(ctx context.Context, state *sagaState) error {
	if err := uc.submissions.MarkGraded(ctx, state.req.SubmissionID); err != nil {
		return fmt.Errorf("mark graded: %w", err)
	}
	return nil
}

// refresh replaces the local copy with the store's record, which is authoritative.
func (uc *ProcessSubmissionUseCase) refresh(ctx context.Context, state *sagaState) error {
	list, err := uc.submissions.ListByStudent(ctx, state.req.ClassroomID, state.req.StudentID)
	if err != nil {
		return fmt.Errorf("refetch submissions: %w", err)
	}

	for i := range list {
		if list[i].ID == state.req.SubmissionID {
			refreshed := list[i]
			if err := refreshed.CheckInvariants(); err != nil {
				slog.Warn("submission_invariant_violated",
					"submission_id", refreshed.ID,
					"error", err,
				)
			}
			state.refreshed = &refreshed
			return nil
		}
	}

	if state.graded == nil {
		return domain.WrapError(
			domain.ErrNotFound,
			"refetch submissions",
			fmt.Errorf("submission %d missing from classroom %d student %d list", state.req.SubmissionID, state.req.ClassroomID, state.req.StudentID),
		)
	}

	slog.Warn("submission_missing_after_refresh",
		"submission_id", state.req.SubmissionID,
		"classroom_id", state.req.ClassroomID,
		"student_id", state.req.StudentID,
	)
	fallback := *state.graded
	fallback.Submitted = true
	fallback.Graded = true
	state.refreshed = &fallback
	return nil
}

func (uc *ProcessSubmissionUseCase) fetchFeedback(ctx context.Context, state *sagaState) error {
	if state.refreshed == nil {
		return domain.WrapError(domain.ErrServer, "fetch feedback", errors.New("submission was not refreshed"))
	}
	rubricID := state.refreshed.RubricID()
	if rubricID == 0 && state.graded != nil {
		rubricID = state.graded.RubricID()
	}
	if rubricID == 0 {
		return domain.WrapError(domain.ErrValidation, "fetch feedback", errors.New("submission has no marking rubric"))
	}

	text, err := uc.submissions.Feedback(ctx, state.req.StudentID, state.req.ClassroomID, rubricID)
	if err != nil {
		return fmt.Errorf("fetch feedback: %w", err)
	}
	state.feedback = text
	state.refreshed.Feedback = &text
	return nil
}

func (uc *ProcessSubmissionUseCase) resumePoint(ctx context.Context, req domain.ProcessRequest) (domain.SagaStep, int64, error) {
	if !req.Resume {
		return domain.StepNone, 0, nil
	}

	latest, err := uc.runs.LatestRun(ctx, req.SubmissionID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return domain.StepNone, 0, nil
		}
		return domain.StepNone, 0, fmt.Errorf("load saga cursor: %w", err)
	}
	if latest == nil || latest.Status != domain.RunStatusFailed {
		return domain.StepNone, 0, nil
	}
	if latest.ClassroomID != req.ClassroomID || latest.StudentID != req.StudentID {
		return domain.StepNone, 0, nil
	}

	resumeAfter := latest.LastStep
	// Grading needs a resolved analysis; without one, restart from extraction.
	if resumeAfter.Index() >= domain.StepResolveAnalysis.Index() && latest.AnalysisID <= 0 {
		return domain.StepNone, 0, nil
	}
	// Refresh and feedback only build in-memory state, so they always re-run.
	if resumeAfter.Index() > domain.StepMarkGraded.Index() {
		resumeAfter = domain.StepMarkGraded
	}

	slog.Info("saga_resume",
		"submission_id", req.SubmissionID,
		"previous_run_id", latest.ID,
		"resume_after", string(resumeAfter),
	)
	return resumeAfter, latest.AnalysisID, nil
}

// startRun seeds the new run with the resumed cursor so a second failure
// keeps the progress earlier runs made.
func (uc *ProcessSubmissionUseCase) startRun(ctx context.Context, req domain.ProcessRequest, resumeAfter domain.SagaStep, analysisID int64) *domain.Run {
	now := uc.now()
	run := &domain.Run{
		ID:           uc.newID(),
		SubmissionID: req.SubmissionID,
		ClassroomID:  req.ClassroomID,
		StudentID:    req.StudentID,
		LastStep:     resumeAfter,
		AnalysisID:   analysisID,
		Status:       domain.RunStatusRunning,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.runs.CreateRun(ctx, run); err != nil {
		slog.Warn("saga_cursor_create_failed", "run_id", run.ID, "submission_id", req.SubmissionID, "error", err)
	}
	return run
}

func (uc *ProcessSubmissionUseCase) saveCursor(ctx context.Context, run *domain.Run) {
	run.UpdatedAt = uc.now()
	if err := uc.runs.UpdateRun(ctx, run); err != nil {
		slog.Warn("saga_cursor_save_failed",
			"run_id", run.ID,
			"submission_id", run.SubmissionID,
			"last_step", string(run.LastStep),
			"error", err,
		)
	}
}

func (uc *ProcessSubmissionUseCase) finishRun(ctx context.Context, run *domain.Run, state *sagaState, runErr error, started time.Time) {
	outcome := domain.RunOutcome{
		RunID:        run.ID,
		SubmissionID: run.SubmissionID,
		ClassroomID:  run.ClassroomID,
		StudentID:    run.StudentID,
		FinishedAt:   uc.now(),
	}

	if runErr != nil {
		phase, _ := domain.FailedPhase(runErr)
		run.Status = domain.RunStatusFailed
		run.FailedPhase = phase
		run.Error = runErr.Error()
		outcome.Status = domain.RunStatusFailed
		outcome.FailedPhase = phase
		outcome.Error = runErr.Error()
		slog.Error("saga_run_failed",
			"run_id", run.ID,
			"submission_id", run.SubmissionID,
			"phase", string(phase),
			"last_step", string(run.LastStep),
			"error", runErr,
		)
	} else {
		run.Status = domain.RunStatusSucceeded
		outcome.Status = domain.RunStatusSucceeded
		if state.refreshed != nil {
			outcome.Score = state.refreshed.Score
		}
		slog.Info("saga_run_succeeded", "run_id", run.ID, "submission_id", run.SubmissionID)
	}

	// The caller may have gone away; the cursor and outcome are still recorded.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	uc.saveCursor(finishCtx, run)
	uc.observer.RunFinished(run.Status, run.FailedPhase, uc.now().Sub(started).Seconds())

	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.PublishRunOutcome(finishCtx, outcome); err != nil {
		slog.Warn("saga_outcome_publish_failed", "run_id", run.ID, "error", err)
	}
}

func validateProcessRequest(req domain.ProcessRequest) error {
	switch {
	case req.SubmissionID <= 0:
		return domain.NewValidationError("submissionId", "must be positive")
	case req.ClassroomID <= 0:
		return domain.NewValidationError("classroomId", "must be positive")
	case req.StudentID <= 0:
		return domain.NewValidationError("studentId", "must be positive")
	default:
		return nil
	}
}

type noopObserver struct{}

func (noopObserver) RunStarted() {}

func (noopObserver) StepFinished(domain.SagaStep, float64, error) {}

func (noopObserver) RunFinished(domain.RunStatus, domain.Phase, float64) {}
