package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
)

type GradebookUseCase struct {
	submissions ports.SubmissionStore
	analyses    ports.AnalysisStore
	renderer    ports.GradebookRenderer
}

func NewGradebookUseCase(
	submissions ports.SubmissionStore,
	analyses ports.AnalysisStore,
	renderer ports.GradebookRenderer,
) *GradebookUseCase {
	return &GradebookUseCase{
		submissions: submissions,
		analyses:    analyses,
		renderer:    renderer,
	}
}

func (uc *GradebookUseCase) Submissions(ctx context.Context, classroomID, studentID int64) ([]domain.Submission, error) {
	if err := validatePair(classroomID, studentID); err != nil {
		return nil, err
	}
	list, err := uc.submissions.ListByStudent(ctx, classroomID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return list, nil
}

// Progress returns the analysis summary; a missing analysis is ErrNotFound.
func (uc *GradebookUseCase) Progress(ctx context.Context, classroomID, studentID int64) (*domain.Analysis, error) {
	if err := validatePair(classroomID, studentID); err != nil {
		return nil, err
	}
	analysis, err := uc.analyses.GetByStudent(ctx, classroomID, studentID)
	if err != nil {
		return nil, fmt.Errorf("get progress report: %w", err)
	}
	return analysis, nil
}

func (uc *GradebookUseCase) Export(ctx context.Context, classroomID, studentID int64, w io.Writer) error {
	list, err := uc.Submissions(ctx, classroomID, studentID)
	if err != nil {
		return err
	}
	if err := uc.renderer.Render(w, classroomID, studentID, list); err != nil {
		return fmt.Errorf("render gradebook: %w", err)
	}
	return nil
}

func validatePair(classroomID, studentID int64) error {
	if classroomID <= 0 {
		return domain.NewValidationError("classroomId", "must be positive")
	}
	if studentID <= 0 {
		return domain.NewValidationError("studentId", "must be positive")
	}
	return nil
}
