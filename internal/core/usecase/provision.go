package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
)

const defaultProvisionParallelism = 8

// ProvisionAssignmentUseCase creates a rubric for a classroom and one empty
// submission per enrolled student.
type ProvisionAssignmentUseCase struct {
	roster      ports.RosterDirectory
	rubrics     ports.RubricStore
	submissions ports.SubmissionStore
	validate    *validator.Validate
	parallelism int
}

func NewProvisionAssignmentUseCase(
	roster ports.RosterDirectory,
	rubrics ports.RubricStore,
	submissions ports.SubmissionStore,
	parallelism int,
) *ProvisionAssignmentUseCase {
	if parallelism <= 0 {
		parallelism = defaultProvisionParallelism
	}
	return &ProvisionAssignmentUseCase{
		roster:      roster,
		rubrics:     rubrics,
		submissions: submissions,
		validate:    validator.New(),
		parallelism: parallelism,
	}
}

func (uc *ProvisionAssignmentUseCase) Provision(
	ctx context.Context,
	classroomID int64,
	draft domain.RubricDraft,
) (*domain.ProvisionResult, error) {
	if classroomID <= 0 {
		return nil, domain.NewValidationError("classroomId", "must be positive")
	}
	if err := uc.validateDraft(draft); err != nil {
		return nil, err
	}

	students, err := uc.roster.ListClassroomStudents(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list classroom students: %w", err)
	}
	studentIDs := make([]int64, 0, len(students))
	for _, student := range students {
		studentIDs = append(studentIDs, student.ID)
	}

	rubric, err := uc.rubrics.Create(ctx, domain.NewRubric{
		ClassroomID:     classroomID,
		Title:           draft.Title,
		Questions:       draft.Questions,
		GradingCriteria: draft.GradingCriteria,
		Criteria:        draft.Criteria,
		TotalMarks:      draft.TotalMarks,
		StudentIDs:      studentIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("create rubric: %w", err)
	}
	if rubric == nil || rubric.ID == 0 {
		return nil, domain.WrapError(domain.ErrServer, "create rubric", errors.New("response has no rubric id"))
	}

	submissions, err := uc.createSubmissions(ctx, classroomID, rubric.ID, studentIDs)
	if err != nil {
		slog.Error("assignment_provision_partial",
			"classroom_id", classroomID,
			"rubric_id", rubric.ID,
			"students", len(studentIDs),
			"error", err,
		)
		return nil, err
	}

	slog.Info("assignment_provisioned",
		"classroom_id", classroomID,
		"rubric_id", rubric.ID,
		"submissions", len(submissions),
	)
	return &domain.ProvisionResult{
		Rubric:      *rubric,
		Submissions: submissions,
	}, nil
}

func (uc *ProvisionAssignmentUseCase) createSubmissions(
	ctx context.Context,
	classroomID, rubricID int64,
	studentIDs []int64,
) ([]domain.Submission, error) {
	out := make([]domain.Submission, len(studentIDs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uc.parallelism)
	for i, studentID := range studentIDs {
		group.Go(func() error {
			created, err := uc.submissions.Create(groupCtx, domain.NewSubmissionDraft{
				StudentID:     studentID,
				ClassroomID:   classroomID,
				MarkingRubric: domain.RubricRef{ID: rubricID},
			})
			if err != nil {
				return fmt.Errorf("create submission for student %d: %w", studentID, err)
			}
			if created != nil {
				out[i] = *created
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *ProvisionAssignmentUseCase) validateDraft(draft domain.RubricDraft) error {
	err := uc.validate.Struct(draft)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return domain.NewValidationError(first.Field(), "failed '"+first.Tag()+"' rule")
	}
	return domain.WrapError(domain.ErrValidation, "validate rubric draft", err)
}
