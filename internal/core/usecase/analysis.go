package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
)

// AnalysisResolver finds or creates the analysis of a (classroom, student) pair.
// The read-then-write is not atomic: two concurrent callers may both create.
type AnalysisResolver struct {
	analyses ports.AnalysisStore
}

func NewAnalysisResolver(analyses ports.AnalysisStore) *AnalysisResolver {
	return &AnalysisResolver{analyses: analyses}
}

func (r *AnalysisResolver) Resolve(ctx context.Context, classroomID, studentID int64) (int64, bool, error) {
	existing, err := r.analyses.GetByStudent(ctx, classroomID, studentID)
	if err == nil {
		if existing == nil {
			return 0, false, domain.WrapError(domain.ErrServer, "get analysis", errors.New("empty analysis response"))
		}
		return existing.ID, false, nil
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		return 0, false, fmt.Errorf("get analysis: %w", err)
	}

	created, err := r.analyses.Create(ctx, domain.NewAnalysis{
		ClassID:   classroomID,
		StudentID: studentID,
		Summary:   "",
	})
	if err != nil {
		if domain.IsKind(err, domain.ErrConflict) {
			return r.rereadAfterConflict(ctx, classroomID, studentID)
		}
		return 0, false, fmt.Errorf("create analysis: %w", err)
	}
	if created == nil {
		return 0, false, domain.WrapError(domain.ErrServer, "create analysis", errors.New("empty analysis response"))
	}

	slog.Info("analysis_created",
		"analysis_id", created.ID,
		"classroom_id", classroomID,
		"student_id", studentID,
	)
	return created.ID, true, nil
}

// A backend with a unique (classroom, student) constraint answers 409 to the
// losing creator; the winner's record is the one to use.
func (r *AnalysisResolver) rereadAfterConflict(ctx context.Context, classroomID, studentID int64) (int64, bool, error) {
	existing, err := r.analyses.GetByStudent(ctx, classroomID, studentID)
	if err != nil {
		return 0, false, fmt.Errorf("re-read analysis after create conflict: %w", err)
	}
	if existing == nil {
		return 0, false, domain.WrapError(domain.ErrServer, "re-read analysis", errors.New("empty analysis response"))
	}
	slog.Warn("analysis_create_conflict",
		"analysis_id", existing.ID,
		"classroom_id", classroomID,
		"student_id", studentID,
	)
	return existing.ID, false, nil
}
