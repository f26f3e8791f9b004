package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

type rosterFake struct {
	students []domain.Student
	err      error
}

func (f rosterFake) ListClassroomStudents(context.Context, int64) ([]domain.Student, error) {
	return f.students, f.err
}

type rubricStoreFake struct {
	created    []domain.NewRubric
	createResp *domain.Rubric
	list       []domain.Rubric
	listErr    error
	documents  []domain.UploadedFile
	images     []domain.UploadedFile
	extracted  bool
	deleted    []int64
	metadata   []domain.ImageMetadata
	calls      []string
	failOn     map[string]error
}

func (f *rubricStoreFake) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failOn[call]
}

func (f *rubricStoreFake) Create(_ context.Context, in domain.NewRubric) (*domain.Rubric, error) {
	if err := f.record("create"); err != nil {
		return nil, err
	}
	f.created = append(f.created, in)
	if f.createResp != nil {
		return f.createResp, nil
	}
	return &domain.Rubric{ID: 3, ClassroomID: in.ClassroomID, Title: in.Title, StudentIDs: in.StudentIDs}, nil
}

func (f *rubricStoreFake) ListByClassroom(context.Context, int64) ([]domain.Rubric, error) {
	f.calls = append(f.calls, "list")
	return f.list, f.listErr
}

func (f *rubricStoreFake) UploadDocuments(_ context.Context, _ int64, docs []domain.UploadedFile) error {
	if err := f.record("upload_documents"); err != nil {
		return err
	}
	f.documents = docs
	return nil
}

func (f *rubricStoreFake) UploadImages(_ context.Context, _ int64, images []domain.UploadedFile) error {
	if err := f.record("upload_images"); err != nil {
		return err
	}
	f.images = images
	return nil
}

func (f *rubricStoreFake) ExtractImages(context.Context, int64) error {
	if err := f.record("extract"); err != nil {
		return err
	}
	f.extracted = true
	return nil
}

func (f *rubricStoreFake) ImageMetadata(context.Context, int64) ([]domain.ImageMetadata, error) {
	if err := f.record("metadata"); err != nil {
		return nil, err
	}
	return f.metadata, nil
}

func (f *rubricStoreFake) DeleteImage(_ context.Context, _ int64, imageID int64) error {
	if err := f.record("delete"); err != nil {
		return err
	}
	f.deleted = append(f.deleted, imageID)
	return nil
}

func validDraft() domain.RubricDraft {
	return domain.RubricDraft{
		Title:           "Linear equations",
		Questions:       "Solve x+y=5 for y.",
		GradingCriteria: "Correct rearrangement.",
		TotalMarks:      10,
	}
}

func TestProvisionCreatesSubmissionPerStudent(t *testing.T) {
	roster := rosterFake{students: []domain.Student{{ID: 9}, {ID: 10}, {ID: 11}}}
	rubrics := &rubricStoreFake{}
	subs := &submissionStoreFake{}
	uc := NewProvisionAssignmentUseCase(roster, rubrics, subs, 2)

	result, err := uc.Provision(context.Background(), 1, validDraft())
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if result.Rubric.ID != 3 {
		t.Fatalf("unexpected rubric: %+v", result.Rubric)
	}
	if len(rubrics.created) != 1 || len(rubrics.created[0].StudentIDs) != 3 {
		t.Fatalf("rubric should be created for the whole roster: %+v", rubrics.created)
	}
	if len(result.Submissions) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(result.Submissions))
	}

	var students []int64
	for _, draft := range subs.created {
		if draft.MarkingRubric.ID != 3 || draft.ClassroomID != 1 {
			t.Fatalf("unexpected draft: %+v", draft)
		}
		students = append(students, draft.StudentID)
	}
	sort.Slice(students, func(i, j int) bool { return students[i] < students[j] })
	if len(students) != 3 || students[0] != 9 || students[2] != 11 {
		t.Fatalf("unexpected students: %v", students)
	}
	for i, sub := range result.Submissions {
		if sub.StudentID != roster.students[i].ID {
			t.Fatalf("submission %d out of roster order: %+v", i, sub)
		}
	}
}

func TestProvisionValidatesDraft(t *testing.T) {
	rubrics := &rubricStoreFake{}
	uc := NewProvisionAssignmentUseCase(rosterFake{}, rubrics, &submissionStoreFake{}, 0)

	draft := validDraft()
	draft.Title = ""
	_, err := uc.Provision(context.Background(), 1, draft)
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validationErr.Field != "Title" {
		t.Fatalf("unexpected field: %q", validationErr.Field)
	}
	if len(rubrics.calls) != 0 {
		t.Fatalf("invalid draft must not reach the store")
	}

	if _, err := uc.Provision(context.Background(), 0, validDraft()); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for classroom id, got %v", err)
	}
}

func TestProvisionSurfacesSubmissionFailure(t *testing.T) {
	roster := rosterFake{students: []domain.Student{{ID: 9}, {ID: 10}}}
	subs := &submissionStoreFake{failOn: map[string]error{
		"create:10": domain.WrapError(domain.ErrServer, "create submission", errors.New("status 500")),
	}}
	uc := NewProvisionAssignmentUseCase(roster, &rubricStoreFake{}, subs, 1)

	_, err := uc.Provision(context.Background(), 1, validDraft())
	if !domain.IsKind(err, domain.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestProvisionRosterFailure(t *testing.T) {
	rubrics := &rubricStoreFake{}
	roster := rosterFake{err: domain.WrapError(domain.ErrTransport, "list students", errors.New("refused"))}
	uc := NewProvisionAssignmentUseCase(roster, rubrics, &submissionStoreFake{}, 1)

	if _, err := uc.Provision(context.Background(), 1, validDraft()); !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(rubrics.calls) != 0 {
		t.Fatalf("rubric must not be created without a roster")
	}
}

func TestProvisionRejectsRubricWithoutID(t *testing.T) {
	rubrics := &rubricStoreFake{createResp: &domain.Rubric{}}
	uc := NewProvisionAssignmentUseCase(rosterFake{}, rubrics, &submissionStoreFake{}, 1)

	if _, err := uc.Provision(context.Background(), 1, validDraft()); !domain.IsKind(err, domain.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
}
