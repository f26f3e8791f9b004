package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

func float64Ptr(v float64) *float64 { return &v }

type submissionStoreFake struct {
	mu    sync.Mutex
	calls []string

	uploadResult domain.UploadResult
	uploaded     []domain.UploadedFile
	graded       *domain.Submission
	listed       []domain.Submission
	feedback     string
	created      []domain.NewSubmissionDraft

	gradedAnalysisID int64
	feedbackRubricID int64

	failOn map[string]error
	delays map[string]time.Duration
}

func (f *submissionStoreFake) record(call string) error {
	f.mu.Lock()
	delay := f.delays[call]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failOn[call]
}

func (f *submissionStoreFake) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *submissionStoreFake) UploadImages(_ context.Context, _ int64, images []domain.UploadedFile) (domain.UploadResult, error) {
	if err := f.record("upload"); err != nil {
		return domain.UploadResult{}, err
	}
	f.uploaded = images
	return f.uploadResult, nil
}

func (f *submissionStoreFake) ExtractImages(context.Context, int64) error {
	return f.record("extract")
}

func (f *submissionStoreFake) Grade(_ context.Context, _ int64, analysisID int64) (*domain.Submission, error) {
	if err := f.record("grade"); err != nil {
		return nil, err
	}
	f.gradedAnalysisID = analysisID
	return f.graded, nil
}

func (f *submissionStoreFake) MarkSubmitted(context.Context, int64) error {
	return f.record("mark_submitted")
}

func (f *submissionStoreFake) MarkGraded(context.Context, int64) error {
	return f.record("mark_graded")
}

func (f *submissionStoreFake) ListByStudent(context.Context, int64, int64) ([]domain.Submission, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return f.listed, nil
}

func (f *submissionStoreFake) Feedback(_ context.Context, _, _, rubricID int64) (string, error) {
	if err := f.record("feedback"); err != nil {
		return "", err
	}
	f.feedbackRubricID = rubricID
	return f.feedback, nil
}

func (f *submissionStoreFake) Create(_ context.Context, draft domain.NewSubmissionDraft) (*domain.Submission, error) {
	if err := f.record("create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[fmt.Sprintf("create:%d", draft.StudentID)]; err != nil {
		return nil, err
	}
	f.created = append(f.created, draft)
	return &domain.Submission{
		ID:              int64(100 + len(f.created)),
		StudentID:       draft.StudentID,
		ClassroomID:     draft.ClassroomID,
		MarkingRubricID: draft.MarkingRubric.ID,
	}, nil
}

// analysisStoreFake keeps one analysis per (classroom, student) pair.
type analysisStoreFake struct {
	mu      sync.Mutex
	byPair  map[[2]int64]domain.Analysis
	nextID  int64
	creates int
	gets    int

	getErr    error
	createErr error

	// conflictWith is stored as the winner when Create answers with createErr.
	conflictWith *domain.Analysis
}

func newAnalysisStoreFake() *analysisStoreFake {
	return &analysisStoreFake{byPair: make(map[[2]int64]domain.Analysis), nextID: 7}
}

func (f *analysisStoreFake) GetByStudent(_ context.Context, classroomID, studentID int64) (*domain.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byPair[[2]int64{classroomID, studentID}]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get analysis", errors.New("status 404"))
	}
	return &a, nil
}

func (f *analysisStoreFake) Create(_ context.Context, in domain.NewAnalysis) (*domain.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		if f.conflictWith != nil {
			f.byPair[[2]int64{in.ClassID, in.StudentID}] = *f.conflictWith
		}
		return nil, f.createErr
	}
	a := domain.Analysis{ID: f.nextID, ClassID: in.ClassID, StudentID: in.StudentID, Summary: in.Summary}
	f.nextID++
	f.byPair[[2]int64{in.ClassID, in.StudentID}] = a
	return &a, nil
}

type runStoreFake struct {
	mu      sync.Mutex
	runs    map[string]domain.Run
	order   []string
	updates []domain.Run

	latest    *domain.Run
	latestErr error
	updateErr error
}

func newRunStoreFake() *runStoreFake {
	return &runStoreFake{runs: make(map[string]domain.Run)}
}

func (f *runStoreFake) CreateRun(_ context.Context, run *domain.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[run.ID] = *run
	f.order = append(f.order, run.ID)
	return nil
}

func (f *runStoreFake) UpdateRun(_ context.Context, run *domain.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, *run)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.runs[run.ID] = *run
	return nil
}

func (f *runStoreFake) LatestRun(_ context.Context, submissionID int64) (*domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if f.latest != nil {
		run := *f.latest
		return &run, nil
	}
	for i := len(f.order) - 1; i >= 0; i-- {
		run := f.runs[f.order[i]]
		if run.SubmissionID == submissionID {
			return &run, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "latest run", errors.New("no runs"))
}

type notifierFake struct {
	mu       sync.Mutex
	outcomes []domain.RunOutcome
	err      error
}

func (f *notifierFake) PublishRunOutcome(_ context.Context, outcome domain.RunOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
	return f.err
}

type observerFake struct {
	started  int
	steps    []domain.SagaStep
	statuses []domain.RunStatus
	phases   []domain.Phase
}

func (f *observerFake) RunStarted() { f.started++ }

func (f *observerFake) StepFinished(step domain.SagaStep, _ float64, _ error) {
	f.steps = append(f.steps, step)
}

func (f *observerFake) RunFinished(status domain.RunStatus, phase domain.Phase, _ float64) {
	f.statuses = append(f.statuses, status)
	f.phases = append(f.phases, phase)
}

type inspectorFake struct {
	contentType string
	pages       int
	pagesErr    error
}

func (f inspectorFake) DetectContentType([]byte) string {
	if f.contentType == "" {
		return "application/octet-stream"
	}
	return f.contentType
}

func (f inspectorFake) CountPDFPages([]byte) (int, error) {
	return f.pages, f.pagesErr
}
