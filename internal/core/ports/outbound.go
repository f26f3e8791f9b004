package ports

import (
	"context"
	"io"
	"time"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

// SubmissionStore is the remote owner of submission records.
type SubmissionStore interface {
	UploadImages(ctx context.Context, submissionID int64, images []domain.UploadedFile) (domain.UploadResult, error)
	ExtractImages(ctx context.Context, submissionID int64) error
	Grade(ctx context.Context, submissionID, analysisID int64) (*domain.Submission, error)
	MarkSubmitted(ctx context.Context, submissionID int64) error
	MarkGraded(ctx context.Context, submissionID int64) error
	ListByStudent(ctx context.Context, classroomID, studentID int64) ([]domain.Submission, error)
	Feedback(ctx context.Context, studentID, classroomID, rubricID int64) (string, error)
	Create(ctx context.Context, draft domain.NewSubmissionDraft) (*domain.Submission, error)
}

// AnalysisStore is the remote owner of per-student analysis aggregates.
type AnalysisStore interface {
	GetByStudent(ctx context.Context, classroomID, studentID int64) (*domain.Analysis, error)
	Create(ctx context.Context, analysis domain.NewAnalysis) (*domain.Analysis, error)
}

// RubricStore is the remote owner of rubrics and their attachments.
type RubricStore interface {
	Create(ctx context.Context, rubric domain.NewRubric) (*domain.Rubric, error)
	ListByClassroom(ctx context.Context, classroomID int64) ([]domain.Rubric, error)
	UploadDocuments(ctx context.Context, rubricID int64, documents []domain.UploadedFile) error
	UploadImages(ctx context.Context, rubricID int64, images []domain.UploadedFile) error
	ExtractImages(ctx context.Context, rubricID int64) error
	ImageMetadata(ctx context.Context, rubricID int64) ([]domain.ImageMetadata, error)
	DeleteImage(ctx context.Context, rubricID, imageID int64) error
}

// RosterDirectory lists classroom enrolments.
type RosterDirectory interface {
	ListClassroomStudents(ctx context.Context, classroomID int64) ([]domain.Student, error)
}

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}

// TokenInspector reads claims from a bearer token issued by the auth service.
type TokenInspector interface {
	Inspect(token string) (userID int64, expiresAt time.Time, err error)
}

// RevocationStore remembers logged-out tokens until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RunStore persists saga cursors.
type RunStore interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	UpdateRun(ctx context.Context, run *domain.Run) error
	LatestRun(ctx context.Context, submissionID int64) (*domain.Run, error)
}

// OutcomeNotifier emits one notification per finished run.
type OutcomeNotifier interface {
	PublishRunOutcome(ctx context.Context, outcome domain.RunOutcome) error
}

// ProcessQueue carries asynchronous process requests to workers.
type ProcessQueue interface {
	PublishProcessRequest(ctx context.Context, req domain.ProcessRequest) error
	SubscribeProcessRequests(ctx context.Context, handler func(context.Context, domain.ProcessRequest) error) error
}

// FileInspector looks inside uploaded bytes.
type FileInspector interface {
	DetectContentType(content []byte) string
	CountPDFPages(content []byte) (int, error)
}

// GradebookRenderer writes a spreadsheet of submissions.
type GradebookRenderer interface {
	Render(w io.Writer, classroomID, studentID int64, submissions []domain.Submission) error
}

// RunObserver records orchestrator telemetry.
type RunObserver interface {
	RunStarted()
	StepFinished(step domain.SagaStep, seconds float64, err error)
	RunFinished(status domain.RunStatus, phase domain.Phase, seconds float64)
}
