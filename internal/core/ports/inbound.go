package ports

import (
	"context"
	"io"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

// ImageIngestor validates and uploads answer images for a submission.
type ImageIngestor interface {
	IngestImages(ctx context.Context, submissionID int64, images []domain.UploadedFile) (domain.UploadResult, error)
}

// SubmissionProcessor runs the submission lifecycle saga.
type SubmissionProcessor interface {
	Process(ctx context.Context, req domain.ProcessRequest) (*domain.ProcessResult, error)
}

// RunReader exposes saga cursors.
type RunReader interface {
	LatestRun(ctx context.Context, submissionID int64) (*domain.Run, error)
}

// AssignmentProvisioner creates a rubric and one submission per enrolled student.
type AssignmentProvisioner interface {
	Provision(ctx context.Context, classroomID int64, draft domain.RubricDraft) (*domain.ProvisionResult, error)
}

// RubricAttachmentManager manages rubric documents and question images.
type RubricAttachmentManager interface {
	ListRubrics(ctx context.Context, classroomID int64) ([]domain.Rubric, error)
	UploadDocuments(ctx context.Context, rubricID int64, documents []domain.UploadedFile) error
	UploadImages(ctx context.Context, rubricID int64, images []domain.UploadedFile) ([]domain.ImageMetadata, error)
	DeleteImage(ctx context.Context, rubricID, imageID int64) ([]domain.ImageMetadata, error)
}

// GradebookService is the read side for a student's results in a classroom.
type GradebookService interface {
	Submissions(ctx context.Context, classroomID, studentID int64) ([]domain.Submission, error)
	Progress(ctx context.Context, classroomID, studentID int64) (*domain.Analysis, error)
	Export(ctx context.Context, classroomID, studentID int64, w io.Writer) error
}

// SessionService manages explicit login sessions.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, session *domain.Session) error
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}
