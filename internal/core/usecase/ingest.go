package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
)

type ImageIngestionUseCase struct {
	submissions ports.SubmissionStore
	inspector   ports.FileInspector
}

func NewImageIngestionUseCase(submissions ports.SubmissionStore, inspector ports.FileInspector) *ImageIngestionUseCase {
	return &ImageIngestionUseCase{
		submissions: submissions,
		inspector:   inspector,
	}
}

// IngestImages binds answer images to a submission. It never marks the
// submission submitted.
func (uc *ImageIngestionUseCase) IngestImages(
	ctx context.Context,
	submissionID int64,
	images []domain.UploadedFile,
) (domain.UploadResult, error) {
	if submissionID <= 0 {
		return domain.UploadResult{}, domain.NewValidationError("submission_id", "must be positive")
	}

	prepared, err := prepareUploads(uc.inspector, images, "image", domain.IsImageType)
	if err != nil {
		return domain.UploadResult{}, err
	}

	result, err := uc.submissions.UploadImages(ctx, submissionID, prepared)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("upload submission images: %w", err)
	}

	slog.Info("submission_images_uploaded",
		"submission_id", submissionID,
		"images", len(prepared),
		"response_kind", string(result.Kind),
	)
	return result, nil
}
