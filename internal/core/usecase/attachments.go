package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
)

type RubricAttachmentUseCase struct {
	rubrics   ports.RubricStore
	inspector ports.FileInspector
}

func NewRubricAttachmentUseCase(rubrics ports.RubricStore, inspector ports.FileInspector) *RubricAttachmentUseCase {
	return &RubricAttachmentUseCase{
		rubrics:   rubrics,
		inspector: inspector,
	}
}

func (uc *RubricAttachmentUseCase) ListRubrics(ctx context.Context, classroomID int64) ([]domain.Rubric, error) {
	if classroomID <= 0 {
		return nil, domain.NewValidationError("classroomId", "must be positive")
	}
	rubrics, err := uc.rubrics.ListByClassroom(ctx, classroomID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return []domain.Rubric{}, nil
		}
		return nil, fmt.Errorf("list rubrics: %w", err)
	}
	return rubrics, nil
}

// UploadDocuments accepts PDFs only, and only ones that actually parse.
func (uc *RubricAttachmentUseCase) UploadDocuments(ctx context.Context, rubricID int64, documents []domain.UploadedFile) error {
	if rubricID <= 0 {
		return domain.NewValidationError("rubricId", "must be positive")
	}
	prepared, err := prepareUploads(uc.inspector, documents, "document", isPDFType)
	if err != nil {
		return err
	}
	for _, doc := range prepared {
		pages, err := uc.inspector.CountPDFPages(doc.Content)
		if err != nil {
			return domain.NewValidationError(doc.Filename, "not a readable PDF: "+err.Error())
		}
		if pages == 0 {
			return domain.NewValidationError(doc.Filename, "PDF has no pages")
		}
	}

	if err := uc.rubrics.UploadDocuments(ctx, rubricID, prepared); err != nil {
		return fmt.Errorf("upload rubric documents: %w", err)
	}
	slog.Info("rubric_documents_uploaded", "rubric_id", rubricID, "documents", len(prepared))
	return nil
}

// UploadImages uploads question images, triggers extraction and returns the
// refreshed image metadata.
func (uc *RubricAttachmentUseCase) UploadImages(ctx context.Context, rubricID int64, images []domain.UploadedFile) ([]domain.ImageMetadata, error) {
	if rubricID <= 0 {
		return nil, domain.NewValidationError("rubricId", "must be positive")
	}
	prepared, err := prepareUploads(uc.inspector, images, "image", domain.IsImageType)
	if err != nil {
		return nil, err
	}

	if err := uc.rubrics.UploadImages(ctx, rubricID, prepared); err != nil {
		return nil, fmt.Errorf("upload rubric images: %w", err)
	}
	if err := uc.rubrics.ExtractImages(ctx, rubricID); err != nil {
		return nil, fmt.Errorf("extract rubric images: %w", err)
	}
	return uc.imageMetadata(ctx, rubricID)
}

func (uc *RubricAttachmentUseCase) DeleteImage(ctx context.Context, rubricID, imageID int64) ([]domain.ImageMetadata, error) {
	if rubricID <= 0 || imageID <= 0 {
		return nil, domain.NewValidationError("imageId", "rubric and image ids must be positive")
	}
	if err := uc.rubrics.DeleteImage(ctx, rubricID, imageID); err != nil {
		return nil, fmt.Errorf("delete rubric image: %w", err)
	}
	return uc.imageMetadata(ctx, rubricID)
}

func (uc *RubricAttachmentUseCase) imageMetadata(ctx context.Context, rubricID int64) ([]domain.ImageMetadata, error) {
	meta, err := uc.rubrics.ImageMetadata(ctx, rubricID)
	if err != nil {
		return nil, fmt.Errorf("load rubric image metadata: %w", err)
	}
	return meta, nil
}
