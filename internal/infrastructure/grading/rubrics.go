package grading

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/restclient"
)

type Rubrics struct {
	client *restclient.Client
}

func NewRubrics(client *restclient.Client) *Rubrics {
	return &Rubrics{client: client}
}

func (r *Rubrics) Create(ctx context.Context, rubric domain.NewRubric) (*domain.Rubric, error) {
	var out domain.Rubric
	err := r.client.DoJSON(ctx, restclient.Request{
		Operation: "rubric_create",
		Method:    http.MethodPost,
		Path:      "/rubrics",
		JSON:      rubric,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByClassroom treats 404 as an empty list.
func (r *Rubrics) ListByClassroom(ctx context.Context, classroomID int64) ([]domain.Rubric, error) {
	var out []domain.Rubric
	err := r.client.DoJSON(ctx, restclient.Request{
		Operation: "rubric_list",
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/rubrics/classrooms/%d", classroomID),
	}, &out)
	if domain.IsKind(err, domain.ErrNotFound) {
		return []domain.Rubric{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Rubric{}
	}
	return out, nil
}

func (r *Rubrics) UploadDocuments(ctx context.Context, rubricID int64, documents []domain.UploadedFile) error {
	_, err := r.client.Do(ctx, restclient.Request{
		Operation: "rubric_upload_documents",
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("/rubrics/%d/upload-documents", rubricID),
		Form:      &restclient.Multipart{Field: "document", Files: documents},
	})
	return err
}

func (r *Rubrics) UploadImages(ctx context.Context, rubricID int64, images []domain.UploadedFile) error {
	_, err := r.client.Do(ctx, restclient.Request{
		Operation: "rubric_upload_images",
		Method:    http.MethodPut,
		Path:      fmt.Sprintf("/rubrics/%d/upload-images", rubricID),
		Form:      &restclient.Multipart{Field: "images", Files: images},
	})
	return err
}

func (r *Rubrics) ExtractImages(ctx context.Context, rubricID int64) error {
	_, err := r.client.Do(ctx, restclient.Request{
		Operation:  "rubric_extract",
		Method:     http.MethodPut,
		Path:       fmt.Sprintf("/rubrics/%d/extractPNG", rubricID),
		Idempotent: true,
	})
	return err
}

func (r *Rubrics) ImageMetadata(ctx context.Context, rubricID int64) ([]domain.ImageMetadata, error) {
	var out []domain.ImageMetadata
	err := r.client.DoJSON(ctx, restclient.Request{
		Operation: "rubric_image_metadata",
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/rubrics/%d/image-metadata", rubricID),
	}, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ImageMetadata{}
	}
	return out, nil
}

func (r *Rubrics) DeleteImage(ctx context.Context, rubricID, imageID int64) error {
	_, err := r.client.Do(ctx, restclient.Request{
		Operation: "rubric_delete_image",
		Method:    http.MethodDelete,
		Path:      fmt.Sprintf("/rubrics/%d/images/%d", rubricID, imageID),
	})
	return err
}
