package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

func pdfFile(name string) domain.UploadedFile {
	return domain.UploadedFile{Filename: name, ContentType: "application/pdf", Content: []byte("%PDF-1.4 ...")}
}

func TestUploadDocumentsChecksPages(t *testing.T) {
	rubrics := &rubricStoreFake{}
	uc := NewRubricAttachmentUseCase(rubrics, inspectorFake{pages: 2})

	if err := uc.UploadDocuments(context.Background(), 3, []domain.UploadedFile{pdfFile("rubric.pdf")}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(rubrics.documents) != 1 || rubrics.documents[0].Filename != "rubric.pdf" {
		t.Fatalf("unexpected documents: %+v", rubrics.documents)
	}
}

func TestUploadDocumentsRejectsUnreadablePDF(t *testing.T) {
	cases := []struct {
		name      string
		inspector inspectorFake
		file      domain.UploadedFile
		reason    string
	}{
		{name: "parse error", inspector: inspectorFake{pagesErr: errors.New("malformed xref")}, file: pdfFile("a.pdf"), reason: "not a readable PDF"},
		{name: "no pages", inspector: inspectorFake{}, file: pdfFile("a.pdf"), reason: "no pages"},
		{name: "not a pdf", inspector: inspectorFake{pages: 1}, file: domain.UploadedFile{Filename: "a.png", ContentType: "image/png", Content: []byte{1}}, reason: "unsupported content type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rubrics := &rubricStoreFake{}
			uc := NewRubricAttachmentUseCase(rubrics, tc.inspector)

			err := uc.UploadDocuments(context.Background(), 3, []domain.UploadedFile{tc.file})
			if !domain.IsKind(err, domain.ErrValidation) || !strings.Contains(err.Error(), tc.reason) {
				t.Fatalf("expected validation error with %q, got %v", tc.reason, err)
			}
			if len(rubrics.calls) != 0 {
				t.Fatalf("rejected document must not be uploaded")
			}
		})
	}
}

func TestUploadRubricImagesExtractsAndReturnsMetadata(t *testing.T) {
	rubrics := &rubricStoreFake{metadata: []domain.ImageMetadata{{ID: 5, Filename: "q1.png"}}}
	uc := NewRubricAttachmentUseCase(rubrics, inspectorFake{})

	meta, err := uc.UploadImages(context.Background(), 3, []domain.UploadedFile{pngFile("q1.png", 10)})
	if err != nil {
		t.Fatalf("upload images: %v", err)
	}
	if !reflect.DeepEqual(rubrics.calls, []string{"upload_images", "extract", "metadata"}) {
		t.Fatalf("unexpected calls: %v", rubrics.calls)
	}
	if len(meta) != 1 || meta[0].ID != 5 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestDeleteRubricImage(t *testing.T) {
	rubrics := &rubricStoreFake{metadata: []domain.ImageMetadata{}}
	uc := NewRubricAttachmentUseCase(rubrics, inspectorFake{})

	meta, err := uc.DeleteImage(context.Background(), 3, 5)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(meta) != 0 || !reflect.DeepEqual(rubrics.deleted, []int64{5}) {
		t.Fatalf("unexpected state: meta=%v deleted=%v", meta, rubrics.deleted)
	}

	if _, err := uc.DeleteImage(context.Background(), 3, 0); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListRubricsTreatsNotFoundAsEmpty(t *testing.T) {
	rubrics := &rubricStoreFake{listErr: domain.WrapError(domain.ErrNotFound, "list rubrics", errors.New("status 404"))}
	uc := NewRubricAttachmentUseCase(rubrics, inspectorFake{})

	list, err := uc.ListRubrics(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
}
