package usecase

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
)

const pdfContentType = "application/pdf"

// prepareUploads checks every file before anything is sent. The first offending
// file aborts the whole batch.
func prepareUploads(
	inspector ports.FileInspector,
	files []domain.UploadedFile,
	kind string,
	accept func(contentType string) bool,
) ([]domain.UploadedFile, error) {
	if len(files) == 0 {
		return nil, domain.NewValidationError(kind, "at least one file is required")
	}

	out := make([]domain.UploadedFile, 0, len(files))
	for i, file := range files {
		name := sanitizeFilename(file.Filename, fmt.Sprintf("%s-%d", kind, i+1))
		if file.Size() == 0 {
			return nil, domain.NewValidationError(name, "file is empty")
		}

		contentType := strings.TrimSpace(file.ContentType)
		if contentType == "" || contentType == "application/octet-stream" {
			if inspector != nil {
				contentType = inspector.DetectContentType(file.Content)
			}
		}
		if !accept(contentType) {
			return nil, domain.NewValidationError(name, fmt.Sprintf("unsupported content type %q", contentType))
		}
		if file.Size() >= domain.MaxUploadBytes {
			return nil, domain.NewValidationError(name, "file must be smaller than 5MB")
		}

		out = append(out, domain.UploadedFile{
			Filename:    name,
			ContentType: contentType,
			Content:     file.Content,
		})
	}
	return out, nil
}

func isPDFType(contentType string) bool {
	mediaType, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	return mediaType == pdfContentType
}

func sanitizeFilename(name, fallback string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return fallback
	}
	return base
}
