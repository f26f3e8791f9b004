package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

const (
	maxMultipartBytes = 64 << 20
	maxJSONBodyBytes  = 1 << 20
)

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// readFiles collects every file under field. Each file is read up to one byte
// past the upload limit so oversize payloads are still rejected downstream.
func readFiles(w http.ResponseWriter, r *http.Request, field string) ([]domain.UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return nil, domain.NewValidationError(field, "multipart form is required")
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	headers := r.MultipartForm.File[field]
	files := make([]domain.UploadedFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", header.Filename, err)
		}
		content, err := io.ReadAll(io.LimitReader(f, domain.MaxUploadBytes+1))
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", header.Filename, err)
		}
		files = append(files, domain.UploadedFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return files, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("body", "request body is required")
		}
		return domain.NewValidationError("body", "invalid json")
	}
	return nil
}

// decodeRubricDraft accepts JSON or, when the content type says so, YAML.
func decodeRubricDraft(w http.ResponseWriter, r *http.Request) (domain.RubricDraft, error) {
	var draft domain.RubricDraft
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.Contains(mediaType, "yaml") {
		return draft, decodeJSONBody(w, r, &draft)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := yaml.NewDecoder(r.Body).Decode(&draft); err != nil {
		if errors.Is(err, io.EOF) {
			return draft, domain.NewValidationError("body", "request body is required")
		}
		return draft, domain.NewValidationError("body", "invalid yaml")
	}
	return draft, nil
}
