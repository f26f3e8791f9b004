package restclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

// Multipart is a form body with every file under one field name.
type Multipart struct {
	Field string
	Files []domain.UploadedFile
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (m *Multipart) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, file := range m.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(m.Field), quoteEscaper.Replace(file.Filename)))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.Filename, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", file.Filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
