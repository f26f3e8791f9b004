package inspect

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

type Inspector struct{}

func New() *Inspector {
	return &Inspector{}
}

func (i *Inspector) DetectContentType(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	mt := mimetype.Detect(content)
	return mt.String()
}

// CountPDFPages fails when content is not a readable PDF document.
func (i *Inspector) CountPDFPages(content []byte) (pages int, err error) {
	if len(content) == 0 {
		return 0, fmt.Errorf("empty document")
	}
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return reader.NumPage(), nil
}
