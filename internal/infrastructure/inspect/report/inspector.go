package report

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/ledongthuc/pdf"
)

// Inspector checks that an upload's bytes agree with its declared type and,
// for PDFs, that the document parses and has at least one page.
type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

func (i *Inspector) Inspect(filename, contentType string, data []byte) error {
	switch contentType {
	case "application/pdf":
		return inspectPDF(filename, data)
	case "image/jpeg", "image/png":
		sniffed := http.DetectContentType(data)
		if sniffed != contentType {
			return fmt.Errorf("%s: content looks like %s, not %s", filename, sniffed, contentType)
		}
		return nil
	default:
		return fmt.Errorf("%s: unsupported file type %q", filename, contentType)
	}
}

func inspectPDF(filename string, data []byte) (err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return fmt.Errorf("%s: missing PDF header", filename)
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: unreadable PDF: %v", filename, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%s: unreadable PDF: %w", filename, err)
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("%s: PDF has no pages", filename)
	}
	return nil
}
