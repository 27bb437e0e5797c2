// Package document inspects uploaded evidence before it is stored.
package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"
	"github.com/insurdesk/claims-desk/internal/application/port"
	"go.uber.org/zap"
)

// MimePDF is the MIME type of PDF documents
const MimePDF = "application/pdf"

// imageTypes are the image formats accepted as evidence. Each has a
// registered decoder.
var imageTypes = []string{"image/png", "image/jpeg", "image/gif"}

// Inspector sniffs uploaded content and verifies that it can be opened.
// PDFs go through MuPDF for a page count; images must decode.
type Inspector struct {
	logger *zap.Logger
}

// NewInspector creates a new document inspector
func NewInspector(logger *zap.Logger) *Inspector {
	return &Inspector{logger: logger}
}

// Inspect detects the content type from the bytes, never from the file name
func (i *Inspector) Inspect(ctx context.Context, fileName string, content []byte) (*port.DocumentInfo, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%s: empty file: %w", fileName, port.ErrUnreadableDocument)
	}

	mime := mimetype.Detect(content)
	switch {
	case mime.Is(MimePDF):
		pages, err := i.countPages(content)
		if err != nil {
			i.logger.Warn("Rejected unreadable PDF",
				zap.String("file_name", fileName),
				zap.Error(err))
			return nil, fmt.Errorf("%s: %w", fileName, port.ErrUnreadableDocument)
		}
		return &port.DocumentInfo{MimeType: MimePDF, PageCount: pages}, nil

	case mimetype.EqualsAny(mime.String(), imageTypes...):
		if _, _, err := image.DecodeConfig(bytes.NewReader(content)); err != nil {
			i.logger.Warn("Rejected unreadable image",
				zap.String("file_name", fileName),
				zap.String("mime_type", mime.String()),
				zap.Error(err))
			return nil, fmt.Errorf("%s: %w", fileName, port.ErrUnreadableDocument)
		}
		return &port.DocumentInfo{MimeType: mime.String(), PageCount: 1}, nil

	default:
		return nil, fmt.Errorf("%s: %s: %w", fileName, mime.String(), port.ErrUnsupportedDocument)
	}
}

func (i *Inspector) countPages(content []byte) (int, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pages, nil
}

// Verify interface compliance
var _ port.DocumentInspector = (*Inspector)(nil)
