package export

import (
	"github.com/insurdesk/claims-desk/internal/domain/completeness"
)

// TextExporter renders the plain-text checklist
type TextExporter struct{}

// NewTextExporter creates a plain-text exporter
func NewTextExporter() *TextExporter { return &TextExporter{} }

func (e *TextExporter) Format() string      { return "txt" }
func (e *TextExporter) ContentType() string { return "text/plain; charset=utf-8" }

// Export returns the document text
func (e *TextExporter) Export(doc *completeness.ChecklistDocument) ([]byte, error) {
	return []byte(doc.Text()), nil
}
