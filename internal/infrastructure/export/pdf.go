package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/insurdesk/claims-desk/internal/domain/completeness"
)

// PDFExporter renders the printable checklist
type PDFExporter struct {
	// now fixes the embedded creation date so identical input renders
	// identical bytes
	now func() time.Time
}

// NewPDFExporter creates a PDF exporter
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: func() time.Time { return time.Unix(0, 0).UTC() }}
}

func (e *PDFExporter) Format() string      { return "pdf" }
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Export draws one line per requirement grouped under bold section headings
func (e *PDFExporter) Export(doc *completeness.ChecklistDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(e.now())
	pdf.SetTitle(doc.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range doc.Header()[1:] {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}

	for _, s := range doc.Report.Sections {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(s.Name), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		for _, r := range s.Requirements {
			label := completeness.Mark(r) + " " + r.Label
			if r.Mandatory {
				label += " *"
			}
			pdf.CellFormat(0, 7, tr(label), "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	footer := "All mandatory documents received"
	if !doc.Report.Complete {
		footer = "Missing mandatory documents: " + strings.Join(doc.Report.MissingMandatory, ", ")
	}
	pdf.MultiCell(0, 6, tr(footer+"\n* mandatory"), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
