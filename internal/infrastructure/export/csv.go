package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/insurdesk/claims-desk/internal/domain/completeness"
)

// CSVExporter renders one row per checklist entry
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter
func NewCSVExporter() *CSVExporter { return &CSVExporter{} }

func (e *CSVExporter) Format() string      { return "csv" }
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Export writes the RowHeader line followed by the document rows
func (e *CSVExporter) Export(doc *completeness.ChecklistDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(completeness.RowHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(doc.Rows()); err != nil {
		return nil, fmt.Errorf("failed to write csv rows: %w", err)
	}

	return buf.Bytes(), nil
}
