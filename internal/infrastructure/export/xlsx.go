package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/insurdesk/claims-desk/internal/domain/completeness"
)

const (
	sheetName     = "Checklist"
	tableHeadRow  = 5
	tableFirstRow = tableHeadRow + 1
)

// XLSXExporter renders the checklist as a single-sheet workbook
type XLSXExporter struct{}

// NewXLSXExporter creates an XLSX exporter
func NewXLSXExporter() *XLSXExporter { return &XLSXExporter{} }

func (e *XLSXExporter) Format() string { return "xlsx" }
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export lays out the header lines in A1:A3 and the table from row 5
func (e *XLSXExporter) Export(doc *completeness.ChecklistDocument) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, line := range doc.Header() {
		cell := fmt.Sprintf("A%d", i+1)
		if err := file.SetCellValue(sheetName, cell, line); err != nil {
			return nil, fmt.Errorf("failed to set header at %s: %w", cell, err)
		}
	}

	if err := e.writeRow(file, tableHeadRow, completeness.RowHeader); err != nil {
		return nil, err
	}
	for i, row := range doc.Rows() {
		if err := e.writeRow(file, tableFirstRow+i, row); err != nil {
			return nil, err
		}
	}

	footerRow := tableFirstRow + len(doc.Rows()) + 1
	footer := "All mandatory documents received"
	if !doc.Report.Complete {
		footer = "Missing mandatory documents: " + strings.Join(doc.Report.MissingMandatory, ", ")
	}
	if err := file.SetCellValue(sheetName, fmt.Sprintf("A%d", footerRow), footer); err != nil {
		return nil, fmt.Errorf("failed to set footer: %w", err)
	}

	if err := e.applyStyles(file); err != nil {
		return nil, err
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *XLSXExporter) writeRow(file *excelize.File, row int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cell := fmt.Sprintf("A%d", row)
	if err := file.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to set row %d: %w", row, err)
	}
	return nil
}

func (e *XLSXExporter) applyStyles(file *excelize.File) error {
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	if err := file.SetCellStyle(sheetName, "A1", "A1", bold); err != nil {
		return fmt.Errorf("failed to style title: %w", err)
	}
	head := fmt.Sprintf("D%d", tableHeadRow)
	if err := file.SetCellStyle(sheetName, fmt.Sprintf("A%d", tableHeadRow), head, bold); err != nil {
		return fmt.Errorf("failed to style table header: %w", err)
	}

	if err := file.SetColWidth(sheetName, "A", "B", 36); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return file.SetColWidth(sheetName, "C", "D", 12)
}
