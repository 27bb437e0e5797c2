package completeness

import (
	"strings"

	"github.com/insurdesk/claims-desk/internal/domain/entity"
)

// ChecklistTitle heads every rendered checklist
const ChecklistTitle = "Claim Document Checklist"

// Marks used for requirement lines
const (
	MarkChecked   = "[x]"
	MarkUnchecked = "[ ]"
)

// Row column headers shared by tabular exporters
var RowHeader = []string{"Section", "Document", "Mandatory", "Status"}

// ChecklistDocument is the export-ready form of a completeness report.
// It wraps the report directly so exported content cannot drift from
// Evaluate.
type ChecklistDocument struct {
	Title  string  `json:"title"`
	Report *Report `json:"report"`
}

// RenderChecklistReport evaluates the claim and returns its checklist document
func (e *Evaluator) RenderChecklistReport(claim *entity.Claim) (*ChecklistDocument, error) {
	report, err := e.Evaluate(claim)
	if err != nil {
		return nil, err
	}
	return &ChecklistDocument{Title: ChecklistTitle, Report: report}, nil
}

// Mark returns the checkbox mark for a requirement
func Mark(r RequirementStatus) string {
	if r.Satisfied {
		return MarkChecked
	}
	return MarkUnchecked
}

// Header returns the preface lines: title, claim id and claim type
func (d *ChecklistDocument) Header() []string {
	return []string{
		d.Title,
		"Claim ID: " + d.Report.ClaimID,
		"Claim Type: " + d.Report.ClaimType.String(),
	}
}

// Text renders the document as plain text, one line per requirement,
// grouped under section headers
func (d *ChecklistDocument) Text() string {
	var b strings.Builder
	for _, line := range d.Header() {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for _, s := range d.Report.Sections {
		b.WriteByte('\n')
		b.WriteString(s.Name)
		b.WriteByte('\n')
		for _, r := range s.Requirements {
			b.WriteString("  ")
			b.WriteString(Mark(r))
			b.WriteByte(' ')
			b.WriteString(r.Label)
			if r.Mandatory {
				b.WriteString(" *")
			}
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	if len(d.Report.MissingMandatory) == 0 {
		b.WriteString("All mandatory documents received\n")
	} else {
		b.WriteString("Missing mandatory documents: ")
		b.WriteString(strings.Join(d.Report.MissingMandatory, ", "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Rows flattens the document into table rows matching RowHeader
func (d *ChecklistDocument) Rows() [][]string {
	var rows [][]string
	for _, s := range d.Report.Sections {
		for _, r := range s.Requirements {
			mandatory := "No"
			if r.Mandatory {
				mandatory = "Yes"
			}
			status := "Missing"
			if r.Satisfied {
				status = "Received"
			}
			rows = append(rows, []string{s.Name, r.Label, mandatory, status})
		}
	}
	return rows
}

// FileName returns the conventional export file name for an extension
func (d *ChecklistDocument) FileName(ext string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, d.Report.ClaimID)
	return "claim-" + id + "-checklist." + ext
}
