package completeness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurdesk/claims-desk/internal/domain/checklist"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

func smallCatalog(t *testing.T) *checklist.Catalog {
	t.Helper()
	catalog, err := checklist.New("test", []checklist.Checklist{
		{
			ClaimType: entity.ClaimTypeNormal,
			Sections: []checklist.Section{
				{Name: "Identity", Requirements: []string{"Death Certificate", "Address Proof"}},
				{Name: "Financial", Requirements: []string{"Policy Document"}},
			},
			Mandatory: []string{"Death Certificate", "Policy Document"},
		},
		{
			ClaimType: entity.ClaimTypeAccidental,
			Sections:  []checklist.Section{{Name: "Accident Proof", Requirements: []string{"FIR"}}},
			Mandatory: []string{"FIR"},
		},
	})
	require.NoError(t, err)
	return catalog
}

func TestRenderChecklistReport_Text(t *testing.T) {
	e := NewEvaluator(smallCatalog(t))
	claim := newClaim(entity.ClaimTypeNormal, workflow.StateProcessing, "death_cert.pdf")

	doc, err := e.RenderChecklistReport(claim)
	require.NoError(t, err)

	want := "Claim Document Checklist\n" +
		"Claim ID: CLM-1010\n" +
		"Claim Type: NORMAL\n" +
		"\n" +
		"Identity\n" +
		"  [x] Death Certificate *\n" +
		"  [ ] Address Proof\n" +
		"\n" +
		"Financial\n" +
		"  [ ] Policy Document *\n" +
		"\n" +
		"Missing mandatory documents: Policy Document\n"
	assert.Equal(t, want, doc.Text())
}

func TestRenderChecklistReport_MatchesEvaluate(t *testing.T) {
	e := newEvaluator(t)
	claim := newClaim(entity.ClaimTypeAccidental, workflow.StateProcessing, "fir.pdf", "inquest.pdf")

	report, err := e.Evaluate(claim)
	require.NoError(t, err)
	doc, err := e.RenderChecklistReport(claim)
	require.NoError(t, err)

	assert.Equal(t, report, doc.Report)

	rows := doc.Rows()
	_, total := report.Counts()
	require.Len(t, rows, total)
	assert.Equal(t, []string{"Mandatory Documents", "Death Certificate", "Yes", "Missing"}, rows[0])
	assert.Equal(t, []string{"Accident Proof", "FIR", "Yes", "Received"}, rows[4])
}

func TestChecklistDocument_CompleteFooterAndFileName(t *testing.T) {
	e := NewEvaluator(smallCatalog(t))
	claim := newClaim(entity.ClaimTypeAccidental, workflow.StateProcessing, "FIR.pdf")
	claim.ClaimID = "CLM/2025 07"

	doc, err := e.RenderChecklistReport(claim)
	require.NoError(t, err)

	assert.Contains(t, doc.Text(), "All mandatory documents received\n")
	assert.Equal(t, "claim-CLM_2025_07-checklist.pdf", doc.FileName("pdf"))
}
