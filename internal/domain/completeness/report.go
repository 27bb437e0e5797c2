package completeness

import "github.com/insurdesk/claims-desk/internal/domain/entity"

// RequirementStatus is the evaluated state of one checklist entry
type RequirementStatus struct {
	Label     string `json:"label"`
	Mandatory bool   `json:"mandatory"`
	Satisfied bool   `json:"satisfied"`
	// MatchedBy is the first evidence name that satisfied the entry.
	MatchedBy string `json:"matched_by,omitempty"`
}

// SectionStatus groups evaluated entries under a section heading
type SectionStatus struct {
	Name         string              `json:"name"`
	Requirements []RequirementStatus `json:"requirements"`
}

// Report is the completeness of one claim at one point in time.
// Reports are derived values; they are recomputed on every request.
type Report struct {
	ClaimID          string           `json:"claim_id"`
	ClaimType        entity.ClaimType `json:"claim_type"`
	CatalogVersion   string           `json:"catalog_version"`
	Sections         []SectionStatus  `json:"sections"`
	MissingMandatory []string         `json:"missing_mandatory"`
	Complete         bool             `json:"is_complete"`
}

// Satisfied returns the satisfied flag for a label, and whether the label is
// part of the report at all
func (r *Report) Satisfied(label string) (satisfied, found bool) {
	for _, s := range r.Sections {
		for _, req := range s.Requirements {
			if req.Label == label {
				return req.Satisfied, true
			}
		}
	}
	return false, false
}

// Counts returns the number of satisfied entries and the total entry count
func (r *Report) Counts() (satisfied, total int) {
	for _, s := range r.Sections {
		for _, req := range s.Requirements {
			total++
			if req.Satisfied {
				satisfied++
			}
		}
	}
	return satisfied, total
}
