// Package checklist holds the claim-type document catalog and the
// document matching rule used to decide whether a requirement is met.
package checklist

import (
	"strings"

	"github.com/insurdesk/claims-desk/internal/domain/entity"
)

// Section is a display group of document requirements
type Section struct {
	Name         string   `json:"name" yaml:"name"`
	Requirements []string `json:"requirements" yaml:"requirements"`
}

// Checklist is the full document configuration for one claim type
type Checklist struct {
	ClaimType entity.ClaimType `json:"claim_type" yaml:"type"`
	Sections  []Section        `json:"sections" yaml:"sections"`
	// Mandatory labels must be satisfied before approval.
	Mandatory []string `json:"mandatory" yaml:"mandatory"`
	// Intake labels must be satisfied when a claim is first submitted.
	Intake []string `json:"intake,omitempty" yaml:"intake"`
}

// Catalog is the read-only, versioned mapping from claim type to checklist.
// A Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	version    string
	checklists map[entity.ClaimType]Checklist
}

// New validates the checklists and builds a Catalog. Every supported claim
// type must be present. Mandatory and intake labels are re-ordered to follow
// checklist order.
func New(version string, checklists []Checklist) (*Catalog, error) {
	c := &Catalog{
		version:    version,
		checklists: make(map[entity.ClaimType]Checklist, len(checklists)),
	}

	for _, cl := range checklists {
		fail := func(label, reason string) error {
			return &ConfigurationError{Version: version, ClaimType: cl.ClaimType, Label: label, Reason: reason}
		}

		if !cl.ClaimType.IsValid() {
			return nil, fail("", "unknown claim type")
		}
		if _, dup := c.checklists[cl.ClaimType]; dup {
			return nil, fail("", "claim type defined more than once")
		}
		if len(cl.Sections) == 0 {
			return nil, fail("", "checklist has no sections")
		}

		position := make(map[string]int)
		sections := make([]Section, 0, len(cl.Sections))
		for _, s := range cl.Sections {
			if strings.TrimSpace(s.Name) == "" {
				return nil, fail("", "section without a name")
			}
			if len(s.Requirements) == 0 {
				return nil, fail("", "section "+s.Name+" has no requirements")
			}
			for _, label := range s.Requirements {
				if MatchKey(label) == "" {
					return nil, fail(label, "requirement label is blank")
				}
				if _, dup := position[label]; dup {
					return nil, fail(label, "requirement listed more than once")
				}
				position[label] = len(position)
			}
			sections = append(sections, Section{
				Name:         s.Name,
				Requirements: append([]string(nil), s.Requirements...),
			})
		}

		mandatory, err := inCatalogOrder(cl.Mandatory, position, func(label string) error {
			return fail(label, "mandatory label is not in the checklist")
		})
		if err != nil {
			return nil, err
		}
		intake, err := inCatalogOrder(cl.Intake, position, func(label string) error {
			return fail(label, "intake label is not in the checklist")
		})
		if err != nil {
			return nil, err
		}

		c.checklists[cl.ClaimType] = Checklist{
			ClaimType: cl.ClaimType,
			Sections:  sections,
			Mandatory: mandatory,
			Intake:    intake,
		}
	}

	for _, t := range entity.ClaimTypes() {
		if _, ok := c.checklists[t]; !ok {
			return nil, &ConfigurationError{Version: version, ClaimType: t, Reason: "no checklist defined"}
		}
	}

	return c, nil
}

// inCatalogOrder de-duplicates labels and sorts them by checklist position
func inCatalogOrder(labels []string, position map[string]int, orphan func(string) error) ([]string, error) {
	seen := make(map[string]bool, len(labels))
	ordered := make([]string, len(position))
	present := make([]bool, len(position))

	for _, label := range labels {
		pos, ok := position[label]
		if !ok {
			return nil, orphan(label)
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		ordered[pos] = label
		present[pos] = true
	}

	out := make([]string, 0, len(seen))
	for i, label := range ordered {
		if present[i] {
			out = append(out, label)
		}
	}
	return out, nil
}

// Version returns the catalog version string
func (c *Catalog) Version() string {
	return c.version
}

// ClaimTypes returns the claim types covered by the catalog in display order
func (c *Catalog) ClaimTypes() []entity.ClaimType {
	return entity.ClaimTypes()
}

// Checklist returns a copy of the checklist for a claim type
func (c *Catalog) Checklist(t entity.ClaimType) (Checklist, bool) {
	cl, ok := c.checklists[t]
	if !ok {
		return Checklist{}, false
	}
	return Checklist{
		ClaimType: cl.ClaimType,
		Sections:  copySections(cl.Sections),
		Mandatory: append([]string(nil), cl.Mandatory...),
		Intake:    append([]string(nil), cl.Intake...),
	}, true
}

// RequirementsFor returns the ordered sections for a claim type.
// Unknown claim types yield nil.
func (c *Catalog) RequirementsFor(t entity.ClaimType) []Section {
	cl, ok := c.checklists[t]
	if !ok {
		return nil
	}
	return copySections(cl.Sections)
}

// MandatoryFor returns the mandatory labels for a claim type in checklist order
func (c *Catalog) MandatoryFor(t entity.ClaimType) []string {
	return append([]string(nil), c.checklists[t].Mandatory...)
}

// IntakeFor returns the labels required at submission in checklist order
func (c *Catalog) IntakeFor(t entity.ClaimType) []string {
	return append([]string(nil), c.checklists[t].Intake...)
}

// IsMandatory reports whether label is mandatory for the claim type
func (c *Catalog) IsMandatory(t entity.ClaimType, label string) bool {
	for _, m := range c.checklists[t].Mandatory {
		if m == label {
			return true
		}
	}
	return false
}

// Labels returns every requirement label for a claim type in checklist order
func (c *Catalog) Labels(t entity.ClaimType) []string {
	var labels []string
	for _, s := range c.checklists[t].Sections {
		labels = append(labels, s.Requirements...)
	}
	return labels
}

func copySections(in []Section) []Section {
	out := make([]Section, len(in))
	for i, s := range in {
		out[i] = Section{Name: s.Name, Requirements: append([]string(nil), s.Requirements...)}
	}
	return out
}
