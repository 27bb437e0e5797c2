package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

// ClaimType identifies which document checklist applies to a claim
type ClaimType string

const (
	ClaimTypeNormal     ClaimType = "NORMAL"     // natural death
	ClaimTypeAccidental ClaimType = "ACCIDENTAL" // accidental death
)

// ClaimTypes returns every supported claim type in display order
func ClaimTypes() []ClaimType {
	return []ClaimType{ClaimTypeNormal, ClaimTypeAccidental}
}

// IsValid returns true if the claim type is one of the defined constants
func (t ClaimType) IsValid() bool {
	switch t {
	case ClaimTypeNormal, ClaimTypeAccidental:
		return true
	default:
		return false
	}
}

// String returns the string representation of the claim type
func (t ClaimType) String() string {
	return string(t)
}

// ParseClaimType resolves a claim type case-insensitively
func ParseClaimType(s string) (ClaimType, error) {
	t := ClaimType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown claim type %q", s)
	}
	return t, nil
}

// Claim is a payout request tracked through the review workflow
type Claim struct {
	ID           int64          `json:"id"`
	ClaimID      string         `json:"claim_id"`
	CustomerName string         `json:"customer_name"`
	Policy       string         `json:"policy"`
	Amount       float64        `json:"claim_amount"`
	ClaimDate    time.Time      `json:"claim_date"`
	Notes        string         `json:"notes,omitempty"`
	ClaimType    ClaimType      `json:"claim_type"`
	Status       workflow.State `json:"status"`
	Evidence     []Evidence     `json:"documents"`
	// Version increments on every status or evidence change and guards
	// concurrent status writes.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EvidenceNames returns the display names of all attached evidence
func (c *Claim) EvidenceNames() []string {
	names := make([]string, 0, len(c.Evidence))
	for _, e := range c.Evidence {
		names = append(names, e.DisplayName)
	}
	return names
}

// Clone returns a copy of the claim that shares no slices with the original
func (c *Claim) Clone() *Claim {
	cp := *c
	cp.Evidence = append([]Evidence(nil), c.Evidence...)
	return &cp
}
