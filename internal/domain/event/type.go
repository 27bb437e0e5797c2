package event

// Type identifies the type of domain event
type Type string

const (
	TypeClaimSubmitted   Type = "claim.submitted"
	TypeClaimAdvanced    Type = "claim.advanced"
	TypeClaimApproved    Type = "claim.approved"
	TypeClaimRejected    Type = "claim.rejected"
	TypeEvidenceAttached Type = "evidence.attached"
	TypeEvidenceRemoved  Type = "evidence.removed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeClaimSubmitted,
		TypeClaimAdvanced,
		TypeClaimApproved,
		TypeClaimRejected,
		TypeEvidenceAttached,
		TypeEvidenceRemoved:
		return true
	default:
		return false
	}
}
