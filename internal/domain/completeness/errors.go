package completeness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

var (
	// ErrPreconditionFailed is matched by every failed approval precondition
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrIncompleteDocumentation is returned when mandatory documents are missing
	ErrIncompleteDocumentation = errors.New("incomplete documentation")

	// ErrUnknownClaimType is returned for claims whose type has no checklist
	ErrUnknownClaimType = errors.New("unknown claim type")
)

// IncompleteDocumentationError carries the mandatory documents that block
// approval, in checklist order
type IncompleteDocumentationError struct {
	ClaimID string
	Missing []string
}

func (e *IncompleteDocumentationError) Error() string {
	return fmt.Sprintf("claim %s: %s: missing %s", e.ClaimID, ErrIncompleteDocumentation, strings.Join(e.Missing, ", "))
}

// Unwrap lets errors.Is match both ErrIncompleteDocumentation and ErrPreconditionFailed
func (e *IncompleteDocumentationError) Unwrap() []error {
	return []error{ErrIncompleteDocumentation, ErrPreconditionFailed}
}

// InvalidTransitionError reports an approve or reject on a closed claim
type InvalidTransitionError struct {
	ClaimID string
	From    workflow.State
	Trigger workflow.Trigger
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("claim %s: %s: %s is not allowed from %q", e.ClaimID, workflow.ErrInvalidTransition, e.Trigger, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return workflow.ErrInvalidTransition
}
