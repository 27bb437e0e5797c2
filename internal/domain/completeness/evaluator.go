// Package completeness evaluates claim document checklists and enforces the
// approval and rejection edges of the claim lifecycle.
//
// Every operation is a pure computation over a caller-supplied claim.
// The evaluator never mutates its input and keeps no per-claim state, so it
// is safe for concurrent use. Persisting a transition safely is the
// caller's job.
package completeness

import (
	"errors"
	"fmt"

	"github.com/insurdesk/claims-desk/internal/domain/checklist"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

// Evaluator computes completeness reports against a catalog
type Evaluator struct {
	catalog *checklist.Catalog
	match   func(label string, evidenceNames []string) (string, bool)
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithMatcher replaces the document matching rule
func WithMatcher(match checklist.MatchFunc) Option {
	return func(e *Evaluator) {
		e.match = func(label string, names []string) (string, bool) {
			return "", match(label, names)
		}
	}
}

// NewEvaluator creates an Evaluator backed by catalog
func NewEvaluator(catalog *checklist.Catalog, opts ...Option) *Evaluator {
	e := &Evaluator{
		catalog: catalog,
		match:   checklist.Match,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the evaluator reads from
func (e *Evaluator) Catalog() *checklist.Catalog {
	return e.catalog
}

// Evaluate builds the completeness report for a claim. Sections, entries and
// missing mandatory labels all follow catalog order.
func (e *Evaluator) Evaluate(claim *entity.Claim) (*Report, error) {
	sections := e.catalog.RequirementsFor(claim.ClaimType)
	if sections == nil {
		return nil, fmt.Errorf("claim %s: %w %q", claim.ClaimID, ErrUnknownClaimType, claim.ClaimType)
	}

	names := claim.EvidenceNames()
	report := &Report{
		ClaimID:          claim.ClaimID,
		ClaimType:        claim.ClaimType,
		CatalogVersion:   e.catalog.Version(),
		Sections:         make([]SectionStatus, 0, len(sections)),
		MissingMandatory: []string{},
	}

	satisfied := make(map[string]bool)
	for _, s := range sections {
		status := SectionStatus{Name: s.Name, Requirements: make([]RequirementStatus, 0, len(s.Requirements))}
		for _, label := range s.Requirements {
			matchedBy, ok := e.match(label, names)
			satisfied[label] = ok
			status.Requirements = append(status.Requirements, RequirementStatus{
				Label:     label,
				Mandatory: e.catalog.IsMandatory(claim.ClaimType, label),
				Satisfied: ok,
				MatchedBy: matchedBy,
			})
		}
		report.Sections = append(report.Sections, status)
	}

	// MandatoryFor is already in checklist order.
	for _, label := range e.catalog.MandatoryFor(claim.ClaimType) {
		if !satisfied[label] {
			report.MissingMandatory = append(report.MissingMandatory, label)
		}
	}
	report.Complete = len(report.MissingMandatory) == 0

	return report, nil
}

// MissingIntake returns the intake labels for claimType that no file name
// satisfies, in checklist order
func (e *Evaluator) MissingIntake(claimType entity.ClaimType, fileNames []string) ([]string, error) {
	if _, ok := e.catalog.Checklist(claimType); !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownClaimType, claimType)
	}

	missing := []string{}
	for _, label := range e.catalog.IntakeFor(claimType) {
		if _, ok := e.match(label, fileNames); !ok {
			missing = append(missing, label)
		}
	}
	return missing, nil
}

// CanApprove reports whether Approve would succeed for the claim
func (e *Evaluator) CanApprove(claim *entity.Claim) bool {
	report, err := e.Evaluate(claim)
	if err != nil {
		return false
	}
	return e.lifecycle(report).Build(claim.Status).CanFire(workflow.TriggerApprove)
}

// Approve returns a copy of the claim in Approved status. It fails with
// *InvalidTransitionError on a closed claim and with
// *IncompleteDocumentationError while mandatory documents are missing.
func (e *Evaluator) Approve(claim *entity.Claim) (*entity.Claim, error) {
	if claim.Status.IsTerminal() {
		return nil, &InvalidTransitionError{ClaimID: claim.ClaimID, From: claim.Status, Trigger: workflow.TriggerApprove}
	}

	report, err := e.Evaluate(claim)
	if err != nil {
		return nil, err
	}

	if err := e.fire(claim, report, workflow.TriggerApprove); err != nil {
		return nil, err
	}

	approved := claim.Clone()
	approved.Status = workflow.StateApproved
	return approved, nil
}

// Reject returns a copy of the claim in Rejected status. Completeness is not
// consulted; only closed claims are refused.
func (e *Evaluator) Reject(claim *entity.Claim) (*entity.Claim, error) {
	if err := e.fire(claim, nil, workflow.TriggerReject); err != nil {
		return nil, err
	}

	rejected := claim.Clone()
	rejected.Status = workflow.StateRejected
	return rejected, nil
}

// Advance returns a copy of the claim moved one review stage forward
func (e *Evaluator) Advance(claim *entity.Claim) (*entity.Claim, error) {
	machine := e.lifecycle(nil).Build(validState(claim.Status))
	if err := machine.Fire(workflow.TriggerAdvance); err != nil {
		return nil, &InvalidTransitionError{ClaimID: claim.ClaimID, From: claim.Status, Trigger: workflow.TriggerAdvance}
	}

	advanced := claim.Clone()
	advanced.Status = machine.State()
	return advanced, nil
}

func (e *Evaluator) fire(claim *entity.Claim, report *Report, trigger workflow.Trigger) error {
	err := e.lifecycle(report).Build(validState(claim.Status)).Fire(trigger)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workflow.ErrGuardFailed):
		return &IncompleteDocumentationError{
			ClaimID: claim.ClaimID,
			Missing: append([]string(nil), report.MissingMandatory...),
		}
	default:
		return &InvalidTransitionError{ClaimID: claim.ClaimID, From: claim.Status, Trigger: trigger}
	}
}

// lifecycle builds the claim state machine with approval gated on report
func (e *Evaluator) lifecycle(report *Report) workflow.StateMachineBuilder {
	return workflow.ClaimLifecycle(func() bool {
		return report != nil && report.Complete
	})
}

// validState maps statuses the machine does not know to a terminal state so
// that corrupt records can never be approved.
func validState(s workflow.State) workflow.State {
	if !s.IsValid() {
		return workflow.StateRejected
	}
	return s
}
