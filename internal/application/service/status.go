package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/insurdesk/claims-desk/internal/domain/completeness"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/event"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

// Approve moves the claim to Approved when every mandatory document is present
func (s *claimServiceImpl) Approve(ctx context.Context, id int64, actor string) (*entity.Claim, error) {
	return s.transition(ctx, id, actor, event.TypeClaimApproved, nil, s.evaluator.Approve)
}

// Reject closes the claim as Rejected regardless of completeness
func (s *claimServiceImpl) Reject(ctx context.Context, id int64, actor, reason string) (*entity.Claim, error) {
	var payload map[string]interface{}
	if reason != "" {
		payload = map[string]interface{}{"reason": reason}
	}
	return s.transition(ctx, id, actor, event.TypeClaimRejected, payload, s.evaluator.Reject)
}

// Advance moves the claim one review stage forward
func (s *claimServiceImpl) Advance(ctx context.Context, id int64, actor string) (*entity.Claim, error) {
	return s.transition(ctx, id, actor, event.TypeClaimAdvanced, nil, s.evaluator.Advance)
}

// UpdateStatus routes a requested target status to the matching transition.
// Only the claim's next review stage, Approved and Rejected are reachable.
func (s *claimServiceImpl) UpdateStatus(ctx context.Context, id int64, status, actor string) (*entity.Claim, error) {
	target, err := workflow.ParseState(status)
	if err != nil {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("status %q is not a claim status", status)}}
	}

	switch target {
	case workflow.StateApproved:
		return s.Approve(ctx, id, actor)
	case workflow.StateRejected:
		return s.Reject(ctx, id, actor, "")
	}

	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if next, ok := claim.Status.Next(); ok && next == target {
		return s.Advance(ctx, id, actor)
	}
	return nil, &completeness.InvalidTransitionError{
		ClaimID: claim.ClaimID,
		From:    claim.Status,
		Trigger: workflow.TriggerAdvance,
	}
}

// transition loads the claim, lets the evaluator decide the new status and
// persists it guarded by the version that was read
func (s *claimServiceImpl) transition(
	ctx context.Context,
	id int64,
	actor string,
	eventType event.Type,
	payload map[string]interface{},
	decide func(*entity.Claim) (*entity.Claim, error),
) (*entity.Claim, error) {
	claim, err := s.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := decide(claim)
	if err != nil {
		var incomplete *completeness.IncompleteDocumentationError
		if errors.As(err, &incomplete) {
			s.metrics.IncrementApprovalBlocked()
		}
		s.logger.Info("Status change refused", "id", id, "claim_id", claim.ClaimID, "reason", err.Error())
		return nil, err
	}

	actor = actorOrDefault(actor)
	ev := event.NewEvent(eventType, claim.ID, claim.ClaimID, payload).
		WithPayload(event.KeyPreviousStatus, claim.Status.String()).
		WithPayload(event.KeyNewStatus, updated.Status.String()).
		WithPayload(event.KeyActor, actor)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claims.UpdateStatus(txCtx, claim.ID, updated.Status, claim.Version); err != nil {
			return err
		}
		return s.recordEvent(txCtx, ev)
	})
	if err != nil {
		s.logger.Error("Failed to persist status change", "error", err, "id", id, "status", updated.Status)
		return nil, err
	}

	updated.Version = claim.Version + 1
	updated.UpdatedAt = s.now()
	s.metrics.IncrementTransition(updated.Status.String())
	s.logger.Info("Claim status changed", "id", id, "claim_id", claim.ClaimID,
		"from", claim.Status, "to", updated.Status, "actor", actor)
	return updated, nil
}
