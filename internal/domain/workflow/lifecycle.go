package workflow

// ClaimLifecycle returns a builder configured with the claim review
// lifecycle:
//
//	Submitted -> Docs Pending -> In Assessment -> Processing   (ADVANCE)
//	any non-terminal -> Approved                             (APPROVE, guarded)
//	any non-terminal -> Rejected                             (REJECT)
//
// Approved and Rejected have no outgoing transitions. approvalGuard is
// evaluated when APPROVE fires; nil permits approval unconditionally.
func ClaimLifecycle(approvalGuard GuardFunc) StateMachineBuilder {
	b := NewBuilder()

	for _, st := range States() {
		if st.IsTerminal() {
			continue
		}
		cfg := b.Configure(st)
		if next, ok := st.Next(); ok {
			cfg.Permit(TriggerAdvance, next)
		}
		cfg.PermitIf(TriggerApprove, StateApproved, approvalGuard).
			Permit(TriggerReject, StateRejected)
	}

	return b
}
