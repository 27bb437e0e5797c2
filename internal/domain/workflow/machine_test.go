package workflow

import (
	"errors"
	"reflect"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateSubmitted, false},
		{StateDocsPending, false},
		{StateInAssessment, false},
		{StateProcessing, false},
		{StateApproved, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StateSubmitted, true},
		{"valid multi-word state", StateDocsPending, true},
		{"upper-cased label", State("APPROVED"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Next(t *testing.T) {
	tests := []struct {
		state  State
		next   State
		exists bool
	}{
		{StateSubmitted, StateDocsPending, true},
		{StateDocsPending, StateInAssessment, true},
		{StateInAssessment, StateProcessing, true},
		{StateProcessing, "", false},
		{StateApproved, "", false},
		{StateRejected, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			next, ok := tt.state.Next()
			if ok != tt.exists || next != tt.next {
				t.Errorf("State.Next() = (%v, %v), want (%v, %v)", next, ok, tt.next, tt.exists)
			}
		})
	}
}

func TestParseState(t *testing.T) {
	st, err := ParseState("In Assessment")
	if err != nil {
		t.Fatalf("ParseState() error = %v", err)
	}
	if st != StateInAssessment {
		t.Errorf("ParseState() = %v, want %v", st, StateInAssessment)
	}

	if _, err := ParseState("Closed"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("ParseState() error = %v, want %v", err, ErrInvalidState)
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StateSubmitted)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	if config2 := builder.Configure(StateSubmitted); config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("INVALID"))
}

func TestBuilder_BuildIsolatesLaterConfiguration(t *testing.T) {
	builder := NewBuilder()
	machine := builder.Build(StateSubmitted)

	builder.Configure(StateSubmitted).Permit(TriggerAdvance, StateDocsPending)

	if machine.CanFire(TriggerAdvance) {
		t.Error("machine built before Configure() should not see the new transition")
	}
}

func TestStateConfiguration_PermitIf(t *testing.T) {
	tests := []struct {
		name      string
		guard     GuardFunc
		wantErr   error
		wantState State
	}{
		{"guard passes", func() bool { return true }, nil, StateApproved},
		{"guard fails", func() bool { return false }, ErrGuardFailed, StateProcessing},
		{"no guard", nil, nil, StateApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := NewBuilder()
			builder.Configure(StateProcessing).PermitIf(TriggerApprove, StateApproved, tt.guard)
			machine := builder.Build(StateProcessing)

			err := machine.Fire(TriggerApprove)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fire() error = %v, want %v", err, tt.wantErr)
			}
			if machine.State() != tt.wantState {
				t.Errorf("State after Fire() = %v, want %v", machine.State(), tt.wantState)
			}
		})
	}
}

func TestStateMachine_FireUnconfiguredTrigger(t *testing.T) {
	machine := NewBuilder().Build(StateApproved)

	err := machine.Fire(TriggerReject)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestClaimLifecycle_ForwardPath(t *testing.T) {
	machine := ClaimLifecycle(nil).Build(StateSubmitted)

	want := []State{StateDocsPending, StateInAssessment, StateProcessing}
	for _, expected := range want {
		if err := machine.Fire(TriggerAdvance); err != nil {
			t.Fatalf("Fire(ADVANCE) failed: %v", err)
		}
		if machine.State() != expected {
			t.Fatalf("State after ADVANCE = %v, want %v", machine.State(), expected)
		}
	}

	if err := machine.Fire(TriggerAdvance); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ADVANCE from Processing error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestClaimLifecycle_RejectFromEveryOpenState(t *testing.T) {
	for _, st := range States() {
		t.Run(string(st), func(t *testing.T) {
			machine := ClaimLifecycle(func() bool { return false }).Build(st)
			err := machine.Fire(TriggerReject)

			if st.IsTerminal() {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("REJECT from %v error = %v, want %v", st, err, ErrInvalidTransition)
				}
				return
			}
			if err != nil {
				t.Fatalf("REJECT from %v failed: %v", st, err)
			}
			if machine.State() != StateRejected {
				t.Errorf("State after REJECT = %v, want %v", machine.State(), StateRejected)
			}
		})
	}
}

func TestClaimLifecycle_ApproveGuard(t *testing.T) {
	blocked := ClaimLifecycle(func() bool { return false }).Build(StateInAssessment)
	if blocked.CanFire(TriggerApprove) {
		t.Error("CanFire(APPROVE) should be false when the guard fails")
	}
	if err := blocked.Fire(TriggerApprove); !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire(APPROVE) error = %v, want %v", err, ErrGuardFailed)
	}

	open := ClaimLifecycle(func() bool { return true }).Build(StateSubmitted)
	if err := open.Fire(TriggerApprove); err != nil {
		t.Fatalf("Fire(APPROVE) failed: %v", err)
	}
	if open.State() != StateApproved {
		t.Errorf("State after APPROVE = %v, want %v", open.State(), StateApproved)
	}
}

func TestClaimLifecycle_PermittedTriggers(t *testing.T) {
	tests := []struct {
		state State
		want  []Trigger
	}{
		{StateSubmitted, []Trigger{TriggerAdvance, TriggerApprove, TriggerReject}},
		{StateProcessing, []Trigger{TriggerApprove, TriggerReject}},
		{StateApproved, []Trigger{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			got := ClaimLifecycle(nil).Build(tt.state).PermittedTriggers()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PermittedTriggers() = %v, want %v", got, tt.want)
			}
		})
	}
}
