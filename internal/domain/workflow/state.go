package workflow

// State is a claim status in the review lifecycle.
// Values match the labels shown to staff and stored in the claims table.
type State string

const (
	StateSubmitted    State = "Submitted"
	StateDocsPending  State = "Docs Pending"
	StateInAssessment State = "In Assessment"
	StateProcessing   State = "Processing"
	StateApproved     State = "Approved"
	StateRejected     State = "Rejected"
)

// forwardStages is the review sequence in order. Rejected sits outside it.
var forwardStages = []State{
	StateSubmitted,
	StateDocsPending,
	StateInAssessment,
	StateProcessing,
	StateApproved,
}

var validStates = map[State]bool{
	StateSubmitted:    true,
	StateDocsPending:  true,
	StateInAssessment: true,
	StateProcessing:   true,
	StateApproved:     true,
	StateRejected:     true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid claim state
func (s State) IsValid() bool {
	return validStates[s]
}

// Stage returns the position of the state in the forward review sequence,
// or -1 for Rejected and unknown states.
func (s State) Stage() int {
	for i, st := range forwardStages {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the following review stage. The second result is false when
// the state has no forward successor reachable by Advance.
func (s State) Next() (State, bool) {
	i := s.Stage()
	// Processing -> Approved is only reachable through Approve.
	if i < 0 || i+1 >= len(forwardStages)-1 {
		return "", false
	}
	return forwardStages[i+1], true
}

// States returns every claim state, forward stages first.
func States() []State {
	return append(append([]State{}, forwardStages...), StateRejected)
}

// ParseState resolves a stored or user-supplied status label.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.IsValid() {
		return "", ErrInvalidState
	}
	return st, nil
}
