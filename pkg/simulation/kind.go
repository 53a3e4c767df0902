package simulation

import "fmt"

// Kind identifies the intersection control policy of a run
type Kind int

const (
	KindReservationFCFS Kind = iota + 1
	KindApproxMultiPhaseSignal
	KindApproxStopSign
)

// Kinds lists every supported policy in display order
var Kinds = []Kind{KindReservationFCFS, KindApproxMultiPhaseSignal, KindApproxStopSign}

var kindTokens = map[Kind]string{
	KindReservationFCFS:        "FCFS",
	KindApproxMultiPhaseSignal: "SIGNAL",
	KindApproxStopSign:         "STOP",
}

var kindNames = map[Kind]string{
	KindReservationFCFS:        "reservation-fcfs",
	KindApproxMultiPhaseSignal: "approx-multi-phase-signal",
	KindApproxStopSign:         "approx-stop-sign",
}

var kindDescriptions = map[Kind]string{
	KindReservationFCFS:        "First-come-first-served tile reservation with time buffers",
	KindApproxMultiPhaseSignal: "Approximated multi-phase traffic signal driven by a phase table",
	KindApproxStopSign:         "Approximated all-way stop sign; every vehicle stops before entering",
}

// String returns the long name of the policy
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Token returns the command-line token that selects the policy
func (k Kind) Token() string {
	return kindTokens[k]
}

// Description returns a one-line summary of the policy
func (k Kind) Description() string {
	return kindDescriptions[k]
}

// ParseKind maps a command-line token to a Kind. Matching is case sensitive.
func ParseKind(token string) (Kind, bool) {
	for k, t := range kindTokens {
		if t == token {
			return k, true
		}
	}
	return 0, false
}
