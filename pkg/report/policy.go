package report

// TrafficPolicy decides how a reported cumulative traffic value is
// applied against the currently stored one within a reset period. The
// rollover path bypasses the policy: a rollover always rebaselines to
// the reported value.
type TrafficPolicy interface {
	Apply(stored, reported float64) float64
}

// AcceptReported trusts the reporter's self-tracked cumulative counter
// outright, including decreases (nodes may restart and lose in-memory
// counters). This is the default behavior.
type AcceptReported struct{}

func (AcceptReported) Apply(_, reported float64) float64 { return reported }

// MonotonicWithinPeriod refuses decreases between resets by keeping the
// stored value when the report comes in lower. Not enabled by default;
// available for deployments that would rather clamp reporter drift.
type MonotonicWithinPeriod struct{}

func (MonotonicWithinPeriod) Apply(stored, reported float64) float64 {
	if reported < stored {
		return stored
	}
	return reported
}
