package domain

// RetryState counts consecutive failed cycles
type RetryState struct {
	Count int
}

// Reset returns the state after a successful cycle
func (s RetryState) Reset() RetryState {
	return RetryState{}
}

// Next returns the state after another failed cycle
func (s RetryState) Next() RetryState {
	return RetryState{Count: s.Count + 1}
}

// Exceeded reports whether the retry limit has been passed
func (s RetryState) Exceeded(limit int) bool {
	return s.Count > limit
}

// OutcomeKind classifies the result of one job run
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	// OutcomeRetriable means the cycle failed and the caller may run it again
	OutcomeRetriable
	// OutcomeSuppressed means the retry limit was passed and the error was absorbed
	OutcomeSuppressed
)

// String returns the name of the outcome kind
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetriable:
		return "retriable_failure"
	case OutcomeSuppressed:
		return "fatal_suppressed"
	default:
		return "unknown"
	}
}

// CycleOutcome is the result of one job run
type CycleOutcome struct {
	Kind OutcomeKind
	Err  error
}

// Success builds a successful outcome
func Success() CycleOutcome {
	return CycleOutcome{Kind: OutcomeSuccess}
}

// RetriableFailure builds a failure the caller should see
func RetriableFailure(err error) CycleOutcome {
	return CycleOutcome{Kind: OutcomeRetriable, Err: err}
}

// FatalSuppressed builds a failure that was absorbed after the retry limit
func FatalSuppressed(err error) CycleOutcome {
	return CycleOutcome{Kind: OutcomeSuppressed, Err: err}
}

// Failed reports whether the caller should treat the run as failed
func (o CycleOutcome) Failed() bool {
	return o.Kind == OutcomeRetriable
}
