package entities

import (
	"errors"
	"fmt"
	"time"
)

// Outcome represents the final classification of a scenario run
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeErrored Outcome = "errored"
)

// RunState represents where a scenario run is in its lifecycle
type RunState string

const (
	StateInit        RunState = "init"
	StateNavigating  RunState = "navigating"
	StateInteracting RunState = "interacting"
	StateAsserting   RunState = "asserting"
	StatePassed      RunState = "passed"
	StateFailed      RunState = "failed"
	StateErrored     RunState = "errored"
)

// IsTerminal reports whether no further transition can happen
func (s RunState) IsTerminal() bool {
	return s == StatePassed || s == StateFailed || s == StateErrored
}

// ErrTimeout marks a browser operation abandoned after its timeout
var ErrTimeout = errors.New("timeout")

// StepError wraps a failure of a single step
type StepError struct {
	Index  int
	Step   Step
	Reason error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %d (%s) failed", e.Index+1, e.Step.Describe())
	if e.Step.Intent != "" {
		msg += fmt.Sprintf(" [%s]", e.Step.Intent)
	}
	return fmt.Sprintf("%s: %v", msg, e.Reason)
}

func (e *StepError) Unwrap() error {
	return e.Reason
}

// RunResult is the outcome of one scenario execution
type RunResult struct {
	RunID    string  `json:"run_id"`
	Scenario string  `json:"scenario"`
	Outcome  Outcome `json:"outcome"`

	// Reason is set for Failed results.
	Reason string `json:"reason,omitempty"`

	// Err is set for Errored results.
	Err error `json:"-"`

	// FailedStep is the zero-based index of the step that errored, or -1.
	FailedStep    int           `json:"failed_step"`
	StepsExecuted int           `json:"steps_executed"`
	StartedAt     time.Time     `json:"started_at"`
	Elapsed       time.Duration `json:"-"`

	// States is the lifecycle the run went through, Init first.
	States []RunState `json:"states,omitempty"`
}

// Passed reports whether the scenario passed
func (r RunResult) Passed() bool {
	return r.Outcome == OutcomePassed
}

// Summary renders a one-line explanation of the outcome
func (r RunResult) Summary() string {
	switch r.Outcome {
	case OutcomeFailed:
		return r.Reason
	case OutcomeErrored:
		if r.Err != nil {
			return r.Err.Error()
		}
		return "errored"
	default:
		return ""
	}
}
