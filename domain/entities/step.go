package entities

import (
	"fmt"
	"time"
)

// StepAction represents the type of browser action a step performs
type StepAction string

const (
	ActionNavigate     StepAction = "navigate"
	ActionClick        StepAction = "click"
	ActionFill         StepAction = "fill"
	ActionWaitFixed    StepAction = "wait"
	ActionWaitForState StepAction = "wait_for_state"
	ActionReload       StepAction = "reload"
	ActionSetOffline   StepAction = "set_offline"
)

// KnownActions lists every action the runner can execute
var KnownActions = []StepAction{
	ActionNavigate,
	ActionClick,
	ActionFill,
	ActionWaitFixed,
	ActionWaitForState,
	ActionReload,
	ActionSetOffline,
}

// IsKnown reports whether the action is one the runner can execute
func (a StepAction) IsKnown() bool {
	for _, known := range KnownActions {
		if a == known {
			return true
		}
	}
	return false
}

// LoadState is a page lifecycle state a step can wait for
type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// IsKnown reports whether the state is a supported page lifecycle state
func (s LoadState) IsKnown() bool {
	switch s {
	case LoadStateLoad, LoadStateDOMContentLoaded, LoadStateNetworkIdle:
		return true
	}
	return false
}

// Step represents one atomic browser action within a scenario.
// Intent is only used for reporting.
type Step struct {
	Action   StepAction    `json:"action" yaml:"action"`
	Intent   string        `json:"intent,omitempty" yaml:"intent,omitempty"`
	URL      string        `json:"url,omitempty" yaml:"url,omitempty"`
	Selector string        `json:"selector,omitempty" yaml:"selector,omitempty"`
	Index    int           `json:"index,omitempty" yaml:"index,omitempty"`
	Value    string        `json:"value,omitempty" yaml:"value,omitempty"`
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
	State    LoadState     `json:"state,omitempty" yaml:"state,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Offline  bool          `json:"offline,omitempty" yaml:"offline,omitempty"`

	// Attempts > 1 runs the step through the bounded retry wrapper.
	Attempts int `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// Navigate builds a step that loads url
func Navigate(url string) Step {
	return Step{Action: ActionNavigate, URL: url}
}

// Click builds a step that clicks the index-th match of selector
func Click(selector string, index int) Step {
	return Step{Action: ActionClick, Selector: selector, Index: index}
}

// Fill builds a step that fills the index-th match of selector with value
func Fill(selector string, index int, value string) Step {
	return Step{Action: ActionFill, Selector: selector, Index: index, Value: value}
}

// WaitFixed builds a step that pauses the scenario for d
func WaitFixed(d time.Duration) Step {
	return Step{Action: ActionWaitFixed, Duration: d}
}

// WaitForState builds a step that waits for the current page to reach state
func WaitForState(state LoadState, timeout time.Duration) Step {
	return Step{Action: ActionWaitForState, State: state, Timeout: timeout}
}

// Reload builds a step that reloads the current page
func Reload() Step {
	return Step{Action: ActionReload}
}

// SetOffline builds a step that toggles network emulation for the session
func SetOffline(offline bool) Step {
	return Step{Action: ActionSetOffline, Offline: offline}
}

// WithIntent returns a copy of the step carrying a human-readable intent
func (s Step) WithIntent(intent string) Step {
	s.Intent = intent
	return s
}

// WithAttempts returns a copy of the step allowed to run up to n times
func (s Step) WithAttempts(n int) Step {
	s.Attempts = n
	return s
}

// WithTimeout returns a copy of the step with its own action timeout
func (s Step) WithTimeout(d time.Duration) Step {
	s.Timeout = d
	return s
}

// MaxAttempts returns how many times the step may run, never less than one
func (s Step) MaxAttempts() int {
	if s.Attempts < 1 {
		return 1
	}
	return s.Attempts
}

// Describe renders the step for logs and failure reasons
func (s Step) Describe() string {
	var target string
	switch s.Action {
	case ActionNavigate:
		target = s.URL
	case ActionClick:
		target = fmt.Sprintf("%s[%d]", s.Selector, s.Index)
	case ActionFill:
		target = fmt.Sprintf("%s[%d] <- %q", s.Selector, s.Index, s.Value)
	case ActionWaitFixed:
		target = s.Duration.String()
	case ActionWaitForState:
		target = string(s.State)
	case ActionSetOffline:
		target = fmt.Sprintf("offline=%t", s.Offline)
	}

	if target == "" {
		return string(s.Action)
	}
	return fmt.Sprintf("%s %s", s.Action, target)
}
