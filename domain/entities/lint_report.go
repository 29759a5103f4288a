package entities

import (
	"fmt"
	"strings"
)

// Severity of a lint finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// LintIssue is one finding about a scenario definition.
// Step is the zero-based step index, or -1 for scenario-level findings.
type LintIssue struct {
	Severity Severity `json:"severity"`
	Step     int      `json:"step"`
	Message  string   `json:"message"`
}

func (i LintIssue) String() string {
	if i.Step < 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: step %d: %s", i.Severity, i.Step+1, i.Message)
}

// LintReport collects findings for one scenario
type LintReport struct {
	Scenario string      `json:"scenario"`
	Issues   []LintIssue `json:"issues"`
}

// Errors returns the findings that reject the scenario
func (r LintReport) Errors() []LintIssue {
	return r.filter(SeverityError)
}

// Warnings returns the findings that are only logged
func (r LintReport) Warnings() []LintIssue {
	return r.filter(SeverityWarning)
}

// Err returns a single error describing all error findings, or nil
func (r LintReport) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, issue := range errs {
		msgs = append(msgs, issue.String())
	}
	return fmt.Errorf("scenario %q is invalid: %s", r.Scenario, strings.Join(msgs, "; "))
}

func (r LintReport) filter(sev Severity) []LintIssue {
	var out []LintIssue
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}
