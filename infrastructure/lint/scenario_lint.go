package lint

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"ui_flow_runner/domain/entities"
	"ui_flow_runner/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// LongWaitThreshold is the longest literal wait that passes without a warning
const LongWaitThreshold = 5 * time.Second

// positional XPath such as html/body/div[2]/main/div/div[2]/a
var positionalXPath = regexp.MustCompile(`^(xpath=)?/{0,2}html/body(/[a-z0-9]+(\[\d+\])?){3,}$`)

var destructiveKeywords = []string{
	"delete", "remove", "eliminar", "borrar",
	"cancel", "cancelar", "anular",
	"clear", "reset", "limpiar",
}

type ScenarioLinter struct {
	logger *logrus.Logger
}

func NewScenarioLinter(logger *logrus.Logger) *ScenarioLinter {
	return &ScenarioLinter{
		logger: logger,
	}
}

// Check - returns every finding about the scenario
func (l *ScenarioLinter) Check(scenario entities.Scenario) entities.LintReport {
	report := entities.LintReport{Scenario: scenario.Name}
	add := func(sev entities.Severity, step int, format string, args ...interface{}) {
		report.Issues = append(report.Issues, entities.LintIssue{
			Severity: sev,
			Step:     step,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if strings.TrimSpace(scenario.Name) == "" {
		add(entities.SeverityError, -1, "scenario has no name")
	}
	if len(scenario.Steps) == 0 {
		add(entities.SeverityError, -1, "scenario has no steps")
	}

	for i, step := range scenario.Steps {
		for _, msg := range l.stepErrors(step) {
			add(entities.SeverityError, i, "%s", msg)
		}

		if i > 0 && sameStep(scenario.Steps[i-1], step) {
			add(entities.SeverityWarning, i, "repeats the previous step; use attempts for retries")
		}
		if isPositionalXPath(step.Selector) {
			add(entities.SeverityWarning, i, "selector %q is a positional XPath and will break when the layout changes", step.Selector)
		}
		if step.Action == entities.ActionWaitFixed && step.Duration > LongWaitThreshold {
			add(entities.SeverityWarning, i, "literal wait of %s; prefer wait_for_state or an assertion", step.Duration)
		}
		if l.IsDestructiveStep(step) {
			add(entities.SeverityWarning, i, "step looks destructive: %s", step.Describe())
		}
	}

	for i, assertion := range scenario.Assertions {
		if strings.TrimSpace(assertion.Text) == "" {
			add(entities.SeverityError, -1, "assertion %d has no text", i+1)
		}
		if assertion.Timeout < 0 {
			add(entities.SeverityError, -1, "assertion %d has a negative timeout", i+1)
		}
	}

	return report
}

// Log - writes findings to the logger; returns the error findings as one error
func (l *ScenarioLinter) Log(report entities.LintReport) error {
	for _, issue := range report.Warnings() {
		l.logger.WithField("scenario", report.Scenario).Warn(issue.String())
	}
	return report.Err()
}

// IsDestructiveStep - checks whether clicking the step could destroy data
func (l *ScenarioLinter) IsDestructiveStep(step entities.Step) bool {
	if step.Action != entities.ActionClick {
		return false
	}

	lowerSelector := strings.ToLower(step.Selector)
	lowerIntent := strings.ToLower(step.Intent)
	for _, keyword := range destructiveKeywords {
		if strings.Contains(lowerSelector, keyword) || strings.Contains(lowerIntent, keyword) {
			return true
		}
	}
	return false
}

func (l *ScenarioLinter) stepErrors(step entities.Step) []string {
	var errs []string

	if !step.Action.IsKnown() {
		return append(errs, fmt.Sprintf("unknown action %q", step.Action))
	}
	if step.Timeout < 0 {
		errs = append(errs, "timeout must not be negative")
	}
	if step.Attempts < 0 {
		errs = append(errs, "attempts must not be negative")
	}

	switch step.Action {
	case entities.ActionNavigate:
		if strings.TrimSpace(step.URL) == "" {
			errs = append(errs, "navigate needs a url")
		}
	case entities.ActionClick, entities.ActionFill:
		if strings.TrimSpace(step.Selector) == "" {
			errs = append(errs, fmt.Sprintf("%s needs a selector", step.Action))
		}
		if step.Index < 0 {
			errs = append(errs, "index must not be negative")
		}
	case entities.ActionWaitFixed:
		if step.Duration <= 0 {
			errs = append(errs, "wait needs a positive duration")
		}
	case entities.ActionWaitForState:
		if !step.State.IsKnown() {
			errs = append(errs, fmt.Sprintf("unknown load state %q", step.State))
		}
	}

	return errs
}

func sameStep(a, b entities.Step) bool {
	a.Intent, b.Intent = "", ""
	return a == b
}

func isPositionalXPath(selector string) bool {
	return positionalXPath.MatchString(strings.ToLower(selector))
}

var _ interfaces.ScenarioLinter = (*ScenarioLinter)(nil)
