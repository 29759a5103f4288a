package runner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"ui_flow_runner/domain/entities"
	"ui_flow_runner/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RecordedSettleDelay is the pause the recorded flows inserted before every
// click and fill. The runner waits for actionable elements instead and only
// applies a settle delay when Options.SettleDelay asks for one.
const RecordedSettleDelay = 3 * time.Second

const (
	DefaultActionTimeout = 5 * time.Second
	DefaultAssertTimeout = 3 * time.Second
	DefaultRetryPause    = 500 * time.Millisecond
)

// Options tunes how scenarios are executed
type Options struct {
	SettleDelay   time.Duration
	ActionTimeout time.Duration
	AssertTimeout time.Duration
	RetryPause    time.Duration
	Concurrency   int
}

type Runner struct {
	driver   interfaces.Driver
	recorder interfaces.Recorder
	logger   *logrus.Logger
	opts     Options
}

// NewRunner - creates new scenario runner; recorder may be nil
func NewRunner(driver interfaces.Driver, recorder interfaces.Recorder, logger *logrus.Logger, opts Options) *Runner {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}
	if opts.AssertTimeout <= 0 {
		opts.AssertTimeout = DefaultAssertTimeout
	}
	if opts.RetryPause <= 0 {
		opts.RetryPause = DefaultRetryPause
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Runner{
		driver:   driver,
		recorder: recorder,
		logger:   logger,
		opts:     opts,
	}
}

// RunAll - runs scenarios on independent sessions, at most
// Options.Concurrency at a time. Results keep the order of scenarios.
func (r *Runner) RunAll(ctx context.Context, scenarios []entities.Scenario, baseURL string) []entities.RunResult {
	results := make([]entities.RunResult, len(scenarios))

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, scenario := range scenarios {
		i, scenario := i, scenario
		g.Go(func() error {
			results[i] = r.Run(ctx, scenario, baseURL)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Run - executes one scenario end-to-end in its own session. The session is
// closed exactly once on every path, including panics.
func (r *Runner) Run(ctx context.Context, scenario entities.Scenario, baseURL string) (result entities.RunResult) {
	result = entities.RunResult{
		RunID:      uuid.NewString(),
		Scenario:   scenario.Name,
		FailedStep: -1,
		StartedAt:  time.Now(),
	}

	log := r.logger.WithFields(logrus.Fields{
		"scenario": scenario.Name,
		"run_id":   result.RunID,
	})
	machine := newStateMachine(log)

	defer func() {
		result.Elapsed = time.Since(result.StartedAt)
		result.States = machine.states()
		r.recorder.ObserveResult(result)

		entry := log.WithFields(logrus.Fields{
			"outcome": result.Outcome,
			"elapsed": result.Elapsed.Round(time.Millisecond),
		})
		if result.Passed() {
			entry.Info("scenario finished")
		} else {
			entry.WithField("reason", result.Summary()).Warn("scenario finished")
		}
	}()

	// index of the step being executed, -1 outside the step loop
	currentStep := -1
	defer func() {
		if p := recover(); p != nil {
			machine.transition(entities.StateErrored)
			result.Outcome = entities.OutcomeErrored
			result.FailedStep = currentStep
			panicErr := fmt.Errorf("panic during scenario: %v", p)
			if currentStep >= 0 {
				result.Err = &entities.StepError{Index: currentStep, Step: scenario.Steps[currentStep], Reason: panicErr}
			} else {
				result.Err = panicErr
			}
		}
	}()

	log.Info("scenario started")

	session, err := r.driver.NewSession(ctx)
	if err != nil {
		machine.transition(entities.StateErrored)
		result.Outcome = entities.OutcomeErrored
		result.Err = fmt.Errorf("failed to create session: %w", err)
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("session teardown failed")
		}
	}()

	for i, step := range scenario.Steps {
		currentStep = i
		if step.Action == entities.ActionNavigate {
			machine.transition(entities.StateNavigating)
		} else {
			machine.transition(entities.StateInteracting)
		}

		stepLog := log.WithFields(logrus.Fields{"step": i + 1, "action": step.Action})
		if step.Intent != "" {
			stepLog = stepLog.WithField("intent", step.Intent)
		}
		stepLog.Debug(step.Describe())

		err := withRetry(ctx, stepLog, step.MaxAttempts(), r.opts.RetryPause, func(ctx context.Context) error {
			return r.executeStep(ctx, session, step, baseURL)
		})
		if err != nil {
			machine.transition(entities.StateErrored)
			result.Outcome = entities.OutcomeErrored
			result.FailedStep = i
			result.Err = &entities.StepError{Index: i, Step: step, Reason: err}
			return result
		}

		result.StepsExecuted++
		r.recorder.ObserveStep(step.Action)
	}

	currentStep = -1
	machine.transition(entities.StateAsserting)
	for _, assertion := range scenario.Assertions {
		timeout := assertion.Timeout
		if timeout <= 0 {
			timeout = r.opts.AssertTimeout
		}

		err := session.WaitForText(ctx, assertion.Text, timeout)
		if err == nil {
			log.WithField("text", assertion.Text).Debug("assertion passed")
			continue
		}

		if errors.Is(err, entities.ErrTimeout) {
			machine.transition(entities.StateFailed)
			result.Outcome = entities.OutcomeFailed
			result.Reason = r.failureReason(ctx, session, assertion, timeout)
			return result
		}

		machine.transition(entities.StateErrored)
		result.Outcome = entities.OutcomeErrored
		result.Err = fmt.Errorf("assertion on %q: %w", assertion.Text, err)
		return result
	}

	machine.transition(entities.StatePassed)
	result.Outcome = entities.OutcomePassed
	return result
}

// executeStep - performs a single step against the session
func (r *Runner) executeStep(ctx context.Context, session interfaces.Session, step entities.Step, baseURL string) error {
	switch step.Action {
	case entities.ActionNavigate:
		target, err := resolveURL(baseURL, step.URL)
		if err != nil {
			return err
		}
		return session.Navigate(ctx, target)

	case entities.ActionClick:
		if err := sleep(ctx, r.opts.SettleDelay); err != nil {
			return err
		}
		return session.Click(ctx, step.Selector, step.Index, r.actionTimeout(step))

	case entities.ActionFill:
		if err := sleep(ctx, r.opts.SettleDelay); err != nil {
			return err
		}
		return session.Fill(ctx, step.Selector, step.Index, step.Value, r.actionTimeout(step))

	case entities.ActionWaitFixed:
		return sleep(ctx, step.Duration)

	case entities.ActionWaitForState:
		return session.WaitForState(ctx, step.State, r.actionTimeout(step))

	case entities.ActionReload:
		return session.Reload(ctx)

	case entities.ActionSetOffline:
		return session.SetOffline(ctx, step.Offline)

	default:
		return fmt.Errorf("unknown action: %s", step.Action)
	}
}

func (r *Runner) actionTimeout(step entities.Step) time.Duration {
	if step.Timeout > 0 {
		return step.Timeout
	}
	return r.opts.ActionTimeout
}

// failureReason - explains a failed assertion with what the page showed instead
func (r *Runner) failureReason(ctx context.Context, session interfaces.Session, assertion entities.Assertion, timeout time.Duration) string {
	reason := assertion.Message
	if reason == "" {
		reason = fmt.Sprintf("expected text %q to be visible within %s", assertion.Text, timeout)
	}

	snapshot, err := session.Snapshot(ctx)
	if err != nil {
		return reason
	}
	return fmt.Sprintf("%s (observed page %q at %s: %s)", reason, snapshot.Title, snapshot.URL, truncateString(snapshot.TextContent, 200))
}

// resolveURL - resolves a relative step URL against the base URL
func resolveURL(baseURL, raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if ref.IsAbs() || baseURL == "" {
		return raw, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// truncateString - truncates string to maximum length
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

type noopRecorder struct{}

func (noopRecorder) ObserveStep(entities.StepAction)  {}
func (noopRecorder) ObserveResult(entities.RunResult) {}
