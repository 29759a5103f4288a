package runner

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"ui_flow_runner/domain/entities"
	"ui_flow_runner/domain/interfaces"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeSession records every call it receives. hook decides the result of
// each call; it may also panic.
type fakeSession struct {
	mu     sync.Mutex
	calls  []string
	closes int

	hook        func(call string) error
	snapshot    entities.PageSnapshot
	snapshotErr error
	onClose     func()
}

func (s *fakeSession) record(call string) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	hook := s.hook
	s.mu.Unlock()

	if hook == nil {
		return nil
	}
	return hook(call)
}

func (s *fakeSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *fakeSession) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	return s.record("navigate " + url)
}

func (s *fakeSession) Click(ctx context.Context, selector string, index int, timeout time.Duration) error {
	return s.record(fmt.Sprintf("click %s[%d]", selector, index))
}

func (s *fakeSession) Fill(ctx context.Context, selector string, index int, value string, timeout time.Duration) error {
	return s.record(fmt.Sprintf("fill %s[%d]=%s", selector, index, value))
}

func (s *fakeSession) WaitForState(ctx context.Context, state entities.LoadState, timeout time.Duration) error {
	return s.record("wait_for_state " + string(state))
}

func (s *fakeSession) Reload(ctx context.Context) error {
	return s.record("reload")
}

func (s *fakeSession) SetOffline(ctx context.Context, offline bool) error {
	return s.record(fmt.Sprintf("set_offline %t", offline))
}

func (s *fakeSession) WaitForText(ctx context.Context, text string, timeout time.Duration) error {
	return s.record("wait_for_text " + text)
}

func (s *fakeSession) Snapshot(ctx context.Context) (entities.PageSnapshot, error) {
	return s.snapshot, s.snapshotErr
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	s.closes++
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		onClose()
	}
	return nil
}

// fakeDriver hands out sessions built by newSession and tracks how many are
// open at once.
type fakeDriver struct {
	mu         sync.Mutex
	newSession func() *fakeSession
	err        error
	sessions   []*fakeSession
	active     int
	maxActive  int
}

func (d *fakeDriver) NewSession(ctx context.Context) (interfaces.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}

	s := &fakeSession{}
	if d.newSession != nil {
		s = d.newSession()
	}
	s.onClose = func() {
		d.mu.Lock()
		d.active--
		d.mu.Unlock()
	}

	d.sessions = append(d.sessions, s)
	d.active++
	if d.active > d.maxActive {
		d.maxActive = d.active
	}
	return s, nil
}

func (d *fakeDriver) Close() error {
	return nil
}

func (d *fakeDriver) Sessions() []*fakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*fakeSession, len(d.sessions))
	copy(out, d.sessions)
	return out
}

// countingRecorder tallies what the runner reports
type countingRecorder struct {
	mu      sync.Mutex
	steps   map[entities.StepAction]int
	results []entities.RunResult
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{steps: make(map[entities.StepAction]int)}
}

func (r *countingRecorder) ObserveStep(action entities.StepAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[action]++
}

func (r *countingRecorder) ObserveResult(result entities.RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

var (
	_ interfaces.Driver   = (*fakeDriver)(nil)
	_ interfaces.Session  = (*fakeSession)(nil)
	_ interfaces.Recorder = (*countingRecorder)(nil)
)
