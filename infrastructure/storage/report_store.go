package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ui_flow_runner/domain/entities"
	"ui_flow_runner/domain/interfaces"
)

type reportStore struct {
	reportPath string
}

// resultRecord is the on-disk shape of a RunResult
type resultRecord struct {
	RunID         string              `json:"run_id"`
	Scenario      string              `json:"scenario"`
	Outcome       entities.Outcome    `json:"outcome"`
	Reason        string              `json:"reason,omitempty"`
	Error         string              `json:"error,omitempty"`
	FailedStep    int                 `json:"failed_step"`
	StepsExecuted int                 `json:"steps_executed"`
	StartedAt     time.Time           `json:"started_at"`
	ElapsedMS     int64               `json:"elapsed_ms"`
	States        []entities.RunState `json:"states,omitempty"`
}

type report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Passed      int            `json:"passed"`
	Failed      int            `json:"failed"`
	Errored     int            `json:"errored"`
	Results     []resultRecord `json:"results"`
}

// NewReportStore - creates a JSON report store writing to path
func NewReportStore(path string) interfaces.ResultStore {
	return &reportStore{reportPath: path}
}

// SaveResults - writes the run results as a JSON report
func (s *reportStore) SaveResults(results []entities.RunResult) error {
	rep := report{
		GeneratedAt: time.Now().UTC(),
		Results:     make([]resultRecord, 0, len(results)),
	}

	for _, r := range results {
		switch r.Outcome {
		case entities.OutcomePassed:
			rep.Passed++
		case entities.OutcomeFailed:
			rep.Failed++
		case entities.OutcomeErrored:
			rep.Errored++
		}
		rep.Results = append(rep.Results, toRecord(r))
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if dir := filepath.Dir(s.reportPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	return os.WriteFile(s.reportPath, data, 0644)
}

// LoadResults - loads results from the last written report
func (s *reportStore) LoadResults() ([]entities.RunResult, error) {
	data, err := os.ReadFile(s.reportPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.RunResult{}, nil
		}
		return nil, err
	}

	var rep report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", s.reportPath, err)
	}

	results := make([]entities.RunResult, 0, len(rep.Results))
	for _, rec := range rep.Results {
		results = append(results, fromRecord(rec))
	}
	return results, nil
}

func toRecord(r entities.RunResult) resultRecord {
	rec := resultRecord{
		RunID:         r.RunID,
		Scenario:      r.Scenario,
		Outcome:       r.Outcome,
		Reason:        r.Reason,
		FailedStep:    r.FailedStep,
		StepsExecuted: r.StepsExecuted,
		StartedAt:     r.StartedAt,
		ElapsedMS:     r.Elapsed.Milliseconds(),
		States:        r.States,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

func fromRecord(rec resultRecord) entities.RunResult {
	r := entities.RunResult{
		RunID:         rec.RunID,
		Scenario:      rec.Scenario,
		Outcome:       rec.Outcome,
		Reason:        rec.Reason,
		FailedStep:    rec.FailedStep,
		StepsExecuted: rec.StepsExecuted,
		StartedAt:     rec.StartedAt,
		Elapsed:       time.Duration(rec.ElapsedMS) * time.Millisecond,
		States:        rec.States,
	}
	if rec.Error != "" {
		r.Err = errors.New(rec.Error)
	}
	return r
}
