package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ui_flow_runner/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadResultsMissingReport(t *testing.T) {
	store := NewReportStore(filepath.Join(t.TempDir(), "nope.json"))

	results, err := store.LoadResults()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSaveResultsWritesSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	store := NewReportStore(path)
	started := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	results := []entities.RunResult{
		{RunID: "a", Scenario: "login", Outcome: entities.OutcomePassed, FailedStep: -1, StepsExecuted: 6, StartedAt: started, Elapsed: 1500 * time.Millisecond},
		{RunID: "b", Scenario: "sync", Outcome: entities.OutcomeFailed, FailedStep: -1, Reason: "expected text", StartedAt: started},
		{RunID: "c", Scenario: "audit", Outcome: entities.OutcomeErrored, FailedStep: 2, Err: errors.New("element not found"), StartedAt: started,
			States: []entities.RunState{entities.StateInit, entities.StateNavigating, entities.StateInteracting, entities.StateErrored}},
	}
	require.NoError(t, store.SaveResults(results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, 1, rep.Passed)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 1, rep.Errored)
	require.Len(t, rep.Results, 3)
	assert.Equal(t, int64(1500), rep.Results[0].ElapsedMS)
	assert.Equal(t, "element not found", rep.Results[2].Error)

	loaded, err := store.LoadResults()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, 1500*time.Millisecond, loaded[0].Elapsed)
	assert.Equal(t, "expected text", loaded[1].Reason)
	assert.EqualError(t, loaded[2].Err, "element not found")
	assert.Equal(t, 2, loaded[2].FailedStep)
	assert.Equal(t, results[2].States, loaded[2].States)
}

func TestLoadResultsRejectsCorruptReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewReportStore(path).LoadResults()
	assert.Error(t, err)
}
