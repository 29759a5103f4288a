package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ui_flow_runner/domain/entities"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Counts(t *testing.T) {
	r := NewPrometheusRecorder()

	r.ObserveStep(entities.ActionClick)
	r.ObserveStep(entities.ActionClick)
	r.ObserveStep(entities.ActionNavigate)

	r.ObserveResult(entities.RunResult{Outcome: entities.OutcomePassed, Elapsed: 2 * time.Second})
	r.ObserveResult(entities.RunResult{Outcome: entities.OutcomeFailed, Elapsed: time.Second})
	r.ObserveResult(entities.RunResult{Outcome: entities.OutcomePassed, Elapsed: time.Second})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.steps.WithLabelValues("click")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("navigate")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.scenarios.WithLabelValues("passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.scenarios.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.scenarios.WithLabelValues("errored")))

	count, err := testutil.GatherAndCount(r.Registry(), "flowrunner_scenario_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPrometheusRecorder_RecordersAreIndependent(t *testing.T) {
	a := NewPrometheusRecorder()
	b := NewPrometheusRecorder()

	a.ObserveStep(entities.ActionFill)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.steps.WithLabelValues("fill")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.steps.WithLabelValues("fill")))
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	r := NewPrometheusRecorder()
	r.ObserveStep(entities.ActionSetOffline)
	r.ObserveResult(entities.RunResult{Outcome: entities.OutcomeErrored, Elapsed: 300 * time.Millisecond})

	path := filepath.Join(t.TempDir(), "textfile", "flowrunner.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `flowrunner_steps_total{action="set_offline"} 1`)
	assert.Contains(t, text, `flowrunner_scenarios_total{outcome="errored"} 1`)
	assert.Contains(t, text, `flowrunner_scenario_duration_seconds_count{outcome="errored"} 1`)
}
