package lint

import (
	"bytes"
	"testing"
	"time"

	"ui_flow_runner/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinter() (*ScenarioLinter, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	return NewScenarioLinter(logger), &buf
}

func TestCheckValidScenario(t *testing.T) {
	l, _ := newLinter()

	report := l.Check(entities.Scenario{
		Name: "medico login",
		Steps: []entities.Step{
			entities.Navigate("/"),
			entities.Click("#login", 0),
			entities.Fill("#email", 0, "prueba@gmail.com"),
			entities.WaitForState(entities.LoadStateNetworkIdle, time.Second),
		},
		Assertions: []entities.Assertion{entities.TextVisible("Dashboard", 3*time.Second)},
	})

	assert.Empty(t, report.Issues)
	assert.NoError(t, report.Err())
}

func TestCheckStructuralErrors(t *testing.T) {
	l, _ := newLinter()

	report := l.Check(entities.Scenario{
		Steps: []entities.Step{
			{Action: "hover"},
			{Action: entities.ActionNavigate},
			{Action: entities.ActionClick, Index: -1},
			{Action: entities.ActionWaitFixed},
			{Action: entities.ActionWaitForState, State: "commit"},
			{Action: entities.ActionFill, Selector: "#x", Timeout: -time.Second},
		},
		Assertions: []entities.Assertion{{Text: " "}},
	})

	errs := report.Errors()
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.String())
	}

	assert.Contains(t, messages, "error: scenario has no name")
	assert.Contains(t, messages, `error: step 1: unknown action "hover"`)
	assert.Contains(t, messages, "error: step 2: navigate needs a url")
	assert.Contains(t, messages, "error: step 3: click needs a selector")
	assert.Contains(t, messages, "error: step 3: index must not be negative")
	assert.Contains(t, messages, "error: step 4: wait needs a positive duration")
	assert.Contains(t, messages, `error: step 5: unknown load state "commit"`)
	assert.Contains(t, messages, "error: step 6: timeout must not be negative")
	assert.Contains(t, messages, "error: assertion 1 has no text")

	require.Error(t, report.Err())
}

func TestCheckEmptyScenario(t *testing.T) {
	l, _ := newLinter()

	report := l.Check(entities.Scenario{Name: "empty"})
	require.Len(t, report.Errors(), 1)
	assert.Equal(t, "scenario has no steps", report.Errors()[0].Message)
}

func TestCheckWarnings(t *testing.T) {
	l, buf := newLinter()
	card := "xpath=html/body/div[2]/main/div/div[2]/div[5]/div/div[2]/div[1]/svg"

	report := l.Check(entities.Scenario{
		Name: "recorded",
		Steps: []entities.Step{
			entities.Navigate("/"),
			entities.Click(card, 0).WithIntent("open Médico card"),
			entities.Click(card, 0).WithIntent("open Médico card again"),
			entities.WaitFixed(10 * time.Second),
			entities.Click("#delete-prescription", 0),
		},
	})

	assert.Empty(t, report.Errors())
	warnings := report.Warnings()
	require.Len(t, warnings, 5)
	assert.Equal(t, 1, warnings[0].Step)
	assert.Contains(t, warnings[0].Message, "positional XPath")
	assert.Equal(t, 2, warnings[1].Step)
	assert.Contains(t, warnings[1].Message, "repeats the previous step")
	assert.Contains(t, warnings[3].Message, "literal wait")
	assert.Contains(t, warnings[4].Message, "destructive")

	require.NoError(t, l.Log(report))
	assert.Contains(t, buf.String(), "repeats the previous step")
}

func TestIsDestructiveStep(t *testing.T) {
	l, _ := newLinter()

	assert.True(t, l.IsDestructiveStep(entities.Click("#btn", 0).WithIntent("Eliminar receta")))
	assert.True(t, l.IsDestructiveStep(entities.Click("button.remove-item", 0)))
	assert.False(t, l.IsDestructiveStep(entities.Click("#submit", 0)))
	assert.False(t, l.IsDestructiveStep(entities.Fill("#delete-reason", 0, "x")))
}

func TestIsPositionalXPath(t *testing.T) {
	assert.True(t, isPositionalXPath("xpath=html/body/header/nav/div/div[3]/a[1]"))
	assert.True(t, isPositionalXPath("/html/body/div[1]/div[1]/div[2]/div/button"))
	assert.False(t, isPositionalXPath("#login-link"))
	assert.False(t, isPositionalXPath("xpath=//button[contains(text(), 'Entrar')]"))
	assert.False(t, isPositionalXPath(""))
}
