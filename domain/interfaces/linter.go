package interfaces

import "ui_flow_runner/domain/entities"

// ScenarioLinter checks scenario definitions before they run
type ScenarioLinter interface {
	// Check returns every finding about the scenario
	Check(scenario entities.Scenario) entities.LintReport
}
