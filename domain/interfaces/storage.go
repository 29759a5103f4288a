package interfaces

import "ui_flow_runner/domain/entities"

// ResultStore persists run results between invocations
type ResultStore interface {
	// SaveResults writes the results of a run
	SaveResults(results []entities.RunResult) error

	// LoadResults reads the results of the last saved run
	LoadResults() ([]entities.RunResult, error)
}
