package interfaces

import "ui_flow_runner/domain/entities"

// Recorder observes runner activity
type Recorder interface {
	ObserveStep(action entities.StepAction)
	ObserveResult(result entities.RunResult)
}
