package runner

import (
	"ui_flow_runner/domain/entities"

	"github.com/sirupsen/logrus"
)

var allowedTransitions = map[entities.RunState][]entities.RunState{
	entities.StateInit:        {entities.StateNavigating, entities.StateInteracting, entities.StateAsserting, entities.StateErrored},
	entities.StateNavigating:  {entities.StateNavigating, entities.StateInteracting, entities.StateAsserting, entities.StateErrored},
	entities.StateInteracting: {entities.StateNavigating, entities.StateInteracting, entities.StateAsserting, entities.StateErrored},
	entities.StateAsserting:   {entities.StatePassed, entities.StateFailed, entities.StateErrored},
}

// canTransition - reports whether a run may move from one state to another
func canTransition(from, to entities.RunState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type stateMachine struct {
	state   entities.RunState
	history []entities.RunState
	log     *logrus.Entry
}

// newStateMachine - creates a machine in the Init state
func newStateMachine(log *logrus.Entry) *stateMachine {
	return &stateMachine{
		state:   entities.StateInit,
		history: []entities.RunState{entities.StateInit},
		log:     log,
	}
}

// transition - moves to the next state; repeated Navigating/Interacting
// states are collapsed in the history
func (m *stateMachine) transition(to entities.RunState) bool {
	if !canTransition(m.state, to) {
		m.log.WithFields(logrus.Fields{"from": m.state, "to": to}).Error("invalid run state transition")
		return false
	}

	if to != m.state {
		m.log.WithFields(logrus.Fields{"from": m.state, "to": to}).Debug("run state changed")
		m.history = append(m.history, to)
	}
	m.state = to
	return true
}

func (m *stateMachine) current() entities.RunState {
	return m.state
}

func (m *stateMachine) states() []entities.RunState {
	out := make([]entities.RunState, len(m.history))
	copy(out, m.history)
	return out
}
