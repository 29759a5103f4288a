package entities

import "time"

// Scenario is one named end-to-end UI flow: ordered steps followed by
// terminal assertions. It is not modified while it runs.
type Scenario struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step      `json:"steps" yaml:"steps"`
	Assertions  []Assertion `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

// Assertion checks that content matching Text becomes visible within Timeout
type Assertion struct {
	Text    string        `json:"text" yaml:"text"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Message replaces the generated failure reason when set.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// TextVisible builds an assertion on visible text
func TextVisible(text string, timeout time.Duration) Assertion {
	return Assertion{Text: text, Timeout: timeout}
}

// WithMessage returns a copy of the assertion with a custom failure message
func (a Assertion) WithMessage(msg string) Assertion {
	a.Message = msg
	return a
}
