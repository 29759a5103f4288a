package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"ui_flow_runner/domain/entities"
	"ui_flow_runner/domain/interfaces"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a scenario file. A file holds either a
// single scenario at the top level or a list under "scenarios".
type document struct {
	entities.Scenario `yaml:",inline"`
	Scenarios         []entities.Scenario `yaml:"scenarios"`
}

// Loader reads scenario definitions and rejects the ones that fail linting
type Loader struct {
	linter interfaces.ScenarioLinter
	logger *logrus.Logger
}

// NewLoader - creates new scenario loader
func NewLoader(linter interfaces.ScenarioLinter, logger *logrus.Logger) *Loader {
	return &Loader{
		linter: linter,
		logger: logger,
	}
}

// LoadFiles - loads every file in order; the first invalid file stops loading
func (l *Loader) LoadFiles(paths []string) ([]entities.Scenario, error) {
	var scenarios []entities.Scenario
	for _, path := range paths {
		loaded, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, loaded...)
	}
	return scenarios, nil
}

// LoadFile - loads the scenarios defined in one YAML file
func (l *Loader) LoadFile(path string) ([]entities.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return l.Parse(data, path)
}

// Parse - decodes YAML scenario definitions; source only labels errors and logs
func (l *Loader) Parse(data []byte, source string) ([]entities.Scenario, error) {
	scenarios, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	for _, scenario := range scenarios {
		report := l.linter.Check(scenario)
		if err := report.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		for _, issue := range report.Warnings() {
			l.logger.WithFields(logrus.Fields{
				"source":   source,
				"scenario": scenario.Name,
			}).Debug(issue.String())
		}
	}

	l.logger.WithFields(logrus.Fields{
		"source":    source,
		"scenarios": len(scenarios),
	}).Debug("scenarios loaded")

	return scenarios, nil
}

// Decode - decodes YAML scenario definitions without linting them. Unknown
// fields are rejected so that typos in step keys do not pass silently.
func Decode(data []byte) ([]entities.Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no scenarios defined")
		}
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}

	var scenarios []entities.Scenario
	if doc.Name != "" || len(doc.Steps) > 0 || len(doc.Assertions) > 0 {
		scenarios = append(scenarios, doc.Scenario)
	}
	scenarios = append(scenarios, doc.Scenarios...)

	if len(scenarios) == 0 {
		return nil, errors.New("no scenarios defined")
	}
	return scenarios, nil
}
