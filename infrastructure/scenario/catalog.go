package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"ui_flow_runner/domain/entities"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// Catalog - loads the built-in recorded scenarios, ordered by test case id
func (l *Loader) Catalog() ([]entities.Scenario, error) {
	names, err := fs.Glob(catalogFS, "catalog/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	sort.Strings(names)

	var scenarios []entities.Scenario
	for _, name := range names {
		data, err := catalogFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog entry: %w", err)
		}
		loaded, err := l.Parse(data, "catalog:"+path.Base(name))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, loaded...)
	}
	return scenarios, nil
}

// Filter - keeps scenarios whose name starts with one of ids, case-insensitively.
// No ids keeps everything.
func Filter(scenarios []entities.Scenario, ids []string) []entities.Scenario {
	if len(ids) == 0 {
		return scenarios
	}

	var kept []entities.Scenario
	for _, scenario := range scenarios {
		name := strings.ToLower(scenario.Name)
		for _, id := range ids {
			id = strings.ToLower(strings.TrimSpace(id))
			if id != "" && strings.HasPrefix(name, id) {
				kept = append(kept, scenario)
				break
			}
		}
	}
	return kept
}
