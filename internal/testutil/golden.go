// Package testutil provides shared test helpers for BigLisp Go tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// ScenariosDir is the relative path from the module root to the shared scenarios.
const ScenariosDir = "testdata/scenarios"

// Scenario represents a test scenario loaded from a scenario.json file.
type Scenario struct {
	Cmd      []string        `json:"cmd"`
	Stdin    string          `json:"stdin,omitempty"`
	Bindings map[string]any  `json:"bindings,omitempty"`
	Budget   *ScenarioBudget `json:"budget,omitempty"`
	Meta     *ScenarioMeta   `json:"meta,omitempty"`
	Expect   ExpectedResult  `json:"expect"`
}

// ScenarioBudget mirrors evaluator.Budget.
type ScenarioBudget struct {
	MaxDepth      int   `json:"maxDepth,omitempty"`
	MaxIterations int64 `json:"maxIterations,omitempty"`
	TimeMs        int64 `json:"timeMs,omitempty"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Tags []string `json:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode         int             `json:"exitCode"`
	Value            string          `json:"value,omitempty"`
	StdoutJSON       json.RawMessage `json:"stdoutJson,omitempty"`
	StdoutText       *string         `json:"stdoutText,omitempty"`
	StdoutContains   string          `json:"stdoutContains,omitempty"`
	StderrJSONSubset json.RawMessage `json:"stderrJsonSubset,omitempty"`
	StderrContains   string          `json:"stderrContains,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.json")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadProgramFile reads the program file referenced by the scenario cmd.
// A cmd of "-" reads the scenario's stdin instead.
func ReadProgramFile(scenarioDir string, s *Scenario) (string, string, error) {
	if len(s.Cmd) < 2 {
		return "", "", nil
	}
	filename := s.Cmd[1]
	if filename == "-" {
		return s.Stdin, "<stdin>", nil
	}
	source, err := os.ReadFile(filepath.Join(scenarioDir, filename))
	if err != nil {
		return "", "", err
	}
	return string(source), filename, nil
}
