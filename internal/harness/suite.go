package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ScenarioDirError is returned when a scenario directory cannot be used.
type ScenarioDirError struct {
	Dir    string
	Reason string
}

// Error implements the error interface.
func (e *ScenarioDirError) Error() string {
	return fmt.Sprintf("scenario directory %q: %s", e.Dir, e.Reason)
}

// FindScenarios returns the .yaml and .yml files directly under dir,
// sorted by path. A non-empty filter is a filepath.Match pattern applied to
// the file name without its extension.
func FindScenarios(dir, filter string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &ScenarioDirError{Dir: dir, Reason: "does not exist"}
	}
	if err != nil {
		return nil, &ScenarioDirError{Dir: dir, Reason: err.Error()}
	}
	if !info.IsDir() {
		return nil, &ScenarioDirError{Dir: dir, Reason: "not a directory"}
	}
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ScenarioDirError{Dir: dir, Reason: err.Error()}
	}

	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(e.Name(), ext)); !ok {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// SuiteResult summarizes a run over many scenario files.
type SuiteResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
	Results        []*ScenarioRun    `json:"results"`
}

// ScenarioRun pairs a scenario with its result.
type ScenarioRun struct {
	Path     string    `json:"path"`
	Scenario *Scenario `json:"-"`
	Result   *Result   `json:"result"`
}

// ScenarioFailure represents a scenario that failed to load, run or pass.
type ScenarioFailure struct {
	Name         string `json:"name,omitempty"`
	ScenarioPath string `json:"scenario_path"`
	Error        string `json:"error"`
}

// RunSuite loads and runs each scenario file. Failures are collected, not
// returned; the error is only for a cancelled context.
//
// For each path:
// 1. Load the scenario, resolving its catalog next to the file
// 2. Run it in a fresh store
// 3. Collect and report results
func RunSuite(ctx context.Context, paths []string) (*SuiteResult, error) {
	result := &SuiteResult{Results: []*ScenarioRun{}}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				ScenarioPath: path,
				Error:        fmt.Sprintf("failed to load scenario: %v", err),
			})
			continue
		}

		run, err := RunContext(ctx, scenario)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Name:         scenario.Name,
				ScenarioPath: path,
				Error:        fmt.Sprintf("scenario execution failed: %v", err),
			})
			continue
		}
		result.Results = append(result.Results, &ScenarioRun{Path: path, Scenario: scenario, Result: run})

		if !run.Pass {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Name:         scenario.Name,
				ScenarioPath: path,
				Error:        fmt.Sprintf("scenario assertions failed: %v", run.Errors),
			})
			continue
		}

		result.Passed++
	}

	return result, nil
}
