package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/traitkit/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name" yaml:"name"`
	Path   string   `json:"path" yaml:"path"`
	Pass   bool     `json:"pass" yaml:"pass"`
	Golden string   `json:"golden,omitempty" yaml:"golden,omitempty"` // "match", "updated" or "mismatch"
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Scenarios []ScenarioResult `json:"scenarios" yaml:"scenarios"`
	Passed    int              `json:"passed" yaml:"passed"`
	Failed    int              `json:"failed" yaml:"failed"`
	Total     int              `json:"total" yaml:"total"`
}

// Text prints a mark per scenario and a summary.
func (r CheckResult) Text(w io.Writer) {
	if r.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, s := range r.Scenarios {
		if s.Pass {
			suffix := ""
			if s.Golden == "updated" {
				suffix = " (golden updated)"
			}
			fmt.Fprintf(w, "✓ %s%s\n", s.Name, suffix)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d total\n", r.Passed, r.Failed, r.Total)
	if r.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios against the engine.

Each scenario runs in a fresh in-memory store. When
<scenarios-dir>/golden/<name>.golden exists the trace must match it
byte for byte; --update rewrites it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  traitkit check ./testdata/scenarios
  traitkit check ./testdata/scenarios --filter "shapes_*"
  traitkit check ./testdata/scenarios --update
  traitkit check ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runCheck(opts *CheckOptions, dir string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths, err := harness.FindScenarios(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	suite, err := harness.RunSuite(ctx, paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario run interrupted", err)
	}

	runs := make(map[string]*harness.ScenarioRun, len(suite.Results))
	for _, r := range suite.Results {
		runs[r.Path] = r
	}
	failures := make(map[string]harness.ScenarioFailure, len(suite.Failures))
	for _, fl := range suite.Failures {
		failures[fl.ScenarioPath] = fl
	}

	result := CheckResult{Scenarios: make([]ScenarioResult, 0, len(paths)), Total: len(paths)}
	for _, path := range paths {
		sr := ScenarioResult{Path: path, Name: filepath.Base(path), Pass: true}
		if run, ok := runs[path]; ok {
			sr.Name = run.Scenario.Name
			sr.Pass = run.Result.Pass
			sr.Errors = append(sr.Errors, run.Result.Errors...)
			checkGolden(opts, dir, run, &sr)
		} else if fl, ok := failures[path]; ok {
			if fl.Name != "" {
				sr.Name = fl.Name
			}
			sr.Pass = false
			sr.Errors = append(sr.Errors, fl.Error)
		}

		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	f := opts.formatter(cmd)
	if result.Failed > 0 {
		if err := f.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "E_CHECK_FAILED", Message: fmt.Sprintf("%d scenario(s) failed", result.Failed)},
		}); err != nil {
			return err
		}
		// Scenario failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return f.Success(result)
}

// goldenFilePath returns the golden trace path for a scenario.
func goldenFilePath(dir, name string) string {
	return filepath.Join(dir, "golden", name+".golden")
}

// checkGolden compares or rewrites the scenario's golden trace. Without a
// golden file only assertions decide the result.
func checkGolden(opts *CheckOptions, dir string, run *harness.ScenarioRun, sr *ScenarioResult) {
	snapshot := harness.TraceSnapshot{
		ScenarioName: run.Scenario.Name,
		SessionID:    run.Result.SessionID,
		Trace:        run.Result.Trace,
	}
	data, err := snapshot.Marshal()
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to marshal trace: %v", err))
		return
	}

	path := goldenFilePath(dir, run.Scenario.Name)
	if opts.Update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to create golden directory: %v", err))
			return
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to write golden file: %v", err))
			return
		}
		sr.Golden = "updated"
		opts.log().Debug("golden updated", "scenario", run.Scenario.Name, "path", path)
		return
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return
	}
	if !bytes.Equal(want, data) {
		sr.Pass = false
		sr.Golden = "mismatch"
		sr.Errors = append(sr.Errors, "trace does not match golden file (run with --update to regenerate)")
		return
	}
	sr.Golden = "match"
}
