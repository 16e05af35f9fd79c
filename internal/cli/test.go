package cli

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml|dir>...",
		Short: "Run harness scenarios",
		Long: `Run scenario files against a fresh, seeded in-memory database each.

Steps are checked against their expect clauses and the final state against
the scenario's assertions. When golden/<scenario>.golden exists next to a
scenario file, the trace must match it too.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  storefront test testdata/scenarios
  storefront test testdata/scenarios --filter "demo_*"
  storefront test testdata/scenarios/demo_cart.yaml --update
  storefront test testdata/scenarios --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	var scenarioFiles []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", path))
		}
		files, err := findScenarioFiles(path, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
		scenarioFiles = append(scenarioFiles, files...)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(opts, cmd, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	ctx := commandContext(cmd)
	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(ctx, scenarioFile, opts)
		if opts.Format != "json" {
			printScenarioResult(cmd, scenResult)
		}
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(opts, cmd, result)
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles returns path itself when it is a file, or every YAML
// file below it when it is a directory. golden/ directories are skipped.
func findScenarioFiles(path string, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(ctx context.Context, scenarioFile string, opts *TestOptions) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(ctx, scenario)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	snapshot := harness.TraceSnapshot{
		ScenarioName: scenario.Name,
		RunID:        scenario.RunID,
		Trace:        result.Trace,
	}
	current, err := snapshot.Marshal()
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("failed to marshal trace: %v", err)},
		}
	}

	goldenPath := goldenFilePath(scenarioFile)
	if opts.Update {
		if err := writeGoldenFile(goldenPath, current); err != nil {
			return ScenarioResult{
				Name:   scenario.Name,
				Errors: []string{fmt.Sprintf("failed to update golden file: %v", err)},
			}
		}
		return ScenarioResult{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
	}

	errs := append([]string(nil), result.Errors...)
	golden, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		// No golden file: assertions alone decide.
	case err != nil:
		errs = append(errs, fmt.Sprintf("failed to read golden file: %v", err))
	case !bytes.Equal(golden, current):
		errs = append(errs, "trace does not match golden file (run with --update to regenerate)")
	}

	return ScenarioResult{Name: scenario.Name, Pass: len(errs) == 0, Errors: errs}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func writeGoldenFile(goldenPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func printScenarioResult(cmd *cobra.Command, r ScenarioResult) {
	w := cmd.OutOrStdout()
	if r.Pass {
		fmt.Fprintf(w, "✓ %s\n", r.Name)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", r.Name)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(opts *TestOptions, cmd *cobra.Command, result TestResult) error {
	f := opts.formatter(cmd)
	if result.Failed == 0 {
		return f.Success(result)
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := f.Error(CodeScenario, msg, result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
