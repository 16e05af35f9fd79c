package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunID        string       `json:"run_id,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// Marshal renders the snapshot as indented JSON. Map keys are sorted and
// non-ASCII text is kept as is, so the output is stable across runs.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The run id appears in the snapshot only when the scenario fixes one.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		RunID:        scenario.RunID,
		Trace:        result.Trace,
	}
	if err := assertSnapshot(t, scenario.Name, &snapshot); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}
	return assertSnapshot(t, scenarioName, &snapshot)
}

func assertSnapshot(t *testing.T, name string, snapshot *TraceSnapshot) error {
	t.Helper()

	traceJSON, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
