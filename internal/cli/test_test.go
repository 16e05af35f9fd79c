package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../../testdata/scenarios"

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const passingScenario = `name: add_milk
description: Milk alone costs 1.50
steps:
  - op: cart_add
    args: {product_id: 1}
assertions:
  - type: cart_total
    value: "1.50"
`

const failingScenario = `name: wrong_total
description: Expects a total the cart never reaches
steps:
  - op: cart_add
    args: {product_id: 1}
assertions:
  - type: cart_total
    value: "9.99"
`

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyDirJSON(t *testing.T) {
	out, err := runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommandDemoScenarios(t *testing.T) {
	out, err := runTestCommand(t, "text", scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ demo_cart")
	assert.Contains(t, out, "✓ demo_login_failure")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := runTestCommand(t, "json", scenariosDir, "--filter", "demo_cart")
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "demo_cart", resp.Data.Scenarios[0].Name)
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, err := runTestCommand(t, "text", scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "pass.yaml", passingScenario)
	writeScenario(t, dir, "fail.yaml", failingScenario)

	out, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ add_milk")
	assert.Contains(t, out, "✗ wrong_total")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFailureJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "fail.yaml", failingScenario)

	out, err := runTestCommand(t, "json", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeScenario, resp.Error.Code)
	assert.Equal(t, "1 scenario(s) failed", resp.Error.Message)
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nsteps:\n  - op: teleport\n")

	out, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "milk.yaml", passingScenario)

	_, err := runTestCommand(t, "text", path, "--update")
	require.NoError(t, err)
	golden := filepath.Join(dir, "golden", "milk.golden")
	require.FileExists(t, golden)

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "add_milk"`)

	// golden/ is not searched for scenarios, and the trace matches.
	out, err := runTestCommand(t, "text", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, err = runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}
