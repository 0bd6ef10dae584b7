package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphsScenario = `name: graphs
description: "the chair finds the graph papers"
contacts:
  - {id: 1, email: chair@example.org, roles: 4}
papers:
  - {id: 1, title: Graph algorithms, submitted: 100}
  - {id: 2, title: Tree search, submitted: 100}
  - {id: 3, title: Graph search, submitted: 100}
flow:
  - as: chair@example.org
    q: "ti:graph"
    t: s
    expect:
      ids: [1, 3]
`

// scenarioDir lays out dir/scenarios/graphs.yaml and returns dir.
func scenarioDir(t *testing.T, scenario string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scenarios"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenarios", "graphs.yaml"), []byte(scenario), 0644))
	return dir
}

func TestTestCommand_GoldenLifecycle(t *testing.T) {
	dir := scenarioDir(t, graphsScenario)
	scenarios := filepath.Join(dir, "scenarios")
	golden := filepath.Join(dir, "golden", "graphs.golden")

	out, err := execute(t, "test", "--format", "json", scenarios)
	require.NoError(t, err)
	var result TestResult
	decodeData(t, out, &result)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "missing", result.Scenarios[0].Golden)

	out, err = execute(t, "test", "--update", scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ graphs (golden updated)")
	require.FileExists(t, golden)

	out, err = execute(t, "test", "--format", "json", scenarios)
	require.NoError(t, err)
	result = TestResult{}
	decodeData(t, out, &result)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, "match", result.Scenarios[0].Golden)

	require.NoError(t, os.WriteFile(golden, []byte(`{"scenario_name":"graphs","trace":[]}`), 0644))
	out, err = execute(t, "test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := scenarioDir(t, graphsScenario[:len(graphsScenario)-len("[1, 3]\n")]+"[2]\n")

	out, err := execute(t, "test", filepath.Join(dir, "scenarios"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ graphs")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := scenarioDir(t, graphsScenario)

	out, err := execute(t, "test", "--filter", "green*", filepath.Join(dir, "scenarios"))
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")

	_, err = execute(t, "test", "--filter", "[", filepath.Join(dir, "scenarios"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_HarnessScenarios(t *testing.T) {
	out, err := execute(t, "test", "--format", "json", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err, out)

	var result TestResult
	decodeData(t, out, &result)
	assert.Equal(t, result.Total, result.Passed)
	for _, s := range result.Scenarios {
		assert.Equal(t, "match", s.Golden, s.Name)
	}
}
