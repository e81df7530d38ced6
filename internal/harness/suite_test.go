package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDir = "../../testdata/scenarios"

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios(scenarioDir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(scenarioDir, "descriptor_algebra.yaml"),
		filepath.Join(scenarioDir, "shapes_hierarchy.yaml"),
	}, paths)

	paths, err = FindScenarios(scenarioDir, "shapes_*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(scenarioDir, "shapes_hierarchy.yaml")}, paths)
}

func TestFindScenarios_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.yaml")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	var de *ScenarioDirError

	_, err := FindScenarios(filepath.Join(dir, "absent"), "")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "does not exist", de.Reason)

	_, err = FindScenarios(file, "")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "not a directory", de.Reason)

	_, err = FindScenarios(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}

func TestFindScenarios_SkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yml", "a.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	paths, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yml")}, paths)
}

func TestRunSuite(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("name: broken\n"), 0o644))
	failing := filepath.Join(dir, "failing.yaml")
	require.NoError(t, os.WriteFile(failing, []byte(
		"name: failing\ndescription: wrong size\nsteps:\n  - query: size int64 => 2\n"), 0o644))

	paths := []string{
		filepath.Join(scenarioDir, "descriptor_algebra.yaml"),
		broken,
		failing,
	}
	result, err := RunSuite(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalScenarios)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, broken, result.Failures[0].ScenarioPath)
	assert.Contains(t, result.Failures[0].Error, "failed to load scenario")
	assert.Equal(t, "failing", result.Failures[1].Name)
	assert.Contains(t, result.Failures[1].Error, "scenario assertions failed")

	require.Len(t, result.Results, 2)
	assert.Equal(t, "descriptor_algebra", result.Results[0].Scenario.Name)
}

func TestRunSuite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunSuite(ctx, []string{filepath.Join(scenarioDir, "descriptor_algebra.yaml")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.TotalScenarios)
}
