package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios("testdata")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "failing", "wrong_expectations.yaml"),
		filepath.Join("testdata", "scenarios", "brawl.yaml"),
		filepath.Join("testdata", "scenarios", "village_day.yaml"),
	}, files)
}

func TestFindScenarios_File(t *testing.T) {
	path := filepath.Join("testdata", "scenarios", "brawl.yaml")
	files, err := FindScenarios(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFindScenarios_Missing(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario path")
}

func TestFindScenarios_UnparseableIsKept(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte("steps: [\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pack.yaml"), []byte("event:\n  name: A\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("steps: []\n"), 0644))

	files, err := FindScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "bad.yml")}, files)

	_, err = LoadScenario(files[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}
