package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidPack(t *testing.T) {
	out, _, err := execute(t, "validate", legendsPack)
	require.NoError(t, err)
	assert.Equal(t, "\u2713 All packs valid (2 file(s))\n", out)
}

func TestValidateValidPackJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", legendsPack)
	require.NoError(t, err)

	resp := decode[ValidationResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Files)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateDoesNotParseExpressions(t *testing.T) {
	// Every problem in the broken pack is inside expression source.
	out, _, err := execute(t, "validate", brokenPack)
	require.NoError(t, err)
	assert.Contains(t, out, "All packs valid (1 file(s))")
}

func TestValidateInvalidPack(t *testing.T) {
	out, _, err := execute(t, "validate", invalidPack)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 8 error(s)")

	assert.Contains(t, out, "\u2717 Validation failed")
	assert.Contains(t, out, "event:Quarrel/Results[1].colour: E211")
	assert.Contains(t, out, "E209")
}

func TestValidateInvalidPackJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", invalidPack)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode[ValidationResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E210", resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 1, resp.Data.Files)

	codes := make([]string, len(resp.Data.Errors))
	for i, issue := range resp.Data.Errors {
		codes[i] = issue.Code
	}
	assert.Equal(t, []string{"E210", "E211", "E207", "E206", "E204", "E208", "E209", "E205"}, codes)
}

func TestValidateDuplicateAcrossPacks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.yaml"), []byte("site:\n  Keep:\n    description: again\n"), 0644))

	out, _, err := execute(t, "validate", legendsPack, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E201")
	assert.Contains(t, out, "already defined at")
}

func TestValidateFileErrors(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
		code string
	}{
		{"missing directory", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }, "E005"},
		{"empty directory", func(t *testing.T) string { return t.TempDir() }, "E003"},
		{"bad yaml", func(t *testing.T) string {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("site: [unclosed\n"), 0644))
			return dir
		}, "E004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "--format", "json", "validate", tt.dir(t))
			require.Error(t, err)
			// File errors are command errors, not validation failures.
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decode[any](t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
