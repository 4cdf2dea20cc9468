package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/ir"
)

// createTestStore opens a fresh store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestRun(t *testing.T, s *Store, id string, seed int64) Run {
	t.Helper()
	run := Run{
		ID:              id,
		Seed:            seed,
		Label:           "test",
		EngineVersion:   ir.EngineVersion,
		LanguageVersion: ir.LanguageVersion,
	}
	require.NoError(t, s.WriteRun(context.Background(), run))
	return run
}

func subjectBindings() ir.Bindings {
	return ir.Bindings{"Subject": ir.NewThing("Aldric", map[string]int64{"Health": 5, "Fear": 23})}
}
