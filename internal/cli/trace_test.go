package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/engine"
	"github.com/roach88/legends/internal/ir"
	"github.com/roach88/legends/internal/store"
)

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, _, err := execute(t, "trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceFlagConflicts(t *testing.T) {
	db := filepath.Join(t.TempDir(), "legends.db")

	_, _, err := execute(t, "trace", "--db", db, "--path", "event:Harvest")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "must be given together")

	_, _, err = execute(t, "trace", "--db", db, "run-1", "--path", "event:Harvest", "--property", "Chance")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestTraceEmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "legends.db")

	out, _, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)

	out, _, err = execute(t, "trace", "--db", db, "--path", "event:Harvest", "--property", "Chance")
	require.NoError(t, err)
	assert.Equal(t, "No evaluations recorded.\n", out)
}

func TestTraceListRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "legends.db")
	recordRun(t, db, villageDay, "run-1")
	recordRun(t, db, brawl, "run-2")

	out, _, err := execute(t, "--format", "json", "trace", "--db", db)
	require.NoError(t, err)

	resp := decode[TraceResult](t, out)
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, RunSummary{ID: "run-1", Seed: 7, Label: "village_day", LanguageVersion: ir.LanguageVersion}, resp.Data.Runs[0])
	assert.Equal(t, "brawl", resp.Data.Runs[1].Label)

	out, _, err = execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "run-1  seed=7  village_day\n")
	assert.Contains(t, out, "run-2  seed=1234  brawl\n")
}

func TestTraceRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "legends.db")
	recordRun(t, db, villageDay, "run-1")

	out, _, err := execute(t, "trace", "--db", db, "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Run: run-1 (seed 7, village_day)")
	assert.Contains(t, out, "   4 event:Harvest/Results[0]/Effects[0].Magnitude = 5\n")
	assert.Contains(t, out, "   6 site:Market.Attributes[Guards] = 1\n")
	assert.Contains(t, out, "   8 site:Market.Attributes[Wells] -> UNKNOWN_KEY")
}

func TestTraceRunJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "legends.db")
	recordRun(t, db, villageDay, "run-1")

	out, _, err := execute(t, "--format", "json", "trace", "--db", db, "run-1")
	require.NoError(t, err)

	resp := decode[TraceResult](t, out)
	assert.Equal(t, "run-1", resp.RunID)
	require.NotNil(t, resp.Data.Run)
	assert.Equal(t, int64(7), resp.Data.Run.Seed)
	require.Len(t, resp.Data.Evaluations, 10)

	for i, ev := range resp.Data.Evaluations {
		assert.Equal(t, int64(i+1), ev.Seq)
		assert.Empty(t, ev.RunID, "run ID is given once for the whole trace")
	}
	title := resp.Data.Evaluations[4]
	assert.Equal(t, "Title", title.Property)
	assert.Equal(t, "Tom earns 5 gold", title.Value)
	assert.Equal(t, "UNBOUND_VARIABLE", resp.Data.Evaluations[8].Code)
}

func TestTraceUnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "legends.db")

	_, _, err := execute(t, "trace", "--db", db, "run-404")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrRunNotFound)
	assert.Contains(t, err.Error(), "run run-404 not found")
}

func TestTraceByProperty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "legends.db")
	recordRun(t, db, villageDay, "run-1")
	recordRun(t, db, villageDay, "run-2")

	out, _, err := execute(t, "--format", "json", "trace", "--db", db, "--path", "event:Harvest", "--property", "Chance")
	require.NoError(t, err)

	resp := decode[TraceResult](t, out)
	require.Len(t, resp.Data.Evaluations, 4)
	runs := map[string]int{}
	for _, ev := range resp.Data.Evaluations {
		assert.Equal(t, "event:Harvest", ev.Path)
		assert.Equal(t, "Chance", ev.Property)
		runs[ev.RunID]++
	}
	assert.Equal(t, map[string]int{"run-1": 2, "run-2": 2}, runs)

	out, _, err = execute(t, "trace", "--db", db, "--path", "event:Harvest", "--property", "Chance")
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1:\n")
	assert.Contains(t, out, "Run run-2:\n")
}

func TestEvaluationOutput_String(t *testing.T) {
	ok := fromEngine(engine.Evaluation{Seq: 3, Path: "site:Keep", Property: "Attributes", Key: "Walls", Kind: ir.KindInt, Value: ir.Int(30)})
	assert.Equal(t, "   3 site:Keep.Attributes[Walls] = 30", ok.String())
	assert.Equal(t, "int", ok.Kind)

	failed := fromStore(store.Evaluation{RunID: "r", Seq: 12, Path: "event:Ambush", Property: "Chance", ErrorCode: "UNBOUND_VARIABLE", Error: "Subject is unbound"})
	assert.Equal(t, "  12 event:Ambush.Chance -> UNBOUND_VARIABLE: Subject is unbound", failed.String())
	assert.Empty(t, failed.Kind)
	assert.Nil(t, failed.Value)
}
