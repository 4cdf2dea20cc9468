package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/store"
	"github.com/roach88/legends/internal/testutil"
)

// editedCatalog builds the standard catalog with the event's chance
// replaced.
func editedCatalog(t *testing.T, chance string) *definition.Catalog {
	t.Helper()
	event := testutil.AmbushEvent()
	event.Chance = chance

	cat := definition.NewCatalog()
	require.NoError(t, cat.AddEvent(event))
	require.NoError(t, cat.AddSite(testutil.KeepSite()))
	ctx := context.Background()
	require.NoError(t, cat.Attach(ctx, testutil.NewCompiler()))
	require.NoError(t, cat.Compile(ctx))
	return cat
}

func recordRun(t *testing.T, s *store.Store) string {
	t.Helper()
	run, err := newTestRunner(t, nil, WithStore(s)).Run(context.Background(), 99, standardSteps())
	require.NoError(t, err)
	return run.ID
}

func TestReplay_Matches(t *testing.T) {
	s := openStore(t)
	id := recordRun(t, s)

	result, err := newTestRunner(t, nil, WithStore(s)).Replay(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, result.Matched(), "%v", result.Divergence)
	assert.Equal(t, int64(99), result.Seed)
	assert.Equal(t, 7, result.Evaluations)
}

func TestReplay_ValueDivergence(t *testing.T) {
	s := openStore(t)
	id := recordRun(t, s)

	r := newTestRunner(t, editedCatalog(t, "(Subject->Health + Subject->Fear) / 4"), WithStore(s))
	result, err := r.Replay(context.Background(), id)
	require.NoError(t, err)
	require.False(t, result.Matched())

	d := result.Divergence
	assert.Equal(t, int64(1), d.Seq)
	assert.Equal(t, "event:Ambush", d.Path)
	assert.Equal(t, "Chance", d.Property)
	assert.Equal(t, "value", d.Field)
	assert.Equal(t, "14", d.Recorded)
	assert.Equal(t, "7", d.Replayed)
}

func TestReplay_ErrorCodeDivergence(t *testing.T) {
	s := openStore(t)
	id := recordRun(t, s)

	r := newTestRunner(t, editedCatalog(t, "Subject->Health / (Subject->Fear - 23)"), WithStore(s))
	result, err := r.Replay(context.Background(), id)
	require.NoError(t, err)

	d := result.Divergence
	require.NotNil(t, d)
	assert.Equal(t, "error_code", d.Field)
	assert.Equal(t, "none", d.Recorded)
	assert.Equal(t, "DIVISION_BY_ZERO", d.Replayed)
}

func TestReplay_RNGDivergence(t *testing.T) {
	s := openStore(t)
	id := recordRun(t, s)

	// Rolling a die where none was rolled shifts every later draw.
	r := newTestRunner(t, editedCatalog(t, "14 + Random->D1 - 1"), WithStore(s))
	result, err := r.Replay(context.Background(), id)
	require.NoError(t, err)

	d := result.Divergence
	require.NotNil(t, d)
	assert.Equal(t, int64(1), d.Seq)
	assert.Equal(t, "rng_position", d.Field)
	assert.Equal(t, "0", d.Recorded)
	assert.Equal(t, "1", d.Replayed)
}

func TestReplay_Errors(t *testing.T) {
	_, err := newTestRunner(t, nil).Replay(context.Background(), "run-1")
	assert.ErrorIs(t, err, ErrNoStore)

	_, err = newTestRunner(t, nil, WithStore(openStore(t))).Replay(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}
