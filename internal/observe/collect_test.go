package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Collect(t *testing.T) {
	rec, err := NewRecorder()
	require.NoError(t, err)

	ctx := context.Background()
	rec.RecordEvaluation(ctx, nil)
	rec.RecordEvaluation(ctx, nil)
	rec.RecordEvaluation(ctx, errors.New("boom"))
	rec.RecordCacheMiss(ctx, "simple", time.Microsecond)

	points, err := rec.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Point{
		{Name: "legends.compiler.cache.misses", Attributes: "mode=simple", Value: 1},
		{Name: "legends.compiler.duration.count", Attributes: "mode=simple", Value: 1},
		{Name: "legends.evaluations", Attributes: "status=error", Value: 1},
		{Name: "legends.evaluations", Attributes: "status=ok", Value: 2},
	}, points)
}

func TestRecorder_CollectEmpty(t *testing.T) {
	rec, err := NewRecorder()
	require.NoError(t, err)

	points, err := rec.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestPoint_String(t *testing.T) {
	assert.Equal(t, "legends.evaluations{status=ok} 2", Point{Name: "legends.evaluations", Attributes: "status=ok", Value: 2}.String())
	assert.Equal(t, "x 1", Point{Name: "x", Value: 1}.String())
}
