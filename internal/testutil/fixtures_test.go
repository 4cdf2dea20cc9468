package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/ir"
)

func TestCatalog_IsCompiled(t *testing.T) {
	cat := Catalog(NewCompiler())

	require.NoError(t, cat.Walk(func(path string, d definition.Definition) error {
		v, err := definition.Parameters(d, d.Schema().Properties[0].Name)
		assert.NoError(t, err, path)
		assert.NotEmpty(t, v, path)
		return nil
	}))

	effect, err := cat.Lookup("event:Ambush/Results[0]/Effects[0]")
	require.NoError(t, err)
	v, err := definition.Evaluate(effect, "Magnitude", "", NewScriptedRand(4), ir.Bindings{
		"Subject": Hero(),
		"Bandit":  Bandit(),
	})
	require.NoError(t, err)
	assert.Equal(t, ir.Int(-4), v)
}

func TestFixturesAreFresh(t *testing.T) {
	a, b := AmbushEvent(), AmbushEvent()
	assert.NotSame(t, a, b)
	assert.NotSame(t, a.Results[0], b.Results[0])
}
