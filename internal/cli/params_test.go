package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		property string
		want     string
	}{
		{"event chance", "event:Ambush", "Chance", "event:Ambush.Chance: Subject, Bandit\n"},
		{"object condition", "event:Ambush/Objects[Bandit]", "Condition", "event:Ambush/Objects[Bandit].Condition: Subject, Object, Bandit\n"},
		{"effect magnitude", "event:Ambush/Results[0]/Effects[0]", "Magnitude", "event:Ambush/Results[0]/Effects[0].Magnitude: Subject, Bandit\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "params", legendsPack, tt.path, tt.property)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestParamsKeyedProperty(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "params", legendsPack, "site:Keep", "Attributes")
	require.NoError(t, err)

	resp := decode[ParamsResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "site:Keep", resp.Data.Path)
	assert.Equal(t, "Attributes", resp.Data.Property)
	assert.Contains(t, resp.Data.Parameters, "Subject")
	assert.Equal(t, []string{"Gold", "Walls"}, resp.Data.Keys)
}

func TestParamsWorksOnPacksThatDoNotCompile(t *testing.T) {
	out, _, err := execute(t, "params", brokenPack, "site:Cellar", "Attributes")
	require.NoError(t, err)
	assert.Contains(t, out, "keys: Damp, Size\n")
}

func TestParamsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown definition", []string{legendsPack, "event:Festival", "Chance"}, "NOT_FOUND"},
		{"unknown child", []string{legendsPack, "event:Ambush/Objects[Nobody]", "Distance"}, "NOT_FOUND"},
		{"unknown property", []string{legendsPack, "event:Ambush", "Nope"}, "UNKNOWN_PROPERTY"},
		{"missing pack", []string{"/nonexistent/pack", "event:Ambush", "Chance"}, "E005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"--format", "json", "params"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decode[any](t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
