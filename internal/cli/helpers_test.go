package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	legendsPack   = "../loader/testdata/packs/legends"
	brokenPack    = "../loader/testdata/packs/broken"
	invalidPack   = "../loader/testdata/packs/invalid"
	villagePack   = "../harness/testdata/packs/village"
	scenariosDir  = "../harness/testdata/scenarios"
	villageDay    = "../harness/testdata/scenarios/village_day.yaml"
	brawl         = "../harness/testdata/scenarios/brawl.yaml"
	failingScenes = "../harness/testdata/failing"
)

// execute runs the root command with args and returns what it wrote to
// stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// response is CLIResponse with a typed payload.
type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
	RunID  string    `json:"run_id"`
}

func decode[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}
