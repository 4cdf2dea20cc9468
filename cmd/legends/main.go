// Command legends compiles and evaluates world definition packs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/legends/internal/cli"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.Version = fmt.Sprintf("%s (commit %s)", version, commit)
	// Commands print their own results; only the final error is reported here.
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "legends: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
