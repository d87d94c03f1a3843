// Command lotar is the CLI entrypoint for the local-first issue
// tracker, dispatching to the same Task/Config/Scan/Sync services the
// HTTP surface in internal/httpapi uses.
package main

import (
	"fmt"
	"os"

	"github.com/lotar-dev/lotar/cmd/lotar/commands"
	lotarerrors "github.com/lotar-dev/lotar/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(lotarerrors.ExitCode(err))
	}
}
