// kvfsctl is the command-line client for managing kvfs servers remotely.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/commands"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version, commands.Commit, commands.Date = version, commit, date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
