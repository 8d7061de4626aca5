package context

import (
	"errors"
	"fmt"

	"github.com/marmos91/kvfs/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a saved context current",
	Long: `Make the named context current. Subsequent commands talk to its server
with its stored credentials.

Examples:
  # Switch to the production context
  kvfsctl context use prod`,
	Args: cobra.ExactArgs(1),
	RunE: runContextUse,
}

func runContextUse(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}

	if err := store.UseContext(name); err != nil {
		if errors.Is(err, credentials.ErrContextNotFound) {
			return fmt.Errorf("no context named '%s'\n\n"+
				"See saved contexts with:\n"+
				"  kvfsctl context list", name)
		}
		return fmt.Errorf("failed to switch to %q: %w", name, err)
	}

	fmt.Printf("Now using context %q\n", name)
	return nil
}
