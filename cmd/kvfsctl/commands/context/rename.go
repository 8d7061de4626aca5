package context

import (
	"errors"
	"fmt"

	"github.com/marmos91/kvfs/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename a saved context",
	Long: `Rename a saved context. If it is the current context, it stays current.

Examples:
  # Rename the localhost context to dev
  kvfsctl context rename localhost dev`,
	Args: cobra.ExactArgs(2),
	RunE: runContextRename,
}

func runContextRename(cmd *cobra.Command, args []string) error {
	oldName, newName := args[0], args[1]

	store, err := openStore()
	if err != nil {
		return err
	}

	if err := store.RenameContext(oldName, newName); err != nil {
		if errors.Is(err, credentials.ErrContextNotFound) {
			return fmt.Errorf("no context named '%s'", oldName)
		}
		return fmt.Errorf("failed to rename %q: %w", oldName, err)
	}

	fmt.Printf("Renamed context %s to %s\n", oldName, newName)
	return nil
}
