package context

import (
	"errors"
	"fmt"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved context",
	Long: `Delete a saved context and its stored tokens.

Examples:
  # Delete a context (asks for confirmation)
  kvfsctl context delete old-server

  # Skip the prompt
  kvfsctl context delete old-server --force`,
	Args: cobra.ExactArgs(1),
	RunE: runContextDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runContextDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("Context", name, deleteForce, func() error {
		if err := store.DeleteContext(name); err != nil {
			if errors.Is(err, credentials.ErrContextNotFound) {
				return fmt.Errorf("no context named '%s'", name)
			}
			return fmt.Errorf("failed to delete context: %w", err)
		}
		return nil
	})
}
