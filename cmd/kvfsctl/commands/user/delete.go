package user

import (
	"fmt"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user account",
	Long: `Delete a user account on the server.

Deletion cannot be undone, so the command asks for confirmation first.
--force skips the prompt for scripted use.

Examples:
  # Ask, then delete
  kvfsctl user delete alice

  # No prompt
  kvfsctl user delete alice --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete without asking")
}

func runDelete(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("User", username, deleteForce, func() error {
		if err := client.DeleteUser(username); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
