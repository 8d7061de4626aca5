package commands

import (
	"fmt"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the current context's tokens",
	Long: `Discard the saved tokens for the current context.

Only the access and refresh tokens are deleted. The server URL and the
context entry survive, so a later login needs no flags.

Examples:
  # Log out of the current context
  kvfsctl logout`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := cmdutil.OpenCredentials()
	if err != nil {
		return err
	}

	name := store.GetCurrentContextName()
	if name == "" {
		return fmt.Errorf("not logged in")
	}
	if err := store.ClearCurrentContext(); err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}

	fmt.Printf("Logged out from context: %s\n", name)
	return nil
}
