package user

import (
	"fmt"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var passwordNew string

var passwordCmd = &cobra.Command{
	Use:   "password <username>",
	Short: "Reset another user's password",
	Long: `Set a new password for a user. Requires admin privileges.

The user is forced to pick their own password on next login.

Examples:
  # Prompt for the new password
  kvfsctl user password alice

  # Pass it on the command line (visible in shell history)
  kvfsctl user password alice --password newsecret`,
	Args: cobra.ExactArgs(1),
	RunE: runPassword,
}

func init() {
	passwordCmd.Flags().StringVarP(&passwordNew, "password", "p", "", "New password (prompts if not provided)")
}

func runPassword(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	password, err := flagOrPromptPassword(passwordNew, "New password", "Confirm password")
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	if err := client.ResetUserPassword(username, password); err != nil {
		return fmt.Errorf("failed to reset password for %s: %w", username, err)
	}

	cmdutil.PrintSuccessWithInfo(
		fmt.Sprintf("New password set for '%s'", username),
		"They must change it on next login.",
	)
	return nil
}
