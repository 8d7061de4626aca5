// Package user implements user management commands for kvfsctl.
package user

import (
	"github.com/marmos91/kvfs/internal/cli/prompt"
	"github.com/spf13/cobra"
)

// Cmd is the parent command for user management.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
	Long: `Create, inspect, and delete users on the kvfs server.

Most subcommands require admin privileges. change-password works for
any logged-in user.

Examples:
  # List all users
  kvfsctl user list

  # Create a user interactively
  kvfsctl user create

  # Create a user with flags
  kvfsctl user create --username alice --password secret --role user

  # Show user details
  kvfsctl user get alice

  # Delete a user
  kvfsctl user delete alice`,
}

func init() {
	Cmd.AddCommand(listCmd, createCmd, getCmd, deleteCmd, passwordCmd, changePasswordCmd)
}

// minPasswordLen matches the server-side minimum so a prompt rejects a
// too-short password before the round trip.
const minPasswordLen = 8

// flagOrPromptPassword returns the flag value when set, otherwise prompts
// for the password twice.
func flagOrPromptPassword(flagValue, label, confirmLabel string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return prompt.PasswordWithConfirmation(label, confirmLabel, minPasswordLen)
}
