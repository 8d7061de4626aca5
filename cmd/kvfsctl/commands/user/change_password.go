package user

import (
	"fmt"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var (
	currentPassword string
	newPassword     string
)

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Update your own password",
	Long: `Update the password of the logged-in user.

Run this after an admin reset: the server blocks other API calls until
the provisional password has been replaced.

Examples:
  # Prompt for both passwords
  kvfsctl user change-password

  # Non-interactive (both passwords end up in shell history)
  kvfsctl user change-password --current oldpass --new newpass`,
	RunE: runChangePassword,
}

func init() {
	changePasswordCmd.Flags().StringVarP(&currentPassword, "current", "c", "", "Current password (prompts if not provided)")
	changePasswordCmd.Flags().StringVarP(&newPassword, "new", "n", "", "New password (prompts if not provided)")
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	cur := currentPassword
	if cur == "" {
		if cur, err = prompt.Password("Current password"); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	newPwd, err := flagOrPromptPassword(newPassword, "New password", "Confirm new password")
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	if err := client.ChangeOwnPassword(cur, newPwd); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	// Existing tokens stay valid, no need to re-login.
	cmdutil.PrintSuccess("Password changed")

	return nil
}
