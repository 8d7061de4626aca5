package user

import (
	"fmt"
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every user account",
	Long: `List every user registered on the server.

Examples:
  # Table view
  kvfsctl user list

  # Structured output for scripts
  kvfsctl user list -o json`,
	RunE: runList,
}

// UserList is a set of user accounts for table rendering.
type UserList []apiclient.User

// Headers implements TableRenderer.
func (ul UserList) Headers() []string {
	return []string{"USERNAME", "UID", "GID", "ROLE", "EMAIL", "ENABLED"}
}

// Rows implements TableRenderer.
func (ul UserList) Rows() [][]string {
	rows := make([][]string, 0, len(ul))
	for _, u := range ul {
		rows = append(rows, []string{
			u.Username,
			formatID(u.UID),
			formatID(u.GID),
			u.Role,
			cmdutil.EmptyOr(u.Email, "-"),
			cmdutil.BoolToYesNo(u.Enabled),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	users, err := client.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, users, len(users) == 0, "No users registered.", UserList(users))
}
