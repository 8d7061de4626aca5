package user

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Show one user's details",
	Long: `Show all details of one user.

Examples:
  # Show a user as a table
  kvfsctl user get alice

  # Show as JSON
  kvfsctl user get alice -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// userDetail renders one user as field/value rows.
type userDetail struct {
	user apiclient.User
}

func (d userDetail) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

func (d userDetail) Rows() [][]string {
	u := d.user
	return [][]string{
		{"ID", u.ID},
		{"Username", u.Username},
		{"Display Name", cmdutil.EmptyOr(u.DisplayName, "-")},
		{"Email", cmdutil.EmptyOr(u.Email, "-")},
		{"Role", u.Role},
		{"UID", formatID(u.UID)},
		{"GID", formatID(u.GID)},
		{"Enabled", cmdutil.BoolToYesNo(u.Enabled)},
		{"Needs Password Change", cmdutil.BoolToYesNo(u.MustChangePassword)},
		{"Created", u.CreatedAt.Format(time.RFC3339)},
		{"Last Login", formatTime(u.LastLogin)},
	}
}

// formatID renders an optional uid or gid, "-" when unset.
func formatID(id *uint32) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*id), 10)
}

// formatTime renders an optional timestamp, "-" when unset.
func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	username := args[0]
	user, err := client.GetUser(username)
	if err != nil {
		return fmt.Errorf("failed to fetch user %s: %w", username, err)
	}

	return cmdutil.PrintResource(os.Stdout, user, userDetail{*user})
}
