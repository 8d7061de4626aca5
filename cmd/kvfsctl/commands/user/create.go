package user

import (
	"fmt"
	"os"
	"strconv"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/internal/cli/prompt"
	"github.com/marmos91/kvfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	createUsername    string
	createPassword    string
	createEmail       string
	createDisplayName string
	createRole        string
	createUID         uint32
	createGID         uint32
	createHostUID     bool
	createEnabled     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Register a new user account. Requires admin privileges.

With no flags the command walks through the fields interactively.
The UID and GID determine the ownership of files the user creates.

Examples:
  # Walk through the fields interactively
  kvfsctl user create

  # Everything on the command line
  kvfsctl user create --username alice --password secret

  # Grant the admin role
  kvfsctl user create --username admin2 --password secret --role admin

  # Pin ownership to a specific UID and GID
  kvfsctl user create --username bob --password secret --uid 1001 --gid 1001

  # Reuse your own host UID/GID
  kvfsctl user create --username bob --password secret --host-uid`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createUsername, "username", "u", "", "Account username (required)")
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password (prompts if not provided)")
	createCmd.Flags().StringVar(&createEmail, "email", "", "Email address (optional)")
	createCmd.Flags().StringVar(&createDisplayName, "display-name", "", "Display name")
	createCmd.Flags().StringVar(&createRole, "role", "user", "Account role: user or admin")
	createCmd.Flags().Uint32Var(&createUID, "uid", 0, "Unix UID for file ownership (auto-assigned when omitted)")
	createCmd.Flags().Uint32Var(&createGID, "gid", 0, "Unix GID for file ownership (auto-assigned when omitted)")
	createCmd.Flags().BoolVar(&createHostUID, "host-uid", false, "Use current host user's UID and GID")
	// Both flags must already exist here, MarkFlagsMutuallyExclusive panics on unknown names.
	createCmd.MarkFlagsMutuallyExclusive("uid", "host-uid")
	createCmd.Flags().BoolVar(&createEnabled, "enabled", true, "Whether the account starts enabled")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	// No --username means a human is driving, so prompt for the rest too.
	interactive := !cmd.Flags().Changed("username")

	username := createUsername
	if username == "" {
		if username, err = prompt.InputRequired("Username"); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password, err := flagOrPromptPassword(createPassword, "Password", "Confirm password")
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	email := createEmail
	if interactive && !cmd.Flags().Changed("email") {
		if email, err = prompt.InputOptional("Email"); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	role := createRole
	if interactive && !cmd.Flags().Changed("role") {
		role, err = prompt.Select("Role", []prompt.SelectOption{
			{Label: "user", Value: "user", Description: "Standard account, no admin rights"},
			{Label: "admin", Value: "admin", Description: "Full administrative access"},
		})
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	var uid, gid *uint32
	if createHostUID {
		if uid, gid, err = hostIdentity(); err != nil {
			return err
		}
	} else {
		if cmd.Flags().Changed("uid") {
			uid = &createUID
		} else if interactive {
			if uid, err = promptUID(); err != nil {
				return cmdutil.HandleAbort(err)
			}
		}
		if cmd.Flags().Changed("gid") {
			gid = &createGID
		}
	}

	req := &apiclient.CreateUserRequest{
		Username:    username,
		Password:    password,
		Email:       email,
		DisplayName: createDisplayName,
		Role:        role,
		UID:         uid,
		GID:         gid,
		Enabled:     &createEnabled,
	}

	user, err := client.CreateUser(req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, user, fmt.Sprintf("User '%s' created", user.Username))
}

// hostIdentity resolves the calling user's UID and GID for --host-uid.
// os.Getuid returns -1 on Windows, which has no Unix identity to copy.
func hostIdentity() (uid, gid *uint32, err error) {
	host := os.Getuid()
	if host < 0 {
		return nil, nil, fmt.Errorf("--host-uid is not supported on this platform")
	}
	u := uint32(host)
	uid = &u
	if hostGID := os.Getgid(); hostGID >= 0 {
		g := uint32(hostGID)
		gid = &g
	}
	return uid, gid, nil
}

// promptUID asks for an optional numeric UID. Empty or non-numeric input
// means auto-assign.
func promptUID() (*uint32, error) {
	raw, err := prompt.InputOptional("UID (empty to auto-assign, --host-uid to copy yours)")
	if err != nil {
		return nil, err
	}
	v, convErr := strconv.ParseUint(raw, 10, 32)
	if raw == "" || convErr != nil {
		return nil, nil
	}
	u := uint32(v)
	return &u, nil
}
