package commands

import (
	"fmt"
	"net/url"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/internal/cli/credentials"
	"github.com/marmos91/kvfs/internal/cli/prompt"
	"github.com/marmos91/kvfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	loginServer   string
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with a kvfs server",
	Long: `Authenticate with a kvfs server and store the token pair.

The server URL is required the first time; afterwards the stored context
supplies it, so a bare "kvfsctl login" re-authenticates against the same
server.

Examples:
  # First login
  kvfsctl login --server http://localhost:8080 --username admin

  # Non-interactive (the password ends up in shell history)
  kvfsctl login --server http://localhost:8080 -u admin -p secret

  # Re-authenticate against the stored server
  kvfsctl login`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Server URL (required the first time)")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompts if not provided)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompts if not provided)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := cmdutil.OpenCredentials()
	if err != nil {
		return err
	}

	serverURL, err := resolveServerURL(store)
	if err != nil {
		return err
	}

	username, password, err := collectCredentials()
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	fmt.Printf("Logging in to %s as %s...\n", serverURL, username)
	tokens, err := apiclient.New(serverURL).Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// Reuse the current context name when re-authenticating, otherwise
	// derive one from the server host.
	contextName := store.GetCurrentContextName()
	if contextName == "" {
		contextName = credentials.ContextNameFor(serverURL)
	}

	ctx := &credentials.Context{
		ServerURL:    serverURL,
		Username:     username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}
	if err := store.SetContext(contextName, ctx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	if err := store.UseContext(contextName); err != nil {
		return fmt.Errorf("failed to switch context: %w", err)
	}

	fmt.Printf("Logged in as %s (context %q)\n", username, contextName)
	fmt.Printf("Tokens saved to %s\n", store.ConfigPath())

	if tokens.User.MustChangePassword {
		fmt.Println()
		fmt.Println("Your password must be changed before using other commands:")
		fmt.Println("  kvfsctl user change-password")
	}

	return nil
}

// resolveServerURL takes the --server flag or falls back to the stored
// context, normalizing a missing scheme to http.
func resolveServerURL(store *credentials.Store) (string, error) {
	serverURL := loginServer
	if serverURL == "" {
		ctx, err := store.GetCurrentContext()
		if err != nil || ctx.ServerURL == "" {
			return "", fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"Specify server URL:\n" +
				"  kvfsctl login --server http://localhost:8080")
		}
		serverURL = ctx.ServerURL
	}

	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = "http"
		serverURL = parsed.String()
	}
	return serverURL, nil
}

// collectCredentials returns the --username and --password flag values,
// prompting interactively for whichever is missing.
func collectCredentials() (username, password string, err error) {
	username = loginUsername
	if username == "" {
		if username, err = prompt.InputRequired("Username"); err != nil {
			return "", "", err
		}
	}

	password = loginPassword
	if password == "" {
		if password, err = prompt.PasswordWithValidation("Password", 8); err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}
