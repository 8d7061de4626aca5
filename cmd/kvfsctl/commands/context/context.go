// Package context implements context management subcommands for kvfsctl.
package context

import (
	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/internal/cli/credentials"
	"github.com/spf13/cobra"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Manage server contexts",
	Long: `Manage connection contexts for multiple kvfs servers.

A context stores a server URL together with the credentials obtained for
it, so you can switch between servers the way kubectl switches clusters.`,
}

func init() {
	Cmd.AddCommand(listCmd, useCmd, currentCmd, renameCmd, deleteCmd)
}

// openStore loads the shared credential file.
func openStore() (*credentials.Store, error) {
	return cmdutil.OpenCredentials()
}

// ContextInfo is the display form of one stored context.
type ContextInfo struct {
	Name      string `json:"name" yaml:"name"`
	Current   bool   `json:"current" yaml:"current"`
	ServerURL string `json:"server_url" yaml:"server_url"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	LoggedIn  bool   `json:"logged_in" yaml:"logged_in"`
}

// infoFor flattens a stored context into its display form.
func infoFor(name, currentName string, ctx *credentials.Context) ContextInfo {
	return ContextInfo{
		Name:      name,
		Current:   name == currentName,
		ServerURL: ctx.ServerURL,
		Username:  ctx.Username,
		LoggedIn:  ctx.AccessToken != "" && !ctx.IsExpired(),
	}
}
