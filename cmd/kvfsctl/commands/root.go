// Package commands implements the CLI commands for the kvfsctl client.
package commands

import (
	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	ctxcmd "github.com/marmos91/kvfs/cmd/kvfsctl/commands/context"
	usercmd "github.com/marmos91/kvfs/cmd/kvfsctl/commands/user"
	"github.com/marmos91/kvfs/internal/cli/credentials"
	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "kvfsctl",
	Short: "kvfsctl - remote management client for kvfs",
	Long: `kvfsctl is the command-line client for managing kvfs servers remotely.

Use this tool to browse and transfer files, manage users, and inspect
server state through the kvfs REST API.

Use "kvfsctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Copy the global flags into cmdutil.Flags, where subcommands read them.
		f := cmd.Flags()
		cmdutil.Flags.ServerURL, _ = f.GetString("server")
		cmdutil.Flags.Token, _ = f.GetString("token")
		cmdutil.Flags.Output, _ = f.GetString("output")
		cmdutil.Flags.NoColor, _ = f.GetBool("no-color")
		cmdutil.Flags.Verbose, _ = f.GetBool("verbose")
		applyPreferences(cmd)
	},
}

// applyPreferences fills flag values from stored preferences. Flags the
// user set explicitly always win.
func applyPreferences(cmd *cobra.Command) {
	store, err := credentials.NewStore()
	if err != nil {
		return
	}
	prefs := store.GetPreferences()
	if prefs.DefaultOutput != "" && !cmd.Flags().Changed("output") {
		cmdutil.Flags.Output = prefs.DefaultOutput
	}
	if prefs.Color == "never" && !cmd.Flags().Changed("no-color") {
		cmdutil.Flags.NoColor = true
	}
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd exposes the root command to tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("server", "", "Server URL (overrides the stored context)")
	pf.String("token", "", "Bearer token (overrides the stored context)")
	pf.StringP("output", "o", "table", "Output format: table, json, or yaml")
	pf.Bool("no-color", false, "Never colorize output")
	pf.BoolP("verbose", "v", false, "Print diagnostic notes to stderr")

	rootCmd.AddCommand(versionCmd, loginCmd, logoutCmd, statusCmd,
		ctxcmd.Cmd, usercmd.Cmd,
		lsCmd, statCmd, mkdirCmd, putCmd, getCmd, rmCmd, touchCmd,
		completionCmd)

	// The generated completion command is replaced by our own.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
