// Package commands implements the CLI commands for kvfs server management.
package commands

import (
	configcmd "github.com/marmos91/kvfs/cmd/kvfs/commands/config"
	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "kvfs",
	Short: "kvfs - POSIX-like filesystem on a key-value store",
	Long: `kvfs emulates a hierarchical filesystem on top of a flat key-value
store with size-limited values. File content is split into fixed-size chunks
stored under per-path keys, and a REST API exposes file, directory, and
metadata operations.

Use "kvfs [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd exposes the root command to tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetConfigFile returns the path given via --config, or "" for the default.
func GetConfigFile() string {
	return cfgFile
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/kvfs/config.yaml)")

	rootCmd.AddCommand(versionCmd, startCmd, stopCmd, statusCmd, logsCmd,
		initCmd, configcmd.Cmd, completionCmd)

	// The generated completion command is replaced by our own.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
