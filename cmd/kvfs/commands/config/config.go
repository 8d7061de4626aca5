// Package config groups the config maintenance subcommands of kvfs.
package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/kvfs/pkg/config"
)

// Cmd groups the configuration subcommands.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and maintain configuration",
	Long: `Inspect and maintain the kvfs configuration.

'kvfs init' creates a new configuration file; the subcommands here work
on an existing one: show the effective values, validate a file, open it
in an editor, or emit a JSON schema for IDE completion.`,
}

func init() {
	Cmd.AddCommand(editCmd, validateCmd, showCmd, schemaCmd)
}

// flagConfigPath resolves the --config persistent flag to a concrete path,
// substituting the default location when the flag is empty.
func flagConfigPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.GetDefaultConfigPath()
	}
	return path
}
