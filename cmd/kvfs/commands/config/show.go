package config

import (
	"os"

	"github.com/marmos91/kvfs/internal/cli/output"
	"github.com/marmos91/kvfs/pkg/config"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration, after defaults and environment
overrides are applied.

Examples:
  # Effective config as YAML
  kvfs config show

  # JSON instead
  kvfs config show --output json

  # Show a specific config file
  kvfs config show --config /etc/kvfs/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format: yaml or json")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// --config is a persistent flag on the root command.
	flagPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(flagPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.PrintJSON(os.Stdout, cfg)
	}
	return output.PrintYAML(os.Stdout, cfg)
}
