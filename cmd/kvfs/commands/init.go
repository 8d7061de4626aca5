package commands

import (
	"fmt"

	"github.com/marmos91/kvfs/pkg/api"
	"github.com/marmos91/kvfs/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write an annotated sample configuration.

Without --config the file lands at $XDG_CONFIG_HOME/kvfs/config.yaml.

Examples:
  # Write to the default location
  kvfs init

  # Write to a custom path
  kvfs init --config /etc/kvfs/config.yaml

  # Overwrite an existing file
  kvfs init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite the file if it already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	var (
		configPath string
		err        error
	)
	if custom := GetConfigFile(); custom != "" {
		configPath = custom
		err = config.InitConfigToPath(custom, initForce)
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Wrote configuration to %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review the generated file and adjust it for your setup")
	fmt.Println("  2. Start the server with: kvfs start")
	fmt.Printf("  3. Or point at the file explicitly: kvfs start --config %s\n", configPath)
	fmt.Println()
	fmt.Println("Security note:")
	fmt.Println("  The generated JWT secret is fine for development. In production,")
	fmt.Println("  supply one through the environment instead of the config file:")
	fmt.Printf("    export %s=$(openssl rand -hex 32)\n", api.EnvAPISecret)

	return nil
}
