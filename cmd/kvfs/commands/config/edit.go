package config

import (
	"cmp"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration in an editor",
	Long: `Open the configuration file in an editor.

The editor comes from $EDITOR, then $VISUAL, then vi.

Examples:
  # Edit the default config
  kvfs config edit

  # Edit a specific file
  kvfs config edit --config /etc/kvfs/config.yaml`,
	RunE: runConfigEdit,
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := flagConfigPath(cmd)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no configuration file at %s\n\nCreate one with:\n  kvfs init --config %s", path, path)
	}

	editor := cmp.Or(os.Getenv("EDITOR"), os.Getenv("VISUAL"), "vi")

	edit := exec.Command(editor, path)
	edit.Stdin = os.Stdin
	edit.Stdout = os.Stdout
	edit.Stderr = os.Stderr
	if err := edit.Run(); err != nil {
		return fmt.Errorf("%s exited with an error: %w", editor, err)
	}
	return nil
}
