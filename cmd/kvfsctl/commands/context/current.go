package context

import (
	"fmt"
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/internal/cli/output"
	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active context",
	Long: `Display the active context and its login state.

Examples:
  # Human-readable summary
  kvfsctl context current

  # Structured output
  kvfsctl context current --output json`,
	RunE: runContextCurrent,
}

func runContextCurrent(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	name := store.GetCurrentContextName()
	if name == "" {
		return fmt.Errorf("no current context\n\n" +
			"Log in to a server first:\n" +
			"  kvfsctl login --server http://localhost:8080")
	}
	ctx, err := store.GetContext(name)
	if err != nil {
		return fmt.Errorf("failed to load context: %w", err)
	}
	cur := infoFor(name, name, ctx)

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cur)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, cur)
	default:
		status := "Not logged in"
		if cur.LoggedIn {
			status = "Logged in"
		}
		fmt.Printf("Current context: %s\n", cur.Name)
		fmt.Printf("  Server:    %s\n", cur.ServerURL)
		fmt.Printf("  User:      %s\n", cur.Username)
		fmt.Printf("  Status:    %s\n", status)
		return nil
	}
}
