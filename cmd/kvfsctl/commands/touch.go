package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var touchCmd = &cobra.Command{
	Use:   "touch <path>",
	Short: "Create an empty file or update its timestamp",
	Long: `Create an empty file on the kvfs server, or update the modification
time of an existing file without changing its content.

Examples:
  # Create an empty file
  kvfsctl touch /docs/placeholder.txt

  # Bump the modification time of an existing file
  kvfsctl touch /docs/readme.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runTouch,
}

func runTouch(cmd *cobra.Command, args []string) error {
	path := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	// A zero-length positional write creates the file when missing and
	// bumps the mtime without truncating existing content.
	result, err := client.UploadAt(path, 0, nil)
	if err != nil {
		return fmt.Errorf("failed to touch %s: %w", path, err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, result, fmt.Sprintf("Touched '%s'", result.Path))
}
