package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var mkdirParents bool

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory",
	Long: `Create a directory on the kvfs server.

Creating a directory that already exists is not an error.

Examples:
  # Create a directory
  kvfsctl mkdir /docs

  # Create a directory and any missing parents
  kvfsctl mkdir -p /docs/reports/2026`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

func init() {
	mkdirCmd.Flags().BoolVarP(&mkdirParents, "parents", "p", false, "Create missing parent directories")
}

func runMkdir(cmd *cobra.Command, args []string) error {
	path := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	var info any
	if mkdirParents {
		info, err = client.MkdirAll(path)
	} else {
		info, err = client.Mkdir(path)
	}
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, info, fmt.Sprintf("Directory '%s' created", path))
}
