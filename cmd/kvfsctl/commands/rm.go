package commands

import (
	"fmt"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var (
	rmRecursive bool
	rmForce     bool
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Remove a file or directory",
	Long: `Remove a file or directory from the kvfs server.

Directories require --recursive, which removes the directory and
everything under it. You will be prompted for confirmation unless
--force is specified.

Examples:
  # Remove a file
  kvfsctl rm /docs/old.txt

  # Remove a directory tree
  kvfsctl rm -r /docs/archive

  # Remove without confirmation
  kvfsctl rm -f /docs/old.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rmCmd.Flags().BoolVarP(&rmRecursive, "recursive", "r", false, "Remove directories and their contents")
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Skip confirmation prompt")
}

func runRm(cmd *cobra.Command, args []string) error {
	path := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	info, err := client.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	resourceType := "File"
	if info.IsDir() {
		if !rmRecursive {
			return fmt.Errorf("'%s' is a directory (use --recursive to remove it)", path)
		}
		resourceType = "Directory"
	}

	return cmdutil.RunDeleteWithConfirmation(resourceType, path, rmForce, func() error {
		if info.IsDir() {
			return client.RemoveAll(path)
		}
		return client.Remove(path)
	})
}
