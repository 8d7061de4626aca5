package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show file or directory metadata",
	Long: `Display the metadata of a file or directory on the kvfs server.

Examples:
  # Show metadata as table
  kvfsctl stat /docs/readme.txt

  # Show as JSON
  kvfsctl stat /docs/readme.txt -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

// FileDetails wraps file metadata for table rendering.
type FileDetails struct {
	Info *apiclient.FileInfo
}

// Headers implements TableRenderer.
func (fd FileDetails) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (fd FileDetails) Rows() [][]string {
	info := fd.Info

	rows := [][]string{
		{"Path", info.Path},
		{"Type", info.Type},
		{"Mode", fmt.Sprintf("%s (%04o)", formatMode(info), info.Mode&0o7777)},
		{"Size", fmt.Sprintf("%d (%s)", info.Size, formatSize(info.Size))},
		{"UID", fmt.Sprintf("%d", info.UID)},
		{"GID", fmt.Sprintf("%d", info.GID)},
	}
	if !info.IsDir() {
		rows = append(rows, []string{"Chunks", fmt.Sprintf("%d", info.NumChunks)})
	}
	rows = append(rows,
		[]string{"Accessed", formatTimestamp(info.Atime)},
		[]string{"Modified", formatTimestamp(info.Mtime)},
		[]string{"Changed", formatTimestamp(info.Ctime)},
	)
	return rows
}

func runStat(cmd *cobra.Command, args []string) error {
	path := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	info, err := client.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return cmdutil.PrintResource(os.Stdout, info, FileDetails{Info: info})
}
