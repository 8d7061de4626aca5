package commands

import (
	"fmt"
	"os"
	"path"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var (
	getOffset uint64
	getLength uint64
)

var getCmd = &cobra.Command{
	Use:   "get <remote-path> [local-file]",
	Short: "Download a file",
	Long: `Download a file from the kvfs server.

Without a local file argument, the file is saved under its remote name
in the current directory. Use "-" to write to stdout. With --offset
and --length, only the selected byte range is downloaded.

Examples:
  # Download to ./report.pdf
  kvfsctl get /docs/report.pdf

  # Download to a specific file
  kvfsctl get /docs/report.pdf /tmp/report.pdf

  # Print to stdout
  kvfsctl get /docs/notes.txt -

  # Download 100 bytes starting at position 4096
  kvfsctl get /data/blob - --offset 4096 --length 100`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().Uint64Var(&getOffset, "offset", 0, "Start reading at this byte offset")
	getCmd.Flags().Uint64Var(&getLength, "length", 0, "Number of bytes to read (0 means to end of file)")
}

func runGet(cmd *cobra.Command, args []string) error {
	remote := args[0]

	dest := ""
	if len(args) == 2 {
		dest = args[1]
	} else {
		dest = path.Base(remote)
		if dest == "/" || dest == "." {
			return fmt.Errorf("cannot derive a local file name from %q, specify one explicitly", remote)
		}
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	var data []byte
	if cmd.Flags().Changed("offset") || cmd.Flags().Changed("length") {
		data, err = client.DownloadRange(remote, getOffset, getLength)
	} else {
		data, err = client.Download(remote)
	}
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", remote, err)
	}

	if dest == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Downloaded %s to %s (%s)", remote, dest, formatSize(uint64(len(data)))))
	return nil
}
