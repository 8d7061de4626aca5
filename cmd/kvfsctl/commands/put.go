package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var putOffset uint64

var putCmd = &cobra.Command{
	Use:   "put <local-file> <remote-path>",
	Short: "Upload a file",
	Long: `Upload a local file to the kvfs server.

Without --offset, the remote file is replaced entirely. With --offset,
the data is written at the given byte position and the rest of the file
is left untouched. Use "-" as the local file to read from stdin.

Examples:
  # Upload a file
  kvfsctl put report.pdf /docs/report.pdf

  # Upload from stdin
  cat notes.txt | kvfsctl put - /docs/notes.txt

  # Overwrite bytes at position 4096
  kvfsctl put patch.bin /data/blob --offset 4096`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().Uint64Var(&putOffset, "offset", 0, "Write at this byte offset instead of replacing the file")
}

func runPut(cmd *cobra.Command, args []string) error {
	local, remote := args[0], args[1]

	var data []byte
	var err error
	if local == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		local = "stdin"
	} else {
		data, err = os.ReadFile(local)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", local, err)
		}
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	var result *apiclient.WriteResult
	if cmd.Flags().Changed("offset") {
		result, err = client.UploadAt(remote, putOffset, data)
	} else {
		result, err = client.Upload(remote, data)
	}
	if err != nil {
		return fmt.Errorf("failed to upload to %s: %w", remote, err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, result,
		fmt.Sprintf("Uploaded %s to %s (%s)", local, result.Path, formatSize(uint64(result.BytesWritten))))
}
