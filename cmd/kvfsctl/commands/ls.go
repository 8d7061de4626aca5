package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/marmos91/kvfs/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	lsLong    bool
	lsResolve bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List directory contents",
	Long: `List the contents of a directory on the kvfs server.

Without arguments, lists the root directory. With --long, fetches the
metadata of every entry and shows mode, size, and modification time.

Examples:
  # List the root directory
  kvfsctl ls

  # List a subdirectory
  kvfsctl ls /docs

  # Detailed listing
  kvfsctl ls -l /docs

  # List as JSON
  kvfsctl ls /docs -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Show mode, size, and modification time")
	lsCmd.Flags().BoolVar(&lsResolve, "resolve", false, "Classify empty subdirectories exactly (extra server round trips)")
}

// EntryList is a short directory listing for table rendering.
type EntryList []apiclient.DirEntry

// Headers implements TableRenderer.
func (el EntryList) Headers() []string {
	return []string{"NAME", "TYPE"}
}

// Rows implements TableRenderer.
func (el EntryList) Rows() [][]string {
	rows := make([][]string, 0, len(el))
	for _, e := range el {
		typ := "file"
		if e.IsDir {
			typ = "dir"
		}
		rows = append(rows, []string{e.Name, typ})
	}
	return rows
}

// LongEntry is a detailed listing row.
type LongEntry struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Mode     string `json:"mode" yaml:"mode"`
	Size     uint64 `json:"size" yaml:"size"`
	Modified string `json:"modified" yaml:"modified"`
}

// LongEntryList is a detailed directory listing for table rendering.
type LongEntryList []LongEntry

// Headers implements TableRenderer.
func (ll LongEntryList) Headers() []string {
	return []string{"MODE", "SIZE", "MODIFIED", "NAME"}
}

// Rows implements TableRenderer.
func (ll LongEntryList) Rows() [][]string {
	rows := make([][]string, 0, len(ll))
	for _, e := range ll {
		rows = append(rows, []string{e.Mode, formatSize(e.Size), e.Modified, e.Name})
	}
	return rows
}

func runLs(cmd *cobra.Command, args []string) error {
	path := "/"
	if len(args) > 0 {
		path = args[0]
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	listing, err := client.ListDir(path, lsResolve)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", path, err)
	}

	if !lsLong {
		return cmdutil.PrintOutput(os.Stdout, listing.Entries, len(listing.Entries) == 0, "Directory is empty.", EntryList(listing.Entries))
	}

	// Long listing needs the metadata of every entry.
	details := make(LongEntryList, 0, len(listing.Entries))
	for _, e := range listing.Entries {
		info, err := client.Stat(joinRemotePath(listing.Path, e.Name))
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", e.Name, err)
		}
		details = append(details, LongEntry{
			Name:     e.Name,
			Type:     info.Type,
			Mode:     formatMode(info),
			Size:     info.Size,
			Modified: formatTimestamp(info.Mtime),
		})
	}

	return cmdutil.PrintOutput(os.Stdout, details, len(details) == 0, "Directory is empty.", details)
}
