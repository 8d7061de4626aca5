package context

import (
	"os"

	"github.com/marmos91/kvfs/cmd/kvfsctl/cmdutil"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contexts",
	Long: `List every saved context. The active one is marked with *.

Examples:
  # Table with the active context marked
  kvfsctl context list

  # Machine-readable
  kvfsctl context list --output json`,
	RunE: runContextList,
}

// ContextList renders contexts as a table.
type ContextList []ContextInfo

func (l ContextList) Headers() []string {
	return []string{"", "NAME", "SERVER", "USER", "AUTH"}
}

func (l ContextList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, info := range l {
		marker := ""
		if info.Current {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			info.Name,
			info.ServerURL,
			info.Username,
			cmdutil.BoolToYesNo(info.LoggedIn),
		})
	}
	return rows
}

func runContextList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	current := store.GetCurrentContextName()
	contexts := ContextList{}
	for _, name := range store.ListContexts() {
		c, err := store.GetContext(name)
		if err != nil {
			continue
		}
		contexts = append(contexts, infoFor(name, current, c))
	}

	return cmdutil.PrintOutput(os.Stdout, contexts, len(contexts) == 0,
		"No contexts configured. Use 'kvfsctl login --server <url>' to create one.",
		contexts)
}
