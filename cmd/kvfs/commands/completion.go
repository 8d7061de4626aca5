package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate a completion script for your shell",
	Long: `Generate a shell completion script for kvfs.

Load it into the current shell or install it permanently:

Bash:
  source <(kvfs completion bash)
  # Install: kvfs completion bash > /etc/bash_completion.d/kvfs

Zsh:
  kvfs completion zsh > "${fpath[1]}/_kvfs"
  # compinit must be enabled; completions load with the next new shell.

Fish:
  kvfs completion fish > ~/.config/fish/completions/kvfs.fish

PowerShell:
  kvfs completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(os.Stdout)
		case "zsh":
			return root.GenZshCompletion(os.Stdout)
		case "fish":
			return root.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}
