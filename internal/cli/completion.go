package cli

import (
	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a completion script for your shell.

Bash:
  source <(pingnodes completion bash)

Zsh:
  pingnodes completion zsh > "${fpath[1]}/_pingnodes"

Fish:
  pingnodes completion fish | source

PowerShell:
  pingnodes completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return errors.New(errors.ErrConfig, "Unsupported shell: "+args[0], "Use bash, zsh, fish, or powershell.")
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
