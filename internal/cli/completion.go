package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for recipeflow.

To load completions:

Bash:
  $ source <(recipeflow completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ recipeflow completion bash > /etc/bash_completion.d/recipeflow
  # macOS:
  $ recipeflow completion bash > $(brew --prefix)/etc/bash_completion.d/recipeflow

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ recipeflow completion zsh > "${fpath[1]}/_recipeflow"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ recipeflow completion fish | source

  # To load completions for each session, execute once:
  $ recipeflow completion fish > ~/.config/fish/completions/recipeflow.fish

PowerShell:
  PS> recipeflow completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> recipeflow completion powershell > recipeflow.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}

// completeItems completes the ITEM argument with craftable item IDs from the
// configured database.
func (c *CLI) completeItems(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	db, err := c.loadDatabase()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, id := range db.Craftable() {
		if strings.HasPrefix(id, toComplete) {
			out = append(out, id)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
