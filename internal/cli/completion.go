package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/tree"
)

// completionGenerators maps a shell name to its cobra script generator.
var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":  func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for your shell.

  bash        source <(systemmap completion bash)
  zsh         systemmap completion zsh > "${fpath[1]}/_systemmap"
  fish        systemmap completion fish | source
  powershell  systemmap completion powershell | Out-String | Invoke-Expression

Start a new shell after installing the script. Node ids complete for
--expand, tree find, tree path and tree descendants when a config is found.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionGenerators[args[0]](cmd.Root(), c.stdout())
		},
	}
}

// completeNodeIDs offers the ids of the configured tree as completions.
// Loading failures yield no suggestions rather than an error.
func (c *CLI) completeNodeIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	root, err := c.loadTree(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, id := range append([]string{root.ID}, tree.DescendantIDs(root)...) {
		if strings.HasPrefix(id, toComplete) {
			out = append(out, id)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFirstNodeID completes node ids for commands taking a single id.
func (c *CLI) completeFirstNodeID(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeNodeIDs(cmd, args, toComplete)
}
