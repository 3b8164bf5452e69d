package cli

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgatlas/pgatlas/pkg/config"
	"github.com/pgatlas/pgatlas/pkg/render"
	"github.com/pgatlas/pgatlas/pkg/snapshot"
	"github.com/pgatlas/pgatlas/pkg/surface"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pgatlas.

Besides commands and flags, the scripts complete graph and patch files
(*.json), funding tiers for "funding --tier", output formats, and the
snapshots in the snapshot directory for "compare".

Bash:
  $ source <(pgatlas completion bash)

Zsh:
  $ pgatlas completion zsh > "${fpath[1]}/_pgatlas"

Fish:
  $ pgatlas completion fish > ~/.config/fish/completions/pgatlas.fish

PowerShell:
  PS> pgatlas completion powershell | Out-String | Invoke-Expression
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
}

// =============================================================================
// Argument and flag completions
// =============================================================================

// completeGraphFile completes the single graph argument with JSON files.
func completeGraphFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

func completeJSONFile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

func completeFundingTier(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	tiers := make([]string, 0, len(surface.FundingTiers))
	for _, t := range surface.FundingTiers {
		tiers = append(tiers, string(t))
	}
	return filterPrefix(tiers, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeRenderFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	formats := make([]string, 0, len(render.ValidFormats))
	for f := range render.ValidFormats {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return filterPrefix(formats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeConfigFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix([]string{config.FormatTOML, config.FormatYAML}, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeSnapshot offers the exported snapshots of the snapshot directory
// (--dir, then $PGATLAS_SNAPSHOT_DIR, then the data dir), newest first, and
// falls back to JSON files when there are none.
func completeSnapshot(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 2 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	flag, _ := cmd.Flags().GetString("dir")
	paths := snapshotFiles(flag)
	if len(paths) == 0 {
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	}
	return filterPrefix(paths, toComplete), cobra.ShellCompDirectiveDefault
}

// snapshotFiles lists the snapshot paths of the resolved snapshot directory,
// newest first. Errors yield no candidates.
func snapshotFiles(flag string) []string {
	dir, err := snapshotDir(flag)
	if err != nil {
		return nil
	}
	paths, err := snapshot.List(dir)
	if err != nil {
		return nil
	}
	slices.Reverse(paths)
	return paths
}

func filterPrefix(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) || strings.HasPrefix(filepath.Base(c), prefix) {
			out = append(out, c)
		}
	}
	return out
}
