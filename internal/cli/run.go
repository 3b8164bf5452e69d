package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pgatlas/pgatlas/pkg/pipeline"
	"github.com/pgatlas/pgatlas/pkg/snapshot"
)

// runCommand creates the run command: score a graph and record a snapshot.
func (c *CLI) runCommand() *cobra.Command {
	var (
		in       inputFlags
		outDir   string
		noExport bool
	)

	cmd := &cobra.Command{
		Use:   "run [graph.json]",
		Short: "Score a graph and write a snapshot",
		Long: `Score a graph and write a snapshot.

The run command loads the graph (plus any --patch files), projects the active
subgraph, computes every score and surface, and writes the resulting snapshot
to the snapshot directory. The directory is --out-dir, then
$PGATLAS_SNAPSHOT_DIR, then ~/.local/share/pgatlas/snapshots.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.parse(args); err != nil {
				return err
			}
			res, err := c.analyze(cmd.Context(), c.newRunner(), &in)
			if err != nil {
				return err
			}
			path := ""
			if !noExport {
				if path, err = exportSnapshot(cmd.Context(), outDir, res.Snapshot); err != nil {
					return err
				}
			}
			if in.json {
				return writeJSON(cmd.OutOrStdout(), res.Snapshot)
			}
			printRunSummary(cmd.OutOrStdout(), res, path)
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "snapshot directory")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "do not write the snapshot file")

	return cmd
}

// exportSnapshot writes s to the resolved snapshot directory.
func exportSnapshot(ctx context.Context, flag string, s *snapshot.Snapshot) (string, error) {
	dir, err := snapshotDir(flag)
	if err != nil {
		return "", fmt.Errorf("resolve snapshot dir: %w", err)
	}
	path, err := snapshot.WriteFile(dir, s)
	if err != nil {
		return "", err
	}
	loggerFromContext(ctx).Debug("wrote snapshot", "path", path)
	return path, nil
}

func printRunSummary(w io.Writer, res *pipeline.Result, path string) {
	s := res.Snapshot
	printSuccess("Snapshot %s (%s)", s.Label(), s.ID)
	printKeyValue("Active repos", fmt.Sprint(s.ActiveRepos))
	printKeyValue("Active projects", fmt.Sprint(s.ActiveProjects))
	printKeyValue("Dormant pruned", fmt.Sprint(s.DormantPruned))
	printKeyValue("Dependency edges", fmt.Sprint(s.DependencyEdges))
	printKeyValue("Max k-core", fmt.Sprint(s.MaxKCore))
	printKeyValue("Bridge edges", fmt.Sprint(s.BridgeCount))
	printKeyValue("Mean HHI", formatFloat(s.MeanHHI, 1))
	printKeyValue("Pony factor rate", formatRate(s.PonyFactorRate))
	printKeyValue("Gate pass rate", formatRate(s.GatePassRate))
	printKeyValue("Debt surface", fmt.Sprint(s.DebtSurface))
	printKeyValue("Keystones", fmt.Sprint(s.Keystones))
	if path != "" {
		printFile(path)
	}
	if s.Narrative != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Narrative)
	}
	fmt.Fprintln(w)
	printNextStep("Inspect gate decisions", appName+" gate "+"<graph.json> --interactive")
}
