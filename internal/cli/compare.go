package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgatlas/pgatlas/pkg/narrative"
	"github.com/pgatlas/pgatlas/pkg/snapshot"
)

// compareCommand creates the compare command for round-over-round reports.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		dir    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "compare [earlier.json] [later.json]",
		Short: "Compare two snapshots",
		Long: `Compare two snapshots.

With two arguments the first is the earlier snapshot. With one argument it is
compared against the latest snapshot in the snapshot directory. Deltas are
always later minus earlier. The report is Markdown unless --json is set.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeSnapshot,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			a, b, err := loadPair(args, dir)
			if err != nil {
				return err
			}
			cmp := snapshot.Compare(a, b, cfg.Compare)
			cmp.Narrative = narrative.Comparison(cmp)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cmp)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), narrative.ComparisonReport(cmp, a, b))
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "snapshot directory for the one-argument form")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the comparison as JSON")

	return cmd
}

// loadPair reads the earlier and later snapshot named by args.
func loadPair(args []string, dir string) (a, b *snapshot.Snapshot, err error) {
	if a, err = snapshot.ReadFile(args[0]); err != nil {
		return nil, nil, err
	}
	if len(args) == 2 {
		b, err = snapshot.ReadFile(args[1])
		return a, b, err
	}
	if dir, err = snapshotDir(dir); err != nil {
		return nil, nil, fmt.Errorf("resolve snapshot dir: %w", err)
	}
	b, err = snapshot.Latest(dir)
	return a, b, err
}
