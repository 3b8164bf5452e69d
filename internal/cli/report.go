package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pgatlas/pgatlas/pkg/gate"
	"github.com/pgatlas/pgatlas/pkg/narrative"
	"github.com/pgatlas/pgatlas/pkg/surface"
)

// =============================================================================
// gate
// =============================================================================

func (c *CLI) gateCommand() *cobra.Command {
	var (
		in          inputFlags
		failedOnly  bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "gate [graph.json]",
		Short: "Show the 2-of-3 metric gate decisions",
		Long: `Show the 2-of-3 metric gate decisions.

Every scored repository is checked against the criticality, concentration and
adoption signals. Failures are listed first, then borderline passes, then
confident passes. Use --interactive to browse the decisions and read each
audit narrative.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.parse(args); err != nil {
				return err
			}
			res, err := c.analyze(cmd.Context(), c.newRunner(), &in)
			if err != nil {
				return err
			}
			results := res.Gate
			if failedOnly {
				results = failedGate(results)
			}
			switch {
			case in.json:
				return writeJSON(cmd.OutOrStdout(), results)
			case interactive:
				_, err := tea.NewProgram(NewGateModel(results), tea.WithContext(cmd.Context())).Run()
				return err
			}
			printGate(cmd.OutOrStdout(), results, res.GateSummary)
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only show failing entities")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse results interactively")

	return cmd
}

func failedGate(results []gate.Result) []gate.Result {
	var out []gate.Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func gateRows(results []gate.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.ID,
			styleVerdict(gateVerdict(r)),
			fmt.Sprintf("%d/3", r.SignalsPassed),
			mark(r.Criticality.Passed) + " " + narrative.Ordinal(r.Criticality.Raw),
			mark(r.Concentration.Passed) + " " + formatFloat(r.Concentration.Raw, 0),
			mark(r.Adoption.Passed) + " " + narrative.Ordinal(r.Adoption.Raw),
		})
	}
	return rows
}

func printGate(w io.Writer, results []gate.Result, sum gate.Summary) {
	if len(results) == 0 {
		printInfo("No gate results")
		return
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Repository", "Verdict", "Signals", "Criticality", "HHI", "Adoption"},
		gateRows(results),
	))
	printKeyValue("Pass rate", formatRate(sum.PassRate))
	printKeyValue("Borderline", fmt.Sprint(sum.Borderline))
	printKeyValue("Failed", fmt.Sprint(sum.Failed))
}

// =============================================================================
// debt
// =============================================================================

func (c *CLI) debtCommand() *cobra.Command {
	var (
		in  inputFlags
		top int
	)

	cmd := &cobra.Command{
		Use:   "debt [graph.json]",
		Short: "Show the maintenance debt surface",
		Long: `Show the maintenance debt surface.

A repository is on the surface when it is highly critical, its contributions
are concentrated in few hands, and its commit activity is slowing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.parse(args); err != nil {
				return err
			}
			res, err := c.analyze(cmd.Context(), c.newRunner(), &in)
			if err != nil {
				return err
			}
			if in.json {
				return writeJSON(cmd.OutOrStdout(), surface.SummarizeDebt(res.Debt, top))
			}
			printDebt(cmd.OutOrStdout(), res.Debt, top)
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().IntVarP(&top, "top", "n", 20, "number of entries to show")

	return cmd
}

func printDebt(w io.Writer, entries []surface.DebtEntry, top int) {
	sum := surface.SummarizeDebt(entries, top)
	if sum.Total == 0 {
		printSuccess("Maintenance debt surface is empty")
		return
	}
	rows := make([][]string, 0, len(sum.Top))
	for _, e := range sum.Top {
		rows = append(rows, []string{
			e.Repo,
			e.Project,
			narrative.Ordinal(e.CriticalityPct),
			formatFloat(e.HHI, 0),
			string(e.Trend),
			e.TopContributor,
			formatFloat(e.RiskScore, 4),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Repository", "Project", "Criticality", "HHI", "Trend", "Top contributor", "Risk"},
		rows,
	))
	printKeyValue("On surface", fmt.Sprint(sum.Total))
	printKeyValue("Critical HHI", fmt.Sprint(sum.CriticalHHI))
	printKeyValue("Declining", fmt.Sprint(sum.Declining))
}

// =============================================================================
// keystone
// =============================================================================

func (c *CLI) keystoneCommand() *cobra.Command {
	var (
		in  inputFlags
		top int
	)

	cmd := &cobra.Command{
		Use:   "keystone [graph.json]",
		Short: "Show keystone contributors",
		Long: `Show keystone contributors.

A keystone contributor is the dominant committer of one or more critical
repositories. The Keystone Contributor Index sums the criticality of the
repositories they dominate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.parse(args); err != nil {
				return err
			}
			res, err := c.analyze(cmd.Context(), c.newRunner(), &in)
			if err != nil {
				return err
			}
			entries := res.Keystone
			if top > 0 && len(entries) > top {
				entries = entries[:top]
			}
			if in.json {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			printKeystone(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().IntVarP(&top, "top", "n", 20, "number of contributors to show (0 for all)")

	return cmd
}

func printKeystone(w io.Writer, entries []surface.KeystoneEntry) {
	if len(entries) == 0 {
		printInfo("No keystone contributors")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Contributor,
			formatFloat(e.KCI, 0),
			narrative.Ordinal(e.KCIPercentile),
			strings.Join(e.DominantRepos, ", "),
			fmt.Sprint(e.AtRisk),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Contributor", "KCI", "Percentile", "Dominant repos", "At risk"},
		rows,
	))
}

// =============================================================================
// funding
// =============================================================================

func (c *CLI) fundingCommand() *cobra.Command {
	var (
		in   inputFlags
		tier string
	)

	cmd := &cobra.Command{
		Use:   "funding [graph.json]",
		Short: "Show funding efficiency per project",
		Long: `Show funding efficiency per project.

The funding efficiency ratio divides a project's criticality percentile by its
funding percentile. Ratios above 1 mean the project matters more than it is
funded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.parse(args); err != nil {
				return err
			}
			if tier != "" && !validTier(tier) {
				return fmt.Errorf("unknown tier %q", tier)
			}
			res, err := c.analyze(cmd.Context(), c.newRunner(), &in)
			if err != nil {
				return err
			}
			entries := filterTier(res.Funding, surface.FundingTier(tier))
			if in.json {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			printFunding(cmd.OutOrStdout(), entries, res.FundingSummary)
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVar(&tier, "tier", "", "only show one tier, e.g. critically_underfunded")
	_ = cmd.RegisterFlagCompletionFunc("tier", completeFundingTier)

	return cmd
}

func validTier(s string) bool {
	for _, t := range surface.FundingTiers {
		if string(t) == s {
			return true
		}
	}
	return false
}

func filterTier(entries []surface.FundingEntry, tier surface.FundingTier) []surface.FundingEntry {
	if tier == "" {
		return entries
	}
	var out []surface.FundingEntry
	for _, e := range entries {
		if e.Tier == tier {
			out = append(out, e)
		}
	}
	return out
}

func printFunding(w io.Writer, entries []surface.FundingEntry, sum surface.FundingSummary) {
	if len(entries) == 0 {
		printInfo("No projects")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		fer := "--"
		if e.FER != nil {
			fer = formatFloat(*e.FER, 2)
		}
		rows = append(rows, []string{
			e.Project,
			narrative.Ordinal(e.CriticalityPct),
			formatFloat(e.Funding, 0),
			fer,
			string(e.Tier),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Project", "Criticality", "Funding", "FER", "Tier"},
		rows,
	))
	for _, t := range surface.FundingTiers {
		if n := sum.Tiers[t]; n > 0 {
			printDetail("%s: %d", t, n)
		}
	}
}
