package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgatlas/pgatlas/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output file; stdout when empty
	format    string // "svg" or "dot"
	detailed  bool   // add criticality and k-core to labels
	ecosystem string // restrict to one ecosystem
}

// renderCommand creates the render command for drawing the active graph.
func (c *CLI) renderCommand() *cobra.Command {
	var in inputFlags
	opts := renderOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Draw the active dependency graph",
		Long: `Draw the active dependency graph.

Packages in the innermost k-core are filled orange and bridge edges, whose
removal would disconnect the graph, are drawn red. Output is SVG or the
Graphviz DOT source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.parse(args); err != nil {
				return err
			}
			if !render.ValidFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", opts.format)
			}
			return c.runRender(cmd.Context(), &in, opts)
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show criticality and k-core in labels")
	cmd.Flags().StringVar(&opts.ecosystem, "ecosystem", "", "only draw packages of this ecosystem, e.g. npm")
	_ = cmd.RegisterFlagCompletionFunc("format", completeRenderFormat)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, in *inputFlags, opts renderOpts) error {
	runner := c.newRunner()
	defer runner.Close()
	res, err := c.analyze(ctx, runner, in)
	if err != nil {
		return err
	}

	data, _, err := runner.Render(ctx, res, opts.format, render.Options{
		Detailed:  opts.detailed,
		Ecosystem: opts.ecosystem,
	})
	if err != nil {
		return err
	}
	if opts.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %s", opts.format)
	printFile(opts.output)
	return nil
}
