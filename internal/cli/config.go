package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgatlas/pgatlas/pkg/config"
)

// configCommand creates the config command for inspecting thresholds.
func (c *CLI) configCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration.

The configuration is read from --config or $PGATLAS_CONFIG on top of the
defaults and validated. With neither set the defaults are printed, which makes
a convenient starting point for a config file:

  $ pgatlas config > pgatlas.toml
  $ pgatlas config --format yaml > pgatlas.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			data, err := config.Encode(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", config.FormatTOML, "output format: toml (default), yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", completeConfigFormat)

	return cmd
}
