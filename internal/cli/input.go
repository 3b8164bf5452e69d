package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
)

// inputFlags are shared by every command that scores a graph.
type inputFlags struct {
	graph   string
	patches []string
	round   string
	json    bool
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.patches, "patch", "p", nil, "patch file merged into the graph (repeatable)")
	cmd.Flags().StringVar(&f.round, "round", "", "round label recorded on the snapshot, e.g. SCF-38")
	cmd.Flags().BoolVar(&f.json, "json", false, "print JSON instead of tables")

	cmd.ValidArgsFunction = completeGraphFile
	_ = cmd.RegisterFlagCompletionFunc("patch", completeJSONFile)
}

// parse takes the graph path from args and validates the round label.
func (f *inputFlags) parse(args []string) error {
	f.graph = args[0]
	return pgerrors.ValidateRoundLabel(f.round)
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
