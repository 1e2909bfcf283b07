package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mirrorer/internal/cli/formatter"
	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/interpret"
)

type interpretOutput struct {
	Result  domain.SimulationResult `json:"result"`
	Matched int                     `json:"matched"`
}

func newInterpretCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "interpret [file|-]",
		Short: "Interpret a raw model completion into a decision record",
		Long: `Interpret reads a completion in the output template (Stimulus, Knowledge,
Evaluation, Behavior lines) from a file or stdin and prints the parsed
result. Missing fields fall back to placeholders.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			out := interpretOutput{Result: interpret.Interpret(raw), Matched: interpret.Matched(raw)}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, formatter.FormatResult(out.Result))
			fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("%d field(s) matched", out.Matched)))
			return nil
		},
	}
	addJSONFlag(cmd.Flags(), &asJSON)
	return cmd
}
