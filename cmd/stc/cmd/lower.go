package cmd

import (
	"fmt"
	"os"

	"github.com/go-stc/stc/internal/ir/dump"
	"github.com/spf13/cobra"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [file]",
	Short: "Run every lowering pass and dump the resulting unit outline",
	Long: `Runs preprocess, retain, vtable, polymorphic and initializer in
that order (SPEC_FULL §4.4.1-4.4.5) and dumps the lowered unit's
outline: synthesized vtable/init-function POUs and retain globals all
show up here the way they would to a later phase.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLower,
}

func init() {
	rootCmd.AddCommand(lowerCmd)
}

func runLower(cmd *cobra.Command, args []string) error {
	r, err := runPipeline(cmd, args, stageLower)
	if err != nil {
		return err
	}
	hadErrors := printDiagnostics(r.Diags)
	if r.Unit == nil {
		return fmt.Errorf("lowering did not run")
	}

	out := unitOutline(r.Unit)
	format, _ := cmd.Flags().GetString("format")
	if format == "text" {
		printUnitOutline(out)
	} else if err := dump.Write(os.Stdout, format, out); err != nil {
		return err
	}
	if hadErrors {
		return fmt.Errorf("lowering reported errors")
	}
	return nil
}
