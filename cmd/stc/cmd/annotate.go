package cmd

import (
	"fmt"
	"os"

	"github.com/go-stc/stc/internal/ir/dump"
	"github.com/spf13/cobra"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file]",
	Short: "Run the Annotator and dump the resulting per-node type annotations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	r, err := runPipeline(cmd, args, stageAnnotate)
	if err != nil {
		return err
	}
	hadErrors := printDiagnostics(r.Diags)
	if r.Anns == nil {
		return fmt.Errorf("annotation did not run")
	}

	format, _ := cmd.Flags().GetString("format")
	if err := dump.Write(os.Stdout, format, dump.Annotations(r.Anns)); err != nil {
		return err
	}
	if hadErrors {
		return fmt.Errorf("annotation reported errors")
	}
	return nil
}
