package cmd

import (
	"fmt"
	"os"

	"github.com/go-stc/stc/internal/ir/dump"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Run the Indexer and Constant Evaluator and dump the resulting symbol table",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	r, err := runPipeline(cmd, args, stageIndex)
	if err != nil {
		return err
	}
	hadErrors := printDiagnostics(r.Diags)
	if r.Index == nil {
		return fmt.Errorf("indexing did not run")
	}

	format, _ := cmd.Flags().GetString("format")
	if err := dump.Write(os.Stdout, format, dump.Index(r.Index)); err != nil {
		return err
	}
	if hadErrors {
		return fmt.Errorf("indexing reported errors")
	}
	return nil
}
