package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Run the full pipeline through the Validator and print its diagnostics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	r, err := runPipeline(cmd, args, stageValidate)
	if err != nil {
		return err
	}
	if hadErrors := printDiagnostics(r.Diags); hadErrors {
		return fmt.Errorf("validation reported errors")
	}
	fmt.Println("no errors")
	return nil
}
