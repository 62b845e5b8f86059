package cmd

import (
	"fmt"
	"os"

	"github.com/go-stc/stc/internal/ir/dump"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Run the pipeline and dump the phase selected by --emit",
	Long: `Runs lex through Validate (only lex and parse for --emit=ast) and,
once diagnostics are printed, dumps
whichever --emit asks for: ast (the parsed unit, before any lowering),
ast-lowered (after every lowering), index (the symbol table), or
annotations (per-node type annotations). Exit code is 0 on success,
non-zero if any error-severity diagnostic was reported (spec §6.4).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	emit, _ := cmd.Flags().GetString("emit")

	upto := stageValidate
	if emit == "ast" {
		upto = stageParse
	}

	r, err := runPipeline(cmd, args, upto)
	if err != nil {
		return err
	}
	hadErrors := printDiagnostics(r.Diags)

	format, _ := cmd.Flags().GetString("format")
	if werr := emitDump(r, emit, format); werr != nil {
		return werr
	}
	if hadErrors {
		return fmt.Errorf("build reported errors")
	}
	return nil
}

func emitDump(r *run, emit, format string) error {
	switch emit {
	case "ast", "ast-lowered":
		if r.Unit == nil {
			return nil
		}
		out := unitOutline(r.Unit)
		if format == "text" {
			printUnitOutline(out)
			return nil
		}
		return dump.Write(os.Stdout, format, out)
	case "index":
		if r.Index == nil {
			return fmt.Errorf("--emit=index requires a clean parse/index")
		}
		return dump.Write(os.Stdout, format, dump.Index(r.Index))
	case "annotations":
		if r.Anns == nil {
			return fmt.Errorf("--emit=annotations requires a clean parse/index/annotate")
		}
		return dump.Write(os.Stdout, format, dump.Annotations(r.Anns))
	default:
		return fmt.Errorf("unknown --emit value %q", emit)
	}
}
