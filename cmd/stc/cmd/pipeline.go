package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/go-stc/stc/internal/annotate"
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/constant"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/lexer"
	"github.com/go-stc/stc/internal/lowering/initializer"
	"github.com/go-stc/stc/internal/lowering/polymorphic"
	"github.com/go-stc/stc/internal/lowering/preprocess"
	"github.com/go-stc/stc/internal/lowering/retain"
	"github.com/go-stc/stc/internal/lowering/vtable"
	"github.com/go-stc/stc/internal/parser"
	"github.com/go-stc/stc/internal/pipeline"
	"github.com/go-stc/stc/internal/validate"
	"github.com/spf13/cobra"
)

// stage is how far a subcommand drives the pipeline before stopping
// and printing its result, mirroring spec §6.4's one-subcommand-
// per-phase design.
type stage int

const (
	stageLex stage = iota
	stageParse
	stageIndex
	stageAnnotate
	stageLower
	stageValidate
)

// run is the accumulated state of one pipeline invocation: whichever
// of these a stage reaches stays populated in every later field too,
// since index/annotate/lower/validate all need the CompilationUnit
// and every field after it.
type run struct {
	Source string
	Ids    *ast.IdProvider
	Unit   *ast.CompilationUnit
	Index  *index.Index
	Anns   *annotate.AnnotationMap
	Diags  *diagnostics.Diagnostician
	Logger *pipeline.Logger
}

// readSource reads the raw bytes of args[0], or of stdin if no file
// argument was given; runPipeline decodes them per the --encoding flag
// (SPEC_FULL §6.4).
func readSource(cmd *cobra.Command, args []string) (data []byte, filename string, err error) {
	if len(args) == 1 {
		filename = args[0]
		data, err = os.ReadFile(filename)
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", filename, err)
		}
		return data, filename, nil
	}
	filename = "<stdin>"
	data, err = io.ReadAll(os.Stdin)
	if err != nil {
		return nil, "", fmt.Errorf("reading stdin: %w", err)
	}
	return data, filename, nil
}

// runPipeline drives lex → parse and, if upto asks for it, every
// later phase through Validate. It stops after a parse error, and
// after an error-severity diagnostic from indexing or constant
// evaluation; an error-severity diagnostic from the Annotator does not
// stop the lowerings or the Validator.
func runPipeline(cmd *cobra.Command, args []string, upto stage) (*run, error) {
	encoding, _ := cmd.Flags().GetString("encoding")
	verbose, _ := cmd.Flags().GetBool("verbose")

	raw, filename, err := readSource(cmd, args)
	if err != nil {
		return nil, err
	}
	src, err := lexer.DecodeSource(raw, encoding)
	if err != nil {
		return nil, err
	}

	level := pipeline.LevelSilent
	if verbose {
		level = pipeline.LevelDebug
	}
	r := &run{Source: src, Logger: pipeline.NewLogger(level)}

	if upto == stageLex {
		return r, nil
	}

	ids := ast.NewIdProvider()
	l := lexer.New(src)
	p := parser.New(l, ids, filename)
	unit := p.ParseCompilationUnit()
	r.Ids = ids
	r.Unit = unit
	r.Diags = diagnostics.NewDiagnostician(filename)
	for _, perr := range p.Errors() {
		at := ast.Range{Start: ast.Position{Line: perr.Pos.Line, Column: perr.Pos.Column}}
		r.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EParseError, at, "%s", perr.Message))
	}
	if upto == stageParse || r.Diags.HasErrors() {
		return r, nil
	}

	// The pre-processor runs before indexing (spec §4.4: "Lowerings run
	// after annotation (except the pre-processor, which runs before)"),
	// so the Indexer and everything downstream of it see the fully
	// explicit tree (§4.4.1's enum-variant and return-type normalization).
	if err := preprocess.NewLowering().Run(&preprocess.Context{Unit: r.Unit, Ids: r.Ids, Diags: r.Diags}); err != nil {
		return nil, err
	}

	r.Index = index.New()
	if err := index.NewIndexer().Run(&index.Context{Unit: unit, Index: r.Index, Diags: r.Diags}); err != nil {
		return nil, err
	}
	if err := constant.NewEvaluator().Run(&constant.Context{Index: r.Index, Diags: r.Diags}); err != nil {
		return nil, err
	}
	if upto == stageIndex || r.Diags.HasErrors() {
		return r, nil
	}

	r.Anns = annotate.New()
	if err := annotate.NewAnnotator().Run(&annotate.Context{Unit: unit, Index: r.Index, Annotations: r.Anns, Diags: r.Diags}); err != nil {
		return nil, err
	}
	if upto == stageAnnotate {
		return r, nil
	}

	if err := runLowerings(r); err != nil {
		return nil, err
	}
	if upto == stageLower {
		return r, nil
	}

	vctx := &validate.Context{Unit: unit, Index: r.Index, Annotations: r.Anns, Diags: r.Diags}
	if err := validate.NewValidator().Run(vctx); err != nil {
		return nil, err
	}
	return r, nil
}

// runLowerings runs every post-annotation lowering in pipeline order
// (spec §4.4.2 through §4.4.5, per DESIGN.md's grounding ledger:
// retain, vtable, polymorphic, initializer), regardless of accumulated
// diagnostics — spec §4.5: "lowerings still run" even once an
// error-severity diagnostic has been reported. The pre-processor
// (§4.4.1) already ran in runPipeline, before indexing.
func runLowerings(r *run) error {
	if err := retain.NewLowering().Run(&retain.Context{Unit: r.Unit, Ids: r.Ids, Diags: r.Diags}); err != nil {
		return err
	}
	if err := vtable.NewLowering().Run(&vtable.Context{Unit: r.Unit, Ids: r.Ids, Diags: r.Diags}); err != nil {
		return err
	}
	if err := polymorphic.NewLowering().Run(&polymorphic.Context{Unit: r.Unit, Index: r.Index, Annotations: r.Anns, Ids: r.Ids, Diags: r.Diags}); err != nil {
		return err
	}
	if err := initializer.NewLowering().Run(&initializer.Context{Unit: r.Unit, Index: r.Index, Ids: r.Ids, Diags: r.Diags}); err != nil {
		return err
	}
	return nil
}

// printDiagnostics prints every accumulated diagnostic to stderr and
// reports whether any was error-severity (the caller's exit-code
// signal, spec §6.4).
func printDiagnostics(diags *diagnostics.Diagnostician) bool {
	if diags == nil {
		return false
	}
	for _, d := range diags.All() {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s [%s]\n",
			diags.File(), d.Primary.Start.Line, d.Primary.Start.Column, d.Severity, d.Message, d.Code)
	}
	return diags.HasErrors()
}
