package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
)

func rangeAt(line, col int) ast.Range {
	return ast.Range{Start: ast.Position{Line: line, Column: col}, End: ast.Position{Line: line, Column: col}}
}

func TestDiagnosticianHasErrors(t *testing.T) {
	d := diagnostics.NewDiagnostician("test.st")
	if d.HasErrors() {
		t.Fatal("expected no errors before any report")
	}
	d.Report(diagnostics.NewWarning(diagnostics.EAssignability, rangeAt(1, 1), "just a warning"))
	if d.HasErrors() {
		t.Fatal("a warning alone should not count as an error")
	}
	d.Errorf(diagnostics.EDuplicateSymbol, rangeAt(2, 1), "%q already declared", "Foo")
	if !d.HasErrors() {
		t.Fatal("expected HasErrors to be true after an error-severity report")
	}
}

func TestDiagnosticianSortsByLineThenNaturalSymbol(t *testing.T) {
	d := diagnostics.NewDiagnostician("test.st")
	d.Report(diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, rangeAt(5, 1), "dup").WithSymbol("__init_FB10"))
	d.Report(diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, rangeAt(5, 1), "dup").WithSymbol("__init_FB2"))
	d.Report(diagnostics.NewDiagnostic(diagnostics.EUnknownType, rangeAt(1, 1), "unknown").WithSymbol("Z"))

	all := d.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(all))
	}
	if all[0].Symbol != "Z" {
		t.Fatalf("expected line-1 diagnostic first, got symbol %q", all[0].Symbol)
	}
	if all[1].Symbol != "__init_FB2" || all[2].Symbol != "__init_FB10" {
		t.Fatalf("expected natural order FB2 before FB10, got %q then %q", all[1].Symbol, all[2].Symbol)
	}
}

func TestRenderTextIncludesCaret(t *testing.T) {
	source := "PROGRAM main\n  x := y;\nEND_PROGRAM"
	d := diagnostics.NewDiagnostic(diagnostics.EUndefinedVariable, rangeAt(2, 8), "undefined variable 'y'")
	out := diagnostics.RenderText("test.st", source, []*diagnostics.Diagnostic{d})
	if !strings.Contains(out, "test.st:2:8") {
		t.Fatalf("expected location header, got: %s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected caret marker, got: %s", out)
	}
}

func TestRenderJSONRoundTripsCodeCounts(t *testing.T) {
	diags := []*diagnostics.Diagnostic{
		diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, rangeAt(1, 1), "dup a"),
		diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, rangeAt(2, 1), "dup b"),
		diagnostics.NewDiagnostic(diagnostics.EUnknownType, rangeAt(3, 1), "unknown"),
	}
	out, err := diagnostics.RenderJSON(diags)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	counts := diagnostics.CodeCounts(out)
	if counts[diagnostics.EDuplicateSymbol] != 2 {
		t.Errorf("expected 2 duplicate-symbol entries, got %d", counts[diagnostics.EDuplicateSymbol])
	}
	if counts[diagnostics.EUnknownType] != 1 {
		t.Errorf("expected 1 unknown-type entry, got %d", counts[diagnostics.EUnknownType])
	}
}

func TestInterfaceMismatchDetailRenders(t *testing.T) {
	d := diagnostics.NewDiagnostic(diagnostics.EInterfaceMismatch, rangeAt(10, 3), "method does not implement interface")
	d.Detail = diagnostics.InterfaceMismatch{Method: "Compute", ReturnType: true, ParameterType: true}
	out := diagnostics.RenderText("test.st", "", []*diagnostics.Diagnostic{d})
	if !strings.Contains(out, "Compute: return type") {
		t.Errorf("expected return-type mismatch line, got: %s", out)
	}
	if !strings.Contains(out, "Compute: parameter type") {
		t.Errorf("expected parameter-type mismatch line, got: %s", out)
	}
}
