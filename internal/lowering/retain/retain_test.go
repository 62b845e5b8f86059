package retain_test

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/lexer"
	"github.com/go-stc/stc/internal/lowering/retain"
	"github.com/go-stc/stc/internal/parser"
)

func mustLower(t *testing.T, src string) *ast.CompilationUnit {
	t.Helper()
	ids := ast.NewIdProvider()
	l := lexer.New(src)
	p := parser.New(l, ids, "test.st")
	cu := p.ParseCompilationUnit()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			t.Errorf("parser error: %s", e.Error())
		}
		t.FailNow()
	}
	diags := diagnostics.NewDiagnostician("test.st")
	ctx := &retain.Context{Unit: cu, Ids: ids, Diags: diags}
	if err := retain.NewLowering().Run(ctx); err != nil {
		t.Fatalf("retain lowering failed: %v", err)
	}
	return cu
}

func TestGlobalizesProgramRetainVariable(t *testing.T) {
	cu := mustLower(t, `
PROGRAM Test
VAR RETAIN
	x : INT := 5;
END_VAR
END_PROGRAM`)

	if len(cu.GlobalVars) != 1 {
		t.Fatalf("expected 1 global retain block, got %d", len(cu.GlobalVars))
	}
	block := cu.GlobalVars[0]
	if !block.Retain {
		t.Fatal("expected the synthesized global block to be marked Retain")
	}
	if len(block.Variables) != 1 || block.Variables[0].Name != "__Test_x" {
		t.Fatalf("global variables = %+v, want one __Test_x", block.Variables)
	}
	if block.Variables[0].Initializer == nil {
		t.Error("expected the initializer to move to the global variable")
	}

	pou := cu.Pous[0]
	local := pou.VariableBlocks[0].Variables[0]
	if local.Name != "x" {
		t.Fatalf("local variable renamed unexpectedly: %+v", local)
	}
	if local.Initializer != nil {
		t.Error("expected the local variable's initializer to be moved away")
	}
	addr, ok := local.Address.(*ast.Identifier)
	if !ok || addr.Name != "__Test_x" {
		t.Fatalf("local.Address = %+v, want identifier __Test_x", local.Address)
	}
}

func TestLeavesFunctionBlockRetainVariablesInPlace(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
VAR RETAIN
	a : INT := 5;
END_VAR
END_FUNCTION_BLOCK`)

	if len(cu.GlobalVars) != 0 {
		t.Fatalf("expected no globalized variables for a function block, got %+v", cu.GlobalVars)
	}
	pou := cu.Pous[0]
	v := pou.VariableBlocks[0].Variables[0]
	if v.Name != "a" || v.Address != nil {
		t.Fatalf("FB retain variable should stay untouched, got %+v", v)
	}
}
