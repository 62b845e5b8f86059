package vtable_test

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/lexer"
	"github.com/go-stc/stc/internal/lowering/vtable"
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
	ctx := &vtable.Context{Unit: cu, Ids: ids, Diags: diags}
	if err := vtable.NewLowering().Run(ctx); err != nil {
		t.Fatalf("vtable lowering failed: %v", err)
	}
	return cu
}

func findUserType(cu *ast.CompilationUnit, name string) *ast.UserTypeDeclaration {
	for _, decl := range cu.UserTypes {
		if decl.Name == name {
			return decl
		}
	}
	return nil
}

func TestSynthesizesVTableForFunctionBlockWithNoMethods(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
VAR
	a : INT;
END_VAR
END_FUNCTION_BLOCK`)

	table := findUserType(cu, "__vtable_FB")
	if table == nil {
		t.Fatal("expected __vtable_FB to be registered")
	}
	st, ok := table.Type.(*ast.InlineStruct)
	if !ok {
		t.Fatalf("__vtable_FB type = %T, want *ast.InlineStruct", table.Type)
	}
	if len(st.Fields) != 1 || st.Fields[0].Name != "__body" {
		t.Fatalf("__vtable_FB fields = %+v, want exactly one __body slot", st.Fields)
	}

	if findUserType(cu, "__FB___vtable") == nil {
		t.Fatal("expected __FB___vtable pointer type to be registered")
	}

	pou := cu.Pous[0]
	member := pou.VariableBlocks[0].Variables[0]
	if member.Name != "__vtable" {
		t.Fatalf("expected __vtable member prepended, got %+v", pou.VariableBlocks[0])
	}
	named, ok := member.Type.(*ast.NamedType)
	if !ok || named.Name != "__FB___vtable" {
		t.Fatalf("__vtable member type = %+v, want NamedType __FB___vtable", member.Type)
	}

	var instanceBlock *ast.VariableBlock
	for _, b := range cu.GlobalVars {
		for _, v := range b.Variables {
			if v.Name == "__vtable_FB_instance" {
				instanceBlock = b
			}
		}
	}
	if instanceBlock == nil {
		t.Fatal("expected __vtable_FB_instance global to be synthesized")
	}
}

func TestVTableGetsOneSlotPerMethod(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
METHOD Step : BOOL
END_METHOD
END_FUNCTION_BLOCK`)

	table := findUserType(cu, "__vtable_FB")
	st := table.Type.(*ast.InlineStruct)
	if len(st.Fields) != 2 {
		t.Fatalf("expected __body + Step slots, got %+v", st.Fields)
	}
	names := map[string]bool{}
	for _, f := range st.Fields {
		names[f.Name] = true
	}
	if !names["__body"] || !names["Step"] {
		t.Fatalf("expected __body and Step fields, got %+v", st.Fields)
	}
}

func TestVTableInheritsParentSlotsAsPrefix(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK Base
METHOD Step : BOOL
END_METHOD
METHOD Reset : BOOL
END_METHOD
END_FUNCTION_BLOCK

FUNCTION_BLOCK Derived EXTENDS Base
METHOD Extra : BOOL
END_METHOD
END_FUNCTION_BLOCK`)

	baseTable := findUserType(cu, "__vtable_Base").Type.(*ast.InlineStruct)
	wantBase := []string{"__body", "Step", "Reset"}
	if len(baseTable.Fields) != len(wantBase) {
		t.Fatalf("__vtable_Base fields = %+v, want %v", baseTable.Fields, wantBase)
	}
	for i, name := range wantBase {
		if baseTable.Fields[i].Name != name {
			t.Fatalf("__vtable_Base field %d = %q, want %q", i, baseTable.Fields[i].Name, name)
		}
	}

	derivedTable := findUserType(cu, "__vtable_Derived").Type.(*ast.InlineStruct)
	wantDerived := []string{"__body", "Step", "Reset", "Extra"}
	if len(derivedTable.Fields) != len(wantDerived) {
		t.Fatalf("__vtable_Derived fields = %+v, want %v", derivedTable.Fields, wantDerived)
	}
	for i, name := range wantDerived {
		if derivedTable.Fields[i].Name != name {
			t.Fatalf("__vtable_Derived field %d = %q, want %q (parent prefix must be preserved)", i, derivedTable.Fields[i].Name, name)
		}
	}
}

func TestVTableOverrideSubstitutesParentSlotInPlace(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK Base
METHOD Step : BOOL
END_METHOD
METHOD Reset : BOOL
END_METHOD
END_FUNCTION_BLOCK

FUNCTION_BLOCK Derived EXTENDS Base
METHOD Reset : BOOL
END_METHOD
END_FUNCTION_BLOCK`)

	derivedTable := findUserType(cu, "__vtable_Derived").Type.(*ast.InlineStruct)
	want := []string{"__body", "Step", "Reset"}
	if len(derivedTable.Fields) != len(want) {
		t.Fatalf("__vtable_Derived fields = %+v, want %v (override must not append a duplicate slot)", derivedTable.Fields, want)
	}
	for i, name := range want {
		if derivedTable.Fields[i].Name != name {
			t.Fatalf("__vtable_Derived field %d = %q, want %q", i, derivedTable.Fields[i].Name, name)
		}
	}
}

func TestFunctionsGetNoVTable(t *testing.T) {
	cu := mustLower(t, `
FUNCTION f : INT
END_FUNCTION`)

	if findUserType(cu, "__vtable_f") != nil {
		t.Fatal("a plain Function should not get a vtable")
	}
	pou := cu.Pous[0]
	if len(pou.VariableBlocks) != 0 {
		t.Fatalf("expected no __vtable member on a Function, got %+v", pou.VariableBlocks)
	}
}
