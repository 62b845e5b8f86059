package initializer_test

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/lexer"
	"github.com/go-stc/stc/internal/lowering/initializer"
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
	idx := index.New()
	ictx := &index.Context{Unit: cu, Index: idx, Diags: diags}
	if err := index.NewIndexer().Run(ictx); err != nil {
		t.Fatalf("indexer run failed: %v", err)
	}

	ctx := &initializer.Context{Unit: cu, Index: idx, Ids: ids, Diags: diags}
	if err := initializer.NewLowering().Run(ctx); err != nil {
		t.Fatalf("initializer lowering failed: %v", err)
	}
	return cu
}

func findPou(cu *ast.CompilationUnit, name string) *ast.Pou {
	for _, p := range cu.Pous {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func TestSynthesizesInitFunctionWithSelfInOutParameter(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
VAR
	a : INT := 5;
END_VAR
END_FUNCTION_BLOCK`)

	init := findPou(cu, "__init_FB")
	if init == nil {
		t.Fatal("expected __init_FB to be synthesized")
	}
	if init.Kind != ast.PouFunction {
		t.Fatalf("__init_FB kind = %v, want PouFunction", init.Kind)
	}
	if len(init.VariableBlocks) != 1 || init.VariableBlocks[0].Kind != ast.BlockInOut {
		t.Fatalf("__init_FB var blocks = %+v, want a single VAR_IN_OUT block", init.VariableBlocks)
	}
	self := init.VariableBlocks[0].Variables[0]
	if self.Name != "self" {
		t.Fatalf("expected parameter named self, got %q", self.Name)
	}
	named, ok := self.Type.(*ast.NamedType)
	if !ok || named.Name != "FB" {
		t.Fatalf("self type = %+v, want NamedType FB", self.Type)
	}
}

func TestAssignsScalarMemberInitializer(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
VAR
	a : INT := 5;
END_VAR
END_FUNCTION_BLOCK`)

	init := findPou(cu, "__init_FB")
	if len(init.Body) != 1 {
		t.Fatalf("expected one init statement, got %+v", init.Body)
	}
	assign, ok := init.Body[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("init.Body[0] = %T, want *ast.Assignment", init.Body[0])
	}
	left, ok := assign.Left.(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("assign.Left = %T, want *ast.ReferenceExpr", assign.Left)
	}
	member, ok := left.Access.(ast.MemberAccess)
	if !ok || member.Name != "a" {
		t.Fatalf("assign.Left access = %+v, want MemberAccess{a}", left.Access)
	}
	base, ok := left.Base.(*ast.Identifier)
	if !ok || base.Name != "self" {
		t.Fatalf("assign.Left base = %+v, want identifier self", left.Base)
	}
}

func TestDelegatesToMemberTypeInitFunction(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK Inner
VAR
	x : INT := 1;
END_VAR
END_FUNCTION_BLOCK

FUNCTION_BLOCK Outer
VAR
	nested : Inner;
END_VAR
END_FUNCTION_BLOCK`)

	init := findPou(cu, "__init_Outer")
	if len(init.Body) != 1 {
		t.Fatalf("expected one delegating call, got %+v", init.Body)
	}
	call, ok := init.Body[0].(*ast.CallStatement)
	if !ok {
		t.Fatalf("init.Body[0] = %T, want *ast.CallStatement", init.Body[0])
	}
	op, ok := call.Operator.(*ast.Identifier)
	if !ok || op.Name != "__init_Inner" {
		t.Fatalf("call operator = %+v, want identifier __init_Inner", call.Operator)
	}
	if len(call.Parameters) != 1 {
		t.Fatalf("expected self.nested as the sole argument, got %+v", call.Parameters)
	}
	arg, ok := call.Parameters[0].(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("call argument = %T, want *ast.ReferenceExpr", call.Parameters[0])
	}
	member, ok := arg.Access.(ast.MemberAccess)
	if !ok || member.Name != "nested" {
		t.Fatalf("call argument access = %+v, want MemberAccess{nested}", arg.Access)
	}
}

func TestRewritesSiblingIdentifierToSelfMember(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
VAR
	a : INT := 5;
	b : INT := a + 1;
END_VAR
END_FUNCTION_BLOCK`)

	init := findPou(cu, "__init_FB")
	var bAssign *ast.Assignment
	for _, stmt := range init.Body {
		assign, ok := stmt.(*ast.Assignment)
		if !ok {
			continue
		}
		if ref, ok := assign.Left.(*ast.ReferenceExpr); ok {
			if m, ok := ref.Access.(ast.MemberAccess); ok && m.Name == "b" {
				bAssign = assign
			}
		}
	}
	if bAssign == nil {
		t.Fatal("expected an assignment targeting self.b")
	}
	bin, ok := bAssign.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("b initializer = %T, want *ast.BinaryExpr", bAssign.Right)
	}
	lhs, ok := bin.Lhs.(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("rewritten lhs = %T, want *ast.ReferenceExpr (self.a)", bin.Lhs)
	}
	member, ok := lhs.Access.(ast.MemberAccess)
	if !ok || member.Name != "a" {
		t.Fatalf("rewritten lhs access = %+v, want MemberAccess{a}", lhs.Access)
	}
	base, ok := lhs.Base.(*ast.Identifier)
	if !ok || base.Name != "self" {
		t.Fatalf("rewritten lhs base = %+v, want identifier self", lhs.Base)
	}
}

func TestStructTypeGetsInitFunctionFromFieldInitializers(t *testing.T) {
	cu := mustLower(t, `
TYPE
	Point : STRUCT
		x : INT := 1;
		y : INT := 2;
	END_STRUCT;
END_TYPE

FUNCTION f : INT
END_FUNCTION`)

	init := findPou(cu, "__init_Point")
	if init == nil {
		t.Fatal("expected __init_Point to be synthesized for the struct type")
	}
	if len(init.Body) != 2 {
		t.Fatalf("expected two field assignments, got %+v", init.Body)
	}
	for _, stmt := range init.Body {
		assign, ok := stmt.(*ast.Assignment)
		if !ok {
			t.Fatalf("struct init statement = %T, want *ast.Assignment", stmt)
		}
		left, ok := assign.Left.(*ast.ReferenceExpr)
		if !ok {
			t.Fatalf("assign.Left = %T, want *ast.ReferenceExpr", assign.Left)
		}
		if _, ok := left.Access.(ast.MemberAccess); !ok {
			t.Fatalf("assign.Left access = %+v, want MemberAccess", left.Access)
		}
	}
}

func TestStructFieldOfStatefulTypeDelegatesToItsInitFunction(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK Inner
VAR
	x : INT := 1;
END_VAR
END_FUNCTION_BLOCK

TYPE
	Wrapper : STRUCT
		nested : Inner;
	END_STRUCT;
END_TYPE`)

	init := findPou(cu, "__init_Wrapper")
	if init == nil {
		t.Fatal("expected __init_Wrapper to be synthesized")
	}
	if len(init.Body) != 1 {
		t.Fatalf("expected one delegating call, got %+v", init.Body)
	}
	call, ok := init.Body[0].(*ast.CallStatement)
	if !ok {
		t.Fatalf("init.Body[0] = %T, want *ast.CallStatement", init.Body[0])
	}
	op, ok := call.Operator.(*ast.Identifier)
	if !ok || op.Name != "__init_Inner" {
		t.Fatalf("call operator = %+v, want identifier __init_Inner", call.Operator)
	}
}

func TestFunctionsDoNotGetInitFunctions(t *testing.T) {
	cu := mustLower(t, `
FUNCTION f : INT
END_FUNCTION`)

	if findPou(cu, "__init_f") != nil {
		t.Fatal("a plain Function should not get an init function")
	}
}
