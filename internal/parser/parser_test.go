package parser

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/lexer"
)

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errs := p.Errors()
	if len(errs) == 0 {
		return
	}
	for _, e := range errs {
		t.Errorf("parser error: %s", e.Error())
	}
	t.FailNow()
}

func parse(t *testing.T, input string) *ast.CompilationUnit {
	t.Helper()
	l := lexer.New(input)
	p := New(l, ast.NewIdProvider(), "test.st")
	cu := p.ParseCompilationUnit()
	checkParserErrors(t, p)
	return cu
}

func TestParseSimpleProgram(t *testing.T) {
	cu := parse(t, `
PROGRAM main
VAR
	x : INT := 5;
	y : INT;
END_VAR
	y := x + 10;
END_PROGRAM`)

	if len(cu.Pous) != 1 {
		t.Fatalf("expected 1 POU, got %d", len(cu.Pous))
	}
	pou := cu.Pous[0]
	if pou.Name != "main" || pou.Kind != ast.PouProgram {
		t.Fatalf("unexpected POU: %+v", pou)
	}
	if len(pou.VariableBlocks) != 1 {
		t.Fatalf("expected 1 variable block, got %d", len(pou.VariableBlocks))
	}
	block := pou.VariableBlocks[0]
	if len(block.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(block.Variables))
	}
	if block.Variables[0].Name != "x" {
		t.Errorf("variable[0].Name = %q, want x", block.Variables[0].Name)
	}
	if len(pou.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(pou.Body))
	}
	assign, ok := pou.Body[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("body[0] is %T, want *ast.Assignment", pou.Body[0])
	}
	if _, ok := assign.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("assign.Right is %T, want *ast.BinaryExpr", assign.Right)
	}
}

func TestParseEnumTypeDeclaration(t *testing.T) {
	cu := parse(t, `
TYPE
	Color : (Red, Green, Blue);
END_TYPE`)

	if len(cu.UserTypes) != 1 {
		t.Fatalf("expected 1 user type, got %d", len(cu.UserTypes))
	}
	decl := cu.UserTypes[0]
	if decl.Name != "Color" {
		t.Fatalf("decl.Name = %q, want Color", decl.Name)
	}
	enum, ok := decl.Type.(*ast.InlineEnum)
	if !ok {
		t.Fatalf("decl.Type is %T, want *ast.InlineEnum", decl.Type)
	}
	if len(enum.Elements) != 3 {
		t.Fatalf("expected 3 enum elements, got %d", len(enum.Elements))
	}
	if enum.Elements[1].Name != "Green" {
		t.Errorf("enum.Elements[1].Name = %q, want Green", enum.Elements[1].Name)
	}
}

func TestParseIfElsifElse(t *testing.T) {
	cu := parse(t, `
FUNCTION classify : INT
VAR_INPUT
	n : INT;
END_VAR
	IF n < 0 THEN
		classify := -1;
	ELSIF n = 0 THEN
		classify := 0;
	ELSE
		classify := 1;
	END_IF;
END_FUNCTION`)

	pou := cu.Pous[0]
	ifStmt, ok := pou.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("body[0] is %T, want *ast.If", pou.Body[0])
	}
	if len(ifStmt.Branches) != 2 {
		t.Fatalf("expected 2 branches (if + elsif), got %d", len(ifStmt.Branches))
	}
	if len(ifStmt.Else) != 1 {
		t.Fatalf("expected 1 else statement, got %d", len(ifStmt.Else))
	}
}

func TestParseForLoop(t *testing.T) {
	cu := parse(t, `
PROGRAM counter
VAR
	i, total : INT;
END_VAR
	FOR i := 1 TO 10 BY 1 DO
		total := total + i;
	END_FOR;
END_PROGRAM`)

	pou := cu.Pous[0]
	forStmt, ok := pou.Body[0].(*ast.For)
	if !ok {
		t.Fatalf("body[0] is %T, want *ast.For", pou.Body[0])
	}
	if forStmt.Step == nil {
		t.Fatalf("expected BY clause to populate Step")
	}
}

func TestParseFunctionBlockCall(t *testing.T) {
	cu := parse(t, `
PROGRAM main
VAR
	result : INT;
END_VAR
	result := compute(a := 1, b => result);
END_PROGRAM`)

	pou := cu.Pous[0]
	assign, ok := pou.Body[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("body[0] is %T, want *ast.Assignment", pou.Body[0])
	}
	call, ok := assign.Right.(*ast.CallStatement)
	if !ok {
		t.Fatalf("assign.Right is %T, want *ast.CallStatement", assign.Right)
	}
	if len(call.Parameters) != 2 {
		t.Fatalf("expected 2 call parameters, got %d", len(call.Parameters))
	}
	if _, ok := call.Parameters[0].(*ast.Assignment); !ok {
		t.Errorf("call.Parameters[0] is %T, want *ast.Assignment", call.Parameters[0])
	}
	if _, ok := call.Parameters[1].(*ast.OutputAssignment); !ok {
		t.Errorf("call.Parameters[1] is %T, want *ast.OutputAssignment", call.Parameters[1])
	}
}

func TestParseRetainGlobalVar(t *testing.T) {
	cu := parse(t, `
VAR_GLOBAL RETAIN
	counter : INT := 0;
END_VAR`)

	if len(cu.GlobalVars) != 1 {
		t.Fatalf("expected 1 global var block, got %d", len(cu.GlobalVars))
	}
	if !cu.GlobalVars[0].Retain {
		t.Errorf("expected global block to be marked Retain")
	}
}

func TestParseStructTypeWithMemberAccess(t *testing.T) {
	cu := parse(t, `
TYPE
	Point : STRUCT
		x : INT;
		y : INT;
	END_STRUCT;
END_TYPE

PROGRAM main
VAR
	p : Point;
END_VAR
	p.x := p.y + 1;
END_PROGRAM`)

	decl := cu.UserTypes[0]
	st, ok := decl.Type.(*ast.InlineStruct)
	if !ok {
		t.Fatalf("decl.Type is %T, want *ast.InlineStruct", decl.Type)
	}
	if len(st.Fields) != 2 {
		t.Fatalf("expected 2 struct fields, got %d", len(st.Fields))
	}

	pou := cu.Pous[1]
	assign, ok := pou.Body[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("body[0] is %T, want *ast.Assignment", pou.Body[0])
	}
	ref, ok := assign.Left.(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("assign.Left is %T, want *ast.ReferenceExpr", assign.Left)
	}
	if _, ok := ref.Access.(ast.MemberAccess); !ok {
		t.Errorf("assign.Left.Access is %T, want ast.MemberAccess", ref.Access)
	}
}

func TestParseNestedMethodIsFlattenedWithParent(t *testing.T) {
	cu := parse(t, `
FUNCTION_BLOCK A
METHOD foo
END_METHOD
	foo();
END_FUNCTION_BLOCK`)

	if len(cu.Pous) != 2 {
		t.Fatalf("expected the owner and one flattened method, got %d POUs", len(cu.Pous))
	}
	owner := cu.Pous[0]
	if owner.Name != "A" || owner.Kind != ast.PouFunctionBlock {
		t.Fatalf("unexpected owner POU: %+v", owner)
	}
	if len(owner.Body) != 1 {
		t.Fatalf("expected owner body to have the foo() call, got %d statements", len(owner.Body))
	}

	method := cu.Pous[1]
	if method.Name != "foo" || method.Kind != ast.PouMethod {
		t.Fatalf("unexpected nested POU: %+v", method)
	}
	if method.Parent != "A" {
		t.Errorf("method.Parent = %q, want A", method.Parent)
	}
	if method.QualifiedName() != "A.foo" {
		t.Errorf("method.QualifiedName() = %q, want A.foo", method.QualifiedName())
	}
}

func TestParseInterfaceMethodSignature(t *testing.T) {
	cu := parse(t, `
INTERFACE I
METHOD m : DINT
END_METHOD
END_INTERFACE`)

	if len(cu.Pous) != 2 {
		t.Fatalf("expected the interface and one flattened method signature, got %d POUs", len(cu.Pous))
	}
	iface := cu.Pous[0]
	if iface.Name != "I" || iface.Kind != ast.PouInterface {
		t.Fatalf("unexpected interface POU: %+v", iface)
	}
	method := cu.Pous[1]
	if method.Name != "m" || method.Parent != "I" {
		t.Fatalf("unexpected nested method: %+v", method)
	}
	named, ok := method.ReturnType.(*ast.NamedType)
	if !ok || named.Name != "DINT" {
		t.Errorf("method.ReturnType = %#v, want NamedType(DINT)", method.ReturnType)
	}
}
