package polymorphic_test

import (
	"testing"

	"github.com/go-stc/stc/internal/annotate"
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/constant"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/lexer"
	"github.com/go-stc/stc/internal/lowering/polymorphic"
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
	cctx := &constant.Context{Index: idx, Diags: diags}
	if err := constant.NewEvaluator().Run(cctx); err != nil {
		t.Fatalf("evaluator run failed: %v", err)
	}
	anns := annotate.New()
	actx := &annotate.Context{Unit: cu, Index: idx, Annotations: anns, Diags: diags}
	if err := annotate.NewAnnotator().Run(actx); err != nil {
		t.Fatalf("annotator run failed: %v", err)
	}

	pctx := &polymorphic.Context{Unit: cu, Index: idx, Annotations: anns, Ids: ids, Diags: diags}
	if err := polymorphic.NewLowering().Run(pctx); err != nil {
		t.Fatalf("polymorphic lowering failed: %v", err)
	}
	return cu
}

func findProgram(cu *ast.CompilationUnit, name string) *ast.Pou {
	for _, p := range cu.Pous {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func TestDesugarsCallThroughPointerToVTableDispatch(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
METHOD Step : BOOL
END_METHOD
END_FUNCTION_BLOCK

PROGRAM main
VAR
	fbRef : POINTER TO FB;
END_VAR
	fbRef^.Step();
END_PROGRAM`)

	main := findProgram(cu, "main")
	call, ok := main.Body[0].(*ast.CallStatement)
	if !ok {
		t.Fatalf("main.Body[0] = %T, want *ast.CallStatement", main.Body[0])
	}

	deref, ok := call.Operator.(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("Operator = %T, want *ast.ReferenceExpr", call.Operator)
	}
	if _, ok := deref.Access.(ast.DerefAccess); !ok {
		t.Fatalf("outer access = %+v, want DerefAccess", deref.Access)
	}

	slot, ok := deref.Base.(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("deref base = %T, want *ast.ReferenceExpr", deref.Base)
	}
	member, ok := slot.Access.(ast.MemberAccess)
	if !ok || member.Name != "Step" {
		t.Fatalf("slot access = %+v, want MemberAccess{Step}", slot.Access)
	}

	cast, ok := slot.Base.(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("cast base = %T, want *ast.ReferenceExpr", slot.Base)
	}
	castAccess, ok := cast.Access.(ast.CastAccess)
	if !ok {
		t.Fatalf("cast access = %+v, want CastAccess", cast.Access)
	}
	named, ok := castAccess.Target.(*ast.NamedType)
	if !ok || named.Name != "__vtable_FB" {
		t.Fatalf("cast target = %+v, want NamedType __vtable_FB", castAccess.Target)
	}

	if len(call.Parameters) != 1 {
		t.Fatalf("expected the instance to be prepended as the sole parameter, got %+v", call.Parameters)
	}
	instance, ok := call.Parameters[0].(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("instance arg = %T, want *ast.ReferenceExpr", call.Parameters[0])
	}
	if _, ok := instance.Access.(ast.DerefAccess); !ok {
		t.Fatalf("instance arg access = %+v, want DerefAccess", instance.Access)
	}
	ref, ok := instance.Base.(*ast.Identifier)
	if !ok || ref.Name != "fbRef" {
		t.Fatalf("instance arg base = %+v, want identifier fbRef", instance.Base)
	}
}

func TestDesugarsImplicitSelfCallInsideMethodBody(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
METHOD Step : BOOL
END_METHOD
METHOD Run : BOOL
	Step();
END_METHOD
END_FUNCTION_BLOCK`)

	run := findProgram(cu, "Run")
	if run == nil {
		t.Fatal("expected a flattened Pou named Run")
	}
	call, ok := run.Body[0].(*ast.CallStatement)
	if !ok {
		t.Fatalf("Run.Body[0] = %T, want *ast.CallStatement", run.Body[0])
	}

	deref, ok := call.Operator.(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("Operator = %T, want *ast.ReferenceExpr", call.Operator)
	}
	slot, ok := deref.Base.(*ast.ReferenceExpr)
	if !ok {
		t.Fatalf("deref base = %T, want *ast.ReferenceExpr", deref.Base)
	}
	member, ok := slot.Access.(ast.MemberAccess)
	if !ok || member.Name != "Step" {
		t.Fatalf("slot access = %+v, want MemberAccess{Step}", slot.Access)
	}
	cast := slot.Base.(*ast.ReferenceExpr)
	castAccess, ok := cast.Access.(ast.CastAccess)
	if !ok {
		t.Fatalf("cast access = %+v, want CastAccess", cast.Access)
	}
	named, ok := castAccess.Target.(*ast.NamedType)
	if !ok || named.Name != "__vtable_FB" {
		t.Fatalf("cast target = %+v, want NamedType __vtable_FB", castAccess.Target)
	}

	if len(call.Parameters) != 1 {
		t.Fatalf("expected a synthesized THIS argument, got %+v", call.Parameters)
	}
	this, ok := call.Parameters[0].(*ast.Identifier)
	if !ok || this.Name != "THIS" {
		t.Fatalf("instance arg = %+v, want synthesized identifier THIS", call.Parameters[0])
	}
}

func TestLeavesOrdinaryFunctionCallsUntouched(t *testing.T) {
	cu := mustLower(t, `
FUNCTION f : INT
END_FUNCTION

PROGRAM main
	f();
END_PROGRAM`)

	main := findProgram(cu, "main")
	call := main.Body[0].(*ast.CallStatement)
	if len(call.Parameters) != 0 {
		t.Fatalf("expected a plain function call to stay untouched, got parameters %+v", call.Parameters)
	}
	if _, ok := call.Operator.(*ast.Identifier); !ok {
		t.Fatalf("Operator = %T, want an untouched *ast.Identifier", call.Operator)
	}
}

func TestLeavesDirectInstanceCallsUntouched(t *testing.T) {
	cu := mustLower(t, `
FUNCTION_BLOCK FB
METHOD Step : BOOL
END_METHOD
END_FUNCTION_BLOCK

PROGRAM main
VAR
	instanceFB : FB;
END_VAR
	instanceFB.Step();
END_PROGRAM`)

	main := findProgram(cu, "main")
	call := main.Body[0].(*ast.CallStatement)
	if len(call.Parameters) != 0 {
		t.Fatalf("expected a direct instance call to stay untouched, got parameters %+v", call.Parameters)
	}
	ref := call.Operator.(*ast.ReferenceExpr)
	if _, ok := ref.Access.(ast.MemberAccess); !ok {
		t.Fatalf("operator access = %+v, want an untouched MemberAccess", ref.Access)
	}
}
