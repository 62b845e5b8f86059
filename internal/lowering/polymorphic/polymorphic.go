// Package polymorphic implements the polymorphic-call desugaring
// lowering (spec §4.4.4): a call reached through a pointer/reference
// to a stateful POU, `ref^.foo()`, is rewritten into an explicit
// vtable dispatch — `__vtable_POU#(ref^.__vtable^).foo^(ref^)` —
// casting the dereferenced vtable pointer to the owning POU's concrete
// vtable struct, reading the method's function-pointer slot,
// dereferencing it to call, and passing the original instance
// expression as the call's first argument.
//
// A bare call with no base, made from inside a Method/Action or any
// other stateful POU's body, is candidate too when it names a sibling
// Method/Action of the enclosing POU: the surface grammar has no
// user-typed THIS token, but the lowering synthesizes an internal THIS
// self-reference node the same way it already synthesizes
// `__vtable_<POU>` and friends, and desugars through it exactly like
// an explicit-base call.
package polymorphic

import (
	"github.com/go-stc/stc/internal/annotate"
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/types"
)

// Context is the polymorphic lowering's pipeline.Pass context.
type Context struct {
	Unit        *ast.CompilationUnit
	Index       *index.Index
	Annotations *annotate.AnnotationMap
	Ids         *ast.IdProvider
	Diags       *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Lowering implements pipeline.Pass[*Context]. selfOwner tracks, for
// the POU body currently being walked, which POU name a bare call
// dispatches against implicitly — set once per POU in Run and read by
// desugarImplicitSelf.
type Lowering struct {
	selfOwner string
}

func NewLowering() *Lowering { return &Lowering{} }

func (*Lowering) Name() string { return "PolymorphicCallLowering" }

func (l *Lowering) Run(ctx *Context) error {
	for _, p := range ctx.Unit.Pous {
		l.selfOwner = selfOwnerFor(p)
		l.rewriteStatements(ctx, p.Body)
	}
	return nil
}

// selfOwnerFor returns the POU name a bare call inside p's body
// dispatches against: the owning Function Block/Class for a
// Method/Action, or p's own name for any other stateful POU. "" for a
// stateless POU (a plain Function), which has no self to call
// through.
func selfOwnerFor(p *ast.Pou) string {
	if !p.Kind.IsStateful() {
		return ""
	}
	if p.Parent != "" {
		return p.Parent
	}
	return p.Name
}

func (l *Lowering) rewriteStatements(ctx *Context, stmts []ast.Statement) {
	for _, s := range stmts {
		l.rewriteStatement(ctx, s)
	}
}

func (l *Lowering) rewriteStatement(ctx *Context, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		l.rewriteExpr(ctx, s.Left)
		l.rewriteExpr(ctx, s.Right)
	case *ast.CallStatement:
		l.rewriteExpr(ctx, s)
	case *ast.ExpressionStatement:
		l.rewriteExpr(ctx, s.Expr)
	case *ast.If:
		for _, br := range s.Branches {
			l.rewriteExpr(ctx, br.Condition)
			l.rewriteStatements(ctx, br.Body)
		}
		l.rewriteStatements(ctx, s.Else)
	case *ast.Case:
		l.rewriteExpr(ctx, s.Selector)
		for _, label := range s.Labels {
			l.rewriteStatements(ctx, label.Body)
		}
		l.rewriteStatements(ctx, s.Else)
	case *ast.For:
		l.rewriteExpr(ctx, s.Start)
		l.rewriteExpr(ctx, s.End)
		if s.Step != nil {
			l.rewriteExpr(ctx, s.Step)
		}
		l.rewriteStatements(ctx, s.Body)
	case *ast.While:
		l.rewriteExpr(ctx, s.Condition)
		l.rewriteStatements(ctx, s.Body)
	case *ast.Repeat:
		l.rewriteStatements(ctx, s.Body)
		l.rewriteExpr(ctx, s.Condition)
	}
}

// rewriteExpr walks into the parts of expr that can themselves contain
// a call worth desugaring. Since the desugaring mutates a
// *ast.CallStatement's Operator/Parameters fields in place, no
// parent-slot replacement is needed: finding the node is enough.
func (l *Lowering) rewriteExpr(ctx *Context, expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.CallStatement:
		for _, p := range e.Parameters {
			l.rewriteExpr(ctx, p)
		}
		l.desugarIfCandidate(ctx, e)
	case *ast.BinaryExpr:
		l.rewriteExpr(ctx, e.Lhs)
		l.rewriteExpr(ctx, e.Rhs)
	case *ast.UnaryExpr:
		l.rewriteExpr(ctx, e.Value)
	case *ast.ParenExpression:
		l.rewriteExpr(ctx, e.Inner)
	case *ast.ExpressionList:
		for _, item := range e.Items {
			l.rewriteExpr(ctx, item)
		}
	case *ast.ReferenceExpr:
		l.rewriteExpr(ctx, e.Base)
	}
}

// desugarIfCandidate rewrites call.Operator/call.Parameters in place
// when the call is a polymorphic-call candidate (spec §4.4.4): either
// `<ptr-expr>^.method(...)` (or `<ptr-expr>.method(...)`) where method
// resolves to a Method/Action
// implemented on the POU the pointer expression points to, or a bare
// `method(...)` inside a Method/Action/stateful-POU body naming a
// sibling Method/Action of the enclosing POU.
func (l *Lowering) desugarIfCandidate(ctx *Context, call *ast.CallStatement) {
	if ref, ok := call.Operator.(*ast.ReferenceExpr); ok {
		l.desugarExplicitBase(ctx, call, ref)
		return
	}
	l.desugarImplicitSelf(ctx, call)
}

func (l *Lowering) desugarExplicitBase(ctx *Context, call *ast.CallStatement, ref *ast.ReferenceExpr) {
	member, ok := ref.Access.(ast.MemberAccess)
	if !ok {
		return
	}

	// For `ref^.method()` the pointer is the base of the dereference.
	ptrExpr := ref.Base
	if d, ok := ref.Base.(*ast.ReferenceExpr); ok {
		if _, isDeref := d.Access.(ast.DerefAccess); isDeref {
			ptrExpr = d.Base
		}
	}
	baseAnn := ctx.Annotations.Get(ptrExpr.ID())
	baseType := types.Resolve(annotate.ResultType(baseAnn))
	ptr, ok := baseType.(*types.Pointer)
	if !ok {
		return
	}
	pouName := types.Resolve(ptr.Inner).Name()

	pou, found := ctx.Index.Pous.Get(pouName)
	if !found || !pou.Kind.IsStateful() || pou.Kind == ast.PouMethod || pou.Kind == ast.PouAction {
		return
	}
	if _, found := ctx.Index.Implementations.Get(pouName + "." + member.Name); !found {
		return
	}

	l.desugarDispatch(ctx, call, ref.Base, pouName, member.Name)
}

// desugarImplicitSelf handles spec §4.4.4 candidacy rule 1: a bare
// call (no base) inside a Method/Action/stateful-POU body that names
// a sibling Method/Action of the enclosing POU gets a synthesized
// THIS self-reference inserted as the base, then desugars exactly
// like an explicit-base call.
func (l *Lowering) desugarImplicitSelf(ctx *Context, call *ast.CallStatement) {
	if l.selfOwner == "" {
		return
	}
	id, ok := call.Operator.(*ast.Identifier)
	if !ok {
		return
	}
	impl, found := ctx.Index.Implementations.Get(l.selfOwner + "." + id.Name)
	if !found || (impl.Pou.Kind != ast.PouMethod && impl.Pou.Kind != ast.PouAction) {
		return
	}

	this := ast.NewIdentifier(ctx.Ids.Next(), call.Range(), "THIS")
	l.desugarDispatch(ctx, call, this, l.selfOwner, id.Name)
}

// desugarDispatch rewrites call.Operator/call.Parameters in place into
// the explicit vtable-indirect form: casts the dereferenced vtable
// pointer to pouName's concrete vtable struct, reads methodName's
// function-pointer slot, dereferences it to call, and passes a clone
// of base as the call's first argument.
func (l *Lowering) desugarDispatch(ctx *Context, call *ast.CallStatement, base ast.Expression, pouName, methodName string) {
	loc := call.Range()
	instanceArg := cloneExpr(ctx, base)

	vtablePtrAccess := ast.NewReferenceExpr(ctx.Ids.Next(), loc, base, ast.MemberAccess{Name: "__vtable"})
	vtableValue := ast.NewReferenceExpr(ctx.Ids.Next(), loc, vtablePtrAccess, ast.DerefAccess{})
	paren := ast.NewParenExpression(ctx.Ids.Next(), loc, vtableValue)
	castToConcreteVTable := ast.NewReferenceExpr(ctx.Ids.Next(), loc, paren, ast.CastAccess{
		Target: ast.NewNamedType(ctx.Ids.Next(), loc, "__vtable_"+pouName),
	})
	slotAccess := ast.NewReferenceExpr(ctx.Ids.Next(), loc, castToConcreteVTable, ast.MemberAccess{Name: methodName})
	callOperator := ast.NewReferenceExpr(ctx.Ids.Next(), loc, slotAccess, ast.DerefAccess{})

	call.Operator = callOperator
	call.Parameters = append([]ast.Expression{instanceArg}, call.Parameters...)
}

// cloneExpr rebuilds the common pointer-expression shapes a vtable
// call's instance argument needs to be duplicated as (a bare
// identifier, or a single member/deref access on one) with fresh node
// ids, since the original expression is reused as part of the new
// operator chain and an AST node isn't meant to have two parents.
func cloneExpr(ctx *Context, expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Identifier:
		return ast.NewIdentifier(ctx.Ids.Next(), e.Range(), e.Name)
	case *ast.ReferenceExpr:
		return ast.NewReferenceExpr(ctx.Ids.Next(), e.Range(), cloneExpr(ctx, e.Base), e.Access)
	default:
		return expr
	}
}
