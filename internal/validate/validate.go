// Package validate implements the Validator (spec §4.5): the final
// pipeline phase, run after annotation and every lowering, that walks
// the (by now fully typed and desugared) AST and reports every
// semantic rule violation it can find without stopping at the first
// one. Grounded on the *shape* of a statementValidator (one visitor
// struct, a validateStatement/checkExpression dispatch pair, errors
// accumulated rather than returned) generalized to ST's own rule set,
// with the recursion/interface/assignability checks cross-checked
// against validation and interface test fixtures for this language.
package validate

import (
	"github.com/go-stc/stc/internal/annotate"
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/types"
)

// Context is the Validator's pipeline.Pass context.
type Context struct {
	Unit        *ast.CompilationUnit
	Index       *index.Index
	Annotations *annotate.AnnotationMap
	Diags       *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Validator implements pipeline.Pass[*Context]. It never fails fast
// (spec §4.5: "validator accumulates diagnostics; no fail-fast") —
// Run always returns nil and every finding goes through ctx.Diags.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

func (*Validator) Name() string { return "Validator" }

func (v *Validator) Run(ctx *Context) error {
	for _, p := range ctx.Unit.Pous {
		v.validateStatements(ctx, p)
		v.validateImplementsTarget(ctx, p)
	}
	v.validateRecursion(ctx)
	v.validateInterfaceConformance(ctx)
	return nil
}

func (v *Validator) validateStatements(ctx *Context, p *ast.Pou) {
	for _, s := range p.Body {
		v.validateStatement(ctx, p, s)
	}
}

func (v *Validator) validateStatement(ctx *Context, p *ast.Pou, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		v.validateAssignment(ctx, s)
	case *ast.CallStatement:
		v.checkExpr(ctx, p, s)
	case *ast.ExpressionStatement:
		v.checkExpr(ctx, p, s.Expr)
	case *ast.If:
		for _, br := range s.Branches {
			v.checkExpr(ctx, p, br.Condition)
			for _, b := range br.Body {
				v.validateStatement(ctx, p, b)
			}
		}
		for _, b := range s.Else {
			v.validateStatement(ctx, p, b)
		}
	case *ast.Case:
		v.validateCase(ctx, p, s)
	case *ast.For:
		v.checkExpr(ctx, p, s.Start)
		v.checkExpr(ctx, p, s.End)
		if s.Step != nil {
			v.checkExpr(ctx, p, s.Step)
		}
		for _, b := range s.Body {
			v.validateStatement(ctx, p, b)
		}
	case *ast.While:
		v.checkExpr(ctx, p, s.Condition)
		for _, b := range s.Body {
			v.validateStatement(ctx, p, b)
		}
	case *ast.Repeat:
		for _, b := range s.Body {
			v.validateStatement(ctx, p, b)
		}
		v.checkExpr(ctx, p, s.Condition)
	}
}

// checkExpr recurses into an expression's sub-expressions, running
// the access-specific and call-specific checks it reaches along the
// way. It never reports on the expression's own result type — that's
// the annotator's job; this only enforces the Validator's rules.
func (v *Validator) checkExpr(ctx *Context, p *ast.Pou, expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.CallStatement:
		v.checkExpr(ctx, p, e.Operator)
		v.validateCallSite(ctx, p, e)
		for _, param := range e.Parameters {
			switch arg := param.(type) {
			case *ast.Assignment:
				v.checkExpr(ctx, p, arg.Right)
			case *ast.OutputAssignment:
				v.checkExpr(ctx, p, arg.Right)
			default:
				v.checkExpr(ctx, p, param)
			}
		}
	case *ast.BinaryExpr:
		v.checkExpr(ctx, p, e.Lhs)
		v.checkExpr(ctx, p, e.Rhs)
		v.validateStringCompare(ctx, e)
	case *ast.UnaryExpr:
		v.checkExpr(ctx, p, e.Value)
	case *ast.ParenExpression:
		v.checkExpr(ctx, p, e.Inner)
	case *ast.ExpressionList:
		for _, item := range e.Items {
			v.checkExpr(ctx, p, item)
		}
	case *ast.ReferenceExpr:
		v.checkExpr(ctx, p, e.Base)
		v.validateAccess(ctx, e)
	case *ast.RangeStatement:
		v.checkExpr(ctx, p, e.Start)
		v.checkExpr(ctx, p, e.End)
	case *ast.DirectAccess:
		v.validateDirectAccess(ctx, e)
	case *ast.HardwareAccess:
		v.validateHardwareAccess(ctx, e)
	}
}

func (v *Validator) resultType(ctx *Context, n ast.Node) types.Type {
	return types.Resolve(annotate.ResultType(ctx.Annotations.Get(n.ID())))
}

func (v *Validator) variableOf(ctx *Context, expr ast.Expression) (*annotate.Variable, bool) {
	ann := ctx.Annotations.Get(expr.ID())
	variable, ok := ann.(*annotate.Variable)
	return variable, ok
}
