package annotate

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/pipeline"
	"github.com/go-stc/stc/internal/types"
	"github.com/go-stc/stc/pkg/ident"
)

// Context is the Annotator's pipeline.Pass context.
type Context struct {
	Unit        *ast.CompilationUnit
	Index       *index.Index
	Annotations *AnnotationMap
	Diags       *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Annotator implements pipeline.Pass[*Context], attaching an
// Annotation to every AST node reachable from a POU implementation
// body (spec §4.3).
type Annotator struct{}

func NewAnnotator() *Annotator { return &Annotator{} }

func (*Annotator) Name() string { return "Annotator" }

func (a *Annotator) Run(ctx *Context) error {
	for _, p := range ctx.Unit.Pous {
		container := p.Name
		stack := defaultBodyScope(container)
		a.visitInitializers(ctx, stack, ctx.Index.MembersOf(container), p.VariableBlocks)
		for _, stmt := range p.Body {
			a.visitStatement(ctx, stack, stmt)
		}
	}

	globalStack := []Frame{{Kind: FrameGlobalVariable}, {Kind: FrameCallable}, {Kind: FramePOU}}
	for _, block := range ctx.Unit.GlobalVars {
		a.visitInitializers(ctx, globalStack, ctx.Index.Globals, []*ast.VariableBlock{block})
	}
	return nil
}

// visitInitializers implements spec §4.3.3's initializer sub-visitor:
// every declared variable's initializer expression is annotated
// against the declaring scope, with the variable's own resolved type
// recorded as the expected type hint (array/struct literal elements
// are plain ExpressionLists, so the generic expression visitor
// already walks into them).
func (a *Annotator) visitInitializers(ctx *Context, stack []Frame, members *ident.Map[*index.VariableEntry], blocks []*ast.VariableBlock) {
	for _, block := range blocks {
		for _, v := range block.Variables {
			if v.Initializer == nil {
				continue
			}
			entry, ok := members.Get(v.Name)
			if !ok {
				a.visitExpr(ctx, stack, v.Initializer)
				continue
			}
			ctx.Annotations.SetHint(v.Initializer.ID(), &Value{Type: entry.Type})
			a.visitExpr(ctx, stack, v.Initializer)
		}
	}
}

func (a *Annotator) visitStatement(ctx *Context, stack []Frame, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		a.visitAssignment(ctx, stack, s)

	case *ast.CallStatement:
		a.visitCall(ctx, stack, s)

	case *ast.ExpressionStatement:
		a.visitExpr(ctx, stack, s.Expr)

	case *ast.If:
		for _, br := range s.Branches {
			a.visitExpr(ctx, stack, br.Condition)
			a.visitStatements(ctx, stack, br.Body)
		}
		a.visitStatements(ctx, stack, s.Else)

	case *ast.Case:
		a.visitExpr(ctx, stack, s.Selector)
		for _, label := range s.Labels {
			for _, v := range label.Values {
				a.visitExpr(ctx, stack, v)
			}
			a.visitStatements(ctx, stack, label.Body)
		}
		a.visitStatements(ctx, stack, s.Else)

	case *ast.For:
		a.visitExpr(ctx, stack, s.Counter)
		a.visitExpr(ctx, stack, s.Start)
		a.visitExpr(ctx, stack, s.End)
		if s.Step != nil {
			a.visitExpr(ctx, stack, s.Step)
		}
		a.visitStatements(ctx, stack, s.Body)

	case *ast.While:
		a.visitExpr(ctx, stack, s.Condition)
		a.visitStatements(ctx, stack, s.Body)

	case *ast.Repeat:
		a.visitStatements(ctx, stack, s.Body)
		a.visitExpr(ctx, stack, s.Condition)

	case *ast.ExitStatement, *ast.ContinueStatement, *ast.ReturnStatement, *ast.EmptyStatement:
		// No expressions to annotate.
	}
}

func (a *Annotator) visitStatements(ctx *Context, stack []Frame, stmts []ast.Statement) {
	for _, s := range stmts {
		a.visitStatement(ctx, stack, s)
	}
}

func (a *Annotator) visitAssignment(ctx *Context, stack []Frame, assign *ast.Assignment) {
	leftAnn := a.visitExpr(ctx, stack, assign.Left)
	ctx.Annotations.SetHint(assign.Right.ID(), leftAnn)
	a.visitExpr(ctx, stack, assign.Right)
}

// visitExpr annotates expr (and everything it contains) and returns
// its resulting Annotation.
func (a *Annotator) visitExpr(ctx *Context, stack []Frame, expr ast.Expression) Annotation {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *ast.Literal:
		return a.visitLiteral(ctx, e)

	case *ast.Identifier:
		return a.visitIdentifier(ctx, stack, e)

	case *ast.ReferenceExpr:
		return a.visitReference(ctx, stack, e)

	case *ast.BinaryExpr:
		return a.visitBinary(ctx, stack, e)

	case *ast.UnaryExpr:
		return a.visitUnary(ctx, stack, e)

	case *ast.ParenExpression:
		inner := a.visitExpr(ctx, stack, e.Inner)
		ctx.Annotations.Set(e.ID(), inner)
		return inner

	case *ast.ExpressionList:
		var last Annotation
		for _, item := range e.Items {
			last = a.visitExpr(ctx, stack, item)
		}
		ann := &Value{Type: ResultType(last)}
		ctx.Annotations.Set(e.ID(), ann)
		return ann

	case *ast.Assignment:
		a.visitAssignment(ctx, stack, e)
		return ctx.Annotations.Get(e.ID())

	case *ast.OutputAssignment:
		a.visitExpr(ctx, stack, e.Left)
		a.visitExpr(ctx, stack, e.Right)
		return nil

	case *ast.CallStatement:
		return a.visitCall(ctx, stack, e)

	case *ast.RangeStatement:
		a.visitExpr(ctx, stack, e.Start)
		a.visitExpr(ctx, stack, e.End)
		return nil

	case *ast.DirectAccess:
		a.visitExpr(ctx, stack, e.Index)
		ann := &Value{Type: directAccessType(e.Kind)}
		ctx.Annotations.Set(e.ID(), ann)
		return ann

	case *ast.HardwareAccess:
		ann := &Value{Type: directAccessType(e.Size)}
		ctx.Annotations.Set(e.ID(), ann)
		return ann

	default:
		return nil
	}
}

func (a *Annotator) visitLiteral(ctx *Context, lit *ast.Literal) Annotation {
	t := a.literalType(ctx, lit)
	ann := &Value{Type: t}
	ctx.Annotations.Set(lit.ID(), ann)
	return ann
}

func (a *Annotator) literalType(ctx *Context, lit *ast.Literal) types.Type {
	switch lit.Kind {
	case ast.LitInt:
		if v, ok := lit.Value.(int64); ok && !types.FitsSignedDINT(v) {
			return types.LINT
		}
		return types.DINT
	case ast.LitReal:
		return types.REAL
	case ast.LitBool:
		return types.BOOL
	case ast.LitChar:
		return types.CHAR
	case ast.LitWChar:
		return types.WCHAR
	case ast.LitString, ast.LitWString:
		wide := lit.Kind == ast.LitWString
		s, _ := lit.Value.(string)
		t := ctx.Annotations.InternString(len(s), wide)
		ctx.Annotations.RecordStringLiteral(lit.ID(), s, wide, t)
		return t
	case ast.LitDate:
		return types.DATE
	case ast.LitTimeOfDay:
		return types.TIME_OF_DAY
	case ast.LitDateAndTime:
		return types.DATE_AND_TIME
	case ast.LitTime:
		return types.TIME
	default:
		return types.VOID
	}
}

func (a *Annotator) visitIdentifier(ctx *Context, stack []Frame, id *ast.Identifier) Annotation {
	ann, ok := resolve(ctx.Index, stack, id.Name)
	if !ok {
		return nil
	}
	ctx.Annotations.Set(id.ID(), ann)
	return ann
}

func (a *Annotator) visitBinary(ctx *Context, stack []Frame, b *ast.BinaryExpr) Annotation {
	lhs := a.visitExpr(ctx, stack, b.Lhs)
	rhs := a.visitExpr(ctx, stack, b.Rhs)
	t := binaryResultType(b.Op, ResultType(lhs), ResultType(rhs))
	ann := &Value{Type: t}
	ctx.Annotations.Set(b.ID(), ann)
	return ann
}

func (a *Annotator) visitUnary(ctx *Context, stack []Frame, u *ast.UnaryExpr) Annotation {
	operand := a.visitExpr(ctx, stack, u.Value)
	t := unaryResultType(u.Op, ResultType(operand))
	ann := &Value{Type: t}
	ctx.Annotations.Set(u.ID(), ann)
	return ann
}

// visitReference implements spec §4.3.2's ReferenceExpr rules, one
// per Access variant.
func (a *Annotator) visitReference(ctx *Context, stack []Frame, ref *ast.ReferenceExpr) Annotation {
	baseAnn := a.visitExpr(ctx, stack, ref.Base)
	baseType := types.Resolve(ResultType(baseAnn))

	switch acc := ref.Access.(type) {
	case ast.MemberAccess:
		return a.visitMemberAccess(ctx, stack, ref, baseType, acc.Name)

	case ast.IndexAccess:
		a.visitExpr(ctx, stack, acc.Index)
		arr, ok := baseType.(*types.Array)
		if !ok {
			return nil
		}
		ann := &Value{Type: arr.Inner}
		ctx.Annotations.Set(ref.ID(), ann)
		return ann

	case ast.DerefAccess:
		ptr, ok := baseType.(*types.Pointer)
		if !ok || ptr.AutoDeref {
			return nil
		}
		ann := &Value{Type: ptr.Inner}
		ctx.Annotations.Set(ref.ID(), ann)
		return ann

	case ast.AddressAccess:
		inner := ResultType(baseAnn)
		ptrType := ctx.Annotations.InternPointer(inner)
		ann := &Value{Type: ptrType}
		ctx.Annotations.Set(ref.ID(), ann)
		return ann

	case ast.CastAccess:
		target := resolveTypeExpr(ctx.Index, acc.Target)
		ann := &Value{Type: target}
		ctx.Annotations.Set(ref.ID(), ann)
		return ann

	default:
		return nil
	}
}

func (a *Annotator) visitMemberAccess(ctx *Context, stack []Frame, ref *ast.ReferenceExpr, baseType types.Type, name string) Annotation {
	if enum, ok := baseType.(*types.Enum); ok {
		if _, found := enum.VariantByName(name); found {
			ann := &Value{Type: enum}
			ctx.Annotations.Set(ref.ID(), ann)
			return ann
		}
		return nil
	}

	if ptr, ok := baseType.(*types.Pointer); ok && ptr.AutoDeref {
		baseType = types.Resolve(ptr.Inner)
	}

	containerName := baseType.Name()
	memberStack := []Frame{memberScope(containerName)}
	ann, ok := resolve(ctx.Index, memberStack, name)
	if !ok {
		return nil
	}
	ctx.Annotations.Set(ref.ID(), ann)
	return ann
}

// visitCall implements spec §4.3.2's Call rule: resolve the operator,
// annotate the call with the callee's return type, then visit every
// parameter, pairing positional arguments and resolving explicit
// `left := right` / `left => right` arguments against the callee's
// local scope for left and the caller's scope for right.
func (a *Annotator) visitCall(ctx *Context, stack []Frame, call *ast.CallStatement) Annotation {
	if handled, ann := a.visitBuiltinCall(ctx, stack, call); handled {
		return ann
	}

	calleeAnn := a.visitExpr(ctx, stack, call.Operator)
	fn, _ := calleeAnn.(*Function)

	var ret types.Type = types.VOID
	calleeContainer := ""
	if fn != nil {
		ret = fn.ReturnType
		calleeContainer = fn.Container
	}
	ann := &Value{Type: ret}
	ctx.Annotations.Set(call.ID(), ann)

	calleeScope := defaultBodyScope(calleeContainer)
	for _, p := range call.Parameters {
		switch arg := p.(type) {
		case *ast.Assignment:
			if id, ok := arg.Left.(*ast.Identifier); ok {
				a.visitIdentifier(ctx, calleeScope, id)
			} else {
				a.visitExpr(ctx, calleeScope, arg.Left)
			}
			a.visitExpr(ctx, stack, arg.Right)
		case *ast.OutputAssignment:
			if id, ok := arg.Left.(*ast.Identifier); ok {
				a.visitIdentifier(ctx, calleeScope, id)
			} else {
				a.visitExpr(ctx, calleeScope, arg.Left)
			}
			a.visitExpr(ctx, stack, arg.Right)
		default:
			a.visitExpr(ctx, stack, p)
		}
	}
	return ann
}

// visitBuiltinCall handles REF(x)/ADR(x), the call-syntax spellings
// of address-of (spec §4.3.2: "For builtin operators (REF, ADR, &,
// MUX, SEL, MOVE, …) call the builtin's replacement hook"). The
// replacement here is the same POINTER_TO_T annotation `&x` gets,
// reached without a separate ReplacementAst node since both spellings
// mean exactly the same thing to every later pass.
func (a *Annotator) visitBuiltinCall(ctx *Context, stack []Frame, call *ast.CallStatement) (bool, Annotation) {
	id, ok := call.Operator.(*ast.Identifier)
	if !ok || len(call.Parameters) != 1 {
		return false, nil
	}
	if id.Name != "REF" && id.Name != "ADR" {
		return false, nil
	}
	operand := a.visitExpr(ctx, stack, call.Parameters[0])
	ptrType := ctx.Annotations.InternPointer(ResultType(operand))
	ann := &Value{Type: ptrType}
	ctx.Annotations.Set(call.ID(), ann)
	return true, ann
}

func resolveTypeExpr(idx *index.Index, te ast.TypeExpr) types.Type {
	named, ok := te.(*ast.NamedType)
	if !ok {
		return types.VOID
	}
	if t, ok := idx.Types.Get(named.Name); ok {
		return t
	}
	return types.VOID
}

func directAccessType(kind ast.DirectAccessKind) types.Type {
	switch kind {
	case ast.DirectBit:
		return types.BOOL
	case ast.DirectByte:
		return types.BYTE
	case ast.DirectWord:
		return types.WORD
	case ast.DirectDWord:
		return types.DWORD
	case ast.DirectLWord:
		return types.LWORD
	default:
		return types.VOID
	}
}

var _ pipeline.Pass[*Context] = (*Annotator)(nil)
