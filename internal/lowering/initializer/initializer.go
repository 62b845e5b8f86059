// Package initializer implements the initializer-function lowering
// (spec §4.4.5): every stateful POU (Program/Function Block/Class)
// and every struct type
// gets a synthesized `__init_<name>` Function taking a single
// `self : <name>` VAR_IN_OUT parameter, whose body either assigns each
// member's initializer expression (identifiers naming a sibling member
// rewritten to `self.member`) or, for a member whose own type already
// has an init function, delegates to it with `__init_<type>(self.member)`
// in a fire-and-forget manner — every init function exists
// unconditionally, even with an empty body, so a caller never needs to
// check whether one exists before calling it.
//
// Scoped down from the ADR in two ways, both because code generation
// (the only consumer of what's dropped) is outside this compiler's
// reach: VAR_TEMP/stack-local initialization-on-every-call is not
// lowered here (it only matters once a call actually allocates a
// fresh stack frame to initialize), and the single project-wide
// `__init___<project>` wrapper that would call every global instance's
// init function is not synthesized, since nothing in this AST model
// represents a Program's own global singleton instance for it to call
// with.
package initializer

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/types"
	"github.com/go-stc/stc/pkg/ident"
)

// Context is the initializer lowering's pipeline.Pass context.
type Context struct {
	Unit  *ast.CompilationUnit
	Index *index.Index
	Ids   *ast.IdProvider
	Diags *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Lowering implements pipeline.Pass[*Context].
type Lowering struct{}

func NewLowering() *Lowering { return &Lowering{} }

func (*Lowering) Name() string { return "InitializerLowering" }

func (l *Lowering) Run(ctx *Context) error {
	hasInit := map[string]bool{}
	for _, p := range ctx.Unit.Pous {
		if isInitTarget(p.Kind) {
			hasInit[ident.Normalize(p.Name)] = true
		}
	}
	for _, decl := range ctx.Unit.UserTypes {
		if _, ok := decl.Type.(*ast.InlineStruct); ok {
			hasInit[ident.Normalize(decl.Name)] = true
		}
	}

	var synthesized []*ast.Pou
	for _, p := range ctx.Unit.Pous {
		if !isInitTarget(p.Kind) {
			continue
		}
		synthesized = append(synthesized, l.buildInitFunction(ctx, p.Name, p.VariableBlocks, hasInit))
	}
	for _, decl := range ctx.Unit.UserTypes {
		st, ok := decl.Type.(*ast.InlineStruct)
		if !ok {
			continue
		}
		synthesized = append(synthesized, l.buildInitFunctionForStruct(ctx, decl.Name, st, hasInit))
	}
	ctx.Unit.Pous = append(ctx.Unit.Pous, synthesized...)
	return nil
}

func isInitTarget(kind ast.PouKind) bool {
	return kind == ast.PouProgram || kind == ast.PouFunctionBlock || kind == ast.PouClass
}

// member is one declared member's name/type/initializer, gathered
// from either a VariableEntry (POU members) or a raw StructField
// (struct members, which the Indexer never registers into
// Index.MembersPerContainer since they live purely on the
// types.Struct skeleton).
type member struct {
	name string
	typ  types.Type
	init ast.Expression
	loc  ast.Range
}

func (l *Lowering) buildInitFunction(ctx *Context, containerName string, blocks []*ast.VariableBlock, hasInit map[string]bool) *ast.Pou {
	members := ctx.Index.MembersOf(containerName)
	names := map[string]bool{}
	var infos []member
	for _, block := range blocks {
		if block.Kind != ast.BlockLocal {
			continue
		}
		for _, v := range block.Variables {
			names[ident.Normalize(v.Name)] = true
			entry, ok := members.Get(v.Name)
			if !ok {
				continue
			}
			infos = append(infos, member{name: v.Name, typ: entry.Type, init: v.Initializer, loc: v.Range()})
		}
	}

	init := l.newInitSkeleton(ctx, containerName)
	init.Body = l.statementsFor(ctx, infos, names, hasInit)
	return init
}

func (l *Lowering) buildInitFunctionForStruct(ctx *Context, typeName string, st *ast.InlineStruct, hasInit map[string]bool) *ast.Pou {
	structType, _ := lookupStruct(ctx, typeName)
	names := map[string]bool{}
	var infos []member
	for _, f := range st.Fields {
		names[ident.Normalize(f.Name)] = true
		var fieldType types.Type
		if structType != nil {
			if m, ok := structType.FieldByName(f.Name); ok {
				fieldType = m.Type
			}
		}
		infos = append(infos, member{name: f.Name, typ: fieldType, init: f.Initializer, loc: f.Location})
	}

	init := l.newInitSkeleton(ctx, typeName)
	init.Body = l.statementsFor(ctx, infos, names, hasInit)
	return init
}

func lookupStruct(ctx *Context, name string) (*types.Struct, bool) {
	t, ok := ctx.Index.Types.Get(name)
	if !ok {
		return nil, false
	}
	st, ok := t.(*types.Struct)
	return st, ok
}

// newInitSkeleton builds the common `__init_<name>` POU shape: a
// Function with a single `self : <name>` VAR_IN_OUT parameter and an
// empty body.
func (l *Lowering) newInitSkeleton(ctx *Context, name string) *ast.Pou {
	loc := ast.Range{}
	init := ast.NewPou(ctx.Ids.Next(), loc, "__init_"+name, ast.PouFunction)
	selfVar := ast.NewVariable(ctx.Ids.Next(), loc, "self", ast.NewNamedType(ctx.Ids.Next(), loc, name), nil, nil)
	selfBlock := ast.NewVariableBlock(ctx.Ids.Next(), loc, ast.BlockInOut)
	selfBlock.Variables = []*ast.Variable{selfVar}
	init.VariableBlocks = []*ast.VariableBlock{selfBlock}
	return init
}

func (l *Lowering) statementsFor(ctx *Context, infos []member, siblings map[string]bool, hasInit map[string]bool) []ast.Statement {
	var stmts []ast.Statement
	for _, m := range infos {
		if m.typ != nil && hasInit[ident.Normalize(types.Resolve(m.typ).Name())] {
			call := ast.NewCallStatement(ctx.Ids.Next(), m.loc,
				ast.NewIdentifier(ctx.Ids.Next(), m.loc, "__init_"+types.Resolve(m.typ).Name()),
				[]ast.Expression{l.selfMember(ctx, m.loc, m.name)})
			stmts = append(stmts, call)
			continue
		}
		if m.init == nil {
			continue
		}
		rewritten := l.qualifySelf(ctx, m.init, siblings)
		stmts = append(stmts, ast.NewAssignment(ctx.Ids.Next(), m.loc, l.selfMember(ctx, m.loc, m.name), rewritten))
	}
	return stmts
}

func (l *Lowering) selfMember(ctx *Context, loc ast.Range, name string) ast.Expression {
	self := ast.NewIdentifier(ctx.Ids.Next(), loc, "self")
	return ast.NewReferenceExpr(ctx.Ids.Next(), loc, self, ast.MemberAccess{Name: name})
}

// qualifySelf rewrites every bare identifier in expr that names a
// sibling member into `self.<name>`, mirroring the ADR's `REF(s)` ->
// `REF(self.s)` rewrite. Node shapes the lowering has no opinion on
// (literals, direct/hardware access, casts) are returned unchanged
// since they can't reference a sibling member.
func (l *Lowering) qualifySelf(ctx *Context, expr ast.Expression, siblings map[string]bool) ast.Expression {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		if siblings[ident.Normalize(e.Name)] {
			return l.selfMember(ctx, e.Range(), e.Name)
		}
		return e
	case *ast.ReferenceExpr:
		return ast.NewReferenceExpr(ctx.Ids.Next(), e.Range(), l.qualifySelf(ctx, e.Base, siblings), e.Access)
	case *ast.BinaryExpr:
		return ast.NewBinaryExpr(ctx.Ids.Next(), e.Range(), e.Op, l.qualifySelf(ctx, e.Lhs, siblings), l.qualifySelf(ctx, e.Rhs, siblings))
	case *ast.UnaryExpr:
		return ast.NewUnaryExpr(ctx.Ids.Next(), e.Range(), e.Op, l.qualifySelf(ctx, e.Value, siblings))
	case *ast.ParenExpression:
		return ast.NewParenExpression(ctx.Ids.Next(), e.Range(), l.qualifySelf(ctx, e.Inner, siblings))
	case *ast.CallStatement:
		params := make([]ast.Expression, len(e.Parameters))
		for i, p := range e.Parameters {
			params[i] = l.qualifySelf(ctx, p, siblings)
		}
		return ast.NewCallStatement(ctx.Ids.Next(), e.Range(), l.qualifySelf(ctx, e.Operator, siblings), params)
	default:
		return expr
	}
}
