// Package preprocess implements the pre-processor lowering (spec
// §4.4.1): an AST-to-AST rewrite that runs before the Indexer so every
// later phase sees a fully explicit tree, covering two responsibilities
// that have no equivalent already covered by the Indexer's lazy
// inline-type synthesis (internal/index/indexer.go's
// resolveFieldType already hoists anonymous VAR/struct-field type
// expressions on demand, so this lowering only needs to handle what
// that mechanism doesn't reach): implicit enum-variant initializers
// and implicit function return types.
package preprocess

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
)

// Context is the pre-processor's pipeline.Pass context.
type Context struct {
	Unit  *ast.CompilationUnit
	Ids   *ast.IdProvider
	Diags *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Lowering implements pipeline.Pass[*Context].
type Lowering struct{}

func NewLowering() *Lowering { return &Lowering{} }

func (*Lowering) Name() string { return "Preprocess" }

func (l *Lowering) Run(ctx *Context) error {
	l.normalizeEnumInitializers(ctx)
	l.liftImplicitReturnTypes(ctx)
	return nil
}

// normalizeEnumInitializers rewrites every top-level enum declaration
// so each variant carries an explicit Initializer: an element written
// with no `:= expr` becomes `prev + 1` (or `0` for the first element),
// mirroring pre_processor.rs's `build_enum_initializer` chain. Running
// this before indexing means the Indexer/Constant Evaluator never
// need a separate "implicit enum value" special case — every variant
// looks like it had an explicit initializer all along.
func (l *Lowering) normalizeEnumInitializers(ctx *Context) {
	for _, decl := range ctx.Unit.UserTypes {
		en, ok := decl.Type.(*ast.InlineEnum)
		if !ok || en.Absent {
			continue
		}
		l.normalizeEnum(ctx, en)
	}
}

func (l *Lowering) normalizeEnum(ctx *Context, en *ast.InlineEnum) {
	var lastName string
	for i := range en.Elements {
		elem := &en.Elements[i]
		if elem.Initializer == nil {
			elem.Initializer = l.buildEnumInitializer(ctx, lastName, elem.Location)
		}
		lastName = elem.Name
	}
}

// buildEnumInitializer returns `0` for the first element (lastName
// == "") or `lastName + 1` otherwise.
func (l *Lowering) buildEnumInitializer(ctx *Context, lastName string, loc ast.Range) ast.Expression {
	if lastName == "" {
		return ast.NewLiteral(ctx.Ids.Next(), loc, ast.LitInt, int64(0))
	}
	ref := ast.NewIdentifier(ctx.Ids.Next(), loc, lastName)
	one := ast.NewLiteral(ctx.Ids.Next(), loc, ast.LitInt, int64(1))
	return ast.NewBinaryExpr(ctx.Ids.Next(), loc, ast.OpAdd, ref, one)
}

// liftImplicitReturnTypes hoists an anonymous inline return-type
// definition (e.g. `FUNCTION f : ARRAY[0..1] OF INT`) into a named
// UserTypeDeclaration the Indexer can register like any other type,
// replacing the Pou's ReturnType with a plain NamedType reference to
// it (spec §4.4.1, original_source's `preprocess_return_type`).
func (l *Lowering) liftImplicitReturnTypes(ctx *Context) {
	for _, p := range ctx.Unit.Pous {
		if p.ReturnType == nil || !ast.IsInlineDefinition(p.ReturnType) {
			continue
		}
		name := "__" + p.Name + "_return"
		loc := p.ReturnType.Range()
		ctx.Unit.UserTypes = append(ctx.Unit.UserTypes, &ast.UserTypeDeclaration{
			Name:     name,
			Type:     p.ReturnType,
			Location: loc,
		})
		p.ReturnType = ast.NewNamedType(ctx.Ids.Next(), loc, name)
	}
}
