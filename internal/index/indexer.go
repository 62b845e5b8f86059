package index

import (
	"fmt"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/pipeline"
	"github.com/go-stc/stc/internal/types"
	"github.com/go-stc/stc/pkg/ident"
)

// Context is the Indexer pass's pipeline.Pass context: the unit being
// indexed, the Index being built, and the shared Diagnostician.
type Context struct {
	Unit  *ast.CompilationUnit
	Index *Index
	Diags *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Indexer implements pipeline.Pass[*Context], building ctx.Index from
// ctx.Unit in the five steps of spec §4.1: a declaration-collection
// pass that registers names before resolving any reference.
type Indexer struct{}

func NewIndexer() *Indexer { return &Indexer{} }

func (*Indexer) Name() string { return "Indexer" }

func (ix *Indexer) Run(ctx *Context) error {
	idx := ctx.Index

	ix.registerBuiltins(idx)
	ix.registerSkeletons(ctx)
	ix.fillUserTypes(ctx)
	ix.registerPous(ctx)
	ix.fillPouMembers(ctx)
	ix.registerImplementations(ctx)
	ix.walkGlobals(ctx)

	return nil
}

// registerBuiltins installs the elementary-type registration set,
// marked with internal linkage (spec §4.1 step 1, contract: "built-in
// types are indistinguishable from user types except ... marked with
// an internal linkage flag").
func (ix *Indexer) registerBuiltins(idx *Index) {
	for _, t := range types.Builtins() {
		idx.Types.Set(t.Name(), t)
		idx.BuiltinLinkage[ident.Normalize(t.Name())] = true
	}
}

// registerSkeletons is pass A over user TYPE declarations: it creates
// an empty-bodied Type of the right concrete kind for every
// declaration and registers it under its declared name, so pass B can
// resolve forward references between types regardless of declaration
// order.
func (ix *Indexer) registerSkeletons(ctx *Context) {
	idx := ctx.Index
	for _, decl := range ctx.Unit.UserTypes {
		if _, ok := idx.Types.Get(decl.Name); ok {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, decl.Location,
				"type %q is already declared", decl.Name).WithSymbol(decl.Name))
			continue
		}
		idx.Types.Set(decl.Name, skeletonFor(decl.Name, decl.Type))
	}
}

// skeletonFor returns a new, empty-bodied Type matching te's variant,
// ready for fillUserTypes/fillPouMembers to populate in pass B.
func skeletonFor(name string, te ast.TypeExpr) types.Type {
	switch te.(type) {
	case *ast.InlineStruct:
		return types.NewStruct(name)
	case *ast.InlineEnum:
		return types.NewEnum(name, types.DINT)
	case *ast.InlinePointer:
		return types.NewPointer(name, types.VOID, false, true, false)
	case *ast.InlineArray:
		return types.NewArray(name, types.VOID, nil)
	case *ast.InlineSubrange:
		return types.NewSubRange(name, types.VOID)
	case *ast.InlineString:
		return types.NewString(name, false, types.DefaultStringSize)
	case *ast.NamedType:
		return types.NewAlias(name, types.VOID)
	default:
		return types.NewAlias(name, types.VOID)
	}
}

// fillUserTypes is pass B over user TYPE declarations: populates each
// skeleton's inner type references, struct members, enum variants and
// array/subrange/string bounds, synthesizing names for anonymous inner
// types along the way (spec §4.1 step 2).
func (ix *Indexer) fillUserTypes(ctx *Context) {
	for _, decl := range ctx.Unit.UserTypes {
		t, ok := ctx.Index.Types.Get(decl.Name)
		if !ok {
			continue // duplicate, already diagnosed in registerSkeletons
		}
		ix.fillType(ctx, t, decl.Type, decl.Name)
	}
}

// fillType populates t (already registered under containerName) from
// its declaration te. For nested inline TypeExprs it synthesizes a
// `__<container>_<field>` name, registers a skeleton, and recurses.
func (ix *Indexer) fillType(ctx *Context, t types.Type, te ast.TypeExpr, containerName string) {
	idx := ctx.Index
	switch v := t.(type) {
	case *types.Struct:
		st, ok := te.(*ast.InlineStruct)
		if !ok {
			return
		}
		for _, f := range st.Fields {
			memberType := ix.resolveFieldType(ctx, containerName, f.Name, f.Type)
			v.AddMember(f.Name, memberType)
			if f.Initializer != nil {
				idx.NewSlot(memberType, f.Initializer)
			}
		}

	case *types.Enum:
		en, ok := te.(*ast.InlineEnum)
		if !ok {
			return
		}
		if en.Underlying != nil {
			v.Underlying = ix.resolveFieldType(ctx, containerName, "", en.Underlying)
		}
		for i, elem := range en.Elements {
			v.Variants = append(v.Variants, types.EnumVariant{Name: elem.Name})
			variantIdx := i
			if elem.Initializer == nil {
				continue
			}
			// Always register a ConstSlot here, even for a plain integer
			// literal: the slot id is what EnumVariantSlots exposes to a
			// later sibling variant's `<prev> + 1` initializer (spec
			// §4.4.1), and that lookup needs slot.Status to reflect
			// resolution as soon as the evaluator's fixed-point loop
			// resolves it, not only once PendingMaterializations has run.
			id := ctx.Index.NewSlotWithMaterializer(v.Underlying, elem.Initializer, func(val ConstValue) {
				v.Variants[variantIdx].Value = val.Int
				v.Variants[variantIdx].Resolved = true
			})
			ctx.Index.EnumVariantSlots[ident.Normalize(elem.Name)] = id
		}

	case *types.Pointer:
		pt, ok := te.(*ast.InlinePointer)
		if !ok {
			return
		}
		v.Inner = ix.resolveFieldType(ctx, containerName, "", pt.Element)
		v.AutoDeref = pt.Kind == ast.PointerRefTo || pt.Kind == ast.PointerReferenceTo

	case *types.Array:
		at, ok := te.(*ast.InlineArray)
		if !ok {
			return
		}
		v.Inner = ix.resolveFieldType(ctx, containerName, "", at.Element)
		v.Bounds = make([]types.ArrayBound, len(at.Bounds))
		for i, b := range at.Bounds {
			i := i
			ix.registerIntSlot(ctx, types.DINT, b.Lo, func(val ConstValue) { v.Bounds[i].Lo = val.Int })
			ix.registerIntSlot(ctx, types.DINT, b.Hi, func(val ConstValue) { v.Bounds[i].Hi = val.Int })
		}

	case *types.SubRange:
		sr, ok := te.(*ast.InlineSubrange)
		if !ok {
			return
		}
		v.Inner = ix.resolveFieldType(ctx, containerName, "", sr.Element)
		ix.registerIntSlot(ctx, types.DINT, sr.Lo, func(val ConstValue) { v.Lo = val.Int; v.HasBounds = true })
		ix.registerIntSlot(ctx, types.DINT, sr.Hi, func(val ConstValue) { v.Hi = val.Int })

	case *types.String:
		strT, ok := te.(*ast.InlineString)
		if !ok {
			return
		}
		v.WideChar = strT.Wide
		if strT.Size != nil {
			ix.registerIntSlot(ctx, types.DINT, strT.Size, func(val ConstValue) { v.Size = int(val.Int) })
		}

	case *types.Alias:
		named, ok := te.(*ast.NamedType)
		if !ok {
			return
		}
		v.Referenced = ix.resolveNamed(ctx, named.Name)
	}
}

// resolveFieldType returns the types.Type for a field/element position.
// A NamedType reference resolves against the Index directly (falling
// back to VOID when the name isn't registered, per the VOID-fallback
// convention in types/builtins.go); any other TypeExpr variant is
// anonymous, so it gets a synthesized `__<container>_<field>` name,
// a freshly registered skeleton, and a recursive fill.
func (ix *Indexer) resolveFieldType(ctx *Context, container, field string, te ast.TypeExpr) types.Type {
	if te == nil {
		return types.VOID
	}
	if named, ok := te.(*ast.NamedType); ok {
		return ix.resolveNamed(ctx, named.Name)
	}

	name := "__" + container
	if field != "" {
		name += "_" + field
	}
	if existing, ok := ctx.Index.Types.Get(name); ok {
		return existing
	}
	skel := skeletonFor(name, te)
	ctx.Index.Types.Set(name, skel)
	ix.fillType(ctx, skel, te, name)
	return skel
}

func (ix *Indexer) resolveNamed(ctx *Context, name string) types.Type {
	if t, ok := ctx.Index.Types.Get(name); ok {
		return t
	}
	return types.VOID
}

// registerIntSlot evaluates expr immediately if it's a plain integer
// literal; otherwise it registers a ConstSlot with materialize as its
// write-back closure, for the Constant Evaluator to resolve later.
func (ix *Indexer) registerIntSlot(ctx *Context, target types.Type, expr ast.Expression, materialize func(ConstValue)) {
	if expr == nil {
		return
	}
	if lit, ok := expr.(*ast.Literal); ok && lit.Kind == ast.LitInt {
		if v, ok := lit.Value.(int64); ok {
			materialize(ConstValue{Int: v})
			return
		}
	}
	ctx.Index.NewSlotWithMaterializer(target, expr, materialize)
}

// registerPous is pass A over POUs: register the POU itself and, for
// stateful kinds, a skeleton synthetic struct under the POU's own name
// (spec §4.1 step 3).
func (ix *Indexer) registerPous(ctx *Context) {
	idx := ctx.Index
	for _, p := range ctx.Unit.Pous {
		if _, ok := idx.Pous.Get(p.Name); ok {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, p.Range(),
				"POU %q is already declared", p.Name).WithSymbol(p.Name))
			continue
		}
		idx.Pous.Set(p.Name, p)

		if p.Kind.IsStateful() {
			if _, exists := idx.Types.Get(p.Name); exists {
				ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, p.Range(),
					"%q is already declared as a type", p.Name).WithSymbol(p.Name))
				continue
			}
			idx.Types.Set(p.Name, types.NewStruct(p.Name))
		}
	}
}

// blockGroupOrder is the member layout spec §4.1 requires: "Member
// field order ... follows VariableBlock order Input, InOut, Output,
// Local" (the ABI offset used by code generation).
var blockGroupOrder = []ast.VariableBlockKind{
	ast.BlockInput, ast.BlockInOut, ast.BlockOutput, ast.BlockLocal,
}

// fillPouMembers is pass B over stateful POUs: embeds the parent's
// struct as field 0 when the POU extends one, then appends each
// VAR_INPUT/VAR_IN_OUT/VAR_OUTPUT/VAR member in declaration order
// within its group (spec §4.1 step 3, contract on inheritance).
func (ix *Indexer) fillPouMembers(ctx *Context) {
	idx := ctx.Index
	for _, p := range ctx.Unit.Pous {
		if !p.Kind.IsStateful() {
			continue
		}
		st, ok := idx.Types.Get(p.Name)
		structType, isStruct := st.(*types.Struct)
		if !ok || !isStruct {
			continue
		}

		if p.Super != "" {
			parentType := ix.resolveNamed(ctx, p.Super)
			structType.Embedded = p.Super
			structType.AddMember("__"+p.Super, parentType)
		}

		members := idx.MembersOf(p.Name)
		for _, kind := range blockGroupOrder {
			for _, block := range p.VariableBlocks {
				if block.Kind != kind {
					continue
				}
				for _, v := range block.Variables {
					memberType := ix.resolveFieldType(ctx, p.Name, v.Name, v.Type)
					structType.AddMember(v.Name, memberType)

					entry := &VariableEntry{
						QualifiedName: p.Name + "." + v.Name,
						Block:         kind,
						PassMode:      block.PassMode,
						TypeName:      typeExprName(v.Type),
						Type:          memberType,
						IsConstant:    block.Constant,
						FieldIndex:    len(structType.Members) - 1,
						Linkage:       block.Linkage,
						InitializerID: -1,
						Location:      v.Range(),
					}
					if v.Initializer != nil {
						entry.InitializerID = idx.NewSlot(memberType, v.Initializer)
					}
					if !members.SetIfAbsent(v.Name, entry) {
						ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, v.Range(),
							"member %q is already declared in %q", v.Name, p.Name).WithSymbol(p.Name + "." + v.Name))
					}
				}
			}
		}
	}
}

// registerImplementations registers each POU's body under its
// qualified name: plain Name for Programs/Functions/Function
// Blocks/Classes/Interfaces, "Owner.Name" for Methods/Actions (spec
// §4.1 step 3).
func (ix *Indexer) registerImplementations(ctx *Context) {
	idx := ctx.Index
	for _, p := range ctx.Unit.Pous {
		qname := p.QualifiedName()
		if _, exists := idx.Implementations.Get(qname); exists {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, p.Range(),
				"implementation %q is already declared", qname).WithSymbol(qname))
			continue
		}
		idx.Implementations.Set(qname, &Implementation{QualifiedName: qname, Pou: p})
	}
}

// walkGlobals registers every VAR_GLOBAL block's variables, parsing
// each initializer into a constant slot referenced by the entry (spec
// §4.1 step 4-5).
func (ix *Indexer) walkGlobals(ctx *Context) {
	idx := ctx.Index
	for _, block := range ctx.Unit.GlobalVars {
		for _, v := range block.Variables {
			memberType := ix.resolveFieldType(ctx, "GLOBAL", v.Name, v.Type)
			entry := &VariableEntry{
				QualifiedName: v.Name,
				Block:         ast.BlockGlobal,
				TypeName:      typeExprName(v.Type),
				Type:          memberType,
				IsConstant:    block.Constant,
				FieldIndex:    -1,
				Linkage:       block.Linkage,
				InitializerID: -1,
				Location:      v.Range(),
			}
			if v.Initializer != nil {
				entry.InitializerID = idx.NewSlot(memberType, v.Initializer)
			}
			if !idx.Globals.SetIfAbsent(v.Name, entry) {
				ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EDuplicateSymbol, v.Range(),
					"global %q is already declared", v.Name).WithSymbol(v.Name))
			}
		}
	}
}

func typeExprName(te ast.TypeExpr) string {
	if named, ok := te.(*ast.NamedType); ok {
		return named.Name
	}
	return ""
}

var _ pipeline.Pass[*Context] = (*Indexer)(nil)

// DuplicateSymbolMessage returns the `"<name>" is already declared`
// fragment that every duplicate-symbol message of the Indexer contains.
func DuplicateSymbolMessage(name string) string {
	return fmt.Sprintf("%q is already declared", name)
}
