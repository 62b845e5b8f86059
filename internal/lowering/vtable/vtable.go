// Package vtable implements the virtual-table synthesis lowering:
// every stateful POU (Function Block, Program, Class) gets a
// `__vtable_<POU>` struct type describing its dispatch table, a
// `__vtable` member of pointer type `__<POU>___vtable` added to its
// own instance layout,
// and (spec §4.4.3) a `__vtable_<POU>_instance` global holding the
// table's concrete values for codegen to populate. A derived POU's
// table walks its Super chain parent-first, keeping every inherited
// slot's position and substituting an override into that same
// position rather than appending a duplicate slot. The function-
// pointer typing a real code generator would give each table slot is
// outside this semantic core's scope (spec's Non-goals exclude code
// generation), so every slot here is typed as a plain pointer to the
// owning POU instead of a distinct per-method function-pointer type.
package vtable

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
)

// Context is the vtable lowering's pipeline.Pass context.
type Context struct {
	Unit  *ast.CompilationUnit
	Ids   *ast.IdProvider
	Diags *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Lowering implements pipeline.Pass[*Context].
type Lowering struct{}

func NewLowering() *Lowering { return &Lowering{} }

func (*Lowering) Name() string { return "VTableLowering" }

func (l *Lowering) Run(ctx *Context) error {
	pouByName := map[string]*ast.Pou{}
	methodsByOwner := map[string][]string{}
	for _, p := range ctx.Unit.Pous {
		if p.Kind == ast.PouMethod || p.Kind == ast.PouAction {
			methodsByOwner[p.Parent] = append(methodsByOwner[p.Parent], p.Name)
			continue
		}
		pouByName[p.Name] = p
	}

	for _, p := range ctx.Unit.Pous {
		if p.Kind == ast.PouMethod || p.Kind == ast.PouAction || !p.Kind.IsStateful() {
			continue
		}
		slotNames := inheritedSlotNames(p, pouByName, methodsByOwner)
		l.synthesizeVTable(ctx, p, slotNames)
	}
	return nil
}

// inheritedSlotNames returns p's vtable's full, ordered slot-name
// list: its Super chain's own slot list (parent-first, walked all the
// way to the root) as a prefix, with each method p declares itself
// either substituted into the same index as an identically-named
// parent slot (an override) or appended as a new slot (spec §4.4.3's
// algorithm; the "Vtable monotonicity" property requires a child's
// table to agree with its parent's on every inherited slot's
// position).
func inheritedSlotNames(p *ast.Pou, pouByName map[string]*ast.Pou, methodsByOwner map[string][]string) []string {
	var names []string
	if parent, ok := pouByName[p.Super]; ok && p.Super != "" {
		names = inheritedSlotNames(parent, pouByName, methodsByOwner)
	} else {
		names = []string{"__body"}
	}

	seen := make(map[string]int, len(names))
	for i, n := range names {
		seen[n] = i
	}
	for _, m := range methodsByOwner[p.Name] {
		if i, ok := seen[m]; ok {
			names[i] = m
			continue
		}
		names = append(names, m)
		seen[m] = len(names) - 1
	}
	return names
}

// synthesizeVTable builds the pointer-to-POU member type, the
// `__vtable_<POU>` struct carrying one slot per name in slotNames (the
// leading `__body` slot for a direct call on the instance itself, plus
// one per inherited-or-declared method), the `__<POU>___vtable`
// pointer-to-table type, the `__vtable` member prepended to p's own
// layout, and the `__vtable_<POU>_instance` global the runtime table
// lives in.
func (l *Lowering) synthesizeVTable(ctx *Context, p *ast.Pou, slotNames []string) {
	loc := p.Range()

	slotPtrName := "__" + p.Name + "___vtable_ptr"
	slotPtrType := ast.NewInlinePointer(ctx.Ids.Next(), loc, ast.PointerRaw, ast.NewNamedType(ctx.Ids.Next(), loc, p.Name))
	ctx.Unit.UserTypes = append(ctx.Unit.UserTypes, &ast.UserTypeDeclaration{Name: slotPtrName, Type: slotPtrType, Location: loc})

	fields := make([]ast.StructField, len(slotNames))
	for i, name := range slotNames {
		fields[i] = ast.StructField{Name: name, Type: ast.NewNamedType(ctx.Ids.Next(), loc, slotPtrName), Location: loc}
	}
	vtableName := "__vtable_" + p.Name
	vtableType := ast.NewInlineStruct(ctx.Ids.Next(), loc, fields)
	ctx.Unit.UserTypes = append(ctx.Unit.UserTypes, &ast.UserTypeDeclaration{Name: vtableName, Type: vtableType, Location: loc})

	vtablePtrName := "__" + p.Name + "___vtable"
	vtablePtrType := ast.NewInlinePointer(ctx.Ids.Next(), loc, ast.PointerRaw, ast.NewNamedType(ctx.Ids.Next(), loc, vtableName))
	ctx.Unit.UserTypes = append(ctx.Unit.UserTypes, &ast.UserTypeDeclaration{Name: vtablePtrName, Type: vtablePtrType, Location: loc})

	vtableMember := ast.NewVariable(ctx.Ids.Next(), loc, "__vtable", ast.NewNamedType(ctx.Ids.Next(), loc, vtablePtrName), nil, nil)
	memberBlock := ast.NewVariableBlock(ctx.Ids.Next(), loc, ast.BlockLocal)
	memberBlock.Variables = []*ast.Variable{vtableMember}
	p.VariableBlocks = append([]*ast.VariableBlock{memberBlock}, p.VariableBlocks...)

	instance := ast.NewVariable(ctx.Ids.Next(), loc, "__vtable_"+p.Name+"_instance", ast.NewNamedType(ctx.Ids.Next(), loc, vtableName), nil, nil)
	instanceBlock := ast.NewVariableBlock(ctx.Ids.Next(), loc, ast.BlockGlobal)
	instanceBlock.Variables = []*ast.Variable{instance}
	ctx.Unit.GlobalVars = append(ctx.Unit.GlobalVars, instanceBlock)
}
