// Package retain implements the retain-variable lowering (spec
// §4.4.2): a PROGRAM's `VAR RETAIN` members are singletons (a Program
// has exactly one
// implicit instance), so they're globalized into their own
// `__<program>_<var>` global variable and the original declaration is
// left in place only as an Address-aliased placeholder for codegen to
// resolve through. A Function Block's or Class's retain members stay
// exactly where they are, since those POUs are instantiable — their
// retain storage lives in the instance, not behind one shared global.
package retain

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
)

// Context is the retain lowering's pipeline.Pass context.
type Context struct {
	Unit  *ast.CompilationUnit
	Ids   *ast.IdProvider
	Diags *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Lowering implements pipeline.Pass[*Context].
type Lowering struct{}

func NewLowering() *Lowering { return &Lowering{} }

func (*Lowering) Name() string { return "RetainLowering" }

func (l *Lowering) Run(ctx *Context) error {
	var globalized []*ast.Variable
	for _, p := range ctx.Unit.Pous {
		if p.Kind != ast.PouProgram {
			continue
		}
		for _, block := range p.VariableBlocks {
			if !block.Retain {
				continue
			}
			for _, v := range block.Variables {
				globalized = append(globalized, l.globalize(ctx, p.Name, v))
			}
		}
	}
	if len(globalized) == 0 {
		return nil
	}

	for _, block := range ctx.Unit.GlobalVars {
		if block.Retain {
			block.Variables = append(block.Variables, globalized...)
			return nil
		}
	}
	retainBlock := ast.NewVariableBlock(ctx.Ids.Next(), ast.Range{}, ast.BlockGlobal)
	retainBlock.Retain = true
	retainBlock.Variables = globalized
	ctx.Unit.GlobalVars = append(ctx.Unit.GlobalVars, retainBlock)
	return nil
}

// globalize builds the `__<program>_<var>` global counterpart of v,
// moving its initializer across and leaving v's own Address pointing
// back at the new global name so later phases resolve through it
// instead of allocating storage for v itself.
func (l *Lowering) globalize(ctx *Context, programName string, v *ast.Variable) *ast.Variable {
	newName := "__" + programName + "_" + v.Name
	global := ast.NewVariable(ctx.Ids.Next(), v.Range(), newName, v.Type, v.Initializer, nil)
	v.Initializer = nil
	v.Address = ast.NewIdentifier(ctx.Ids.Next(), v.Range(), newName)
	return global
}
