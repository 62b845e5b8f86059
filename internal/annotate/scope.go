package annotate

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/types"
)

// FrameKind is one of spec §4.3.1's composable scope kinds.
type FrameKind int

const (
	FrameLocalVariable FrameKind = iota
	FrameCallable
	FrameGlobalVariable
	FramePOU
	FrameType
	FrameComposite
)

// Frame is one entry of the scope stack. Container names the
// POU/struct/method-qualifier the frame searches (unused by
// GlobalVariable/Type). Strict frames don't fall through to the rest
// of the stack when the name isn't found in them — spec §4.3.1:
// "A stack frame is either Hierarchical (fall-through to parent) or
// Strict (no fall-through)". Composite frames search their Members in
// order as if they were a single frame (spec §4.3.2's
// "LocalVariable(T) + Callable(T)" member-access scope switch).
type Frame struct {
	Kind      FrameKind
	Container string
	Strict    bool
	Members   []Frame
}

// defaultBodyScope is spec §4.3.1's default body scope: "[LocalVariable(container),
// Callable(Some(container)), GlobalVariable, Callable(None), POU]".
func defaultBodyScope(container string) []Frame {
	return []Frame{
		{Kind: FrameLocalVariable, Container: container},
		{Kind: FrameCallable, Container: container},
		{Kind: FrameGlobalVariable},
		{Kind: FrameCallable},
		{Kind: FramePOU},
	}
}

// memberScope is the strict composite scope spec §4.3.2 switches to
// while resolving a.b: "switch scope to LocalVariable(T) + Callable(T)
// and resolve m".
func memberScope(containerType string) Frame {
	return Frame{
		Kind: FrameComposite,
		Members: []Frame{
			{Kind: FrameLocalVariable, Container: containerType},
			{Kind: FrameCallable, Container: containerType},
		},
		Strict: true,
	}
}

// resolve walks stack front-to-back, returning the first match. A
// Strict frame that doesn't resolve the name stops the search rather
// than falling through to the remaining frames.
func resolve(idx *index.Index, stack []Frame, name string) (Annotation, bool) {
	for _, f := range stack {
		if ann, ok := resolveInFrame(idx, f, name); ok {
			return ann, true
		}
		if f.Strict {
			break
		}
	}
	return nil, false
}

func resolveInFrame(idx *index.Index, f Frame, name string) (Annotation, bool) {
	switch f.Kind {
	case FrameLocalVariable:
		members := idx.MembersOf(f.Container)
		if entry, ok := members.Get(name); ok {
			return variableAnnotation(entry), true
		}
		return nil, false

	case FrameCallable:
		qname := name
		if f.Container != "" {
			qname = f.Container + "." + name
		}
		if impl, ok := idx.Implementations.Get(qname); ok {
			return callableAnnotation(idx, impl), true
		}
		return nil, false

	case FrameGlobalVariable:
		if entry, ok := idx.Globals.Get(name); ok {
			return variableAnnotation(entry), true
		}
		return nil, false

	case FramePOU:
		p, ok := idx.Pous.Get(name)
		if !ok {
			return nil, false
		}
		if p.Kind == ast.PouProgram {
			return &Program{QualifiedName: p.Name}, true
		}
		if t, ok := idx.Types.Get(name); ok {
			return &TypeAnnotation{Type: t}, true
		}
		return &Program{QualifiedName: p.Name}, true

	case FrameType:
		if t, ok := idx.Types.Get(name); ok {
			return &TypeAnnotation{Type: t}, true
		}
		return nil, false

	case FrameComposite:
		for _, m := range f.Members {
			if ann, ok := resolveInFrame(idx, m, name); ok {
				return ann, true
			}
		}
		return nil, false

	default:
		return nil, false
	}
}

func variableAnnotation(entry *index.VariableEntry) Annotation {
	return &Variable{
		QualifiedName: entry.QualifiedName,
		Type:          entry.Type,
		Constant:      entry.IsConstant,
		ArgumentType:  entry.PassMode,
		AutoDeref:     isAutoDerefType(entry.Type),
	}
}

func callableAnnotation(idx *index.Index, impl *index.Implementation) Annotation {
	p := impl.Pou
	var ret types.Type = types.VOID
	if named, ok := p.ReturnType.(*ast.NamedType); ok {
		if t, ok := idx.Types.Get(named.Name); ok {
			ret = t
		}
	}
	return &Function{QualifiedName: impl.QualifiedName, ReturnType: ret, CallName: impl.QualifiedName, Container: p.Name}
}

func isAutoDerefType(t types.Type) bool {
	p, ok := types.Resolve(t).(*types.Pointer)
	return ok && p.AutoDeref
}
