package annotate

import (
	"fmt"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/types"
	"github.com/go-stc/stc/pkg/ident"
)

// StringLiteral is one utf-8/utf-16 string constant discovered inside
// an implementation body, recorded so code generation can emit it as
// a global constant (spec §4.3.4's AnnotationMap field).
type StringLiteral struct {
	Node  ast.NodeID
	Value string
	Wide  bool
	Type  types.Type
}

// AnnotationMap is the Annotator's output: a per-node Annotation plus
// the per-node expected-type hint, the table of types synthesized
// during annotation (sized strings, pointer types), and the string
// literal registry (spec §3's AnnotationMap contract).
type AnnotationMap struct {
	nodes map[ast.NodeID]Annotation
	hints map[ast.NodeID]Annotation

	// SynthesizedTypes is spec §3's "new_index": types that don't exist
	// until the annotator needs them, keyed by their synthesized name
	// (__STRING_n, __WSTRING_n, POINTER_TO_T), memoized so two
	// references to the same shape share one Type.
	SynthesizedTypes *ident.Map[types.Type]

	StringLiterals []StringLiteral
}

// New creates an empty AnnotationMap.
func New() *AnnotationMap {
	return &AnnotationMap{
		nodes:            make(map[ast.NodeID]Annotation),
		hints:            make(map[ast.NodeID]Annotation),
		SynthesizedTypes: ident.NewMap[types.Type](),
	}
}

// Set records n's resulting annotation.
func (m *AnnotationMap) Set(n ast.NodeID, ann Annotation) {
	m.nodes[n] = ann
}

// Get returns n's resulting annotation, or nil if unannotated.
func (m *AnnotationMap) Get(n ast.NodeID) Annotation {
	return m.nodes[n]
}

// Range calls fn for every annotated node, in unspecified order. A
// dump that wants a stable order (internal/ir/dump) sorts the result
// itself rather than relying on map iteration order here.
func (m *AnnotationMap) Range(fn func(n ast.NodeID, ann Annotation) bool) {
	for n, ann := range m.nodes {
		if !fn(n, ann) {
			return
		}
	}
}

// SetHint records the type-hint (expected type from context) for n.
func (m *AnnotationMap) SetHint(n ast.NodeID, ann Annotation) {
	m.hints[n] = ann
}

// Hint returns n's recorded type-hint, or nil if none was recorded.
func (m *AnnotationMap) Hint(n ast.NodeID) Annotation {
	return m.hints[n]
}

// InternPointer returns the (memoized) POINTER TO inner type, creating
// and registering it in SynthesizedTypes on first use (spec §4.3.2's
// ReferenceExpr(Address, base) rule).
func (m *AnnotationMap) InternPointer(inner types.Type) types.Type {
	name := "POINTER_TO_" + inner.Name()
	if t, ok := m.SynthesizedTypes.Get(name); ok {
		return t
	}
	t := types.NewPointer(name, inner, false, true, false)
	m.SynthesizedTypes.Set(name, t)
	return t
}

// InternString returns the (memoized) sized string type for a literal
// of the given length, creating and registering it in
// SynthesizedTypes on first use (spec §4.3.2's literal-typing rule for
// strings: "a freshly sized __STRING_n / __WSTRING_n").
func (m *AnnotationMap) InternString(size int, wide bool) types.Type {
	prefix := "__STRING_"
	if wide {
		prefix = "__WSTRING_"
	}
	name := fmt.Sprintf("%s%d", prefix, size)
	if t, ok := m.SynthesizedTypes.Get(name); ok {
		return t
	}
	t := types.NewString(name, wide, size)
	m.SynthesizedTypes.Set(name, t)
	return t
}

// RecordStringLiteral appends value to the string-literal registry,
// for code generation to later emit as a global constant.
func (m *AnnotationMap) RecordStringLiteral(node ast.NodeID, value string, wide bool, t types.Type) {
	m.StringLiterals = append(m.StringLiterals, StringLiteral{Node: node, Value: value, Wide: wide, Type: t})
}
