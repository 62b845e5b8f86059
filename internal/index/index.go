// Package index builds the Index: the global symbol table the
// Constant Evaluator, Annotator, Lowerings and Validator all read
// (spec §3, §4.1). The Indexer never resolves a reference — it only
// registers names, a declaration-collection pass split cleanly from
// name resolution.
package index

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/types"
	"github.com/go-stc/stc/pkg/ident"
)

// DeferredReason classifies why a const-expression slot could not be
// resolved by the Constant Evaluator's fixed-point loop. A closed enum
// instead of a free-form reason string, per SPEC_FULL §4.8: address-of
// initializers always get the same fixed reason.
type DeferredReason int

const (
	// DeferredNone means the slot isn't deferred (it's Unresolved or Resolved).
	DeferredNone DeferredReason = iota
	// DeferredAddressOf marks REF(x)/ADR(x)/&x initializers, resolvable
	// only once code generation has assigned memory layout.
	DeferredAddressOf
	// DeferredForwardReference marks a reference to a constant slot
	// that is still unresolved when this slot is visited.
	DeferredForwardReference
	// DeferredUnsupportedOperator marks an operator the constant
	// evaluator doesn't fold (spec §4.2 is total only over
	// constant-foldable operands).
	DeferredUnsupportedOperator
)

func (r DeferredReason) String() string {
	switch r {
	case DeferredAddressOf:
		return "Try to re-resolve during codegen"
	case DeferredForwardReference:
		return "forward reference to an unresolved constant"
	case DeferredUnsupportedOperator:
		return "operator is not constant-foldable"
	default:
		return ""
	}
}

// SlotStatus is the lifecycle state of one ConstSlot (spec §3:
// "unresolved → resolved | unresolvable").
type SlotStatus int

const (
	SlotUnresolved SlotStatus = iota
	SlotResolved
	SlotUnresolvable
)

// ConstValue is the literal a resolved slot folds to: exactly one of
// Int or Real is meaningful, selected by IsReal. Integer constants are
// evaluated in signed 64-bit arithmetic only; a result outside that
// range is reported as an overflow, not widened to 128 bits.
type ConstValue struct {
	IsReal bool
	Real   float64
	// Int is the resolved integer value.
	Int      int64
	Int128Hi int64 // high 64 bits of a 128-bit value; the evaluator never sets it, so it stays 0
}

// ConstSlot is one entry in the Index's constants arena: a constant
// expression awaiting evaluation, plus its resolution state.
type ConstSlot struct {
	ID         int
	TargetType types.Type
	Expr       ast.Expression
	Status     SlotStatus
	Value      ConstValue
	Reason     DeferredReason
}

// VariableEntry describes one declared variable or member after
// indexing: its qualified name, pass-mode/kind, declared type name,
// and (for struct members) ABI field index (spec §3).
type VariableEntry struct {
	QualifiedName string
	Block         ast.VariableBlockKind
	PassMode      ast.PassMode
	TypeName      string
	Type          types.Type // filled once the type reference resolves; nil until then
	IsConstant    bool
	FieldIndex    int // position within its container's synthetic struct, -1 if none
	Linkage       ast.Linkage
	InitializerID int // ConstSlot.ID, or -1 if no initializer
	Location      ast.Range
}

// Implementation is the indexed form of a POU's body: its qualified
// name (Owner.Action/Owner.Method for actions/methods, plain name
// otherwise) plus a pointer back to the parsed Pou.
type Implementation struct {
	QualifiedName string
	Pou           *ast.Pou
}

// Index is the global symbol table the rest of the pipeline reads
// (spec §3). Every ordered-map is backed by pkg/ident.Map so lookups
// are case-insensitive the way IEC 61131-3 identifiers require.
type Index struct {
	Types           *ident.Map[types.Type]
	Pous            *ident.Map[*ast.Pou]
	Implementations *ident.Map[*Implementation]
	Globals         *ident.Map[*VariableEntry]
	// MembersPerContainer maps a container name (a stateful POU) to its
	// ordered member table. Struct types get no entry here; their
	// fields live on the types.Struct itself.
	MembersPerContainer map[string]*ident.Map[*VariableEntry]
	Constants           []*ConstSlot

	// BuiltinLinkage records which type names came from Builtins()
	// registration rather than user TYPE declarations (spec §4.1
	// contract: "built-in types are indistinguishable from user types
	// except ... marked with an internal linkage flag").
	BuiltinLinkage map[string]bool

	// PendingMaterializations holds one write-back closure per ConstSlot
	// id for slots the Indexer registered on behalf of a Type it had
	// already built (an enum variant's value, an array/subrange bound, a
	// sized string's length): the Constant Evaluator invokes the closure
	// once the slot resolves, instead of every construct needing its own
	// side table keyed the same way.
	PendingMaterializations map[int]func(ConstValue)

	// EnumVariantSlots maps a normalized enum-variant name to the
	// ConstSlot id holding its (possibly still-unresolved) value, so the
	// Constant Evaluator can resolve a bare identifier that names a
	// sibling variant (spec §4.1: enum variants are their own entry in
	// the Index) the same way it resolves a CONSTANT global: by looking
	// up the slot and reading its Status, not by waiting for
	// PendingMaterializations to write the value back onto the Enum's
	// own Variants slice, which only happens once the whole fixed point
	// has settled.
	EnumVariantSlots map[string]int
}

// New creates an empty Index with every table initialized.
func New() *Index {
	return &Index{
		Types:                   ident.NewMap[types.Type](),
		Pous:                    ident.NewMap[*ast.Pou](),
		Implementations:         ident.NewMap[*Implementation](),
		Globals:                 ident.NewMap[*VariableEntry](),
		MembersPerContainer:     make(map[string]*ident.Map[*VariableEntry]),
		BuiltinLinkage:          make(map[string]bool),
		PendingMaterializations: make(map[int]func(ConstValue)),
		EnumVariantSlots:        make(map[string]int),
	}
}

// NewSlotWithMaterializer is like NewSlot but also registers the
// write-back closure invoked once the slot resolves.
func (idx *Index) NewSlotWithMaterializer(targetType types.Type, expr ast.Expression, materialize func(ConstValue)) int {
	id := idx.NewSlot(targetType, expr)
	idx.PendingMaterializations[id] = materialize
	return id
}

// MembersOf returns the member table for a container, creating it
// (empty) on first access.
func (idx *Index) MembersOf(container string) *ident.Map[*VariableEntry] {
	key := ident.Normalize(container)
	if m, ok := idx.MembersPerContainer[key]; ok {
		return m
	}
	m := ident.NewMap[*VariableEntry]()
	idx.MembersPerContainer[key] = m
	return m
}

// NewSlot appends an unresolved ConstSlot and returns its id.
func (idx *Index) NewSlot(targetType types.Type, expr ast.Expression) int {
	id := len(idx.Constants)
	idx.Constants = append(idx.Constants, &ConstSlot{ID: id, TargetType: targetType, Expr: expr})
	return id
}

// Slot returns the slot with the given id, or nil if out of range.
func (idx *Index) Slot(id int) *ConstSlot {
	if id < 0 || id >= len(idx.Constants) {
		return nil
	}
	return idx.Constants[id]
}
