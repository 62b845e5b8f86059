package ast

// TypeExpr is the syntactic form of a type reference or inline
// definition as written in source — NamedType for `x : Foo`,
// and the Inline* variants for anonymous declarations. The
// pre-processor lowering (spec §4.4.1) hoists an inline function
// return type into a named UserTypeDeclaration; the Indexer
// synthesizes a named type for every other inline declaration when it
// resolves it. Every TypeExpr is itself an AST Node so it can carry a
// source range and be looked up in the annotation map (e.g. a cast
// target).
type TypeExpr interface {
	Node
	isTypeExpr()
}

// NamedType references an already (or not-yet) declared type by name,
// e.g. `INT`, `MyStruct`, `POINTER TO MyStruct`'s inner reference.
type NamedType struct {
	base
	Name string
}

func NewNamedType(id NodeID, rng Range, name string) *NamedType {
	return &NamedType{base: newBase(id, rng), Name: name}
}
func (*NamedType) isTypeExpr() {}

// PointerKind distinguishes POINTER TO (raw/type-safe address),
// REF_TO (type-safe, non-auto-deref) and REFERENCE TO (auto-deref).
type PointerKind int

const (
	PointerRaw PointerKind = iota
	PointerRefTo
	PointerReferenceTo
)

// InlinePointer is an inline `POINTER TO T` / `REF_TO T` /
// `REFERENCE TO T` declaration.
type InlinePointer struct {
	base
	Kind    PointerKind
	Element TypeExpr
}

func NewInlinePointer(id NodeID, rng Range, kind PointerKind, elem TypeExpr) *InlinePointer {
	return &InlinePointer{base: newBase(id, rng), Kind: kind, Element: elem}
}
func (*InlinePointer) isTypeExpr() {}

// ArrayBoundExpr is one `[lo..hi]` dimension of an array type; Lo/Hi
// are expressions so the constant evaluator can fold named-constant
// bounds (`ARRAY[0..MAX_IDX] OF INT`).
type ArrayBoundExpr struct {
	Lo, Hi Expression
}

// InlineArray is an inline `ARRAY[..] OF T` declaration.
type InlineArray struct {
	base
	Bounds  []ArrayBoundExpr
	Element TypeExpr
}

func NewInlineArray(id NodeID, rng Range, bounds []ArrayBoundExpr, elem TypeExpr) *InlineArray {
	return &InlineArray{base: newBase(id, rng), Bounds: bounds, Element: elem}
}
func (*InlineArray) isTypeExpr() {}

// StructField is one field of an inline STRUCT declaration.
type StructField struct {
	Name        string
	Type        TypeExpr
	Initializer Expression // nil if absent
	Location    Range
}

// InlineStruct is an inline `STRUCT ... END_STRUCT` declaration.
type InlineStruct struct {
	base
	Fields []StructField
}

func NewInlineStruct(id NodeID, rng Range, fields []StructField) *InlineStruct {
	return &InlineStruct{base: newBase(id, rng), Fields: fields}
}
func (*InlineStruct) isTypeExpr() {}

// EnumVariantExpr is one element of an enum declaration, with an
// optional explicit initializer (spec §4.4.1: referenceless variants
// get one synthesized during pre-processing).
type EnumVariantExpr struct {
	Name        string
	Initializer Expression // nil until explicit or pre-processor-synthesized
	Location    Range
}

// InlineEnum is an inline `(a, b, c)` enum declaration. Elements is
// nil for `TYPE Color : (); END_TYPE` written with no variants at
// all; the pre-processor then has no variant to give an initializer.
// The parser always sets Absent to false.
type InlineEnum struct {
	base
	Elements   []EnumVariantExpr
	Underlying TypeExpr // nil means default DINT
	Absent     bool     // true if the element list itself was omitted
}

func NewInlineEnum(id NodeID, rng Range, elements []EnumVariantExpr, underlying TypeExpr, absent bool) *InlineEnum {
	return &InlineEnum{base: newBase(id, rng), Elements: elements, Underlying: underlying, Absent: absent}
}
func (*InlineEnum) isTypeExpr() {}

// InlineSubrange is an inline `INT(0..100)` restricted-range declaration.
type InlineSubrange struct {
	base
	Element TypeExpr
	Lo, Hi  Expression
}

func NewInlineSubrange(id NodeID, rng Range, elem TypeExpr, lo, hi Expression) *InlineSubrange {
	return &InlineSubrange{base: newBase(id, rng), Element: elem, Lo: lo, Hi: hi}
}
func (*InlineSubrange) isTypeExpr() {}

// InlineString is an inline `STRING[n]` / `WSTRING[n]` declaration.
type InlineString struct {
	base
	Wide bool
	Size Expression // nil means default size
}

func NewInlineString(id NodeID, rng Range, wide bool, size Expression) *InlineString {
	return &InlineString{base: newBase(id, rng), Wide: wide, Size: size}
}
func (*InlineString) isTypeExpr() {}

// GenericPlaceholder references a POU's own generic-parameter symbol
// inside its declarations (spec §4.1 edge cases: generic POUs
// register placeholders `__<pou>__<param>`).
type GenericPlaceholder struct {
	base
	Symbol string
	Nature string // constraint, e.g. "ANY_NUM"; "" means unconstrained ANY
}

func NewGenericPlaceholder(id NodeID, rng Range, symbol, nature string) *GenericPlaceholder {
	return &GenericPlaceholder{base: newBase(id, rng), Symbol: symbol, Nature: nature}
}
func (*GenericPlaceholder) isTypeExpr() {}

// IsInlineDefinition reports whether t is one of the anonymous
// inline-definition forms the pre-processor lowering hoists into a
// named UserTypeDeclaration when one is a function's return type
// (spec §4.4.1), as opposed to a plain
// NamedType reference or a GenericPlaceholder (which is already
// named).
func IsInlineDefinition(t TypeExpr) bool {
	switch t.(type) {
	case *InlinePointer, *InlineArray, *InlineStruct, *InlineEnum, *InlineSubrange, *InlineString:
		return true
	default:
		return false
	}
}
