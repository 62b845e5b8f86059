// Package types models IEC 61131-3 data types: the DataType variant
// set from which the Index's type table and every VariableEntry's
// declared type are built.
package types

import "fmt"

// TypeNature classifies a DataType for the purposes of assignability,
// promotion and ABI-passing rules in the annotator and validator.
type TypeNature int

const (
	NatureAny TypeNature = iota
	NatureInt
	NatureUnsignedInt
	NatureReal
	NatureBool
	NatureChar
	NatureDate
	NatureString
	NaturePointer
	NatureArray
	NatureStruct
	NatureEnum
	NatureSubRange
	NatureAlias
	NatureVarArgs
	NatureGeneric
)

func (n TypeNature) String() string {
	switch n {
	case NatureInt:
		return "Int"
	case NatureUnsignedInt:
		return "UnsignedInt"
	case NatureReal:
		return "Real"
	case NatureBool:
		return "Bool"
	case NatureChar:
		return "Char"
	case NatureDate:
		return "Date"
	case NatureString:
		return "String"
	case NaturePointer:
		return "Pointer"
	case NatureArray:
		return "Array"
	case NatureStruct:
		return "Struct"
	case NatureEnum:
		return "Enum"
	case NatureSubRange:
		return "SubRange"
	case NatureAlias:
		return "Alias"
	case NatureVarArgs:
		return "VarArgs"
	case NatureGeneric:
		return "Generic"
	default:
		return "Any"
	}
}

// Type is implemented by every DataType variant.
type Type interface {
	// Name returns the type's unique registered name.
	Name() string
	// Nature classifies the type for promotion/assignability rules.
	Nature() TypeNature
	// String renders the type the way diagnostics and dumps do.
	String() string
	// Equals reports structural equality (not just identity), needed
	// for interface-conformance and array/struct comparisons.
	Equals(other Type) bool
}

// Elementary is a built-in scalar type: an integer of a given
// signedness and bit-width, a float, BOOL, CHAR/WCHAR, or a
// date/time variant.
type Elementary struct {
	name      string
	nature    TypeNature
	BitWidth  int  // 1, 8, 16, 32, 64, 128
	Signed    bool // only meaningful for NatureInt/NatureUnsignedInt
}

func NewElementary(name string, nature TypeNature, bitWidth int, signed bool) *Elementary {
	return &Elementary{name: name, nature: nature, BitWidth: bitWidth, Signed: signed}
}

func (e *Elementary) Name() string      { return e.name }
func (e *Elementary) Nature() TypeNature { return e.nature }
func (e *Elementary) String() string    { return e.name }
func (e *Elementary) Equals(other Type) bool {
	o, ok := other.(*Elementary)
	return ok && o.name == e.name
}

// String models STRING/WSTRING, with a fixed or default size.
type String struct {
	name     string
	WideChar bool
	Size     int // character count; 0 means "default size"
}

func NewString(name string, wide bool, size int) *String {
	return &String{name: name, WideChar: wide, Size: size}
}

func (s *String) Name() string       { return s.name }
func (s *String) Nature() TypeNature { return NatureString }
func (s *String) String() string {
	if s.Size > 0 {
		return fmt.Sprintf("%s[%d]", s.name, s.Size)
	}
	return s.name
}
func (s *String) Equals(other Type) bool {
	o, ok := other.(*String)
	return ok && o.WideChar == s.WideChar && o.Size == s.Size
}

// Pointer models POINTER TO T / REF_TO T / REFERENCE TO T.
type Pointer struct {
	name       string
	Inner      Type
	AutoDeref  bool // REFERENCE TO / implicit VAR_IN_OUT-style deref
	TypeSafe   bool // POINTER TO (vendor type-safe pointers) vs raw address
	IsFunction bool // function-pointer type
}

func NewPointer(name string, inner Type, autoDeref, typeSafe, isFunction bool) *Pointer {
	return &Pointer{name: name, Inner: inner, AutoDeref: autoDeref, TypeSafe: typeSafe, IsFunction: isFunction}
}

func (p *Pointer) Name() string       { return p.name }
func (p *Pointer) Nature() TypeNature { return NaturePointer }
func (p *Pointer) String() string {
	if p.name != "" {
		return p.name
	}
	return "POINTER TO " + p.Inner.String()
}
func (p *Pointer) Equals(other Type) bool {
	o, ok := other.(*Pointer)
	if !ok {
		return false
	}
	return p.AutoDeref == o.AutoDeref && p.IsFunction == o.IsFunction && p.Inner.Equals(o.Inner)
}

// ArrayBound is one dimension's [lo..hi] range. Either bound may be a
// named constant resolved by the constant evaluator; Lo/Hi are only
// valid once resolved.
type ArrayBound struct {
	Lo, Hi int64
}

func (b ArrayBound) Len() int64 { return b.Hi - b.Lo + 1 }

// Array models ARRAY[..] OF T, possibly multi-dimensional.
type Array struct {
	name   string
	Inner  Type
	Bounds []ArrayBound
}

func NewArray(name string, inner Type, bounds []ArrayBound) *Array {
	return &Array{name: name, Inner: inner, Bounds: bounds}
}

func (a *Array) Name() string       { return a.name }
func (a *Array) Nature() TypeNature { return NatureArray }
func (a *Array) String() string {
	if a.name != "" {
		return a.name
	}
	return "ARRAY OF " + a.Inner.String()
}
func (a *Array) Equals(other Type) bool {
	o, ok := other.(*Array)
	if !ok || len(o.Bounds) != len(a.Bounds) || !a.Inner.Equals(o.Inner) {
		return false
	}
	for i, b := range a.Bounds {
		if b != o.Bounds[i] {
			return false
		}
	}
	return true
}

// Member is one field of a Struct, in declaration order. Offset is
// the ABI field index assigned by the Indexer (spec §4.1: "Member
// field order ... is the ABI offset used by code generation").
type Member struct {
	Name   string
	Type   Type
	Offset int
}

// Struct models STRUCT and the synthetic per-POU member structs the
// Indexer builds for stateful POUs.
type Struct struct {
	name    string
	Members []Member
	// Embedded, if non-empty, is the name of a parent struct embedded
	// as field 0 (inheritance: spec §4.1's "embedding the parent's
	// struct as the first field named __<parent>").
	Embedded string
}

func NewStruct(name string) *Struct { return &Struct{name: name} }

func (s *Struct) Name() string       { return s.name }
func (s *Struct) Nature() TypeNature { return NatureStruct }
func (s *Struct) String() string     { return s.name }
func (s *Struct) Equals(other Type) bool {
	o, ok := other.(*Struct)
	if !ok || len(o.Members) != len(s.Members) {
		return false
	}
	for i, m := range s.Members {
		if m.Name != o.Members[i].Name || !m.Type.Equals(o.Members[i].Type) {
			return false
		}
	}
	return true
}

// AddMember appends a field, assigning it the next ABI offset.
func (s *Struct) AddMember(name string, t Type) {
	s.Members = append(s.Members, Member{Name: name, Type: t, Offset: len(s.Members)})
}

// FieldByName looks up a member by exact, case-sensitive name; members
// keep the casing they were declared with.
func (s *Struct) FieldByName(name string) (Member, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// EnumVariant is one named element of an Enum, holding the constant
// evaluator's resolved integer value once the constant-evaluation
// phase has run.
type EnumVariant struct {
	Name     string
	Resolved bool
	Value    int64
}

// Enum models an IEC 61131-3 enumerated type.
type Enum struct {
	name     string
	Variants []EnumVariant
	// Underlying is the storage int type (default DINT).
	Underlying Type
}

func NewEnum(name string, underlying Type) *Enum {
	return &Enum{name: name, Underlying: underlying}
}

func (e *Enum) Name() string       { return e.name }
func (e *Enum) Nature() TypeNature { return NatureEnum }
func (e *Enum) String() string     { return e.name }
func (e *Enum) Equals(other Type) bool {
	o, ok := other.(*Enum)
	return ok && o.name == e.name
}

func (e *Enum) VariantByName(name string) (int, bool) {
	for i, v := range e.Variants {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

// SubRange models a restricted-range integer type, e.g. INT(0..100).
type SubRange struct {
	name       string
	Inner      Type
	Lo, Hi     int64
	HasBounds  bool // false until the constant evaluator resolves Lo/Hi
}

func NewSubRange(name string, inner Type) *SubRange {
	return &SubRange{name: name, Inner: inner}
}

func (s *SubRange) Name() string       { return s.name }
func (s *SubRange) Nature() TypeNature { return NatureSubRange }
func (s *SubRange) String() string     { return s.name }
func (s *SubRange) Equals(other Type) bool {
	o, ok := other.(*SubRange)
	return ok && o.name == s.name
}

// Alias models a type declared as a reference to another (TYPE T: U; END_TYPE).
type Alias struct {
	name       string
	Referenced Type
}

func NewAlias(name string, referenced Type) *Alias { return &Alias{name: name, Referenced: referenced} }

func (a *Alias) Name() string       { return a.name }
func (a *Alias) Nature() TypeNature { return NatureAlias }
func (a *Alias) String() string     { return a.name }
func (a *Alias) Equals(other Type) bool {
	o, ok := other.(*Alias)
	return ok && a.Referenced.Equals(o.Referenced)
}

// Resolve follows an Alias chain to the underlying non-alias type.
func Resolve(t Type) Type {
	for {
		a, ok := t.(*Alias)
		if !ok {
			return t
		}
		t = a.Referenced
	}
}

// VarArgs models the untyped variadic parameter marker.
type VarArgs struct{ name string }

func NewVarArgs(name string) *VarArgs  { return &VarArgs{name: name} }
func (v *VarArgs) Name() string        { return v.name }
func (v *VarArgs) Nature() TypeNature  { return NatureVarArgs }
func (v *VarArgs) String() string      { return "..." }
func (v *VarArgs) Equals(other Type) bool {
	_, ok := other.(*VarArgs)
	return ok
}

// GenericSymbol is a POU generic-parameter placeholder
// (__<pou>__<symbol>, spec §4.1 edge cases).
type GenericSymbol struct {
	name       string
	Constraint string // the declared "nature" constraint, e.g. "ANY_NUM"
}

func NewGenericSymbol(name, nature string) *GenericSymbol {
	return &GenericSymbol{name: name, Constraint: nature}
}

func (g *GenericSymbol) Name() string       { return g.name }
func (g *GenericSymbol) Nature() TypeNature { return NatureGeneric }
func (g *GenericSymbol) String() string     { return g.name }
func (g *GenericSymbol) Equals(other Type) bool {
	o, ok := other.(*GenericSymbol)
	return ok && o.name == g.name
}

// IsInteger reports whether t (after alias resolution) is an integer
// nature (signed or unsigned).
func IsInteger(t Type) bool {
	n := Resolve(t).Nature()
	return n == NatureInt || n == NatureUnsignedInt
}

// IsNumeric reports integer or real nature.
func IsNumeric(t Type) bool {
	n := Resolve(t).Nature()
	return n == NatureInt || n == NatureUnsignedInt || n == NatureReal
}
