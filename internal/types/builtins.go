package types

// Builtin elementary types, registered by the Indexer per spec §4.1
// step 1 ("Register built-in types"). Declared once here so every
// phase shares the same pointer identity for e.g. DINT.
var (
	SINT  = NewElementary("SINT", NatureInt, 8, true)
	INT   = NewElementary("INT", NatureInt, 16, true)
	DINT  = NewElementary("DINT", NatureInt, 32, true)
	LINT  = NewElementary("LINT", NatureInt, 64, true)
	USINT = NewElementary("USINT", NatureUnsignedInt, 8, false)
	UINT  = NewElementary("UINT", NatureUnsignedInt, 16, false)
	UDINT = NewElementary("UDINT", NatureUnsignedInt, 32, false)
	ULINT = NewElementary("ULINT", NatureUnsignedInt, 64, false)

	BYTE  = NewElementary("BYTE", NatureUnsignedInt, 8, false)
	WORD  = NewElementary("WORD", NatureUnsignedInt, 16, false)
	DWORD = NewElementary("DWORD", NatureUnsignedInt, 32, false)
	LWORD = NewElementary("LWORD", NatureUnsignedInt, 64, false)

	REAL  = NewElementary("REAL", NatureReal, 32, true)
	LREAL = NewElementary("LREAL", NatureReal, 64, true)

	BOOL  = NewElementary("BOOL", NatureBool, 1, false)
	CHAR  = NewElementary("CHAR", NatureChar, 8, false)
	WCHAR = NewElementary("WCHAR", NatureChar, 16, false)

	TIME     = NewElementary("TIME", NatureDate, 64, true)
	DATE     = NewElementary("DATE", NatureDate, 64, true)
	TIME_OF_DAY = NewElementary("TIME_OF_DAY", NatureDate, 64, true)
	DATE_AND_TIME = NewElementary("DATE_AND_TIME", NatureDate, 64, true)

	// VOID is the annotation fallback type for unresolved references
	// (spec §7: "downstream passes treat missing annotations as type VOID").
	VOID = NewElementary("VOID", NatureAny, 0, false)

	// DefaultStringSize is the character count a bare STRING
	// declaration falls back to; ST's STRING without a size annotation is
	// unbounded in practice but we record a conservative default for
	// the synthesized __STRING_n mechanism when no literal is known.
	DefaultStringSize = 255

	STRING  = NewString("STRING", false, DefaultStringSize)
	WSTRING = NewString("WSTRING", true, DefaultStringSize)
)

// Builtins returns the full elementary-type registration set, in a
// stable order, for the Indexer to install.
func Builtins() []Type {
	return []Type{
		SINT, INT, DINT, LINT, USINT, UINT, UDINT, ULINT,
		BYTE, WORD, DWORD, LWORD,
		REAL, LREAL,
		BOOL, CHAR, WCHAR,
		TIME, DATE, TIME_OF_DAY, DATE_AND_TIME,
		VOID, STRING, WSTRING,
	}
}

// integerRank orders integer/real types from narrowest to widest for
// promotion purposes (spec §4.3.2: "arithmetic ⇒ bigger of
// intrinsic-promoted operands").
var integerRank = map[string]int{
	"BOOL": 0, "SINT": 1, "USINT": 1, "BYTE": 1,
	"INT": 2, "UINT": 2, "WORD": 2,
	"DINT": 3, "UDINT": 3, "DWORD": 3,
	"LINT": 4, "ULINT": 4, "LWORD": 4,
	"REAL": 5, "LREAL": 6,
}

// Rank returns the promotion rank of an elementary numeric type, or
// -1 if t isn't one of the ranked elementary types.
func Rank(t Type) int {
	e, ok := Resolve(t).(*Elementary)
	if !ok {
		return -1
	}
	r, ok := integerRank[e.Name()]
	if !ok {
		return -1
	}
	return r
}

// rankType maps a rank back to its canonical type (used for reverse
// lookups in diagnostics/tests).
var rankType = map[int]Type{
	0: BOOL, 1: SINT, 2: INT, 3: DINT, 4: LINT, 5: REAL, 6: LREAL,
}

// PromoteArithmetic returns the result type of a binary arithmetic
// expression per spec §4.3.2: the wider of the two operand types,
// with DINT as the minimum promotion floor.
func PromoteArithmetic(lhs, rhs Type) Type {
	rl, rr := Rank(lhs), Rank(rhs)
	best := rl
	if rr > best {
		best = rr
	}
	const dintRank = 3
	if best < dintRank {
		best = dintRank
	}
	if t, ok := rankType[best]; ok {
		return t
	}
	return DINT
}

// PromoteVariadic implements the "integral promotion" rule for
// variadic/VAR_ARGS parameters from spec §4.3.2: SINT/USINT/INT/UINT
// widen to DINT, REAL widens to LREAL, everything else passes through
// unchanged (mirrors C-ABI default-argument promotion).
func PromoteVariadic(t Type) Type {
	e, ok := Resolve(t).(*Elementary)
	if !ok {
		return t
	}
	switch e {
	case SINT, USINT, INT, UINT:
		return DINT
	case REAL:
		return LREAL
	default:
		return t
	}
}

// FitsSignedDINT reports whether an integer literal value fits in a
// 32-bit signed range (spec §4.3.2 literal-typing rule: integer
// literals are DINT unless they exceed the 32-bit signed max, in
// which case they become LINT).
func FitsSignedDINT(v int64) bool {
	const maxDINT = 1<<31 - 1
	const minDINT = -(1 << 31)
	return v >= minDINT && v <= maxDINT
}
