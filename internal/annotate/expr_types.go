package annotate

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/types"
)

// binaryResultType implements spec §4.3.2's binary-operator typing
// table: comparison and logical operators always produce BOOL,
// bitwise operators take the bigger operand type with no DINT floor,
// arithmetic operators promote with a DINT floor, and a pointer
// operand paired with an integer operand (pointer arithmetic) keeps
// the pointer type.
func binaryResultType(op ast.BinaryOperator, lhs, rhs types.Type) types.Type {
	if op.IsComparison() || op.IsLogical() {
		return types.BOOL
	}

	if ptr, ok := types.Resolve(lhs).(*types.Pointer); ok {
		if _, isInt := types.Resolve(rhs).(*types.Elementary); isInt {
			return ptr
		}
	}
	if ptr, ok := types.Resolve(rhs).(*types.Pointer); ok {
		if _, isInt := types.Resolve(lhs).(*types.Elementary); isInt {
			return ptr
		}
	}

	if op.IsBitwise() {
		return promoteWithoutFloor(lhs, rhs)
	}

	return types.PromoteArithmetic(lhs, rhs)
}

// promoteWithoutFloor picks the bigger-ranked of the two operand
// types with no minimum promotion, the bitwise-operator counterpart
// of types.PromoteArithmetic.
func promoteWithoutFloor(lhs, rhs types.Type) types.Type {
	rl, rr := types.Rank(lhs), types.Rank(rhs)
	if rl < 0 && rr < 0 {
		return types.DWORD
	}
	if rr > rl {
		return rhs
	}
	return lhs
}

// unaryResultType implements spec §4.3.2's unary-operator typing:
// NOT on BOOL stays BOOL, NOT on an integer type is a bitwise
// complement that preserves the operand's type, and arithmetic
// negation widens an unsigned operand to its signed counterpart
// before applying the same DINT-floor promotion arithmetic uses.
func unaryResultType(op ast.UnaryOperator, operand types.Type) types.Type {
	if op == ast.OpNot {
		if types.Resolve(operand) == types.BOOL {
			return types.BOOL
		}
		return operand
	}
	signed := widenUnsignedToSigned(operand)
	return types.PromoteArithmetic(signed, signed)
}

func widenUnsignedToSigned(t types.Type) types.Type {
	switch types.Resolve(t) {
	case types.USINT, types.BYTE:
		return types.SINT
	case types.UINT, types.WORD:
		return types.INT
	case types.UDINT, types.DWORD:
		return types.DINT
	case types.ULINT, types.LWORD:
		return types.LINT
	default:
		return t
	}
}
