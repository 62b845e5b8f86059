// Package constant implements the Constant Evaluator (spec §4.2): the
// fixed-point folding loop that resolves every ConstSlot the Indexer
// registered to a literal value, or marks it unresolvable with a
// DeferredReason. Unlike a declaration pass that folds constants
// inline as it walks, this resolves them as an iterated fixed point;
// the deferred-reason handling mirrors how address-of initializers
// stay unresolved until code generation assigns memory layout.
package constant

import (
	"math"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/pipeline"
	"github.com/go-stc/stc/internal/types"
	"github.com/go-stc/stc/pkg/ident"
)

// Context is the Constant Evaluator's pipeline.Pass context.
type Context struct {
	Index *index.Index
	Diags *diagnostics.Diagnostician
}

func (c *Context) Diagnostics() *diagnostics.Diagnostician { return c.Diags }

// Evaluator implements pipeline.Pass[*Context], folding ctx.Index's
// constant slots to a fixed point per spec §4.2's algorithm: iterate
// until a full pass makes no further progress, then mark whatever is
// left unresolvable.
type Evaluator struct{}

func NewEvaluator() *Evaluator { return &Evaluator{} }

func (*Evaluator) Name() string { return "ConstantEvaluator" }

func (ev *Evaluator) Run(ctx *Context) error {
	idx := ctx.Index

	for {
		progress := false
		for _, slot := range idx.Constants {
			if slot.Status != index.SlotUnresolved {
				continue
			}
			if ev.tryResolve(ctx, slot) {
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	for _, slot := range idx.Constants {
		if slot.Status == index.SlotUnresolved {
			slot.Status = index.SlotUnresolvable
			if slot.Reason == index.DeferredNone {
				slot.Reason = index.DeferredForwardReference
			}
		}
	}

	ev.materializePending(idx)
	return nil
}

// materializePending invokes every registered write-back closure for
// slots that resolved, so the Type fields that needed the value (enum
// variants, array/subrange bounds, sized strings) see it without the
// Indexer having needed a bespoke side table per construct.
func (ev *Evaluator) materializePending(idx *index.Index) {
	for id, fn := range idx.PendingMaterializations {
		slot := idx.Slot(id)
		if slot == nil || slot.Status != index.SlotResolved {
			continue
		}
		fn(slot.Value)
	}
}

// tryResolve attempts to fold slot.Expr to a ConstValue. Returns true
// if it made progress (resolved this slot, or downgraded it to
// unresolvable for a reason other than "might resolve later").
func (ev *Evaluator) tryResolve(ctx *Context, slot *index.ConstSlot) bool {
	val, reason, ok := ev.eval(ctx, slot.Expr)
	switch {
	case ok:
		slot.Status = index.SlotResolved
		slot.Value = val
		return true
	case reason == index.DeferredAddressOf || reason == index.DeferredUnsupportedOperator:
		slot.Status = index.SlotUnresolvable
		slot.Reason = reason
		return true
	default:
		// DeferredForwardReference: another slot may resolve next pass.
		return false
	}
}

// eval folds expr to a ConstValue, reporting a DeferredReason when it
// can't (forward reference, address-of, or an operator the evaluator
// doesn't fold). ok is false whenever resolution didn't happen this
// pass, regardless of whether it might next pass.
func (ev *Evaluator) eval(ctx *Context, expr ast.Expression) (ConstValue, index.DeferredReason, bool) {
	switch e := expr.(type) {
	case *ast.Literal:
		return ev.evalLiteral(e)

	case *ast.Identifier:
		return ev.evalIdentifier(ctx, e)

	case *ast.UnaryExpr:
		return ev.evalUnary(ctx, e)

	case *ast.BinaryExpr:
		return ev.evalBinary(ctx, e)

	case *ast.ReferenceExpr:
		if _, isAddr := e.Access.(ast.AddressAccess); isAddr {
			return index.ConstValue{}, index.DeferredAddressOf, false
		}
		return index.ConstValue{}, index.DeferredUnsupportedOperator, false

	case *ast.CallStatement:
		if isBuiltinAddressOf(e) {
			return index.ConstValue{}, index.DeferredAddressOf, false
		}
		return index.ConstValue{}, index.DeferredUnsupportedOperator, false

	case *ast.ParenExpression:
		return ev.eval(ctx, e.Inner)

	default:
		return index.ConstValue{}, index.DeferredUnsupportedOperator, false
	}
}

// ConstValue is a local alias so eval's signature reads naturally; the
// real type lives in internal/index since ConstSlot.Value is typed
// against it there.
type ConstValue = index.ConstValue

// isBuiltinAddressOf reports whether call is `REF(x)`/`ADR(x)`, the
// builtin-operator spellings of address-of (spec §4.2: alongside the
// `&x` ReferenceExpr form, both carry the same deferred reason).
func isBuiltinAddressOf(call *ast.CallStatement) bool {
	id, ok := call.Operator.(*ast.Identifier)
	if !ok {
		return false
	}
	return id.Name == "REF" || id.Name == "ADR"
}

func (ev *Evaluator) evalLiteral(lit *ast.Literal) (ConstValue, index.DeferredReason, bool) {
	switch lit.Kind {
	case ast.LitInt:
		v, ok := lit.Value.(int64)
		if !ok {
			return ConstValue{}, index.DeferredUnsupportedOperator, false
		}
		return ConstValue{Int: v}, index.DeferredNone, true
	case ast.LitReal:
		v, ok := lit.Value.(float64)
		if !ok {
			return ConstValue{}, index.DeferredUnsupportedOperator, false
		}
		return ConstValue{IsReal: true, Real: v}, index.DeferredNone, true
	case ast.LitBool:
		v, ok := lit.Value.(bool)
		if !ok {
			return ConstValue{}, index.DeferredUnsupportedOperator, false
		}
		if v {
			return ConstValue{Int: 1}, index.DeferredNone, true
		}
		return ConstValue{Int: 0}, index.DeferredNone, true
	case ast.LitChar, ast.LitWChar:
		v, ok := lit.Value.(int64)
		if !ok {
			return ConstValue{}, index.DeferredUnsupportedOperator, false
		}
		return ConstValue{Int: v}, index.DeferredNone, true
	default:
		// Strings, dates and time literals aren't numerically
		// constant-foldable in the sense this slot mechanism needs
		// (enum/array/subrange/string bounds are always integers).
		return ConstValue{}, index.DeferredUnsupportedOperator, false
	}
}

// evalIdentifier resolves a bare name to another constant: a global
// CONSTANT variable's own initializer slot, or a sibling enum
// variant's slot (spec §4.4.1's `<prev> + 1` initializer chain,
// registered by the Indexer under EnumVariantSlots). A reference to a
// slot that hasn't resolved yet is a forward reference, not a
// permanent failure, so the fixed-point loop retries it.
func (ev *Evaluator) evalIdentifier(ctx *Context, id *ast.Identifier) (ConstValue, index.DeferredReason, bool) {
	if slotID, ok := ctx.Index.EnumVariantSlots[ident.Normalize(id.Name)]; ok {
		return ev.evalSlot(ctx, slotID)
	}

	entry, ok := ctx.Index.Globals.Get(id.Name)
	if !ok {
		return ConstValue{}, index.DeferredUnsupportedOperator, false
	}
	if entry.InitializerID < 0 {
		return ConstValue{}, index.DeferredUnsupportedOperator, false
	}
	return ev.evalSlot(ctx, entry.InitializerID)
}

// evalSlot reads the current resolution state of slot id, reporting a
// forward reference (retry next pass) rather than a permanent failure
// when it simply hasn't resolved yet.
func (ev *Evaluator) evalSlot(ctx *Context, id int) (ConstValue, index.DeferredReason, bool) {
	slot := ctx.Index.Slot(id)
	if slot == nil {
		return ConstValue{}, index.DeferredUnsupportedOperator, false
	}
	switch slot.Status {
	case index.SlotResolved:
		return slot.Value, index.DeferredNone, true
	case index.SlotUnresolvable:
		return ConstValue{}, index.DeferredUnsupportedOperator, false
	default:
		return ConstValue{}, index.DeferredForwardReference, false
	}
}

func (ev *Evaluator) evalUnary(ctx *Context, u *ast.UnaryExpr) (ConstValue, index.DeferredReason, bool) {
	operand, reason, ok := ev.eval(ctx, u.Value)
	if !ok {
		return ConstValue{}, reason, false
	}
	switch u.Op {
	case ast.OpNeg:
		if operand.IsReal {
			return ConstValue{IsReal: true, Real: -operand.Real}, index.DeferredNone, true
		}
		return ConstValue{Int: -operand.Int}, index.DeferredNone, true
	case ast.OpNot:
		if operand.Int == 0 {
			return ConstValue{Int: 1}, index.DeferredNone, true
		}
		return ConstValue{Int: 0}, index.DeferredNone, true
	default:
		return ConstValue{}, index.DeferredUnsupportedOperator, false
	}
}

func (ev *Evaluator) evalBinary(ctx *Context, b *ast.BinaryExpr) (ConstValue, index.DeferredReason, bool) {
	lhs, reason, ok := ev.eval(ctx, b.Lhs)
	if !ok {
		return ConstValue{}, reason, false
	}
	rhs, reason, ok := ev.eval(ctx, b.Rhs)
	if !ok {
		return ConstValue{}, reason, false
	}

	if lhs.IsReal || rhs.IsReal {
		l, r := asFloat(lhs), asFloat(rhs)
		res, fok := foldFloat(b.Op, l, r)
		if !fok {
			return ConstValue{}, index.DeferredUnsupportedOperator, false
		}
		return ConstValue{IsReal: true, Real: res}, index.DeferredNone, true
	}

	res, overflowed, iok := foldInt(b.Op, lhs.Int, rhs.Int)
	if !iok {
		return ConstValue{}, index.DeferredUnsupportedOperator, false
	}
	if overflowed {
		ctx.Diags.Report(diagnostics.NewWarning(diagnostics.EConstOverflow, b.Range(),
			"constant expression overflows the evaluator's integer range"))
	}
	return ConstValue{Int: res}, index.DeferredNone, true
}

func asFloat(v ConstValue) float64 {
	if v.IsReal {
		return v.Real
	}
	return float64(v.Int)
}

func foldFloat(op ast.BinaryOperator, l, r float64) (float64, bool) {
	switch op {
	case ast.OpAdd:
		return l + r, true
	case ast.OpSub:
		return l - r, true
	case ast.OpMul:
		return l * r, true
	case ast.OpDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case ast.OpPow:
		return math.Pow(l, r), true
	default:
		return 0, false
	}
}

// foldInt folds an integer binary operator, reporting overflow against
// the signed 64-bit range the evaluator models Int in. No wider value
// is computed, and ConstValue.Int128Hi is never set.
func foldInt(op ast.BinaryOperator, l, r int64) (result int64, overflowed, ok bool) {
	switch op {
	case ast.OpAdd:
		result = l + r
		overflowed = (r > 0 && l > math.MaxInt64-r) || (r < 0 && l < math.MinInt64-r)
		return result, overflowed, true
	case ast.OpSub:
		result = l - r
		overflowed = (r < 0 && l > math.MaxInt64+r) || (r > 0 && l < math.MinInt64+r)
		return result, overflowed, true
	case ast.OpMul:
		result = l * r
		if l != 0 && result/l != r {
			overflowed = true
		}
		return result, overflowed, true
	case ast.OpDiv:
		if r == 0 {
			return 0, false, false
		}
		return l / r, false, true
	case ast.OpMod:
		if r == 0 {
			return 0, false, false
		}
		return l % r, false, true
	case ast.OpBitAnd:
		return l & r, false, true
	case ast.OpBitOr:
		return l | r, false, true
	case ast.OpBitXor:
		return l ^ r, false, true
	case ast.OpAnd:
		return boolInt(l != 0 && r != 0), false, true
	case ast.OpOr:
		return boolInt(l != 0 || r != 0), false, true
	case ast.OpXor:
		return boolInt((l != 0) != (r != 0)), false, true
	case ast.OpEq:
		return boolInt(l == r), false, true
	case ast.OpNotEq:
		return boolInt(l != r), false, true
	case ast.OpLess:
		return boolInt(l < r), false, true
	case ast.OpLessEq:
		return boolInt(l <= r), false, true
	case ast.OpGreater:
		return boolInt(l > r), false, true
	case ast.OpGreaterEq:
		return boolInt(l >= r), false, true
	default:
		return 0, false, false
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

var _ pipeline.Pass[*Context] = (*Evaluator)(nil)

// SetEnumDefault registers expr (for example an enum variant's
// `<prev> + 1` initializer) as a new constant slot of the underlying
// type, with materialize called once the evaluator resolves it, and
// returns the slot id. Nothing in this module calls it: the Indexer
// registers enum-variant slots itself.
func SetEnumDefault(idx *index.Index, underlying types.Type, expr ast.Expression, materialize func(ConstValue)) int {
	return idx.NewSlotWithMaterializer(underlying, expr, materialize)
}
