// Package annotate implements the Annotator (spec §4.3): the fused
// two-pass visitor that walks every POU implementation's body,
// resolving identifiers against a composable scope stack and
// recording the resulting/expected type of every node in an
// AnnotationMap. Grounded on the *shape* of a type-resolution pass and
// a validation pass fused into one walk, and on an outer-chained
// scope approach (generalized here into an explicit Frame stack per
// spec §4.3.1's composable-scope design, since a generic scope chain
// doesn't need the ST-specific Callable(qualifier)/Composite
// distinctions).
package annotate

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/types"
)

// Annotation is implemented by every variant the annotator can attach
// to a node (spec §3's AnnotationMap contract).
type Annotation interface {
	isAnnotation()
	// ResultType is the type a validator/lowering sees when it reads
	// this annotation as "the type of this node".
	ResultType() types.Type
}

// Value is an intrinsic literal or computed-expression annotation:
// nothing but a resulting type.
type Value struct {
	Type types.Type
}

func (*Value) isAnnotation()          {}
func (v *Value) ResultType() types.Type { return v.Type }

// Variable annotates an identifier/reference resolved to a declared
// variable (local, global, or struct/POU member).
type Variable struct {
	QualifiedName string
	Type          types.Type
	Constant      bool
	ArgumentType  ast.PassMode
	AutoDeref     bool
}

func (*Variable) isAnnotation()          {}
func (v *Variable) ResultType() types.Type { return v.Type }

// Program annotates an identifier resolved to a Program POU (spec §3:
// Programs carry exactly one implicit global instance, so referencing
// one by name resolves to that instance rather than a callable).
type Program struct {
	QualifiedName string
}

func (*Program) isAnnotation()          {}
func (*Program) ResultType() types.Type { return types.VOID }

// Function annotates an identifier/call resolved to a callable POU
// (Function, Method, Action, or a Function Block/Class used as a
// constructor-style call target). CallName is the qualified
// implementation name to dispatch to, which may differ from
// QualifiedName once the polymorphic-call lowering rewrites it.
type Function struct {
	QualifiedName string
	ReturnType    types.Type
	CallName      string
	// Container is the callable's own unqualified POU name — the key
	// its VAR_INPUT/VAR_OUTPUT/VAR_IN_OUT members are registered
	// under, which differs from QualifiedName for Methods/Actions
	// (Owner.Name vs Name).
	Container string
}

func (*Function) isAnnotation()          {}
func (f *Function) ResultType() types.Type { return f.ReturnType }

// TypeAnnotation annotates a node that refers to a type itself (a
// cast target, a type-scope identifier).
type TypeAnnotation struct {
	Type types.Type
}

func (*TypeAnnotation) isAnnotation()          {}
func (t *TypeAnnotation) ResultType() types.Type { return t.Type }

// ReplacementAst annotates a builtin-operator call node whose
// resolution replaced it with a canonical statement form (spec
// §4.3.2's "builtin operators ... if it emits a ReplacementAst, visit
// the replacement and then re-attach the replacement annotation to
// the original node"). It also serves as a type hint carrying the
// replacement's resulting type.
type ReplacementAst struct {
	Statement ast.Statement
	Type      types.Type
}

func (*ReplacementAst) isAnnotation()          {}
func (r *ReplacementAst) ResultType() types.Type { return r.Type }

// ResultType returns ann's resulting type, or types.VOID if ann is
// nil (spec §7: "downstream passes treat missing annotations as type
// VOID").
func ResultType(ann Annotation) types.Type {
	if ann == nil {
		return types.VOID
	}
	return ann.ResultType()
}

// KindName returns the Annotation variant's name, for dumps and
// diagnostics that want a human label without a type switch of their
// own (internal/ir/dump).
func KindName(ann Annotation) string {
	switch ann.(type) {
	case *Value:
		return "Value"
	case *Variable:
		return "Variable"
	case *Program:
		return "Program"
	case *Function:
		return "Function"
	case *TypeAnnotation:
		return "TypeAnnotation"
	case *ReplacementAst:
		return "ReplacementAst"
	default:
		return "none"
	}
}
