package validate

import (
	"github.com/go-stc/stc/internal/annotate"
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/internal/types"
	"github.com/go-stc/stc/pkg/ident"
)

// isLvalue reports whether expr is a valid assignment/address-of
// target: a bare identifier, a member/index/deref chain, or one of
// the bit/direct-access forms spec §4.5 explicitly carves out
// ("assignment to rvalue rejected except for bit/direct-access
// targets (%Q1, x.1, y^.3)").
func isLvalue(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		return true
	case *ast.ReferenceExpr:
		switch e.Access.(type) {
		case ast.MemberAccess, ast.IndexAccess, ast.DerefAccess:
			return true
		default:
			return false
		}
	case *ast.DirectAccess:
		return true
	case *ast.HardwareAccess:
		return true
	default:
		return false
	}
}

// validateAssignment implements spec §4.5's Assignability rule for a
// top-level `left := right` statement.
func (v *Validator) validateAssignment(ctx *Context, assign *ast.Assignment) {
	v.checkExpr(ctx, nil, assign.Left)
	v.checkExpr(ctx, nil, assign.Right)

	if !isLvalue(assign.Left) {
		ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EAssignability, assign.Left.Range(),
			"assignment target is not an lvalue"))
		return
	}
	v.validateAssignmentTarget(ctx, assign.Left)
	if target, ok := v.variableOf(ctx, assign.Left); ok && target.Constant {
		ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EAssignability, assign.Left.Range(),
			"cannot assign to constant %q", target.QualifiedName))
	}

	leftType := v.resultType(ctx, assign.Left)
	rightType := v.resultType(ctx, assign.Right)
	v.checkAssignable(ctx, assign.Right.Range(), leftType, rightType)
}

// checkAssignable implements the per-nature assignability matrix spec
// §4.5 lists: numeric narrowing warns, enum-to-enum across distinct
// enums, pointer/integer bit-width, and STRING/WSTRING mismatch are
// hard errors.
func (v *Validator) checkAssignable(ctx *Context, at ast.Range, target, source types.Type) {
	if target == nil || source == nil || target == types.VOID || source == types.VOID {
		return
	}
	if target.Equals(source) {
		return
	}

	switch t := target.(type) {
	case *types.Enum:
		if s, ok := source.(*types.Enum); ok {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EAssignability, at,
				"cannot assign %s to %s: different enum types", s.Name(), t.Name()))
			return
		}
	case *types.String:
		if s, ok := source.(*types.String); ok && s.WideChar != t.WideChar {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EAssignability, at,
				"cannot assign %s to %s: STRING/WSTRING are not assignment-compatible", s.Name(), t.Name()))
		}
		return
	case *types.Pointer:
		// A pointer may only be assigned from/to LWORD among the
		// integer types (spec §4.5: "pointer<->integer conversion is
		// rejected except LWORD, the one integer type wide enough to
		// hold an address").
		if e, ok := source.(*types.Elementary); ok && types.IsInteger(e) {
			if e.Name() != types.LWORD.Name() {
				ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EAssignability, at,
					"cannot assign %s to pointer %s: only LWORD converts to a pointer", e.Name(), t.Name()))
			}
			return
		}
	}
	if _, ok := source.(*types.Pointer); ok {
		if e, ok := target.(*types.Elementary); ok && types.IsInteger(e) {
			if e.Name() != types.LWORD.Name() {
				ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EAssignability, at,
					"cannot assign pointer to %s: only LWORD converts from a pointer", e.Name()))
			}
			return
		}
	}

	if types.IsNumeric(target) && types.IsNumeric(source) {
		if types.Rank(source) > types.Rank(target) {
			ctx.Diags.Report(diagnostics.NewWarning(diagnostics.WImplicitDowncast, at,
				"implicit narrowing conversion from %s to %s", source.Name(), target.Name()))
		}
		return
	}

	if target.Nature() != source.Nature() {
		ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.ETypeMismatch, at,
			"cannot assign %s to %s", source.Name(), target.Name()))
	}
}

// validateCallSite implements spec §4.5's Call-site rule: a call
// cannot mix positional and explicit (`name :=`/`name =>`) arguments,
// and any argument bound to a VAR_IN_OUT or VAR_OUTPUT parameter must
// be an lvalue.
func (v *Validator) validateCallSite(ctx *Context, _ *ast.Pou, call *ast.CallStatement) {
	hasPositional, hasExplicit := false, false
	for _, param := range call.Parameters {
		switch param.(type) {
		case *ast.Assignment, *ast.OutputAssignment:
			hasExplicit = true
		default:
			hasPositional = true
		}
	}
	if hasPositional && hasExplicit {
		ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.ECallArity, call.Range(),
			"call mixes positional and explicit (name := / name =>) arguments"))
	}

	callee := v.calleeParams(ctx, call.Operator)
	if callee == nil {
		return
	}

	positionalIdx := 0
	for _, param := range call.Parameters {
		var argName string
		var argExpr ast.Expression
		switch arg := param.(type) {
		case *ast.Assignment:
			if id, ok := arg.Left.(*ast.Identifier); ok {
				argName = id.Name
			}
			argExpr = arg.Right
		case *ast.OutputAssignment:
			if id, ok := arg.Left.(*ast.Identifier); ok {
				argName = id.Name
			}
			argExpr = arg.Right
		default:
			if positionalIdx < len(callee) {
				argName = callee[positionalIdx].Name
			}
			argExpr = param
			positionalIdx++
		}
		if argName == "" {
			continue
		}
		for _, decl := range callee {
			if decl.Name != argName {
				continue
			}
			if (decl.Block == ast.BlockInOut || decl.Block == ast.BlockOutput) && !isLvalue(argExpr) {
				ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.ECallArity, argExpr.Range(),
					"argument for %s parameter %q must be an lvalue", decl.Block, argName))
			}
		}
	}
}

type paramDecl struct {
	Name  string
	Block ast.VariableBlockKind
}

// calleeParams returns the callee POU's VAR_INPUT/VAR_IN_OUT/
// VAR_OUTPUT parameters in declaration order, read directly off its
// *ast.Pou rather than Index.MembersOf — Functions never get a
// synthetic struct (they aren't IsStateful), so Index.MembersPerContainer
// has nothing registered for them; the Pou's own VariableBlocks always
// does. The operator resolves either to a Function annotation (a
// plain FUNCTION/PROGRAM call) or a Variable annotation naming a
// Function Block/Class-typed instance (`inst(...)`), so both
// annotation shapes are tried.
func (v *Validator) calleeParams(ctx *Context, operator ast.Expression) []paramDecl {
	id, ok := operator.(*ast.Identifier)
	if !ok {
		return nil
	}
	implName := ""
	switch ann := ctx.Annotations.Get(id.ID()).(type) {
	case *annotate.Function:
		implName = ann.CallName
	case *annotate.Variable:
		if ann.Type != nil {
			implName = types.Resolve(ann.Type).Name()
		}
	}
	if implName == "" {
		return nil
	}
	impl, ok := ctx.Index.Implementations.Get(implName)
	if !ok {
		return nil
	}
	var params []paramDecl
	for _, kind := range []ast.VariableBlockKind{ast.BlockInput, ast.BlockInOut, ast.BlockOutput} {
		for _, block := range impl.Pou.VariableBlocks {
			if block.Kind != kind {
				continue
			}
			for _, decl := range block.Variables {
				params = append(params, paramDecl{Name: decl.Name, Block: kind})
			}
		}
	}
	return params
}

// validateCase implements spec §4.5's Case rule for duplicates: a label
// value already covered by an earlier label is rejected. Only integer
// literals, enum variants, and ranges bounded by those take part in
// the check; any other label (a named integer constant, an arithmetic
// expression) is skipped, and a label's type is not checked.
func (v *Validator) validateCase(ctx *Context, p *ast.Pou, c *ast.Case) {
	v.checkExpr(ctx, p, c.Selector)
	seen := map[int64]ast.Range{}
	for _, label := range c.Labels {
		for _, value := range label.Values {
			v.checkExpr(ctx, p, value)
			lo, hi, ok := caseLabelRange(ctx, value)
			if !ok {
				continue
			}
			for i := lo; i <= hi; i++ {
				if prior, dup := seen[i]; dup {
					ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.ECaseRange, value.Range(),
						"duplicate CASE label %d", i).WithSecondary(prior))
				}
				seen[i] = value.Range()
			}
		}
		for _, b := range label.Body {
			v.validateStatement(ctx, p, b)
		}
	}
	for _, b := range c.Else {
		v.validateStatement(ctx, p, b)
	}
}

// caseLabelRange folds a single CASE label expression into an
// inclusive [lo, hi] integer range, or reports false if value isn't
// one of the constant forms this check understands (an integer
// literal, an identifier annotated as an enum variant, or a range of
// those); anything else, a named integer constant included, is left
// unchecked rather than mis-flagged.
func caseLabelRange(ctx *Context, value ast.Expression) (int64, int64, bool) {
	switch e := value.(type) {
	case *ast.Literal:
		if e.Kind != ast.LitInt {
			return 0, 0, false
		}
		n, ok := e.Value.(int64)
		return n, n, ok
	case *ast.RangeStatement:
		lo, _, ok1 := caseLabelRange(ctx, e.Start)
		hi, _, ok2 := caseLabelRange(ctx, e.End)
		if !ok1 || !ok2 {
			return 0, 0, false
		}
		return lo, hi, true
	case *ast.Identifier:
		ann := ctx.Annotations.Get(e.ID())
		enumType, ok := annotate.ResultType(ann).(*types.Enum)
		if !ok {
			return 0, 0, false
		}
		idx, found := enumType.VariantByName(e.Name)
		if !found || !enumType.Variants[idx].Resolved {
			return 0, 0, false
		}
		n := enumType.Variants[idx].Value
		return n, n, true
	default:
		return 0, 0, false
	}
}

// validateAccess implements spec §4.5's Array index and Address-of
// rules, which hang off a ReferenceExpr's Access variant. Bit/direct
// access offsets are checked by validateDirectAccess and
// validateHardwareAccess instead. Enum-literal-use is a target-position rule and is
// instead checked from validateAssignment, since the same MemberAccess
// (`Color.Red`) is a perfectly ordinary read everywhere except on an
// assignment's left-hand side.
func (v *Validator) validateAccess(ctx *Context, ref *ast.ReferenceExpr) {
	switch acc := ref.Access.(type) {
	case ast.IndexAccess:
		v.checkExpr(ctx, nil, acc.Index)
		indexType := v.resultType(ctx, acc.Index)
		if indexType != nil && indexType != types.VOID && !types.IsInteger(indexType) {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EArrayIndex, acc.Index.Range(),
				"array index must be an integer type, got %s", indexType.Name()))
		}

	case ast.AddressAccess:
		if !isLvalue(ref.Base) {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EAddressOf, ref.Base.Range(),
				"operand of & must be an lvalue"))
		}
	}
}

// validateAssignmentTarget implements spec §4.5's Enum-literal-use
// rule as it applies to an assignment's left-hand side: `Color.Red :=
// ...` assigns through an enum literal rather than a variable.
func (v *Validator) validateAssignmentTarget(ctx *Context, target ast.Expression) {
	ref, ok := target.(*ast.ReferenceExpr)
	if !ok {
		return
	}
	member, ok := ref.Access.(ast.MemberAccess)
	if !ok {
		return
	}
	baseType := v.resultType(ctx, ref.Base)
	if enumType, ok := baseType.(*types.Enum); ok {
		if _, found := enumType.VariantByName(member.Name); found {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EEnumLiteral, ref.Range(),
				"%s.%s is an enum literal and cannot be used as an assignment target", enumType.Name(), member.Name))
		}
	}
}

// validateDirectAccess checks a `.%Xk`-style bit/sub-width access
// offset. Its valid upper bound depends on the width of whatever
// container it's applied to, which this AST doesn't attach to the
// DirectAccess node itself, so only a negative literal offset is
// something this check can reject outright.
func (v *Validator) validateDirectAccess(ctx *Context, da *ast.DirectAccess) {
	v.checkExpr(ctx, nil, da.Index)
	lit, ok := da.Index.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return
	}
	n, ok := lit.Value.(int64)
	if ok && n < 0 {
		ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EBitAccess, da.Index.Range(),
			"direct access offset must not be negative, got %d", n))
	}
}

func (v *Validator) validateHardwareAccess(ctx *Context, ha *ast.HardwareAccess) {
	for _, idx := range ha.Indices {
		if idx < 0 {
			ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EBitAccess, ha.Range(),
				"hardware access index must not be negative, got %d", idx))
		}
	}
}

// validateStringCompare implements spec §4.5's String-compare rule in
// simplified form: it checks that a matching compare implementation
// exists by name, without verifying its parameter/return signature —
// this compiler has no separate builtin-signature registry for the
// comparison intrinsics to check against beyond existence in
// Index.Implementations.
func (v *Validator) validateStringCompare(ctx *Context, b *ast.BinaryExpr) {
	if !b.Op.IsComparison() {
		return
	}
	lhs := v.resultType(ctx, b.Lhs)
	rhs := v.resultType(ctx, b.Rhs)
	lhsStr, lok := lhs.(*types.String)
	rhsStr, rok := rhs.(*types.String)
	if !lok || !rok {
		return
	}
	wide := lhsStr.WideChar || rhsStr.WideChar
	name := stringCompareName(b.Op, wide)
	if name == "" {
		return
	}
	if _, ok := ctx.Index.Implementations.Get(name); !ok {
		ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EStringCompare, b.Range(),
			"string comparison requires %s, which is not defined", name))
	}
}

func stringCompareName(op ast.BinaryOperator, wide bool) string {
	prefix := "STRING"
	if wide {
		prefix = "WSTRING"
	}
	switch op {
	case ast.OpEq, ast.OpNotEq:
		return prefix + "_EQUAL"
	case ast.OpLess, ast.OpLessEq:
		return prefix + "_LESS"
	case ast.OpGreater, ast.OpGreaterEq:
		return prefix + "_GREATER"
	default:
		return ""
	}
}

// validateImplementsTarget implements spec §4.5's Interface
// conformance rule's kind restriction: "Classes and Function_Blocks
// may implement interfaces; Programs and Functions may not."
func (v *Validator) validateImplementsTarget(ctx *Context, p *ast.Pou) {
	if len(p.Implements) == 0 {
		return
	}
	if p.Kind != ast.PouClass && p.Kind != ast.PouFunctionBlock {
		ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EInterfaceMismatch, p.Range(),
			"%s %q cannot implement an interface", p.Kind, p.Name))
	}
}

// validateInterfaceConformance implements spec §4.5's Interface
// conformance rule: every Method an interface declares must be
// implemented, with matching return type and parameter list, by
// every Class/Function_Block that names it in Implements.
func (v *Validator) validateInterfaceConformance(ctx *Context) {
	methodsByOwner := map[string][]*ast.Pou{}
	for _, m := range ctx.Unit.Pous {
		if m.Kind == ast.PouMethod {
			key := ident.Normalize(m.Parent)
			methodsByOwner[key] = append(methodsByOwner[key], m)
		}
	}

	for _, p := range ctx.Unit.Pous {
		if p.Kind != ast.PouClass && p.Kind != ast.PouFunctionBlock {
			continue
		}
		for _, ifaceName := range p.Implements {
			ifaceMethods := methodsByOwner[ident.Normalize(ifaceName)]
			implMethods := methodsByOwner[ident.Normalize(p.Name)]
			for _, required := range ifaceMethods {
				impl := findMethodByName(implMethods, required.Name)
				if impl == nil {
					ctx.Diags.Report(diagnostics.NewDiagnostic(diagnostics.EInterfaceMismatch, p.Range(),
						"%s %q does not implement method %q required by interface %s", p.Kind, p.Name, required.Name, ifaceName))
					continue
				}
				v.compareMethodSignature(ctx, p.Name, ifaceName, required, impl)
			}
		}
	}
}

func findMethodByName(methods []*ast.Pou, name string) *ast.Pou {
	for _, m := range methods {
		if ident.Normalize(m.Name) == ident.Normalize(name) {
			return m
		}
	}
	return nil
}

// compareMethodSignature reports the finest-grained mismatch it finds
// between an interface method declaration and its implementation,
// using the structured InterfaceMismatch detail so a renderer can
// expand exactly which facet (return type, parameter count, names,
// types) disagreed.
func (v *Validator) compareMethodSignature(ctx *Context, implName, ifaceName string, required, impl *ast.Pou) {
	detail := diagnostics.InterfaceMismatch{Method: required.Name}
	mismatched := false

	requiredReturn := typeExprName(required.ReturnType)
	implReturn := typeExprName(impl.ReturnType)
	if requiredReturn != implReturn {
		detail.ReturnType = true
		mismatched = true
	}

	requiredParams := flattenParams(required.VariableBlocks)
	implParams := flattenParams(impl.VariableBlocks)
	if len(requiredParams) != len(implParams) {
		mismatched = true
	} else {
		for i, rp := range requiredParams {
			ip := implParams[i]
			if rp.Name != ip.Name {
				detail.ParameterName = true
				mismatched = true
			}
			if rp.typeName != ip.typeName || rp.Block != ip.Block {
				detail.ParameterType = true
				mismatched = true
			}
		}
	}

	if !mismatched {
		return
	}
	d := diagnostics.NewDiagnostic(diagnostics.EInterfaceMismatch, impl.Range(),
		"%s.%s does not match the signature required by interface %s", implName, required.Name, ifaceName)
	d.Detail = detail
	ctx.Diags.Report(d)
}

type paramSig struct {
	Name     string
	Block    ast.VariableBlockKind
	typeName string
}

func flattenParams(blocks []*ast.VariableBlock) []paramSig {
	var out []paramSig
	for _, kind := range []ast.VariableBlockKind{ast.BlockInput, ast.BlockInOut, ast.BlockOutput} {
		for _, block := range blocks {
			if block.Kind != kind {
				continue
			}
			for _, decl := range block.Variables {
				out = append(out, paramSig{Name: decl.Name, Block: kind, typeName: typeExprName(decl.Type)})
			}
		}
	}
	return out
}

// typeExprName renders a TypeExpr's name for signature comparison.
// Only NamedType is handled since Method signatures in this corpus
// never declare an inline struct/array/enum return or parameter type.
func typeExprName(t ast.TypeExpr) string {
	if t == nil {
		return ""
	}
	if named, ok := t.(*ast.NamedType); ok {
		return ident.Normalize(named.Name)
	}
	return ""
}

// validateRecursion implements spec §4.5's Recursion rule: the
// dependency graph over Struct fields, Array-of, and FB/Class
// composition/inheritance must be acyclic except through pointer
// edges (POINTER/REF_TO/REFERENCE/VAR_IN_OUT never count as an edge).
// Interface inheritance (Super-chains among Interface POUs) has its
// own acyclic check below.
func (v *Validator) validateRecursion(ctx *Context) {
	visited := map[string]int{} // 0=unvisited, 1=in-progress, 2=done
	var path []string

	var visit func(name string) bool
	visit = func(name string) bool {
		key := ident.Normalize(name)
		switch visited[key] {
		case 2:
			return false
		case 1:
			v.reportCycle(ctx, path, name)
			return true
		}
		visited[key] = 1
		path = append(path, name)

		for _, dep := range structuralDeps(ctx, name) {
			if visit(dep) {
				visited[key] = 2
				path = path[:len(path)-1]
				return false
			}
		}

		visited[key] = 2
		path = path[:len(path)-1]
		return false
	}

	ctx.Index.Types.Range(func(name string, _ types.Type) bool {
		visit(name)
		return true
	})

	v.validateInterfaceInheritance(ctx)
}

func (v *Validator) reportCycle(ctx *Context, path []string, closingName string) {
	start := 0
	for i, n := range path {
		if ident.Normalize(n) == ident.Normalize(closingName) {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, path[start:]...), closingName)
	loc := ast.Range{}
	if p, ok := ctx.Index.Pous.Get(path[start]); ok {
		loc = p.Range()
	}
	d := diagnostics.NewDiagnostic(diagnostics.ERecursiveType, loc,
		"recursive data structure: %v", cycle)
	d.Detail = diagnostics.RecursiveCycle{Path: cycle}
	ctx.Diags.Report(d)
}

// structuralDeps returns the names of every type name's non-pointer
// structural dependency: a struct's member types, a stateful POU's
// member types (Index.MembersOf, same as a struct), an array's inner
// type, and a stateful POU's Super.
func structuralDeps(ctx *Context, name string) []string {
	var deps []string
	t, ok := ctx.Index.Types.Get(name)
	if !ok {
		return nil
	}
	switch st := t.(type) {
	case *types.Struct:
		for _, m := range st.Members {
			if dep, ok := nonPointerDepName(m.Type); ok {
				deps = append(deps, dep)
			}
		}
	case *types.Array:
		if dep, ok := nonPointerDepName(st.Inner); ok {
			deps = append(deps, dep)
		}
	}

	if p, ok := ctx.Index.Pous.Get(name); ok && p.Kind.IsStateful() {
		if p.Super != "" {
			deps = append(deps, p.Super)
		}
		ctx.Index.MembersOf(name).Range(func(_ string, entry *index.VariableEntry) bool {
			if dep, ok := nonPointerDepName(entry.Type); ok {
				deps = append(deps, dep)
			}
			return true
		})
	}
	return deps
}

// nonPointerDepName reports the structural dependency name a member
// type contributes, or false if t is a pointer-family type (spec
// §4.5: cycles "through pointer edges" are allowed, since a pointer
// doesn't require its pointee to be laid out yet).
func nonPointerDepName(t types.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	resolved := types.Resolve(t)
	switch resolved.(type) {
	case *types.Pointer:
		return "", false
	}
	switch resolved.Nature() {
	case types.NatureStruct, types.NatureArray:
		return resolved.Name(), true
	default:
		return "", false
	}
}

// validateInterfaceInheritance walks Interface POUs' Super chains,
// which (unlike FB/Class single inheritance reused above) form their
// own acyclic check since an Interface's Super names another
// Interface, not a struct type in Index.Types.
func (v *Validator) validateInterfaceInheritance(ctx *Context) {
	visited := map[string]int{}
	var path []string

	var visit func(name string) bool
	visit = func(name string) bool {
		key := ident.Normalize(name)
		switch visited[key] {
		case 2:
			return false
		case 1:
			v.reportCycle(ctx, path, name)
			return true
		}
		visited[key] = 1
		path = append(path, name)

		if p, ok := ctx.Index.Pous.Get(name); ok && p.Kind == ast.PouInterface && p.Super != "" {
			if visit(p.Super) {
				visited[key] = 2
				path = path[:len(path)-1]
				return false
			}
		}
		visited[key] = 2
		path = path[:len(path)-1]
		return false
	}

	for _, p := range ctx.Unit.Pous {
		if p.Kind == ast.PouInterface {
			visit(p.Name)
		}
	}
}
