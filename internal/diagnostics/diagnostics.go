// Package diagnostics is the compiler's single error-reporting surface:
// every phase from the Indexer through the Validator reports through a
// Diagnostician rather than returning a bare Go error, so a run keeps
// going after a recoverable problem and the caller sees every finding
// at once (spec §7).
package diagnostics

import (
	"fmt"

	"github.com/go-stc/stc/internal/ast"
)

// Severity classifies a Diagnostic for filtering and exit-code purposes.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Stable diagnostic codes. Ranges follow the phase that raises them:
// E000 Lexer/Parser, E0xx Indexer, E02x Constant Evaluator, E03x-E07x
// Annotator, E08x-E10x Lowerings, E11x-E15x Validator.
const (
	EParseError = "E000"

	EDuplicateSymbol = "E001"
	EUnknownType     = "E002"

	EConstOverflow     = "E021"
	EConstUnresolvable = "E022"

	EUndefinedVariable = "E031"
	EUndefinedFunction = "E032"
	EUndefinedType     = "E033"
	ETypeMismatch      = "E034"

	EAssignability     = "E111"
	EInterfaceMismatch = "E112"
	ECallArity         = "E113"
	ECaseRange         = "E114"
	ERecursiveType     = "E115"
	EArrayIndex        = "E116"
	EBitAccess         = "E117"
	EStringCompare     = "E118"
	EAddressOf         = "E119"
	EEnumLiteral       = "E120"
	EPragmaLocation    = "E121"

	WImplicitDowncast = "W111"
)

// Detail is implemented by structured per-code payloads that a renderer
// can expand into child diagnostics, e.g. InterfaceMismatch's per-field
// breakdown (SPEC_FULL §4.8).
type Detail interface {
	isDetail()
}

// InterfaceMismatch details which aspect of a method signature failed
// to match the interface it's meant to implement.
type InterfaceMismatch struct {
	Method        string
	ReturnType    bool
	ParameterName bool
	ParameterType bool
	DeclaredType  bool
}

func (InterfaceMismatch) isDetail() {}

// RecursiveCycle carries the ordered type-name path of a recursive
// data-structure cycle, e.g. ["A", "B", "A"]; member names are not
// included.
type RecursiveCycle struct {
	Path []string
}

func (RecursiveCycle) isDetail() {}

// Diagnostic is one reported finding: a severity, a stable code, a
// human message, the primary source range it concerns, and optional
// secondary ranges for "see also" context.
type Diagnostic struct {
	Severity  Severity
	Code      string
	Message   string
	Primary   ast.Range
	Secondary []ast.Range
	Symbol    string // the POU/type/member name the diagnostic is about, for natural-sort ordering
	Detail    Detail
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Code, d.Severity, d.Message)
}

// Combined groups a parent diagnostic with child diagnostics that each
// describe one facet of it.
type Combined struct {
	Parent   *Diagnostic
	Children []*Diagnostic
}

func (c *Combined) Error() string {
	return c.Parent.Error()
}

// NewDiagnostic builds an error-severity Diagnostic.
func NewDiagnostic(code string, primary ast.Range, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Primary:  primary,
	}
}

// NewWarning builds a warning-severity Diagnostic.
func NewWarning(code string, primary ast.Range, format string, args ...any) *Diagnostic {
	d := NewDiagnostic(code, primary, format, args...)
	d.Severity = SeverityWarning
	return d
}

// WithSymbol attaches the symbol name used for natural-sort ordering
// and returns the receiver for chaining.
func (d *Diagnostic) WithSymbol(name string) *Diagnostic {
	d.Symbol = name
	return d
}

// WithSecondary appends a secondary "see also" range.
func (d *Diagnostic) WithSecondary(r ast.Range) *Diagnostic {
	d.Secondary = append(d.Secondary, r)
	return d
}
