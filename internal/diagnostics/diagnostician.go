package diagnostics

import (
	"sort"

	"github.com/go-stc/stc/internal/ast"
	"github.com/maruel/natural"
)

// Diagnostician accumulates diagnostics across a pipeline run; every
// phase here shares the one accumulator instance instead of each pass
// keeping its own slice.
type Diagnostician struct {
	file  string
	items []*Diagnostic
}

// NewDiagnostician creates an accumulator for diagnostics raised while
// compiling the named source file.
func NewDiagnostician(file string) *Diagnostician {
	return &Diagnostician{file: file}
}

// File returns the source file name this accumulator was created for.
func (d *Diagnostician) File() string { return d.file }

// Report records a diagnostic.
func (d *Diagnostician) Report(diag *Diagnostic) {
	d.items = append(d.items, diag)
}

// Errorf is a convenience for the common case of reporting a plain
// error-severity diagnostic at a given source range.
func (d *Diagnostician) Errorf(code string, primary ast.Range, format string, args ...any) {
	d.Report(NewDiagnostic(code, primary, format, args...))
}

// HasErrors reports whether any error-severity diagnostic was reported.
// Phases consult this to gate the pipeline's early-exit, mirroring the
// teacher's ctx.HasCriticalErrors() check.
func (d *Diagnostician) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == SeverityError {
			return true
		}
	}
	return false
}

// All returns every reported diagnostic, sorted by line then by a
// natural ordering of the symbol it concerns (so __init_FB2 sorts
// before __init_FB10), per SPEC_FULL §4.7's maruel/natural wiring.
func (d *Diagnostician) All() []*Diagnostic {
	out := make([]*Diagnostic, len(d.items))
	copy(out, d.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Primary.Start.Line != out[j].Primary.Start.Line {
			return out[i].Primary.Start.Line < out[j].Primary.Start.Line
		}
		return natural.Less(sortKey(out[i]), sortKey(out[j]))
	})
	return out
}

// sortKey picks the symbol a diagnostic is about, falling back to its
// code for diagnostics with no symbol attached (e.g. lexer/parser
// errors), so synthesized names like __init_FB2/__init_FB10 still sort
// in natural numeric order.
func sortKey(d *Diagnostic) string {
	if d.Symbol != "" {
		return d.Symbol
	}
	return d.Code
}
