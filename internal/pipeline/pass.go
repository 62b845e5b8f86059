// Package pipeline generalizes a two-type (Pass/PassManager) scheme to
// every phase of the ST compiler core: Indexer, Constant Evaluator,
// Annotator, each Lowering, and the Validator all implement Pass
// against whatever context type their phase needs, rather than one
// PassManager tied to a single *ast.Program.
package pipeline

import "github.com/go-stc/stc/internal/diagnostics"

// Diagnosable is implemented by any phase's context type, so the
// Manager can gate further passes on accumulated errors via an
// early-exit once a pass reports a critical error.
type Diagnosable interface {
	Diagnostics() *diagnostics.Diagnostician
}

// Pass is one phase of the pipeline, parameterized over its context
// type C (e.g. *index.Context, *annotate.Context).
type Pass[C Diagnosable] interface {
	// Name returns the pass name for logging.
	Name() string
	// Run executes the pass. A returned error is a fatal internal
	// failure; semantic problems are reported via ctx.Diagnostics()
	// instead.
	Run(ctx C) error
}

// Manager runs a fixed sequence of passes in order, stopping early if
// a pass reports any error-severity diagnostic.
type Manager[C Diagnosable] struct {
	log    *Logger
	passes []Pass[C]
}

// NewManager creates a Manager that logs through log (nil is fine —
// Logger's methods tolerate a nil receiver) and runs passes in the
// given order.
func NewManager[C Diagnosable](log *Logger, passes ...Pass[C]) *Manager[C] {
	return &Manager[C]{log: log, passes: passes}
}

// RunAll runs every registered pass against ctx, in order, stopping
// after the first pass that leaves ctx.Diagnostics() holding an
// error-severity diagnostic.
func (m *Manager[C]) RunAll(ctx C) error {
	for _, p := range m.passes {
		m.log.Debugf("running pass %q", p.Name())
		if err := p.Run(ctx); err != nil {
			return err
		}
		if ctx.Diagnostics().HasErrors() {
			m.log.Debugf("pass %q reported errors, stopping pipeline", p.Name())
			break
		}
	}
	return nil
}

// Passes returns the registered passes, in execution order.
func (m *Manager[C]) Passes() []Pass[C] {
	return m.passes
}
