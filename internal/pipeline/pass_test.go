package pipeline_test

import (
	"testing"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/diagnostics"
	"github.com/go-stc/stc/internal/pipeline"
)

type fakeContext struct {
	diags *diagnostics.Diagnostician
	order []string
}

func (c *fakeContext) Diagnostics() *diagnostics.Diagnostician { return c.diags }

type recordingPass struct {
	name   string
	fails  bool
}

func (p *recordingPass) Name() string { return p.name }

func (p *recordingPass) Run(ctx *fakeContext) error {
	ctx.order = append(ctx.order, p.name)
	if p.fails {
		ctx.diags.Report(diagnostics.NewDiagnostic(diagnostics.EUnknownType, ast.Range{}, "boom"))
	}
	return nil
}

func TestManagerStopsAfterErrorSeverityDiagnostic(t *testing.T) {
	ctx := &fakeContext{diags: diagnostics.NewDiagnostician("test.st")}
	mgr := pipeline.NewManager[*fakeContext](nil,
		&recordingPass{name: "first", fails: true},
		&recordingPass{name: "second"},
	)
	if err := mgr.RunAll(ctx); err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(ctx.order) != 1 || ctx.order[0] != "first" {
		t.Fatalf("expected only the first pass to run, got %v", ctx.order)
	}
}

func TestManagerRunsAllPassesWithoutErrors(t *testing.T) {
	ctx := &fakeContext{diags: diagnostics.NewDiagnostician("test.st")}
	mgr := pipeline.NewManager[*fakeContext](nil,
		&recordingPass{name: "first"},
		&recordingPass{name: "second"},
	)
	if err := mgr.RunAll(ctx); err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(ctx.order) != 2 {
		t.Fatalf("expected both passes to run, got %v", ctx.order)
	}
}
