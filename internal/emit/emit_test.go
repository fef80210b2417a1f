package emit

import (
	"strings"
	"testing"

	"github.com/xyproto/minic/internal/frontend"
	"github.com/xyproto/minic/internal/isel"
	"github.com/xyproto/minic/internal/liveness"
	"github.com/xyproto/minic/internal/regalloc"
	"github.com/xyproto/minic/internal/tac"
)

func selectMain(t *testing.T, fn *frontend.Function) *isel.Program {
	t.Helper()
	lowered, err := tac.Lower(fn)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	tac.BuildCFG(lowered)
	liveness.Analyze(lowered)
	if _, err := regalloc.Allocate(lowered, len(regalloc.PhysicalRegisters)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	prog, err := isel.Select(lowered)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	return prog
}

func TestIntelRendersSpecScenario(t *testing.T) {
	// return 1 + 2, which should read as a mov/add/mov/ret body once
	// rendered, mirroring the literal round-trip scenario's source shape.
	fn := &frontend.Function{
		Name:   "main",
		Locals: map[string]*frontend.VarInfo{},
		Statements: []frontend.Statement{
			&frontend.ReturnStmt{
				Expr: &frontend.BinaryExpr{Op: '+', Left: &frontend.IntLit{Value: 1}, Right: &frontend.IntLit{Value: 2}},
			},
		},
	}
	prog := selectMain(t, fn)
	out := Intel([]*isel.Program{prog})

	if !strings.Contains(out, ".intel_syntax noprefix") {
		t.Error("missing intel syntax directive")
	}
	if !strings.Contains(out, ".global main") {
		t.Error("missing .global main directive")
	}
	if !strings.Contains(out, "main:") {
		t.Error("missing function label")
	}
	if !strings.Contains(out, "push rbp") || !strings.Contains(out, "pop rbp") {
		t.Error("missing prologue/epilogue")
	}
	if !strings.Contains(out, "ret") {
		t.Error("missing ret")
	}
}

func TestATTUsesPercentAndDollarPrefixes(t *testing.T) {
	fn := &frontend.Function{
		Name:   "main",
		Locals: map[string]*frontend.VarInfo{},
		Statements: []frontend.Statement{
			&frontend.ReturnStmt{Expr: &frontend.IntLit{Value: 42}},
		},
	}
	prog := selectMain(t, fn)
	out := ATT([]*isel.Program{prog})

	if !strings.Contains(out, "%rbp") {
		t.Error("AT&T output should reference %rbp")
	}
	if !strings.Contains(out, "$42") {
		t.Error("AT&T output should render the immediate as $42")
	}
	if !strings.Contains(out, "movq") {
		t.Error("AT&T output should suffix mov as movq")
	}
}
