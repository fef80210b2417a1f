package liveness

import (
	"testing"

	"github.com/xyproto/minic/internal/frontend"
	"github.com/xyproto/minic/internal/tac"
)

// addCalculus lowers "return 100 + 200 + 300", the fixture the
// reference liveness test itself uses, and checks the same use/def
// cardinalities it asserts: used = [{}, {t1}, {t2}], def = [{t1}, {t2}, {}].
func addCalculus(t *testing.T) *tac.Function {
	t.Helper()
	fn := &frontend.Function{
		Name:   "main",
		Locals: map[string]*frontend.VarInfo{},
		Statements: []frontend.Statement{
			&frontend.ReturnStmt{
				Expr: &frontend.BinaryExpr{
					Op: '+',
					Left: &frontend.BinaryExpr{
						Op:    '+',
						Left:  &frontend.IntLit{Value: 100},
						Right: &frontend.IntLit{Value: 200},
					},
					Right: &frontend.IntLit{Value: 300},
				},
			},
		},
	}
	out, err := tac.Lower(fn)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	return out
}

func TestUseDefCardinality(t *testing.T) {
	fn := addCalculus(t)
	tac.BuildCFG(fn)
	Analyze(fn)

	wantUsed := []int{0, 1, 1}
	wantDef := []int{1, 1, 0}

	b := fn.Blocks[0]
	for i, want := range wantUsed {
		if got := len(b.Flow[i].Use); got != want {
			t.Errorf("position %d: len(Use) = %d, want %d", i, got, want)
		}
	}
	for i, want := range wantDef {
		if got := len(b.Flow[i].Def); got != want {
			t.Errorf("position %d: len(Def) = %d, want %d", i, got, want)
		}
	}
}

func TestLiveRangeExtraction(t *testing.T) {
	fn := addCalculus(t)
	tac.BuildCFG(fn)
	Analyze(fn)

	b := fn.Blocks[0]
	// t1 (def at 0, consumed at 1) should live [0,1]; t2 (def at 1,
	// consumed at 2) should live [1,2].
	t1 := b.Instr[0].Dst.VirtualIndex
	t2 := b.Instr[1].Dst.VirtualIndex

	r1, ok := b.LiveRanges[t1]
	if !ok {
		t.Fatalf("no live range recorded for t1 (vreg %d)", t1)
	}
	if r1.LiveIn != 0 || r1.LiveOut != 1 {
		t.Errorf("t1 live range = %+v, want {0 1}", r1)
	}

	r2, ok := b.LiveRanges[t2]
	if !ok {
		t.Fatalf("no live range recorded for t2 (vreg %d)", t2)
	}
	if r2.LiveIn != 1 || r2.LiveOut != 2 {
		t.Errorf("t2 live range = %+v, want {1 2}", r2)
	}
}
