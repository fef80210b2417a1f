package regalloc

import (
	"errors"
	"testing"

	"github.com/xyproto/minic/internal/ir"
	"github.com/xyproto/minic/internal/tac"
)

func vreg(i int) ir.Operand { return ir.Operand{Kind: ir.OperandReg, VirtualIndex: i} }

// TestAllocateReusesFreedIndex exercises the allocator's
// len(registerMap)-as-index scheme: once a virtual register's live
// range has passed, the next definition reuses its physical index
// rather than growing the map further.
func TestAllocateReusesFreedIndex(t *testing.T) {
	b := &tac.BasicBlock{
		Label: "entry",
		Instr: []tac.Instr{
			// v1 = 1 + 2; only read here, dead after this position.
			{Op: tac.OpBinExpr, Dst: vreg(1), BinOp: tac.Add, Left: ir.Imm(1), Right: ir.Imm(2)},
			// v2 = v1 + 3; v1's range has already ended by this position.
			{Op: tac.OpBinExpr, Dst: vreg(2), BinOp: tac.Add, Left: vreg(1), Right: ir.Imm(3)},
		},
		LiveRanges: map[int]tac.LiveRange{
			1: {LiveIn: 0, LiveOut: 0},
			2: {LiveIn: 1, LiveOut: 1},
		},
	}
	fn := &tac.Function{Name: "f", Blocks: []*tac.BasicBlock{b}}

	res, err := Allocate(fn, len(PhysicalRegisters))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(res.Spills) != 0 {
		t.Fatalf("unexpected spills: %+v", res.Spills)
	}
	if b.Instr[0].Dst.PhysicalIndex != 0 {
		t.Fatalf("v1 physical index = %d, want 0", b.Instr[0].Dst.PhysicalIndex)
	}
	if b.Instr[1].Left.PhysicalIndex != 0 {
		t.Fatalf("v1's use at position 1 physical index = %d, want 0", b.Instr[1].Left.PhysicalIndex)
	}
	if b.Instr[1].Dst.PhysicalIndex != 0 {
		t.Fatalf("v2 physical index = %d, want 0 (reused from v1's freed slot)", b.Instr[1].Dst.PhysicalIndex)
	}
}

// TestAllocateRecordsSpillForUnmappedRead exercises the non-failing
// spill path: reading a virtual register the map never assigned a
// physical slot to (its defining position is outside this block, or
// was never walked) is recorded as a SpillEvent rather than crashing
// or erroring out the whole allocation.
func TestAllocateRecordsSpillForUnmappedRead(t *testing.T) {
	b := &tac.BasicBlock{
		Label: "entry",
		Instr: []tac.Instr{
			// v2 = v1 + 3; v1 was never defined through this block's Dst path.
			{Op: tac.OpBinExpr, Dst: vreg(2), BinOp: tac.Add, Left: vreg(1), Right: ir.Imm(3)},
		},
		LiveRanges: map[int]tac.LiveRange{
			2: {LiveIn: 0, LiveOut: 0},
		},
	}
	fn := &tac.Function{Name: "f", Blocks: []*tac.BasicBlock{b}}

	res, err := Allocate(fn, len(PhysicalRegisters))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(res.Spills) != 1 {
		t.Fatalf("got %d spills, want 1: %+v", len(res.Spills), res.Spills)
	}
	got := res.Spills[0]
	want := SpillEvent{Block: "entry", Position: 0, VirtualIndex: 1}
	if got != want {
		t.Errorf("spill = %+v, want %+v", got, want)
	}
}

// TestAllocateFailsWhenPoolExhausted exercises AllocationFailedError:
// a block needing more simultaneously live registers than the pool
// provides must fail instead of silently assigning a colliding index.
func TestAllocateFailsWhenPoolExhausted(t *testing.T) {
	b := &tac.BasicBlock{
		Label: "entry",
		Instr: []tac.Instr{
			// v1 and v2 are both still live when v3 is defined: three
			// simultaneous registers, only two slots available.
			{Op: tac.OpBinExpr, Dst: vreg(1), BinOp: tac.Add, Left: ir.Imm(1), Right: ir.Imm(2)},
			{Op: tac.OpBinExpr, Dst: vreg(2), BinOp: tac.Add, Left: vreg(1), Right: ir.Imm(3)},
			{Op: tac.OpBinExpr, Dst: vreg(3), BinOp: tac.Add, Left: vreg(1), Right: vreg(2)},
		},
		LiveRanges: map[int]tac.LiveRange{
			1: {LiveIn: 0, LiveOut: 2},
			2: {LiveIn: 1, LiveOut: 2},
			3: {LiveIn: 2, LiveOut: 2},
		},
	}
	fn := &tac.Function{Name: "f", Blocks: []*tac.BasicBlock{b}}

	_, err := Allocate(fn, 2)
	if err == nil {
		t.Fatal("Allocate: expected an error, got nil")
	}
	var failed *AllocationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("error = %v (%T), want *AllocationFailedError", err, err)
	}
	if failed.Block != "entry" || failed.Available != 2 || failed.Requested != 3 {
		t.Errorf("failed = %+v, want Block=entry Available=2 Requested=3", failed)
	}
}
