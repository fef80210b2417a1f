// Package tac builds per-function basic blocks of three-address code
// from a frontend.Function and computes their control-flow graph.
// Liveness (internal/liveness), register allocation (internal/regalloc),
// and instruction selection (internal/isel) all operate on the blocks
// this package produces.
package tac

import "github.com/xyproto/minic/internal/ir"

// Op is a TAC instruction's tag.
type Op int

const (
	OpBinExpr Op = iota
	OpUnExpr
	OpAssign
	OpReturn
	OpLabel
	OpJump
	OpJumpZero
)

// BinOperator enumerates the binary operators TAC supports.
type BinOperator byte

const (
	Add BinOperator = '+'
	Sub BinOperator = '-'
	Mul BinOperator = '*'
	Div BinOperator = '/'
)

// Instr is one three-address-code instruction. It carries no location
// metadata beyond its position inside its basic block (spec.md §3).
type Instr struct {
	Op Op

	// OpBinExpr
	Dst   ir.Operand
	BinOp BinOperator
	Left  ir.Operand
	Right ir.Operand

	// OpUnExpr (only '-' is defined)
	Inner ir.Operand

	// OpAssign
	Lvalue ir.Operand
	Rvalue ir.Operand

	// OpReturn
	Ret ir.Operand

	// OpLabel, OpJump, OpJumpZero
	Name   string
	Target string
	Cond   ir.Operand
}

// LiveRange is the positional interval (spec.md's "live-in index,
// live-out index") over which a virtual register holds a value that
// may still be read.
type LiveRange struct {
	LiveIn  int
	LiveOut int
}

// FlowRecord is the per-TAC-position control-flow bookkeeping a basic
// block carries: successor/predecessor position indices within the
// block, and the virtual registers used/defined at that position.
type FlowRecord struct {
	Succ []int
	Pred []int
	Use  map[int]bool
	Def  map[int]bool
}

// BasicBlock holds one function's entire flat TAC instruction list.
// Labels, jumps, and zero-compare jumps live inline as ordinary
// entries rather than splitting the list into several blocks — internal
// control flow within a function is resolved positionally by BuildCFG,
// not by a multi-block graph.
type BasicBlock struct {
	Label string
	Instr []Instr

	// LiveRanges maps a virtual register to its live-in/live-out
	// position pair, populated by internal/liveness.
	LiveRanges map[int]LiveRange

	// Flow holds one FlowRecord per TAC position, populated by
	// BuildCFG.
	Flow []FlowRecord
}

// Function is a lowered function ready for liveness, register
// allocation, and instruction selection. Blocks holds exactly one
// entry — the function's single basic block — mirroring the reference
// toolchain's entry-block-only TAC shape; the slice shape is kept
// (rather than a bare *BasicBlock field) so downstream packages can
// range over it uniformly.
type Function struct {
	Name      string
	Blocks    []*BasicBlock
	Params    []string
	Locals    map[string]VarInfo
	FrameSize int // bytes, rounded up to 8
}

// VarInfo mirrors frontend.VarInfo with the frame offset the mid-end
// assigns during lowering.
type VarInfo struct {
	Type        string
	Size        int
	FrameOffset int
}

// BlockByLabel finds a function's basic block by its (function-unique)
// label.
func (f *Function) BlockByLabel(label string) (*BasicBlock, int) {
	for i, b := range f.Blocks {
		if b.Label == label {
			return b, i
		}
	}
	return nil, -1
}
