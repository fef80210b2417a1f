// Package regalloc assigns physical registers to the virtual
// registers internal/tac's lowering produced, using the live ranges
// internal/liveness computed. The allocator is linear-scan: a
// virtual register is assigned the current number of mapped registers
// as its physical index the first time it is defined, and released
// once its live range's LiveOut index has passed.
package regalloc

import "github.com/xyproto/minic/internal/tac"

// PhysicalRegisters is the allocation pool, in assignment order. It
// excludes rsp/rbp (frame management) and starts from the six
// argument-passing registers, then r10-r15, then rax and rbx.
var PhysicalRegisters = []string{
	"rdi", "rsi", "rdx", "rcx",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"rax", "rbx",
}

// SpillEvent records a virtual register the allocator could not find
// a live mapping for at the point it was read — spilling to the stack
// is not implemented (spec.md's Non-goals), so this is surfaced for
// logging only and does not fail the allocation by itself.
type SpillEvent struct {
	Block        string
	Position     int
	VirtualIndex int
}

// Result lists the spill events observed during allocation; the
// mapping itself is written into each operand's PhysicalIndex.
type Result struct {
	Spills []SpillEvent
}

// AllocationFailedError reports that a block needed more
// simultaneously live registers than the pool provides.
type AllocationFailedError struct {
	Block     string
	Requested int
	Available int
}

func (e *AllocationFailedError) Error() string {
	return "regalloc: block " + e.Block + " needs more than the available physical registers"
}

// Allocate walks every block of fn in instruction order, assigning
// each virtual register's Operand.PhysicalIndex the first time it is
// defined and releasing the mapping once the register's live range
// has passed, exactly as the reference allocator's
// register_allocation_for_bb does. It returns an error the first time
// a block would need more live registers than available is allowed.
func Allocate(fn *tac.Function, available int) (*Result, error) {
	res := &Result{}
	for _, b := range fn.Blocks {
		if err := allocateBlock(b, available, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func allocateBlock(b *tac.BasicBlock, available int, res *Result) error {
	registerMap := map[int]int{} // virtual index -> physical index

	reduce := func(pos int) {
		for virt, rng := range b.LiveRanges {
			if _, ok := registerMap[virt]; ok && rng.LiveOut < pos {
				delete(registerMap, virt)
			}
		}
	}

	for pos := range b.Instr {
		instr := &b.Instr[pos]
		switch instr.Op {
		case tac.OpBinExpr:
			if instr.Left.IsRegister() {
				if phys, ok := registerMap[instr.Left.VirtualIndex]; ok {
					instr.Left.PhysicalIndex = phys
				} else {
					res.Spills = append(res.Spills, SpillEvent{Block: b.Label, Position: pos, VirtualIndex: instr.Left.VirtualIndex})
				}
			}
			reduce(pos)
			if instr.Right.IsRegister() {
				if phys, ok := registerMap[instr.Right.VirtualIndex]; ok {
					instr.Right.PhysicalIndex = phys
				} else {
					res.Spills = append(res.Spills, SpillEvent{Block: b.Label, Position: pos, VirtualIndex: instr.Right.VirtualIndex})
				}
			}
			reduce(pos)
			instr.Dst.PhysicalIndex = len(registerMap)
			registerMap[instr.Dst.VirtualIndex] = instr.Dst.PhysicalIndex
		case tac.OpUnExpr:
			if instr.Inner.IsRegister() {
				if phys, ok := registerMap[instr.Inner.VirtualIndex]; ok {
					instr.Inner.PhysicalIndex = phys
				} else {
					res.Spills = append(res.Spills, SpillEvent{Block: b.Label, Position: pos, VirtualIndex: instr.Inner.VirtualIndex})
				}
			}
			reduce(pos)
			instr.Dst.PhysicalIndex = len(registerMap)
			registerMap[instr.Dst.VirtualIndex] = instr.Dst.PhysicalIndex
		case tac.OpAssign:
			if instr.Rvalue.IsRegister() {
				if phys, ok := registerMap[instr.Rvalue.VirtualIndex]; ok {
					instr.Rvalue.PhysicalIndex = phys
				} else {
					res.Spills = append(res.Spills, SpillEvent{Block: b.Label, Position: pos, VirtualIndex: instr.Rvalue.VirtualIndex})
				}
			}
		case tac.OpJumpZero:
			if instr.Cond.IsRegister() {
				if phys, ok := registerMap[instr.Cond.VirtualIndex]; ok {
					instr.Cond.PhysicalIndex = phys
				} else {
					res.Spills = append(res.Spills, SpillEvent{Block: b.Label, Position: pos, VirtualIndex: instr.Cond.VirtualIndex})
				}
			}
		case tac.OpReturn:
			if instr.Ret.IsRegister() {
				if phys, ok := registerMap[instr.Ret.VirtualIndex]; ok {
					instr.Ret.PhysicalIndex = phys
				} else {
					res.Spills = append(res.Spills, SpillEvent{Block: b.Label, Position: pos, VirtualIndex: instr.Ret.VirtualIndex})
				}
			}
		}

		reduce(pos)
		if len(registerMap) > available {
			return &AllocationFailedError{Block: b.Label, Requested: len(registerMap), Available: available}
		}
	}
	return nil
}
