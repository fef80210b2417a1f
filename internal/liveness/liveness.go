// Package liveness computes, per basic block, the virtual registers
// live at each three-address-code position and the first/last
// position over which each one holds a value worth keeping in a
// physical register. internal/regalloc consumes its output directly.
package liveness

import "github.com/xyproto/minic/internal/tac"

// Analyze populates every block's Flow (use/def) and LiveRanges in
// place. Call it after tac.BuildCFG.
func Analyze(fn *tac.Function) {
	for _, b := range fn.Blocks {
		populateUseDef(b)
		liveIn, liveOut := fixpoint(b)
		seedAndExtract(b, liveIn, liveOut)
	}
}

// populateUseDef fills Flow[i].Use/Def from each instruction's
// register-typed operands. The reference toolchain only does this for
// binary-expression and return TAC; this port also covers unary
// expressions, assignment right-hand sides, and zero-compare jump
// conditions, since those can just as well hold a live virtual
// register and the dataflow equations are defined generically over
// "any register def/use at n" regardless of instruction shape.
func populateUseDef(b *tac.BasicBlock) {
	for i, instr := range b.Instr {
		def := b.Flow[i].Def
		use := b.Flow[i].Use
		switch instr.Op {
		case tac.OpBinExpr:
			if instr.Dst.IsRegister() {
				def[instr.Dst.VirtualIndex] = true
			}
			if instr.Left.IsRegister() {
				use[instr.Left.VirtualIndex] = true
			}
			if instr.Right.IsRegister() {
				use[instr.Right.VirtualIndex] = true
			}
		case tac.OpUnExpr:
			if instr.Dst.IsRegister() {
				def[instr.Dst.VirtualIndex] = true
			}
			if instr.Inner.IsRegister() {
				use[instr.Inner.VirtualIndex] = true
			}
		case tac.OpAssign:
			if instr.Rvalue.IsRegister() {
				use[instr.Rvalue.VirtualIndex] = true
			}
		case tac.OpJumpZero:
			if instr.Cond.IsRegister() {
				use[instr.Cond.VirtualIndex] = true
			}
		case tac.OpReturn:
			if instr.Ret.IsRegister() {
				use[instr.Ret.VirtualIndex] = true
			}
		}
	}
}

// fixpoint runs the classic backward dataflow: in[n] = use[n] ∪
// (out[n] − def[n]), out[n] = ∪ in[s] for s ∈ succ[n], sweeping
// positions in reverse each pass until a full pass changes nothing.
func fixpoint(b *tac.BasicBlock) (liveIn, liveOut []map[int]bool) {
	n := len(b.Instr)
	liveIn = make([]map[int]bool, n)
	liveOut = make([]map[int]bool, n)
	for i := range liveIn {
		liveIn[i] = map[int]bool{}
		liveOut[i] = map[int]bool{}
	}

	for {
		changed := false
		for k := n - 1; k >= 0; k-- {
			prevIn := cloneSet(liveIn[k])
			prevOut := cloneSet(liveOut[k])

			for s := range setFromSlice(b.Flow[k].Succ) {
				for r := range liveIn[s] {
					liveOut[k][r] = true
				}
			}

			newIn := map[int]bool{}
			for r := range b.Flow[k].Use {
				newIn[r] = true
			}
			for r := range liveOut[k] {
				if !b.Flow[k].Def[r] {
					newIn[r] = true
				}
			}
			liveIn[k] = newIn

			if !setsEqual(prevIn, liveIn[k]) || !setsEqual(prevOut, liveOut[k]) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return liveIn, liveOut
}

// seedAndExtract records a live range for every register def'd
// anywhere in the block: the position at which it first transitions
// live-in-false -> live-out-true, and the position at which it last
// transitions live-in-true -> live-out-false.
func seedAndExtract(b *tac.BasicBlock, liveIn, liveOut []map[int]bool) {
	b.LiveRanges = map[int]tac.LiveRange{}
	seen := map[int]bool{}
	for _, f := range b.Flow {
		for r := range f.Def {
			seen[r] = true
		}
	}
	for r := range seen {
		rng := tac.LiveRange{}
		foundIn := false
		for idx := range b.Instr {
			if !foundIn && !liveIn[idx][r] && liveOut[idx][r] {
				rng.LiveIn = idx
				foundIn = true
			}
			if liveIn[idx][r] && !liveOut[idx][r] {
				rng.LiveOut = idx
			}
		}
		b.LiveRanges[r] = rng
	}
}

func cloneSet(s map[int]bool) map[int]bool {
	c := make(map[int]bool, len(s))
	for k := range s {
		c[k] = true
	}
	return c
}

func setFromSlice(s []int) map[int]bool {
	m := make(map[int]bool, len(s))
	for _, v := range s {
		m[v] = true
	}
	return m
}

func setsEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
