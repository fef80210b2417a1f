package tac

// BuildCFG computes the per-position control-flow bookkeeping for
// every basic block of fn: successor/predecessor position sets within
// the block's own instruction list, and the (empty, for non-register-
// touching kinds) use/def sets internal/liveness fills in next.
//
// Edge rules (spec.md §4.I): every instruction gets a fallthrough
// successor at position+1 if one exists, except OpJump, which only
// gets the edge to its target label's position. OpJumpZero gets both
// the fallthrough edge and the edge to its target. The textual
// predecessor edge (position-1 -> position) is suppressed when the
// preceding instruction was an unconditional jump, since control can
// only reach this position via an explicit jump in that case.
func BuildCFG(fn *Function) {
	for _, b := range fn.Blocks {
		buildCFGForBlock(b)
	}
}

func buildCFGForBlock(b *BasicBlock) {
	n := len(b.Instr)
	flow := make([]FlowRecord, n)
	for i := range flow {
		flow[i] = FlowRecord{Use: map[int]bool{}, Def: map[int]bool{}}
	}

	labelPos := make(map[string]int, n)
	for i, instr := range b.Instr {
		if instr.Op == OpLabel {
			labelPos[instr.Name] = i
		}
	}

	addSucc := func(from, to int) {
		if to < n {
			flow[from].Succ = appendUnique(flow[from].Succ, to)
		}
	}
	addPred := func(at, from int) {
		if at != 0 {
			flow[at].Pred = appendUnique(flow[at].Pred, from)
		}
	}

	prevWasGoto := false
	for i, instr := range b.Instr {
		switch instr.Op {
		case OpJump:
			if i != 0 && !prevWasGoto {
				addPred(i, i-1)
			}
			if target, ok := labelPos[instr.Target]; ok {
				addSucc(i, target)
				addPred(target, i)
			}
			prevWasGoto = true
			continue
		case OpJumpZero:
			addSucc(i, i+1)
			if i != 0 && !prevWasGoto {
				addPred(i, i-1)
			}
			if target, ok := labelPos[instr.Target]; ok {
				addSucc(i, target)
				addPred(target, i)
			}
		default:
			addSucc(i, i+1)
			if i != 0 && !prevWasGoto {
				addPred(i, i-1)
			}
		}
		prevWasGoto = false
	}

	b.Flow = flow
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}
