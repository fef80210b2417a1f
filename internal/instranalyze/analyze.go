package instranalyze

import "github.com/xyproto/minic/internal/ir"

// Analyze resolves size, register encoding, and concrete opcode for
// every instruction in instrs, in place, and returns the same slice.
// Label markers are left untouched; they carry no operands.
func Analyze(instrs []ir.Instruction) []ir.Instruction {
	for i := range instrs {
		if instrs[i].Kind == ir.KindLabelMarker {
			continue
		}
		resolve(&instrs[i])
	}
	return instrs
}

func resolve(in *ir.Instruction) {
	in.Size = operandSize(in.Dst, in.Kind)

	if in.Kind == ir.KindBinary {
		resolveRegField(&in.Src, &in.SrcRegNum, &in.SrcExpanded)
	}
	resolveRegField(&in.Dst, &in.DstRegNum, &in.DstExpanded)

	if in.Kind == ir.KindBinary && in.Src.Kind == ir.OperandImm {
		in.ImmediateValue = in.Src.IntValue
	}

	in.StoreOffset = memoryOffset(in.Dst)
	if in.StoreOffset == 0 && in.Kind == ir.KindBinary {
		in.StoreOffset = memoryOffset(in.Src)
	}

	in.Concrete = concreteOpcode(*in)
}

// operandSize derives the operand-size tag from the destination: the
// sole operand for unary forms, the destination for binary forms
// (spec.md §4.E.1). Memory operands only ever appear at width 64 in
// this toolchain.
func operandSize(dst ir.Operand, kind ir.InstrKind) ir.OperandSize {
	if kind != ir.KindBinary && kind != ir.KindUnary {
		return ir.SizeUnknown
	}
	switch dst.Kind {
	case ir.OperandReg:
		return ir.RegisterSize(dst.RegName)
	case ir.OperandMem, ir.OperandAuto:
		return ir.Size64
	default:
		return ir.SizeUnknown
	}
}

func resolveRegField(o *ir.Operand, num *int, expanded *bool) {
	if o.Kind != ir.OperandReg {
		return
	}
	n, exp := ir.RegisterNumber(o.RegName)
	o.RegNum, o.Expanded = n, exp
	*num, *expanded = n, exp
}

func memoryOffset(o ir.Operand) int32 {
	switch o.Kind {
	case ir.OperandMem:
		return o.MemOffset
	case ir.OperandAuto:
		return int32(o.FrameOffset)
	default:
		return 0
	}
}

// concreteOpcode implements spec.md §4.E.3's (size, src-kind, dst-kind)
// specialization table. Combinations it does not name (non-64-bit
// operands, unmatched kind pairs) leave the abstract mnemonic
// unresolved, per the spec's own "leave the abstract name unchanged"
// clause.
func concreteOpcode(in ir.Instruction) ir.ConcreteOp {
	switch in.Kind {
	case ir.KindNoOperand:
		switch in.Abstract {
		case ir.OpCQO:
			return ir.Cqo
		case ir.OpRET:
			return ir.Ret
		case ir.OpSYSCALL:
			return ir.Syscall
		}
		return ir.ConcreteNone
	case ir.KindUnary:
		switch in.Abstract {
		case ir.OpIDIV:
			return ir.IdivRM64
		case ir.OpNEG:
			return ir.NegRM64
		case ir.OpCALL:
			return ir.CallRM64
		case ir.OpPUSH:
			return ir.PushR64
		case ir.OpPOP:
			return ir.PopR64
		case ir.OpJMP:
			return ir.JmpRel32
		case ir.OpJZ:
			return ir.JzRel32
		}
		return ir.ConcreteNone
	case ir.KindBinary:
		return binaryConcrete(in)
	default:
		return ir.ConcreteNone
	}
}

func binaryConcrete(in ir.Instruction) ir.ConcreteOp {
	if in.Size != ir.Size64 {
		return ir.ConcreteNone
	}
	dstIsOperand := in.Dst.Kind == ir.OperandReg || in.Dst.Kind == ir.OperandMem || in.Dst.Kind == ir.OperandAuto

	switch in.Abstract {
	case ir.OpADD, ir.OpSUB, ir.OpCMP, ir.OpMOV:
		if !dstIsOperand {
			return ir.ConcreteNone
		}
		if in.Abstract == ir.OpMOV && in.Dst.Kind == ir.OperandReg &&
			(in.Src.Kind == ir.OperandMem || in.Src.Kind == ir.OperandAuto) {
			return ir.MovR64RM64
		}
		switch in.Src.Kind {
		case ir.OperandImm:
			switch in.Abstract {
			case ir.OpADD:
				return ir.AddRM64Imm32
			case ir.OpSUB:
				return ir.SubRM64Imm32
			case ir.OpCMP:
				return ir.CmpRM64Imm32
			case ir.OpMOV:
				return ir.MovRM64Imm32
			}
		case ir.OperandReg:
			switch in.Abstract {
			case ir.OpADD:
				return ir.AddRM64R64
			case ir.OpSUB:
				return ir.SubRM64R64
			case ir.OpCMP:
				return ir.CmpRM64R64
			case ir.OpMOV:
				return ir.MovRM64R64
			}
		}
		return ir.ConcreteNone
	case ir.OpIMUL:
		if in.Dst.Kind != ir.OperandReg {
			return ir.ConcreteNone
		}
		switch in.Src.Kind {
		case ir.OperandImm:
			return ir.ImulR64RM64Imm32
		case ir.OperandReg:
			return ir.ImulR64RM64
		}
		return ir.ConcreteNone
	default:
		return ir.ConcreteNone
	}
}
