// Package instranalyze resolves abstract x86-64 instructions -
// produced either by instruction selection (internal/isel) or by the
// assembly parser (internal/asmparse) - into the concrete, encoder-
// ready form: the assembler path's component E.
package instranalyze

import (
	"fmt"

	"github.com/xyproto/minic/internal/asmlex"
	"github.com/xyproto/minic/internal/asmparse"
	"github.com/xyproto/minic/internal/ir"
)

var mnemonicToAbstract = map[asmlex.Kind]ir.AbstractOp{
	asmlex.ADD:     ir.OpADD,
	asmlex.SUB:     ir.OpSUB,
	asmlex.MOV:     ir.OpMOV,
	asmlex.IMUL:    ir.OpIMUL,
	asmlex.IDIV:    ir.OpIDIV,
	asmlex.CMP:     ir.OpCMP,
	asmlex.CQO:     ir.OpCQO,
	asmlex.CALL:    ir.OpCALL,
	asmlex.JMP:     ir.OpJMP,
	asmlex.JZ:      ir.OpJZ,
	asmlex.RET:     ir.OpRET,
	asmlex.SYSCALL: ir.OpSYSCALL,
	asmlex.PUSH:    ir.OpPUSH,
	asmlex.POP:     ir.OpPOP,
	asmlex.NEG:     ir.OpNEG,
}

// FromParsed converts one parser-produced instruction into the shared
// ir.Instruction vocabulary, leaving every analyzer-derived field
// (Size, RegNum, Expanded, Concrete, ImmediateValue, StoreOffset)
// zero for Analyze to fill in.
func FromParsed(in asmparse.Instruction) (ir.Instruction, error) {
	abstract, ok := mnemonicToAbstract[in.Mnemonic]
	if !ok {
		return ir.Instruction{}, fmt.Errorf("instranalyze: unrecognized mnemonic token %v", in.Mnemonic)
	}

	switch in.Shape {
	case asmparse.ShapeNoOperand:
		return ir.NoOperand(abstract), nil
	case asmparse.ShapeUnary:
		dst, err := convertOperand(in.Dst)
		if err != nil {
			return ir.Instruction{}, err
		}
		return ir.Unary(abstract, dst), nil
	case asmparse.ShapeBinary:
		src, err := convertOperand(in.Src)
		if err != nil {
			return ir.Instruction{}, err
		}
		dst, err := convertOperand(in.Dst)
		if err != nil {
			return ir.Instruction{}, err
		}
		return ir.Binary(abstract, src, dst), nil
	default:
		return ir.Instruction{}, fmt.Errorf("instranalyze: unrecognized instruction shape %v", in.Shape)
	}
}

func convertOperand(o asmparse.Operand) (ir.Operand, error) {
	switch o.Kind {
	case asmparse.OperandInt:
		return ir.Imm(o.IntValue), nil
	case asmparse.OperandReg:
		return ir.Reg(o.RegName), nil
	case asmparse.OperandLabel:
		return ir.Lbl(o.Label), nil
	case asmparse.OperandMem:
		return ir.Mem(int32(o.MemOffset), o.MemBase), nil
	default:
		return ir.Operand{}, fmt.Errorf("instranalyze: unrecognized operand kind %v", o.Kind)
	}
}
