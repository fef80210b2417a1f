// Package emit renders a selected instruction program (internal/isel)
// to textual x86-64 assembly, in either Intel or AT&T syntax. This is
// the seam between the compiler path (TAC -> IR) and the assembler
// path (text -> object): the compiler always produces text, which
// internal/asmlex and internal/asmparse then re-read, exactly as the
// reference toolchain's own generate/intel.rs does for its compiler
// frontend.
package emit

import (
	"fmt"
	"strings"

	"github.com/xyproto/minic/internal/ir"
	"github.com/xyproto/minic/internal/isel"
)

// Intel renders programs as ".intel_syntax noprefix" assembly: one
// ".global <name>" per function, then each function's label and body.
func Intel(progs []*isel.Program) string {
	var b strings.Builder
	b.WriteString(".intel_syntax noprefix\n")
	for _, p := range progs {
		fmt.Fprintf(&b, ".global %s\n", p.Name)
	}
	for _, p := range progs {
		intelFunction(&b, p)
	}
	return b.String()
}

func intelFunction(b *strings.Builder, p *isel.Program) {
	fmt.Fprintf(b, "%s:\n", p.Name)
	for _, instr := range p.Instrs {
		if instr.Kind == ir.KindLabelMarker {
			fmt.Fprintf(b, "%s:\n", instr.LabelName)
			continue
		}
		fmt.Fprintf(b, "  %s\n", intelLine(instr))
	}
}

func intelLine(instr ir.Instruction) string {
	switch instr.Kind {
	case ir.KindNoOperand:
		return instr.Abstract.String()
	case ir.KindUnary:
		return fmt.Sprintf("%s %s", instr.Abstract, intelOperand(instr.Dst))
	case ir.KindBinary:
		// internal convention is (src, dst); Intel syntax prints (dst, src).
		return fmt.Sprintf("%s %s, %s", instr.Abstract, intelOperand(instr.Dst), intelOperand(instr.Src))
	default:
		return ""
	}
}

func intelOperand(o ir.Operand) string {
	switch o.Kind {
	case ir.OperandReg:
		return o.RegName
	case ir.OperandImm:
		return fmt.Sprintf("%d", o.IntValue)
	case ir.OperandMem:
		return fmt.Sprintf("-%d[%s]", o.MemOffset, o.MemBase)
	case ir.OperandLabel:
		return o.Label
	case ir.OperandAuto:
		return fmt.Sprintf("-%d[rbp]", o.FrameOffset)
	default:
		return "<invalid>"
	}
}

// attSuffixed names the mnemonics the AT&T dialect suffixes with the
// operand-width letter; this toolchain only ever emits 64-bit forms.
var attSuffixed = map[ir.AbstractOp]string{
	ir.OpADD:  "addq",
	ir.OpSUB:  "subq",
	ir.OpMOV:  "movq",
	ir.OpIMUL: "imulq",
	ir.OpIDIV: "idivq",
	ir.OpCMP:  "cmpq",
}

// ATT renders programs as AT&T-syntax assembly: operand order
// reversed from Intel's printed form (but identical to this package's
// internal Src/Dst storage order), registers %-prefixed, immediates
// $-prefixed, and CQO spelled the traditional "cltd" mnemonic.
func ATT(progs []*isel.Program) string {
	var b strings.Builder
	for _, p := range progs {
		fmt.Fprintf(&b, ".global %s\n", p.Name)
	}
	for _, p := range progs {
		attFunction(&b, p)
	}
	return b.String()
}

func attFunction(b *strings.Builder, p *isel.Program) {
	fmt.Fprintf(b, "%s:\n", p.Name)
	for _, instr := range p.Instrs {
		if instr.Kind == ir.KindLabelMarker {
			fmt.Fprintf(b, "%s:\n", instr.LabelName)
			continue
		}
		fmt.Fprintf(b, "  %s\n", attLine(instr))
	}
}

func attLine(instr ir.Instruction) string {
	mnemonic := instr.Abstract.String()
	if instr.Abstract == ir.OpCQO {
		mnemonic = "cltd"
	} else if suffixed, ok := attSuffixed[instr.Abstract]; ok {
		mnemonic = suffixed
	}
	switch instr.Kind {
	case ir.KindNoOperand:
		return mnemonic
	case ir.KindUnary:
		return fmt.Sprintf("%s %s", mnemonic, attOperand(instr.Dst))
	case ir.KindBinary:
		return fmt.Sprintf("%s %s, %s", mnemonic, attOperand(instr.Src), attOperand(instr.Dst))
	default:
		return ""
	}
}

func attOperand(o ir.Operand) string {
	switch o.Kind {
	case ir.OperandReg:
		return "%" + o.RegName
	case ir.OperandImm:
		return fmt.Sprintf("$%d", o.IntValue)
	case ir.OperandMem:
		return fmt.Sprintf("-%d(%%%s)", o.MemOffset, o.MemBase)
	case ir.OperandLabel:
		return o.Label
	case ir.OperandAuto:
		return fmt.Sprintf("-%d(%%rbp)", o.FrameOffset)
	default:
		return "<invalid>"
	}
}
