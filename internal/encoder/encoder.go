// Package encoder turns analyzed instructions (internal/instranalyze)
// into x86-64 machine code: the assembler path's component F. Byte
// layouts follow spec.md §4.F's REX/opcode/ModR-M/displacement/
// immediate ordering exactly, including its one deliberate deviation
// from the Intel manual: for the MI encoding family (an immediate
// operand with the destination in r/m), the destination's expanded
// bit is routed to REX.R instead of REX.B. That quirk is preserved
// here rather than corrected, since it is observable, test-relevant
// encoder behavior, not a bug to silently fix.
package encoder

import (
	"fmt"

	"github.com/xyproto/minic/internal/binutil"
	"github.com/xyproto/minic/internal/ir"
)

// Relocation marks a 4-byte little-endian slot in the encoded bytes
// that still needs a symbol's final address patched in (the linker's
// component H does the patching; here it only records where).
type Relocation struct {
	Offset int
	Target string
}

// Symbol holds one assembler symbol's machine code plus the
// relocations its own instructions left behind, padded to a multiple
// of 4 bytes per spec.md §4.F's final step.
type Symbol struct {
	Code        []byte
	Relocations []Relocation
}

// EncodeSymbol emits machine code for one symbol's already-analyzed
// instruction list.
func EncodeSymbol(instrs []ir.Instruction) (*Symbol, error) {
	b := binutil.NewBuilder()
	var relocs []Relocation

	for _, in := range instrs {
		if in.Kind == ir.KindLabelMarker {
			continue
		}
		reloc, err := encodeOne(b, in)
		if err != nil {
			return nil, err
		}
		if reloc != nil {
			relocs = append(relocs, *reloc)
		}
	}

	code := b.Bytes()
	rest := len(code) % 4
	code = append(code, make([]byte, 4-rest)...)
	return &Symbol{Code: code, Relocations: relocs}, nil
}

func encodeOne(b *binutil.Builder, in ir.Instruction) (*Relocation, error) {
	switch in.Concrete {
	case ir.AddRM64Imm32:
		return nil, encodeMI(b, in, 0x81, 0)
	case ir.AddRM64R64:
		return nil, encodeRM(b, in, 0x01)
	case ir.SubRM64Imm32:
		return nil, encodeMI(b, in, 0x81, 5)
	case ir.SubRM64R64:
		return nil, encodeRM(b, in, 0x29)
	case ir.CmpRM64Imm32:
		return nil, encodeMI(b, in, 0x81, 7)
	case ir.CmpRM64R64:
		return nil, encodeRM(b, in, 0x39)
	case ir.MovRM64Imm32:
		return nil, encodeMI(b, in, 0xC7, 0)
	case ir.MovRM64R64:
		return nil, encodeRM(b, in, 0x89)
	case ir.MovR64RM64:
		return nil, encodeLoad(b, in)
	case ir.ImulR64RM64Imm32:
		return nil, encodeImulImm(b, in)
	case ir.ImulR64RM64:
		return nil, encodeImulReg(b, in)
	case ir.IdivRM64:
		return nil, encodeUnaryModRM(b, in, 0xF7, 7)
	case ir.NegRM64:
		return nil, encodeUnaryModRM(b, in, 0xF7, 3)
	case ir.PushR64:
		return nil, encodePlusRD(b, in, 0x50)
	case ir.PopR64:
		return nil, encodePlusRD(b, in, 0x58)
	case ir.Cqo:
		b.WriteByte(0x99)
		return nil, nil
	case ir.Ret:
		b.WriteByte(0xC3)
		return nil, nil
	case ir.Syscall:
		b.WriteByte(0x0F)
		b.WriteByte(0x05)
		return nil, nil
	case ir.CallRM64:
		return encodeCall(b, in)
	case ir.JmpRel32:
		return encodeRel32(b, in, 0xE9, nil)
	case ir.JzRel32:
		return encodeRel32(b, in, 0x0F, []byte{0x84})
	default:
		return nil, fmt.Errorf("encoder: unresolved concrete opcode for abstract %v", in.Abstract)
	}
}

func rex(w, r, bbit bool) byte {
	v := byte(0x40)
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if bbit {
		v |= 0x01
	}
	return v
}

func emitREX(b *binutil.Builder, w, r, bbit bool) {
	if !w && !r && !bbit {
		return
	}
	b.WriteByte(rex(w, r, bbit))
}

func modrm(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | (rm & 7)
}

// rmOperand returns (mod, rm, displacement, hasDisp) for an
// instruction's r/m operand: register-direct (mod=11) or the sole
// memory form this toolchain emits, a negative rbp-relative offset
// (mod=01, one signed displacement byte per spec.md §4.F.4).
func rmOperand(o ir.Operand) (mod, rm byte, disp int8, hasDisp bool) {
	switch o.Kind {
	case ir.OperandReg:
		return 0b11, byte(o.RegNum), 0, false
	case ir.OperandMem:
		baseNum, _ := ir.RegisterNumber(o.MemBase)
		return 0b01, byte(baseNum), int8(-o.MemOffset), true
	case ir.OperandAuto:
		baseNum, _ := ir.RegisterNumber("rbp")
		return 0b01, byte(baseNum), int8(-int32(o.FrameOffset)), true
	default:
		return 0b11, 0, 0, false
	}
}

func rmExpanded(o ir.Operand) bool {
	if o.Kind == ir.OperandReg {
		return o.Expanded
	}
	return false
}

// encodeMI encodes the group-1 immediate-to-r/m form (ADD/SUB/CMP/MOV
// with an immediate source), routing the destination's expanded bit
// to REX.R per this toolchain's documented deviation.
func encodeMI(b *binutil.Builder, in ir.Instruction, opcode byte, regField byte) error {
	mod, rmField, disp, hasDisp := rmOperand(in.Dst)
	emitREX(b, true, rmExpanded(in.Dst), false)
	b.WriteByte(opcode)
	b.WriteByte(modrm(mod, regField, rmField))
	if hasDisp {
		b.WriteByte(byte(disp))
	}
	b.PutI32(int32(in.ImmediateValue))
	return nil
}

// encodeRM encodes the register-to-r/m form (ADD/SUB/CMP/MOV with a
// register source): ModR/M.reg carries the source, ModR/M.rm the
// destination, each routing its own expanded bit to its own REX field
// (the ordinary, undeviated convention).
func encodeRM(b *binutil.Builder, in ir.Instruction, opcode byte) error {
	mod, rmField, disp, hasDisp := rmOperand(in.Dst)
	emitREX(b, true, in.Src.Expanded, rmExpanded(in.Dst))
	b.WriteByte(opcode)
	b.WriteByte(modrm(mod, byte(in.Src.RegNum), rmField))
	if hasDisp {
		b.WriteByte(byte(disp))
	}
	return nil
}

// encodeLoad encodes "MOV r64, r/m64" (a memory or auto-variable
// load): ModR/M.reg carries the destination register, rm carries the
// source memory operand.
func encodeLoad(b *binutil.Builder, in ir.Instruction) error {
	mod, rmField, disp, hasDisp := rmOperand(in.Src)
	emitREX(b, true, in.Dst.Expanded, rmExpanded(in.Src))
	b.WriteByte(0x8B)
	b.WriteByte(modrm(mod, byte(in.Dst.RegNum), rmField))
	if hasDisp {
		b.WriteByte(byte(disp))
	}
	return nil
}

func encodeImulImm(b *binutil.Builder, in ir.Instruction) error {
	mod, rmField, disp, hasDisp := rmOperand(in.Dst)
	emitREX(b, true, in.Dst.Expanded, rmExpanded(in.Dst))
	b.WriteByte(0x69)
	b.WriteByte(modrm(mod, byte(in.Dst.RegNum), rmField))
	if hasDisp {
		b.WriteByte(byte(disp))
	}
	b.PutI32(int32(in.ImmediateValue))
	return nil
}

func encodeImulReg(b *binutil.Builder, in ir.Instruction) error {
	mod, rmField, disp, hasDisp := rmOperand(in.Src)
	emitREX(b, true, in.Dst.Expanded, rmExpanded(in.Src))
	b.WriteByte(0x0F)
	b.WriteByte(0xAF)
	b.WriteByte(modrm(mod, byte(in.Dst.RegNum), rmField))
	if hasDisp {
		b.WriteByte(byte(disp))
	}
	return nil
}

func encodeUnaryModRM(b *binutil.Builder, in ir.Instruction, opcode byte, regField byte) error {
	mod, rmField, disp, hasDisp := rmOperand(in.Dst)
	emitREX(b, true, false, rmExpanded(in.Dst))
	b.WriteByte(opcode)
	b.WriteByte(modrm(mod, regField, rmField))
	if hasDisp {
		b.WriteByte(byte(disp))
	}
	return nil
}

func encodePlusRD(b *binutil.Builder, in ir.Instruction, base byte) error {
	emitREX(b, false, false, rmExpanded(in.Dst))
	b.WriteByte(base + byte(in.Dst.RegNum&7))
	return nil
}

// encodeCall encodes CALL r/m64 (0xFF /2) when the operand is already
// a register, or falls back to a rel32 direct call when the parser
// produced a bare label target — this toolchain's functions are
// called by name, so the label form is what function calls actually
// use; spec.md §4.E names only the r/m64 form, but its own parser
// grammar allows CALL <label>, so both are handled here.
func encodeCall(b *binutil.Builder, in ir.Instruction) (*Relocation, error) {
	if in.Dst.Kind == ir.OperandLabel {
		return encodeRel32(b, in, 0xE8, nil)
	}
	if err := encodeUnaryModRMCall(b, in); err != nil {
		return nil, err
	}
	return nil, nil
}

func encodeUnaryModRMCall(b *binutil.Builder, in ir.Instruction) error {
	mod, rmField, disp, hasDisp := rmOperand(in.Dst)
	emitREX(b, false, false, rmExpanded(in.Dst))
	b.WriteByte(0xFF)
	b.WriteByte(modrm(mod, 2, rmField))
	if hasDisp {
		b.WriteByte(byte(disp))
	}
	return nil
}

// encodeRel32 emits opcode (optionally prefixed) followed by a
// 4-byte placeholder and records a relocation at that offset; the
// linker overwrites it with the target symbol's final address
// (spec.md §4.H.5 — an absolute overwrite, not a PC-relative one).
func encodeRel32(b *binutil.Builder, in ir.Instruction, opcode byte, extra []byte) (*Relocation, error) {
	b.WriteByte(opcode)
	for _, e := range extra {
		b.WriteByte(e)
	}
	offset := b.Len()
	b.PutI32(0)
	if in.Dst.Kind != ir.OperandLabel {
		return nil, fmt.Errorf("encoder: jump/call target is not a label operand")
	}
	return &Relocation{Offset: offset, Target: in.Dst.Label}, nil
}
