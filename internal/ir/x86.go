package ir

// AbstractOp is the architecture-neutral mnemonic a TAC lowering or an
// assembly parser first produces; the instruction analyzer later
// resolves it to a ConcreteOp once operand shapes are known.
type AbstractOp int

const (
	OpInvalid AbstractOp = iota
	OpADD
	OpSUB
	OpMOV
	OpIMUL
	OpIDIV
	OpCMP
	OpCQO
	OpCALL
	OpJMP
	OpJZ
	OpRET
	OpSYSCALL
	OpPUSH
	OpPOP
	OpNEG
)

func (a AbstractOp) String() string {
	switch a {
	case OpADD:
		return "add"
	case OpSUB:
		return "sub"
	case OpMOV:
		return "mov"
	case OpIMUL:
		return "imul"
	case OpIDIV:
		return "idiv"
	case OpCMP:
		return "cmp"
	case OpCQO:
		return "cqo"
	case OpCALL:
		return "call"
	case OpJMP:
		return "jmp"
	case OpJZ:
		return "jz"
	case OpRET:
		return "ret"
	case OpSYSCALL:
		return "syscall"
	case OpPUSH:
		return "push"
	case OpPOP:
		return "pop"
	case OpNEG:
		return "neg"
	default:
		return "invalid"
	}
}

// ConcreteOp names an encoding-specific form, resolved by the
// instruction analyzer from (size, src-kind, dst-kind).
type ConcreteOp int

const (
	ConcreteNone ConcreteOp = iota
	AddRM64Imm32
	AddRM64R64
	SubRM64Imm32
	SubRM64R64
	MovRM64Imm32
	MovRM64R64
	MovR64RM64
	ImulR64RM64Imm32
	ImulR64RM64
	IdivRM64
	NegRM64
	CmpRM64Imm32
	CmpRM64R64
	Cqo
	CallRM64
	PushR64
	PopR64
	Ret
	Syscall
	JmpRel32
	JzRel32
)

// OperandSize is the operand-width tag spec.md's data model names.
type OperandSize int

const (
	SizeUnknown OperandSize = 0
	Size8       OperandSize = 8
	Size16      OperandSize = 16
	Size32      OperandSize = 32
	Size64      OperandSize = 64
)

// InstrKind tags the shape of an x86-64 instruction: it takes no
// operand, one (unary), two (binary, stored AT&T order: src then dst),
// or is a bare label marker used to anchor jump targets during
// analysis and emission.
type InstrKind int

const (
	KindNoOperand InstrKind = iota
	KindUnary
	KindBinary
	KindLabelMarker
)

// Instruction is the two-tier x86-64 instruction record: an abstract
// mnemonic, a concrete encoding once resolved, and the operand/size/
// flag fields the encoder reads. It is produced either by instruction
// selection (compiler path) or by the assembly parser (assembler
// path); from the analyzer onward it is treated as immutable.
type Instruction struct {
	Abstract AbstractOp
	Concrete ConcreteOp
	Kind     InstrKind

	// KindBinary: Src first, Dst second (AT&T internal convention).
	// KindUnary: Dst holds the sole operand.
	Src Operand
	Dst Operand

	LabelName string

	Size OperandSize

	SrcExpanded bool
	DstExpanded bool
	SrcRegNum   int
	DstRegNum   int

	ImmediateValue int64
	StoreOffset    int32
}

func NoOperand(op AbstractOp) Instruction {
	return Instruction{Abstract: op, Kind: KindNoOperand}
}

func Unary(op AbstractOp, operand Operand) Instruction {
	return Instruction{Abstract: op, Kind: KindUnary, Dst: operand}
}

func Binary(op AbstractOp, src, dst Operand) Instruction {
	return Instruction{Abstract: op, Kind: KindBinary, Src: src, Dst: dst}
}

func LabelMarker(name string) Instruction {
	return Instruction{Kind: KindLabelMarker, LabelName: name}
}
