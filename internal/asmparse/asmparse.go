// Package asmparse turns an asmlex token stream into a symbol map of
// instruction lists: the assembler path's component D. A `.global`/
// `.globl` directive registers a binding; a label token opens a new
// symbol scope that subsequent instructions attach to, until the next
// label or end of input (a directive does not close the scope).
package asmparse

import (
	"sort"
	"strings"

	"github.com/xyproto/minic/internal/asmlex"
	"github.com/xyproto/minic/internal/diag"
)

// Dialect controls how a two-operand instruction's parsed operand
// order maps onto the parser's internal (src, dst) storage order.
type Dialect int

const (
	Intel Dialect = iota
	ATT
)

// OperandKind tags a parsed operand's shape.
type OperandKind int

const (
	OperandInvalid OperandKind = iota
	OperandInt
	OperandReg
	OperandLabel
	OperandMem
)

// Operand is what component D hands to the instruction analyzer: a
// parsed, not-yet-size-resolved operand.
type Operand struct {
	Kind OperandKind

	IntValue int64
	RegName  string
	Label    string

	MemOffset int64
	MemBase   string
}

// InstrShape mirrors ir.InstrKind's no-operand/unary/binary split,
// kept separate here since the parser hasn't yet resolved a concrete
// opcode.
type InstrShape int

const (
	ShapeNoOperand InstrShape = iota
	ShapeUnary
	ShapeBinary
)

// Instruction is one parsed instruction: a mnemonic token kind plus
// its operands stored in the internal (src, dst) convention
// regardless of which dialect it was read in.
type Instruction struct {
	Mnemonic asmlex.Kind
	Shape    InstrShape
	Src      Operand
	Dst      Operand
	Pos      diag.Pos
}

// Symbol is one assembler-view symbol: a binding and the instructions
// attached to it (still unencoded).
type Symbol struct {
	Name   string
	Global bool
	Instrs []Instruction
}

// Program is the ordered symbol map spec.md §5/§9 requires: iteration
// must proceed in ascending name order, since that order determines
// every downstream section's layout. Symbols is kept sorted on every
// insert rather than sorted lazily, so callers can range over it
// directly.
type Program struct {
	Symbols []*Symbol
	index   map[string]int
}

func newProgram() *Program {
	return &Program{index: map[string]int{}}
}

func (p *Program) symbol(name string) *Symbol {
	if i, ok := p.index[name]; ok {
		return p.Symbols[i]
	}
	sym := &Symbol{Name: name}
	p.Symbols = append(p.Symbols, sym)
	sort.Slice(p.Symbols, func(i, j int) bool { return p.Symbols[i].Name < p.Symbols[j].Name })
	p.index = make(map[string]int, len(p.Symbols))
	for i, s := range p.Symbols {
		p.index[s.Name] = i
	}
	return sym
}

var twoOperand = map[asmlex.Kind]bool{
	asmlex.ADD: true, asmlex.SUB: true, asmlex.MOV: true, asmlex.IMUL: true, asmlex.CMP: true,
}

var oneOperand = map[asmlex.Kind]bool{
	asmlex.CALL: true, asmlex.IDIV: true, asmlex.JMP: true, asmlex.JZ: true,
	asmlex.NEG: true, asmlex.PUSH: true, asmlex.POP: true,
}

var noOperand = map[asmlex.Kind]bool{
	asmlex.RET: true, asmlex.SYSCALL: true, asmlex.CQO: true,
}

// Parse runs the top-level dispatch loop over tokens, which must
// already be dialect-lexed (internal/asmlex.Intel or .ATT).
func Parse(tokens []asmlex.Token, dialect Dialect) (*Program, error) {
	p := newProgram()
	pos := 0
	var current *Symbol

	for pos < len(tokens) && tokens[pos].Kind != asmlex.EOF {
		tok := tokens[pos]
		switch {
		case tok.Kind == asmlex.DIRECTIVE:
			name, ok := parseGlobalDirective(tok.Directive)
			if ok {
				p.symbol(name).Global = true
			}
			pos++
		case tok.Kind == asmlex.LABEL:
			current = p.symbol(tok.Text)
			pos++
		case twoOperand[tok.Kind]:
			instr, next, err := parseTwoOperand(tokens, pos, dialect)
			if err != nil {
				return nil, err
			}
			if current == nil {
				return nil, diag.New(diag.Parse, diag.Pos{Row: tok.Row, Col: tok.Col}, "instruction outside any symbol")
			}
			current.Instrs = append(current.Instrs, instr)
			pos = next
		case oneOperand[tok.Kind]:
			instr, next, err := parseOneOperand(tokens, pos)
			if err != nil {
				return nil, err
			}
			if current == nil {
				return nil, diag.New(diag.Parse, diag.Pos{Row: tok.Row, Col: tok.Col}, "instruction outside any symbol")
			}
			current.Instrs = append(current.Instrs, instr)
			pos = next
		case noOperand[tok.Kind]:
			if current == nil {
				return nil, diag.New(diag.Parse, diag.Pos{Row: tok.Row, Col: tok.Col}, "instruction outside any symbol")
			}
			current.Instrs = append(current.Instrs, Instruction{Mnemonic: tok.Kind, Shape: ShapeNoOperand, Pos: diag.Pos{Row: tok.Row, Col: tok.Col}})
			pos++
		default:
			return nil, diag.New(diag.Parse, diag.Pos{Row: tok.Row, Col: tok.Col}, "unexpected token %v", tok.Kind)
		}
	}
	return p, nil
}

// parseGlobalDirective recognizes ".global <name>" / ".globl <name>";
// any other directive text is ignored (e.g. ".intel_syntax noprefix"
// carries no further parser action beyond having already selected the
// dialect the caller lexed with).
func parseGlobalDirective(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return "", false
	}
	if fields[0] != "global" && fields[0] != "globl" {
		return "", false
	}
	return fields[1], true
}

func parseTwoOperand(tokens []asmlex.Token, pos int, dialect Dialect) (Instruction, int, error) {
	mnemonic := tokens[pos].Kind
	at := diag.Pos{Row: tokens[pos].Row, Col: tokens[pos].Col}
	pos++
	first, pos, err := parseOperand(tokens, pos)
	if err != nil {
		return Instruction{}, pos, err
	}
	second, pos, err := parseOperand(tokens, pos)
	if err != nil {
		return Instruction{}, pos, err
	}

	instr := Instruction{Mnemonic: mnemonic, Shape: ShapeBinary, Pos: at}
	if dialect == Intel {
		// Intel: first parsed is dst, second is src; stored (src, dst).
		instr.Dst, instr.Src = first, second
	} else {
		// AT&T: first parsed is src, second is dst; stored as-is.
		instr.Src, instr.Dst = first, second
	}
	return instr, pos, nil
}

func parseOneOperand(tokens []asmlex.Token, pos int) (Instruction, int, error) {
	mnemonic := tokens[pos].Kind
	at := diag.Pos{Row: tokens[pos].Row, Col: tokens[pos].Col}
	pos++
	operand, pos, err := parseOperand(tokens, pos)
	if err != nil {
		return Instruction{}, pos, err
	}
	return Instruction{Mnemonic: mnemonic, Shape: ShapeUnary, Dst: operand, Pos: at}, pos, nil
}

// parseOperand consumes one of: an integer literal, a register, a
// bare label (CALL/JMP/JZ targets), or a memory reference of the form
// "-<integer>[<register>]". Unknown operand tokens are a parse error
// (spec.md §4.D).
func parseOperand(tokens []asmlex.Token, pos int) (Operand, int, error) {
	if pos >= len(tokens) {
		return Operand{}, pos, diag.New(diag.Parse, diag.Pos{}, "unexpected end of input while parsing an operand")
	}
	tok := tokens[pos]
	at := diag.Pos{Row: tok.Row, Col: tok.Col}

	switch tok.Kind {
	case asmlex.INTEGER:
		return Operand{Kind: OperandInt, IntValue: tok.IntValue}, pos + 1, nil
	case asmlex.REG:
		return Operand{Kind: OperandReg, RegName: tok.Text}, pos + 1, nil
	case asmlex.LABEL:
		return Operand{Kind: OperandLabel, Label: tok.Text}, pos + 1, nil
	case asmlex.MINUS:
		pos++
		if pos >= len(tokens) || tokens[pos].Kind != asmlex.INTEGER {
			return Operand{}, pos, diag.New(diag.Parse, at, "expected integer offset after '-'")
		}
		offset := tokens[pos].IntValue
		pos++
		if pos >= len(tokens) || tokens[pos].Kind != asmlex.LBRACKET {
			return Operand{}, pos, diag.New(diag.Parse, at, "expected '[' in memory operand")
		}
		pos++
		if pos >= len(tokens) || tokens[pos].Kind != asmlex.REG {
			return Operand{}, pos, diag.New(diag.Parse, at, "expected base register in memory operand")
		}
		base := tokens[pos].Text
		pos++
		if pos >= len(tokens) || tokens[pos].Kind != asmlex.RBRACKET {
			return Operand{}, pos, diag.New(diag.Parse, at, "expected ']' closing memory operand")
		}
		pos++
		return Operand{Kind: OperandMem, MemOffset: offset, MemBase: base}, pos, nil
	default:
		return Operand{}, pos, diag.New(diag.Parse, at, "invalid operand token %v", tok.Kind)
	}
}
