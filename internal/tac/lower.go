package tac

import (
	"fmt"

	"github.com/xyproto/minic/internal/frontend"
	"github.com/xyproto/minic/internal/ir"
)

// lowerer carries the per-function state TAC construction threads
// through: the next virtual register number and the block currently
// being assembled.
type lowerer struct {
	vreg   int
	instrs []Instr
}

func (l *lowerer) freshVReg() ir.Operand {
	l.vreg++
	return ir.Operand{Kind: ir.OperandReg, VirtualIndex: l.vreg}
}

func (l *lowerer) emit(i Instr) { l.instrs = append(l.instrs, i) }

// Lower walks a frontend.Function's statement list and produces a
// single basic block (named after the function) holding every
// statement's TAC lowering as a flat, ordered instruction list. Every
// binary expression allocates a fresh virtual register (spec.md
// §4.I); labels, jumps, and zero-compare jumps become plain TAC
// entries inside that one block rather than block boundaries — this
// mirrors the entry-block-only shape the reference implementation
// builds (a function's tacs are one flat vector; BuildCFG resolves
// label targets to positions within it).
func Lower(fn *frontend.Function) (*Function, error) {
	locals := make(map[string]VarInfo, len(fn.Locals))
	offset := 0
	// Params first, in declaration order, then remaining locals; every
	// slot is 8 bytes (spec.md carries no sub-word auto storage).
	assigned := make(map[string]bool)
	for _, p := range fn.Params {
		info := fn.Locals[p]
		if info == nil {
			return nil, fmt.Errorf("tac: parameter %q has no local entry", p)
		}
		locals[p] = VarInfo{Type: info.Type, Size: 8, FrameOffset: offset}
		offset += 8
		assigned[p] = true
	}
	for name, info := range fn.Locals {
		if assigned[name] {
			continue
		}
		locals[name] = VarInfo{Type: info.Type, Size: 8, FrameOffset: offset}
		offset += 8
	}
	frameSize := (offset + 7) &^ 7

	l := &lowerer{}

	lowerVar := func(name string) (ir.Operand, error) {
		v, ok := locals[name]
		if !ok {
			return ir.Operand{}, fmt.Errorf("tac: undefined variable %q", name)
		}
		return ir.Auto(name, v.FrameOffset), nil
	}

	var lowerExpr func(frontend.Expression) (ir.Operand, error)
	lowerExpr = func(e frontend.Expression) (ir.Operand, error) {
		switch v := e.(type) {
		case *frontend.IntLit:
			return ir.Imm(v.Value), nil
		case *frontend.VarRef:
			return lowerVar(v.Name)
		case *frontend.UnaryExpr:
			if v.Op != '-' {
				return ir.Operand{}, fmt.Errorf("tac: unsupported unary operator %q", v.Op)
			}
			inner, err := lowerExpr(v.Inner)
			if err != nil {
				return ir.Operand{}, err
			}
			dst := l.freshVReg()
			l.emit(Instr{Op: OpUnExpr, Dst: dst, Inner: inner})
			return dst, nil
		case *frontend.BinaryExpr:
			left, err := lowerExpr(v.Left)
			if err != nil {
				return ir.Operand{}, err
			}
			right, err := lowerExpr(v.Right)
			if err != nil {
				return ir.Operand{}, err
			}
			dst := l.freshVReg()
			l.emit(Instr{Op: OpBinExpr, Dst: dst, BinOp: BinOperator(v.Op), Left: left, Right: right})
			return dst, nil
		default:
			return ir.Operand{}, fmt.Errorf("tac: unsupported expression node %T", e)
		}
	}

	for _, stmt := range fn.Statements {
		switch s := stmt.(type) {
		case *frontend.LabelStmt:
			l.emit(Instr{Op: OpLabel, Name: s.Name})
		case *frontend.GotoStmt:
			l.emit(Instr{Op: OpJump, Target: s.Target})
		case *frontend.IfZeroGotoStmt:
			cond, err := lowerExpr(s.Cond)
			if err != nil {
				return nil, err
			}
			l.emit(Instr{Op: OpJumpZero, Cond: cond, Target: s.Target})
		case *frontend.ReturnStmt:
			if s.Expr == nil {
				l.emit(Instr{Op: OpReturn, Ret: ir.Imm(0)})
				continue
			}
			ret, err := lowerExpr(s.Expr)
			if err != nil {
				return nil, err
			}
			l.emit(Instr{Op: OpReturn, Ret: ret})
		case *frontend.AssignStmt:
			rvalue, err := lowerExpr(s.Expr)
			if err != nil {
				return nil, err
			}
			lvalue, err := lowerVar(s.Name)
			if err != nil {
				return nil, err
			}
			l.emit(Instr{Op: OpAssign, Lvalue: lvalue, Rvalue: rvalue})
		case *frontend.ExprStmt:
			if _, err := lowerExpr(s.Expr); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("tac: unsupported statement node %T", stmt)
		}
	}

	block := &BasicBlock{Label: fn.Name, Instr: l.instrs}

	return &Function{
		Name:      fn.Name,
		Blocks:    []*BasicBlock{block},
		Params:    fn.Params,
		Locals:    locals,
		FrameSize: frameSize,
	}, nil
}
