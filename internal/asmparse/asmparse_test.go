package asmparse

import (
	"testing"

	"github.com/xyproto/minic/internal/asmlex"
)

func TestParseIntelScenarioOne(t *testing.T) {
	src := "main:\n  mov rdi, 1\n  add rdi, 2\n  mov rax, rdi\n  ret\n"
	tokens, err := asmlex.Intel(src)
	if err != nil {
		t.Fatalf("Intel: %v", err)
	}
	prog, err := Parse(tokens, Intel)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Symbols) != 1 || prog.Symbols[0].Name != "main" {
		t.Fatalf("symbols = %+v, want single 'main'", prog.Symbols)
	}
	instrs := prog.Symbols[0].Instrs
	if len(instrs) != 4 {
		t.Fatalf("got %d instructions, want 4: %+v", len(instrs), instrs)
	}

	mov1 := instrs[0]
	if mov1.Mnemonic != asmlex.MOV || mov1.Dst.RegName != "rdi" || mov1.Src.IntValue != 1 {
		t.Errorf("mov1 = %+v", mov1)
	}
	add := instrs[1]
	if add.Mnemonic != asmlex.ADD || add.Dst.RegName != "rdi" || add.Src.IntValue != 2 {
		t.Errorf("add = %+v", add)
	}
	mov2 := instrs[2]
	if mov2.Mnemonic != asmlex.MOV || mov2.Dst.RegName != "rax" || mov2.Src.RegName != "rdi" {
		t.Errorf("mov2 = %+v", mov2)
	}
	if instrs[3].Mnemonic != asmlex.RET || instrs[3].Shape != ShapeNoOperand {
		t.Errorf("ret = %+v", instrs[3])
	}
}

func TestParseGlobalDirectiveMarksSymbol(t *testing.T) {
	src := ".global main\nmain:\n  ret\n"
	tokens, err := asmlex.Intel(src)
	if err != nil {
		t.Fatalf("Intel: %v", err)
	}
	prog, err := Parse(tokens, Intel)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Symbols) != 1 || !prog.Symbols[0].Global {
		t.Fatalf("expected a single global symbol, got %+v", prog.Symbols)
	}
}

func TestParseMemoryOperand(t *testing.T) {
	src := "main:\n  mov rax, -8[rbp]\n  ret\n"
	tokens, err := asmlex.Intel(src)
	if err != nil {
		t.Fatalf("Intel: %v", err)
	}
	prog, err := Parse(tokens, Intel)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	mov := prog.Symbols[0].Instrs[0]
	if mov.Src.Kind != OperandMem || mov.Src.MemOffset != 8 || mov.Src.MemBase != "rbp" {
		t.Errorf("mov.Src = %+v", mov.Src)
	}
}

func TestParseATTOperandOrderMatchesInternalConvention(t *testing.T) {
	src := "main:\n  movq $1, %rdi\n  ret\n"
	tokens, err := asmlex.ATT(src)
	if err != nil {
		t.Fatalf("ATT: %v", err)
	}
	prog, err := Parse(tokens, ATT)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	mov := prog.Symbols[0].Instrs[0]
	if mov.Src.IntValue != 1 || mov.Dst.RegName != "rdi" {
		t.Errorf("mov = %+v, want Src=1 Dst=rdi", mov)
	}
}

func TestParseJumpTargetIsLabelOperand(t *testing.T) {
	src := "main:\n  jmp done\ndone:\n  ret\n"
	tokens, err := asmlex.Intel(src)
	if err != nil {
		t.Fatalf("Intel: %v", err)
	}
	prog, err := Parse(tokens, Intel)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Symbols) != 2 || prog.Symbols[0].Name != "done" || prog.Symbols[1].Name != "main" {
		t.Fatalf("symbols = %+v, want sorted [done, main]", prog.Symbols)
	}
	jmp := prog.Symbols[1].Instrs[0]
	if jmp.Mnemonic != asmlex.JMP || jmp.Dst.Kind != OperandLabel || jmp.Dst.Label != "done" {
		t.Errorf("jmp = %+v", jmp)
	}
}

func TestParseInstructionOutsideSymbolIsError(t *testing.T) {
	tokens, err := asmlex.Intel("ret\n")
	if err != nil {
		t.Fatalf("Intel: %v", err)
	}
	if _, err := Parse(tokens, Intel); err == nil {
		t.Fatal("expected a parse error for an instruction with no enclosing label")
	}
}
