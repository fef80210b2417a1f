package encoder

import (
	"bytes"
	"testing"

	"github.com/xyproto/minic/internal/asmlex"
	"github.com/xyproto/minic/internal/asmparse"
	"github.com/xyproto/minic/internal/instranalyze"
	"github.com/xyproto/minic/internal/ir"
)

func encodeIntel(t *testing.T, src string) *Symbol {
	t.Helper()
	tokens, err := asmlex.Intel(src)
	if err != nil {
		t.Fatalf("Intel: %v", err)
	}
	prog, err := asmparse.Parse(tokens, asmparse.Intel)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Symbols) != 1 {
		t.Fatalf("expected exactly one symbol, got %d", len(prog.Symbols))
	}
	var instrs []ir.Instruction
	for _, p := range prog.Symbols[0].Instrs {
		instr, err := instranalyze.FromParsed(p)
		if err != nil {
			t.Fatalf("FromParsed: %v", err)
		}
		instrs = append(instrs, instr)
	}
	instranalyze.Analyze(instrs)
	sym, err := EncodeSymbol(instrs)
	if err != nil {
		t.Fatalf("EncodeSymbol: %v", err)
	}
	return sym
}

// TestEncodeSpecScenarioOne reproduces spec.md's first literal
// round-trip scenario byte for byte.
func TestEncodeSpecScenarioOne(t *testing.T) {
	sym := encodeIntel(t, "main:\n  mov rdi, 1\n  add rdi, 2\n  mov rax, rdi\n  ret\n")
	want := []byte{
		0x48, 0xC7, 0xC7, 0x01, 0x00, 0x00, 0x00,
		0x48, 0x81, 0xC7, 0x02, 0x00, 0x00, 0x00,
		0x48, 0x89, 0xF8,
		0xC3,
		0x00, 0x00,
	}
	if !bytes.Equal(sym.Code, want) {
		t.Errorf("code = % X, want % X", sym.Code, want)
	}
}

func TestEncodeSpecScenarioTwo(t *testing.T) {
	sym := encodeIntel(t, "main:\n  sub rax, rbx\n")
	want := []byte{0x48, 0x29, 0xD8, 0x00}
	if !bytes.Equal(sym.Code, want) {
		t.Errorf("code = % X, want % X", sym.Code, want)
	}
}

func TestEncodeSpecScenarioThree(t *testing.T) {
	sym := encodeIntel(t, "main:\n  sub rax, 30\n")
	want := []byte{0x48, 0x81, 0xE8, 0x1E, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(sym.Code, want) {
		t.Errorf("code = % X, want % X", sym.Code, want)
	}
}

func TestEncodeSpecScenarioFourPadsToMultipleOfFour(t *testing.T) {
	sym := encodeIntel(t, "main:\n  mov rax, 30\n  ret\n")
	if len(sym.Code)%4 != 0 {
		t.Errorf("code length = %d, want a multiple of 4", len(sym.Code))
	}
}

func TestEncodeJumpRecordsRelocation(t *testing.T) {
	sym := encodeIntel(t, "main:\n  jmp main\n")
	if len(sym.Relocations) != 1 {
		t.Fatalf("got %d relocations, want 1", len(sym.Relocations))
	}
	if sym.Relocations[0].Target != "main" {
		t.Errorf("relocation target = %q, want main", sym.Relocations[0].Target)
	}
	if sym.Relocations[0].Offset != 1 {
		t.Errorf("relocation offset = %d, want 1 (right after the 0xE9 opcode byte)", sym.Relocations[0].Offset)
	}
}
