package linker

import (
	"encoding/binary"
	"testing"

	"github.com/xyproto/minic/internal/elfasm"
	"github.com/xyproto/minic/internal/elfmodel"
	"github.com/xyproto/minic/internal/encoder"
)

// TestLinkSpecScenarioFive reproduces spec.md's literal linker
// scenario: a single global "_start" symbol of size 12 at offset 0
// should produce e_entry = p_vaddr = 0x400000, p_filesz = 12, and
// p_flags = 7 (R|W|X).
func TestLinkSpecScenarioFive(t *testing.T) {
	code := make([]byte, 12)
	obj, err := elfasm.Assemble([]elfasm.Symbol{
		{Name: "_start", Global: true, Code: &encoder.Symbol{Code: code}},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	exe, err := Link(obj.Bytes, 0x400000)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	entry := binary.LittleEndian.Uint64(exe[24:32])
	if entry != 0x400000 {
		t.Errorf("e_entry = %#x, want 0x400000", entry)
	}

	phoff := binary.LittleEndian.Uint64(exe[32:40])
	phdr := exe[phoff : phoff+elfmodel.PhdrSize]
	vaddr := binary.LittleEndian.Uint64(phdr[16:24])
	filesz := binary.LittleEndian.Uint64(phdr[32:40])
	flags := binary.LittleEndian.Uint32(phdr[4:8])

	if vaddr != 0x400000 {
		t.Errorf("p_vaddr = %#x, want 0x400000", vaddr)
	}
	if filesz != 12 {
		t.Errorf("p_filesz = %d, want 12", filesz)
	}
	if flags != 7 {
		t.Errorf("p_flags = %d, want 7", flags)
	}
}

func TestLinkRelocationPatchesAbsoluteAddress(t *testing.T) {
	callSite := []byte{0xE9, 0, 0, 0, 0}
	obj, err := elfasm.Assemble([]elfasm.Symbol{
		{Name: "callee", Global: true, Code: &encoder.Symbol{Code: []byte{0xC3, 0, 0, 0}}},
		{Name: "caller", Global: true, Code: &encoder.Symbol{
			Code:        callSite,
			Relocations: []encoder.Relocation{{Offset: 1, Target: "callee"}},
		}},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	exe, err := Link(obj.Bytes, 0x400000)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	const pageSize = 0x1000
	// "caller"'s code sits right after "callee"'s 4 bytes in .text,
	// which itself starts at the first page boundary after the
	// header area (spec.md §4.H.3).
	patched := binary.LittleEndian.Uint32(exe[pageSize+4+1 : pageSize+4+5])
	if patched != 0x400000 {
		t.Errorf("patched relocation = %#x, want 0x400000 (callee's rebased address)", patched)
	}
}
