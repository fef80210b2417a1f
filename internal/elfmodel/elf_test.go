package elfmodel

import "testing"

func TestEhdrEncodeSize(t *testing.T) {
	e := &Ehdr{Type: ETRel, Machine: ELFMachineX8664, Phentsize: PhdrSize, Shentsize: ShdrSize}
	got := e.Encode()
	if len(got) != EhdrSize {
		t.Fatalf("Ehdr encoded length = %d, want %d", len(got), EhdrSize)
	}
	if got[0] != 0x7f || got[1] != 'E' || got[2] != 'L' || got[3] != 'F' {
		t.Fatalf("bad ELF magic: %x", got[:4])
	}
	if got[4] != ELFClass64 {
		t.Fatalf("EI_CLASS = %d, want 64-bit", got[4])
	}
}

func TestRecordSizes(t *testing.T) {
	if got := len((&Phdr{}).Encode()); got != PhdrSize {
		t.Fatalf("Phdr size = %d, want %d", got, PhdrSize)
	}
	if got := len((&Shdr{}).Encode()); got != ShdrSize {
		t.Fatalf("Shdr size = %d, want %d", got, ShdrSize)
	}
	if got := len((&Sym{}).Encode()); got != SymSize {
		t.Fatalf("Sym size = %d, want %d", got, SymSize)
	}
	if got := len((&Rela{}).Encode()); got != RelaSize {
		t.Fatalf("Rela size = %d, want %d", got, RelaSize)
	}
}

func TestRelaInfoRoundTrip(t *testing.T) {
	info := RelaInfo(7, RX8664_32)
	if RelaSymIndex(info) != 7 {
		t.Fatalf("RelaSymIndex(%x) = %d, want 7", info, RelaSymIndex(info))
	}
	if info&0xffffffff != RX8664_32 {
		t.Fatalf("relocation type lost: %x", info)
	}
}

func TestSymInfoFunctionGlobal(t *testing.T) {
	got := SymInfo(STBGlobal, STTFunc)
	if got != (1<<4)|2 {
		t.Fatalf("SymInfo(global, func) = %x, want %x", got, (1<<4)|2)
	}
}
