package elfasm

import (
	"encoding/binary"
	"testing"

	"github.com/xyproto/minic/internal/elfmodel"
	"github.com/xyproto/minic/internal/encoder"
)

func TestAssembleSectionOrderAndSizes(t *testing.T) {
	symbols := []Symbol{
		{Name: "main", Global: true, Code: &encoder.Symbol{Code: []byte{0xC3, 0x00, 0x00, 0x00}}},
	}
	obj, err := Assemble(symbols)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if obj.TextSize != 4 {
		t.Fatalf("text size = %d, want 4", obj.TextSize)
	}
	if obj.SymbolValue["main"] != 0 {
		t.Fatalf("main's st_value = %d, want 0", obj.SymbolValue["main"])
	}
	if len(obj.Bytes) < elfmodel.EhdrSize {
		t.Fatalf("object too small: %d bytes", len(obj.Bytes))
	}
	if obj.Bytes[0] != 0x7f || obj.Bytes[1] != 'E' {
		t.Fatalf("bad ELF magic: %x", obj.Bytes[:4])
	}
	shoff := binary.LittleEndian.Uint64(obj.Bytes[40:48])
	wantTypes := []uint32{elfmodel.SHTNull, elfmodel.SHTProgbit, elfmodel.SHTSymtab, elfmodel.SHTStrtab, elfmodel.SHTStrtab, elfmodel.SHTRela}
	for i, want := range wantTypes {
		off := int(shoff) + i*elfmodel.ShdrSize
		if got := binary.LittleEndian.Uint32(obj.Bytes[off+4 : off+8]); got != want {
			t.Errorf("section %d sh_type = %d, want %d", i, got, want)
		}
	}
}

func TestAssembleTwoSymbolsConcatenatesInOrder(t *testing.T) {
	symbols := []Symbol{
		{Name: "a", Global: false, Code: &encoder.Symbol{Code: []byte{0x01, 0x02, 0x03, 0x04}}},
		{Name: "b", Global: true, Code: &encoder.Symbol{Code: []byte{0x05, 0x06, 0x07, 0x08}}},
	}
	obj, err := Assemble(symbols)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if obj.SymbolValue["a"] != 0 || obj.SymbolValue["b"] != 4 {
		t.Fatalf("values = a:%d b:%d, want a:0 b:4", obj.SymbolValue["a"], obj.SymbolValue["b"])
	}
	if obj.TextSize != 8 {
		t.Fatalf("text size = %d, want 8", obj.TextSize)
	}
}

func TestAssembleRecordsRelocationAgainstSymbolIndex(t *testing.T) {
	symbols := []Symbol{
		{Name: "a", Global: true, Code: &encoder.Symbol{Code: []byte{0, 0, 0, 0}}},
		{Name: "b", Global: true, Code: &encoder.Symbol{
			Code:        []byte{0xE9, 0, 0, 0, 0},
			Relocations: []encoder.Relocation{{Offset: 1, Target: "a"}},
		}},
	}
	obj, err := Assemble(symbols)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if obj.TextSize != 9 {
		t.Fatalf("text size = %d, want 9", obj.TextSize)
	}
	// .rela.text is the last section body, right before the header table.
	relaStart := len(obj.Bytes) - sectionCount*elfmodel.ShdrSize - elfmodel.RelaSize
	rela := obj.Bytes[relaStart : relaStart+elfmodel.RelaSize]
	if got := binary.LittleEndian.Uint64(rela[0:8]); got != 5 {
		t.Errorf("r_offset = %d, want 5 (b starts at 4, slot at +1)", got)
	}
	if got, want := binary.LittleEndian.Uint64(rela[8:16]), elfmodel.RelaInfo(1, elfmodel.RX8664_32); got != want {
		t.Errorf("r_info = %#x, want %#x (a is symtab entry 1)", got, want)
	}
}
