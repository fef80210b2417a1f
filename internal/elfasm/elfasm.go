// Package elfasm builds a relocatable ELF64 object from an assembler
// symbol map: the assembler path's component G. Layout follows
// spec.md §4.G exactly, including the invariant the linker relies on:
// .text is the concatenation of symbol byte sequences in ascending
// name order.
package elfasm

import (
	"github.com/xyproto/minic/internal/binutil"
	"github.com/xyproto/minic/internal/elfmodel"
	"github.com/xyproto/minic/internal/encoder"
)

// Section indices in the fixed order spec.md §4.G mandates.
const (
	secNull = iota
	secText
	secSymtab
	secStrtab
	secShstrtab
	secRelaText
	sectionCount
)

// Object is a fully laid out relocatable ELF64 file, ready to be
// written to disk or handed straight to the linker.
type Object struct {
	Bytes []byte

	// TextSize, SymbolOrder, and SymbolValue summarize the layout for
	// callers; internal/linker does not use them and re-reads Bytes.
	TextSize    int
	SymbolOrder []string
	SymbolValue map[string]uint64
}

// symbolEntry is one named, defined entry contributing to .text, in
// the order the caller's symbol map iterates (ascending by name).
type symbolEntry struct {
	name   string
	global bool
	code   []byte
}

// Assemble lays out symbols (already encoded by internal/encoder, one
// per name, iterated by the caller in ascending order) into a single
// ELF64 relocatable object.
func Assemble(symbols []Symbol) (*Object, error) {
	entries := make([]symbolEntry, 0, len(symbols))
	for _, s := range symbols {
		entries = append(entries, symbolEntry{name: s.Name, global: s.Global, code: s.Code.Code})
	}

	text, values := layoutText(entries)
	strtab, names := layoutStrtab(entries)
	symtab := layoutSymtab(entries, values, names)
	relocs := layoutRelocations(symbols, entries, values)

	shstrtab, shNames := layoutShstrtab()

	shdrs := make([]elfmodel.Shdr, sectionCount)
	shdrs[secNull] = elfmodel.NullSectionTemplate()
	shdrs[secText] = elfmodel.TextSectionTemplate()
	shdrs[secSymtab] = elfmodel.SymtabSectionTemplate(secStrtab, uint32(firstGlobalIndex(entries)))
	shdrs[secStrtab] = elfmodel.StrtabSectionTemplate()
	shdrs[secShstrtab] = elfmodel.Shdr{Type: elfmodel.SHTStrtab, Addralign: 1}
	shdrs[secRelaText] = elfmodel.RelaTextSectionTemplate(secSymtab, secText)

	bodies := [][]byte{nil, text, symtab, strtab, shstrtab, relocs}
	// Bodies are written immediately after the Ehdr (see the Builder below),
	// so the first body's file offset is EhdrSize, not 0; the null
	// section's header stays all-zero per convention and is excluded
	// from the running total.
	bodySize := uint64(elfmodel.EhdrSize)
	for i, body := range bodies {
		shdrs[i].Name = shNames[i]
		if i == secNull {
			continue
		}
		shdrs[i].Offset = bodySize
		shdrs[i].Size = uint64(len(body))
		bodySize += uint64(len(body))
	}

	ehdr := elfmodel.Ehdr{
		Type:      elfmodel.ETRel,
		Machine:   elfmodel.ELFMachineX8664,
		Phoff:     0,
		Shoff:     bodySize,
		Phentsize: 0,
		Phnum:     0,
		Shentsize: elfmodel.ShdrSize,
		Shnum:     sectionCount,
		Shstrndx:  secShstrtab,
	}

	b := binutil.NewBuilder()
	b.WriteBytes(ehdr.Encode())
	for _, body := range bodies[1:] {
		b.WriteBytes(body)
	}
	for i := range shdrs {
		b.WriteBytes(shdrs[i].Encode())
	}

	return &Object{
		Bytes:       b.Bytes(),
		TextSize:    len(text),
		SymbolOrder: symbolNames(entries),
		SymbolValue: values,
	}, nil
}

// Symbol is the encoder output plus the binding flag the assembler
// needs, keyed by name. Callers must pass Symbols already sorted by
// Name (internal/asmparse.Program.Symbols already is).
type Symbol struct {
	Name   string
	Global bool
	Code   *encoder.Symbol
}

func layoutText(entries []symbolEntry) ([]byte, map[string]uint64) {
	b := binutil.NewBuilder()
	values := make(map[string]uint64, len(entries))
	for _, e := range entries {
		values[e.name] = uint64(b.Len())
		b.WriteBytes(e.code)
	}
	return b.Bytes(), values
}

func layoutStrtab(entries []symbolEntry) ([]byte, map[string]uint32) {
	b := binutil.NewBuilder()
	b.WriteByte(0)
	names := make(map[string]uint32, len(entries))
	for _, e := range entries {
		names[e.name] = uint32(b.Len())
		b.WriteBytes([]byte(e.name))
		b.WriteByte(0)
	}
	return b.Bytes(), names
}

func layoutSymtab(entries []symbolEntry, values map[string]uint64, names map[string]uint32) []byte {
	b := binutil.NewBuilder()
	null := elfmodel.Sym{}
	b.WriteBytes(null.Encode())
	for _, e := range entries {
		bind := elfmodel.STBLocal
		if e.global {
			bind = elfmodel.STBGlobal
		}
		sym := elfmodel.Sym{
			Name:  names[e.name],
			Info:  elfmodel.SymInfo(uint8(bind), elfmodel.STTFunc),
			Shndx: secText,
			Value: values[e.name],
			Size:  uint64(len(e.code)),
		}
		b.WriteBytes(sym.Encode())
	}
	return b.Bytes()
}

// layoutRelocations builds .rela.text: one record per relocation left
// behind by the encoder, r_info computed once every symbol's final
// table index is known (symbol i occupies symtab slot i+1, the null
// symbol taking slot 0).
func layoutRelocations(symbols []Symbol, entries []symbolEntry, values map[string]uint64) []byte {
	index := make(map[string]uint32, len(entries))
	for i, e := range entries {
		index[e.name] = uint32(i)
	}

	b := binutil.NewBuilder()
	for _, s := range symbols {
		base := values[s.Name]
		for _, r := range s.Code.Relocations {
			rela := elfmodel.Rela{
				Offset: base + uint64(r.Offset),
				Info:   elfmodel.RelaInfo(index[r.Target]+1, elfmodel.RX8664_32),
			}
			b.WriteBytes(rela.Encode())
		}
	}
	return b.Bytes()
}

func layoutShstrtab() ([]byte, [6]uint32) {
	names := [...]string{"", ".text", ".symtab", ".strtab", ".shstrtab", ".rela.text"}
	b := binutil.NewBuilder()
	b.WriteByte(0)
	var offsets [6]uint32
	for i, n := range names {
		if i == 0 {
			continue
		}
		offsets[i] = uint32(b.Len())
		b.WriteBytes([]byte(n))
		b.WriteByte(0)
	}
	return b.Bytes(), offsets
}

func firstGlobalIndex(entries []symbolEntry) int {
	for i, e := range entries {
		if e.global {
			return i + 1 // +1 for the leading null symtab entry
		}
	}
	return len(entries) + 1
}

func symbolNames(entries []symbolEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}
