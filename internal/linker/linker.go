// Package linker turns a relocatable ELF64 object (internal/elfasm)
// into a loadable ELF64 executable: the toolchain's final stage,
// component H. It implements the single-segment, single-section
// layout spec.md §4.H describes: one RWX LOAD segment covering
// .text, addresses rebased from a configurable base, and absolute
// (not PC-relative) relocation patching.
package linker

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/xyproto/minic/internal/binutil"
	"github.com/xyproto/minic/internal/elfmodel"
)

const pageSize = 0x1000

// Link produces an executable byte image from a relocatable object's
// raw bytes, re-deriving section boundaries by re-reading its own
// header and section table (the same bytes internal/elfasm produced).
func Link(object []byte, baseAddress uint64) ([]byte, error) {
	ehdr, shdrs, err := readObject(object)
	if err != nil {
		return nil, err
	}

	order, err := nonNullSectionsByOffset(shdrs)
	if err != nil {
		return nil, err
	}

	bodies := make([][]byte, len(shdrs))
	for _, i := range order {
		bodies[i] = append([]byte(nil), sectionBytes(object, shdrs[i])...)
	}

	textIdx, err := indexOf(shdrs, elfmodel.SHTProgbit)
	if err != nil {
		return nil, err
	}
	symtabIdx, err := indexOf(shdrs, elfmodel.SHTSymtab)
	if err != nil {
		return nil, err
	}
	relaIdx, err := indexOf(shdrs, elfmodel.SHTRela)
	if err != nil {
		return nil, err
	}
	strtabIdx, err := stringTableIndex(shdrs, int(ehdr.Shstrndx))
	if err != nil {
		return nil, err
	}

	entry := rebaseSymbols(bodies[symtabIdx], bodies[strtabIdx], baseAddress)
	applyRelocations(bodies[textIdx], bodies[relaIdx], bodies[symtabIdx])

	return buildExecutable(ehdr, shdrs, order, bodies, textIdx, baseAddress, entry)
}

func readObject(object []byte) (elfmodel.Ehdr, []elfmodel.Shdr, error) {
	if len(object) < elfmodel.EhdrSize {
		return elfmodel.Ehdr{}, nil, fmt.Errorf("linker: object too small to contain an ELF header")
	}
	ehdr := elfmodel.Ehdr{
		Type:      binary.LittleEndian.Uint16(object[16:18]),
		Machine:   binary.LittleEndian.Uint16(object[18:20]),
		Entry:     binary.LittleEndian.Uint64(object[24:32]),
		Phoff:     binary.LittleEndian.Uint64(object[32:40]),
		Shoff:     binary.LittleEndian.Uint64(object[40:48]),
		Phentsize: binary.LittleEndian.Uint16(object[54:56]),
		Phnum:     binary.LittleEndian.Uint16(object[56:58]),
		Shentsize: binary.LittleEndian.Uint16(object[58:60]),
		Shnum:     binary.LittleEndian.Uint16(object[60:62]),
		Shstrndx:  binary.LittleEndian.Uint16(object[62:64]),
	}

	shdrs := make([]elfmodel.Shdr, ehdr.Shnum)
	for i := 0; i < int(ehdr.Shnum); i++ {
		off := int(ehdr.Shoff) + i*elfmodel.ShdrSize
		if off+elfmodel.ShdrSize > len(object) {
			return elfmodel.Ehdr{}, nil, fmt.Errorf("linker: section header %d out of bounds", i)
		}
		s := object[off : off+elfmodel.ShdrSize]
		shdrs[i] = elfmodel.Shdr{
			Name:      binary.LittleEndian.Uint32(s[0:4]),
			Type:      binary.LittleEndian.Uint32(s[4:8]),
			Flags:     binary.LittleEndian.Uint64(s[8:16]),
			Addr:      binary.LittleEndian.Uint64(s[16:24]),
			Offset:    binary.LittleEndian.Uint64(s[24:32]),
			Size:      binary.LittleEndian.Uint64(s[32:40]),
			Link:      binary.LittleEndian.Uint32(s[40:44]),
			Info:      binary.LittleEndian.Uint32(s[44:48]),
			Addralign: binary.LittleEndian.Uint64(s[48:56]),
			Entsize:   binary.LittleEndian.Uint64(s[56:64]),
		}
	}
	return ehdr, shdrs, nil
}

// nonNullSectionsByOffset returns section indices (excluding the
// null section) in ascending file-offset order, which is how
// internal/elfasm laid the bodies out and so the order this linker
// must re-concatenate them in.
func nonNullSectionsByOffset(shdrs []elfmodel.Shdr) ([]int, error) {
	var order []int
	for i, s := range shdrs {
		if s.Type == elfmodel.SHTNull {
			continue
		}
		order = append(order, i)
	}
	sort.Slice(order, func(a, bIdx int) bool { return shdrs[order[a]].Offset < shdrs[order[bIdx]].Offset })
	if len(order) == 0 {
		return nil, fmt.Errorf("linker: object has no sections")
	}
	return order, nil
}

// stringTableIndex picks the symbol-name string table: the STRTAB
// section that is not e_shstrndx's section-name table.
func stringTableIndex(shdrs []elfmodel.Shdr, shstrndx int) (int, error) {
	for i, s := range shdrs {
		if s.Type == elfmodel.SHTStrtab && i != shstrndx {
			return i, nil
		}
	}
	return 0, fmt.Errorf("linker: no symbol string table distinct from .shstrtab")
}

func sectionBytes(object []byte, s elfmodel.Shdr) []byte {
	return object[s.Offset : s.Offset+s.Size]
}

// rebaseSymbols adds baseAddress to every symbol's st_value in place
// and returns the entry point: the final address of whichever symbol
// name begins with '_' (spec.md §4.H.4's startup-symbol convention).
func rebaseSymbols(symtab, strtab []byte, baseAddress uint64) uint64 {
	var entry uint64
	for off := elfmodel.SymSize; off+elfmodel.SymSize <= len(symtab); off += elfmodel.SymSize {
		nameOff := binary.LittleEndian.Uint32(symtab[off : off+4])
		value := binary.LittleEndian.Uint64(symtab[off+8 : off+16])
		value += baseAddress
		binary.LittleEndian.PutUint64(symtab[off+8:off+16], value)

		if name := cString(strtab, nameOff); len(name) > 0 && name[0] == '_' {
			entry = value
		}
	}
	return entry
}

func cString(strtab []byte, offset uint32) string {
	end := offset
	for int(end) < len(strtab) && strtab[end] != 0 {
		end++
	}
	return string(strtab[offset:end])
}

// applyRelocations overwrites four bytes of text at each Rela's
// r_offset with the little-endian st_value of the symbol it names;
// spec.md §4.H.5 is explicit that this is an absolute overwrite, not
// a PC-relative displacement calculation.
func applyRelocations(text, relas, symtab []byte) {
	for off := 0; off+elfmodel.RelaSize <= len(relas); off += elfmodel.RelaSize {
		rOffset := binary.LittleEndian.Uint64(relas[off : off+8])
		info := binary.LittleEndian.Uint64(relas[off+8 : off+16])
		symIndex := elfmodel.RelaSymIndex(info)

		symOff := int(symIndex) * elfmodel.SymSize
		if symOff+elfmodel.SymSize > len(symtab) {
			continue
		}
		value := binary.LittleEndian.Uint64(symtab[symOff+8 : symOff+16])

		if int(rOffset)+4 > len(text) {
			continue
		}
		binary.LittleEndian.PutUint32(text[rOffset:rOffset+4], uint32(value))
	}
}

// buildExecutable assembles the final ehdr+phdr+sections image: one
// RWX LOAD segment, the null section's header padded out to fill
// exactly one page alongside the header tables, and every section
// offset shifted by (page size - original ehdr size) per spec.md
// §4.H.6.
func buildExecutable(orig elfmodel.Ehdr, shdrs []elfmodel.Shdr, order []int, bodies [][]byte, textIdx int, baseAddress, entry uint64) ([]byte, error) {
	var totalSectionSize uint64
	for _, i := range order {
		totalSectionSize += uint64(len(bodies[i]))
	}

	phdr := elfmodel.Phdr{
		Type:   elfmodel.PTLoad,
		Flags:  elfmodel.PFReadWriteExec,
		Offset: pageSize,
		Vaddr:  baseAddress,
		Paddr:  baseAddress,
		Filesz: uint64(len(bodies[textIdx])),
		Memsz:  uint64(len(bodies[textIdx])),
		Align:  pageSize,
	}

	ehdr := orig
	ehdr.Type = elfmodel.ETExec
	ehdr.Entry = entry
	ehdr.Phoff = elfmodel.EhdrSize
	ehdr.Phnum = 1
	ehdr.Phentsize = elfmodel.PhdrSize
	ehdr.Shoff = pageSize + totalSectionSize

	shift := int64(pageSize) - int64(elfmodel.EhdrSize)
	for i := range shdrs {
		shdrs[i].Offset = uint64(int64(shdrs[i].Offset) + shift)
	}
	shdrs[textIdx].Addr = entry

	b := binutil.NewBuilder()
	b.WriteBytes(ehdr.Encode())
	b.WriteBytes(phdr.Encode())
	nullPad := pageSize - elfmodel.EhdrSize - elfmodel.PhdrSize
	b.WriteZeros(nullPad)

	for _, i := range order {
		b.WriteBytes(bodies[i])
	}
	for i := range shdrs {
		b.WriteBytes(shdrs[i].Encode())
	}
	return b.Bytes(), nil
}

func indexOf(shdrs []elfmodel.Shdr, typ uint32) (int, error) {
	for i, s := range shdrs {
		if s.Type == typ {
			return i, nil
		}
	}
	return 0, fmt.Errorf("linker: no section of type %d", typ)
}
