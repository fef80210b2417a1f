// Package elfmodel mirrors the System V ELF64 layout this toolchain
// targets: header, section, symbol, relocation, and program header
// record types plus their little-endian serializers. It fixes the
// constants spec.md §4.B names (64-bit class, little-endian, SysV
// ABI, x86-64 machine) and leaves layout decisions (offsets, section
// order) to the assembler and linker packages that use it.
package elfmodel

import "github.com/xyproto/minic/internal/binutil"

// File classes, data encodings, OS/ABI, and machine constants.
const (
	ELFClass64      = 2
	ELFDataLittle   = 1
	ELFVersionCurr  = 1
	ELFOSABISysV    = 0
	ELFMachineX8664 = 0x3e
)

// Object file types (e_type).
const (
	ETNone = 0
	ETRel  = 1
	ETExec = 2
	ETDyn  = 3
)

// Section header types (sh_type).
const (
	SHTNull    = 0
	SHTProgbit = 1
	SHTSymtab  = 2
	SHTStrtab  = 3
	SHTRela    = 4
)

// Section header flags (sh_flags).
const (
	SHFWrite     = 0x1
	SHFAlloc     = 0x2
	SHFExecInstr = 0x4
	SHFInfoLink  = 0x40
)

// Program header types and flags.
const (
	PTLoad          = 1
	PFExec          = 0x1
	PFWrite         = 0x2
	PFRead          = 0x4
	PFReadExec      = PFRead | PFExec
	PFReadWrite     = PFRead | PFWrite
	PFReadWriteExec = PFRead | PFWrite | PFExec
)

// Symbol binding and type, packed into st_info as (bind<<4)|type.
const (
	STBLocal  = 0
	STBGlobal = 1
	STTNotype = 0
	STTFunc   = 2
)

// Relocation type used by this toolchain: an absolute 32-bit symbol
// address, no addend arithmetic beyond the raw value (spec.md §4.H).
const RX8664_32 = 1

const (
	EhdrSize = 64
	PhdrSize = 56
	ShdrSize = 64
	SymSize  = 24
	RelaSize = 24
)

// Ehdr is the ELF64 file header.
type Ehdr struct {
	Type      uint16
	Machine   uint16
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

func (e *Ehdr) Encode() []byte {
	b := binutil.NewBuilder()
	b.PutU8(0x7f)
	b.PutU8('E')
	b.PutU8('L')
	b.PutU8('F')
	b.PutU8(ELFClass64)
	b.PutU8(ELFDataLittle)
	b.PutU8(ELFVersionCurr)
	b.PutU8(ELFOSABISysV)
	b.WriteZeros(8) // EI_ABIVERSION + padding, 7+1 bytes to fill e_ident[16]
	b.PutU16(e.Type)
	b.PutU16(e.Machine)
	b.PutU32(ELFVersionCurr)
	b.PutU64(e.Entry)
	b.PutU64(e.Phoff)
	b.PutU64(e.Shoff)
	b.PutU32(0) // e_flags
	b.PutU16(EhdrSize)
	b.PutU16(e.Phentsize)
	b.PutU16(e.Phnum)
	b.PutU16(e.Shentsize)
	b.PutU16(e.Shnum)
	b.PutU16(e.Shstrndx)
	return b.Bytes()
}

// Phdr is one ELF64 program header table entry.
type Phdr struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

func (p *Phdr) Encode() []byte {
	b := binutil.NewBuilder()
	b.PutU32(p.Type)
	b.PutU32(p.Flags)
	b.PutU64(p.Offset)
	b.PutU64(p.Vaddr)
	b.PutU64(p.Paddr)
	b.PutU64(p.Filesz)
	b.PutU64(p.Memsz)
	b.PutU64(p.Align)
	return b.Bytes()
}

// Shdr is one ELF64 section header table entry.
type Shdr struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

func (s *Shdr) Encode() []byte {
	b := binutil.NewBuilder()
	b.PutU32(s.Name)
	b.PutU32(s.Type)
	b.PutU64(s.Flags)
	b.PutU64(s.Addr)
	b.PutU64(s.Offset)
	b.PutU64(s.Size)
	b.PutU32(s.Link)
	b.PutU32(s.Info)
	b.PutU64(s.Addralign)
	b.PutU64(s.Entsize)
	return b.Bytes()
}

// Sym is one ELF64 symbol table entry.
type Sym struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

func (s *Sym) Encode() []byte {
	b := binutil.NewBuilder()
	b.PutU32(s.Name)
	b.PutU8(s.Info)
	b.PutU8(s.Other)
	b.PutU16(s.Shndx)
	b.PutU64(s.Value)
	b.PutU64(s.Size)
	return b.Bytes()
}

// SymInfo packs a binding and type into st_info.
func SymInfo(bind, typ uint8) uint8 { return (bind << 4) | typ }

// Rela is one ELF64 relocation-with-addend entry.
type Rela struct {
	Offset uint64
	Info   uint64
	Addend int64
}

func (r *Rela) Encode() []byte {
	b := binutil.NewBuilder()
	b.PutU64(r.Offset)
	b.PutU64(r.Info)
	b.PutI64(r.Addend)
	return b.Bytes()
}

// RelaInfo packs a symbol index and relocation type into r_info, per
// spec.md §4.B: (sym_index << 32) | type_code.
func RelaInfo(symIndex uint32, typ uint32) uint64 {
	return (uint64(symIndex) << 32) | uint64(typ)
}

// RelaSymIndex extracts the symbol index the linker resolves against.
func RelaSymIndex(info uint64) uint32 { return uint32(info >> 32) }
