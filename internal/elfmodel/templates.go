package elfmodel

// Templates below are the fixed-per-section-kind fields from spec.md
// §4.B; the assembler (component G) fills in name/offset/size/link/
// info once layout is known.

func TextSectionTemplate() Shdr {
	return Shdr{Type: SHTProgbit, Flags: SHFAlloc | SHFExecInstr, Addralign: 1}
}

func SymtabSectionTemplate(strtabIndex, firstGlobal uint32) Shdr {
	return Shdr{Type: SHTSymtab, Link: strtabIndex, Info: firstGlobal, Entsize: SymSize, Addralign: 8}
}

func StrtabSectionTemplate() Shdr {
	return Shdr{Type: SHTStrtab, Addralign: 1}
}

func RelaTextSectionTemplate(symtabIndex, textIndex uint32) Shdr {
	return Shdr{
		Type:      SHTRela,
		Flags:     SHFInfoLink,
		Link:      symtabIndex,
		Info:      textIndex,
		Entsize:   RelaSize,
		Addralign: 8,
	}
}

func NullSectionTemplate() Shdr {
	return Shdr{}
}
