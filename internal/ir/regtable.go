package ir

// RegisterNumber returns the canonical 0-7 encoding number and the
// expanded-bank flag for a lowercase register name, the table
// spec.md's instruction analyzer is built on: each of the eight
// encoding slots is shared by one register from the legacy bank and
// its r8-r15 counterpart (e.g. slot 0 is rax/al/ax/eax and r8).
func RegisterNumber(name string) (num int, expanded bool) {
	switch name {
	case "al", "ax", "eax", "rax", "r8", "r8d", "r8w", "r8b":
		return 0, isExpanded(name)
	case "cl", "cx", "ecx", "rcx", "r9", "r9d", "r9w", "r9b":
		return 1, isExpanded(name)
	case "dl", "dx", "edx", "rdx", "r10", "r10d", "r10w", "r10b":
		return 2, isExpanded(name)
	case "bl", "bx", "ebx", "rbx", "r11", "r11d", "r11w", "r11b":
		return 3, isExpanded(name)
	case "ah", "spl", "sp", "esp", "rsp", "r12", "r12d", "r12w", "r12b":
		return 4, isExpanded(name)
	case "ch", "bpl", "bp", "ebp", "rbp", "r13", "r13d", "r13w", "r13b":
		return 5, isExpanded(name)
	case "dh", "sil", "si", "esi", "rsi", "r14", "r14d", "r14w", "r14b":
		return 6, isExpanded(name)
	case "bh", "dil", "di", "edi", "rdi", "r15", "r15d", "r15w", "r15b":
		return 7, isExpanded(name)
	default:
		return 0, false
	}
}

// isExpanded reports whether name belongs to the r8-r15 bank: the
// second character of an expanded-register name is always a digit
// ("r8", "r10", "r15d", ...), never true of a legacy name.
func isExpanded(name string) bool {
	return len(name) > 1 && name[1] >= '0' && name[1] <= '9'
}

// RegisterSize reports the operand width a register name implies.
func RegisterSize(name string) OperandSize {
	switch name {
	case "rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15":
		return Size64
	case "eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d":
		return Size32
	case "ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
		"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w":
		return Size16
	case "ah", "al", "ch", "cl", "dh", "dl", "bh", "bl", "spl", "bpl", "sil", "dil",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b":
		return Size8
	default:
		return SizeUnknown
	}
}
