package asmlex

// registerNames is the set of lowercase register spellings the lexer
// recognizes, shared between both dialects (AT&T strips the leading
// '%' before consulting it). Kept local to lexing — internal/ir's
// RegisterNumber/RegisterSize own the canonical numbering tables used
// from the instruction analyzer onward.
var registerNames = map[string]bool{
	"al": true, "ax": true, "eax": true, "rax": true,
	"cl": true, "cx": true, "ecx": true, "rcx": true,
	"dl": true, "dx": true, "edx": true, "rdx": true,
	"bl": true, "bx": true, "ebx": true, "rbx": true,
	"ah": true, "spl": true, "sp": true, "esp": true, "rsp": true,
	"ch": true, "bpl": true, "bp": true, "ebp": true, "rbp": true,
	"dh": true, "sil": true, "si": true, "esi": true, "rsi": true,
	"bh": true, "dil": true, "di": true, "edi": true, "rdi": true,
	"r8": true, "r8d": true, "r8w": true, "r8b": true,
	"r9": true, "r9d": true, "r9w": true, "r9b": true,
	"r10": true, "r10d": true, "r10w": true, "r10b": true,
	"r11": true, "r11d": true, "r11w": true, "r11b": true,
	"r12": true, "r12d": true, "r12w": true, "r12b": true,
	"r13": true, "r13d": true, "r13w": true, "r13b": true,
	"r14": true, "r14d": true, "r14w": true, "r14b": true,
	"r15": true, "r15d": true, "r15w": true, "r15b": true,
}

func isRegisterName(name string) bool { return registerNames[name] }
