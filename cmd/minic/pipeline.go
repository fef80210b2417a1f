package main

import (
	"fmt"
	"os"

	"github.com/xyproto/minic/internal/asmlex"
	"github.com/xyproto/minic/internal/asmparse"
	"github.com/xyproto/minic/internal/config"
	"github.com/xyproto/minic/internal/elfasm"
	"github.com/xyproto/minic/internal/emit"
	"github.com/xyproto/minic/internal/encoder"
	"github.com/xyproto/minic/internal/frontend"
	"github.com/xyproto/minic/internal/instranalyze"
	"github.com/xyproto/minic/internal/ir"
	"github.com/xyproto/minic/internal/isel"
	"github.com/xyproto/minic/internal/linker"
	"github.com/xyproto/minic/internal/liveness"
	"github.com/xyproto/minic/internal/regalloc"
	"github.com/xyproto/minic/internal/tac"
)

// compileToText runs the compiler path (I -> J -> K -> L): a frontend
// AST in, x86-64 assembly text out, in whichever dialect cfg selects.
func compileToText(fn *frontend.Function, cfg config.Config) (string, error) {
	lowered, err := tac.Lower(fn)
	if err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}
	tac.BuildCFG(lowered)
	liveness.Analyze(lowered)
	if _, err := regalloc.Allocate(lowered, len(regalloc.PhysicalRegisters)); err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}
	prog, err := isel.Select(lowered)
	if err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}

	progs := []*isel.Program{prog}
	if cfg.ATT {
		return emit.ATT(progs), nil
	}
	return emit.Intel(progs), nil
}

// assembleText runs the assembler path (C -> D -> E -> F -> G): raw
// assembly source in, a relocatable ELF64 object's bytes out.
func assembleText(src string, cfg config.Config) ([]byte, error) {
	var (
		tokens  []asmlex.Token
		err     error
		dialect asmparse.Dialect
	)
	if cfg.ATT {
		tokens, err = asmlex.ATT(src)
		dialect = asmparse.ATT
	} else {
		tokens, err = asmlex.Intel(src)
		dialect = asmparse.Intel
	}
	if err != nil {
		return nil, fmt.Errorf("assemble: lex: %w", err)
	}

	prog, err := asmparse.Parse(tokens, dialect)
	if err != nil {
		return nil, fmt.Errorf("assemble: parse: %w", err)
	}

	symbols := make([]elfasm.Symbol, 0, len(prog.Symbols))
	for _, sym := range prog.Symbols {
		instrs := make([]ir.Instruction, 0, len(sym.Instrs))
		for _, parsed := range sym.Instrs {
			instr, err := instranalyze.FromParsed(parsed)
			if err != nil {
				return nil, fmt.Errorf("assemble: symbol %s: %w", sym.Name, err)
			}
			instrs = append(instrs, instr)
		}
		instranalyze.Analyze(instrs)

		encoded, err := encoder.EncodeSymbol(instrs)
		if err != nil {
			return nil, fmt.Errorf("assemble: symbol %s: %w", sym.Name, err)
		}
		symbols = append(symbols, elfasm.Symbol{Name: sym.Name, Global: sym.Global, Code: encoded})
	}

	obj, err := elfasm.Assemble(symbols)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	return obj.Bytes, nil
}

// linkObject runs the linker path (H): a relocatable object's bytes
// in, a loadable executable's bytes out.
func linkObject(object []byte, cfg config.Config) ([]byte, error) {
	exe, err := linker.Link(object, cfg.BaseAddress)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	return exe, nil
}

func readFrontendFile(path string) (*frontend.Function, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	defer f.Close()
	fn, err := frontend.DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return fn, nil
}

func writeOutput(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
