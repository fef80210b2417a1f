// Package diag implements the toolchain's error taxonomy and its
// constructor-injected diagnostic sink. Every error is reported at its
// point of detection with a (row, column) position and a short kind
// label, per spec.md §7; nothing here is global mutable state.
package diag

import (
	"fmt"
	"io"
)

// Kind classifies where in the pipeline an error was detected.
type Kind int

const (
	Lex Kind = iota
	Parse
	Semantic
	Codegen
	RegAlloc
	Link
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex"
	case Parse:
		return "parse"
	case Semantic:
		return "semantic"
	case Codegen:
		return "codegen"
	case RegAlloc:
		return "regalloc"
	case Link:
		return "link"
	default:
		return "error"
	}
}

// Pos is a 1-based row/column source position.
type Pos struct {
	Row int
	Col int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Row, p.Col) }

// Error is a diagnostic with a kind label and position, satisfying the
// standard error interface so it composes with errors.Is/As.
type Error struct {
	Kind Kind
	Pos  Pos
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.Row == 0 && e.Pos.Col == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Msg)
}

func New(kind Kind, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Sink is a thin, constructor-injected wrapper around the process's
// diagnostic stream. It carries no state beyond its writer and whether
// to colour output, so tests can inject a bytes.Buffer in place of
// os.Stderr.
type Sink struct {
	w      io.Writer
	Colour bool
}

func NewSink(w io.Writer, colour bool) *Sink {
	return &Sink{w: w, Colour: colour}
}

func (s *Sink) Report(err *Error) {
	if s.Colour {
		fmt.Fprintf(s.w, "\x1b[31m%s\x1b[0m\n", err.Error())
		return
	}
	fmt.Fprintln(s.w, err.Error())
}
