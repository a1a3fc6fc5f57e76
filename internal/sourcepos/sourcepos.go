// Package sourcepos tracks positions within a single preprocessed C
// translation unit. Every token, AST node and diagnostic message carries
// one of these so the compiler can always report where something came
// from.
package sourcepos

import "fmt"

// Pos is a single point in a source file: byte-exact line and column,
// both 1-based. Column counts bytes, not runes; the lexer only needs to
// be right about ASCII punctuation and identifier boundaries.
type Pos struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether p names an actual location.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Range spans from Begin up to and including End. For a single-character
// token Begin == End.
type Range struct {
	Begin Pos
	End   Pos
}

func (r Range) String() string {
	return r.Begin.String()
}

// Tracker advances a Pos over a byte stream, updating line/column as it
// goes. It has no knowledge of token boundaries; the lexer owns that.
type Tracker struct {
	file   string
	line   int
	column int
}

// NewTracker creates a Tracker starting at line 1, column 1 of file.
func NewTracker(file string) *Tracker {
	return &Tracker{file: file, line: 1, column: 1}
}

// Pos returns the current position.
func (t *Tracker) Pos() Pos {
	return Pos{File: t.file, Line: t.line, Column: t.column}
}

// Advance moves the tracker past one consumed byte b.
func (t *Tracker) Advance(b byte) {
	if b == '\n' {
		t.line++
		t.column = 1
		return
	}
	t.column++
}
