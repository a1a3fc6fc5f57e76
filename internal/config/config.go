// Package config holds the options cmd/zcc and cmd/zfmt build from
// their cobra flags and pass down into internal/*. Neither driver is
// designed beyond a thin flags-to-Options shim, so the struct shape
// here is the only place flag names and internal/* call sites need to
// agree.
package config

// Mode selects how far through the pipeline a zcc invocation runs and
// what it prints at the end.
type Mode int

const (
	ModeAsm   Mode = iota // full pipeline, emit Z80 assembly (default)
	ModeLex               // lex only, print the token stream
	ModeParse             // lex + parse, print each top-level declaration's begin position and node type
	ModeIR                // lex + parse + sema, print the IR text format
	ModeIC                // run instruction selection too, print the Z80-IC text format
)

func (m Mode) String() string {
	switch m {
	case ModeLex:
		return "lex"
	case ModeParse:
		return "parse"
	case ModeIR:
		return "ir"
	case ModeIC:
		return "ic"
	case ModeAsm:
		return "asm"
	default:
		return "unknown"
	}
}

// Options is the full set of knobs a zcc invocation runs with.
type Options struct {
	Mode       Mode
	InputPath  string
	OutputPath string
}

// StyleMode selects whether zfmt reports violations or rewrites them.
type StyleMode int

const (
	StyleCheck StyleMode = iota
	StyleFix
)

// StyleOptions is the full set of knobs a zfmt invocation runs with.
type StyleOptions struct {
	Mode          StyleMode
	InputPath     string
	OutputPath    string
	TabWidth      int
	MaxLineLength int
}
