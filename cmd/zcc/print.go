package main

import (
	"fmt"
	"io"

	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/token"
)

// writeTokens prints one line per non-trivia token: its kind, spelling
// or text, and source position, for -mode lex inspection. Whitespace
// and comments are skipped since they'd dwarf the useful output; the
// style checker (cmd/zfmt) is what actually cares about them.
func writeTokens(w io.Writer, toks *token.List) error {
	for t := toks.First(); t != nil; t = t.Next() {
		if t.Kind.IsTrivia() || t.Kind == token.EOF {
			continue
		}
		text := t.Text
		if t.Spelling != "" {
			text = t.Spelling
		}
		if _, err := fmt.Fprintf(w, "%s: %s %q\n", t.Range.Begin, t.Kind, text); err != nil {
			return err
		}
	}
	return nil
}

// writeDecls prints one line per top-level declaration: its begin
// position and concrete Go type, for -mode parse inspection. internal/ast has
// no pretty-printer of its own (style.go reconstructs source text, not
// a structural dump), so this walks only the module's direct children
// rather than the full tree.
func writeDecls(w io.Writer, mod *ast.Module) error {
	for _, d := range mod.Decls {
		if _, err := fmt.Fprintf(w, "%s: %T\n", d.Loc().Begin, d); err != nil {
			return err
		}
	}
	return nil
}
