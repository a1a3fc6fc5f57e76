// Package style implements the §4.8 whitespace style checker: the same
// lexer and parser internal/sema consumes are reused to assign every
// token a nesting level and a continuation role, then a linear pass
// over the token stream verifies or rewrites indentation, trailing
// whitespace and line length against that annotation.
package style

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/token"
)

// Options parameterizes the rule catalogue's two tunable limits.
type Options struct {
	TabWidth      int
	MaxLineLength int
}

// DefaultOptions returns the catalogue's defaults: tabs are
// conceptually 8 columns wide (only relevant if a future rule reports
// expanded column numbers; indentation itself is always checked as raw
// characters, never expanded) and lines are capped at 80 columns.
func DefaultOptions() Options {
	return Options{TabWidth: 8, MaxLineLength: 80}
}

// Continuation distinguishes a token that begins a fresh physical line
// as the continuation of a statement or expression opened on an
// earlier line from one that genuinely starts a new statement.
type Continuation int

const (
	NotContinuation Continuation = iota
	PrimaryContinuation
	SecondaryContinuation
)

// Annotation is what Annotate records for one token: the brace-nesting
// level in effect where it appears, and (for the first token on a
// physical line) whether that line is a fresh statement or a
// continuation of the previous one.
type Annotation struct {
	Level        int
	LineBegin    bool
	Continuation Continuation
}

// Annotate walks root the way internal/ast.Walk does, assigning every
// token under it a nesting level that increases by one inside each
// *ast.Block (the brace-delimited scope the parser builds for a
// compound statement), then makes a second, purely linear pass over
// the same tokens in source order to classify which ones begin a
// physical line and, for those, whether the line is a continuation.
//
// Level tracks scope nesting rather than raw brace-character depth so
// the checker never re-derives C's block rules itself. Only a braced
// compound statement is a Block: an unbraced single-statement body
// (after if, else, while, for or do) takes the level of the statement
// that owns it.
func Annotate(root ast.Node) map[*token.Token]*Annotation {
	levels := map[*token.Token]int{}
	assignLevels(root, 0, levels)

	toks := ast.CollectTokens(root)
	out := make(map[*token.Token]*Annotation, len(toks))
	lastLine := -1
	bracketDepth := 0
	for _, t := range toks {
		lvl := levels[t]
		a := &Annotation{Level: lvl}
		line := t.Range.Begin.Line
		if line != lastLine {
			a.LineBegin = true
			switch {
			case bracketDepth <= 0:
				a.Continuation = NotContinuation
			case bracketDepth == 1:
				a.Continuation = PrimaryContinuation
			default:
				a.Continuation = SecondaryContinuation
			}
			lastLine = line
		}
		out[t] = a
		switch t.Spelling {
		case "(", "[":
			bracketDepth++
		case ")", "]":
			if bracketDepth > 0 {
				bracketDepth--
			}
		}
	}
	return out
}

func assignLevels(n ast.Node, level int, out map[*token.Token]int) {
	if n == nil {
		return
	}
	for _, t := range n.OwnTokens() {
		out[t] = level
	}
	childLevel := level
	if _, ok := n.(*ast.Block); ok {
		childLevel = level + 1
	}
	for _, c := range n.Children() {
		assignLevels(c, childLevel, out)
	}
}
