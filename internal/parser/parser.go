// Package parser implements a recursive-descent, token-preserving
// parser from a token.List to an ast.Module. Every token the grammar
// fixes in place is attached to the node that consumes it via
// ast.Base.AddToken, and scope is tracked live during parsing so a
// bare identifier can be told apart from a typedef name at the point
// the grammar needs to know which one it's looking at.
package parser

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/diagnostic"
	"github.com/gmofishsauce/zcc/internal/scope"
	"github.com/gmofishsauce/zcc/internal/sourcepos"
	"github.com/gmofishsauce/zcc/internal/token"
)

// Parser consumes a filtered (non-trivia) view of a token.List and
// produces an ast.Module. A Parser is single-use.
type Parser struct {
	toks []*token.Token
	pos  int
	file string
	log  *diagnostic.Log

	scope *scope.Scope // current innermost scope, for typedef-name disambiguation
}

// New creates a Parser over list's semantic tokens (whitespace and
// comments are skipped; the style checker walks those separately over
// the raw token.List).
func New(list *token.List, filename string, log *diagnostic.Log) *Parser {
	var toks []*token.Token
	for t := list.First(); t != nil; t = t.Next() {
		if t.Kind.IsTrivia() || t.Kind == token.PreprocessorLine {
			continue
		}
		toks = append(toks, t)
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		toks = append(toks, token.New(token.EOF, "", sourcepos.Range{}))
	}
	return &Parser{
		toks:  toks,
		file:  filename,
		log:   log,
		scope: scope.New(nil),
	}
}

func (p *Parser) cur() *token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) *token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

func (p *Parser) advance() *token.Token {
	t := p.cur()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) atPunct(s string) bool {
	t := p.cur()
	return t.Kind == token.Punctuation && t.Spelling == s
}

func (p *Parser) peekPunct(n int, s string) bool {
	t := p.peek(n)
	return t.Kind == token.Punctuation && t.Spelling == s
}

func (p *Parser) atKeyword(s string) bool {
	t := p.cur()
	return t.Kind == token.Keyword && t.Spelling == s
}

func (p *Parser) atIdent() bool {
	return p.cur().Kind == token.Identifier
}

func (p *Parser) errorf(format string, args ...interface{}) {
	loc := p.cur().Range
	p.log.AddError(diagnostic.StageParse, diagnostic.KindInvalidInput,
		sourcepos.Range{Begin: loc.Begin, End: loc.Begin}, format, args...)
}

// expectPunct consumes and returns a punctuator token of spelling s,
// recording a diagnostic and returning nil without advancing if the
// current token doesn't match.
func (p *Parser) expectPunct(s string) *token.Token {
	if p.atPunct(s) {
		return p.advance()
	}
	p.errorf("expected %q, found %q", s, p.cur().Text)
	return nil
}

func (p *Parser) expectKeyword(s string) *token.Token {
	if p.atKeyword(s) {
		return p.advance()
	}
	p.errorf("expected %q, found %q", s, p.cur().Text)
	return nil
}

func (p *Parser) expectIdent() (*token.Token, string) {
	if p.atIdent() {
		t := p.advance()
		return t, t.Text
	}
	p.errorf("expected identifier, found %q", p.cur().Text)
	return nil, ""
}

// isTypedefName reports whether name currently resolves to a typedef
// in scope, the one piece of semantic state C's grammar needs during
// parsing (the lexer hammer "T * x" is a declaration if T names a
// type and a multiplication expression statement otherwise).
func (p *Parser) isTypedefName(name string) bool {
	m, _ := p.scope.Lookup(scope.Ordinary, name)
	return m != nil && m.Kind == scope.Typedef
}

func (p *Parser) pushScope() {
	p.scope = scope.New(p.scope)
}

func (p *Parser) popScope() {
	if p.scope.Parent() != nil {
		p.scope = p.scope.Parent()
	}
}

// addToken is a small helper for attaching the just-consumed token to
// a node under construction.
func addToken(n interface{ AddToken(*token.Token) }, t *token.Token) {
	if t != nil {
		n.AddToken(t)
	}
}

// ParseModule parses the entire token stream into a Module.
func ParseModule(list *token.List, filename string, log *diagnostic.Log) *ast.Module {
	p := New(list, filename, log)
	mod := &ast.Module{SourceFile: filename}
	for !p.atEOF() {
		d := p.parseExternalDecl()
		if d == nil {
			// Parser made no progress; force it to avoid an infinite loop
			// on a construct this grammar doesn't recognize.
			if !p.atEOF() {
				p.advance()
			}
			continue
		}
		mod.Decls = append(mod.Decls, d)
		mod.Extend(d)
	}
	return mod
}
