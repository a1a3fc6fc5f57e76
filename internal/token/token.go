// Package token defines the lexical tokens produced by internal/lexer
// and consumed by internal/parser and internal/style. Whitespace and
// comment tokens are preserved rather than discarded, and the token
// stream is doubly linked, so the style checker can walk token-to-token
// including the trivia the parser itself skips over.
package token

import "github.com/gmofishsauce/zcc/internal/sourcepos"

// Kind is the closed set of token categories.
type Kind int

const (
	Invalid Kind = iota

	Identifier
	Keyword

	IntLiteral
	CharLiteral
	StringLiteral
	WideStringLiteral

	Punctuation

	WhitespaceSpace
	WhitespaceTab
	WhitespaceNewline

	CommentLine
	CommentBlock

	PreprocessorLine

	LexError

	EOF
)

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case IntLiteral:
		return "integer literal"
	case CharLiteral:
		return "character literal"
	case StringLiteral:
		return "string literal"
	case WideStringLiteral:
		return "wide string literal"
	case Punctuation:
		return "punctuation"
	case WhitespaceSpace, WhitespaceTab, WhitespaceNewline:
		return "whitespace"
	case CommentLine, CommentBlock:
		return "comment"
	case PreprocessorLine:
		return "preprocessor line"
	case LexError:
		return "lexer error"
	case EOF:
		return "end of file"
	default:
		return "invalid"
	}
}

// IsTrivia reports whether the token carries no semantic weight for the
// parser (whitespace, comments) — the parser skips these but the style
// checker still walks them.
func (k Kind) IsTrivia() bool {
	switch k {
	case WhitespaceSpace, WhitespaceTab, WhitespaceNewline, CommentLine, CommentBlock:
		return true
	default:
		return false
	}
}

// Token is one lexical unit. Text is always the exact source bytes that
// produced it, so concatenating Text over the whole stream reproduces
// the input byte-for-byte.
type Token struct {
	Kind  Kind
	Text  string
	Range sourcepos.Range

	// Keyword or Punctuation tokens additionally carry a normalized
	// spelling for fast dispatch (e.g. "struct", "->"); for all other
	// kinds this is empty.
	Spelling string

	prev *Token
	next *Token
}

// New builds a detached token; List.Append links it into a stream.
func New(kind Kind, text string, rng sourcepos.Range) *Token {
	return &Token{Kind: kind, Text: text, Range: rng}
}

// Prev and Next walk the doubly linked stream the lexer builds. Either
// may be nil at the ends of the stream.
func (t *Token) Prev() *Token { return t.prev }
func (t *Token) Next() *Token { return t.next }

// List is the ordered, doubly linked token sequence the lexer owns.
// Downstream stages borrow nodes from it; they never mutate Prev/Next
// themselves.
type List struct {
	head *Token
	tail *Token
	n    int
}

// NewList returns an empty token list.
func NewList() *List {
	return &List{}
}

// Append links tok onto the end of the list.
func (l *List) Append(tok *Token) {
	if l.tail == nil {
		l.head = tok
		l.tail = tok
		tok.prev = nil
		tok.next = nil
		l.n = 1
		return
	}
	tok.prev = l.tail
	tok.next = nil
	l.tail.next = tok
	l.tail = tok
	l.n++
}

// First returns the first token in the list, or nil if the list is
// empty.
func (l *List) First() *Token { return l.head }

// Last returns the last token in the list, or nil if the list is empty.
func (l *List) Last() *Token { return l.tail }

// Len returns the number of tokens in the list.
func (l *List) Len() int { return l.n }

// Text concatenates every token's exact source text in order. Used by
// tests to verify byte-exact round-tripping and by internal/style's fix
// mode to reconstruct a file.
func (l *List) Text() string {
	var out []byte
	for t := l.head; t != nil; t = t.next {
		out = append(out, t.Text...)
	}
	return string(out)
}

// Slice returns every token in order as a plain slice, for code that
// wants random access or range-for without pointer chasing.
func (l *List) Slice() []*Token {
	out := make([]*Token, 0, l.n)
	for t := l.head; t != nil; t = t.next {
		out = append(out, t)
	}
	return out
}
