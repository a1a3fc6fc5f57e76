// Package ast defines the abstract syntax tree produced by
// internal/parser: a tagged variant with one concrete Go type per node
// shape (marker-method interfaces — Decl/Stmt/Expr — over concrete
// structs), every node retaining pointers into the token stream for
// every token it directly consumed. Keeping the consumed tokens on the
// node, rather than only a begin/end source range, is what lets the
// style checker walk the same tree the compiler does and reconstruct
// the exact original text (including comments and whitespace) instead
// of re-synthesizing it from the parsed structure.
package ast

import (
	"github.com/gmofishsauce/zcc/internal/cgtype"
	"github.com/gmofishsauce/zcc/internal/sourcepos"
	"github.com/gmofishsauce/zcc/internal/token"
)

// Node is implemented by every AST node shape. Children returns direct
// child nodes in source order; OwnTokens returns the tokens this node
// itself consumed (not its children's). See CollectTokens for how the
// two compose back into full source-order token coverage.
type Node interface {
	Loc() sourcepos.Range
	OwnTokens() []*token.Token
	Children() []Node
}

// Base is embedded by every concrete node; it stores the tokens the
// node consumed directly and the node's source range.
type Base struct {
	Tokens []*token.Token
	Range  sourcepos.Range
}

// OwnTokens implements Node.
func (b *Base) OwnTokens() []*token.Token { return b.Tokens }

// Loc implements Node.
func (b *Base) Loc() sourcepos.Range { return b.Range }

// AddToken records tok as consumed by this node and widens Range to
// cover it. The parser calls this for every keyword, punctuator and
// identifier it fixes in place as belonging to this node.
func (b *Base) AddToken(tok *token.Token) {
	b.Tokens = append(b.Tokens, tok)
	if !b.Range.Begin.IsValid() {
		b.Range.Begin = tok.Range.Begin
	}
	b.Range.End = tok.Range.End
}

// Extend widens Range to also cover child's range, used after attaching
// a child node so the parent's own Range spans the whole construct.
func (b *Base) Extend(child Node) {
	if child == nil {
		return
	}
	r := child.Loc()
	if !b.Range.Begin.IsValid() {
		b.Range.Begin = r.Begin
	}
	b.Range.End = r.End
}

// Decl, Stmt and Expr are the three syntactic categories AST nodes fall
// into, each a marker-interface sum type over Node.
type Decl interface {
	Node
	declNode()
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
	Type() *cgtype.Type
	SetType(*cgtype.Type)
}

// ExprBase is embedded by every Expr concrete type to carry its
// resolved cgtype (filled in by internal/sema).
type ExprBase struct {
	Base
	typ *cgtype.Type
}

func (e *ExprBase) exprNode()             {}
func (e *ExprBase) Type() *cgtype.Type    { return e.typ }
func (e *ExprBase) SetType(t *cgtype.Type) { e.typ = t }

// Module is the AST root: one source file's top-level declarations.
type Module struct {
	Base
	SourceFile string
	Decls      []Decl
}

func (m *Module) Children() []Node {
	out := make([]Node, 0, len(m.Decls))
	for _, d := range m.Decls {
		out = append(out, d)
	}
	return out
}

// Walk performs a pre-order traversal of n and every descendant,
// calling visit(node) for each (including n itself).
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// CollectTokens gathers every token referenced anywhere under n (its
// own tokens plus every descendant's) and returns them in source order.
// Since every node's OwnTokens is a subset of the single token.List the
// lexer produced, sorting the union by position recovers source order
// regardless of the order nodes were built in during parsing, without
// every concrete node having to interleave its own tokens with its
// children's by hand.
func CollectTokens(n Node) []*token.Token {
	var out []*token.Token
	Walk(n, func(node Node) {
		out = append(out, node.OwnTokens()...)
	})
	sortTokensByPosition(out)
	return out
}

func sortTokensByPosition(toks []*token.Token) {
	// Insertion sort: the inputs are near-sorted in practice (nodes are
	// built in roughly source order), and this avoids pulling in
	// sort.Slice's reflection-based comparator for a leaf utility.
	for i := 1; i < len(toks); i++ {
		for j := i; j > 0 && tokenLess(toks[j], toks[j-1]); j-- {
			toks[j], toks[j-1] = toks[j-1], toks[j]
		}
	}
}

func tokenLess(a, b *token.Token) bool {
	pa, pb := a.Range.Begin, b.Range.Begin
	if pa.Line != pb.Line {
		return pa.Line < pb.Line
	}
	return pa.Column < pb.Column
}
