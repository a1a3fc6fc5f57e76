package parser

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/token"
)

// binPrec gives each BinaryOp's precedence, highest binds tightest.
// Assignment and comma are handled outside this table since they are
// right-associative (assignment) or lowest-precedence (comma) and are
// parsed by their own functions rather than via the climbing loop.
var binPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

var binOpFor = map[string]ast.BinaryOp{
	"||": ast.OpLogOr, "&&": ast.OpLogAnd,
	"|": ast.OpBitOr, "^": ast.OpBitXor, "&": ast.OpBitAnd,
	"==": ast.OpEq, "!=": ast.OpNeq,
	"<": ast.OpLt, ">": ast.OpGt, "<=": ast.OpLe, ">=": ast.OpGe,
	"<<": ast.OpShl, ">>": ast.OpShr,
	"+": ast.OpAdd, "-": ast.OpSub,
	"*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod,
}

var assignOpFor = map[string]ast.BinaryOp{
	"=": ast.OpAssign, "+=": ast.OpAddAssign, "-=": ast.OpSubAssign,
	"*=": ast.OpMulAssign, "/=": ast.OpDivAssign, "%=": ast.OpModAssign,
	"<<=": ast.OpShlAssign, ">>=": ast.OpShrAssign,
	"&=": ast.OpAndAssign, "|=": ast.OpOrAssign, "^=": ast.OpXorAssign,
}

// parseExpr parses a full expression including the comma operator,
// the broadest production (used for statement expressions and for
// clauses where C's grammar allows a comma expression).
func (p *Parser) parseExpr() ast.Expr {
	first := p.parseAssignExpr()
	if !p.atPunct(",") {
		return first
	}
	e := &ast.CommaExpr{Exprs: []ast.Expr{first}}
	e.Extend(first)
	for p.atPunct(",") {
		addToken(e, p.advance())
		next := p.parseAssignExpr()
		e.Exprs = append(e.Exprs, next)
		e.Extend(next)
	}
	return e
}

// parseAssignExpr parses a right-associative assignment (or falls
// through to a plain ternary when no assignment operator follows).
func (p *Parser) parseAssignExpr() ast.Expr {
	left := p.parseTernaryExpr()
	if op, ok := assignOpFor[p.cur().Spelling]; ok && p.cur().Kind == token.Punctuation {
		tok := p.advance()
		right := p.parseAssignExpr()
		e := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		e.Extend(left)
		addToken(e, tok)
		e.Extend(right)
		return e
	}
	return left
}

func (p *Parser) parseTernaryExpr() ast.Expr {
	cond := p.parseBinaryExpr(1)
	if !p.atPunct("?") {
		return cond
	}
	q := p.advance()
	then := p.parseExpr()
	colon := p.expectPunct(":")
	els := p.parseAssignExpr()
	e := &ast.TernaryExpr{Cond: cond, Then: then, Else: els}
	e.Extend(cond)
	addToken(e, q)
	addToken(e, colon)
	e.Extend(els)
	return e
}

// parseBinaryExpr implements precedence climbing starting at minPrec.
func (p *Parser) parseBinaryExpr(minPrec int) ast.Expr {
	left := p.parseCastExpr()
	for {
		spelling := p.cur().Spelling
		prec, ok := binPrec[spelling]
		if !ok || p.cur().Kind != token.Punctuation || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseBinaryExpr(prec + 1)
		e := &ast.BinaryExpr{Op: binOpFor[spelling], Left: left, Right: right}
		e.Extend(left)
		addToken(e, opTok)
		e.Extend(right)
		left = e
	}
}

var unaryOpFor = map[string]ast.UnaryOp{
	"-": ast.OpNeg, "+": ast.OpPos, "!": ast.OpLogNot, "~": ast.OpBitNot,
	"&": ast.OpAddrOf, "*": ast.OpDeref,
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	switch {
	case p.atPunct("++"), p.atPunct("--"):
		tok := p.advance()
		op := ast.OpPreInc
		if tok.Spelling == "--" {
			op = ast.OpPreDec
		}
		operand := p.parseUnaryExpr()
		e := &ast.UnaryExpr{Op: op, Operand: operand}
		addToken(e, tok)
		e.Extend(operand)
		return e
	case p.atPunct("-"), p.atPunct("+"), p.atPunct("!"), p.atPunct("~"), p.atPunct("&"), p.atPunct("*"):
		tok := p.advance()
		operand := p.parseCastExpr()
		e := &ast.UnaryExpr{Op: unaryOpFor[tok.Spelling], Operand: operand}
		addToken(e, tok)
		e.Extend(operand)
		return e
	case p.atKeyword("sizeof"):
		return p.parseSizeofExpr()
	case p.atKeyword("__va_arg"):
		return p.parseVaArgExpr()
	default:
		return p.parsePostfixExpr()
	}
}

func (p *Parser) parseSizeofExpr() ast.Expr {
	kw := p.advance()
	e := &ast.SizeofExpr{}
	addToken(e, kw)
	if p.atPunct("(") && p.startsTypeName(1) {
		lp := p.advance()
		addToken(e, lp)
		e.TypeName = p.parseTypeName()
		e.Extend(e.TypeName)
		addToken(e, p.expectPunct(")"))
		return e
	}
	e.Operand = p.parseUnaryExpr()
	e.Extend(e.Operand)
	return e
}

func (p *Parser) parseVaArgExpr() ast.Expr {
	kw := p.advance()
	e := &ast.VaArgExpr{}
	addToken(e, kw)
	addToken(e, p.expectPunct("("))
	e.ArgList = p.parseAssignExpr()
	e.Extend(e.ArgList)
	addToken(e, p.expectPunct(","))
	e.TypeName = p.parseTypeName()
	e.Extend(e.TypeName)
	addToken(e, p.expectPunct(")"))
	return e
}

// parseCastExpr handles `( TypeName ) Expr` versus a parenthesised
// expression, which share a prefix up through the closing paren.
func (p *Parser) parseCastExpr() ast.Expr {
	if p.atPunct("(") && p.startsTypeName(1) {
		lp := p.advance()
		tn := p.parseTypeName()
		rp := p.expectPunct(")")
		if p.atPunct("{") {
			init := p.parseInitializerList()
			e := &ast.CompoundLiteralExpr{TypeName: tn, Init: init}
			addToken(e, lp)
			e.Extend(tn)
			addToken(e, rp)
			e.Extend(init)
			return p.parsePostfixTail(e)
		}
		operand := p.parseCastExpr()
		e := &ast.CastExpr{TypeName: tn, Operand: operand}
		addToken(e, lp)
		e.Extend(tn)
		addToken(e, rp)
		e.Extend(operand)
		return e
	}
	return p.parseUnaryExpr()
}

func (p *Parser) parsePostfixExpr() ast.Expr {
	e := p.parsePrimaryExpr()
	return p.parsePostfixTail(e)
}

func (p *Parser) parsePostfixTail(e ast.Expr) ast.Expr {
	for {
		switch {
		case p.atPunct("["):
			lb := p.advance()
			idx := p.parseExpr()
			rb := p.expectPunct("]")
			n := &ast.IndexExpr{ArrayExpr: e, Index: idx}
			n.Extend(e)
			addToken(n, lb)
			n.Extend(idx)
			addToken(n, rb)
			e = n
		case p.atPunct("("):
			lp := p.advance()
			n := &ast.CallExpr{Callee: e}
			addToken(n, lp)
			if !p.atPunct(")") {
				for {
					arg := p.parseAssignExpr()
					n.Args = append(n.Args, arg)
					n.Extend(arg)
					if !p.atPunct(",") {
						break
					}
					addToken(n, p.advance())
				}
			}
			n.Extend(e)
			addToken(n, p.expectPunct(")"))
			e = n
		case p.atPunct("."):
			dot := p.advance()
			_, name := p.expectIdent()
			n := &ast.MemberExpr{BaseExpr: e, Name: name}
			n.Extend(e)
			addToken(n, dot)
			e = n
		case p.atPunct("->"):
			arrow := p.advance()
			_, name := p.expectIdent()
			n := &ast.IndirectMemberExpr{BaseExpr: e, Name: name}
			n.Extend(e)
			addToken(n, arrow)
			e = n
		case p.atPunct("++"), p.atPunct("--"):
			tok := p.advance()
			op := ast.OpPostInc
			if tok.Spelling == "--" {
				op = ast.OpPostDec
			}
			n := &ast.UnaryExpr{Op: op, Operand: e}
			n.Extend(e)
			addToken(n, tok)
			e = n
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.IntLiteral, token.CharLiteral:
		p.advance()
		e := &ast.LiteralExpr{Text: t.Text}
		addToken(e, t)
		return e
	case token.StringLiteral, token.WideStringLiteral:
		first := p.advance()
		parts := []*ast.LiteralExpr{{Text: first.Text}}
		parts[0].AddToken(first)
		for p.cur().Kind == token.StringLiteral || p.cur().Kind == token.WideStringLiteral {
			nt := p.advance()
			lit := &ast.LiteralExpr{Text: nt.Text}
			lit.AddToken(nt)
			parts = append(parts, lit)
		}
		if len(parts) == 1 {
			return parts[0]
		}
		e := &ast.StringConcatExpr{Parts: parts}
		for _, pt := range parts {
			e.Extend(pt)
		}
		return e
	case token.Identifier:
		p.advance()
		e := &ast.IdentExpr{Name: t.Text}
		addToken(e, t)
		return e
	case token.Punctuation:
		if t.Spelling == "(" {
			lp := p.advance()
			inner := p.parseExpr()
			rp := p.expectPunct(")")
			e := &ast.ParenExpr{Inner: inner}
			addToken(e, lp)
			e.Extend(inner)
			addToken(e, rp)
			return e
		}
	}
	p.errorf("expected expression, found %q", t.Text)
	// Produce a placeholder literal so callers always get a non-nil Expr
	// and parsing can keep making progress after a syntax error.
	e := &ast.LiteralExpr{Text: ""}
	return e
}

// startsTypeName reports whether the token n positions ahead begins a
// type name (used to disambiguate `(int)x` cast-vs-call and
// `(T)` sizeof/cast forms from a parenthesised expression).
func (p *Parser) startsTypeName(n int) bool {
	t := p.peek(n)
	if t.Kind == token.Keyword {
		switch t.Spelling {
		case "void", "char", "short", "int", "long", "float", "double",
			"signed", "unsigned", "_Bool", "_Complex", "struct", "union",
			"enum", "const", "volatile", "restrict", "_Atomic":
			return true
		}
	}
	if t.Kind == token.Identifier {
		return p.isTypedefName(t.Text)
	}
	return false
}
