package parser

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/token"
)

// loopMacroNames are vendor macros that expand to a loop construct at
// the preprocessor level but whose invocation the parser recognizes
// directly so the style checker can preserve the macro spelling
// instead of normalizing it away.
var loopMacroNames = map[string]bool{
	"forever": true,
}

func (p *Parser) parseStmt() ast.Stmt {
	t := p.cur()
	switch {
	case p.atPunct("{"):
		return p.parseBlock()
	case t.Kind == token.Keyword:
		switch t.Spelling {
		case "asm", "__asm__":
			return p.parseAsmStmt()
		case "break":
			n := &ast.BreakStmt{}
			addToken(n, p.advance())
			addToken(n, p.expectPunct(";"))
			return n
		case "continue":
			n := &ast.ContinueStmt{}
			addToken(n, p.advance())
			addToken(n, p.expectPunct(";"))
			return n
		case "goto":
			n := &ast.GotoStmt{}
			addToken(n, p.advance())
			_, n.Label = p.expectIdent()
			addToken(n, p.expectPunct(";"))
			return n
		case "return":
			n := &ast.ReturnStmt{}
			addToken(n, p.advance())
			if !p.atPunct(";") {
				n.Value = p.parseExpr()
				n.Extend(n.Value)
			}
			addToken(n, p.expectPunct(";"))
			return n
		case "if":
			return p.parseIfStmt()
		case "while":
			return p.parseWhileStmt()
		case "do":
			return p.parseDoStmt()
		case "for":
			return p.parseForStmt()
		case "switch":
			return p.parseSwitchStmt()
		case "case":
			n := &ast.CaseLabelStmt{}
			addToken(n, p.advance())
			n.Value = p.parseAssignExpr()
			n.Extend(n.Value)
			addToken(n, p.expectPunct(":"))
			return n
		case "default":
			n := &ast.DefaultLabelStmt{}
			addToken(n, p.advance())
			addToken(n, p.expectPunct(":"))
			return n
		}
	case t.Kind == token.Identifier && loopMacroNames[t.Text]:
		macro := p.advance()
		n := &ast.LoopMacroStmt{MacroName: macro.Text}
		addToken(n, macro)
		n.Body = p.parseStmt()
		n.Extend(n.Body)
		return n
	case t.Kind == token.Identifier && p.peekPunct(1, ":"):
		name := p.advance()
		n := &ast.GotoLabelStmt{Name: name.Text}
		addToken(n, name)
		addToken(n, p.advance()) // ':'
		return n
	case p.atPunct(";"):
		n := &ast.NullStmt{}
		addToken(n, p.advance())
		return n
	}
	if p.startsDeclaration() {
		d := p.parseLocalDecl()
		n := &ast.DeclStmt{Decl: d}
		n.Extend(d)
		return n
	}
	e := p.parseExpr()
	n := &ast.ExprStmt{Expr: e}
	n.Extend(e)
	addToken(n, p.expectPunct(";"))
	return n
}

func (p *Parser) parseBlock() *ast.Block {
	lb := p.expectPunct("{")
	p.pushScope()
	defer p.popScope()
	b := &ast.Block{}
	addToken(b, lb)
	for !p.atPunct("}") && !p.atEOF() {
		if p.startsDeclaration() {
			d := p.parseLocalDecl()
			n := &ast.DeclStmt{Decl: d}
			n.Extend(d)
			b.Items = append(b.Items, n)
			b.Extend(n)
			continue
		}
		s := p.parseStmt()
		b.Items = append(b.Items, s)
		b.Extend(s)
	}
	addToken(b, p.expectPunct("}"))
	return b
}

func (p *Parser) parseAsmStmt() *ast.AsmStmt {
	n := &ast.AsmStmt{}
	addToken(n, p.advance()) // asm|__asm__
	for p.atKeyword("__volatile__") || p.atKeyword("volatile") {
		addToken(n, p.advance())
	}
	addToken(n, p.expectPunct("("))
	if p.cur().Kind == token.StringLiteral {
		tmpl := p.advance()
		n.Template = tmpl.Text
		addToken(n, tmpl)
	}
	depth := 1
	for depth > 0 && !p.atEOF() {
		if p.atPunct("(") {
			depth++
		} else if p.atPunct(")") {
			depth--
			if depth == 0 {
				addToken(n, p.advance())
				break
			}
		}
		if p.cur().Kind == token.StringLiteral || p.cur().Kind == token.Identifier || p.cur().Kind == token.Punctuation {
			n.Clauses = append(n.Clauses, p.cur().Text)
		}
		addToken(n, p.advance())
	}
	addToken(n, p.expectPunct(";"))
	return n
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	n := &ast.IfStmt{}
	addToken(n, p.advance()) // if
	addToken(n, p.expectPunct("("))
	n.Cond = p.parseExpr()
	addToken(n, p.expectPunct(")"))
	n.Then = p.parseStmt()
	if p.atKeyword("else") {
		addToken(n, p.advance())
		n.Else = p.parseStmt()
	}
	return n
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	n := &ast.WhileStmt{}
	addToken(n, p.advance()) // while
	addToken(n, p.expectPunct("("))
	n.Cond = p.parseExpr()
	addToken(n, p.expectPunct(")"))
	n.Body = p.parseStmt()
	return n
}

func (p *Parser) parseDoStmt() *ast.DoStmt {
	n := &ast.DoStmt{}
	addToken(n, p.advance()) // do
	n.Body = p.parseStmt()
	addToken(n, p.expectKeyword("while"))
	addToken(n, p.expectPunct("("))
	n.Cond = p.parseExpr()
	addToken(n, p.expectPunct(")"))
	addToken(n, p.expectPunct(";"))
	return n
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	n := &ast.ForStmt{}
	addToken(n, p.advance()) // for
	addToken(n, p.expectPunct("("))
	if p.startsDeclaration() {
		d := p.parseLocalDecl()
		ds := &ast.DeclStmt{Decl: d}
		ds.Extend(d)
		n.Init = ds
	} else if !p.atPunct(";") {
		e := p.parseExpr()
		es := &ast.ExprStmt{Expr: e}
		es.Extend(e)
		addToken(es, p.expectPunct(";"))
		n.Init = es
	} else {
		addToken(n, p.advance())
	}
	if !p.atPunct(";") {
		n.Cond = p.parseExpr()
	}
	addToken(n, p.expectPunct(";"))
	if !p.atPunct(")") {
		n.Post = p.parseExpr()
	}
	addToken(n, p.expectPunct(")"))
	n.Body = p.parseStmt()
	return n
}

func (p *Parser) parseSwitchStmt() *ast.SwitchStmt {
	n := &ast.SwitchStmt{}
	addToken(n, p.advance()) // switch
	addToken(n, p.expectPunct("("))
	n.Tag = p.parseExpr()
	addToken(n, p.expectPunct(")"))
	n.Body = p.parseStmt()
	return n
}

// startsDeclaration reports whether the tokens at the current position
// begin a declaration rather than an expression statement: a storage
// class, type qualifier, known type keyword, or a typedef name used as
// the leading specifier.
func (p *Parser) startsDeclaration() bool {
	t := p.cur()
	if t.Kind != token.Keyword && t.Kind != token.Identifier {
		return false
	}
	if t.Kind == token.Keyword {
		if storageKeyword.has(t.Spelling) || qualKeyword.has(t.Spelling) || funcSpecKeyword.has(t.Spelling) {
			return true
		}
		if basicTypeKeywords[t.Spelling] || t.Spelling == "struct" || t.Spelling == "union" || t.Spelling == "enum" {
			return true
		}
		return false
	}
	return p.isTypedefName(t.Text)
}
