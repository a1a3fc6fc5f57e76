package parser

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/scope"
	"github.com/gmofishsauce/zcc/internal/token"
)

func (p *Parser) parseExternalDecl() ast.Decl {
	if p.atKeyword("extern") && p.peek(1).Kind == token.StringLiteral && p.peek(1).Text == `"C"` {
		return p.parseExternC()
	}
	return p.parseDeclCommon(true)
}

func (p *Parser) parseLocalDecl() ast.Decl {
	return p.parseDeclCommon(false)
}

func (p *Parser) parseExternC() ast.Decl {
	n := &ast.ExternCDecl{}
	addToken(n, p.advance()) // extern
	addToken(n, p.advance()) // "C"
	if p.atPunct("{") {
		addToken(n, p.advance())
		for !p.atPunct("}") && !p.atEOF() {
			d := p.parseExternalDecl()
			if d == nil {
				if !p.atEOF() {
					p.advance()
				}
				continue
			}
			n.Decls = append(n.Decls, d)
			n.Extend(d)
		}
		addToken(n, p.expectPunct("}"))
		return n
	}
	d := p.parseExternalDecl()
	if d != nil {
		n.Decls = append(n.Decls, d)
		n.Extend(d)
	}
	return n
}

// declaratorIsFunction reports whether d names a function, unwrapping
// the leading pointer-return-type layers a declaration like
// `int *f(int)` adds around the FunctionDeclarator core.
func declaratorIsFunction(d ast.Declarator) bool {
	for {
		switch n := d.(type) {
		case *ast.PointerDeclarator:
			d = n.Inner
		case *ast.FunctionDeclarator:
			return true
		default:
			return false
		}
	}
}

func findFunctionDeclarator(d ast.Declarator) *ast.FunctionDeclarator {
	for {
		switch n := d.(type) {
		case *ast.PointerDeclarator:
			d = n.Inner
		case *ast.FunctionDeclarator:
			return n
		default:
			return nil
		}
	}
}

// parseDeclCommon parses one declaration (a specifier list followed by
// zero or more declarators), handling the three shapes a specifier
// list can resolve to: a bare record/enum declaration, a typedef, or a
// variable/function declaration. topLevel additionally allows a single
// function declarator immediately followed by `{` to parse as a
// function definition rather than a prototype.
func (p *Parser) parseDeclCommon(topLevel bool) ast.Decl {
	ds := p.parseDeclSpecs()

	if ds.storage == ast.SCNone && len(ds.funcSpecs) == 0 && len(ds.quals) == 0 &&
		len(ds.attrs) == 0 && len(ds.specs) == 1 && p.atPunct(";") {
		switch s := ds.specs[0].(type) {
		case *ast.RecordTypeSpec:
			d := &ast.RecordDecl{Spec: s}
			addToken(d, p.advance())
			return d
		case *ast.EnumTypeSpec:
			d := &ast.EnumDecl{Spec: s}
			addToken(d, p.advance())
			return d
		}
	}

	if ds.storage == ast.SCTypedef {
		return p.parseTypedefDecl(ds)
	}

	if !ds.sawType && ds.storage == ast.SCNone && len(ds.specs) == 0 {
		// No declaration-introducing token was consumed at all; this
		// isn't a declaration (caller should not have reached here for
		// a well-formed program, but don't loop forever on garbage).
		p.errorf("expected declaration, found %q", p.cur().Text)
		return nil
	}

	first := p.parseDeclarator()
	for p.atKeyword("__attribute__") {
		ds.attrs = append(ds.attrs, p.parseAttributeSpec())
	}

	if topLevel && declaratorIsFunction(first) && p.atPunct("{") {
		fd := &ast.FuncDecl{
			Storage:   ds.storage,
			FuncSpecs: ds.funcSpecs,
			Specs:     ds.specs,
			Declarator: first,
			Attrs:     ds.attrs,
		}
		if name := first.Ident(); name != "" {
			fd.IRName = name
		}
		p.pushScope()
		if fn := findFunctionDeclarator(first); fn != nil {
			for _, param := range fn.Params {
				if pname := paramName(param); pname != "" {
					p.scope.Insert(scope.Ordinary, pname, &scope.Member{Ident: pname, Kind: scope.FunctionArgument})
				}
			}
		}
		fd.Body = p.parseBlock()
		p.popScope()
		fd.Extend(fd.Body)
		return fd
	}

	vd := &ast.VarDecl{
		Storage:   ds.storage,
		FuncSpecs: ds.funcSpecs,
		Specs:     ds.specs,
		Quals:     ds.quals,
		Attrs:     ds.attrs,
	}
	id := p.finishInitDeclarator(first)
	vd.Declarators = append(vd.Declarators, id)
	vd.Extend(id)
	for p.atPunct(",") {
		addToken(vd, p.advance())
		d := p.parseDeclarator()
		id2 := p.finishInitDeclarator(d)
		vd.Declarators = append(vd.Declarators, id2)
		vd.Extend(id2)
	}
	addToken(vd, p.expectPunct(";"))
	return vd
}

func paramName(pd *ast.ParamDecl) string {
	if pd.Declarator == nil {
		return ""
	}
	return pd.Declarator.Ident()
}

func (p *Parser) finishInitDeclarator(d ast.Declarator) *ast.InitDeclarator {
	id := &ast.InitDeclarator{Declarator: d}
	id.Extend(d)
	if p.atPunct("=") {
		addToken(id, p.advance())
		id.Init = p.parseInitializer()
		id.Extend(id.Init)
	}
	return id
}

func (p *Parser) parseTypedefDecl(ds *declSpecs) *ast.TypedefDecl {
	td := &ast.TypedefDecl{Specs: ds.specs, Quals: ds.quals}
	for {
		decl := p.parseDeclarator()
		td.Declarators = append(td.Declarators, decl)
		td.Extend(decl)
		if name := decl.Ident(); name != "" {
			p.scope.Insert(scope.Ordinary, name, &scope.Member{Ident: name, Kind: scope.Typedef})
		}
		if !p.atPunct(",") {
			break
		}
		addToken(td, p.advance())
	}
	addToken(td, p.expectPunct(";"))
	return td
}

// parseInitializer parses either a plain assignment-expression
// initializer or a braced initializer list.
func (p *Parser) parseInitializer() ast.Node {
	if p.atPunct("{") {
		return p.parseInitializerList()
	}
	return p.parseAssignExpr()
}

func (p *Parser) parseInitializerList() *ast.InitializerList {
	n := &ast.InitializerList{}
	addToken(n, p.expectPunct("{"))
	for !p.atPunct("}") && !p.atEOF() {
		el := p.parseInitializerElement()
		n.Elements = append(n.Elements, el)
		n.Extend(el)
		if !p.atPunct(",") {
			break
		}
		addToken(n, p.advance())
	}
	addToken(n, p.expectPunct("}"))
	return n
}

func (p *Parser) parseInitializerElement() *ast.InitializerElement {
	el := &ast.InitializerElement{}
	for p.atPunct(".") || p.atPunct("[") {
		if p.atPunct(".") {
			addToken(el, p.advance())
			_, name := p.expectIdent()
			el.Designator = append(el.Designator, ast.Designator{Field: name})
		} else {
			addToken(el, p.advance())
			idx := p.parseAssignExpr()
			el.Designator = append(el.Designator, ast.Designator{Index: idx})
			addToken(el, p.expectPunct("]"))
		}
	}
	if len(el.Designator) > 0 {
		addToken(el, p.expectPunct("="))
	}
	el.Value = p.parseInitializer()
	el.Extend(el.Value)
	return el
}
