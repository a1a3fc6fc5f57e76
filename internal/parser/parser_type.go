package parser

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/token"
)

var basicTypeKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "_Complex": true,
}

type qset map[string]ast.Qualifier

func (s qset) has(name string) bool { _, ok := s[name]; return ok }

var qualKeyword = qset{
	"const": ast.QualConst, "volatile": ast.QualVolatile,
	"restrict": ast.QualRestrict, "_Atomic": ast.QualAtomic,
}

type scset map[string]ast.StorageClass

func (s scset) has(name string) bool { _, ok := s[name]; return ok }

var storageKeyword = scset{
	"auto": ast.SCAuto, "extern": ast.SCExtern, "register": ast.SCRegister,
	"static": ast.SCStatic, "typedef": ast.SCTypedef,
}

type kwset map[string]ast.FunctionSpecifier

func (s kwset) has(name string) bool { _, ok := s[name]; return ok }

var funcSpecKeyword = kwset{
	"inline": ast.FSInline, "__inline__": ast.FSInline, "__inline": ast.FSInline,
	"_Noreturn": ast.FSNoreturn,
}

// declSpecs is the parsed result of a declaration's specifier list,
// shared by parseExternalDecl, parseTypeName and block-local
// declarations.
type declSpecs struct {
	storage   ast.StorageClass
	funcSpecs []ast.FunctionSpecifier
	specs     []ast.TypeSpec
	quals     []ast.Qualifier
	attrs     []*ast.AttributeSpec
	sawType   bool
}

// parseDeclSpecs consumes storage-class specifiers, type qualifiers,
// function specifiers, attributes and exactly one type specifier
// (basic type keywords may repeat, e.g. "unsigned long long") in any
// interleaving, which is how C's grammar actually allows them to
// appear.
func (p *Parser) parseDeclSpecs() *declSpecs {
	ds := &declSpecs{}
	var basicKws []string
	var basicToks []*token.Token
	for {
		t := p.cur()
		isKw := t.Kind == token.Keyword
		switch {
		case isKw && storageKeyword.has(t.Spelling):
			ds.storage = storageKeyword[t.Spelling]
			p.advance()
			continue
		case isKw && funcSpecKeyword.has(t.Spelling):
			ds.funcSpecs = append(ds.funcSpecs, funcSpecKeyword[t.Spelling])
			p.advance()
			continue
		case isKw && qualKeyword.has(t.Spelling):
			ds.quals = append(ds.quals, qualKeyword[t.Spelling])
			p.advance()
			continue
		case isKw && basicTypeKeywords[t.Spelling]:
			basicKws = append(basicKws, t.Spelling)
			basicToks = append(basicToks, p.advance())
			ds.sawType = true
			continue
		case isKw && (t.Spelling == "struct" || t.Spelling == "union"):
			ds.specs = append(ds.specs, p.parseRecordSpec())
			ds.sawType = true
			continue
		case isKw && t.Spelling == "enum":
			ds.specs = append(ds.specs, p.parseEnumSpec())
			ds.sawType = true
			continue
		case isKw && t.Spelling == "__attribute__":
			ds.attrs = append(ds.attrs, p.parseAttributeSpec())
			continue
		case t.Kind == token.Identifier && !ds.sawType && p.isTypedefName(t.Text):
			n := &ast.TypedefNameSpec{Name: t.Text}
			addToken(n, p.advance())
			ds.specs = append(ds.specs, n)
			ds.sawType = true
			continue
		}
		break
	}
	if len(basicKws) > 0 {
		n := &ast.BasicTypeSpec{Keywords: basicKws}
		for _, tk := range basicToks {
			n.AddToken(tk)
		}
		ds.specs = append(ds.specs, n)
	}
	return ds
}

func (p *Parser) parseRecordSpec() *ast.RecordTypeSpec {
	kw := p.advance() // struct|union
	n := &ast.RecordTypeSpec{Union: kw.Spelling == "union"}
	addToken(n, kw)
	if p.atIdent() {
		_, n.Tag = p.expectIdent()
	}
	if p.atPunct("{") {
		n.HasBody = true
		addToken(n, p.advance())
		for !p.atPunct("}") && !p.atEOF() {
			n.Members = append(n.Members, p.parseMemberDecl()...)
		}
		addToken(n, p.expectPunct("}"))
	}
	return n
}

// parseMemberDecl parses one member-declaration inside a struct/union
// body, which may declare several members sharing one specifier list
// (`int a, b;`); each declarator becomes its own MemberDecl node.
func (p *Parser) parseMemberDecl() []*ast.MemberDecl {
	ds := p.parseDeclSpecs()
	var members []*ast.MemberDecl
	if !p.atPunct(";") {
		for {
			m := &ast.MemberDecl{Specs: ds.specs, Quals: ds.quals}
			m.Declarator = p.parseDeclarator()
			m.Extend(m.Declarator)
			if p.atPunct(":") {
				addToken(m, p.advance())
				m.BitWidth = p.parseAssignExpr()
				m.Extend(m.BitWidth)
			}
			members = append(members, m)
			if !p.atPunct(",") {
				break
			}
			p.advance()
		}
	} else {
		m := &ast.MemberDecl{Specs: ds.specs, Quals: ds.quals}
		members = append(members, m)
	}
	semi := p.expectPunct(";")
	for _, m := range members {
		addToken(m, semi)
	}
	return members
}

func (p *Parser) parseEnumSpec() *ast.EnumTypeSpec {
	kw := p.advance() // enum
	n := &ast.EnumTypeSpec{}
	addToken(n, kw)
	if p.atIdent() {
		_, n.Tag = p.expectIdent()
	}
	if p.atPunct("{") {
		n.HasBody = true
		addToken(n, p.advance())
		for !p.atPunct("}") && !p.atEOF() {
			_, name := p.expectIdent()
			e := &ast.Enumerator{Name: name}
			if p.atPunct("=") {
				addToken(e, p.advance())
				e.Value = p.parseAssignExpr()
			}
			n.Enumerators = append(n.Enumerators, e)
			if !p.atPunct(",") {
				break
			}
			addToken(n, p.advance())
		}
		addToken(n, p.expectPunct("}"))
	}
	return n
}

func (p *Parser) parseAttributeSpec() *ast.AttributeSpec {
	n := &ast.AttributeSpec{}
	addToken(n, p.advance()) // __attribute__
	addToken(n, p.expectPunct("("))
	addToken(n, p.expectPunct("("))
	for !p.atPunct(")") && !p.atEOF() {
		_, name := p.expectIdent()
		attr := ast.Attribute{Name: name}
		if p.atPunct("(") {
			addToken(n, p.advance())
			for !p.atPunct(")") && !p.atEOF() {
				t := p.advance()
				attr.Args = append(attr.Args, t.Text)
				if p.atPunct(",") {
					addToken(n, p.advance())
				}
			}
			addToken(n, p.expectPunct(")"))
		}
		n.Attrs = append(n.Attrs, attr)
		if p.atPunct(",") {
			addToken(n, p.advance())
		}
	}
	addToken(n, p.expectPunct(")"))
	addToken(n, p.expectPunct(")"))
	return n
}

// parseDeclarator parses a (possibly abstract) declarator: pointer
// prefix, a direct declarator core (identifier, parenthesised, or
// none), then any number of array/function suffixes.
func (p *Parser) parseDeclarator() ast.Declarator {
	if p.atPunct("*") {
		star := p.advance()
		var quals []ast.Qualifier
		for {
			if q, ok := qualKeyword[p.cur().Spelling]; ok && p.cur().Kind == token.Keyword {
				quals = append(quals, q)
				p.advance()
				continue
			}
			break
		}
		inner := p.parseDeclarator()
		n := &ast.PointerDeclarator{Quals: quals, Inner: inner}
		addToken(n, star)
		n.Extend(inner)
		return n
	}
	return p.parseDirectDeclarator()
}

func (p *Parser) parseDirectDeclarator() ast.Declarator {
	var core ast.Declarator
	switch {
	case p.atIdent():
		t := p.advance()
		n := &ast.IdentDeclarator{Name: t.Text}
		addToken(n, t)
		core = n
	case p.atPunct("("):
		lp := p.advance()
		inner := p.parseDeclarator()
		rp := p.expectPunct(")")
		n := &ast.ParenDeclarator{Inner: inner}
		addToken(n, lp)
		n.Extend(inner)
		addToken(n, rp)
		core = n
	default:
		core = &ast.AbstractDeclarator{}
	}
	return p.parseDeclaratorSuffixes(core)
}

func (p *Parser) parseDeclaratorSuffixes(core ast.Declarator) ast.Declarator {
	for {
		switch {
		case p.atPunct("["):
			lb := p.advance()
			n := &ast.ArrayDeclarator{Inner: core}
			addToken(n, lb)
			if !p.atPunct("]") {
				n.Size = p.parseAssignExpr()
				n.Extend(n.Size)
			}
			addToken(n, p.expectPunct("]"))
			core = n
		case p.atPunct("("):
			lp := p.advance()
			n := &ast.FunctionDeclarator{Inner: core}
			addToken(n, lp)
			if p.atKeyword("void") && p.peekPunct(1, ")") {
				addToken(n, p.advance())
			} else if !p.atPunct(")") {
				for {
					if p.atPunct("...") {
						addToken(n, p.advance())
						n.Variadic = true
						break
					}
					n.Params = append(n.Params, p.parseParamDecl())
					if !p.atPunct(",") {
						break
					}
					addToken(n, p.advance())
				}
			}
			addToken(n, p.expectPunct(")"))
			core = n
		default:
			return core
		}
	}
}

func (p *Parser) parseParamDecl() *ast.ParamDecl {
	ds := p.parseDeclSpecs()
	pd := &ast.ParamDecl{Specs: ds.specs, Quals: ds.quals}
	if !p.atPunct(",") && !p.atPunct(")") {
		pd.Declarator = p.parseDeclarator()
	}
	return pd
}

// parseTypeName parses a type used in a cast/sizeof/compound-literal
// context: specifiers plus an optional abstract declarator.
func (p *Parser) parseTypeName() *ast.TypeName {
	ds := p.parseDeclSpecs()
	tn := &ast.TypeName{Specs: ds.specs, Quals: ds.quals}
	if !p.atPunct(")") && !p.atPunct(",") {
		tn.Declarator = p.parseDeclarator()
	}
	return tn
}
