package ast

import "github.com/gmofishsauce/zcc/internal/cgtype"

// InitDeclarator pairs one declarator in a declaration with its
// optional initializer: `Declarator = Init`.
type InitDeclarator struct {
	Base
	Declarator Declarator
	Init       Node // nil, an Expr, or an *InitializerList
}

func (d *InitDeclarator) Children() []Node {
	out := []Node{d.Declarator}
	if d.Init != nil {
		out = append(out, d.Init)
	}
	return out
}

// VarDecl is an ordinary declaration: storage class + qualifiers + type
// specifiers shared across a comma-separated list of init-declarators,
// e.g. `static const int a = 1, *b, c[4];`.
type VarDecl struct {
	Base
	Storage    StorageClass
	FuncSpecs  []FunctionSpecifier
	Specs      []TypeSpec
	Quals      []Qualifier
	Attrs      []*AttributeSpec
	Declarators []*InitDeclarator

	// Type is filled in by internal/sema once the specifiers and each
	// declarator have been resolved to a concrete cgtype.
	Type *cgtype.Type
}

func (*VarDecl) declNode() {}
func (d *VarDecl) Children() []Node {
	var out []Node
	for _, s := range d.Specs {
		out = append(out, s)
	}
	for _, a := range d.Attrs {
		out = append(out, a)
	}
	for _, id := range d.Declarators {
		out = append(out, id)
	}
	return out
}

// FuncDecl is a function prototype or definition. Body is nil for a
// prototype (`int f(int);`) and non-nil for a definition.
type FuncDecl struct {
	Base
	Storage    StorageClass
	FuncSpecs  []FunctionSpecifier
	Specs      []TypeSpec
	Declarator Declarator // a FunctionDeclarator, possibly wrapped in pointer/paren declarators
	Attrs      []*AttributeSpec
	Body       *Block // nil for a prototype

	// IRName is the symbol name this function is emitted under; usually
	// equal to Declarator.Ident() but may be mangled for static linkage
	// collisions across translation units handled as one module.
	IRName string
	Type   *cgtype.Type
}

func (*FuncDecl) declNode() {}
func (d *FuncDecl) Children() []Node {
	var out []Node
	for _, s := range d.Specs {
		out = append(out, s)
	}
	out = append(out, d.Declarator)
	for _, a := range d.Attrs {
		out = append(out, a)
	}
	if d.Body != nil {
		out = append(out, d.Body)
	}
	return out
}

// TypedefDecl is `typedef Specs Declarator ;`, possibly declaring
// several names in one statement. It is kept as its own node (rather
// than folded into VarDecl with Storage == SCTypedef) because it never
// carries an initializer and scope insertion needs a Typedef member
// kind rather than a GlobalSymbol/LocalVariable one.
type TypedefDecl struct {
	Base
	Specs       []TypeSpec
	Quals       []Qualifier
	Declarators []Declarator
}

func (*TypedefDecl) declNode() {}
func (d *TypedefDecl) Children() []Node {
	var out []Node
	for _, s := range d.Specs {
		out = append(out, s)
	}
	for _, decl := range d.Declarators {
		out = append(out, decl)
	}
	return out
}

// RecordDecl is a top-level `struct S { ... };` or `union U { ... };`
// with no accompanying variable declarator, used purely to register the
// tag and its layout.
type RecordDecl struct {
	Base
	Spec *RecordTypeSpec
}

func (*RecordDecl) declNode()          {}
func (d *RecordDecl) Children() []Node { return []Node{d.Spec} }

// EnumDecl is a top-level `enum E { ... };` with no accompanying
// variable declarator.
type EnumDecl struct {
	Base
	Spec *EnumTypeSpec
}

func (*EnumDecl) declNode()          {}
func (d *EnumDecl) Children() []Node { return []Node{d.Spec} }

// MacroDecl represents a top-level declaration introduced through a
// vendor macro wrapper (e.g. a `DECLARE_HANDLER(name)` expanding to a
// function prototype), identified by name rather than by re-parsing
// the macro's expansion. Args holds the macro's raw argument text.
// The parser does not construct this node: a top-level declaration
// that begins with an identifier not declared as a type is reported
// as a parse error.
type MacroDecl struct {
	Base
	MacroName string
	Args      []string
}

func (*MacroDecl) declNode()          {}
func (d *MacroDecl) Children() []Node { return nil }

// ExternCDecl is `extern "C" { Decls }` or the single-declaration form
// `extern "C" Decl`, used in headers shared with C++ callers.
type ExternCDecl struct {
	Base
	Decls []Decl
}

func (*ExternCDecl) declNode() {}
func (d *ExternCDecl) Children() []Node {
	out := make([]Node, len(d.Decls))
	for i, decl := range d.Decls {
		out[i] = decl
	}
	return out
}
