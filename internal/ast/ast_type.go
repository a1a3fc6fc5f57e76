package ast

import "github.com/gmofishsauce/zcc/internal/cgtype"

// TypeSpec is the marker interface for type specifier nodes: basic
// built-in types, struct/union, enum, a typedef name, or _Atomic(T).
type TypeSpec interface {
	Node
	typeSpecNode()
}

// BasicTypeSpec names a built-in type keyword combination, e.g. "long
// long unsigned int".
type BasicTypeSpec struct {
	Base
	Keywords []string // the keyword spellings in source order
}

func (*BasicTypeSpec) typeSpecNode() {}
func (s *BasicTypeSpec) Children() []Node { return nil }

// RecordTypeSpec is `struct`/`union` Tag? `{` Members `}`?
type RecordTypeSpec struct {
	Base
	Union   bool
	Tag     string
	Members []*MemberDecl // nil if this is a reference with no body
	HasBody bool
}

func (*RecordTypeSpec) typeSpecNode() {}
func (s *RecordTypeSpec) Children() []Node {
	out := make([]Node, 0, len(s.Members))
	for _, m := range s.Members {
		out = append(out, m)
	}
	return out
}

// MemberDecl is one member of a struct/union body, possibly a bit
// field. Declarator is nil for an anonymous nested struct/union member
// introduced directly by its type specifier.
type MemberDecl struct {
	Base
	Specs      []TypeSpec
	Quals      []Qualifier
	Declarator Declarator // nil for an anonymous nested struct/union member
	BitWidth   Expr       // nil if not a bit field
}

func (*MemberDecl) declNode() {}
func (m *MemberDecl) Children() []Node {
	var out []Node
	for _, s := range m.Specs {
		out = append(out, s)
	}
	if m.Declarator != nil {
		out = append(out, m.Declarator)
	}
	if m.BitWidth != nil {
		out = append(out, m.BitWidth)
	}
	return out
}

// EnumTypeSpec is `enum` Tag? `{` Enumerators `}`?
type EnumTypeSpec struct {
	Base
	Tag         string
	Enumerators []*Enumerator
	HasBody     bool
}

func (*EnumTypeSpec) typeSpecNode() {}
func (s *EnumTypeSpec) Children() []Node {
	out := make([]Node, 0, len(s.Enumerators))
	for _, e := range s.Enumerators {
		out = append(out, e)
	}
	return out
}

// Enumerator is one `NAME = value?` in an enum body.
type Enumerator struct {
	Base
	Name  string
	Value Expr // nil if implicit (previous + 1)
}

func (e *Enumerator) Children() []Node {
	if e.Value == nil {
		return nil
	}
	return []Node{e.Value}
}

// TypedefNameSpec references a previously declared typedef identifier.
type TypedefNameSpec struct {
	Base
	Name string
}

func (*TypedefNameSpec) typeSpecNode()      {}
func (s *TypedefNameSpec) Children() []Node { return nil }

// AtomicTypeSpec is `_Atomic(Type)`.
type AtomicTypeSpec struct {
	Base
	Inner TypeSpec
}

func (*AtomicTypeSpec) typeSpecNode() {}
func (s *AtomicTypeSpec) Children() []Node {
	return []Node{s.Inner}
}

// Qualifier is a type qualifier keyword.
type Qualifier int

const (
	QualConst Qualifier = iota
	QualVolatile
	QualRestrict
	QualAtomic
)

// StorageClass is a storage-class specifier keyword.
type StorageClass int

const (
	SCNone StorageClass = iota
	SCAuto
	SCExtern
	SCRegister
	SCStatic
	SCTypedef
)

// FunctionSpecifier is `inline` or `_Noreturn`.
type FunctionSpecifier int

const (
	FSInline FunctionSpecifier = iota
	FSNoreturn
)

// Declarator is the marker interface for declarator nodes: identifier,
// abstract (no identifier), parenthesised, pointer, function, or array.
type Declarator interface {
	Node
	declaratorNode()
	// Ident returns the identifier this declarator eventually names, or
	// "" for an abstract (no-identifier) declarator.
	Ident() string
}

// IdentDeclarator is the innermost declarator naming an identifier.
type IdentDeclarator struct {
	Base
	Name string
}

func (*IdentDeclarator) declaratorNode()   {}
func (d *IdentDeclarator) Ident() string   { return d.Name }
func (d *IdentDeclarator) Children() []Node { return nil }

// AbstractDeclarator is a declarator with no identifier (used in casts,
// sizeof, and function prototype parameter lists without names).
type AbstractDeclarator struct {
	Base
}

func (*AbstractDeclarator) declaratorNode()    {}
func (d *AbstractDeclarator) Ident() string    { return "" }
func (d *AbstractDeclarator) Children() []Node { return nil }

// ParenDeclarator wraps a declarator in parentheses, used to control
// precedence (e.g. `(*f)(int)` is a pointer to function, not a function
// returning pointer).
type ParenDeclarator struct {
	Base
	Inner Declarator
}

func (*ParenDeclarator) declaratorNode() {}
func (d *ParenDeclarator) Ident() string { return d.Inner.Ident() }
func (d *ParenDeclarator) Children() []Node {
	return []Node{d.Inner}
}

// PointerDeclarator is `* Quals? Inner`.
type PointerDeclarator struct {
	Base
	Quals []Qualifier
	Inner Declarator
}

func (*PointerDeclarator) declaratorNode() {}
func (d *PointerDeclarator) Ident() string { return d.Inner.Ident() }
func (d *PointerDeclarator) Children() []Node {
	return []Node{d.Inner}
}

// FunctionDeclarator is `Inner ( Params )`.
type FunctionDeclarator struct {
	Base
	Inner    Declarator
	Params   []*ParamDecl
	Variadic bool
}

func (*FunctionDeclarator) declaratorNode() {}
func (d *FunctionDeclarator) Ident() string { return d.Inner.Ident() }
func (d *FunctionDeclarator) Children() []Node {
	out := []Node{d.Inner}
	for _, p := range d.Params {
		out = append(out, p)
	}
	return out
}

// ParamDecl is one parameter of a function declarator.
type ParamDecl struct {
	Base
	Specs      []TypeSpec
	Quals      []Qualifier
	Declarator Declarator // may be an AbstractDeclarator
	Type       *cgtype.Type
}

func (*ParamDecl) declNode() {}
func (p *ParamDecl) Children() []Node {
	var out []Node
	for _, s := range p.Specs {
		out = append(out, s)
	}
	if p.Declarator != nil {
		out = append(out, p.Declarator)
	}
	return out
}

// ArrayDeclarator is `Inner [ Size? ]`.
type ArrayDeclarator struct {
	Base
	Inner Declarator
	Size  Expr // nil for an incomplete/flexible array
}

func (*ArrayDeclarator) declaratorNode() {}
func (d *ArrayDeclarator) Ident() string { return d.Inner.Ident() }
func (d *ArrayDeclarator) Children() []Node {
	out := []Node{d.Inner}
	if d.Size != nil {
		out = append(out, d.Size)
	}
	return out
}

// AttributeSpec is a GCC `__attribute__((...))` clause. Args are kept
// as raw text since attribute grammar is effectively freeform; no later
// stage reads the attribute names.
type AttributeSpec struct {
	Base
	Attrs []Attribute
}

func (*AttributeSpec) typeSpecNode()        {}
func (a *AttributeSpec) declaratorNode()    {}
func (a *AttributeSpec) Ident() string      { return "" }
func (a *AttributeSpec) Children() []Node   { return nil }

// Attribute is one `name(args...)` clause inside an
// `__attribute__((...))`.
type Attribute struct {
	Name string
	Args []string
}

// MacroAttribute represents a `__attribute__`-like macro whose name is
// not one of the recognized GCC attributes. The parser does not
// construct it.
type MacroAttribute struct {
	Base
	Name string
	Args []string
}

func (*MacroAttribute) typeSpecNode()      {}
func (m *MacroAttribute) declaratorNode()  {}
func (m *MacroAttribute) Ident() string    { return "" }
func (m *MacroAttribute) Children() []Node { return nil }
