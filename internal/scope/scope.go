// Package scope implements identifier scoping: a parent-linked list of
// members, two lookup namespaces (ordinary and tag, since C keeps
// struct/union/enum tags separate from ordinary identifiers), and
// insertion that fails on a same-scope/same-namespace collision rather
// than silently shadowing.
package scope

import (
	"fmt"

	"github.com/gmofishsauce/zcc/internal/cgtype"
)

// Namespace selects which of C's two identifier spaces a lookup
// targets.
type Namespace int

const (
	Ordinary Namespace = iota
	Tag
)

// MemberKind is the closed set of scope member kinds.
type MemberKind int

const (
	GlobalSymbol MemberKind = iota
	FunctionArgument
	LocalVariable
	Typedef
	RecordTag
	EnumTag
	EnumElement
)

// Member is one entry in a Scope.
type Member struct {
	Ident string
	Kind  MemberKind
	Type  *cgtype.Type // optional code-generator type; nil for record/enum tags that only need identity
	// IRName is the name this member is known by in the IR (e.g. "x",
	// or "x_2" when a local reuses a name, or the global symbol name);
	// empty until sema assigns it.
	IRName string
}

// ErrAlreadyExists is returned by Insert when ident is already declared
// in the same scope and namespace.
type ErrAlreadyExists struct {
	Ident string
}

func (e *ErrAlreadyExists) Error() string {
	return fmt.Sprintf("%q already exists in this scope", e.Ident)
}

// Scope is a list of members parented by an enclosing scope, or none
// for file scope.
type Scope struct {
	parent  *Scope
	ord     map[string]*Member
	tag     map[string]*Member
	ordKeys []string // insertion order, for deterministic iteration (e.g. struct member dumps)
}

// New creates a new scope whose enclosing scope is parent (nil for file
// scope).
func New(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		ord:    make(map[string]*Member),
		tag:    make(map[string]*Member),
	}
}

// Parent returns the enclosing scope, or nil at file scope.
func (s *Scope) Parent() *Scope { return s.parent }

func (s *Scope) table(ns Namespace) map[string]*Member {
	if ns == Tag {
		return s.tag
	}
	return s.ord
}

// Insert adds m under ident in namespace ns, failing if ident is
// already present in *this* scope's namespace (not an enclosing one);
// an enclosing declaration is legitimately shadowed, not a collision.
func (s *Scope) Insert(ns Namespace, ident string, m *Member) error {
	t := s.table(ns)
	if _, exists := t[ident]; exists {
		return &ErrAlreadyExists{Ident: ident}
	}
	t[ident] = m
	if ns == Ordinary {
		s.ordKeys = append(s.ordKeys, ident)
	}
	return nil
}

// Lookup walks up the parent chain looking for ident in namespace ns,
// returning the nearest (innermost) match.
func (s *Scope) Lookup(ns Namespace, ident string) (*Member, *Scope) {
	for cur := s; cur != nil; cur = cur.parent {
		if m, ok := cur.table(ns)[ident]; ok {
			return m, cur
		}
	}
	return nil, nil
}

// LookupLocal looks only in this scope, not its ancestors.
func (s *Scope) LookupLocal(ns Namespace, ident string) *Member {
	return s.table(ns)[ident]
}

// Members returns every ordinary-namespace member declared directly in
// this scope, in declaration order (used for struct/union member lists
// and function argument lists built via a scope).
func (s *Scope) Members() []*Member {
	out := make([]*Member, 0, len(s.ordKeys))
	for _, k := range s.ordKeys {
		out = append(out, s.ord[k])
	}
	return out
}
