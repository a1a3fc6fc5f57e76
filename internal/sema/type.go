package sema

import (
	"fmt"

	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/cgtype"
	"github.com/gmofishsauce/zcc/internal/ir"
	"github.com/gmofishsauce/zcc/internal/record"
	"github.com/gmofishsauce/zcc/internal/scope"
)

// resolveTypeSpecs folds a declaration's type-specifier list (and the
// qualifiers that ride alongside it) into a cgtype, interning
// struct/union/enum tags and resolving typedef names against the
// current scope.
func (a *Analyzer) resolveTypeSpecs(specs []ast.TypeSpec, quals []ast.Qualifier) *cgtype.Type {
	var keywords []string
	for _, s := range specs {
		switch sp := s.(type) {
		case *ast.RecordTypeSpec:
			return cgtype.NewRecord(a.resolveRecordSpec(sp))
		case *ast.EnumTypeSpec:
			return cgtype.NewEnum(a.resolveEnumSpec(sp))
		case *ast.TypedefNameSpec:
			m, _ := a.cur.Lookup(scope.Ordinary, sp.Name)
			if m == nil || m.Type == nil {
				a.errorf(sp.Loc(), "undefined type name %q", sp.Name)
				return cgtype.NewBasic(cgtype.Int, false)
			}
			return applyQuals(m.Type.Clone(), quals)
		case *ast.AtomicTypeSpec:
			return applyQuals(a.resolveTypeSpecs([]ast.TypeSpec{sp.Inner}, nil), quals)
		case *ast.BasicTypeSpec:
			keywords = append(keywords, sp.Keywords...)
		}
	}
	return applyQuals(basicTypeFromKeywords(keywords), quals)
}

func applyQuals(t *cgtype.Type, quals []ast.Qualifier) *cgtype.Type {
	// Qualifiers affect lvalue-modifiability, tracked separately by sema
	// rather than cgtype (cgtype's Qualifiers field lives on the
	// *pointee* of a pointer type, not the type itself); nothing to do
	// here beyond returning t unchanged.
	return t
}

// basicTypeFromKeywords maps a declaration's built-in type keywords
// (in any order GCC accepts, e.g. "unsigned long long int") to the
// cgtype it denotes.
func basicTypeFromKeywords(kws []string) *cgtype.Type {
	var unsigned, signed, void, boolean bool
	var longCount, shortCount, charCount, intCount int
	for _, k := range kws {
		switch k {
		case "void":
			void = true
		case "_Bool", "bool":
			boolean = true
		case "char":
			charCount++
		case "short":
			shortCount++
		case "int":
			intCount++
		case "long":
			longCount++
		case "signed":
			signed = true
		case "unsigned":
			unsigned = true
		}
	}
	_ = signed
	switch {
	case void:
		return cgtype.Void
	case boolean:
		return cgtype.NewBasic(cgtype.Logical, false)
	case charCount > 0:
		return cgtype.NewBasic(cgtype.Char, unsigned)
	case shortCount > 0:
		return cgtype.NewBasic(cgtype.Short, unsigned)
	case longCount >= 2:
		return cgtype.NewBasic(cgtype.LongLong, unsigned)
	case longCount == 1:
		return cgtype.NewBasic(cgtype.Long, unsigned)
	case intCount > 0, unsigned:
		return cgtype.NewBasic(cgtype.Int, unsigned)
	default:
		return cgtype.NewBasic(cgtype.Int, unsigned)
	}
}

// resolveRecordSpec interns a struct/union tag: the first encounter of
// a tag creates the record.Def and lays out its body if present; later
// references to the same tag (with or without a body) share that
// def. An anonymous record always gets a fresh synthesized def.
func (a *Analyzer) resolveRecordSpec(sp *ast.RecordTypeSpec) *record.Def {
	kind := record.Struct
	if sp.Union {
		kind = record.Union
	}
	key := sp.Tag
	if key == "" {
		key = fmt.Sprintf("$anon_record_%d", a.anonSeq)
		a.anonSeq++
	} else if sp.Union {
		key = "union " + key
	} else {
		key = "struct " + key
	}

	def, exists := a.records[key]
	if !exists {
		def = record.New(kind, sp.Tag, irSafeName(key))
		a.records[key] = def
		if sp.Tag != "" {
			a.cur.Insert(scope.Tag, key, &scope.Member{Ident: key, Kind: scope.RecordTag})
		}
	}
	if sp.HasBody && !def.IsComplete() {
		a.layoutRecord(def, sp)
		a.module.Decls = append(a.module.Decls, recordToIR(def))
	}
	return def
}

func (a *Analyzer) layoutRecord(def *record.Def, sp *ast.RecordTypeSpec) {
	b := record.NewBuilder(def)
	for _, m := range sp.Members {
		if m.Declarator == nil {
			// Anonymous nested struct/union member: lay its type out but
			// contribute no named field, matching a forward-only reference.
			a.resolveTypeSpecs(m.Specs, m.Quals)
			continue
		}
		base := a.resolveTypeSpecs(m.Specs, m.Quals)
		ft, name := a.resolveDeclarator(base, m.Declarator)
		if m.BitWidth != nil {
			width, ok := a.evalConstInt(m.BitWidth)
			if !ok {
				a.errorf(m.BitWidth.Loc(), "bit-field width must be a constant expression")
				width = 0
			}
			b.AddBitField(name, int(width), ft)
		} else {
			b.AddField(name, ft)
		}
	}
	b.Finish()
}

func recordToIR(def *record.Def) *ir.RecordDecl {
	d := &ir.RecordDecl{Name: def.IRName}
	for _, u := range def.Units {
		d.Fields = append(d.Fields, &ir.RecordField{Name: u.IRName, Type: typeExprOf(u.Type)})
	}
	return d
}

func (a *Analyzer) resolveEnumSpec(sp *ast.EnumTypeSpec) *enumDef {
	key := sp.Tag
	if key == "" {
		key = fmt.Sprintf("$anon_enum_%d", a.anonSeq)
		a.anonSeq++
	} else {
		key = "enum " + key
	}
	def, exists := a.enums[key]
	if !exists {
		def = &enumDef{name: sp.Tag, underlying: cgtype.Int, values: make(map[string]int64)}
		a.enums[key] = def
		if sp.Tag != "" {
			a.cur.Insert(scope.Tag, key, &scope.Member{Ident: key, Kind: scope.EnumTag})
		}
	}
	if sp.HasBody && len(def.values) == 0 {
		next := int64(0)
		for _, e := range sp.Enumerators {
			if e.Value != nil {
				v, ok := a.evalConstInt(e.Value)
				if !ok {
					a.errorf(e.Value.Loc(), "enumerator value must be a constant expression")
				}
				next = v
			}
			def.values[e.Name] = next
			a.cur.Insert(scope.Ordinary, e.Name, &scope.Member{
				Ident: e.Name, Kind: scope.EnumElement,
				Type: cgtype.NewEnum(def),
			})
			next++
		}
	}
	return def
}

// resolveDeclarator composes base outward through d's pointer/array/
// function wrapping to the final cgtype, and returns the identifier it
// ultimately names (empty for an abstract declarator). The declarator
// tree is built by the parser so that each node's Inner is already the
// more-tightly-bound sub-declarator; wrapping base at the current node
// before recursing into Inner reproduces C's declarator precedence
// exactly (see DESIGN.md for worked examples).
func (a *Analyzer) resolveDeclarator(base *cgtype.Type, d ast.Declarator) (*cgtype.Type, string) {
	switch t := d.(type) {
	case nil:
		return base, ""
	case *ast.IdentDeclarator:
		return base, t.Name
	case *ast.AbstractDeclarator:
		return base, ""
	case *ast.ParenDeclarator:
		return a.resolveDeclarator(base, t.Inner)
	case *ast.PointerDeclarator:
		return a.resolveDeclarator(cgtype.NewPointer(base, qualsOf(t.Quals)), t.Inner)
	case *ast.ArrayDeclarator:
		size := -1
		if t.Size != nil {
			if v, ok := a.evalConstInt(t.Size); ok {
				size = int(v)
			}
		}
		return a.resolveDeclarator(cgtype.NewArray(base, size), t.Inner)
	case *ast.FunctionDeclarator:
		args, variadic := a.resolveParams(t.Params, t.Variadic)
		return a.resolveDeclarator(cgtype.NewFunction(base, args, variadic), t.Inner)
	default:
		return base, d.Ident()
	}
}

func (a *Analyzer) resolveParams(params []*ast.ParamDecl, variadic bool) ([]*cgtype.Type, bool) {
	var args []*cgtype.Type
	for _, p := range params {
		base := a.resolveTypeSpecs(p.Specs, p.Quals)
		pt, _ := a.resolveDeclarator(base, p.Declarator)
		p.Type = pt
		args = append(args, pt)
	}
	return args, variadic
}

func qualsOf(quals []ast.Qualifier) cgtype.Qualifiers {
	var q cgtype.Qualifiers
	for _, x := range quals {
		switch x {
		case ast.QualConst:
			q.Const = true
		case ast.QualVolatile:
			q.Volatile = true
		case ast.QualRestrict:
			q.Restrict = true
		case ast.QualAtomic:
			q.Atomic = true
		}
	}
	return q
}

// typeExprOf maps a cgtype to the IR type expression it lowers to.
func typeExprOf(t *cgtype.Type) *ir.TypeExpr {
	if t == nil || t.IsVoid() {
		return nil
	}
	switch t.Kind {
	case cgtype.Basic:
		return ir.IntType(ir.Width(t.BitWidth()))
	case cgtype.Pointer:
		return ir.PtrType(16)
	case cgtype.Array:
		count := t.Size
		if count < 0 {
			count = 0
		}
		return ir.ArrayType(count, typeExprOf(t.Element))
	case cgtype.Record:
		if rd, ok := t.RecordDef.(*record.Def); ok {
			return ir.NamedType(rd.IRName)
		}
		return ir.NamedType(t.RecordDef.RecordName())
	case cgtype.Enum:
		return ir.IntType(ir.Width(t.BitWidth()))
	case cgtype.VaList:
		return ir.VaListType
	default:
		return ir.IntType(ir.W16)
	}
}

// irSafeName maps a tag string (which may contain a space, as in
// "struct Point") to an identifier-safe IR name.
func irSafeName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			out = append(out, '_')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
