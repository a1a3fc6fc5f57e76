package sema

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/cgtype"
	"github.com/gmofishsauce/zcc/internal/ir"
	"github.com/gmofishsauce/zcc/internal/record"
	"github.com/gmofishsauce/zcc/internal/scope"
	"github.com/gmofishsauce/zcc/internal/token"
)

// lvalue is the address-or-name an assignable expression lowers to: a
// direct reference names a variable sema can `copy` into/out of
// directly (a local, argument or global); an indirect reference holds
// a computed address that must be read/written through a pointer.
// Elements with nonzero bitWidth additionally require mask/shift
// around the underlying storage unit (unitType, bitOffset).
type lvalue struct {
	direct    bool
	global    bool
	name      string
	addr      *ir.Operand
	typ       *cgtype.Type
	bitWidth  int
	bitOffset int
	unitType  *cgtype.Type
}

func intCgtypeForWidth(w ir.Width, signed bool) *cgtype.Type {
	switch w {
	case ir.W8:
		return cgtype.NewBasic(cgtype.Char, !signed)
	case ir.W16:
		return cgtype.NewBasic(cgtype.Int, !signed)
	case ir.W32:
		return cgtype.NewBasic(cgtype.Long, !signed)
	default:
		return cgtype.NewBasic(cgtype.LongLong, !signed)
	}
}

func recordDefOf(t *cgtype.Type) *record.Def {
	if t == nil || t.RecordDef == nil {
		return nil
	}
	d, _ := t.RecordDef.(*record.Def)
	return d
}

// designatedRecordField resolves one InitializerElement to the record
// field it targets, advancing *idx for the next positional element the
// way C's designated-initializer rules require (a designator re-bases
// the position counter for subsequent un-designated elements).
func (a *Analyzer) designatedRecordField(def *record.Def, el *ast.InitializerElement, idx *int) *record.Element {
	if def == nil {
		return nil
	}
	if len(el.Designator) > 0 && el.Designator[0].Field != "" {
		f := def.FieldByName(el.Designator[0].Field)
		for i, e := range def.Elements {
			if e == f {
				*idx = i + 1
				break
			}
		}
		return f
	}
	if *idx < len(def.Elements) {
		f := def.Elements[*idx]
		*idx++
		return f
	}
	return nil
}

// coerce converts v from cgtype `from` to cgtype `to`'s width/sign,
// inserting a sgnext/zrext/trunc instruction when their bit widths
// differ. Pointers are never resized (the Z80 address width is the
// only pointer width this target has).
func (a *Analyzer) coerce(v *ir.Operand, from, to *cgtype.Type) *ir.Operand {
	if from == nil || to == nil || from.IsPointer() || to.IsPointer() {
		return v
	}
	fw := ir.Width(from.BitWidth())
	tw := ir.Width(to.BitWidth())
	if fw == tw || fw == 0 || tw == 0 {
		return v
	}
	dest := a.newLocal(to)
	if tw > fw {
		op := ir.OpZrExt
		if from.IsSigned() {
			op = ir.OpSgnExt
		}
		a.emit(&ir.Instruction{Op: op, Width: tw, Dest: ir.VarRef(dest), Src1: v})
	} else {
		a.emit(&ir.Instruction{Op: ir.OpTrunc, Width: tw, Dest: ir.VarRef(dest), Src1: v})
	}
	return ir.VarRef(dest)
}

// lowerExpr lowers e into a sequence of IR instructions that leave its
// value in the returned operand, recording e's resolved cgtype as a
// side effect (§4.3's "each AST expression is translated ... leaves
// its value in a freshly numbered local IR variable").
func (a *Analyzer) lowerExpr(e ast.Expr) *ir.Operand {
	switch n := e.(type) {
	case *ast.ParenExpr:
		v := a.lowerExpr(n.Inner)
		n.SetType(n.Inner.Type())
		return v
	case *ast.LiteralExpr:
		return a.lowerLiteral(n)
	case *ast.StringConcatExpr:
		return a.lowerStringConcat(n)
	case *ast.IdentExpr:
		return a.lowerIdent(n)
	case *ast.BinaryExpr:
		return a.lowerBinaryExpr(n)
	case *ast.TernaryExpr:
		return a.lowerTernary(n)
	case *ast.CommaExpr:
		var v *ir.Operand
		for _, x := range n.Exprs {
			v = a.lowerExpr(x)
		}
		if len(n.Exprs) > 0 {
			n.SetType(n.Exprs[len(n.Exprs)-1].Type())
		}
		return v
	case *ast.CallExpr:
		return a.lowerCall(n)
	case *ast.IndexExpr:
		lv := a.lowerLValue(n)
		n.SetType(lv.typ)
		return a.readLValue(lv)
	case *ast.UnaryExpr:
		return a.lowerUnary(n)
	case *ast.SizeofExpr:
		return a.lowerSizeof(n)
	case *ast.CastExpr:
		return a.lowerCast(n)
	case *ast.CompoundLiteralExpr:
		return a.lowerCompoundLiteral(n)
	case *ast.MemberExpr, *ast.IndirectMemberExpr:
		lv := a.lowerLValue(e)
		e.SetType(lv.typ)
		return a.readLValue(lv)
	case *ast.VaArgExpr:
		return a.lowerVaArg(n)
	}
	a.errorf(e.Loc(), "unsupported expression")
	e.SetType(cgtype.NewBasic(cgtype.Int, false))
	return ir.Imm(0)
}

func (a *Analyzer) lowerLiteral(n *ast.LiteralExpr) *ir.Operand {
	switch n.Tokens[0].Kind {
	case token.IntLiteral:
		v, t := intLiteral(n.Text)
		n.SetType(t)
		return ir.Imm(v)
	case token.CharLiteral:
		v := charLiteral(n.Text)
		n.SetType(cgtype.NewBasic(cgtype.Char, false))
		return ir.Imm(v)
	case token.StringLiteral, token.WideStringLiteral:
		return a.lowerStringBytes(stringLiteral(n.Text), n)
	}
	a.errorf(n.Loc(), "malformed literal")
	n.SetType(cgtype.NewBasic(cgtype.Int, false))
	return ir.Imm(0)
}

func (a *Analyzer) lowerStringConcat(n *ast.StringConcatExpr) *ir.Operand {
	var data []byte
	for _, p := range n.Parts {
		data = append(data, stringLiteral(p.Text)...)
	}
	return a.lowerStringBytes(data, n)
}

// lowerStringBytes creates an anonymous global char array holding data
// plus a terminating NUL, and returns its decayed address.
func (a *Analyzer) lowerStringBytes(data []byte, e ast.Expr) *ir.Operand {
	name := a.internedStringName()
	arrType := cgtype.NewArray(cgtype.NewBasic(cgtype.Char, false), len(data)+1)
	items := make([]*ir.Operand, 0, len(data)+1)
	for _, b := range data {
		items = append(items, ir.Imm(int64(b)))
	}
	items = append(items, ir.Imm(0))
	blk := &ir.Block{}
	blk.Append(&ir.Entry{Instr: &ir.Instruction{
		Op: ir.OpImm, Width: ir.W8, Dest: ir.VarRef("$data"), Src1: ir.List(items...),
	}})
	a.module.Decls = append(a.module.Decls, &ir.VarDecl{
		Name: name, Type: typeExprOf(arrType), Linkage: ir.LinkStatic, Init: blk,
	})
	ptrType := cgtype.NewPointer(cgtype.NewBasic(cgtype.Char, false), cgtype.Qualifiers{})
	e.SetType(ptrType)
	dest := a.newLocal(ptrType)
	a.emit(&ir.Instruction{Op: ir.OpVarPtr, Width: ir.W16, Dest: ir.VarRef(dest), Src1: ir.VarRef(name)})
	return ir.VarRef(dest)
}

func (a *Analyzer) internedStringName() string {
	name := "$str" + itoaSema(a.strSeq)
	a.strSeq++
	return name
}

func itoaSema(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func (a *Analyzer) lowerIdent(n *ast.IdentExpr) *ir.Operand {
	m, _ := a.cur.Lookup(scope.Ordinary, n.Name)
	if m == nil {
		a.errorf(n.Loc(), "undefined identifier %q", n.Name)
		n.SetType(cgtype.NewBasic(cgtype.Int, false))
		return ir.Imm(0)
	}
	n.SetType(m.Type)
	switch m.Kind {
	case scope.EnumElement:
		if ed, ok := m.Type.EnumDef.(*enumDef); ok {
			return ir.Imm(ed.values[n.Name])
		}
		return ir.Imm(0)
	case scope.Typedef:
		a.errorf(n.Loc(), "%q is a type name, not a value", n.Name)
		return ir.Imm(0)
	}
	if m.Type != nil && m.Type.IsArray() {
		ptrType := cgtype.NewPointer(m.Type.Element, cgtype.Qualifiers{})
		lv := &lvalue{direct: true, global: m.Kind == scope.GlobalSymbol, name: m.IRName, typ: m.Type}
		addr := a.addrOfLValue(lv)
		n.SetType(ptrType)
		return addr
	}
	return ir.VarRef(m.IRName)
}

// lowerLValue lowers e as an assignable location rather than a value.
func (a *Analyzer) lowerLValue(e ast.Expr) *lvalue {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return a.lowerLValue(n.Inner)
	case *ast.IdentExpr:
		m, _ := a.cur.Lookup(scope.Ordinary, n.Name)
		if m == nil {
			a.errorf(n.Loc(), "undefined identifier %q", n.Name)
			return &lvalue{direct: true, typ: cgtype.NewBasic(cgtype.Int, false)}
		}
		n.SetType(m.Type)
		return &lvalue{direct: true, global: m.Kind == scope.GlobalSymbol, name: m.IRName, typ: m.Type}
	case *ast.UnaryExpr:
		if n.Op == ast.OpDeref {
			ptr := a.lowerExpr(n.Operand)
			pt := n.Operand.Type()
			elem := cgtype.NewBasic(cgtype.Int, false)
			if pt != nil && pt.Kind == cgtype.Pointer {
				elem = pt.Pointee
			}
			n.SetType(elem)
			return &lvalue{addr: ptr, typ: elem}
		}
	case *ast.IndexExpr:
		return a.indexExprLValue(n)
	case *ast.MemberExpr:
		return a.memberLValue(n.BaseExpr, n.Name, false)
	case *ast.IndirectMemberExpr:
		return a.memberLValue(n.BaseExpr, n.Name, true)
	}
	a.errorf(e.Loc(), "expression is not assignable")
	return &lvalue{direct: true, typ: cgtype.NewBasic(cgtype.Int, false)}
}

func (a *Analyzer) indexExprLValue(n *ast.IndexExpr) *lvalue {
	base := a.lowerExpr(n.ArrayExpr)
	bt := n.ArrayExpr.Type()
	elem := cgtype.NewBasic(cgtype.Int, false)
	if bt != nil && (bt.Kind == cgtype.Pointer || bt.Kind == cgtype.Array) {
		elem = bt.Pointee
		if bt.Kind == cgtype.Array {
			elem = bt.Element
		}
	}
	idx := a.lowerExpr(n.Index)
	idx = a.coerce(idx, n.Index.Type(), cgtype.NewBasic(cgtype.Int, false))
	addr := a.newLocal(cgtype.NewPointer(elem, cgtype.Qualifiers{}))
	a.emit(&ir.Instruction{Op: ir.OpPtrIdx, Width: ir.W16, Dest: ir.VarRef(addr), Src1: base, Src2: idx, Type: typeExprOf(elem)})
	return &lvalue{addr: ir.VarRef(addr), typ: elem}
}

// memberLValue computes the address of baseExpr.name (or
// baseExpr->name when indirect is set).
func (a *Analyzer) memberLValue(baseExpr ast.Expr, name string, indirect bool) *lvalue {
	var baseAddr *ir.Operand
	var recType *cgtype.Type
	if indirect {
		baseAddr = a.lowerExpr(baseExpr)
		bt := baseExpr.Type()
		if bt != nil && bt.Kind == cgtype.Pointer {
			recType = bt.Pointee
		}
	} else {
		blv := a.lowerLValue(baseExpr)
		recType = blv.typ
		baseAddr = a.addrOfLValue(blv)
	}
	if recType == nil || recType.Kind != cgtype.Record {
		a.errorf(baseExpr.Loc(), "member reference on a non-record type")
		return &lvalue{direct: true, typ: cgtype.NewBasic(cgtype.Int, false)}
	}
	def := recordDefOf(recType)
	if def == nil {
		a.errorf(baseExpr.Loc(), "incomplete record type")
		return &lvalue{direct: true, typ: cgtype.NewBasic(cgtype.Int, false)}
	}
	el := def.FieldByName(name)
	if el == nil {
		a.errorf(baseExpr.Loc(), "no member named %q", name)
		return &lvalue{direct: true, typ: cgtype.NewBasic(cgtype.Int, false)}
	}
	return a.fieldLValueFromAddr(baseAddr, el)
}

func (a *Analyzer) fieldLValueFromAddr(baseAddr *ir.Operand, el *record.Element) *lvalue {
	addr := a.newLocal(cgtype.NewPointer(el.Unit.Type, cgtype.Qualifiers{}))
	a.emit(&ir.Instruction{
		Op: ir.OpRecMbr, Width: ir.W16, Dest: ir.VarRef(addr), Src1: baseAddr,
		Src2: ir.VarRef(el.Unit.IRName), Type: typeExprOf(el.Unit.Type),
	})
	lv := &lvalue{addr: ir.VarRef(addr), typ: el.Type}
	if el.Width > 0 {
		lv.bitWidth = el.Width
		lv.bitOffset = el.BitOffset
		lv.unitType = el.Unit.Type
	}
	return lv
}

func (a *Analyzer) fieldLValue(base *lvalue, el *record.Element) *lvalue {
	return a.fieldLValueFromAddr(a.addrOfLValue(base), el)
}

func (a *Analyzer) indexLValue(base *lvalue, idx int) *lvalue {
	baseAddr := a.addrOfLValue(base)
	elem := base.typ.Element
	addr := a.newLocal(cgtype.NewPointer(elem, cgtype.Qualifiers{}))
	a.emit(&ir.Instruction{Op: ir.OpPtrIdx, Width: ir.W16, Dest: ir.VarRef(addr), Src1: baseAddr, Src2: ir.Imm(int64(idx)), Type: typeExprOf(elem)})
	return &lvalue{addr: ir.VarRef(addr), typ: elem}
}

// addrOfLValue materializes lv's address as an operand, decaying a
// direct array lvalue to a pointer to its first element the way any
// other use of an array value does.
func (a *Analyzer) addrOfLValue(lv *lvalue) *ir.Operand {
	if !lv.direct {
		return lv.addr
	}
	pointee := lv.typ
	if lv.typ != nil && lv.typ.IsArray() {
		pointee = lv.typ.Element
	}
	name := a.newLocal(cgtype.NewPointer(pointee, cgtype.Qualifiers{}))
	op := ir.OpLVarPtr
	if lv.global {
		op = ir.OpVarPtr
	}
	a.emit(&ir.Instruction{Op: op, Width: ir.W16, Dest: ir.VarRef(name), Src1: ir.VarRef(lv.name)})
	return ir.VarRef(name)
}

// addrOf lowers e and returns the address of the lvalue it names, the
// implementation of unary `&`.
func (a *Analyzer) addrOf(e ast.Expr) *ir.Operand {
	lv := a.lowerLValue(e)
	return a.addrOfLValue(lv)
}

// readLValue loads lv's value, unpacking a bit field's bits out of its
// storage unit when lv names one.
func (a *Analyzer) readLValue(lv *lvalue) *ir.Operand {
	if lv.direct {
		if lv.typ != nil && lv.typ.IsArray() {
			return a.addrOfLValue(lv)
		}
		return ir.VarRef(lv.name)
	}
	if lv.bitWidth > 0 {
		return a.readBitField(lv)
	}
	w := ir.Width(lv.typ.BitWidth())
	dest := a.newLocal(lv.typ)
	a.emit(&ir.Instruction{Op: ir.OpRead, Width: w, Dest: ir.VarRef(dest), Src1: lv.addr})
	return ir.VarRef(dest)
}

func (a *Analyzer) readBitField(lv *lvalue) *ir.Operand {
	uw := ir.Width(lv.unitType.BitWidth())
	raw := a.newLocal(lv.unitType)
	a.emit(&ir.Instruction{Op: ir.OpRead, Width: uw, Dest: ir.VarRef(raw), Src1: lv.addr})
	shifted := ir.VarRef(raw)
	if lv.bitOffset > 0 {
		s := a.newLocal(lv.unitType)
		a.emit(&ir.Instruction{Op: ir.OpShrL, Width: uw, Dest: ir.VarRef(s), Src1: shifted, Src2: ir.Imm(int64(lv.bitOffset))})
		shifted = ir.VarRef(s)
	}
	mask := int64(1)<<uint(lv.bitWidth) - 1
	masked := a.newLocal(lv.unitType)
	a.emit(&ir.Instruction{Op: ir.OpAnd, Width: uw, Dest: ir.VarRef(masked), Src1: shifted, Src2: ir.Imm(mask)})
	result := ir.VarRef(masked)
	if lv.typ.IsSigned() && lv.bitWidth < int(uw) {
		sh := int(uw) - lv.bitWidth
		shl := a.newLocal(lv.unitType)
		a.emit(&ir.Instruction{Op: ir.OpShl, Width: uw, Dest: ir.VarRef(shl), Src1: result, Src2: ir.Imm(int64(sh))})
		sra := a.newLocal(lv.unitType)
		a.emit(&ir.Instruction{Op: ir.OpShrA, Width: uw, Dest: ir.VarRef(sra), Src1: ir.VarRef(shl), Src2: ir.Imm(int64(sh))})
		result = ir.VarRef(sra)
	}
	return a.coerce(result, lv.unitType, lv.typ)
}

// writeLValue stores v (of cgtype vt) into lv, coercing to lv's type
// and, for a bit field, read-modify-writing the shared storage unit.
func (a *Analyzer) writeLValue(lv *lvalue, v *ir.Operand, vt *cgtype.Type) *ir.Operand {
	v = a.coerce(v, vt, lv.typ)
	if lv.direct {
		a.emit(&ir.Instruction{Op: ir.OpCopy, Width: ir.Width(lv.typ.BitWidth()), Dest: ir.VarRef(lv.name), Src1: v})
		return v
	}
	if lv.bitWidth > 0 {
		return a.writeBitField(lv, v)
	}
	a.emit(&ir.Instruction{Op: ir.OpWrite, Width: ir.Width(lv.typ.BitWidth()), Dest: lv.addr, Src1: v})
	return v
}

func (a *Analyzer) writeBitField(lv *lvalue, v *ir.Operand) *ir.Operand {
	uw := ir.Width(lv.unitType.BitWidth())
	raw := a.newLocal(lv.unitType)
	a.emit(&ir.Instruction{Op: ir.OpRead, Width: uw, Dest: ir.VarRef(raw), Src1: lv.addr})
	vc := a.coerce(v, lv.typ, lv.unitType)
	mask := int64(1)<<uint(lv.bitWidth) - 1
	masked := a.newLocal(lv.unitType)
	a.emit(&ir.Instruction{Op: ir.OpAnd, Width: uw, Dest: ir.VarRef(masked), Src1: vc, Src2: ir.Imm(mask)})
	shifted := ir.VarRef(masked)
	if lv.bitOffset > 0 {
		s := a.newLocal(lv.unitType)
		a.emit(&ir.Instruction{Op: ir.OpShl, Width: uw, Dest: ir.VarRef(s), Src1: shifted, Src2: ir.Imm(int64(lv.bitOffset))})
		shifted = ir.VarRef(s)
	}
	clearMask := ^(mask << uint(lv.bitOffset))
	cleared := a.newLocal(lv.unitType)
	a.emit(&ir.Instruction{Op: ir.OpAnd, Width: uw, Dest: ir.VarRef(cleared), Src1: ir.VarRef(raw), Src2: ir.Imm(clearMask)})
	merged := a.newLocal(lv.unitType)
	a.emit(&ir.Instruction{Op: ir.OpOr, Width: uw, Dest: ir.VarRef(merged), Src1: ir.VarRef(cleared), Src2: shifted})
	a.emit(&ir.Instruction{Op: ir.OpWrite, Width: uw, Dest: lv.addr, Src1: ir.VarRef(merged)})
	return v
}

func irOpFor(op ast.BinaryOp, t *cgtype.Type) ir.Op {
	unsigned := t.Unsigned || t.IsPointer()
	switch op {
	case ast.OpAdd:
		return ir.OpAdd
	case ast.OpSub:
		return ir.OpSub
	case ast.OpMul:
		return ir.OpMul
	case ast.OpDiv:
		if unsigned {
			return ir.OpUDiv
		}
		return ir.OpSDiv
	case ast.OpMod:
		if unsigned {
			return ir.OpUMod
		}
		return ir.OpSMod
	case ast.OpBitAnd:
		return ir.OpAnd
	case ast.OpBitOr:
		return ir.OpOr
	case ast.OpBitXor:
		return ir.OpXor
	case ast.OpShl:
		return ir.OpShl
	case ast.OpShr:
		if unsigned {
			return ir.OpShrL
		}
		return ir.OpShrA
	case ast.OpEq:
		return ir.OpEq
	case ast.OpNeq:
		return ir.OpNeq
	case ast.OpLt:
		if unsigned {
			return ir.OpLtu
		}
		return ir.OpLt
	case ast.OpLe:
		if unsigned {
			return ir.OpLteu
		}
		return ir.OpLteq
	case ast.OpGt:
		if unsigned {
			return ir.OpGtu
		}
		return ir.OpGt
	case ast.OpGe:
		if unsigned {
			return ir.OpGteu
		}
		return ir.OpGteq
	}
	return ir.OpNop
}

func isComparisonBinOp(op ast.BinaryOp) bool {
	switch op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return true
	}
	return false
}

func (a *Analyzer) lowerBinaryExpr(n *ast.BinaryExpr) *ir.Operand {
	if n.Op.IsAssignment() {
		return a.lowerAssign(n)
	}
	if n.Op == ast.OpLogAnd || n.Op == ast.OpLogOr {
		return a.lowerShortCircuit(n)
	}

	lv := a.lowerExpr(n.Left)
	ltype := n.Left.Type()
	rv := a.lowerExpr(n.Right)
	rtype := n.Right.Type()

	if ltype.IsPointer() && rtype.IsInteger() && (n.Op == ast.OpAdd || n.Op == ast.OpSub) {
		return a.lowerPointerArith(n, lv, ltype, rv, rtype, n.Op == ast.OpSub)
	}
	if rtype.IsPointer() && ltype.IsInteger() && n.Op == ast.OpAdd {
		return a.lowerPointerArith(n, rv, rtype, lv, ltype, false)
	}
	if ltype.IsPointer() && rtype.IsPointer() && n.Op == ast.OpSub {
		dest := a.newLocal(cgtype.NewBasic(cgtype.Long, false))
		a.emit(&ir.Instruction{Op: ir.OpPtrDiff, Width: ir.W16, Dest: ir.VarRef(dest), Src1: lv, Src2: rv, Type: typeExprOf(ltype.Pointee)})
		n.SetType(cgtype.NewBasic(cgtype.Long, false))
		return ir.VarRef(dest)
	}
	if n.Op == ast.OpShl || n.Op == ast.OpShr {
		ct := ltype.Promote()
		lc := a.coerce(lv, ltype, ct)
		rc := a.coerce(rv, rtype, cgtype.NewBasic(cgtype.Int, false))
		dest := a.newLocal(ct)
		a.emit(&ir.Instruction{Op: irOpFor(n.Op, ct), Width: ir.Width(ct.BitWidth()), Dest: ir.VarRef(dest), Src1: lc, Src2: rc})
		n.SetType(ct)
		return ir.VarRef(dest)
	}
	if isComparisonBinOp(n.Op) {
		ct := cgtype.UsualArithmeticConversion(ltype, rtype)
		lc := a.coerce(lv, ltype, ct)
		rc := a.coerce(rv, rtype, ct)
		dest := a.newLocal(cgtype.NewBasic(cgtype.Int, false))
		a.emit(&ir.Instruction{Op: irOpFor(n.Op, ct), Width: ir.Width(ct.BitWidth()), Dest: ir.VarRef(dest), Src1: lc, Src2: rc})
		n.SetType(cgtype.NewBasic(cgtype.Int, false))
		return ir.VarRef(dest)
	}
	ct := cgtype.UsualArithmeticConversion(ltype, rtype)
	lc := a.coerce(lv, ltype, ct)
	rc := a.coerce(rv, rtype, ct)
	dest := a.newLocal(ct)
	a.emit(&ir.Instruction{Op: irOpFor(n.Op, ct), Width: ir.Width(ct.BitWidth()), Dest: ir.VarRef(dest), Src1: lc, Src2: rc})
	n.SetType(ct)
	return ir.VarRef(dest)
}

func (a *Analyzer) lowerPointerArith(n *ast.BinaryExpr, ptr *ir.Operand, ptrType *cgtype.Type, idx *ir.Operand, idxType *cgtype.Type, negate bool) *ir.Operand {
	idx = a.coerce(idx, idxType, cgtype.NewBasic(cgtype.Int, false))
	if negate {
		neg := a.newLocal(cgtype.NewBasic(cgtype.Int, false))
		a.emit(&ir.Instruction{Op: ir.OpNeg, Width: ir.W16, Dest: ir.VarRef(neg), Src1: idx})
		idx = ir.VarRef(neg)
	}
	dest := a.newLocal(ptrType)
	a.emit(&ir.Instruction{Op: ir.OpPtrIdx, Width: ir.W16, Dest: ir.VarRef(dest), Src1: ptr, Src2: idx, Type: typeExprOf(ptrType.Pointee)})
	n.SetType(ptrType)
	return ir.VarRef(dest)
}

func (a *Analyzer) lowerShortCircuit(n *ast.BinaryExpr) *ir.Operand {
	result := a.newLocal(cgtype.NewBasic(cgtype.Int, false))
	lv := a.lowerExpr(n.Left)
	lw := ir.Width(n.Left.Type().BitWidth())
	shortLbl := a.newLabel("sc")
	end := a.newLabel("scend")
	if n.Op == ast.OpLogAnd {
		a.emit(&ir.Instruction{Op: ir.OpJz, Width: lw, Src1: lv, Target: shortLbl})
	} else {
		a.emit(&ir.Instruction{Op: ir.OpJnz, Width: lw, Src1: lv, Target: shortLbl})
	}
	rv := a.lowerExpr(n.Right)
	rw := ir.Width(n.Right.Type().BitWidth())
	nz := a.newLocal(cgtype.NewBasic(cgtype.Int, false))
	a.emit(&ir.Instruction{Op: ir.OpNeq, Width: rw, Dest: ir.VarRef(nz), Src1: rv, Src2: ir.Imm(0)})
	a.emit(&ir.Instruction{Op: ir.OpCopy, Width: ir.W16, Dest: ir.VarRef(result), Src1: ir.VarRef(nz)})
	a.emit(&ir.Instruction{Op: ir.OpJmp, Target: end})
	a.emitLabel(shortLbl)
	shortVal := int64(0)
	if n.Op == ast.OpLogOr {
		shortVal = 1
	}
	a.emit(&ir.Instruction{Op: ir.OpCopy, Width: ir.W16, Dest: ir.VarRef(result), Src1: ir.Imm(shortVal)})
	a.emitLabel(end)
	n.SetType(cgtype.NewBasic(cgtype.Int, false))
	return ir.VarRef(result)
}

func (a *Analyzer) lowerAssign(n *ast.BinaryExpr) *ir.Operand {
	lv := a.lowerLValue(n.Left)
	if n.Op == ast.OpAssign {
		rv := a.lowerExpr(n.Right)
		res := a.writeLValue(lv, rv, n.Right.Type())
		n.SetType(lv.typ)
		return res
	}
	cur := a.readLValue(lv)
	rv := a.lowerExpr(n.Right)
	rtype := n.Right.Type()
	opKind := n.Op.CompoundBase()

	if lv.typ.IsPointer() && (opKind == ast.OpAdd || opKind == ast.OpSub) {
		idx := a.coerce(rv, rtype, cgtype.NewBasic(cgtype.Int, false))
		if opKind == ast.OpSub {
			neg := a.newLocal(cgtype.NewBasic(cgtype.Int, false))
			a.emit(&ir.Instruction{Op: ir.OpNeg, Width: ir.W16, Dest: ir.VarRef(neg), Src1: idx})
			idx = ir.VarRef(neg)
		}
		result := a.newLocal(lv.typ)
		a.emit(&ir.Instruction{Op: ir.OpPtrIdx, Width: ir.W16, Dest: ir.VarRef(result), Src1: cur, Src2: idx, Type: typeExprOf(lv.typ.Pointee)})
		final := a.writeLValue(lv, ir.VarRef(result), lv.typ)
		n.SetType(lv.typ)
		return final
	}

	resType := cgtype.UsualArithmeticConversion(lv.typ, rtype)
	lc := a.coerce(cur, lv.typ, resType)
	rc := a.coerce(rv, rtype, resType)
	result := a.newLocal(resType)
	a.emit(&ir.Instruction{Op: irOpFor(opKind, resType), Width: ir.Width(resType.BitWidth()), Dest: ir.VarRef(result), Src1: lc, Src2: rc})
	final := a.writeLValue(lv, ir.VarRef(result), resType)
	n.SetType(lv.typ)
	return final
}

func (a *Analyzer) lowerTernary(n *ast.TernaryExpr) *ir.Operand {
	cond := a.lowerExpr(n.Cond)
	condWidth := ir.Width(n.Cond.Type().BitWidth())
	thenType := a.inferExprType(n.Then)
	elseType := a.inferExprType(n.Else)
	resType := thenType
	if !thenType.IsPointer() && !elseType.IsPointer() {
		resType = cgtype.UsualArithmeticConversion(thenType, elseType)
	}
	result := a.newLocal(resType)
	elseLbl := a.newLabel("telse")
	end := a.newLabel("tend")
	a.emit(&ir.Instruction{Op: ir.OpJz, Width: condWidth, Src1: cond, Target: elseLbl})
	tv := a.lowerExpr(n.Then)
	tvc := a.coerce(tv, n.Then.Type(), resType)
	a.emit(&ir.Instruction{Op: ir.OpCopy, Width: ir.Width(resType.BitWidth()), Dest: ir.VarRef(result), Src1: tvc})
	a.emit(&ir.Instruction{Op: ir.OpJmp, Target: end})
	a.emitLabel(elseLbl)
	ev := a.lowerExpr(n.Else)
	evc := a.coerce(ev, n.Else.Type(), resType)
	a.emit(&ir.Instruction{Op: ir.OpCopy, Width: ir.Width(resType.BitWidth()), Dest: ir.VarRef(result), Src1: evc})
	a.emitLabel(end)
	n.SetType(resType)
	return ir.VarRef(result)
}

func (a *Analyzer) lowerUnary(n *ast.UnaryExpr) *ir.Operand {
	switch n.Op {
	case ast.OpAddrOf:
		lv := a.lowerLValue(n.Operand)
		addr := a.addrOfLValue(lv)
		n.SetType(cgtype.NewPointer(lv.typ, cgtype.Qualifiers{}))
		return addr
	case ast.OpDeref:
		lv := a.lowerLValue(n)
		return a.readLValue(lv)
	case ast.OpLogNot:
		v := a.lowerExpr(n.Operand)
		dest := a.newLocal(cgtype.NewBasic(cgtype.Int, false))
		a.emit(&ir.Instruction{Op: ir.OpEq, Width: ir.Width(n.Operand.Type().BitWidth()), Dest: ir.VarRef(dest), Src1: v, Src2: ir.Imm(0)})
		n.SetType(cgtype.NewBasic(cgtype.Int, false))
		return ir.VarRef(dest)
	case ast.OpBitNot:
		v := a.lowerExpr(n.Operand)
		t := n.Operand.Type().Promote()
		vc := a.coerce(v, n.Operand.Type(), t)
		dest := a.newLocal(t)
		a.emit(&ir.Instruction{Op: ir.OpBNot, Width: ir.Width(t.BitWidth()), Dest: ir.VarRef(dest), Src1: vc})
		n.SetType(t)
		return ir.VarRef(dest)
	case ast.OpNeg:
		v := a.lowerExpr(n.Operand)
		t := n.Operand.Type().Promote()
		vc := a.coerce(v, n.Operand.Type(), t)
		dest := a.newLocal(t)
		a.emit(&ir.Instruction{Op: ir.OpNeg, Width: ir.Width(t.BitWidth()), Dest: ir.VarRef(dest), Src1: vc})
		n.SetType(t)
		return ir.VarRef(dest)
	case ast.OpPos:
		v := a.lowerExpr(n.Operand)
		n.SetType(n.Operand.Type().Promote())
		return v
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		return a.lowerIncDec(n)
	}
	a.errorf(n.Loc(), "unsupported unary operator")
	n.SetType(cgtype.NewBasic(cgtype.Int, false))
	return ir.Imm(0)
}

func (a *Analyzer) lowerIncDec(n *ast.UnaryExpr) *ir.Operand {
	lv := a.lowerLValue(n.Operand)
	cur := a.readLValue(lv)
	dec := n.Op == ast.OpPreDec || n.Op == ast.OpPostDec
	var newVal *ir.Operand
	if lv.typ.IsPointer() {
		idx := int64(1)
		if dec {
			idx = -1
		}
		name := a.newLocal(lv.typ)
		a.emit(&ir.Instruction{Op: ir.OpPtrIdx, Width: ir.W16, Dest: ir.VarRef(name), Src1: cur, Src2: ir.Imm(idx), Type: typeExprOf(lv.typ.Pointee)})
		newVal = ir.VarRef(name)
	} else {
		op := ir.OpAdd
		if dec {
			op = ir.OpSub
		}
		name := a.newLocal(lv.typ)
		a.emit(&ir.Instruction{Op: op, Width: ir.Width(lv.typ.BitWidth()), Dest: ir.VarRef(name), Src1: cur, Src2: ir.Imm(1)})
		newVal = ir.VarRef(name)
	}
	a.writeLValue(lv, newVal, lv.typ)
	n.SetType(lv.typ)
	if n.Op == ast.OpPreInc || n.Op == ast.OpPreDec {
		return newVal
	}
	return cur
}

func (a *Analyzer) lowerSizeof(n *ast.SizeofExpr) *ir.Operand {
	var t *cgtype.Type
	if n.TypeName != nil {
		t = a.resolveTypeName(n.TypeName)
	} else {
		t = a.inferExprType(n.Operand)
	}
	n.SetType(cgtype.NewBasic(cgtype.Long, true))
	return ir.Imm(int64(t.SizeBytes()))
}

func (a *Analyzer) lowerCast(n *ast.CastExpr) *ir.Operand {
	target := a.resolveTypeName(n.TypeName)
	v := a.lowerExpr(n.Operand)
	src := n.Operand.Type()
	n.SetType(target)
	switch {
	case target.IsPointer() && src.IsPointer():
		return v
	case target.IsPointer() && src.IsInteger():
		return a.coerce(v, src, cgtype.NewBasic(cgtype.Int, true))
	case target.IsInteger() && src.IsPointer():
		return a.coerce(v, cgtype.NewBasic(cgtype.Int, true), target)
	case target.IsVoid():
		return v
	}
	return a.coerce(v, src, target)
}

func (a *Analyzer) lowerCompoundLiteral(n *ast.CompoundLiteralExpr) *ir.Operand {
	t := a.resolveTypeName(n.TypeName)
	name := a.newLocal(t)
	lv := &lvalue{direct: true, name: name, typ: t}
	a.initializeLocal(lv, n.Init)
	if t.IsArray() {
		ptrType := cgtype.NewPointer(t.Element, cgtype.Qualifiers{})
		addr := a.addrOfLValue(lv)
		n.SetType(ptrType)
		return addr
	}
	n.SetType(t)
	return ir.VarRef(name)
}

// initializeLocal applies an initializer (scalar expr or braced
// aggregate list, possibly with C99 designators) to a freshly declared
// local lvalue.
func (a *Analyzer) initializeLocal(lv *lvalue, init ast.Node) {
	switch v := init.(type) {
	case *ast.InitializerList:
		switch {
		case lv.typ != nil && lv.typ.Kind == cgtype.Record:
			def := recordDefOf(lv.typ)
			idx := 0
			for _, el := range v.Elements {
				field := a.designatedRecordField(def, el, &idx)
				if field == nil {
					continue
				}
				a.assignInitValue(a.fieldLValue(lv, field), el.Value)
			}
		case lv.typ != nil && lv.typ.IsArray():
			next := 0
			for _, el := range v.Elements {
				idx := next
				if len(el.Designator) > 0 && el.Designator[0].Index != nil {
					if iv, ok := a.evalConstInt(el.Designator[0].Index); ok {
						idx = int(iv)
					}
				}
				a.assignInitValue(a.indexLValue(lv, idx), el.Value)
				next = idx + 1
			}
		case len(v.Elements) == 1:
			a.assignInitValue(lv, v.Elements[0].Value)
		}
	default:
		a.assignInitValue(lv, init)
	}
}

func (a *Analyzer) assignInitValue(lv *lvalue, v ast.Node) {
	switch x := v.(type) {
	case *ast.InitializerList:
		a.initializeLocal(lv, x)
	case ast.Expr:
		rv := a.lowerExpr(x)
		a.writeLValue(lv, rv, x.Type())
	}
}

func (a *Analyzer) lowerCall(n *ast.CallExpr) *ir.Operand {
	if id, ok := n.Callee.(*ast.IdentExpr); ok {
		if v, handled := a.lowerVaBuiltin(n, id); handled {
			return v
		}
	}

	var fnType *cgtype.Type
	var calleeName string
	var calleeOperand *ir.Operand
	isDirect := false
	if id, ok := n.Callee.(*ast.IdentExpr); ok {
		if m, _ := a.cur.Lookup(scope.Ordinary, id.Name); m != nil && m.Type != nil && m.Type.Kind == cgtype.Function {
			fnType = m.Type
			isDirect = true
			calleeName = m.IRName
			id.SetType(m.Type)
		}
	}
	if !isDirect {
		calleeOperand = a.lowerExpr(n.Callee)
		ct := n.Callee.Type()
		if ct != nil && ct.Kind == cgtype.Pointer {
			fnType = ct.Pointee
		} else {
			fnType = ct
		}
	}

	var items []*ir.Operand
	for _, arg := range n.Args {
		av := a.lowerExpr(arg)
		at := arg.Type()
		if fnType != nil && fnType.Func != nil && len(items) < len(fnType.Func.Args) {
			av = a.coerce(av, at, fnType.Func.Args[len(items)])
		} else if at != nil {
			av = a.coerce(av, at, at.Promote())
		}
		items = append(items, av)
	}

	retType := cgtype.Void
	if fnType != nil && fnType.Func != nil && fnType.Func.Return != nil {
		retType = fnType.Func.Return
	}
	n.SetType(retType)

	instr := &ir.Instruction{Width: ir.Width(retType.BitWidth()), Src2: ir.List(items...)}
	var destName string
	if !retType.IsVoid() {
		destName = a.newLocal(retType)
		instr.Dest = ir.VarRef(destName)
	}
	if isDirect {
		instr.Op = ir.OpCall
		instr.Src1 = ir.VarRef(calleeName)
	} else {
		instr.Op = ir.OpCalli
		instr.Src1 = calleeOperand
	}
	a.emit(instr)
	if destName == "" {
		return ir.Imm(0)
	}
	return ir.VarRef(destName)
}

// lowerVaBuiltin recognizes __va_start/__va_end/__va_copy, which parse
// as ordinary call expressions but lower to dedicated IR opcodes rather
// than a real call.
func (a *Analyzer) lowerVaBuiltin(n *ast.CallExpr, id *ast.IdentExpr) (*ir.Operand, bool) {
	switch id.Name {
	case "__va_start", "__builtin_va_start":
		if len(n.Args) == 0 {
			return nil, false
		}
		apAddr := a.addrOf(n.Args[0])
		lastArg := ""
		if len(n.Args) > 1 {
			if ident, ok := n.Args[1].(*ast.IdentExpr); ok {
				lastArg = ident.Name
				a.lowerExpr(n.Args[1])
			}
		}
		a.emit(&ir.Instruction{Op: ir.OpVaStart, Dest: apAddr, Src1: ir.ImmSym(0, lastArg)})
		n.SetType(cgtype.Void)
		return ir.Imm(0), true
	case "__va_end", "__builtin_va_end":
		if len(n.Args) == 0 {
			return nil, false
		}
		apAddr := a.addrOf(n.Args[0])
		a.emit(&ir.Instruction{Op: ir.OpVaEnd, Src1: apAddr})
		n.SetType(cgtype.Void)
		return ir.Imm(0), true
	case "__va_copy", "__builtin_va_copy":
		if len(n.Args) < 2 {
			return nil, false
		}
		dst := a.addrOf(n.Args[0])
		src := a.addrOf(n.Args[1])
		a.emit(&ir.Instruction{Op: ir.OpVaCopy, Dest: dst, Src1: src})
		n.SetType(cgtype.Void)
		return ir.Imm(0), true
	}
	return nil, false
}

func (a *Analyzer) lowerVaArg(n *ast.VaArgExpr) *ir.Operand {
	apAddr := a.addrOf(n.ArgList)
	t := a.resolveTypeName(n.TypeName)
	n.SetType(t)
	dest := a.newLocal(t)
	a.emit(&ir.Instruction{Op: ir.OpVaArg, Width: ir.Width(t.BitWidth()), Dest: ir.VarRef(dest), Src1: apAddr, Type: typeExprOf(t)})
	return ir.VarRef(dest)
}

// inferExprType determines e's cgtype without emitting any
// instructions, used where C evaluates a type but not a value
// (sizeof's expression form, and picking a ternary's result type
// before either branch is known to run).
func (a *Analyzer) inferExprType(e ast.Expr) *cgtype.Type {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return a.inferExprType(n.Inner)
	case *ast.LiteralExpr:
		switch n.Tokens[0].Kind {
		case token.IntLiteral:
			_, t := intLiteral(n.Text)
			return t
		case token.CharLiteral:
			return cgtype.NewBasic(cgtype.Char, false)
		default:
			return cgtype.NewPointer(cgtype.NewBasic(cgtype.Char, false), cgtype.Qualifiers{})
		}
	case *ast.StringConcatExpr:
		return cgtype.NewPointer(cgtype.NewBasic(cgtype.Char, false), cgtype.Qualifiers{})
	case *ast.IdentExpr:
		m, _ := a.cur.Lookup(scope.Ordinary, n.Name)
		if m == nil {
			return cgtype.NewBasic(cgtype.Int, false)
		}
		if m.Type != nil && m.Type.IsArray() {
			return cgtype.NewPointer(m.Type.Element, cgtype.Qualifiers{})
		}
		return m.Type
	case *ast.CastExpr:
		return a.resolveTypeName(n.TypeName)
	case *ast.SizeofExpr:
		return cgtype.NewBasic(cgtype.Long, true)
	case *ast.UnaryExpr:
		switch n.Op {
		case ast.OpAddrOf:
			return cgtype.NewPointer(a.inferExprType(n.Operand), cgtype.Qualifiers{})
		case ast.OpDeref:
			t := a.inferExprType(n.Operand)
			if t != nil && t.Kind == cgtype.Pointer {
				return t.Pointee
			}
			return cgtype.NewBasic(cgtype.Int, false)
		case ast.OpLogNot:
			return cgtype.NewBasic(cgtype.Int, false)
		default:
			return a.inferExprType(n.Operand).Promote()
		}
	case *ast.BinaryExpr:
		if n.Op.IsAssignment() {
			return a.inferExprType(n.Left)
		}
		lt := a.inferExprType(n.Left)
		rt := a.inferExprType(n.Right)
		if isComparisonBinOp(n.Op) || n.Op == ast.OpLogAnd || n.Op == ast.OpLogOr {
			return cgtype.NewBasic(cgtype.Int, false)
		}
		if lt.IsPointer() {
			return lt
		}
		if rt.IsPointer() {
			return rt
		}
		return cgtype.UsualArithmeticConversion(lt, rt)
	case *ast.TernaryExpr:
		tt := a.inferExprType(n.Then)
		et := a.inferExprType(n.Else)
		if tt.IsPointer() {
			return tt
		}
		return cgtype.UsualArithmeticConversion(tt, et)
	case *ast.CallExpr:
		ct := a.inferExprType(n.Callee)
		if ct == nil {
			return cgtype.NewBasic(cgtype.Int, false)
		}
		if ct.Kind == cgtype.Pointer && ct.Pointee != nil {
			ct = ct.Pointee
		}
		if ct.Kind == cgtype.Function && ct.Func != nil {
			return ct.Func.Return
		}
		return cgtype.NewBasic(cgtype.Int, false)
	case *ast.IndexExpr:
		bt := a.inferExprType(n.ArrayExpr)
		if bt != nil && bt.Kind == cgtype.Pointer {
			return bt.Pointee
		}
		return cgtype.NewBasic(cgtype.Int, false)
	case *ast.MemberExpr:
		return a.fieldType(a.inferExprType(n.BaseExpr), n.Name)
	case *ast.IndirectMemberExpr:
		bt := a.inferExprType(n.BaseExpr)
		if bt != nil && bt.Kind == cgtype.Pointer {
			bt = bt.Pointee
		}
		return a.fieldType(bt, n.Name)
	case *ast.CommaExpr:
		if len(n.Exprs) == 0 {
			return cgtype.NewBasic(cgtype.Int, false)
		}
		return a.inferExprType(n.Exprs[len(n.Exprs)-1])
	case *ast.CompoundLiteralExpr:
		return a.resolveTypeName(n.TypeName)
	case *ast.VaArgExpr:
		return a.resolveTypeName(n.TypeName)
	}
	return cgtype.NewBasic(cgtype.Int, false)
}

func (a *Analyzer) fieldType(rt *cgtype.Type, name string) *cgtype.Type {
	def := recordDefOf(rt)
	if def == nil {
		return cgtype.NewBasic(cgtype.Int, false)
	}
	el := def.FieldByName(name)
	if el == nil {
		return cgtype.NewBasic(cgtype.Int, false)
	}
	return el.Type
}
