package sema

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/cgtype"
	"github.com/gmofishsauce/zcc/internal/scope"
	"github.com/gmofishsauce/zcc/internal/token"
)

// evalConstInt folds e as a constant integer expression, the subset C
// requires in array bounds, bit-field widths, enumerator values, and
// case labels. It does not attempt full constant folding of arbitrary
// expressions; anything outside integer/char literals, parentheses,
// enum constants, sizeof, casts, unary +/-/~/!, the binary +-*/%&|^<<>>,
// comparison and &&/|| operators over two constants, and ?: reports
// false rather than guessing.
func (a *Analyzer) evalConstInt(e ast.Expr) (int64, bool) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		switch n.Tokens[0].Kind {
		case token.CharLiteral:
			return charLiteral(n.Text), true
		case token.IntLiteral:
			v, _ := intLiteral(n.Text)
			return v, true
		}
		return 0, false
	case *ast.ParenExpr:
		return a.evalConstInt(n.Inner)
	case *ast.IdentExpr:
		m, _ := a.cur.Lookup(scope.Ordinary, n.Name)
		if m != nil && m.Kind == scope.EnumElement {
			if ed, ok := m.Type.EnumDef.(*enumDef); ok {
				if v, ok := ed.values[n.Name]; ok {
					return v, true
				}
			}
		}
		return 0, false
	case *ast.UnaryExpr:
		v, ok := a.evalConstInt(n.Operand)
		if !ok {
			return 0, false
		}
		switch n.Op {
		case ast.OpNeg:
			return -v, true
		case ast.OpPos:
			return v, true
		case ast.OpBitNot:
			return ^v, true
		case ast.OpLogNot:
			if v == 0 {
				return 1, true
			}
			return 0, true
		}
		return 0, false
	case *ast.SizeofExpr:
		var t *cgtype.Type
		if n.TypeName != nil {
			t = a.resolveTypeName(n.TypeName)
		} else if n.Operand != nil {
			t = a.inferExprType(n.Operand)
		}
		return int64(t.SizeBytes()), true
	case *ast.BinaryExpr:
		l, ok1 := a.evalConstInt(n.Left)
		r, ok2 := a.evalConstInt(n.Right)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch n.Op {
		case ast.OpAdd:
			return l + r, true
		case ast.OpSub:
			return l - r, true
		case ast.OpMul:
			return l * r, true
		case ast.OpDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case ast.OpMod:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		case ast.OpShl:
			return l << uint(r), true
		case ast.OpShr:
			return l >> uint(r), true
		case ast.OpBitAnd:
			return l & r, true
		case ast.OpBitOr:
			return l | r, true
		case ast.OpBitXor:
			return l ^ r, true
		case ast.OpLt:
			return boolToInt(l < r), true
		case ast.OpLe:
			return boolToInt(l <= r), true
		case ast.OpGt:
			return boolToInt(l > r), true
		case ast.OpGe:
			return boolToInt(l >= r), true
		case ast.OpEq:
			return boolToInt(l == r), true
		case ast.OpNeq:
			return boolToInt(l != r), true
		case ast.OpLogAnd:
			return boolToInt(l != 0 && r != 0), true
		case ast.OpLogOr:
			return boolToInt(l != 0 || r != 0), true
		}
		return 0, false
	case *ast.TernaryExpr:
		c, ok := a.evalConstInt(n.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return a.evalConstInt(n.Then)
		}
		return a.evalConstInt(n.Else)
	case *ast.CastExpr:
		return a.evalConstInt(n.Operand)
	}
	return 0, false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// resolveTypeName resolves a TypeName node (used by sizeof/cast) to a
// cgtype without requiring a full declaration context.
func (a *Analyzer) resolveTypeName(tn *ast.TypeName) *cgtype.Type {
	base := a.resolveTypeSpecs(tn.Specs, tn.Quals)
	t, _ := a.resolveDeclarator(base, tn.Declarator)
	return t
}
