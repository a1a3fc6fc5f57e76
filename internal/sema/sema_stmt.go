package sema

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/cgtype"
	"github.com/gmofishsauce/zcc/internal/ir"
)

// lowerStmt lowers one statement, threading labels and branch targets
// the way §4.3 describes for each construct.
func (a *Analyzer) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		a.pushScope()
		for _, item := range n.Items {
			a.lowerBlockItem(item)
			if a.failed {
				break
			}
		}
		a.popScope()
	case *ast.ExprStmt:
		a.lowerExpr(n.Expr)
	case *ast.DeclStmt:
		a.lowerLocalDecl(n.Decl)
	case *ast.NullStmt:
		// nothing to emit
	case *ast.AsmStmt:
		// Inline assembly template text is a target-specific pass-through
		// the selector would splice verbatim; at the IR level it is a nop
		// placeholder since this pipeline stage only tracks control flow.
		a.emit(&ir.Instruction{Op: ir.OpNop})
	case *ast.IfStmt:
		a.lowerIf(n)
	case *ast.WhileStmt:
		a.lowerWhile(n)
	case *ast.DoStmt:
		a.lowerDo(n)
	case *ast.ForStmt:
		a.lowerFor(n)
	case *ast.LoopMacroStmt:
		a.lowerLoopMacro(n)
	case *ast.SwitchStmt:
		a.lowerSwitch(n)
	case *ast.CaseLabelStmt:
		a.lowerCaseLabel(n)
	case *ast.DefaultLabelStmt:
		a.lowerDefaultLabel(n)
	case *ast.GotoLabelStmt:
		a.emitLabel(userLabel(n.Name))
	case *ast.GotoStmt:
		a.emit(&ir.Instruction{Op: ir.OpJmp, Target: userLabel(n.Label)})
	case *ast.BreakStmt:
		lbl, ok := a.currentBreak()
		if !ok {
			a.errorf(n.Loc(), "break statement not within a loop or switch")
			return
		}
		a.emit(&ir.Instruction{Op: ir.OpJmp, Target: lbl})
	case *ast.ContinueStmt:
		lp := a.currentLoop()
		if lp == nil {
			a.errorf(n.Loc(), "continue statement not within a loop")
			return
		}
		a.emit(&ir.Instruction{Op: ir.OpJmp, Target: lp.continueLabel})
	case *ast.ReturnStmt:
		a.lowerReturn(n)
	default:
		a.errorf(s.Loc(), "unsupported statement")
	}
}

func (a *Analyzer) lowerReturn(n *ast.ReturnStmt) {
	retType := a.proc.Ret
	if n.Value == nil {
		a.emit(&ir.Instruction{Op: ir.OpRet})
		return
	}
	v := a.lowerExpr(n.Value)
	var width ir.Width
	if retType != nil {
		width = retType.Width
		if retType.Kind == ir.TypeArray || retType.Kind == ir.TypeNamed {
			width = 16
		}
		v = a.coerceToIRType(v, n.Value.Type(), retType)
	} else {
		width = ir.Width(n.Value.Type().BitWidth())
	}
	a.emit(&ir.Instruction{Op: ir.OpRetv, Width: width, Src1: v})
}

// coerceToIRType coerces v (of cgtype from) to the width an IR type
// expression expects, used at return and argument boundaries where the
// target is already an ir.TypeExpr rather than a cgtype.
func (a *Analyzer) coerceToIRType(v *ir.Operand, from *cgtype.Type, to *ir.TypeExpr) *ir.Operand {
	if to == nil || to.Kind != ir.TypeInt || from == nil {
		return v
	}
	fw := ir.Width(from.BitWidth())
	if fw == to.Width || from.IsPointer() {
		return v
	}
	dest := a.newLocal(intCgtypeForWidth(to.Width, from.IsSigned()))
	op := ir.OpZrExt
	if from.IsSigned() {
		op = ir.OpSgnExt
	}
	if to.Width < fw {
		op = ir.OpTrunc
	}
	a.emit(&ir.Instruction{Op: op, Width: to.Width, Dest: ir.VarRef(dest), Src1: v})
	return ir.VarRef(dest)
}

func (a *Analyzer) lowerIf(n *ast.IfStmt) {
	cond := a.lowerExpr(n.Cond)
	condWidth := ir.Width(n.Cond.Type().BitWidth())
	if n.Else == nil {
		end := a.newLabel("endif")
		a.emit(&ir.Instruction{Op: ir.OpJz, Width: condWidth, Src1: cond, Target: end})
		a.lowerStmt(n.Then)
		a.emitLabel(end)
		return
	}
	elseLbl := a.newLabel("else")
	end := a.newLabel("endif")
	a.emit(&ir.Instruction{Op: ir.OpJz, Width: condWidth, Src1: cond, Target: elseLbl})
	a.lowerStmt(n.Then)
	a.emit(&ir.Instruction{Op: ir.OpJmp, Target: end})
	a.emitLabel(elseLbl)
	a.lowerStmt(n.Else)
	a.emitLabel(end)
}

func (a *Analyzer) lowerWhile(n *ast.WhileStmt) {
	top := a.newLabel("wtop")
	end := a.newLabel("wend")
	a.loops = append(a.loops, loopCtx{breakLabel: end, continueLabel: top})
	a.pushBreak(end)
	a.emitLabel(top)
	cond := a.lowerExpr(n.Cond)
	a.emit(&ir.Instruction{Op: ir.OpJz, Width: ir.Width(n.Cond.Type().BitWidth()), Src1: cond, Target: end})
	a.lowerStmt(n.Body)
	a.emit(&ir.Instruction{Op: ir.OpJmp, Target: top})
	a.emitLabel(end)
	a.popBreak()
	a.loops = a.loops[:len(a.loops)-1]
}

func (a *Analyzer) lowerDo(n *ast.DoStmt) {
	top := a.newLabel("dtop")
	cont := a.newLabel("dcont")
	end := a.newLabel("dend")
	a.loops = append(a.loops, loopCtx{breakLabel: end, continueLabel: cont})
	a.pushBreak(end)
	a.emitLabel(top)
	a.lowerStmt(n.Body)
	a.emitLabel(cont)
	cond := a.lowerExpr(n.Cond)
	a.emit(&ir.Instruction{Op: ir.OpJnz, Width: ir.Width(n.Cond.Type().BitWidth()), Src1: cond, Target: top})
	a.emitLabel(end)
	a.popBreak()
	a.loops = a.loops[:len(a.loops)-1]
}

func (a *Analyzer) lowerFor(n *ast.ForStmt) {
	a.pushScope()
	if n.Init != nil {
		a.lowerStmt(n.Init)
	}
	top := a.newLabel("ftop")
	cont := a.newLabel("fcont")
	end := a.newLabel("fend")
	a.loops = append(a.loops, loopCtx{breakLabel: end, continueLabel: cont})
	a.pushBreak(end)
	a.emitLabel(top)
	if n.Cond != nil {
		cond := a.lowerExpr(n.Cond)
		a.emit(&ir.Instruction{Op: ir.OpJz, Width: ir.Width(n.Cond.Type().BitWidth()), Src1: cond, Target: end})
	}
	a.lowerStmt(n.Body)
	a.emitLabel(cont)
	if n.Post != nil {
		a.lowerExpr(n.Post)
	}
	a.emit(&ir.Instruction{Op: ir.OpJmp, Target: top})
	a.emitLabel(end)
	a.popBreak()
	a.loops = a.loops[:len(a.loops)-1]
	a.popScope()
}

// lowerLoopMacro lowers a vendor `forever { ... }`-style macro as an
// unconditional loop, the semantics its expansion always has.
func (a *Analyzer) lowerLoopMacro(n *ast.LoopMacroStmt) {
	top := a.newLabel("mtop")
	end := a.newLabel("mend")
	a.loops = append(a.loops, loopCtx{breakLabel: end, continueLabel: top})
	a.pushBreak(end)
	a.emitLabel(top)
	a.lowerStmt(n.Body)
	a.emit(&ir.Instruction{Op: ir.OpJmp, Target: top})
	a.emitLabel(end)
	a.popBreak()
	a.loops = a.loops[:len(a.loops)-1]
}

// lowerSwitch builds the ordered case table by lowering the body into a
// side block first (so CaseLabelStmt/DefaultLabelStmt can register
// themselves against the active switchCtx), then emits the
// compare-and-jump dispatch chain in source order ahead of the body,
// matching §4.3's "emits a compare-and-jump chain in source order"
// contract.
func (a *Analyzer) lowerSwitch(n *ast.SwitchStmt) {
	tag := a.lowerExpr(n.Tag)
	width := ir.Width(n.Tag.Type().BitWidth())
	end := a.newLabel("swend")
	ctx := &switchCtx{tag: tag, width: width, breakLabel: end}
	a.switches = append(a.switches, ctx)
	a.pushBreak(end)

	saved := a.block
	a.block = &ir.Block{}
	a.lowerStmt(n.Body)
	bodyEntries := a.block.Entries
	a.block = saved

	for _, c := range ctx.cases {
		flag := a.newLocal(intCgtypeForWidth(width, false))
		a.emit(&ir.Instruction{Op: ir.OpEq, Width: width, Dest: ir.VarRef(flag), Src1: tag, Src2: ir.Imm(c.value)})
		a.emit(&ir.Instruction{Op: ir.OpJnz, Width: width, Src1: ir.VarRef(flag), Target: c.label})
	}
	if ctx.defaultLbl != "" {
		a.emit(&ir.Instruction{Op: ir.OpJmp, Target: ctx.defaultLbl})
	} else {
		a.emit(&ir.Instruction{Op: ir.OpJmp, Target: end})
	}
	a.block.Entries = append(a.block.Entries, bodyEntries...)
	a.emitLabel(end)

	a.popBreak()
	a.switches = a.switches[:len(a.switches)-1]
}

func (a *Analyzer) lowerCaseLabel(n *ast.CaseLabelStmt) {
	ctx := a.currentSwitch()
	if ctx == nil {
		a.errorf(n.Loc(), "case label not within a switch statement")
		return
	}
	v, ok := a.evalConstInt(n.Value)
	if !ok {
		a.errorf(n.Value.Loc(), "case value must be a constant expression")
	}
	lbl := a.newLabel("case")
	ctx.cases = append(ctx.cases, switchCase{value: v, label: lbl})
	a.emitLabel(lbl)
}

func (a *Analyzer) lowerDefaultLabel(n *ast.DefaultLabelStmt) {
	ctx := a.currentSwitch()
	if ctx == nil {
		a.errorf(n.Loc(), "default label not within a switch statement")
		return
	}
	lbl := a.newLabel("default")
	ctx.defaultLbl = lbl
	a.emitLabel(lbl)
}
