package sema

import (
	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/cgtype"
	"github.com/gmofishsauce/zcc/internal/ir"
	"github.com/gmofishsauce/zcc/internal/scope"
	"github.com/gmofishsauce/zcc/internal/token"
)

// topDecl lowers one top-level AST declaration into zero or more IR
// declarations, dispatching on the declaration's concrete shape.
func (a *Analyzer) topDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.VarDecl:
		a.topVarDecl(n)
	case *ast.FuncDecl:
		a.topFuncDecl(n)
	case *ast.TypedefDecl:
		a.topTypedefDecl(n)
	case *ast.RecordDecl:
		a.resolveRecordSpec(n.Spec)
	case *ast.EnumDecl:
		a.resolveEnumSpec(n.Spec)
	case *ast.ExternCDecl:
		for _, dd := range n.Decls {
			a.topDecl(dd)
			if a.failed {
				return
			}
		}
	case *ast.MacroDecl:
		// Macro-based declarations require knowing the macro's expansion,
		// which lives in the preprocessor this pipeline does not run;
		// nothing can be lowered from the macro name alone.
	default:
		a.errorf(d.Loc(), "unsupported top-level declaration")
	}
}

func linkageOf(sc ast.StorageClass, hasBody bool) ir.Linkage {
	switch {
	case sc == ast.SCExtern:
		return ir.LinkExtern
	case sc == ast.SCStatic:
		return ir.LinkStatic
	case !hasBody:
		return ir.LinkExtern
	default:
		return ir.LinkDefault
	}
}

// topVarDecl lowers a global/extern variable declaration. Insertion
// into file scope tolerates a redeclaration with a compatible type (the
// common extern-then-definition pattern); anything else is EEXIST.
func (a *Analyzer) topVarDecl(n *ast.VarDecl) {
	if n.Storage == ast.SCTypedef {
		a.topTypedefFromVarDecl(n)
		return
	}
	base := a.resolveTypeSpecs(n.Specs, n.Quals)
	for _, id := range n.Declarators {
		t, name := a.resolveDeclarator(base, id.Declarator)
		if name == "" {
			a.errorf(id.Loc(), "declaration does not name a variable")
			continue
		}
		if existing := a.global.LookupLocal(scope.Ordinary, name); existing != nil {
			if existing.Type == nil || !existing.Type.Compatible(t) {
				a.errorf(id.Loc(), "redeclaration of %q with incompatible type", name)
				continue
			}
		} else {
			a.global.Insert(scope.Ordinary, name, &scope.Member{
				Ident: name, Kind: scope.GlobalSymbol, Type: t, IRName: name,
			})
		}
		link := linkageOf(n.Storage, id.Init != nil)
		var initBlk *ir.Block
		if id.Init != nil {
			initBlk = a.lowerGlobalInit(t, id.Init)
		}
		a.module.Decls = append(a.module.Decls, &ir.VarDecl{
			Name: name, Type: typeExprOf(t), Linkage: link, Init: initBlk,
		})
		if a.failed {
			return
		}
	}
}

// topTypedefFromVarDecl handles the (rare, GCC-tolerated) spelling of a
// typedef as a VarDecl whose storage class is `typedef`, which the
// parser may produce instead of a dedicated TypedefDecl depending on
// how the declaration specifiers were recognized.
func (a *Analyzer) topTypedefFromVarDecl(n *ast.VarDecl) {
	base := a.resolveTypeSpecs(n.Specs, n.Quals)
	for _, id := range n.Declarators {
		t, name := a.resolveDeclarator(base, id.Declarator)
		if name == "" {
			continue
		}
		a.cur.Insert(scope.Ordinary, name, &scope.Member{Ident: name, Kind: scope.Typedef, Type: t})
	}
}

func (a *Analyzer) topTypedefDecl(n *ast.TypedefDecl) {
	base := a.resolveTypeSpecs(n.Specs, n.Quals)
	for _, d := range n.Declarators {
		t, name := a.resolveDeclarator(base, d)
		if name == "" {
			continue
		}
		if err := a.cur.Insert(scope.Ordinary, name, &scope.Member{Ident: name, Kind: scope.Typedef, Type: t}); err != nil {
			a.errorf(d.Loc(), "%v", err)
			return
		}
	}
}

// funcDeclarator walks down d's pointer/paren wrapping to find the
// FunctionDeclarator carrying the parameter list, the way a function's
// declarator is shaped regardless of how many `*`/`()` layers surround
// its name (`int (*f(int))(void)` etc).
func funcDeclarator(d ast.Declarator) *ast.FunctionDeclarator {
	switch t := d.(type) {
	case *ast.FunctionDeclarator:
		return t
	case *ast.PointerDeclarator:
		return funcDeclarator(t.Inner)
	case *ast.ParenDeclarator:
		return funcDeclarator(t.Inner)
	default:
		return nil
	}
}

// topFuncDecl lowers a function prototype or definition.
func (a *Analyzer) topFuncDecl(n *ast.FuncDecl) {
	base := a.resolveTypeSpecs(n.Specs, nil)
	t, name := a.resolveDeclarator(base, n.Declarator)
	if name == "" {
		a.errorf(n.Loc(), "function declaration does not name a function")
		return
	}
	if n.IRName == "" {
		n.IRName = name
	}
	n.Type = t
	if t.Kind != cgtype.Function {
		a.errorf(n.Loc(), "%q is not declared as a function", name)
		return
	}

	if existing := a.global.LookupLocal(scope.Ordinary, name); existing != nil {
		if existing.Type == nil || !existing.Type.Compatible(t) {
			a.errorf(n.Loc(), "redeclaration of %q with incompatible type", name)
			return
		}
	} else {
		a.global.Insert(scope.Ordinary, name, &scope.Member{
			Ident: name, Kind: scope.GlobalSymbol, Type: t, IRName: n.IRName,
		})
	}

	link := linkageOf(n.Storage, n.Body != nil)
	proc := &ir.ProcDecl{
		Name:     n.IRName,
		Linkage:  link,
		Ret:      typeExprOf(t.Func.Return),
		Variadic: t.Func.Variadic,
	}
	if n.Body == nil {
		a.module.Decls = append(a.module.Decls, proc)
		return
	}

	fd := funcDeclarator(n.Declarator)
	a.proc = proc
	a.block = &ir.Block{}
	a.usedNames = make(map[string]bool)
	a.tempSeq = 0
	a.labelSeq = 0
	a.loops = nil
	a.switches = nil
	a.breaks = nil
	a.collectLabels(n.Body)

	a.pushScope()
	if fd != nil {
		for _, p := range fd.Params {
			pname := p.Declarator.Ident()
			irName := a.localName(pname)
			proc.Args = append(proc.Args, &ir.Arg{Name: irName, Type: typeExprOf(p.Type)})
			if pname != "" {
				a.cur.Insert(scope.Ordinary, pname, &scope.Member{
					Ident: pname, Kind: scope.FunctionArgument, Type: p.Type, IRName: irName,
				})
			}
		}
	}
	for _, item := range n.Body.Items {
		a.lowerBlockItem(item)
		if a.failed {
			a.popScope()
			return
		}
	}
	if t.Func.Return.IsVoid() {
		a.emit(&ir.Instruction{Op: ir.OpRet})
	}
	a.popScope()

	proc.Body = a.block
	a.module.Decls = append(a.module.Decls, proc)
}

// collectLabels does the first pass over a function body that §4.3
// describes: building the function-scope goto label table before any
// statement is lowered, so a forward goto can be lowered without a
// second pass.
func (a *Analyzer) collectLabels(body *ast.Block) {
	a.funcLabels = make(map[string]bool)
	ast.Walk(body, func(n ast.Node) {
		if gl, ok := n.(*ast.GotoLabelStmt); ok {
			a.funcLabels[gl.Name] = true
		}
	})
}

func userLabel(name string) string { return "Luser_" + name }

// lowerBlockItem lowers one item of a compound statement's item list,
// each of which is either a Stmt or a local Decl.
func (a *Analyzer) lowerBlockItem(item ast.Node) {
	switch n := item.(type) {
	case ast.Stmt:
		a.lowerStmt(n)
	case ast.Decl:
		a.lowerLocalDecl(n)
	default:
		a.errorf(item.Loc(), "unexpected block item")
	}
}

// lowerLocalDecl lowers a declaration appearing inside a function body
// (a block, or a for-loop's init clause).
func (a *Analyzer) lowerLocalDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.VarDecl:
		if n.Storage == ast.SCTypedef {
			a.topTypedefFromVarDecl(n)
			return
		}
		base := a.resolveTypeSpecs(n.Specs, n.Quals)
		for _, id := range n.Declarators {
			t, name := a.resolveDeclarator(base, id.Declarator)
			if name == "" {
				a.errorf(id.Loc(), "declaration does not name a variable")
				continue
			}
			irName := a.localName(name)
			if err := a.cur.Insert(scope.Ordinary, name, &scope.Member{
				Ident: name, Kind: scope.LocalVariable, Type: t, IRName: irName,
			}); err != nil {
				a.errorf(id.Loc(), "%v", err)
				continue
			}
			a.proc.Locals = append(a.proc.Locals, &ir.Local{Name: irName, Type: typeExprOf(t)})
			if n.Storage == ast.SCExtern {
				continue
			}
			if id.Init != nil {
				lv := &lvalue{direct: true, name: irName, typ: t}
				a.initializeLocal(lv, id.Init)
			}
		}
	case *ast.TypedefDecl:
		a.topTypedefDecl(n)
	case *ast.RecordDecl:
		a.resolveRecordSpec(n.Spec)
	case *ast.EnumDecl:
		a.resolveEnumSpec(n.Spec)
	default:
		a.errorf(d.Loc(), "unsupported local declaration")
	}
}

// lowerGlobalInit flattens init into a block of `imm` instructions
// producing a global's initializer data. Only compile-time-constant
// leaves are supported (the Z80 target has no runtime initializer
// code for statics), matching how a ROM-resident data section is
// built: every non-constant leaf is a diagnostic, not a deferred
// runtime store.
func (a *Analyzer) lowerGlobalInit(t *cgtype.Type, init ast.Node) *ir.Block {
	blk := &ir.Block{}
	a.flattenGlobalInit(blk, t, init)
	return blk
}

func (a *Analyzer) flattenGlobalInit(blk *ir.Block, t *cgtype.Type, init ast.Node) {
	switch v := init.(type) {
	case *ast.LiteralExpr:
		if v.Tokens[0].Kind == token.StringLiteral || v.Tokens[0].Kind == token.WideStringLiteral {
			data := stringLiteral(v.Text)
			items := make([]*ir.Operand, 0, len(data)+1)
			for _, b := range data {
				items = append(items, ir.Imm(int64(b)))
			}
			items = append(items, ir.Imm(0))
			blk.Append(&ir.Entry{Instr: &ir.Instruction{
				Op: ir.OpImm, Width: ir.W8, Dest: ir.VarRef("$data"), Src1: ir.List(items...),
			}})
			return
		}
		a.flattenConstLeaf(blk, t, v)
	case ast.Expr:
		a.flattenConstLeaf(blk, t, v)
	case *ast.InitializerList:
		switch {
		case t.Kind == cgtype.Record:
			def := recordDefOf(t)
			idx := 0
			for _, el := range v.Elements {
				field := a.designatedRecordField(def, el, &idx)
				if field == nil {
					continue
				}
				a.flattenGlobalInit(blk, field.Type, el.Value)
			}
		case t.IsArray():
			for _, el := range v.Elements {
				a.flattenGlobalInit(blk, t.Element, el.Value)
			}
		default:
			if len(v.Elements) == 1 {
				a.flattenGlobalInit(blk, t, v.Elements[0].Value)
			}
		}
	}
}

func (a *Analyzer) flattenConstLeaf(blk *ir.Block, t *cgtype.Type, e ast.Expr) {
	val, ok := a.evalConstInt(e)
	if !ok {
		a.errorf(e.Loc(), "initializer is not a compile-time constant")
		return
	}
	blk.Append(&ir.Entry{Instr: &ir.Instruction{
		Op: ir.OpImm, Width: ir.Width(t.BitWidth()), Dest: ir.VarRef("$data"), Src1: ir.Imm(val),
	}})
}
