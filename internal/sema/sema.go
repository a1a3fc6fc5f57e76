// Package sema is the semantic analyser and IR generator: it walks an
// AST module, resolves every declaration to a cgtype, lays out records,
// and lowers statements and expressions into the typed intermediate
// representation defined by internal/ir.
package sema

import (
	"fmt"

	"github.com/gmofishsauce/zcc/internal/ast"
	"github.com/gmofishsauce/zcc/internal/cgtype"
	"github.com/gmofishsauce/zcc/internal/diagnostic"
	"github.com/gmofishsauce/zcc/internal/ir"
	"github.com/gmofishsauce/zcc/internal/record"
	"github.com/gmofishsauce/zcc/internal/scope"
	"github.com/gmofishsauce/zcc/internal/sourcepos"
)

// enumDef is sema's own implementation of cgtype.EnumRef; enums have no
// dedicated package the way records do because an enum carries no
// layout beyond its underlying integer width.
type enumDef struct {
	name       string
	underlying cgtype.IntKind
	values     map[string]int64
}

func (e *enumDef) EnumName() string               { return e.name }
func (e *enumDef) EnumUnderlying() cgtype.IntKind { return e.underlying }

// loopCtx is the break/continue label pair active inside a loop body.
type loopCtx struct {
	breakLabel, continueLabel string
}

// switchCtx tracks an in-progress switch's case dispatch while its body
// is being lowered; cases accumulate as they're encountered in source
// order and the compare-and-jump chain is synthesized once the switch's
// tag has been evaluated and the body has been walked for its labels.
type switchCtx struct {
	tag         *ir.Operand
	width       ir.Width
	cases       []switchCase
	defaultLbl  string
	breakLabel  string
}

type switchCase struct {
	value int64
	label string
}

// Analyzer holds the state threaded through one translation unit's
// semantic analysis: the output IR module under construction, the
// current lexical scope, the record/enum tag tables, and the small
// per-function bookkeeping (temp/label counters, break/continue/goto
// targets) that resets at each function definition.
type Analyzer struct {
	log    *diagnostic.Log
	module *ir.Module

	global *scope.Scope
	cur    *scope.Scope

	records map[string]*record.Def
	enums   map[string]*enumDef
	anonSeq int
	strSeq  int

	proc         *ir.ProcDecl
	block        *ir.Block
	tempSeq      int
	labelSeq     int
	usedNames    map[string]bool
	loops        []loopCtx
	switches     []*switchCtx
	breaks       []string
	funcLabels   map[string]bool

	failed bool
}

// New creates an Analyzer that records diagnostics to log.
func New(log *diagnostic.Log) *Analyzer {
	return &Analyzer{
		log:     log,
		records: make(map[string]*record.Def),
		enums:   make(map[string]*enumDef),
	}
}

// Analyze lowers mod into an IR module. It stops at the first error,
// matching §4.3's "generation stops at the first error" contract.
func (a *Analyzer) Analyze(mod *ast.Module) (*ir.Module, error) {
	a.module = &ir.Module{SourceFile: mod.SourceFile}
	a.global = scope.New(nil)
	a.cur = a.global

	for _, d := range mod.Decls {
		a.topDecl(d)
		if a.failed {
			break
		}
	}
	if a.failed {
		msgs := a.log.Messages()
		return nil, msgs[len(msgs)-1]
	}
	return a.module, nil
}

func (a *Analyzer) errorf(loc sourcepos.Range, format string, args ...interface{}) {
	if a.failed {
		return
	}
	a.log.AddError(diagnostic.StageSema, diagnostic.KindInvalidInput, loc, format, args...)
	a.failed = true
}

func (a *Analyzer) pushScope() { a.cur = scope.New(a.cur) }
func (a *Analyzer) popScope()  { a.cur = a.cur.Parent() }

func (a *Analyzer) newTemp() string {
	t := fmt.Sprintf("t%d", a.tempSeq)
	a.tempSeq++
	return t
}

func (a *Analyzer) newLabel(prefix string) string {
	l := fmt.Sprintf("L%s%d", prefix, a.labelSeq)
	a.labelSeq++
	return l
}

// localName returns an IR-safe name for ident, suffixed with _N if
// ident is already in use in the current procedure (a shadowing inner
// declaration), so every local/argument name in one procedure is
// unique even though C allows block-scoped shadowing.
func (a *Analyzer) localName(ident string) string {
	if ident == "" {
		ident = "anon"
	}
	name := ident
	n := 2
	for a.usedNames[name] {
		name = fmt.Sprintf("%s_%d", ident, n)
		n++
	}
	a.usedNames[name] = true
	return name
}

func (a *Analyzer) emit(in *ir.Instruction) {
	a.block.Append(&ir.Entry{Instr: in})
}

func (a *Analyzer) emitLabel(name string) {
	a.block.Append(&ir.Entry{Label: name})
}

// currentLoop/currentSwitch return the innermost enclosing construct of
// their kind, or nil/zero if there isn't one (a bare break/continue
// outside any loop or switch, which is a source error the caller
// reports).
func (a *Analyzer) currentLoop() *loopCtx {
	if len(a.loops) == 0 {
		return nil
	}
	return &a.loops[len(a.loops)-1]
}

func (a *Analyzer) currentSwitch() *switchCtx {
	if len(a.switches) == 0 {
		return nil
	}
	return a.switches[len(a.switches)-1]
}

// pushBreak/popBreak/currentBreak track the innermost enclosing break
// target, which may be either a loop or a switch, whichever is nearer
// in source order; kept as its own stack rather than derived from
// loops+switches since break must pick whichever was entered last.
func (a *Analyzer) pushBreak(label string) { a.breaks = append(a.breaks, label) }
func (a *Analyzer) popBreak()              { a.breaks = a.breaks[:len(a.breaks)-1] }
func (a *Analyzer) currentBreak() (string, bool) {
	if len(a.breaks) == 0 {
		return "", false
	}
	return a.breaks[len(a.breaks)-1], true
}

// newLocal allocates a fresh IR local of type t in the current
// procedure and returns its IR name.
func (a *Analyzer) newLocal(t *cgtype.Type) string {
	name := a.newTemp()
	a.proc.Locals = append(a.proc.Locals, &ir.Local{Name: name, Type: typeExprOf(t)})
	return name
}
