// Package selector is the instruction selector (§4.4): it turns a
// typed internal/ir module into a z80ic module by choosing, for every
// IR instruction, the Z80 sequence that implements it. Register
// allocation is fused into the same pass rather than run as a separate
// dataflow stage: every IR value lives in its procedure's stack frame,
// and a Z80 register is only ever a transient holder of one value
// while a single IR instruction is being realized, freed again before
// the next one starts. This matches how register-starved 8-bit targets
// are conventionally compiled (the Z80 has six general-purpose byte
// registers total) and sidesteps needing a separate liveness analysis
// the way a register-rich target's linear-scan allocator would.
package selector

import (
	"fmt"

	"github.com/gmofishsauce/zcc/internal/ir"
	"github.com/gmofishsauce/zcc/internal/z80ic"
)

// runtime helper symbols: the Z80 has no hardware multiply or divide,
// and arithmetic wider than 16 bits outgrows a single register pair,
// so both route through linked-in runtime routines the way every
// production Z80 C compiler's code generator does (SDCC's z80 port
// calls `___mulint`/`___divsint` etc. for exactly this reason).
const (
	rtMul8   = "__zcc_mul8"
	rtMul16  = "__zcc_mul16"
	rtMulW   = "__zcc_mulw" // width >16
	rtSDiv   = "__zcc_sdiv"
	rtUDiv   = "__zcc_udiv"
	rtSMod   = "__zcc_smod"
	rtUMod   = "__zcc_umod"
	rtAddW   = "__zcc_addw"
	rtSubW   = "__zcc_subw"
	rtAndW   = "__zcc_andw"
	rtOrW    = "__zcc_orw"
	rtXorW   = "__zcc_xorw"
	rtShlW   = "__zcc_shlw"
	rtShrAW  = "__zcc_shraw"
	rtShrLW  = "__zcc_shrlw"
	rtCmpW   = "__zcc_cmpw" // returns -1/0/1 in A, width-generic signed compare
	rtCmpUW  = "__zcc_cmpuw"
)

// runtimeHelpers is the full set of linked-in support routines the
// selector's expansions may call. They're declared extern
// unconditionally rather than only when actually referenced: an
// unreferenced extern costs the assembler nothing, and tracking exact
// usage across every expansion path would duplicate logic already
// expressed by simply calling them.
var runtimeHelpers = []string{
	rtMul8, rtMul16, rtMulW, rtSDiv, rtUDiv, rtSMod, rtUMod,
	rtAddW, rtSubW, rtAndW, rtOrW, rtXorW, rtShlW, rtShrAW, rtShrLW,
	rtCmpW, rtCmpUW, "__zcc_call_hl",
}

// Select lowers mod's declarations into a z80ic module.
func Select(mod *ir.Module) (*z80ic.Module, error) {
	out := &z80ic.Module{SourceFile: mod.SourceFile}
	for _, name := range runtimeHelpers {
		out.Decls = append(out.Decls, &z80ic.ExternDecl{Name: name})
	}
	for _, d := range mod.Decls {
		switch n := d.(type) {
		case *ir.RecordDecl:
			// Layout only; already consumed by field-offset computation.
		case *ir.VarDecl:
			vd, err := selectVarDecl(mod, n)
			if err != nil {
				return nil, err
			}
			out.Decls = append(out.Decls, vd)
		case *ir.ProcDecl:
			pd, err := selectProc(mod, n)
			if err != nil {
				return nil, err
			}
			out.Decls = append(out.Decls, pd)
		default:
			return nil, fmt.Errorf("selector: unsupported declaration %T", d)
		}
	}
	return out, nil
}

func selectVarDecl(mod *ir.Module, n *ir.VarDecl) (z80ic.Decl, error) {
	if n.Linkage == ir.LinkExtern && n.Init == nil {
		return &z80ic.ExternDecl{Name: n.Name}, nil
	}
	if n.Init == nil {
		size := sizeOfType(mod, n.Type)
		return &z80ic.VarDecl{Name: n.Name, Data: make([]byte, size)}, nil
	}
	data, err := flattenInitData(n.Init)
	if err != nil {
		return nil, err
	}
	return &z80ic.VarDecl{Name: n.Name, Data: data}, nil
}

// flattenInitData replays a global initializer block (a sequence of
// `imm` instructions internal/sema already reduced every leaf to) into
// raw little-endian bytes.
func flattenInitData(blk *ir.Block) ([]byte, error) {
	var out []byte
	for _, e := range blk.Entries {
		if e.Instr == nil || e.Instr.Op != ir.OpImm {
			continue
		}
		src := e.Instr.Src1
		if src.Kind == ir.OperandList {
			for _, item := range src.Items {
				out = append(out, byte(item.Imm))
			}
			continue
		}
		out = append(out, leBytes(src.Imm, int(e.Instr.Width)/8)...)
	}
	return out, nil
}

func leBytes(v int64, n int) []byte {
	if n <= 0 {
		n = 1
	}
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = byte(v >> uint(8*i))
	}
	return b
}

// sizeOfType returns t's size in bytes, resolving a Named type through
// mod's record declarations (already laid out and padded by
// internal/record before lowering, so field order alone determines
// offsets).
func sizeOfType(mod *ir.Module, t *ir.TypeExpr) int {
	if t == nil {
		return 2
	}
	switch t.Kind {
	case ir.TypeInt, ir.TypePtr:
		if t.Width == 0 {
			return 2
		}
		return int(t.Width) / 8
	case ir.TypeArray:
		return t.Count * sizeOfType(mod, t.Elem)
	case ir.TypeNamed:
		return recordSize(mod, t.Name)
	case ir.TypeVaList:
		return 2
	default:
		return 2
	}
}

func recordDeclByName(mod *ir.Module, name string) *ir.RecordDecl {
	for _, d := range mod.Decls {
		if rd, ok := d.(*ir.RecordDecl); ok && rd.Name == name {
			return rd
		}
	}
	return nil
}

func recordSize(mod *ir.Module, name string) int {
	rd := recordDeclByName(mod, name)
	if rd == nil {
		return 2
	}
	total := 0
	for _, f := range rd.Fields {
		total += sizeOfType(mod, f.Type)
	}
	return total
}

// fieldOffset finds the record field named fieldName across every
// record declaration in mod and returns its byte offset within that
// record plus its own size. internal/sema's OpRecMbr carries only the
// storage unit's synthesized IR name, not a pre-baked offset (offsets
// depend on record layout, which is the backend's business, and the
// synthesized field names internal/record hands out are unique module
// wide, so a flat scan is unambiguous).
func fieldOffset(mod *ir.Module, fieldName string) (offset, size int, fieldType *ir.TypeExpr, ok bool) {
	for _, d := range mod.Decls {
		rd, isRec := d.(*ir.RecordDecl)
		if !isRec {
			continue
		}
		off := 0
		for _, f := range rd.Fields {
			fsize := sizeOfType(mod, f.Type)
			if f.Name == fieldName {
				return off, fsize, f.Type, true
			}
			off += fsize
		}
	}
	return 0, 2, nil, false
}
