package ir

import (
	"fmt"
	"io"
	"strings"
)

// Write renders mod in the textual IR format: `record`/`var`/`proc`
// declarations each terminated by `begin ... end;`, instructions as
// `op[.width] operands...;` inside a procedure's labelled block. The
// format round-trips through Parse: Write(Parse(Write(m))) reproduces
// the same tree (modulo whitespace).
func Write(w io.Writer, mod *Module) error {
	bw := &bufWriter{w: w}
	bw.printf("module %s;\n", quote(mod.SourceFile))
	for _, d := range mod.Decls {
		bw.printf("\n")
		switch decl := d.(type) {
		case *RecordDecl:
			writeRecord(bw, decl)
		case *VarDecl:
			writeVar(bw, decl)
		case *ProcDecl:
			writeProc(bw, decl)
		}
	}
	return bw.err
}

type bufWriter struct {
	w   io.Writer
	err error
}

func (b *bufWriter) printf(format string, args ...interface{}) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func writeRecord(bw *bufWriter, d *RecordDecl) {
	bw.printf("record %s begin\n", d.Name)
	for _, f := range d.Fields {
		bw.printf("  %s : %s;\n", f.Name, typeText(f.Type))
	}
	bw.printf("end;\n")
}

func writeVar(bw *bufWriter, d *VarDecl) {
	prefix := linkagePrefix(d.Linkage)
	if d.Init == nil {
		bw.printf("%svar %s : %s;\n", prefix, d.Name, typeText(d.Type))
		return
	}
	bw.printf("%svar %s : %s begin\n", prefix, d.Name, typeText(d.Type))
	writeEntries(bw, d.Init.Entries, "  ")
	bw.printf("end;\n")
}

func linkagePrefix(l Linkage) string {
	switch l {
	case LinkStatic:
		return "static "
	case LinkExtern:
		return "extern "
	default:
		return ""
	}
}

func writeProc(bw *bufWriter, d *ProcDecl) {
	var flags []string
	if d.Variadic {
		flags = append(flags, "variadic")
	}
	if d.CallsignOnly {
		flags = append(flags, "callsign")
	}
	flagText := ""
	if len(flags) > 0 {
		flagText = strings.Join(flags, " ") + " "
	}
	var params []string
	for _, a := range d.Args {
		params = append(params, a.Name+":"+typeText(a.Type))
	}
	ret := ""
	if d.Ret != nil {
		ret = ": " + typeText(d.Ret)
	}
	header := fmt.Sprintf("%s%sproc %s(%s)%s", linkagePrefix(d.Linkage), flagText, d.Name, strings.Join(params, ", "), ret)
	if d.Body == nil {
		bw.printf("%s;\n", header)
		return
	}
	bw.printf("%s begin\n", header)
	if len(d.Locals) > 0 {
		bw.printf("  locals begin\n")
		for _, l := range d.Locals {
			bw.printf("    %s : %s;\n", l.Name, typeText(l.Type))
		}
		bw.printf("  end;\n")
	}
	writeEntries(bw, d.Body.Entries, "  ")
	bw.printf("end;\n")
}

func writeEntries(bw *bufWriter, entries []*Entry, indent string) {
	for _, e := range entries {
		if e.Label != "" {
			bw.printf("%s%s:\n", indent, e.Label)
		}
		if e.Instr != nil {
			bw.printf("%s%s\n", indent, instrText(e.Instr))
		}
	}
}

func typeText(t *TypeExpr) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case TypeInt:
		return fmt.Sprintf("int.%d", t.Width)
	case TypePtr:
		return fmt.Sprintf("ptr.%d", t.Width)
	case TypeArray:
		return fmt.Sprintf("[%d] %s", t.Count, typeText(t.Elem))
	case TypeNamed:
		return t.Name
	case TypeVaList:
		return "va_list"
	default:
		return "?"
	}
}

func operandText(o *Operand) string {
	if o == nil {
		return ""
	}
	switch o.Kind {
	case OperandImm:
		if o.Sym != "" {
			return fmt.Sprintf("#%d+%s", o.Imm, o.Sym)
		}
		return fmt.Sprintf("#%d", o.Imm)
	case OperandVar:
		return o.Name
	case OperandList:
		parts := make([]string, len(o.Items))
		for i, it := range o.Items {
			parts[i] = operandText(it)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "?"
	}
}

// instrText renders one instruction's mnemonic, width suffix and
// operand list. Each opcode has a fixed operand arity and order,
// mirrored by parseInstrBody in parse.go.
func instrText(in *Instruction) string {
	mnem := in.Op.String()
	if IsWidthParametric(in.Op) {
		mnem = fmt.Sprintf("%s.%d", mnem, in.Width)
	}
	var parts []string
	switch in.Op {
	case OpRet, OpNop:
		// no operands
	case OpRetv, OpVaEnd:
		parts = []string{operandText(in.Src1)}
	case OpJmp:
		parts = []string{in.Target}
	case OpJz, OpJnz:
		parts = []string{operandText(in.Src1), in.Target}
	case OpImm, OpVarPtr, OpLVarPtr, OpBNot, OpNeg, OpCopy, OpSgnExt, OpZrExt, OpTrunc, OpRead:
		parts = []string{operandText(in.Dest), operandText(in.Src1)}
	case OpWrite:
		parts = []string{operandText(in.Src1), operandText(in.Src2)}
	case OpRecMbr:
		parts = []string{operandText(in.Dest), operandText(in.Src1), operandText(in.Src2)}
		if in.Type != nil {
			parts = append(parts, typeText(in.Type))
		}
	case OpRecCopy:
		parts = []string{operandText(in.Dest), operandText(in.Src1)}
		if in.Type != nil {
			parts = append(parts, typeText(in.Type))
		}
	case OpPtrIdx, OpPtrDiff:
		parts = []string{operandText(in.Dest), operandText(in.Src1), operandText(in.Src2)}
		if in.Type != nil {
			parts = append(parts, typeText(in.Type))
		}
	case OpCall, OpCalli:
		if in.Dest != nil {
			parts = append(parts, operandText(in.Dest))
		}
		parts = append(parts, operandText(in.Src1), operandText(in.Src2))
	case OpVaStart:
		parts = []string{operandText(in.Src1), operandText(in.Src2)}
	case OpVaCopy:
		parts = []string{operandText(in.Dest), operandText(in.Src1)}
	case OpVaArg:
		parts = []string{operandText(in.Dest), operandText(in.Src1), typeText(in.Type)}
	default:
		// binary arithmetic/bitwise/comparison
		parts = []string{operandText(in.Dest), operandText(in.Src1), operandText(in.Src2)}
	}
	if len(parts) == 0 {
		return mnem + ";"
	}
	return mnem + " " + strings.Join(parts, ", ") + ";"
}
