package z80ic

import (
	"fmt"
	"io"
)

// Write renders mod as assembly-shaped text: one label or instruction
// per line, operands comma-separated, Tier B virtual-register forms
// printed exactly like their Tier A counterparts since Op.String and
// Operand.String already dispatch on the operand Kind rather than on
// whether the instruction is physical or virtual. This is a debugging
// dump for inspecting instruction selection before register allocation
// runs, not the final assembly text internal/emitter produces; it never
// applies the header/footer/section conventions a real Z80 assembler
// expects.
func Write(w io.Writer, mod *Module) error {
	bw := &dumpWriter{w: w}
	bw.printf("module %s\n", mod.SourceFile)
	for _, d := range mod.Decls {
		bw.printf("\n")
		switch decl := d.(type) {
		case *ExternDecl:
			bw.printf("extern %s\n", decl.Name)
		case *VarDecl:
			writeVarDecl(bw, decl)
		case *ProcDecl:
			writeProcDecl(bw, decl)
		}
	}
	return bw.err
}

type dumpWriter struct {
	w   io.Writer
	err error
}

func (b *dumpWriter) printf(format string, args ...interface{}) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}

func writeVarDecl(bw *dumpWriter, d *VarDecl) {
	if d.Data == nil {
		bw.printf("var %s\n", d.Name)
		return
	}
	bw.printf("var %s = %d bytes\n", d.Name, len(d.Data))
}

func writeProcDecl(bw *dumpWriter, d *ProcDecl) {
	bw.printf("proc %s frame=%d vregs=%d vpairs=%d\n", d.Name, d.FrameSize, d.UsedVRegs, d.UsedVPairs)
	if d.Body == nil {
		return
	}
	for _, e := range d.Body.Entries {
		if e.Label != "" {
			bw.printf("%s:\n", e.Label)
		}
		if e.Instr != nil {
			bw.printf("\t%s\n", instrText(e.Instr))
		}
	}
}

func instrText(in *Instruction) string {
	mnem := in.Op.String()
	var ops []string
	for _, o := range []*Operand{in.Dst, in.Src1, in.Src2} {
		if o != nil {
			ops = append(ops, o.String())
		}
	}
	if in.Target != "" {
		ops = append(ops, in.Target)
	}
	if len(ops) == 0 {
		return mnem
	}
	out := mnem
	for i, o := range ops {
		if i == 0 {
			out += " " + o
		} else {
			out += "," + o
		}
	}
	return out
}
