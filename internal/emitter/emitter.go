// Package emitter renders a z80ic.Module as Zilog-mnemonic assembly
// text, writing directly to an io.Writer rather than building an
// intermediate text AST.
package emitter

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/gmofishsauce/zcc/internal/z80ic"
)

// Emitter writes Z80-IC declarations as assembly text.
type Emitter struct {
	out *bufio.Writer
}

// New wraps w for emission.
func New(w io.Writer) *Emitter {
	return &Emitter{out: bufio.NewWriter(w)}
}

// Comment writes a semicolon-prefixed comment line.
func (e *Emitter) Comment(format string, args ...any) {
	fmt.Fprintf(e.out, "; %s\n", fmt.Sprintf(format, args...))
}

// BlankLine writes an empty line, used to separate declarations the
// way hand-written Z80 assembly conventionally does.
func (e *Emitter) BlankLine() {
	fmt.Fprintln(e.out)
}

// Directive writes an assembler directive line, e.g. "org", "db".
func (e *Emitter) Directive(dir string, args ...string) {
	fmt.Fprintf(e.out, "\t%s\t%s\n", dir, joinArgs(args))
}

// Label writes a colon-terminated label on its own line.
func (e *Emitter) Label(name string) {
	fmt.Fprintf(e.out, "%s:\n", name)
}

// Instr0 emits a bare mnemonic with no operands.
func (e *Emitter) Instr0(mnemonic string) {
	fmt.Fprintf(e.out, "\t%s\n", mnemonic)
}

// Instr1 emits a mnemonic with one operand.
func (e *Emitter) Instr1(mnemonic, a string) {
	fmt.Fprintf(e.out, "\t%s\t%s\n", mnemonic, a)
}

// Instr2 emits a mnemonic with two comma-separated operands.
func (e *Emitter) Instr2(mnemonic, a, b string) {
	fmt.Fprintf(e.out, "\t%s\t%s,%s\n", mnemonic, a, b)
}

// Instr3 emits a mnemonic with three comma-separated operands. No
// opcode emitInstr handles takes three; bit/set/res's (bit, register)
// pair goes through Instr2.
func (e *Emitter) Instr3(mnemonic, a, b, c string) {
	fmt.Fprintf(e.out, "\t%s\t%s,%s,%s\n", mnemonic, a, b, c)
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ","
		}
		out += a
	}
	return out
}

// EmitModule writes every declaration in m in order.
func (e *Emitter) EmitModule(m *z80ic.Module) error {
	e.Comment("generated from %s", m.SourceFile)
	for _, d := range m.Decls {
		e.BlankLine()
		if err := e.emitDecl(d); err != nil {
			return err
		}
	}
	return e.out.Flush()
}

func (e *Emitter) emitDecl(d z80ic.Decl) error {
	switch n := d.(type) {
	case *z80ic.ExternDecl:
		e.Directive("extrn", n.Name)
	case *z80ic.VarDecl:
		e.emitVarDecl(n)
	case *z80ic.ProcDecl:
		return e.emitProcDecl(n)
	default:
		return fmt.Errorf("emitter: unsupported declaration %T", d)
	}
	return nil
}

func (e *Emitter) emitVarDecl(n *z80ic.VarDecl) {
	e.Directive("public", n.Name)
	e.Label(n.Name)
	if len(n.Data) == 0 {
		e.Directive("ds", "1")
		return
	}
	for i := 0; i < len(n.Data); i += 8 {
		end := i + 8
		if end > len(n.Data) {
			end = len(n.Data)
		}
		args := make([]string, 0, end-i)
		for _, b := range n.Data[i:end] {
			args = append(args, fmt.Sprintf("0%02Xh", b))
		}
		e.Directive("db", args...)
	}
}

func (e *Emitter) emitProcDecl(n *z80ic.ProcDecl) error {
	e.Directive("public", n.Name)
	e.Label(n.Name)
	if n.Body == nil {
		return nil
	}
	for _, entry := range n.Body.Entries {
		if entry.Label != "" {
			e.Label(entry.Label)
		}
		if entry.Instr == nil {
			continue
		}
		if err := e.emitInstr(entry.Instr); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitInstr(in *z80ic.Instruction) error {
	if z80ic.IsTierB(in.Op) {
		return fmt.Errorf("emitter: unallocated virtual-register instruction %v reached emission", in.Op)
	}
	mnem := in.Op.String()
	switch in.Op {
	case z80ic.OpNop, z80ic.OpHalt, z80ic.OpDi, z80ic.OpEi, z80ic.OpRet,
		z80ic.OpRlca, z80ic.OpRrca, z80ic.OpRla, z80ic.OpRra, z80ic.OpCpl,
		z80ic.OpNeg, z80ic.OpScf, z80ic.OpCcf, z80ic.OpExDEHL, z80ic.OpExAFAF,
		z80ic.OpExx:
		e.Instr0(mnem)
	case z80ic.OpRetCC:
		e.Instr1(mnem, in.Src1.Cond.String())
	case z80ic.OpLdRR, z80ic.OpLdRN, z80ic.OpLdRIndirect, z80ic.OpLdIndirectR,
		z80ic.OpLdIndirectN, z80ic.OpLdDDNN, z80ic.OpLdHLIndirectNN,
		z80ic.OpLdANN, z80ic.OpLdNNA, z80ic.OpLdIndirectNNHL, z80ic.OpLdSPHL:
		e.Instr2(mnem, in.Dst.String(), in.Src1.String())
	case z80ic.OpPushQQ, z80ic.OpPopQQ:
		e.Instr1(mnem, in.Dst.String())
	case z80ic.OpAddAR, z80ic.OpAddAN, z80ic.OpAdcAR, z80ic.OpAddHLSS,
		z80ic.OpAdcHLSS, z80ic.OpSbcHLSS, z80ic.OpSbcAR:
		e.Instr2(mnem, in.Dst.String(), in.Src1.String())
	case z80ic.OpSubR, z80ic.OpAndR, z80ic.OpOrR, z80ic.OpXorR, z80ic.OpCpR,
		z80ic.OpIncR, z80ic.OpDecR, z80ic.OpIncSS, z80ic.OpDecSS,
		z80ic.OpSlaR, z80ic.OpSraR, z80ic.OpSrlR, z80ic.OpRlR, z80ic.OpRrR:
		e.Instr1(mnem, in.Dst.String())
	case z80ic.OpBitBR, z80ic.OpSetBR, z80ic.OpResBR:
		e.Instr2(mnem, in.Src1.String(), in.Src2.String())
	case z80ic.OpJpNN, z80ic.OpCallNN, z80ic.OpJrE, z80ic.OpDjnzE:
		e.Instr1(mnem, in.Target)
	case z80ic.OpJpCCNN, z80ic.OpCallCCNN, z80ic.OpJrCCE:
		e.Instr2(mnem, in.Src1.Cond.String(), in.Target)
	case z80ic.OpJpHL:
		e.Instr1(mnem, "(HL)")
	default:
		return fmt.Errorf("emitter: unhandled opcode %v", in.Op)
	}
	return nil
}

// VerifyRoundTrip emits m twice into independent buffers and reports
// whether the bytes are identical, the determinism self-check §4.7
// requires: the same module must always produce the same text, since
// any diff-based test tooling depends on it.
func VerifyRoundTrip(m *z80ic.Module) (bool, error) {
	var first, second bytes.Buffer
	if err := New(&first).EmitModule(m); err != nil {
		return false, err
	}
	if err := New(&second).EmitModule(m); err != nil {
		return false, err
	}
	return bytes.Equal(first.Bytes(), second.Bytes()), nil
}
