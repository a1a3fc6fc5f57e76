package ir_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/zcc/internal/ir"
)

func sampleModule() *ir.Module {
	return &ir.Module{
		SourceFile: "test.c",
		Decls: []ir.Decl{
			&ir.RecordDecl{
				Name: "Point",
				Fields: []*ir.RecordField{
					{Name: "x", Type: ir.IntType(ir.W32)},
					{Name: "y", Type: ir.IntType(ir.W32)},
				},
			},
			&ir.VarDecl{
				Name:    "counter",
				Type:    ir.IntType(ir.W32),
				Linkage: ir.LinkStatic,
				Init: &ir.Block{
					Entries: []*ir.Entry{
						{Instr: &ir.Instruction{Op: ir.OpImm, Width: ir.W32, Dest: ir.VarRef("counter"), Src1: ir.Imm(0)}},
					},
				},
			},
			&ir.ProcDecl{
				Name: "add",
				Args: []*ir.Arg{
					{Name: "a", Type: ir.IntType(ir.W32)},
					{Name: "b", Type: ir.IntType(ir.W32)},
				},
				Ret: ir.IntType(ir.W32),
				Locals: []*ir.Local{
					{Name: "t0", Type: ir.IntType(ir.W32)},
				},
				Body: &ir.Block{
					Entries: []*ir.Entry{
						{Label: "L0"},
						{Instr: &ir.Instruction{Op: ir.OpAdd, Width: ir.W32, Dest: ir.VarRef("t0"), Src1: ir.VarRef("a"), Src2: ir.VarRef("b")}},
						{Instr: &ir.Instruction{Op: ir.OpRetv, Width: ir.W32, Src1: ir.VarRef("t0")}},
					},
				},
			},
			&ir.ProcDecl{
				Name:    "puts",
				Linkage: ir.LinkExtern,
				Args:    []*ir.Arg{{Name: "s", Type: ir.PtrType(ir.W16)}},
				Ret:     ir.IntType(ir.W16),
			},
		},
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	mod := sampleModule()
	var buf bytes.Buffer
	require.NoError(t, ir.Write(&buf, mod))

	got, err := ir.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)

	var buf2 bytes.Buffer
	require.NoError(t, ir.Write(&buf2, got))
	assert.Equal(t, buf.String(), buf2.String(), "re-dumping a parsed module must reproduce the same text")
}

func TestWriteFormat(t *testing.T) {
	mod := sampleModule()
	var buf bytes.Buffer
	require.NoError(t, ir.Write(&buf, mod))
	text := buf.String()
	assert.Contains(t, text, `module "test.c";`)
	assert.Contains(t, text, "record Point begin")
	assert.Contains(t, text, "static var counter : int.32 begin")
	assert.Contains(t, text, "proc add(a:int.32, b:int.32): int.32 begin")
	assert.Contains(t, text, "add.32 t0, a, b;")
	assert.Contains(t, text, "retv.32 t0;")
	assert.Contains(t, text, "extern proc puts(s:ptr.16): int.16;")
}

func TestParseCallInstruction(t *testing.T) {
	in := &ir.Instruction{Op: ir.OpCall, Dest: ir.VarRef("r"), Src1: ir.VarRef("f"), Src2: ir.List(ir.VarRef("a"), ir.VarRef("b"))}
	body := &ir.ProcDecl{
		Name: "main",
		Body: &ir.Block{Entries: []*ir.Entry{{Instr: in}}},
	}
	mod := &ir.Module{SourceFile: "t.c", Decls: []ir.Decl{body}}
	var buf bytes.Buffer
	require.NoError(t, ir.Write(&buf, mod))
	assert.Contains(t, buf.String(), "call r, f, (a, b);")

	got, err := ir.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	proc := got.Decls[0].(*ir.ProcDecl)
	gotInstr := proc.Body.Entries[0].Instr
	assert.Equal(t, ir.OpCall, gotInstr.Op)
	require.NotNil(t, gotInstr.Dest)
	assert.Equal(t, "r", gotInstr.Dest.Name)
	require.Len(t, gotInstr.Src2.Items, 2)
}

func TestParseVoidCall(t *testing.T) {
	in := &ir.Instruction{Op: ir.OpCall, Src1: ir.VarRef("f"), Src2: ir.List()}
	proc := &ir.ProcDecl{Name: "main", Body: &ir.Block{Entries: []*ir.Entry{{Instr: in}}}}
	mod := &ir.Module{SourceFile: "t.c", Decls: []ir.Decl{proc}}
	var buf bytes.Buffer
	require.NoError(t, ir.Write(&buf, mod))

	got, err := ir.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	gotProc := got.Decls[0].(*ir.ProcDecl)
	gotInstr := gotProc.Body.Entries[0].Instr
	assert.Nil(t, gotInstr.Dest)
	assert.Equal(t, "f", gotInstr.Src1.Name)
}

func TestArrayAndPointerTypeText(t *testing.T) {
	typ := ir.ArrayType(4, ir.PtrType(ir.W16))
	d := &ir.VarDecl{Name: "table", Type: typ}
	mod := &ir.Module{SourceFile: "t.c", Decls: []ir.Decl{d}}
	var buf bytes.Buffer
	require.NoError(t, ir.Write(&buf, mod))
	assert.Contains(t, buf.String(), "var table : [4] ptr.16;")

	got, err := ir.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	gotDecl := got.Decls[0].(*ir.VarDecl)
	assert.Equal(t, ir.TypeArray, gotDecl.Type.Kind)
	assert.Equal(t, 4, gotDecl.Type.Count)
	assert.Equal(t, ir.TypePtr, gotDecl.Type.Elem.Kind)
}
