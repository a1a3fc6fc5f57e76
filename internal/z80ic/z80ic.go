// Package z80ic is the backend's own intermediate representation: a
// module of declarations whose instructions mirror real Z80 opcodes
// (Tier A, over physical registers) or virtual-register pseudo forms
// of the same opcodes (Tier B), the shape instruction selection
// produces before register allocation resolves every Tier B form away.
package z80ic

import "fmt"

// Reg is a physical 8-bit Z80 register.
type Reg int

const (
	RegA Reg = iota
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
)

var regNames = [...]string{"A", "B", "C", "D", "E", "H", "L"}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "?"
}

// RegPair is a physical 16-bit register pair, or a pseudo-pair (AF)
// used only by push/pop and ex af,af'.
type RegPair int

const (
	PairBC RegPair = iota
	PairDE
	PairHL
	PairSP
	PairAF
	PairIX
	PairIY
)

var pairNames = [...]string{"BC", "DE", "HL", "SP", "AF", "IX", "IY"}

func (p RegPair) String() string {
	if int(p) < len(pairNames) {
		return pairNames[p]
	}
	return "?"
}

// Cond is a Z80 condition code, used by conditional jump/call/return.
type Cond int

const (
	CondNZ Cond = iota
	CondZ
	CondNC
	CondC
	CondPO
	CondPE
	CondP
	CondM
	CondNone // unconditional; Instruction.Cond is CondNone for non-Cc opcodes
)

var condNames = [...]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M", ""}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "?"
}

// Part tags which half of a virtual register pair a virtual register
// plays, or that it stands alone (an 8-bit value never paired).
type Part int

const (
	PartWhole Part = iota
	PartLow
	PartHigh
)

// VReg is one virtual 8-bit register: a monotonically numbered cell,
// optionally a named half of a VRegPair.
type VReg struct {
	Num  int
	Part Part
}

func (v VReg) String() string {
	switch v.Part {
	case PartLow:
		return fmt.Sprintf("vr%d.lo", v.Num)
	case PartHigh:
		return fmt.Sprintf("vr%d.hi", v.Num)
	default:
		return fmt.Sprintf("vr%d", v.Num)
	}
}

// VRegPair names a virtual 16-bit register pair by the pair's own
// number; Lo/Hi give the two VRegs that make it up. Pair numbers and
// lone VReg numbers are drawn from independent counters (a selector
// never confuses a pair's number with a standalone byte's).
type VRegPair struct{ Num int }

func (p VRegPair) Lo() VReg { return VReg{Num: p.Num, Part: PartLow} }
func (p VRegPair) Hi() VReg { return VReg{Num: p.Num, Part: PartHigh} }
func (p VRegPair) String() string { return fmt.Sprintf("vrr%d", p.Num) }

// OperandKind is the closed set of operand shapes a Z80-IC instruction
// reads or writes.
type OperandKind int

const (
	OperandReg OperandKind = iota
	OperandRegPair
	OperandVReg
	OperandVRegPair
	OperandImm            // immediate, optionally symbol-relative: "value+Sym"
	OperandIndirectPair   // (HL), (BC), (DE), (SP)
	OperandIndirectIdx    // (IX+d), (IY+d)
	OperandIndirectVRPair // (virtual pair) -- pre-allocation pointer dereference
	OperandIndirectNN     // (nn) / (symbol) direct memory
	OperandCond
)

// Operand is one value a Z80-IC instruction reads, writes, or jumps
// to. Only the fields relevant to Kind are meaningful.
type Operand struct {
	Kind     OperandKind
	Reg      Reg
	RegPair  RegPair
	VReg     VReg
	VRegPair VRegPair
	Imm      int64
	Sym      string
	Disp     int8 // displacement for (IX+d)/(IY+d)
	Cond     Cond
}

func RegOp(r Reg) *Operand           { return &Operand{Kind: OperandReg, Reg: r} }
func RegPairOp(p RegPair) *Operand   { return &Operand{Kind: OperandRegPair, RegPair: p} }
func VRegOp(v VReg) *Operand         { return &Operand{Kind: OperandVReg, VReg: v} }
func VRegPairOp(p VRegPair) *Operand { return &Operand{Kind: OperandVRegPair, VRegPair: p} }
func ImmOp(v int64) *Operand         { return &Operand{Kind: OperandImm, Imm: v} }
func ImmSymOp(v int64, sym string) *Operand {
	return &Operand{Kind: OperandImm, Imm: v, Sym: sym}
}
func IndirectPairOp(p RegPair) *Operand { return &Operand{Kind: OperandIndirectPair, RegPair: p} }
func IndirectIdxOp(p RegPair, d int8) *Operand {
	return &Operand{Kind: OperandIndirectIdx, RegPair: p, Disp: d}
}
func IndirectVRPairOp(p VRegPair) *Operand {
	return &Operand{Kind: OperandIndirectVRPair, VRegPair: p}
}
func IndirectNNOp(sym string) *Operand { return &Operand{Kind: OperandIndirectNN, Sym: sym} }
func CondOp(c Cond) *Operand           { return &Operand{Kind: OperandCond, Cond: c} }

func (o *Operand) String() string {
	if o == nil {
		return ""
	}
	switch o.Kind {
	case OperandReg:
		return o.Reg.String()
	case OperandRegPair:
		return o.RegPair.String()
	case OperandVReg:
		return o.VReg.String()
	case OperandVRegPair:
		return o.VRegPair.String()
	case OperandImm:
		if o.Sym != "" {
			if o.Imm == 0 {
				return o.Sym
			}
			return fmt.Sprintf("%s+%d", o.Sym, o.Imm)
		}
		return fmt.Sprintf("%d", o.Imm)
	case OperandIndirectPair:
		return "(" + o.RegPair.String() + ")"
	case OperandIndirectIdx:
		if o.Disp >= 0 {
			return fmt.Sprintf("(%s+%d)", o.RegPair, o.Disp)
		}
		return fmt.Sprintf("(%s-%d)", o.RegPair, -int(o.Disp))
	case OperandIndirectVRPair:
		return "(" + o.VRegPair.String() + ")"
	case OperandIndirectNN:
		return "(" + o.Sym + ")"
	case OperandCond:
		return o.Cond.String()
	default:
		return "?"
	}
}

// Op is the closed set of Z80-IC instruction mnemonics: Tier A
// (physical-register opcodes taken directly from the Z80 manual) and
// Tier B (the virtual-register pseudo-forms instruction selection
// emits, mirroring the same operation). Not every documented Z80
// addressing-mode variant gets its own tag; the ones below are the
// representative subset every pattern in the instruction selector
// (§4.4) actually needs, distinguished by operand Kind where more than
// one addressing mode shares an operation (e.g. OpLdRIndirect covers
// both `ld r,(hl)` and `ld r,(ix+d)`, selected by Src1.Kind).
type Op int

const (
	// Tier A: 8-bit load/store
	OpLdRR Op = iota
	OpLdRN
	OpLdRIndirect
	OpLdIndirectR
	OpLdIndirectN
	OpLdANN
	OpLdNNA

	// Tier A: 16-bit load/store
	OpLdDDNN
	OpLdHLIndirectNN
	OpLdIndirectNNHL
	OpLdSPHL
	OpPushQQ
	OpPopQQ
	OpExDEHL
	OpExAFAF
	OpExx

	// Tier A: 8-bit arithmetic/logic
	OpAddAR
	OpAddAN
	OpAdcAR
	OpSubR
	OpSbcAR
	OpAndR
	OpOrR
	OpXorR
	OpCpR
	OpIncR
	OpDecR
	OpCpl
	OpNeg
	OpScf
	OpCcf

	// Tier A: 16-bit arithmetic
	OpIncSS
	OpDecSS
	OpAddHLSS
	OpAdcHLSS
	OpSbcHLSS

	// Tier A: rotate/shift/bit
	OpRlca
	OpRrca
	OpRla
	OpRra
	OpSlaR
	OpSraR
	OpSrlR
	OpRlR
	OpRrR
	OpBitBR
	OpSetBR
	OpResBR

	// Tier A: control flow and misc
	OpJpNN
	OpJpCCNN
	OpJpHL
	OpJrE
	OpJrCCE
	OpDjnzE
	OpCallNN
	OpCallCCNN
	OpRet
	OpRetCC
	OpNop
	OpHalt
	OpDi
	OpEi

	// Tier B: virtual-register pseudo-instructions
	OpLdVrVr
	OpLdVrN
	OpLdVrrNN
	OpAddAVr
	OpAdcAVr
	OpSubVr
	OpSbcAVr
	OpAndVr
	OpOrVr
	OpXorVr
	OpCpVr
	OpIncVrr
	OpDecVrr
	OpAddVrrVrr
	OpSbcVrrVrr
	OpSlaVr
	OpSraVr
	OpSrlVr
	OpRlVr
	OpRrVr
	OpBitBVr
	OpPushVrr
	OpPopVrr
	OpLdVrIndirectVrr
	OpLdIndirectVrrVr
	OpJpVrr

	// Tier B: bridges between physical and virtual
	OpLdRVr
	OpLdVrR
	OpLdR16Vrr
	OpLdVrrR16
)

var opMnemonics = map[Op]string{
	OpLdRR: "ld", OpLdRN: "ld", OpLdRIndirect: "ld", OpLdIndirectR: "ld",
	OpLdIndirectN: "ld", OpLdANN: "ld", OpLdNNA: "ld",
	OpLdDDNN: "ld", OpLdHLIndirectNN: "ld", OpLdIndirectNNHL: "ld",
	OpLdSPHL: "ld", OpPushQQ: "push", OpPopQQ: "pop",
	OpExDEHL: "ex de,hl", OpExAFAF: "ex af,af'", OpExx: "exx",
	OpAddAR: "add", OpAddAN: "add", OpAdcAR: "adc", OpSubR: "sub",
	OpSbcAR: "sbc", OpAndR: "and", OpOrR: "or", OpXorR: "xor", OpCpR: "cp",
	OpIncR: "inc", OpDecR: "dec", OpCpl: "cpl", OpNeg: "neg",
	OpScf: "scf", OpCcf: "ccf",
	OpIncSS: "inc", OpDecSS: "dec", OpAddHLSS: "add", OpAdcHLSS: "adc",
	OpSbcHLSS: "sbc",
	OpRlca: "rlca", OpRrca: "rrca", OpRla: "rla", OpRra: "rra",
	OpSlaR: "sla", OpSraR: "sra", OpSrlR: "srl", OpRlR: "rl", OpRrR: "rr",
	OpBitBR: "bit", OpSetBR: "set", OpResBR: "res",
	OpJpNN: "jp", OpJpCCNN: "jp", OpJpHL: "jp", OpJrE: "jr", OpJrCCE: "jr",
	OpDjnzE: "djnz", OpCallNN: "call", OpCallCCNN: "call",
	OpRet: "ret", OpRetCC: "ret", OpNop: "nop", OpHalt: "halt",
	OpDi: "di", OpEi: "ei",
	OpLdVrVr: "ld", OpLdVrN: "ld", OpLdVrrNN: "ld", OpAddAVr: "add",
	OpAdcAVr: "adc", OpSubVr: "sub", OpSbcAVr: "sbc", OpAndVr: "and",
	OpOrVr: "or", OpXorVr: "xor", OpCpVr: "cp", OpIncVrr: "inc",
	OpDecVrr: "dec", OpAddVrrVrr: "add", OpSbcVrrVrr: "sbc",
	OpSlaVr: "sla", OpSraVr: "sra", OpSrlVr: "srl", OpRlVr: "rl",
	OpRrVr: "rr", OpBitBVr: "bit", OpPushVrr: "push", OpPopVrr: "pop",
	OpLdVrIndirectVrr: "ld", OpLdIndirectVrrVr: "ld", OpJpVrr: "jp",
	OpLdRVr: "ld", OpLdVrR: "ld", OpLdR16Vrr: "ld", OpLdVrrR16: "ld",
}

func (op Op) String() string {
	if m, ok := opMnemonics[op]; ok {
		return m
	}
	return "?"
}

// tierB is the set of pseudo-instructions that must be gone after
// register allocation.
var tierB = map[Op]bool{
	OpLdVrVr: true, OpLdVrN: true, OpLdVrrNN: true, OpAddAVr: true,
	OpAdcAVr: true, OpSubVr: true, OpSbcAVr: true, OpAndVr: true,
	OpOrVr: true, OpXorVr: true, OpCpVr: true, OpIncVrr: true,
	OpDecVrr: true, OpAddVrrVrr: true, OpSbcVrrVrr: true, OpSlaVr: true,
	OpSraVr: true, OpSrlVr: true, OpRlVr: true, OpRrVr: true,
	OpBitBVr: true, OpPushVrr: true, OpPopVrr: true,
	OpLdVrIndirectVrr: true, OpLdIndirectVrrVr: true, OpJpVrr: true,
	OpLdRVr: true, OpLdVrR: true, OpLdR16Vrr: true, OpLdVrrR16: true,
}

// IsTierB reports whether op is a virtual-register pseudo-instruction
// that register allocation must eliminate.
func IsTierB(op Op) bool { return tierB[op] }

// Instruction is one Z80-IC instruction: an opcode plus up to three
// operands (mirroring internal/ir's Dest/Src1/Src2 shape) and an
// optional jump/call target name for the control-flow opcodes.
type Instruction struct {
	Op     Op
	Dst    *Operand
	Src1   *Operand
	Src2   *Operand
	Target string
}

// Entry is one position in a labelled block.
type Entry struct {
	Label string
	Instr *Instruction
}

// Block is an ordered list of entries belonging to a procedure body.
type Block struct {
	Entries []*Entry
}

func (b *Block) Append(e *Entry) { b.Entries = append(b.Entries, e) }

// Decl is implemented by every top-level Z80-IC declaration.
type Decl interface {
	declNode()
	DeclName() string
}

// ExternDecl references a symbol defined elsewhere.
type ExternDecl struct{ Name string }

func (*ExternDecl) declNode()           {}
func (d *ExternDecl) DeclName() string  { return d.Name }

// VarDecl is a global variable's data, already flattened to bytes (a
// record/array's bytes in declaration order) or left nil for a
// zero-initialized (BSS-equivalent) definition.
type VarDecl struct {
	Name string
	Data []byte
}

func (*VarDecl) declNode()          {}
func (d *VarDecl) DeclName() string { return d.Name }

// ProcDecl is a procedure after instruction selection: its local
// variable table (IR local name -> signed stack-frame offset relative
// to IX at entry), the count of virtual registers/pairs the selector
// allocated (consumed by the register allocator to size its live-range
// tables), and the labelled instruction block.
type ProcDecl struct {
	Name       string
	Locals     map[string]int
	FrameSize  int
	UsedVRegs  int
	UsedVPairs int
	Body       *Block
}

func (*ProcDecl) declNode()          {}
func (d *ProcDecl) DeclName() string { return d.Name }

// Module is the Z80-IC root: one translation unit's declarations.
type Module struct {
	SourceFile string
	Decls      []Decl
}
