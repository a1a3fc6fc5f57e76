package selector

import (
	"fmt"

	"github.com/gmofishsauce/zcc/internal/argloc"
	"github.com/gmofishsauce/zcc/internal/ir"
	"github.com/gmofishsauce/zcc/internal/regalloc"
	"github.com/gmofishsauce/zcc/internal/z80ic"
)

// slot is one IR-visible name's home in the current procedure's stack
// frame: a signed offset from IX, its declared type, and its size.
type slot struct {
	offset int
	typ    *ir.TypeExpr
	size   int
}

// builder holds everything one procedure's selection pass threads
// through: the frame layout, a register allocator for the transient
// registers an instruction's expansion borrows and immediately frees,
// the block being built, and label/control bookkeeping.
type builder struct {
	mod       *ir.Module
	proc      *ir.ProcDecl
	alloc     *regalloc.Allocator
	block      *z80ic.Block
	frame      map[string]slot
	labelSeq   int
	epilogue   string
	frameSize  int
	varargBase int
}

func selectProc(mod *ir.Module, n *ir.ProcDecl) (*z80ic.ProcDecl, error) {
	if n.Linkage == ir.LinkExtern && n.Body == nil {
		return &z80ic.ProcDecl{Name: n.Name}, nil
	}

	b := &builder{
		mod:   mod,
		proc:  n,
		frame: map[string]slot{},
		block: &z80ic.Block{},
	}
	b.epilogue = b.newLabel("epilogue")

	offset := 0
	for _, l := range n.Locals {
		sz := sizeOfType(mod, l.Type)
		offset -= sz
		b.frame[l.Name] = slot{offset: offset, typ: l.Type, size: sz}
	}
	for _, a := range n.Args {
		sz := sizeOfType(mod, a.Type)
		offset -= sz
		b.frame[a.Name] = slot{offset: offset, typ: a.Type, size: sz}
	}
	b.frameSize = -offset
	b.alloc = regalloc.New(b.frameSize)

	b.emitPrologue()
	if n.Body != nil {
		for _, e := range n.Body.Entries {
			if e.Label != "" {
				b.block.Append(&z80ic.Entry{Label: e.Label})
			}
			if e.Instr != nil {
				if err := b.lowerInstr(e.Instr); err != nil {
					return nil, err
				}
			}
		}
	}
	b.block.Append(&z80ic.Entry{Label: b.epilogue})
	b.emitEpilogue()

	return &z80ic.ProcDecl{
		Name:      n.Name,
		Locals:    offsetsOf(b.frame),
		FrameSize: b.frameSize,
		Body:      b.block,
	}, nil
}

func offsetsOf(frame map[string]slot) map[string]int {
	out := make(map[string]int, len(frame))
	for k, v := range frame {
		out[k] = v.offset
	}
	return out
}

func (b *builder) newLabel(prefix string) string {
	b.labelSeq++
	return fmt.Sprintf("L_%s_%d", prefix, b.labelSeq)
}

func (b *builder) emit(in *z80ic.Instruction) {
	b.block.Append(&z80ic.Entry{Instr: in})
}

// emitPrologue reserves the frame and copies every incoming argument
// (wherever argloc placed it) into its permanent slot.
func (b *builder) emitPrologue() {
	b.emit(&z80ic.Instruction{Op: z80ic.OpPushQQ, Dst: z80ic.RegPairOp(z80ic.PairIX)})
	b.emit(&z80ic.Instruction{Op: z80ic.OpLdDDNN, Dst: z80ic.RegPairOp(z80ic.PairIX), Src1: z80ic.ImmOp(0)})
	b.emit(&z80ic.Instruction{Op: z80ic.OpAddHLSS, Dst: z80ic.RegPairOp(z80ic.PairIX), Src1: z80ic.RegPairOp(z80ic.PairSP)})
	if b.frameSize > 0 {
		// IY does this arithmetic so that HL, which may carry an incoming
		// argument, is still intact for the copy below.
		b.emit(&z80ic.Instruction{Op: z80ic.OpLdDDNN, Dst: z80ic.RegPairOp(z80ic.PairIY), Src1: z80ic.ImmOp(int64(-b.frameSize))})
		b.emit(&z80ic.Instruction{Op: z80ic.OpAddHLSS, Dst: z80ic.RegPairOp(z80ic.PairIY), Src1: z80ic.RegPairOp(z80ic.PairSP)})
		b.emit(&z80ic.Instruction{Op: z80ic.OpLdSPHL, Dst: z80ic.RegPairOp(z80ic.PairSP), Src1: z80ic.RegPairOp(z80ic.PairIY)})
	}

	sizes := make([]int, len(b.proc.Args))
	for i, a := range b.proc.Args {
		sizes[i] = sizeOfType(b.mod, a.Type)
	}
	// b.proc.Args holds only the named parameters; a variadic tail is
	// read through va_start/va_arg directly off the frame rather than
	// through argloc, so the named count is always the cutoff here
	// regardless of Variadic.
	cutoff := len(sizes)
	locs := argloc.Allocate(sizes, cutoff)
	// Stack-passed arguments sit above the saved IX and return address:
	// two pointer-sized slots (IX itself, then the call's return
	// address) precede the first stack argument.
	stackBase := 4
	stackUsed := 0
	for i, a := range b.proc.Args {
		s := b.frame[a.Name]
		loc := locs[i]
		switch loc.Kind {
		case argloc.KindRegByte:
			// Record the incoming register assignment with the
			// allocator before the copy-to-frame so that a prologue
			// emitting several arguments in sequence never reuses a
			// register argloc has already promised to an earlier one.
			b.alloc.AllocateSpecificByte(a.Name, loc.ByteReg)
			b.emit(&z80ic.Instruction{Op: z80ic.OpLdIndirectR, Dst: b.ixOperand(s.offset), Src1: z80ic.RegOp(loc.ByteReg)})
			b.alloc.FreeByte(a.Name)
		case argloc.KindRegPair:
			// A wide argument (e.g. a 4-byte long) occupies several
			// consecutive pairs; copy each one to its own two-byte slice
			// of the frame slot in turn, claiming and releasing the
			// allocator's bookkeeping one pair at a time so two pairs
			// of the same argument never fight over the same name.
			for idx, pair := range loc.Pairs {
				b.alloc.AllocateSpecificPair(a.Name, pair)
				halves := pairHalvesOf(pair)
				off := s.offset + idx*2
				// halves[1] is the pair's low byte, halves[0] its high
				// byte; off holds the low byte and off+1 the high byte,
				// the same convention loadWordFromSlot/storeWordToSlot use.
				b.emit(&z80ic.Instruction{Op: z80ic.OpLdIndirectR, Dst: b.ixOperand(off), Src1: z80ic.RegOp(halves[1])})
				b.emit(&z80ic.Instruction{Op: z80ic.OpLdIndirectR, Dst: b.ixOperand(off + 1), Src1: z80ic.RegOp(halves[0])})
				b.alloc.FreePair(a.Name)
			}
		case argloc.KindStack:
			for k := 0; k < s.size; k++ {
				b.emit(&z80ic.Instruction{Op: z80ic.OpLdRIndirect, Dst: z80ic.RegOp(z80ic.RegA), Src1: b.stackArgOperand(stackBase + loc.StackOffset + k)})
				b.emit(&z80ic.Instruction{Op: z80ic.OpLdIndirectR, Dst: b.ixOperand(s.offset + k), Src1: z80ic.RegOp(z80ic.RegA)})
			}
			stackUsed += argloc.PaddedSize(s.size)
		}
	}
	// A variadic call's tail arguments are always pushed to the stack by
	// the caller regardless of register availability (argLocateCall
	// forces every index past the named parameter count to the stack),
	// so the vararg area starts right after the named arguments'
	// incoming stack footprint, whether or not any named argument itself
	// arrived in a register.
	b.varargBase = stackBase + stackUsed
}

func pairHalvesOf(p z80ic.RegPair) [2]z80ic.Reg {
	switch p {
	case z80ic.PairHL:
		return [2]z80ic.Reg{z80ic.RegH, z80ic.RegL}
	case z80ic.PairDE:
		return [2]z80ic.Reg{z80ic.RegD, z80ic.RegE}
	case z80ic.PairBC:
		return [2]z80ic.Reg{z80ic.RegB, z80ic.RegC}
	default:
		return [2]z80ic.Reg{z80ic.RegH, z80ic.RegL}
	}
}

func (b *builder) emitEpilogue() {
	b.emit(&z80ic.Instruction{Op: z80ic.OpLdSPHL, Dst: z80ic.RegPairOp(z80ic.PairSP), Src1: z80ic.RegPairOp(z80ic.PairIX)})
	b.emit(&z80ic.Instruction{Op: z80ic.OpPopQQ, Dst: z80ic.RegPairOp(z80ic.PairIX)})
	b.emit(&z80ic.Instruction{Op: z80ic.OpRet})
}

// ixOperand returns the (IX+d) operand for a frame offset, falling
// back to an HL-computed absolute address when the displacement
// overflows the signed 8-bit range the real instruction encodes,
// mirroring the teacher's LdwLarge/StwLarge scratch-register fallback.
func (b *builder) ixOperand(offset int) *z80ic.Operand {
	if offset >= -128 && offset <= 127 {
		return z80ic.IndirectIdxOp(z80ic.PairIX, int8(offset))
	}
	b.emit(&z80ic.Instruction{Op: z80ic.OpPushQQ, Dst: z80ic.RegPairOp(z80ic.PairIX)})
	b.emit(&z80ic.Instruction{Op: z80ic.OpPopQQ, Dst: z80ic.RegPairOp(z80ic.PairHL)})
	b.emit(&z80ic.Instruction{Op: z80ic.OpLdDDNN, Dst: z80ic.RegPairOp(z80ic.PairDE), Src1: z80ic.ImmOp(int64(offset))})
	b.emit(&z80ic.Instruction{Op: z80ic.OpAddHLSS, Dst: z80ic.RegPairOp(z80ic.PairHL), Src1: z80ic.RegPairOp(z80ic.PairDE)})
	return z80ic.IndirectPairOp(z80ic.PairHL)
}

// stackArgOperand is ixOperand specialized for the positive-offset
// region above the saved frame pointer where stack-passed arguments
// live.
func (b *builder) stackArgOperand(offset int) *z80ic.Operand {
	return b.ixOperand(offset)
}

func (b *builder) slotOf(name string) (slot, bool) {
	s, ok := b.frame[name]
	return s, ok
}
