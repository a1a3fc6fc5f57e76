// Package argloc computes where each argument of a procedure call (or
// a procedure's own parameter list) lives on entry: a physical
// register, a register pair, or a stack slot. It is a pure function of
// argument sizes and the variadic cutoff, independent of any
// particular caller's AST or IR shape. The instruction selector's
// prologue (emitPrologue) calls Allocate to find a callee's incoming
// arguments; its call sites lay out outgoing arguments with their own
// argLocateCall, which applies the same rules.
package argloc

import "github.com/gmofishsauce/zcc/internal/z80ic"

// Kind is where one argument's bytes ultimately live.
type Kind int

const (
	KindRegByte Kind = iota // a single 8-bit register
	KindRegPair              // a 16-bit register pair, used whole
	KindStack                // a frame-relative stack slot
)

// Loc is one argument's location. ByteReg/Pairs are meaningful only
// for their matching Kind; StackOffset is always relative to the first
// stack-passed byte (0-based, ascending in argument order) and the
// caller adds whatever fixed displacement its own frame layout needs.
// Pairs holds one entry per register pair the argument occupies, in
// ascending byte-offset order (Pairs[0] holds bytes 0-1, Pairs[1]
// bytes 2-3, and so on), and is empty unless Kind is KindRegPair.
type Loc struct {
	Kind        Kind
	ByteReg     z80ic.Reg
	Pairs       []z80ic.RegPair
	StackOffset int
	Size        int // argument size in bytes, carried through for the caller's convenience
}

// byteOrder is the register pool a 1-byte argument draws from, in
// preference order.
var byteOrder = []z80ic.Reg{z80ic.RegA, z80ic.RegB, z80ic.RegC, z80ic.RegD, z80ic.RegE, z80ic.RegH, z80ic.RegL}

// pairOrder is the register-pair pool a multi-byte argument draws
// from, in preference order. BC/DE/HL only: SP, AF, IX and IY are
// never argument-carrying registers.
var pairOrder = []z80ic.RegPair{z80ic.PairHL, z80ic.PairDE, z80ic.PairBC}

// pairHalves maps each pool pair to the two byte registers whose
// pair-membership pulling one half the other, so taking a byte
// register out of the byte pool also removes it from pair
// availability and vice versa.
var pairHalves = map[z80ic.RegPair][2]z80ic.Reg{
	z80ic.PairHL: {z80ic.RegH, z80ic.RegL},
	z80ic.PairDE: {z80ic.RegD, z80ic.RegE},
	z80ic.PairBC: {z80ic.RegB, z80ic.RegC},
}

// allocator tracks which byte registers have already been consumed by
// an earlier argument in the same call/prologue.
type allocator struct {
	used map[z80ic.Reg]bool
}

func newAllocator() *allocator { return &allocator{used: map[z80ic.Reg]bool{}} }

func (a *allocator) takeByte() (z80ic.Reg, bool) {
	for _, r := range byteOrder {
		if !a.used[r] {
			a.used[r] = true
			return r, true
		}
	}
	return 0, false
}

func (a *allocator) takePair() (z80ic.RegPair, bool) {
	for _, p := range pairOrder {
		halves := pairHalves[p]
		if !a.used[halves[0]] && !a.used[halves[1]] {
			a.used[halves[0]] = true
			a.used[halves[1]] = true
			return p, true
		}
	}
	return 0, false
}

// releasePair undoes a takePair, returning both halves to the pool. It
// is used when a multi-pair argument claims some pairs but then can't
// be fully covered by the ones remaining, so the whole argument has to
// fall back to the stack.
func (a *allocator) releasePair(p z80ic.RegPair) {
	halves := pairHalves[p]
	a.used[halves[0]] = false
	a.used[halves[1]] = false
}

// PaddedSize rounds n up to an even number of bytes. The Z80 has no
// instruction that pushes a single byte, so a stack-passed argument's
// physical footprint is always pushed a register pair at a time; an
// odd-sized argument gets one trailing pad byte so the next argument
// still starts on a pair boundary and every argument's own bytes stay
// contiguous.
func PaddedSize(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// Allocate computes the location of each argument in sizes (byte
// counts, one entry per argument, in declaration order). cutoff is the
// index of the first variadic argument (len(sizes) if the signature
// has no variadic tail); every argument at or past cutoff is forced to
// the stack, since a callee reading a va_list has no way to know ahead
// of time which physical registers the caller chose for it.
//
// A 1-byte argument takes the next free register from
// [A,B,C,D,E,H,L]. A 2-byte-or-wider argument claims whole pairs from
// [HL,DE,BC] two bytes at a time for as long as bytes remain and a
// pair is still free. If that loop runs out of pairs before the
// argument's bytes are exhausted, or a single odd byte is left over,
// the whole argument spills to the stack instead of splitting across
// a register and a stack slot: every pair already claimed for it is
// released first, so a later argument can still use them. Stack
// offsets advance by PaddedSize, matching the pair-at-a-time pushes
// the call site makes.
func Allocate(sizes []int, cutoff int) []Loc {
	a := newAllocator()
	locs := make([]Loc, len(sizes))
	stackOffset := 0
	for i, size := range sizes {
		if cutoff >= 0 && i >= cutoff {
			locs[i] = Loc{Kind: KindStack, StackOffset: stackOffset, Size: size}
			stackOffset += PaddedSize(size)
			continue
		}
		if size == 1 {
			if r, ok := a.takeByte(); ok {
				locs[i] = Loc{Kind: KindRegByte, ByteReg: r, Size: size}
				continue
			}
			locs[i] = Loc{Kind: KindStack, StackOffset: stackOffset, Size: size}
			stackOffset += PaddedSize(size)
			continue
		}

		var pairs []z80ic.RegPair
		remaining := size
		for remaining >= 2 {
			p, ok := a.takePair()
			if !ok {
				break
			}
			pairs = append(pairs, p)
			remaining -= 2
		}
		if remaining == 0 {
			locs[i] = Loc{Kind: KindRegPair, Pairs: pairs, Size: size}
			continue
		}
		for _, p := range pairs {
			a.releasePair(p)
		}
		locs[i] = Loc{Kind: KindStack, StackOffset: stackOffset, Size: size}
		stackOffset += PaddedSize(size)
	}
	return locs
}

// TotalStackBytes returns the number of bytes Allocate pushed to the
// stack across locs, the size a caller reserves above the return
// address (or a callee's prologue reads arguments back from).
func TotalStackBytes(locs []Loc) int {
	total := 0
	for _, l := range locs {
		if l.Kind == KindStack {
			end := l.StackOffset + PaddedSize(l.Size)
			if end > total {
				total = end
			}
		}
	}
	return total
}
