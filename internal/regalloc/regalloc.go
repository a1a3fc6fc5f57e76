// Package regalloc assigns Z80-IC virtual registers to physical Z80
// registers, spilling to the stack frame when the physical file is
// exhausted and supporting pre-colouring for instructions (like the
// 16-bit shift/rotate idioms and indexed addressing) that require one
// specific physical register or pair.
package regalloc

import "github.com/gmofishsauce/zcc/internal/z80ic"

// byteOrder is the byte-register allocation preference order. A is
// reserved as the ALU's implicit accumulator operand and is never
// handed out to a virtual register; IX is the frame pointer and SP the
// stack pointer, neither ever general-purpose.
var byteOrder = []z80ic.Reg{z80ic.RegD, z80ic.RegE, z80ic.RegH, z80ic.RegL, z80ic.RegB, z80ic.RegC}

// pairOrder is the pair allocation preference order.
var pairOrder = []z80ic.RegPair{z80ic.PairDE, z80ic.PairHL, z80ic.PairBC}

var pairHalves = map[z80ic.RegPair][2]z80ic.Reg{
	z80ic.PairDE: {z80ic.RegD, z80ic.RegE},
	z80ic.PairHL: {z80ic.RegH, z80ic.RegL},
	z80ic.PairBC: {z80ic.RegB, z80ic.RegC},
}

// spillVictimByte and spillVictimPair are the fixed registers chosen
// to evict when the allocator must spill: a single predictable victim
// keeps spill decisions deterministic across runs, the property §8's
// testable properties require of every pipeline stage.
const spillVictimByte = z80ic.RegL

var spillVictimPair = z80ic.PairHL

// Allocator tracks the live physical-register assignment for one
// procedure body's virtual registers, identified by the string form
// of their z80ic.VReg/VRegPair (so a VReg and the VRegPair it's a half
// of never collide as map keys by accident).
type Allocator struct {
	virtByte   map[string]z80ic.Reg
	virtPair   map[string]z80ic.RegPair
	byteInUse  map[z80ic.Reg]bool
	spillSlot  map[string]int
	nextSpill  int
	frameSize  int
}

// New creates an allocator whose spill slots begin above frameSize
// bytes of already-committed local storage.
func New(frameSize int) *Allocator {
	return &Allocator{
		virtByte:  map[string]z80ic.Reg{},
		virtPair:  map[string]z80ic.RegPair{},
		byteInUse: map[z80ic.Reg]bool{},
		spillSlot: map[string]int{},
		nextSpill: frameSize,
		frameSize: frameSize,
	}
}

func keyOfByte(v z80ic.VReg) string  { return v.String() }
func keyOfPair(v z80ic.VRegPair) string { return v.String() }

// AllocateByte returns key's physical register, assigning one from
// byteOrder (spilling the fixed victim if the pool is exhausted) if
// key has none yet.
func (a *Allocator) AllocateByte(key string) z80ic.Reg {
	if r, ok := a.virtByte[key]; ok {
		return r
	}
	for _, r := range byteOrder {
		if !a.byteInUse[r] {
			a.byteInUse[r] = true
			a.virtByte[key] = r
			return r
		}
	}
	return a.spillAndAllocateByte(key)
}

func (a *Allocator) spillAndAllocateByte(key string) z80ic.Reg {
	for victimKey, r := range a.virtByte {
		if r == spillVictimByte {
			delete(a.virtByte, victimKey)
			if _, spilled := a.spillSlot[victimKey]; !spilled {
				a.spillSlot[victimKey] = a.nextSpill
				a.nextSpill++
			}
			break
		}
	}
	a.virtByte[key] = spillVictimByte
	a.byteInUse[spillVictimByte] = true
	return spillVictimByte
}

// AllocatePair returns key's physical pair, assigning one from
// pairOrder (spilling the fixed victim pair if exhausted).
func (a *Allocator) AllocatePair(key string) z80ic.RegPair {
	if p, ok := a.virtPair[key]; ok {
		return p
	}
	for _, p := range pairOrder {
		halves := pairHalves[p]
		if !a.byteInUse[halves[0]] && !a.byteInUse[halves[1]] {
			a.byteInUse[halves[0]] = true
			a.byteInUse[halves[1]] = true
			a.virtPair[key] = p
			return p
		}
	}
	return a.spillAndAllocatePair(key)
}

func (a *Allocator) spillAndAllocatePair(key string) z80ic.RegPair {
	for victimKey, p := range a.virtPair {
		if p == spillVictimPair {
			delete(a.virtPair, victimKey)
			if _, spilled := a.spillSlot[victimKey]; !spilled {
				a.spillSlot[victimKey] = a.nextSpill
				a.nextSpill += 2
			}
			break
		}
	}
	halves := pairHalves[spillVictimPair]
	a.byteInUse[halves[0]] = true
	a.byteInUse[halves[1]] = true
	a.virtPair[key] = spillVictimPair
	return spillVictimPair
}

// AllocateSpecificByte pre-colours key to phys, evicting whatever
// virtual currently holds phys (spilling it) and freeing key's
// previous register if it had one. Used by instruction-selector
// patterns that require a literal register, such as the A operand of
// every 8-bit ALU opcode.
func (a *Allocator) AllocateSpecificByte(key string, phys z80ic.Reg) {
	if old, ok := a.virtByte[key]; ok && old == phys {
		return
	}
	a.FreeByte(key)
	for victimKey, r := range a.virtByte {
		if r == phys {
			delete(a.virtByte, victimKey)
			if _, spilled := a.spillSlot[victimKey]; !spilled {
				a.spillSlot[victimKey] = a.nextSpill
				a.nextSpill++
			}
		}
	}
	a.byteInUse[phys] = true
	a.virtByte[key] = phys
}

// AllocateSpecificPair is AllocateSpecificByte's pair analogue, used
// where a value must sit in one particular pair, such as an incoming
// argument argloc placed in HL, DE or BC.
func (a *Allocator) AllocateSpecificPair(key string, phys z80ic.RegPair) {
	if old, ok := a.virtPair[key]; ok && old == phys {
		return
	}
	a.FreePair(key)
	for victimKey, p := range a.virtPair {
		if p == phys {
			delete(a.virtPair, victimKey)
			if _, spilled := a.spillSlot[victimKey]; !spilled {
				a.spillSlot[victimKey] = a.nextSpill
				a.nextSpill += 2
			}
		}
	}
	halves := pairHalves[phys]
	a.byteInUse[halves[0]] = true
	a.byteInUse[halves[1]] = true
	a.virtPair[key] = phys
}

// FreeByte releases key's register back to the pool, a no-op if key
// never held one.
func (a *Allocator) FreeByte(key string) {
	if r, ok := a.virtByte[key]; ok {
		a.byteInUse[r] = false
		delete(a.virtByte, key)
	}
}

// FreePair releases key's pair back to the pool.
func (a *Allocator) FreePair(key string) {
	if p, ok := a.virtPair[key]; ok {
		halves := pairHalves[p]
		a.byteInUse[halves[0]] = false
		a.byteInUse[halves[1]] = false
		delete(a.virtPair, key)
	}
}

// GetByte returns key's physical register and whether it currently
// has one (false if spilled or never allocated).
func (a *Allocator) GetByte(key string) (z80ic.Reg, bool) {
	r, ok := a.virtByte[key]
	return r, ok
}

// GetPair is GetByte's pair analogue.
func (a *Allocator) GetPair(key string) (z80ic.RegPair, bool) {
	p, ok := a.virtPair[key]
	return p, ok
}

// IsSpilled reports whether key currently lives in a stack spill slot
// rather than a register.
func (a *Allocator) IsSpilled(key string) bool {
	_, ok := a.spillSlot[key]
	return ok
}

// SpillSlot returns key's spill slot offset (valid only if IsSpilled).
func (a *Allocator) SpillSlot(key string) int { return a.spillSlot[key] }

// InUseBytes returns the physical byte registers currently occupied,
// the set a call-site pattern must save across a call if it holds a
// live value the callee isn't obliged to preserve.
func (a *Allocator) InUseBytes() []z80ic.Reg {
	var out []z80ic.Reg
	for _, r := range byteOrder {
		if a.byteInUse[r] {
			out = append(out, r)
		}
	}
	return out
}

// TotalFrameSize returns the stack frame size including every spill
// slot allocated so far, the value a procedure's prologue reserves.
func (a *Allocator) TotalFrameSize() int { return a.nextSpill }
