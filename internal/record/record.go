// Package record implements struct/union layout: an ordered list of
// elements (fields, possibly bit fields) backed by an ordered list of
// storage units, the integer-sized words that actually hold the bits.
package record

import "github.com/gmofishsauce/zcc/internal/cgtype"

// Kind distinguishes struct from union layout.
type Kind int

const (
	Struct Kind = iota
	Union
)

// Element is one named field of a record. Width is nonzero only for
// bit fields; BitOffset is the field's bit position within its
// StorageUnit.
type Element struct {
	Name      string
	Width     int // bit-field width in bits, 0 for a plain field
	BitOffset int // bit position within the storage unit
	Type      *cgtype.Type
	Unit      *StorageUnit
}

// StorageUnit is the underlying integer word backing one or more
// Elements.
type StorageUnit struct {
	IRName string
	Type   *cgtype.Type
	Offset int // byte offset of this unit within the record
}

// Def is a record (struct or union) definition. A Def is created once
// per distinct tag and shared by every subsequent reference to that
// tag, so two `struct S *` declarations resolve to the same layout.
type Def struct {
	Kind       Kind
	Tag        string // C source identifier, "" if anonymous
	IRName     string // synthesized stable IR identifier
	Elements   []*Element
	Units      []*StorageUnit
	complete   bool
}

// New creates a forward-declared (incomplete) record definition.
// Forward declarations create a record whose element list is empty and
// is later filled in place once the body is seen.
func New(kind Kind, tag, irName string) *Def {
	return &Def{Kind: kind, Tag: tag, IRName: irName}
}

// RecordName implements cgtype.RecordRef.
func (d *Def) RecordName() string {
	if d.Tag != "" {
		if d.Kind == Union {
			return "union " + d.Tag
		}
		return "struct " + d.Tag
	}
	return d.IRName
}

// RecordIRName implements cgtype.RecordRef.
func (d *Def) RecordIRName() string { return d.IRName }

// RecordSize implements cgtype.RecordRef: the size in bytes of the
// whole record, i.e. one past the last storage unit's end (for a
// struct) or the widest unit (for a union, since every union element
// shares offset 0).
func (d *Def) RecordSize() int {
	if len(d.Units) == 0 {
		return 0
	}
	if d.Kind == Union {
		max := 0
		for _, u := range d.Units {
			if s := u.Type.SizeBytes(); s > max {
				max = s
			}
		}
		return max
	}
	last := d.Units[len(d.Units)-1]
	return last.Offset + last.Type.SizeBytes()
}

// IsComplete reports whether the record's element list has been filled
// in (false for a bare forward declaration).
func (d *Def) IsComplete() bool { return d.complete }

// Builder lays out elements as they are declared, in source order.
type Builder struct {
	def       *Def
	curUnit   *StorageUnit
	curBits   int // bits consumed in curUnit so far
	nextIRSeq int
}

// NewBuilder starts laying out def from scratch.
func NewBuilder(def *Def) *Builder {
	def.Elements = nil
	def.Units = nil
	return &Builder{def: def}
}

// AddField appends a plain (non-bit-field) element. It always opens a
// new storage unit sized to the element's own type.
func (b *Builder) AddField(name string, typ *cgtype.Type) {
	unit := b.newUnit(typ)
	el := &Element{Name: name, Type: typ, Unit: unit}
	b.def.Elements = append(b.def.Elements, el)
	b.curUnit = nil
	b.curBits = 0
}

// AddBitField appends a bit-field element of the given width, backed by
// underlying (the integer type named in the declaration, e.g. `int` in
// `int x:3;`). It joins the currently open storage unit if the field
// fits; otherwise it opens a new one.
func (b *Builder) AddBitField(name string, width int, underlying *cgtype.Type) {
	unitBits := underlying.BitWidth()
	if b.curUnit == nil || b.def.Kind == Union || b.curBits+width > unitBits || !b.curUnit.Type.Equal(underlying) {
		b.curUnit = b.newUnit(underlying)
		b.curBits = 0
	}
	el := &Element{
		Name:      name,
		Width:     width,
		BitOffset: b.curBits,
		Type:      underlying,
		Unit:      b.curUnit,
	}
	b.def.Elements = append(b.def.Elements, el)
	b.curBits += width
}

func (b *Builder) newUnit(typ *cgtype.Type) *StorageUnit {
	offset := 0
	if b.def.Kind == Struct {
		if n := len(b.def.Units); n > 0 {
			last := b.def.Units[n-1]
			offset = last.Offset + last.Type.SizeBytes()
		}
	}
	u := &StorageUnit{
		IRName: irUnitName(b.def, len(b.def.Units)),
		Type:   typ,
		Offset: offset,
	}
	b.def.Units = append(b.def.Units, u)
	return u
}

func irUnitName(d *Def, idx int) string {
	base := d.IRName
	if base == "" {
		base = d.Tag
	}
	return base + "$u" + itoa(idx)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Finish marks layout complete. After Finish, every element is backed
// by storage covering its full declared width, and offsets within a
// struct's storage units are non-overlapping by construction of
// AddField/AddBitField above.
func (b *Builder) Finish() *Def {
	b.def.complete = true
	return b.def
}

// FieldByName looks up a direct (non-indirect) member by name, used by
// sema when lowering `.member` expressions.
func (d *Def) FieldByName(name string) *Element {
	for _, el := range d.Elements {
		if el.Name == name {
			return el
		}
	}
	return nil
}
