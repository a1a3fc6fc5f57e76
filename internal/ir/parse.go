package ir

import (
	"fmt"
	"io"
	"strconv"
)

// Parse reads the textual IR format produced by Write back into a
// Module. The grammar is recursive-descent over the flat token stream
// irLex produces; each declaration kind and each opcode's fixed
// operand shape mirrors the corresponding branch in dump.go exactly,
// so Write and Parse stay in lockstep by construction.
func Parse(r io.Reader) (*Module, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &irParser{toks: irLex(string(data))}
	return p.parseModule()
}

type irParser struct {
	toks []irTok
	pos  int
}

func (p *irParser) cur() irTok { return p.toks[p.pos] }

func (p *irParser) peek(n int) irTok {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *irParser) advance() irTok {
	t := p.toks[p.pos]
	if t.kind != irEOF {
		p.pos++
	}
	return t
}

func (p *irParser) atIdentText(s string) bool {
	t := p.cur()
	return t.kind == irIdent && t.text == s
}

func (p *irParser) atPunct(s string) bool {
	t := p.cur()
	return t.kind == irPunct && t.text == s
}

func (p *irParser) expectPunct(s string) error {
	if p.atPunct(s) {
		p.advance()
		return nil
	}
	return fmt.Errorf("expected %q, found %q", s, p.cur().text)
}

func (p *irParser) expectIdentText(s string) error {
	if p.atIdentText(s) {
		p.advance()
		return nil
	}
	return fmt.Errorf("expected %q, found %q", s, p.cur().text)
}

func (p *irParser) expectIdent() (string, error) {
	t := p.cur()
	if t.kind != irIdent {
		return "", fmt.Errorf("expected identifier, found %q", t.text)
	}
	p.advance()
	return t.text, nil
}

func (p *irParser) expectString() (string, error) {
	t := p.cur()
	if t.kind != irString {
		return "", fmt.Errorf("expected string literal, found %q", t.text)
	}
	p.advance()
	return t.text, nil
}

func (p *irParser) expectNumber() (int64, error) {
	t := p.cur()
	if t.kind != irNumber {
		return 0, fmt.Errorf("expected number, found %q", t.text)
	}
	p.advance()
	return strconv.ParseInt(t.text, 0, 64)
}

func (p *irParser) parseModule() (*Module, error) {
	if err := p.expectIdentText("module"); err != nil {
		return nil, err
	}
	name, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	mod := &Module{SourceFile: name}
	for p.cur().kind != irEOF {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		mod.Decls = append(mod.Decls, d)
	}
	return mod, nil
}

func (p *irParser) parseDecl() (Decl, error) {
	linkage := LinkDefault
	switch {
	case p.atIdentText("static"):
		linkage = LinkStatic
		p.advance()
	case p.atIdentText("extern"):
		linkage = LinkExtern
		p.advance()
	}
	variadic, callsign := false, false
	for {
		switch {
		case p.atIdentText("variadic"):
			variadic = true
			p.advance()
			continue
		case p.atIdentText("callsign"):
			callsign = true
			p.advance()
			continue
		}
		break
	}
	switch {
	case p.atIdentText("record"):
		return p.parseRecord()
	case p.atIdentText("var"):
		return p.parseVar(linkage)
	case p.atIdentText("proc"):
		return p.parseProc(linkage, variadic, callsign)
	}
	return nil, fmt.Errorf("expected record/var/proc declaration, found %q", p.cur().text)
}

func (p *irParser) parseRecord() (*RecordDecl, error) {
	p.advance() // record
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectIdentText("begin"); err != nil {
		return nil, err
	}
	d := &RecordDecl{Name: name}
	for !p.atIdentText("end") && p.cur().kind != irEOF {
		fname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		d.Fields = append(d.Fields, &RecordField{Name: fname, Type: typ})
	}
	p.advance() // end
	return d, p.expectPunct(";")
}

func (p *irParser) parseVar(linkage Linkage) (*VarDecl, error) {
	p.advance() // var
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	d := &VarDecl{Name: name, Type: typ, Linkage: linkage}
	if p.atPunct(";") {
		p.advance()
		return d, nil
	}
	if err := p.expectIdentText("begin"); err != nil {
		return nil, err
	}
	entries, err := p.parseEntries()
	if err != nil {
		return nil, err
	}
	if err := p.expectIdentText("end"); err != nil {
		return nil, err
	}
	d.Init = &Block{Entries: entries}
	return d, p.expectPunct(";")
}

func (p *irParser) parseProc(linkage Linkage, variadic, callsign bool) (*ProcDecl, error) {
	p.advance() // proc
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	d := &ProcDecl{Name: name, Linkage: linkage, Variadic: variadic, CallsignOnly: callsign}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	for !p.atPunct(")") {
		aname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		atyp, err := p.parseType()
		if err != nil {
			return nil, err
		}
		d.Args = append(d.Args, &Arg{Name: aname, Type: atyp})
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if p.atPunct(":") {
		p.advance()
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		d.Ret = ret
	}
	if p.atPunct(";") {
		p.advance()
		return d, nil
	}
	if err := p.expectIdentText("begin"); err != nil {
		return nil, err
	}
	if p.atIdentText("locals") {
		p.advance()
		if err := p.expectIdentText("begin"); err != nil {
			return nil, err
		}
		for !p.atIdentText("end") && p.cur().kind != irEOF {
			lname, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(":"); err != nil {
				return nil, err
			}
			ltyp, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(";"); err != nil {
				return nil, err
			}
			d.Locals = append(d.Locals, &Local{Name: lname, Type: ltyp})
		}
		p.advance() // end
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
	}
	entries, err := p.parseEntries()
	if err != nil {
		return nil, err
	}
	if err := p.expectIdentText("end"); err != nil {
		return nil, err
	}
	d.Body = &Block{Entries: entries}
	return d, p.expectPunct(";")
}

func (p *irParser) parseEntries() ([]*Entry, error) {
	var entries []*Entry
	for !p.atIdentText("end") && p.cur().kind != irEOF {
		if p.cur().kind == irIdent && p.peek(1).kind == irPunct && p.peek(1).text == ":" {
			label := p.advance().text
			p.advance() // ':'
			entries = append(entries, &Entry{Label: label})
			continue
		}
		instr, err := p.parseInstruction()
		if err != nil {
			return nil, err
		}
		entries = append(entries, &Entry{Instr: instr})
	}
	return entries, nil
}

func (p *irParser) parseType() (*TypeExpr, error) {
	switch {
	case p.atIdentText("int"):
		p.advance()
		w, err := p.parseWidth()
		return IntType(w), err
	case p.atIdentText("ptr"):
		p.advance()
		w, err := p.parseWidth()
		return PtrType(w), err
	case p.atIdentText("va_list"):
		p.advance()
		return VaListType, nil
	case p.atPunct("["):
		p.advance()
		count, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return ArrayType(int(count), elem), nil
	default:
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return NamedType(name), nil
	}
}

func (p *irParser) parseWidth() (Width, error) {
	if err := p.expectPunct("."); err != nil {
		return 0, err
	}
	n, err := p.expectNumber()
	return Width(n), err
}

func (p *irParser) parseOperand() (*Operand, error) {
	switch {
	case p.atPunct("#"):
		p.advance()
		n, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		if p.atPunct("+") {
			p.advance()
			sym, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			return ImmSym(n, sym), nil
		}
		return Imm(n), nil
	case p.atPunct("("):
		p.advance()
		var items []*Operand
		for !p.atPunct(")") {
			item, err := p.parseOperand()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if p.atPunct(",") {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return List(items...), nil
	default:
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return VarRef(name), nil
	}
}

// parseInstruction parses one mnemonic, its optional width suffix, and
// its opcode-specific operand list, mirroring instrText's switch.
func (p *irParser) parseInstruction() (*Instruction, error) {
	mnemText, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var width Width
	if p.atPunct(".") {
		w, err := p.parseWidth()
		if err != nil {
			return nil, err
		}
		width = w
	}
	op, ok := ParseOp(mnemText)
	if !ok {
		return nil, fmt.Errorf("unknown opcode %q", mnemText)
	}
	in := &Instruction{Op: op, Width: width}

	operand := func() (*Operand, error) { return p.parseOperand() }
	ident := func() (string, error) { return p.expectIdent() }
	comma := func() error { return p.expectPunct(",") }

	switch op {
	case OpRet, OpNop:
	case OpRetv, OpVaEnd:
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
	case OpJmp:
		if in.Target, err = ident(); err != nil {
			return nil, err
		}
	case OpJz, OpJnz:
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Target, err = ident(); err != nil {
			return nil, err
		}
	case OpImm, OpVarPtr, OpLVarPtr, OpBNot, OpNeg, OpCopy, OpSgnExt, OpZrExt, OpTrunc, OpRead:
		if in.Dest, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
	case OpWrite:
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src2, err = operand(); err != nil {
			return nil, err
		}
	case OpRecMbr:
		if in.Dest, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src2, err = operand(); err != nil {
			return nil, err
		}
		if p.atPunct(",") {
			p.advance()
			if in.Type, err = p.parseType(); err != nil {
				return nil, err
			}
		}
	case OpRecCopy:
		if in.Dest, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
		if p.atPunct(",") {
			p.advance()
			if in.Type, err = p.parseType(); err != nil {
				return nil, err
			}
		}
	case OpPtrIdx, OpPtrDiff:
		if in.Dest, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src2, err = operand(); err != nil {
			return nil, err
		}
		if p.atPunct(",") {
			p.advance()
			if in.Type, err = p.parseType(); err != nil {
				return nil, err
			}
		}
	case OpCall, OpCalli:
		first, err := operand()
		if err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		second, err := operand()
		if err != nil {
			return nil, err
		}
		if p.atPunct(",") {
			// three operands means the first was actually the (optional)
			// destination.
			p.advance()
			third, err := operand()
			if err != nil {
				return nil, err
			}
			in.Dest, in.Src1, in.Src2 = first, second, third
		} else {
			in.Src1, in.Src2 = first, second
		}
	case OpVaStart:
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src2, err = operand(); err != nil {
			return nil, err
		}
	case OpVaCopy:
		if in.Dest, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
	case OpVaArg:
		if in.Dest, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Type, err = p.parseType(); err != nil {
			return nil, err
		}
	default:
		// binary arithmetic/bitwise/comparison
		if in.Dest, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src1, err = operand(); err != nil {
			return nil, err
		}
		if err = comma(); err != nil {
			return nil, err
		}
		if in.Src2, err = operand(); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return in, nil
}
