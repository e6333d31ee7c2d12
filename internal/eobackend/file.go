package eobackend

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Magic is the EO object file's header magic ("EOBJ").
const Magic uint32 = 0x454F424A

// Write serializes o's EO object format: a fixed
// header (magic, text and rodata byte lengths, symbol and relocation
// counts, entry offset), then the four section payloads. Symbol names are stored inline in
// the symbol table as a u16-length-prefixed string rather than through
// a separate string table — simpler than ELF's approach and
// sufficient since EO has no need to share name storage across tools.
func Write(w io.Writer, o *Object) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, Magic); err != nil {
		return errors.Wrap(err, "eobackend: write magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(o.Text))); err != nil {
		return errors.Wrap(err, "eobackend: write text size")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(o.Rodata))); err != nil {
		return errors.Wrap(err, "eobackend: write rodata size")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(o.Symbols))); err != nil {
		return errors.Wrap(err, "eobackend: write symbol count")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(o.Relocations))); err != nil {
		return errors.Wrap(err, "eobackend: write relocation count")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(o.EntryOffset)); err != nil {
		return errors.Wrap(err, "eobackend: write entry offset")
	}

	if _, err := bw.Write(o.Text); err != nil {
		return errors.Wrap(err, "eobackend: write text section")
	}
	if _, err := bw.Write(o.Rodata); err != nil {
		return errors.Wrap(err, "eobackend: write rodata section")
	}
	for i, s := range o.Symbols {
		if err := writeSymbol(bw, s); err != nil {
			return errors.Wrapf(err, "eobackend: write symbol %d", i)
		}
	}
	for i, r := range o.Relocations {
		if err := writeReloc(bw, r); err != nil {
			return errors.Wrapf(err, "eobackend: write relocation %d", i)
		}
	}
	return bw.Flush()
}

func writeSymbol(w io.Writer, s Symbol) error {
	if len(s.Name) > 0xFFFF {
		return errors.Errorf("symbol name %q exceeds u16 length limit", s.Name)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s.Name))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s.Name); err != nil {
		return err
	}
	fields := []interface{}{
		uint8(s.Type), uint8(s.Bind), uint8(s.Section), boolByte(s.Defined), uint32(s.Value),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func writeReloc(w io.Writer, r Relocation) error {
	fields := []interface{}{
		uint8(r.Section), uint32(r.Offset), uint32(r.SymbolIndex), uint8(r.Kind), r.Addend,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Read deserializes an Object written by Write.
func Read(r io.Reader) (*Object, error) {
	br := bufio.NewReader(r)

	var magic, textLen, rodataLen, symCount, relocCount, entry uint32
	for _, v := range []*uint32{&magic, &textLen, &rodataLen, &symCount, &relocCount, &entry} {
		if err := binary.Read(br, binary.LittleEndian, v); err != nil {
			return nil, errors.Wrap(err, "eobackend: read header")
		}
	}
	if magic != Magic {
		return nil, errors.Errorf("eobackend: bad magic %#x, want %#x", magic, Magic)
	}

	o := NewObject()
	o.EntryOffset = int(entry)

	o.Text = make([]byte, textLen)
	if _, err := io.ReadFull(br, o.Text); err != nil {
		return nil, errors.Wrap(err, "eobackend: read text section")
	}
	o.Rodata = make([]byte, rodataLen)
	if _, err := io.ReadFull(br, o.Rodata); err != nil {
		return nil, errors.Wrap(err, "eobackend: read rodata section")
	}

	o.Symbols = make([]Symbol, symCount)
	for i := range o.Symbols {
		s, err := readSymbol(br)
		if err != nil {
			return nil, errors.Wrapf(err, "eobackend: read symbol %d", i)
		}
		o.Symbols[i] = s
		o.symbolIndex[s.Name] = i
	}

	o.Relocations = make([]Relocation, relocCount)
	for i := range o.Relocations {
		rel, err := readReloc(br)
		if err != nil {
			return nil, errors.Wrapf(err, "eobackend: read relocation %d", i)
		}
		o.Relocations[i] = rel
	}

	return o, nil
}

func readSymbol(r io.Reader) (Symbol, error) {
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return Symbol{}, err
	}
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return Symbol{}, err
	}
	var typ, bind, section, defined uint8
	var value uint32
	for _, v := range []interface{}{&typ, &bind, &section, &defined, &value} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return Symbol{}, err
		}
	}
	return Symbol{
		Name:    string(nameBuf),
		Type:    SymType(typ),
		Bind:    SymBind(bind),
		Section: Section(section),
		Value:   int(value),
		Defined: defined != 0,
	}, nil
}

func readReloc(r io.Reader) (Relocation, error) {
	var section, kind uint8
	var offset, symIdx uint32
	var addend int16
	if err := binary.Read(r, binary.LittleEndian, &section); err != nil {
		return Relocation{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
		return Relocation{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &symIdx); err != nil {
		return Relocation{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return Relocation{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &addend); err != nil {
		return Relocation{}, err
	}
	return Relocation{
		Section: Section(section), Offset: int(offset), SymbolIndex: int(symIdx),
		Kind: RelocKind(kind), Addend: addend,
	}, nil
}
