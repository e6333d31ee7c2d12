package vmbackend

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Magic is the EBC file header's first four bytes ("u32
// magic = 0x45534243", the ASCII bytes "ESBC").
const Magic uint32 = 0x45534243

// Version is the only EBC format version this backend emits or reads.
const Version uint16 = 1

// Write serializes chunk's EBC file format: magic,
// version, code length + bytes, one i32 line number per code byte,
// constant count, then each tagged constant.
func Write(w io.Writer, chunk *Chunk) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.BigEndian, Magic); err != nil {
		return errors.Wrap(err, "vmbackend: write magic")
	}
	if err := binary.Write(bw, binary.BigEndian, Version); err != nil {
		return errors.Wrap(err, "vmbackend: write version")
	}
	if err := binary.Write(bw, binary.BigEndian, uint32(len(chunk.Code))); err != nil {
		return errors.Wrap(err, "vmbackend: write code_count")
	}
	if _, err := bw.Write(chunk.Code); err != nil {
		return errors.Wrap(err, "vmbackend: write code")
	}
	for _, line := range chunk.Lines {
		if err := binary.Write(bw, binary.BigEndian, line); err != nil {
			return errors.Wrap(err, "vmbackend: write line table")
		}
	}
	if err := binary.Write(bw, binary.BigEndian, uint32(len(chunk.Constants))); err != nil {
		return errors.Wrap(err, "vmbackend: write constant_count")
	}
	for i, c := range chunk.Constants {
		if err := writeConstant(bw, c); err != nil {
			return errors.Wrapf(err, "vmbackend: write constant %d", i)
		}
	}
	return bw.Flush()
}

func writeConstant(w io.Writer, c Constant) error {
	if err := binary.Write(w, binary.BigEndian, uint32(c.Tag)); err != nil {
		return err
	}
	switch c.Tag {
	case ConstBool:
		var b uint8
		if c.Bool {
			b = 1
		}
		return binary.Write(w, binary.BigEndian, b)
	case ConstNull:
		return nil
	case ConstNumber, ConstObj:
		return binary.Write(w, binary.BigEndian, c.Num)
	case ConstString:
		if len(c.Str) > 0xFFFF {
			return fmt.Errorf("string constant %q exceeds u16 length limit", c.Str)
		}
		if err := binary.Write(w, binary.BigEndian, uint16(len(c.Str))); err != nil {
			return err
		}
		_, err := io.WriteString(w, c.Str)
		return err
	default:
		return fmt.Errorf("unknown constant tag %d", c.Tag)
	}
}

// Read deserializes an EBC Chunk written by Write, the round-trip
// property testable property 10 requires.
func Read(r io.Reader) (*Chunk, error) {
	br := bufio.NewReader(r)

	var magic uint32
	if err := binary.Read(br, binary.BigEndian, &magic); err != nil {
		return nil, errors.Wrap(err, "vmbackend: read magic")
	}
	if magic != Magic {
		return nil, fmt.Errorf("vmbackend: bad magic %#x, want %#x", magic, Magic)
	}
	var version uint16
	if err := binary.Read(br, binary.BigEndian, &version); err != nil {
		return nil, errors.Wrap(err, "vmbackend: read version")
	}
	if version != Version {
		return nil, fmt.Errorf("vmbackend: unsupported EBC version %d", version)
	}

	var codeCount uint32
	if err := binary.Read(br, binary.BigEndian, &codeCount); err != nil {
		return nil, errors.Wrap(err, "vmbackend: read code_count")
	}
	code := make([]byte, codeCount)
	if _, err := io.ReadFull(br, code); err != nil {
		return nil, errors.Wrap(err, "vmbackend: read code")
	}

	lines := make([]int32, codeCount)
	for i := range lines {
		if err := binary.Read(br, binary.BigEndian, &lines[i]); err != nil {
			return nil, errors.Wrap(err, "vmbackend: read line table")
		}
	}

	var constCount uint32
	if err := binary.Read(br, binary.BigEndian, &constCount); err != nil {
		return nil, errors.Wrap(err, "vmbackend: read constant_count")
	}
	constants := make([]Constant, constCount)
	for i := range constants {
		c, err := readConstant(br)
		if err != nil {
			return nil, errors.Wrapf(err, "vmbackend: read constant %d", i)
		}
		constants[i] = c
	}

	return &Chunk{Code: code, Lines: lines, Constants: constants}, nil
}

func readConstant(r io.Reader) (Constant, error) {
	var tag uint32
	if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
		return Constant{}, err
	}
	switch ConstTag(tag) {
	case ConstBool:
		var b uint8
		if err := binary.Read(r, binary.BigEndian, &b); err != nil {
			return Constant{}, err
		}
		return Constant{Tag: ConstBool, Bool: b != 0}, nil
	case ConstNull:
		return Constant{Tag: ConstNull}, nil
	case ConstNumber:
		var v float64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return Constant{}, err
		}
		return Constant{Tag: ConstNumber, Num: v}, nil
	case ConstObj:
		var v float64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return Constant{}, err
		}
		return Constant{Tag: ConstObj, Num: v}, nil
	case ConstString:
		var n uint16
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return Constant{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Constant{}, err
		}
		return Constant{Tag: ConstString, Str: string(buf)}, nil
	default:
		return Constant{}, fmt.Errorf("unknown constant tag %d", tag)
	}
}
