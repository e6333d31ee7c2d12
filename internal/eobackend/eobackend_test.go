package eobackend

import (
	"bytes"
	"testing"

	"escomp/internal/ir"
	"escomp/internal/irbuilder"
)

func buildAdder() *ir.Module {
	b := irbuilder.New()
	fn := b.CreateFunction("main", "int32")
	blk := b.CreateBlock("entry")
	b.SetCurrentBlock(blk)
	sum := b.Add(b.Imm(2), b.Imm(3))
	b.Return(sum)
	b.SetEntry(fn)
	return b.Module
}

func TestLowerDefinesMainSymbolAndEntry(t *testing.T) {
	m := buildAdder()
	o := Lower(m)

	idx, ok := o.symbolIndex["main"]
	if !ok || !o.Symbols[idx].Defined {
		t.Fatalf("expected a defined \"main\" symbol, got %+v", o.Symbols)
	}
	if o.Symbols[idx].Type != SymFunc || o.Symbols[idx].Bind != BindGlobal {
		t.Fatalf("main symbol should be a global function symbol, got %+v", o.Symbols[idx])
	}
	if o.EntryOffset != o.Symbols[idx].Value {
		t.Fatalf("entry offset %d should match main's code offset %d", o.EntryOffset, o.Symbols[idx].Value)
	}
	if len(o.Text) == 0 {
		t.Fatalf("expected non-empty .text")
	}
	// push rbp; mov rbp, rsp opens every function's prologue.
	if o.Text[0] != 0x55 {
		t.Fatalf("expected push rbp as the first text byte, got %#x", o.Text[0])
	}
}

func TestExternalCallGetsUndefinedSymbolAndPC32Reloc(t *testing.T) {
	b := irbuilder.New()
	fn := b.CreateFunction("main", "int32")
	blk := b.CreateBlock("entry")
	b.SetCurrentBlock(blk)
	idx := b.Module.InternString("hi")
	b.Call("Console__WriteLine", []ir.Value{ir.StringConst(idx)}, false)
	b.Return(b.Imm(0))
	b.SetEntry(fn)

	o := Lower(b.Module)

	symIdx, ok := o.symbolIndex["Console__WriteLine"]
	if !ok {
		t.Fatalf("expected an undefined symbol for the external call target")
	}
	if o.Symbols[symIdx].Defined {
		t.Fatalf("Console__WriteLine has no definition in this module and should stay undefined")
	}

	foundReloc := false
	for _, r := range o.Relocations {
		if r.SymbolIndex == symIdx && r.Kind == RelocPC32 && r.Addend == -4 {
			foundReloc = true
		}
	}
	if !foundReloc {
		t.Fatalf("expected a PC32 relocation with addend -4 against the call target, got %+v", o.Relocations)
	}
}

func TestObjectSerializationRoundTrip(t *testing.T) {
	m := buildAdder()
	o := Lower(m)

	var buf bytes.Buffer
	if err := Write(&buf, o); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got.Text, o.Text) {
		t.Fatalf("text section mismatch after round trip")
	}
	if !bytes.Equal(got.Rodata, o.Rodata) {
		t.Fatalf("rodata section mismatch after round trip")
	}
	if len(got.Symbols) != len(o.Symbols) || len(got.Relocations) != len(o.Relocations) {
		t.Fatalf("symbol/relocation count mismatch after round trip")
	}
	if got.EntryOffset != o.EntryOffset {
		t.Fatalf("entry offset mismatch: got %d want %d", got.EntryOffset, o.EntryOffset)
	}
}
