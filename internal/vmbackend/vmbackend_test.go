package vmbackend

import (
	"bytes"
	"testing"

	"escomp/internal/ir"
	"escomp/internal/irbuilder"
)

// buildConsoleWriteLine builds: function main() { Console.WriteLine("hi"); return 0; }
func buildConsoleWriteLine() *ir.Module {
	b := irbuilder.New()
	fn := b.CreateFunction("main", "int32")
	blk := b.CreateBlock("entry")
	b.SetCurrentBlock(blk)
	idx := b.Module.InternString("hi")
	b.Call("Console__WriteLine", []ir.Value{ir.StringConst(idx)}, false)
	b.Return(b.Imm(0))
	b.SetEntry(fn)
	return b.Module
}

func TestLowerEmitsStringConstantAndHalt(t *testing.T) {
	m := buildConsoleWriteLine()
	chunk := Lower(m)

	var sawCall, sawHalt bool
	for _, c := range chunk.Constants {
		if c.Tag == ConstString && c.Str == "hi" {
			sawCall = true // constant pool carries the string-literal argument
		}
	}
	for _, b := range chunk.Code {
		if OpCode(b) == OpHalt {
			sawHalt = true
		}
	}
	if !sawCall {
		t.Fatalf("expected \"hi\" string constant in pool, got %+v", chunk.Constants)
	}
	if !sawHalt {
		t.Fatalf("expected trailing HALT opcode")
	}
	if len(chunk.Code) == 0 {
		t.Fatalf("expected non-empty code stream")
	}
}

func TestRoundTripSerialization(t *testing.T) {
	m := buildConsoleWriteLine()
	chunk := Lower(m)

	var buf bytes.Buffer
	if err := Write(&buf, chunk); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got.Code, chunk.Code) {
		t.Fatalf("code mismatch after round trip")
	}
	if len(got.Constants) != len(chunk.Constants) {
		t.Fatalf("constant count mismatch: got %d want %d", len(got.Constants), len(chunk.Constants))
	}
	for i, c := range chunk.Constants {
		if got.Constants[i] != c {
			t.Fatalf("constant %d mismatch: got %+v want %+v", i, got.Constants[i], c)
		}
	}
}

func TestLoopBackEdgeEmitsLoopOpcode(t *testing.T) {
	b := irbuilder.New()
	fn := b.CreateFunction("main", "int32")
	entry := b.CreateBlock("entry")
	header := b.CreateBlock("header")
	body := b.CreateBlock("body")
	exit := b.CreateBlock("exit")

	b.SetCurrentBlock(entry)
	b.Alloc("i")
	b.Store("i", b.Imm(0))
	b.Jump(header)

	b.SetCurrentBlock(header)
	cond := b.Compare(ir.OpLT, b.Load("i"), b.Imm(10))
	b.Branch(cond, body, exit)

	b.SetCurrentBlock(body)
	next := b.Add(b.Load("i"), b.Imm(1))
	b.Store("i", next)
	b.Jump(header)

	b.SetCurrentBlock(exit)
	b.Return(b.Imm(0))
	b.SetEntry(fn)

	chunk := Lower(b.Module)

	sawLoop := false
	for _, c := range chunk.Code {
		if OpCode(c) == OpLoop {
			sawLoop = true
		}
	}
	if !sawLoop {
		t.Fatalf("expected the body->header back edge to lower to LOOP")
	}
}
