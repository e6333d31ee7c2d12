package irbuilder

import (
	"testing"

	"escomp/internal/ir"
)

// buildSample constructs a small function with an if/else and an array
// write, exercising most emission paths the lowering pass relies on.
func buildSample() (*Builder, *ir.Function) {
	b := New()
	fn := b.CreateFunction("main", "int32")
	entry := b.CreateBlock("entry")
	thenBlk := b.CreateBlock("then")
	elseBlk := b.CreateBlock("else")
	end := b.CreateBlock("end")

	b.SetCurrentBlock(entry)
	b.Alloc("x")
	cond := b.Compare(ir.OpLT, b.Imm(1), b.Imm(2))
	b.Branch(cond, thenBlk, elseBlk)

	b.SetCurrentBlock(thenBlk)
	b.Store("x", b.Imm(1))
	b.Jump(end)

	b.SetCurrentBlock(elseBlk)
	b.Store("x", b.Imm(2))
	b.Jump(end)

	b.SetCurrentBlock(end)
	result := b.Load("x")
	b.Return(result)

	b.SetEntry(fn)
	return b, fn
}

// TestOperandCountWithinCapacity is invariant 1.
func TestOperandCountWithinCapacity(t *testing.T) {
	_, fn := buildSample()
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Insts {
			if inst.OperandCount() > ir.OperandCapacity(inst.Opcode) {
				t.Fatalf("block %s: opcode %v operand count %d exceeds capacity", blk.Label, inst.Opcode, inst.OperandCount())
			}
		}
	}
}

// TestTerminatorIsLastAndUnique is invariant 2.
func TestTerminatorIsLastAndUnique(t *testing.T) {
	_, fn := buildSample()
	for _, blk := range fn.Blocks {
		termCount := 0
		for i, inst := range blk.Insts {
			if inst.IsTerminator() {
				termCount++
				if i != len(blk.Insts)-1 {
					t.Fatalf("block %s: terminator %v is not the last instruction", blk.Label, inst.Opcode)
				}
			}
		}
		if termCount > 1 {
			t.Fatalf("block %s: found %d terminators, want at most 1", blk.Label, termCount)
		}
	}
}

// TestEntryBlockHasNoPredecessors is invariant 3's entry-block half; the
// remaining blocks must each have at least one predecessor.
func TestEntryBlockHasNoPredecessors(t *testing.T) {
	_, fn := buildSample()
	if len(fn.Entry.Preds) != 0 {
		t.Fatalf("entry block must have no predecessors, found %d", len(fn.Entry.Preds))
	}
	for _, blk := range fn.Blocks {
		if blk == fn.Entry {
			continue
		}
		if len(blk.Preds) == 0 {
			t.Fatalf("non-entry block %s has no predecessors", blk.Label)
		}
	}
}

// TestStringConstIndexInBounds is invariant 4.
func TestStringConstIndexInBounds(t *testing.T) {
	b := New()
	fn := b.CreateFunction("main", "void")
	blk := b.CreateBlock("entry")
	b.SetCurrentBlock(blk)

	v1 := b.StringConst("hi")
	v2 := b.StringConst("there")
	v3 := b.StringConst("hi") // dedup: should reuse v1's index
	b.Return(ir.Void())
	b.SetEntry(fn)

	n := len(b.Module.StringConstants())
	for _, v := range []ir.Value{v1, v2, v3} {
		if v.Index < 0 || v.Index >= n {
			t.Fatalf("StringConst index %d out of bounds [0,%d)", v.Index, n)
		}
	}
	if !v1.Equal(v3) {
		t.Fatalf("expected duplicate string constant to reuse index: %v != %v", v1, v3)
	}
}

// TestTempIndexBoundedByCounter is invariant 5.
func TestTempIndexBoundedByCounter(t *testing.T) {
	b, fn := buildSample()
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Insts {
			for _, op := range inst.Operands {
				if op.Kind == ir.ValueTemp {
					if op.Index < 0 || op.Index >= b.tempCounter {
						t.Fatalf("temp index %d out of bounds [0,%d)", op.Index, b.tempCounter)
					}
				}
			}
			if inst.Result.Kind == ir.ValueTemp {
				if inst.Result.Index < 0 || inst.Result.Index >= b.tempCounter {
					t.Fatalf("result temp index %d out of bounds [0,%d)", inst.Result.Index, b.tempCounter)
				}
			}
		}
	}
}

// TestClassLayoutOffsetsAndSize is invariant 7.
func TestClassLayoutOffsetsAndSize(t *testing.T) {
	b := New()
	layout := b.RegisterClassLayout("Point", []string{"x", "y", "z"}, "")
	for i, name := range []string{"x", "y", "z"} {
		off, ok := layout.Offset(name)
		if !ok {
			t.Fatalf("expected field %q in layout", name)
		}
		if off != 8*i {
			t.Fatalf("field %q: expected offset %d, got %d", name, 8*i, off)
		}
	}
	if layout.TotalSize != ir.MinClassSize {
		t.Fatalf("3 fields = 24 bytes < 64-byte floor, expected TotalSize %d, got %d", ir.MinClassSize, layout.TotalSize)
	}

	big := b.RegisterClassLayout("Big", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}, "")
	if big.TotalSize != 9*8 {
		t.Fatalf("9 fields should exceed the floor: expected %d, got %d", 9*8, big.TotalSize)
	}
}

func TestForwardDeclSentinel(t *testing.T) {
	fn := ir.NewFunction("later", "int32")
	if !fn.IsForwardDecl() {
		t.Fatalf("a freshly created function with no params attached should be a forward decl")
	}
	fn.AddParam("a", "int32")
	if fn.IsForwardDecl() {
		t.Fatalf("adding a parameter should fill in the forward declaration")
	}
	if fn.ParamCount != 1 {
		t.Fatalf("expected ParamCount 1, got %d", fn.ParamCount)
	}
}
