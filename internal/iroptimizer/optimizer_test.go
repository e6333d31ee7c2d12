package iroptimizer

import (
	"testing"

	"escomp/internal/ir"
	"escomp/internal/irbuilder"
)

// buildFoldable constructs: %0 = ADD 2, 3; %1 = MUL %0, 4; STORE @x, %1
// equivalent to "int32 x = (2+3)*4;" which should fold to a single
// STORE @x, 20.
func buildFoldable() *ir.Module {
	b := irbuilder.New()
	fn := b.CreateFunction("main", "int32")
	blk := b.CreateBlock("entry")
	b.SetCurrentBlock(blk)
	b.Alloc("x")
	sum := b.Add(b.Imm(2), b.Imm(3))
	prod := b.Mul(sum, b.Imm(4))
	b.Store("x", prod)
	b.Return(b.Imm(0))
	b.SetEntry(fn)
	return b.Module
}

func TestConstantFoldingCollapsesToStore(t *testing.T) {
	m := buildFoldable()
	o := New(DefaultFlags())
	o.Run(m)

	fn := m.FindFunction("main")
	var storeCount, liveArith int
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Insts {
			switch inst.Opcode {
			case ir.OpStore:
				storeCount++
				if len(inst.Operands) != 2 || !inst.Operands[1].IsImmediate() || inst.Operands[1].Imm != 20 {
					t.Fatalf("expected STORE @x, 20, got %+v", inst)
				}
			case ir.OpAdd, ir.OpMul:
				liveArith++
			}
		}
	}
	if storeCount != 1 {
		t.Fatalf("expected exactly one STORE, got %d", storeCount)
	}
	if liveArith != 0 {
		t.Fatalf("expected all arithmetic folded away, found %d live arithmetic ops", liveArith)
	}
}

// TestFixedPoint is property 9: running the optimizer a
// second time with the same flags must produce zero additional changes.
func TestFixedPoint(t *testing.T) {
	m := buildFoldable()
	o := New(DefaultFlags())
	o.Run(m)
	before := ir.Print(m)

	o2 := New(DefaultFlags())
	o2.Run(m)
	after := ir.Print(m)

	if before != after {
		t.Fatalf("optimizer is not a fixed point:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestStrengthReductionMulByPowerOfTwo(t *testing.T) {
	b := irbuilder.New()
	fn := b.CreateFunction("main", "int32")
	blk := b.CreateBlock("entry")
	b.SetCurrentBlock(blk)
	b.Alloc("x")
	v := b.Mul(b.Arg(0), b.Imm(8))
	b.Store("x", v)
	b.Return(b.Imm(0))
	b.SetEntry(fn)

	o := New(DefaultFlags())
	o.Run(b.Module)

	found := false
	for _, inst := range fn.Blocks[0].Insts {
		if inst.Opcode == ir.OpLShift {
			found = true
			if inst.Operands[1].Imm != 3 {
				t.Fatalf("expected shift by 3 (8=2^3), got %v", inst.Operands[1].Imm)
			}
		}
	}
	if !found {
		t.Fatalf("expected x*8 to be reduced to a left shift")
	}
}

func TestDivisionByZeroSkipsFold(t *testing.T) {
	b := irbuilder.New()
	fn := b.CreateFunction("main", "int32")
	blk := b.CreateBlock("entry")
	b.SetCurrentBlock(blk)
	b.Alloc("x")
	v := b.Div(b.Imm(5), b.Imm(0))
	b.Store("x", v)
	b.Return(b.Imm(0))
	b.SetEntry(fn)

	o := New(DefaultFlags())
	o.Run(b.Module)

	sawDiv := false
	for _, inst := range fn.Blocks[0].Insts {
		if inst.Opcode == ir.OpDiv {
			sawDiv = true
		}
	}
	if !sawDiv {
		t.Fatalf("division by zero must not be folded away")
	}
}
