package iroptimizer

import "escomp/internal/ir"

// strengthReduce rewrites cheap-identity arithmetic:
// x*0->0, x*1->x, x*2->x+x, x/1->x, x^0->1, x^1->x, x^2->x*x, and
// x*2^k->x LSHIFT k. Identity rewrites to a single operand become COPY of
// that operand so downstream copy propagation can fold them away.
func (o *Optimizer) strengthReduce(fn *ir.Function) bool {
	changed := false
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Insts {
			if reduceOne(inst) {
				changed = true
			}
		}
	}
	return changed
}

func reduceOne(inst *ir.Inst) bool {
	if len(inst.Operands) != 2 {
		return false
	}
	lhs, rhs := inst.Operands[0], inst.Operands[1]

	switch inst.Opcode {
	case ir.OpMul:
		if isImm(rhs, 0) || isImm(lhs, 0) {
			setImm(inst, 0)
			return true
		}
		if isImm(rhs, 1) {
			setCopy(inst, lhs)
			return true
		}
		if isImm(lhs, 1) {
			setCopy(inst, rhs)
			return true
		}
		if isImm(rhs, 2) {
			inst.Opcode = ir.OpAdd
			inst.Operands = []ir.Value{lhs, lhs}
			return true
		}
		if k, ok := powerOfTwo(rhs); ok {
			inst.Opcode = ir.OpLShift
			inst.Operands = []ir.Value{lhs, ir.Immediate(float64(k))}
			return true
		}
	case ir.OpDiv:
		if isImm(rhs, 1) {
			setCopy(inst, lhs)
			return true
		}
	case ir.OpPow:
		if isImm(rhs, 0) {
			setImm(inst, 1)
			return true
		}
		if isImm(rhs, 1) {
			setCopy(inst, lhs)
			return true
		}
		if isImm(rhs, 2) {
			inst.Opcode = ir.OpMul
			inst.Operands = []ir.Value{lhs, lhs}
			return true
		}
	}
	return false
}

func isImm(v ir.Value, want float64) bool {
	return v.IsImmediate() && v.Imm == want
}

func setImm(inst *ir.Inst, v float64) {
	inst.Opcode = ir.OpImm
	inst.Operands = []ir.Value{ir.Immediate(v)}
}

func setCopy(inst *ir.Inst, src ir.Value) {
	inst.Opcode = ir.OpCopy
	inst.Operands = []ir.Value{src}
}

// powerOfTwo reports whether v is an immediate integer power of two
// greater than 2, and returns its exponent.
func powerOfTwo(v ir.Value) (int, bool) {
	if !v.IsImmediate() {
		return 0, false
	}
	n := int64(v.Imm)
	if n <= 2 || float64(n) != v.Imm {
		return 0, false
	}
	k := 0
	for n > 1 {
		if n&1 != 0 {
			return 0, false
		}
		n >>= 1
		k++
	}
	return k, true
}
