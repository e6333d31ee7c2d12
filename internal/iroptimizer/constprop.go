package iroptimizer

import "escomp/internal/ir"

// propagateConstants walks each block maintaining a table of
// temp_index -> constant, replacing temp operands with the known
// constant. Deliberately no cross-block merging — a
// fresh table starts at the top of every block, matching the spec's
// documented "intentional looseness".
func (o *Optimizer) propagateConstants(fn *ir.Function) bool {
	changed := false
	for _, blk := range fn.Blocks {
		known := make(map[int]float64)
		for _, inst := range blk.Insts {
			for i, op := range inst.Operands {
				if op.Kind == ir.ValueTemp {
					if v, ok := known[op.Index]; ok {
						inst.Operands[i] = ir.Immediate(v)
						changed = true
					}
				}
			}
			if inst.Opcode == ir.OpImm && inst.Result.Kind == ir.ValueTemp {
				known[inst.Result.Index] = inst.Operands[0].Imm
			} else if !inst.Result.IsVoid() && inst.Result.Kind == ir.ValueTemp {
				delete(known, inst.Result.Index)
			}
		}
	}
	return changed
}
