package iroptimizer

import "escomp/internal/ir"

// propagateCopies rewrites later uses of a COPY's destination temp, in
// the same block, to use the copy's source value directly (spec.md
// §4.6: "For each COPY t_dst <- t_src, rewrite later uses of t_dst in
// the same block to use t_src").
func (o *Optimizer) propagateCopies(fn *ir.Function) bool {
	changed := false
	for _, blk := range fn.Blocks {
		copies := make(map[int]ir.Value)
		for _, inst := range blk.Insts {
			for i, op := range inst.Operands {
				if op.Kind != ir.ValueTemp {
					continue
				}
				if src, ok := copies[op.Index]; ok {
					inst.Operands[i] = src
					changed = true
				}
			}
			if inst.Opcode == ir.OpCopy && inst.Result.Kind == ir.ValueTemp && len(inst.Operands) == 1 {
				copies[inst.Result.Index] = inst.Operands[0]
			} else if !inst.Result.IsVoid() && inst.Result.Kind == ir.ValueTemp {
				delete(copies, inst.Result.Index)
			}
		}
	}
	return changed
}
