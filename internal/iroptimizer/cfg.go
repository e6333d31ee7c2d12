package iroptimizer

import "escomp/internal/ir"

// simplifyCFG rewrites a BRANCH whose condition is a constant into an
// unconditional JUMP of the selected target, and drops the
// now-unreachable edge from the block's successor list.
func (o *Optimizer) simplifyCFG(fn *ir.Function) bool {
	changed := false
	for _, blk := range fn.Blocks {
		term := blk.Terminator()
		if term == nil || term.Opcode != ir.OpBranch || len(term.Operands) != 3 {
			continue
		}
		cond := term.Operands[0]
		if !cond.IsImmediate() {
			continue
		}

		trueLabel := term.Operands[1]
		falseLabel := term.Operands[2]
		takenLabel := falseLabel
		if cond.Imm != 0 {
			takenLabel = trueLabel
		}

		var taken, dropped *ir.BasicBlock
		for _, s := range blk.Succs {
			if s.Label == takenLabel.Name {
				taken = s
			} else {
				dropped = s
			}
		}
		if taken == nil {
			continue
		}

		term.Opcode = ir.OpJump
		term.Operands = []ir.Value{takenLabel}
		blk.Succs = []*ir.BasicBlock{taken}

		if dropped != nil {
			removePred(dropped, blk)
		}
		changed = true
	}
	return changed
}

func removePred(blk, pred *ir.BasicBlock) {
	out := blk.Preds[:0:0]
	for _, p := range blk.Preds {
		if p != pred {
			out = append(out, p)
		}
	}
	blk.Preds = out
}
