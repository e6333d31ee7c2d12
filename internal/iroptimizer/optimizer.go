// Package iroptimizer implements the fixed-point IR optimizer of
// : constant folding, constant/copy propagation, common
// subexpression elimination, strength reduction, dead-code elimination,
// and control-flow simplification, re-run until no pass reports a change
// or a 10-iteration cap is hit. Grounded directly on
// original_source/.../ir_optimizer.c (634 lines): the fold tables, the
// is_pure/is_side_effect_free predicates (carried over as
// ir.Opcode.IsPure/HasSideEffects), and the pass-count statistics are
// kept with the same semantics, re-expressed as Go per-function rewrites
// over internal/ir rather than in-place C mutation of a linked list.
package iroptimizer

import (
	"time"

	"escomp/internal/ir"
)

// MaxPasses is the fixed-point iteration cap.
const MaxPasses = 10

// Flags selects which optimizer passes run; all default to enabled.
type Flags struct {
	ConstantFold    bool
	ConstantProp    bool
	CopyProp        bool
	CSE             bool
	StrengthReduce  bool
	DCE             bool
	SimplifyCFG     bool
}

// DefaultFlags enables every pass.
func DefaultFlags() Flags {
	return Flags{true, true, true, true, true, true, true}
}

// Stats accumulates per-category pass counts and wall-clock time across
// the whole optimizer run ("statistics are monotonic
// across passes"). A category's counter goes up once for each
// per-function run of its pass that changed something.
type Stats struct {
	ConstantFolds    int
	ConstantProps    int
	CopyProps        int
	CSEHits          int
	StrengthReduces  int
	DeadRemoved      int
	CFGSimplified    int
	Passes           int
	Elapsed          time.Duration
}

// Optimizer runs the fixed-point pass driver over a Module, accumulating
// Stats as it goes.
type Optimizer struct {
	Flags Flags
	Stats Stats
}

func New(flags Flags) *Optimizer {
	return &Optimizer{Flags: flags}
}

// Run rewrites m in place, iterating passes until a round makes no
// change or MaxPasses is reached. Per property
// 9, running Run a second time with the same flags must report zero
// further changes — every pass below is written to be idempotent at a
// fixed point.
func (o *Optimizer) Run(m *ir.Module) {
	start := time.Now()
	for pass := 0; pass < MaxPasses; pass++ {
		o.Stats.Passes++
		changed := false
		for _, fn := range m.Functions {
			if fn.IsForwardDecl() {
				continue
			}
			if o.runFunction(fn) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	o.Stats.Elapsed += time.Since(start)
}

func (o *Optimizer) runFunction(fn *ir.Function) bool {
	changed := false
	count := func(n *int, did bool) {
		if did {
			*n++
			changed = true
		}
	}
	if o.Flags.ConstantFold {
		count(&o.Stats.ConstantFolds, o.foldConstants(fn))
	}
	if o.Flags.StrengthReduce {
		count(&o.Stats.StrengthReduces, o.strengthReduce(fn))
	}
	if o.Flags.ConstantProp {
		count(&o.Stats.ConstantProps, o.propagateConstants(fn))
	}
	if o.Flags.CopyProp {
		count(&o.Stats.CopyProps, o.propagateCopies(fn))
	}
	if o.Flags.CSE {
		count(&o.Stats.CSEHits, o.eliminateCommonSubexprs(fn))
	}
	if o.Flags.SimplifyCFG {
		count(&o.Stats.CFGSimplified, o.simplifyCFG(fn))
	}
	if o.Flags.DCE {
		count(&o.Stats.DeadRemoved, o.eliminateDeadCode(fn))
	}
	return changed
}
