package ir

// BlockCacheSize is the inline cache capacity for peephole lookup
//.
const BlockCacheSize = 4

// BasicBlock holds an ordered instruction list (both a slice for indexed
// access and a head/tail pair for intrusive traversal), a small inline
// cache of "interesting" instructions, and predecessor/successor lists.
type BasicBlock struct {
	ID    int
	Label string

	Insts     []*Inst
	FirstInst *Inst
	LastInst  *Inst

	cache      [BlockCacheSize]*Inst
	cacheCount int

	Preds []*BasicBlock
	Succs []*BasicBlock

	Next *BasicBlock // intrusive link into the function's block list
}

func NewBlock(id int, label string) *BasicBlock {
	return &BasicBlock{ID: id, Label: label}
}

// isInteresting reports whether op is eligible for the block's peephole
// cache: arithmetic plus load/store
func isInteresting(op Opcode) bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpAnd, OpOr, OpXor, OpLShift, OpRShift, OpPow,
		OpLoad, OpStore, OpLoadPtr, OpStorePtr:
		return true
	default:
		return false
	}
}

// AddInst appends inst to the block's instruction list, linking it as the
// new tail, and refreshes the peephole cache.
func (b *BasicBlock) AddInst(inst *Inst) {
	b.Insts = append(b.Insts, inst)
	if b.LastInst != nil {
		b.LastInst.Next = inst
	} else {
		b.FirstInst = inst
	}
	b.LastInst = inst

	if isInteresting(inst.Opcode) {
		if b.cacheCount < BlockCacheSize {
			b.cache[b.cacheCount] = inst
			b.cacheCount++
		} else {
			// Evict the oldest cached entry, keeping the cache a subset
			// of the instruction list's invariant.
			copy(b.cache[0:], b.cache[1:])
			b.cache[BlockCacheSize-1] = inst
		}
	}
}

// InvalidateCache clears the peephole cache. Any rewrite of the
// instruction list (optimizer passes) must call this, since the cache is
// only ever a subset of Insts and stale entries would violate that.
func (b *BasicBlock) InvalidateCache() {
	b.cache = [BlockCacheSize]*Inst{}
	b.cacheCount = 0
}

// RebuildCache reconstructs the cache from the current instruction list,
// used after an optimizer pass rewrites Insts in place.
func (b *BasicBlock) RebuildCache() {
	b.InvalidateCache()
	for _, inst := range b.Insts {
		if !isInteresting(inst.Opcode) {
			continue
		}
		if b.cacheCount < BlockCacheSize {
			b.cache[b.cacheCount] = inst
			b.cacheCount++
		} else {
			copy(b.cache[0:], b.cache[1:])
			b.cache[BlockCacheSize-1] = inst
		}
	}
}

// FindCached returns the most recently cached instruction with the given
// opcode, or nil.
func (b *BasicBlock) FindCached(op Opcode) *Inst {
	for i := b.cacheCount - 1; i >= 0; i-- {
		if b.cache[i].Opcode == op {
			return b.cache[i]
		}
	}
	return nil
}

// Terminator returns the block's terminator instruction, if any (must be
// the last instruction's invariant).
func (b *BasicBlock) Terminator() *Inst {
	if len(b.Insts) == 0 {
		return nil
	}
	last := b.Insts[len(b.Insts)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

func (b *BasicBlock) AddPred(p *BasicBlock) { b.Preds = append(b.Preds, p) }
func (b *BasicBlock) AddSucc(s *BasicBlock) { b.Succs = append(b.Succs, s) }

// SetInsts replaces the block's instruction list wholesale (used by
// optimizer passes that rewrite a block), relinking Next pointers and the
// First/Last pair, and rebuilding the peephole cache.
func (b *BasicBlock) SetInsts(insts []*Inst) {
	b.Insts = insts
	b.FirstInst = nil
	b.LastInst = nil
	for _, inst := range insts {
		inst.Next = nil
		if b.LastInst != nil {
			b.LastInst.Next = inst
		} else {
			b.FirstInst = inst
		}
		b.LastInst = inst
	}
	b.RebuildCache()
}
