// Package irbuilder provides an imperative, one-call-per-opcode API for
// constructing internal/ir values: the lowering pass calls Builder methods
// in source order and never touches Inst/BasicBlock fields directly,
// mirroring the C entry points in original_source's ir.h (es_ir_add,
// es_ir_store, es_ir_branch, and so on).
package irbuilder

import (
	"escomp/internal/arena"
	"escomp/internal/ir"
)

// Builder accumulates a Module one function/block/instruction at a time.
// It owns the current insertion point (CurrentFunction/CurrentBlock), the
// variable-name scope stack, the loop-context stack for break/continue
// targets, the temp-index counter, and the arena every IR-graph string
// is copied through (see intern: the strings the IR holds are Go-heap
// copies, not pointers into the arena).
type Builder struct {
	Module *ir.Module

	CurrentFunction *ir.Function
	CurrentBlock    *ir.BasicBlock

	tempCounter int

	scopes []*scope
	loops  []loopContext

	classLayouts map[string]*ir.ClassLayout

	arena *arena.Arena
}

func New() *Builder {
	b := &Builder{
		Module:       ir.NewModule(),
		classLayouts: make(map[string]*ir.ClassLayout),
		arena:        arena.New(arena.DefaultPoolSize),
	}
	b.pushScope()
	return b
}

// Arena exposes the builder's bump allocator, e.g. for reporting
// allocation stats alongside a compile.
func (b *Builder) Arena() *arena.Arena {
	return b.arena
}

// intern copies name into the builder's arena, so the arena's Stats count
// every Named/Function operand and string constant, and returns a Go
// string made from that copy; the returned string does not point into
// the arena.
func (b *Builder) intern(name string) string {
	return b.arena.Strdup(name)
}

// CreateFunction starts a new function with a body, adds it to the module
// and makes it current. ParamCount starts at 0, not at the forward-decl
// sentinel. No block is created: the first block created on the function
// becomes its entry. Forward declarations (no body yet) should instead be
// registered directly on the module without calling this.
func (b *Builder) CreateFunction(name, returnType string) *ir.Function {
	fn := ir.NewFunction(name, returnType)
	fn.ParamCount = 0
	b.Module.AddFunction(fn)
	b.CurrentFunction = fn
	return fn
}

// SetEntry designates fn as the function where execution begins
// (es_ir_function_set_entry).
func (b *Builder) SetEntry(fn *ir.Function) {
	b.Module.MainFunction = fn
}

// CreateBlock allocates a new block on the current function and returns
// it without switching the insertion point.
func (b *Builder) CreateBlock(label string) *ir.BasicBlock {
	return b.CurrentFunction.NewBlock(label)
}

// SetCurrentBlock switches the insertion point (es_ir_block_set_current).
func (b *Builder) SetCurrentBlock(blk *ir.BasicBlock) {
	b.CurrentBlock = blk
}

// emit appends inst to the current block and returns it.
func (b *Builder) emit(inst *ir.Inst) *ir.Inst {
	b.CurrentBlock.AddInst(inst)
	return inst
}

// nextTemp allocates a fresh temporary value.
func (b *Builder) nextTemp() ir.Value {
	v := ir.Temp(b.tempCounter)
	b.tempCounter++
	return v
}

// ResetTempCounter starts temp numbering over, called when entering a new
// function (temp indices are scoped per function, not per module).
func (b *Builder) ResetTempCounter() {
	b.tempCounter = 0
}

// RegisterClassLayout computes and stores a class's field layout, keyed
// by name, for later Offset/Size lookups during lowering.
func (b *Builder) RegisterClassLayout(name string, fieldNames []string, parentName string) *ir.ClassLayout {
	var parent *ir.ClassLayout
	if parentName != "" {
		parent = b.classLayouts[parentName]
	}
	layout := ir.NewClassLayout(name, fieldNames, parent)
	b.classLayouts[name] = layout
	b.Module.Classes[name] = layout
	return layout
}

// ClassLayout returns the registered layout for name, or nil.
func (b *Builder) ClassLayout(name string) *ir.ClassLayout {
	return b.classLayouts[name]
}

// LayoutOffset returns the byte offset of field within className's
// layout (es_ir_layout_get_offset).
func (b *Builder) LayoutOffset(className, field string) (int, bool) {
	layout, ok := b.classLayouts[className]
	if !ok {
		return 0, false
	}
	return layout.Offset(field)
}

// LayoutSize returns the total instance size of className
// (es_ir_layout_get_size).
func (b *Builder) LayoutSize(className string) int {
	layout, ok := b.classLayouts[className]
	if !ok {
		return ir.MinClassSize
	}
	return layout.TotalSize
}
