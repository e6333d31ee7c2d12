package irbuilder

import "escomp/internal/ir"

// Imm builds an immediate numeric value (es_ir_imm).
func (b *Builder) Imm(v float64) ir.Value { return ir.Immediate(v) }

// Var builds a named-variable reference (es_ir_var). Lowering is
// responsible for having already emitted an Alloc for name.
func (b *Builder) Var(name string) ir.Value { return ir.Named(b.intern(name)) }

// Temp allocates a fresh temporary (es_ir_temp).
func (b *Builder) Temp() ir.Value { return b.nextTemp() }

// Arg builds a reference to the index-th parameter (es_ir_arg).
func (b *Builder) Arg(index int) ir.Value { return ir.Arg(index) }

// StringConst copies s through the arena (see intern) before interning
// the resulting Go string in the module's string table
// (es_ir_string_const).
func (b *Builder) StringConst(s string) ir.Value {
	return ir.StringConst(b.Module.InternString(b.intern(s)))
}
