package irbuilder

import "escomp/internal/ir"

func (b *Builder) binary(op ir.Opcode, lhs, rhs ir.Value) ir.Value {
	inst := ir.NewInst(op)
	inst.AddOperand(lhs)
	inst.AddOperand(rhs)
	inst.Result = b.nextTemp()
	b.emit(inst)
	return inst.Result
}

// Load reads a named variable's current value (es_ir_load).
func (b *Builder) Load(name string) ir.Value {
	inst := ir.NewInst(ir.OpLoad)
	inst.AddOperand(ir.Named(b.intern(name)))
	inst.Result = b.nextTemp()
	b.emit(inst)
	return inst.Result
}

// Store writes value into a named variable (es_ir_store).
func (b *Builder) Store(name string, value ir.Value) {
	inst := ir.NewInst(ir.OpStore)
	inst.AddOperand(ir.Named(b.intern(name)))
	inst.AddOperand(value)
	b.emit(inst)
}

// Alloc reserves storage for a named local (es_ir_alloc).
func (b *Builder) Alloc(name string) {
	inst := ir.NewInst(ir.OpAlloc)
	inst.AddOperand(ir.Named(b.intern(name)))
	b.emit(inst)
	b.Declare(name)
	b.CurrentFunction.AddLocal(name)
}

// LoadPtr dereferences base+offset (es_ir_load_ptr), used for field reads
// and array element reads.
func (b *Builder) LoadPtr(base ir.Value, offset int) ir.Value {
	inst := ir.NewInst(ir.OpLoadPtr)
	inst.AddOperand(base)
	inst.AddOperand(ir.Immediate(float64(offset)))
	inst.Result = b.nextTemp()
	b.emit(inst)
	return inst.Result
}

// StorePtr writes value at base+offset (es_ir_store_ptr).
func (b *Builder) StorePtr(base ir.Value, offset int, value ir.Value) {
	inst := ir.NewInst(ir.OpStorePtr)
	inst.AddOperand(base)
	inst.AddOperand(ir.Immediate(float64(offset)))
	inst.AddOperand(value)
	b.emit(inst)
}

// ArrayStore writes value at array[index] (es_ir_array_store).
func (b *Builder) ArrayStore(array, index, value ir.Value) {
	inst := ir.NewInst(ir.OpArrayStore)
	inst.AddOperand(array)
	inst.AddOperand(index)
	inst.AddOperand(value)
	b.emit(inst)
}

func (b *Builder) Add(lhs, rhs ir.Value) ir.Value    { return b.binary(ir.OpAdd, lhs, rhs) }
func (b *Builder) Sub(lhs, rhs ir.Value) ir.Value    { return b.binary(ir.OpSub, lhs, rhs) }
func (b *Builder) Mul(lhs, rhs ir.Value) ir.Value    { return b.binary(ir.OpMul, lhs, rhs) }
func (b *Builder) Div(lhs, rhs ir.Value) ir.Value    { return b.binary(ir.OpDiv, lhs, rhs) }
func (b *Builder) Mod(lhs, rhs ir.Value) ir.Value    { return b.binary(ir.OpMod, lhs, rhs) }
func (b *Builder) And(lhs, rhs ir.Value) ir.Value    { return b.binary(ir.OpAnd, lhs, rhs) }
func (b *Builder) Or(lhs, rhs ir.Value) ir.Value     { return b.binary(ir.OpOr, lhs, rhs) }
func (b *Builder) Xor(lhs, rhs ir.Value) ir.Value    { return b.binary(ir.OpXor, lhs, rhs) }
func (b *Builder) LShift(lhs, rhs ir.Value) ir.Value { return b.binary(ir.OpLShift, lhs, rhs) }
func (b *Builder) RShift(lhs, rhs ir.Value) ir.Value { return b.binary(ir.OpRShift, lhs, rhs) }
func (b *Builder) Pow(lhs, rhs ir.Value) ir.Value    { return b.binary(ir.OpPow, lhs, rhs) }
func (b *Builder) Strcat(lhs, rhs ir.Value) ir.Value { return b.binary(ir.OpStrcat, lhs, rhs) }

// Compare emits one of the six comparison opcodes (es_ir_compare).
func (b *Builder) Compare(op ir.Opcode, lhs, rhs ir.Value) ir.Value {
	return b.binary(op, lhs, rhs)
}

// IntToString converts an integer value to its string form
// (es_ir_int_to_string).
func (b *Builder) IntToString(v ir.Value) ir.Value {
	inst := ir.NewInst(ir.OpIntToString)
	inst.AddOperand(v)
	inst.Result = b.nextTemp()
	b.emit(inst)
	return inst.Result
}

// DoubleToString converts a floating value to its string form
// (es_ir_double_to_string).
func (b *Builder) DoubleToString(v ir.Value) ir.Value {
	inst := ir.NewInst(ir.OpDoubleToString)
	inst.AddOperand(v)
	inst.Result = b.nextTemp()
	b.emit(inst)
	return inst.Result
}

// Cast converts v to targetType (es_ir_cast).
func (b *Builder) Cast(v ir.Value, targetType string) ir.Value {
	inst := ir.NewInst(ir.OpCast)
	inst.AddOperand(v)
	inst.AddOperand(ir.Named(b.intern(targetType)))
	inst.Result = b.nextTemp()
	b.emit(inst)
	return inst.Result
}

// Jump emits an unconditional branch to target and records the CFG edge
// (es_ir_jump).
func (b *Builder) Jump(target *ir.BasicBlock) {
	inst := ir.NewInst(ir.OpJump)
	inst.AddOperand(ir.Named(b.intern(target.Label)))
	b.emit(inst)
	b.CurrentBlock.AddSucc(target)
	target.AddPred(b.CurrentBlock)
}

// Branch emits a conditional branch and records both CFG edges
// (es_ir_branch).
func (b *Builder) Branch(cond ir.Value, trueBlock, falseBlock *ir.BasicBlock) {
	inst := ir.NewInst(ir.OpBranch)
	inst.AddOperand(cond)
	inst.AddOperand(ir.Named(b.intern(trueBlock.Label)))
	inst.AddOperand(ir.Named(b.intern(falseBlock.Label)))
	b.emit(inst)
	b.CurrentBlock.AddSucc(trueBlock)
	b.CurrentBlock.AddSucc(falseBlock)
	trueBlock.AddPred(b.CurrentBlock)
	falseBlock.AddPred(b.CurrentBlock)
}

// Call emits a function call (es_ir_call); it returns Void() for a
// void-returning function, a temp otherwise.
func (b *Builder) Call(funcName string, args []ir.Value, hasReturn bool) ir.Value {
	inst := ir.NewInst(ir.OpCall)
	inst.AddOperand(ir.FunctionRef(b.intern(funcName)))
	for _, a := range args {
		inst.AddOperand(a)
	}
	if hasReturn {
		inst.Result = b.nextTemp()
	}
	b.emit(inst)
	b.CurrentFunction.HasCalls = true
	return inst.Result
}

// Return emits a return instruction (es_ir_return).
func (b *Builder) Return(value ir.Value) {
	inst := ir.NewInst(ir.OpReturn)
	if !value.IsVoid() {
		inst.AddOperand(value)
	}
	b.emit(inst)
}

// Label emits a bookkeeping label marker (es_ir_label); blocks already
// carry labels, so this is used only where the lowering pass needs an
// explicit marker mid-block.
func (b *Builder) Label(name string) {
	inst := ir.NewInst(ir.OpLabel)
	inst.AddOperand(ir.Named(b.intern(name)))
	b.emit(inst)
}

// Nop emits a no-op placeholder (es_ir_nop), used by the optimizer when
// rewriting dead instructions in place rather than resizing block slices.
func (b *Builder) Nop() {
	b.emit(ir.NewInst(ir.OpNop))
}
