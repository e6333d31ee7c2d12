package vmbackend

import (
	"fmt"

	"escomp/internal/ir"
)

// Lower linearizes m into a single EBC Chunk. Every
// declared function gets a preamble DEFINE_GLOBAL binding its name to
// a function value (an Obj constant carrying the function's entry
// offset, patched once the offset is known), then bodies are emitted
// back to back in module order. Calls — both to E# functions and to
// runtime ABI entries — go through GET_GLOBAL + CALL, the classic
// global-function-value dispatch original_source's vm_codegen.c uses
// and the teacher's own internal/vm interpreter assumes for its
// OpGetGlobal/OpCall pair.
func Lower(m *ir.Module) *Chunk {
	l := &lowerer{
		chunk:      NewChunk(),
		fnConstIdx: make(map[string]int),
		nameConst:  make(map[string]int),
	}
	return l.run(m)
}

type lowerer struct {
	chunk      *Chunk
	fnConstIdx map[string]int // function name -> constant pool slot holding its Obj offset
	nameConst  map[string]int // global name -> constant pool slot holding its StringConstant
}

func (l *lowerer) run(m *ir.Module) *Chunk {
	for _, fn := range m.Functions {
		if fn.IsForwardDecl() {
			continue
		}
		objIdx := l.chunk.AddConstant(ObjConstant(0))
		l.fnConstIdx[fn.Name] = objIdx
		nameIdx := l.nameConstant(fn.Name)

		l.chunk.WriteOp(OpConstant, 0)
		l.chunk.WriteUint16(uint16(objIdx), 0)
		l.chunk.WriteOp(OpDefineGlobal, 0)
		l.chunk.WriteUint16(uint16(nameIdx), 0)
	}

	for _, fn := range m.Functions {
		if fn.IsForwardDecl() {
			continue
		}
		start := l.chunk.Len()
		l.chunk.Constants[l.fnConstIdx[fn.Name]] = ObjConstant(start)
		l.lowerFunction(m, fn)
	}

	l.chunk.WriteOp(OpHalt, 0)
	return l.chunk
}

// nameConstant interns name as a string constant for use as a
// GET_GLOBAL/SET_GLOBAL/DEFINE_GLOBAL operand. Unlike chunk-wide
// literal constants, global names ARE deduplicated: every reference to
// the same global must hit the same pool slot for GET/SET_GLOBAL to
// agree on identity.
func (l *lowerer) nameConstant(name string) int {
	if idx, ok := l.nameConst[name]; ok {
		return idx
	}
	idx := l.chunk.AddConstant(StringConstant(name))
	l.nameConst[name] = idx
	return idx
}

func slotOf(fn *ir.Function, name string) (int, bool) {
	for i, p := range fn.ParamOrder {
		if p == name {
			return i, true
		}
	}
	for i, v := range fn.Locals {
		if v == name {
			return fn.ParamCount + i, true
		}
	}
	return 0, false
}

func tempSlot(index int) int { return TempSlotBase + index }

type fnLowerer struct {
	*lowerer
	fn          *ir.Function
	m           *ir.Module
	blockOffset map[string]int
	patches     []jumpPatch
}

type jumpPatch struct {
	pos     int // position of the 2-byte operand to patch
	target  string
	from    int // byte offset immediately after the operand, for relative jumps
	opcodeAt int // position of the opcode byte itself, -1 if not rewritable to LOOP
}

func (l *lowerer) lowerFunction(m *ir.Module, fn *ir.Function) {
	fl := &fnLowerer{lowerer: l, fn: fn, m: m, blockOffset: make(map[string]int)}

	frameSize := fn.ParamCount + len(fn.Locals)
	fl.chunk.WriteOp(OpStkAdj, 0)
	fl.chunk.WriteUint16(uint16(frameSize), 0)

	for _, blk := range fn.Blocks {
		fl.blockOffset[blk.Label] = fl.chunk.Len()
		for _, inst := range blk.Insts {
			fl.lowerInst(inst)
		}
	}

	for _, p := range fl.patches {
		target, ok := fl.blockOffset[p.target]
		if !ok {
			panic(fmt.Sprintf("vmbackend: jump to undefined block %q in function %q", p.target, fn.Name))
		}
		if target < p.from && p.opcodeAt >= 0 {
			// Backward edge: rewrite the plain JUMP into a LOOP, whose
			// offset is subtracted from ip rather than added.
			fl.chunk.Code[p.opcodeAt] = byte(OpLoop)
			fl.chunk.PatchUint16(p.pos, uint16(p.from-target))
		} else {
			fl.chunk.PatchUint16(p.pos, uint16(target-p.from))
		}
	}
}

// push emits code that leaves v's value on top of the VM stack.
func (fl *fnLowerer) push(v ir.Value, line int) {
	c := fl.chunk
	switch v.Kind {
	case ir.ValueImmediate:
		idx := c.AddConstant(NumberConstant(v.Imm))
		c.WriteOp(OpConstant, line)
		c.WriteUint16(uint16(idx), line)
	case ir.ValueStringConst:
		s := ""
		strs := fl.m.StringConstants()
		if v.Index >= 0 && v.Index < len(strs) {
			s = strs[v.Index]
		}
		idx := c.AddConstant(StringConstant(s))
		c.WriteOp(OpConstant, line)
		c.WriteUint16(uint16(idx), line)
	case ir.ValueArg:
		c.WriteOp(OpGetLocal, line)
		c.WriteUint16(uint16(v.Index), line)
	case ir.ValueTemp:
		c.WriteOp(OpGetLocal, line)
		c.WriteUint16(uint16(tempSlot(v.Index)), line)
	case ir.ValueNamed:
		if slot, ok := slotOf(fl.fn, v.Name); ok {
			c.WriteOp(OpGetLocal, line)
			c.WriteUint16(uint16(slot), line)
		} else {
			idx := fl.nameConstant(v.Name)
			c.WriteOp(OpGetGlobal, line)
			c.WriteUint16(uint16(idx), line)
		}
	case ir.ValueFunction:
		idx := fl.nameConstant(v.Name)
		c.WriteOp(OpGetGlobal, line)
		c.WriteUint16(uint16(idx), line)
	default:
		c.WriteOp(OpNull, line)
	}
}

// storeResult pops the VM stack top into result's slot (a temp or a
// named local/global), leaving the stack balanced.
func (fl *fnLowerer) storeResult(result ir.Value, line int) {
	if result.IsVoid() {
		fl.chunk.WriteOp(OpPop, line)
		return
	}
	c := fl.chunk
	switch result.Kind {
	case ir.ValueTemp:
		c.WriteOp(OpSetLocal, line)
		c.WriteUint16(uint16(tempSlot(result.Index)), line)
	case ir.ValueNamed:
		if slot, ok := slotOf(fl.fn, result.Name); ok {
			c.WriteOp(OpSetLocal, line)
			c.WriteUint16(uint16(slot), line)
		} else {
			idx := fl.nameConstant(result.Name)
			c.WriteOp(OpSetGlobal, line)
			c.WriteUint16(uint16(idx), line)
		}
	default:
		// Arg/StringConst/Function results never occur for computed
		// instructions; Void already handled above.
	}
	c.WriteOp(OpPop, line)
}

// storeNamed stores the VM stack top into a Named destination (used by
// OpStore, whose destination is always a variable, not a temp).
func (fl *fnLowerer) storeNamed(name string, line int) {
	c := fl.chunk
	if slot, ok := slotOf(fl.fn, name); ok {
		c.WriteOp(OpSetLocal, line)
		c.WriteUint16(uint16(slot), line)
	} else {
		idx := fl.nameConstant(name)
		c.WriteOp(OpSetGlobal, line)
		c.WriteUint16(uint16(idx), line)
	}
	c.WriteOp(OpPop, line)
}

var binaryOpcode = map[ir.Opcode]OpCode{
	ir.OpAdd: OpAdd, ir.OpSub: OpSub, ir.OpMul: OpMul, ir.OpDiv: OpDiv,
	ir.OpLT: OpLess, ir.OpGT: OpGreater, ir.OpEQ: OpEqual,
}

// intrinsicName names the runtime ABI helper EBC calls into for IR
// operations outside the deliberately minimal opcode set
// (bitwise/shift/pow/strcat/pointer/array ops, GE/LE/NE). The VM
// backend targets the arithmetic/console subset of E# programs;
// richer programs should target IR_TEXT or EO_OBJ instead.
func intrinsicName(op ir.Opcode) (string, int) {
	switch op {
	case ir.OpMod:
		return "__ebc_mod", 2
	case ir.OpAnd:
		return "__ebc_and", 2
	case ir.OpOr:
		return "__ebc_or", 2
	case ir.OpXor:
		return "__ebc_xor", 2
	case ir.OpLShift:
		return "__ebc_lshift", 2
	case ir.OpRShift:
		return "__ebc_rshift", 2
	case ir.OpPow:
		return "__ebc_pow", 2
	case ir.OpStrcat:
		return "__ebc_strcat", 2
	case ir.OpLE:
		return "__ebc_le", 2
	case ir.OpGE:
		return "__ebc_ge", 2
	case ir.OpNE:
		return "__ebc_ne", 2
	case ir.OpLoadPtr:
		return "__ebc_loadptr", 2
	case ir.OpStorePtr:
		return "__ebc_storeptr", 3
	case ir.OpArrayStore:
		return "__ebc_arraystore", 3
	case ir.OpCast:
		return "__ebc_cast", 2
	case ir.OpDoubleToString:
		return "__ebc_dtos", 1
	default:
		return "", 0
	}
}

func (fl *fnLowerer) lowerInst(inst *ir.Inst) {
	line := inst.Line
	c := fl.chunk

	switch inst.Opcode {
	case ir.OpAlloc, ir.OpLabel, ir.OpNop:
		return

	case ir.OpImm:
		fl.push(ir.Immediate(inst.Operands[0].Imm), line)
		fl.storeResult(inst.Result, line)

	case ir.OpCopy:
		fl.push(inst.Operands[0], line)
		fl.storeResult(inst.Result, line)

	case ir.OpLoad:
		fl.push(ir.Named(inst.Operands[0].Name), line)
		fl.storeResult(inst.Result, line)

	case ir.OpStore:
		fl.push(inst.Operands[1], line)
		fl.storeNamed(inst.Operands[0].Name, line)

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpLT, ir.OpGT, ir.OpEQ:
		fl.push(inst.Operands[0], line)
		fl.push(inst.Operands[1], line)
		c.WriteOp(binaryOpcode[inst.Opcode], line)
		fl.storeResult(inst.Result, line)

	case ir.OpIntToString:
		fl.push(inst.Operands[0], line)
		c.WriteOp(OpIntToString, line)
		fl.storeResult(inst.Result, line)

	case ir.OpJump:
		target := inst.Operands[0].Name
		opcodeAt := c.Len()
		c.WriteOp(OpJump, line)
		pos := c.Len()
		c.WriteUint16(0, line)
		fl.patches = append(fl.patches, jumpPatch{pos: pos, target: target, from: c.Len(), opcodeAt: opcodeAt})

	case ir.OpBranch:
		// Both arms are unconditional jumps to their IR block labels
		// rather than inlined fallthrough, since the blocks they name
		// can appear anywhere in the function's block order.
		fl.push(inst.Operands[0], line)
		trueLabel := inst.Operands[1].Name
		falseLabel := inst.Operands[2].Name

		c.WriteOp(OpJumpIfFalse, line)
		skipTruePos := c.Len()
		c.WriteUint16(0, line)

		c.WriteOp(OpPop, line) // discard cond on the true arm
		c.WriteOp(OpJump, line)
		truePos := c.Len()
		c.WriteUint16(0, line)

		falseArmStart := c.Len()
		c.WriteOp(OpPop, line) // discard cond on the false arm
		c.WriteOp(OpJump, line)
		falsePos := c.Len()
		c.WriteUint16(0, line)

		// skipTruePos's target (the false arm) is already a known
		// local offset, so it patches immediately rather than going
		// through the cross-block patch list.
		c.PatchUint16(skipTruePos, uint16(falseArmStart-(skipTruePos+2)))
		fl.patches = append(fl.patches,
			jumpPatch{pos: truePos, target: trueLabel, from: truePos + 2, opcodeAt: -1},
			jumpPatch{pos: falsePos, target: falseLabel, from: falsePos + 2, opcodeAt: -1},
		)

	case ir.OpReturn:
		if len(inst.Operands) == 1 {
			fl.push(inst.Operands[0], line)
		} else {
			c.WriteOp(OpNull, line)
		}
		c.WriteOp(OpReturn, line)

	case ir.OpCall:
		callee := inst.Operands[0]
		args := inst.Operands[1:]
		fl.push(callee, line)
		for _, a := range args {
			fl.push(a, line)
		}
		c.WriteOp(OpCall, line)
		c.WriteByte(byte(len(args)), line)
		fl.storeResult(inst.Result, line)

	default:
		name, arity := intrinsicName(inst.Opcode)
		if name == "" {
			panic(fmt.Sprintf("vmbackend: unsupported IR opcode %s in EBC lowering", inst.Opcode))
		}
		idx := fl.nameConstant(name)
		c.WriteOp(OpGetGlobal, line)
		c.WriteUint16(uint16(idx), line)
		for i := 0; i < arity && i < len(inst.Operands); i++ {
			fl.push(inst.Operands[i], line)
		}
		c.WriteOp(OpCall, line)
		c.WriteByte(byte(arity), line)
		fl.storeResult(inst.Result, line)
	}
}
