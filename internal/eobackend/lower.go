package eobackend

import (
	"fmt"

	"escomp/internal/ir"
)

// Lower emits every defined function in m as x86-64 text bytes into a
// fresh Object, following spec.md §4.8's per-opcode emission rules. The
// sequencing pass that would keep complex expression trees correctly
// routed through rax/rbx is intentionally absent — left elided for
// trivial (two-operand-deep) programs, exactly as spec.md §9 describes
// the original's behavior.
func Lower(m *ir.Module) *Object {
	o := NewObject()
	for i, s := range m.StringConstants() {
		name := fmt.Sprintf("str_const_%d", i)
		offset := len(o.Rodata)
		o.Rodata = append(o.Rodata, []byte(s)...)
		o.Rodata = append(o.Rodata, 0) // NUL terminator
		o.defineSymbol(name, SymObject, BindLocal, SectionRodata, offset)
	}

	for _, fn := range m.Functions {
		if fn.IsForwardDecl() {
			continue
		}
		fl := &fnLower{o: o, fn: fn, m: m, blockOffset: make(map[string]int)}
		fl.emit()
	}

	if idx, ok := o.symbolIndex["main"]; ok && o.Symbols[idx].Defined {
		o.EntryOffset = o.Symbols[idx].Value
	}
	return o
}

type fnLower struct {
	o           *Object
	fn          *ir.Function
	m           *ir.Module
	blockOffset map[string]int
	patches     []eoPatch
}

type eoPatch struct {
	offset int // byte offset of the 4-byte displacement within .text
	target string
	isJump bool // true: PC32-relative to instruction end; used for intra-function jumps
}

func (fl *fnLower) frameSize() int32 {
	slots := fl.fn.ParamCount + len(fl.fn.Locals) + fl.tempCount()
	raw := int32(8*slots + 32)
	n := raw
	if n%16 != 0 {
		n += 16 - n%16
	}
	if n < 48 {
		n = 48
	}
	return n
}

func (fl *fnLower) tempCount() int {
	max := -1
	for _, blk := range fl.fn.Blocks {
		for _, inst := range blk.Insts {
			if inst.Result.Kind == ir.ValueTemp && inst.Result.Index > max {
				max = inst.Result.Index
			}
		}
	}
	return max + 1
}

func (fl *fnLower) slotOf(name string) (int, bool) {
	for i, p := range fl.fn.ParamOrder {
		if p == name {
			return i, true
		}
	}
	for i, v := range fl.fn.Locals {
		if v == name {
			return fl.fn.ParamCount + i, true
		}
	}
	return 0, false
}

func (fl *fnLower) tempSlot(idx int) int {
	return fl.fn.ParamCount + len(fl.fn.Locals) + idx
}

func (fl *fnLower) write(b []byte) int {
	offset := len(fl.o.Text)
	fl.o.Text = append(fl.o.Text, b...)
	return offset
}

func (fl *fnLower) emit() {
	o := fl.o
	start := len(o.Text)
	o.defineSymbol(fl.fn.Name, SymFunc, BindGlobal, SectionText, start)

	fl.write(pushRBP())
	fl.write(movRBPRSP())
	fl.write(subRSPImm32(fl.frameSize()))

	// Spill incoming register/stack arguments into the slot window;
	// the Windows x64 convention's first four integer args arrive in
	// rcx/rdx/r8/r9, which is also the CALL convention this backend
	// emits at call sites.
	argRegs := []string{"rcx", "rdx", "r8", "r9"}
	for i := 0; i < fl.fn.ParamCount && i < len(argRegs); i++ {
		fl.write(movRegToStack(argRegs[i], i))
	}

	for _, blk := range fl.fn.Blocks {
		fl.blockOffset[blk.Label] = len(o.Text)
		for _, inst := range blk.Insts {
			fl.emitInst(inst)
		}
	}

	for _, p := range fl.patches {
		target, ok := fl.blockOffset[p.target]
		if !ok {
			panic(fmt.Sprintf("eobackend: jump to undefined block %q in function %q", p.target, fl.fn.Name))
		}
		disp := int32(target - (p.offset + 4))
		copy(o.Text[p.offset:p.offset+4], le32(disp))
	}
}

// movRegToStack stores an incoming argument register into its local
// slot: `mov [rbp-disp], reg`.
func movRegToStack(reg string, slot int) []byte {
	disp := int32(-8 * (slot + 1))
	var rexPrefix, modrm byte
	switch reg {
	case "rcx":
		rexPrefix, modrm = 0x48, 0x8D
	case "rdx":
		rexPrefix, modrm = 0x48, 0x95
	case "r8":
		rexPrefix, modrm = 0x4C, 0x85
	case "r9":
		rexPrefix, modrm = 0x4C, 0x8D
	default:
		rexPrefix, modrm = 0x48, 0x8D
	}
	return append([]byte{rexPrefix, 0x89, modrm}, le32(disp)...)
}

// loadValueTo emits code that materializes v into reg ("rbx" selects rbx,
// anything else rax), per the two-operand rax/rbx model.
func (fl *fnLower) loadValueTo(v ir.Value, reg string) {
	switch v.Kind {
	case ir.ValueImmediate:
		b, immOff := movRegImm64(reg, int64(v.Imm))
		fl.write(b[:immOff])
		fl.write(b[immOff:])
	case ir.ValueArg:
		if reg == "rbx" {
			fl.write(movRbxFromStack(v.Index))
		} else {
			fl.write(movRaxFromStack(v.Index))
		}
	case ir.ValueTemp:
		slot := fl.tempSlot(v.Index)
		if reg == "rbx" {
			fl.write(movRbxFromStack(slot))
		} else {
			fl.write(movRaxFromStack(slot))
		}
	case ir.ValueNamed:
		if slot, ok := fl.slotOf(v.Name); ok {
			if reg == "rbx" {
				fl.write(movRbxFromStack(slot))
			} else {
				fl.write(movRaxFromStack(slot))
			}
		}
	case ir.ValueStringConst:
		strs := fl.m.StringConstants()
		name := ""
		if v.Index >= 0 && v.Index < len(strs) {
			name = fmt.Sprintf("str_const_%d", v.Index)
		}
		b, immOff := movRegImm64(reg, 0)
		fl.write(b[:immOff])
		pos := fl.write(b[immOff:])
		symIdx := fl.o.symbol(name, SymObject, BindLocal, SectionRodata)
		fl.o.addReloc(SectionText, pos, symIdx, RelocABS64, 0)
	case ir.ValueFunction:
		// Function values aren't loaded as data in this backend; CALL
		// handles them directly via a PC32 call-site relocation.
	}
}

func (fl *fnLower) storeResultFromRax(result ir.Value) {
	if result.IsVoid() {
		return
	}
	switch result.Kind {
	case ir.ValueTemp:
		fl.write(movRaxToStack(fl.tempSlot(result.Index)))
	case ir.ValueNamed:
		if slot, ok := fl.slotOf(result.Name); ok {
			fl.write(movRaxToStack(slot))
		}
	}
}

var arithEncoders = map[ir.Opcode]func() []byte{
	ir.OpAdd: addRaxRbx,
	ir.OpSub: subRaxRbx,
	ir.OpMul: imulRaxRbx,
}

func (fl *fnLower) emitInst(inst *ir.Inst) {
	switch inst.Opcode {
	case ir.OpAlloc, ir.OpLabel, ir.OpNop, ir.OpCopy:
		return

	case ir.OpImm:
		fl.loadValueTo(ir.Immediate(inst.Operands[0].Imm), "rax")
		fl.storeResultFromRax(inst.Result)

	case ir.OpLoad:
		fl.loadValueTo(ir.Named(inst.Operands[0].Name), "rax")
		fl.storeResultFromRax(inst.Result)

	case ir.OpStore:
		fl.loadValueTo(inst.Operands[1], "rax")
		name := inst.Operands[0].Name
		if slot, ok := fl.slotOf(name); ok {
			fl.write(movRaxToStack(slot))
		}

	case ir.OpAdd, ir.OpSub, ir.OpMul:
		fl.loadValueTo(inst.Operands[0], "rax")
		fl.loadValueTo(inst.Operands[1], "rbx")
		fl.write(arithEncoders[inst.Opcode]())
		fl.storeResultFromRax(inst.Result)

	case ir.OpDiv:
		fl.loadValueTo(inst.Operands[0], "rax")
		fl.loadValueTo(inst.Operands[1], "rbx")
		fl.write(cqo())
		fl.write(idivRbx())
		fl.storeResultFromRax(inst.Result)

	case ir.OpEQ, ir.OpLT, ir.OpGT:
		fl.loadValueTo(inst.Operands[0], "rax")
		fl.loadValueTo(inst.Operands[1], "rbx")
		fl.write(cmpRaxRbx())
		fl.write(setccRaxFromFlags(inst.Opcode))
		fl.storeResultFromRax(inst.Result)

	case ir.OpJump:
		target := inst.Operands[0].Name
		b, dispOff := jmpRel32()
		pos := fl.write(b)
		fl.patches = append(fl.patches, eoPatch{offset: pos + dispOff, target: target, isJump: true})

	case ir.OpBranch:
		fl.loadValueTo(inst.Operands[0], "rax")
		fl.write(testRaxRax())
		b, dispOff := jeRel32()
		pos := fl.write(b)
		falseLabel := inst.Operands[2].Name
		fl.patches = append(fl.patches, eoPatch{offset: pos + dispOff, target: falseLabel, isJump: true})

		trueLabel := inst.Operands[1].Name
		jb, jOff := jmpRel32()
		jpos := fl.write(jb)
		fl.patches = append(fl.patches, eoPatch{offset: jpos + jOff, target: trueLabel, isJump: true})

	case ir.OpReturn:
		if len(inst.Operands) == 1 {
			fl.loadValueTo(inst.Operands[0], "rax")
		}
		fl.write(movRSPRBP())
		fl.write(popRBP())
		fl.write(ret())

	case ir.OpCall:
		callee := inst.Operands[0].Name
		args := inst.Operands[1:]
		argRegs := []string{"rcx", "rdx", "r8", "r9"}
		for i, a := range args {
			if i >= len(argRegs) {
				break
			}
			fl.loadValueTo(a, "rax")
			fl.write(movRegFromRax(argRegs[i]))
		}
		cb, dispOff := callRel32()
		pos := fl.write(cb)
		symIdx := fl.o.symbol(callee, SymFunc, BindGlobal, SectionText)
		fl.o.addReloc(SectionText, pos+dispOff, symIdx, RelocPC32, -4)
		fl.storeResultFromRax(inst.Result)

	default:
		// Bitwise/shift/pow/strcat/pointer/array ops and the remaining
		// comparisons are outside this backend's documented opcode
		// coverage ( only names IMM/CALL/RETURN/arithmetic);
		// a full implementation routes these through the same runtime
		// ABI calls vmbackend's intrinsic fallback uses.
		panic(fmt.Sprintf("eobackend: unsupported IR opcode %s in EO lowering", inst.Opcode))
	}
}

// movRegFromRax encodes `mov <reg>, rax` for the four Windows x64
// integer argument registers, used when shuttling a call argument
// (always materialized in rax first) into its calling-convention slot.
func movRegFromRax(reg string) []byte {
	switch reg {
	case "rcx":
		return []byte{0x48, 0x89, 0xC1}
	case "rdx":
		return []byte{0x48, 0x89, 0xC2}
	case "r8":
		return []byte{0x49, 0x89, 0xC0}
	case "r9":
		return []byte{0x49, 0x89, 0xC1}
	default:
		return nil
	}
}
