package eobackend

import (
	"fmt"
	"strings"

	"escomp/internal/ir"
)

// RenderAsm renders m as x86-64 assembly text (the X86_ASM backend of
//), following the identical per-opcode emission rules as
// Lower/emitInst but producing mnemonics instead of machine bytes. Kept
// alongside the binary encoder rather than derived from it by
// disassembling, so the two stay obviously in sync opcode-for-opcode.
func RenderAsm(m *ir.Module) string {
	var b strings.Builder
	b.WriteString("; generated by escomp -backend x86-asm\n")
	b.WriteString("section .rodata\n")
	for i, s := range m.StringConstants() {
		fmt.Fprintf(&b, "str_const_%d: db %q, 0\n", i, s)
	}

	b.WriteString("\nsection .text\n")
	for _, fn := range m.Functions {
		if fn.IsForwardDecl() {
			continue
		}
		renderFunction(&b, fn)
	}
	return b.String()
}

func renderFunction(b *strings.Builder, fn *ir.Function) {
	fmt.Fprintf(b, "\nglobal %s\n%s:\n", fn.Name, fn.Name)
	b.WriteString("\tpush rbp\n")
	b.WriteString("\tmov rbp, rsp\n")
	fmt.Fprintf(b, "\tsub rsp, %d\n", frameSizeAsm(fn))

	argRegs := []string{"rcx", "rdx", "r8", "r9"}
	for i := 0; i < fn.ParamCount && i < len(argRegs); i++ {
		fmt.Fprintf(b, "\tmov [rbp-%d], %s\n", 8*(i+1), argRegs[i])
	}

	for _, blk := range fn.Blocks {
		fmt.Fprintf(b, "%s:\n", asmLabel(fn.Name, blk.Label))
		for _, inst := range blk.Insts {
			renderInst(b, fn, inst)
		}
	}
}

func asmLabel(fnName, label string) string {
	return fmt.Sprintf(".%s_%s", fnName, label)
}

func frameSizeAsm(fn *ir.Function) int32 {
	slots := fn.ParamCount + len(fn.Locals) + tempCountAsm(fn)
	n := int32(8*slots + 32)
	if n%16 != 0 {
		n += 16 - n%16
	}
	if n < 48 {
		n = 48
	}
	return n
}

func tempCountAsm(fn *ir.Function) int {
	max := -1
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Insts {
			if inst.Result.Kind == ir.ValueTemp && inst.Result.Index > max {
				max = inst.Result.Index
			}
		}
	}
	return max + 1
}

func slotOfAsm(fn *ir.Function, name string) (int, bool) {
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

func tempSlotAsm(fn *ir.Function, idx int) int {
	return fn.ParamCount + len(fn.Locals) + idx
}

// loadAsm emits the mov/lea that loads v into reg, or nothing if it
// cannot be expressed directly (mirrors loadValueTo's case coverage in
// lower.go).
func loadAsm(b *strings.Builder, fn *ir.Function, v ir.Value, reg string) {
	switch v.Kind {
	case ir.ValueImmediate:
		fmt.Fprintf(b, "\tmov %s, %d\n", reg, int64(v.Imm))
	case ir.ValueArg:
		fmt.Fprintf(b, "\tmov %s, [rbp-%d]\n", reg, 8*(v.Index+1))
	case ir.ValueTemp:
		slot := tempSlotAsm(fn, v.Index)
		fmt.Fprintf(b, "\tmov %s, [rbp-%d]\n", reg, 8*(slot+1))
	case ir.ValueNamed:
		if slot, ok := slotOfAsm(fn, v.Name); ok {
			fmt.Fprintf(b, "\tmov %s, [rbp-%d]\n", reg, 8*(slot+1))
		}
	case ir.ValueStringConst:
		fmt.Fprintf(b, "\tlea %s, [rel str_const_%d]\n", reg, v.Index)
	case ir.ValueFunction:
		fmt.Fprintf(b, "\tlea %s, [rel %s]\n", reg, v.Name)
	}
}

func storeAsm(b *strings.Builder, fn *ir.Function, result ir.Value, reg string) {
	if result.IsVoid() {
		return
	}
	switch result.Kind {
	case ir.ValueTemp:
		slot := tempSlotAsm(fn, result.Index)
		fmt.Fprintf(b, "\tmov [rbp-%d], %s\n", 8*(slot+1), reg)
	case ir.ValueNamed:
		if slot, ok := slotOfAsm(fn, result.Name); ok {
			fmt.Fprintf(b, "\tmov [rbp-%d], %s\n", 8*(slot+1), reg)
		}
	}
}

func renderInst(b *strings.Builder, fn *ir.Function, inst *ir.Inst) {
	switch inst.Opcode {
	case ir.OpAlloc, ir.OpLabel, ir.OpNop, ir.OpCopy:
		return

	case ir.OpImm:
		loadAsm(b, fn, ir.Immediate(inst.Operands[0].Imm), "rax")
		storeAsm(b, fn, inst.Result, "rax")

	case ir.OpLoad:
		loadAsm(b, fn, ir.Named(inst.Operands[0].Name), "rax")
		storeAsm(b, fn, inst.Result, "rax")

	case ir.OpStore:
		loadAsm(b, fn, inst.Operands[1], "rax")
		if slot, ok := slotOfAsm(fn, inst.Operands[0].Name); ok {
			fmt.Fprintf(b, "\tmov [rbp-%d], rax\n", 8*(slot+1))
		}

	case ir.OpAdd, ir.OpSub, ir.OpMul:
		loadAsm(b, fn, inst.Operands[0], "rax")
		loadAsm(b, fn, inst.Operands[1], "rbx")
		switch inst.Opcode {
		case ir.OpAdd:
			b.WriteString("\tadd rax, rbx\n")
		case ir.OpSub:
			b.WriteString("\tsub rax, rbx\n")
		case ir.OpMul:
			b.WriteString("\timul rax, rbx\n")
		}
		storeAsm(b, fn, inst.Result, "rax")

	case ir.OpDiv:
		loadAsm(b, fn, inst.Operands[0], "rax")
		loadAsm(b, fn, inst.Operands[1], "rbx")
		b.WriteString("\tcqo\n\tidiv rbx\n")
		storeAsm(b, fn, inst.Result, "rax")

	case ir.OpEQ, ir.OpLT, ir.OpGT:
		loadAsm(b, fn, inst.Operands[0], "rax")
		loadAsm(b, fn, inst.Operands[1], "rbx")
		b.WriteString("\tcmp rax, rbx\n")
		cc := map[ir.Opcode]string{ir.OpEQ: "sete", ir.OpLT: "setl", ir.OpGT: "setg"}[inst.Opcode]
		fmt.Fprintf(b, "\t%s al\n\tmovzx rax, al\n", cc)
		storeAsm(b, fn, inst.Result, "rax")

	case ir.OpJump:
		fmt.Fprintf(b, "\tjmp %s\n", asmLabel(fn.Name, inst.Operands[0].Name))

	case ir.OpBranch:
		loadAsm(b, fn, inst.Operands[0], "rax")
		b.WriteString("\ttest rax, rax\n")
		fmt.Fprintf(b, "\tjz %s\n", asmLabel(fn.Name, inst.Operands[2].Name))
		fmt.Fprintf(b, "\tjmp %s\n", asmLabel(fn.Name, inst.Operands[1].Name))

	case ir.OpReturn:
		if len(inst.Operands) == 1 {
			loadAsm(b, fn, inst.Operands[0], "rax")
		}
		b.WriteString("\tmov rsp, rbp\n\tpop rbp\n\tret\n")

	case ir.OpCall:
		callee := inst.Operands[0].Name
		args := inst.Operands[1:]
		argRegs := []string{"rcx", "rdx", "r8", "r9"}
		for i, a := range args {
			if i >= len(argRegs) {
				break
			}
			loadAsm(b, fn, a, "rax")
			fmt.Fprintf(b, "\tmov %s, rax\n", argRegs[i])
		}
		fmt.Fprintf(b, "\tcall %s\n", callee)
		storeAsm(b, fn, inst.Result, "rax")

	default:
		fmt.Fprintf(b, "\t; unsupported opcode %s (outside coverage)\n", inst.Opcode)
	}
}
