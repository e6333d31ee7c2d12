package eobackend

import (
	"encoding/binary"

	"escomp/internal/ir"
)

// Hand-rolled x86-64 encodings for the small instruction subset the EO
// backend emits, grounded on eo_codegen.c's byte tables. Only the
// exact forms names are implemented; this is a code
// generator for straight-line arithmetic/call/return sequences, not a
// general assembler.

func le32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func le64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

func pushRBP() []byte      { return []byte{0x55} }
func movRBPRSP() []byte    { return []byte{0x48, 0x89, 0xE5} }
func subRSPImm32(n int32) []byte {
	return append([]byte{0x48, 0x81, 0xEC}, le32(n)...)
}
func movRSPRBP() []byte { return []byte{0x48, 0x89, 0xEC} }
func popRBP() []byte    { return []byte{0x5D} }
func ret() []byte       { return []byte{0xC3} }

// movRegImm64 returns the bytes for `mov <reg>, imm64` and the byte
// offset (from the start of the returned slice) where the 8-byte
// immediate begins, for relocation patching.
func movRegImm64(reg string, imm int64) ([]byte, int) {
	prefix, opcode := regEncoding(reg)
	out := append([]byte{prefix, opcode}, le64(imm)...)
	return out, len(out) - 8
}

// regEncoding returns the REX prefix and the `mov r64, imm64` opcode
// byte (0xB8 + register number) for the registers the EO backend's
// calling-convention/arithmetic model uses.
func regEncoding(reg string) (prefix, opcode byte) {
	switch reg {
	case "rax":
		return 0x48, 0xB8
	case "rbx":
		return 0x48, 0xBB
	case "rcx":
		return 0x48, 0xB9
	case "rdx":
		return 0x48, 0xBA
	case "r8":
		return 0x49, 0xB8
	case "r9":
		return 0x49, 0xB9
	default:
		return 0x48, 0xB8
	}
}

func addRaxRbx() []byte  { return []byte{0x48, 0x01, 0xD8} }
func subRaxRbx() []byte  { return []byte{0x48, 0x29, 0xD8} }
func imulRaxRbx() []byte { return []byte{0x48, 0x0F, 0xAF, 0xC3} }
func cqo() []byte        { return []byte{0x48, 0x99} }
func idivRbx() []byte    { return []byte{0x48, 0xF7, 0xFB} }
func cmpRaxRbx() []byte  { return []byte{0x48, 0x39, 0xD8} }

// setccRaxFromFlags materializes a comparison's boolean result into
// rax: `setcc al; movzx rax, al`.
func setccRaxFromFlags(op ir.Opcode) []byte {
	var cc byte
	switch op {
	case ir.OpEQ:
		cc = 0x94 // sete
	case ir.OpLT:
		cc = 0x9C // setl
	case ir.OpGT:
		cc = 0x9F // setg
	default:
		cc = 0x94
	}
	out := []byte{0x0F, cc, 0xC0}                   // setcc al
	out = append(out, 0x48, 0x0F, 0xB6, 0xC0)       // movzx rax, al
	return out
}

// callRel32 returns `call rel32` with a placeholder displacement, and
// the offset of the 4-byte displacement for relocation patching.
func callRel32() ([]byte, int) {
	return []byte{0xE8, 0, 0, 0, 0}, 1
}

// movRaxFromStack / movRaxToStack load/store rax from the function's
// local-slot window at [rbp-8*(slot+1)], the backend's stack-frame
// analog of vmbackend's slot numbering.
func movRaxFromStack(slot int) []byte {
	return ripSlot(0x8B, "rax", slot) // mov rax, [rbp-disp]
}
func movRaxToStack(slot int) []byte {
	return ripSlot(0x89, "rax", slot) // mov [rbp-disp], rax
}
func movRbxFromStack(slot int) []byte {
	return ripSlot(0x8B, "rbx", slot)
}

// ripSlot encodes `mov reg, [rbp-disp32]` or its store counterpart
// using the ModRM disp32 form (mod=10, rm=101 selects [rbp+disp32]).
func ripSlot(opcode byte, reg string, slot int) []byte {
	disp := int32(-8 * (slot + 1))
	var modrm byte
	switch reg {
	case "rax":
		modrm = 0x85 // mod=10 reg=000(rax) rm=101(rbp)
	case "rbx":
		modrm = 0x9D // reg=011(rbx)
	default:
		modrm = 0x85
	}
	return append([]byte{0x48, opcode, modrm}, le32(disp)...)
}

func jmpRel32() ([]byte, int)  { return []byte{0xE9, 0, 0, 0, 0}, 1 }
func jeRel32() ([]byte, int)   { return append([]byte{0x0F, 0x84}, 0, 0, 0, 0), 2 }
func testRaxRax() []byte       { return []byte{0x48, 0x85, 0xC0} }
