package buildcache

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"escomp/internal/ir"
)

// hashFunction deterministically serializes fn's post-lowering shape
// (name, params, locals, per-block instruction stream) and returns its
// blake2b-256 hex digest. blake2b is preferred here over the teacher's
// crypto/sha256 (internal/build/builder.go) because the cache key is
// computed once per function per build — a genuine hot path where the
// ecosystem's faster general-purpose hash earns its keep, unlike the rest
// of this module where stdlib hashing would be the ordinary choice.
func hashFunction(fn *ir.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fn %s(%s) -> %s\n", fn.Name, strings.Join(fn.ParamOrder, ","), fn.ReturnType)
	fmt.Fprintf(&b, "locals %s\n", strings.Join(fn.Locals, ","))
	for _, blk := range fn.Blocks {
		fmt.Fprintf(&b, "block %s\n", blk.Label)
		for _, inst := range blk.Insts {
			fmt.Fprintf(&b, "  %s %s = %s\n", inst.Opcode, inst.Result, operandList(inst.Operands))
		}
	}

	sum := blake2b.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum)
}

func operandList(ops []ir.Value) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}
