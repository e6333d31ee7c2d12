// Package driver wires the CORE pipeline stages (type checker, lowering,
// optimizer, backend) into the single top-level Compile() entry point
// describes as "backend selection". Grounded on the teacher's
// cmd/sentra/main.go command-dispatch shape and internal/build/builder.go's
// top-level Build() orchestration method: load input, run the pipeline
// stages in a fixed order, write one output file, return a summary.
package driver

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"escomp/internal/ast"
	"escomp/internal/diagnostics"
	"escomp/internal/eobackend"
	"escomp/internal/ir"
	"escomp/internal/iroptimizer"
	"escomp/internal/lowering"
	"escomp/internal/typecheck"
	"escomp/internal/vmbackend"
)

// Backend selects one of the five output targets of
type Backend int

const (
	IRText Backend = iota
	X86Asm
	Wasm // reserved, unimplemented
	VMBytecode
	EOObj
)

// String renders the backend name used in diagnostics and CLI flag help.
func (b Backend) String() string {
	switch b {
	case IRText:
		return "ir-text"
	case X86Asm:
		return "x86-asm"
	case Wasm:
		return "wasm"
	case VMBytecode:
		return "vm-bytecode"
	case EOObj:
		return "eo-obj"
	default:
		return "unknown"
	}
}

// ParseBackend maps a CLI-facing string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(s) {
	case "ir-text", "ir":
		return IRText, nil
	case "x86-asm", "asm":
		return X86Asm, nil
	case "wasm":
		return Wasm, nil
	case "vm-bytecode", "ebc", "vm":
		return VMBytecode, nil
	case "eo-obj", "eo":
		return EOObj, nil
	default:
		return 0, errors.Errorf("unknown backend %q", s)
	}
}

// outputExt returns the filename extension mandates for the
// binary backends; text backends keep whatever extension the caller gave.
func (b Backend) outputExt() string {
	switch b {
	case VMBytecode:
		return ".ebc"
	case EOObj:
		return ".eo"
	default:
		return ""
	}
}

// Options configures a single Compile invocation.
type Options struct {
	Backend    Backend
	OutputPath string
}

// Result summarizes a completed (successful or failed) compile.
type Result struct {
	Diagnostics diagnostics.Batch
	OutputPath  string
	Module      *ir.Module // nil if type checking failed
}

// Success reports whether the compile produced output worth keeping
// ("success iff error_count == 0 after type checking").
func (r *Result) Success() bool { return diagnostics.Success(r.Diagnostics) }

// Compile runs the full pipeline over a JSON-encoded AST document: decode,
// type check, lower, optimize, emit. It stops after type checking if any
// error diagnostic was recorded, matching the success predicate;
// it never partially writes an output file in that case.
func Compile(astJSON []byte, opts Options) (*Result, error) {
	prog, err := ast.DecodeProgram(astJSON)
	if err != nil {
		return nil, errors.Wrap(err, "driver: decoding AST")
	}

	checker := typecheck.New()
	diags := checker.Check(prog)

	res := &Result{Diagnostics: diags}
	if !diagnostics.Success(diags) {
		return res, nil
	}

	module, err := lowering.Lower(prog, checker)
	if err != nil {
		return res, errors.Wrap(err, "driver: lowering AST to IR")
	}
	res.Module = module

	iroptimizer.New(iroptimizer.DefaultFlags()).Run(module)

	path := withExt(opts.OutputPath, opts.Backend.outputExt())
	res.OutputPath = path

	if err := emit(module, opts.Backend, path); err != nil {
		return res, errors.Wrapf(err, "driver: emitting %s backend output", opts.Backend)
	}
	return res, nil
}

func withExt(path, ext string) string {
	if ext == "" {
		return path
	}
	if strings.HasSuffix(path, ext) {
		return path
	}
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i] + ext
	}
	return path + ext
}

// emit writes module through the backend selected by target to path. This
// is the one place the five backends converge; each backend
// package handles its own serialization, emit only owns file lifecycle and
// error wrapping (SPEC_FULL.md §4.13).
func emit(module *ir.Module, target Backend, path string) error {
	switch target {
	case IRText:
		return writeText(path, ir.Print(module))

	case X86Asm:
		return writeText(path, eobackend.RenderAsm(module))

	case Wasm:
		return errors.New("driver: wasm backend is reserved and unimplemented")

	case VMBytecode:
		chunk := vmbackend.Lower(module)
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "creating EBC output file")
		}
		defer f.Close()
		if err := vmbackend.Write(f, chunk); err != nil {
			return errors.Wrap(err, "serializing EBC chunk")
		}
		return nil

	case EOObj:
		obj := eobackend.Lower(module)
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "creating EO output file")
		}
		defer f.Close()
		if err := eobackend.Write(f, obj); err != nil {
			return errors.Wrap(err, "serializing EO object")
		}
		return nil

	default:
		return fmt.Errorf("driver: unknown backend %v", target)
	}
}

func writeText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.Wrap(err, "writing text output file")
	}
	return nil
}
