// Package commands implements escomp's subcommands, one function per
// command in the shape of the teacher's cmd/sentra/commands/build.go
// (a flag.FlagSet per subcommand, a single exported entry point each
// main.go dispatches to).
package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/kr/pretty"

	"escomp/internal/ast"
	"escomp/internal/buildcache"
	"escomp/internal/diagnostics"
	"escomp/internal/driver"
	"escomp/internal/ir"
)

// Build implements `escomp build <ast.json> [flags]`.
func Build(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	backendFlag := fs.String("backend", "ir-text", "output backend: ir-text, x86-asm, vm-bytecode, eo-obj, wasm")
	outFlag := fs.String("o", "a.out", "output file path")
	cacheFlag := fs.String("cache", "", "path to a build-cache sqlite file (disabled if empty)")
	dumpAST := fs.Bool("dump-ast", false, "pretty-print the decoded AST and exit")
	dumpIR := fs.Bool("dump-ir", false, "pretty-print the lowered IR module alongside normal output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: escomp build <ast.json> [flags]")
	}
	astPath := fs.Arg(0)

	astJSON, err := os.ReadFile(astPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", astPath, err)
	}

	if *dumpAST {
		prog, err := ast.DecodeProgram(astJSON)
		if err != nil {
			return fmt.Errorf("decoding AST: %w", err)
		}
		pretty.Println(prog)
		return nil
	}

	backend, err := driver.ParseBackend(*backendFlag)
	if err != nil {
		return err
	}

	var cache *buildcache.Cache
	if *cacheFlag != "" {
		cache, err = buildcache.Open(*cacheFlag)
		if err != nil {
			return fmt.Errorf("opening build cache: %w", err)
		}
		defer cache.Close()
	}

	result, err := driver.Compile(astJSON, driver.Options{Backend: backend, OutputPath: *outFlag})
	if err != nil {
		return err
	}

	diagnostics.NewPrinter(os.Stderr).Print(result.Diagnostics)

	if *dumpIR && result.Module != nil {
		pretty.Println(result.Module)
	}

	if cache != nil && result.Module != nil {
		summary := &buildcache.Summary{SessionID: cache.SessionID()}
		for _, fn := range result.Module.Functions {
			if fn.IsForwardDecl() {
				continue
			}
			key := buildcache.Key(fn)
			if _, hit, _ := cache.Lookup(key, backend.String()); hit {
				summary.Record(true, 0)
				continue
			}
			artifact := []byte(ir.PrintFunction(fn))
			summary.Record(false, len(artifact))
			if err := cache.Store(key, backend.String(), artifact); err != nil {
				return fmt.Errorf("storing build cache artifact for %s: %w", fn.Name, err)
			}
		}
		fmt.Fprintln(os.Stderr, summary.String())
	}

	if !result.Success() {
		return fmt.Errorf("compilation failed with %d error(s)", diagnostics.ErrorCount(result.Diagnostics))
	}
	fmt.Printf("wrote %s (%s)\n", result.OutputPath, backend)
	return nil
}
