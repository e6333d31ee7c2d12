// cmd/escomp is the E# compiler's CLI entry point: a small subcommand
// dispatcher in the shape of the teacher's cmd/sentra/main.go
// (commandAliases + switch-on-first-arg), wired to internal/driver,
// internal/diagnostics, and internal/buildcache instead of Sentra's own
// run/repl/package-manager surface (SPEC_FULL.md §1.F's "build driver/CLI
// glue" is explicitly ambient scaffolding around the CORE, not the CORE
// itself).
package main

import (
	"fmt"
	"os"

	"escomp/cmd/escomp/commands"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"b": "build",
	"w": "watch",
	"v": "version",
	"h": "help",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	var err error
	switch cmd {
	case "build":
		err = commands.Build(args[1:])
	case "watch":
		err = commands.Watch(args[1:])
	case "version", "--version", "-v":
		fmt.Printf("escomp version %s\n", version)
		return
	case "help", "--help", "-h":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "escomp: unknown command %q\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "escomp: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`escomp - the E# compiler

Usage:
  escomp build <ast.json> [flags]   compile an AST document to the selected backend
  escomp watch <ast.json> [flags]   recompile on change and serve results over a websocket
  escomp version                    print the compiler version
  escomp help                       show this message

Run 'escomp build -h' or 'escomp watch -h' for flag details.`)
}
