package driver_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"escomp/internal/ast"
	"escomp/internal/driver"
	"escomp/internal/vmbackend"
)

// consoleWriteLineHi builds the AST for `Console.WriteLine("hi");` as a
// top-level statement, matching the first end-to-end scenario.
func consoleWriteLineHi() *ast.Program {
	call := &ast.StaticMethodCall{
		ClassName:  "Console",
		MethodName: "WriteLine",
		Arguments:  ast.NodeList{&ast.String{Value: "hi"}},
	}
	return &ast.Program{Statements: ast.NodeList{call}}
}

func marshalProgram(t *testing.T, prog *ast.Program) []byte {
	t.Helper()
	data, err := ast.Encode(prog)
	if err != nil {
		t.Fatalf("encoding program: %v", err)
	}
	return data
}

func TestCompileIRTextEmitsConsoleWriteLineCall(t *testing.T) {
	data := marshalProgram(t, consoleWriteLineHi())
	outPath := filepath.Join(t.TempDir(), "out.ir")

	result, err := driver.Compile(data, driver.Options{Backend: driver.IRText, OutputPath: outPath})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got diagnostics: %v", result.Diagnostics)
	}

	text, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatalf("reading IR text output: %v", err)
	}
	if !strings.Contains(string(text), "Console__WriteLine") {
		t.Fatalf("expected a Console__WriteLine call in IR text, got:\n%s", text)
	}
}

func TestCompileVMBytecodeProducesExpectedChunk(t *testing.T) {
	data := marshalProgram(t, consoleWriteLineHi())
	outPath := filepath.Join(t.TempDir(), "out")

	result, err := driver.Compile(data, driver.Options{Backend: driver.VMBytecode, OutputPath: outPath})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got diagnostics: %v", result.Diagnostics)
	}
	if !strings.HasSuffix(result.OutputPath, ".ebc") {
		t.Fatalf("expected .ebc extension, got %s", result.OutputPath)
	}

	f, err := os.Open(result.OutputPath)
	if err != nil {
		t.Fatalf("opening EBC output: %v", err)
	}
	defer f.Close()
	chunk, err := vmbackend.Read(f)
	if err != nil {
		t.Fatalf("reading EBC chunk: %v", err)
	}

	foundHi := false
	for _, c := range chunk.Constants {
		if c.Tag == vmbackend.ConstString && c.Str == "hi" {
			foundHi = true
		}
	}
	if !foundHi {
		t.Fatalf("expected a string constant \"hi\" in the chunk, got %+v", chunk.Constants)
	}
}

func TestCompileStopsAfterTypeErrorsWithoutWritingOutput(t *testing.T) {
	// A call to an undeclared function should fail type checking and never
	// reach a backend (success iff error_count == 0).
	prog := &ast.Program{
		Statements: ast.NodeList{
			&ast.Call{Name: "not_a_real_function", Arguments: ast.NodeList{}},
		},
	}
	data := marshalProgram(t, prog)
	outPath := filepath.Join(t.TempDir(), "out.ir")

	result, err := driver.Compile(data, driver.Options{Backend: driver.IRText, OutputPath: outPath})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if result.Success() {
		t.Fatalf("expected a type error for an undeclared function call")
	}
	if result.Module != nil {
		t.Fatalf("expected no module to be produced once type checking fails")
	}
	if _, err := os.Stat(outPath); err == nil {
		t.Fatalf("expected no output file to be written on type-check failure")
	}
}

func TestParseBackendExtensions(t *testing.T) {
	cases := []struct {
		name string
		b    driver.Backend
	}{
		{"vm-bytecode", driver.VMBytecode},
		{"eo-obj", driver.EOObj},
	}
	for _, c := range cases {
		got, err := driver.ParseBackend(c.name)
		if err != nil {
			t.Fatalf("ParseBackend(%q): %v", c.name, err)
		}
		if got != c.b {
			t.Fatalf("ParseBackend(%q) = %v, want %v", c.name, got, c.b)
		}
	}
}
