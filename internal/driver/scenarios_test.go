package driver_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"escomp/internal/ast"
	"escomp/internal/driver"
)

func compileIRText(t *testing.T, prog *ast.Program) string {
	t.Helper()
	data := marshalProgram(t, prog)
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
	return string(text)
}

// TestConstantFoldingProducesSingleStore is the "int32 x = 2 + 3 * 4;"
// scenario: the initializer must fold to a single STORE @x, 14 with no
// surviving arithmetic instructions.
func TestConstantFoldingProducesSingleStore(t *testing.T) {
	prog := &ast.Program{
		Statements: ast.NodeList{
			&ast.VariableDecl{
				Name: "x",
				Type: "int32",
				Value: ast.NodeField{Node: &ast.Binary{
					Operator: "+",
					Left:     ast.NodeField{Node: &ast.Number{Value: 2}},
					Right: ast.NodeField{Node: &ast.Binary{
						Operator: "*",
						Left:     ast.NodeField{Node: &ast.Number{Value: 3}},
						Right:    ast.NodeField{Node: &ast.Number{Value: 4}},
					}},
				}},
			},
		},
	}
	text := compileIRText(t, prog)
	if !strings.Contains(text, "STORE @x, 14") {
		t.Fatalf("expected a folded \"STORE @x, 14\" in IR text, got:\n%s", text)
	}
	for _, op := range []string{" ADD ", " MUL "} {
		if strings.Contains(text, op) {
			t.Fatalf("expected no live %s instruction after folding, got:\n%s", strings.TrimSpace(op), text)
		}
	}
}

// TestAddFunctionCallLowersCallAndStore covers
// "function int add(int a, int b) { return a+b; } Console.WriteLine(add(2,3));".
func TestAddFunctionCallLowersCallAndStore(t *testing.T) {
	addFn := &ast.FunctionDecl{
		Name:       "add",
		ReturnType: "int32",
		Params:     []ast.Param{{Name: "a", Type: "int32"}, {Name: "b", Type: "int32"}},
		Body: ast.NodeField{Node: &ast.Block{Statements: ast.NodeList{
			&ast.Return{Value: ast.NodeField{Node: &ast.Binary{
				Operator: "+",
				Left:     ast.NodeField{Node: &ast.Identifier{Name: "a"}},
				Right:    ast.NodeField{Node: &ast.Identifier{Name: "b"}},
			}}},
		}}},
	}
	call := &ast.StaticMethodCall{
		ClassName:  "Console",
		MethodName: "WriteLine",
		Arguments: ast.NodeList{&ast.Call{
			Name: "add",
			Arguments: ast.NodeList{
				&ast.Number{Value: 2},
				&ast.Number{Value: 3},
			},
		}},
	}
	prog := &ast.Program{Statements: ast.NodeList{addFn, call}}
	text := compileIRText(t, prog)

	if !strings.Contains(text, "define int32 @add(a, b)") {
		t.Fatalf("expected a lowered add(a, b) function, got:\n%s", text)
	}
	if !strings.Contains(text, "CALL @add()") {
		t.Fatalf("expected a call to add, got:\n%s", text)
	}
	if !strings.Contains(text, "Console__WriteLine") {
		t.Fatalf("expected a Console__WriteLine call, got:\n%s", text)
	}
}

// TestForLoopLowersCondBodyIncrBlocks covers
// "for (var i = 0; i < 3; i = i+1) Console.WriteLine(i);" — a cond/body/incr
// block structure whose cond block ends in a BRANCH to the body or the exit,
// with incr jumping back to cond.
func TestForLoopLowersCondBodyIncrBlocks(t *testing.T) {
	forStmt := &ast.For{
		Init: ast.NodeField{Node: &ast.VariableDecl{Name: "i", Type: "int32", Value: ast.NodeField{Node: &ast.Number{Value: 0}}}},
		Cond: ast.NodeField{Node: &ast.Binary{
			Operator: "<",
			Left:     ast.NodeField{Node: &ast.Identifier{Name: "i"}},
			Right:    ast.NodeField{Node: &ast.Number{Value: 3}},
		}},
		Increment: ast.NodeField{Node: &ast.Assignment{
			Name: "i",
			Value: ast.NodeField{Node: &ast.Binary{
				Operator: "+",
				Left:     ast.NodeField{Node: &ast.Identifier{Name: "i"}},
				Right:    ast.NodeField{Node: &ast.Number{Value: 1}},
			}},
		}},
		Body: ast.NodeField{Node: &ast.StaticMethodCall{
			ClassName:  "Console",
			MethodName: "WriteLine",
			Arguments:  ast.NodeList{&ast.Identifier{Name: "i"}},
		}},
	}
	prog := &ast.Program{Statements: ast.NodeList{forStmt}}
	text := compileIRText(t, prog)

	if !strings.Contains(text, "BRANCH") {
		t.Fatalf("expected a BRANCH terminating the loop condition block, got:\n%s", text)
	}
	if !strings.Contains(text, "Console__WriteLine") {
		t.Fatalf("expected the loop body to call Console__WriteLine, got:\n%s", text)
	}
}

// TestArrayLiteralAndAccessLowerToPointerOps covers
// "var a = [10,20,30]; Console.WriteLine(a[1]);".
func TestArrayLiteralAndAccessLowerToPointerOps(t *testing.T) {
	decl := &ast.VariableDecl{
		Name:    "a",
		Type:    "int32",
		IsArray: true,
		Value: ast.NodeField{Node: &ast.ArrayLiteral{Elements: ast.NodeList{
			&ast.Number{Value: 10},
			&ast.Number{Value: 20},
			&ast.Number{Value: 30},
		}}},
	}
	call := &ast.StaticMethodCall{
		ClassName:  "Console",
		MethodName: "WriteLine",
		Arguments: ast.NodeList{&ast.ArrayAccess{
			Array: ast.NodeField{Node: &ast.Identifier{Name: "a"}},
			Index: ast.NodeField{Node: &ast.Number{Value: 1}},
		}},
	}
	prog := &ast.Program{Statements: ast.NodeList{decl, call}}
	text := compileIRText(t, prog)

	if !strings.Contains(text, "es_malloc") {
		t.Fatalf("expected the array literal to allocate storage via es_malloc, got:\n%s", text)
	}
	if !strings.Contains(text, "LOADPTR") {
		t.Fatalf("expected a[1] to lower to LOADPTR, got:\n%s", text)
	}
}

// TestClassFieldAccessLowersToLoadPtr covers
// "class C { public int x; public int get() { return this.x; } } var c = new C(); Console.WriteLine(c.get());",
// the class scenario without its `c.x = 7` field assignment, which the AST
// node set has no node for.
func TestClassFieldAccessLowersToLoadPtr(t *testing.T) {
	class := &ast.ClassDecl{
		Name: "C",
		Body: ast.NodeList{
			&ast.VariableDecl{Name: "x", Type: "int32"},
			&ast.FunctionDecl{
				Name:       "get",
				ReturnType: "int32",
				Body: ast.NodeField{Node: &ast.Block{Statements: ast.NodeList{
					&ast.Return{Value: ast.NodeField{Node: &ast.MemberAccess{
						Object:            ast.NodeField{Node: &ast.This{}},
						MemberName:        "x",
						ResolvedClassName: "C",
					}}},
				}}},
			},
		},
	}
	decl := &ast.VariableDecl{Name: "c", Type: "C", Value: ast.NodeField{Node: &ast.New{ClassName: "C"}}}
	write := &ast.Call{
		Name:   "get",
		Object: ast.NodeField{Node: &ast.Identifier{Name: "c"}},
	}
	call := &ast.StaticMethodCall{
		ClassName:  "Console",
		MethodName: "WriteLine",
		Arguments:  ast.NodeList{write},
	}
	prog := &ast.Program{Statements: ast.NodeList{class, decl, call}}
	text := compileIRText(t, prog)

	if !strings.Contains(text, "LOADPTR") {
		t.Fatalf("expected this.x to lower to LOADPTR, got:\n%s", text)
	}
	if !strings.Contains(text, "C__constructor") && !strings.Contains(text, "es_malloc") {
		t.Fatalf("expected `new C()` to allocate and construct, got:\n%s", text)
	}
}
