package lowering_test

import (
	"testing"

	"escomp/internal/ast"
	"escomp/internal/diagnostics"
	"escomp/internal/ir"
	"escomp/internal/lowering"
	"escomp/internal/typecheck"
)

func checkAndLower(t *testing.T, prog *ast.Program) *ir.Module {
	t.Helper()
	checker := typecheck.New()
	diags := checker.Check(prog)
	if !diagnostics.Success(diags) {
		t.Fatalf("unexpected type-check diagnostics: %v", diags)
	}
	mod, err := lowering.Lower(prog, checker)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	return mod
}

// TestArrayAccessLowersToLoadPtrAtComputedOffset is the spec.md §4.5
// contract: `arr[i]` lowers to LOADPTR(arr + i*8, 0), not a runtime
// array_get call (array_get is reserved for foreach lowering).
func TestArrayAccessLowersToLoadPtrAtComputedOffset(t *testing.T) {
	prog := &ast.Program{
		Statements: ast.NodeList{
			&ast.VariableDecl{
				Name: "a", Type: "int32", IsArray: true,
				Value: ast.NodeField{Node: &ast.ArrayLiteral{Elements: ast.NodeList{
					&ast.Number{Value: 10}, &ast.Number{Value: 20}, &ast.Number{Value: 30},
				}}},
			},
			&ast.VariableDecl{
				Name: "x", Type: "int32",
				Value: ast.NodeField{Node: &ast.ArrayAccess{
					Array: ast.NodeField{Node: &ast.Identifier{Name: "a"}},
					Index: ast.NodeField{Node: &ast.Number{Value: 1}},
				}},
			},
		},
	}
	mod := checkAndLower(t, prog)
	main := mod.FindFunction("main")
	if main == nil {
		t.Fatalf("expected an implicit main function")
	}

	var foundLoadPtr, foundArrayGetCall bool
	for _, blk := range main.Blocks {
		for _, inst := range blk.Insts {
			if inst.Opcode == ir.OpLoadPtr {
				foundLoadPtr = true
			}
			if inst.Opcode == ir.OpCall && len(inst.Operands) > 0 && inst.Operands[0].Name == "array_get" {
				foundArrayGetCall = true
			}
		}
	}
	if !foundLoadPtr {
		t.Fatalf("expected arr[i] to lower to a LOADPTR instruction")
	}
	if foundArrayGetCall {
		t.Fatalf("direct array indexing must not call the array_get ABI helper (reserved for foreach)")
	}
}

// TestStringConcatClassifiesPlusAsStrcat covers the "+" string-vs-numeric
// classification rule: a concatenation with a string literal operand must
// lower to STRCAT, and a non-literal numeric operand must be converted
// first via INT_TO_STRING.
func TestStringConcatClassifiesPlusAsStrcat(t *testing.T) {
	prog := &ast.Program{
		Statements: ast.NodeList{
			&ast.VariableDecl{
				Name: "n", Type: "int32",
				Value: ast.NodeField{Node: &ast.Number{Value: 5}},
			},
			&ast.VariableDecl{
				Name: "s", Type: "string",
				Value: ast.NodeField{Node: &ast.Binary{
					Operator: "+",
					Left:     ast.NodeField{Node: &ast.String{Value: "count: "}},
					Right:    ast.NodeField{Node: &ast.Identifier{Name: "n"}},
				}},
			},
		},
	}
	mod := checkAndLower(t, prog)
	main := mod.FindFunction("main")
	var foundStrcat, foundIntToString bool
	for _, blk := range main.Blocks {
		for _, inst := range blk.Insts {
			switch inst.Opcode {
			case ir.OpStrcat:
				foundStrcat = true
			case ir.OpIntToString:
				foundIntToString = true
			}
		}
	}
	if !foundStrcat {
		t.Fatalf("expected \"+\" with a string operand to lower to STRCAT")
	}
	if !foundIntToString {
		t.Fatalf("expected the numeric operand to be converted via INT_TO_STRING")
	}
}

// TestUnreachableFunctionTailGetsImplicitReturn is the "Return defaulting"
// rule: a function whose body does not return on all paths gets an
// implicit `return 0` appended.
func TestUnreachableFunctionTailGetsImplicitReturn(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "noop", ReturnType: "int32",
		Body: ast.NodeField{Node: &ast.Block{Statements: ast.NodeList{}}},
	}
	prog := &ast.Program{Statements: ast.NodeList{fn}}
	mod := checkAndLower(t, prog)

	noop := mod.FindFunction("noop")
	if noop == nil {
		t.Fatalf("expected a lowered noop function")
	}
	term := noop.Entry.Terminator()
	if term == nil || term.Opcode != ir.OpReturn {
		t.Fatalf("expected an implicit RETURN terminator, got %+v", term)
	}
}
