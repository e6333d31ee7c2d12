package typecheck_test

import (
	"testing"

	"escomp/internal/ast"
	"escomp/internal/diagnostics"
	"escomp/internal/typecheck"
)

func classC() *ast.ClassDecl {
	return &ast.ClassDecl{
		Name: "C",
		Body: ast.NodeList{
			&ast.VariableDecl{Name: "x", Type: "int32"},
			&ast.FunctionDecl{
				Name:       "get",
				ReturnType: "int32",
				Body: ast.NodeField{Node: &ast.Block{Statements: ast.NodeList{
					&ast.Return{Value: ast.NodeField{Node: &ast.MemberAccess{
						Object:     ast.NodeField{Node: &ast.This{}},
						MemberName: "x",
					}}},
				}}},
			},
		},
	}
}

// TestMemberAccessStashesResolvedClassName is spec.md §4.4's contract: the
// checker must annotate member-access nodes with their resolved class name
// so lowering can mangle the field offset lookup without re-resolving.
func TestMemberAccessStashesResolvedClassName(t *testing.T) {
	class := classC()
	decl := &ast.VariableDecl{Name: "c", Type: "C", Value: ast.NodeField{Node: &ast.New{ClassName: "C"}}}
	access := &ast.MemberAccess{Object: ast.NodeField{Node: &ast.Identifier{Name: "c"}}, MemberName: "x"}
	prog := &ast.Program{Statements: ast.NodeList{class, decl, access}}

	checker := typecheck.New()
	diags := checker.Check(prog)
	if !diagnostics.Success(diags) {
		t.Fatalf("expected no diagnostics, got: %v", diags)
	}
	if access.ResolvedClassName != "C" {
		t.Fatalf("expected MemberAccess.ResolvedClassName to be stashed as %q, got %q", "C", access.ResolvedClassName)
	}
}

// TestMethodCallStashesResolvedClassName mirrors the above for a call
// through an object reference (`c.get()`).
func TestMethodCallStashesResolvedClassName(t *testing.T) {
	class := classC()
	decl := &ast.VariableDecl{Name: "c", Type: "C", Value: ast.NodeField{Node: &ast.New{ClassName: "C"}}}
	call := &ast.Call{Name: "get", Object: ast.NodeField{Node: &ast.Identifier{Name: "c"}}}
	prog := &ast.Program{Statements: ast.NodeList{class, decl, call}}

	checker := typecheck.New()
	diags := checker.Check(prog)
	if !diagnostics.Success(diags) {
		t.Fatalf("expected no diagnostics, got: %v", diags)
	}
	if call.ResolvedClassName != "C" {
		t.Fatalf("expected Call.ResolvedClassName to be stashed as %q, got %q", "C", call.ResolvedClassName)
	}
}

// TestForwardReferenceResolvesOutOfOrder is the declarations-pass
// contract: a function may be called before its textual declaration.
func TestForwardReferenceResolvesOutOfOrder(t *testing.T) {
	call := &ast.Call{Name: "later", Arguments: ast.NodeList{}}
	decl := &ast.FunctionDecl{
		Name:       "later",
		ReturnType: "int32",
		Body: ast.NodeField{Node: &ast.Block{Statements: ast.NodeList{
			&ast.Return{Value: ast.NodeField{Node: &ast.Number{Value: 1}}},
		}}},
	}
	prog := &ast.Program{Statements: ast.NodeList{call, decl}}

	checker := typecheck.New()
	diags := checker.Check(prog)
	if !diagnostics.Success(diags) {
		t.Fatalf("expected a forward call to resolve cleanly, got diagnostics: %v", diags)
	}
}

// TestUndeclaredCallIsReportedButCheckingContinues verifies the "checking
// never aborts on a single error" discipline: an undeclared call is
// recorded while a subsequent, valid statement is still checked.
func TestUndeclaredCallIsReportedButCheckingContinues(t *testing.T) {
	prog := &ast.Program{
		Statements: ast.NodeList{
			&ast.Call{Name: "not_declared", Arguments: ast.NodeList{}},
			&ast.VariableDecl{Name: "x", Type: "int32", Value: ast.NodeField{Node: &ast.Number{Value: 1}}},
		},
	}
	checker := typecheck.New()
	diags := checker.Check(prog)
	if diagnostics.Success(diags) {
		t.Fatalf("expected an error for the undeclared call")
	}
	if n := diagnostics.ErrorCount(diags); n != 1 {
		t.Fatalf("expected exactly 1 error diagnostic, got %d: %v", n, diags)
	}
}

// TestDuplicateClassMemberIsAnError covers the class-body contract:
// duplicate member names are rejected.
func TestDuplicateClassMemberIsAnError(t *testing.T) {
	class := &ast.ClassDecl{
		Name: "Dup",
		Body: ast.NodeList{
			&ast.VariableDecl{Name: "x", Type: "int32"},
			&ast.VariableDecl{Name: "x", Type: "int32"},
		},
	}
	prog := &ast.Program{Statements: ast.NodeList{class}}
	checker := typecheck.New()
	diags := checker.Check(prog)
	if diagnostics.Success(diags) {
		t.Fatalf("expected an error for a duplicate class member")
	}
}
