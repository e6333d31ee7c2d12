package ast_test

import (
	"testing"

	"escomp/internal/ast"
)

// TestEncodeDecodeRoundTrip exercises the Program->JSON->Program path a
// driver's build cache / watch mode never needs, but an external AST
// producer round-tripping through this package's wire format does.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	prog := &ast.Program{
		Statements: ast.NodeList{
			&ast.StaticMethodCall{
				ClassName:  "Console",
				MethodName: "WriteLine",
				Arguments:  ast.NodeList{&ast.String{Value: "hi"}},
			},
			&ast.VariableDecl{
				Name: "x",
				Type: "int32",
				Value: ast.NodeField{Node: &ast.Binary{
					Operator: "+",
					Left:     ast.NodeField{Node: &ast.Number{Value: 2}},
					Right:    ast.NodeField{Node: &ast.Number{Value: 3}},
				}},
			},
		},
	}

	data, err := ast.Encode(prog)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := ast.DecodeProgram(data)
	if err != nil {
		t.Fatalf("DecodeProgram: %v", err)
	}

	if len(decoded.Statements) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(decoded.Statements))
	}

	call, ok := decoded.Statements[0].(*ast.StaticMethodCall)
	if !ok {
		t.Fatalf("expected *ast.StaticMethodCall, got %T", decoded.Statements[0])
	}
	if call.ClassName != "Console" || call.MethodName != "WriteLine" {
		t.Fatalf("unexpected static method call: %+v", call)
	}
	arg, ok := call.Arguments[0].(*ast.String)
	if !ok || arg.Value != "hi" {
		t.Fatalf("expected string argument \"hi\", got %+v", call.Arguments)
	}

	decl, ok := decoded.Statements[1].(*ast.VariableDecl)
	if !ok {
		t.Fatalf("expected *ast.VariableDecl, got %T", decoded.Statements[1])
	}
	bin, ok := decl.Value.Get().(*ast.Binary)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected a binary \"+\" initializer, got %+v", decl.Value.Get())
	}
}

func TestDecodeUnknownKindFails(t *testing.T) {
	if _, err := ast.Decode([]byte(`{"type":"NotARealNode"}`)); err == nil {
		t.Fatalf("expected an error decoding an unknown node kind")
	}
}

func TestNodeFieldRoundTripsNil(t *testing.T) {
	var f ast.NodeField
	data, err := f.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("expected a nil NodeField to marshal to null, got %s", data)
	}
}
