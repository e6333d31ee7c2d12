package ast

import (
	"encoding/json"
	"fmt"
)

// NodeField wraps a single polymorphic Node-valued struct field so it can
// be decoded from (and encoded to) a `{"type": "...", ...}` JSON document.
type NodeField struct {
	Node
}

// UnmarshalJSON decodes a single node, or accepts `null`/an empty document
// as "no node present" (e.g. an `if` with no `else`).
func (f *NodeField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || len(data) == 0 {
		f.Node = nil
		return nil
	}
	n, err := Decode(data)
	if err != nil {
		return err
	}
	f.Node = n
	return nil
}

// MarshalJSON round-trips a nil field back to `null`.
func (f NodeField) MarshalJSON() ([]byte, error) {
	return Encode(f.Node)
}

// Get returns the wrapped node, or nil.
func (f NodeField) Get() Node { return f.Node }

// NodeList wraps a slice of polymorphic Node values.
type NodeList []Node

// UnmarshalJSON decodes each element of a JSON array as a node.
func (l *NodeList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(NodeList, 0, len(raws))
	for _, raw := range raws {
		n, err := Decode(raw)
		if err != nil {
			return err
		}
		out = append(out, n)
	}
	*l = out
	return nil
}

// MarshalJSON encodes each element with its discriminator.
func (l NodeList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for _, n := range l {
		b, err := Encode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}

type envelope struct {
	Type Kind `json:"type"`
}

var constructors = map[Kind]func() Node{
	KindProgram:                func() Node { return &Program{} },
	KindFunctionDecl:           func() Node { return &FunctionDecl{} },
	KindStaticFunctionDecl:     func() Node { return &StaticFunctionDecl{} },
	KindVariableDecl:           func() Node { return &VariableDecl{} },
	KindStaticVariableDecl:     func() Node { return &StaticVariableDecl{} },
	KindAssignment:             func() Node { return &Assignment{} },
	KindArrayAssignment:        func() Node { return &ArrayAssignment{} },
	KindCompoundAssignment:     func() Node { return &CompoundAssignment{} },
	KindArrayCompoundAssignment: func() Node { return &ArrayCompoundAssignment{} },
	KindIf:                     func() Node { return &If{} },
	KindWhile:                  func() Node { return &While{} },
	KindFor:                    func() Node { return &For{} },
	KindForEach:                func() Node { return &ForEach{} },
	KindReturn:                 func() Node { return &Return{} },
	KindPrint:                  func() Node { return &Print{} },
	KindBinary:                 func() Node { return &Binary{} },
	KindUnary:                  func() Node { return &Unary{} },
	KindTernary:                func() Node { return &Ternary{} },
	KindIdentifier:             func() Node { return &Identifier{} },
	KindNumber:                 func() Node { return &Number{} },
	KindString:                 func() Node { return &String{} },
	KindBoolean:                func() Node { return &Boolean{} },
	KindCall:                   func() Node { return &Call{} },
	KindBlock:                  func() Node { return &Block{} },
	KindArrayLiteral:           func() Node { return &ArrayLiteral{} },
	KindNew:                    func() Node { return &New{} },
	KindNewArray:               func() Node { return &NewArray{} },
	KindNamespaceDecl:          func() Node { return &NamespaceDecl{} },
	KindClassDecl:              func() Node { return &ClassDecl{} },
	KindThis:                   func() Node { return &This{} },
	KindMemberAccess:           func() Node { return &MemberAccess{} },
	KindAccessModifier:         func() Node { return &AccessModifier{} },
	KindConstructorDecl:        func() Node { return &ConstructorDecl{} },
	KindDestructorDecl:         func() Node { return &DestructorDecl{} },
	KindTry:                    func() Node { return &Try{} },
	KindCatch:                  func() Node { return &Catch{} },
	KindFinally:                func() Node { return &Finally{} },
	KindThrow:                  func() Node { return &Throw{} },
	KindTemplateDecl:           func() Node { return &TemplateDecl{} },
	KindTemplateParam:          func() Node { return &TemplateParam{} },
	KindGenericType:            func() Node { return &GenericType{} },
	KindGenericConstraint:      func() Node { return &GenericConstraint{} },
	KindStaticMethodCall:       func() Node { return &StaticMethodCall{} },
	KindArrayAccess:            func() Node { return &ArrayAccess{} },
	KindSwitch:                 func() Node { return &Switch{} },
	KindCase:                   func() Node { return &Case{} },
	KindDefault:                func() Node { return &Default{} },
	KindBreak:                  func() Node { return &Break{} },
	KindContinue:               func() Node { return &Continue{} },
	KindDelete:                 func() Node { return &Delete{} },
	KindUsing:                  func() Node { return &Using{} },
	KindNamespaceImport:        func() Node { return &NamespaceImport{} },
	KindPropertyDecl:           func() Node { return &PropertyDecl{} },
	KindPropertyGetter:         func() Node { return &PropertyGetter{} },
	KindPropertySetter:         func() Node { return &PropertySetter{} },
	KindLambda:                 func() Node { return &Lambda{} },
	KindLINQQuery:              func() Node { return &LINQQuery{} },
	KindLINQFrom:               func() Node { return &LINQFrom{} },
	KindLINQWhere:              func() Node { return &LINQWhere{} },
	KindLINQSelect:             func() Node { return &LINQSelect{} },
	KindLINQOrderBy:            func() Node { return &LINQOrderBy{} },
	KindLINQJoin:               func() Node { return &LINQJoin{} },
	KindAttribute:              func() Node { return &Attribute{} },
	KindAttributeList:          func() Node { return &AttributeList{} },
}

// Decode parses a single `{"type": "...", ...}` JSON document into its
// concrete Node type.
func Decode(data []byte) (Node, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("ast: decoding node envelope: %w", err)
	}
	ctor, ok := constructors[env.Type]
	if !ok {
		return nil, fmt.Errorf("ast: unknown node type %q", env.Type)
	}
	n := ctor()
	if err := json.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("ast: decoding %s: %w", env.Type, err)
	}
	return n, nil
}

// Encode is Decode's inverse: it serializes n back into the
// `{"type": "...", ...}` wire document the rest of this package expects,
// injecting the "type" discriminator from n.NodeKind() since none of the
// concrete node structs carry that field themselves. A nil Node encodes
// to the JSON `null`, matching NodeField's "no node present" convention.
func Encode(n Node) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("ast: encoding %s: %w", n.NodeKind(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("ast: encoding %s: %w", n.NodeKind(), err)
	}
	typeTag, err := json.Marshal(n.NodeKind())
	if err != nil {
		return nil, err
	}
	fields["type"] = typeTag
	return json.Marshal(fields)
}

// DecodeProgram decodes a top-level program document.
func DecodeProgram(data []byte) (*Program, error) {
	n, err := Decode(data)
	if err != nil {
		return nil, err
	}
	prog, ok := n.(*Program)
	if !ok {
		return nil, fmt.Errorf("ast: expected Program at top level, got %s", n.NodeKind())
	}
	return prog, nil
}
