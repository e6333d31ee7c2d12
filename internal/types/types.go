// Package types implements the E# type system: a tagged sum (Kind +
// payload fields standing in for the original C tagged union) with the
// compatibility and assignability rules the type checker applies.
package types

import "fmt"

// Kind discriminates the type sum.
type Kind int

const (
	KindVoid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindPointer
	KindArray
	KindFunction
	KindClass
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUInt8:
		return "uint8"
	case KindUInt16:
		return "uint16"
	case KindUInt32:
		return "uint32"
	case KindUInt64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// integerKinds/floatKinds classify the eight integer kinds and two float
// kinds for the "any numeric <-> any numeric" compatibility rule.
var integerKinds = map[Kind]bool{
	KindInt8: true, KindInt16: true, KindInt32: true, KindInt64: true,
	KindUInt8: true, KindUInt16: true, KindUInt32: true, KindUInt64: true,
}

var floatKinds = map[Kind]bool{
	KindFloat32: true, KindFloat64: true,
}

func IsNumeric(k Kind) bool { return integerKinds[k] || floatKinds[k] }
func IsInteger(k Kind) bool { return integerKinds[k] }
func IsFloat(k Kind) bool   { return floatKinds[k] }

// widths gives the bit width of every numeric kind, used by Assignable's
// narrowing check.
var widths = map[Kind]int{
	KindInt8: 8, KindUInt8: 8,
	KindInt16: 16, KindUInt16: 16,
	KindInt32: 32, KindUInt32: 32,
	KindFloat32: 32,
	KindInt64: 64, KindUInt64: 64, KindFloat64: 64,
}

// Type is the sum type. Only the fields relevant to Kind are meaningful:
// Elem for Pointer/Array, ArraySize for Array, Params/Return for
// Function, Class for Class.
type Type struct {
	Kind      Kind
	Elem      *Type
	ArraySize int
	Params    []*Type
	Return    *Type
	Class     *ClassInfo
}

func Void() *Type    { return &Type{Kind: KindVoid} }
func Bool() *Type     { return &Type{Kind: KindBool} }
func StringT() *Type  { return &Type{Kind: KindString} }
func Unknown() *Type  { return &Type{Kind: KindUnknown} }
func Int32() *Type    { return &Type{Kind: KindInt32} }
func Float64() *Type  { return &Type{Kind: KindFloat64} }

func Numeric(k Kind) *Type { return &Type{Kind: k} }

func Pointer(elem *Type) *Type { return &Type{Kind: KindPointer, Elem: elem} }
func Array(elem *Type, size int) *Type {
	return &Type{Kind: KindArray, Elem: elem, ArraySize: size}
}
func Function(ret *Type, params []*Type) *Type {
	return &Type{Kind: KindFunction, Return: ret, Params: params}
}
func Class(info *ClassInfo) *Type { return &Type{Kind: KindClass, Class: info} }

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPointer:
		return "ptr<" + t.Elem.String() + ">"
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.ArraySize)
	case KindFunction:
		return "function"
	case KindClass:
		if t.Class != nil {
			return t.Class.Name
		}
		return "class"
	default:
		return t.Kind.String()
	}
}

// MemberKind discriminates the shape of a class member.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberCtor
	MemberDtor
	MemberProperty
)

// Access is a member's visibility.
type Access int

const (
	AccessPublic Access = iota
	AccessPrivate
	AccessProtected
)

// Member is one tagged entry in a ClassInfo's member list: shared header
// (Name, Kind, Access, IsStatic, Type) plus getter/setter peers for
// properties.
type Member struct {
	Name     string
	Kind     MemberKind
	Access   Access
	IsStatic bool
	Type     *Type

	// Property-only: synthetic getter/setter method entries.
	Getter *Member
	Setter *Member
}

// ClassInfo owns a class's member list and a per-class member scope keyed
// by member name for O(1) resolution.
type ClassInfo struct {
	Name      string
	Base      *ClassInfo
	Members   []*Member
	byName    map[string]*Member
}

func NewClassInfo(name string) *ClassInfo {
	return &ClassInfo{Name: name, byName: make(map[string]*Member)}
}

// AddMember registers m, returning false if the name is already taken
// (duplicate member names are a type-checker error).
func (c *ClassInfo) AddMember(m *Member) bool {
	if _, exists := c.byName[m.Name]; exists {
		return false
	}
	c.Members = append(c.Members, m)
	c.byName[m.Name] = m
	return true
}

// FindMember looks up a member by name in this class, then its base chain.
func (c *ClassInfo) FindMember(name string) *Member {
	if m, ok := c.byName[name]; ok {
		return m
	}
	if c.Base != nil {
		return c.Base.FindMember(name)
	}
	return nil
}

// Fields returns the class's declared (non-static) fields in declaration
// order.
func (c *ClassInfo) Fields() []*Member {
	var fields []*Member
	for _, m := range c.Members {
		if m.Kind == MemberField && !m.IsStatic {
			fields = append(fields, m)
		}
	}
	return fields
}

// Compatible reports whether a and b are assignment-compatible.
func Compatible(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind == KindUnknown || b.Kind == KindUnknown {
		return true
	}
	if a.Kind == b.Kind {
		switch a.Kind {
		case KindPointer:
			return Compatible(a.Elem, b.Elem)
		case KindClass:
			return a.Class == b.Class || (a.Class != nil && b.Class != nil && a.Class.Name == b.Class.Name)
		default:
			return true
		}
	}
	if IsNumeric(a.Kind) && IsNumeric(b.Kind) {
		return true
	}
	if a.Kind == KindString && b.Kind == KindArray && b.Elem != nil && b.Elem.Kind == KindInt8 {
		return true
	}
	if b.Kind == KindString && a.Kind == KindArray && a.Elem != nil && a.Elem.Kind == KindInt8 {
		return true
	}
	if a.Kind == KindPointer && b.Kind == KindVoid {
		return true
	}
	if b.Kind == KindPointer && a.Kind == KindVoid {
		return true
	}
	if a.Kind == KindPointer && b.Kind == KindClass && a.Elem != nil && a.Elem.Kind == KindClass {
		return Compatible(a.Elem, b)
	}
	if b.Kind == KindPointer && a.Kind == KindClass && b.Elem != nil && b.Elem.Kind == KindClass {
		return Compatible(a, b.Elem)
	}
	return false
}

// Assignable is stricter than Compatible for numerics: narrowing from
// float to int, or to a smaller width, is rejected; widening and
// same-width conversions are allowed.
func Assignable(target, value *Type) bool {
	if target == nil || value == nil {
		return false
	}
	if target.Kind == KindUnknown || value.Kind == KindUnknown {
		return true
	}
	if IsNumeric(target.Kind) && IsNumeric(value.Kind) {
		if IsFloat(value.Kind) && IsInteger(target.Kind) {
			return false
		}
		return widths[value.Kind] <= widths[target.Kind]
	}
	// Pointer(Class(C)) <-> Class(C) assignability (class values are
	// implicit pointers once constructed via `new`).
	if target.Kind == KindClass && value.Kind == KindPointer && value.Elem != nil && value.Elem.Kind == KindClass {
		return Compatible(target, value.Elem)
	}
	if target.Kind == KindPointer && target.Elem != nil && target.Elem.Kind == KindClass && value.Kind == KindClass {
		return Compatible(target.Elem, value)
	}
	return Compatible(target, value)
}
