package ir

import "fmt"

// ValueKind discriminates the Value tagged sum.
type ValueKind int

const (
	ValueVoid ValueKind = iota
	ValueImmediate
	ValueNamed
	ValueTemp
	ValueArg
	ValueStringConst
	ValueFunction
)

// Value is a tagged sum: Void, Immediate(f64), Named(string), Temp(i32),
// Arg(i32), StringConst(i32), Function(string). Only the field matching
// Kind is meaningful.
type Value struct {
	Kind  ValueKind
	Imm   float64
	Name  string // Named or Function
	Index int    // Temp, Arg, or StringConst index
}

func Void() Value                 { return Value{Kind: ValueVoid} }
func Immediate(v float64) Value   { return Value{Kind: ValueImmediate, Imm: v} }
func Named(name string) Value     { return Value{Kind: ValueNamed, Name: name} }
func Temp(index int) Value        { return Value{Kind: ValueTemp, Index: index} }
func Arg(index int) Value         { return Value{Kind: ValueArg, Index: index} }
func StringConst(index int) Value { return Value{Kind: ValueStringConst, Index: index} }
func FunctionRef(name string) Value { return Value{Kind: ValueFunction, Name: name} }

func (v Value) IsVoid() bool      { return v.Kind == ValueVoid }
func (v Value) IsImmediate() bool { return v.Kind == ValueImmediate }

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueImmediate:
		return v.Imm == o.Imm
	case ValueNamed, ValueFunction:
		return v.Name == o.Name
	case ValueTemp, ValueArg, ValueStringConst:
		return v.Index == o.Index
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueVoid:
		return "void"
	case ValueImmediate:
		return fmt.Sprintf("%g", v.Imm)
	case ValueNamed:
		return "@" + v.Name
	case ValueTemp:
		return fmt.Sprintf("%%%d", v.Index)
	case ValueArg:
		return fmt.Sprintf("%%arg%d", v.Index)
	case ValueStringConst:
		return fmt.Sprintf("$str%d", v.Index)
	case ValueFunction:
		return "@" + v.Name + "()"
	default:
		return "?"
	}
}
