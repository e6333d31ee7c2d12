package ir

import "escomp/internal/paramtable"

// ForwardDecl is the sentinel ParamCount value marking a function that has
// been declared but not yet given a body, per spec.md §3's forward-declaration
// convention.
const ForwardDecl = -1

// Function is one IR function: its parameter table, declared locals, its
// basic block list, and bookkeeping the backends need (stack size,
// whether it contains calls).
type Function struct {
	Name       string
	ReturnType string

	Params     *paramtable.Table
	ParamOrder []string // parameter names in declaration order, for printing/codegen
	ParamCount int // ForwardDecl (-1) until a body is attached

	Locals []string // declared locals, in declaration order

	Entry *BasicBlock
	Exit  *BasicBlock

	Blocks    []*BasicBlock
	blockNext int

	StackSize int
	HasCalls  bool

	IsClassMethod bool
	ClassName     string

	Next *Function // intrusive link into the module's function list
}

func NewFunction(name, returnType string) *Function {
	return &Function{
		Name:       name,
		ReturnType: returnType,
		Params:     paramtable.New(4),
		ParamCount: ForwardDecl,
	}
}

// NewBlock allocates and appends a new block to f's block list, assigning
// the next sequential id.
func (f *Function) NewBlock(label string) *BasicBlock {
	b := NewBlock(f.blockNext, label)
	f.blockNext++
	f.Blocks = append(f.Blocks, b)
	if f.Entry == nil {
		f.Entry = b
	}
	return b
}

// IsForwardDecl reports whether f has been declared but has no body yet.
func (f *Function) IsForwardDecl() bool { return f.ParamCount == ForwardDecl }

// AddParam registers a parameter both in the lookup table and the
// sequential param count's parameter-table invariant.
func (f *Function) AddParam(name, typ string) {
	if f.ParamCount == ForwardDecl {
		f.ParamCount = 0
	}
	f.Params.Add(name, typ, f.ParamCount)
	f.ParamOrder = append(f.ParamOrder, name)
	f.ParamCount++
}

// AddLocal records a declared local variable name.
func (f *Function) AddLocal(name string) {
	f.Locals = append(f.Locals, name)
}
