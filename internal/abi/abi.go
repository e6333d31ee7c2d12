// Package abi documents the runtime ABI that generated code calls into
//. The runtime's own implementation is explicitly out of
// scope; this package exists so the lowering pass and the backends share
// one source of truth for symbol names and signatures instead of
// stringly-typed literals scattered across both.
package abi

// Symbol names for the runtime functions generated code calls.
const (
	Malloc             = "es_malloc"
	Free               = "es_free"
	Panic              = "es_panic"
	ConsoleWriteLine    = "Console__WriteLine"
	ConsoleWriteLineInt = "Console__WriteLineInt"
	ConsoleWrite        = "Console__Write"
	ConsoleWriteInt     = "Console__WriteInt"
	ArraySize           = "array_size"
	ArrayGet            = "array_get"
)

// Func documents one runtime entry point's signature for reference by
// tooling (diagnostics, -dump-ir headers); it carries no behavior.
type Func struct {
	Name    string
	Params  []string
	Returns string
}

// Table is the complete ABI surface consumed by generated code.
var Table = []Func{
	{Name: Malloc, Params: []string{"i64"}, Returns: "ptr"},
	{Name: Free, Params: []string{"ptr"}, Returns: "void"},
	{Name: Panic, Params: []string{"ptr"}, Returns: "void"},
	{Name: ConsoleWriteLine, Params: []string{"ptr"}, Returns: "void"},
	{Name: ConsoleWriteLineInt, Params: []string{"i32"}, Returns: "void"},
	{Name: ConsoleWrite, Params: []string{"ptr"}, Returns: "void"},
	{Name: ConsoleWriteInt, Params: []string{"i32"}, Returns: "void"},
	{Name: ArraySize, Params: []string{"ptr"}, Returns: "i32"},
	{Name: ArrayGet, Params: []string{"ptr", "i32"}, Returns: "i64"},
}
