package typecheck

import "escomp/internal/types"

// consoleOverloads resolves Console.WriteLine/Write against the argument
// types actually presented, mirroring the ABI's ConsoleWriteLine vs.
// ConsoleWriteLineInt split (internal/abi). At most one argument is
// accepted, and it must be a string, numeric or bool value; anything else
// is a type error raised by the caller.
func consoleOverloads(method string, argTypes []*types.Type) (accepts bool) {
	if method != "WriteLine" && method != "Write" {
		return false
	}
	if len(argTypes) > 1 {
		return false
	}
	if len(argTypes) == 0 {
		return true
	}
	t := argTypes[0]
	return t.Kind == types.KindString || types.IsNumeric(t.Kind) || t.Kind == types.KindBool
}

// isConsoleCall reports whether a static-method call targets the builtin
// Console class, which has no ClassDecl of its own.
func isConsoleCall(className string) bool {
	return className == "Console"
}
