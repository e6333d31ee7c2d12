// Package lowering walks the checked AST and emits internal/ir via
// internal/irbuilder, one recursive-descent method per statement/
// expression kind. Grounded on the teacher's
// internal/compiler/stmt_compiler.go, which follows the identical shape:
// one Visit method per statement kind, emitting into a shared code
// builder, tracking the current function/locals as it goes.
package lowering

import (
	"fmt"

	"escomp/internal/ast"
	"escomp/internal/ir"
	"escomp/internal/irbuilder"
	"escomp/internal/typecheck"
	"escomp/internal/types"
)

// Lowerer holds the shared state threaded through every lowering method:
// the builder doing the actual IR construction (including the class
// layouts registerClassLayouts computes) and the checker supplying the
// function signatures and class information derived during type checking.
type Lowerer struct {
	b       *irbuilder.Builder
	checker *typecheck.Checker

	// resultCounter numbers the synthetic result_N locals ternaries lower
	// into.
	resultCounter int

	currentClass string

	// staticInits collects class static-field initializers discovered
	// while lowering class bodies; they run once, at the head of `main`,
	// before any other top-level code touches them.
	staticInits []staticInit
}

type staticInit struct {
	name  string
	value ast.Node
}

// Lower type-checks-assumed prog (the caller must have already run
// typecheck.Checker.Check and confirmed diagnostics.Success) into a
// Module.
func Lower(prog *ast.Program, checker *typecheck.Checker) (*ir.Module, error) {
	l := &Lowerer{b: irbuilder.New(), checker: checker}
	l.registerClassLayouts(prog.Statements)
	mainStmts := l.collectTopLevelStmts(prog.Statements)
	l.lowerTopLevel(prog.Statements)

	if l.b.Module.FindFunction("main") == nil {
		if len(mainStmts) > 0 {
			l.lowerImplicitMain(mainStmts)
		} else {
			l.synthesizeEmptyMain()
		}
	}
	l.runStaticInits()
	return l.b.Module, nil
}

// collectTopLevelStmts gathers the bare statements among prog's top-level
// nodes — the ones that are neither function, class, nor namespace
// declarations — in source order, descending into namespace bodies.
// : these are gathered into an implicit main function;
// declarations are emitted first (via lowerTopLevel) so the gathered
// statements can forward-reference them.
func (l *Lowerer) collectTopLevelStmts(stmts ast.NodeList) []ast.Node {
	var out []ast.Node
	for _, n := range stmts {
		switch decl := n.(type) {
		case *ast.FunctionDecl, *ast.StaticFunctionDecl, *ast.ClassDecl:
			// contributes no implicit-main code of its own
		case *ast.NamespaceDecl:
			if blk, ok := decl.Body.Get().(*ast.Block); ok {
				out = append(out, l.collectTopLevelStmts(blk.Statements)...)
			}
		default:
			out = append(out, n)
		}
	}
	return out
}

// lowerImplicitMain lowers the bare top-level statements gathered by
// collectTopLevelStmts into a synthetic `main` function, in source order.
func (l *Lowerer) lowerImplicitMain(stmts []ast.Node) {
	fn := l.b.CreateFunction("main", "int32")
	fn.ParamCount = 0
	l.b.ResetTempCounter()
	entry := l.b.CreateBlock("entry")
	l.b.SetCurrentBlock(entry)
	l.b.PushScope()
	for _, s := range stmts {
		l.lowerStmt(s)
	}
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Return(l.b.Imm(0))
	}
	l.b.PopScope()
	l.b.SetEntry(fn)
}

// synthesizeEmptyMain covers the (rare, but legal) case of a program
// with no explicit main: the driver still needs an entry point that
// returns 0.
func (l *Lowerer) synthesizeEmptyMain() {
	fn := l.b.CreateFunction("main", "int32")
	fn.ParamCount = 0
	l.b.ResetTempCounter()
	entry := l.b.CreateBlock("entry")
	l.b.SetCurrentBlock(entry)
	l.b.Return(l.b.Imm(0))
	l.b.SetEntry(fn)
}

// runStaticInits splices the collected class static-field initializers
// into a fresh leading block on `main`, executed before the rest of
// main's body (the implicit program-entry semantics: static
// state must exist before any statement can observe it).
func (l *Lowerer) runStaticInits() {
	if len(l.staticInits) == 0 {
		return
	}
	main := l.b.Module.FindFunction("main")
	if main == nil || main.Entry == nil {
		return
	}

	initBlk := ir.NewBlock(-1, "static_init")
	l.b.CurrentFunction = main
	l.b.SetCurrentBlock(initBlk)
	for _, init := range l.staticInits {
		l.b.Store(init.name, l.lowerExpr(init.value))
	}

	main.Entry.SetInsts(append(initBlk.Insts, main.Entry.Insts...))
}

func (l *Lowerer) lowerTopLevel(stmts ast.NodeList) {
	for _, n := range stmts {
		switch decl := n.(type) {
		case *ast.FunctionDecl:
			l.lowerFunction(decl.Name, decl.Params, decl.ReturnType, decl.Body, "")
		case *ast.StaticFunctionDecl:
			l.lowerFunction(decl.Name, decl.Params, decl.ReturnType, decl.Body, "")
		case *ast.ClassDecl:
			l.lowerClass(decl)
		case *ast.NamespaceDecl:
			if blk, ok := decl.Body.Get().(*ast.Block); ok {
				l.lowerTopLevel(blk.Statements)
			}
		}
	}
}

func (l *Lowerer) lowerFunction(name string, params []ast.Param, returnType string, body ast.NodeField, className string) {
	fullName := name
	if className != "" {
		fullName = className + "." + name
	}
	fn := l.b.CreateFunction(fullName, returnType)
	l.b.ResetTempCounter()
	l.resultCounter = 0
	prevClass := l.currentClass
	l.currentClass = className

	if className != "" {
		fn.AddParam("this", "ptr<"+className+">")
	}
	for _, p := range params {
		fn.AddParam(p.Name, p.Type)
	}
	if fn.ParamCount == ir.ForwardDecl {
		// A function with a body is never left as a forward
		// declaration, whether or not it has parameters.
		fn.ParamCount = 0
	}

	entry := l.b.CreateBlock("entry")
	l.b.SetCurrentBlock(entry)
	l.b.PushScope()

	if className != "" {
		l.b.Declare("this")
	}
	for _, p := range params {
		l.b.Declare(p.Name)
	}

	if blk, ok := body.Get().(*ast.Block); ok {
		l.lowerBlock(blk)
	}

	// Implicit `return 0`/`return void` default at fallthrough: every
	// block must end in a terminator.
	if l.b.CurrentBlock.Terminator() == nil {
		if returnType == "void" || returnType == "" {
			l.b.Return(ir.Void())
		} else {
			l.b.Return(l.b.Imm(0))
		}
	}

	l.b.PopScope()
	l.currentClass = prevClass

	if fullName == "main" {
		l.b.SetEntry(fn)
	}
}

func (l *Lowerer) lowerBlock(blk *ast.Block) {
	l.b.PushScope()
	defer l.b.PopScope()
	for _, s := range blk.Statements {
		l.lowerStmt(s)
	}
}

// fieldPointerType is a convenience wrapper for building the "ptr<Class>"
// type token the parameter table and ABI headers expect for `this`.
func fieldPointerType(className string) string {
	return fmt.Sprintf("ptr<%s>", className)
}

// resolveClassInfo is a small pass-through to the checker's class
// registry, used when lowering needs member offsets or inheritance.
func (l *Lowerer) resolveClassInfo(name string) *types.ClassInfo {
	return l.checker.FindClass(name)
}

// abiCallVoid is a helper for emitting a fixed-signature runtime call with
// no return value (es_malloc/es_free/Console__* family).
func (l *Lowerer) abiCallVoid(name string, args ...ir.Value) {
	l.b.Call(name, args, false)
}

// abiCall is a helper for emitting a fixed-signature runtime call that
// yields a value (es_malloc).
func (l *Lowerer) abiCall(name string, args ...ir.Value) ir.Value {
	return l.b.Call(name, args, true)
}
