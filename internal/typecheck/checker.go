// Package typecheck implements E#'s two-pass type checker: a declarations
// pass that registers every function and class signature before any body
// is examined, followed by a bodies pass that walks each function/method
// body resolving expression types against that registry. Modeled on the
// teacher's two-pass hoisting compiler (internal/compiler/hoisting_compiler.go)
// which separates "collect declarations" from "compile statements" for the
// same reason: forward references between functions must resolve.
package typecheck

import (
	"escomp/internal/ast"
	"escomp/internal/diagnostics"
	"escomp/internal/types"
)

// FuncSig is a checked function signature.
type FuncSig struct {
	Name       string
	Params     []*types.Type
	ParamNames []string
	Return     *Type
	IsStatic   bool
	ClassName  string
}

// Type is an alias kept local so call sites read `typecheck.Type` the way
// the rest of the package reads `typecheck.FuncSig` — identical to
// *types.Type, never diverges from it.
type Type = types.Type

// Checker owns the symbol tables built by the declarations pass and the
// diagnostics accumulated while checking bodies.
type Checker struct {
	Diagnostics diagnostics.Batch

	funcs   map[string]*FuncSig
	classes map[string]*types.ClassInfo

	scopes []*varScope
}

// varScope is one lexical level of name -> type bindings.
type varScope struct {
	parent *varScope
	vars   map[string]*types.Type
}

func newVarScope(parent *varScope) *varScope {
	return &varScope{parent: parent, vars: make(map[string]*types.Type)}
}

func New() *Checker {
	c := &Checker{
		funcs:   make(map[string]*FuncSig),
		classes: make(map[string]*types.ClassInfo),
	}
	c.pushScope()
	return c
}

func (c *Checker) pushScope() { c.scopes = append(c.scopes, newVarScope(c.current())) }
func (c *Checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) current() *varScope {
	if len(c.scopes) == 0 {
		return nil
	}
	return c.scopes[len(c.scopes)-1]
}

// declare binds name to t in the innermost scope.
func (c *Checker) declare(name string, t *types.Type) {
	c.current().vars[name] = t
}

// lookup searches outward through enclosing scopes.
func (c *Checker) lookup(name string) *types.Type {
	for s := c.current(); s != nil; s = s.parent {
		if t, ok := s.vars[name]; ok {
			return t
		}
	}
	return nil
}

// ResolveClass implements types.ClassResolver.
func (c *Checker) ResolveClass(name string) *types.ClassInfo {
	return c.classes[name]
}

// FindFunc looks up a checked function signature by name.
func (c *Checker) FindFunc(name string) *FuncSig {
	return c.funcs[name]
}

// FindClass looks up a checked class by name.
func (c *Checker) FindClass(name string) *types.ClassInfo {
	return c.classes[name]
}

// Check runs both passes over prog and returns the accumulated
// diagnostics. The IR builder consults FindFunc/FindClass afterward to
// recover the same information the checker derived.
func (c *Checker) Check(prog *ast.Program) diagnostics.Batch {
	c.collectDecls(prog.Statements)
	c.checkBodies(prog.Statements)
	return c.Diagnostics
}
