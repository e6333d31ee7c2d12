package typecheck

import (
	"escomp/internal/ast"
	"escomp/internal/diagnostics"
	"escomp/internal/types"
)

// checkExpr types an expression node, reporting diagnostics for
// incompatible operand types along the way, and returns its type (Unknown
// when it cannot be determined, which silences further cascading errors).
func (c *Checker) checkExpr(n ast.Node, ctx *funcContext) *types.Type {
	switch e := n.(type) {
	case nil:
		return types.Void()
	case *ast.Number:
		if e.Value == float64(int32(e.Value)) {
			return types.Int32()
		}
		return types.Float64()
	case *ast.String:
		return types.StringT()
	case *ast.Boolean:
		return types.Bool()
	case *ast.Identifier:
		if t := c.lookup(e.Name); t != nil {
			return t
		}
		c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{}, "undeclared identifier %q", e.Name)
		return types.Unknown()
	case *ast.This:
		if info := c.classes[classNameOfContext(ctx)]; info != nil {
			return types.Pointer(types.Class(info))
		}
		return types.Unknown()
	case *ast.Binary:
		return c.checkBinary(e, ctx)
	case *ast.Unary:
		operand := c.checkExpr(e.Operand.Get(), ctx)
		switch e.Operator {
		case "!":
			return types.Bool()
		default:
			return operand
		}
	case *ast.Ternary:
		c.checkExpr(e.Cond.Get(), ctx)
		t := c.checkExpr(e.TrueValue.Get(), ctx)
		f := c.checkExpr(e.FalseValue.Get(), ctx)
		if !types.Compatible(t, f) {
			c.Diagnostics.Errorf(diagnostics.CategoryType, diagnostics.Location{},
				"ternary branches have incompatible types %s and %s", t, f)
		}
		return t
	case *ast.Call:
		return c.checkCall(e, ctx)
	case *ast.StaticMethodCall:
		return c.checkStaticMethodCall(e, ctx)
	case *ast.ArrayLiteral:
		var elem *types.Type = types.Unknown()
		for i, el := range e.Elements {
			t := c.checkExpr(el, ctx)
			if i == 0 {
				elem = t
			}
		}
		return types.Array(elem, len(e.Elements))
	case *ast.ArrayAccess:
		arr := c.checkExpr(e.Array.Get(), ctx)
		c.checkExpr(e.Index.Get(), ctx)
		if arr != nil && arr.Kind == types.KindArray {
			return arr.Elem
		}
		return types.Unknown()
	case *ast.New:
		info := c.classes[e.ClassName]
		for _, a := range e.Arguments {
			c.checkExpr(a, ctx)
		}
		if info == nil {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
				"new of unknown class %q", e.ClassName)
			return types.Unknown()
		}
		return types.Pointer(types.Class(info))
	case *ast.NewArray:
		c.checkExpr(e.Size.Get(), ctx)
		return types.Array(types.Parse(e.ElementType, c), 0)
	case *ast.MemberAccess:
		return c.checkMemberAccess(e, ctx)
	case *ast.Lambda:
		c.pushScope()
		for _, p := range e.Params {
			c.declare(p, types.Unknown())
		}
		if blk, ok := e.Body.Get().(*ast.Block); ok {
			lambdaCtx := &funcContext{name: "<lambda>"}
			c.checkBlock(blk, lambdaCtx)
		}
		if v := e.Expression.Get(); v != nil {
			c.checkExpr(v, ctx)
		}
		c.popScope()
		return types.Unknown()
	case *ast.LINQQuery:
		return c.checkLINQQuery(e, ctx)
	default:
		return types.Unknown()
	}
}

func (c *Checker) checkBinary(e *ast.Binary, ctx *funcContext) *types.Type {
	lhs := c.checkExpr(e.Left.Get(), ctx)
	rhs := c.checkExpr(e.Right.Get(), ctx)
	switch e.Operator {
	case "<", ">", "<=", ">=", "==", "!=":
		if !types.Compatible(lhs, rhs) {
			c.Diagnostics.Errorf(diagnostics.CategoryType, diagnostics.Location{},
				"cannot compare %s with %s", lhs, rhs)
		}
		return types.Bool()
	case "&&", "||":
		return types.Bool()
	case "+":
		if lhs != nil && lhs.Kind == types.KindString || rhs != nil && rhs.Kind == types.KindString {
			return types.StringT()
		}
		fallthrough
	default:
		if !types.Compatible(lhs, rhs) {
			c.Diagnostics.Errorf(diagnostics.CategoryType, diagnostics.Location{},
				"operator %q: incompatible operand types %s and %s", e.Operator, lhs, rhs)
			return types.Unknown()
		}
		if lhs != nil && types.IsNumeric(lhs.Kind) {
			return lhs
		}
		return rhs
	}
}

func (c *Checker) checkCall(e *ast.Call, ctx *funcContext) *types.Type {
	for _, a := range e.Arguments {
		c.checkExpr(a, ctx)
	}
	if obj := e.Object.Get(); obj != nil {
		objType := c.checkExpr(obj, ctx)
		if classInfo := classOf(objType); classInfo != nil {
			e.ResolvedClassName = classInfo.Name
			if m := classInfo.FindMember(e.Name); m != nil {
				return m.Type.Return
			}
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
				"class %q has no method %q", classInfo.Name, e.Name)
		}
		return types.Unknown()
	}
	if sig := c.funcs[e.Name]; sig != nil {
		return sig.Return
	}
	c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{}, "call to undeclared function %q", e.Name)
	return types.Unknown()
}

func (c *Checker) checkStaticMethodCall(e *ast.StaticMethodCall, ctx *funcContext) *types.Type {
	var argTypes []*types.Type
	for _, a := range e.Arguments {
		argTypes = append(argTypes, c.checkExpr(a, ctx))
	}
	if isConsoleCall(e.ClassName) {
		if !consoleOverloads(e.MethodName, argTypes) {
			c.Diagnostics.Errorf(diagnostics.CategoryType, diagnostics.Location{},
				"Console.%s: no overload accepts the given argument types", e.MethodName)
		}
		return types.Void()
	}
	if sig := c.funcs[e.ClassName+"."+e.MethodName]; sig != nil {
		return sig.Return
	}
	c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
		"no static method %s.%s", e.ClassName, e.MethodName)
	return types.Unknown()
}

// classOf returns the ClassInfo a value of type t refers to, unwrapping
// one level of pointer (a class value is treated as an implicit pointer
// per spec.md §4.4's Pointer(Class(C)) <-> Class(C) assignability rule).
func classOf(t *types.Type) *types.ClassInfo {
	if t == nil {
		return nil
	}
	if t.Kind == types.KindPointer && t.Elem != nil {
		return classOf(t.Elem)
	}
	if t.Kind == types.KindClass {
		return t.Class
	}
	return nil
}

func (c *Checker) checkMemberAccess(e *ast.MemberAccess, ctx *funcContext) *types.Type {
	objType := c.checkExpr(e.Object.Get(), ctx)
	if objType == nil {
		return types.Unknown()
	}
	classInfo := classOf(objType)
	if classInfo == nil {
		return types.Unknown()
	}
	e.ResolvedClassName = classInfo.Name
	member := classInfo.FindMember(e.MemberName)
	if member == nil {
		c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
			"class %q has no member %q", classInfo.Name, e.MemberName)
		return types.Unknown()
	}
	if member.Kind == types.MemberProperty {
		return member.Type
	}
	return member.Type
}

// checkLINQQuery type-checks each clause in source order; the eventual
// element type is whatever the select clause's expression yields.
func (c *Checker) checkLINQQuery(q *ast.LINQQuery, ctx *funcContext) *types.Type {
	c.pushScope()
	defer c.popScope()
	var elemType *types.Type = types.Unknown()
	if from, ok := q.From.Get().(*ast.LINQFrom); ok {
		srcType := c.checkExpr(from.Source.Get(), ctx)
		if srcType != nil && srcType.Kind == types.KindArray {
			elemType = srcType.Elem
		}
		c.declare(from.VarName, elemType)
	}
	for _, clause := range q.Clauses {
		switch cl := clause.(type) {
		case *ast.LINQWhere:
			c.checkExpr(cl.Cond.Get(), ctx)
		case *ast.LINQOrderBy:
			c.checkExpr(cl.Expression.Get(), ctx)
		case *ast.LINQJoin:
			c.checkExpr(cl.Source.Get(), ctx)
			c.checkExpr(cl.LeftKey.Get(), ctx)
			c.checkExpr(cl.RightKey.Get(), ctx)
		}
	}
	if sel, ok := q.Select.Get().(*ast.LINQSelect); ok {
		return types.Array(c.checkExpr(sel.Expression.Get(), ctx), 0)
	}
	return types.Array(elemType, 0)
}

// classNameOfContext extracts the enclosing class name from a dotted
// function context name ("Widget.Method" -> "Widget"), or "" for
// top-level functions.
func classNameOfContext(ctx *funcContext) string {
	for i := 0; i < len(ctx.name); i++ {
		if ctx.name[i] == '.' {
			return ctx.name[:i]
		}
	}
	return ""
}
