package typecheck

import (
	"escomp/internal/ast"
	"escomp/internal/diagnostics"
	"escomp/internal/types"
)

// checkBodies is the bodies pass: every declaration collected in pass one
// gets its statements walked and its expressions typed. Bare top-level
// statements (not wrapped in any function/class) are gathered into an
// implicit main, and checked against a synthetic
// "main" funcContext shared across the whole program.
func (c *Checker) checkBodies(stmts ast.NodeList) {
	ctx := &funcContext{name: "main", declaredReturn: types.Parse("int32", c)}
	c.checkTopLevel(stmts, ctx)
}

func (c *Checker) checkTopLevel(stmts ast.NodeList, ctx *funcContext) {
	for _, n := range stmts {
		switch decl := n.(type) {
		case *ast.FunctionDecl:
			c.checkFunctionBody(decl.Name, "", decl.Params, decl.ReturnType, decl.Body)
		case *ast.StaticFunctionDecl:
			c.checkFunctionBody(decl.Name, "", decl.Params, decl.ReturnType, decl.Body)
		case *ast.ClassDecl:
			c.checkClassDecl(decl)
		case *ast.NamespaceDecl:
			if body, ok := decl.Body.Get().(*ast.Block); ok {
				c.checkTopLevel(body.Statements, ctx)
			}
		default:
			c.checkStmt(n, ctx)
		}
	}
}

func (c *Checker) checkFunctionBody(name, className string, params []ast.Param, returnType string, body ast.NodeField) {
	c.pushScope()
	defer c.popScope()

	for _, p := range params {
		c.declare(p.Name, types.Parse(p.Type, c))
	}

	declared := types.Parse(returnType, c)
	ctx := &funcContext{declaredReturn: declared, name: name}
	if blk, ok := body.Get().(*ast.Block); ok {
		c.checkBlock(blk, ctx)
	}
}

// funcContext tracks return-type inference state across a function body:
//, the first `return` statement encountered establishes
// the inferred type; every later return must be assignable to it.
type funcContext struct {
	name           string
	declaredReturn *types.Type
	inferredReturn *types.Type
	sawReturn      bool
	inLoop         int
}

func (c *Checker) checkBlock(blk *ast.Block, ctx *funcContext) {
	c.pushScope()
	defer c.popScope()
	for _, s := range blk.Statements {
		c.checkStmt(s, ctx)
	}
}

func (c *Checker) checkStmt(n ast.Node, ctx *funcContext) {
	switch s := n.(type) {
	case *ast.VariableDecl:
		declared := types.Parse(s.Type, c)
		if s.IsArray {
			declared = types.Array(declared, 0)
		}
		if v := s.Value.Get(); v != nil {
			vt := c.checkExpr(v, ctx)
			if declared.Kind != types.KindUnknown && !types.Assignable(declared, vt) {
				c.Diagnostics.Errorf(diagnostics.CategoryType, diagnostics.Location{},
					"cannot assign %s to variable %q of type %s", vt, s.Name, declared)
			}
		}
		c.declare(s.Name, declared)
	case *ast.StaticVariableDecl:
		declared := types.Parse(s.Type, c)
		if v := s.Value.Get(); v != nil {
			c.checkExpr(v, ctx)
		}
		c.declare(s.Name, declared)
	case *ast.Assignment:
		target := c.lookup(s.Name)
		vt := c.checkExpr(s.Value.Get(), ctx)
		if target != nil && target.Kind != types.KindUnknown && !types.Assignable(target, vt) {
			c.Diagnostics.Errorf(diagnostics.CategoryType, diagnostics.Location{},
				"cannot assign %s to %q of type %s", vt, s.Name, target)
		}
	case *ast.ArrayAssignment:
		c.checkExpr(s.Array.Get(), ctx)
		c.checkExpr(s.Index.Get(), ctx)
		c.checkExpr(s.Value.Get(), ctx)
	case *ast.CompoundAssignment:
		c.checkExpr(s.Value.Get(), ctx)
	case *ast.ArrayCompoundAssignment:
		c.checkExpr(s.Array.Get(), ctx)
		c.checkExpr(s.Index.Get(), ctx)
		c.checkExpr(s.Value.Get(), ctx)
	case *ast.If:
		c.checkExpr(s.Cond.Get(), ctx)
		c.checkMaybeStmt(s.ThenBranch.Get(), ctx)
		c.checkMaybeStmt(s.ElseBranch.Get(), ctx)
	case *ast.While:
		c.checkExpr(s.Cond.Get(), ctx)
		ctx.inLoop++
		c.checkMaybeStmt(s.Body.Get(), ctx)
		ctx.inLoop--
	case *ast.For:
		c.pushScope()
		if s.Init.Get() != nil {
			c.checkStmt(s.Init.Get(), ctx)
		}
		if s.Cond.Get() != nil {
			c.checkExpr(s.Cond.Get(), ctx)
		}
		if s.Increment.Get() != nil {
			c.checkStmt(s.Increment.Get(), ctx)
		}
		ctx.inLoop++
		c.checkMaybeStmt(s.Body.Get(), ctx)
		ctx.inLoop--
		c.popScope()
	case *ast.ForEach:
		iterType := c.checkExpr(s.Iterable.Get(), ctx)
		c.pushScope()
		if iterType != nil && iterType.Kind == types.KindArray {
			c.declare(s.VarName, iterType.Elem)
		} else {
			c.declare(s.VarName, types.Unknown())
		}
		ctx.inLoop++
		c.checkMaybeStmt(s.Body.Get(), ctx)
		ctx.inLoop--
		c.popScope()
	case *ast.Return:
		var rt *types.Type
		if v := s.Value.Get(); v != nil {
			rt = c.checkExpr(v, ctx)
		} else {
			rt = types.Void()
		}
		if !ctx.sawReturn {
			ctx.inferredReturn = rt
			ctx.sawReturn = true
		} else if !types.Assignable(ctx.inferredReturn, rt) {
			c.Diagnostics.Errorf(diagnostics.CategoryType, diagnostics.Location{},
				"function %q: return type %s incompatible with earlier inferred return type %s",
				ctx.name, rt, ctx.inferredReturn)
		}
		if ctx.declaredReturn != nil && ctx.declaredReturn.Kind != types.KindUnknown && ctx.declaredReturn.Kind != types.KindVoid {
			if !types.Assignable(ctx.declaredReturn, rt) {
				c.Diagnostics.Errorf(diagnostics.CategoryType, diagnostics.Location{},
					"function %q: return type %s does not match declared return type %s",
					ctx.name, rt, ctx.declaredReturn)
			}
		}
	case *ast.Print:
		for _, v := range s.Values {
			c.checkExpr(v, ctx)
		}
	case *ast.Block:
		c.checkBlock(s, ctx)
	case *ast.Switch:
		c.checkExpr(s.Expression.Get(), ctx)
		for _, cs := range s.Cases {
			if cas, ok := cs.(*ast.Case); ok {
				c.checkExpr(cas.Value.Get(), ctx)
				for _, st := range cas.Statements {
					c.checkStmt(st, ctx)
				}
			}
		}
		if def, ok := s.DefaultCase.Get().(*ast.Default); ok {
			for _, st := range def.Statements {
				c.checkStmt(st, ctx)
			}
		}
	case *ast.Break:
		if ctx.inLoop == 0 {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{}, "break outside loop")
		}
		if v := s.Value.Get(); v != nil {
			c.checkExpr(v, ctx)
		}
	case *ast.Continue:
		if ctx.inLoop == 0 {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{}, "continue outside loop")
		}
	case *ast.Delete:
		t := c.checkExpr(s.Value.Get(), ctx)
		if classInfo := classOf(t); classInfo != nil {
			s.ResolvedClassName = classInfo.Name
		}
	case *ast.Using:
		c.checkExpr(s.Resource.Get(), ctx)
		c.checkMaybeStmt(s.Body.Get(), ctx)
	case *ast.Try:
		if blk, ok := s.TryBlock.Get().(*ast.Block); ok {
			c.checkBlock(blk, ctx)
		}
		for _, cl := range s.CatchClauses {
			if catch, ok := cl.(*ast.Catch); ok {
				c.pushScope()
				c.declare(catch.ExceptionVar, types.Parse(catch.ExceptionType, c))
				if blk, ok := catch.Body.Get().(*ast.Block); ok {
					c.checkBlock(blk, ctx)
				}
				c.popScope()
			}
		}
		if fin, ok := s.FinallyClause.Get().(*ast.Finally); ok {
			if blk, ok := fin.Body.Get().(*ast.Block); ok {
				c.checkBlock(blk, ctx)
			}
		}
	case *ast.Throw:
		c.checkExpr(s.Value.Get(), ctx)
	case nil:
		// no-op statement (e.g. empty else branch)
	default:
		// Expression statement (call used as a statement), or a
		// declaration kind with no statement-level effect (e.g. a nested
		// ClassDecl local to a namespace body).
		if expr, ok := n.(ast.Node); ok {
			c.checkExpr(expr, ctx)
		}
	}
}

// checkMaybeStmt checks n as a statement if non-nil; bodies of If/While/For
// can legitimately be nil (empty else branch).
func (c *Checker) checkMaybeStmt(n ast.Node, ctx *funcContext) {
	if n == nil {
		return
	}
	c.checkStmt(n, ctx)
}

func (c *Checker) checkClassDecl(decl *ast.ClassDecl) {
	info := c.classes[decl.Name]
	for _, member := range decl.Body {
		c.checkClassMember(decl.Name, info, member)
	}
}

func (c *Checker) checkClassMember(className string, info *types.ClassInfo, node ast.Node) {
	switch m := node.(type) {
	case *ast.AccessModifier:
		c.checkClassMember(className, info, m.Member.Get())
	case *ast.FunctionDecl:
		c.checkFunctionBody(className+"."+m.Name, className, m.Params, m.ReturnType, m.Body)
	case *ast.StaticFunctionDecl:
		c.checkFunctionBody(className+"."+m.Name, className, m.Params, m.ReturnType, m.Body)
	case *ast.ConstructorDecl:
		c.checkFunctionBody(className+".ctor", className, m.Params, "void", m.Body)
	case *ast.DestructorDecl:
		c.checkFunctionBody(className+".dtor", className, nil, "void", m.Body)
	case *ast.PropertyDecl:
		if getter, ok := m.Getter.Get().(*ast.PropertyGetter); ok {
			c.checkFunctionBody(className+"."+m.Name+".get", className, nil, m.Type, getter.Body)
		}
		if setter, ok := m.Setter.Get().(*ast.PropertySetter); ok {
			params := []ast.Param{{Name: setter.ValueParamName, Type: m.Type}}
			c.checkFunctionBody(className+"."+m.Name+".set", className, params, "void", setter.Body)
		}
	}
}
