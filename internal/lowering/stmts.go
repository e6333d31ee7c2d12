package lowering

import (
	"escomp/internal/ast"
	"escomp/internal/ir"
)

func (l *Lowerer) lowerStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.VariableDecl:
		l.b.Alloc(s.Name)
		if v := s.Value.Get(); v != nil {
			val := l.lowerExpr(v)
			l.b.Store(s.Name, val)
		}
	case *ast.StaticVariableDecl:
		l.b.Alloc(s.Name)
		if v := s.Value.Get(); v != nil {
			l.b.Store(s.Name, l.lowerExpr(v))
		}
	case *ast.Assignment:
		l.b.Store(s.Name, l.lowerExpr(s.Value.Get()))
	case *ast.CompoundAssignment:
		cur := l.loadIdentifier(s.Name)
		rhs := l.lowerExpr(s.Value.Get())
		l.b.Store(s.Name, l.applyCompoundOp(s.Operator, cur, rhs))
	case *ast.ArrayAssignment:
		arr := l.lowerExpr(s.Array.Get())
		idx := l.lowerExpr(s.Index.Get())
		val := l.lowerExpr(s.Value.Get())
		l.b.ArrayStore(arr, idx, val)
	case *ast.ArrayCompoundAssignment:
		arr := l.lowerExpr(s.Array.Get())
		idx := l.lowerExpr(s.Index.Get())
		addr := l.b.Add(arr, l.b.Mul(idx, l.b.Imm(8)))
		cur := l.b.LoadPtr(addr, 0)
		rhs := l.lowerExpr(s.Value.Get())
		l.b.ArrayStore(arr, idx, l.applyCompoundOp(s.Operator, cur, rhs))
	case *ast.If:
		l.lowerIf(s)
	case *ast.While:
		l.lowerWhile(s)
	case *ast.For:
		l.lowerFor(s)
	case *ast.ForEach:
		l.lowerForEach(s)
	case *ast.Return:
		if v := s.Value.Get(); v != nil {
			l.b.Return(l.lowerExpr(v))
		} else {
			l.b.Return(ir.Void())
		}
	case *ast.Print:
		for _, v := range s.Values {
			l.lowerPrintValue(v)
		}
	case *ast.Block:
		l.lowerBlock(s)
	case *ast.Switch:
		l.lowerSwitch(s)
	case *ast.Break:
		if target := l.b.CurrentBreakBlock(); target != nil {
			l.b.Jump(target)
		}
	case *ast.Continue:
		if target := l.b.CurrentContinueBlock(); target != nil {
			l.b.Jump(target)
		}
	case *ast.Delete:
		val := l.lowerExpr(s.Value.Get())
		if s.ResolvedClassName != "" && l.checker.FindFunc(s.ResolvedClassName+".dtor") != nil {
			l.abiCallVoid(mangleDtor(s.ResolvedClassName), val)
		}
		l.abiCallVoid("es_free", val)
	case *ast.Using:
		resource := l.lowerExpr(s.Resource.Get())
		l.lowerStmtOrNil(s.Body.Get())
		l.abiCallVoid("es_free", resource)
	case *ast.Throw:
		// No unwinding support in the runtime ABI (documented Open
		// Question decision): lower to straight-line evaluation of the
		// thrown expression for its side effects, then continue.
		l.lowerExpr(s.Value.Get())
	case *ast.Try:
		l.lowerTry(s)
	case nil:
	default:
		l.lowerExpr(n)
	}
}

func (l *Lowerer) lowerStmtOrNil(n ast.Node) {
	if n != nil {
		l.lowerStmt(n)
	}
}

func (l *Lowerer) applyCompoundOp(op ast.CompoundOp, lhs, rhs ir.Value) ir.Value {
	switch op {
	case "+=":
		return l.b.Add(lhs, rhs)
	case "-=":
		return l.b.Sub(lhs, rhs)
	case "*=":
		return l.b.Mul(lhs, rhs)
	case "/=":
		return l.b.Div(lhs, rhs)
	case "%=":
		return l.b.Mod(lhs, rhs)
	case "&=":
		return l.b.And(lhs, rhs)
	case "|=":
		return l.b.Or(lhs, rhs)
	case "^=":
		return l.b.Xor(lhs, rhs)
	case "<<=":
		return l.b.LShift(lhs, rhs)
	case ">>=":
		return l.b.RShift(lhs, rhs)
	default:
		return rhs
	}
}

func (l *Lowerer) lowerIf(s *ast.If) {
	cond := l.lowerExpr(s.Cond.Get())
	thenBlk := l.b.CreateBlock("if.then")
	var elseBlk *ir.BasicBlock
	if s.ElseBranch.Get() != nil {
		elseBlk = l.b.CreateBlock("if.else")
	}
	mergeBlk := l.b.CreateBlock("if.end")

	falseTarget := elseBlk
	if falseTarget == nil {
		falseTarget = mergeBlk
	}
	l.b.Branch(cond, thenBlk, falseTarget)

	l.b.SetCurrentBlock(thenBlk)
	l.lowerStmtOrNil(s.ThenBranch.Get())
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Jump(mergeBlk)
	}

	if elseBlk != nil {
		l.b.SetCurrentBlock(elseBlk)
		l.lowerStmtOrNil(s.ElseBranch.Get())
		if l.b.CurrentBlock.Terminator() == nil {
			l.b.Jump(mergeBlk)
		}
	}

	l.b.SetCurrentBlock(mergeBlk)
}

func (l *Lowerer) lowerWhile(s *ast.While) {
	condBlk := l.b.CreateBlock("while.cond")
	bodyBlk := l.b.CreateBlock("while.body")
	endBlk := l.b.CreateBlock("while.end")

	l.b.Jump(condBlk)
	l.b.SetCurrentBlock(condBlk)
	cond := l.lowerExpr(s.Cond.Get())
	l.b.Branch(cond, bodyBlk, endBlk)

	l.b.SetCurrentBlock(bodyBlk)
	l.b.PushLoopContext(condBlk, endBlk)
	l.lowerStmtOrNil(s.Body.Get())
	l.b.PopLoopContext()
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Jump(condBlk)
	}

	l.b.SetCurrentBlock(endBlk)
}

func (l *Lowerer) lowerFor(s *ast.For) {
	l.b.PushScope()
	defer l.b.PopScope()

	if init := s.Init.Get(); init != nil {
		l.lowerStmt(init)
	}

	condBlk := l.b.CreateBlock("for.cond")
	bodyBlk := l.b.CreateBlock("for.body")
	incrBlk := l.b.CreateBlock("for.incr")
	endBlk := l.b.CreateBlock("for.end")

	l.b.Jump(condBlk)
	l.b.SetCurrentBlock(condBlk)
	if cond := s.Cond.Get(); cond != nil {
		l.b.Branch(l.lowerExpr(cond), bodyBlk, endBlk)
	} else {
		l.b.Jump(bodyBlk)
	}

	l.b.SetCurrentBlock(bodyBlk)
	l.b.PushLoopContext(incrBlk, endBlk)
	l.lowerStmtOrNil(s.Body.Get())
	l.b.PopLoopContext()
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Jump(incrBlk)
	}

	l.b.SetCurrentBlock(incrBlk)
	if inc := s.Increment.Get(); inc != nil {
		l.lowerStmt(inc)
	}
	l.b.Jump(condBlk)

	l.b.SetCurrentBlock(endBlk)
}

// lowerForEach lowers to an index-counted loop over the iterable array:
// `for (i = 0; i < array_size(arr); i++) { var <name> = array_get(arr, i); ... }`
// (the array-backed iteration model — E# has no iterator
// protocol beyond arrays).
func (l *Lowerer) lowerForEach(s *ast.ForEach) {
	l.b.PushScope()
	defer l.b.PopScope()

	arr := l.lowerExpr(s.Iterable.Get())
	idxName := "$foreach_idx"
	l.b.Alloc(idxName)
	l.b.Store(idxName, l.b.Imm(0))

	sizeVal := l.abiCall("array_size", arr)

	condBlk := l.b.CreateBlock("foreach.cond")
	bodyBlk := l.b.CreateBlock("foreach.body")
	incrBlk := l.b.CreateBlock("foreach.incr")
	endBlk := l.b.CreateBlock("foreach.end")

	l.b.Jump(condBlk)
	l.b.SetCurrentBlock(condBlk)
	idx := l.b.Load(idxName)
	cond := l.b.Compare(ir.OpLT, idx, sizeVal)
	l.b.Branch(cond, bodyBlk, endBlk)

	l.b.SetCurrentBlock(bodyBlk)
	l.b.Alloc(s.VarName)
	elem := l.abiCall("array_get", arr, l.b.Load(idxName))
	l.b.Store(s.VarName, elem)
	l.b.PushLoopContext(incrBlk, endBlk)
	l.lowerStmtOrNil(s.Body.Get())
	l.b.PopLoopContext()
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Jump(incrBlk)
	}

	l.b.SetCurrentBlock(incrBlk)
	l.b.Store(idxName, l.b.Add(l.b.Load(idxName), l.b.Imm(1)))
	l.b.Jump(condBlk)

	l.b.SetCurrentBlock(endBlk)
}

// lowerSwitch lowers to a chain of equality branches in case order,
// falling through to the default case (or the end block) when nothing
// matches.
func (l *Lowerer) lowerSwitch(s *ast.Switch) {
	subject := l.lowerExpr(s.Expression.Get())
	endBlk := l.b.CreateBlock("switch.end")

	var defaultStmts ast.NodeList
	if def, ok := s.DefaultCase.Get().(*ast.Default); ok {
		defaultStmts = def.Statements
	}

	l.b.PushLoopContext(nil, endBlk) // break inside switch targets switch.end
	for _, cs := range s.Cases {
		cas, ok := cs.(*ast.Case)
		if !ok {
			continue
		}
		caseVal := l.lowerExpr(cas.Value.Get())
		matchBlk := l.b.CreateBlock("switch.case")
		nextBlk := l.b.CreateBlock("switch.next")
		cond := l.b.Compare(ir.OpEQ, subject, caseVal)
		l.b.Branch(cond, matchBlk, nextBlk)

		l.b.SetCurrentBlock(matchBlk)
		for _, st := range cas.Statements {
			l.lowerStmt(st)
		}
		if l.b.CurrentBlock.Terminator() == nil {
			l.b.Jump(endBlk)
		}

		l.b.SetCurrentBlock(nextBlk)
	}
	for _, st := range defaultStmts {
		l.lowerStmt(st)
	}
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Jump(endBlk)
	}
	l.b.PopLoopContext()

	l.b.SetCurrentBlock(endBlk)
}

// lowerTry lowers to straight-line sequencing of try body, then finally
// body; catch clauses are unreachable without stack-unwinding support in
// the runtime ABI (documented Open Question decision in SPEC_FULL.md).
func (l *Lowerer) lowerTry(s *ast.Try) {
	if blk, ok := s.TryBlock.Get().(*ast.Block); ok {
		l.lowerBlock(blk)
	}
	if fin, ok := s.FinallyClause.Get().(*ast.Finally); ok {
		if blk, ok := fin.Body.Get().(*ast.Block); ok {
			l.lowerBlock(blk)
		}
	}
}

// lowerPrintValue lowers one Console.WriteLine-style value, classifying
// string-concat vs. direct-int vs. converted-then-concat per the
// INT_TO_STRING/DOUBLE_TO_STRING conversion rules.
func (l *Lowerer) lowerPrintValue(n ast.Node) {
	if _, isNum := n.(*ast.Number); isNum {
		l.abiCallVoid("Console__WriteLineInt", l.lowerExpr(n))
		return
	}
	l.abiCallVoid("Console__WriteLine", l.toStringValue(n))
}
