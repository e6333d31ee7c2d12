package lowering

import (
	"escomp/internal/ast"
	"escomp/internal/ir"
)

// lowerExpr lowers an expression node to the ir.Value holding its result.
// Per spec.md §4.5, a pure arithmetic/bitwise/unary subtree is folded to a
// single IMM before anything is emitted for it; division/modulo by zero
// aborts the fold and the un-folded instructions are emitted instead.
func (l *Lowerer) lowerExpr(n ast.Node) ir.Value {
	switch n.(type) {
	case *ast.Binary, *ast.Unary:
		if v, ok := foldConstant(n); ok {
			return l.b.Imm(v)
		}
	}
	switch e := n.(type) {
	case nil:
		return ir.Void()
	case *ast.Number:
		return l.b.Imm(e.Value)
	case *ast.String:
		return l.b.StringConst(e.Value)
	case *ast.Boolean:
		if e.Value {
			return l.b.Imm(1)
		}
		return l.b.Imm(0)
	case *ast.Identifier:
		return l.loadIdentifier(e.Name)
	case *ast.This:
		return l.loadIdentifier("this")
	case *ast.Binary:
		return l.lowerBinary(e)
	case *ast.Unary:
		return l.lowerUnary(e)
	case *ast.Ternary:
		return l.lowerTernary(e)
	case *ast.Call:
		return l.lowerCall(e)
	case *ast.StaticMethodCall:
		return l.lowerStaticMethodCall(e)
	case *ast.ArrayLiteral:
		return l.lowerArrayLiteral(e)
	case *ast.ArrayAccess:
		arr := l.lowerExpr(e.Array.Get())
		idx := l.lowerExpr(e.Index.Get())
		addr := l.b.Add(arr, l.b.Mul(idx, l.b.Imm(8)))
		return l.b.LoadPtr(addr, 0)
	case *ast.New:
		return l.lowerNew(e)
	case *ast.NewArray:
		size := l.lowerExpr(e.Size.Get())
		return l.abiCall("es_malloc", l.b.Mul(size, l.b.Imm(8)))
	case *ast.MemberAccess:
		return l.lowerMemberAccess(e)
	case *ast.Lambda:
		return l.lowerLambda(e)
	case *ast.LINQQuery:
		return l.lowerLINQQuery(e)
	default:
		return ir.Void()
	}
}

// loadIdentifier resolves name against the current function's parameter
// table (fn.Params, spec.md §4.2) before falling back to a named-variable load,
// so a parameter reference becomes the Arg(index) value the IR data
// model sets aside for it (spec.md §3) via the table's O(1) lookup rather than
// always reading through Named/LOAD the way a plain local does.
func (l *Lowerer) loadIdentifier(name string) ir.Value {
	if fn := l.b.CurrentFunction; fn != nil {
		if p := fn.Params.Find(name); p != nil {
			return l.b.Arg(p.Index)
		}
	}
	return l.b.Load(name)
}

// isStringExpr is a lightweight syntactic classifier (string literal,
// string concat, or a call known by signature to return string) used to
// choose between direct numeric emission and INT_TO_STRING/
// DOUBLE_TO_STRING conversion when lowering `+` and Console arguments.
// Lowering runs after type checking has already rejected genuinely
// ill-typed programs, so this only needs to disambiguate among programs
// the checker already accepted.
func (l *Lowerer) isStringExpr(n ast.Node) bool {
	switch e := n.(type) {
	case *ast.String:
		return true
	case *ast.Binary:
		return e.Operator == "+" && (l.isStringExpr(e.Left.Get()) || l.isStringExpr(e.Right.Get()))
	case *ast.Call:
		if sig := l.checker.FindFunc(e.Name); sig != nil && sig.Return != nil {
			return sig.Return.String() == "string"
		}
		return false
	default:
		return false
	}
}

func (l *Lowerer) lowerBinary(e *ast.Binary) ir.Value {
	switch e.Operator {
	case "+":
		if l.isStringExpr(e.Left.Get()) || l.isStringExpr(e.Right.Get()) {
			return l.b.Strcat(l.toStringValue(e.Left.Get()), l.toStringValue(e.Right.Get()))
		}
		return l.b.Add(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "-":
		return l.b.Sub(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "*":
		return l.b.Mul(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "/":
		return l.b.Div(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "%":
		return l.b.Mod(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "&", "&&":
		return l.b.And(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "|", "||":
		return l.b.Or(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "^":
		return l.b.Xor(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "<<":
		return l.b.LShift(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case ">>":
		return l.b.RShift(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "<":
		return l.b.Compare(ir.OpLT, l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case ">":
		return l.b.Compare(ir.OpGT, l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "<=":
		return l.b.Compare(ir.OpLE, l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case ">=":
		return l.b.Compare(ir.OpGE, l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "==":
		return l.b.Compare(ir.OpEQ, l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	case "!=":
		return l.b.Compare(ir.OpNE, l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	default:
		return l.b.Add(l.lowerExpr(e.Left.Get()), l.lowerExpr(e.Right.Get()))
	}
}

// toStringValue lowers n and, if it isn't already string-typed, converts
// it via INT_TO_STRING/DOUBLE_TO_STRING so STRCAT always sees two string
// operands.
func (l *Lowerer) toStringValue(n ast.Node) ir.Value {
	v := l.lowerExpr(n)
	if l.isStringExpr(n) {
		return v
	}
	if _, isNum := n.(*ast.Number); isNum {
		return l.b.DoubleToString(v)
	}
	return l.b.IntToString(v)
}

func (l *Lowerer) lowerUnary(e *ast.Unary) ir.Value {
	operand := l.lowerExpr(e.Operand.Get())
	switch e.Operator {
	case "-":
		return l.b.Sub(l.b.Imm(0), operand)
	case "!":
		return l.b.Compare(ir.OpEQ, operand, l.b.Imm(0))
	case "~":
		return l.b.Xor(operand, l.b.Imm(-1))
	case "++":
		one := l.b.Add(operand, l.b.Imm(1))
		if id, ok := e.Operand.Get().(*ast.Identifier); ok {
			l.b.Store(id.Name, one)
		}
		if e.IsPostfix {
			return operand
		}
		return one
	case "--":
		one := l.b.Sub(operand, l.b.Imm(1))
		if id, ok := e.Operand.Get().(*ast.Identifier); ok {
			l.b.Store(id.Name, one)
		}
		if e.IsPostfix {
			return operand
		}
		return one
	default:
		return operand
	}
}

// lowerTernary lowers `cond ? t : f` through a synthetic result_N local
//: both branches store into the same slot, which is then
// loaded as the expression's value.
func (l *Lowerer) lowerTernary(e *ast.Ternary) ir.Value {
	resultName := l.nextResultName()
	l.b.Alloc(resultName)

	cond := l.lowerExpr(e.Cond.Get())
	trueBlk := l.b.CreateBlock("ternary.true")
	falseBlk := l.b.CreateBlock("ternary.false")
	mergeBlk := l.b.CreateBlock("ternary.end")

	l.b.Branch(cond, trueBlk, falseBlk)

	l.b.SetCurrentBlock(trueBlk)
	l.b.Store(resultName, l.lowerExpr(e.TrueValue.Get()))
	l.b.Jump(mergeBlk)

	l.b.SetCurrentBlock(falseBlk)
	l.b.Store(resultName, l.lowerExpr(e.FalseValue.Get()))
	l.b.Jump(mergeBlk)

	l.b.SetCurrentBlock(mergeBlk)
	return l.b.Load(resultName)
}

func (l *Lowerer) nextResultName() string {
	l.resultCounter++
	return "$result_" + itoa(l.resultCounter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

func (l *Lowerer) lowerCall(e *ast.Call) ir.Value {
	if obj := e.Object.Get(); obj != nil {
		return l.lowerMethodCall(e, obj)
	}
	args := make([]ir.Value, 0, len(e.Arguments))
	for _, a := range e.Arguments {
		args = append(args, l.lowerExpr(a))
	}
	sig := l.checker.FindFunc(e.Name)
	hasReturn := sig == nil || (sig.Return != nil && sig.Return.String() != "void")
	return l.b.Call(e.Name, args, hasReturn)
}

// lowerMethodCall lowers `obj.Method(args)` to a call passing obj as the
// implicit leading `this` argument (the member-call ABI).
func (l *Lowerer) lowerMethodCall(e *ast.Call, obj ast.Node) ir.Value {
	thisVal := l.lowerExpr(obj)
	args := []ir.Value{thisVal}
	for _, a := range e.Arguments {
		args = append(args, l.lowerExpr(a))
	}
	className := e.ResolvedClassName
	sig := l.checker.FindFunc(className + "." + e.Name)
	hasReturn := sig == nil || (sig.Return != nil && sig.Return.String() != "void")
	return l.b.Call(className+"."+e.Name, args, hasReturn)
}

func (l *Lowerer) lowerStaticMethodCall(e *ast.StaticMethodCall) ir.Value {
	if e.ClassName == "Console" {
		return l.lowerConsoleCall(e)
	}
	args := make([]ir.Value, 0, len(e.Arguments))
	for _, a := range e.Arguments {
		args = append(args, l.lowerExpr(a))
	}
	sig := l.checker.FindFunc(e.ClassName + "." + e.MethodName)
	hasReturn := sig == nil || (sig.Return != nil && sig.Return.String() != "void")
	return l.b.Call(e.ClassName+"."+e.MethodName, args, hasReturn)
}

// lowerConsoleCall dispatches Console.WriteLine/Write to the int or
// generic ABI entry point depending on the argument's classified type
// (internal/abi's ConsoleWriteLine vs. ConsoleWriteLineInt split).
func (l *Lowerer) lowerConsoleCall(e *ast.StaticMethodCall) ir.Value {
	fnName := "Console__" + e.MethodName
	if len(e.Arguments) == 1 {
		arg := e.Arguments[0]
		if _, isNum := arg.(*ast.Number); isNum && !l.isStringExpr(arg) {
			l.abiCallVoid(fnName+"Int", l.lowerExpr(arg))
			return ir.Void()
		}
		l.abiCallVoid(fnName, l.toStringValue(arg))
		return ir.Void()
	}
	l.abiCallVoid(fnName)
	return ir.Void()
}

func (l *Lowerer) lowerArrayLiteral(e *ast.ArrayLiteral) ir.Value {
	n := len(e.Elements)
	arr := l.abiCall("es_malloc", l.b.Imm(float64(n*8)))
	for i, elem := range e.Elements {
		l.b.ArrayStore(arr, l.b.Imm(float64(i)), l.lowerExpr(elem))
	}
	return arr
}

// lowerNew lowers `new Widget(args)` to es_malloc(size) followed by a
// constructor call passing the allocation as `this`.
func (l *Lowerer) lowerNew(e *ast.New) ir.Value {
	size := l.b.LayoutSize(e.ClassName)
	instance := l.abiCall("es_malloc", l.b.Imm(float64(size)))
	if sig := l.checker.FindFunc(e.ClassName + ".ctor"); sig != nil {
		args := []ir.Value{instance}
		for _, a := range e.Arguments {
			args = append(args, l.lowerExpr(a))
		}
		l.b.Call(mangleCtor(e.ClassName), args, false)
	}
	return instance
}

// lowerMemberAccess lowers `obj.field` to a pointer load at the field's
// computed offset when obj is an instance (the class layout),
// or to a load from the mangled static global when obj names a class
// itself ("When obj is a class name, emits a load from the
// mangled static global").
func (l *Lowerer) lowerMemberAccess(e *ast.MemberAccess) ir.Value {
	if id, ok := e.Object.Get().(*ast.Identifier); ok && l.checker.FindClass(id.Name) != nil {
		return l.b.Load(mangleStatic(id.Name, e.MemberName))
	}
	base := l.lowerExpr(e.Object.Get())
	className := e.ResolvedClassName
	if offset, ok := l.b.LayoutOffset(className, e.MemberName); ok {
		return l.b.LoadPtr(base, offset)
	}
	// Property getter: no stored offset, call the synthesized getter.
	return l.b.Call(className+"."+e.MemberName+".get", []ir.Value{base}, true)
}

// lowerLambda yields Void: lambdas are not lowered, and no synthetic
// function is created for them or called.
func (l *Lowerer) lowerLambda(e *ast.Lambda) ir.Value {
	return ir.Void()
}

// lowerLINQQuery lowers a query to an imperative loop building a result
// array (Open Question decision documented in SPEC_FULL.md): iterate the
// source, apply `where` as a skip-condition, `select` as the stored
// element expression.
func (l *Lowerer) lowerLINQQuery(q *ast.LINQQuery) ir.Value {
	from, ok := q.From.Get().(*ast.LINQFrom)
	if !ok {
		return ir.Void()
	}
	source := l.lowerExpr(from.Source.Get())
	sizeVal := l.abiCall("array_size", source)
	result := l.abiCall("es_malloc", l.b.Mul(sizeVal, l.b.Imm(8)))

	idxName := l.nextResultName() + "_idx"
	outName := l.nextResultName() + "_out"
	l.b.Alloc(idxName)
	l.b.Alloc(outName)
	l.b.Store(idxName, l.b.Imm(0))
	l.b.Store(outName, l.b.Imm(0))

	l.b.PushScope()
	l.b.Declare(from.VarName)
	l.b.Alloc(from.VarName)

	condBlk := l.b.CreateBlock("linq.cond")
	bodyBlk := l.b.CreateBlock("linq.body")
	incrBlk := l.b.CreateBlock("linq.incr")
	endBlk := l.b.CreateBlock("linq.end")

	l.b.Jump(condBlk)
	l.b.SetCurrentBlock(condBlk)
	idx := l.b.Load(idxName)
	cond := l.b.Compare(ir.OpLT, idx, sizeVal)
	l.b.Branch(cond, bodyBlk, endBlk)

	l.b.SetCurrentBlock(bodyBlk)
	l.b.Store(from.VarName, l.abiCall("array_get", source, l.b.Load(idxName)))

	var whereCond ir.Value
	hasWhere := false
	for _, clause := range q.Clauses {
		if w, ok := clause.(*ast.LINQWhere); ok {
			whereCond = l.lowerExpr(w.Cond.Get())
			hasWhere = true
		}
	}

	storeElem := func() {
		if sel, ok := q.Select.Get().(*ast.LINQSelect); ok {
			val := l.lowerExpr(sel.Expression.Get())
			l.b.ArrayStore(result, l.b.Load(outName), val)
		}
		l.b.Store(outName, l.b.Add(l.b.Load(outName), l.b.Imm(1)))
	}
	if hasWhere {
		matchBlk := l.b.CreateBlock("linq.match")
		l.b.Branch(whereCond, matchBlk, incrBlk)
		l.b.SetCurrentBlock(matchBlk)
		storeElem()
		l.b.Jump(incrBlk)
	} else {
		storeElem()
		l.b.Jump(incrBlk)
	}

	l.b.SetCurrentBlock(incrBlk)
	l.b.Store(idxName, l.b.Add(l.b.Load(idxName), l.b.Imm(1)))
	l.b.Jump(condBlk)

	l.b.SetCurrentBlock(endBlk)
	l.b.PopScope()
	return result
}
