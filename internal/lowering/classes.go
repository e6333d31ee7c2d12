package lowering

import (
	"escomp/internal/ast"
	"escomp/internal/ir"
)

// mangleStatic/mangleCtor/mangleDtor implement the mangled-name
// convention ("Static members are mangled into global names as
// Class__member; the destructor and constructor use Class__constructor /
// Class__destructor"). Instance methods keep the dotted ClassName.Method
// form the checker already uses as its lookup key — the spec only
// mandates mangling for statics/ctor/dtor, not for ordinary dispatch.
func mangleStatic(className, member string) string { return className + "__" + member }
func mangleCtor(className string) string            { return className + "__constructor" }
func mangleDtor(className string) string             { return className + "__destructor" }

// registerClassLayouts walks every top-level class declaration and
// computes its field layout before any function body is lowered, so
// member-access lowering can resolve offsets regardless of declaration
// order.
func (l *Lowerer) registerClassLayouts(stmts ast.NodeList) {
	decls := collectClassDecls(stmts)
	registered := make(map[string]bool)
	var register func(name string)
	register = func(name string) {
		if registered[name] {
			return
		}
		decl, ok := decls[name]
		if !ok {
			return
		}
		if decl.BaseClass != "" {
			register(decl.BaseClass)
		}
		registered[name] = true
		l.b.RegisterClassLayout(name, fieldNames(decl.Body), decl.BaseClass)
	}
	for name := range decls {
		register(name)
	}
}

func collectClassDecls(stmts ast.NodeList) map[string]*ast.ClassDecl {
	out := make(map[string]*ast.ClassDecl)
	for _, n := range stmts {
		switch decl := n.(type) {
		case *ast.ClassDecl:
			out[decl.Name] = decl
		case *ast.NamespaceDecl:
			if blk, ok := decl.Body.Get().(*ast.Block); ok {
				for k, v := range collectClassDecls(blk.Statements) {
					out[k] = v
				}
			}
		}
	}
	return out
}

// fieldNames extracts instance field declarations in source order,
// unwrapping access modifiers and skipping static/method/ctor/dtor/
// property members (properties get their own backing field).
func fieldNames(body ast.NodeList) []string {
	var names []string
	for _, n := range body {
		names = append(names, fieldNamesOf(n)...)
	}
	return names
}

func fieldNamesOf(n ast.Node) []string {
	switch m := n.(type) {
	case *ast.AccessModifier:
		return fieldNamesOf(m.Member.Get())
	case *ast.VariableDecl:
		return []string{m.Name}
	case *ast.PropertyDecl:
		return []string{"$prop_" + m.Name}
	default:
		return nil
	}
}

// lowerClass emits one ir.Function per instance method, static method,
// constructor, destructor, and synthesized property getter/setter
// (the property-to-getter/setter synthesis).
func (l *Lowerer) lowerClass(decl *ast.ClassDecl) {
	for _, member := range decl.Body {
		l.lowerClassMember(decl.Name, member)
	}
}

func (l *Lowerer) lowerClassMember(className string, n ast.Node) {
	switch m := n.(type) {
	case *ast.AccessModifier:
		l.lowerClassMember(className, m.Member.Get())
	case *ast.FunctionDecl:
		l.lowerFunction(m.Name, m.Params, m.ReturnType, m.Body, className)
	case *ast.StaticFunctionDecl:
		l.lowerStaticFunction(m.Name, m.Params, m.ReturnType, m.Body, className)
	case *ast.ConstructorDecl:
		l.lowerCtor(className, m.Params, m.Body)
	case *ast.DestructorDecl:
		l.lowerDtor(className, m.Body)
	case *ast.PropertyDecl:
		l.lowerProperty(className, m)
	case *ast.StaticVariableDecl:
		l.lowerStaticField(className, m)
	}
}

// lowerStaticField registers a class's static field as a mangled module
// global ("Static members are mangled into global names as
// Class__member") and, if it has an initializer, records it for `main`
// to run before any other top-level code touches it.
func (l *Lowerer) lowerStaticField(className string, decl *ast.StaticVariableDecl) {
	name := mangleStatic(className, decl.Name)
	l.b.Module.AddGlobal(name)
	if v := decl.Value.Get(); v != nil {
		l.staticInits = append(l.staticInits, staticInit{name: name, value: v})
	}
}

// lowerStaticFunction lowers a static method under its mangled
// Class__member name rather than the dotted instance-method
// form, since static members have no `this` and are looked up as a
// mangled global in lowerStaticMethodCall/member-access-on-class-name.
func (l *Lowerer) lowerStaticFunction(name string, params []ast.Param, returnType string, body ast.NodeField, className string) {
	fn := l.b.CreateFunction(mangleStatic(className, name), returnType)
	l.b.ResetTempCounter()
	l.resultCounter = 0
	for _, p := range params {
		fn.AddParam(p.Name, p.Type)
	}
	if fn.ParamCount == ir.ForwardDecl {
		fn.ParamCount = 0
	}
	entry := l.b.CreateBlock("entry")
	l.b.SetCurrentBlock(entry)
	l.b.PushScope()
	for _, p := range params {
		l.b.Declare(p.Name)
	}
	if blk, ok := body.Get().(*ast.Block); ok {
		l.lowerBlock(blk)
	}
	if l.b.CurrentBlock.Terminator() == nil {
		if returnType == "void" || returnType == "" {
			l.b.Return(ir.Void())
		} else {
			l.b.Return(l.b.Imm(0))
		}
	}
	l.b.PopScope()
}

func (l *Lowerer) lowerCtor(className string, params []ast.Param, body ast.NodeField) {
	fn := l.b.CreateFunction(mangleCtor(className), "void")
	l.b.ResetTempCounter()
	l.resultCounter = 0
	prevClass := l.currentClass
	l.currentClass = className

	fn.AddParam("this", fieldPointerType(className))
	for _, p := range params {
		fn.AddParam(p.Name, p.Type)
	}

	entry := l.b.CreateBlock("entry")
	l.b.SetCurrentBlock(entry)
	l.b.PushScope()
	l.b.Declare("this")
	for _, p := range params {
		l.b.Declare(p.Name)
	}
	if blk, ok := body.Get().(*ast.Block); ok {
		l.lowerBlock(blk)
	}
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Return(ir.Void())
	}
	l.b.PopScope()
	l.currentClass = prevClass
}

func (l *Lowerer) lowerDtor(className string, body ast.NodeField) {
	fn := l.b.CreateFunction(mangleDtor(className), "void")
	l.b.ResetTempCounter()
	l.resultCounter = 0
	prevClass := l.currentClass
	l.currentClass = className

	fn.AddParam("this", fieldPointerType(className))
	entry := l.b.CreateBlock("entry")
	l.b.SetCurrentBlock(entry)
	l.b.PushScope()
	l.b.Declare("this")
	if blk, ok := body.Get().(*ast.Block); ok {
		l.lowerBlock(blk)
	}
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Return(ir.Void())
	}
	l.b.PopScope()
	l.currentClass = prevClass
}

// lowerProperty emits the synthetic getter/setter pair a property
// declaration implies: the getter loads the backing
// field's offset, the setter stores into it. An explicit user-supplied
// getter/setter body takes priority when present.
func (l *Lowerer) lowerProperty(className string, decl *ast.PropertyDecl) {
	backing := "$prop_" + decl.Name

	getterName := className + "." + decl.Name + ".get"
	l.b.CreateFunction(getterName, decl.Type).AddParam("this", fieldPointerType(className))
	l.b.ResetTempCounter()
	entry := l.b.CreateBlock("entry")
	l.b.SetCurrentBlock(entry)
	l.b.PushScope()
	l.b.Declare("this")
	if getter, ok := decl.Getter.Get().(*ast.PropertyGetter); ok && getter.Body.Get() != nil {
		if blk, ok := getter.Body.Get().(*ast.Block); ok {
			l.lowerBlock(blk)
		}
	} else if offset, ok := l.b.LayoutOffset(className, backing); ok {
		l.b.Return(l.b.LoadPtr(l.loadIdentifier("this"), offset))
	}
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Return(l.b.Imm(0))
	}
	l.b.PopScope()

	setterName := className + "." + decl.Name + ".set"
	setFn := l.b.CreateFunction(setterName, "void")
	setFn.AddParam("this", fieldPointerType(className))
	setFn.AddParam("value", decl.Type)
	l.b.ResetTempCounter()
	entry = l.b.CreateBlock("entry")
	l.b.SetCurrentBlock(entry)
	l.b.PushScope()
	l.b.Declare("this")
	l.b.Declare("value")
	if setter, ok := decl.Setter.Get().(*ast.PropertySetter); ok && setter.Body.Get() != nil {
		if blk, ok := setter.Body.Get().(*ast.Block); ok {
			l.lowerBlock(blk)
		}
	} else if offset, ok := l.b.LayoutOffset(className, backing); ok {
		l.b.StorePtr(l.loadIdentifier("this"), offset, l.loadIdentifier("value"))
	}
	if l.b.CurrentBlock.Terminator() == nil {
		l.b.Return(ir.Void())
	}
	l.b.PopScope()
}
