package typecheck

import (
	"escomp/internal/ast"
	"escomp/internal/diagnostics"
	"escomp/internal/types"
)

// collectDecls is the declarations pass (mirrors the teacher's
// collectFunctions): it registers every function and class signature
// before any body is checked, so mutually-recursive and forward-
// referencing calls resolve regardless of source order.
func (c *Checker) collectDecls(stmts ast.NodeList) {
	// Classes first: their member signatures (and field layout inputs) must
	// be available before any function body referencing them is checked.
	for _, n := range stmts {
		if cd, ok := n.(*ast.ClassDecl); ok {
			c.collectClassDecl(cd)
		}
	}
	for _, n := range stmts {
		switch decl := n.(type) {
		case *ast.FunctionDecl:
			c.collectFunctionDecl(decl, false, "")
		case *ast.StaticFunctionDecl:
			c.collectStaticFunctionDecl(decl)
		case *ast.NamespaceDecl:
			if body, ok := decl.Body.Get().(*ast.Block); ok {
				c.collectDecls(body.Statements)
			}
		}
	}
}

func (c *Checker) collectFunctionDecl(decl *ast.FunctionDecl, isStatic bool, className string) {
	sig := &FuncSig{
		Name:     decl.Name,
		Return:   types.Parse(decl.ReturnType, c),
		IsStatic: isStatic,
		ClassName: className,
	}
	for _, p := range decl.Params {
		sig.Params = append(sig.Params, types.Parse(p.Type, c))
		sig.ParamNames = append(sig.ParamNames, p.Name)
	}
	if _, exists := c.funcs[decl.Name]; exists {
		c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
			"function %q declared more than once", decl.Name)
		return
	}
	c.funcs[decl.Name] = sig
}

func (c *Checker) collectStaticFunctionDecl(decl *ast.StaticFunctionDecl) {
	sig := &FuncSig{
		Name:     decl.Name,
		Return:   types.Parse(decl.ReturnType, c),
		IsStatic: true,
	}
	for _, p := range decl.Params {
		sig.Params = append(sig.Params, types.Parse(p.Type, c))
		sig.ParamNames = append(sig.ParamNames, p.Name)
	}
	if _, exists := c.funcs[decl.Name]; exists {
		c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
			"function %q declared more than once", decl.Name)
		return
	}
	c.funcs[decl.Name] = sig
}

// collectClassDecl registers the class's member signatures: fields,
// methods, properties (synthesized getter/setter members), and any
// explicitly declared constructor and destructor (no implicit constructor
// is registered).
func (c *Checker) collectClassDecl(decl *ast.ClassDecl) {
	info := types.NewClassInfo(decl.Name)
	if decl.BaseClass != "" {
		if base, ok := c.classes[decl.BaseClass]; ok {
			info.Base = base
		} else {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
				"class %q extends unknown base class %q", decl.Name, decl.BaseClass)
		}
	}
	c.classes[decl.Name] = info

	for _, member := range decl.Body {
		c.collectClassMember(info, member, types.AccessPublic)
	}
}

func (c *Checker) collectClassMember(info *types.ClassInfo, node ast.Node, access types.Access) {
	switch m := node.(type) {
	case *ast.AccessModifier:
		c.collectClassMember(info, m.Member.Get(), accessFromModifier(m.Modifier))
	case *ast.VariableDecl:
		member := &types.Member{Name: m.Name, Kind: types.MemberField, Access: access, Type: types.Parse(m.Type, c)}
		if !info.AddMember(member) {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
				"class %q: duplicate member %q", info.Name, m.Name)
		}
	case *ast.StaticVariableDecl:
		member := &types.Member{Name: m.Name, Kind: types.MemberField, Access: access, IsStatic: true, Type: types.Parse(m.Type, c)}
		if !info.AddMember(member) {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
				"class %q: duplicate member %q", info.Name, m.Name)
		}
	case *ast.FunctionDecl:
		params := make([]*types.Type, 0, len(m.Params))
		for _, p := range m.Params {
			params = append(params, types.Parse(p.Type, c))
		}
		member := &types.Member{
			Name: m.Name, Kind: types.MemberMethod, Access: access,
			Type: types.Function(types.Parse(m.ReturnType, c), params),
		}
		if !info.AddMember(member) {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
				"class %q: duplicate member %q", info.Name, m.Name)
		}
		c.funcs[info.Name+"."+m.Name] = &FuncSig{
			Name: m.Name, ClassName: info.Name, Return: types.Parse(m.ReturnType, c),
			Params: params, ParamNames: paramNames(m.Params),
		}
	case *ast.StaticFunctionDecl:
		params := make([]*types.Type, 0, len(m.Params))
		for _, p := range m.Params {
			params = append(params, types.Parse(p.Type, c))
		}
		member := &types.Member{
			Name: m.Name, Kind: types.MemberMethod, Access: access, IsStatic: true,
			Type: types.Function(types.Parse(m.ReturnType, c), params),
		}
		if !info.AddMember(member) {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
				"class %q: duplicate member %q", info.Name, m.Name)
		}
		c.funcs[info.Name+"."+m.Name] = &FuncSig{
			Name: m.Name, ClassName: info.Name, IsStatic: true, Return: types.Parse(m.ReturnType, c),
			Params: params, ParamNames: paramNames(m.Params),
		}
	case *ast.ConstructorDecl:
		params := make([]*types.Type, 0, len(m.Params))
		for _, p := range m.Params {
			params = append(params, types.Parse(p.Type, c))
		}
		member := &types.Member{Name: "ctor", Kind: types.MemberCtor, Access: access, Type: types.Function(types.Void(), params)}
		info.AddMember(member)
		c.funcs[info.Name+".ctor"] = &FuncSig{
			Name: "ctor", ClassName: info.Name, Return: types.Void(),
			Params: params, ParamNames: paramNames(m.Params),
		}
	case *ast.DestructorDecl:
		member := &types.Member{Name: "dtor", Kind: types.MemberDtor, Access: access, Type: types.Function(types.Void(), nil)}
		info.AddMember(member)
		c.funcs[info.Name+".dtor"] = &FuncSig{Name: "dtor", ClassName: info.Name, Return: types.Void()}
	case *ast.PropertyDecl:
		propType := types.Parse(m.Type, c)
		getter := &types.Member{Name: m.Name + ".get", Kind: types.MemberMethod, Access: access, Type: types.Function(propType, nil)}
		setter := &types.Member{Name: m.Name + ".set", Kind: types.MemberMethod, Access: access, Type: types.Function(types.Void(), []*types.Type{propType})}
		prop := &types.Member{Name: m.Name, Kind: types.MemberProperty, Access: access, Type: propType, Getter: getter, Setter: setter}
		if !info.AddMember(prop) {
			c.Diagnostics.Errorf(diagnostics.CategoryStructural, diagnostics.Location{},
				"class %q: duplicate member %q", info.Name, m.Name)
		}
	}
}

func accessFromModifier(mod ast.AccessKind) types.Access {
	switch mod {
	case ast.AccessPrivate:
		return types.AccessPrivate
	case ast.AccessProtected:
		return types.AccessProtected
	default:
		return types.AccessPublic
	}
}

func paramNames(params []ast.Param) []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return names
}
