package types

import (
	"strconv"
	"strings"
)

var primitiveKinds = map[string]Kind{
	"void": KindVoid,
	"int8": KindInt8, "int16": KindInt16, "int32": KindInt32, "int64": KindInt64,
	"uint8": KindUInt8, "uint16": KindUInt16, "uint32": KindUInt32, "uint64": KindUInt64,
	"float32": KindFloat32, "float64": KindFloat64,
	"bool": KindBool, "string": KindString,
}

// ClassResolver looks a class name up by name; it's satisfied by the type
// checker's class registry.
type ClassResolver interface {
	ResolveClass(name string) *ClassInfo
}

// Parse turns a raw type token from the AST (e.g. "int32", "int32*",
// "int32[10]", "Widget") into a Type. Unknown class names resolve to
// Unknown rather than failing outright, consistent with the checker's
// "never abort on a single error" discipline — the caller is expected to
// report a diagnostic when ResolveClass returns nil.
func Parse(token string, classes ClassResolver) *Type {
	token = strings.TrimSpace(token)
	if token == "" {
		return Unknown()
	}
	if strings.HasSuffix(token, "*") {
		return Pointer(Parse(strings.TrimSuffix(token, "*"), classes))
	}
	if idx := strings.IndexByte(token, '['); idx >= 0 && strings.HasSuffix(token, "]") {
		elemTok := token[:idx]
		sizeTok := token[idx+1 : len(token)-1]
		size := 0
		if sizeTok != "" {
			if n, err := strconv.Atoi(sizeTok); err == nil {
				size = n
			}
		}
		return Array(Parse(elemTok, classes), size)
	}
	if k, ok := primitiveKinds[token]; ok {
		return &Type{Kind: k}
	}
	if classes != nil {
		if info := classes.ResolveClass(token); info != nil {
			return Class(info)
		}
	}
	return Unknown()
}
