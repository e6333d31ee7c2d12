// Package ast defines the untyped AST node set that stands in for the
// excluded lexer/parser: this module's external input interface. The
// front end is only specified at its output interface, so this package
// documents that interface as JSON-decodable Go types rather than
// building a scanner/parser of its own.
package ast

// Kind discriminates AST node types, mirroring the original
// implementation's ASTNodeType enum.
type Kind string

const (
	KindProgram                   Kind = "Program"
	KindFunctionDecl               Kind = "FunctionDecl"
	KindStaticFunctionDecl         Kind = "StaticFunctionDecl"
	KindVariableDecl               Kind = "VariableDecl"
	KindStaticVariableDecl         Kind = "StaticVariableDecl"
	KindAssignment                 Kind = "Assignment"
	KindArrayAssignment            Kind = "ArrayAssignment"
	KindCompoundAssignment         Kind = "CompoundAssignment"
	KindArrayCompoundAssignment    Kind = "ArrayCompoundAssignment"
	KindIf                         Kind = "If"
	KindWhile                      Kind = "While"
	KindFor                        Kind = "For"
	KindForEach                    Kind = "ForEach"
	KindReturn                     Kind = "Return"
	KindPrint                      Kind = "Print"
	KindBinary                     Kind = "Binary"
	KindUnary                      Kind = "Unary"
	KindTernary                    Kind = "Ternary"
	KindIdentifier                 Kind = "Identifier"
	KindNumber                     Kind = "Number"
	KindString                     Kind = "String"
	KindBoolean                    Kind = "Boolean"
	KindCall                       Kind = "Call"
	KindBlock                      Kind = "Block"
	KindArrayLiteral               Kind = "ArrayLiteral"
	KindNew                        Kind = "New"
	KindNewArray                   Kind = "NewArray"
	KindNamespaceDecl              Kind = "NamespaceDecl"
	KindClassDecl                  Kind = "ClassDecl"
	KindThis                       Kind = "This"
	KindMemberAccess               Kind = "MemberAccess"
	KindAccessModifier             Kind = "AccessModifier"
	KindConstructorDecl            Kind = "ConstructorDecl"
	KindDestructorDecl             Kind = "DestructorDecl"
	KindTry                        Kind = "Try"
	KindCatch                      Kind = "Catch"
	KindFinally                    Kind = "Finally"
	KindThrow                      Kind = "Throw"
	KindTemplateDecl               Kind = "TemplateDecl"
	KindTemplateParam              Kind = "TemplateParam"
	KindGenericType                Kind = "GenericType"
	KindGenericConstraint          Kind = "GenericConstraint"
	KindStaticMethodCall           Kind = "StaticMethodCall"
	KindArrayAccess                Kind = "ArrayAccess"
	KindSwitch                     Kind = "Switch"
	KindCase                       Kind = "Case"
	KindDefault                    Kind = "Default"
	KindBreak                      Kind = "Break"
	KindContinue                   Kind = "Continue"
	KindDelete                     Kind = "Delete"
	KindUsing                      Kind = "Using"
	KindNamespaceImport            Kind = "NamespaceImport"
	KindPropertyDecl               Kind = "PropertyDecl"
	KindPropertyGetter             Kind = "PropertyGetter"
	KindPropertySetter             Kind = "PropertySetter"
	KindLambda                     Kind = "Lambda"
	KindLINQQuery                  Kind = "LINQQuery"
	KindLINQFrom                   Kind = "LINQFrom"
	KindLINQWhere                  Kind = "LINQWhere"
	KindLINQSelect                 Kind = "LINQSelect"
	KindLINQOrderBy                Kind = "LINQOrderBy"
	KindLINQJoin                   Kind = "LINQJoin"
	KindAttribute                  Kind = "Attribute"
	KindAttributeList              Kind = "AttributeList"
)

// Node is satisfied by every concrete AST node type.
type Node interface {
	NodeKind() Kind
}

// AccessKind is one of Public, Private, Protected.
type AccessKind string

const (
	AccessPublic    AccessKind = "public"
	AccessPrivate   AccessKind = "private"
	AccessProtected AccessKind = "protected"
)
