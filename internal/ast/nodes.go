package ast

// Param is a single (name, type) function parameter. Type is the raw type
// token text (e.g. "int32", "string", "Widget[]"); internal/types resolves
// it during type checking.
type Param struct {
	Name string `json:"name"`
	Type string `json:"param_type"`
}

type Program struct {
	Statements NodeList `json:"statements"`
}

func (*Program) NodeKind() Kind { return KindProgram }

type FunctionDecl struct {
	Name       string   `json:"name"`
	Params     []Param  `json:"params"`
	ReturnType string   `json:"return_type"`
	Body       NodeField `json:"body"`
}

func (*FunctionDecl) NodeKind() Kind { return KindFunctionDecl }

type StaticFunctionDecl struct {
	Name       string   `json:"name"`
	Params     []Param  `json:"params"`
	ReturnType string   `json:"return_type"`
	Body       NodeField `json:"body"`
}

func (*StaticFunctionDecl) NodeKind() Kind { return KindStaticFunctionDecl }

type VariableDecl struct {
	Name                    string    `json:"name"`
	Type                    string    `json:"var_type"`
	Value                   NodeField `json:"value"`
	IsArray                 bool      `json:"is_array"`
	ArraySize               NodeField `json:"array_size"`
	TemplateInstantiationType string  `json:"template_instantiation_type,omitempty"`
}

func (*VariableDecl) NodeKind() Kind { return KindVariableDecl }

type StaticVariableDecl struct {
	Name  string    `json:"name"`
	Type  string    `json:"var_type"`
	Value NodeField `json:"value"`
}

func (*StaticVariableDecl) NodeKind() Kind { return KindStaticVariableDecl }

type Assignment struct {
	Name  string    `json:"name"`
	Value NodeField `json:"value"`
}

func (*Assignment) NodeKind() Kind { return KindAssignment }

type ArrayAssignment struct {
	Array NodeField `json:"array"`
	Index NodeField `json:"index"`
	Value NodeField `json:"value"`
}

func (*ArrayAssignment) NodeKind() Kind { return KindArrayAssignment }

// CompoundOp is one of += -= *= /= %= &= |= ^= <<= >>=.
type CompoundOp string

type CompoundAssignment struct {
	Name     string     `json:"name"`
	Operator CompoundOp `json:"operator"`
	Value    NodeField  `json:"value"`
}

func (*CompoundAssignment) NodeKind() Kind { return KindCompoundAssignment }

type ArrayCompoundAssignment struct {
	Array    NodeField  `json:"array"`
	Index    NodeField  `json:"index"`
	Operator CompoundOp `json:"operator"`
	Value    NodeField  `json:"value"`
}

func (*ArrayCompoundAssignment) NodeKind() Kind { return KindArrayCompoundAssignment }

type If struct {
	Cond       NodeField `json:"condition"`
	ThenBranch NodeField `json:"then_branch"`
	ElseBranch NodeField `json:"else_branch"`
}

func (*If) NodeKind() Kind { return KindIf }

type While struct {
	Cond NodeField `json:"condition"`
	Body NodeField `json:"body"`
}

func (*While) NodeKind() Kind { return KindWhile }

type For struct {
	Init      NodeField `json:"init"`
	Cond      NodeField `json:"condition"`
	Increment NodeField `json:"increment"`
	Body      NodeField `json:"body"`
}

func (*For) NodeKind() Kind { return KindFor }

type ForEach struct {
	VarName  string    `json:"var_name"`
	Iterable NodeField `json:"iterable"`
	Body     NodeField `json:"body"`
}

func (*ForEach) NodeKind() Kind { return KindForEach }

type Return struct {
	Value NodeField `json:"value"`
}

func (*Return) NodeKind() Kind { return KindReturn }

type Print struct {
	Values NodeList `json:"values"`
}

func (*Print) NodeKind() Kind { return KindPrint }

type Binary struct {
	Left     NodeField `json:"left"`
	Operator string    `json:"operator"`
	Right    NodeField `json:"right"`
}

func (*Binary) NodeKind() Kind { return KindBinary }

type Unary struct {
	Operator  string    `json:"operator"`
	Operand   NodeField `json:"operand"`
	IsPostfix bool      `json:"is_postfix"`
}

func (*Unary) NodeKind() Kind { return KindUnary }

type Ternary struct {
	Cond       NodeField `json:"condition"`
	TrueValue  NodeField `json:"true_value"`
	FalseValue NodeField `json:"false_value"`
}

func (*Ternary) NodeKind() Kind { return KindTernary }

type Identifier struct {
	Name string `json:"name"`
}

func (*Identifier) NodeKind() Kind { return KindIdentifier }

type Number struct {
	Value float64 `json:"value"`
}

func (*Number) NodeKind() Kind { return KindNumber }

type String struct {
	Value string `json:"value"`
}

func (*String) NodeKind() Kind { return KindString }

type Boolean struct {
	Value bool `json:"value"`
}

func (*Boolean) NodeKind() Kind { return KindBoolean }

type Call struct {
	Name               string    `json:"name"`
	Arguments          NodeList  `json:"arguments"`
	ArgumentNames      []string  `json:"argument_names,omitempty"`
	Object             NodeField `json:"object"`
	ResolvedClassName  string    `json:"-"`
}

func (*Call) NodeKind() Kind { return KindCall }

type Block struct {
	Statements NodeList `json:"statements"`
}

func (*Block) NodeKind() Kind { return KindBlock }

type ArrayLiteral struct {
	Elements NodeList `json:"elements"`
}

func (*ArrayLiteral) NodeKind() Kind { return KindArrayLiteral }

type New struct {
	ClassName     string   `json:"class_name"`
	Arguments     NodeList `json:"arguments"`
	ArgumentNames []string `json:"argument_names,omitempty"`
}

func (*New) NodeKind() Kind { return KindNew }

type NewArray struct {
	ElementType string    `json:"element_type"`
	Size        NodeField `json:"size"`
}

func (*NewArray) NodeKind() Kind { return KindNewArray }

type NamespaceDecl struct {
	Name string    `json:"name"`
	Body NodeField `json:"body"`
}

func (*NamespaceDecl) NodeKind() Kind { return KindNamespaceDecl }

type ClassDecl struct {
	Name               string   `json:"name"`
	Body               NodeList `json:"body"`
	BaseClass          string   `json:"base_class,omitempty"`
	TemplateParams     []string `json:"template_params,omitempty"`
	Constraints        NodeList `json:"constraints,omitempty"`
}

func (*ClassDecl) NodeKind() Kind { return KindClassDecl }

type This struct{}

func (*This) NodeKind() Kind { return KindThis }

type MemberAccess struct {
	Object            NodeField `json:"object"`
	MemberName        string    `json:"member_name"`
	ResolvedClassName string    `json:"-"`
}

func (*MemberAccess) NodeKind() Kind { return KindMemberAccess }

type AccessModifier struct {
	Modifier AccessKind `json:"modifier"`
	Member   NodeField  `json:"member"`
}

func (*AccessModifier) NodeKind() Kind { return KindAccessModifier }

type ConstructorDecl struct {
	Params []Param   `json:"params"`
	Body   NodeField `json:"body"`
}

func (*ConstructorDecl) NodeKind() Kind { return KindConstructorDecl }

type DestructorDecl struct {
	ClassName string    `json:"class_name"`
	Body      NodeField `json:"body"`
}

func (*DestructorDecl) NodeKind() Kind { return KindDestructorDecl }

type Try struct {
	TryBlock      NodeField `json:"try_block"`
	CatchClauses  NodeList  `json:"catch_clauses"`
	FinallyClause NodeField `json:"finally_clause"`
}

func (*Try) NodeKind() Kind { return KindTry }

type Catch struct {
	ExceptionType string    `json:"exception_type"`
	ExceptionVar  string    `json:"exception_var"`
	Body          NodeField `json:"body"`
}

func (*Catch) NodeKind() Kind { return KindCatch }

type Finally struct {
	Body NodeField `json:"body"`
}

func (*Finally) NodeKind() Kind { return KindFinally }

type Throw struct {
	Value NodeField `json:"value"`
}

func (*Throw) NodeKind() Kind { return KindThrow }

type TemplateDecl struct {
	Params      []string  `json:"params"`
	Declaration NodeField `json:"declaration"`
	Constraints NodeList  `json:"constraints,omitempty"`
}

func (*TemplateDecl) NodeKind() Kind { return KindTemplateDecl }

type TemplateParam struct {
	Name string `json:"name"`
}

func (*TemplateParam) NodeKind() Kind { return KindTemplateParam }

type GenericType struct {
	Name string `json:"name"`
}

func (*GenericType) NodeKind() Kind { return KindGenericType }

type GenericConstraint struct {
	ParamName           string    `json:"param_name"`
	ConstraintType       string    `json:"constraint_type"`
	InterfaceConstraint NodeField `json:"interface_constraint"`
}

func (*GenericConstraint) NodeKind() Kind { return KindGenericConstraint }

type StaticMethodCall struct {
	ClassName  string   `json:"class_name"`
	MethodName string   `json:"method_name"`
	Arguments  NodeList `json:"arguments"`
}

func (*StaticMethodCall) NodeKind() Kind { return KindStaticMethodCall }

type ArrayAccess struct {
	Array NodeField `json:"array"`
	Index NodeField `json:"index"`
}

func (*ArrayAccess) NodeKind() Kind { return KindArrayAccess }

type Switch struct {
	Expression  NodeField `json:"expression"`
	Cases       NodeList  `json:"cases"`
	DefaultCase NodeField `json:"default_case"`
}

func (*Switch) NodeKind() Kind { return KindSwitch }

type Case struct {
	Value      NodeField `json:"value"`
	Statements NodeList  `json:"statements"`
}

func (*Case) NodeKind() Kind { return KindCase }

type Default struct {
	Statements NodeList `json:"statements"`
}

func (*Default) NodeKind() Kind { return KindDefault }

type Break struct {
	Value NodeField `json:"value"`
}

func (*Break) NodeKind() Kind { return KindBreak }

type Continue struct{}

func (*Continue) NodeKind() Kind { return KindContinue }

type Delete struct {
	Value             NodeField `json:"value"`
	ResolvedClassName string    `json:"-"`
	IsArray           bool      `json:"is_array"`
}

func (*Delete) NodeKind() Kind { return KindDelete }

type Using struct {
	Resource NodeField `json:"resource"`
	Body     NodeField `json:"body"`
}

func (*Using) NodeKind() Kind { return KindUsing }

type NamespaceImport struct {
	NamespaceName string `json:"namespace_name"`
}

func (*NamespaceImport) NodeKind() Kind { return KindNamespaceImport }

type PropertyDecl struct {
	Name         string    `json:"name"`
	Type         string    `json:"prop_type"`
	Getter       NodeField `json:"getter"`
	Setter       NodeField `json:"setter"`
	InitialValue NodeField `json:"initial_value"`
	Attributes   NodeList  `json:"attributes,omitempty"`
}

func (*PropertyDecl) NodeKind() Kind { return KindPropertyDecl }

type PropertyGetter struct {
	Body NodeField `json:"body"`
}

func (*PropertyGetter) NodeKind() Kind { return KindPropertyGetter }

type PropertySetter struct {
	ValueParamName string    `json:"value_param_name"`
	Body           NodeField `json:"body"`
}

func (*PropertySetter) NodeKind() Kind { return KindPropertySetter }

type Lambda struct {
	Params     []string  `json:"params"`
	Body       NodeField `json:"body"`
	Expression NodeField `json:"expression"`
}

func (*Lambda) NodeKind() Kind { return KindLambda }

type LINQQuery struct {
	From    NodeField `json:"from_clause"`
	Clauses NodeList  `json:"clauses"`
	Select  NodeField `json:"select_clause"`
}

func (*LINQQuery) NodeKind() Kind { return KindLINQQuery }

type LINQFrom struct {
	VarName string    `json:"var_name"`
	Source  NodeField `json:"source"`
	Type    string    `json:"elem_type,omitempty"`
}

func (*LINQFrom) NodeKind() Kind { return KindLINQFrom }

type LINQWhere struct {
	Cond NodeField `json:"condition"`
}

func (*LINQWhere) NodeKind() Kind { return KindLINQWhere }

type LINQSelect struct {
	Expression  NodeField `json:"expression"`
	KeySelector NodeField `json:"key_selector"`
	Ascending   bool      `json:"ascending"`
}

func (*LINQSelect) NodeKind() Kind { return KindLINQSelect }

type LINQOrderBy struct {
	Expression NodeField `json:"expression"`
	Ascending  bool      `json:"ascending"`
}

func (*LINQOrderBy) NodeKind() Kind { return KindLINQOrderBy }

type LINQJoin struct {
	VarName      string    `json:"var_name"`
	Source       NodeField `json:"source"`
	JoinVarName  string    `json:"join_var_name"`
	JoinSource   NodeField `json:"join_source"`
	LeftKey      NodeField `json:"left_key"`
	RightKey     NodeField `json:"right_key"`
	IntoVarName  string    `json:"into_var_name,omitempty"`
}

func (*LINQJoin) NodeKind() Kind { return KindLINQJoin }

type Attribute struct {
	Name          string    `json:"name"`
	Arguments     NodeList  `json:"arguments"`
	NamedArguments NodeField `json:"named_arguments"`
}

func (*Attribute) NodeKind() Kind { return KindAttribute }

type AttributeList struct {
	Attributes NodeList  `json:"attributes"`
	Target     NodeField `json:"target"`
}

func (*AttributeList) NodeKind() Kind { return KindAttributeList }
