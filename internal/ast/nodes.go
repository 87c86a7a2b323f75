package ast

// DataNode is any node that carries a type slot written back by the
// Inferer. Untyped syntactic nodes (LetDef, Clause, TypeDef, Constructor)
// do not implement it.
type DataNode interface {
	Node
	GetType() Type
	SetType(Type)
}

// Typed is embedded by every DataNode implementation to provide the
// GetType/SetType pair and the position. Its Type field is written
// by the Inferer's write-back phase; before that, infer.GetTypeHandle
// uses it to stash a fresh Partial, and the analyzer stamps a fresh
// Ref/Array type on an unannotated VariableDef/ArrayVariableDef.
type Typed struct {
	Pos  Pos
	Type Type
}

func (t *Typed) Position() Pos  { return t.Pos }
func (t *Typed) GetType() Type  { return t.Type }
func (t *Typed) SetType(ty Type) { t.Type = ty }

// Def is implemented by every node that introduces a new value-level
// binding: ConstantDef, FunctionDef, VariableDef, ArrayVariableDef,
// Param, GenidPattern.
type Def interface {
	DataNode
	DefName() string
}

// Expr is implemented by every expression node.
type Expr interface {
	DataNode
	exprNode()
}

// PatternNode is implemented by every pattern node.
type PatternNode interface {
	Node
	patternNode()
}

// ===== Program structure =====

// Program is the root node: an ordered list of top-level definitions.
type Program struct {
	Defs []Node // *LetDef or *TypeDef, in source order
}

func (p *Program) Position() Pos { return Pos{} }

// LetDef is a (possibly recursive) group of bindings; only in a
// recursive group can the bodies see the group's own names.
type LetDef struct {
	Pos   Pos
	IsRec bool
	Defs  []Def // *ConstantDef, *FunctionDef, *VariableDef, *ArrayVariableDef
}

func (l *LetDef) Position() Pos { return l.Pos }

// TypeDef is a mutually-recursive group of ADT declarations.
type TypeDef struct {
	Pos   Pos
	Types []*TDef
}

func (t *TypeDef) Position() Pos { return t.Pos }

// TDef declares one ADT: a name plus its constructors.
type TDef struct {
	Pos          Pos
	TypeName     string
	Constructors []*Constructor
}

func (t *TDef) Position() Pos { return t.Pos }

// Constructor is one alternative of a user type declaration.
type Constructor struct {
	Pos      Pos
	Name     string
	ArgTypes []Type
}

func (c *Constructor) Position() Pos    { return c.Pos }
func (c *Constructor) IdentName() string { return c.Name }
func (c *Constructor) Arity() int       { return len(c.ArgTypes) }

// ===== Definitions =====

// ConstantDef binds Name = Body.
type ConstantDef struct {
	Typed
	Name string
	Body Expr
}

func (d *ConstantDef) DefName() string  { return d.Name }
func (d *ConstantDef) IdentName() string { return d.Name }

// FunctionDef binds Name Arguments... = Body.
type FunctionDef struct {
	Typed
	Name      string
	Arguments []*Param
	Body      Expr
}

func (d *FunctionDef) DefName() string   { return d.Name }
func (d *FunctionDef) IdentName() string { return d.Name }

// Param is a formal function parameter.
type Param struct {
	Typed
	Name string
}

func (p *Param) DefName() string   { return p.Name }
func (p *Param) IdentName() string { return p.Name }

// VariableDef binds a mutable reference cell: mutable Name : T.
type VariableDef struct {
	Typed
	Name string
}

func (d *VariableDef) DefName() string   { return d.Name }
func (d *VariableDef) IdentName() string { return d.Name }

// ArrayVariableDef binds a mutable multi-dimensional array of Dims
// dimensions; its type is Array(elem, Dims).
type ArrayVariableDef struct {
	Typed
	Name string
	Dims int
}

func (d *ArrayVariableDef) DefName() string   { return d.Name }
func (d *ArrayVariableDef) IdentName() string { return d.Name }

// ===== Expressions =====

// ConstExpr is a literal whose Type has already been set by the parser.
type ConstExpr struct {
	Typed
	Value any
}

func (*ConstExpr) exprNode() {}

// NameRef is a value-level identifier reference.
type NameRef struct {
	Typed
	Name    string
	DefLink Def
}

func (*NameRef) exprNode()        {}
func (n *NameRef) IdentName() string { return n.Name }

// ConstructorRef is a zero-argument constructor reference.
type ConstructorRef struct {
	Typed
	Name    string
	DefLink *Constructor
}

func (*ConstructorRef) exprNode()       {}
func (c *ConstructorRef) IdentName() string { return c.Name }

// UnaryExpr applies a unary operator, keyed by its spelling.
type UnaryExpr struct {
	Typed
	Operator string
	Operand  Expr
}

func (*UnaryExpr) exprNode() {}

// BinaryExpr applies a binary operator, keyed by its spelling.
type BinaryExpr struct {
	Typed
	Left     Expr
	Operator string
	Right    Expr
}

func (*BinaryExpr) exprNode() {}

// CallExpr is a value-level function call: Callee Args...
type CallExpr struct {
	Typed
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// ConstructorCallExpr applies a constructor to arguments.
type ConstructorCallExpr struct {
	Typed
	Name    string
	Args    []Expr
	DefLink *Constructor
}

func (*ConstructorCallExpr) exprNode() {}

// ArrayIndexExpr is name[i1, i2, ...] used as an lvalue/rvalue; its type
// is always Ref(elem).
type ArrayIndexExpr struct {
	Typed
	Name    string
	Indices []Expr
}

func (*ArrayIndexExpr) exprNode() {}

// DimExpr queries the k-th dimension of an array-typed name.
type DimExpr struct {
	Typed
	Name      string
	Dimension int // k, defaults to 1
}

func (*DimExpr) exprNode() {}

// NewExpr allocates a fresh reference cell of type AllocType.
type NewExpr struct {
	Typed
	AllocType Type
}

func (*NewExpr) exprNode() {}

// DeleteExpr frees a reference cell.
type DeleteExpr struct {
	Typed
	Operand Expr
}

func (*DeleteExpr) exprNode() {}

// IfExpr is if Cond then Then [else Else].
type IfExpr struct {
	Typed
	Cond Expr
	Then Expr
	Else Expr // nil if absent
}

func (*IfExpr) exprNode() {}

// ForExpr is a counted loop. IsDown selects counting down (downto) vs up
// (to); it has no bearing on inferred types.
type ForExpr struct {
	Typed
	Counter *Param
	Start   Expr
	Stop    Expr
	Body    Expr
	IsDown  bool
}

func (*ForExpr) exprNode() {}

// WhileExpr is while Cond do Body.
type WhileExpr struct {
	Typed
	Cond Expr
	Body Expr
}

func (*WhileExpr) exprNode() {}

// LetInExpr is let LetDef in Body.
type LetInExpr struct {
	Typed
	LetDef *LetDef
	Body   Expr
}

func (*LetInExpr) exprNode() {}

// SeqExpr is Left ; Right.
type SeqExpr struct {
	Typed
	Left  Expr
	Right Expr
}

func (*SeqExpr) exprNode() {}

// MatchExpr is match Scrutinee with Clauses....
type MatchExpr struct {
	Typed
	Scrutinee Expr
	Clauses   []*Clause
}

func (*MatchExpr) exprNode() {}

// Clause is one `| Pattern -> Expr` arm of a match.
type Clause struct {
	Pos     Pos
	Pattern PatternNode
	Body    Expr
}

func (c *Clause) Position() Pos { return c.Pos }

// ===== Patterns =====

// ConPattern matches a constructor applied to sub-patterns (possibly zero).
type ConPattern struct {
	Typed
	Name    string
	Args    []PatternNode
	DefLink *Constructor
}

func (*ConPattern) patternNode()      {}
func (p *ConPattern) IdentName() string { return p.Name }

// LiteralPattern matches a literal constant; its Type is set by the parser,
// the same way ConstExpr's is.
type LiteralPattern struct {
	Typed
	Value any
}

func (*LiteralPattern) patternNode() {}

// GenidPattern binds a fresh name in the current scope.
type GenidPattern struct {
	Typed
	Name string
}

func (*GenidPattern) patternNode()       {}
func (p *GenidPattern) DefName() string   { return p.Name }
func (p *GenidPattern) IdentName() string { return p.Name }
