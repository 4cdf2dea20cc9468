package expr

// Op is a unary or binary operator.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpLE  Op = "<="
	OpLT  Op = "<"
	OpGE  Op = ">="
	OpGT  Op = ">"
	OpEq  Op = "=="
	OpNE  Op = "!="
	OpAnd Op = "&&"
	OpOr  Op = "||"
	OpNeg Op = "neg"
	OpNot Op = "!"
)

// IsArithmetic reports whether op takes two ints and yields an int.
func (op Op) IsArithmetic() bool {
	return op == OpAdd || op == OpSub || op == OpMul || op == OpDiv
}

// IsOrdering reports whether op is one of < <= > >=.
func (op Op) IsOrdering() bool {
	return op == OpLE || op == OpLT || op == OpGE || op == OpGT
}

// IsEquality reports whether op is == or !=.
func (op Op) IsEquality() bool { return op == OpEq || op == OpNE }

// IsLogical reports whether op is && or ||.
func (op Op) IsLogical() bool { return op == OpAnd || op == OpOr }

// Node is an expression node. Pos is the byte offset of the node in the
// original source text.
type Node interface {
	Pos() int
	exprNode() // Sealed
}

// IntLit is an integer literal.
type IntLit struct {
	Value  int64
	Offset int
}

// BoolLit is true or false.
type BoolLit struct {
	Value  bool
	Offset int
}

// StringLit is a double-quoted string literal with escapes resolved.
type StringLit struct {
	Value  string
	Offset int
}

// Ident references a variable by name.
type Ident struct {
	Name   string
	Offset int
}

// Member is a dereference Variable->Attribute.
type Member struct {
	Target    *Ident
	Attribute string
	AttrPos   int
}

// Binary applies Op to Left and Right. Offset is the operator position.
type Binary struct {
	Op     Op
	Left   Node
	Right  Node
	Offset int
}

// Unary applies OpNeg or OpNot to Operand.
type Unary struct {
	Op      Op
	Operand Node
	Offset  int
}

func (n *IntLit) Pos() int    { return n.Offset }
func (n *BoolLit) Pos() int   { return n.Offset }
func (n *StringLit) Pos() int { return n.Offset }
func (n *Ident) Pos() int     { return n.Offset }
func (n *Member) Pos() int    { return n.Target.Offset }
func (n *Binary) Pos() int    { return n.Left.Pos() }
func (n *Unary) Pos() int     { return n.Offset }

func (*IntLit) exprNode()    {}
func (*BoolLit) exprNode()   {}
func (*StringLit) exprNode() {}
func (*Ident) exprNode()     {}
func (*Member) exprNode()    {}
func (*Binary) exprNode()    {}
func (*Unary) exprNode()     {}

// Stmt is a statement of the complex condition form.
type Stmt interface {
	Pos() int
	stmtNode() // Sealed
}

// ExprStmt evaluates an expression and discards the value. Its only
// observable effect is consuming random rolls.
type ExprStmt struct {
	X Node
}

// ReturnStmt yields the condition result and ends the path.
type ReturnStmt struct {
	Value  Node
	Offset int
}

// IfStmt runs Then when Cond holds, otherwise Else. Else is nil, a *Block,
// or an *IfStmt for else-if chains.
type IfStmt struct {
	Cond   Node
	Then   *Block
	Else   Stmt
	Offset int
}

// Block is a brace-delimited (or top-level) statement sequence.
type Block struct {
	Stmts  []Stmt
	Offset int
}

func (s *ExprStmt) Pos() int   { return s.X.Pos() }
func (s *ReturnStmt) Pos() int { return s.Offset }
func (s *IfStmt) Pos() int     { return s.Offset }
func (s *Block) Pos() int      { return s.Offset }

func (*ExprStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*Block) stmtNode()      {}

// Segment is one piece of a formatted-text template: literal Text when Expr
// is nil, otherwise an embedded expression.
type Segment struct {
	Text   string
	Expr   Node
	Offset int
}

// Template is a parsed formatted-text source.
type Template struct {
	Segments []Segment
}

// Walk calls fn for n and every expression node beneath it, depth first,
// left to right. Walk stops descending when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Member:
		Walk(v.Target, fn)
	case *Binary:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *Unary:
		Walk(v.Operand, fn)
	}
}
