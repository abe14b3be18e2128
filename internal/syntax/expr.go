package syntax

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// LiteralKind classifies literal tokens.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitReal
	LitString
	LitChar
	LitBool
	LitNull
)

type Ident struct {
	Span
	Name     string
	TypeArgs []*TypeRef
}

type Literal struct {
	Span
	Kind  LiteralKind
	Value string
}

type ThisExpr struct {
	Span
}

type BaseExpr struct {
	Span
}

// PredefinedType is a keyword type used as an expression, as in `int.Parse`.
type PredefinedType struct {
	Span
	Name string
}

type MemberAccess struct {
	Span
	X        Expr
	Name     string
	TypeArgs []*TypeRef
	NullCond bool
}

type Argument struct {
	Span
	Name     string
	Modifier string
	Value    Expr
}

type Invocation struct {
	Span
	Fun  Expr
	Args []*Argument
}

type ElementAccess struct {
	Span
	X        Expr
	Args     []*Argument
	NullCond bool
}

type UnaryExpr struct {
	Span
	Op      string
	X       Expr
	Postfix bool
}

type BinaryExpr struct {
	Span
	Op string
	X  Expr
	Y  Expr
}

type AssignExpr struct {
	Span
	Op  string
	Lhs Expr
	Rhs Expr
}

type ConditionalExpr struct {
	Span
	Cond Expr
	Then Expr
	Else Expr
}

// NewExpr is `new T(args) { init }`, `new T[n]`, `new[] { }` or target-typed `new()`.
type NewExpr struct {
	Span
	Type      *TypeRef
	Args      []*Argument
	Init      []Expr
	ArraySize []Expr
}

type LambdaExpr struct {
	Span
	Params []*Param
	Body   Node
	Async  bool
}

type CastExpr struct {
	Span
	Type *TypeRef
	X    Expr
}

// IsExpr is `x is T`, `x is T name`, `x is null` and their `not` forms.
type IsExpr struct {
	Span
	X       Expr
	Type    *TypeRef
	Pattern Expr
	VarName string
	Not     bool
}

type AsExpr struct {
	Span
	X    Expr
	Type *TypeRef
}

// TypeOfExpr covers typeof, sizeof and default(T).
type TypeOfExpr struct {
	Span
	Keyword string
	Type    *TypeRef
}

type DefaultExpr struct {
	Span
}

type ParenExpr struct {
	Span
	X Expr
}

// InitializerExpr is a brace-delimited collection or object initializer list.
type InitializerExpr struct {
	Span
	Elems []Expr
}

type AwaitExpr struct {
	Span
	X Expr
}

type ThrowExpr struct {
	Span
	X Expr
}

type TupleExpr struct {
	Span
	Elems []*Argument
}

// DeclExpr is an inline declaration such as `out var x`.
type DeclExpr struct {
	Span
	Type *TypeRef
	Name string
}

// SwitchExpr is `x switch { pattern => value, ... }`.
type SwitchExpr struct {
	Span
	X    Expr
	Arms []*SwitchArm
}

type SwitchArm struct {
	Span
	Pattern Expr
	When    Expr
	Value   Expr
}

func (*Ident) exprNode()           {}
func (*Literal) exprNode()         {}
func (*ThisExpr) exprNode()        {}
func (*BaseExpr) exprNode()        {}
func (*PredefinedType) exprNode()  {}
func (*MemberAccess) exprNode()    {}
func (*Invocation) exprNode()      {}
func (*ElementAccess) exprNode()   {}
func (*UnaryExpr) exprNode()       {}
func (*BinaryExpr) exprNode()      {}
func (*AssignExpr) exprNode()      {}
func (*ConditionalExpr) exprNode() {}
func (*NewExpr) exprNode()         {}
func (*LambdaExpr) exprNode()      {}
func (*CastExpr) exprNode()        {}
func (*IsExpr) exprNode()          {}
func (*AsExpr) exprNode()          {}
func (*TypeOfExpr) exprNode()      {}
func (*DefaultExpr) exprNode()     {}
func (*ParenExpr) exprNode()       {}
func (*InitializerExpr) exprNode() {}
func (*AwaitExpr) exprNode()       {}
func (*ThrowExpr) exprNode()       {}
func (*TupleExpr) exprNode()       {}
func (*DeclExpr) exprNode()        {}
func (*SwitchExpr) exprNode()      {}

// QualifiedName flattens an identifier/member-access chain into "A.B.C", or "" if the chain contains anything else.
func QualifiedName(e Expr) string {
	switch x := e.(type) {
	case *Ident:
		return x.Name
	case *PredefinedType:
		return x.Name
	case *MemberAccess:
		left := QualifiedName(x.X)
		if left == "" {
			return ""
		}
		return left + "." + x.Name
	}
	return ""
}
