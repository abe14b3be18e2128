package syntax

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

type Block struct {
	Span
	Stmts []Stmt
}

type EmptyStmt struct {
	Span
}

type ExprStmt struct {
	Span
	X Expr
}

// LocalDecl declares one or more locals; Type is nil for `var`.
type LocalDecl struct {
	Span
	Type  *TypeRef
	Const bool
	Ref   bool
	Vars  []*VarDeclarator
}

// LocalFuncStmt is a local function declared inside a body.
type LocalFuncStmt struct {
	Span
	Func *MethodDecl
}

type IfStmt struct {
	Span
	Cond Expr
	Then Stmt
	Else Stmt
}

type ForStmt struct {
	Span
	Init []Stmt
	Cond Expr
	Post []Expr
	Body Stmt
}

type ForeachStmt struct {
	Span
	Type       *TypeRef
	VarName    string
	VarSpan    Span
	Collection Expr
	Body       Stmt
	Await      bool
}

type WhileStmt struct {
	Span
	Cond Expr
	Body Stmt
}

type DoStmt struct {
	Span
	Body Stmt
	Cond Expr
}

// CaseLabel is `case <pattern>:` or `default:` (Value and Pattern nil).
type CaseLabel struct {
	Span
	Value Expr
	// PatternType and PatternVar describe a declaration pattern `case T x`.
	PatternType *TypeRef
	PatternVar  string
	When        Expr
}

type SwitchSection struct {
	Span
	Labels []*CaseLabel
	Stmts  []Stmt
}

type SwitchStmt struct {
	Span
	Tag      Expr
	Sections []*SwitchSection
}

// UsingStmt is `using (resource) body` or a using declaration when Body is nil.
type UsingStmt struct {
	Span
	Decl     *LocalDecl
	Resource Expr
	Body     Stmt
	Await    bool
}

type CatchClause struct {
	Span
	Type    *TypeRef
	VarName string
	Filter  Expr
	Body    *Block
}

type TryStmt struct {
	Span
	Body    *Block
	Catches []*CatchClause
	Finally *Block
}

type ReturnStmt struct {
	Span
	Result Expr
}

type BreakStmt struct {
	Span
}

type ContinueStmt struct {
	Span
}

type ThrowStmt struct {
	Span
	X Expr
}

type LockStmt struct {
	Span
	X    Expr
	Body Stmt
}

type YieldStmt struct {
	Span
	Break bool
	X     Expr
}

type GotoStmt struct {
	Span
	Label string
}

type LabeledStmt struct {
	Span
	Label string
	Stmt  Stmt
}

// CheckedStmt covers checked, unchecked, unsafe and fixed blocks.
type CheckedStmt struct {
	Span
	Keyword string
	Body    Stmt
}

func (*Block) stmtNode()         {}
func (*EmptyStmt) stmtNode()     {}
func (*ExprStmt) stmtNode()      {}
func (*LocalDecl) stmtNode()     {}
func (*LocalFuncStmt) stmtNode() {}
func (*IfStmt) stmtNode()        {}
func (*ForStmt) stmtNode()       {}
func (*ForeachStmt) stmtNode()   {}
func (*WhileStmt) stmtNode()     {}
func (*DoStmt) stmtNode()        {}
func (*SwitchStmt) stmtNode()    {}
func (*UsingStmt) stmtNode()     {}
func (*TryStmt) stmtNode()       {}
func (*ReturnStmt) stmtNode()    {}
func (*BreakStmt) stmtNode()     {}
func (*ContinueStmt) stmtNode()  {}
func (*ThrowStmt) stmtNode()     {}
func (*LockStmt) stmtNode()      {}
func (*YieldStmt) stmtNode()     {}
func (*GotoStmt) stmtNode()      {}
func (*LabeledStmt) stmtNode()   {}
func (*CheckedStmt) stmtNode()   {}

// IsTerminator reports whether control never falls through s.
func IsTerminator(s Stmt) bool {
	switch st := s.(type) {
	case *ReturnStmt, *ThrowStmt, *BreakStmt, *ContinueStmt, *GotoStmt:
		return true
	case *YieldStmt:
		return st.Break
	}
	return false
}
