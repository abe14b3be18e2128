package syntax

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node Node) {
	if node == nil || isNilNode(node) {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *CompilationUnit:
		for _, a := range n.Attributes {
			Walk(v, a)
		}
		for _, u := range n.Usings {
			Walk(v, u)
		}
		if n.FileScopedNamespace != nil {
			Walk(v, n.FileScopedNamespace)
		}
		for _, d := range n.Members {
			Walk(v, d)
		}

	case *NamespaceDecl:
		for _, u := range n.Usings {
			Walk(v, u)
		}
		for _, d := range n.Members {
			Walk(v, d)
		}

	case *TypeDecl:
		walkAttributes(v, n.Attributes)
		for _, tp := range n.TypeParams {
			Walk(v, tp)
		}
		for _, p := range n.PrimaryParams {
			Walk(v, p)
		}
		for _, b := range n.BaseTypes {
			Walk(v, b)
		}
		for _, c := range n.Constraints {
			Walk(v, c)
		}
		for _, em := range n.EnumMembers {
			Walk(v, em)
		}
		for _, m := range n.Members {
			Walk(v, m)
		}

	case *EnumMember:
		walkAttributes(v, n.Attributes)
		walkExpr(v, n.Value)

	case *DelegateDecl:
		walkAttributes(v, n.Attributes)
		walkType(v, n.ReturnType)
		for _, p := range n.Params {
			Walk(v, p)
		}

	case *MethodDecl:
		walkAttributes(v, n.Attributes)
		walkType(v, n.ReturnType)
		for _, tp := range n.TypeParams {
			Walk(v, tp)
		}
		for _, c := range n.Constraints {
			Walk(v, c)
		}
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
		walkExpr(v, n.ExprBody)

	case *ConstructorDecl:
		walkAttributes(v, n.Attributes)
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.Initializer != nil {
			walkArgs(v, n.Initializer.Args)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
		walkExpr(v, n.ExprBody)

	case *PropertyDecl:
		walkAttributes(v, n.Attributes)
		walkType(v, n.Type)
		for _, p := range n.IndexParams {
			Walk(v, p)
		}
		for _, a := range n.Accessors {
			Walk(v, a)
		}
		walkExpr(v, n.ExprBody)
		walkExpr(v, n.Initializer)

	case *Accessor:
		if n.Body != nil {
			Walk(v, n.Body)
		}
		walkExpr(v, n.ExprBody)

	case *FieldDecl:
		walkAttributes(v, n.Attributes)
		walkType(v, n.Type)
		for _, d := range n.Vars {
			Walk(v, d)
		}

	case *EventDecl:
		walkAttributes(v, n.Attributes)
		walkType(v, n.Type)
		for _, a := range n.Accessors {
			Walk(v, a)
		}

	case *VarDeclarator:
		walkExpr(v, n.Init)

	case *Param:
		walkAttributes(v, n.Attributes)
		walkType(v, n.Type)
		walkExpr(v, n.Default)

	case *Attribute:
		walkArgs(v, n.Args)

	case *TypeRef:
		for _, a := range n.Args {
			Walk(v, a)
		}

	case *Constraint:
		for _, t := range n.Types {
			Walk(v, t)
		}

	case *UsingDirective, *TypeParam:
		// leaves

	// statements
	case *Block:
		walkStmts(v, n.Stmts)

	case *EmptyStmt, *BreakStmt, *ContinueStmt, *GotoStmt:
		// leaves

	case *ExprStmt:
		walkExpr(v, n.X)

	case *LocalDecl:
		walkType(v, n.Type)
		for _, d := range n.Vars {
			Walk(v, d)
		}

	case *LocalFuncStmt:
		Walk(v, n.Func)

	case *IfStmt:
		walkExpr(v, n.Cond)
		walkStmt(v, n.Then)
		walkStmt(v, n.Else)

	case *ForStmt:
		walkStmts(v, n.Init)
		walkExpr(v, n.Cond)
		for _, e := range n.Post {
			walkExpr(v, e)
		}
		walkStmt(v, n.Body)

	case *ForeachStmt:
		walkType(v, n.Type)
		walkExpr(v, n.Collection)
		walkStmt(v, n.Body)

	case *WhileStmt:
		walkExpr(v, n.Cond)
		walkStmt(v, n.Body)

	case *DoStmt:
		walkStmt(v, n.Body)
		walkExpr(v, n.Cond)

	case *SwitchStmt:
		walkExpr(v, n.Tag)
		for _, s := range n.Sections {
			Walk(v, s)
		}

	case *SwitchSection:
		for _, l := range n.Labels {
			Walk(v, l)
		}
		walkStmts(v, n.Stmts)

	case *CaseLabel:
		walkExpr(v, n.Value)
		walkType(v, n.PatternType)
		walkExpr(v, n.When)

	case *UsingStmt:
		if n.Decl != nil {
			Walk(v, n.Decl)
		}
		walkExpr(v, n.Resource)
		walkStmt(v, n.Body)

	case *TryStmt:
		if n.Body != nil {
			Walk(v, n.Body)
		}
		for _, c := range n.Catches {
			Walk(v, c)
		}
		if n.Finally != nil {
			Walk(v, n.Finally)
		}

	case *CatchClause:
		walkType(v, n.Type)
		walkExpr(v, n.Filter)
		if n.Body != nil {
			Walk(v, n.Body)
		}

	case *ReturnStmt:
		walkExpr(v, n.Result)

	case *ThrowStmt:
		walkExpr(v, n.X)

	case *LockStmt:
		walkExpr(v, n.X)
		walkStmt(v, n.Body)

	case *YieldStmt:
		walkExpr(v, n.X)

	case *LabeledStmt:
		walkStmt(v, n.Stmt)

	case *CheckedStmt:
		walkStmt(v, n.Body)

	// expressions
	case *Ident:
		for _, t := range n.TypeArgs {
			Walk(v, t)
		}

	case *Literal, *ThisExpr, *BaseExpr, *PredefinedType, *DefaultExpr:
		// leaves

	case *MemberAccess:
		walkExpr(v, n.X)

	case *Argument:
		walkExpr(v, n.Value)

	case *Invocation:
		walkExpr(v, n.Fun)
		walkArgs(v, n.Args)

	case *ElementAccess:
		walkExpr(v, n.X)
		walkArgs(v, n.Args)

	case *UnaryExpr:
		walkExpr(v, n.X)

	case *BinaryExpr:
		walkExpr(v, n.X)
		walkExpr(v, n.Y)

	case *AssignExpr:
		walkExpr(v, n.Lhs)
		walkExpr(v, n.Rhs)

	case *ConditionalExpr:
		walkExpr(v, n.Cond)
		walkExpr(v, n.Then)
		walkExpr(v, n.Else)

	case *NewExpr:
		walkType(v, n.Type)
		walkArgs(v, n.Args)
		for _, e := range n.ArraySize {
			walkExpr(v, e)
		}
		for _, e := range n.Init {
			walkExpr(v, e)
		}

	case *LambdaExpr:
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}

	case *CastExpr:
		walkType(v, n.Type)
		walkExpr(v, n.X)

	case *IsExpr:
		walkExpr(v, n.X)
		walkType(v, n.Type)
		walkExpr(v, n.Pattern)

	case *AsExpr:
		walkExpr(v, n.X)
		walkType(v, n.Type)

	case *TypeOfExpr:
		walkType(v, n.Type)

	case *ParenExpr:
		walkExpr(v, n.X)

	case *InitializerExpr:
		for _, e := range n.Elems {
			walkExpr(v, e)
		}

	case *AwaitExpr:
		walkExpr(v, n.X)

	case *ThrowExpr:
		walkExpr(v, n.X)

	case *TupleExpr:
		walkArgs(v, n.Elems)

	case *DeclExpr:
		walkType(v, n.Type)

	case *SwitchExpr:
		walkExpr(v, n.X)
		for _, a := range n.Arms {
			Walk(v, a)
		}

	case *SwitchArm:
		walkExpr(v, n.Pattern)
		walkExpr(v, n.When)
		walkExpr(v, n.Value)
	}

	v.Visit(nil)
}

func walkAttributes(v Visitor, attrs []*Attribute) {
	for _, a := range attrs {
		Walk(v, a)
	}
}

func walkArgs(v Visitor, args []*Argument) {
	for _, a := range args {
		Walk(v, a)
	}
}

func walkStmts(v Visitor, stmts []Stmt) {
	for _, s := range stmts {
		walkStmt(v, s)
	}
}

func walkStmt(v Visitor, s Stmt) {
	if s != nil {
		Walk(v, s)
	}
}

func walkExpr(v Visitor, e Expr) {
	if e != nil {
		Walk(v, e)
	}
}

func walkType(v Visitor, t *TypeRef) {
	if t != nil {
		Walk(v, t)
	}
}

// isNilNode catches typed nil pointers stored in a Node interface.
func isNilNode(n Node) bool {
	switch x := n.(type) {
	case *Block:
		return x == nil
	case *TypeRef:
		return x == nil
	case *MethodDecl:
		return x == nil
	case *LocalDecl:
		return x == nil
	}
	return false
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if node != nil && f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
