package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// FlowPass reports unreachable statements, empty blocks, unused locals and
// loop-bound performance smells.
type FlowPass struct{}

func NewFlowPass() *FlowPass {
	return &FlowPass{}
}

func (p *FlowPass) ID() string                { return "flow" }
func (p *FlowPass) Reads() []artifacts.Kind  { return []artifacts.Kind{artifacts.KindLocalScopes} }
func (p *FlowPass) Writes() []artifacts.Kind { return nil }

func (p *FlowPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	scopes, _ := artifacts.Get[*artifacts.LocalScopes](s.Artifacts)
	locals := newMemberLocals(scopes)
	if scopes != nil {
		reportUnusedLocals(s, scopes)
	}
	framework.RunRuleSets(cu, s, []*framework.RuleSet{newFlowRuleSet(locals)})
}

// newFlowRuleSet returns the rules the flow pass runs in one walk. locals may
// be empty, in which case type-dependent rules fall back to name heuristics.
func newFlowRuleSet(locals *memberLocals) *framework.RuleSet {
	if locals == nil {
		locals = newMemberLocals(nil)
	}
	return framework.NewRuleSet("flow", framework.Semantic, []artifacts.Kind{artifacts.KindLocalScopes},
		&UnreachableRule{},
		&EmptyBlockRule{},
		&StringConcatRule{locals: locals},
		&AllocationRule{},
		&LinearSearchRule{locals: locals},
		&NestedSearchRule{},
		newCollectionGrowthRule(locals),
	)
}

// memberLocals finds the scope of the member a cursor is in.
type memberLocals struct {
	byDecl map[syntax.Node]*artifacts.Scope
}

func newMemberLocals(scopes *artifacts.LocalScopes) *memberLocals {
	m := &memberLocals{byDecl: make(map[syntax.Node]*artifacts.Scope)}
	if scopes == nil {
		return m
	}
	for _, key := range scopes.Order {
		if sc := scopes.Members[key]; sc.Decl != nil {
			m.byDecl[sc.Decl] = sc
		}
	}
	return m
}

// lookup returns the local named name in the cursor's member, or nil.
func (m *memberLocals) lookup(c *framework.Cursor, name string) *artifacts.Local {
	sc, ok := m.byDecl[c.MemberNode()]
	if !ok {
		return nil
	}
	return sc.Lookup(name)
}

func reportUnusedLocals(s *framework.Session, scopes *artifacts.LocalScopes) {
	for _, key := range scopes.Order {
		for _, l := range scopes.Members[key].Locals {
			if l.Kind != artifacts.LocalVar || l.Uses > 0 {
				continue
			}
			s.Report(models.CodeUnusedVariable, l.Span, "Local variable '%s' is declared but never used", l.Name)
		}
	}
}

// UnreachableRule reports the first statement after a return, throw, break,
// continue, goto or yield break in the same statement list.
type UnreachableRule struct{}

func (r *UnreachableRule) ID() string { return "unreachable_code" }

func (r *UnreachableRule) Visit(n syntax.Node, c *framework.Cursor) {
	switch d := n.(type) {
	case *syntax.Block:
		r.check(d.Stmts, c)
	case *syntax.SwitchSection:
		r.check(d.Stmts, c)
	}
}

func (r *UnreachableRule) check(stmts []syntax.Stmt, c *framework.Cursor) {
	for i, st := range stmts {
		kind := terminatorKind(st)
		if kind == "" {
			continue
		}
		for _, next := range stmts[i+1:] {
			switch next.(type) {
			case *syntax.LocalFuncStmt:
				continue
			case *syntax.LabeledStmt:
				// a label may be a goto target
				return
			}
			c.Report(models.CodeUnreachable, next.Bounds(), "Unreachable code after '%s' statement", kind)
			return
		}
		return
	}
}

func terminatorKind(st syntax.Stmt) string {
	switch d := st.(type) {
	case *syntax.ReturnStmt:
		return "return"
	case *syntax.ThrowStmt:
		return "throw"
	case *syntax.BreakStmt:
		return "break"
	case *syntax.ContinueStmt:
		return "continue"
	case *syntax.GotoStmt:
		return "goto"
	case *syntax.YieldStmt:
		if d.Break {
			return "yield break"
		}
	}
	return ""
}

// EmptyBlockRule reports empty statement blocks. Empty member and lambda
// bodies are left alone.
type EmptyBlockRule struct{}

func (r *EmptyBlockRule) ID() string { return "empty_block" }

func (r *EmptyBlockRule) Visit(n syntax.Node, c *framework.Cursor) {
	b, ok := n.(*syntax.Block)
	if !ok || len(b.Stmts) > 0 {
		return
	}
	owner := blockOwner(c.Parent())
	if owner == "" {
		return
	}
	c.Report(models.CodeEmptyBlock, b.Span, "Empty %s block", owner)
}

func blockOwner(parent syntax.Node) string {
	switch parent.(type) {
	case *syntax.IfStmt:
		return "if"
	case *syntax.ForStmt:
		return "for"
	case *syntax.ForeachStmt:
		return "foreach"
	case *syntax.WhileStmt:
		return "while"
	case *syntax.DoStmt:
		return "do"
	case *syntax.TryStmt:
		return "try"
	case *syntax.CatchClause:
		return "catch"
	case *syntax.UsingStmt:
		return "using"
	case *syntax.LockStmt:
		return "lock"
	case *syntax.CheckedStmt:
		return "checked"
	case *syntax.Block:
		return "nested"
	}
	return ""
}

func unparen(e syntax.Expr) syntax.Expr {
	for {
		p, ok := e.(*syntax.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

func identName(e syntax.Expr) (string, bool) {
	id, ok := unparen(e).(*syntax.Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}
