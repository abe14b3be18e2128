package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// ControlFlowPass measures cyclomatic complexity and nesting of every member body.
type ControlFlowPass struct{}

func NewControlFlowPass() *ControlFlowPass {
	return &ControlFlowPass{}
}

func (p *ControlFlowPass) ID() string                { return "control_flow" }
func (p *ControlFlowPass) Reads() []artifacts.Kind  { return nil }
func (p *ControlFlowPass) Writes() []artifacts.Kind { return []artifacts.Kind{artifacts.KindControlFlowIndex} }

func (p *ControlFlowPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	index := artifacts.NewControlFlowIndex()
	syntax.VisitDecls(cu, func(path syntax.DeclPath, n syntax.Node) bool {
		bodies := memberBodies(n)
		if len(bodies) == 0 {
			return true
		}
		key := framework.MemberFQN(path, n)
		for _, body := range bodies {
			complexity, nesting := measureFlow(body)
			index.Set(key, artifacts.MethodFlow{
				Complexity: complexity,
				MaxNesting: nesting,
				Start:      n.Bounds().Start,
				End:        n.Bounds().End,
			})
		}
		return true
	})
	s.Artifacts.Insert(index)
}

// memberBodies returns the executable bodies of a member: one for methods and
// constructors, one per accessor with a body for properties and events.
func memberBodies(n syntax.Node) []syntax.Node {
	var out []syntax.Node
	add := func(block *syntax.Block, expr syntax.Expr) {
		switch {
		case block != nil:
			out = append(out, block)
		case expr != nil:
			out = append(out, expr)
		}
	}
	switch d := n.(type) {
	case *syntax.MethodDecl:
		add(d.Body, d.ExprBody)
	case *syntax.ConstructorDecl:
		add(d.Body, d.ExprBody)
	case *syntax.PropertyDecl:
		add(nil, d.ExprBody)
		for _, a := range d.Accessors {
			add(a.Body, a.ExprBody)
		}
	case *syntax.EventDecl:
		for _, a := range d.Accessors {
			add(a.Body, a.ExprBody)
		}
	}
	return out
}

// flowVisitor counts decision points. Each branching construct adds one to
// complexity and one nesting level while its children are visited.
type flowVisitor struct {
	complexity int
	depth      int
	maxDepth   int
	branches   []bool
}

func (v *flowVisitor) Visit(n syntax.Node) syntax.Visitor {
	if n == nil {
		last := len(v.branches) - 1
		if v.branches[last] {
			v.depth--
		}
		v.branches = v.branches[:last]
		return nil
	}
	branch := isBranch(n)
	if branch {
		v.complexity++
		v.depth++
		v.maxDepth = max(v.maxDepth, v.depth)
	}
	v.branches = append(v.branches, branch)
	return v
}

func isBranch(n syntax.Node) bool {
	switch n.(type) {
	case *syntax.IfStmt, *syntax.ForStmt, *syntax.ForeachStmt, *syntax.WhileStmt, *syntax.DoStmt,
		*syntax.SwitchStmt, *syntax.UsingStmt, *syntax.CatchClause:
		return true
	}
	return false
}

// measureFlow returns the complexity (starting at 1) and maximum nesting of body.
func measureFlow(body syntax.Node) (complexity, maxNesting int) {
	v := &flowVisitor{complexity: 1}
	syntax.Walk(v, body)
	return v.complexity, v.maxDepth
}

// NewControlFlowSmellsRuleSet returns the semantic ruleset that reports
// members exceeding the configured complexity and nesting thresholds.
func NewControlFlowSmellsRuleSet() *framework.RuleSet {
	return framework.NewRuleSet("control_flow_smells", framework.Semantic,
		[]artifacts.Kind{artifacts.KindControlFlowIndex},
		NewComplexityRule(), NewNestingRule())
}

// ComplexityRule reports members whose complexity exceeds cf_high_complexity_threshold.
type ComplexityRule struct{}

func NewComplexityRule() *ComplexityRule {
	return &ComplexityRule{}
}

func (r *ComplexityRule) ID() string { return "high_complexity" }

func (r *ComplexityRule) Visit(n syntax.Node, c *framework.Cursor) {
	flow, ok := memberFlow(n, c)
	if !ok {
		return
	}
	threshold := c.Config().HighComplexityThreshold
	if flow.Complexity <= threshold {
		return
	}
	d := models.NewDiagnostic(models.CodeHighComplexity, models.SourceLocation{},
		fmt.Sprintf("'%s' has cyclomatic complexity %d (threshold %d)", memberName(n), flow.Complexity, threshold))
	d.Symbol = c.Member()
	d.Suggestion = complexitySuggestion(flow.Complexity)
	c.ReportAt(d, nameSpan(n))
}

// NestingRule reports members nested deeper than cf_deep_nesting_threshold.
type NestingRule struct{}

func NewNestingRule() *NestingRule {
	return &NestingRule{}
}

func (r *NestingRule) ID() string { return "deep_nesting" }

func (r *NestingRule) Visit(n syntax.Node, c *framework.Cursor) {
	flow, ok := memberFlow(n, c)
	if !ok {
		return
	}
	threshold := c.Config().DeepNestingThreshold
	if flow.MaxNesting <= threshold {
		return
	}
	d := models.NewDiagnostic(models.CodeDeepNesting, models.SourceLocation{},
		fmt.Sprintf("'%s' nests %d levels deep (threshold %d)", memberName(n), flow.MaxNesting, threshold))
	d.Symbol = c.Member()
	d.Suggestion = "Use early returns and guard clauses to reduce nesting levels. Extract inner blocks into separate methods"
	c.ReportAt(d, nameSpan(n))
}

// memberFlow finds the flow entry for n when n is the member declaration that owns it.
// Overloads share a key; only the first declaration reports.
func memberFlow(n syntax.Node, c *framework.Cursor) (artifacts.MethodFlow, bool) {
	if c.MemberNode() != n {
		return artifacts.MethodFlow{}, false
	}
	index, ok := artifacts.Get[*artifacts.ControlFlowIndex](c.Artifacts)
	if !ok {
		return artifacts.MethodFlow{}, false
	}
	flow, ok := index.Methods[c.Member()]
	if !ok || flow.Start != n.Bounds().Start {
		return artifacts.MethodFlow{}, false
	}
	return flow, true
}

func complexitySuggestion(complexity int) string {
	suggestions := []string{
		"Consider breaking this method into smaller, single-purpose methods",
		"Use early returns to reduce nesting levels",
		"Extract complex conditional logic into separate methods",
		"Consider using a state machine or strategy pattern for complex branching",
		"Use lookup tables or dictionaries instead of long if-else chains",
	}

	if complexity <= 15 {
		return suggestions[0] + ". " + suggestions[1]
	} else if complexity <= 25 {
		return suggestions[0] + ". " + suggestions[2] + ". " + suggestions[1]
	}
	return suggestions[3] + ". " + suggestions[0] + ". " + suggestions[4]
}
