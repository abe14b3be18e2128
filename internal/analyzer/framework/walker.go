package framework

import "sharpcheck/internal/syntax"

type frame struct {
	node       syntax.Node
	path       syntax.DeclPath
	member     string
	memberNode syntax.Node
	loops      int
}

// Cursor is the position of a rule walk: the current node, its ancestors and
// the declaration it belongs to.
type Cursor struct {
	*Session
	frames []frame
}

func (c *Cursor) top() frame {
	if len(c.frames) == 0 {
		return frame{}
	}
	return c.frames[len(c.frames)-1]
}

func (c *Cursor) push(n syntax.Node) {
	f := c.top()
	f.node = n
	switch d := n.(type) {
	case *syntax.NamespaceDecl:
		f.path = f.path.WithNamespace(d.Name)
	case *syntax.TypeDecl:
		f.path = f.path.WithType(d)
		f.member, f.memberNode = "", nil
	case *syntax.MethodDecl, *syntax.ConstructorDecl, *syntax.PropertyDecl,
		*syntax.EventDecl, *syntax.FieldDecl, *syntax.DelegateDecl:
		// local functions stay folded into their enclosing member
		if f.memberNode == nil {
			f.member, f.memberNode = MemberFQN(f.path, n), n
		}
	case *syntax.ForStmt, *syntax.ForeachStmt, *syntax.WhileStmt, *syntax.DoStmt:
		f.loops++
	}
	c.frames = append(c.frames, f)
}

func (c *Cursor) pop() {
	c.frames = c.frames[:len(c.frames)-1]
}

// Node returns the node being visited.
func (c *Cursor) Node() syntax.Node { return c.top().node }

// Parent returns the parent of the current node, or nil at the root.
func (c *Cursor) Parent() syntax.Node {
	if len(c.frames) < 2 {
		return nil
	}
	return c.frames[len(c.frames)-2].node
}

// Enclosing returns the nearest strict ancestor for which match is true.
func (c *Cursor) Enclosing(match func(syntax.Node) bool) syntax.Node {
	for i := len(c.frames) - 2; i >= 0; i-- {
		if match(c.frames[i].node) {
			return c.frames[i].node
		}
	}
	return nil
}

// Path returns the namespace and type chain around the current node.
func (c *Cursor) Path() syntax.DeclPath { return c.top().path }

// Owner returns the innermost enclosing type declaration, or nil.
func (c *Cursor) Owner() *syntax.TypeDecl { return c.top().path.Owner() }

// Member returns the FQN of the member containing the current node, "" outside members.
func (c *Cursor) Member() string { return c.top().member }

// MemberNode returns the member declaration containing the current node.
func (c *Cursor) MemberNode() syntax.Node { return c.top().memberNode }

// LoopDepth counts the loops enclosing the current node, including the node itself.
func (c *Cursor) LoopDepth() int { return c.top().loops }

// InLoop reports whether the current node is inside a loop body or header.
func (c *Cursor) InLoop() bool {
	f := c.top()
	switch f.node.(type) {
	case *syntax.ForStmt, *syntax.ForeachStmt, *syntax.WhileStmt, *syntax.DoStmt:
		return f.loops > 1
	}
	return f.loops > 0
}

type ruleWalker struct {
	cursor *Cursor
	rules  []Rule
}

func (w *ruleWalker) Visit(n syntax.Node) syntax.Visitor {
	if n == nil {
		w.cursor.pop()
		return nil
	}
	w.cursor.push(n)
	for _, r := range w.rules {
		r.Visit(n, w.cursor)
	}
	return w
}

// RunRuleSets walks cu once and offers every node to every rule of sets, in order.
func RunRuleSets(cu *syntax.CompilationUnit, s *Session, sets []*RuleSet) {
	var rules []Rule
	for _, rs := range sets {
		rules = append(rules, rs.Rules...)
	}
	if len(rules) == 0 || cu == nil {
		return
	}
	syntax.Walk(&ruleWalker{cursor: &Cursor{Session: s}, rules: rules}, cu)
}
