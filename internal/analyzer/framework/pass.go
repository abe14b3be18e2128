package framework

import (
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/syntax"
)

// Pass is a whole-unit analysis step that reads and writes artifacts.
type Pass interface {
	ID() string
	Reads() []artifacts.Kind
	Writes() []artifacts.Kind
	// Run must not fail: a missing input artifact means doing less, not erroring.
	Run(cu *syntax.CompilationUnit, s *Session)
}

// Rule inspects single nodes during a shared walk.
type Rule interface {
	ID() string
	Visit(n syntax.Node, c *Cursor)
}

// Variant tells whether a ruleset needs artifacts from earlier passes.
type Variant int

const (
	// Local rulesets look only at the AST.
	Local Variant = iota
	// Semantic rulesets read artifacts.
	Semantic
)

func (v Variant) String() string {
	if v == Semantic {
		return "semantic"
	}
	return "local"
}

// RuleSet groups rules that run in one AST walk.
type RuleSet struct {
	Name    string
	Variant Variant
	Needs   []artifacts.Kind
	Rules   []Rule
}

// NewRuleSet builds a ruleset.
func NewRuleSet(id string, variant Variant, reads []artifacts.Kind, rules ...Rule) *RuleSet {
	return &RuleSet{Name: id, Variant: variant, Needs: reads, Rules: rules}
}

func (r *RuleSet) ID() string               { return r.Name }
func (r *RuleSet) Reads() []artifacts.Kind  { return r.Needs }
func (r *RuleSet) Writes() []artifacts.Kind { return nil }

// PassFunc adapts a function into a Pass.
type PassFunc struct {
	Name    string
	In, Out []artifacts.Kind
	Fn      func(cu *syntax.CompilationUnit, s *Session)
}

func (p *PassFunc) ID() string                                  { return p.Name }
func (p *PassFunc) Reads() []artifacts.Kind                     { return p.In }
func (p *PassFunc) Writes() []artifacts.Kind                    { return p.Out }
func (p *PassFunc) Run(cu *syntax.CompilationUnit, s *Session) { p.Fn(cu, s) }
