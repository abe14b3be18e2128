package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/syntax"
)

// SymbolsPass collects the locals of every member body and counts their uses.
type SymbolsPass struct{}

func NewSymbolsPass() *SymbolsPass {
	return &SymbolsPass{}
}

func (p *SymbolsPass) ID() string                { return "symbols" }
func (p *SymbolsPass) Reads() []artifacts.Kind  { return nil }
func (p *SymbolsPass) Writes() []artifacts.Kind { return []artifacts.Kind{artifacts.KindLocalScopes} }

func (p *SymbolsPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	s.Artifacts.Insert(BuildLocalScopes(cu))
}

// BuildLocalScopes returns one scope per member. Overloads get "#2", "#3"... suffixes.
func BuildLocalScopes(cu *syntax.CompilationUnit) *artifacts.LocalScopes {
	scopes := artifacts.NewLocalScopes()
	syntax.VisitDecls(cu, func(path syntax.DeclPath, n syntax.Node) bool {
		bodies := memberBodies(n)
		params := paramsOf(n)
		if len(bodies) == 0 && len(params) == 0 {
			return true
		}
		key := framework.MemberFQN(path, n)
		if _, taken := scopes.Members[key]; taken {
			for i := 2; ; i++ {
				candidate := fmt.Sprintf("%s#%d", key, i)
				if _, taken := scopes.Members[candidate]; !taken {
					key = candidate
					break
				}
			}
		}
		c := &scopeCollector{scope: scopes.Scope(key), resources: make(map[*syntax.LocalDecl]bool)}
		c.scope.Decl = n
		for _, p := range params {
			c.declare(p.Name, artifacts.LocalParam, p.Type, p.NameSpan)
		}
		for _, body := range bodies {
			syntax.Inspect(body, c.visit)
		}
		return true
	})
	return scopes
}

type scopeCollector struct {
	scope     *artifacts.Scope
	// resources are declarations owned by a using statement.
	resources map[*syntax.LocalDecl]bool
}

func (c *scopeCollector) declare(name string, kind artifacts.LocalKind, t *syntax.TypeRef, span syntax.Span) *artifacts.Local {
	if isDiscard(name) {
		return nil
	}
	l := &artifacts.Local{Name: name, Kind: kind, Type: t, Span: span}
	c.scope.Locals = append(c.scope.Locals, l)
	return l
}

func (c *scopeCollector) visit(n syntax.Node) bool {
	switch d := n.(type) {
	case *syntax.UsingStmt:
		if d.Decl != nil {
			c.resources[d.Decl] = true
		}
	case *syntax.LocalDecl:
		kind := artifacts.LocalVar
		if c.resources[d] {
			kind = artifacts.LocalUsing
		}
		for _, v := range d.Vars {
			if l := c.declare(v.Name, kind, d.Type, v.NameSpan); l != nil {
				l.Const = d.Const
			}
		}
	case *syntax.ForeachStmt:
		c.declare(d.VarName, artifacts.LocalForeach, d.Type, d.VarSpan)
	case *syntax.CatchClause:
		c.declare(d.VarName, artifacts.LocalCatch, d.Type, d.Span)
	case *syntax.IsExpr:
		c.declare(d.VarName, artifacts.LocalPattern, d.Type, d.Span)
	case *syntax.CaseLabel:
		c.declare(d.PatternVar, artifacts.LocalPattern, d.PatternType, d.Span)
	case *syntax.DeclExpr:
		c.declare(d.Name, artifacts.LocalOut, d.Type, d.Span)
	case *syntax.LocalFuncStmt:
		c.declare(d.Func.Name, artifacts.LocalFunc, d.Func.ReturnType, d.Func.NameSpan)
		for _, p := range d.Func.Params {
			c.declare(p.Name, artifacts.LocalParam, p.Type, p.NameSpan)
		}
	case *syntax.LambdaExpr:
		for _, p := range d.Params {
			c.declare(p.Name, artifacts.LocalParam, p.Type, p.NameSpan)
		}
	case *syntax.Ident:
		if l := c.scope.Lookup(d.Name); l != nil {
			l.Uses++
		}
	}
	return true
}
