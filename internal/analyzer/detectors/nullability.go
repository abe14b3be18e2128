package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// NullabilityPass reports `null` flowing into non-nullable reference types in
// files that enable nullable reference types. It is a syntactic check: only
// literal nulls are seen.
type NullabilityPass struct{}

func NewNullabilityPass() *NullabilityPass {
	return &NullabilityPass{}
}

func (p *NullabilityPass) ID() string                { return "nullability" }
func (p *NullabilityPass) Reads() []artifacts.Kind  { return []artifacts.Kind{artifacts.KindSymbolIndex} }
func (p *NullabilityPass) Writes() []artifacts.Kind { return nil }

func (p *NullabilityPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	if !cu.NullableEnabled {
		return
	}
	index, _ := artifacts.Get[*artifacts.SymbolIndex](s.Artifacts)
	rule := &NullAssignmentRule{
		source: sourceTypeKinds(index),
		locals: make(map[syntax.Node]map[string]*syntax.TypeRef),
	}
	framework.RunRuleSets(cu, s, []*framework.RuleSet{
		framework.NewRuleSet("nullability", framework.Semantic, p.Reads(), rule),
	})
}

// sourceTypeKinds resolves type names declared in the unit. Without an index
// only framework types are known.
func sourceTypeKinds(index *artifacts.SymbolIndex) func(string) (syntax.TypeKind, bool) {
	if index == nil {
		return nil
	}
	return func(name string) (syntax.TypeKind, bool) {
		sym, ok := index.ResolveType(name)
		if !ok {
			return 0, false
		}
		switch sym.Kind {
		case artifacts.SymStruct:
			return syntax.KindStruct, true
		case artifacts.SymEnum:
			return syntax.KindEnum, true
		case artifacts.SymInterface:
			return syntax.KindInterface, true
		case artifacts.SymRecord:
			return syntax.KindRecord, true
		}
		// classes and delegates
		return syntax.KindClass, true
	}
}

// NullAssignmentRule reports null initializers, defaults and assignments.
type NullAssignmentRule struct {
	source func(string) (syntax.TypeKind, bool)
	// locals holds declared local types per member.
	locals map[syntax.Node]map[string]*syntax.TypeRef
}

func (r *NullAssignmentRule) ID() string { return "null_to_non_nullable" }

func (r *NullAssignmentRule) Visit(n syntax.Node, c *framework.Cursor) {
	switch d := n.(type) {
	case *syntax.FieldDecl:
		for _, v := range d.Vars {
			r.check(c, "field", v.Name, d.Type, v.Init, v.NameSpan)
		}
	case *syntax.PropertyDecl:
		r.check(c, "property", d.Name, d.Type, d.Initializer, d.NameSpan)
	case *syntax.Param:
		r.check(c, "parameter", d.Name, d.Type, d.Default, d.NameSpan)
	case *syntax.LocalDecl:
		if d.Type == nil {
			return
		}
		member := c.MemberNode()
		if r.locals[member] == nil {
			r.locals[member] = make(map[string]*syntax.TypeRef)
		}
		for _, v := range d.Vars {
			r.locals[member][v.Name] = d.Type
			r.check(c, "local", v.Name, d.Type, v.Init, v.NameSpan)
		}
	case *syntax.AssignExpr:
		if d.Op != "=" || !isNullLiteral(d.Rhs) {
			return
		}
		kind, name, t := r.target(c, d.Lhs)
		if t != nil {
			r.check(c, kind, name, t, d.Rhs, d.Span)
		}
	}
}

func (r *NullAssignmentRule) check(c *framework.Cursor, kind, name string, t *syntax.TypeRef, value syntax.Expr, span syntax.Span) {
	if value == nil || !isNullLiteral(value) || !isReferenceType(t, r.source) {
		return
	}
	c.Report(models.CodeNullToNonNullable, span,
		"Cannot assign null to non-nullable %s '%s' of type '%s'", kind, name, t.String())
}

// target finds the declared type of an assignment target: a local of the
// current member, or a field or property of the enclosing type.
func (r *NullAssignmentRule) target(c *framework.Cursor, lhs syntax.Expr) (string, string, *syntax.TypeRef) {
	switch x := unparen(lhs).(type) {
	case *syntax.Ident:
		if t, ok := r.locals[c.MemberNode()][x.Name]; ok {
			return "local", x.Name, t
		}
		return "field", x.Name, memberType(c.Owner(), x.Name)
	case *syntax.MemberAccess:
		if _, ok := x.X.(*syntax.ThisExpr); ok {
			return "field", x.Name, memberType(c.Owner(), x.Name)
		}
	}
	return "", "", nil
}

func memberType(owner *syntax.TypeDecl, name string) *syntax.TypeRef {
	if owner == nil {
		return nil
	}
	for _, m := range owner.Members {
		switch d := m.(type) {
		case *syntax.FieldDecl:
			for _, v := range d.Vars {
				if v.Name == name {
					return d.Type
				}
			}
		case *syntax.PropertyDecl:
			if d.Name == name {
				return d.Type
			}
		}
	}
	return nil
}

func isNullLiteral(e syntax.Expr) bool {
	lit, ok := unparen(e).(*syntax.Literal)
	return ok && lit.Kind == syntax.LitNull
}
