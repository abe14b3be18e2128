package detectors

import (
	"fmt"
	"unicode"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// NewNamingRuleSet returns the local ruleset that checks identifier casing.
func NewNamingRuleSet() *framework.RuleSet {
	return framework.NewRuleSet("naming", framework.Local, nil,
		&TypeNamingRule{}, &MemberNamingRule{}, &LocalNamingRule{})
}

// TypeNamingRule checks type names: PascalCase, and an I prefix for interfaces.
type TypeNamingRule struct{}

func (r *TypeNamingRule) ID() string { return "type_naming" }

func (r *TypeNamingRule) Visit(n syntax.Node, c *framework.Cursor) {
	switch d := n.(type) {
	case *syntax.TypeDecl:
		if d.Kind == syntax.KindInterface && !hasInterfacePrefix(d.Name) {
			c.Report(models.CodeNamingConvention, d.NameSpan,
				"Interface '%s' should start with 'I'", d.Name)
			return
		}
		if !isPascalCase(d.Name) {
			c.Report(models.CodePascalCase, d.NameSpan, "%s '%s' should be PascalCase", d.Kind, d.Name)
		}
	case *syntax.DelegateDecl:
		if !isPascalCase(d.Name) {
			c.Report(models.CodePascalCase, d.NameSpan, "Delegate '%s' should be PascalCase", d.Name)
		}
	}
}

func hasInterfacePrefix(name string) bool {
	return len(name) >= 2 && name[0] == 'I' && isPascalCase(name[1:])
}

// MemberNamingRule checks that methods, properties, events, constants and
// non-private fields are PascalCase.
type MemberNamingRule struct{}

func (r *MemberNamingRule) ID() string { return "member_naming" }

func (r *MemberNamingRule) Visit(n syntax.Node, c *framework.Cursor) {
	switch d := n.(type) {
	case *syntax.MethodDecl:
		// local functions, operators and destructors follow their own rules
		if c.MemberNode() != n || d.IsOperator || d.IsDestructor {
			return
		}
		r.check(c, "Method", d.Name, d.NameSpan)
	case *syntax.PropertyDecl:
		if d.Name != "this" {
			r.check(c, "Property", d.Name, d.NameSpan)
		}
	case *syntax.EventDecl:
		r.check(c, "Event", d.Name, d.NameSpan)
	case *syntax.EnumMember:
		r.check(c, "Enum member", d.Name, d.Span)
	case *syntax.FieldDecl:
		kind := ""
		switch {
		case d.Modifiers.Has(syntax.ModConst):
			kind = "Constant"
		case d.Modifiers.Has(syntax.ModPublic) || d.Modifiers.Has(syntax.ModProtected):
			kind = "Field"
		default:
			return
		}
		for _, v := range d.Vars {
			r.check(c, kind, v.Name, v.NameSpan)
		}
	}
}

func (r *MemberNamingRule) check(c *framework.Cursor, kind, name string, span syntax.Span) {
	if !isPascalCase(name) {
		c.Report(models.CodePascalCase, span, "%s '%s' should be PascalCase", kind, name)
	}
}

// LocalNamingRule checks that parameters and locals are camelCase.
type LocalNamingRule struct{}

func (r *LocalNamingRule) ID() string { return "local_naming" }

func (r *LocalNamingRule) Visit(n syntax.Node, c *framework.Cursor) {
	switch d := n.(type) {
	case *syntax.Param:
		// positional record parameters become properties
		if _, ok := c.Parent().(*syntax.TypeDecl); ok {
			return
		}
		r.check(c, "Parameter", d.Name, d.NameSpan)
	case *syntax.LocalDecl:
		if d.Const {
			return
		}
		for _, v := range d.Vars {
			r.check(c, "Local variable", v.Name, v.NameSpan)
		}
	case *syntax.ForeachStmt:
		r.check(c, "Loop variable", d.VarName, d.VarSpan)
	}
}

func (r *LocalNamingRule) check(c *framework.Cursor, kind, name string, span syntax.Span) {
	if isDiscard(name) || isCamelCase(name) {
		return
	}
	d := models.NewDiagnostic(models.CodeCamelCase, models.SourceLocation{},
		fmt.Sprintf("%s '%s' should be camelCase", kind, name))
	d.Suggestion = fmt.Sprintf("Rename to '%s'", toCamelCase(name))
	c.ReportAt(d, span)
}

func toCamelCase(name string) string {
	out := make([]rune, 0, len(name))
	upperNext := false
	for _, r := range name {
		switch {
		case r == '_':
			upperNext = len(out) > 0
		case len(out) == 0:
			out = append(out, unicode.ToLower(r))
		case upperNext:
			out = append(out, unicode.ToUpper(r))
			upperNext = false
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
