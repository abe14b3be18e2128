package detectors

import (
	"strings"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// AttributesPass reports an attribute applied twice to one declaration.
// Attributes known to allow multiple uses are skipped, as are source
// attribute classes marked AllowMultiple = true.
type AttributesPass struct{}

func NewAttributesPass() *AttributesPass {
	return &AttributesPass{}
}

func (p *AttributesPass) ID() string                { return "attributes" }
func (p *AttributesPass) Reads() []artifacts.Kind  { return nil }
func (p *AttributesPass) Writes() []artifacts.Kind { return nil }

func (p *AttributesPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	multi := sourceAllowMultiple(cu)
	checkAttributes(s, cu.Attributes, multi)
	syntax.Inspect(cu, func(n syntax.Node) bool {
		switch d := n.(type) {
		case *syntax.Param:
			checkAttributes(s, d.Attributes, multi)
		case *syntax.EnumMember:
			checkAttributes(s, d.Attributes, multi)
		default:
			_, attrs := modifiersOf(n)
			checkAttributes(s, attrs, multi)
		}
		return true
	})
}

// allowMultiple lists framework attributes declared with AllowMultiple = true.
var allowMultiple = map[string]bool{
	"InlineData": true, "TestCase": true, "DataRow": true, "Route": true, "ProducesResponseType": true,
	"SuppressMessage": true, "InternalsVisibleTo": true, "Authorize": true, "JsonDerivedType": true,
	"ServiceFilter": true, "TypeFilter": true, "Conditional": true, "Category": true, "Trait": true,
}

func checkAttributes(s *framework.Session, attrs []*syntax.Attribute, multi map[string]bool) {
	if len(attrs) < 2 {
		return
	}
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		name := attributeName(a.Name)
		if allowMultiple[name] || multi[name] {
			continue
		}
		key := a.Target + ":" + name
		if seen[key] {
			s.Report(models.CodeDuplicateAttr, a.Span, "Attribute '%s' is applied more than once", name)
			continue
		}
		seen[key] = true
	}
}

// attributeName normalizes `[System.ObsoleteAttribute]` and `[Obsolete]` to "Obsolete".
func attributeName(name string) string {
	name = lastSegment(name)
	if trimmed := strings.TrimSuffix(name, "Attribute"); trimmed != "" {
		return trimmed
	}
	return name
}

// sourceAllowMultiple collects attribute classes of the unit that declare
// [AttributeUsage(..., AllowMultiple = true)].
func sourceAllowMultiple(cu *syntax.CompilationUnit) map[string]bool {
	multi := make(map[string]bool)
	for _, t := range syntax.Types(cu) {
		for _, a := range t.Attributes {
			if attributeName(a.Name) != "AttributeUsage" {
				continue
			}
			for _, arg := range a.Args {
				assign, ok := arg.Value.(*syntax.AssignExpr)
				if !ok {
					continue
				}
				name, _ := identName(assign.Lhs)
				lit, ok := assign.Rhs.(*syntax.Literal)
				if name == "AllowMultiple" && ok && lit.Value == "true" {
					multi[attributeName(t.Name)] = true
				}
			}
		}
	}
	return multi
}
