package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// OverloadPass reports constructors and methods of one type that share a signature.
type OverloadPass struct{}

func NewOverloadPass() *OverloadPass {
	return &OverloadPass{}
}

func (p *OverloadPass) ID() string                { return "overload" }
func (p *OverloadPass) Reads() []artifacts.Kind  { return nil }
func (p *OverloadPass) Writes() []artifacts.Kind { return nil }

func (p *OverloadPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	for _, t := range syntax.Types(cu) {
		seen := make(map[string]bool)
		for _, m := range t.Members {
			switch d := m.(type) {
			case *syntax.ConstructorDecl:
				key := "ctor(" + signature(d.Params) + ")"
				if d.Modifiers.Has(syntax.ModStatic) {
					key = "static " + key
				}
				if seen[key] {
					s.Report(models.CodeDuplicateConstructor, d.NameSpan,
						"Type '%s' already declares a constructor with parameters (%s)", t.Name, signature(d.Params))
				}
				seen[key] = true
			case *syntax.MethodDecl:
				key := methodKey(d)
				if seen[key] {
					s.Report(models.CodeDuplicateMethod, d.NameSpan,
						"Type '%s' already declares '%s(%s)'", t.Name, d.Name, signature(d.Params))
				}
				seen[key] = true
			}
		}
	}
}

// methodKey identifies a method for overload purposes: name, explicit interface,
// generic arity and parameter types. Conversion operator names already carry
// their target type.
func methodKey(m *syntax.MethodDecl) string {
	return fmt.Sprintf("%s.%s`%d(%s)", m.ExplicitInterface, m.Name, len(m.TypeParams), signature(m.Params))
}
