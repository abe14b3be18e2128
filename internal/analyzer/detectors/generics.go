package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// GenericsPass checks type parameter lists and their constraints.
type GenericsPass struct{}

func NewGenericsPass() *GenericsPass {
	return &GenericsPass{}
}

func (p *GenericsPass) ID() string { return "generics" }
func (p *GenericsPass) Reads() []artifacts.Kind {
	return []artifacts.Kind{artifacts.KindBindingIndex, artifacts.KindSymbolIndex}
}
func (p *GenericsPass) Writes() []artifacts.Kind { return nil }

func (p *GenericsPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	bindings, _ := artifacts.Get[*artifacts.BindingIndex](s.Artifacts)
	index, _ := artifacts.Get[*artifacts.SymbolIndex](s.Artifacts)

	syntax.Inspect(cu, func(n syntax.Node) bool {
		var params []*syntax.TypeParam
		var constraints []*syntax.Constraint
		switch d := n.(type) {
		case *syntax.TypeDecl:
			params, constraints = d.TypeParams, d.Constraints
		case *syntax.MethodDecl:
			params, constraints = d.TypeParams, d.Constraints
		case *syntax.DelegateDecl:
			params = d.TypeParams
		default:
			return true
		}
		checkTypeParams(s, params)
		if bindings != nil && index != nil {
			checkConstraints(s, params, constraints, bindings, index)
		}
		return true
	})
}

func checkTypeParams(s *framework.Session, params []*syntax.TypeParam) {
	seen := make(map[string]bool, len(params))
	for _, tp := range params {
		if seen[tp.Name] {
			s.Report(models.CodeDuplicateTypeParam, tp.Span, "Type parameter '%s' is declared more than once", tp.Name)
		}
		seen[tp.Name] = true
	}
}

// checkConstraints rejects constraint types that cannot be inherited from:
// structs, enums and sealed classes declared in the unit. Clauses naming an
// unknown type parameter are ignored.
func checkConstraints(s *framework.Session, params []*syntax.TypeParam, constraints []*syntax.Constraint,
	bindings *artifacts.BindingIndex, index *artifacts.SymbolIndex) {
	declared := make(map[string]bool, len(params))
	for _, tp := range params {
		declared[tp.Name] = true
	}
	for _, c := range constraints {
		if !declared[c.Param] {
			continue
		}
		for _, t := range c.Types {
			binding, ok := bindings.Lookup(t)
			if !ok || binding.Kind != artifacts.BindSource {
				continue
			}
			target := index.Symbol(binding.Symbol)
			if target == nil {
				continue
			}
			sealed := target.Kind == artifacts.SymClass && target.Modifiers.Has(syntax.ModSealed)
			if target.Kind == artifacts.SymStruct || target.Kind == artifacts.SymEnum || sealed {
				s.Report(models.CodeConstraintUnsatisfied, t.Span,
					"'%s' is not a valid constraint for '%s': %s types cannot be inherited", t.Name, c.Param, describeKind(target))
			}
		}
	}
}

func describeKind(sym *artifacts.Symbol) string {
	if sym.Kind == artifacts.SymClass && sym.Modifiers.Has(syntax.ModSealed) {
		return "sealed class"
	}
	return string(sym.Kind)
}
