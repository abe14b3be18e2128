package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// TypesPass checks base type lists: inheritance cycles, interfaces extending
// classes, misplaced base classes and structs inheriting from classes.
type TypesPass struct{}

func NewTypesPass() *TypesPass {
	return &TypesPass{}
}

func (p *TypesPass) ID() string { return "types" }
func (p *TypesPass) Reads() []artifacts.Kind {
	return []artifacts.Kind{artifacts.KindBindingIndex, artifacts.KindSymbolIndex}
}
func (p *TypesPass) Writes() []artifacts.Kind { return nil }

func (p *TypesPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	bindings, ok := artifacts.Get[*artifacts.BindingIndex](s.Artifacts)
	if !ok {
		return
	}
	index, ok := artifacts.Get[*artifacts.SymbolIndex](s.Artifacts)
	if !ok {
		return
	}

	inherits := newInheritanceGraph()
	for _, t := range syntax.Types(cu) {
		sym, ok := index.ForDecl(t)
		if !ok {
			continue
		}
		inherits.addType(sym)
		for i, base := range t.BaseTypes {
			binding, ok := bindings.Lookup(base)
			if !ok || binding.Kind != artifacts.BindSource {
				continue
			}
			target := index.Symbol(binding.Symbol)
			if target == nil {
				continue
			}
			inherits.addEdge(sym.ID, target.ID)
			checkBase(s, t, i, base, target)
		}
	}

	for _, cycle := range inherits.findCycles() {
		first := index.Symbol(cycle[0])
		s.Report(models.CodeCircularType, first.Span, "Circular inheritance: %s", inherits.describe(cycle))
	}
}

// checkBase validates base list entry i of t, which resolved to the source type target.
func checkBase(s *framework.Session, t *syntax.TypeDecl, i int, base *syntax.TypeRef, target *artifacts.Symbol) {
	targetIsInterface := target.Kind == artifacts.SymInterface
	switch t.Kind {
	case syntax.KindInterface:
		if !targetIsInterface {
			s.Report(models.CodeInterfaceFromClass, base.Span,
				"Interface '%s' cannot inherit from %s '%s'", t.Name, target.Kind, target.Name)
		}
	case syntax.KindStruct, syntax.KindRecordStruct:
		if !targetIsInterface {
			s.Report(models.CodeStructInherits, base.Span,
				"Struct '%s' cannot inherit from %s '%s'", t.Name, target.Kind, target.Name)
		}
	case syntax.KindClass, syntax.KindRecord:
		// only the first entry may be a base class; later entries must be interfaces
		if i > 0 && (target.Kind == artifacts.SymClass || target.Kind == artifacts.SymRecord) {
			s.Report(models.CodeClassFromInterface, base.Span,
				"Base class '%s' must come before the interfaces of '%s'", target.Name, t.Name)
		}
	}
}
