package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// AccessPass checks access modifiers against the kind of the containing type
// and the other modifiers of each member.
type AccessPass struct{}

func NewAccessPass() *AccessPass {
	return &AccessPass{}
}

func (p *AccessPass) ID() string                { return "access" }
func (p *AccessPass) Reads() []artifacts.Kind  { return nil }
func (p *AccessPass) Writes() []artifacts.Kind { return nil }

const accessModifiers = syntax.ModPublic | syntax.ModPrivate | syntax.ModProtected | syntax.ModInternal

func (p *AccessPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	for _, t := range syntax.Types(cu) {
		for _, m := range t.Members {
			checkMemberAccess(s, t, m)
		}
	}
}

func checkMemberAccess(s *framework.Session, t *syntax.TypeDecl, m syntax.Member) {
	switch m.(type) {
	case *syntax.TypeDecl, *syntax.DelegateDecl:
		// nested types are checked as types of their own
		return
	}
	mods, _ := modifiersOf(m)
	name := memberName(m)
	span := nameSpan(m)

	if ctor, ok := m.(*syntax.ConstructorDecl); ok && mods.Has(syntax.ModStatic) {
		if mods&accessModifiers != 0 {
			s.Report(models.CodeStaticCtorModifiers, ctor.NameSpan,
				"Static constructor '%s' cannot have access modifiers", ctor.Name)
		}
		return
	}

	switch t.Kind {
	case syntax.KindInterface:
		if mods.Has(syntax.ModPrivate) && !hasImplementation(m) {
			s.Report(models.CodePrivateInInterface, span,
				"Private interface member '%s' must have an implementation", name)
		}
	case syntax.KindStruct, syntax.KindRecordStruct:
		if mods.Has(syntax.ModProtected) {
			s.Report(models.CodeProtectedInStruct, span,
				"Struct member '%s' cannot be protected: structs cannot be inherited", name)
		}
	case syntax.KindClass, syntax.KindRecord:
		if mods.Has(syntax.ModAbstract) && !t.Modifiers.Has(syntax.ModAbstract) {
			s.Report(models.CodeAbstractInNonAbstract, span,
				"Abstract member '%s' declared in non-abstract %s '%s'", name, t.Kind, t.Name)
		}
	}

	if mods.Has(syntax.ModPrivate) && !mods.Has(syntax.ModProtected) {
		if mods.Has(syntax.ModAbstract) {
			s.Report(models.CodePrivateAbstract, span, "Abstract member '%s' cannot be private", name)
		}
		if mods.Has(syntax.ModVirtual) {
			s.Report(models.CodePrivateVirtual, span, "Virtual member '%s' cannot be private", name)
		}
	}
	if mods.Has(syntax.ModSealed) && !mods.Has(syntax.ModOverride) {
		s.Report(models.CodeSealedNotOverride, span,
			"Member '%s' cannot be sealed because it is not an override", name)
	}
}

// hasImplementation reports whether an interface member carries a body.
func hasImplementation(m syntax.Member) bool {
	switch d := m.(type) {
	case *syntax.MethodDecl:
		return d.HasBody()
	case *syntax.PropertyDecl:
		if d.ExprBody != nil {
			return true
		}
		for _, a := range d.Accessors {
			if a.Body != nil || a.ExprBody != nil {
				return true
			}
		}
	case *syntax.EventDecl:
		return len(d.Accessors) > 0
	}
	return false
}
