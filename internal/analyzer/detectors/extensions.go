package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// ExtensionsPass checks where extension methods are declared: static methods
// of a top-level, non-generic static class.
type ExtensionsPass struct{}

func NewExtensionsPass() *ExtensionsPass {
	return &ExtensionsPass{}
}

func (p *ExtensionsPass) ID() string                { return "extensions" }
func (p *ExtensionsPass) Reads() []artifacts.Kind  { return nil }
func (p *ExtensionsPass) Writes() []artifacts.Kind { return nil }

func (p *ExtensionsPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	syntax.VisitDecls(cu, func(path syntax.DeclPath, n syntax.Node) bool {
		m, ok := n.(*syntax.MethodDecl)
		if !ok || !isExtensionMethod(m) {
			return true
		}
		owner := path.Owner()
		if owner == nil {
			return true
		}
		if reason := extensionPlacementError(path, owner, m); reason != "" {
			s.Report(models.CodeExtensionOutsideStatic, m.NameSpan,
				"Extension method '%s' %s", m.Name, reason)
		}
		return true
	})
}

func isExtensionMethod(m *syntax.MethodDecl) bool {
	return len(m.Params) > 0 && m.Params[0].Modifier == "this"
}

func extensionPlacementError(path syntax.DeclPath, owner *syntax.TypeDecl, m *syntax.MethodDecl) string {
	switch {
	case owner.Kind != syntax.KindClass || !owner.Modifiers.Has(syntax.ModStatic):
		return "must be declared in a static class, not in " + owner.Kind.String() + " '" + owner.Name + "'"
	case len(path.Types) > 1:
		return "must be declared in a top-level class, '" + owner.Name + "' is nested"
	case len(owner.TypeParams) > 0:
		return "must be declared in a non-generic class"
	case !m.Modifiers.Has(syntax.ModStatic):
		return "must be static"
	}
	return ""
}
