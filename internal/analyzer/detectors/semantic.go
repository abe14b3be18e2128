package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// NewSemanticRuleSet returns the local ruleset with declaration-level checks.
// Despite the id it needs no artifacts: every check reads only the declaration and its owner.
func NewSemanticRuleSet() *framework.RuleSet {
	return framework.NewRuleSet("semantic", framework.Local, nil,
		&ConstructorRule{}, &MethodModifierRule{}, &ParameterRule{},
		NewMethodLengthRule(), &DocumentationRule{})
}

// ConstructorRule validates constructor names and modifiers.
type ConstructorRule struct{}

func (r *ConstructorRule) ID() string { return "constructors" }

func (r *ConstructorRule) Visit(n syntax.Node, c *framework.Cursor) {
	ctor, ok := n.(*syntax.ConstructorDecl)
	if !ok {
		return
	}
	owner := c.Owner()
	if owner == nil {
		return
	}
	if owner.Kind == syntax.KindInterface {
		c.Report(models.CodeInterfaceConstructor, ctor.NameSpan, "Interface '%s' cannot declare a constructor", owner.Name)
		return
	}
	if ctor.Name != owner.Name {
		c.Report(models.CodeConstructorName, ctor.NameSpan,
			"Constructor '%s' does not match the containing type name '%s'", ctor.Name, owner.Name)
	}
	mods := ctor.Modifiers
	if mods.Has(syntax.ModVirtual) || mods.Has(syntax.ModAbstract) {
		c.Report(models.CodeConstructorVirtual, ctor.NameSpan, "")
	}
	if mods.Has(syntax.ModOverride) {
		c.Report(models.CodeConstructorOverride, ctor.NameSpan, "")
	}
	if mods.Has(syntax.ModAsync) {
		c.Report(models.CodeAsyncConstructor, ctor.NameSpan, "")
	}
}

// MethodModifierRule validates method bodies against abstract, virtual,
// static, override and async modifiers.
type MethodModifierRule struct{}

func (r *MethodModifierRule) ID() string { return "method_modifiers" }

func (r *MethodModifierRule) Visit(n syntax.Node, c *framework.Cursor) {
	m, ok := n.(*syntax.MethodDecl)
	if !ok || c.MemberNode() != n {
		return
	}
	owner := c.Owner()
	if owner == nil {
		return
	}
	mods := m.Modifiers
	inInterface := owner.Kind == syntax.KindInterface

	switch {
	case inInterface:
		if m.HasBody() && !isDefaultInterfaceMethod(mods) {
			c.Report(models.CodeInterfaceMethodBody, m.NameSpan, "Interface method '%s' cannot have a body", m.Name)
		}
	case mods.Has(syntax.ModAbstract) && m.HasBody():
		c.Report(models.CodeAbstractWithBody, m.NameSpan, "Abstract method '%s' cannot have a body", m.Name)
	case !mods.Has(syntax.ModAbstract) && !m.HasBody() &&
		!mods.Has(syntax.ModExtern) && !mods.Has(syntax.ModPartial):
		c.Report(models.CodeMissingBody, m.NameSpan, "Method '%s' must declare a body", m.Name)
	}

	if mods.Has(syntax.ModVirtual) && owner.Modifiers.Has(syntax.ModSealed) {
		c.Report(models.CodeVirtualInSealed, m.NameSpan,
			"Virtual method '%s' cannot be declared in sealed class '%s'", m.Name, owner.Name)
	}
	if mods.Has(syntax.ModStatic) && mods.Has(syntax.ModVirtual) && !inInterface {
		c.Report(models.CodeVirtualStatic, m.NameSpan, "")
	}
	if mods.Has(syntax.ModStatic) && mods.Has(syntax.ModOverride) {
		c.Report(models.CodeStaticOverride, m.NameSpan, "")
	}
	if mods.Has(syntax.ModAsync) && !isAsyncReturnType(m.ReturnType) {
		c.Report(models.CodeAsyncReturnType, m.NameSpan,
			"Async method '%s' returns '%s'; expected void, Task or Task<T>", m.Name, m.ReturnType)
	}
}

// isDefaultInterfaceMethod reports modifiers that explicitly mark an interface
// member as carrying an implementation.
func isDefaultInterfaceMethod(mods syntax.Modifiers) bool {
	return mods&(syntax.ModStatic|syntax.ModVirtual|syntax.ModPrivate|syntax.ModSealed) != 0
}

func isAsyncReturnType(t *syntax.TypeRef) bool {
	if t == nil {
		return true
	}
	switch t.SimpleName() {
	case "void", "Task", "ValueTask", "IAsyncEnumerable", "IAsyncEnumerator":
		return t.Rank == 0
	}
	return false
}

// ParameterRule reports duplicate parameter names and long parameter lists.
type ParameterRule struct{}

func (r *ParameterRule) ID() string { return "parameters" }

func (r *ParameterRule) Visit(n syntax.Node, c *framework.Cursor) {
	params := paramsOf(n)
	if len(params) == 0 {
		return
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if isDiscard(p.Name) {
			continue
		}
		if seen[p.Name] {
			c.Report(models.CodeDuplicateParameter, p.NameSpan, "Parameter name '%s' is used more than once", p.Name)
		}
		seen[p.Name] = true
	}

	if _, ok := n.(*syntax.LambdaExpr); ok {
		return
	}
	limit := c.Config().MaxParams
	if limit > 0 && len(params) > limit {
		d := models.NewDiagnostic(models.CodeTooManyParams, models.SourceLocation{},
			fmt.Sprintf("'%s' has %d parameters (maximum %d)", memberName(n), len(params), limit))
		d.Suggestion = "Group related parameters into a parameter object or record"
		c.ReportAt(d, nameSpan(n))
	}
}

// DocumentationRule reports public types and members without XML documentation.
// It only runs when report_missing_docs is set.
type DocumentationRule struct{}

func (r *DocumentationRule) ID() string { return "documentation" }

func (r *DocumentationRule) Visit(n syntax.Node, c *framework.Cursor) {
	if !c.Config().ReportMissingDocs {
		return
	}
	var doc string
	switch d := n.(type) {
	case *syntax.TypeDecl:
		doc = d.Doc
	case *syntax.MethodDecl:
		if c.MemberNode() != n {
			return
		}
		doc = d.Doc
	case *syntax.PropertyDecl:
		doc = d.Doc
	default:
		return
	}
	mods, _ := modifiersOf(n)
	if !mods.Has(syntax.ModPublic) || doc != "" {
		return
	}
	if owner := c.Owner(); owner != nil && owner.Kind == syntax.KindInterface && n != syntax.Node(owner) {
		return
	}
	c.Report(models.CodeMissingDocs, nameSpan(n), "Public '%s' has no XML documentation", memberName(n))
}
