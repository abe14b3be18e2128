package detectors

import (
	"strings"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/syntax"
)

// BindingPass resolves every type reference of the unit.
type BindingPass struct{}

func NewBindingPass() *BindingPass {
	return &BindingPass{}
}

func (p *BindingPass) ID() string { return "binding" }
func (p *BindingPass) Reads() []artifacts.Kind {
	return []artifacts.Kind{artifacts.KindSymbolIndex, artifacts.KindExternalSymbols}
}
func (p *BindingPass) Writes() []artifacts.Kind {
	return []artifacts.Kind{artifacts.KindBindingIndex}
}

func (p *BindingPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	index, _ := artifacts.Get[*artifacts.SymbolIndex](s.Artifacts)
	external, _ := artifacts.Get[*artifacts.ExternalSymbols](s.Artifacts)
	s.Artifacts.Insert(BindTypes(cu, index, external))
}

// BindTypes resolves type references in order: keyword types, type parameters in
// scope, source types, imported external types, well-known framework types.
// index and external may be nil.
func BindTypes(cu *syntax.CompilationUnit, index *artifacts.SymbolIndex, external *artifacts.ExternalSymbols) *artifacts.BindingIndex {
	b := &binder{
		bindings: artifacts.NewBindingIndex(),
		index:    index,
		external: external,
		aliases:  make(map[string]string),
	}
	b.addUsings(cu.Usings)
	if ns := cu.FileScopedNamespace; ns != nil {
		b.namespaces = append(b.namespaces, ns.Name)
		b.addUsings(ns.Usings)
	}
	syntax.Walk(b, cu)
	return b.bindings
}

type binder struct {
	bindings   *artifacts.BindingIndex
	index      *artifacts.SymbolIndex
	external   *artifacts.ExternalSymbols
	namespaces []string
	aliases    map[string]string
	// typeParams holds one frame per visited node; non-nil frames introduce type parameters
	typeParams [][]string
}

func (b *binder) addUsings(usings []*syntax.UsingDirective) {
	for _, u := range usings {
		switch {
		case u.Alias != "":
			b.aliases[u.Alias] = u.Name
		case !u.Static:
			b.namespaces = append(b.namespaces, u.Name)
		}
	}
}

func (b *binder) Visit(n syntax.Node) syntax.Visitor {
	if n == nil {
		b.typeParams = b.typeParams[:len(b.typeParams)-1]
		return nil
	}
	var frame []string
	switch d := n.(type) {
	case *syntax.NamespaceDecl:
		// nested namespaces see their own name and usings
		if !d.FileScoped {
			b.namespaces = append(b.namespaces, d.Name)
			b.addUsings(d.Usings)
		}
	case *syntax.TypeDecl:
		frame = typeParamNames(d.TypeParams)
	case *syntax.MethodDecl:
		frame = typeParamNames(d.TypeParams)
	case *syntax.DelegateDecl:
		frame = typeParamNames(d.TypeParams)
	case *syntax.TypeRef:
		b.bindings.Bind(d, b.resolve(d))
	}
	b.typeParams = append(b.typeParams, frame)
	return b
}

// constraintKeywords appear in where clauses in place of a type.
var constraintKeywords = map[string]bool{
	"new()": true, "class": true, "struct": true, "default": true, "notnull": true, "unmanaged": true,
}

func typeParamNames(params []*syntax.TypeParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func (b *binder) inScopeTypeParam(name string) bool {
	for _, frame := range b.typeParams {
		for _, p := range frame {
			if p == name {
				return true
			}
		}
	}
	return false
}

func (b *binder) resolve(t *syntax.TypeRef) artifacts.Binding {
	name := t.Name
	if name == "(tuple)" {
		return artifacts.Binding{Kind: artifacts.BindBuiltin, Target: "System.ValueTuple"}
	}
	if target, ok := builtinTypes[name]; ok {
		return artifacts.Binding{Kind: artifacts.BindBuiltin, Target: target}
	}
	if constraintKeywords[name] {
		return artifacts.Binding{Kind: artifacts.BindBuiltin, Target: name}
	}
	if !strings.Contains(name, ".") && b.inScopeTypeParam(name) {
		return artifacts.Binding{Kind: artifacts.BindTypeParam, Target: name}
	}
	if target, ok := b.aliases[name]; ok {
		name = target
	}
	name = strings.TrimPrefix(name, "global::")
	if b.index != nil {
		if sym, ok := b.index.ResolveType(name); ok {
			return artifacts.Binding{Kind: artifacts.BindSource, Target: sym.FQN, Symbol: sym.ID}
		}
	}
	if b.external != nil {
		if b.external.HasType(name) {
			return artifacts.Binding{Kind: artifacts.BindExternal, Target: name}
		}
		for _, ns := range b.namespaces {
			if fqn := ns + "." + name; b.external.HasType(fqn) {
				return artifacts.Binding{Kind: artifacts.BindExternal, Target: fqn}
			}
		}
	}
	if simple := lastSegment(name); wellKnownTypes[simple] {
		return artifacts.Binding{Kind: artifacts.BindBuiltin, Target: "System." + simple}
	}
	return artifacts.Binding{Kind: artifacts.BindUnresolved, Target: name}
}
