package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/syntax"
)

// IndexingPass records every type and member declaration of the unit in a SymbolIndex.
type IndexingPass struct{}

func NewIndexingPass() *IndexingPass {
	return &IndexingPass{}
}

func (p *IndexingPass) ID() string                { return "indexing" }
func (p *IndexingPass) Reads() []artifacts.Kind  { return nil }
func (p *IndexingPass) Writes() []artifacts.Kind { return []artifacts.Kind{artifacts.KindSymbolIndex} }

func (p *IndexingPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	s.Artifacts.Insert(BuildSymbolIndex(cu))
}

var typeKinds = map[syntax.TypeKind]artifacts.SymbolKind{
	syntax.KindClass:        artifacts.SymClass,
	syntax.KindStruct:       artifacts.SymStruct,
	syntax.KindInterface:    artifacts.SymInterface,
	syntax.KindEnum:         artifacts.SymEnum,
	syntax.KindRecord:       artifacts.SymRecord,
	syntax.KindRecordStruct: artifacts.SymStruct,
}

// BuildSymbolIndex indexes the declarations of cu in source order.
func BuildSymbolIndex(cu *syntax.CompilationUnit) *artifacts.SymbolIndex {
	index := artifacts.NewSymbolIndex()
	syntax.VisitDecls(cu, func(path syntax.DeclPath, n syntax.Node) bool {
		sym := artifacts.Symbol{Namespace: path.Namespace, Decl: n, Span: nameSpan(n)}
		switch d := n.(type) {
		case *syntax.NamespaceDecl:
			return true
		case *syntax.TypeDecl:
			sym.Name, sym.FQN, sym.Kind, sym.Modifiers = d.Name, framework.ClassFQN(path), typeKinds[d.Kind], d.Modifiers
			sym.Container = enclosingTypePath(path)
		case *syntax.DelegateDecl:
			sym.Name, sym.FQN, sym.Kind, sym.Modifiers = d.Name, framework.MemberFQN(path, d), artifacts.SymDelegate, d.Modifiers
			sym.Container = path.TypePath()
			if len(path.Types) == 0 {
				sym.Container = ""
			}
		case *syntax.FieldDecl:
			// one symbol per declarator
			for _, v := range d.Vars {
				index.Add(artifacts.Symbol{
					Name:      v.Name,
					FQN:       framework.MethodFQN(path, v.Name),
					Kind:      artifacts.SymField,
					Namespace: path.Namespace,
					Container: framework.ClassFQN(path),
					Modifiers: d.Modifiers,
					Span:      v.NameSpan,
					Decl:      d,
				})
			}
			return true
		default:
			kind, ok := memberKind(n)
			if !ok {
				return true
			}
			mods, _ := modifiersOf(n)
			sym.Name, sym.FQN, sym.Kind, sym.Modifiers = memberName(n), framework.MemberFQN(path, n), kind, mods
			sym.Container = framework.ClassFQN(path)
		}
		index.Add(sym)
		return true
	})
	return index
}

func memberKind(n syntax.Node) (artifacts.SymbolKind, bool) {
	switch n.(type) {
	case *syntax.MethodDecl:
		return artifacts.SymMethod, true
	case *syntax.ConstructorDecl:
		return artifacts.SymConstructor, true
	case *syntax.PropertyDecl:
		return artifacts.SymProperty, true
	case *syntax.EventDecl:
		return artifacts.SymEvent, true
	}
	return "", false
}

// enclosingTypePath returns the FQN of the type containing the innermost type of path.
func enclosingTypePath(path syntax.DeclPath) string {
	if len(path.Types) < 2 {
		return ""
	}
	return syntax.DeclPath{Namespace: path.Namespace, Types: path.Types[:len(path.Types)-1]}.TypePath()
}
