package detectors

import (
	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/syntax"
)

// DependenciesPass builds the type-level dependency graph of the unit.
// Only types found in the SymbolIndex become nodes.
type DependenciesPass struct{}

func NewDependenciesPass() *DependenciesPass {
	return &DependenciesPass{}
}

func (p *DependenciesPass) ID() string { return "dependencies" }
func (p *DependenciesPass) Reads() []artifacts.Kind {
	return []artifacts.Kind{artifacts.KindSymbolIndex}
}
func (p *DependenciesPass) Writes() []artifacts.Kind {
	return []artifacts.Kind{artifacts.KindDependencyGraph}
}

func (p *DependenciesPass) Run(cu *syntax.CompilationUnit, s *framework.Session) {
	index, ok := artifacts.Get[*artifacts.SymbolIndex](s.Artifacts)
	if !ok {
		return
	}
	s.Artifacts.Insert(BuildDependencyGraph(cu, index))
}

// BuildDependencyGraph links each type to the source types it inherits, stores,
// mentions in signatures, creates or accesses statically.
func BuildDependencyGraph(cu *syntax.CompilationUnit, index *artifacts.SymbolIndex) *artifacts.DependencyGraph {
	g := artifacts.NewDependencyGraph()
	for _, sym := range index.Types() {
		g.AddNode(artifacts.DepNode{ID: sym.ID, Name: sym.FQN, Kind: sym.Kind})
	}
	b := &graphBuilder{graph: g, index: index}

	syntax.VisitDecls(cu, func(path syntax.DeclPath, n syntax.Node) bool {
		switch d := n.(type) {
		case *syntax.TypeDecl:
			from, ok := index.ForDecl(d)
			if !ok {
				return true
			}
			for _, base := range d.BaseTypes {
				b.typeEdges(from.ID, base, artifacts.EdgeInheritance)
			}
			for _, p := range d.PrimaryParams {
				b.typeEdges(from.ID, p.Type, artifacts.EdgeField)
			}
		case *syntax.DelegateDecl:
			from, ok := index.ForDecl(d)
			if !ok {
				return true
			}
			b.typeEdges(from.ID, d.ReturnType, artifacts.EdgeUsage)
			for _, p := range d.Params {
				b.typeEdges(from.ID, p.Type, artifacts.EdgeUsage)
			}
		default:
			owner := path.Owner()
			if owner == nil {
				return true
			}
			from, ok := index.ForDecl(owner)
			if !ok {
				return true
			}
			b.member(from.ID, n)
		}
		return true
	})
	return g
}

type graphBuilder struct {
	graph *artifacts.DependencyGraph
	index *artifacts.SymbolIndex
}

// typeEdges adds an edge to every source type mentioned in t, including type arguments.
func (b *graphBuilder) typeEdges(from artifacts.SymbolID, t *syntax.TypeRef, typ artifacts.EdgeType) {
	if t == nil {
		return
	}
	if to, ok := b.index.ResolveType(t.Name); ok {
		b.graph.AddEdge(from, to.ID, typ)
	}
	for _, arg := range t.Args {
		b.typeEdges(from, arg, typ)
	}
}

func (b *graphBuilder) member(from artifacts.SymbolID, n syntax.Node) {
	switch d := n.(type) {
	case *syntax.FieldDecl:
		b.typeEdges(from, d.Type, artifacts.EdgeField)
	case *syntax.PropertyDecl:
		b.typeEdges(from, d.Type, artifacts.EdgeField)
	case *syntax.EventDecl:
		b.typeEdges(from, d.Type, artifacts.EdgeField)
	case *syntax.MethodDecl:
		b.typeEdges(from, d.ReturnType, artifacts.EdgeUsage)
	}
	for _, p := range paramsOf(n) {
		b.typeEdges(from, p.Type, artifacts.EdgeUsage)
	}

	syntax.Inspect(n, func(node syntax.Node) bool {
		switch e := node.(type) {
		case *syntax.NewExpr:
			b.typeEdges(from, e.Type, artifacts.EdgeCreation)
		case *syntax.MemberAccess:
			// Type.Member: the receiver names a type rather than a value
			if name := syntax.QualifiedName(e.X); name != "" {
				if to, ok := b.index.ResolveType(name); ok && to.Name == lastSegment(name) {
					b.graph.AddEdge(from, to.ID, artifacts.EdgeStaticAccess)
				}
			}
		case *syntax.LocalDecl:
			b.typeEdges(from, e.Type, artifacts.EdgeUsage)
		case *syntax.CastExpr:
			b.typeEdges(from, e.Type, artifacts.EdgeUsage)
		case *syntax.TypeOfExpr:
			b.typeEdges(from, e.Type, artifacts.EdgeUsage)
		}
		return true
	})
}

func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
