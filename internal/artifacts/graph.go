package artifacts

import "sort"

type EdgeType string

const (
	EdgeInheritance  EdgeType = "inheritance"
	EdgeField        EdgeType = "field"
	EdgeUsage        EdgeType = "usage"
	EdgeCreation     EdgeType = "creation"
	EdgeStaticAccess EdgeType = "static_access"
)

type DepNode struct {
	ID   SymbolID   `json:"id"`
	Name string     `json:"name"`
	Kind SymbolKind `json:"kind"`
}

type Edge struct {
	From SymbolID `json:"from"`
	To   SymbolID `json:"to"`
	Type EdgeType `json:"type"`
}

// DependencyGraph records type-level dependencies between symbols of one session.
type DependencyGraph struct {
	Nodes map[SymbolID]DepNode
	Edges []Edge
	seen  map[Edge]bool
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes: make(map[SymbolID]DepNode),
		seen:  make(map[Edge]bool),
	}
}

func (*DependencyGraph) Kind() Kind { return KindDependencyGraph }
func (*DependencyGraph) artifact()  {}

func (g *DependencyGraph) AddNode(n DepNode) {
	if _, ok := g.Nodes[n.ID]; !ok {
		g.Nodes[n.ID] = n
	}
}

// AddEdge records from -> to once per edge type. Self edges are ignored.
func (g *DependencyGraph) AddEdge(from, to SymbolID, typ EdgeType) {
	e := Edge{From: from, To: to, Type: typ}
	if from == to || g.seen[e] {
		return
	}
	g.seen[e] = true
	g.Edges = append(g.Edges, e)
}

// Successors returns the distinct targets of edges leaving id, optionally limited to one edge type.
func (g *DependencyGraph) Successors(id SymbolID, only EdgeType) []SymbolID {
	set := make(map[SymbolID]bool)
	for _, e := range g.Edges {
		if e.From == id && (only == "" || e.Type == only) {
			set[e.To] = true
		}
	}
	out := make([]SymbolID, 0, len(set))
	for to := range set {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NodeIDs returns node ids in ascending order.
func (g *DependencyGraph) NodeIDs() []SymbolID {
	ids := make([]SymbolID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
