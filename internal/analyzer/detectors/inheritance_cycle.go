package detectors

import (
	"strings"

	"sharpcheck/internal/artifacts"
)

// inheritanceGraph links each source type to the source types in its base list.
type inheritanceGraph struct {
	order []artifacts.SymbolID
	names map[artifacts.SymbolID]string
	bases map[artifacts.SymbolID][]artifacts.SymbolID
}

func newInheritanceGraph() *inheritanceGraph {
	return &inheritanceGraph{
		names: make(map[artifacts.SymbolID]string),
		bases: make(map[artifacts.SymbolID][]artifacts.SymbolID),
	}
}

func (g *inheritanceGraph) addType(sym *artifacts.Symbol) {
	if _, ok := g.names[sym.ID]; ok {
		return
	}
	g.order = append(g.order, sym.ID)
	g.names[sym.ID] = sym.Name
}

func (g *inheritanceGraph) addEdge(from, to artifacts.SymbolID) {
	g.bases[from] = append(g.bases[from], to)
}

// findCycles returns at most one cycle per DFS root, each closed by repeating its first type.
func (g *inheritanceGraph) findCycles() [][]artifacts.SymbolID {
	var cycles [][]artifacts.SymbolID
	visited := make(map[artifacts.SymbolID]bool)
	recStack := make(map[artifacts.SymbolID]bool)

	for _, id := range g.order {
		if !visited[id] {
			if cycle := g.dfs(id, visited, recStack, nil); cycle != nil {
				cycles = append(cycles, cycle)
			}
		}
	}
	return cycles
}

func (g *inheritanceGraph) dfs(id artifacts.SymbolID, visited, recStack map[artifacts.SymbolID]bool, path []artifacts.SymbolID) []artifacts.SymbolID {
	visited[id] = true
	recStack[id] = true
	path = append(path, id)
	defer func() { recStack[id] = false }()

	for _, base := range g.bases[id] {
		if !visited[base] {
			if cycle := g.dfs(base, visited, recStack, path); cycle != nil {
				return cycle
			}
		} else if recStack[base] {
			return extractCycle(path, base)
		}
	}
	return nil
}

func extractCycle(path []artifacts.SymbolID, start artifacts.SymbolID) []artifacts.SymbolID {
	for i, id := range path {
		if id == start {
			cycle := make([]artifacts.SymbolID, len(path)-i, len(path)-i+1)
			copy(cycle, path[i:])
			return append(cycle, start)
		}
	}
	return path
}

// describe renders a cycle as "A -> B -> A".
func (g *inheritanceGraph) describe(cycle []artifacts.SymbolID) string {
	names := make([]string, len(cycle))
	for i, id := range cycle {
		names[i] = g.names[id]
	}
	return strings.Join(names, " -> ")
}
