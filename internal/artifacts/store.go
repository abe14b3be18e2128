// Package artifacts holds the typed outputs that analysis passes hand to each other.
package artifacts

import (
	"fmt"
	"sort"
)

// Kind identifies an artifact slot in a Store.
type Kind int

const (
	KindAstAnalysis Kind = iota
	KindSymbolIndex
	KindExternalSymbols
	KindControlFlowIndex
	KindDependencyGraph
	KindLocalScopes
	KindBindingIndex
)

var kindNames = map[Kind]string{
	KindAstAnalysis:      "ast_analysis",
	KindSymbolIndex:      "symbol_index",
	KindExternalSymbols:  "external_symbols",
	KindControlFlowIndex: "control_flow_index",
	KindDependencyGraph:  "dependency_graph",
	KindLocalScopes:      "local_scopes",
	KindBindingIndex:     "binding_index",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Artifact is implemented only by the types in this package.
// Kind must not dereference its receiver so that it can be called on a nil pointer.
type Artifact interface {
	Kind() Kind
	artifact()
}

// Store keeps at most one artifact per kind. It is owned by a single session
// and is not safe for concurrent use.
type Store struct {
	slots map[Kind]Artifact
}

func NewStore() *Store {
	return &Store{slots: make(map[Kind]Artifact)}
}

// Insert stores a, replacing any artifact of the same kind.
func (s *Store) Insert(a Artifact) {
	s.slots[a.Kind()] = a
}

// Has reports whether an artifact of kind k was inserted.
func (s *Store) Has(k Kind) bool {
	_, ok := s.slots[k]
	return ok
}

// Kinds lists the occupied slots in ascending order.
func (s *Store) Kinds() []Kind {
	kinds := make([]Kind, 0, len(s.slots))
	for k := range s.slots {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Get returns the artifact of type T, or the zero value and false when absent.
// It panics if the slot for T's kind holds a value of another type.
func Get[T Artifact](s *Store) (T, bool) {
	var zero T
	slot, ok := s.slots[zero.Kind()]
	if !ok {
		return zero, false
	}
	v, ok := slot.(T)
	if !ok {
		panic(fmt.Sprintf("artifacts: slot %s holds %T, requested %T", zero.Kind(), slot, zero))
	}
	return v, true
}
