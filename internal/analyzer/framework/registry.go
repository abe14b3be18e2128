package framework

import (
	"container/heap"
	"fmt"
	"strings"

	"sharpcheck/internal/artifacts"
)

// Entry is one registered pass or ruleset.
type Entry struct {
	Pass    Pass
	RuleSet *RuleSet
}

// PassEntry wraps a pass for registration.
func PassEntry(p Pass) Entry { return Entry{Pass: p} }

// RuleSetEntry wraps a ruleset for registration.
func RuleSetEntry(rs *RuleSet) Entry { return Entry{RuleSet: rs} }

func (e Entry) IsPass() bool { return e.Pass != nil }

func (e Entry) ID() string {
	if e.Pass != nil {
		return e.Pass.ID()
	}
	return e.RuleSet.ID()
}

func (e Entry) Reads() []artifacts.Kind {
	if e.Pass != nil {
		return e.Pass.Reads()
	}
	return e.RuleSet.Reads()
}

func (e Entry) Writes() []artifacts.Kind {
	if e.Pass != nil {
		return e.Pass.Writes()
	}
	return nil
}

type RegistryErrorKind int

const (
	ErrCycle RegistryErrorKind = iota
	ErrUnsatisfiedRead
	ErrDuplicateWriter
	ErrDuplicateID
)

// RegistryError reports an invalid set of registrations.
type RegistryError struct {
	Kind     RegistryErrorKind
	IDs      []string
	Artifact artifacts.Kind
}

func (e *RegistryError) Error() string {
	switch e.Kind {
	case ErrCycle:
		return fmt.Sprintf("registry: dependency cycle among %s", strings.Join(e.IDs, ", "))
	case ErrUnsatisfiedRead:
		return fmt.Sprintf("registry: %s reads %s but nothing writes it", e.IDs[0], e.Artifact)
	case ErrDuplicateWriter:
		return fmt.Sprintf("registry: %s is written by both %s", e.Artifact, strings.Join(e.IDs, " and "))
	default:
		return fmt.Sprintf("registry: duplicate id %s", e.IDs[0])
	}
}

// Registry is a validated, dependency-ordered list of entries.
type Registry struct {
	entries []Entry
}

// NewRegistry orders entries so that every artifact is written before it is read.
// The sort is stable: independent entries keep their registration order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	ids := make(map[string]bool, len(entries))
	writer := make(map[artifacts.Kind]int)
	for i, e := range entries {
		if ids[e.ID()] {
			return nil, &RegistryError{Kind: ErrDuplicateID, IDs: []string{e.ID()}}
		}
		ids[e.ID()] = true
		for _, k := range e.Writes() {
			if prev, ok := writer[k]; ok {
				return nil, &RegistryError{Kind: ErrDuplicateWriter, IDs: []string{entries[prev].ID(), e.ID()}, Artifact: k}
			}
			writer[k] = i
		}
	}

	succ := make([][]int, len(entries))
	indegree := make([]int, len(entries))
	for i, e := range entries {
		for _, k := range e.Reads() {
			w, ok := writer[k]
			if !ok {
				return nil, &RegistryError{Kind: ErrUnsatisfiedRead, IDs: []string{e.ID()}, Artifact: k}
			}
			if w == i {
				continue
			}
			succ[w] = append(succ[w], i)
			indegree[i]++
		}
	}

	// Kahn's algorithm with the lowest registration index first
	ready := &indexHeap{}
	for i := range entries {
		if indegree[i] == 0 {
			heap.Push(ready, i)
		}
	}
	ordered := make([]Entry, 0, len(entries))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		ordered = append(ordered, entries[i])
		for _, j := range succ[i] {
			indegree[j]--
			if indegree[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}
	if len(ordered) != len(entries) {
		var stuck []string
		for i, e := range entries {
			if indegree[i] > 0 {
				stuck = append(stuck, e.ID())
			}
		}
		return nil, &RegistryError{Kind: ErrCycle, IDs: stuck}
	}
	return &Registry{entries: ordered}, nil
}

// Filter returns a registry with the entries for which keep is true, in the same order.
func (r *Registry) Filter(keep func(Entry) bool) *Registry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return &Registry{entries: out}
}

// Entries returns every entry in execution order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

func (r *Registry) Passes() []Pass {
	var out []Pass
	for _, e := range r.entries {
		if e.IsPass() {
			out = append(out, e.Pass)
		}
	}
	return out
}

func (r *Registry) RulesetsLocal() []*RuleSet {
	return r.rulesets(Local)
}

func (r *Registry) RulesetsSemantic() []*RuleSet {
	return r.rulesets(Semantic)
}

func (r *Registry) rulesets(v Variant) []*RuleSet {
	var out []*RuleSet
	for _, e := range r.entries {
		if !e.IsPass() && e.RuleSet.Variant == v {
			out = append(out, e.RuleSet)
		}
	}
	return out
}

// IDs lists entry ids in execution order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.ID()
	}
	return out
}

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
