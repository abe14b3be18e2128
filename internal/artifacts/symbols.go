package artifacts

import (
	"sort"
	"strings"

	"sharpcheck/internal/syntax"

	"golang.org/x/text/unicode/norm"
)

// SymbolID is a session-local symbol handle: an index into SymbolIndex.Symbols.
type SymbolID int

type SymbolKind string

const (
	SymClass       SymbolKind = "class"
	SymStruct      SymbolKind = "struct"
	SymInterface   SymbolKind = "interface"
	SymEnum        SymbolKind = "enum"
	SymRecord      SymbolKind = "record"
	SymDelegate    SymbolKind = "delegate"
	SymMethod      SymbolKind = "method"
	SymConstructor SymbolKind = "constructor"
	SymProperty    SymbolKind = "property"
	SymField       SymbolKind = "field"
	SymEvent       SymbolKind = "event"
)

// IsType reports whether the kind names a type declaration.
func (k SymbolKind) IsType() bool {
	switch k {
	case SymClass, SymStruct, SymInterface, SymEnum, SymRecord, SymDelegate:
		return true
	}
	return false
}

type Symbol struct {
	ID        SymbolID
	Name      string
	FQN       string
	Kind      SymbolKind
	Namespace string
	// Container is the FQN of the declaring type, "" for top-level types.
	Container string
	Modifiers syntax.Modifiers
	Span      syntax.Span
	Decl      syntax.Node
}

// SymbolIndex lists every declaration of one compilation unit.
type SymbolIndex struct {
	Symbols  []*Symbol
	byFQN    map[string][]SymbolID
	bySimple map[string][]SymbolID
	byDecl   map[syntax.Node]SymbolID
}

func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		byFQN:    make(map[string][]SymbolID),
		bySimple: make(map[string][]SymbolID),
		byDecl:   make(map[syntax.Node]SymbolID),
	}
}

func (*SymbolIndex) Kind() Kind { return KindSymbolIndex }
func (*SymbolIndex) artifact()  {}

// normalizeName folds identifiers to NFC so that differently composed spellings match.
func normalizeName(s string) string {
	return norm.NFC.String(s)
}

// Add registers sym, assigning its ID.
func (x *SymbolIndex) Add(sym Symbol) SymbolID {
	sym.Name = normalizeName(sym.Name)
	sym.FQN = normalizeName(sym.FQN)
	sym.ID = SymbolID(len(x.Symbols))
	s := &sym
	x.Symbols = append(x.Symbols, s)
	x.byFQN[s.FQN] = append(x.byFQN[s.FQN], s.ID)
	x.bySimple[s.Name] = append(x.bySimple[s.Name], s.ID)
	if s.Decl != nil {
		x.byDecl[s.Decl] = s.ID
	}
	return s.ID
}

// Symbol returns the symbol for id, or nil when out of range.
func (x *SymbolIndex) Symbol(id SymbolID) *Symbol {
	if id < 0 || int(id) >= len(x.Symbols) {
		return nil
	}
	return x.Symbols[id]
}

// ByFQN returns all symbols with the FQN; overloads share one.
func (x *SymbolIndex) ByFQN(fqn string) []*Symbol {
	return x.collect(x.byFQN[normalizeName(fqn)])
}

// ByName returns all symbols with the simple name.
func (x *SymbolIndex) ByName(name string) []*Symbol {
	return x.collect(x.bySimple[normalizeName(name)])
}

// ForDecl returns the symbol registered for a declaration node.
func (x *SymbolIndex) ForDecl(n syntax.Node) (*Symbol, bool) {
	id, ok := x.byDecl[n]
	if !ok {
		return nil, false
	}
	return x.Symbols[id], true
}

func (x *SymbolIndex) collect(ids []SymbolID) []*Symbol {
	out := make([]*Symbol, 0, len(ids))
	for _, id := range ids {
		out = append(out, x.Symbols[id])
	}
	return out
}

// ResolveType finds a type symbol by qualified or simple name.
// A dotted name that does not match an FQN falls back to its last segment.
func (x *SymbolIndex) ResolveType(name string) (*Symbol, bool) {
	if name == "" {
		return nil, false
	}
	for _, s := range x.ByFQN(name) {
		if s.Kind.IsType() {
			return s, true
		}
	}
	simple := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		simple = name[i+1:]
	}
	for _, s := range x.ByName(simple) {
		if s.Kind.IsType() {
			return s, true
		}
	}
	return nil, false
}

// Types returns the type symbols in declaration order.
func (x *SymbolIndex) Types() []*Symbol {
	var out []*Symbol
	for _, s := range x.Symbols {
		if s.Kind.IsType() {
			out = append(out, s)
		}
	}
	return out
}

// Members returns the symbols declared directly in the type with the given FQN.
func (x *SymbolIndex) Members(container string) []*Symbol {
	var out []*Symbol
	for _, s := range x.Symbols {
		if s.Container == container && !s.Kind.IsType() {
			out = append(out, s)
		}
	}
	return out
}

// ExternalSymbols lists type names loaded from referenced assemblies.
type ExternalSymbols struct {
	Types      map[string]bool
	Namespaces map[string]bool
	// Sources lists the assemblies that were read successfully.
	Sources []string
}

func NewExternalSymbols() *ExternalSymbols {
	return &ExternalSymbols{Types: make(map[string]bool), Namespaces: make(map[string]bool)}
}

func (*ExternalSymbols) Kind() Kind { return KindExternalSymbols }
func (*ExternalSymbols) artifact()  {}

// AddType records a fully qualified type name and its namespace.
func (e *ExternalSymbols) AddType(namespace, name string) {
	fqn := name
	if namespace != "" {
		fqn = namespace + "." + name
		e.Namespaces[normalizeName(namespace)] = true
	}
	e.Types[normalizeName(fqn)] = true
}

// HasType reports whether fqn was loaded.
func (e *ExternalSymbols) HasType(fqn string) bool {
	return e.Types[normalizeName(fqn)]
}

// SortedTypes returns the loaded type names in order.
func (e *ExternalSymbols) SortedTypes() []string {
	out := make([]string, 0, len(e.Types))
	for t := range e.Types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
