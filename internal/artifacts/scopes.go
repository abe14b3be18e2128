package artifacts

import "sharpcheck/internal/syntax"

type LocalKind string

const (
	LocalParam   LocalKind = "parameter"
	LocalVar     LocalKind = "local"
	LocalUsing   LocalKind = "using"
	LocalForeach LocalKind = "foreach"
	LocalCatch   LocalKind = "catch"
	LocalPattern LocalKind = "pattern"
	LocalOut     LocalKind = "out"
	LocalFunc    LocalKind = "function"
)

// Local is a name introduced inside a member body.
type Local struct {
	Name string
	Kind LocalKind
	// Type is nil for implicitly typed locals.
	Type *syntax.TypeRef
	Span syntax.Span
	Uses int
	// Const marks `const` locals.
	Const bool
}

// Scope is the flat set of locals of one member, keyed by member FQN.
type Scope struct {
	Member string
	// Decl is the member declaration the scope was collected from.
	Decl   syntax.Node
	Locals []*Local
}

// Lookup returns the most recently declared local with the name.
func (s *Scope) Lookup(name string) *Local {
	for i := len(s.Locals) - 1; i >= 0; i-- {
		if s.Locals[i].Name == name {
			return s.Locals[i]
		}
	}
	return nil
}

type LocalScopes struct {
	Members map[string]*Scope
	// Order keeps member keys in source order.
	Order []string
}

func NewLocalScopes() *LocalScopes {
	return &LocalScopes{Members: make(map[string]*Scope)}
}

func (*LocalScopes) Kind() Kind { return KindLocalScopes }
func (*LocalScopes) artifact()  {}

// Scope returns the scope for member, creating it on first use.
func (l *LocalScopes) Scope(member string) *Scope {
	if s, ok := l.Members[member]; ok {
		return s
	}
	s := &Scope{Member: member}
	l.Members[member] = s
	l.Order = append(l.Order, member)
	return s
}

type BindingKind string

const (
	BindSource     BindingKind = "source"
	BindExternal   BindingKind = "external"
	BindBuiltin    BindingKind = "builtin"
	BindTypeParam  BindingKind = "type_parameter"
	BindUnresolved BindingKind = "unresolved"
)

// Binding is the resolution of one type reference.
type Binding struct {
	Kind   BindingKind
	Target string
	// Symbol is set for source bindings.
	Symbol SymbolID
}

// BindingIndex maps each type reference in the unit to its resolution.
type BindingIndex struct {
	Refs map[*syntax.TypeRef]Binding
	// Order keeps references in walk order for deterministic reporting.
	Order []*syntax.TypeRef
}

func NewBindingIndex() *BindingIndex {
	return &BindingIndex{Refs: make(map[*syntax.TypeRef]Binding)}
}

func (*BindingIndex) Kind() Kind { return KindBindingIndex }
func (*BindingIndex) artifact()  {}

func (b *BindingIndex) Bind(ref *syntax.TypeRef, binding Binding) {
	if _, ok := b.Refs[ref]; !ok {
		b.Order = append(b.Order, ref)
	}
	b.Refs[ref] = binding
}

// Lookup returns the binding of ref.
func (b *BindingIndex) Lookup(ref *syntax.TypeRef) (Binding, bool) {
	binding, ok := b.Refs[ref]
	return binding, ok
}

// Unresolved returns references that could not be bound, in walk order.
func (b *BindingIndex) Unresolved() []*syntax.TypeRef {
	var out []*syntax.TypeRef
	for _, ref := range b.Order {
		if b.Refs[ref].Kind == BindUnresolved {
			out = append(out, ref)
		}
	}
	return out
}
