// Package syntax defines the abstract syntax tree produced by the parser.
package syntax

import "strings"

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Bounds returns the span itself so that every node embedding a Span satisfies Node.
func (s Span) Bounds() Span { return s }

// Len returns the span length, never negative.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Node is implemented by every AST node.
type Node interface {
	Bounds() Span
}

// SpanTable maps declaration keys ("class:Ns.C", "method:Ns.C::M", ...) to their source spans.
type SpanTable map[string]Span

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint32

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModInternal
	ModStatic
	ModAbstract
	ModVirtual
	ModOverride
	ModSealed
	ModReadonly
	ModConst
	ModAsync
	ModPartial
	ModExtern
	ModNew
	ModUnsafe
	ModVolatile
	ModRequired
	ModFile
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModPrivate, "private"},
	{ModProtected, "protected"},
	{ModInternal, "internal"},
	{ModStatic, "static"},
	{ModAbstract, "abstract"},
	{ModVirtual, "virtual"},
	{ModOverride, "override"},
	{ModSealed, "sealed"},
	{ModReadonly, "readonly"},
	{ModConst, "const"},
	{ModAsync, "async"},
	{ModPartial, "partial"},
	{ModExtern, "extern"},
	{ModNew, "new"},
	{ModUnsafe, "unsafe"},
	{ModVolatile, "volatile"},
	{ModRequired, "required"},
	{ModFile, "file"},
}

// ModifierFromKeyword maps a modifier keyword to its bit, or 0.
func ModifierFromKeyword(word string) Modifiers {
	for _, m := range modifierNames {
		if m.name == word {
			return m.mod
		}
	}
	return 0
}

// Has reports whether every bit of m is set.
func (ms Modifiers) Has(m Modifiers) bool { return ms&m == m }

// HasAccess reports whether any accessibility modifier is present.
func (ms Modifiers) HasAccess() bool {
	return ms&(ModPublic|ModPrivate|ModProtected|ModInternal) != 0
}

func (ms Modifiers) String() string {
	var parts []string
	for _, m := range modifierNames {
		if ms.Has(m.mod) {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(parts, " ")
}

// CompilationUnit is the root of one parsed file.
type CompilationUnit struct {
	Span
	Usings []*UsingDirective
	// FileScopedNamespace is set for `namespace X;` files; its Members hold the file's declarations.
	FileScopedNamespace *NamespaceDecl
	Members             []Decl
	Attributes          []*Attribute
	// NullableEnabled records a `#nullable enable` directive anywhere in the file.
	NullableEnabled bool
}

// Decl is a namespace-level declaration: a namespace, a type or a delegate.
type Decl interface {
	Node
	declNode()
}

// Member is a type-level declaration.
type Member interface {
	Node
	memberNode()
}

type UsingDirective struct {
	Span
	Name   string
	Alias  string
	Static bool
	Global bool
}

type NamespaceDecl struct {
	Span
	Name       string
	NameSpan   Span
	Usings     []*UsingDirective
	Members    []Decl
	FileScoped bool
}

// TypeKind distinguishes the flavours of TypeDecl.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindStruct
	KindInterface
	KindEnum
	KindRecord
	KindRecordStruct
)

func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindRecordStruct:
		return "record struct"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Span
	Target string
	Name   string
	Args   []*Argument
}

type TypeParam struct {
	Span
	Name     string
	Variance string
}

// Constraint is one `where T : ...` clause.
type Constraint struct {
	Span
	Param string
	Types []*TypeRef
}

// TypeDecl covers classes, structs, interfaces, enums and records.
type TypeDecl struct {
	Span
	Kind          TypeKind
	Name          string
	NameSpan      Span
	Modifiers     Modifiers
	Attributes    []*Attribute
	TypeParams    []*TypeParam
	Constraints   []*Constraint
	PrimaryParams []*Param
	BaseTypes     []*TypeRef
	Members       []Member
	EnumMembers   []*EnumMember
	Doc           string
}

type EnumMember struct {
	Span
	Name       string
	Attributes []*Attribute
	Value      Expr
}

type DelegateDecl struct {
	Span
	Name       string
	NameSpan   Span
	Modifiers  Modifiers
	Attributes []*Attribute
	ReturnType *TypeRef
	TypeParams []*TypeParam
	Params     []*Param
	Doc        string
}

// MethodDecl covers ordinary methods, operators, conversion operators, destructors and local functions.
type MethodDecl struct {
	Span
	Name        string
	NameSpan    Span
	Modifiers   Modifiers
	Attributes  []*Attribute
	ReturnType  *TypeRef
	TypeParams  []*TypeParam
	Constraints []*Constraint
	Params      []*Param
	Body        *Block
	ExprBody    Expr
	Doc         string
	// ExplicitInterface holds `IFoo` for `void IFoo.M()`.
	ExplicitInterface string
	IsOperator        bool
	IsDestructor      bool
}

// HasBody reports whether the method has a block or expression body.
func (m *MethodDecl) HasBody() bool { return m.Body != nil || m.ExprBody != nil }

type ConstructorInitializer struct {
	Span
	Base bool
	Args []*Argument
}

type ConstructorDecl struct {
	Span
	Name        string
	NameSpan    Span
	Modifiers   Modifiers
	Attributes  []*Attribute
	Params      []*Param
	Initializer *ConstructorInitializer
	Body        *Block
	ExprBody    Expr
	Doc         string
}

type Accessor struct {
	Span
	Kind      string
	Modifiers Modifiers
	Body      *Block
	ExprBody  Expr
}

// PropertyDecl covers properties and indexers (Name "this" with IndexParams).
type PropertyDecl struct {
	Span
	Name        string
	NameSpan    Span
	Type        *TypeRef
	Modifiers   Modifiers
	Attributes  []*Attribute
	IndexParams []*Param
	Accessors   []*Accessor
	ExprBody    Expr
	Initializer Expr
	Doc         string
}

type VarDeclarator struct {
	Span
	Name     string
	NameSpan Span
	Init     Expr
}

type FieldDecl struct {
	Span
	Type       *TypeRef
	Modifiers  Modifiers
	Attributes []*Attribute
	Vars       []*VarDeclarator
	Doc        string
}

type EventDecl struct {
	Span
	Name       string
	NameSpan   Span
	Type       *TypeRef
	Modifiers  Modifiers
	Attributes []*Attribute
	Accessors  []*Accessor
}

// TypeRef is a reference to a type as written in source.
type TypeRef struct {
	Span
	// Name is the dotted name without type arguments; tuples use "(tuple)".
	Name     string
	Args     []*TypeRef
	Nullable bool
	Rank     int
	Pointer  bool
	// TupleNames holds element names of a tuple type, parallel to Args.
	TupleNames []string
}

// String renders the type the way it is written, used for signatures and messages.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	if t.Name == "(tuple)" {
		b.WriteString("(")
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteString(")")
	} else {
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteString("<")
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(a.String())
			}
			b.WriteString(">")
		}
	}
	if t.Pointer {
		b.WriteString("*")
	}
	if t.Nullable {
		b.WriteString("?")
	}
	for i := 0; i < t.Rank; i++ {
		b.WriteString("[]")
	}
	return b.String()
}

// SimpleName returns the last dotted segment of the type name.
func (t *TypeRef) SimpleName() string {
	if t == nil {
		return ""
	}
	if i := strings.LastIndex(t.Name, "."); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

type Param struct {
	Span
	Name       string
	NameSpan   Span
	Type       *TypeRef
	Modifier   string
	Default    Expr
	Attributes []*Attribute
}

func (*NamespaceDecl) declNode() {}
func (*TypeDecl) declNode()      {}
func (*DelegateDecl) declNode()  {}

func (*TypeDecl) memberNode()        {}
func (*DelegateDecl) memberNode()    {}
func (*MethodDecl) memberNode()      {}
func (*ConstructorDecl) memberNode() {}
func (*PropertyDecl) memberNode()    {}
func (*FieldDecl) memberNode()       {}
func (*EventDecl) memberNode()       {}
