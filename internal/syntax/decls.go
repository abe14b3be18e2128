package syntax

import "strings"

// DeclPath is the lexical chain enclosing a declaration.
type DeclPath struct {
	// Namespace is the dotted namespace, "" when the declaration is outside any namespace.
	Namespace string
	// Types lists the enclosing type names, outermost first.
	Types []*TypeDecl
}

// TypePath joins the namespace and enclosing type names with dots.
func (p DeclPath) TypePath() string {
	parts := make([]string, 0, len(p.Types)+1)
	if p.Namespace != "" {
		parts = append(parts, p.Namespace)
	}
	for _, t := range p.Types {
		parts = append(parts, t.Name)
	}
	return strings.Join(parts, ".")
}

// Owner returns the innermost enclosing type, or nil.
func (p DeclPath) Owner() *TypeDecl {
	if len(p.Types) == 0 {
		return nil
	}
	return p.Types[len(p.Types)-1]
}

// WithNamespace returns the path inside a nested namespace; enclosing types are dropped.
func (p DeclPath) WithNamespace(name string) DeclPath {
	ns := name
	if p.Namespace != "" {
		ns = p.Namespace + "." + name
	}
	return DeclPath{Namespace: ns}
}

// WithType returns the path inside type t.
func (p DeclPath) WithType(t *TypeDecl) DeclPath {
	types := make([]*TypeDecl, len(p.Types), len(p.Types)+1)
	copy(types, p.Types)
	return DeclPath{Namespace: p.Namespace, Types: append(types, t)}
}

// VisitDecls calls fn for every namespace, type, delegate and member in source order.
// For a namespace, path.Namespace already includes the namespace itself; for a type,
// path.Types already ends with the type; for a member, path.Owner() is the declaring type.
// Returning false from fn skips the children of that declaration.
func VisitDecls(cu *CompilationUnit, fn func(path DeclPath, node Node) bool) {
	if cu == nil {
		return
	}
	var root DeclPath
	if ns := cu.FileScopedNamespace; ns != nil {
		visitNamespace(root, ns, fn)
	}
	visitDeclList(root, cu.Members, fn)
}

func visitNamespace(path DeclPath, ns *NamespaceDecl, fn func(DeclPath, Node) bool) {
	inner := path.WithNamespace(ns.Name)
	if !fn(inner, ns) {
		return
	}
	visitDeclList(inner, ns.Members, fn)
}

func visitDeclList(path DeclPath, decls []Decl, fn func(DeclPath, Node) bool) {
	for _, d := range decls {
		switch n := d.(type) {
		case *NamespaceDecl:
			visitNamespace(path, n, fn)
		case *TypeDecl:
			visitType(path, n, fn)
		case *DelegateDecl:
			fn(path, n)
		}
	}
}

func visitType(path DeclPath, t *TypeDecl, fn func(DeclPath, Node) bool) {
	inner := path.WithType(t)
	if !fn(inner, t) {
		return
	}
	for _, m := range t.Members {
		switch n := m.(type) {
		case *TypeDecl:
			visitType(inner, n, fn)
		default:
			fn(inner, n)
		}
	}
}

// Types returns every type declaration in the unit, including nested ones, in source order.
func Types(cu *CompilationUnit) []*TypeDecl {
	var out []*TypeDecl
	VisitDecls(cu, func(_ DeclPath, n Node) bool {
		if t, ok := n.(*TypeDecl); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}
