package parser

import "sharpcheck/internal/syntax"

// BuildSpanTable records the name span of every namespace, type and member in the unit.
// Keys are "namespace:Ns", "class:Ns.C", "method:Ns.C::M", "ctor:Ns.C::C",
// "property:Ns.C::P", "field:Ns.C::F", "event:Ns.C::E" and "delegate:Ns.D".
// Overloads share a key; the first declaration wins.
func BuildSpanTable(cu *syntax.CompilationUnit) syntax.SpanTable {
	table := syntax.SpanTable{}
	put := func(key string, s syntax.Span) {
		if _, ok := table[key]; !ok {
			table[key] = s
		}
	}
	member := func(path syntax.DeclPath, name string) string {
		return path.TypePath() + "::" + name
	}
	syntax.VisitDecls(cu, func(path syntax.DeclPath, n syntax.Node) bool {
		switch d := n.(type) {
		case *syntax.NamespaceDecl:
			put("namespace:"+path.Namespace, d.NameSpan)
		case *syntax.TypeDecl:
			put("class:"+path.TypePath(), d.NameSpan)
		case *syntax.DelegateDecl:
			name := d.Name
			if tp := path.TypePath(); tp != "" {
				name = tp + "." + d.Name
			}
			put("delegate:"+name, d.NameSpan)
		case *syntax.MethodDecl:
			put("method:"+member(path, d.Name), d.NameSpan)
		case *syntax.ConstructorDecl:
			put("ctor:"+member(path, d.Name), d.NameSpan)
		case *syntax.PropertyDecl:
			put("property:"+member(path, d.Name), d.NameSpan)
		case *syntax.EventDecl:
			put("event:"+member(path, d.Name), d.NameSpan)
		case *syntax.FieldDecl:
			for _, v := range d.Vars {
				put("field:"+member(path, v.Name), v.NameSpan)
			}
		}
		return true
	})
	return table
}
