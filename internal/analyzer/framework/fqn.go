package framework

import "sharpcheck/internal/syntax"

// NamespaceFQN returns the dotted namespace of path, "" outside any namespace.
func NamespaceFQN(path syntax.DeclPath) string {
	return path.Namespace
}

// ClassFQN returns the FQN of the innermost type of path: namespace and
// enclosing types joined by dots. A type with no namespace is its bare name.
func ClassFQN(path syntax.DeclPath) string {
	return path.TypePath()
}

// MethodFQN returns "Owner::name" for a member declared in the innermost type of path.
func MethodFQN(path syntax.DeclPath, name string) string {
	owner := path.TypePath()
	if owner == "" {
		return name
	}
	return owner + "::" + name
}

// MemberFQN returns the FQN of a member declaration, or "" for nodes that are not members.
// Fields use their first declarator; delegates are types and join with a dot.
func MemberFQN(path syntax.DeclPath, n syntax.Node) string {
	switch d := n.(type) {
	case *syntax.MethodDecl:
		return MethodFQN(path, d.Name)
	case *syntax.ConstructorDecl:
		return MethodFQN(path, d.Name)
	case *syntax.PropertyDecl:
		return MethodFQN(path, d.Name)
	case *syntax.EventDecl:
		return MethodFQN(path, d.Name)
	case *syntax.FieldDecl:
		if len(d.Vars) == 0 {
			return ""
		}
		return MethodFQN(path, d.Vars[0].Name)
	case *syntax.DelegateDecl:
		if owner := path.TypePath(); owner != "" {
			return owner + "." + d.Name
		}
		return d.Name
	}
	return ""
}
