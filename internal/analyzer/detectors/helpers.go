package detectors

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"sharpcheck/internal/syntax"
)

// memberName returns the declared name of a declaration node.
func memberName(n syntax.Node) string {
	switch d := n.(type) {
	case *syntax.TypeDecl:
		return d.Name
	case *syntax.DelegateDecl:
		return d.Name
	case *syntax.MethodDecl:
		return d.Name
	case *syntax.ConstructorDecl:
		return d.Name
	case *syntax.PropertyDecl:
		return d.Name
	case *syntax.EventDecl:
		return d.Name
	case *syntax.FieldDecl:
		if len(d.Vars) > 0 {
			return d.Vars[0].Name
		}
	}
	return ""
}

// nameSpan returns the span of a declaration's name, or the whole node when it has none.
func nameSpan(n syntax.Node) syntax.Span {
	var s syntax.Span
	switch d := n.(type) {
	case *syntax.TypeDecl:
		s = d.NameSpan
	case *syntax.DelegateDecl:
		s = d.NameSpan
	case *syntax.MethodDecl:
		s = d.NameSpan
	case *syntax.ConstructorDecl:
		s = d.NameSpan
	case *syntax.PropertyDecl:
		s = d.NameSpan
	case *syntax.EventDecl:
		s = d.NameSpan
	case *syntax.FieldDecl:
		if len(d.Vars) > 0 {
			s = d.Vars[0].NameSpan
		}
	case *syntax.Param:
		s = d.NameSpan
	case *syntax.VarDeclarator:
		s = d.NameSpan
	}
	if s.Len() == 0 {
		return n.Bounds()
	}
	return s
}

// modifiersOf returns the modifiers and attributes of a declaration node.
func modifiersOf(n syntax.Node) (syntax.Modifiers, []*syntax.Attribute) {
	switch d := n.(type) {
	case *syntax.TypeDecl:
		return d.Modifiers, d.Attributes
	case *syntax.DelegateDecl:
		return d.Modifiers, d.Attributes
	case *syntax.MethodDecl:
		return d.Modifiers, d.Attributes
	case *syntax.ConstructorDecl:
		return d.Modifiers, d.Attributes
	case *syntax.PropertyDecl:
		return d.Modifiers, d.Attributes
	case *syntax.EventDecl:
		return d.Modifiers, d.Attributes
	case *syntax.FieldDecl:
		return d.Modifiers, d.Attributes
	}
	return 0, nil
}

// paramsOf returns the parameter list of a declaration, nil when it has none.
func paramsOf(n syntax.Node) []*syntax.Param {
	switch d := n.(type) {
	case *syntax.MethodDecl:
		return d.Params
	case *syntax.ConstructorDecl:
		return d.Params
	case *syntax.DelegateDecl:
		return d.Params
	case *syntax.PropertyDecl:
		return d.IndexParams
	case *syntax.LambdaExpr:
		return d.Params
	}
	return nil
}

// signature renders the parameter types of params, ignoring names.
func signature(params []*syntax.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		t := p.Type.String()
		if p.Modifier != "" {
			t = p.Modifier + " " + t
		}
		parts[i] = t
	}
	return strings.Join(parts, ",")
}

func isPascalCase(name string) bool {
	r, _ := utf8.DecodeRuneInString(strings.TrimLeft(name, "@"))
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return false
	}
	return !strings.Contains(name, "_")
}

func isCamelCase(name string) bool {
	name = strings.TrimLeft(name, "@_")
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return false
	}
	return !strings.Contains(name, "_")
}

// isDiscard reports names that conventionally mean "unused".
func isDiscard(name string) bool {
	return name == "" || strings.Trim(name, "_") == ""
}

// builtinTypes maps keyword types to their framework names.
var builtinTypes = map[string]string{
	"bool":    "System.Boolean",
	"byte":    "System.Byte",
	"sbyte":   "System.SByte",
	"char":    "System.Char",
	"decimal": "System.Decimal",
	"double":  "System.Double",
	"float":   "System.Single",
	"int":     "System.Int32",
	"uint":    "System.UInt32",
	"nint":    "System.IntPtr",
	"nuint":   "System.UIntPtr",
	"long":    "System.Int64",
	"ulong":   "System.UInt64",
	"short":   "System.Int16",
	"ushort":  "System.UInt16",
	"object":  "System.Object",
	"string":  "System.String",
	"void":    "System.Void",
	"dynamic": "System.Object",
}

// wellKnownTypes are framework types resolved without reading any assembly.
var wellKnownTypes = map[string]bool{
	"Object": true, "String": true, "Exception": true, "ArgumentException": true,
	"ArgumentNullException": true, "InvalidOperationException": true, "NotImplementedException": true,
	"NotSupportedException": true, "Task": true, "ValueTask": true, "IEnumerable": true,
	"IEnumerator": true, "IAsyncEnumerable": true, "List": true, "Dictionary": true, "HashSet": true,
	"IList": true, "ICollection": true, "IDictionary": true, "IReadOnlyList": true,
	"IReadOnlyCollection": true, "IReadOnlyDictionary": true, "Queue": true, "Stack": true,
	"Func": true, "Action": true, "Predicate": true, "EventHandler": true, "EventArgs": true,
	"IDisposable": true, "IAsyncDisposable": true, "IComparable": true, "IEquatable": true,
	"Attribute": true, "AttributeUsage": true, "Obsolete": true, "Serializable": true,
	"Nullable": true, "Span": true, "ReadOnlySpan": true, "Memory": true, "StringBuilder": true,
	"CancellationToken": true, "DateTime": true, "TimeSpan": true, "Guid": true, "Type": true,
	"Console": true, "Math": true, "Enum": true, "Array": true, "Tuple": true, "ValueTuple": true,
	"Lazy": true, "Random": true, "Thread": true, "Stream": true, "TextWriter": true,
	"TextReader": true, "Encoding": true, "Regex": true, "Uri": true, "KeyValuePair": true,
	"IServiceProvider": true, "ILogger": true, "HttpClient": true, "JsonSerializer": true,
}

// isReferenceType reports whether t names a non-nullable reference type. source
// resolves types declared in the unit and may be nil.
func isReferenceType(t *syntax.TypeRef, source func(name string) (syntax.TypeKind, bool)) bool {
	if t == nil || t.Nullable || t.Pointer {
		return false
	}
	if t.Rank > 0 {
		return true
	}
	switch t.Name {
	case "string", "object", "dynamic":
		return true
	}
	if _, ok := builtinTypes[t.Name]; ok {
		return false
	}
	if source != nil {
		if kind, ok := source(t.Name); ok {
			return kind == syntax.KindClass || kind == syntax.KindInterface || kind == syntax.KindRecord
		}
	}
	return wellKnownReference[t.SimpleName()]
}

var wellKnownReference = map[string]bool{
	"String": true, "Object": true, "List": true, "Dictionary": true, "HashSet": true,
	"IEnumerable": true, "IList": true, "ICollection": true, "IDictionary": true, "Exception": true,
	"StringBuilder": true, "Task": true, "Func": true, "Action": true, "Stream": true, "Uri": true,
	"Type": true, "Regex": true, "HttpClient": true, "Queue": true, "Stack": true,
}
