package detectors

import (
	"strings"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// StringConcatRule reports `s += ...` and `s = s + ...` on strings inside loops.
type StringConcatRule struct {
	locals *memberLocals
}

func (r *StringConcatRule) ID() string { return "string_concat_in_loop" }

func (r *StringConcatRule) Visit(n syntax.Node, c *framework.Cursor) {
	assign, ok := n.(*syntax.AssignExpr)
	if !ok || !c.InLoop() {
		return
	}
	name, ok := identName(assign.Lhs)
	if !ok {
		return
	}

	switch assign.Op {
	case "+=":
		if r.isString(c, name, assign.Rhs) {
			r.report(c, assign, "String concatenation using += in loop")
		}
	case "=":
		bin, ok := unparen(assign.Rhs).(*syntax.BinaryExpr)
		if !ok || bin.Op != "+" {
			return
		}
		if lhs, ok := identName(bin.X); ok && lhs == name && r.isString(c, name, bin.Y) {
			r.report(c, assign, "String concatenation using + in loop")
		}
	}
}

// isString uses the declared type of a local when there is one, then the
// appended value, then the variable name.
func (r *StringConcatRule) isString(c *framework.Cursor, name string, appended syntax.Expr) bool {
	if l := r.locals.lookup(c, name); l != nil && l.Type != nil {
		return isStringType(l.Type)
	}
	if containsStringLiteral(appended) {
		return true
	}
	return looksLikeStringName(name)
}

func isStringType(t *syntax.TypeRef) bool {
	if t.Rank > 0 {
		return false
	}
	switch t.Name {
	case "string", "String", "System.String":
		return true
	}
	return false
}

func containsStringLiteral(e syntax.Expr) bool {
	found := false
	syntax.Inspect(e, func(n syntax.Node) bool {
		if lit, ok := n.(*syntax.Literal); ok && lit.Kind == syntax.LitString {
			found = true
		}
		return !found
	})
	return found
}

var stringNames = []string{"str", "result", "output", "text", "content", "message", "html", "sql", "line"}

func looksLikeStringName(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range stringNames {
		if lower == s {
			return true
		}
	}
	return strings.HasPrefix(name, "str") || strings.HasSuffix(name, "Str") || strings.HasSuffix(name, "Text")
}

func (r *StringConcatRule) report(c *framework.Cursor, assign *syntax.AssignExpr, message string) {
	d := models.NewDiagnostic(models.CodeStringConcatLoop, models.SourceLocation{},
		message+" - creates a new string on each iteration")
	d.Symbol = c.Member()
	d.Suggestion = stringConcatSuggestion
	c.ReportAt(d, assign.Span)
}

const stringConcatSuggestion = `Use a StringBuilder for repeated concatenation:

var builder = new StringBuilder();
foreach (var item in items)
{
    builder.Append(item);
}
var result = builder.ToString();

This is O(n) instead of O(n²) copying.`
