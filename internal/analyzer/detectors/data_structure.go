package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// LinearSearchRule reports Contains/IndexOf calls on lists and arrays made
// inside a loop, which turn the loop quadratic.
type LinearSearchRule struct {
	locals *memberLocals
}

func (r *LinearSearchRule) ID() string { return "linear_search_in_loop" }

var linearSearchMethods = map[string]bool{
	"Contains": true, "IndexOf": true, "LastIndexOf": true, "Remove": true,
}

// listTypes keep their elements unordered and unhashed.
var listTypes = map[string]bool{
	"List": true, "IList": true, "ICollection": true, "IEnumerable": true,
	"Collection": true, "ArrayList": true, "LinkedList": true,
}

func (r *LinearSearchRule) Visit(n syntax.Node, c *framework.Cursor) {
	call, ok := n.(*syntax.Invocation)
	if !ok || !c.InLoop() {
		return
	}
	access, ok := call.Fun.(*syntax.MemberAccess)
	if !ok || !linearSearchMethods[access.Name] {
		return
	}
	name, ok := identName(access.X)
	if !ok {
		return
	}
	l := r.locals.lookup(c, name)
	if l == nil || l.Type == nil || !isListType(l.Type) {
		return
	}

	d := models.NewDiagnostic(models.CodeCollectionUsage, models.SourceLocation{},
		fmt.Sprintf("Linear search '%s.%s' inside loop - O(n) per iteration", name, access.Name))
	d.Symbol = c.Member()
	d.Suggestion = linearSearchSuggestion(name)
	c.ReportAt(d, call.Span)
}

func isListType(t *syntax.TypeRef) bool {
	return t.Rank > 0 || listTypes[lastSegment(t.Name)]
}

func linearSearchSuggestion(name string) string {
	return fmt.Sprintf(`Build a HashSet once and look up in O(1):

var %sSet = new HashSet<T>(%s);
foreach (var item in items)
{
    if (%sSet.Contains(item)) { ... }
}

The preprocessing cost is amortized over every lookup.`, name, name, name)
}
