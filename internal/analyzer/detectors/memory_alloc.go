package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// AllocationRule reports arrays, collections and other heavy objects created
// inside loop bodies.
type AllocationRule struct{}

func (r *AllocationRule) ID() string { return "allocation_in_loop" }

// heavyTypes are allocated once and reused in idiomatic code.
var heavyTypes = map[string]bool{
	"List": true, "Dictionary": true, "HashSet": true, "SortedDictionary": true, "SortedSet": true,
	"Queue": true, "Stack": true, "LinkedList": true, "StringBuilder": true, "MemoryStream": true,
	"Regex": true, "HttpClient": true, "Random": true,
}

func (r *AllocationRule) Visit(n syntax.Node, c *framework.Cursor) {
	alloc, ok := n.(*syntax.NewExpr)
	if !ok || !c.InLoop() {
		return
	}
	switch c.Parent().(type) {
	case *syntax.ThrowStmt, *syntax.ThrowExpr:
		return
	}

	var what, suggestion string
	switch {
	case len(alloc.ArraySize) > 0 && alloc.Type != nil:
		what = fmt.Sprintf("new %s[]", alloc.Type.Name)
		suggestion = arrayAllocationSuggestion
	case alloc.Type != nil && heavyTypes[lastSegment(alloc.Type.Name)]:
		what = "new " + lastSegment(alloc.Type.Name)
		suggestion = loopAllocationSuggestion(lastSegment(alloc.Type.Name))
	default:
		return
	}

	d := models.NewDiagnostic(models.CodeAllocationInLoop, models.SourceLocation{},
		fmt.Sprintf("Memory allocation (%s) inside loop", what))
	d.Symbol = c.Member()
	d.Suggestion = suggestion
	c.ReportAt(d, alloc.Span)
}

const arrayAllocationSuggestion = `Allocate the buffer once before the loop, or rent one:

var buffer = ArrayPool<byte>.Shared.Rent(size);
try { /* use buffer */ } finally { ArrayPool<byte>.Shared.Return(buffer); }`

func loopAllocationSuggestion(typeName string) string {
	switch typeName {
	case "Regex":
		return "Store the Regex in a static readonly field so the pattern is parsed once"
	case "HttpClient":
		return "Reuse a single HttpClient (or IHttpClientFactory); a client per iteration exhausts sockets"
	case "Random":
		return "Create one Random before the loop or use Random.Shared"
	}
	return fmt.Sprintf("Move the %s out of the loop and call Clear() between iterations", typeName)
}
