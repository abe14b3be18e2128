package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// NestedSearchRule reports a foreach nested in another loop whose body
// compares with ==: the usual shape of a hand-written linear lookup.
type NestedSearchRule struct{}

func (r *NestedSearchRule) ID() string { return "nested_linear_search" }

func (r *NestedSearchRule) Visit(n syntax.Node, c *framework.Cursor) {
	loop, ok := n.(*syntax.ForeachStmt)
	if !ok || c.LoopDepth() < 2 || !hasEqualityComparison(loop.Body) {
		return
	}

	collection := "collection"
	if name, ok := identName(loop.Collection); ok {
		collection = name
	}
	d := models.NewDiagnostic(models.CodeCollectionUsage, models.SourceLocation{},
		fmt.Sprintf("Nested loop searches '%s' linearly - O(n^%d) complexity", collection, c.LoopDepth()))
	d.Symbol = c.Member()
	d.Suggestion = nestedSearchSuggestion(c.LoopDepth())
	c.ReportAt(d, loop.Span)
}

func hasEqualityComparison(body syntax.Stmt) bool {
	found := false
	syntax.Inspect(body, func(n syntax.Node) bool {
		switch d := n.(type) {
		case *syntax.LambdaExpr, *syntax.LocalFuncStmt:
			return false
		case *syntax.BinaryExpr:
			if d.Op == "==" {
				found = true
			}
		}
		return !found
	})
	return found
}

func nestedSearchSuggestion(depth int) string {
	if depth == 2 {
		return "Consider a Dictionary or HashSet for O(1) lookups instead of nested iteration. " +
			"Pre-process the inner collection into a keyed structure"
	}
	return "Use binary search if the data is sorted. Profile this code section to measure the actual cost"
}
