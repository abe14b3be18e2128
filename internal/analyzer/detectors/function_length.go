package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// MethodLengthRule finds overly long methods, constructors and accessors that should be refactored.
type MethodLengthRule struct{}

func NewMethodLengthRule() *MethodLengthRule {
	return &MethodLengthRule{}
}

func (r *MethodLengthRule) ID() string { return "method_length" }

func (r *MethodLengthRule) Visit(n syntax.Node, c *framework.Cursor) {
	if c.MemberNode() != n {
		return
	}
	bodies := memberBodies(n)
	if len(bodies) == 0 {
		return
	}
	limit := c.Config().MaxMethodLines
	if limit <= 0 {
		return
	}

	actualLOC := 0
	for _, body := range bodies {
		actualLOC += countStatementLines(c, body)
	}
	if actualLOC <= limit {
		return
	}
	span := n.Bounds()
	totalLines := c.Ctx.LinesBetween(span.Start, span.End)

	d := models.NewDiagnostic(models.CodeMethodTooLong, models.SourceLocation{},
		fmt.Sprintf("'%s' is too long (%d lines of code, %d total lines)", memberName(n), actualLOC, totalLines))
	d.Symbol = c.Member()
	d.Suggestion = lengthSuggestion(actualLOC, limit)
	c.ReportAt(d, nameSpan(n))
}

// countStatementLines counts the distinct lines on which a statement starts.
func countStatementLines(c *framework.Cursor, body syntax.Node) int {
	linesSeen := make(map[int]bool)
	syntax.Inspect(body, func(n syntax.Node) bool {
		if _, ok := n.(syntax.Stmt); ok {
			if _, block := n.(*syntax.Block); !block {
				linesSeen[c.Ctx.LineOf(n.Bounds().Start)] = true
			}
		}
		return true
	})
	if _, ok := body.(syntax.Expr); ok {
		linesSeen[c.Ctx.LineOf(body.Bounds().Start)] = true
	}
	return len(linesSeen)
}

func lengthSuggestion(loc, limit int) string {
	baseAdvice := "Extract logical blocks into separate methods, keep each method to a single responsibility " +
		"and use early returns to flatten conditional logic."

	switch {
	case loc >= 4*limit:
		return baseAdvice + fmt.Sprintf(" This %d-line method is extremely difficult to maintain: add tests, "+
			"then split it into several types or methods before adding features.", loc)
	case loc >= 2*limit:
		return baseAdvice + fmt.Sprintf(" This %d-line method significantly exceeds the limit: identify its "+
			"main sections and extract each into a well-named method.", loc)
	default:
		return baseAdvice + " Target two or three smaller methods."
	}
}
