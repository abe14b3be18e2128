package detectors

import (
	"fmt"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/models"
	"sharpcheck/internal/syntax"
)

// CollectionGrowthRule reports lists created without a capacity that are then
// filled with Add inside a loop, once per list.
type CollectionGrowthRule struct {
	locals   *memberLocals
	// growable holds locals initialized with a capacity-less collection.
	growable map[*artifacts.Local]bool
	reported map[*artifacts.Local]bool
}

func newCollectionGrowthRule(locals *memberLocals) *CollectionGrowthRule {
	return &CollectionGrowthRule{
		locals:   locals,
		growable: make(map[*artifacts.Local]bool),
		reported: make(map[*artifacts.Local]bool),
	}
}

func (r *CollectionGrowthRule) ID() string { return "collection_growth" }

// growableTypes take an initial capacity in their constructor.
var growableTypes = map[string]bool{
	"List": true, "Dictionary": true, "HashSet": true, "StringBuilder": true, "Queue": true, "Stack": true,
}

func (r *CollectionGrowthRule) Visit(n syntax.Node, c *framework.Cursor) {
	switch d := n.(type) {
	case *syntax.LocalDecl:
		for _, v := range d.Vars {
			alloc, ok := v.Init.(*syntax.NewExpr)
			if !ok || alloc.Type == nil || !growableTypes[lastSegment(alloc.Type.Name)] {
				continue
			}
			if len(alloc.Args) > 0 || len(alloc.Init) > 0 {
				continue
			}
			if l := r.locals.lookup(c, v.Name); l != nil {
				r.growable[l] = true
			}
		}
	case *syntax.Invocation:
		if !c.InLoop() {
			return
		}
		access, ok := d.Fun.(*syntax.MemberAccess)
		if !ok || (access.Name != "Add" && access.Name != "Append") {
			return
		}
		name, ok := identName(access.X)
		if !ok {
			return
		}
		l := r.locals.lookup(c, name)
		if l == nil || !r.growable[l] || r.reported[l] {
			return
		}
		r.reported[l] = true
		diag := models.NewDiagnostic(models.CodeCollectionUsage, models.SourceLocation{},
			fmt.Sprintf("'%s' grows inside a loop without an initial capacity - may cause repeated reallocations", name))
		diag.Symbol = c.Member()
		diag.Suggestion = growthSuggestion(name)
		c.ReportAt(diag, d.Span)
	}
}

func growthSuggestion(name string) string {
	return fmt.Sprintf(`Pass the expected size to the constructor:

var %s = new List<T>(items.Count);
foreach (var item in items)
{
    %s.Add(item);
}`, name, name)
}
