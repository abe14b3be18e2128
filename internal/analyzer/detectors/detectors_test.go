package detectors

import (
	"testing"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/config"
	actx "sharpcheck/internal/context"
	"sharpcheck/internal/models"
	"sharpcheck/internal/parser"
)

// analyze parses src and runs entries in the given order against one session.
func analyze(t *testing.T, src string, configure func(*config.AnalysisConfig), entries ...framework.Entry) *framework.Session {
	t.Helper()
	cu, spans, err := parser.ParseWithSpans(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	cfg := config.DefaultAnalysisConfig()
	if configure != nil {
		configure(&cfg)
	}
	s := framework.NewSession(actx.NewWithConfig("test.cs", src, cfg), spans)
	for _, e := range entries {
		if e.IsPass() {
			e.Pass.Run(cu, s)
			continue
		}
		framework.RunRuleSets(cu, s, []*framework.RuleSet{e.RuleSet})
	}
	return s
}

func passes(ps ...framework.Pass) []framework.Entry {
	out := make([]framework.Entry, len(ps))
	for i, p := range ps {
		out[i] = framework.PassEntry(p)
	}
	return out
}

func count(s *framework.Session, code models.DiagnosticCode) int {
	n := 0
	for _, d := range s.Diagnostics.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func flowOf(t *testing.T, s *framework.Session, key string) artifacts.MethodFlow {
	t.Helper()
	index, ok := artifacts.Get[*artifacts.ControlFlowIndex](s.Artifacts)
	if !ok {
		t.Fatal("control flow index missing")
	}
	flow, ok := index.Methods[key]
	if !ok {
		t.Fatalf("no flow for %s; have %v", key, index.Methods)
	}
	return flow
}

func TestControlFlowMeasures(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		minComplexity  int
		minNesting     int
		exactNesting   int
		wantComplexity int
	}{
		{name: "empty", body: ``, wantComplexity: 1},
		{name: "one foreach", body: `foreach (var x in xs) { Use(x); }`, minComplexity: 2, minNesting: 1},
		{name: "nested foreach", body: `foreach (var x in xs) { foreach (var y in xs) { Use(y); } }`, minComplexity: 3, minNesting: 2},
		{name: "using if", body: `using (var r = Open()) { if (true) { } }`, minComplexity: 3, minNesting: 2},
		{name: "foreach using if", body: `foreach (var x in xs) { using (var r = Open()) { if (true) { } } }`, minComplexity: 4, minNesting: 3},
		{name: "else if chain", body: `if (a) { } else if (b) { } else { }`, wantComplexity: 3},
		{name: "try catch", body: `try { Use(1); } catch (Exception) { } finally { }`, wantComplexity: 2, exactNesting: 1},
		{name: "switch", body: `switch (k) { case 1: break; default: break; }`, wantComplexity: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "class C { void M(int[] xs, bool a, bool b, int k) { " + tt.body + " } }"
			s := analyze(t, src, nil, framework.PassEntry(NewControlFlowPass()))
			flow := flowOf(t, s, "C::M")
			if tt.wantComplexity != 0 && flow.Complexity != tt.wantComplexity {
				t.Errorf("complexity = %d, want %d", flow.Complexity, tt.wantComplexity)
			}
			if flow.Complexity < tt.minComplexity {
				t.Errorf("complexity = %d, want >= %d", flow.Complexity, tt.minComplexity)
			}
			if flow.MaxNesting < tt.minNesting {
				t.Errorf("max nesting = %d, want >= %d", flow.MaxNesting, tt.minNesting)
			}
			if tt.exactNesting != 0 && flow.MaxNesting != tt.exactNesting {
				t.Errorf("max nesting = %d, want %d", flow.MaxNesting, tt.exactNesting)
			}
		})
	}
}

func TestControlFlowMergesOverloadsAndAccessors(t *testing.T) {
	src := `namespace App {
class C {
    void M() { }
    void M(int a) { if (a > 0) { if (a > 1) { } } }
    int P {
        get { return 1; }
        set { while (value > 0) { } }
    }
}
}`
	s := analyze(t, src, nil, framework.PassEntry(NewControlFlowPass()))

	m := flowOf(t, s, "App.C::M")
	if m.Complexity != 3 || m.MaxNesting != 2 {
		t.Errorf("M flow = %+v, want complexity 3 nesting 2", m)
	}
	p := flowOf(t, s, "App.C::P")
	if p.Complexity != 2 || p.MaxNesting != 1 {
		t.Errorf("P flow = %+v, want complexity 2 nesting 1", p)
	}
}

func TestControlFlowSmells(t *testing.T) {
	src := `class C {
    void Busy(int a) {
        if (a > 0) { if (a > 1) { if (a > 2) { } } }
    }
    void Calm() { }
}`
	configure := func(cfg *config.AnalysisConfig) {
		cfg.HighComplexityThreshold = 2
		cfg.DeepNestingThreshold = 2
	}
	s := analyze(t, src, configure,
		framework.PassEntry(NewControlFlowPass()),
		framework.RuleSetEntry(NewControlFlowSmellsRuleSet()))

	if got := count(s, models.CodeHighComplexity); got != 1 {
		t.Errorf("BSW01001 count = %d, want 1", got)
	}
	if got := count(s, models.CodeDeepNesting); got != 1 {
		t.Errorf("BSW01005 count = %d, want 1", got)
	}
	for _, d := range s.Diagnostics.Items() {
		if d.Symbol != "C::Busy" {
			t.Errorf("diagnostic %s on %q, want C::Busy", d.Code, d.Symbol)
		}
		if d.Suggestion == "" {
			t.Errorf("diagnostic %s has no suggestion", d.Code)
		}
	}
}

func TestControlFlowSmellsWithoutIndex(t *testing.T) {
	src := `class C { void M(int a) { if (a > 0) { if (a > 1) { } } } }`
	s := analyze(t, src, func(cfg *config.AnalysisConfig) { cfg.HighComplexityThreshold = 1 },
		framework.RuleSetEntry(NewControlFlowSmellsRuleSet()))
	if s.Diagnostics.Len() != 0 {
		t.Errorf("expected no diagnostics without a control flow index, got %v", s.Diagnostics.Items())
	}
}

func TestMetricsPass(t *testing.T) {
	src := `namespace App {
/// <summary>Shop.</summary>
public class Shop {
    private int count;
    public string Name { get; set; }
    public event System.EventHandler Changed;
    public Shop() { }
    /// <summary>Buys.</summary>
    public void Buy(int n) {
        for (int i = 0; i < n; i++) {
            if (i > 2) { count++; }
        }
        int Local() => 1;
    }
}
public interface IShop { }
public struct Point { }
public enum Color { Red }
public record Item(string Name);
public delegate void Handler();
}`
	s := analyze(t, src, nil, framework.PassEntry(NewMetricsPass()))
	m, ok := artifacts.Get[*artifacts.AstAnalysis](s.Artifacts)
	if !ok {
		t.Fatal("metrics artifact missing")
	}
	checks := map[string][2]int{
		"classes":      {m.TotalClasses, 1},
		"interfaces":   {m.TotalInterfaces, 1},
		"structs":      {m.TotalStructs, 1},
		"enums":        {m.TotalEnums, 1},
		"records":      {m.TotalRecords, 1},
		"delegates":    {m.TotalDelegates, 1},
		"methods":      {m.TotalMethods, 1},
		"properties":   {m.TotalProperties, 1},
		"fields":       {m.TotalFields, 1},
		"events":       {m.TotalEvents, 1},
		"constructors": {m.TotalConstructors, 1},
		"ifs":          {m.TotalIfStatements, 1},
		"for loops":    {m.TotalForLoops, 1},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %d, want %d", name, c[0], c[1])
		}
	}
	if m.MaxNestingDepth != 2 {
		t.Errorf("max nesting = %d, want 2", m.MaxNestingDepth)
	}
	if m.LinesOfCode == 0 {
		t.Error("lines of code not counted")
	}
}

func TestCountLinesOfCode(t *testing.T) {
	src := "// header\n\nclass C {\n    /* block\n       comment */\n    int x; // trailing\n}\n"
	if got := CountLinesOfCode(src); got != 3 {
		t.Errorf("CountLinesOfCode = %d, want 3", got)
	}
}

func TestIndexingAndDependencies(t *testing.T) {
	src := `namespace Shop {
public class Base { }
public interface IRepo { }
public class Order { }
public class Service : Base, IRepo {
    private Order current;
    public Order Load(int id) { var o = new Order(); Helper.Touch(); return o; }
}
public static class Helper { public static void Touch() { } }
}`
	s := analyze(t, src, nil, passes(NewIndexingPass(), NewDependenciesPass())...)

	index, ok := artifacts.Get[*artifacts.SymbolIndex](s.Artifacts)
	if !ok {
		t.Fatal("symbol index missing")
	}
	service, ok := index.ResolveType("Service")
	if !ok || service.FQN != "Shop.Service" {
		t.Fatalf("ResolveType(Service) = %+v, %v", service, ok)
	}
	if members := index.Members("Shop.Service"); len(members) != 2 {
		t.Errorf("Service members = %d, want 2 (field and method)", len(members))
	}

	graph, ok := artifacts.Get[*artifacts.DependencyGraph](s.Artifacts)
	if !ok {
		t.Fatal("dependency graph missing")
	}
	if len(graph.NodeIDs()) != 5 {
		t.Errorf("graph has %d nodes, want 5", len(graph.NodeIDs()))
	}
	order, _ := index.ResolveType("Order")
	base, _ := index.ResolveType("Base")
	repo, _ := index.ResolveType("IRepo")
	helper, _ := index.ResolveType("Helper")

	has := func(to *artifacts.Symbol, typ artifacts.EdgeType) bool {
		for _, id := range graph.Successors(service.ID, typ) {
			if id == to.ID {
				return true
			}
		}
		return false
	}
	edges := []struct {
		to  *artifacts.Symbol
		typ artifacts.EdgeType
	}{
		{base, artifacts.EdgeInheritance},
		{repo, artifacts.EdgeInheritance},
		{order, artifacts.EdgeField},
		{order, artifacts.EdgeUsage},
		{order, artifacts.EdgeCreation},
		{helper, artifacts.EdgeStaticAccess},
	}
	for _, e := range edges {
		if !has(e.to, e.typ) {
			t.Errorf("missing %s edge Service -> %s", e.typ, e.to.Name)
		}
	}
}

func TestDependenciesDegradeWithoutIndex(t *testing.T) {
	s := analyze(t, `class A { B b; } class B { }`, nil, framework.PassEntry(NewDependenciesPass()))
	if _, ok := artifacts.Get[*artifacts.DependencyGraph](s.Artifacts); ok {
		t.Error("dependency graph built without a symbol index")
	}
}

func TestBindingResolution(t *testing.T) {
	src := `using System.Collections.Generic;
using Alias = Shop.Order;
namespace Shop {
class Order { }
class Box<T> where T : class {
    T item;
    int count;
    List<Order> orders;
    Alias other;
    Missing gone;
    Widget ext;
}
}`
	cu, _, err := parser.ParseWithSpans(src)
	if err != nil {
		t.Fatal(err)
	}
	external := artifacts.NewExternalSymbols()
	external.AddType("Vendor", "Widget")
	bindings := BindTypes(cu, BuildSymbolIndex(cu), external)

	byName := make(map[string]artifacts.Binding)
	for _, ref := range bindings.Order {
		byName[ref.Name] = bindings.Refs[ref]
	}
	want := map[string]artifacts.BindingKind{
		"T":       artifacts.BindTypeParam,
		"int":     artifacts.BindBuiltin,
		"List":    artifacts.BindBuiltin,
		"Order":   artifacts.BindSource,
		"Alias":   artifacts.BindSource,
		"Missing": artifacts.BindUnresolved,
		"Widget":  artifacts.BindUnresolved,
		"class":   artifacts.BindBuiltin,
	}
	for name, kind := range want {
		b, ok := byName[name]
		if !ok {
			t.Errorf("no binding for %s", name)
			continue
		}
		if b.Kind != kind {
			t.Errorf("%s bound as %s, want %s", name, b.Kind, kind)
		}
	}
	if got := len(bindings.Unresolved()); got != 2 {
		t.Errorf("unresolved = %d, want 2", got)
	}
}

func TestBindingUsesExternalNamespaces(t *testing.T) {
	src := `using Vendor; class C { Widget w; Vendor.Gadget g; }`
	cu, _, err := parser.ParseWithSpans(src)
	if err != nil {
		t.Fatal(err)
	}
	external := artifacts.NewExternalSymbols()
	external.AddType("Vendor", "Widget")
	external.AddType("Vendor", "Gadget")
	bindings := BindTypes(cu, BuildSymbolIndex(cu), external)
	for _, ref := range bindings.Order {
		b := bindings.Refs[ref]
		if b.Kind != artifacts.BindExternal {
			t.Errorf("%s bound as %s, want external", ref.Name, b.Kind)
		}
	}
}
