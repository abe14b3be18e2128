package detectors

import (
	"errors"
	"strings"
	"testing"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/config"
	"sharpcheck/internal/metadata"
	"sharpcheck/internal/models"
	"sharpcheck/internal/parser"
	"sharpcheck/internal/syntax"
)

func flowPasses() []framework.Entry {
	return passes(NewSymbolsPass(), NewFlowPass())
}

func TestLocalScopes(t *testing.T) {
	src := `namespace App {
class C {
    void M(int a) {
        int used = a;
        using (var r = Open()) { Use(r, used); }
        foreach (var x in Items()) { }
        try { } catch (Exception e) { }
        int Local(int y) => y;
    }
    void M(string s) { }
}
}`
	cu, _, err := parser.ParseWithSpans(src)
	if err != nil {
		t.Fatal(err)
	}
	scopes := BuildLocalScopes(cu)

	if len(scopes.Order) != 2 || scopes.Order[0] != "App.C::M" || scopes.Order[1] != "App.C::M#2" {
		t.Fatalf("scope keys = %v", scopes.Order)
	}
	sc := scopes.Members["App.C::M"]
	if _, ok := sc.Decl.(*syntax.MethodDecl); !ok {
		t.Errorf("scope decl = %T, want *syntax.MethodDecl", sc.Decl)
	}
	kinds := map[string]artifacts.LocalKind{
		"a":     artifacts.LocalParam,
		"used":  artifacts.LocalVar,
		"r":     artifacts.LocalUsing,
		"x":     artifacts.LocalForeach,
		"e":     artifacts.LocalCatch,
		"Local": artifacts.LocalFunc,
		"y":     artifacts.LocalParam,
	}
	for name, kind := range kinds {
		l := sc.Lookup(name)
		if l == nil {
			t.Errorf("local %s not collected", name)
			continue
		}
		if l.Kind != kind {
			t.Errorf("local %s kind = %s, want %s", name, l.Kind, kind)
		}
	}
	if used := sc.Lookup("used"); used != nil && used.Uses != 1 {
		t.Errorf("used.Uses = %d, want 1", used.Uses)
	}
}

func TestUnreachableCode(t *testing.T) {
	src := `class C {
    int A() { return 1; Use(); Use(); }
    void B() { throw new Exception(); Use(); }
    void L(int k) { while (true) { break; Use(); } }
    void S(int k) { switch (k) { case 1: return; Use(); } }
    void G() { goto end; end: Use(); }
    IEnumerable<int> Y() { yield break; Use(); }
    void F() { return; int Local() => 1; }
}`
	s := analyze(t, src, nil, flowPasses()...)
	if got := count(s, models.CodeUnreachable); got != 5 {
		t.Errorf("BSW05001 count = %d, want 5: %v", got, s.Diagnostics.Items())
	}
}

func TestEmptyBlocks(t *testing.T) {
	src := `class C {
    void Empty() { }
    void M(bool a) {
        if (a) { }
        try { Use(); } catch { }
        { }
        Run(() => { });
    }
}`
	s := analyze(t, src, nil, flowPasses()...)
	if got := count(s, models.CodeEmptyBlock); got != 3 {
		t.Errorf("BSW02010 count = %d, want 3: %v", got, s.Diagnostics.Items())
	}
}

func TestUnusedLocals(t *testing.T) {
	src := `class C {
    void M(int unusedParam) {
        int used = 1;
        int unused = 2;
        using var s = Open();
        foreach (var x in Items()) { Use(used); }
        var _ = 3;
    }
}`
	s := analyze(t, src, nil, flowPasses()...)
	if got := count(s, models.CodeUnusedVariable); got != 1 {
		t.Fatalf("BSW02005 count = %d, want 1: %v", got, s.Diagnostics.Items())
	}
	for _, d := range s.Diagnostics.Items() {
		if d.Code == models.CodeUnusedVariable && !strings.Contains(d.Message, "'unused'") {
			t.Errorf("message = %q, want the unused local", d.Message)
		}
	}
}

func TestLoopRules(t *testing.T) {
	src := `class C {
    void M(List<int> items, int[] other) {
        string text = "";
        int total = 0;
        List<int> seen = new List<int>();
        var grow = new List<int>();
        var sized = new List<int>(items.Count);
        foreach (var item in items) {
            text += item;
            total += item;
            var buffer = new byte[16];
            var sb = new StringBuilder();
            if (seen.Contains(item)) { continue; }
            grow.Add(item);
            grow.Add(item);
            sized.Add(item);
            if (item < 0) { throw new ArgumentException(); }
            foreach (var o in other) { if (o == item) { Use(o); } }
        }
        text = text + "!";
        Use(text, total, seen, grow, sized);
    }
}`
	s := analyze(t, src, nil, flowPasses()...)
	want := map[models.DiagnosticCode]int{
		models.CodeStringConcatLoop: 1,
		models.CodeAllocationInLoop: 2,
		// linear search, collection growth and nested search
		models.CodeCollectionUsage: 3,
	}
	for code, n := range want {
		if got := count(s, code); got != n {
			t.Errorf("%s count = %d, want %d", code, got, n)
		}
	}
	for _, d := range s.Diagnostics.Items() {
		if d.Code == models.CodeUnusedVariable {
			continue
		}
		if d.Symbol != "C::M" {
			t.Errorf("%s symbol = %q, want C::M", d.Code, d.Symbol)
		}
		if d.Suggestion == "" {
			t.Errorf("%s has no suggestion", d.Code)
		}
	}
}

func TestStringConcatFallsBackToHeuristics(t *testing.T) {
	src := `class C {
    string result;
    int count;
    void M(int n) {
        for (int i = 0; i < n; i++) {
            result += i;
            count += i;
            label += "x";
            result = result + i;
        }
    }
}`
	s := analyze(t, src, nil, flowPasses()...)
	// result twice by name, label by the appended literal
	if got := count(s, models.CodeStringConcatLoop); got != 3 {
		t.Errorf("BSW03002 count = %d, want 3: %v", got, s.Diagnostics.Items())
	}
}

func TestFlowWithoutScopes(t *testing.T) {
	src := `class C { void M(List<int> xs) { List<int> seen = new List<int>(); foreach (var x in xs) { seen.Contains(x); } return; Use(); } }`
	s := analyze(t, src, nil, framework.PassEntry(NewFlowPass()))
	if got := count(s, models.CodeUnreachable); got != 1 {
		t.Errorf("BSW05001 count = %d, want 1", got)
	}
	// the list type is only known from the scopes
	if got := count(s, models.CodeCollectionUsage); got != 0 {
		t.Errorf("BSW03007 count = %d, want 0 without scopes", got)
	}
}

func TestNullability(t *testing.T) {
	body := `class Order { }
struct Point { }
class C {
    string name = null;
    string? maybe = null;
    int count = 0;
    Order Current { get; set; } = null;
    Point p = default;
    void M(string s = null, Order? o = null) {
        string local = null;
        Order order = new Order();
        order = null;
        this.name = null;
        name = null;
        Use(local, order);
    }
}`
	entries := passes(NewIndexingPass(), NewNullabilityPass())

	s := analyze(t, "#nullable enable\n"+body, nil, entries...)
	if got := count(s, models.CodeNullToNonNullable); got != 7 {
		t.Errorf("BSW05002 count = %d, want 7: %v", got, s.Diagnostics.Items())
	}

	s = analyze(t, body, nil, entries...)
	if got := count(s, models.CodeNullToNonNullable); got != 0 {
		t.Errorf("BSW05002 reported %d times without #nullable enable", got)
	}
}

func TestNullabilityOfSourceStructs(t *testing.T) {
	src := "#nullable enable\nstruct Money { }\nclass C { Money m = null; Widget w = null; }"
	s := analyze(t, src, nil, passes(NewIndexingPass(), NewNullabilityPass())...)
	// structs are value types; unknown types are not assumed to be references
	if got := count(s, models.CodeNullToNonNullable); got != 0 {
		t.Errorf("BSW05002 count = %d, want 0: %v", got, s.Diagnostics.Items())
	}
}

func TestReportingOverrides(t *testing.T) {
	src := `class C { void M() { int unused = 1; return; Use(); } }`
	configure := func(cfg *config.AnalysisConfig) {
		cfg.RuleSeverities = map[string]models.Severity{
			string(models.CodeUnusedVariable): models.SeverityOff,
			string(models.CodeUnreachable):    models.SeverityError,
		}
	}
	entries := append(flowPasses(), framework.PassEntry(NewReportingPass()))
	s := analyze(t, src, configure, entries...)

	if got := count(s, models.CodeUnusedVariable); got != 0 {
		t.Errorf("BSW02005 should be dropped, got %d", got)
	}
	items := s.Diagnostics.Items()
	if len(items) != 1 || items[0].Severity != models.SeverityError {
		t.Errorf("diagnostics = %v, want one error", items)
	}
}

func TestReportingDedups(t *testing.T) {
	s := analyze(t, "class C { }", nil)
	span := syntax.Span{Start: 0, End: 5}
	s.Report(models.CodeEmptyBlock, span, "Empty block")
	s.Report(models.CodeEmptyBlock, span, "Empty block")
	s.Report(models.CodeAbstractWithBody, span, "")
	NewReportingPass().Run(nil, s)

	items := s.Diagnostics.Items()
	if len(items) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(items))
	}
}

type fakeTypes map[string][]metadata.TypeName

func (f fakeTypes) Types(path string) ([]metadata.TypeName, error) {
	types, ok := f[path]
	if !ok {
		return nil, errors.New("no such assembly")
	}
	return types, nil
}

func TestPELoading(t *testing.T) {
	source := fakeTypes{
		"Acme.dll": {{Namespace: "Acme", Name: "Widget"}, {Name: "Global"}},
	}
	configure := func(cfg *config.AnalysisConfig) {
		cfg.References = []string{"Acme.dll", "Missing.dll"}
	}
	s := analyze(t, "class C { }", configure, framework.PassEntry(NewPELoadingPassWithSource(source)))

	external, ok := artifacts.Get[*artifacts.ExternalSymbols](s.Artifacts)
	if !ok {
		t.Fatal("external symbols missing")
	}
	if !external.HasType("Acme.Widget") || !external.HasType("Global") {
		t.Errorf("types = %v", external.SortedTypes())
	}
	if len(external.Sources) != 1 || external.Sources[0] != "Acme.dll" {
		t.Errorf("sources = %v, want only Acme.dll", external.Sources)
	}
}
