package detectors

import (
	"strings"
	"testing"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/config"
	"sharpcheck/internal/models"
)

// wantCounts checks the number of diagnostics per code, and that no other code was reported.
func wantCounts(t *testing.T, s *framework.Session, want map[models.DiagnosticCode]int) {
	t.Helper()
	got := make(map[models.DiagnosticCode]int)
	for _, d := range s.Diagnostics.Items() {
		got[d.Code]++
	}
	for code, n := range want {
		if got[code] != n {
			t.Errorf("%s count = %d, want %d", code, got[code], n)
		}
	}
	for code, n := range got {
		if _, ok := want[code]; !ok {
			t.Errorf("unexpected %s reported %d times", code, n)
		}
	}
}

func TestNamingRules(t *testing.T) {
	src := `namespace App {
class order_item { }
interface Repository { }
public class Shop {
    public int count;
    private int total;
    const int max = 1;
    public void buy(int Amount) { int Total = Amount; }
    public string name { get; set; }
}
}`
	s := analyze(t, src, nil, framework.RuleSetEntry(NewNamingRuleSet()))
	wantCounts(t, s, map[models.DiagnosticCode]int{
		models.CodePascalCase:       5,
		models.CodeNamingConvention: 1,
		models.CodeCamelCase:        2,
	})

	for _, d := range s.Diagnostics.Items() {
		if d.Code == models.CodeCamelCase && strings.Contains(d.Message, "Amount") && d.Suggestion != "Rename to 'amount'" {
			t.Errorf("suggestion = %q, want rename to amount", d.Suggestion)
		}
	}
}

func TestToCamelCase(t *testing.T) {
	tests := map[string]string{
		"Amount":     "amount",
		"user_name":  "userName",
		"_leading":   "leading",
		"HTTPClient": "hTTPClient",
	}
	for in, want := range tests {
		if got := toCamelCase(in); got != want {
			t.Errorf("toCamelCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSemanticRules(t *testing.T) {
	src := `class Widget {
    Gadget() { }
    public virtual Widget(int a) { }
    override Widget(bool b) { }
    async Widget(string s) { }
    async void Run() { }
    async int Count() { return 1; }
    abstract void Draw() { }
    void Missing();
    static virtual void Both() { }
    static override void Over() { }
    void Dup(int a, string a) { }
    void Many(int a, int b, int c, int d, int e, int f, int g, int h) { }
}
sealed class Locked { public virtual void V() { } }
interface IThing { IThing(); void Body() { } void Plain(); }`
	s := analyze(t, src, nil, framework.RuleSetEntry(NewSemanticRuleSet()))
	wantCounts(t, s, map[models.DiagnosticCode]int{
		models.CodeConstructorName:      1,
		models.CodeConstructorVirtual:   1,
		models.CodeConstructorOverride:  1,
		models.CodeAsyncConstructor:     1,
		models.CodeAsyncReturnType:      1,
		models.CodeAbstractWithBody:     1,
		models.CodeMissingBody:          1,
		models.CodeVirtualStatic:        1,
		models.CodeStaticOverride:       1,
		models.CodeDuplicateParameter:   1,
		models.CodeTooManyParams:        1,
		models.CodeVirtualInSealed:      1,
		models.CodeInterfaceConstructor: 1,
		models.CodeInterfaceMethodBody:  1,
	})
}

func TestMissingDocsIsOptIn(t *testing.T) {
	src := `/// <summary>Documented.</summary>
public class Doc {
    public void Undocumented() { }
    /// <summary>Fine.</summary>
    public int Count { get; set; }
    private void Hidden() { }
}
public interface IApi { void Call(); }`

	s := analyze(t, src, nil, framework.RuleSetEntry(NewSemanticRuleSet()))
	if got := count(s, models.CodeMissingDocs); got != 0 {
		t.Errorf("BSW01004 reported %d times with report_missing_docs off", got)
	}

	s = analyze(t, src, func(cfg *config.AnalysisConfig) { cfg.ReportMissingDocs = true },
		framework.RuleSetEntry(NewSemanticRuleSet()))
	// Undocumented and IApi; interface members inherit the interface's docs
	if got := count(s, models.CodeMissingDocs); got != 2 {
		t.Errorf("BSW01004 count = %d, want 2: %v", got, s.Diagnostics.Items())
	}
}

func TestMethodLength(t *testing.T) {
	var body strings.Builder
	for range 6 {
		body.WriteString("        Step();\n")
	}
	src := "class C {\n    void Long() {\n" + body.String() + "    }\n    void Short() { Step(); }\n}"
	s := analyze(t, src, func(cfg *config.AnalysisConfig) { cfg.MaxMethodLines = 5 },
		framework.RuleSetEntry(NewSemanticRuleSet()))

	if got := count(s, models.CodeMethodTooLong); got != 1 {
		t.Fatalf("BSW01002 count = %d, want 1", got)
	}
	d := s.Diagnostics.Items()[0]
	if d.Symbol != "C::Long" {
		t.Errorf("symbol = %q, want C::Long", d.Symbol)
	}
	if !strings.Contains(d.Message, "6 lines of code") {
		t.Errorf("message = %q, want 6 lines of code", d.Message)
	}
}

func TestAccessRules(t *testing.T) {
	src := `interface IStore {
    private void Hidden();
    private void Helper() { }
}
struct Point { protected int x; }
class Plain { public abstract void Draw(); }
abstract class Shape {
    private abstract void A();
    private virtual void B() { }
    public sealed void C() { }
    public sealed override string ToString() => "";
    public static Shape() { }
    protected sealed class Nested { }
}`
	s := analyze(t, src, nil, framework.PassEntry(NewAccessPass()))
	wantCounts(t, s, map[models.DiagnosticCode]int{
		models.CodePrivateInInterface:    1,
		models.CodeProtectedInStruct:     1,
		models.CodeAbstractInNonAbstract: 1,
		models.CodePrivateAbstract:       1,
		models.CodePrivateVirtual:        1,
		models.CodeSealedNotOverride:     1,
		models.CodeStaticCtorModifiers:   1,
	})
}

func TestExtensionPlacement(t *testing.T) {
	src := `static class Good { public static int Twice(this int x) => x * 2; }
class NotStatic { public static int Bad(this int x) => x; }
static class Outer { static class Inner { public static int Nested(this int x) => x; } }
static class Gen<T> { public static int G(this int x) => x; }
static class NoStatic { public int Inst(this int x) => x; }`
	s := analyze(t, src, nil, framework.PassEntry(NewExtensionsPass()))

	want := map[string]string{
		"Bad":    "static class",
		"Nested": "nested",
		"G":      "non-generic",
		"Inst":   "must be static",
	}
	if got := count(s, models.CodeExtensionOutsideStatic); got != len(want) {
		t.Fatalf("BSE02012 count = %d, want %d: %v", got, len(want), s.Diagnostics.Items())
	}
	for _, d := range s.Diagnostics.Items() {
		matched := false
		for name, reason := range want {
			if strings.Contains(d.Message, "'"+name+"'") {
				matched = true
				if !strings.Contains(d.Message, reason) {
					t.Errorf("message %q should mention %q", d.Message, reason)
				}
			}
		}
		if !matched {
			t.Errorf("unexpected diagnostic %q", d.Message)
		}
	}
}

func TestOverloadDuplicates(t *testing.T) {
	src := `class C {
    C(int a) { }
    C(int b) { }
    static C() { }
    void M(int a) { }
    void M(int b) { }
    void M(string a) { }
    void M(ref int a) { }
    void M<T>(int a) { }
}`
	s := analyze(t, src, nil, framework.PassEntry(NewOverloadPass()))
	wantCounts(t, s, map[models.DiagnosticCode]int{
		models.CodeDuplicateConstructor: 1,
		models.CodeDuplicateMethod:      1,
	})
}

func TestGenericsRules(t *testing.T) {
	src := `struct Point { }
sealed class Final { }
enum Color { Red }
class Base { void M<T>() where T : Color { } }
class Box<T, T> { }
class Holder<T> where T : Point { }
class Sealed<T> where T : Final { }
class Ok<T> where T : Base, new() { }
class Unknown<T> where U : Point { }`
	s := analyze(t, src, nil, passes(NewIndexingPass(), NewBindingPass(), NewGenericsPass())...)
	wantCounts(t, s, map[models.DiagnosticCode]int{
		models.CodeDuplicateTypeParam:    1,
		models.CodeConstraintUnsatisfied: 3,
	})
}

func TestGenericsWithoutBindings(t *testing.T) {
	src := `struct Point { } class Holder<T, T> where T : Point { }`
	s := analyze(t, src, nil, framework.PassEntry(NewGenericsPass()))
	wantCounts(t, s, map[models.DiagnosticCode]int{models.CodeDuplicateTypeParam: 1})
}

func TestTypeRules(t *testing.T) {
	src := `class A : B { }
class B : A { }
class Base { }
interface IFoo : Base { }
struct S : Base { }
interface IBar { }
class Wrong : IBar, Base { }
class Right : Base, IBar { }`
	s := analyze(t, src, nil, passes(NewIndexingPass(), NewBindingPass(), NewTypesPass())...)
	wantCounts(t, s, map[models.DiagnosticCode]int{
		models.CodeCircularType:       1,
		models.CodeInterfaceFromClass: 1,
		models.CodeStructInherits:     1,
		models.CodeClassFromInterface: 1,
	})

	for _, d := range s.Diagnostics.Items() {
		if d.Code == models.CodeCircularType && !strings.Contains(d.Message, "A -> B -> A") {
			t.Errorf("cycle message = %q", d.Message)
		}
	}
}

func TestAttributeDuplicates(t *testing.T) {
	src := `[AttributeUsage(AttributeTargets.All, AllowMultiple = true)]
class TagAttribute : Attribute { }
class C {
    [Obsolete][System.ObsoleteAttribute] void A() { }
    [Tag("a")][Tag("b")] void B() { }
    [InlineData(1)][InlineData(2)] void T(int x) { }
    [return: NotNull][NotNull] string R() => "";
    void P([In][In] int x) { }
}`
	s := analyze(t, src, nil, framework.PassEntry(NewAttributesPass()))
	wantCounts(t, s, map[models.DiagnosticCode]int{models.CodeDuplicateAttr: 2})
}

func TestAttributeName(t *testing.T) {
	tests := map[string]string{
		"Obsolete":                 "Obsolete",
		"System.ObsoleteAttribute": "Obsolete",
		"Attribute":                "Attribute",
	}
	for in, want := range tests {
		if got := attributeName(in); got != want {
			t.Errorf("attributeName(%q) = %q, want %q", in, got, want)
		}
	}
}
