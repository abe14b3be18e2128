package analyzer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/config"
	actx "sharpcheck/internal/context"
	"sharpcheck/internal/models"
	"sharpcheck/internal/parser"
	"sharpcheck/internal/workspace"

	"github.com/vmihailenco/msgpack/v5"
)

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func loadDir(t *testing.T, dir string) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.Load(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestDefaultRegistryOrder(t *testing.T) {
	want := []string{
		"indexing", "pe_loading", "metrics", "naming", "semantic", "control_flow",
		"dependencies", "control_flow_smells", "symbols", "binding", "types", "overload",
		"generics", "flow", "nullability", "attributes", "access", "extensions", "reporting",
	}
	got := DefaultRegistry().IDs()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v\nwant   %v", got, want)
	}

	reg := DefaultRegistry()
	if n := len(reg.RulesetsLocal()); n != 2 {
		t.Errorf("local rulesets = %d, want 2", n)
	}
	if n := len(reg.RulesetsSemantic()); n != 1 {
		t.Errorf("semantic rulesets = %d, want 1", n)
	}
	if n := len(reg.Passes()); n != 16 {
		t.Errorf("passes = %d, want 16", n)
	}
}

func TestRegistryFromConfig(t *testing.T) {
	cfg := config.DefaultAnalysisConfig()
	cfg.EnablePasses = map[string]bool{"indexing": false, "metrics": true}
	cfg.EnableRulesets = map[string]bool{"naming": false}

	ids := RegistryFromConfig(&cfg).IDs()
	for _, id := range ids {
		if id == "indexing" || id == "naming" {
			t.Errorf("%s should be disabled", id)
		}
	}
	if len(ids) != 17 {
		t.Errorf("got %d entries, want 17: %v", len(ids), ids)
	}
}

func TestRunWithDefaults(t *testing.T) {
	src := `namespace App {
public class Shop {
    public void Buy(int count) {
        foreach (var i in Items()) { if (i > count) { Use(i); } }
        return;
        Use(count);
    }
}
}`
	cu, spans, err := parser.ParseWithSpans(src)
	if err != nil {
		t.Fatal(err)
	}
	s := framework.NewSession(actx.New("shop.cs", src), spans)
	RunWithDefaults(cu, s)

	for _, kind := range []artifacts.Kind{artifacts.KindAstAnalysis, artifacts.KindControlFlowIndex, artifacts.KindSymbolIndex, artifacts.KindDependencyGraph} {
		if !s.Artifacts.Has(kind) {
			t.Errorf("artifact %s missing", kind)
		}
	}
	found := false
	for _, d := range s.Diagnostics.Items() {
		if d.Code == models.CodeUnreachable {
			found = true
		}
	}
	if !found {
		t.Errorf("unreachable statement not reported: %v", s.Diagnostics.Items())
	}

	report := ReportFromSession(s)
	if report.SchemaVersion != 1 || report.Metrics == nil || report.Cfg == nil || report.Deps == nil {
		t.Fatalf("report = %+v", report)
	}
	if report.Cfg.TotalMethods != 1 || report.Deps.Nodes != 1 {
		t.Errorf("cfg = %+v, deps = %+v", report.Cfg, report.Deps)
	}
}

func TestDisabledProducerDegrades(t *testing.T) {
	src := `class C { void M() { foreach (var x in Xs()) { } } }`
	cu, spans, err := parser.ParseWithSpans(src)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultAnalysisConfig()
	cfg.EnablePasses = map[string]bool{"control_flow": false, "indexing": false}
	s := framework.NewSession(actx.NewWithConfig("c.cs", src, cfg), spans)
	RunWithDefaults(cu, s)

	report := ReportFromSession(s)
	if report.Cfg != nil || report.Deps != nil {
		t.Errorf("cfg = %+v, deps = %+v, want both absent", report.Cfg, report.Deps)
	}
	if report.Metrics == nil {
		t.Error("metrics should still be produced")
	}
}

func TestRunWorkspaceMergesFiles(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"a.cs": "namespace App { class A { void M() { } } }",
		"b.cs": "namespace App { class B : A { void N() { if (true) { } } } }",
	})
	report, err := RunWorkspace(context.Background(), loadDir(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesAnalyzed != 2 {
		t.Errorf("files analyzed = %d, want 2", report.FilesAnalyzed)
	}
	if report.Cfg == nil || report.Cfg.TotalMethods < 2 {
		t.Errorf("cfg = %+v, want at least 2 methods", report.Cfg)
	}
	if report.Metrics == nil || report.Metrics.TotalClasses != 2 {
		t.Errorf("metrics = %+v, want 2 classes", report.Metrics)
	}
	// B's base A is declared in another file, so each file only knows its own type
	if report.Deps == nil || report.Deps.Nodes != 2 {
		t.Errorf("deps = %+v, want 2 nodes", report.Deps)
	}
	for i := 1; i < len(report.Diagnostics); i++ {
		if report.Diagnostics[i-1].Location.File > report.Diagnostics[i].Location.File {
			t.Fatalf("diagnostics not sorted by file")
		}
	}
}

func TestRunWorkspaceSharedFQNsCollapse(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"one.cs": "namespace App { partial class P { void M() { } } }",
		"two.cs": "namespace App { partial class P { void M() { if (true) { } } } }",
	})
	report, err := RunWorkspace(context.Background(), loadDir(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if report.Cfg.TotalMethods != 1 {
		t.Errorf("total methods = %d, want 1 for one FQN", report.Cfg.TotalMethods)
	}
	if report.Deps.Nodes != 1 {
		t.Errorf("dep nodes = %d, want 1", report.Deps.Nodes)
	}
}

func TestRunWorkspaceInclude(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"src/one.cs":    "class One { void A() { } }",
		"src/two.cs":    "class Two { void B() { } }",
		"test/three.cs": "class Three { void C() { } }",
	})
	cfg := config.DefaultAnalysisConfig()
	cfg.Workspace.Include = []string{"**/one.cs"}

	report, err := RunWorkspaceWithConfig(context.Background(), loadDir(t, dir), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if report.Metrics == nil || report.Metrics.TotalMethods != 1 {
		t.Errorf("metrics = %+v, want 1 method", report.Metrics)
	}
}

func TestRunWorkspaceExclude(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"src/one.cs":    "class One { void A() { } }",
		"src/two.cs":    "class Two { void B() { } }",
		"test/three.cs": "class Three { void C() { } }",
	})
	cfg := config.DefaultAnalysisConfig()
	cfg.Workspace.Exclude = []string{"test/**"}

	report, err := RunWorkspaceWithConfig(context.Background(), loadDir(t, dir), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesAnalyzed != 2 {
		t.Errorf("files analyzed = %d, want 2", report.FilesAnalyzed)
	}
}

func TestRunWorkspaceBadGlob(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"one.cs": "class One { }",
		"two.cs": "class Two { }",
	})
	cfg := config.DefaultAnalysisConfig()
	cfg.Workspace.Include = []string{"[unclosed"}

	report, err := RunWorkspaceWithConfig(context.Background(), loadDir(t, dir), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesAnalyzed != 2 {
		t.Errorf("files analyzed = %d, want 2 without filtering", report.FilesAnalyzed)
	}
	if len(report.WorkspaceWarnings) != 1 || !strings.Contains(report.WorkspaceWarnings[0], "[unclosed") {
		t.Errorf("warnings = %v", report.WorkspaceWarnings)
	}
}

func TestRunWorkspaceSkipsBrokenFiles(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"good.cs":   "class Good { void M() { } }",
		"broken.cs": "class Broken { void M( { }",
	})
	report, err := RunWorkspace(context.Background(), loadDir(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesAnalyzed != 1 {
		t.Errorf("files analyzed = %d, want 1", report.FilesAnalyzed)
	}
	if len(report.WorkspaceWarnings) != 1 || !strings.HasPrefix(report.WorkspaceWarnings[0], filepath.Join(dir, "broken.cs")+": ") {
		t.Errorf("warnings = %v, want the broken file", report.WorkspaceWarnings)
	}
}

func TestRunWorkspaceCancelled(t *testing.T) {
	dir := writeSources(t, map[string]string{"a.cs": "class A { }"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := RunWorkspace(ctx, loadDir(t, dir))
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if report == nil || report.FilesAnalyzed != 0 {
		t.Errorf("report = %+v, want an empty report", report)
	}
}

func TestRunWorkspaceIsDeterministic(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		files[name+".cs"] = "class " + strings.ToUpper(name) + " { void m() { int unused = 1; } }"
	}
	dir := writeSources(t, files)
	ws := loadDir(t, dir)

	encode := func(workers int) string {
		cfg := config.DefaultAnalysisConfig()
		cfg.MaxWorkers = workers
		report, err := RunWorkspaceWithConfig(context.Background(), ws, cfg)
		if err != nil {
			t.Fatal(err)
		}
		data, err := json.Marshal(report)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
	if serial, parallel := encode(1), encode(8); serial != parallel {
		t.Errorf("reports differ between 1 and 8 workers")
	}
}

func TestReportFormats(t *testing.T) {
	report := &AnalysisReport{
		SchemaVersion: SchemaVersion,
		Diagnostics: []models.Diagnostic{
			models.NewDiagnostic(models.CodeEmptyBlock, models.SourceLocation{File: "a.cs", Line: 1, Column: 12, Length: 3}, "Empty block"),
		},
		Cfg:               &CfgSummary{TotalMethods: 1},
		WorkspaceWarnings: []string{},
		WorkspaceErrors:   []string{},
	}

	cfg := config.DefaultConfig()
	cfg.Output.Format = "json"
	data, err := NewReportGeneratorWithConfig(cfg).Generate(report)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["schema_version"] != float64(1) {
		t.Errorf("schema_version = %v", decoded["schema_version"])
	}
	if _, ok := decoded["metrics"]; ok {
		t.Error("absent metrics should be omitted")
	}
	diags := decoded["diagnostics"].([]any)
	if diags[0].(map[string]any)["severity"] != "warning" {
		t.Errorf("diagnostic = %v", diags[0])
	}

	cfg.Output.Format = "msgpack"
	data, err = NewReportGeneratorWithConfig(cfg).Generate(report)
	if err != nil {
		t.Fatal(err)
	}
	var back AnalysisReport
	if err := msgpack.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Diagnostics) != 1 || back.Diagnostics[0].Severity != models.SeverityWarning || back.Cfg.TotalMethods != 1 {
		t.Errorf("msgpack round trip = %+v", back)
	}
}

func TestConsoleReportCaret(t *testing.T) {
	src := "class C { void M() { if (ok) { } } }"
	report := &AnalysisReport{
		SchemaVersion: SchemaVersion,
		Diagnostics: []models.Diagnostic{
			models.NewDiagnostic(models.CodeEmptyBlock, models.SourceLocation{File: "c.cs", Line: 1, Column: 30, Length: 3}, "Empty block"),
		},
	}
	cfg := config.DefaultConfig()
	cfg.Output.Colors = false
	out, err := NewReportGeneratorWithConfig(cfg).WithSource("c.cs", src).Generate(report)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	if !strings.Contains(text, "warning BSW02010: Empty block") {
		t.Errorf("missing diagnostic header:\n%s", text)
	}
	caret := strings.Repeat(" ", 29) + "^^^"
	if !strings.Contains(text, "      "+src+"\n      "+caret+"\n") {
		t.Errorf("missing caret line:\n%s", text)
	}
}

func TestConsoleCaretUsesDisplayWidth(t *testing.T) {
	r := NewReportGenerator("console").WithSource("w.cs", `var s = "日本"; Use();`)
	// "日本" is two double-width runes of three bytes each, so 18 bytes span 16 cells
	col := strings.Index(`var s = "日本"; Use();`, "Use") + 1
	_, caret, ok := r.snippet(models.SourceLocation{File: "w.cs", Line: 1, Column: col, Length: 3})
	if !ok {
		t.Fatal("no snippet")
	}
	if want := strings.Repeat(" ", 16) + "^^^"; caret != want {
		t.Errorf("caret = %q, want %q", caret, want)
	}
}

func TestReportHasAtLeast(t *testing.T) {
	report := &AnalysisReport{Diagnostics: []models.Diagnostic{
		models.NewDiagnostic(models.CodeEmptyBlock, models.SourceLocation{}, ""),
	}}
	if report.HasAtLeast(models.SeverityError) {
		t.Error("warning-only report should not reach error")
	}
	if !report.HasAtLeast(models.SeverityWarning) {
		t.Error("warning should count at warning level")
	}
}

func TestSampleProject(t *testing.T) {
	ws := loadDir(t, filepath.Join("..", "..", "testdata", "Sample"))
	if len(ws.Projects) != 1 || ws.Projects[0].Name != "Sample" {
		t.Fatalf("projects = %+v, want the Sample project", ws.Projects)
	}
	report, err := RunWorkspace(context.Background(), ws)
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesAnalyzed != 1 {
		t.Errorf("files analyzed = %d, want 1", report.FilesAnalyzed)
	}
	found := map[models.DiagnosticCode]bool{}
	for _, d := range report.Diagnostics {
		found[d.Code] = true
	}
	for _, code := range []models.DiagnosticCode{models.CodeStringConcatLoop, models.CodeDeepNesting, models.CodeUnreachable} {
		if !found[code] {
			t.Errorf("missing %s in %v", code, report.Diagnostics)
		}
	}
	if !report.HasAtLeast(models.SeverityWarning) {
		t.Error("sample should fail on warnings")
	}
}
