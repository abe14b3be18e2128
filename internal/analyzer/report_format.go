package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"sharpcheck/internal/config"
	actx "sharpcheck/internal/context"
	"sharpcheck/internal/models"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/term"
)

// ReportGenerator handles formatting and displaying analysis reports
type ReportGenerator struct {
	format string
	config *config.Config
	// sources caches file contents for source snippets
	sources map[string]*actx.AnalysisContext
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(format string) *ReportGenerator {
	return &ReportGenerator{
		format:  format,
		config:  config.DefaultConfig(),
		sources: make(map[string]*actx.AnalysisContext),
	}
}

func NewReportGeneratorWithConfig(cfg *config.Config) *ReportGenerator {
	return &ReportGenerator{
		format:  cfg.Output.Format,
		config:  cfg,
		sources: make(map[string]*actx.AnalysisContext),
	}
}

// WithSource registers file contents for snippets instead of reading the file.
func (r *ReportGenerator) WithSource(file, source string) *ReportGenerator {
	r.sources[file] = actx.New(file, source)
	return r
}

// StdoutIsTerminal reports whether stdout is an interactive terminal.
func StdoutIsTerminal() bool {
	fd, err := safecast.Conv[int](os.Stdout.Fd())
	if err != nil {
		return false
	}
	return term.IsTerminal(fd)
}

// Generate renders report in the configured format.
func (r *ReportGenerator) Generate(report *AnalysisReport) ([]byte, error) {
	switch r.format {
	case "json":
		return r.generateJSON(report)
	case "msgpack":
		return msgpack.Marshal(report)
	default:
		return []byte(r.generateConsole(report)), nil
	}
}

// generateJSON creates a JSON report
func (r *ReportGenerator) generateJSON(report *AnalysisReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode JSON report: %w", err)
	}
	return append(data, '\n'), nil
}

// generateConsole creates a colorized console report
func (r *ReportGenerator) generateConsole(report *AnalysisReport) string {
	var out strings.Builder

	useColors := r.config.Output.Colors
	showSuggestions := r.config.Output.ShowSuggestions

	// Header
	if useColors {
		out.WriteString(color.CyanString("🔍 sharpcheck Analysis Report\n"))
		out.WriteString(color.WhiteString("═══════════════════════════════════════\n\n"))
	} else {
		out.WriteString("sharpcheck Analysis Report\n")
		out.WriteString("=======================================\n\n")
	}

	if r.config.Output.Verbose {
		r.writeConfigInfo(&out, useColors)
	}

	r.writeSummary(&out, report, useColors)
	r.writeMetrics(&out, report, useColors)
	r.writeWorkspaceWarnings(&out, report, useColors)

	if len(report.Diagnostics) > 0 {
		r.writeSeveritySummary(&out, report, useColors)
		out.WriteString("\n")
		r.writeDiagnostics(&out, report, useColors, showSuggestions)
	} else if useColors {
		out.WriteString(color.GreenString("🎉 No diagnostics reported!\n\n"))
	} else {
		out.WriteString("No diagnostics reported!\n\n")
	}

	if report.Duration != "" {
		if useColors {
			out.WriteString(color.WhiteString("Analysis completed in %s\n", report.Duration))
		} else {
			out.WriteString(fmt.Sprintf("Analysis completed in %s\n", report.Duration))
		}
	}
	return out.String()
}

func (r *ReportGenerator) heading(out *strings.Builder, emoji, title string, useColors bool) {
	if useColors {
		out.WriteString(color.WhiteString("%s %s:\n", emoji, title))
	} else {
		out.WriteString(title + ":\n")
	}
}

// getSeverityDisplay returns emoji and color function for a severity level
func getSeverityDisplay(sev models.Severity) (string, func(a ...interface{}) string) {
	switch sev {
	case models.SeverityError:
		return "❌", color.New(color.FgRed, color.Bold).SprintFunc()
	case models.SeverityWarning:
		return "⚠️", color.New(color.FgYellow).SprintFunc()
	case models.SeverityInfo:
		return "ℹ️", color.New(color.FgBlue).SprintFunc()
	default:
		return "❓", color.New(color.FgWhite).SprintFunc()
	}
}

func (r *ReportGenerator) writeConfigInfo(out *strings.Builder, useColors bool) {
	a := r.config.Analysis
	r.heading(out, "📋", "Configuration", useColors)
	thresholds := fmt.Sprintf("complexity > %d, nesting > %d", a.HighComplexityThreshold, a.DeepNestingThreshold)
	workers := fmt.Sprintf("%d", a.MaxWorkers)
	if useColors {
		thresholds = color.CyanString(thresholds)
		workers = color.CyanString(workers)
	}
	out.WriteString(fmt.Sprintf("   Flow thresholds: %s\n", thresholds))
	out.WriteString(fmt.Sprintf("   Workers: %s\n\n", workers))
}

func (r *ReportGenerator) writeSummary(out *strings.Builder, report *AnalysisReport, useColors bool) {
	r.heading(out, "📊", "Summary", useColors)
	out.WriteString(fmt.Sprintf("   Files analyzed: %d\n", report.FilesAnalyzed))
	out.WriteString(fmt.Sprintf("   Diagnostics: %d\n", len(report.Diagnostics)))

	score := report.Score()
	if useColors {
		scoreColor := color.New(color.FgGreen).SprintFunc()
		switch {
		case score < 50:
			scoreColor = color.New(color.FgRed).SprintFunc()
		case score < 75:
			scoreColor = color.New(color.FgYellow).SprintFunc()
		}
		out.WriteString(fmt.Sprintf("   Quality score: %s/100\n\n", scoreColor(score)))
	} else {
		out.WriteString(fmt.Sprintf("   Quality score: %d/100\n\n", score))
	}
}

func (r *ReportGenerator) writeMetrics(out *strings.Builder, report *AnalysisReport, useColors bool) {
	if m := report.Metrics; m != nil {
		r.heading(out, "📐", "Metrics", useColors)
		out.WriteString(fmt.Sprintf("   Types: %d classes, %d interfaces, %d structs, %d enums, %d records\n",
			m.TotalClasses, m.TotalInterfaces, m.TotalStructs, m.TotalEnums, m.TotalRecords))
		out.WriteString(fmt.Sprintf("   Members: %d methods, %d constructors, %d properties, %d fields\n",
			m.TotalMethods, m.TotalConstructors, m.TotalProperties, m.TotalFields))
		out.WriteString(fmt.Sprintf("   Lines of code: %d\n", m.LinesOfCode))
		out.WriteString(fmt.Sprintf("   Cyclomatic complexity: %d (max nesting %d)\n\n", m.CyclomaticComplexity, m.MaxNestingDepth))
	}
	if c := report.Cfg; c != nil {
		r.heading(out, "🔀", "Control flow", useColors)
		out.WriteString(fmt.Sprintf("   Methods: %d\n", c.TotalMethods))
		out.WriteString(fmt.Sprintf("   High complexity: %d\n", c.HighComplexityMethods))
		out.WriteString(fmt.Sprintf("   Deep nesting: %d\n\n", c.DeepNestingMethods))
	}
	if d := report.Deps; d != nil {
		r.heading(out, "🔗", "Dependencies", useColors)
		out.WriteString(fmt.Sprintf("   Nodes: %d\n", d.Nodes))
		out.WriteString(fmt.Sprintf("   Edges: %d\n\n", d.Edges))
	}
}

func (r *ReportGenerator) writeWorkspaceWarnings(out *strings.Builder, report *AnalysisReport, useColors bool) {
	if len(report.WorkspaceWarnings) == 0 {
		return
	}
	r.heading(out, "🚧", "Workspace warnings", useColors)
	for _, w := range report.WorkspaceWarnings {
		if useColors {
			out.WriteString(color.YellowString("   %s\n", w))
		} else {
			out.WriteString(fmt.Sprintf("   %s\n", w))
		}
	}
	out.WriteString("\n")
}

func (r *ReportGenerator) writeSeveritySummary(out *strings.Builder, report *AnalysisReport, useColors bool) {
	r.heading(out, "📋", "Diagnostics by Severity", useColors)
	counts := report.CountBySeverity()
	for _, sev := range []models.Severity{models.SeverityError, models.SeverityWarning, models.SeverityInfo} {
		count := counts[sev.String()]
		if count == 0 {
			continue
		}
		if useColors {
			emoji, colorFunc := getSeverityDisplay(sev)
			out.WriteString(fmt.Sprintf("   %s %s: %s\n", emoji, sev, colorFunc(count)))
		} else {
			out.WriteString(fmt.Sprintf("   %s: %d\n", sev, count))
		}
	}
}

func (r *ReportGenerator) writeDiagnostics(out *strings.Builder, report *AnalysisReport, useColors, showSuggestions bool) {
	r.heading(out, "🔍", "Detailed Diagnostics", useColors)
	out.WriteString(strings.Repeat("─", 50) + "\n\n")

	for _, d := range report.Diagnostics {
		r.writeDiagnostic(out, d, useColors, showSuggestions)
		out.WriteString("\n")
	}
}

func (r *ReportGenerator) writeDiagnostic(out *strings.Builder, d models.Diagnostic, useColors, showSuggestions bool) {
	loc := d.Location
	if useColors {
		emoji, severityColor := getSeverityDisplay(d.Severity)
		out.WriteString(fmt.Sprintf("%s %s %s: %s\n", emoji, severityColor(d.Severity), color.WhiteString(string(d.Code)), d.Message))
		out.WriteString(color.CyanString("   📍 %s:%d:%d", loc.File, loc.Line, loc.Column))
		if d.Symbol != "" {
			out.WriteString(color.CyanString(" in '%s'", d.Symbol))
		}
	} else {
		out.WriteString(fmt.Sprintf("%s %s: %s\n", d.Severity, d.Code, d.Message))
		out.WriteString(fmt.Sprintf("   at %s:%d:%d", loc.File, loc.Line, loc.Column))
		if d.Symbol != "" {
			out.WriteString(fmt.Sprintf(" in '%s'", d.Symbol))
		}
	}
	out.WriteString("\n")

	if line, caret, ok := r.snippet(loc); ok {
		if useColors {
			out.WriteString(fmt.Sprintf("      %s\n      %s\n", line, color.RedString(caret)))
		} else {
			out.WriteString(fmt.Sprintf("      %s\n      %s\n", line, caret))
		}
	}

	if showSuggestions && d.Suggestion != "" {
		if useColors {
			out.WriteString(color.GreenString("   💡 %s\n", d.Suggestion))
		} else {
			out.WriteString(fmt.Sprintf("   Suggestion: %s\n", d.Suggestion))
		}
	}
}

// snippet returns the source line of loc and a caret line underneath the
// located text, aligned by display width.
func (r *ReportGenerator) snippet(loc models.SourceLocation) (string, string, bool) {
	ctx := r.source(loc.File)
	if ctx == nil {
		return "", "", false
	}
	line := ctx.LineText(loc.Line)
	if line == "" || loc.Column < 1 || loc.Column > len(line)+1 {
		return "", "", false
	}
	prefix := line[:loc.Column-1]
	rest := line[loc.Column-1:]
	marked := rest[:min(max(loc.Length, 0), len(rest))]

	var caret strings.Builder
	for _, ch := range prefix {
		if ch == '\t' {
			caret.WriteByte('\t')
			continue
		}
		caret.WriteString(strings.Repeat(" ", runewidth.RuneWidth(ch)))
	}
	caret.WriteString(strings.Repeat("^", max(runewidth.StringWidth(marked), 1)))
	return line, caret.String(), true
}

func (r *ReportGenerator) source(file string) *actx.AnalysisContext {
	if ctx, ok := r.sources[file]; ok {
		return ctx
	}
	var ctx *actx.AnalysisContext
	if data, err := os.ReadFile(file); err == nil {
		ctx = actx.New(file, string(data))
	}
	r.sources[file] = ctx
	return ctx
}
