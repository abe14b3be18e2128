package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"sharpcheck/internal/config"
	"sharpcheck/internal/workspace"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// RunWorkspace analyzes every source file of ws with the default configuration.
func RunWorkspace(ctx context.Context, ws *workspace.Workspace) (*AnalysisReport, error) {
	return RunWorkspaceWithConfig(ctx, ws, config.DefaultAnalysisConfig())
}

// RunWorkspaceWithConfig filters the source files of ws by the workspace
// include/exclude globs, analyzes them in parallel and merges the results in
// path order. Files that cannot be read or parsed become workspace warnings.
// The returned report is usable even when ctx was cancelled; the error is then ctx.Err().
func RunWorkspaceWithConfig(ctx context.Context, ws *workspace.Workspace, cfg config.AnalysisConfig) (*AnalysisReport, error) {
	start := time.Now()
	b := newReportBuilder()
	b.report.WorkspaceWarnings = append(b.report.WorkspaceWarnings, ws.Warnings()...)

	files, warnings := filterFiles(ws, cfg.Workspace.Include, cfg.Workspace.Exclude)
	b.report.WorkspaceWarnings = append(b.report.WorkspaceWarnings, warnings...)

	// project assembly references feed pe_loading alongside the configured ones
	if refs := ws.References(); len(refs) > 0 {
		cfg.References = append(append([]string(nil), cfg.References...), refs...)
	}

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	slog.Info("analyzing workspace", "root", ws.Root, "files", len(files), "workers", workers)

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			results[i] = analyzeFile(f.Path, cfg)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		b.add(res)
	}
	report := b.finish(&cfg, true)
	report.Duration = time.Since(start).String()
	slog.Info("workspace analyzed", "files", report.FilesAnalyzed, "diagnostics", len(report.Diagnostics), "elapsed", report.Duration)
	return report, ctx.Err()
}

// analyzeFile runs the configured pipeline over one file.
func analyzeFile(path string, cfg config.AnalysisConfig) fileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable file", "file", path, "error", err)
		return fileResult{path: path, warning: fmt.Sprintf("%s: %v", path, err)}
	}
	s, err := NewAnalyzerWithConfig(cfg).AnalyzeSource(path, string(data))
	if err != nil {
		slog.Warn("skipping file that does not parse", "file", path, "error", err)
		return fileResult{path: path, warning: fmt.Sprintf("%s: %v", path, err)}
	}
	return collectResult(s)
}

// filterFiles applies include and exclude globs to the workspace sources. Patterns
// match paths relative to the owning project, then relative to the workspace root.
// A malformed pattern disables filtering and is reported as a warning.
func filterFiles(ws *workspace.Workspace, include, exclude []string) ([]workspace.SourceFile, []string) {
	files := ws.SourceFiles()
	if len(include) == 0 && len(exclude) == 0 {
		return files, nil
	}
	var warnings []string
	for _, pat := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(filepath.ToSlash(pat)) {
			warnings = append(warnings, fmt.Sprintf("invalid glob pattern %q, file filtering disabled", pat))
		}
	}
	if len(warnings) > 0 {
		return files, warnings
	}

	out := files[:0]
	for _, f := range files {
		if len(include) > 0 && !matchesAny(f, ws.Root, include) {
			continue
		}
		if matchesAny(f, ws.Root, exclude) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func matchesAny(f workspace.SourceFile, root string, patterns []string) bool {
	var candidates []string
	for _, base := range []string{f.ProjectDir, root} {
		if base == "" {
			continue
		}
		rel, err := filepath.Rel(base, f.Path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		candidates = append(candidates, filepath.ToSlash(rel))
	}
	for _, pat := range patterns {
		pat = filepath.ToSlash(pat)
		for _, c := range candidates {
			if doublestar.MatchUnvalidated(pat, c) {
				return true
			}
		}
	}
	return false
}
