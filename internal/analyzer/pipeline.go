package analyzer

import (
	"log/slog"
	"time"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/config"
	actx "sharpcheck/internal/context"
	"sharpcheck/internal/parser"
	"sharpcheck/internal/syntax"
)

// Analyzer runs a configured registry over single files.
type Analyzer struct {
	config   config.AnalysisConfig
	registry *framework.Registry
}

func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.DefaultAnalysisConfig())
}

func NewAnalyzerWithConfig(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{
		config:   cfg,
		registry: RegistryFromConfig(&cfg),
	}
}

// AnalyzeSource parses and analyzes one file. Only a parse failure is an error.
func (a *Analyzer) AnalyzeSource(file, source string) (*framework.Session, error) {
	cu, spans, err := parser.ParseWithSpans(source)
	if err != nil {
		return nil, err
	}
	s := framework.NewSession(actx.NewWithConfig(file, source, a.config), spans)
	Run(cu, s, a.registry)
	return s, nil
}

// GetPassCount returns the number of enabled passes and rulesets
func (a *Analyzer) GetPassCount() int {
	return len(a.registry.Entries())
}

// GetPassNames returns the enabled ids in execution order
func (a *Analyzer) GetPassNames() []string {
	return a.registry.IDs()
}

// RunWithDefaults analyzes cu with the registry derived from the session's config.
func RunWithDefaults(cu *syntax.CompilationUnit, s *framework.Session) {
	Run(cu, s, RegistryFromConfig(s.Config()))
}

// Run executes the entries of reg in order. Consecutive rulesets of the same
// variant share one AST walk.
func Run(cu *syntax.CompilationUnit, s *framework.Session, reg *framework.Registry) {
	entries := reg.Entries()
	for i := 0; i < len(entries); {
		e := entries[i]
		start := time.Now()
		if e.IsPass() {
			e.Pass.Run(cu, s)
			slog.Debug("pass finished", "pass", e.ID(), "file", s.File(), "elapsed", time.Since(start))
			i++
			continue
		}

		group := []*framework.RuleSet{e.RuleSet}
		ids := []string{e.ID()}
		j := i + 1
		for ; j < len(entries); j++ {
			next := entries[j]
			if next.IsPass() || next.RuleSet.Variant != e.RuleSet.Variant {
				break
			}
			group = append(group, next.RuleSet)
			ids = append(ids, next.ID())
		}
		framework.RunRuleSets(cu, s, group)
		slog.Debug("rulesets finished", "rulesets", ids, "variant", e.RuleSet.Variant, "file", s.File(), "elapsed", time.Since(start))
		i = j
	}
}
