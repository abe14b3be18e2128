package analyzer

import (
	"fmt"
	"sort"

	"sharpcheck/internal/analyzer/framework"
	"sharpcheck/internal/artifacts"
	"sharpcheck/internal/config"
	"sharpcheck/internal/models"
)

const SchemaVersion = 1

// CfgSummary counts analyzed method bodies and those over the flow thresholds.
type CfgSummary struct {
	TotalMethods          int `json:"total_methods" msgpack:"total_methods"`
	HighComplexityMethods int `json:"high_complexity_methods" msgpack:"high_complexity_methods"`
	DeepNestingMethods    int `json:"deep_nesting_methods" msgpack:"deep_nesting_methods"`
}

// DepsSummary counts distinct dependency graph nodes and edges.
type DepsSummary struct {
	Nodes int `json:"nodes" msgpack:"nodes"`
	Edges int `json:"edges" msgpack:"edges"`
}

// AnalysisReport is the serializable result of analyzing a file or a workspace.
type AnalysisReport struct {
	SchemaVersion     int                    `json:"schema_version" msgpack:"schema_version"`
	Diagnostics       []models.Diagnostic    `json:"diagnostics" msgpack:"diagnostics"`
	Metrics           *artifacts.AstAnalysis `json:"metrics,omitempty" msgpack:"metrics,omitempty"`
	Cfg               *CfgSummary            `json:"cfg,omitempty" msgpack:"cfg,omitempty"`
	Deps              *DepsSummary           `json:"deps,omitempty" msgpack:"deps,omitempty"`
	WorkspaceWarnings []string               `json:"workspace_warnings" msgpack:"workspace_warnings"`
	WorkspaceErrors   []string               `json:"workspace_errors" msgpack:"workspace_errors"`
	FilesAnalyzed     int                    `json:"files_analyzed" msgpack:"files_analyzed"`

	// Duration is shown by the console report only, so serialized reports stay deterministic.
	Duration string `json:"-" msgpack:"-"`
}

// HasAtLeast reports whether a diagnostic at or above min exists.
func (r *AnalysisReport) HasAtLeast(min models.Severity) bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= min {
			return true
		}
	}
	return false
}

// CountBySeverity tallies diagnostics by severity name.
func (r *AnalysisReport) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, d := range r.Diagnostics {
		counts[d.Severity.String()]++
	}
	return counts
}

// Score rates the report on a 0-100 scale.
func (r *AnalysisReport) Score() int {
	coll := models.NewDiagnosticCollection()
	for _, d := range r.Diagnostics {
		coll.Add(d)
	}
	return coll.Score()
}

// ReportFromSession builds the report of a single analyzed file.
func ReportFromSession(s *framework.Session) *AnalysisReport {
	b := newReportBuilder()
	b.add(collectResult(s))
	return b.finish(s.Config(), false)
}

// fileResult is what the merge keeps of one analyzed file.
type fileResult struct {
	path        string
	warning     string
	analyzed    bool
	diagnostics []models.Diagnostic
	metrics     *artifacts.AstAnalysis
	flows       map[string]artifacts.MethodFlow
	depNodes    []string
	depEdges    []string
	hasDeps     bool
}

func collectResult(s *framework.Session) fileResult {
	res := fileResult{
		path:        s.File(),
		analyzed:    true,
		diagnostics: append([]models.Diagnostic(nil), s.Diagnostics.Items()...),
	}
	if m, ok := artifacts.Get[*artifacts.AstAnalysis](s.Artifacts); ok {
		copied := *m
		res.metrics = &copied
	}
	if cf, ok := artifacts.Get[*artifacts.ControlFlowIndex](s.Artifacts); ok {
		res.flows = cf.Methods
	}
	if g, ok := artifacts.Get[*artifacts.DependencyGraph](s.Artifacts); ok {
		res.depNodes, res.depEdges = dependencyKeys(g, s.File())
		res.hasDeps = true
	}
	return res
}

// dependencyKeys names graph nodes by FQN. Nodes without one get a key
// qualified by file so unrelated symbols of different files never coalesce.
func dependencyKeys(g *artifacts.DependencyGraph, file string) (nodes, edges []string) {
	key := func(id artifacts.SymbolID) string {
		if n, ok := g.Nodes[id]; ok && n.Name != "" {
			return n.Name
		}
		return fmt.Sprintf("id:%s#%d", file, id)
	}
	for _, id := range g.NodeIDs() {
		nodes = append(nodes, key(id))
	}
	for _, e := range g.Edges {
		edges = append(edges, fmt.Sprintf("%s -> %s (%s)", key(e.From), key(e.To), e.Type))
	}
	return nodes, edges
}

// reportBuilder merges file results. Merging is order independent; callers
// still add results in path order so diagnostics keep a stable order.
type reportBuilder struct {
	report   *AnalysisReport
	flows    map[string]artifacts.MethodFlow
	hasFlows bool
	nodes    map[string]bool
	edges    map[string]bool
	hasDeps  bool
}

func newReportBuilder() *reportBuilder {
	return &reportBuilder{
		report: &AnalysisReport{
			SchemaVersion:     SchemaVersion,
			Diagnostics:       []models.Diagnostic{},
			WorkspaceWarnings: []string{},
			WorkspaceErrors:   []string{},
		},
		flows: make(map[string]artifacts.MethodFlow),
		nodes: make(map[string]bool),
		edges: make(map[string]bool),
	}
}

func (b *reportBuilder) add(res fileResult) {
	if res.warning != "" {
		b.report.WorkspaceWarnings = append(b.report.WorkspaceWarnings, res.warning)
	}
	if !res.analyzed {
		return
	}
	b.report.FilesAnalyzed++
	b.report.Diagnostics = append(b.report.Diagnostics, res.diagnostics...)

	if res.metrics != nil {
		merged := *res.metrics
		if b.report.Metrics != nil {
			merged = b.report.Metrics.Combine(merged)
		}
		b.report.Metrics = &merged
	}
	if res.flows != nil {
		b.hasFlows = true
		for key, flow := range res.flows {
			if prev, ok := b.flows[key]; ok {
				flow.Complexity = max(flow.Complexity, prev.Complexity)
				flow.MaxNesting = max(flow.MaxNesting, prev.MaxNesting)
			}
			b.flows[key] = flow
		}
	}
	if res.hasDeps {
		b.hasDeps = true
		for _, k := range res.depNodes {
			b.nodes[k] = true
		}
		for _, k := range res.depEdges {
			b.edges[k] = true
		}
	}
}

// finish computes the summaries. alwaysDeps keeps the deps section present even
// when no file produced a graph.
func (b *reportBuilder) finish(cfg *config.AnalysisConfig, alwaysDeps bool) *AnalysisReport {
	r := b.report
	coll := models.NewDiagnosticCollection()
	for _, d := range r.Diagnostics {
		coll.Add(d)
	}
	coll.Sort()
	r.Diagnostics = coll.Items()

	if b.hasFlows {
		r.Cfg = summarizeFlows(b.flows, cfg)
	}
	if b.hasDeps || alwaysDeps {
		r.Deps = &DepsSummary{Nodes: len(b.nodes), Edges: len(b.edges)}
	}
	sort.Strings(r.WorkspaceWarnings)
	r.WorkspaceWarnings = dedupSorted(r.WorkspaceWarnings)
	return r
}

// summarizeFlows counts methods over the thresholds, using the same strict
// comparison as the control_flow_smells rules.
func summarizeFlows(flows map[string]artifacts.MethodFlow, cfg *config.AnalysisConfig) *CfgSummary {
	sum := &CfgSummary{TotalMethods: len(flows)}
	for _, f := range flows {
		if f.Complexity > cfg.HighComplexityThreshold {
			sum.HighComplexityMethods++
		}
		if f.MaxNesting > cfg.DeepNestingThreshold {
			sum.DeepNestingMethods++
		}
	}
	return sum
}

func dedupSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}
